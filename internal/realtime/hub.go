package realtime

import (
	"encoding/json"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// EventSubmission is broadcast to watchers when a student submits a quiz.
const EventSubmission = "submission"

// Hub maintains quiz_id -> set of connections and broadcasts live submission
// events to teachers watching a quiz. Uses Redis pub/sub for horizontal
// scaling: local broadcast + publish to Redis.
type Hub struct {
	// quizID -> map[clientID]*Client
	quizzes map[int64]map[string]*Client
	subs    map[int64]func() // cancel Redis subscription per quiz
	mu      sync.RWMutex
	logger  *zap.Logger
	pub     Publisher
	sub     Subscriber
}

// Publisher publishes quiz events to Redis for cross-instance broadcast.
type Publisher interface {
	PublishQuizEvent(quizID int64, event string, payload []byte) error
}

// Subscriber subscribes to quiz channels and invokes handler for incoming events.
type Subscriber interface {
	SubscribeQuiz(quizID int64, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	return &Hub{
		quizzes: make(map[int64]map[string]*Client),
		subs:    make(map[int64]func()),
		logger:  logger,
		pub:     pub,
		sub:     sub,
	}
}

// Register adds a client to a quiz room. Starts the Redis subscription for
// this quiz when the first watcher joins.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.quizzes[c.QuizID] == nil {
		h.quizzes[c.QuizID] = make(map[string]*Client)
		if h.sub != nil {
			cancel, err := h.sub.SubscribeQuiz(c.QuizID, func(event string, payload []byte) {
				h.BroadcastToQuiz(c.QuizID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.QuizID] = cancel
			}
		}
	}
	h.quizzes[c.QuizID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("watcher joined quiz", zap.String("client_id", c.ID), zap.Int64("quiz_id", c.QuizID))
}

// Unregister removes a client from a quiz room. Cancels the Redis
// subscription when the last watcher leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.quizzes[c.QuizID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.quizzes, c.QuizID)
			if cancel, ok := h.subs[c.QuizID]; ok {
				cancel()
				delete(h.subs, c.QuizID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("watcher left quiz", zap.String("client_id", c.ID), zap.Int64("quiz_id", c.QuizID))
}

// BroadcastToQuiz sends a message to all watchers of a quiz (local only).
func (h *Hub) BroadcastToQuiz(quizID int64, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.quizzes[quizID]
	h.mu.RUnlock()

	if clients == nil {
		return
	}
	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// PublishToQuiz publishes to Redis only, so the subscriber callback performs
// the broadcast once for all instances including this one. Falls back to a
// local broadcast when Redis is not configured.
func (h *Hub) PublishToQuiz(quizID int64, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.pub != nil {
		if err := h.pub.PublishQuizEvent(quizID, event, data); err != nil {
			h.logger.Warn("publish quiz event failed", zap.Int64("quiz_id", quizID), zap.Error(err))
		}
		return
	}
	h.BroadcastToQuiz(quizID, event, json.RawMessage(data))
}

// WatcherCount returns the number of connected watchers for a quiz.
func (h *Hub) WatcherCount(quizID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.quizzes[quizID])
}

func quizChannel(quizID int64) string {
	return channelPrefix + strconv.FormatInt(quizID, 10)
}
