package quizzes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/quizgrid/backend/internal/middleware"
	"github.com/quizgrid/backend/internal/models"
	"github.com/quizgrid/backend/internal/realtime"
	"github.com/quizgrid/backend/pkg/queue"
	"github.com/quizgrid/backend/pkg/response"
	"github.com/quizgrid/backend/pkg/storage"
)

// ReportLatestKey is the Redis key where the worker records the S3 key of
// the most recent report for a quiz.
func ReportLatestKey(quizID int64) string {
	return fmt.Sprintf("report:quiz:%d:latest", quizID)
}

// Handler exposes the quiz HTTP endpoints.
type Handler struct {
	orch      *Orchestrator
	projector *Projector
	queue     *queue.Queue
	hub       *realtime.Hub
	rdb       *redis.Client
	s3        *storage.S3
	logger    *zap.Logger
}

// NewHandler creates a quiz handler. queue, hub, rdb and s3 are optional;
// when nil the corresponding features (report generation, live feed, report
// download) are disabled.
func NewHandler(orch *Orchestrator, projector *Projector, q *queue.Queue, hub *realtime.Hub, rdb *redis.Client, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{orch: orch, projector: projector, queue: q, hub: hub, rdb: rdb, s3: s3, logger: logger}
}

// Create handles POST /quiz/create.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	result, err := h.orch.Create(c.Request.Context(), req, middleware.Username(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, result)
}

// Get handles GET /quiz/get/:quizId.
func (h *Handler) Get(c *gin.Context) {
	quizID, ok := pathID(c, "quizId")
	if !ok {
		return
	}
	detail, err := h.orch.Fetch(c.Request.Context(), quizID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, detail)
}

// SubmitRequest is the body for POST /quiz/submit/:quizId.
type SubmitRequest struct {
	Responses []models.Answer `json:"responses" binding:"required"`
}

// Submit handles POST /quiz/submit/:quizId. After the submission is
// persisted a report job is enqueued and the live feed is notified; failures
// in either are logged but never fail the request.
func (h *Handler) Submit(c *gin.Context) {
	quizID, ok := pathID(c, "quizId")
	if !ok {
		return
	}
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	username := middleware.Username(c)
	result, sub, err := h.orch.Submit(c.Request.Context(), quizID, username, req.Responses)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if h.queue != nil {
		if err := h.queue.EnqueueQuizReport(c.Request.Context(), queue.QuizReportPayload{
			QuizID:      quizID,
			RequestedBy: username,
		}); err != nil {
			h.logger.Warn("enqueue report job failed", zap.Int64("quiz_id", quizID), zap.Error(err))
		}
	}
	if h.hub != nil {
		h.hub.PublishToQuiz(quizID, realtime.EventSubmission, gin.H{
			"submissionId": sub.ID,
			"username":     username,
			"score":        sub.Score,
			"total":        sub.TotalQuestions,
			"dateTaken":    sub.DateTaken,
		})
	}

	response.Created(c, result)
}

// TeacherQuizzes handles GET /quiz/teacher/quizzes.
func (h *Handler) TeacherQuizzes(c *gin.Context) {
	out, err := h.projector.TeacherQuizzes(c.Request.Context(), middleware.Username(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, out)
}

// StudentHistory handles GET /quiz/student/history.
func (h *Handler) StudentHistory(c *gin.Context) {
	out, err := h.projector.StudentHistory(c.Request.Context(), middleware.Username(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, out)
}

// Result handles GET /quiz/result/:submissionId.
func (h *Handler) Result(c *gin.Context) {
	submissionID, ok := pathID(c, "submissionId")
	if !ok {
		return
	}
	out, err := h.projector.DetailedResult(c.Request.Context(), submissionID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, out)
}

// Analytics handles GET /quiz/analytics/:quizId.
func (h *Handler) Analytics(c *gin.Context) {
	quizID, ok := pathID(c, "quizId")
	if !ok {
		return
	}
	out, err := h.projector.QuizAnalytics(c.Request.Context(), quizID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, out)
}

// Report handles GET /quiz/report/:quizId. It presigns a download URL for
// the most recent report the worker uploaded for the quiz.
func (h *Handler) Report(c *gin.Context) {
	if h.rdb == nil || h.s3 == nil {
		response.NotFound(c, "report storage not configured")
		return
	}
	quizID, ok := pathID(c, "quizId")
	if !ok {
		return
	}
	key, err := h.rdb.Get(c.Request.Context(), ReportLatestKey(quizID)).Result()
	if err == redis.Nil {
		response.NotFound(c, "no report generated for this quiz yet")
		return
	}
	if err != nil {
		response.Internal(c, "failed to look up report")
		return
	}
	url, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(), h.s3.ReportsBucket(), key, h.s3.PresignExpire())
	if err != nil {
		h.logger.Error("presign report failed", zap.Int64("quiz_id", quizID), zap.Error(err))
		response.Internal(c, "failed to generate download url")
		return
	}
	response.OK(c, gin.H{"quizId": quizID, "key": key, "url": url})
}

// Live handles GET /quiz/live/:quizId, upgrading to a WebSocket that streams
// submission events for the quiz.
func (h *Handler) Live() gin.HandlerFunc {
	if h.hub == nil {
		return func(c *gin.Context) {
			response.NotFound(c, "live feed not configured")
		}
	}
	return realtime.ServeWs(h.hub, h.logger, middleware.Username)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrQuizNotFound):
		response.NotFound(c, "quiz not found")
	case errors.Is(err, models.ErrSubmissionNotFound):
		response.NotFound(c, "submission not found")
	case errors.Is(err, models.ErrCategoryExhausted):
		response.BadRequest(c, "no questions available in this category")
	case errors.Is(err, ErrInvalidCreateRequest):
		response.BadRequest(c, err.Error())
	case errors.Is(err, models.ErrUpstreamUnavailable):
		h.logger.Error("question service unavailable", zap.Error(err))
		response.ServiceUnavailable(c, "question service unavailable")
	default:
		h.logger.Error("quiz request failed", zap.Error(err))
		response.Internal(c, "internal error")
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.Body{Success: false, Error: "invalid " + name})
		return 0, false
	}
	return id, true
}
