package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quizgrid/backend/internal/models"
)

// Client is the quiz service's view of the question service: a synchronous
// HTTP collaborator. Any transport or upstream failure comes back as
// models.ErrUpstreamUnavailable so the orchestrator never partially persists.
type Client struct {
	base   string
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a question service client for the given base URL.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// envelope mirrors pkg/response.Body with a raw data payload.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// PickForQuiz asks the question service for a random id selection.
func (c *Client) PickForQuiz(ctx context.Context, category string, count int) ([]int64, bool, error) {
	u := fmt.Sprintf("%s/question/generate?categoryName=%s&numQuestions=%s",
		c.base, url.QueryEscape(category), strconv.Itoa(count))
	var out GenerateResponse
	if err := c.get(ctx, u, &out); err != nil {
		return nil, false, err
	}
	return out.QuestionIDs, out.Shortfall, nil
}

// ResolvePublic expands ids to answer-stripped question views.
func (c *Client) ResolvePublic(ctx context.Context, ids []int64) ([]models.PublicQuestion, error) {
	var out []models.PublicQuestion
	if err := c.post(ctx, c.base+"/question/getQuestions", ids, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveWithAnswers expands ids to review views including the right answer.
func (c *Client) ResolveWithAnswers(ctx context.Context, ids []int64) ([]models.ReviewQuestion, error) {
	var out []models.ReviewQuestion
	if err := c.post(ctx, c.base+"/question/getQuestionsWithAnswers", ids, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Score submits answers for scoring.
func (c *Client) Score(ctx context.Context, answers []models.Answer) (int, error) {
	var out int
	if err := c.post(ctx, c.base+"/question/getScore", answers, &out); err != nil {
		return 0, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, url string, body, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("question service call failed", zap.String("url", req.URL.String()), zap.Error(err))
		return fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: decode response: %v", models.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		c.logger.Error("question service returned error",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
			zap.String("error", env.Error),
		)
		return fmt.Errorf("%w: status %d", models.ErrUpstreamUnavailable, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode data: %v", models.ErrUpstreamUnavailable, err)
	}
	return nil
}
