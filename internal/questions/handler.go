package questions

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/quizgrid/backend/internal/models"
	"github.com/quizgrid/backend/pkg/response"
	"github.com/quizgrid/backend/pkg/storage"
)

// GenerateResponse is the payload for GET /question/generate. Shortfall is
// set when the category held fewer questions than requested; the id list is
// simply shorter in that case.
type GenerateResponse struct {
	QuestionIDs []int64 `json:"questionIds"`
	Shortfall   bool    `json:"shortfall"`
	Requested   int     `json:"requested"`
}

// ImportRequest is the body for POST /question/import: the S3 location of a
// JSON array of questions.
type ImportRequest struct {
	Bucket string `json:"bucket" binding:"required"`
	Key    string `json:"key" binding:"required"`
}

// Handler handles question HTTP endpoints.
type Handler struct {
	repo     *Repository
	selector *Selector
	s3       *storage.S3 // optional; import disabled when nil
	logger   *zap.Logger
}

// NewHandler creates a question handler.
func NewHandler(repo *Repository, selector *Selector, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, selector: selector, s3: s3, logger: logger}
}

// ListAll handles GET /question/allQuestions.
func (h *Handler) ListAll(c *gin.Context) {
	list, err := h.repo.GetAll(c.Request.Context())
	if err != nil {
		h.logger.Error("list questions", zap.Error(err))
		response.Internal(c, "failed to list questions")
		return
	}
	response.OK(c, list)
}

// ListByCategory handles GET /question/category/:category.
func (h *Handler) ListByCategory(c *gin.Context) {
	list, err := h.repo.GetByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		h.logger.Error("list questions by category", zap.Error(err))
		response.Internal(c, "failed to list questions")
		return
	}
	response.OK(c, list)
}

// Add handles POST /question/add.
func (h *Handler) Add(c *gin.Context) {
	var q models.Question
	if err := c.ShouldBindJSON(&q); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	created, err := h.repo.Insert(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("add question", zap.Error(err))
		response.Internal(c, "failed to add question")
		return
	}
	response.Created(c, created)
}

// AddBatch handles POST /question/addMultiple.
func (h *Handler) AddBatch(c *gin.Context) {
	var list []models.Question
	if err := c.ShouldBindJSON(&list); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	n, err := h.repo.InsertBatch(c.Request.Context(), list)
	if err != nil {
		h.logger.Error("add questions", zap.Error(err), zap.Int("inserted", n))
		response.Internal(c, "failed to add questions")
		return
	}
	response.Created(c, gin.H{"inserted": n})
}

// Update handles PUT /question/update/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}
	var q models.Question
	if err := c.ShouldBindJSON(&q); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	updated, err := h.repo.Update(c.Request.Context(), id, q)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "question not found")
			return
		}
		h.logger.Error("update question", zap.Error(err), zap.Int64("id", id))
		response.Internal(c, "failed to update question")
		return
	}
	response.OK(c, updated)
}

// Generate handles GET /question/generate?categoryName=&numQuestions=.
// Called by the quiz service during random quiz creation.
func (h *Handler) Generate(c *gin.Context) {
	category := c.Query("categoryName")
	count, err := strconv.Atoi(c.Query("numQuestions"))
	if category == "" || err != nil || count <= 0 {
		response.BadRequest(c, "categoryName and a positive numQuestions are required")
		return
	}
	ids, shortfall, err := h.selector.PickForQuiz(c.Request.Context(), category, count)
	if err != nil {
		h.logger.Error("pick questions", zap.Error(err), zap.String("category", category))
		response.Internal(c, "failed to pick questions")
		return
	}
	response.OK(c, GenerateResponse{QuestionIDs: ids, Shortfall: shortfall, Requested: count})
}

// Resolve handles POST /question/getQuestions: ids to public views.
func (h *Handler) Resolve(c *gin.Context) {
	var ids []int64
	if err := c.ShouldBindJSON(&ids); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	list, err := h.selector.ResolvePublic(c.Request.Context(), ids)
	if err != nil {
		h.logger.Error("resolve questions", zap.Error(err))
		response.Internal(c, "failed to resolve questions")
		return
	}
	response.OK(c, list)
}

// ResolveWithAnswers handles POST /question/getQuestionsWithAnswers: ids to
// review views including the right answer. Reached only via the quiz
// service's post-submission review path.
func (h *Handler) ResolveWithAnswers(c *gin.Context) {
	var ids []int64
	if err := c.ShouldBindJSON(&ids); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	list, err := h.selector.ResolveWithAnswers(c.Request.Context(), ids)
	if err != nil {
		h.logger.Error("resolve questions with answers", zap.Error(err))
		response.Internal(c, "failed to resolve questions")
		return
	}
	response.OK(c, list)
}

// Score handles POST /question/getScore.
func (h *Handler) Score(c *gin.Context) {
	var answers []models.Answer
	if err := c.ShouldBindJSON(&answers); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	score, err := h.selector.Score(c.Request.Context(), answers)
	if err != nil {
		h.logger.Error("score answers", zap.Error(err))
		response.Internal(c, "failed to score answers")
		return
	}
	response.OK(c, score)
}

// Import handles POST /question/import: bulk-load a question bank JSON array
// from S3 into the question table.
func (h *Handler) Import(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "question import is not configured")
		return
	}
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	raw, err := h.s3.GetObject(c.Request.Context(), req.Bucket, req.Key)
	if err != nil {
		h.logger.Error("fetch question bank", zap.Error(err), zap.String("key", req.Key))
		response.ServiceUnavailable(c, "failed to fetch question bank")
		return
	}
	var list []models.Question
	if err := json.Unmarshal(raw, &list); err != nil {
		response.BadRequest(c, "question bank is not a JSON array of questions")
		return
	}
	n, err := h.repo.InsertBatch(c.Request.Context(), list)
	if err != nil {
		h.logger.Error("import questions", zap.Error(err), zap.Int("inserted", n))
		response.Internal(c, "failed to import questions")
		return
	}
	response.Created(c, gin.H{"inserted": n})
}
