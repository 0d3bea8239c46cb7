package quizzes

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/quizgrid/backend/internal/models"
)

// ErrInvalidCreateRequest is returned when a create request names neither an
// explicit question list nor a category with a positive count.
var ErrInvalidCreateRequest = errors.New("either questionIds or categoryName with a positive numQuestions is required")

// QuestionService is the remote question collaborator. Calls are synchronous;
// any failure surfaces as models.ErrUpstreamUnavailable and aborts the whole
// operation before anything is persisted.
type QuestionService interface {
	PickForQuiz(ctx context.Context, category string, count int) (ids []int64, shortfall bool, err error)
	ResolvePublic(ctx context.Context, ids []int64) ([]models.PublicQuestion, error)
	ResolveWithAnswers(ctx context.Context, ids []int64) ([]models.ReviewQuestion, error)
	Score(ctx context.Context, answers []models.Answer) (int, error)
}

// UserDirectory resolves usernames to numeric user ids.
type UserDirectory interface {
	IDByUsername(ctx context.Context, username string) (int64, error)
}

// QuizStore is the quiz persistence surface the orchestrator needs.
type QuizStore interface {
	Insert(ctx context.Context, q models.Quiz) (*models.Quiz, error)
	GetByID(ctx context.Context, id int64) (*models.Quiz, error)
}

// SubmissionStore is the submission persistence surface.
type SubmissionStore interface {
	Insert(ctx context.Context, s models.Submission) (*models.Submission, error)
}

// CreateRequest is the body for POST /quiz/create. Either QuestionIDs is set
// (custom quiz) or CategoryName+NumQuestions drive random selection.
type CreateRequest struct {
	Title        string  `json:"title" binding:"required"`
	CategoryName string  `json:"categoryName"`
	NumQuestions int     `json:"numQuestions"`
	QuestionIDs  []int64 `json:"questionIds"`
}

// CreateResult reports the created quiz and any selection shortfall.
type CreateResult struct {
	QuizID        int64 `json:"quizId"`
	QuestionCount int   `json:"questionCount"`
	Requested     int   `json:"requested,omitempty"`
	Shortfall     bool  `json:"shortfall,omitempty"`
}

// QuizDetail is a quiz expanded to its public question views, in the quiz's
// stored question order.
type QuizDetail struct {
	ID           int64                   `json:"id"`
	Title        string                  `json:"title"`
	CategoryName string                  `json:"categoryName"`
	Questions    []models.PublicQuestion `json:"questions"`
}

// SubmitResult reports a scored submission.
type SubmitResult struct {
	SubmissionID   int64 `json:"submissionId"`
	QuizID         int64 `json:"quizId"`
	Score          int   `json:"score"`
	TotalQuestions int   `json:"totalQuestions"`
}

// Orchestrator coordinates quiz creation, retrieval and submission scoring
// across the quiz store, submission store and the remote question service.
// It is request-scoped: no shared mutable state, safe for concurrent use.
type Orchestrator struct {
	quizzes     QuizStore
	submissions SubmissionStore
	questions   QuestionService
	users       UserDirectory
	logger      *zap.Logger
}

// NewOrchestrator creates a quiz orchestrator.
func NewOrchestrator(quizzes QuizStore, submissions SubmissionStore, questions QuestionService, users UserDirectory, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		quizzes:     quizzes,
		submissions: submissions,
		questions:   questions,
		users:       users,
		logger:      logger,
	}
}

// Create builds and persists a quiz for the given creator. The custom path
// takes the explicit id list as-is; the random path selects from the
// category and reports a shortfall when fewer questions exist than requested.
// A category with no questions at all fails with ErrCategoryExhausted.
func (o *Orchestrator) Create(ctx context.Context, req CreateRequest, username string) (*CreateResult, error) {
	var (
		ids       []int64
		shortfall bool
		err       error
	)
	switch {
	case len(req.QuestionIDs) > 0:
		ids = req.QuestionIDs
	case req.CategoryName != "" && req.NumQuestions > 0:
		ids, shortfall, err = o.questions.PickForQuiz(ctx, req.CategoryName, req.NumQuestions)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, models.ErrCategoryExhausted
		}
	default:
		return nil, ErrInvalidCreateRequest
	}

	userID, err := o.users.IDByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, models.ErrUserNotFound) {
			return nil, err
		}
		userID = -1
	}

	quiz, err := o.quizzes.Insert(ctx, models.Quiz{
		Title:       req.Title,
		Category:    req.CategoryName,
		CreatedBy:   username,
		UserID:      userID,
		QuestionIDs: ids,
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("quiz created",
		zap.Int64("quiz_id", quiz.ID),
		zap.String("created_by", username),
		zap.Int("questions", len(ids)),
		zap.Bool("shortfall", shortfall),
	)
	return &CreateResult{
		QuizID:        quiz.ID,
		QuestionCount: len(ids),
		Requested:     req.NumQuestions,
		Shortfall:     shortfall,
	}, nil
}

// Fetch loads a quiz and expands it to public question views, re-ordered to
// the quiz's stored question order. Ids that no longer resolve are dropped.
func (o *Orchestrator) Fetch(ctx context.Context, quizID int64) (*QuizDetail, error) {
	quiz, err := o.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	resolved, err := o.questions.ResolvePublic(ctx, quiz.QuestionIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.PublicQuestion, len(resolved))
	for _, pq := range resolved {
		byID[pq.ID] = pq
	}
	ordered := make([]models.PublicQuestion, 0, len(resolved))
	for _, id := range quiz.QuestionIDs {
		if pq, ok := byID[id]; ok {
			ordered = append(ordered, pq)
		}
	}
	return &QuizDetail{
		ID:           quiz.ID,
		Title:        quiz.Title,
		CategoryName: quiz.Category,
		Questions:    ordered,
	}, nil
}

// Submit scores the submitted answers against the question service and
// persists the submission. TotalQuestions is the number of answers actually
// submitted; partial submissions are accepted. On a scoring failure nothing
// is persisted and the persist step is never retried.
func (o *Orchestrator) Submit(ctx context.Context, quizID int64, username string, answers []models.Answer) (*SubmitResult, *models.Submission, error) {
	if _, err := o.quizzes.GetByID(ctx, quizID); err != nil {
		return nil, nil, err
	}

	score, err := o.questions.Score(ctx, answers)
	if err != nil {
		return nil, nil, err
	}

	sub, err := o.submissions.Insert(ctx, models.Submission{
		QuizID:         quizID,
		Username:       username,
		Score:          score,
		TotalQuestions: len(answers),
		Responses:      answers,
	})
	if err != nil {
		return nil, nil, err
	}

	o.logger.Info("quiz submitted",
		zap.Int64("quiz_id", quizID),
		zap.Int64("submission_id", sub.ID),
		zap.String("username", username),
		zap.Int("score", score),
		zap.Int("total", len(answers)),
	)
	return &SubmitResult{
		SubmissionID:   sub.ID,
		QuizID:         quizID,
		Score:          score,
		TotalQuestions: len(answers),
	}, sub, nil
}
