package quizzes

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quizgrid/backend/internal/models"
)

// SubmissionReader is the read side of the submission store used by the
// analytics projections.
type SubmissionReader interface {
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	ListByUsername(ctx context.Context, username string) ([]models.Submission, error)
	ListByQuiz(ctx context.Context, quizID int64) ([]models.Submission, error)
	CountByQuizIDs(ctx context.Context, quizIDs []int64) (map[int64]int, error)
}

// QuizReader is the read side of the quiz store used by the projections.
type QuizReader interface {
	GetByID(ctx context.Context, id int64) (*models.Quiz, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]models.Quiz, error)
	ListByCreator(ctx context.Context, username string) ([]models.Quiz, error)
}

// TeacherQuizSummary is one row of a teacher's quiz dashboard.
type TeacherQuizSummary struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	CategoryName  string    `json:"categoryName"`
	QuestionCount int       `json:"questionCount"`
	AttemptCount  int       `json:"attemptCount"`
	CreatedDate   time.Time `json:"createdDate"`
}

// HistoryEntry is one row of a student's submission history. Quizzes deleted
// since the attempt fall back to placeholder metadata.
type HistoryEntry struct {
	SubmissionID   int64     `json:"submissionId"`
	QuizID         int64     `json:"quizId"`
	QuizTitle      string    `json:"quizTitle"`
	CategoryName   string    `json:"categoryName"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	DateTaken      time.Time `json:"dateTaken"`
	Status         string    `json:"status"`
}

// AnswerReview is one scored answer in a detailed result.
type AnswerReview struct {
	QuestionID    int64  `json:"questionId"`
	QuestionTitle string `json:"questionTitle"`
	Response      string `json:"response"`
	RightAnswer   string `json:"rightAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// DetailedResult is a submission expanded to per-question review rows.
type DetailedResult struct {
	SubmissionID   int64          `json:"submissionId"`
	QuizID         int64          `json:"quizId"`
	QuizTitle      string         `json:"quizTitle"`
	Username       string         `json:"username"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	DateTaken      time.Time      `json:"dateTaken"`
	Answers        []AnswerReview `json:"answers"`
}

// QuizAnalytics aggregates every submission for one quiz.
type QuizAnalytics struct {
	QuizID       int64            `json:"quizId"`
	Title        string           `json:"title"`
	CategoryName string           `json:"categoryName"`
	AttemptCount int              `json:"attemptCount"`
	AverageScore float64          `json:"averageScore"`
	HighestScore int              `json:"highestScore"`
	LowestScore  int              `json:"lowestScore"`
	Results      []DetailedResult `json:"results"`
}

const (
	unknownQuizTitle = "Unknown Quiz"
	unknownCategory  = "Unknown"
)

// Projector builds read-side views over quizzes and submissions.
type Projector struct {
	quizzes     QuizReader
	submissions SubmissionReader
	questions   QuestionService
	logger      *zap.Logger
}

// NewProjector creates an analytics projector.
func NewProjector(quizzes QuizReader, submissions SubmissionReader, questions QuestionService, logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{quizzes: quizzes, submissions: submissions, questions: questions, logger: logger}
}

// TeacherQuizzes lists the quizzes a teacher created, newest first, each with
// its attempt count. Counts are fetched in one grouped query rather than per
// quiz.
func (p *Projector) TeacherQuizzes(ctx context.Context, username string) ([]TeacherQuizSummary, error) {
	quizzes, err := p.quizzes.ListByCreator(ctx, username)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(quizzes))
	for _, q := range quizzes {
		ids = append(ids, q.ID)
	}
	counts, err := p.submissions.CountByQuizIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]TeacherQuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, TeacherQuizSummary{
			ID:            q.ID,
			Title:         q.Title,
			CategoryName:  q.Category,
			QuestionCount: len(q.QuestionIDs),
			AttemptCount:  counts[q.ID],
			CreatedDate:   q.CreatedAt,
		})
	}
	return out, nil
}

// StudentHistory lists a student's submissions, newest first. Quiz metadata
// is joined in one batched lookup; missing quizzes get placeholder titles
// instead of failing the whole listing.
func (p *Projector) StudentHistory(ctx context.Context, username string) ([]HistoryEntry, error) {
	subs, err := p.submissions.ListByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	quizIDs := make([]int64, 0, len(subs))
	seen := make(map[int64]bool, len(subs))
	for _, s := range subs {
		if !seen[s.QuizID] {
			seen[s.QuizID] = true
			quizIDs = append(quizIDs, s.QuizID)
		}
	}
	quizzes, err := p.quizzes.GetByIDs(ctx, quizIDs)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryEntry, 0, len(subs))
	for _, s := range subs {
		entry := HistoryEntry{
			SubmissionID:   s.ID,
			QuizID:         s.QuizID,
			QuizTitle:      unknownQuizTitle,
			CategoryName:   unknownCategory,
			Score:          s.Score,
			TotalQuestions: s.TotalQuestions,
			DateTaken:      s.DateTaken,
			Status:         "completed",
		}
		if q, ok := quizzes[s.QuizID]; ok {
			entry.QuizTitle = q.Title
			entry.CategoryName = q.Category
		}
		out = append(out, entry)
	}
	return out, nil
}

// DetailedResult expands one submission into per-question review rows with
// the right answer and a correctness flag. Questions deleted since the
// attempt are dropped from the review.
func (p *Projector) DetailedResult(ctx context.Context, submissionID int64) (*DetailedResult, error) {
	sub, err := p.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return p.expand(ctx, sub)
}

// QuizAnalytics aggregates all submissions for a quiz into score statistics
// and fully expanded results.
func (p *Projector) QuizAnalytics(ctx context.Context, quizID int64) (*QuizAnalytics, error) {
	quiz, err := p.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	subs, err := p.submissions.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	out := &QuizAnalytics{
		QuizID:       quiz.ID,
		Title:        quiz.Title,
		CategoryName: quiz.Category,
		AttemptCount: len(subs),
		Results:      make([]DetailedResult, 0, len(subs)),
	}
	total := 0
	for i, s := range subs {
		sub := s
		res, err := p.expand(ctx, &sub)
		if err != nil {
			return nil, err
		}
		out.Results = append(out.Results, *res)
		total += s.Score
		if i == 0 || s.Score > out.HighestScore {
			out.HighestScore = s.Score
		}
		if i == 0 || s.Score < out.LowestScore {
			out.LowestScore = s.Score
		}
	}
	if len(subs) > 0 {
		out.AverageScore = float64(total) / float64(len(subs))
	}
	return out, nil
}

func (p *Projector) expand(ctx context.Context, sub *models.Submission) (*DetailedResult, error) {
	ids := make([]int64, 0, len(sub.Responses))
	for _, a := range sub.Responses {
		ids = append(ids, a.QuestionID)
	}
	reviews, err := p.questions.ResolveWithAnswers(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.ReviewQuestion, len(reviews))
	for _, r := range reviews {
		byID[r.ID] = r
	}

	title := unknownQuizTitle
	if quiz, err := p.quizzes.GetByID(ctx, sub.QuizID); err == nil {
		title = quiz.Title
	} else if !errors.Is(err, models.ErrQuizNotFound) {
		return nil, err
	}

	answers := make([]AnswerReview, 0, len(sub.Responses))
	for _, a := range sub.Responses {
		rq, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		answers = append(answers, AnswerReview{
			QuestionID:    a.QuestionID,
			QuestionTitle: rq.Title,
			Response:      a.Response,
			RightAnswer:   rq.RightAnswer,
			IsCorrect:     strings.EqualFold(strings.TrimSpace(a.Response), strings.TrimSpace(rq.RightAnswer)),
		})
	}
	return &DetailedResult{
		SubmissionID:   sub.ID,
		QuizID:         sub.QuizID,
		QuizTitle:      title,
		Username:       sub.Username,
		Score:          sub.Score,
		TotalQuestions: sub.TotalQuestions,
		DateTaken:      sub.DateTaken,
		Answers:        answers,
	}, nil
}
