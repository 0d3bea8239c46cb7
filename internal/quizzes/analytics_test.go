package quizzes_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quizgrid/backend/internal/models"
	"github.com/quizgrid/backend/internal/quizzes"
)

func newProjector() (*quizzes.Projector, *fakeQuizStore, *fakeSubmissionStore) {
	quizStore := newFakeQuizStore()
	subStore := newFakeSubmissionStore()
	return quizzes.NewProjector(quizStore, subStore, newFakeQuestionService(), nil), quizStore, subStore
}

func TestTeacherQuizzesWithAttemptCounts(t *testing.T) {
	projector, quizStore, subStore := newProjector()
	quizStore.quizzes[1] = models.Quiz{ID: 1, Title: "Math", Category: "math", CreatedBy: "alice", QuestionIDs: []int64{1, 2}}
	quizStore.quizzes[2] = models.Quiz{ID: 2, Title: "Geo", Category: "geo", CreatedBy: "alice", QuestionIDs: []int64{3}}
	quizStore.quizzes[3] = models.Quiz{ID: 3, Title: "Other", CreatedBy: "carol", QuestionIDs: []int64{1}}
	subStore.submissions[1] = models.Submission{ID: 1, QuizID: 1, Username: "bob"}
	subStore.submissions[2] = models.Submission{ID: 2, QuizID: 1, Username: "dave"}

	out, err := projector.TeacherQuizzes(context.Background(), "alice")
	if err != nil {
		t.Fatalf("teacher quizzes failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 quizzes for alice, got %d", len(out))
	}
	counts := map[int64]int{}
	for _, s := range out {
		counts[s.ID] = s.AttemptCount
		if s.ID == 1 && s.QuestionCount != 2 {
			t.Fatalf("expected question count 2, got %d", s.QuestionCount)
		}
	}
	if counts[1] != 2 || counts[2] != 0 {
		t.Fatalf("unexpected attempt counts: %v", counts)
	}
}

func TestStudentHistoryFallsBackForDeletedQuiz(t *testing.T) {
	projector, quizStore, subStore := newProjector()
	quizStore.quizzes[1] = models.Quiz{ID: 1, Title: "Math", Category: "math"}
	subStore.submissions[1] = models.Submission{ID: 1, QuizID: 1, Username: "bob", Score: 2, TotalQuestions: 2}
	subStore.submissions[2] = models.Submission{ID: 2, QuizID: 99, Username: "bob", Score: 1, TotalQuestions: 3}

	out, err := projector.StudentHistory(context.Background(), "bob")
	if err != nil {
		t.Fatalf("student history failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(out))
	}
	byID := map[int64]quizzes.HistoryEntry{}
	for _, e := range out {
		byID[e.SubmissionID] = e
		if e.Status != "completed" {
			t.Fatalf("expected status completed, got %q", e.Status)
		}
	}
	if byID[1].QuizTitle != "Math" || byID[1].CategoryName != "math" {
		t.Fatalf("expected quiz metadata joined, got %+v", byID[1])
	}
	if byID[2].QuizTitle != "Unknown Quiz" || byID[2].CategoryName != "Unknown" {
		t.Fatalf("expected placeholders for deleted quiz, got %+v", byID[2])
	}
}

func TestDetailedResultMarksCorrectness(t *testing.T) {
	projector, quizStore, subStore := newProjector()
	quizStore.quizzes[7] = models.Quiz{ID: 7, Title: "Mixed"}
	subStore.submissions[5] = models.Submission{
		ID: 5, QuizID: 7, Username: "bob", Score: 2, TotalQuestions: 3,
		DateTaken: time.Now(),
		Responses: []models.Answer{
			{QuestionID: 1, Response: "4"},
			{QuestionID: 3, Response: "pArIs"},
			{QuestionID: 2, Response: "7"},
		},
	}

	out, err := projector.DetailedResult(context.Background(), 5)
	if err != nil {
		t.Fatalf("detailed result failed: %v", err)
	}
	if out.QuizTitle != "Mixed" || out.Username != "bob" {
		t.Fatalf("unexpected header: %+v", out)
	}
	if len(out.Answers) != 3 {
		t.Fatalf("expected 3 answer rows, got %d", len(out.Answers))
	}
	if !out.Answers[0].IsCorrect || out.Answers[0].RightAnswer != "4" {
		t.Fatalf("expected first answer correct, got %+v", out.Answers[0])
	}
	if !out.Answers[1].IsCorrect {
		t.Fatalf("expected case-insensitive match, got %+v", out.Answers[1])
	}
	if out.Answers[2].IsCorrect {
		t.Fatalf("expected wrong answer flagged, got %+v", out.Answers[2])
	}
}

func TestDetailedResultSurvivesDeletedQuiz(t *testing.T) {
	projector, _, subStore := newProjector()
	subStore.submissions[5] = models.Submission{
		ID: 5, QuizID: 99, Username: "bob", Score: 1, TotalQuestions: 1,
		Responses: []models.Answer{{QuestionID: 1, Response: "4"}},
	}

	out, err := projector.DetailedResult(context.Background(), 5)
	if err != nil {
		t.Fatalf("detailed result failed: %v", err)
	}
	if out.QuizTitle != "Unknown Quiz" {
		t.Fatalf("expected placeholder title, got %q", out.QuizTitle)
	}
}

func TestDetailedResultUnknownSubmission(t *testing.T) {
	projector, _, _ := newProjector()

	if _, err := projector.DetailedResult(context.Background(), 404); !errors.Is(err, models.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
}

func TestQuizAnalyticsAggregates(t *testing.T) {
	projector, quizStore, subStore := newProjector()
	quizStore.quizzes[7] = models.Quiz{ID: 7, Title: "Math", Category: "math"}
	subStore.submissions[1] = models.Submission{ID: 1, QuizID: 7, Username: "bob", Score: 2, TotalQuestions: 2,
		Responses: []models.Answer{{QuestionID: 1, Response: "4"}, {QuestionID: 2, Response: "9"}}}
	subStore.submissions[2] = models.Submission{ID: 2, QuizID: 7, Username: "dave", Score: 0, TotalQuestions: 2,
		Responses: []models.Answer{{QuestionID: 1, Response: "5"}, {QuestionID: 2, Response: "7"}}}

	out, err := projector.QuizAnalytics(context.Background(), 7)
	if err != nil {
		t.Fatalf("quiz analytics failed: %v", err)
	}
	if out.AttemptCount != 2 {
		t.Fatalf("expected 2 attempts, got %d", out.AttemptCount)
	}
	if out.AverageScore != 1.0 {
		t.Fatalf("expected average 1.0, got %v", out.AverageScore)
	}
	if out.HighestScore != 2 || out.LowestScore != 0 {
		t.Fatalf("unexpected extremes: high=%d low=%d", out.HighestScore, out.LowestScore)
	}
	if len(out.Results) != 2 {
		t.Fatalf("expected 2 expanded results, got %d", len(out.Results))
	}
}

func TestQuizAnalyticsUnknownQuiz(t *testing.T) {
	projector, _, _ := newProjector()

	if _, err := projector.QuizAnalytics(context.Background(), 404); !errors.Is(err, models.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}
