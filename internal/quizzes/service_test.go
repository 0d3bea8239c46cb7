package quizzes_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/quizgrid/backend/internal/models"
	"github.com/quizgrid/backend/internal/quizzes"
)

type fakeQuizStore struct {
	quizzes map[int64]models.Quiz
	nextID  int64
	err     error
}

func newFakeQuizStore() *fakeQuizStore {
	return &fakeQuizStore{quizzes: make(map[int64]models.Quiz), nextID: 1}
}

func (f *fakeQuizStore) Insert(_ context.Context, q models.Quiz) (*models.Quiz, error) {
	if f.err != nil {
		return nil, f.err
	}
	q.ID = f.nextID
	q.CreatedAt = time.Now()
	f.nextID++
	f.quizzes[q.ID] = q
	return &q, nil
}

func (f *fakeQuizStore) GetByID(_ context.Context, id int64) (*models.Quiz, error) {
	if f.err != nil {
		return nil, f.err
	}
	q, ok := f.quizzes[id]
	if !ok {
		return nil, models.ErrQuizNotFound
	}
	return &q, nil
}

func (f *fakeQuizStore) GetByIDs(_ context.Context, ids []int64) (map[int64]models.Quiz, error) {
	out := make(map[int64]models.Quiz)
	for _, id := range ids {
		if q, ok := f.quizzes[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

func (f *fakeQuizStore) ListByCreator(_ context.Context, username string) ([]models.Quiz, error) {
	var out []models.Quiz
	for _, q := range f.quizzes {
		if q.CreatedBy == username {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeSubmissionStore struct {
	submissions map[int64]models.Submission
	nextID      int64
	err         error
}

func newFakeSubmissionStore() *fakeSubmissionStore {
	return &fakeSubmissionStore{submissions: make(map[int64]models.Submission), nextID: 1}
}

func (f *fakeSubmissionStore) Insert(_ context.Context, s models.Submission) (*models.Submission, error) {
	if f.err != nil {
		return nil, f.err
	}
	s.ID = f.nextID
	s.DateTaken = time.Now()
	f.nextID++
	f.submissions[s.ID] = s
	return &s, nil
}

func (f *fakeSubmissionStore) GetByID(_ context.Context, id int64) (*models.Submission, error) {
	s, ok := f.submissions[id]
	if !ok {
		return nil, models.ErrSubmissionNotFound
	}
	return &s, nil
}

func (f *fakeSubmissionStore) ListByUsername(_ context.Context, username string) ([]models.Submission, error) {
	var out []models.Submission
	for _, s := range f.submissions {
		if s.Username == username {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubmissionStore) ListByQuiz(_ context.Context, quizID int64) ([]models.Submission, error) {
	var out []models.Submission
	for _, s := range f.submissions {
		if s.QuizID == quizID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubmissionStore) CountByQuizIDs(_ context.Context, quizIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int)
	for _, id := range quizIDs {
		for _, s := range f.submissions {
			if s.QuizID == id {
				counts[id]++
			}
		}
	}
	return counts, nil
}

// fakeQuestionService answers like the question service: known ids resolve,
// unknown ids are dropped, scoring is case-insensitive.
type fakeQuestionService struct {
	known map[int64]string // id -> right answer
	pick  []int64
	down  bool
}

func newFakeQuestionService() *fakeQuestionService {
	return &fakeQuestionService{
		known: map[int64]string{1: "4", 2: "9", 3: "Paris"},
		pick:  []int64{1, 2},
	}
}

func (f *fakeQuestionService) PickForQuiz(_ context.Context, category string, count int) ([]int64, bool, error) {
	if f.down {
		return nil, false, fmt.Errorf("%w: connection refused", models.ErrUpstreamUnavailable)
	}
	if len(f.pick) < count {
		return f.pick, true, nil
	}
	return f.pick[:count], false, nil
}

func (f *fakeQuestionService) ResolvePublic(_ context.Context, ids []int64) ([]models.PublicQuestion, error) {
	if f.down {
		return nil, fmt.Errorf("%w: connection refused", models.ErrUpstreamUnavailable)
	}
	var out []models.PublicQuestion
	for _, id := range ids {
		if _, ok := f.known[id]; ok {
			out = append(out, models.PublicQuestion{ID: id, Title: fmt.Sprintf("question %d", id)})
		}
	}
	return out, nil
}

func (f *fakeQuestionService) ResolveWithAnswers(_ context.Context, ids []int64) ([]models.ReviewQuestion, error) {
	if f.down {
		return nil, fmt.Errorf("%w: connection refused", models.ErrUpstreamUnavailable)
	}
	var out []models.ReviewQuestion
	for _, id := range ids {
		if right, ok := f.known[id]; ok {
			out = append(out, models.ReviewQuestion{ID: id, Title: fmt.Sprintf("question %d", id), RightAnswer: right})
		}
	}
	return out, nil
}

func (f *fakeQuestionService) Score(_ context.Context, answers []models.Answer) (int, error) {
	if f.down {
		return 0, fmt.Errorf("%w: connection refused", models.ErrUpstreamUnavailable)
	}
	score := 0
	for _, a := range answers {
		if right, ok := f.known[a.QuestionID]; ok && right == a.Response {
			score++
		}
	}
	return score, nil
}

type fakeUserDirectory struct {
	ids map[string]int64
}

func (f *fakeUserDirectory) IDByUsername(_ context.Context, username string) (int64, error) {
	id, ok := f.ids[username]
	if !ok {
		return 0, models.ErrUserNotFound
	}
	return id, nil
}

func newOrchestrator() (*quizzes.Orchestrator, *fakeQuizStore, *fakeSubmissionStore, *fakeQuestionService) {
	quizStore := newFakeQuizStore()
	subStore := newFakeSubmissionStore()
	qs := newFakeQuestionService()
	users := &fakeUserDirectory{ids: map[string]int64{"alice": 10}}
	return quizzes.NewOrchestrator(quizStore, subStore, qs, users, nil), quizStore, subStore, qs
}

func TestCreateRandomQuiz(t *testing.T) {
	orch, quizStore, _, _ := newOrchestrator()

	result, err := orch.Create(context.Background(), quizzes.CreateRequest{
		Title:        "Math Basics",
		CategoryName: "math",
		NumQuestions: 2,
	}, "alice")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if result.Shortfall {
		t.Fatal("expected no shortfall")
	}
	if result.QuestionCount != 2 {
		t.Fatalf("expected 2 questions, got %d", result.QuestionCount)
	}

	stored := quizStore.quizzes[result.QuizID]
	if stored.CreatedBy != "alice" || stored.UserID != 10 {
		t.Fatalf("unexpected creator attribution: %+v", stored)
	}
	if len(stored.QuestionIDs) != 2 {
		t.Fatalf("expected 2 stored ids, got %v", stored.QuestionIDs)
	}
}

func TestCreateReportsShortfall(t *testing.T) {
	orch, _, _, _ := newOrchestrator()

	result, err := orch.Create(context.Background(), quizzes.CreateRequest{
		Title:        "Big Quiz",
		CategoryName: "math",
		NumQuestions: 10,
	}, "alice")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !result.Shortfall {
		t.Fatal("expected shortfall flag")
	}
	if result.QuestionCount != 2 || result.Requested != 10 {
		t.Fatalf("unexpected counts: %+v", result)
	}
}

func TestCreateFailsOnEmptyCategory(t *testing.T) {
	orch, _, _, qs := newOrchestrator()
	qs.pick = nil

	_, err := orch.Create(context.Background(), quizzes.CreateRequest{
		Title:        "Empty",
		CategoryName: "history",
		NumQuestions: 5,
	}, "alice")
	if !errors.Is(err, models.ErrCategoryExhausted) {
		t.Fatalf("expected ErrCategoryExhausted, got %v", err)
	}
}

func TestCreateCustomQuizSkipsSelection(t *testing.T) {
	orch, quizStore, _, qs := newOrchestrator()
	qs.down = true // selection must never be called on the custom path

	result, err := orch.Create(context.Background(), quizzes.CreateRequest{
		Title:       "Handpicked",
		QuestionIDs: []int64{3, 1},
	}, "alice")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	stored := quizStore.quizzes[result.QuizID]
	if len(stored.QuestionIDs) != 2 || stored.QuestionIDs[0] != 3 {
		t.Fatalf("expected explicit ids stored as-is, got %v", stored.QuestionIDs)
	}
}

func TestCreateUnknownCreatorKeepsQuiz(t *testing.T) {
	orch, quizStore, _, _ := newOrchestrator()

	result, err := orch.Create(context.Background(), quizzes.CreateRequest{
		Title:       "Orphan",
		QuestionIDs: []int64{1},
	}, "ghost")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if stored := quizStore.quizzes[result.QuizID]; stored.UserID != -1 {
		t.Fatalf("expected sentinel user id -1, got %d", stored.UserID)
	}
}

func TestCreateRejectsEmptyRequest(t *testing.T) {
	orch, _, _, _ := newOrchestrator()

	_, err := orch.Create(context.Background(), quizzes.CreateRequest{Title: "Nothing"}, "alice")
	if !errors.Is(err, quizzes.ErrInvalidCreateRequest) {
		t.Fatalf("expected ErrInvalidCreateRequest, got %v", err)
	}
}

func TestFetchReordersToStoredOrder(t *testing.T) {
	orch, quizStore, _, _ := newOrchestrator()
	quizStore.quizzes[7] = models.Quiz{ID: 7, Title: "Geo", QuestionIDs: []int64{3, 99, 1}}

	detail, err := orch.Fetch(context.Background(), 7)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(detail.Questions) != 2 {
		t.Fatalf("expected unresolvable id dropped, got %d", len(detail.Questions))
	}
	if detail.Questions[0].ID != 3 || detail.Questions[1].ID != 1 {
		t.Fatalf("expected stored order, got %d,%d", detail.Questions[0].ID, detail.Questions[1].ID)
	}
}

func TestFetchUnknownQuiz(t *testing.T) {
	orch, _, _, _ := newOrchestrator()

	if _, err := orch.Fetch(context.Background(), 404); !errors.Is(err, models.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestSubmitScoresAndPersists(t *testing.T) {
	orch, quizStore, subStore, _ := newOrchestrator()
	quizStore.quizzes[7] = models.Quiz{ID: 7, Title: "Math", QuestionIDs: []int64{1, 2}}

	result, sub, err := orch.Submit(context.Background(), 7, "bob", []models.Answer{
		{QuestionID: 1, Response: "4"},
		{QuestionID: 2, Response: "7"},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Score != 1 || result.TotalQuestions != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if sub == nil || subStore.submissions[sub.ID].Username != "bob" {
		t.Fatal("expected submission persisted with username")
	}
}

func TestSubmitPartialSubmission(t *testing.T) {
	orch, quizStore, _, _ := newOrchestrator()
	quizStore.quizzes[7] = models.Quiz{ID: 7, QuestionIDs: []int64{1, 2, 3}}

	result, _, err := orch.Submit(context.Background(), 7, "bob", []models.Answer{
		{QuestionID: 3, Response: "Paris"},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Score != 1 || result.TotalQuestions != 1 {
		t.Fatalf("expected partial submission accepted, got %+v", result)
	}
}

func TestSubmitNothingPersistedWhenScoringFails(t *testing.T) {
	orch, quizStore, subStore, qs := newOrchestrator()
	quizStore.quizzes[7] = models.Quiz{ID: 7, QuestionIDs: []int64{1}}
	qs.down = true

	_, _, err := orch.Submit(context.Background(), 7, "bob", []models.Answer{{QuestionID: 1, Response: "4"}})
	if !errors.Is(err, models.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if len(subStore.submissions) != 0 {
		t.Fatal("expected no submission persisted on scoring failure")
	}
}
