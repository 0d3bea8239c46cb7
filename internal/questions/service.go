package questions

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/quizgrid/backend/internal/models"
)

// Store is the persistence surface the selector needs.
type Store interface {
	PickRandomIDs(ctx context.Context, category string, count int) ([]int64, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Question, error)
}

// Selector picks questions for quizzes, resolves ids to question views and
// scores submitted answers.
type Selector struct {
	store  Store
	cache  *Cache // optional; nil disables caching
	logger *zap.Logger
}

// NewSelector creates a question selector.
func NewSelector(store Store, cache *Cache, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{store: store, cache: cache, logger: logger}
}

// PickForQuiz returns up to count random question ids from a category.
// When the category holds fewer questions than requested the shorter list is
// returned with shortfall=true; ids are never fabricated.
func (s *Selector) PickForQuiz(ctx context.Context, category string, count int) (ids []int64, shortfall bool, err error) {
	ids, err = s.store.PickRandomIDs(ctx, category, count)
	if err != nil {
		return nil, false, err
	}
	if len(ids) < count {
		s.logger.Warn("category shortfall",
			zap.String("category", category),
			zap.Int("requested", count),
			zap.Int("available", len(ids)),
		)
		shortfall = true
	}
	return ids, shortfall, nil
}

// ResolvePublic expands ids to answer-stripped question views. Unresolvable
// ids are dropped silently; resolvable ids come back in input order.
func (s *Selector) ResolvePublic(ctx context.Context, ids []int64) ([]models.PublicQuestion, error) {
	if s.cache != nil {
		return s.cache.GetPublic(ctx, ids, s.loadPublic)
	}
	return s.loadPublic(ctx, ids)
}

func (s *Selector) loadPublic(ctx context.Context, ids []int64) ([]models.PublicQuestion, error) {
	list, err := s.store.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.PublicQuestion, len(list))
	for _, q := range list {
		byID[q.ID] = q.ToPublic()
	}
	out := make([]models.PublicQuestion, 0, len(byID))
	for _, id := range ids {
		if pq, ok := byID[id]; ok {
			out = append(out, pq)
		}
	}
	return out, nil
}

// ResolveWithAnswers expands ids to review views including the right answer.
// Used only on the post-submission review path; never cached.
func (s *Selector) ResolveWithAnswers(ctx context.Context, ids []int64) ([]models.ReviewQuestion, error) {
	list, err := s.store.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.ReviewQuestion, len(list))
	for _, q := range list {
		byID[q.ID] = q.ToReview()
	}
	out := make([]models.ReviewQuestion, 0, len(byID))
	for _, id := range ids {
		if rq, ok := byID[id]; ok {
			out = append(out, rq)
		}
	}
	return out, nil
}

// Score counts submitted answers matching the stored right answer,
// case-insensitively. Answers referencing unknown ids score as wrong.
func (s *Selector) Score(ctx context.Context, answers []models.Answer) (int, error) {
	if len(answers) == 0 {
		return 0, nil
	}
	ids := make([]int64, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}
	list, err := s.store.GetByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	rightByID := make(map[int64]string, len(list))
	for _, q := range list {
		rightByID[q.ID] = q.RightAnswer
	}
	score := 0
	for _, a := range answers {
		if right, ok := rightByID[a.QuestionID]; ok && strings.EqualFold(a.Response, right) {
			score++
		}
	}
	return score, nil
}
