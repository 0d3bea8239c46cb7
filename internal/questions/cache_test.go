package questions_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/quizgrid/backend/internal/questions"
)

func newCacheFixture(t *testing.T) (*questions.Cache, *fakeStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return questions.NewCache(rdb, time.Minute, nil), newFakeStore(), mr
}

func TestCacheFillsMissesFromStore(t *testing.T) {
	cache, store, _ := newCacheFixture(t)
	selector := questions.NewSelector(store, cache, nil)

	out, err := selector.ResolvePublic(context.Background(), []int64{1, 2})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(out) != 2 || out[0].ID != 1 || out[1].ID != 2 {
		t.Fatalf("unexpected result: %+v", out)
	}
	if store.getCalls != 1 {
		t.Fatalf("expected one store read on cold cache, got %d", store.getCalls)
	}
}

func TestCacheServesHitsWithoutStore(t *testing.T) {
	cache, store, _ := newCacheFixture(t)
	selector := questions.NewSelector(store, cache, nil)

	if _, err := selector.ResolvePublic(context.Background(), []int64{1, 2}); err != nil {
		t.Fatalf("warm-up resolve failed: %v", err)
	}

	out, err := selector.ResolvePublic(context.Background(), []int64{1, 2})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if store.getCalls != 1 {
		t.Fatalf("expected warm cache to skip the store, got %d reads", store.getCalls)
	}
}

func TestCachePartialHitLoadsOnlyMisses(t *testing.T) {
	cache, store, _ := newCacheFixture(t)
	selector := questions.NewSelector(store, cache, nil)

	if _, err := selector.ResolvePublic(context.Background(), []int64{1}); err != nil {
		t.Fatalf("warm-up resolve failed: %v", err)
	}

	out, err := selector.ResolvePublic(context.Background(), []int64{1, 3})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(out) != 2 || out[0].ID != 1 || out[1].ID != 3 {
		t.Fatalf("unexpected result: %+v", out)
	}
	if store.getCalls != 2 {
		t.Fatalf("expected exactly one extra store read for the miss, got %d total", store.getCalls)
	}
}

func TestCacheExpiryRefills(t *testing.T) {
	cache, store, mr := newCacheFixture(t)
	selector := questions.NewSelector(store, cache, nil)

	if _, err := selector.ResolvePublic(context.Background(), []int64{1}); err != nil {
		t.Fatalf("warm-up resolve failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := selector.ResolvePublic(context.Background(), []int64{1}); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if store.getCalls != 2 {
		t.Fatalf("expected refill after expiry, got %d store reads", store.getCalls)
	}
}

func TestCacheNeverServesAnswers(t *testing.T) {
	cache, store, mr := newCacheFixture(t)
	selector := questions.NewSelector(store, cache, nil)

	if _, err := selector.ResolvePublic(context.Background(), []int64{1}); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	for _, key := range mr.Keys() {
		raw, err := mr.Get(key)
		if err != nil {
			t.Fatalf("read cache key %s: %v", key, err)
		}
		if strings.Contains(raw, "rightAnswer") {
			t.Fatalf("cached entry leaks the right answer: %s", raw)
		}
	}

	// Review views bypass the cache entirely.
	if _, err := selector.ResolveWithAnswers(context.Background(), []int64{1}); err != nil {
		t.Fatalf("resolve with answers failed: %v", err)
	}
	if store.getCalls != 2 {
		t.Fatalf("expected review path to hit the store, got %d reads", store.getCalls)
	}
}
