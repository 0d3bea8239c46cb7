package queue_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/quizgrid/backend/pkg/queue"
)

func newTestQueue(t *testing.T) (*queue.Queue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return queue.NewQueue(rdb, nil), mr
}

func TestEnqueueDequeueRoundTrip(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	if err := q.EnqueueQuizReport(ctx, queue.QuizReportPayload{QuizID: 7, RequestedBy: "bob"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	job, source, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue failed: %v", err)
	}
	if source != queue.QueueReports {
		t.Fatalf("expected job from %s, got %s", queue.QueueReports, source)
	}
	if job.Type != queue.JobTypeQuizReport || job.ID == "" {
		t.Fatalf("unexpected job envelope: %+v", job)
	}

	var payload queue.QuizReportPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.QuizID != 7 || payload.RequestedBy != "bob" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestRetryIncrementsAttempt(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	if err := q.EnqueueQuizReport(ctx, queue.QuizReportPayload{QuizID: 7}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	job, _, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue failed: %v", err)
	}

	if err := q.Retry(ctx, job); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	retried, _, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue retried failed: %v", err)
	}
	if retried.Attempt != 1 || retried.ID != job.ID {
		t.Fatalf("unexpected retried job: %+v", retried)
	}
}

func TestRetryExhaustionMovesToDLQ(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	if err := q.EnqueueQuizReport(ctx, queue.QuizReportPayload{QuizID: 7}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	job, _, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue failed: %v", err)
	}

	job.Attempt = queue.MaxRetries - 1
	if err := q.Retry(ctx, job); err != nil {
		t.Fatalf("retry failed: %v", err)
	}

	if n, _ := mr.List(queue.QueueReports); len(n) != 0 {
		t.Fatalf("expected reports queue empty, got %d entries", len(n))
	}
	dlq, err := mr.List(queue.QueueDLQ)
	if err != nil {
		t.Fatalf("read dlq: %v", err)
	}
	if len(dlq) != 1 {
		t.Fatalf("expected 1 DLQ entry, got %d", len(dlq))
	}
	var dead queue.Job
	if err := json.Unmarshal([]byte(dlq[0]), &dead); err != nil {
		t.Fatalf("unmarshal dlq job: %v", err)
	}
	if dead.Attempt != queue.MaxRetries {
		t.Fatalf("expected attempt %d, got %d", queue.MaxRetries, dead.Attempt)
	}
}
