package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/quizgrid/backend/internal/quizzes"
	"github.com/quizgrid/backend/pkg/queue"
	"github.com/quizgrid/backend/pkg/storage"
)

// report is the JSON document uploaded to S3 for each generated quiz report.
type report struct {
	GeneratedAt time.Time              `json:"generatedAt"`
	RequestedBy string                 `json:"requestedBy"`
	Analytics   *quizzes.QuizAnalytics `json:"analytics"`
}

// ReportProcessor processes quiz report jobs: project analytics, upload the
// report JSON to S3 and record the latest report key in Redis.
type ReportProcessor struct {
	projector *quizzes.Projector
	s3        *storage.S3
	queue     *queue.Queue
	rdb       *redis.Client
	logger    *zap.Logger
}

// NewReportProcessor creates a quiz report processor.
func NewReportProcessor(projector *quizzes.Projector, s3 *storage.S3, q *queue.Queue, rdb *redis.Client, logger *zap.Logger) *ReportProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportProcessor{projector: projector, s3: s3, queue: q, rdb: rdb, logger: logger}
}

// Process executes one quiz report job.
func (p *ReportProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeQuizReport {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.QuizReportPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	analytics, err := p.projector.QuizAnalytics(ctx, payload.QuizID)
	if err != nil {
		return fmt.Errorf("project analytics: %w", err)
	}

	now := time.Now().UTC()
	body, err := json.Marshal(report{
		GeneratedAt: now,
		RequestedBy: payload.RequestedBy,
		Analytics:   analytics,
	})
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	key := storage.ReportKey(payload.QuizID, now)
	if _, err := p.s3.UploadJSON(ctx, p.s3.ReportsBucket(), key, body); err != nil {
		return fmt.Errorf("s3 upload: %w", err)
	}

	if err := p.rdb.Set(ctx, quizzes.ReportLatestKey(payload.QuizID), key, 0).Err(); err != nil {
		p.logger.Error("record latest report key failed", zap.Int64("quiz_id", payload.QuizID), zap.Error(err))
		return fmt.Errorf("record latest key: %w", err)
	}

	p.logger.Info("quiz report generated",
		zap.Int64("quiz_id", payload.QuizID),
		zap.Int("attempts", analytics.AttemptCount),
		zap.String("s3_key", key),
	)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *ReportProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("report worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
