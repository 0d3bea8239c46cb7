package submissions

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizgrid/backend/internal/models"
)

// Repository handles submission persistence. Submissions are append-only:
// there is no update or delete path.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a submission repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const submissionColumns = `id, quiz_id, username, score, total_questions, responses, date_taken`

func scanSubmission(row interface{ Scan(...any) error }) (models.Submission, error) {
	var s models.Submission
	var raw []byte
	if err := row.Scan(&s.ID, &s.QuizID, &s.Username, &s.Score, &s.TotalQuestions, &raw, &s.DateTaken); err != nil {
		return s, err
	}
	if err := json.Unmarshal(raw, &s.Responses); err != nil {
		return s, err
	}
	return s, nil
}

// Insert stores a new submission and returns it with id and timestamp set.
// There is no idempotency key, so callers must not retry this on failure.
func (r *Repository) Insert(ctx context.Context, s models.Submission) (*models.Submission, error) {
	raw, err := json.Marshal(s.Responses)
	if err != nil {
		return nil, err
	}
	const stmt = `INSERT INTO submissions (quiz_id, username, score, total_questions, responses)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + submissionColumns
	out, err := scanSubmission(r.pool.QueryRow(ctx, stmt, s.QuizID, s.Username, s.Score, s.TotalQuestions, raw))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByID returns a submission by id, or models.ErrSubmissionNotFound.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	const q = `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	out, err := scanSubmission(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrSubmissionNotFound
		}
		return nil, err
	}
	return &out, nil
}

// ListByUsername returns a submitter's submissions, newest first.
func (r *Repository) ListByUsername(ctx context.Context, username string) ([]models.Submission, error) {
	const q = `SELECT ` + submissionColumns + ` FROM submissions WHERE username = $1 ORDER BY date_taken DESC`
	return r.list(ctx, q, username)
}

// ListByQuiz returns every submission against a quiz, newest first.
func (r *Repository) ListByQuiz(ctx context.Context, quizID int64) ([]models.Submission, error) {
	const q = `SELECT ` + submissionColumns + ` FROM submissions WHERE quiz_id = $1 ORDER BY date_taken DESC`
	return r.list(ctx, q, quizID)
}

// CountByQuizIDs returns attempt counts per quiz id in one grouped query.
func (r *Repository) CountByQuizIDs(ctx context.Context, quizIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(quizIDs))
	if len(quizIDs) == 0 {
		return counts, nil
	}
	const q = `SELECT quiz_id, COUNT(*) FROM submissions WHERE quiz_id = ANY($1) GROUP BY quiz_id`
	rows, err := r.pool.Query(ctx, q, quizIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = int(n)
	}
	return counts, rows.Err()
}

func (r *Repository) list(ctx context.Context, query string, arg interface{}) ([]models.Submission, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
