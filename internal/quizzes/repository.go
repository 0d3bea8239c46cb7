package quizzes

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizgrid/backend/internal/models"
)

// Repository handles quiz persistence. The question id list is written once
// at creation and never updated.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a quiz repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const quizColumns = `id, title, category, created_by, user_id, question_ids, created_at`

func scanQuiz(row interface{ Scan(...any) error }) (models.Quiz, error) {
	var q models.Quiz
	err := row.Scan(&q.ID, &q.Title, &q.Category, &q.CreatedBy, &q.UserID, &q.QuestionIDs, &q.CreatedAt)
	return q, err
}

// Insert stores a new quiz and returns it with id and timestamp set.
func (r *Repository) Insert(ctx context.Context, q models.Quiz) (*models.Quiz, error) {
	const stmt = `INSERT INTO quizzes (title, category, created_by, user_id, question_ids)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + quizColumns
	out, err := scanQuiz(r.pool.QueryRow(ctx, stmt, q.Title, q.Category, q.CreatedBy, q.UserID, q.QuestionIDs))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByID returns a quiz by id, or models.ErrQuizNotFound.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Quiz, error) {
	const q = `SELECT ` + quizColumns + ` FROM quizzes WHERE id = $1`
	out, err := scanQuiz(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrQuizNotFound
		}
		return nil, err
	}
	return &out, nil
}

// GetByIDs returns the quizzes whose ids exist, keyed by id. Missing ids are
// absent from the map; callers substitute defaults.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) (map[int64]models.Quiz, error) {
	out := make(map[int64]models.Quiz, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out[q.ID] = q
	}
	return out, rows.Err()
}

// ListByCreator returns a creator's quizzes, newest first.
func (r *Repository) ListByCreator(ctx context.Context, username string) ([]models.Quiz, error) {
	const q = `SELECT ` + quizColumns + ` FROM quizzes WHERE created_by = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Quiz
	for rows.Next() {
		qz, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, qz)
	}
	return list, rows.Err()
}
