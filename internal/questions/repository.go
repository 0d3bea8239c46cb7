package questions

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizgrid/backend/internal/models"
)

// Repository handles question persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a question repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const questionColumns = `id, title, option1, option2, option3, option4, right_answer, category, created_at`

func scanQuestion(row interface{ Scan(...any) error }) (models.Question, error) {
	var q models.Question
	err := row.Scan(&q.ID, &q.Title, &q.Option1, &q.Option2, &q.Option3, &q.Option4,
		&q.RightAnswer, &q.Category, &q.CreatedAt)
	return q, err
}

// GetAll returns every question in the bank.
func (r *Repository) GetAll(ctx context.Context) ([]models.Question, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

// GetByCategory returns all questions in a category.
func (r *Repository) GetByCategory(ctx context.Context, category string) ([]models.Question, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions WHERE category = $1 ORDER BY id`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

// GetByIDs returns the questions whose ids exist; ids that do not resolve are
// simply absent from the result.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

// PickRandomIDs returns up to count random question ids from a category,
// without replacement. Fewer rows than requested is not an error.
func (r *Repository) PickRandomIDs(ctx context.Context, category string, count int) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM questions WHERE category = $1 ORDER BY random() LIMIT $2`, category, count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Insert adds a question to the bank.
func (r *Repository) Insert(ctx context.Context, q models.Question) (*models.Question, error) {
	const stmt = `INSERT INTO questions (title, option1, option2, option3, option4, right_answer, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + questionColumns
	out, err := scanQuestion(r.pool.QueryRow(ctx, stmt,
		q.Title, q.Option1, q.Option2, q.Option3, q.Option4, q.RightAnswer, q.Category))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// InsertBatch adds many questions, returning how many were stored.
func (r *Repository) InsertBatch(ctx context.Context, list []models.Question) (int, error) {
	inserted := 0
	for _, q := range list {
		if _, err := r.Insert(ctx, q); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// Update replaces a question's fields.
func (r *Repository) Update(ctx context.Context, id int64, q models.Question) (*models.Question, error) {
	const stmt = `UPDATE questions
		SET title = $2, option1 = $3, option2 = $4, option3 = $5, option4 = $6, right_answer = $7, category = $8
		WHERE id = $1
		RETURNING ` + questionColumns
	out, err := scanQuestion(r.pool.QueryRow(ctx, stmt, id,
		q.Title, q.Option1, q.Option2, q.Option3, q.Option4, q.RightAnswer, q.Category))
	if err != nil {
		return nil, err
	}
	return &out, nil
}
