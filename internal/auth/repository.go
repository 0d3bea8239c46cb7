package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizgrid/backend/internal/models"
)

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a user repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByUsername returns a user by username, or models.ErrUserNotFound.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const q = `SELECT id, username, password, role, created_at FROM users WHERE username = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, username).Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. A unique violation on username maps to
// models.ErrDuplicateUsername.
func (r *Repository) Create(ctx context.Context, username, passwordHash string, role models.Role) (*models.User, error) {
	const q = `INSERT INTO users (username, password, role) VALUES ($1, $2, $3)
		RETURNING id, username, password, role, created_at`
	var u models.User
	err := r.pool.QueryRow(ctx, q, username, passwordHash, string(role)).
		Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrDuplicateUsername
		}
		return nil, err
	}
	return &u, nil
}

// IDByUsername resolves a username to its numeric user id.
func (r *Repository) IDByUsername(ctx context.Context, username string) (int64, error) {
	const q = `SELECT id FROM users WHERE username = $1`
	var id int64
	err := r.pool.QueryRow(ctx, q, username).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, models.ErrUserNotFound
		}
		return 0, err
	}
	return id, nil
}
