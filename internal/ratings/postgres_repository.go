package ratings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores ratings in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("ratings: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts a new rating row. The unique index on (user_id, order_id)
// rejects duplicates, surfaced as ErrDuplicateRating.
func (r *PostgresRepository) Create(ctx context.Context, userID, orderID uuid.UUID, value int, feedback string) (*Rating, error) {
	rating := &Rating{
		ID:       uuid.New(),
		UserID:   userID,
		OrderID:  orderID,
		Rating:   value,
		Feedback: feedback,
	}

	query := `
		INSERT INTO ratings (id, user_id, order_id, rating, original_feedback)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query, rating.ID, userID, orderID, value, feedback).Scan(&rating.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateRating
		}
		return nil, fmt.Errorf("ratings: insert failed: %w", err)
	}
	return rating, nil
}

// ListByUser fetches the user's ratings joined with order time and status.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]UserRating, error) {
	query := `
		SELECT rt.id, rt.user_id, rt.order_id, rt.rating, rt.original_feedback, rt.created_at,
		       o.order_time, o.order_status
		FROM ratings rt
		JOIN orders o ON o.id = rt.order_id
		WHERE rt.user_id = $1
		ORDER BY rt.created_at
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ratings: select failed: %w", err)
	}
	defer rows.Close()

	var out []UserRating
	for rows.Next() {
		var ur UserRating
		if err := rows.Scan(&ur.ID, &ur.UserID, &ur.OrderID, &ur.Rating, &ur.Feedback, &ur.CreatedAt, &ur.OrderTime, &ur.OrderStatus); err != nil {
			return nil, fmt.Errorf("ratings: scan failed: %w", err)
		}
		out = append(out, ur)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ratings: rows failed: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
