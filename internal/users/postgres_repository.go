package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores users in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("users: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// GetOrCreate inserts the address if unseen and returns the row either way.
// The unique constraint on whatsapp_number plus ON CONFLICT DO NOTHING makes
// the lookup-or-create safe under concurrent deliveries of the same address.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, whatsappNumber string) (*User, bool, error) {
	if whatsappNumber == "" {
		return nil, false, ErrMissingNumber
	}

	insert := `
		INSERT INTO users (id, whatsapp_number)
		VALUES ($1, $2)
		ON CONFLICT (whatsapp_number) DO NOTHING
		RETURNING id, created_at
	`
	user := &User{WhatsAppNumber: whatsappNumber}
	err := r.pool.QueryRow(ctx, insert, uuid.New(), whatsappNumber).Scan(&user.ID, &user.CreatedAt)
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("users: insert failed: %w", err)
	}

	// The address already exists, possibly inserted by a concurrent delivery.
	query := `
		SELECT id, whatsapp_number, COALESCE(display_name, ''), COALESCE(email, ''), created_at
		FROM users
		WHERE whatsapp_number = $1
	`
	row := r.pool.QueryRow(ctx, query, whatsappNumber)
	if err := row.Scan(&user.ID, &user.WhatsAppNumber, &user.DisplayName, &user.Email, &user.CreatedAt); err != nil {
		return nil, false, fmt.Errorf("users: select failed: %w", err)
	}
	return user, false, nil
}
