package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/providoor/whatsapp-bot/internal/catalog"
)

// PgxPool is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it in tests.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores orders in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("orders: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts the order and its lines in a single transaction.
func (r *PostgresRepository) Create(ctx context.Context, userID uuid.UUID, status string, dishes []catalog.Dish) (*Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("orders: begin failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	order := &Order{
		ID:        uuid.New(),
		UserID:    userID,
		OrderTime: time.Now().UTC(),
		Status:    status,
	}

	insertOrder := `
		INSERT INTO orders (id, user_id, order_time, order_status)
		VALUES ($1, $2, $3, $4)
		RETURNING order_time
	`
	if err := tx.QueryRow(ctx, insertOrder, order.ID, userID, order.OrderTime, status).Scan(&order.OrderTime); err != nil {
		return nil, fmt.Errorf("orders: insert order failed: %w", err)
	}

	insertLine := `
		INSERT INTO order_dishes (id, order_id, dish_id)
		VALUES ($1, $2, $3)
	`
	for _, dish := range dishes {
		if _, err := tx.Exec(ctx, insertLine, uuid.New(), order.ID, dish.ID); err != nil {
			return nil, fmt.Errorf("orders: insert line failed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("orders: commit failed: %w", err)
	}
	return order, nil
}

// LatestByUser fetches the user's most recent order by order time.
func (r *PostgresRepository) LatestByUser(ctx context.Context, userID uuid.UUID) (*Order, error) {
	query := `
		SELECT id, user_id, order_time, order_status
		FROM orders
		WHERE user_id = $1
		ORDER BY order_time DESC
		LIMIT 1
	`
	var order Order
	row := r.pool.QueryRow(ctx, query, userID)
	if err := row.Scan(&order.ID, &order.UserID, &order.OrderTime, &order.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("orders: select latest failed: %w", err)
	}
	return &order, nil
}

// Lines fetches the order's line items joined with dish details.
func (r *PostgresRepository) Lines(ctx context.Context, orderID uuid.UUID) ([]Line, error) {
	query := `
		SELECT d.id, d.dish_name, COALESCE(d.dish_description, ''), d.price,
		       COALESCE(d.course, ''), COALESCE(d.chef_name, ''), COALESCE(d.dietaries, '')
		FROM order_dishes od
		JOIN dishes d ON d.id = od.dish_id
		WHERE od.order_id = $1
	`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("orders: select lines failed: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.DishID, &line.Name, &line.Description, &line.Price, &line.Course, &line.ChefName, &line.Dietaries); err != nil {
			return nil, fmt.Errorf("orders: scan line failed: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders: rows failed: %w", err)
	}
	return lines, nil
}
