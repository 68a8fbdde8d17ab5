package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository reads the dish catalog from the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// ListAll fetches every dish in the catalog.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]Dish, error) {
	query := `
		SELECT id, dish_name, COALESCE(dish_description, ''), price, COALESCE(course, ''),
		       COALESCE(chef_name, ''), COALESCE(dietaries, '')
		FROM dishes
		ORDER BY dish_name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: select failed: %w", err)
	}
	defer rows.Close()

	var dishes []Dish
	for rows.Next() {
		var d Dish
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Price, &d.Course, &d.ChefName, &d.Dietaries); err != nil {
			return nil, fmt.Errorf("catalog: scan failed: %w", err)
		}
		dishes = append(dishes, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: rows failed: %w", err)
	}
	return dishes, nil
}
