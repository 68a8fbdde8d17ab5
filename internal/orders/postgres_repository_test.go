package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/providoor/whatsapp-bot/internal/catalog"
)

func TestCreateInsertsOrderAndLines(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	userID := uuid.New()
	dishes := []catalog.Dish{
		{ID: uuid.New(), Name: "Soup", Price: 5, Course: "starter"},
		{ID: uuid.New(), Name: "Steak", Price: 40, Course: "main"},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(pgxmock.AnyArg(), userID, pgxmock.AnyArg(), StatusDelivered).
		WillReturnRows(pgxmock.NewRows([]string{"order_time"}).AddRow(time.Now().UTC()))
	mock.ExpectExec("INSERT INTO order_dishes").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), dishes[0].ID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_dishes").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), dishes[1].ID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := NewPostgresRepository(mock)
	order, err := repo.Create(context.Background(), userID, StatusDelivered, dishes)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.UserID != userID || order.Status != StatusDelivered {
		t.Fatalf("unexpected order: %+v", order)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLatestByUserNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	userID := uuid.New()
	mock.ExpectQuery("SELECT id, user_id, order_time").
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepository(mock)
	if _, err := repo.LatestByUser(context.Background(), userID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLinesJoinsDishDetails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	orderID := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "dish_name", "dish_description", "price", "course", "chef_name", "dietaries"}).
		AddRow(uuid.New(), "Soup", "Roasted pumpkin", 5.0, "starter", "Marco", "vegetarian")
	mock.ExpectQuery("SELECT d.id, d.dish_name").WithArgs(orderID).WillReturnRows(rows)

	repo := NewPostgresRepository(mock)
	lines, err := repo.Lines(context.Background(), orderID)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 1 || lines[0].Name != "Soup" || lines[0].Course != "starter" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

func TestInMemoryLatestByUser(t *testing.T) {
	repo := NewInMemoryRepository()
	userID := uuid.New()

	if _, err := repo.LatestByUser(context.Background(), userID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	first, err := repo.Create(context.Background(), userID, StatusDelivered, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_ = first

	latest, err := repo.LatestByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.UserID != userID {
		t.Fatalf("unexpected order: %+v", latest)
	}
}

func TestPickRandomDishesDistinct(t *testing.T) {
	dishes := make([]catalog.Dish, 6)
	for i := range dishes {
		dishes[i] = catalog.Dish{ID: uuid.New()}
	}

	for i := 0; i < 50; i++ {
		picked, err := PickRandomDishes(dishes, 2)
		if err != nil {
			t.Fatalf("pick: %v", err)
		}
		if len(picked) != 2 {
			t.Fatalf("expected 2 dishes, got %d", len(picked))
		}
		if picked[0].ID == picked[1].ID {
			t.Fatal("expected distinct dish ids")
		}
	}
}

func TestPickRandomDishesCatalogTooSmall(t *testing.T) {
	if _, err := PickRandomDishes([]catalog.Dish{{ID: uuid.New()}}, 2); err == nil {
		t.Fatal("expected error when catalog is smaller than requested count")
	}
}
