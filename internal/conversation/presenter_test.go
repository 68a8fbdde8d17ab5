package conversation

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/providoor/whatsapp-bot/internal/orders"
	"github.com/providoor/whatsapp-bot/internal/ratings"
)

func TestFormatOrderEmpty(t *testing.T) {
	out := FormatOrder(nil)
	if out != "Your order includes:\n" {
		t.Fatalf("expected header-only output, got %q", out)
	}
	if strings.Contains(out, "===") {
		t.Fatal("expected no dish blocks for an empty order")
	}
}

func TestFormatOrderSingleDish(t *testing.T) {
	out := FormatOrder([]orders.Line{{Name: "Soup", Price: 5, Course: "starter"}})
	for _, want := range []string{"Soup", "5", "starter", "===", "Dish:", "Price:", "Course:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestFormatOrderPriceRendering(t *testing.T) {
	out := FormatOrder([]orders.Line{{Name: "Steak", Price: 14.5, Course: "main"}})
	if !strings.Contains(out, "Price: 14.5\n") {
		t.Fatalf("expected fractional price to render exactly, got %q", out)
	}
	out = FormatOrder([]orders.Line{{Name: "Soup", Price: 5, Course: "starter"}})
	if !strings.Contains(out, "Price: 5\n") {
		t.Fatalf("expected whole price without decimals, got %q", out)
	}
}

func TestFormatRatingsReportEmpty(t *testing.T) {
	out := FormatRatingsReport("whatsapp:+14155550100", nil)
	if out != "No ratings found for user with WhatsApp number whatsapp:+14155550100." {
		t.Fatalf("expected the no-ratings sentinel, got %q", out)
	}
}

func TestFormatRatingsReportSingleRecord(t *testing.T) {
	record := ratings.UserRating{
		ID:          uuid.New(),
		Rating:      8,
		Feedback:    "Best pumpkin soup I've had",
		OrderTime:   time.Date(2024, 3, 1, 19, 30, 0, 0, time.UTC),
		OrderStatus: "delivered",
	}
	out := FormatRatingsReport("whatsapp:+14155550100", []ratings.UserRating{record})

	for _, want := range []string{
		"Ratings for user with WhatsApp number whatsapp:+14155550100:",
		"Rating: 8",
		"Feedback: Best pumpkin soup I've had",
		"Order Status: delivered",
		"2024-03-01 19:30:00",
		strings.Repeat("-", 30),
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected report to contain %q, got %q", want, out)
		}
	}
}
