package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("GEMINI_MODEL_ID", "")
	t.Setenv("ORDER_DISH_COUNT", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.GeminiModelID != "gemini-2.5-flash" {
		t.Fatalf("expected default model id, got %s", cfg.GeminiModelID)
	}
	if cfg.ClassifierTimeout != 15*time.Second {
		t.Fatalf("expected default classifier timeout, got %s", cfg.ClassifierTimeout)
	}
	if cfg.OrderDishCount != 2 {
		t.Fatalf("expected two dishes per mock order, got %d", cfg.OrderDishCount)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_WHATSAPP_NUMBER", "whatsapp:+14155238886")
	t.Setenv("CLASSIFIER_TIMEOUT", "5s")
	t.Setenv("ORDER_DISH_COUNT", "3")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.TwilioAccountSID != "AC123" {
		t.Fatalf("expected twilio sid override, got %s", cfg.TwilioAccountSID)
	}
	if cfg.TwilioWhatsAppNumber != "whatsapp:+14155238886" {
		t.Fatalf("expected whatsapp number override, got %s", cfg.TwilioWhatsAppNumber)
	}
	if cfg.ClassifierTimeout != 5*time.Second {
		t.Fatalf("expected timeout override, got %s", cfg.ClassifierTimeout)
	}
	if cfg.OrderDishCount != 3 {
		t.Fatalf("expected dish count override, got %d", cfg.OrderDishCount)
	}
}
