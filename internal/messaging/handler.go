package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/providoor/whatsapp-bot/internal/conversation"
	"github.com/providoor/whatsapp-bot/internal/observability/metrics"
	"github.com/providoor/whatsapp-bot/pkg/logging"
)

var webhookTracer = otel.Tracer("providoor.internal.messaging.webhook")

const testGreeting = "Hello from Providoor Bot!"

// InboundDispatcher is the conversation loop the webhook hands messages to.
type InboundDispatcher interface {
	HandleInbound(ctx context.Context, from, body string) (conversation.Outcome, error)
}

// Handler handles messaging webhook requests.
type Handler struct {
	webhookSecret string
	dispatcher    InboundDispatcher
	messenger     conversation.ReplyMessenger
	botNumber     string
	logger        *logging.Logger
	metrics       *metrics.BotMetrics
}

// NewHandler creates a new messaging handler.
func NewHandler(webhookSecret string, dispatcher InboundDispatcher, messenger conversation.ReplyMessenger, botNumber string, logger *logging.Logger, botMetrics *metrics.BotMetrics) *Handler {
	if dispatcher == nil {
		panic("messaging: dispatcher cannot be nil")
	}
	if messenger == nil {
		panic("messaging: messenger cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		webhookSecret: webhookSecret,
		dispatcher:    dispatcher,
		messenger:     messenger,
		botNumber:     botNumber,
		logger:        logger,
		metrics:       botMetrics,
	}
}

// Ping handles GET /ping requests.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"message": "pong"})
}

// HealthCheck handles GET /health requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// WhatsAppMessage handles POST /whatsapp/message requests: the inbound
// webhook for user messages.
func (h *Handler) WhatsAppMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := webhookTracer.Start(r.Context(), "messaging.whatsapp.webhook")
	defer span.End()
	start := time.Now()

	if h.webhookSecret != "" {
		if !ValidateTwilioSignature(r, h.webhookSecret, buildAbsoluteURL(r)) {
			h.logger.Warn("invalid twilio signature")
			span.RecordError(errors.New("invalid twilio signature"))
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	inbound, err := parseInbound(r)
	if err != nil {
		h.logger.Error("failed to parse inbound message", "error", err)
		span.RecordError(err)
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Malformed request body."})
		return
	}
	if inbound.From == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "No sender information found."})
		return
	}
	span.SetAttributes(
		attribute.String("providoor.from", inbound.From),
		attribute.String("providoor.message_sid", inbound.MessageSid),
	)

	outcome, err := h.dispatcher.HandleInbound(ctx, inbound.From, inbound.Body)
	if err != nil {
		h.logger.Error("inbound dispatch failed", "error", err, "from", inbound.From)
		span.RecordError(err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal error."})
		return
	}

	h.logger.Info("inbound message handled",
		"from", inbound.From,
		"branch", outcome.Branch,
		"replies_sent", outcome.RepliesSent,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	body := map[string]any{"message": outcome.Message}
	if outcome.Data != "" {
		body["data"] = outcome.Data
	}
	writeJSON(w, http.StatusOK, body)
}

// WhatsAppTest handles POST /whatsapp/test requests: sends a fixed greeting
// to the given number.
func (h *Handler) WhatsAppTest(w http.ResponseWriter, r *http.Request) {
	ctx, span := webhookTracer.Start(r.Context(), "messaging.whatsapp.test")
	defer span.End()

	inbound, err := parseInbound(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Malformed request body."})
		return
	}
	if inbound.From == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "No sender information found."})
		return
	}

	if err := h.messenger.SendReply(ctx, conversation.OutboundReply{
		From: h.botNumber,
		To:   inbound.From,
		Body: testGreeting,
	}); err != nil {
		h.logger.Error("test message send failed", "error", err, "to", inbound.From)
		span.RecordError(err)
		h.metrics.ObserveOutbound("error")
	} else {
		h.metrics.ObserveOutbound("sent")
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "WhatsAPP Test Message Sent"})
}

// parseInbound accepts either Twilio's form encoding or a JSON body with the
// same field names.
func parseInbound(r *http.Request) (*InboundMessage, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var msg InboundMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			return nil, err
		}
		return &msg, nil
	}
	return ParseInboundMessage(r)
}

func buildAbsoluteURL(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil {
		if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
			scheme = forwarded
		} else {
			scheme = "http"
		}
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
