package conversation

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/providoor/whatsapp-bot/internal/observability/metrics"
	"github.com/providoor/whatsapp-bot/pkg/logging"
)

var classifierTracer = otel.Tracer("providoor.internal.conversation.classifier")

const ratingSystemPrompt = `You extract a numerical dish rating from customer feedback about a food order.
Analyse the message and respond with a single integer from 0 to 10, with 0 being
the worst and 10 being the best. Examples: "I'll give it an 8" is 8, "10/10" is 10,
"it was terrible" is 0 or 1. If the user did not provide or intend a rating,
respond with the single word NONE. Do not return anything else.`

// RatingClassifier extracts a dish rating from free text using an LLM.
type RatingClassifier struct {
	llm     LLMClient
	timeout time.Duration
	logger  *logging.Logger
	metrics *metrics.BotMetrics
}

// NewRatingClassifier builds a classifier on top of any LLMClient.
func NewRatingClassifier(llm LLMClient, timeout time.Duration, logger *logging.Logger, botMetrics *metrics.BotMetrics) *RatingClassifier {
	if llm == nil {
		panic("conversation: llm client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RatingClassifier{
		llm:     llm,
		timeout: timeout,
		logger:  logger,
		metrics: botMetrics,
	}
}

var _ Classifier = (*RatingClassifier)(nil)

// Classify asks the model for a rating and parses the answer. Malformed
// model output is reported as IntentNone, not an error.
func (c *RatingClassifier) Classify(ctx context.Context, text string) (Intent, error) {
	ctx, span := classifierTracer.Start(ctx, "conversation.classify",
		trace.WithAttributes(attribute.Int("providoor.text_length", len(text))))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.llm.Complete(ctx, LLMRequest{
		System:      []string{ratingSystemPrompt},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: text}},
		MaxTokens:   16,
		Temperature: 0,
	})
	c.metrics.ObserveClassifierLatency(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		return Intent{Kind: IntentNone}, err
	}

	rating, ok := parseRating(resp.Text)
	if !ok {
		c.logger.Debug("classifier found no rating", "output", resp.Text)
		return Intent{Kind: IntentNone}, nil
	}
	return Intent{Kind: IntentUserRating, Rating: &rating}, nil
}

// parseRating accepts a bare integer between 0 and 10, tolerating surrounding
// whitespace and a trailing period. Everything else means no rating.
func parseRating(output string) (int, bool) {
	cleaned := strings.TrimSpace(output)
	cleaned = strings.TrimSuffix(cleaned, ".")
	if cleaned == "" || strings.EqualFold(cleaned, "NONE") {
		return 0, false
	}
	value, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, false
	}
	if value < 0 || value > 10 {
		return 0, false
	}
	return value, true
}
