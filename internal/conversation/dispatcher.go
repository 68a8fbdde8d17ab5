package conversation

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/providoor/whatsapp-bot/internal/catalog"
	"github.com/providoor/whatsapp-bot/internal/observability/metrics"
	"github.com/providoor/whatsapp-bot/internal/orders"
	"github.com/providoor/whatsapp-bot/internal/ratings"
	"github.com/providoor/whatsapp-bot/internal/users"
	"github.com/providoor/whatsapp-bot/pkg/logging"
)

var dispatcherTracer = otel.Tracer("providoor.internal.conversation.dispatcher")

// HelpText lists the commands the bot understands.
const HelpText = `(Mockup Commands):

REPLY "/new" to place a new order.
REPLY "/latest" to check the latest order status.
REPLY "/recommend" to get recommendations.
REPLY "/ratings" to get all my ratings.
REPLY "/help" to check this message again.`

const (
	recommendReply  = "Recommendations coming soon!"
	noPendingReply  = "No pending orders found."
	ratingThanks    = "Thanks for your feedback! We will use it for future recommendations."
	repliedMessage  = "Providoor bot: WhatsAPP message Replied"
	newOrderMessage = "Providoor bot: Create a random order"
	latestMessage   = "Providoor bot: Returned the latest order"
	recommendMsg    = "Providoor bot: Provide recommendations"
	ratingsMessage  = "Providoor bot: All user ratings"
	helpMessage     = "Providoor bot: Help message"
)

// Branch identifies which path of the dispatch loop handled a message.
type Branch string

const (
	BranchWelcome         Branch = "welcome"
	BranchNewOrder        Branch = "new_order"
	BranchLatestOrder     Branch = "latest_order"
	BranchRecommend       Branch = "recommend"
	BranchRatings         Branch = "ratings"
	BranchHelp            Branch = "help"
	BranchRatingRecorded  Branch = "rating_recorded"
	BranchRatingDuplicate Branch = "rating_duplicate"
	BranchNoOrder         Branch = "no_order"
	BranchNoIntent        Branch = "no_intent"
)

// Outcome reports what the dispatcher did with one inbound message. Message
// and Data feed the HTTP response body; RepliesSent counts outbound sends
// that actually succeeded.
type Outcome struct {
	Branch      Branch
	Message     string
	Data        string
	RepliesSent int
}

// command is the closed set of literal command tokens. Matching is exact and
// case-sensitive with no trimming, preserving the provider-facing behavior.
type command int

const (
	cmdNone command = iota
	cmdNew
	cmdLatest
	cmdRecommend
	cmdRatings
	cmdHelp
)

func parseCommand(body string) command {
	switch body {
	case "/new":
		return cmdNew
	case "/latest":
		return cmdLatest
	case "/recommend":
		return cmdRecommend
	case "/ratings":
		return cmdRatings
	case "/help":
		return cmdHelp
	default:
		return cmdNone
	}
}

// Dispatcher owns the decision logic for inbound messages: identity
// resolution, command dispatch, intent classification, state mutation, and
// reply delivery.
type Dispatcher struct {
	users      users.Repository
	catalog    catalog.Repository
	orders     orders.Repository
	ratings    ratings.Repository
	classifier Classifier
	messenger  ReplyMessenger
	logger     *logging.Logger
	metrics    *metrics.BotMetrics

	botNumber string
	dishCount int
}

// DispatcherConfig carries the collaborators for NewDispatcher.
type DispatcherConfig struct {
	Users      users.Repository
	Catalog    catalog.Repository
	Orders     orders.Repository
	Ratings    ratings.Repository
	Classifier Classifier // optional; nil means free text is never actionable
	Messenger  ReplyMessenger
	Logger     *logging.Logger
	Metrics    *metrics.BotMetrics
	BotNumber  string
	DishCount  int
}

// NewDispatcher wires up the conversation loop.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Users == nil || cfg.Catalog == nil || cfg.Orders == nil || cfg.Ratings == nil {
		panic("conversation: repositories required")
	}
	if cfg.Messenger == nil {
		panic("conversation: messenger required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.DishCount <= 0 {
		cfg.DishCount = 2
	}
	return &Dispatcher{
		users:      cfg.Users,
		catalog:    cfg.Catalog,
		orders:     cfg.Orders,
		ratings:    cfg.Ratings,
		classifier: cfg.Classifier,
		messenger:  cfg.Messenger,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		botNumber:  cfg.BotNumber,
		dishCount:  cfg.DishCount,
	}
}

// HandleInbound processes one inbound message and sends any reply. All
// command and intent branches acknowledge to the caller; only storage
// failures on the critical path return an error.
func (d *Dispatcher) HandleInbound(ctx context.Context, from, body string) (Outcome, error) {
	ctx, span := dispatcherTracer.Start(ctx, "conversation.handle_inbound")
	defer span.End()
	span.SetAttributes(attribute.String("providoor.from", from))

	user, created, err := d.users.GetOrCreate(ctx, from)
	if err != nil {
		d.metrics.ObserveInbound("identity", "error")
		return Outcome{}, fmt.Errorf("conversation: identity resolution failed: %w", err)
	}

	if created {
		return d.welcomeNewUser(ctx, user)
	}

	switch parseCommand(body) {
	case cmdNew:
		return d.commandNew(ctx, user)
	case cmdLatest:
		return d.commandLatest(ctx, user)
	case cmdRecommend:
		outcome := Outcome{Branch: BranchRecommend, Message: recommendMsg}
		d.send(ctx, user.WhatsAppNumber, recommendReply, &outcome)
		d.metrics.ObserveInbound(string(BranchRecommend), "ok")
		return outcome, nil
	case cmdRatings:
		return d.commandRatings(ctx, user)
	case cmdHelp:
		outcome := Outcome{Branch: BranchHelp, Message: helpMessage}
		d.send(ctx, user.WhatsAppNumber, HelpText, &outcome)
		d.metrics.ObserveInbound(string(BranchHelp), "ok")
		return outcome, nil
	}

	return d.handleFreeText(ctx, user, body)
}

// welcomeNewUser synthesizes a mock order for onboarding and sends the
// welcome message. The inbound body is not processed further.
func (d *Dispatcher) welcomeNewUser(ctx context.Context, user *users.User) (Outcome, error) {
	_, formatted, err := d.placeRandomOrder(ctx, user)
	if err != nil {
		d.metrics.ObserveInbound(string(BranchWelcome), "error")
		return Outcome{}, err
	}

	welcome := fmt.Sprintf(
		"Hello from Providoor Bot! Your order has been delivered.\n%s\nWe would love to hear your feedback!\nDescribe your experience or simply give a rating from 1 to 10.\n\n%s",
		formatted, HelpText,
	)
	outcome := Outcome{Branch: BranchWelcome, Message: repliedMessage}
	d.send(ctx, user.WhatsAppNumber, welcome, &outcome)
	d.metrics.ObserveInbound(string(BranchWelcome), "ok")
	d.logger.Info("new user welcomed", "whatsapp_number", user.WhatsAppNumber)
	return outcome, nil
}

func (d *Dispatcher) commandNew(ctx context.Context, user *users.User) (Outcome, error) {
	_, formatted, err := d.placeRandomOrder(ctx, user)
	if err != nil {
		d.metrics.ObserveInbound(string(BranchNewOrder), "error")
		return Outcome{}, err
	}

	outcome := Outcome{Branch: BranchNewOrder, Message: newOrderMessage, Data: formatted}
	d.send(ctx, user.WhatsAppNumber, "Order creation:\n "+formatted, &outcome)
	d.metrics.ObserveInbound(string(BranchNewOrder), "ok")
	return outcome, nil
}

func (d *Dispatcher) commandLatest(ctx context.Context, user *users.User) (Outcome, error) {
	order, err := d.orders.LatestByUser(ctx, user.ID)
	if errors.Is(err, orders.ErrNotFound) {
		outcome := Outcome{Branch: BranchLatestOrder, Message: latestMessage}
		d.send(ctx, user.WhatsAppNumber, noPendingReply, &outcome)
		d.metrics.ObserveInbound(string(BranchLatestOrder), "empty")
		return outcome, nil
	}
	if err != nil {
		d.metrics.ObserveInbound(string(BranchLatestOrder), "error")
		return Outcome{}, fmt.Errorf("conversation: latest order lookup failed: %w", err)
	}

	lines, err := d.orders.Lines(ctx, order.ID)
	if err != nil {
		d.metrics.ObserveInbound(string(BranchLatestOrder), "error")
		return Outcome{}, fmt.Errorf("conversation: order lines lookup failed: %w", err)
	}

	formatted := FormatOrder(lines)
	outcome := Outcome{Branch: BranchLatestOrder, Message: latestMessage, Data: formatted}
	d.send(ctx, user.WhatsAppNumber, "Latest order: \n"+formatted, &outcome)
	d.metrics.ObserveInbound(string(BranchLatestOrder), "ok")
	return outcome, nil
}

func (d *Dispatcher) commandRatings(ctx context.Context, user *users.User) (Outcome, error) {
	userRatings, err := d.ratings.ListByUser(ctx, user.ID)
	if err != nil {
		d.metrics.ObserveInbound(string(BranchRatings), "error")
		return Outcome{}, fmt.Errorf("conversation: ratings lookup failed: %w", err)
	}

	report := FormatRatingsReport(user.WhatsAppNumber, userRatings)
	outcome := Outcome{Branch: BranchRatings, Message: ratingsMessage, Data: report}
	if len(userRatings) == 0 {
		d.send(ctx, user.WhatsAppNumber, report, &outcome)
		d.metrics.ObserveInbound(string(BranchRatings), "empty")
		return outcome, nil
	}
	d.send(ctx, user.WhatsAppNumber, "All Ratings \n"+report, &outcome)
	d.metrics.ObserveInbound(string(BranchRatings), "ok")
	return outcome, nil
}

// handleFreeText runs intent classification against the user's latest order.
// Messages that resolve to nothing actionable are acknowledged silently but
// logged and counted.
func (d *Dispatcher) handleFreeText(ctx context.Context, user *users.User, body string) (Outcome, error) {
	order, err := d.orders.LatestByUser(ctx, user.ID)
	if errors.Is(err, orders.ErrNotFound) {
		// Reserved for a future recommendation flow.
		d.logger.Info("free text with no pending order", "whatsapp_number", user.WhatsAppNumber)
		d.metrics.ObserveInbound(string(BranchNoOrder), "ok")
		return Outcome{Branch: BranchNoOrder, Message: repliedMessage}, nil
	}
	if err != nil {
		d.metrics.ObserveInbound(string(BranchNoOrder), "error")
		return Outcome{}, fmt.Errorf("conversation: latest order lookup failed: %w", err)
	}

	if d.classifier == nil {
		d.logger.Warn("no classifier configured, ignoring free text", "whatsapp_number", user.WhatsAppNumber)
		d.metrics.ObserveInbound(string(BranchNoIntent), "ok")
		return Outcome{Branch: BranchNoIntent, Message: repliedMessage}, nil
	}

	intent, err := d.classifier.Classify(ctx, body)
	if err != nil {
		// Classifier failures are treated as "no intent detected".
		d.logger.Error("intent classification failed", "error", err, "whatsapp_number", user.WhatsAppNumber)
		d.metrics.ObserveInbound(string(BranchNoIntent), "error")
		return Outcome{Branch: BranchNoIntent, Message: repliedMessage}, nil
	}
	if intent.Kind != IntentUserRating || intent.Rating == nil {
		d.logger.Info("no actionable intent", "whatsapp_number", user.WhatsAppNumber)
		d.metrics.ObserveInbound(string(BranchNoIntent), "ok")
		return Outcome{Branch: BranchNoIntent, Message: repliedMessage}, nil
	}

	_, err = d.ratings.Create(ctx, user.ID, order.ID, *intent.Rating, body)
	if errors.Is(err, ratings.ErrDuplicateRating) {
		d.logger.Warn("duplicate rating skipped",
			"whatsapp_number", user.WhatsAppNumber,
			"order_id", order.ID,
		)
		d.metrics.ObserveInbound(string(BranchRatingDuplicate), "ok")
		return Outcome{Branch: BranchRatingDuplicate, Message: repliedMessage}, nil
	}
	if err != nil {
		d.metrics.ObserveInbound(string(BranchRatingRecorded), "error")
		return Outcome{}, fmt.Errorf("conversation: rating insert failed: %w", err)
	}

	outcome := Outcome{Branch: BranchRatingRecorded, Message: repliedMessage}
	d.send(ctx, user.WhatsAppNumber, ratingThanks, &outcome)
	d.metrics.ObserveInbound(string(BranchRatingRecorded), "ok")
	d.logger.Info("rating recorded",
		"whatsapp_number", user.WhatsAppNumber,
		"order_id", order.ID,
		"rating", *intent.Rating,
	)
	return outcome, nil
}

// placeRandomOrder creates an order with random distinct dishes and returns it
// with the formatted line summary. Mock stand-in for a real order-intake path.
func (d *Dispatcher) placeRandomOrder(ctx context.Context, user *users.User) (*orders.Order, string, error) {
	dishes, err := d.catalog.ListAll(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("conversation: catalog lookup failed: %w", err)
	}

	picked, err := orders.PickRandomDishes(dishes, d.dishCount)
	if err != nil {
		return nil, "", err
	}

	order, err := d.orders.Create(ctx, user.ID, orders.StatusDelivered, picked)
	if err != nil {
		return nil, "", fmt.Errorf("conversation: order creation failed: %w", err)
	}

	lines := make([]orders.Line, 0, len(picked))
	for _, dish := range picked {
		lines = append(lines, orders.Line{
			DishID:      dish.ID,
			Name:        dish.Name,
			Description: dish.Description,
			Price:       dish.Price,
			Course:      dish.Course,
			ChefName:    dish.ChefName,
			Dietaries:   dish.Dietaries,
		})
	}
	return order, FormatOrder(lines), nil
}

// send delivers a reply and records the result. Transport failures are logged
// and counted but never fail the request.
func (d *Dispatcher) send(ctx context.Context, to, body string, outcome *Outcome) {
	err := d.messenger.SendReply(ctx, OutboundReply{From: d.botNumber, To: to, Body: body})
	if err != nil {
		d.logger.Error("outbound send failed", "error", err, "to", to)
		d.metrics.ObserveOutbound("error")
		return
	}
	d.metrics.ObserveOutbound("sent")
	outcome.RepliesSent++
}
