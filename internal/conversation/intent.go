package conversation

import "context"

// IntentKind is the closed set of intents the bot acts on.
type IntentKind int

const (
	// IntentNone means the message carried no actionable intent.
	IntentNone IntentKind = iota
	// IntentUserRating means the message contained feedback with a numeric rating.
	IntentUserRating
)

// Intent is the structured result of classifying free text. Rating is set only
// for IntentUserRating, and may still be nil when the model saw feedback but
// could not extract a usable number.
type Intent struct {
	Kind   IntentKind
	Rating *int
}

// Classifier interprets free-text user messages. Implementations must never
// panic on malformed model output; anything unusable maps to IntentNone.
type Classifier interface {
	Classify(ctx context.Context, text string) (Intent, error)
}
