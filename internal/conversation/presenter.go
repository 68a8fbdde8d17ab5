package conversation

import (
	"bytes"
	"fmt"
	"strconv"
	"text/template"
	"time"

	"github.com/providoor/whatsapp-bot/internal/orders"
	"github.com/providoor/whatsapp-bot/internal/ratings"
)

const orderTemplateText = "Your order includes:\n{{range .}}\n===\nDish: {{.Name}}\nPrice: {{price .Price}}\nCourse: {{.Course}}\n{{end}}"

const ratingsTemplateText = "Ratings for user with WhatsApp number {{.Number}}:\n\n" +
	"{{range .Ratings}}Order Time: {{stamp .OrderTime}}\nOrder Status: {{.OrderStatus}}\nRating: {{.Rating}}\nFeedback: {{.Feedback}}\n" +
	"------------------------------\n{{end}}"

var presenterFuncs = template.FuncMap{
	"price": func(p float64) string { return strconv.FormatFloat(p, 'f', -1, 64) },
	"stamp": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
}

var (
	orderTemplate   = template.Must(template.New("order").Option("missingkey=error").Funcs(presenterFuncs).Parse(orderTemplateText))
	ratingsTemplate = template.Must(template.New("ratings").Option("missingkey=error").Funcs(presenterFuncs).Parse(ratingsTemplateText))
)

// FormatOrder renders an order's line items as a delimited text block.
// An empty order renders the header only.
func FormatOrder(lines []orders.Line) string {
	var buf bytes.Buffer
	if err := orderTemplate.Execute(&buf, lines); err != nil {
		// The template only touches fields that exist on Line; execution
		// cannot fail on well-formed input.
		return "Your order includes:\n"
	}
	return buf.String()
}

// NoRatingsSentinel is the report returned when a user has no ratings yet.
func NoRatingsSentinel(whatsappNumber string) string {
	return fmt.Sprintf("No ratings found for user with WhatsApp number %s.", whatsappNumber)
}

// FormatRatingsReport renders one record per rating separated by a divider,
// or the no-ratings sentinel for an empty input.
func FormatRatingsReport(whatsappNumber string, userRatings []ratings.UserRating) string {
	if len(userRatings) == 0 {
		return NoRatingsSentinel(whatsappNumber)
	}

	var buf bytes.Buffer
	data := struct {
		Number  string
		Ratings []ratings.UserRating
	}{Number: whatsappNumber, Ratings: userRatings}
	if err := ratingsTemplate.Execute(&buf, data); err != nil {
		return NoRatingsSentinel(whatsappNumber)
	}
	return buf.String()
}
