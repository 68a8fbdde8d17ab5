package messaging

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// ValidateTwilioSignature validates that a request came from Twilio
func ValidateTwilioSignature(r *http.Request, authToken, webhookURL string) bool {
	signature := r.Header.Get("X-Twilio-Signature")
	if signature == "" {
		return false
	}

	if err := r.ParseForm(); err != nil {
		return false
	}

	payload := buildSignaturePayload(webhookURL, r.PostForm)
	expectedSignature := computeSignature(payload, authToken)

	return hmac.Equal([]byte(signature), []byte(expectedSignature))
}

// buildSignaturePayload creates the payload string for signature verification
func buildSignaturePayload(url string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Payload is the URL followed by the sorted post params.
	var payload strings.Builder
	payload.WriteString(url)

	for _, key := range keys {
		for _, value := range params[key] {
			payload.WriteString(key)
			payload.WriteString(value)
		}
	}

	return payload.String()
}

// computeSignature computes the HMAC-SHA1 signature
func computeSignature(data, key string) string {
	h := hmac.New(sha1.New, []byte(key))
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// InboundMessage represents an incoming WhatsApp webhook delivery.
type InboundMessage struct {
	MessageSid string `json:"MessageSid"`
	From       string `json:"From"`
	To         string `json:"To"`
	Body       string `json:"Body"`
}

// ParseInboundMessage parses a Twilio webhook request body. Twilio posts
// form-encoded fields.
func ParseInboundMessage(r *http.Request) (*InboundMessage, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse form: %w", err)
	}

	return &InboundMessage{
		MessageSid: r.FormValue("MessageSid"),
		From:       r.FormValue("From"),
		To:         r.FormValue("To"),
		Body:       r.FormValue("Body"),
	}, nil
}

// WhatsAppAddress ensures the channel tag Twilio expects on WhatsApp
// identities, e.g. "whatsapp:+14155238886".
func WhatsAppAddress(number string) string {
	if number == "" || strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
