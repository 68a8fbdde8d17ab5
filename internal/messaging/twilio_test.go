package messaging

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestWhatsAppAddress(t *testing.T) {
	if got := WhatsAppAddress("+14155238886"); got != "whatsapp:+14155238886" {
		t.Fatalf("expected prefix added, got %q", got)
	}
	if got := WhatsAppAddress("whatsapp:+14155238886"); got != "whatsapp:+14155238886" {
		t.Fatalf("expected prefix preserved, got %q", got)
	}
	if got := WhatsAppAddress(""); got != "" {
		t.Fatalf("expected empty passthrough, got %q", got)
	}
}

func TestValidateTwilioSignature(t *testing.T) {
	const authToken = "12345"
	webhookURL := "https://bot.example.com/whatsapp/message"

	form := url.Values{}
	form.Set("From", "whatsapp:+14155550100")
	form.Set("Body", "/help")

	payload := buildSignaturePayload(webhookURL, form)
	signature := computeSignature(payload, authToken)

	req := httptest.NewRequest(http.MethodPost, webhookURL, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Twilio-Signature", signature)
	if !ValidateTwilioSignature(req, authToken, webhookURL) {
		t.Fatal("expected valid signature to pass")
	}

	req = httptest.NewRequest(http.MethodPost, webhookURL, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Twilio-Signature", "bogus")
	if ValidateTwilioSignature(req, authToken, webhookURL) {
		t.Fatal("expected invalid signature to fail")
	}

	req = httptest.NewRequest(http.MethodPost, webhookURL, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if ValidateTwilioSignature(req, authToken, webhookURL) {
		t.Fatal("expected missing signature to fail")
	}
}

func TestParseInboundMessage(t *testing.T) {
	form := url.Values{}
	form.Set("MessageSid", "SM123")
	form.Set("From", "whatsapp:+14155550100")
	form.Set("To", "whatsapp:+14155238886")
	form.Set("Body", "great meal")

	req := httptest.NewRequest(http.MethodPost, "/whatsapp/message", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	msg, err := ParseInboundMessage(req)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.From != "whatsapp:+14155550100" || msg.Body != "great meal" || msg.MessageSid != "SM123" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}
