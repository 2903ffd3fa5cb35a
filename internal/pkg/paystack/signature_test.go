package paystack

import (
	"strings"
	"testing"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1","amount":250000}}`)
	secret := "sk_test_secret"

	sig := Sign(body, secret)
	if !VerifySignature(body, sig, secret) {
		t.Error("valid signature must verify")
	}
	if VerifySignature(body, sig, "other-secret") {
		t.Error("signature must not verify with the wrong secret")
	}

	tampered := []byte(`{"event":"charge.success","data":{"reference":"ref-1","amount":999999}}`)
	if VerifySignature(tampered, sig, secret) {
		t.Error("signature must not verify a tampered body")
	}
}

func TestVerifySignatureHeaderTolerance(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	secret := "sk_test_secret"
	sig := Sign(body, secret)

	if !VerifySignature(body, "  "+sig+"\n", secret) {
		t.Error("surrounding whitespace must be tolerated")
	}
	if !VerifySignature(body, strings.ToUpper(sig), secret) {
		t.Error("uppercase hex must be tolerated")
	}
}

func TestParseWebhook(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-9","status":"success","amount":150000,"channel":"card"}}`)

	event, err := ParseWebhook(body)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if event.Event != "charge.success" {
		t.Errorf("unexpected event %q", event.Event)
	}
	if event.Data.Reference != "ref-9" || event.Data.AmountKobo != 150000 || event.Data.Channel != "card" {
		t.Errorf("unexpected data %+v", event.Data)
	}

	if _, err := ParseWebhook([]byte("not json")); err == nil {
		t.Error("malformed body must fail to parse")
	}
}
