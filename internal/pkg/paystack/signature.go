package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Sign computes the HMAC-SHA512 of a webhook body with the secret key.
func Sign(body []byte, secretKey string) string {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the x-paystack-signature header against the raw
// webhook body using a constant-time comparison.
func VerifySignature(body []byte, signature, secretKey string) bool {
	expected := Sign(body, secretKey)
	received := strings.ToLower(strings.TrimSpace(signature))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1
}

// WebhookEvent is the parsed envelope of a webhook delivery
type WebhookEvent struct {
	Event string `json:"event"` // e.g. charge.success
	Data  struct {
		Reference  string `json:"reference"`
		Status     string `json:"status"`
		AmountKobo int64  `json:"amount"`
		Channel    string `json:"channel"`
	} `json:"data"`
}

// ParseWebhook decodes a webhook body
func ParseWebhook(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
