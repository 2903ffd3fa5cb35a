package vtpass

import "errors"

// ErrDeclined indicates the aggregator processed the request and refused it
// (wrong smartcard, product unavailable, vendor-side balance issues).
// Transport and decoding failures are returned as plain errors.
var ErrDeclined = errors.New("vendor declined request")

// PurchaseRequest carries a category-specific fulfillment request. Only the
// fields relevant to the service type are populated.
type PurchaseRequest struct {
	ServiceID string // aggregator product id, e.g. "mtn", "dstv", "ikeja-electric"
	RequestID string // caller-generated id echoed back by the aggregator
	Amount    int64  // whole naira
	Phone     string // recipient phone (airtime, data)
	PlanCode  string // variation code for plan-priced products (data, cable)
	BillerID  string // smartcard / meter number / betting customer id
	MeterType string // prepaid | postpaid (electricity only)
}

// PurchaseResult is the aggregator's answer to a fulfillment request.
type PurchaseResult struct {
	Reference string // vendor transaction reference
	Message   string
	Token     string // electricity token, when applicable
}

// VerifyRequest asks the aggregator to resolve a recipient identity before
// funds are committed.
type VerifyRequest struct {
	ServiceID string
	BillerID  string // smartcard / meter number / betting customer id
	MeterType string
}

// CustomerInfo is the resolved identity behind a smartcard, meter or
// betting account.
type CustomerInfo struct {
	Name    string
	Address string
}
