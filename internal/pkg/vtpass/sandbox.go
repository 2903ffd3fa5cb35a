package vtpass

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Sandbox fulfills every request locally without contacting the aggregator.
// Used in development and tests.
type Sandbox struct{}

// NewSandbox creates a sandbox fulfiller/verifier
func NewSandbox() *Sandbox {
	return &Sandbox{}
}

// Purchase always succeeds with a generated reference.
func (s *Sandbox) Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("validation error: amount must be > 0")
	}

	result := &PurchaseResult{
		Reference: "SBX-" + strings.ToUpper(uuid.New().String()[:18]),
		Message:   "sandbox fulfillment successful",
	}
	if strings.Contains(req.ServiceID, "electric") {
		result.Token = "1234-5678-9012-3456-7890"
	}
	return result, nil
}

// VerifyCustomer always resolves to a canned identity.
func (s *Sandbox) VerifyCustomer(ctx context.Context, req VerifyRequest) (*CustomerInfo, error) {
	if strings.TrimSpace(req.BillerID) == "" {
		return nil, fmt.Errorf("validation error: billers_code must be non-empty")
	}
	return &CustomerInfo{
		Name:    "SANDBOX CUSTOMER",
		Address: "1 Test Close, Lagos",
	}, nil
}
