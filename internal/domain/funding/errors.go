package funding

import "errors"

var (
	ErrDepositTooSmall  = errors.New("deposit below the minimum amount")
	ErrBadSignature     = errors.New("webhook signature mismatch")
	ErrUnknownReference = errors.New("unknown deposit reference")
	ErrGatewayFailed    = errors.New("payment gateway request failed")
)
