package purchase

import "errors"

var (
	ErrUnsupportedCategory = errors.New("unsupported service category")
	ErrAmountOutOfBounds   = errors.New("amount outside the allowed range for this service")
	ErrPINRequired         = errors.New("transaction PIN required")
	ErrInvalidPIN          = errors.New("invalid transaction PIN")
	ErrVerificationFailed  = errors.New("customer verification failed")
	ErrFulfillmentFailed   = errors.New("fulfillment failed")
)
