package beneficiary

import "errors"

var (
	ErrNotFound      = errors.New("beneficiary not found")
	ErrAlreadySaved  = errors.New("beneficiary already saved")
	ErrLimitExceeded = errors.New("too many saved beneficiaries")
)
