package funding

import "github.com/google/uuid"

// InitializeRequest for POST /funding/initialize
type InitializeRequest struct {
	Amount int64 `json:"amount" validate:"required,gte=100"`
}

// SessionResponse hands the client to the hosted checkout
type SessionResponse struct {
	Reference        uuid.UUID `json:"reference"`
	AuthorizationURL string    `json:"authorization_url"`
	AccessCode       string    `json:"access_code"`
	Amount           int64     `json:"amount"`
}

// StatusResponse is the settled state of a deposit
type StatusResponse struct {
	Reference uuid.UUID `json:"reference"`
	Status    string    `json:"status"`
	Amount    int64     `json:"amount"`
}
