package purchase

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swiftvtu/swiftvtu-api/internal/domain/wallet"
	"github.com/swiftvtu/swiftvtu-api/internal/middleware"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/response"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/validator"
)

// Handler handles purchase HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates purchase handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// BuyAirtime handles POST /purchase/airtime
func (h *Handler) BuyAirtime(w http.ResponseWriter, r *http.Request) {
	var req AirtimeRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, req.input())
}

// BuyData handles POST /purchase/data
func (h *Handler) BuyData(w http.ResponseWriter, r *http.Request) {
	var req DataRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, req.input())
}

// BuyCable handles POST /purchase/cable
func (h *Handler) BuyCable(w http.ResponseWriter, r *http.Request) {
	var req CableRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, req.input())
}

// BuyElectricity handles POST /purchase/electricity
func (h *Handler) BuyElectricity(w http.ResponseWriter, r *http.Request) {
	var req ElectricityRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, req.input())
}

// BuyBetting handles POST /purchase/betting
func (h *Handler) BuyBetting(w http.ResponseWriter, r *http.Request) {
	var req BettingRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, req.input())
}

// VerifyCustomer handles POST /purchase/verify
func (h *Handler) VerifyCustomer(w http.ResponseWriter, r *http.Request) {
	var req VerifyCustomerRequest
	if !decode(w, r, &req) {
		return
	}

	info, err := h.service.VerifyCustomer(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrVerificationFailed) {
			response.BusinessFailure(w, "VERIFICATION_FAILED", err.Error())
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, CustomerResponse{CustomerName: info.Name, Address: info.Address})
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request, in Input) {
	accountID := middleware.GetAccountID(r.Context())

	res, err := h.service.Purchase(r.Context(), accountID, in)
	if err != nil {
		respondPurchaseError(w, err)
		return
	}

	response.OK(w, purchaseResponse(res))
}

// Routes returns purchase router
func (h *Handler) Routes(authMiddleware, idempotency func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/verify", h.VerifyCustomer)

	r.Group(func(r chi.Router) {
		r.Use(idempotency)
		r.Post("/airtime", h.BuyAirtime)
		r.Post("/data", h.BuyData)
		r.Post("/cable", h.BuyCable)
		r.Post("/electricity", h.BuyElectricity)
		r.Post("/betting", h.BuyBetting)
	})

	return r
}

func decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := response.DecodeJSON(r.Body, req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return false
	}
	return true
}

// respondPurchaseError maps orchestrator errors to the wire. Business-rule
// outcomes go out as HTTP 200 with success=false; only malformed input,
// missing resources and server faults use 4xx/5xx.
func respondPurchaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, wallet.ErrInsufficientBalance):
		response.BusinessFailure(w, "INSUFFICIENT_BALANCE", "Insufficient wallet balance")
	case errors.Is(err, ErrFulfillmentFailed):
		response.BusinessFailure(w, "FULFILLMENT_FAILED", err.Error())
	case errors.Is(err, ErrVerificationFailed):
		response.BusinessFailure(w, "VERIFICATION_FAILED", err.Error())
	case errors.Is(err, ErrAmountOutOfBounds):
		response.BusinessFailure(w, "AMOUNT_OUT_OF_BOUNDS", err.Error())
	case errors.Is(err, ErrPINRequired):
		response.BusinessFailure(w, "PIN_REQUIRED", "Provide your transaction PIN")
	case errors.Is(err, ErrInvalidPIN):
		response.BusinessFailure(w, "INVALID_PIN", "Incorrect transaction PIN")
	case errors.Is(err, wallet.ErrInvalidAmount):
		response.BusinessFailure(w, "INVALID_AMOUNT", "Amount must be a positive whole amount in naira")
	case errors.Is(err, ErrUnsupportedCategory):
		response.BadRequest(w, "Unsupported service category")
	case errors.Is(err, wallet.ErrAccountNotFound):
		response.NotFound(w, "Account not found")
	case errors.Is(err, wallet.ErrAccountDisabled):
		response.Forbidden(w, "Account is disabled")
	default:
		response.InternalError(w)
	}
}
