package funding

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/swiftvtu/swiftvtu-api/internal/domain/wallet"
	"github.com/swiftvtu/swiftvtu-api/internal/middleware"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/response"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/validator"
)

// Handler handles funding HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates funding handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Initialize handles POST /funding/initialize
func (h *Handler) Initialize(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req InitializeRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	session, err := h.service.Initialize(r.Context(), accountID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ErrDepositTooSmall):
			response.BusinessFailure(w, "DEPOSIT_TOO_SMALL", err.Error())
		case errors.Is(err, ErrGatewayFailed):
			response.BusinessFailure(w, "GATEWAY_FAILED", "Could not reach the payment gateway, try again")
		case errors.Is(err, wallet.ErrAccountNotFound):
			response.NotFound(w, "Account not found")
		case errors.Is(err, wallet.ErrAccountDisabled):
			response.Forbidden(w, "Account is disabled")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, SessionResponse{
		Reference:        session.Reference,
		AuthorizationURL: session.AuthorizationURL,
		AccessCode:       session.AccessCode,
		Amount:           session.Amount,
	})
}

// VerifyDeposit handles GET /funding/verify/{reference}
func (h *Handler) VerifyDeposit(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	ref, err := uuid.Parse(chi.URLParam(r, "reference"))
	if err != nil {
		response.BadRequest(w, "Invalid reference")
		return
	}

	entry, err := h.service.VerifyDeposit(r.Context(), accountID, ref)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrEntryNotFound):
			response.NotFound(w, "Deposit not found")
		case errors.Is(err, ErrGatewayFailed):
			response.BusinessFailure(w, "GATEWAY_FAILED", "Could not reach the payment gateway, try again")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, StatusResponse{
		Reference: entry.ID,
		Status:    string(entry.Status),
		Amount:    entry.Amount,
	})
}

// PaystackWebhook handles POST /webhooks/paystack. Unauthenticated: trust
// comes from the signature over the raw body.
func (h *Handler) PaystackWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		response.BadRequest(w, "Unreadable body")
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("x-paystack-signature")
	if err := h.service.HandleWebhook(r.Context(), body, signature); err != nil {
		if errors.Is(err, ErrBadSignature) {
			response.Unauthorized(w, "Invalid signature")
			return
		}
		// Unknown references and parse failures get a 200 so the gateway
		// stops redelivering; anything transient gets retried.
		if errors.Is(err, ErrUnknownReference) {
			log.Warn().Err(err).Msg("Webhook for unknown reference")
			response.OK(w, nil)
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, nil)
}

// Routes returns funding router
func (h *Handler) Routes(authMiddleware, idempotency func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Group(func(r chi.Router) {
		r.Use(idempotency)
		r.Post("/initialize", h.Initialize)
	})
	r.Get("/verify/{reference}", h.VerifyDeposit)

	return r
}
