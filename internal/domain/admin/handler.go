package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/swiftvtu/swiftvtu-api/internal/domain/account"
	"github.com/swiftvtu/swiftvtu-api/internal/domain/wallet"
	"github.com/swiftvtu/swiftvtu-api/internal/middleware"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/response"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/validator"
)

// Handler handles admin HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates admin handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListAccounts handles GET /admin/accounts
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	limit, offset := parsePage(r)

	accounts, total, err := h.service.ListAccounts(r.Context(), search, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		items[i] = AccountResponseFromEntity(a)
	}

	response.WithMeta(w, items, pageMeta(total, limit, offset))
}

// GetAccount handles GET /admin/accounts/{id}
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	a, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			response.NotFound(w, "Account not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, AccountResponseFromEntity(a))
}

// SetAccountStatus handles PUT /admin/accounts/{id}/status
func (h *Handler) SetAccountStatus(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.GetAccountID(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req StatusRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.service.SetAccountStatus(r.Context(), adminID, id, *req.IsActive); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			response.NotFound(w, "Account not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]bool{"is_active": *req.IsActive})
}

// ListTransactions handles GET /admin/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	f := wallet.Filter{Limit: 20}
	q := r.URL.Query()
	if c := q.Get("category"); c != "" {
		f.Category = wallet.Category(c)
	}
	if s := q.Get("status"); s != "" {
		f.Status = wallet.Status(s)
	}
	f.Search = q.Get("search")
	f.Limit, f.Offset = parsePage(r)

	entries, total, err := h.service.ListTransactions(r.Context(), f)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*wallet.TransactionResponse, len(entries))
	for i, e := range entries {
		items[i] = wallet.TransactionResponseFromEntity(e)
	}

	response.WithMeta(w, items, pageMeta(total, f.Limit, f.Offset))
}

// CreditAccount handles POST /admin/accounts/{id}/credit
func (h *Handler) CreditAccount(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.service.CreditAccount)
}

// DebitAccount handles POST /admin/accounts/{id}/debit
func (h *Handler) DebitAccount(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.service.DebitAccount)
}

// Drift handles GET /admin/accounts/{id}/drift
func (h *Handler) Drift(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	drift, err := h.service.Drift(r.Context(), id)
	if err != nil {
		if errors.Is(err, wallet.ErrAccountNotFound) {
			response.NotFound(w, "Account not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, DriftResponse{AccountID: id, Drift: drift})
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, adminID, accountID uuid.UUID, amount int64, reason string) (*wallet.LedgerEntry, int64, error)) {
	adminID := middleware.GetAccountID(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req AdjustRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	entry, balance, err := apply(r.Context(), adminID, id, req.Amount, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInsufficientBalance):
			response.BusinessFailure(w, "INSUFFICIENT_BALANCE", "Balance cannot cover this debit")
		case errors.Is(err, wallet.ErrAccountNotFound):
			response.NotFound(w, "Account not found")
		case errors.Is(err, wallet.ErrAccountDisabled):
			response.BusinessFailure(w, "ACCOUNT_DISABLED", "Account is disabled")
		case errors.Is(err, wallet.ErrInvalidAmount):
			response.BusinessFailure(w, "INVALID_AMOUNT", "Amount must be positive")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, AdjustResponse{
		TransactionID: entry.ID,
		Amount:        req.Amount,
		NewBalance:    balance,
	})
}

// Routes returns admin router
func (h *Handler) Routes(authMiddleware, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(requireAdmin)

	r.Get("/accounts", h.ListAccounts)
	r.Get("/accounts/{id}", h.GetAccount)
	r.Put("/accounts/{id}/status", h.SetAccountStatus)
	r.Post("/accounts/{id}/credit", h.CreditAccount)
	r.Post("/accounts/{id}/debit", h.DebitAccount)
	r.Get("/accounts/{id}/drift", h.Drift)
	r.Get("/transactions", h.ListTransactions)

	return r
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid account ID")
		return uuid.Nil, false
	}
	return id, true
}

func parsePage(r *http.Request) (limit, offset int) {
	limit, offset = 20, 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

func pageMeta(total, limit, offset int) response.Meta {
	if limit <= 0 {
		limit = 20
	}
	return response.Meta{
		Total:   total,
		Page:    offset/limit + 1,
		Limit:   limit,
		Pages:   (total + limit - 1) / limit,
		HasNext: offset+limit < total,
		HasPrev: offset > 0,
	}
}
