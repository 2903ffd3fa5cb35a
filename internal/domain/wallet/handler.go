package wallet

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/swiftvtu/swiftvtu-api/internal/middleware"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/response"
)

// Handler handles wallet HTTP requests. Read-only: mutations happen through
// the purchase, funding and admin flows.
type Handler struct {
	service *Service
}

// NewHandler creates wallet handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetBalance handles GET /wallet/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	balance, err := h.service.Balance(r.Context(), accountID)
	if err != nil {
		if err == ErrAccountNotFound {
			response.NotFound(w, "Account not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, BalanceResponse{Balance: balance})
}

// ListTransactions handles GET /wallet/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	f := parseFilter(r)

	entries, total, err := h.service.History(r.Context(), accountID, f)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*TransactionResponse, len(entries))
	for i, e := range entries {
		items[i] = TransactionResponseFromEntity(e)
	}

	response.WithMeta(w, items, paginationMeta(total, f))
}

// RecentTransactions handles GET /wallet/transactions/recent
func (h *Handler) RecentTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	n := 5
	if q := r.URL.Query().Get("n"); q != "" {
		if v, err := strconv.Atoi(q); err == nil {
			n = v
		}
	}

	entries, err := h.service.Recent(r.Context(), accountID, n)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*TransactionResponse, len(entries))
	for i, e := range entries {
		items[i] = TransactionResponseFromEntity(e)
	}

	response.OK(w, items)
}

// GetTransaction handles GET /wallet/transactions/{id}
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid transaction ID")
		return
	}

	entry, err := h.service.Entry(r.Context(), id)
	if err != nil {
		if err == ErrEntryNotFound {
			response.NotFound(w, "Transaction not found")
			return
		}
		response.InternalError(w)
		return
	}
	if entry.AccountID != accountID {
		response.NotFound(w, "Transaction not found")
		return
	}

	response.OK(w, TransactionResponseFromEntity(entry))
}

// Routes returns wallet router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/balance", h.GetBalance)
	r.Get("/transactions", h.ListTransactions)
	r.Get("/transactions/recent", h.RecentTransactions)
	r.Get("/transactions/{id}", h.GetTransaction)

	return r
}

func parseFilter(r *http.Request) Filter {
	f := Filter{Limit: 20}

	q := r.URL.Query()
	if c := q.Get("category"); c != "" {
		f.Category = Category(c)
	}
	if s := q.Get("status"); s != "" {
		f.Status = Status(s)
	}
	f.Search = q.Get("search")
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			f.Limit = v
		}
	}
	if o := q.Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			f.Offset = v
		}
	}
	return f
}

func paginationMeta(total int, f Filter) response.Meta {
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	page := f.Offset/limit + 1
	pages := (total + limit - 1) / limit
	return response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   pages,
		HasNext: f.Offset+limit < total,
		HasPrev: f.Offset > 0,
	}
}
