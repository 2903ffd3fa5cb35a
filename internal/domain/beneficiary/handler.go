package beneficiary

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/swiftvtu/swiftvtu-api/internal/middleware"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/response"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/validator"
)

// Handler handles beneficiary HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates beneficiary handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Save handles POST /beneficiaries
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req SaveRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	b, err := h.service.Save(r.Context(), accountID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadySaved):
			response.Conflict(w, "Beneficiary already saved")
		case errors.Is(err, ErrLimitExceeded):
			response.BusinessFailure(w, "BENEFICIARY_LIMIT", "Too many saved beneficiaries")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, b)
}

// List handles GET /beneficiaries
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	items, err := h.service.List(r.Context(), accountID, r.URL.Query().Get("service_type"))
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, items)
}

// Delete handles DELETE /beneficiaries/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid beneficiary ID")
		return
	}

	if err := h.service.Delete(r.Context(), accountID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Beneficiary not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}

// Routes returns beneficiary router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/", h.Save)
	r.Get("/", h.List)
	r.Delete("/{id}", h.Delete)

	return r
}
