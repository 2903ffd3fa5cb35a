package account

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swiftvtu/swiftvtu-api/internal/middleware"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/response"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/validator"
)

// Handler handles account HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates account handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	auth, err := h.service.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			response.Conflict(w, "Email already registered")
		case errors.Is(err, ErrPhoneAlreadyExists):
			response.Conflict(w, "Phone already registered")
		case errors.Is(err, ErrInvalidReferralCode):
			response.BadRequest(w, "Unknown referral code")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, auth)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	auth, err := h.service.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Unauthorized(w, "Invalid email or password")
		case errors.Is(err, ErrAccountDisabled):
			response.Forbidden(w, "Account is disabled")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, auth)
}

// Refresh handles POST /auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	auth, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrRefreshTokenRequired), errors.Is(err, ErrInvalidRefreshToken):
			response.Unauthorized(w, "Invalid refresh token")
		case errors.Is(err, ErrAccountDisabled):
			response.Forbidden(w, "Account is disabled")
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "Account not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, auth)
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}

// Me handles GET /account/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	profile, err := h.service.Profile(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Account not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, profile)
}

// SetPIN handles PUT /account/pin
func (h *Handler) SetPIN(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req SetPINRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.service.SetPIN(r.Context(), accountID, &req); err != nil {
		switch {
		case errors.Is(err, ErrPINMismatch):
			response.BusinessFailure(w, "INVALID_PIN", "Incorrect current PIN")
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "Account not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}

// ChangePassword handles PUT /account/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req ChangePasswordRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.service.ChangePassword(r.Context(), accountID, &req); err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Unauthorized(w, "Incorrect current password")
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "Account not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}

// AuthRoutes returns the unauthenticated auth router
func (h *Handler) AuthRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	r.Post("/logout", h.Logout)

	return r
}

// Routes returns the authenticated account router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/me", h.Me)
	r.Put("/pin", h.SetPIN)
	r.Put("/password", h.ChangePassword)

	return r
}
