package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/docsort/docsort-api/internal/domain/account"
	"github.com/docsort/docsort-api/internal/domain/gate"
	"github.com/docsort/docsort-api/internal/domain/usage"
	"github.com/docsort/docsort-api/internal/pkg/password"
	"github.com/docsort/docsort-api/internal/pkg/response"
	"github.com/docsort/docsort-api/internal/pkg/validator"
)

// AccountStore is the admin surface over credit accounts.
type AccountStore interface {
	Create(ctx context.Context, code string, credits int) error
	Grant(ctx context.Context, code string, amount int) error
	GetByCode(ctx context.Context, code string) (*account.CreditAccount, error)
	List(ctx context.Context, limit, offset int) ([]account.CreditAccount, error)
}

// UsageLister exposes recent request logs for auditing.
type UsageLister interface {
	List(ctx context.Context, limit, offset int) ([]usage.Entry, error)
}

// Handler handles admin HTTP requests
type Handler struct {
	jwtSvc       *JWTService
	accounts     AccountStore
	logs         UsageLister
	passwordHash string
}

// NewHandler creates admin handler
func NewHandler(jwtSvc *JWTService, accounts AccountStore, logs UsageLister, passwordHash string) *Handler {
	return &Handler{
		jwtSvc:       jwtSvc,
		accounts:     accounts,
		logs:         logs,
		passwordHash: passwordHash,
	}
}

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.BadRequest(w, validator.Message(errs))
		return
	}

	if h.passwordHash == "" {
		log.Error().Msg("Admin password hash not configured")
		response.Error(w, http.StatusInternalServerError, "Admin access not configured")
		return
	}

	if !password.Verify(req.Password, h.passwordHash) {
		response.Unauthorized(w, "Invalid credentials")
		return
	}

	token, err := h.jwtSvc.GenerateToken()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate admin token")
		response.InternalError(w)
		return
	}

	response.OK(w, LoginResponse{Token: token})
}

// CreateAccount handles POST /accounts
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.BadRequest(w, validator.Message(errs))
		return
	}

	// Codes are stored sanitized, same normalization the gate applies
	code := gate.SanitizeCode(req.Code)
	if code == "" {
		response.BadRequest(w, "code must contain alphanumeric characters")
		return
	}

	if err := h.accounts.Create(r.Context(), code, req.Credits); err != nil {
		switch {
		case errors.Is(err, account.ErrAlreadyExists):
			response.Error(w, http.StatusConflict, "Account already exists")
		default:
			log.Error().Err(err).Str("code", code).Msg("Failed to create account")
			response.InternalError(w)
		}
		return
	}

	acc, err := h.accounts.GetByCode(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Str("code", code).Msg("Failed to load created account")
		response.InternalError(w)
		return
	}

	response.Created(w, acc)
}

// Grant handles POST /accounts/{code}/grant
func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	code := gate.SanitizeCode(chi.URLParam(r, "code"))
	if code == "" {
		response.BadRequest(w, "code must contain alphanumeric characters")
		return
	}

	var req GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.BadRequest(w, validator.Message(errs))
		return
	}

	if err := h.accounts.Grant(r.Context(), code, req.Amount); err != nil {
		switch {
		case errors.Is(err, account.ErrNotFound):
			response.NotFound(w, "Account not found")
		case errors.Is(err, account.ErrInvalidAmount):
			response.BadRequest(w, "amount must be greater than 0")
		default:
			log.Error().Err(err).Str("code", code).Msg("Failed to grant credits")
			response.InternalError(w)
		}
		return
	}

	acc, err := h.accounts.GetByCode(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Str("code", code).Msg("Failed to load account after grant")
		response.InternalError(w)
		return
	}

	response.OK(w, acc)
}

// GetAccount handles GET /accounts/{code}
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	code := gate.SanitizeCode(chi.URLParam(r, "code"))

	acc, err := h.accounts.GetByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			response.NotFound(w, "Account not found")
			return
		}
		log.Error().Err(err).Str("code", code).Msg("Failed to get account")
		response.InternalError(w)
		return
	}

	response.OK(w, acc)
}

// ListAccounts handles GET /accounts
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	limit, offset := paging(r)

	accounts, err := h.accounts.List(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list accounts")
		response.InternalError(w)
		return
	}

	response.OK(w, accounts)
}

// ListUsage handles GET /usage
func (h *Handler) ListUsage(w http.ResponseWriter, r *http.Request) {
	limit, offset := paging(r)

	entries, err := h.logs.List(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list request logs")
		response.InternalError(w)
		return
	}

	response.OK(w, entries)
}

func paging(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
