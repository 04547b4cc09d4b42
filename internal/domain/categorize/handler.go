package categorize

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/docsort/docsort-api/internal/domain/gate"
	"github.com/docsort/docsort-api/internal/middleware"
	"github.com/docsort/docsort-api/internal/pkg/response"
	"github.com/docsort/docsort-api/internal/pkg/validator"
)

// Handler handles categorization HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates categorize handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Categorize handles POST /categorize
func (h *Handler) Categorize(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.BadRequest(w, validator.Message(errs))
		return
	}

	// Decode before measuring; the size limit applies to raw bytes, not
	// to the base64 text length.
	pdf, err := base64.StdEncoding.DecodeString(req.PDF)
	if err != nil {
		response.BadRequest(w, "pdf must be valid base64")
		return
	}

	payload, err := h.svc.Categorize(r.Context(), pdf, req.Categories, req.AuthCode, middleware.ClientIP(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, Response{JSONResponse: payload})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gate.ErrInvalidInput):
		response.BadRequest(w, err.Error())
	case errors.Is(err, gate.ErrUnauthorized):
		response.Unauthorized(w, "Invalid authorization code")
	case errors.Is(err, gate.ErrInsufficientCredits):
		response.PaymentRequired(w, "No credits remaining")
	case errors.Is(err, gate.ErrRateLimited):
		response.TooManyRequests(w, "Too many failed attempts, try again later")
	case errors.Is(err, gate.ErrReservationFailed):
		log.Error().Err(err).Msg("Credit reservation failed")
		response.Error(w, http.StatusInternalServerError, "Could not reserve credit")
	case errors.Is(err, ErrNotConfigured):
		log.Error().Err(err).Msg("Classifier not configured")
		response.Error(w, http.StatusInternalServerError, "Server configuration error")
	case errors.Is(err, ErrUpstream):
		log.Error().Err(err).Msg("Upstream classification error")
		response.Error(w, http.StatusInternalServerError, "Classification failed")
	default:
		log.Error().Err(err).Msg("Unhandled categorize error")
		response.InternalError(w)
	}
}
