package access

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/docsort/docsort-api/internal/pkg/response"
	"github.com/docsort/docsort-api/internal/pkg/validator"
)

// Handler handles access request HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates access handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Submit handles POST /access-requests (public)
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.BadRequest(w, "Missing required fields")
		return
	}

	if err := h.svc.Submit(r.Context(), &req); err != nil {
		switch {
		case errors.Is(err, ErrInvalidCaptcha):
			response.BadRequest(w, "Invalid reCAPTCHA")
		default:
			log.Error().Err(err).Msg("Failed to submit access request")
			response.Error(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	response.OK(w, map[string]string{"message": "Request submitted successfully"})
}
