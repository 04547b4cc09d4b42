package usage

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/docsort/docsort-api/internal/pkg/response"
)

// LastUsageProvider answers when the service was last used.
type LastUsageProvider interface {
	LastUsage(ctx context.Context) (time.Time, bool, error)
}

// Handler serves public usage endpoints.
type Handler struct {
	repo LastUsageProvider
}

func NewHandler(repo LastUsageProvider) *Handler {
	return &Handler{repo: repo}
}

// Last handles GET /usage/last
func (h *Handler) Last(w http.ResponseWriter, r *http.Request) {
	createdAt, found, err := h.repo.LastUsage(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch last usage")
		response.Error(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !found {
		response.NotFound(w, "No usage records found")
		return
	}

	response.OK(w, map[string]interface{}{
		"lastUsage": map[string]string{
			"created_at": createdAt.UTC().Format(time.RFC3339),
		},
	})
}
