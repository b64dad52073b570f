package painel

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	httpmiddleware "github.com/gestaoescolar/api/internal/http/middleware"
	"github.com/gestaoescolar/api/internal/rbac"
)

// Handler expõe o bootstrap e o dashboard do console.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/painel", func(r chi.Router) {
		r.Get("/bootstrap", h.handleBootstrap)
		r.Get("/dashboard", h.handleDashboard)
	})
}

func (h *Handler) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if !canView(ctx, rbac.SectionPainel) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso")
		return
	}

	boot := h.service.Bootstrap(ctx)

	logRequest(ctx, "GET /painel/bootstrap", start)
	writeJSON(w, http.StatusOK, boot)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if !canView(ctx, rbac.SectionPainel) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso")
		return
	}

	dash, err := h.service.Dashboard(ctx)
	if err != nil {
		log.Error().Err(err).Msg("painel dashboard error")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
		return
	}

	logRequest(ctx, "GET /painel/dashboard", start)
	writeJSON(w, http.StatusOK, dash)
}

func canView(ctx context.Context, section rbac.Section) bool {
	for _, raw := range httpmiddleware.GetRoles(ctx) {
		if role, ok := rbac.ParseRole(raw); ok && rbac.CanView(role, section) {
			return true
		}
	}
	return false
}

func logRequest(ctx context.Context, label string, start time.Time) {
	reqID := chimiddleware.GetReqID(ctx)
	log.Info().Str("request_id", reqID).Str("label", label).Dur("duration", time.Since(start)).Msg("painel_request")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": payload, "error": nil})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
