package agenda

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	httpmiddleware "github.com/gestaoescolar/api/internal/http/middleware"
	"github.com/gestaoescolar/api/internal/rbac"
)

// Handler orquestra rotas da agenda.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/agenda", func(r chi.Router) {
		r.Get("/", h.handleListAulas)
		r.Get("/semana", h.handleAgendaSemanal)
		r.Post("/", h.handleAgendarAula)
		r.Put("/{id}", h.handleReagendarAula)
		r.Post("/{id}/concluir", h.handleConcluirAula)
		r.Post("/{id}/cancelar", h.handleCancelarAula)
	})
}

func (h *Handler) handleListAulas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !canView(ctx, rbac.SectionAgenda) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	aulas, err := h.service.ListAulas(ctx)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"aulas": aulas})
}

func (h *Handler) handleAgendaSemanal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !canView(ctx, rbac.SectionAgenda) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	buckets, err := h.service.AgendaSemanal(ctx)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	dias := map[string][]Aula{}
	nomes := []string{"domingo", "segunda", "terca", "quarta", "quinta", "sexta", "sabado"}
	for i, nome := range nomes {
		dias[nome] = buckets[i]
	}
	writeJSON(w, http.StatusOK, map[string]any{"semana": dias})
}

type aulaPayload struct {
	AlunoID     uuid.UUID `json:"aluno_id"`
	ProfessorID uuid.UUID `json:"professor_id"`
	Disciplina  string    `json:"disciplina"`
	Data        string    `json:"data"`
	Hora        string    `json:"hora"`
}

func (h *Handler) handleAgendarAula(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if !canSchedule(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	var payload aulaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	aula, err := h.service.AgendarAula(ctx, Aula{
		AlunoID:     payload.AlunoID,
		ProfessorID: payload.ProfessorID,
		Disciplina:  payload.Disciplina,
		Data:        payload.Data,
		Hora:        payload.Hora,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "POST /agenda", start)
	writeJSON(w, http.StatusCreated, map[string]any{"aula": aula})
}

func (h *Handler) handleReagendarAula(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !canSchedule(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "aula inválida", nil)
		return
	}

	var payload aulaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	aula, err := h.service.ReagendarAula(ctx, Aula{
		ID:          id,
		AlunoID:     payload.AlunoID,
		ProfessorID: payload.ProfessorID,
		Disciplina:  payload.Disciplina,
		Data:        payload.Data,
		Hora:        payload.Hora,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"aula": aula})
}

func (h *Handler) handleConcluirAula(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if !canSchedule(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "aula inválida", nil)
		return
	}

	var payload struct {
		Observacoes string `json:"observacoes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	aula, err := h.service.ConcluirAula(ctx, id, payload.Observacoes)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "POST /agenda/concluir", start)
	writeJSON(w, http.StatusOK, map[string]any{"aula": aula})
}

func (h *Handler) handleCancelarAula(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !canSchedule(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "aula inválida", nil)
		return
	}

	aula, err := h.service.CancelarAula(ctx, id)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"aula": aula})
}

func canSchedule(ctx context.Context) bool {
	for _, role := range httpmiddleware.GetRoles(ctx) {
		switch role {
		case string(rbac.RoleAdmin), string(rbac.RoleProfessor):
			return true
		}
	}
	return false
}

func canView(ctx context.Context, section rbac.Section) bool {
	for _, raw := range httpmiddleware.GetRoles(ctx) {
		if role, ok := rbac.ParseRole(raw); ok && rbac.CanView(role, section) {
			return true
		}
	}
	return false
}

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, ErrTransicao):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "registro não encontrado", nil)
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("agenda handler error")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
}

func logRequest(ctx context.Context, label string, start time.Time) {
	reqID := chimiddleware.GetReqID(ctx)
	log.Info().Str("request_id", reqID).Str("label", label).Dur("duration", time.Since(start)).Msg("agenda_request")
}

type successEnvelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

type errorEnvelope struct {
	Data  any            `json:"data"`
	Error *errorResponse `json:"error"`
}

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successEnvelope{Data: payload, Error: nil})
}

func writeError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Data: nil, Error: &errorResponse{Code: code, Message: message, Details: details}})
}
