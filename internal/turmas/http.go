package turmas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gestaoescolar/api/internal/export"
	httpmiddleware "github.com/gestaoescolar/api/internal/http/middleware"
	"github.com/gestaoescolar/api/internal/rbac"
	"github.com/gestaoescolar/api/internal/storage"
)

// Handler orquestra rotas de turmas e chamadas.
type Handler struct {
	service  *Service
	excel    export.Exporter
	arquivos storage.Uploader
}

func NewHandler(service *Service, excel export.Exporter, arquivos storage.Uploader) *Handler {
	return &Handler{service: service, excel: excel, arquivos: arquivos}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/turmas", func(r chi.Router) {
		r.Get("/", h.handleListTurmas)
		r.Post("/", h.handleCriarTurma)
		r.Put("/{id}", h.handleAtualizarTurma)
		r.Delete("/{id}", h.handleExcluirTurma)
		r.Get("/{id}/chamadas", h.handleListChamadas)
		r.Post("/{id}/chamadas", h.handleRegistrarChamada)
		r.Get("/{id}/frequencia", h.handleFrequencia)
		r.Get("/{id}/frequencia/planilha", h.handleFrequenciaPlanilha)
	})
}

func (h *Handler) handleListTurmas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !canView(ctx, rbac.SectionTurmas) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	turmas, err := h.service.ListTurmas(ctx)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"turmas": turmas})
}

type turmaPayload struct {
	Nome        string      `json:"nome"`
	Disciplina  string      `json:"disciplina"`
	ProfessorID uuid.UUID   `json:"professor_id"`
	Alunos      []uuid.UUID `json:"alunos"`
}

func (h *Handler) handleCriarTurma(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	var payload turmaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	turma, err := h.service.CriarTurma(ctx, Turma{
		Nome:        payload.Nome,
		Disciplina:  payload.Disciplina,
		ProfessorID: payload.ProfessorID,
		Alunos:      payload.Alunos,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "POST /turmas", start)
	writeJSON(w, http.StatusCreated, map[string]any{"turma": turma})
}

func (h *Handler) handleAtualizarTurma(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "turma inválida", nil)
		return
	}

	var payload turmaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	turma, err := h.service.AtualizarTurma(ctx, Turma{
		ID:          id,
		Nome:        payload.Nome,
		Disciplina:  payload.Disciplina,
		ProfessorID: payload.ProfessorID,
		Alunos:      payload.Alunos,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"turma": turma})
}

func (h *Handler) handleExcluirTurma(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "turma inválida", nil)
		return
	}

	if err := h.service.ExcluirTurma(ctx, id); err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleListChamadas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !canView(ctx, rbac.SectionTurmas) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "turma inválida", nil)
		return
	}

	chamadas, err := h.service.ListChamadas(ctx, id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chamadas": chamadas})
}

func (h *Handler) handleRegistrarChamada(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if !canMarkChamada(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "turma inválida", nil)
		return
	}

	var payload struct {
		Data      string      `json:"data"`
		Presentes []uuid.UUID `json:"presentes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}
	if payload.Data == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "data obrigatória", nil)
		return
	}

	chamada, err := h.service.RegistrarChamada(ctx, Chamada{
		TurmaID:   id,
		Data:      payload.Data,
		Presentes: payload.Presentes,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "POST /turmas/chamadas", start)
	writeJSON(w, http.StatusOK, map[string]any{"chamada": chamada})
}

func (h *Handler) handleFrequencia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !canView(ctx, rbac.SectionTurmas) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "turma inválida", nil)
		return
	}

	linhas, err := h.service.RelatorioFrequencia(ctx, id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"frequencia": linhas})
}

func (h *Handler) handleFrequenciaPlanilha(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if !canView(ctx, rbac.SectionRelatorios) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "turma inválida", nil)
		return
	}

	linhas, err := h.service.RelatorioFrequencia(ctx, id)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	table := export.Table{
		Title:   "Frequência da turma",
		Headers: []string{"Aluno", "Presenças", "Faltas", "Percentual"},
	}
	for _, linha := range linhas {
		table.Rows = append(table.Rows, []string{
			linha.Nome,
			fmt.Sprintf("%d", linha.Presencas),
			fmt.Sprintf("%d", linha.Faltas),
			fmt.Sprintf("%.1f%%", linha.Percentual),
		})
	}

	data, contentType, err := h.excel.Export(table)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	filename := fmt.Sprintf("frequencia-%s.xlsx", id)
	if h.arquivos != nil {
		if _, err := h.arquivos.Upload(ctx, storage.UploadInput{
			Key:         "relatorios/" + filename,
			Body:        data,
			ContentType: contentType,
		}); err != nil {
			log.Warn().Err(err).Msg("arquivamento da planilha falhou")
		}
	}

	logRequest(ctx, "GET /turmas/frequencia/planilha", start)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func isAdmin(ctx context.Context) bool {
	for _, role := range httpmiddleware.GetRoles(ctx) {
		if role == string(rbac.RoleAdmin) {
			return true
		}
	}
	return false
}

func canMarkChamada(ctx context.Context) bool {
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
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "registro não encontrado", nil)
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("turmas handler error")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
}

func logRequest(ctx context.Context, label string, start time.Time) {
	reqID := chimiddleware.GetReqID(ctx)
	log.Info().Str("request_id", reqID).Str("label", label).Dur("duration", time.Since(start)).Msg("turmas_request")
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
