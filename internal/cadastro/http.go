package cadastro

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

// Handler orquestra rotas dos cadastros básicos.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/alunos", func(r chi.Router) {
		r.Get("/", h.handleListAlunos)
		r.Post("/", h.handleCriarAluno)
		r.Put("/{id}", h.handleAtualizarAluno)
		r.Post("/{id}/orientacao", h.handleOrientacao)
	})

	r.Route("/professores", func(r chi.Router) {
		r.Get("/", h.handleListProfessores)
		r.Post("/", h.handleCriarProfessor)
		r.Put("/{id}", h.handleAtualizarProfessor)
		r.Delete("/{id}", h.handleExcluirProfessor)
	})

	r.Route("/instituicoes", func(r chi.Router) {
		r.Get("/", h.handleListInstituicoes)
		r.Post("/", h.handleCriarInstituicao)
		r.Put("/{id}", h.handleAtualizarInstituicao)
		r.Delete("/{id}", h.handleExcluirInstituicao)
	})

	r.Route("/usuarios", func(r chi.Router) {
		r.Get("/", h.handleListUsuarios)
		r.Post("/", h.handleCriarUsuario)
		r.Put("/{id}", h.handleAtualizarUsuario)
	})
}

func (h *Handler) handleListAlunos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !canView(ctx, rbac.SectionAlunos) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	alunos, err := h.service.ListAlunos(ctx)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alunos": alunos})
}

type alunoPayload struct {
	Nome           string     `json:"nome"`
	DataNascimento string     `json:"data_nascimento"`
	Serie          string     `json:"serie"`
	Escola         string     `json:"escola"`
	ResponsavelID  *uuid.UUID `json:"responsavel_id"`
	Disciplinas    []string   `json:"disciplinas"`
	Mensalidade    *float64   `json:"mensalidade"`
}

func (h *Handler) handleCriarAluno(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	var payload alunoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	aluno, err := h.service.CriarAluno(ctx, Aluno{
		Nome:           payload.Nome,
		DataNascimento: payload.DataNascimento,
		Serie:          payload.Serie,
		Escola:         payload.Escola,
		ResponsavelID:  payload.ResponsavelID,
		Disciplinas:    payload.Disciplinas,
		Mensalidade:    payload.Mensalidade,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "POST /alunos", start)
	writeJSON(w, http.StatusCreated, map[string]any{"aluno": aluno})
}

func (h *Handler) handleAtualizarAluno(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "aluno inválido", nil)
		return
	}

	var payload alunoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	aluno, err := h.service.AtualizarAluno(ctx, Aluno{
		ID:             id,
		Nome:           payload.Nome,
		DataNascimento: payload.DataNascimento,
		Serie:          payload.Serie,
		Escola:         payload.Escola,
		ResponsavelID:  payload.ResponsavelID,
		Disciplinas:    payload.Disciplinas,
		Mensalidade:    payload.Mensalidade,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "PUT /alunos", start)
	writeJSON(w, http.StatusOK, map[string]any{"aluno": aluno})
}

func (h *Handler) handleOrientacao(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if !canView(ctx, rbac.SectionAlunos) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "aluno inválido", nil)
		return
	}

	texto, err := h.service.GerarOrientacao(ctx, id)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "POST /alunos/orientacao", start)
	writeJSON(w, http.StatusOK, map[string]string{"orientacao": texto})
}

func (h *Handler) handleListProfessores(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !canView(ctx, rbac.SectionProfessores) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	professores, err := h.service.ListProfessores(ctx)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"professores": professores})
}

type professorPayload struct {
	Nome        string   `json:"nome"`
	Email       string   `json:"email"`
	Telefone    string   `json:"telefone"`
	Disciplinas []string `json:"disciplinas"`
}

func (h *Handler) handleCriarProfessor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	var payload professorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	professor, err := h.service.CriarProfessor(ctx, Professor{
		Nome:        payload.Nome,
		Email:       payload.Email,
		Telefone:    payload.Telefone,
		Disciplinas: payload.Disciplinas,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "POST /professores", start)
	writeJSON(w, http.StatusCreated, map[string]any{"professor": professor})
}

func (h *Handler) handleAtualizarProfessor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "professor inválido", nil)
		return
	}

	var payload professorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	professor, err := h.service.AtualizarProfessor(ctx, Professor{
		ID:          id,
		Nome:        payload.Nome,
		Email:       payload.Email,
		Telefone:    payload.Telefone,
		Disciplinas: payload.Disciplinas,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"professor": professor})
}

func (h *Handler) handleExcluirProfessor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "professor inválido", nil)
		return
	}

	if err := h.service.ExcluirProfessor(ctx, id); err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleListInstituicoes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !canView(ctx, rbac.SectionInstituicoes) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	instituicoes, err := h.service.ListInstituicoes(ctx)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"instituicoes": instituicoes})
}

type instituicaoPayload struct {
	Nome     string `json:"nome"`
	Endereco string `json:"endereco"`
	Telefone string `json:"telefone"`
	Email    string `json:"email"`
}

func (h *Handler) handleCriarInstituicao(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	var payload instituicaoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	instituicao, err := h.service.CriarInstituicao(ctx, Instituicao{
		Nome:     payload.Nome,
		Endereco: payload.Endereco,
		Telefone: payload.Telefone,
		Email:    payload.Email,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"instituicao": instituicao})
}

func (h *Handler) handleAtualizarInstituicao(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "instituição inválida", nil)
		return
	}

	var payload instituicaoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	instituicao, err := h.service.AtualizarInstituicao(ctx, Instituicao{
		ID:       id,
		Nome:     payload.Nome,
		Endereco: payload.Endereco,
		Telefone: payload.Telefone,
		Email:    payload.Email,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"instituicao": instituicao})
}

func (h *Handler) handleExcluirInstituicao(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "instituição inválida", nil)
		return
	}

	if err := h.service.ExcluirInstituicao(ctx, id); err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleListUsuarios(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	usuarios, err := h.service.ListUsuarios(ctx)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"usuarios": usuarios})
}

type usuarioPayload struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Papel string `json:"papel"`
	Senha string `json:"senha"`
	Ativo *bool  `json:"ativo"`
}

func (h *Handler) handleCriarUsuario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	var payload usuarioPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	usuario, err := h.service.CriarUsuario(ctx, Usuario{
		Nome:  payload.Nome,
		Email: payload.Email,
		Papel: payload.Papel,
	}, payload.Senha)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"usuario": usuario})
}

func (h *Handler) handleAtualizarUsuario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "usuário inválido", nil)
		return
	}

	var payload usuarioPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	ativo := true
	if payload.Ativo != nil {
		ativo = *payload.Ativo
	}

	usuario, err := h.service.AtualizarUsuario(ctx, Usuario{
		ID:    id,
		Nome:  payload.Nome,
		Email: payload.Email,
		Papel: payload.Papel,
		Ativo: ativo,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"usuario": usuario})
}

func isAdmin(ctx context.Context) bool {
	for _, role := range httpmiddleware.GetRoles(ctx) {
		if role == string(rbac.RoleAdmin) {
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
	log.Error().Err(err).Msg("cadastro handler error")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
}

func logRequest(ctx context.Context, label string, start time.Time) {
	reqID := chimiddleware.GetReqID(ctx)
	log.Info().Str("request_id", reqID).Str("label", label).Dur("duration", time.Since(start)).Msg("cadastro_request")
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
