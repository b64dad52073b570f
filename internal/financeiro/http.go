package financeiro

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

// Handler orquestra rotas financeiras.
type Handler struct {
	service  *Service
	excel    export.Exporter
	pdf      export.Exporter
	arquivos storage.Uploader
}

func NewHandler(service *Service, excel, pdf export.Exporter, arquivos storage.Uploader) *Handler {
	return &Handler{service: service, excel: excel, pdf: pdf, arquivos: arquivos}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/financeiro", func(r chi.Router) {
		r.Get("/", h.handleListPagamentos)
		r.Post("/", h.handleCriarPagamento)
		r.Put("/{id}", h.handleAtualizarPagamento)
		r.Delete("/{id}", h.handleExcluirPagamento)
		r.Post("/{id}/quitar", h.handleQuitarPagamento)
		r.Get("/recebiveis", h.handleRecebiveis)
		r.Get("/planilha", h.handlePlanilha)
		r.Get("/relatorio", h.handleRelatorio)
	})
}

func (h *Handler) handleListPagamentos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !canView(ctx, rbac.SectionFinanceiro) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	pagamentos, err := h.service.ListPagamentos(ctx)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pagamentos": pagamentos})
}

type pagamentoPayload struct {
	AlunoID    uuid.UUID `json:"aluno_id"`
	Valor      float64   `json:"valor"`
	Vencimento string    `json:"vencimento"`
	Pagamento  *string   `json:"pagamento"`
	Status     string    `json:"status"`
	Descricao  string    `json:"descricao"`
}

func (h *Handler) handleCriarPagamento(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	var payload pagamentoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	pagamento, err := h.service.CriarPagamento(ctx, Pagamento{
		AlunoID:    payload.AlunoID,
		Valor:      payload.Valor,
		Vencimento: payload.Vencimento,
		Pagamento:  payload.Pagamento,
		Status:     payload.Status,
		Descricao:  payload.Descricao,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "POST /financeiro", start)
	writeJSON(w, http.StatusCreated, map[string]any{"pagamento": pagamento})
}

func (h *Handler) handleAtualizarPagamento(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "pagamento inválido", nil)
		return
	}

	var payload pagamentoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	pagamento, err := h.service.AtualizarPagamento(ctx, Pagamento{
		ID:         id,
		AlunoID:    payload.AlunoID,
		Valor:      payload.Valor,
		Vencimento: payload.Vencimento,
		Pagamento:  payload.Pagamento,
		Status:     payload.Status,
		Descricao:  payload.Descricao,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"pagamento": pagamento})
}

func (h *Handler) handleExcluirPagamento(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "pagamento inválido", nil)
		return
	}

	if err := h.service.ExcluirPagamento(ctx, id); err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleQuitarPagamento(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if !isAdmin(ctx) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "pagamento inválido", nil)
		return
	}

	pagamento, err := h.service.QuitarPagamento(ctx, id)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	logRequest(ctx, "POST /financeiro/quitar", start)
	writeJSON(w, http.StatusOK, map[string]any{"pagamento": pagamento})
}

func (h *Handler) handleRecebiveis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !canView(ctx, rbac.SectionFinanceiro) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	recebiveis, err := h.service.Recebiveis(ctx)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recebiveis": recebiveis})
}

func (h *Handler) financeTable(ctx context.Context) (export.Table, error) {
	pagamentos, err := h.service.ListPagamentos(ctx)
	if err != nil {
		return export.Table{}, err
	}

	table := export.Table{
		Title:   "Relatório financeiro",
		Headers: []string{"Aluno", "Descrição", "Vencimento", "Valor", "Status"},
	}
	var total float64
	for _, p := range pagamentos {
		status := p.Status
		if p.Atrasado {
			status = "Atrasado"
		}
		table.Rows = append(table.Rows, []string{
			p.AlunoID.String(),
			p.Descricao,
			p.Vencimento,
			fmt.Sprintf("R$ %.2f", p.Valor),
			status,
		})
		total += p.Valor
	}
	table.Footer = []string{"Total", "", "", fmt.Sprintf("R$ %.2f", total), ""}
	return table, nil
}

func (h *Handler) handlePlanilha(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, h.excel, "financeiro.xlsx", "GET /financeiro/planilha")
}

func (h *Handler) handleRelatorio(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, h.pdf, "financeiro.pdf", "GET /financeiro/relatorio")
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request, exporter export.Exporter, filename, label string) {
	ctx := r.Context()
	start := time.Now()
	if !canView(ctx, rbac.SectionRelatorios) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "sem acesso", nil)
		return
	}

	table, err := h.financeTable(ctx)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	data, contentType, err := exporter.Export(table)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	if h.arquivos != nil {
		if _, err := h.arquivos.Upload(ctx, storage.UploadInput{
			Key:         "relatorios/" + filename,
			Body:        data,
			ContentType: contentType,
		}); err != nil {
			log.Warn().Err(err).Msg("arquivamento do relatório falhou")
		}
	}

	logRequest(ctx, label, start)
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
	log.Error().Err(err).Msg("financeiro handler error")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
}

func logRequest(ctx context.Context, label string, start time.Time) {
	reqID := chimiddleware.GetReqID(ctx)
	log.Info().Str("request_id", reqID).Str("label", label).Dur("duration", time.Since(start)).Msg("financeiro_request")
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
