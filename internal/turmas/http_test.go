package turmas

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gestaoescolar/api/internal/export"
	httpmiddleware "github.com/gestaoescolar/api/internal/http/middleware"
	"github.com/gestaoescolar/api/internal/storage"
)

func newTestRouter(repo *stubTurmaRepo, arquivos storage.Uploader) *chi.Mux {
	handler := NewHandler(NewService(repo), export.ExcelExporter{}, arquivos)
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, r http.Handler, method, target string, body any, roles ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req = req.WithContext(httpmiddleware.WithRoles(context.Background(), roles...))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCriarTurmaHTTP(t *testing.T) {
	repo := newStubTurmaRepo()
	r := newTestRouter(repo, nil)

	payload := map[string]any{
		"nome":         "7º Ano B",
		"disciplina":   "Matemática",
		"professor_id": uuid.New().String(),
		"alunos":       []string{uuid.New().String()},
	}

	rec := doRequest(t, r, http.MethodPost, "/turmas", payload, "ADMIN")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(repo.turmas) != 1 {
		t.Fatal("turma não persistida")
	}
}

func TestCriarTurmaHTTPForbiddenParaProfessor(t *testing.T) {
	// Professor enxerga turmas mas não cria.
	r := newTestRouter(newStubTurmaRepo(), nil)

	rec := doRequest(t, r, http.MethodPost, "/turmas", map[string]any{"nome": "7º Ano"}, "PROFESSOR")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRegistrarChamadaHTTP(t *testing.T) {
	repo := newStubTurmaRepo()
	aluno := uuid.New()
	turma := novaTurma(t, repo, aluno)
	r := newTestRouter(repo, nil)

	payload := map[string]any{
		"data":      "2024-03-04",
		"presentes": []string{aluno.String()},
	}

	// PROFESSOR pode registrar chamada.
	rec := doRequest(t, r, http.MethodPost, "/turmas/"+turma.ID.String()+"/chamadas", payload, "PROFESSOR")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(repo.chamadas) != 1 {
		t.Fatal("chamada não persistida")
	}

	rec = doRequest(t, r, http.MethodPost, "/turmas/"+turma.ID.String()+"/chamadas", payload, "RESPONSAVEL")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("responsável: status = %d, want 403", rec.Code)
	}
}

func TestRegistrarChamadaHTTPSemData(t *testing.T) {
	repo := newStubTurmaRepo()
	turma := novaTurma(t, repo)
	r := newTestRouter(repo, nil)

	rec := doRequest(t, r, http.MethodPost, "/turmas/"+turma.ID.String()+"/chamadas", map[string]any{}, "ADMIN")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestFrequenciaHTTP(t *testing.T) {
	repo := newStubTurmaRepo()
	aluno := uuid.New()
	turma := novaTurma(t, repo, aluno)
	repo.alunos = []AlunoRef{{ID: aluno, Nome: "Ana"}}

	svc := NewService(repo)
	ctx := context.Background()
	if _, err := svc.RegistrarChamada(ctx, Chamada{TurmaID: turma.ID, Data: "2024-03-04", Presentes: []uuid.UUID{aluno}}); err != nil {
		t.Fatalf("chamada 1: %v", err)
	}
	if _, err := svc.RegistrarChamada(ctx, Chamada{TurmaID: turma.ID, Data: "2024-03-05"}); err != nil {
		t.Fatalf("chamada 2: %v", err)
	}

	r := newTestRouter(repo, nil)
	rec := doRequest(t, r, http.MethodGet, "/turmas/"+turma.ID.String()+"/frequencia", nil, "PROFESSOR")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var out struct {
		Data struct {
			Frequencia []FrequenciaAluno `json:"frequencia"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Data.Frequencia) != 1 {
		t.Fatalf("linhas = %d, want 1", len(out.Data.Frequencia))
	}
	linha := out.Data.Frequencia[0]
	if linha.Presencas != 1 || linha.Faltas != 1 || linha.Percentual != 50 {
		t.Fatalf("linha = %+v", linha)
	}
}

func TestFrequenciaHTTPTurmaInexistente(t *testing.T) {
	r := newTestRouter(newStubTurmaRepo(), nil)

	rec := doRequest(t, r, http.MethodGet, "/turmas/"+uuid.NewString()+"/frequencia", nil, "ADMIN")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestFrequenciaPlanilhaHTTP(t *testing.T) {
	repo := newStubTurmaRepo()
	aluno := uuid.New()
	turma := novaTurma(t, repo, aluno)
	repo.alunos = []AlunoRef{{ID: aluno, Nome: "Ana"}}

	// Arquivamento sem backend configurado falha em silêncio.
	r := newTestRouter(repo, storage.NoopUploader{})
	rec := doRequest(t, r, http.MethodGet, "/turmas/"+turma.ID.String()+"/frequencia/planilha", nil, "ADMIN")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, turma.ID.String()) {
		t.Fatalf("content disposition = %q", cd)
	}
}

func TestExcluirTurmaHTTP(t *testing.T) {
	repo := newStubTurmaRepo()
	turma := novaTurma(t, repo)
	r := newTestRouter(repo, nil)

	rec := doRequest(t, r, http.MethodDelete, "/turmas/"+turma.ID.String(), nil, "ADMIN")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(repo.turmas) != 0 {
		t.Fatal("turma não excluída")
	}

	rec = doRequest(t, r, http.MethodDelete, "/turmas/"+turma.ID.String(), nil, "ADMIN")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("segunda exclusão: status = %d, want 404", rec.Code)
	}
}
