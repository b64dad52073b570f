package painel

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/gestaoescolar/api/internal/agenda"
	"github.com/gestaoescolar/api/internal/cadastro"
	"github.com/gestaoescolar/api/internal/financeiro"
	"github.com/gestaoescolar/api/internal/turmas"
)

type stubCadastro struct {
	alunos      []cadastro.Aluno
	professores []cadastro.Professor
	err         error
}

func (s *stubCadastro) ListAlunos(ctx context.Context) ([]cadastro.Aluno, error) {
	return s.alunos, s.err
}

func (s *stubCadastro) ListProfessores(ctx context.Context) ([]cadastro.Professor, error) {
	return s.professores, s.err
}

type stubTurmas struct {
	turmas   []turmas.Turma
	chamadas []turmas.Chamada
	err      error
}

func (s *stubTurmas) ListTurmas(ctx context.Context) ([]turmas.Turma, error) {
	return s.turmas, s.err
}

func (s *stubTurmas) ListTodasChamadas(ctx context.Context) ([]turmas.Chamada, error) {
	return s.chamadas, s.err
}

type stubAgenda struct {
	aulas []agenda.Aula
	err   error
}

func (s *stubAgenda) ListAulas(ctx context.Context) ([]agenda.Aula, error) {
	return s.aulas, s.err
}

func (s *stubAgenda) AgendaSemanal(ctx context.Context) ([7][]agenda.Aula, error) {
	if s.err != nil {
		return [7][]agenda.Aula{}, s.err
	}
	return agenda.SemanaBuckets(s.aulas), nil
}

type stubFinanceiro struct {
	pagamentos []financeiro.PagamentoView
	err        error
}

func (s *stubFinanceiro) ListPagamentos(ctx context.Context) ([]financeiro.PagamentoView, error) {
	return s.pagamentos, s.err
}

func (s *stubFinanceiro) Recebiveis(ctx context.Context) (financeiro.Recebiveis, error) {
	if s.err != nil {
		return financeiro.Recebiveis{}, s.err
	}
	return financeiro.Recebiveis{Quantidade: len(s.pagamentos)}, nil
}

func TestBootstrapCargaParalela(t *testing.T) {
	svc := NewService(
		&stubCadastro{
			alunos:      []cadastro.Aluno{{ID: uuid.New(), Nome: "Ana"}},
			professores: []cadastro.Professor{{ID: uuid.New(), Nome: "Paulo"}},
		},
		&stubTurmas{turmas: []turmas.Turma{{ID: uuid.New(), Nome: "7º Ano"}}},
		&stubAgenda{aulas: []agenda.Aula{{ID: uuid.New(), Data: "2024-03-04"}}},
		&stubFinanceiro{pagamentos: []financeiro.PagamentoView{{}}},
		nil,
	)

	boot := svc.Bootstrap(context.Background())

	if len(boot.Alunos) != 1 || len(boot.Professores) != 1 || len(boot.Turmas) != 1 ||
		len(boot.Aulas) != 1 || len(boot.Pagamentos) != 1 {
		t.Fatalf("bootstrap incompleto: %+v", boot)
	}
}

func TestBootstrapDegradaColecaoIsolada(t *testing.T) {
	// A falha de uma carga nunca esvazia as outras cinco.
	svc := NewService(
		&stubCadastro{alunos: []cadastro.Aluno{{ID: uuid.New(), Nome: "Ana"}}},
		&stubTurmas{err: errors.New("banco fora")},
		&stubAgenda{aulas: []agenda.Aula{{ID: uuid.New(), Data: "2024-03-04"}}},
		&stubFinanceiro{pagamentos: []financeiro.PagamentoView{{}}},
		nil,
	)

	boot := svc.Bootstrap(context.Background())

	if len(boot.Turmas) != 0 || len(boot.Chamadas) != 0 {
		t.Fatalf("coleções com falha deveriam degradar para vazio: %+v", boot)
	}
	if len(boot.Alunos) != 1 {
		t.Fatal("alunos deveriam sobreviver à falha de turmas")
	}
	if len(boot.Aulas) != 1 || len(boot.Pagamentos) != 1 {
		t.Fatal("agenda e financeiro deveriam sobreviver à falha de turmas")
	}
}

func TestDashboardSemCache(t *testing.T) {
	aula := agenda.Aula{ID: uuid.New(), Data: "2024-03-04", Status: agenda.StatusConcluida}
	pago := financeiro.PagamentoView{Pagamento: financeiro.Pagamento{Valor: 300, Status: financeiro.StatusPago}}

	svc := NewService(
		&stubCadastro{alunos: []cadastro.Aluno{{ID: uuid.New()}, {ID: uuid.New()}}},
		&stubTurmas{},
		&stubAgenda{aulas: []agenda.Aula{aula}},
		&stubFinanceiro{pagamentos: []financeiro.PagamentoView{pago}},
		nil,
	)

	dash, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if dash.Resumo.TotalAlunos != 2 {
		t.Fatalf("total alunos = %d, want 2", dash.Resumo.TotalAlunos)
	}
	if dash.Resumo.AulasConcluidas != 1 {
		t.Fatalf("aulas concluídas = %d, want 1", dash.Resumo.AulasConcluidas)
	}
	if dash.Resumo.Receita != 300 {
		t.Fatalf("receita = %.2f, want 300", dash.Resumo.Receita)
	}
}

func TestComputeResumo(t *testing.T) {
	alunos := []cadastro.Aluno{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}
	aulas := []agenda.Aula{
		{Status: agenda.StatusConcluida},
		{Status: agenda.StatusConcluida},
		{Status: agenda.StatusAgendada},
		{Status: agenda.StatusCancelada},
	}
	pagamentos := []financeiro.PagamentoView{
		{Pagamento: financeiro.Pagamento{Valor: 100, Status: financeiro.StatusPago}},
		{Pagamento: financeiro.Pagamento{Valor: 250, Status: financeiro.StatusPago}},
		{Pagamento: financeiro.Pagamento{Valor: 400, Status: financeiro.StatusPendente}},
		{Pagamento: financeiro.Pagamento{Valor: 800, Status: financeiro.StatusAtrasado}},
	}

	resumo := ComputeResumo(alunos, aulas, pagamentos)

	if resumo.TotalAlunos != 3 {
		t.Fatalf("total alunos = %d", resumo.TotalAlunos)
	}
	if resumo.AulasConcluidas != 2 {
		t.Fatalf("aulas concluídas = %d", resumo.AulasConcluidas)
	}
	if resumo.Receita != 350 {
		t.Fatalf("receita = %.2f, want 350 (só PAGO)", resumo.Receita)
	}
	if resumo.Pendencias != 1 {
		t.Fatalf("pendências = %d, want 1", resumo.Pendencias)
	}
}
