package painel

import (
	"github.com/gestaoescolar/api/internal/agenda"
	"github.com/gestaoescolar/api/internal/cadastro"
	"github.com/gestaoescolar/api/internal/financeiro"
)

// Resumo agrega os indicadores exibidos no topo do painel.
type Resumo struct {
	TotalAlunos     int     `json:"total_alunos"`
	AulasConcluidas int     `json:"aulas_concluidas"`
	Receita         float64 `json:"receita"`
	Pendencias      int     `json:"pendencias"`
}

// ComputeResumo reduz as coleções carregadas aos indicadores do painel.
// Todas as contas são filter+reduce simples, independentes de ordenação.
func ComputeResumo(alunos []cadastro.Aluno, aulas []agenda.Aula, pagamentos []financeiro.PagamentoView) Resumo {
	resumo := Resumo{TotalAlunos: len(alunos)}

	for _, a := range aulas {
		if a.Status == agenda.StatusConcluida {
			resumo.AulasConcluidas++
		}
	}

	for _, p := range pagamentos {
		switch p.Status {
		case financeiro.StatusPago:
			resumo.Receita += p.Valor
		case financeiro.StatusAtrasado:
			resumo.Pendencias++
		}
	}

	return resumo
}
