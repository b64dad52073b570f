package turmas

import (
	"sort"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FrequenciaAluno é uma linha do relatório de frequência da turma.
type FrequenciaAluno struct {
	AlunoID    uuid.UUID `json:"aluno_id"`
	Nome       string    `json:"nome"`
	Presencas  int       `json:"presencas"`
	Faltas     int       `json:"faltas"`
	Percentual float64   `json:"percentual"`
}

// ComputeFrequencia calcula presenças, faltas e percentual por aluno a partir
// das chamadas registradas. totalClasses é o número de chamadas (dias em que
// houve registro), não o número de aulas agendadas. Sem chamadas, o
// percentual é definido como zero. Função pura: segura para recomputar a
// cada requisição.
func ComputeFrequencia(alunos []AlunoRef, chamadas []Chamada) []FrequenciaAluno {
	total := len(chamadas)

	presencas := make(map[uuid.UUID]int, len(alunos))
	for _, c := range chamadas {
		for _, id := range c.Presentes {
			presencas[id]++
		}
	}

	linhas := make([]FrequenciaAluno, 0, len(alunos))
	for _, a := range alunos {
		p := presencas[a.ID]
		linha := FrequenciaAluno{
			AlunoID:   a.ID,
			Nome:      a.Nome,
			Presencas: p,
			Faltas:    total - p,
		}
		if total > 0 {
			linha.Percentual = float64(p) / float64(total) * 100
		}
		linhas = append(linhas, linha)
	}

	// Ordenação por nome com colação pt-BR, como a listagem do console.
	col := collate.New(language.BrazilianPortuguese)
	sort.SliceStable(linhas, func(i, j int) bool {
		return col.CompareString(linhas[i].Nome, linhas[j].Nome) < 0
	})

	return linhas
}
