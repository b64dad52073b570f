package turmas

import (
	"testing"

	"github.com/google/uuid"
)

func TestComputeFrequenciaContasFecham(t *testing.T) {
	ana := AlunoRef{ID: uuid.New(), Nome: "Ana"}
	bruno := AlunoRef{ID: uuid.New(), Nome: "Bruno"}
	carla := AlunoRef{ID: uuid.New(), Nome: "Carla"}
	alunos := []AlunoRef{ana, bruno, carla}

	turmaID := uuid.New()
	chamadas := []Chamada{
		{TurmaID: turmaID, Data: "2024-03-04", Presentes: []uuid.UUID{ana.ID, bruno.ID}},
		{TurmaID: turmaID, Data: "2024-03-05", Presentes: []uuid.UUID{ana.ID}},
		{TurmaID: turmaID, Data: "2024-03-06", Presentes: []uuid.UUID{ana.ID, bruno.ID, carla.ID}},
	}

	linhas := ComputeFrequencia(alunos, chamadas)
	if len(linhas) != 3 {
		t.Fatalf("linhas = %d, want 3", len(linhas))
	}

	// Σ presenças + Σ faltas = chamadas × alunos
	var presencas, faltas int
	for _, l := range linhas {
		presencas += l.Presencas
		faltas += l.Faltas
	}
	if presencas+faltas != len(chamadas)*len(alunos) {
		t.Fatalf("presenças(%d) + faltas(%d) != %d", presencas, faltas, len(chamadas)*len(alunos))
	}

	byNome := make(map[string]FrequenciaAluno)
	for _, l := range linhas {
		byNome[l.Nome] = l
	}
	if byNome["Ana"].Presencas != 3 || byNome["Ana"].Faltas != 0 {
		t.Fatalf("Ana = %+v", byNome["Ana"])
	}
	if byNome["Bruno"].Presencas != 2 || byNome["Bruno"].Faltas != 1 {
		t.Fatalf("Bruno = %+v", byNome["Bruno"])
	}
	if byNome["Carla"].Percentual < 33.2 || byNome["Carla"].Percentual > 33.4 {
		t.Fatalf("percentual da Carla = %.2f, want ~33.33", byNome["Carla"].Percentual)
	}
}

func TestComputeFrequenciaSemChamadas(t *testing.T) {
	alunos := []AlunoRef{{ID: uuid.New(), Nome: "Davi"}}

	linhas := ComputeFrequencia(alunos, nil)
	if len(linhas) != 1 {
		t.Fatalf("linhas = %d, want 1", len(linhas))
	}
	if linhas[0].Percentual != 0 {
		t.Fatalf("sem chamadas o percentual deve ser 0, veio %.2f", linhas[0].Percentual)
	}
	if linhas[0].Faltas != 0 || linhas[0].Presencas != 0 {
		t.Fatalf("linha = %+v", linhas[0])
	}
}

func TestComputeFrequenciaOrdenaComColacaoPtBR(t *testing.T) {
	alunos := []AlunoRef{
		{ID: uuid.New(), Nome: "Érica"},
		{ID: uuid.New(), Nome: "Eduardo"},
		{ID: uuid.New(), Nome: "Ana"},
	}

	linhas := ComputeFrequencia(alunos, nil)

	want := []string{"Ana", "Eduardo", "Érica"}
	for i, nome := range want {
		if linhas[i].Nome != nome {
			t.Fatalf("ordem[%d] = %s, want %s", i, linhas[i].Nome, nome)
		}
	}
}
