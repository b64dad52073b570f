package turmas

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type chamadaKey struct {
	turma uuid.UUID
	data  string
}

type stubTurmaRepo struct {
	turmas   map[uuid.UUID]Turma
	chamadas map[chamadaKey]Chamada
	alunos   []AlunoRef
}

func newStubTurmaRepo() *stubTurmaRepo {
	return &stubTurmaRepo{
		turmas:   make(map[uuid.UUID]Turma),
		chamadas: make(map[chamadaKey]Chamada),
	}
}

func (s *stubTurmaRepo) ListTurmas(ctx context.Context) ([]Turma, error) {
	var out []Turma
	for _, t := range s.turmas {
		out = append(out, t)
	}
	return out, nil
}

func (s *stubTurmaRepo) GetTurma(ctx context.Context, id uuid.UUID) (Turma, error) {
	t, ok := s.turmas[id]
	if !ok {
		return Turma{}, errNotFound
	}
	return t, nil
}

func (s *stubTurmaRepo) InsertTurma(ctx context.Context, t Turma) (Turma, error) {
	t.ID = uuid.New()
	t.CriadoEm = time.Now()
	s.turmas[t.ID] = t
	return t, nil
}

func (s *stubTurmaRepo) UpdateTurma(ctx context.Context, t Turma) (Turma, error) {
	if _, ok := s.turmas[t.ID]; !ok {
		return Turma{}, errNotFound
	}
	s.turmas[t.ID] = t
	return t, nil
}

func (s *stubTurmaRepo) DeleteTurma(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.turmas[id]; !ok {
		return errNotFound
	}
	delete(s.turmas, id)
	return nil
}

func (s *stubTurmaRepo) ListAlunosDaTurma(ctx context.Context, turmaID uuid.UUID) ([]AlunoRef, error) {
	return s.alunos, nil
}

func (s *stubTurmaRepo) ListChamadas(ctx context.Context, turmaID uuid.UUID) ([]Chamada, error) {
	var out []Chamada
	for key, c := range s.chamadas {
		if key.turma == turmaID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubTurmaRepo) ListTodasChamadas(ctx context.Context) ([]Chamada, error) {
	var out []Chamada
	for _, c := range s.chamadas {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubTurmaRepo) UpsertChamada(ctx context.Context, c Chamada) (Chamada, error) {
	c.AtualizadoEm = time.Now()
	s.chamadas[chamadaKey{turma: c.TurmaID, data: c.Data}] = c
	return c, nil
}

func novaTurma(t *testing.T, repo *stubTurmaRepo, alunos ...uuid.UUID) Turma {
	t.Helper()
	turma, err := repo.InsertTurma(context.Background(), Turma{
		Nome:        "7º Ano B",
		Disciplina:  "Matemática",
		ProfessorID: uuid.New(),
		Alunos:      alunos,
	})
	if err != nil {
		t.Fatalf("insert turma: %v", err)
	}
	return turma
}

func TestRegistrarChamadaRejeitaForaDoElenco(t *testing.T) {
	repo := newStubTurmaRepo()
	svc := NewService(repo)

	membro := uuid.New()
	turma := novaTurma(t, repo, membro)

	_, err := svc.RegistrarChamada(context.Background(), Chamada{
		TurmaID:   turma.ID,
		Data:      "2024-03-04",
		Presentes: []uuid.UUID{membro, uuid.New()},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(repo.chamadas) != 0 {
		t.Fatal("chamada inválida não deveria tocar a persistência")
	}
}

func TestRegistrarChamadaIdempotentePorDia(t *testing.T) {
	repo := newStubTurmaRepo()
	svc := NewService(repo)

	a := uuid.New()
	b := uuid.New()
	turma := novaTurma(t, repo, a, b)

	if _, err := svc.RegistrarChamada(context.Background(), Chamada{
		TurmaID:   turma.ID,
		Data:      "2024-03-04",
		Presentes: []uuid.UUID{a, b},
	}); err != nil {
		t.Fatalf("primeira chamada: %v", err)
	}

	// Reenvio do mesmo dia substitui o conjunto, não duplica o registro.
	if _, err := svc.RegistrarChamada(context.Background(), Chamada{
		TurmaID:   turma.ID,
		Data:      "2024-03-04",
		Presentes: []uuid.UUID{a},
	}); err != nil {
		t.Fatalf("segunda chamada: %v", err)
	}

	if len(repo.chamadas) != 1 {
		t.Fatalf("registros = %d, want 1", len(repo.chamadas))
	}
	c := repo.chamadas[chamadaKey{turma: turma.ID, data: "2024-03-04"}]
	if len(c.Presentes) != 1 || c.Presentes[0] != a {
		t.Fatalf("presentes = %v, want [%s]", c.Presentes, a)
	}
}

func TestRegistrarChamadaDataInvalida(t *testing.T) {
	repo := newStubTurmaRepo()
	svc := NewService(repo)

	turma := novaTurma(t, repo)

	_, err := svc.RegistrarChamada(context.Background(), Chamada{
		TurmaID: turma.ID,
		Data:    "04/03/2024",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestRegistrarChamadaTurmaInexistente(t *testing.T) {
	repo := newStubTurmaRepo()
	svc := NewService(repo)

	_, err := svc.RegistrarChamada(context.Background(), Chamada{
		TurmaID: uuid.New(),
		Data:    "2024-03-04",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCriarTurmaValida(t *testing.T) {
	repo := newStubTurmaRepo()
	svc := NewService(repo)

	_, err := svc.CriarTurma(context.Background(), Turma{Nome: "", Disciplina: "História", ProfessorID: uuid.New()})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
