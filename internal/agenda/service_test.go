package agenda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubAgendaRepo struct {
	aulas map[uuid.UUID]Aula
}

func newStubAgendaRepo() *stubAgendaRepo {
	return &stubAgendaRepo{aulas: make(map[uuid.UUID]Aula)}
}

func (s *stubAgendaRepo) ListAulas(ctx context.Context) ([]Aula, error) {
	var out []Aula
	for _, a := range s.aulas {
		out = append(out, a)
	}
	return out, nil
}

func (s *stubAgendaRepo) GetAula(ctx context.Context, id uuid.UUID) (Aula, error) {
	a, ok := s.aulas[id]
	if !ok {
		return Aula{}, errNotFound
	}
	return a, nil
}

func (s *stubAgendaRepo) InsertAula(ctx context.Context, a Aula) (Aula, error) {
	a.ID = uuid.New()
	a.CriadoEm = time.Now()
	s.aulas[a.ID] = a
	return a, nil
}

func (s *stubAgendaRepo) UpdateAula(ctx context.Context, a Aula) (Aula, error) {
	if _, ok := s.aulas[a.ID]; !ok {
		return Aula{}, errNotFound
	}
	s.aulas[a.ID] = a
	return a, nil
}

func (s *stubAgendaRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, observacoes *string) (Aula, error) {
	a, ok := s.aulas[id]
	if !ok {
		return Aula{}, errNotFound
	}
	a.Status = status
	if observacoes != nil {
		a.Observacoes = observacoes
	}
	s.aulas[id] = a
	return a, nil
}

func novaAula(t *testing.T, svc *Service, data string) Aula {
	t.Helper()
	aula, err := svc.AgendarAula(context.Background(), Aula{
		AlunoID:     uuid.New(),
		ProfessorID: uuid.New(),
		Disciplina:  "Física",
		Data:        data,
		Hora:        "14:30",
	})
	if err != nil {
		t.Fatalf("agendar: %v", err)
	}
	return aula
}

func TestAgendarAulaComecaAgendada(t *testing.T) {
	svc := NewService(newStubAgendaRepo())

	obs := "não deveria sobreviver"
	aula, err := svc.AgendarAula(context.Background(), Aula{
		AlunoID:     uuid.New(),
		ProfessorID: uuid.New(),
		Disciplina:  "Química",
		Data:        "2024-03-04",
		Hora:        "09:00",
		Status:      StatusConcluida,
		Observacoes: &obs,
	})
	if err != nil {
		t.Fatalf("agendar: %v", err)
	}
	if aula.Status != StatusAgendada {
		t.Fatalf("status = %s, want AGENDADA", aula.Status)
	}
	if aula.Observacoes != nil {
		t.Fatal("aula nova não deveria nascer com anotações")
	}
}

func TestConcluirAulaExigeAnotacoes(t *testing.T) {
	repo := newStubAgendaRepo()
	svc := NewService(repo)

	aula := novaAula(t, svc, "2024-03-04")

	if _, err := svc.ConcluirAula(context.Background(), aula.ID, "   "); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	concluida, err := svc.ConcluirAula(context.Background(), aula.ID, "Revisão de cinemática")
	if err != nil {
		t.Fatalf("concluir: %v", err)
	}
	if concluida.Status != StatusConcluida {
		t.Fatalf("status = %s, want CONCLUIDA", concluida.Status)
	}
	if concluida.Observacoes == nil || *concluida.Observacoes != "Revisão de cinemática" {
		t.Fatalf("observações = %v", concluida.Observacoes)
	}
}

func TestConcluirAulaJaConcluida(t *testing.T) {
	repo := newStubAgendaRepo()
	svc := NewService(repo)

	aula := novaAula(t, svc, "2024-03-04")
	if _, err := svc.ConcluirAula(context.Background(), aula.ID, "ok"); err != nil {
		t.Fatalf("concluir: %v", err)
	}

	if _, err := svc.ConcluirAula(context.Background(), aula.ID, "de novo"); !errors.Is(err, ErrTransicao) {
		t.Fatalf("err = %v, want ErrTransicao", err)
	}
}

func TestCancelarAulaSomenteAgendada(t *testing.T) {
	repo := newStubAgendaRepo()
	svc := NewService(repo)

	aula := novaAula(t, svc, "2024-03-04")

	cancelada, err := svc.CancelarAula(context.Background(), aula.ID)
	if err != nil {
		t.Fatalf("cancelar: %v", err)
	}
	if cancelada.Status != StatusCancelada {
		t.Fatalf("status = %s, want CANCELADA", cancelada.Status)
	}

	if _, err := svc.CancelarAula(context.Background(), aula.ID); !errors.Is(err, ErrTransicao) {
		t.Fatalf("err = %v, want ErrTransicao", err)
	}
}

func TestSemanaBuckets(t *testing.T) {
	segunda := Aula{ID: uuid.New(), Data: "2024-03-04"} // segunda-feira
	quarta := Aula{ID: uuid.New(), Data: "2024-03-06"}
	domingo := Aula{ID: uuid.New(), Data: "2024-03-10"}
	invalida := Aula{ID: uuid.New(), Data: "10/03/2024"}

	buckets := SemanaBuckets([]Aula{segunda, quarta, domingo, invalida})

	if len(buckets[time.Monday]) != 1 || buckets[time.Monday][0].ID != segunda.ID {
		t.Fatalf("segunda = %+v", buckets[time.Monday])
	}
	if len(buckets[time.Wednesday]) != 1 {
		t.Fatalf("quarta = %+v", buckets[time.Wednesday])
	}
	if len(buckets[time.Sunday]) != 1 {
		t.Fatalf("domingo = %+v", buckets[time.Sunday])
	}

	var total int
	for _, b := range buckets {
		total += len(b)
	}
	if total != 3 {
		t.Fatalf("aulas distribuídas = %d, want 3 (inválida ignorada)", total)
	}
}

func TestSemanaBucketsNaoDeslocaDia(t *testing.T) {
	// Interpretar a data como calendário local mantém 2024-03-04 na segunda
	// mesmo em fusos a oeste de UTC.
	aula := Aula{ID: uuid.New(), Data: "2024-03-04"}
	buckets := SemanaBuckets([]Aula{aula})
	if len(buckets[time.Monday]) != 1 {
		t.Fatal("2024-03-04 deveria cair na segunda-feira")
	}
}
