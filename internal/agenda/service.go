package agenda

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrValidation = errors.New("validação")
	ErrNotFound   = errors.New("registro não encontrado")
	// ErrTransicao indica mudança de status fora do ciclo permitido.
	ErrTransicao = errors.New("transição de status inválida")
)

// AgendaRepository descreve a persistência usada pelo serviço.
type AgendaRepository interface {
	ListAulas(context.Context) ([]Aula, error)
	GetAula(context.Context, uuid.UUID) (Aula, error)
	InsertAula(context.Context, Aula) (Aula, error)
	UpdateAula(context.Context, Aula) (Aula, error)
	UpdateStatus(context.Context, uuid.UUID, string, *string) (Aula, error)
}

// Service concentra as regras da agenda de aulas.
type Service struct {
	repo AgendaRepository
}

func NewService(repo AgendaRepository) *Service {
	return &Service{repo: repo}
}

func validateAula(a Aula) error {
	if a.AlunoID == uuid.Nil {
		return fmt.Errorf("%w: aluno obrigatório", ErrValidation)
	}
	if a.ProfessorID == uuid.Nil {
		return fmt.Errorf("%w: professor obrigatório", ErrValidation)
	}
	if strings.TrimSpace(a.Disciplina) == "" {
		return fmt.Errorf("%w: disciplina obrigatória", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", a.Data); err != nil {
		return fmt.Errorf("%w: data inválida", ErrValidation)
	}
	if _, err := time.Parse("15:04", a.Hora); err != nil {
		return fmt.Errorf("%w: hora inválida", ErrValidation)
	}
	return nil
}

func (s *Service) ListAulas(ctx context.Context) ([]Aula, error) {
	return s.repo.ListAulas(ctx)
}

// AgendarAula cria a aula sempre com status AGENDADA.
func (s *Service) AgendarAula(ctx context.Context, a Aula) (Aula, error) {
	if err := validateAula(a); err != nil {
		return Aula{}, err
	}
	a.Status = StatusAgendada
	a.Observacoes = nil
	return s.repo.InsertAula(ctx, a)
}

func (s *Service) ReagendarAula(ctx context.Context, a Aula) (Aula, error) {
	if err := validateAula(a); err != nil {
		return Aula{}, err
	}
	aula, err := s.repo.UpdateAula(ctx, a)
	if errors.Is(err, errNotFound) {
		return aula, ErrNotFound
	}
	return aula, err
}

// ConcluirAula marca a aula como CONCLUIDA. A transição só existe quando o
// professor envia as anotações da sessão.
func (s *Service) ConcluirAula(ctx context.Context, id uuid.UUID, observacoes string) (Aula, error) {
	if strings.TrimSpace(observacoes) == "" {
		return Aula{}, fmt.Errorf("%w: anotações obrigatórias para concluir", ErrValidation)
	}

	atual, err := s.repo.GetAula(ctx, id)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return Aula{}, ErrNotFound
		}
		return Aula{}, err
	}
	if atual.Status != StatusAgendada {
		return Aula{}, ErrTransicao
	}

	return s.repo.UpdateStatus(ctx, id, StatusConcluida, &observacoes)
}

// CancelarAula marca a aula como CANCELADA.
func (s *Service) CancelarAula(ctx context.Context, id uuid.UUID) (Aula, error) {
	atual, err := s.repo.GetAula(ctx, id)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return Aula{}, ErrNotFound
		}
		return Aula{}, err
	}
	if atual.Status != StatusAgendada {
		return Aula{}, ErrTransicao
	}

	return s.repo.UpdateStatus(ctx, id, StatusCancelada, nil)
}

// AgendaSemanal devolve as aulas particionadas por dia da semana.
func (s *Service) AgendaSemanal(ctx context.Context) ([7][]Aula, error) {
	aulas, err := s.repo.ListAulas(ctx)
	if err != nil {
		return [7][]Aula{}, err
	}
	return SemanaBuckets(aulas), nil
}

// SemanaBuckets particiona as aulas em sete baldes indexados por
// time.Weekday (domingo = 0). A data YYYY-MM-DD é interpretada como data de
// calendário, sem conversão de fuso — evita o deslocamento de um dia que
// aparece quando a string é tratada como instante UTC. Aulas com data
// inválida são ignoradas. Função pura.
func SemanaBuckets(aulas []Aula) [7][]Aula {
	var buckets [7][]Aula
	for _, a := range aulas {
		d, err := time.Parse("2006-01-02", a.Data)
		if err != nil {
			continue
		}
		buckets[int(d.Weekday())] = append(buckets[int(d.Weekday())], a)
	}
	return buckets
}
