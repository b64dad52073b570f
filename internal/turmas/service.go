package turmas

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
)

// TurmaRepository descreve a persistência usada pelo serviço.
type TurmaRepository interface {
	ListTurmas(context.Context) ([]Turma, error)
	GetTurma(context.Context, uuid.UUID) (Turma, error)
	InsertTurma(context.Context, Turma) (Turma, error)
	UpdateTurma(context.Context, Turma) (Turma, error)
	DeleteTurma(context.Context, uuid.UUID) error
	ListAlunosDaTurma(context.Context, uuid.UUID) ([]AlunoRef, error)
	ListChamadas(context.Context, uuid.UUID) ([]Chamada, error)
	ListTodasChamadas(context.Context) ([]Chamada, error)
	UpsertChamada(context.Context, Chamada) (Chamada, error)
}

// Service concentra as regras de turmas e chamadas.
type Service struct {
	repo TurmaRepository
}

func NewService(repo TurmaRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListTurmas(ctx context.Context) ([]Turma, error) {
	return s.repo.ListTurmas(ctx)
}

func (s *Service) ListTodasChamadas(ctx context.Context) ([]Chamada, error) {
	return s.repo.ListTodasChamadas(ctx)
}

func validateTurma(t Turma) error {
	if strings.TrimSpace(t.Nome) == "" {
		return fmt.Errorf("%w: nome obrigatório", ErrValidation)
	}
	if strings.TrimSpace(t.Disciplina) == "" {
		return fmt.Errorf("%w: disciplina obrigatória", ErrValidation)
	}
	if t.ProfessorID == uuid.Nil {
		return fmt.Errorf("%w: professor obrigatório", ErrValidation)
	}
	return nil
}

func (s *Service) CriarTurma(ctx context.Context, t Turma) (Turma, error) {
	if err := validateTurma(t); err != nil {
		return Turma{}, err
	}
	return s.repo.InsertTurma(ctx, t)
}

func (s *Service) AtualizarTurma(ctx context.Context, t Turma) (Turma, error) {
	if err := validateTurma(t); err != nil {
		return Turma{}, err
	}
	turma, err := s.repo.UpdateTurma(ctx, t)
	if errors.Is(err, errNotFound) {
		return turma, ErrNotFound
	}
	return turma, err
}

func (s *Service) ExcluirTurma(ctx context.Context, id uuid.UUID) error {
	err := s.repo.DeleteTurma(ctx, id)
	if errors.Is(err, errNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) ListChamadas(ctx context.Context, turmaID uuid.UUID) ([]Chamada, error) {
	return s.repo.ListChamadas(ctx, turmaID)
}

// RegistrarChamada grava (ou regrava) a chamada de um dia. Presentes fora do
// elenco da turma são rejeitados antes de tocar o banco.
func (s *Service) RegistrarChamada(ctx context.Context, c Chamada) (Chamada, error) {
	if _, err := time.Parse("2006-01-02", c.Data); err != nil {
		return Chamada{}, fmt.Errorf("%w: data inválida", ErrValidation)
	}

	turma, err := s.repo.GetTurma(ctx, c.TurmaID)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return Chamada{}, ErrNotFound
		}
		return Chamada{}, err
	}

	elenco := make(map[uuid.UUID]struct{}, len(turma.Alunos))
	for _, id := range turma.Alunos {
		elenco[id] = struct{}{}
	}
	for _, id := range c.Presentes {
		if _, ok := elenco[id]; !ok {
			return Chamada{}, fmt.Errorf("%w: aluno %s não pertence à turma", ErrValidation, id)
		}
	}

	return s.repo.UpsertChamada(ctx, c)
}

// RelatorioFrequencia devolve as linhas de frequência da turma.
func (s *Service) RelatorioFrequencia(ctx context.Context, turmaID uuid.UUID) ([]FrequenciaAluno, error) {
	if _, err := s.repo.GetTurma(ctx, turmaID); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	alunos, err := s.repo.ListAlunosDaTurma(ctx, turmaID)
	if err != nil {
		return nil, err
	}

	chamadas, err := s.repo.ListChamadas(ctx, turmaID)
	if err != nil {
		return nil, err
	}

	return ComputeFrequencia(alunos, chamadas), nil
}
