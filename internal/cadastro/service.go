package cadastro

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gestaoescolar/api/internal/advisory"
	"github.com/gestaoescolar/api/internal/auth"
	"github.com/gestaoescolar/api/internal/rbac"
	"github.com/gestaoescolar/api/internal/util"
)

var (
	ErrValidation = errors.New("validação")
	ErrNotFound   = errors.New("registro não encontrado")
)

// CadastroRepository descreve a persistência usada pelo serviço.
type CadastroRepository interface {
	ListAlunos(context.Context) ([]Aluno, error)
	GetAluno(context.Context, uuid.UUID) (Aluno, error)
	InsertAluno(context.Context, Aluno) (Aluno, error)
	UpdateAluno(context.Context, Aluno) (Aluno, error)
	ListProfessores(context.Context) ([]Professor, error)
	InsertProfessor(context.Context, Professor) (Professor, error)
	UpdateProfessor(context.Context, Professor) (Professor, error)
	DeleteProfessor(context.Context, uuid.UUID) error
	ListInstituicoes(context.Context) ([]Instituicao, error)
	InsertInstituicao(context.Context, Instituicao) (Instituicao, error)
	UpdateInstituicao(context.Context, Instituicao) (Instituicao, error)
	DeleteInstituicao(context.Context, uuid.UUID) error
	ListUsuarios(context.Context) ([]Usuario, error)
	InsertUsuario(context.Context, Usuario) (Usuario, error)
	UpdateUsuario(context.Context, Usuario) (Usuario, error)
}

// Service concentra as regras dos cadastros básicos.
type Service struct {
	repo    CadastroRepository
	adviser advisory.Provider
}

func NewService(repo CadastroRepository, adviser advisory.Provider) *Service {
	return &Service{repo: repo, adviser: adviser}
}

func (s *Service) ListAlunos(ctx context.Context) ([]Aluno, error) {
	return s.repo.ListAlunos(ctx)
}

func validateAluno(a Aluno) error {
	if strings.TrimSpace(a.Nome) == "" {
		return fmt.Errorf("%w: nome obrigatório", ErrValidation)
	}
	if a.DataNascimento != "" {
		if _, err := time.Parse("2006-01-02", a.DataNascimento); err != nil {
			return fmt.Errorf("%w: data de nascimento inválida", ErrValidation)
		}
	}
	if a.Mensalidade != nil && *a.Mensalidade <= 0 {
		return fmt.Errorf("%w: mensalidade deve ser positiva", ErrValidation)
	}
	return nil
}

func (s *Service) CriarAluno(ctx context.Context, a Aluno) (Aluno, error) {
	if err := validateAluno(a); err != nil {
		return Aluno{}, err
	}
	return s.repo.InsertAluno(ctx, a)
}

// AtualizarAluno altera o cadastro em lugar. Aluno não tem exclusão: o
// histórico financeiro e de presença referencia o registro.
func (s *Service) AtualizarAluno(ctx context.Context, a Aluno) (Aluno, error) {
	if err := validateAluno(a); err != nil {
		return Aluno{}, err
	}
	aluno, err := s.repo.UpdateAluno(ctx, a)
	if errors.Is(err, errNotFound) {
		return aluno, ErrNotFound
	}
	return aluno, err
}

func (s *Service) ListProfessores(ctx context.Context) ([]Professor, error) {
	return s.repo.ListProfessores(ctx)
}

func validateProfessor(p Professor) error {
	if strings.TrimSpace(p.Nome) == "" {
		return fmt.Errorf("%w: nome obrigatório", ErrValidation)
	}
	if p.Email != "" {
		if err := util.ValidateEmail(p.Email); err != nil {
			return fmt.Errorf("%w: %s", ErrValidation, err.Error())
		}
	}
	return nil
}

func (s *Service) CriarProfessor(ctx context.Context, p Professor) (Professor, error) {
	if err := validateProfessor(p); err != nil {
		return Professor{}, err
	}
	return s.repo.InsertProfessor(ctx, p)
}

func (s *Service) AtualizarProfessor(ctx context.Context, p Professor) (Professor, error) {
	if err := validateProfessor(p); err != nil {
		return Professor{}, err
	}
	professor, err := s.repo.UpdateProfessor(ctx, p)
	if errors.Is(err, errNotFound) {
		return professor, ErrNotFound
	}
	return professor, err
}

func (s *Service) ExcluirProfessor(ctx context.Context, id uuid.UUID) error {
	err := s.repo.DeleteProfessor(ctx, id)
	if errors.Is(err, errNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) ListInstituicoes(ctx context.Context) ([]Instituicao, error) {
	return s.repo.ListInstituicoes(ctx)
}

func (s *Service) CriarInstituicao(ctx context.Context, i Instituicao) (Instituicao, error) {
	if strings.TrimSpace(i.Nome) == "" {
		return Instituicao{}, fmt.Errorf("%w: nome obrigatório", ErrValidation)
	}
	return s.repo.InsertInstituicao(ctx, i)
}

func (s *Service) AtualizarInstituicao(ctx context.Context, i Instituicao) (Instituicao, error) {
	if strings.TrimSpace(i.Nome) == "" {
		return Instituicao{}, fmt.Errorf("%w: nome obrigatório", ErrValidation)
	}
	instituicao, err := s.repo.UpdateInstituicao(ctx, i)
	if errors.Is(err, errNotFound) {
		return instituicao, ErrNotFound
	}
	return instituicao, err
}

func (s *Service) ExcluirInstituicao(ctx context.Context, id uuid.UUID) error {
	err := s.repo.DeleteInstituicao(ctx, id)
	if errors.Is(err, errNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) ListUsuarios(ctx context.Context) ([]Usuario, error) {
	return s.repo.ListUsuarios(ctx)
}

func (s *Service) CriarUsuario(ctx context.Context, u Usuario, senha string) (Usuario, error) {
	if strings.TrimSpace(u.Nome) == "" {
		return Usuario{}, fmt.Errorf("%w: nome obrigatório", ErrValidation)
	}
	if err := util.ValidateEmail(u.Email); err != nil {
		return Usuario{}, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if err := util.ValidatePassword(senha); err != nil {
		return Usuario{}, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if _, ok := rbac.ParseRole(u.Papel); !ok {
		return Usuario{}, fmt.Errorf("%w: papel desconhecido", ErrValidation)
	}

	hash, err := auth.Hash(senha)
	if err != nil {
		return Usuario{}, err
	}
	u.SenhaHash = hash
	u.Ativo = true
	return s.repo.InsertUsuario(ctx, u)
}

func (s *Service) AtualizarUsuario(ctx context.Context, u Usuario) (Usuario, error) {
	if strings.TrimSpace(u.Nome) == "" {
		return Usuario{}, fmt.Errorf("%w: nome obrigatório", ErrValidation)
	}
	if _, ok := rbac.ParseRole(u.Papel); !ok {
		return Usuario{}, fmt.Errorf("%w: papel desconhecido", ErrValidation)
	}
	usuario, err := s.repo.UpdateUsuario(ctx, u)
	if errors.Is(err, errNotFound) {
		return usuario, ErrNotFound
	}
	return usuario, err
}

// GerarOrientacao monta um resumo curto do perfil do aluno e pede um texto
// de orientação ao provedor generativo. Nunca propaga falha: qualquer erro
// degrada para a mensagem fixa.
func (s *Service) GerarOrientacao(ctx context.Context, alunoID uuid.UUID) (string, error) {
	aluno, err := s.repo.GetAluno(ctx, alunoID)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	resumo := fmt.Sprintf("Aluno %s, série %s", aluno.Nome, aluno.Serie)
	if aluno.Escola != "" {
		resumo += ", escola " + aluno.Escola
	}
	if len(aluno.Disciplinas) > 0 {
		resumo += ", disciplinas: " + strings.Join(aluno.Disciplinas, ", ")
	}

	texto, err := s.adviser.Generate(ctx, resumo)
	if err != nil {
		log.Warn().Err(err).Str("aluno_id", alunoID.String()).Msg("orientação degradada para texto fixo")
		return advisory.FallbackMessage, nil
	}
	return texto, nil
}
