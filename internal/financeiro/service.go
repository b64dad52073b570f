package financeiro

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gestaoescolar/api/internal/clock"
)

var (
	ErrValidation = errors.New("validação")
	ErrNotFound   = errors.New("registro não encontrado")
)

// FinanceiroRepository descreve a persistência usada pelo serviço.
type FinanceiroRepository interface {
	ListPagamentos(context.Context) ([]Pagamento, error)
	GetPagamento(context.Context, uuid.UUID) (Pagamento, error)
	InsertPagamento(context.Context, Pagamento) (Pagamento, error)
	UpdatePagamento(context.Context, Pagamento) (Pagamento, error)
	DeletePagamento(context.Context, uuid.UUID) error
}

// Service concentra as regras financeiras. Toda comparação de datas usa o
// relógio autoritativo injetado, nunca time.Now direto.
type Service struct {
	repo  FinanceiroRepository
	clock clock.Clock
}

func NewService(repo FinanceiroRepository, clk clock.Clock) *Service {
	return &Service{repo: repo, clock: clk}
}

func validStatus(status string) bool {
	switch status {
	case StatusPago, StatusPendente, StatusAtrasado:
		return true
	}
	return false
}

// normalize aplica a invariante da data de quitação: ela só sobrevive quando
// o status é PAGO.
func normalize(p Pagamento) Pagamento {
	if p.Status != StatusPago {
		p.Pagamento = nil
	}
	return p
}

func validatePagamento(p Pagamento) error {
	if p.AlunoID == uuid.Nil {
		return fmt.Errorf("%w: aluno obrigatório", ErrValidation)
	}
	if p.Valor <= 0 {
		return fmt.Errorf("%w: valor deve ser positivo", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", p.Vencimento); err != nil {
		return fmt.Errorf("%w: vencimento inválido", ErrValidation)
	}
	if !validStatus(p.Status) {
		return fmt.Errorf("%w: status desconhecido", ErrValidation)
	}
	if p.Pagamento != nil {
		if _, err := time.Parse("2006-01-02", *p.Pagamento); err != nil {
			return fmt.Errorf("%w: data de pagamento inválida", ErrValidation)
		}
	}
	return nil
}

// ListPagamentos devolve todos os pagamentos com o sinal de atraso derivado
// anexado para exibição.
func (s *Service) ListPagamentos(ctx context.Context) ([]PagamentoView, error) {
	pagamentos, err := s.repo.ListPagamentos(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	views := make([]PagamentoView, 0, len(pagamentos))
	for _, p := range pagamentos {
		views = append(views, PagamentoView{Pagamento: p, Atrasado: EstaAtrasado(p, now)})
	}
	return views, nil
}

func (s *Service) CriarPagamento(ctx context.Context, p Pagamento) (Pagamento, error) {
	if p.Status == "" {
		p.Status = StatusPendente
	}
	if err := validatePagamento(p); err != nil {
		return Pagamento{}, err
	}
	return s.repo.InsertPagamento(ctx, normalize(p))
}

func (s *Service) AtualizarPagamento(ctx context.Context, p Pagamento) (Pagamento, error) {
	if err := validatePagamento(p); err != nil {
		return Pagamento{}, err
	}
	pagamento, err := s.repo.UpdatePagamento(ctx, normalize(p))
	if errors.Is(err, errNotFound) {
		return pagamento, ErrNotFound
	}
	return pagamento, err
}

// QuitarPagamento marca o pagamento como PAGO com a data do relógio
// autoritativo.
func (s *Service) QuitarPagamento(ctx context.Context, id uuid.UUID) (Pagamento, error) {
	p, err := s.repo.GetPagamento(ctx, id)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return Pagamento{}, ErrNotFound
		}
		return Pagamento{}, err
	}

	hoje := s.clock.Now().Format("2006-01-02")
	p.Status = StatusPago
	p.Pagamento = &hoje

	pago, err := s.repo.UpdatePagamento(ctx, p)
	if errors.Is(err, errNotFound) {
		return pago, ErrNotFound
	}
	return pago, err
}

func (s *Service) ExcluirPagamento(ctx context.Context, id uuid.UUID) error {
	err := s.repo.DeletePagamento(ctx, id)
	if errors.Is(err, errNotFound) {
		return ErrNotFound
	}
	return err
}

// Recebiveis calcula a janela de 30 dias sobre o relógio autoritativo.
func (s *Service) Recebiveis(ctx context.Context) (Recebiveis, error) {
	pagamentos, err := s.repo.ListPagamentos(ctx)
	if err != nil {
		return Recebiveis{}, err
	}
	return ComputeRecebiveis(pagamentos, s.clock.Now()), nil
}
