package painel

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gestaoescolar/api/internal/agenda"
	"github.com/gestaoescolar/api/internal/cadastro"
	"github.com/gestaoescolar/api/internal/financeiro"
	"github.com/gestaoescolar/api/internal/turmas"
)

const (
	dashboardCacheKey = "painel:dashboard"
	dashboardCacheTTL = 60 * time.Second
)

// CadastroSource fornece as coleções de cadastro.
type CadastroSource interface {
	ListAlunos(ctx context.Context) ([]cadastro.Aluno, error)
	ListProfessores(ctx context.Context) ([]cadastro.Professor, error)
}

// TurmasSource fornece turmas e chamadas.
type TurmasSource interface {
	ListTurmas(ctx context.Context) ([]turmas.Turma, error)
	ListTodasChamadas(ctx context.Context) ([]turmas.Chamada, error)
}

// AgendaSource fornece aulas e a grade semanal.
type AgendaSource interface {
	ListAulas(ctx context.Context) ([]agenda.Aula, error)
	AgendaSemanal(ctx context.Context) ([7][]agenda.Aula, error)
}

// FinanceiroSource fornece pagamentos e recebíveis.
type FinanceiroSource interface {
	ListPagamentos(ctx context.Context) ([]financeiro.PagamentoView, error)
	Recebiveis(ctx context.Context) (financeiro.Recebiveis, error)
}

// Bootstrap reúne as seis coleções carregadas em paralelo.
type Bootstrap struct {
	Alunos      []cadastro.Aluno           `json:"alunos"`
	Professores []cadastro.Professor       `json:"professores"`
	Turmas      []turmas.Turma             `json:"turmas"`
	Aulas       []agenda.Aula              `json:"aulas"`
	Pagamentos  []financeiro.PagamentoView `json:"pagamentos"`
	Chamadas    []turmas.Chamada           `json:"chamadas"`
}

// Dashboard é o payload cacheado do painel.
type Dashboard struct {
	Resumo     Resumo                `json:"resumo"`
	Recebiveis financeiro.Recebiveis `json:"recebiveis"`
	Semana     [7][]agenda.Aula      `json:"semana"`
}

// Service coordena o carregamento inicial do console.
type Service struct {
	cadastro   CadastroSource
	turmas     TurmasSource
	agenda     AgendaSource
	financeiro FinanceiroSource
	rdb        *redis.Client
}

func NewService(cadastro CadastroSource, turmas TurmasSource, agenda AgendaSource, financeiro FinanceiroSource, rdb *redis.Client) *Service {
	return &Service{
		cadastro:   cadastro,
		turmas:     turmas,
		agenda:     agenda,
		financeiro: financeiro,
		rdb:        rdb,
	}
}

// Bootstrap emite as seis cargas em paralelo. Falha individual degrada a
// coleção para vazia com log de aviso e nunca derruba a resposta inteira.
func (s *Service) Bootstrap(ctx context.Context) Bootstrap {
	var out Bootstrap
	var wg sync.WaitGroup

	load := func(nome string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				log.Warn().Err(err).Str("colecao", nome).Msg("carga do painel degradada")
			}
		}()
	}

	load("alunos", func() error {
		alunos, err := s.cadastro.ListAlunos(ctx)
		if err != nil {
			return err
		}
		out.Alunos = alunos
		return nil
	})
	load("professores", func() error {
		professores, err := s.cadastro.ListProfessores(ctx)
		if err != nil {
			return err
		}
		out.Professores = professores
		return nil
	})
	load("turmas", func() error {
		lista, err := s.turmas.ListTurmas(ctx)
		if err != nil {
			return err
		}
		out.Turmas = lista
		return nil
	})
	load("aulas", func() error {
		aulas, err := s.agenda.ListAulas(ctx)
		if err != nil {
			return err
		}
		out.Aulas = aulas
		return nil
	})
	load("pagamentos", func() error {
		pagamentos, err := s.financeiro.ListPagamentos(ctx)
		if err != nil {
			return err
		}
		out.Pagamentos = pagamentos
		return nil
	})
	load("chamadas", func() error {
		chamadas, err := s.turmas.ListTodasChamadas(ctx)
		if err != nil {
			return err
		}
		out.Chamadas = chamadas
		return nil
	})

	wg.Wait()
	return out
}

// Dashboard devolve resumo + recebíveis + grade semanal, com cache redis
// de 60s. Cache indisponível nunca bloqueia a resposta.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, dashboardCacheKey).Bytes(); err == nil {
			var dash Dashboard
			if err := json.Unmarshal(cached, &dash); err == nil {
				return dash, nil
			}
		} else if err != redis.Nil {
			log.Warn().Err(err).Msg("cache do painel indisponível")
		}
	}

	dash, err := s.buildDashboard(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(dash); err == nil {
			if err := s.rdb.Set(ctx, dashboardCacheKey, payload, dashboardCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("falha ao gravar cache do painel")
			}
		}
	}

	return dash, nil
}

func (s *Service) buildDashboard(ctx context.Context) (Dashboard, error) {
	boot := s.Bootstrap(ctx)

	recebiveis, err := s.financeiro.Recebiveis(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	semana, err := s.agenda.AgendaSemanal(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		Resumo:     ComputeResumo(boot.Alunos, boot.Aulas, boot.Pagamentos),
		Recebiveis: recebiveis,
		Semana:     semana,
	}, nil
}
