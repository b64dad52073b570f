package clock

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Clock é a fonte de hora autoritativa consumida pelos serviços de domínio.
// Toda comparação de datas (atraso, janela de recebíveis) passa por aqui,
// nunca pelo relógio local direto.
type Clock interface {
	Now() time.Time
}

// Fixed devolve sempre o mesmo instante. Uso exclusivo em testes.
type Fixed struct {
	Instant time.Time
}

func (f Fixed) Now() time.Time { return f.Instant }

// Service mantém o offset medido contra um serviço externo de hora.
// Falha de sincronização zera o offset e confia no relógio local.
type Service struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   zerolog.Logger

	mu     sync.RWMutex
	offset time.Duration

	once   sync.Once
	cancel context.CancelFunc
}

// NewService cria o relógio autoritativo. URL vazia desativa a sincronização.
func NewService(url string, interval time.Duration, logger zerolog.Logger) *Service {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Service{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

type timeResponse struct {
	Unixtime int64 `json:"unixtime"`
}

// Sync consulta o serviço externo uma única vez e grava o delta entre a hora
// remota e a local. Qualquer falha zera o offset (fail open) e é apenas logada.
func (s *Service) Sync(ctx context.Context) error {
	if s.url == "" {
		s.setOffset(0)
		return nil
	}

	err := s.fetchOffset(ctx)
	if err != nil {
		s.setOffset(0)
		s.logger.Warn().Err(err).Msg("sincronização de hora falhou, usando relógio local")
	}
	return err
}

func (s *Service) fetchOffset(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.New("serviço de hora respondeu " + resp.Status)
	}

	var body timeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}
	if body.Unixtime <= 0 {
		return errors.New("unixtime ausente na resposta")
	}

	remote := time.Unix(body.Unixtime, 0)
	s.setOffset(time.Until(remote).Round(time.Second))
	return nil
}

func (s *Service) setOffset(d time.Duration) {
	s.mu.Lock()
	s.offset = d
	s.mu.Unlock()
}

// Offset devolve o delta atual entre hora remota e local.
func (s *Service) Offset() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offset
}

// Now devolve relógio local corrigido pelo offset medido.
func (s *Service) Now() time.Time {
	return time.Now().Add(s.Offset())
}

// TodayISO devolve a data calendário de Now no formato YYYY-MM-DD.
func (s *Service) TodayISO() string {
	return s.Now().Format("2006-01-02")
}

// Start dispara a sincronização periódica. Safe para chamar múltiplas vezes.
func (s *Service) Start(parent context.Context) {
	s.once.Do(func() {
		ctx, cancel := context.WithCancel(parent)
		s.cancel = cancel
		go s.runLoop(ctx)
	})
}

// Stop interrompe o loop periódico.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Service) runLoop(ctx context.Context) {
	_ = s.Sync(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Sync(ctx)
		}
	}
}
