package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gestaoescolar/api/internal/auth"
	"github.com/gestaoescolar/api/internal/cadastro"
)

type stubAuthRepo struct {
	user cadastro.Usuario
}

func (s *stubAuthRepo) GetUsuarioByEmail(ctx context.Context, email string) (cadastro.Usuario, error) {
	if s.user.Email != email {
		return cadastro.Usuario{}, cadastro.ErrNotFound
	}
	return s.user, nil
}

func (s *stubAuthRepo) GetUsuario(ctx context.Context, id uuid.UUID) (cadastro.Usuario, error) {
	if s.user.ID != id {
		return cadastro.Usuario{}, cadastro.ErrNotFound
	}
	return s.user, nil
}

type stubRedis struct {
	store map[string]string
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if s.store == nil {
		s.store = make(map[string]string)
	}
	s.store[key] = fmt.Sprint(value)
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	val, ok := s.store[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := s.store[key]; ok {
			delete(s.store, key)
			removed++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

func newTestAuthService(t *testing.T, password string) (*AuthService, *stubRedis, cadastro.Usuario) {
	t.Helper()

	hash, err := auth.Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := cadastro.Usuario{
		ID:        uuid.New(),
		Nome:      "Maria Direção",
		Email:     "maria@escola.com",
		SenhaHash: hash,
		Papel:     "ADMIN",
		Ativo:     true,
	}

	rdb := &stubRedis{}
	svc := &AuthService{
		repo:       &stubAuthRepo{user: user},
		redis:      rdb,
		jwt:        auth.NewJWTManager("segredo-de-teste", 15*time.Minute),
		refreshTTL: time.Hour,
	}
	return svc, rdb, user
}

func TestLogin(t *testing.T) {
	svc, rdb, user := newTestAuthService(t, "SenhaForte123!")

	result, err := svc.Login(context.Background(), "maria@escola.com", "SenhaForte123!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Subject != user.ID {
		t.Fatalf("subject = %s, want %s", result.Subject, user.ID)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("tokens vazios")
	}
	if result.Profile == nil || result.Profile.Papel != "ADMIN" {
		t.Fatalf("profile inesperado: %+v", result.Profile)
	}
	if len(result.Profile.Secoes) != 9 {
		t.Fatalf("admin deveria enxergar 9 seções, got %d", len(result.Profile.Secoes))
	}

	key := auth.RefreshRedisKey(auth.HashRefreshToken(result.RefreshToken))
	if rdb.store[key] != user.ID.String() {
		t.Fatal("refresh token não registrado no redis")
	}

	claims, err := svc.jwt.ParseAndValidate(result.AccessToken)
	if err != nil {
		t.Fatalf("validar access token: %v", err)
	}
	if claims.Subject != user.ID.String() {
		t.Fatalf("claims subject = %s", claims.Subject)
	}
}

func TestLoginSenhaErrada(t *testing.T) {
	svc, _, _ := newTestAuthService(t, "SenhaForte123!")

	if _, err := svc.Login(context.Background(), "maria@escola.com", "outra-senha"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUsuarioDesconhecido(t *testing.T) {
	svc, _, _ := newTestAuthService(t, "SenhaForte123!")

	if _, err := svc.Login(context.Background(), "ninguem@escola.com", "SenhaForte123!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginContaDesativada(t *testing.T) {
	svc, _, _ := newTestAuthService(t, "SenhaForte123!")
	svc.repo.(*stubAuthRepo).user.Ativo = false

	if _, err := svc.Login(context.Background(), "maria@escola.com", "SenhaForte123!"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("err = %v, want ErrAccountDisabled", err)
	}
}

func TestRefreshRotacionaToken(t *testing.T) {
	svc, rdb, user := newTestAuthService(t, "SenhaForte123!")
	ctx := context.Background()

	login, err := svc.Login(ctx, "maria@escola.com", "SenhaForte123!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.Subject != user.ID {
		t.Fatalf("subject pós-refresh = %s", refreshed.Subject)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("refresh token deveria rotacionar")
	}

	oldKey := auth.RefreshRedisKey(auth.HashRefreshToken(login.RefreshToken))
	if _, ok := rdb.store[oldKey]; ok {
		t.Fatal("token antigo deveria ser revogado")
	}

	// Reuso do token antigo falha.
	if _, err := svc.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("reuso: err = %v, want ErrRefreshInvalid", err)
	}
}

func TestRefreshTokenDesconhecido(t *testing.T) {
	svc, _, _ := newTestAuthService(t, "SenhaForte123!")

	if _, err := svc.Refresh(context.Background(), "token-inventado"); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("err = %v, want ErrRefreshInvalid", err)
	}
	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("vazio: err = %v, want ErrRefreshInvalid", err)
	}
}

func TestLogoutRevogaRefresh(t *testing.T) {
	svc, rdb, _ := newTestAuthService(t, "SenhaForte123!")
	ctx := context.Background()

	login, err := svc.Login(ctx, "maria@escola.com", "SenhaForte123!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, login.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(rdb.store) != 0 {
		t.Fatal("logout deveria limpar a sessão")
	}
	if _, err := svc.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("refresh pós-logout: err = %v, want ErrRefreshInvalid", err)
	}
}

func TestGetMe(t *testing.T) {
	svc, _, user := newTestAuthService(t, "SenhaForte123!")

	profile, roles, err := svc.GetMe(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get me: %v", err)
	}
	if profile.Email != user.Email || profile.Nome != user.Nome {
		t.Fatalf("profile = %+v", profile)
	}
	if len(roles) != 1 || roles[0] != "ADMIN" {
		t.Fatalf("roles = %v", roles)
	}
}
