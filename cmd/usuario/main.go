package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaoescolar/api/internal/advisory"
	"github.com/gestaoescolar/api/internal/cadastro"
	"github.com/gestaoescolar/api/internal/db"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN ou DATABASE_URL")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	service := cadastro.NewService(cadastro.NewRepository(pool), advisory.StaticProvider{})

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "create":
		if err := runCreate(ctx, service, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao criar usuário")
		}
	case "list":
		if err := runList(ctx, service); err != nil {
			log.Fatal().Err(err).Msg("falha ao listar usuários")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usuario CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  usuario create --nome \"Maria Souza\" --email maria@escola.example.com --senha segredo123 [--papel ADMIN]")
	fmt.Fprintln(os.Stderr, "  usuario list")
}

func runCreate(ctx context.Context, service *cadastro.Service, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		nome  = fs.String("nome", "", "nome completo")
		email = fs.String("email", "", "e-mail de login")
		senha = fs.String("senha", "", "senha inicial")
		papel = fs.String("papel", "ADMIN", "papel (ADMIN, PROFESSOR, RESPONSAVEL, ALUNO)")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	usuario, err := service.CriarUsuario(ctx, cadastro.Usuario{
		Nome:  strings.TrimSpace(*nome),
		Email: strings.TrimSpace(*email),
		Papel: strings.ToUpper(strings.TrimSpace(*papel)),
		Ativo: true,
	}, *senha)
	if err != nil {
		return err
	}

	log.Info().Str("id", usuario.ID.String()).Str("email", usuario.Email).Str("papel", usuario.Papel).Msg("usuário criado")
	return nil
}

func runList(ctx context.Context, service *cadastro.Service) error {
	usuarios, err := service.ListUsuarios(ctx)
	if err != nil {
		return err
	}

	for _, u := range usuarios {
		estado := "ativo"
		if !u.Ativo {
			estado = "inativo"
		}
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n", u.ID, u.Nome, u.Email, u.Papel, estado)
	}
	return nil
}
