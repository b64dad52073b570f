package cadastro

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// errNotFound é o mesmo valor de ErrNotFound: consumidores de outros
// pacotes comparam contra o sentinel público.
var errNotFound = ErrNotFound

const dbTimeout = 3 * time.Second

// Repository fornece acesso aos cadastros básicos. Não guarda estado entre
// chamadas e não aplica regra de negócio: apenas traduz colunas para os
// structs canônicos da aplicação.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

type Aluno struct {
	ID             uuid.UUID  `json:"id"`
	Nome           string     `json:"nome"`
	DataNascimento string     `json:"data_nascimento"`
	Serie          string     `json:"serie"`
	Escola         string     `json:"escola"`
	ResponsavelID  *uuid.UUID `json:"responsavel_id,omitempty"`
	Disciplinas    []string   `json:"disciplinas"`
	Mensalidade    *float64   `json:"mensalidade,omitempty"`
	CriadoEm       time.Time  `json:"criado_em"`
}

type Professor struct {
	ID          uuid.UUID `json:"id"`
	Nome        string    `json:"nome"`
	Email       string    `json:"email"`
	Telefone    string    `json:"telefone"`
	Disciplinas []string  `json:"disciplinas"`
	CriadoEm    time.Time `json:"criado_em"`
}

type Instituicao struct {
	ID       uuid.UUID `json:"id"`
	Nome     string    `json:"nome"`
	Endereco string    `json:"endereco"`
	Telefone string    `json:"telefone"`
	Email    string    `json:"email"`
	CriadoEm time.Time `json:"criado_em"`
}

type Usuario struct {
	ID        uuid.UUID `json:"id"`
	Nome      string    `json:"nome"`
	Email     string    `json:"email"`
	SenhaHash string    `json:"-"`
	Papel     string    `json:"papel"`
	Ativo     bool      `json:"ativo"`
	CriadoEm  time.Time `json:"criado_em"`
}

func (r *Repository) ListAlunos(ctx context.Context) ([]Aluno, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, nome, data_nascimento, serie, escola, responsavel_id, disciplinas, mensalidade, criado_em
		FROM alunos
		ORDER BY nome
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alunos []Aluno
	for rows.Next() {
		var a Aluno
		if err := rows.Scan(&a.ID, &a.Nome, &a.DataNascimento, &a.Serie, &a.Escola, &a.ResponsavelID, &a.Disciplinas, &a.Mensalidade, &a.CriadoEm); err != nil {
			return nil, err
		}
		alunos = append(alunos, a)
	}
	return alunos, rows.Err()
}

func (r *Repository) GetAluno(ctx context.Context, id uuid.UUID) (Aluno, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var a Aluno
	err := r.db.QueryRow(ctx, `
		SELECT id, nome, data_nascimento, serie, escola, responsavel_id, disciplinas, mensalidade, criado_em
		FROM alunos
		WHERE id = $1
	`, id).Scan(&a.ID, &a.Nome, &a.DataNascimento, &a.Serie, &a.Escola, &a.ResponsavelID, &a.Disciplinas, &a.Mensalidade, &a.CriadoEm)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, errNotFound
	}
	return a, err
}

func (r *Repository) InsertAluno(ctx context.Context, a Aluno) (Aluno, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO alunos (nome, data_nascimento, serie, escola, responsavel_id, disciplinas, mensalidade)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, criado_em
	`, a.Nome, a.DataNascimento, a.Serie, a.Escola, a.ResponsavelID, a.Disciplinas, a.Mensalidade).Scan(&a.ID, &a.CriadoEm)
	return a, err
}

func (r *Repository) UpdateAluno(ctx context.Context, a Aluno) (Aluno, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE alunos
		SET nome=$1, data_nascimento=$2, serie=$3, escola=$4, responsavel_id=$5, disciplinas=$6, mensalidade=$7
		WHERE id=$8
		RETURNING criado_em
	`, a.Nome, a.DataNascimento, a.Serie, a.Escola, a.ResponsavelID, a.Disciplinas, a.Mensalidade, a.ID).Scan(&a.CriadoEm)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, errNotFound
	}
	return a, err
}

func (r *Repository) ListProfessores(ctx context.Context) ([]Professor, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, nome, email, telefone, disciplinas, criado_em
		FROM professores
		ORDER BY nome
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var professores []Professor
	for rows.Next() {
		var p Professor
		if err := rows.Scan(&p.ID, &p.Nome, &p.Email, &p.Telefone, &p.Disciplinas, &p.CriadoEm); err != nil {
			return nil, err
		}
		professores = append(professores, p)
	}
	return professores, rows.Err()
}

func (r *Repository) InsertProfessor(ctx context.Context, p Professor) (Professor, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO professores (nome, email, telefone, disciplinas)
		VALUES ($1,$2,$3,$4)
		RETURNING id, criado_em
	`, p.Nome, p.Email, p.Telefone, p.Disciplinas).Scan(&p.ID, &p.CriadoEm)
	return p, err
}

func (r *Repository) UpdateProfessor(ctx context.Context, p Professor) (Professor, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE professores
		SET nome=$1, email=$2, telefone=$3, disciplinas=$4
		WHERE id=$5
		RETURNING criado_em
	`, p.Nome, p.Email, p.Telefone, p.Disciplinas, p.ID).Scan(&p.CriadoEm)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, errNotFound
	}
	return p, err
}

func (r *Repository) DeleteProfessor(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM professores WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

func (r *Repository) ListInstituicoes(ctx context.Context) ([]Instituicao, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, nome, endereco, telefone, email, criado_em
		FROM instituicoes
		ORDER BY nome
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instituicoes []Instituicao
	for rows.Next() {
		var i Instituicao
		if err := rows.Scan(&i.ID, &i.Nome, &i.Endereco, &i.Telefone, &i.Email, &i.CriadoEm); err != nil {
			return nil, err
		}
		instituicoes = append(instituicoes, i)
	}
	return instituicoes, rows.Err()
}

func (r *Repository) InsertInstituicao(ctx context.Context, i Instituicao) (Instituicao, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO instituicoes (nome, endereco, telefone, email)
		VALUES ($1,$2,$3,$4)
		RETURNING id, criado_em
	`, i.Nome, i.Endereco, i.Telefone, i.Email).Scan(&i.ID, &i.CriadoEm)
	return i, err
}

func (r *Repository) UpdateInstituicao(ctx context.Context, i Instituicao) (Instituicao, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE instituicoes
		SET nome=$1, endereco=$2, telefone=$3, email=$4
		WHERE id=$5
		RETURNING criado_em
	`, i.Nome, i.Endereco, i.Telefone, i.Email, i.ID).Scan(&i.CriadoEm)
	if errors.Is(err, pgx.ErrNoRows) {
		return i, errNotFound
	}
	return i, err
}

func (r *Repository) DeleteInstituicao(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM instituicoes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

func (r *Repository) ListUsuarios(ctx context.Context) ([]Usuario, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, nome, email, senha_hash, papel, ativo, criado_em
		FROM usuarios
		ORDER BY nome
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usuarios []Usuario
	for rows.Next() {
		var u Usuario
		if err := rows.Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash, &u.Papel, &u.Ativo, &u.CriadoEm); err != nil {
			return nil, err
		}
		usuarios = append(usuarios, u)
	}
	return usuarios, rows.Err()
}

func (r *Repository) GetUsuarioByEmail(ctx context.Context, email string) (Usuario, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var u Usuario
	err := r.db.QueryRow(ctx, `
		SELECT id, nome, email, senha_hash, papel, ativo, criado_em
		FROM usuarios
		WHERE lower(email) = lower($1)
	`, email).Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash, &u.Papel, &u.Ativo, &u.CriadoEm)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, errNotFound
	}
	return u, err
}

func (r *Repository) GetUsuario(ctx context.Context, id uuid.UUID) (Usuario, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var u Usuario
	err := r.db.QueryRow(ctx, `
		SELECT id, nome, email, senha_hash, papel, ativo, criado_em
		FROM usuarios
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash, &u.Papel, &u.Ativo, &u.CriadoEm)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, errNotFound
	}
	return u, err
}

func (r *Repository) InsertUsuario(ctx context.Context, u Usuario) (Usuario, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO usuarios (nome, email, senha_hash, papel, ativo)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, criado_em
	`, u.Nome, u.Email, u.SenhaHash, u.Papel, u.Ativo).Scan(&u.ID, &u.CriadoEm)
	return u, err
}

func (r *Repository) UpdateUsuario(ctx context.Context, u Usuario) (Usuario, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE usuarios
		SET nome=$1, email=$2, papel=$3, ativo=$4
		WHERE id=$5
		RETURNING criado_em
	`, u.Nome, u.Email, u.Papel, u.Ativo, u.ID).Scan(&u.CriadoEm)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, errNotFound
	}
	return u, err
}
