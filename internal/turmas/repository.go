package turmas

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaoescolar/api/internal/db"
)

var errNotFound = errors.New("not found")

const dbTimeout = 3 * time.Second

// Repository fornece acesso a turmas e chamadas.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

type Turma struct {
	ID          uuid.UUID   `json:"id"`
	Nome        string      `json:"nome"`
	Disciplina  string      `json:"disciplina"`
	ProfessorID uuid.UUID   `json:"professor_id"`
	Alunos      []uuid.UUID `json:"alunos"`
	CriadoEm    time.Time   `json:"criado_em"`
}

// Chamada é o registro de presença de uma turma em um dia. A chave composta
// (turma_id, data) garante no máximo um registro por turma por dia.
type Chamada struct {
	TurmaID      uuid.UUID   `json:"turma_id"`
	Data         string      `json:"data"`
	Presentes    []uuid.UUID `json:"presentes"`
	AtualizadoEm time.Time   `json:"atualizado_em"`
}

// AlunoRef carrega o mínimo necessário para o relatório de frequência.
type AlunoRef struct {
	ID   uuid.UUID `json:"id"`
	Nome string    `json:"nome"`
}

func (r *Repository) ListTurmas(ctx context.Context) ([]Turma, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, nome, disciplina, professor_id, alunos, criado_em
		FROM turmas
		ORDER BY nome
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turmas []Turma
	for rows.Next() {
		var t Turma
		if err := rows.Scan(&t.ID, &t.Nome, &t.Disciplina, &t.ProfessorID, &t.Alunos, &t.CriadoEm); err != nil {
			return nil, err
		}
		turmas = append(turmas, t)
	}
	return turmas, rows.Err()
}

func (r *Repository) GetTurma(ctx context.Context, id uuid.UUID) (Turma, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var t Turma
	err := r.db.QueryRow(ctx, `
		SELECT id, nome, disciplina, professor_id, alunos, criado_em
		FROM turmas
		WHERE id = $1
	`, id).Scan(&t.ID, &t.Nome, &t.Disciplina, &t.ProfessorID, &t.Alunos, &t.CriadoEm)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, errNotFound
	}
	return t, err
}

func (r *Repository) InsertTurma(ctx context.Context, t Turma) (Turma, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO turmas (nome, disciplina, professor_id, alunos)
		VALUES ($1,$2,$3,$4)
		RETURNING id, criado_em
	`, t.Nome, t.Disciplina, t.ProfessorID, t.Alunos).Scan(&t.ID, &t.CriadoEm)
	return t, err
}

func (r *Repository) UpdateTurma(ctx context.Context, t Turma) (Turma, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE turmas
		SET nome=$1, disciplina=$2, professor_id=$3, alunos=$4
		WHERE id=$5
		RETURNING criado_em
	`, t.Nome, t.Disciplina, t.ProfessorID, t.Alunos, t.ID).Scan(&t.CriadoEm)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, errNotFound
	}
	return t, err
}

// DeleteTurma remove a turma e suas chamadas na mesma transação.
func (r *Repository) DeleteTurma(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM chamadas WHERE turma_id = $1`, id); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM turmas WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errNotFound
		}
		return nil
	})
}

// ListAlunosDaTurma resolve os nomes do elenco da turma.
func (r *Repository) ListAlunosDaTurma(ctx context.Context, turmaID uuid.UUID) ([]AlunoRef, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.nome
		FROM turmas t
		JOIN alunos a ON a.id = ANY(t.alunos)
		WHERE t.id = $1
		ORDER BY a.nome
	`, turmaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alunos []AlunoRef
	for rows.Next() {
		var a AlunoRef
		if err := rows.Scan(&a.ID, &a.Nome); err != nil {
			return nil, err
		}
		alunos = append(alunos, a)
	}
	return alunos, rows.Err()
}

func (r *Repository) ListChamadas(ctx context.Context, turmaID uuid.UUID) ([]Chamada, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT turma_id, to_char(data, 'YYYY-MM-DD'), presentes, atualizado_em
		FROM chamadas
		WHERE turma_id = $1
		ORDER BY data
	`, turmaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chamadas []Chamada
	for rows.Next() {
		var c Chamada
		if err := rows.Scan(&c.TurmaID, &c.Data, &c.Presentes, &c.AtualizadoEm); err != nil {
			return nil, err
		}
		chamadas = append(chamadas, c)
	}
	return chamadas, rows.Err()
}

func (r *Repository) ListTodasChamadas(ctx context.Context) ([]Chamada, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT turma_id, to_char(data, 'YYYY-MM-DD'), presentes, atualizado_em
		FROM chamadas
		ORDER BY data
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chamadas []Chamada
	for rows.Next() {
		var c Chamada
		if err := rows.Scan(&c.TurmaID, &c.Data, &c.Presentes, &c.AtualizadoEm); err != nil {
			return nil, err
		}
		chamadas = append(chamadas, c)
	}
	return chamadas, rows.Err()
}

// UpsertChamada grava a chamada do dia. Reenvio do mesmo (turma, data)
// substitui o conjunto de presentes — idempotente por construção.
func (r *Repository) UpsertChamada(ctx context.Context, c Chamada) (Chamada, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO chamadas (turma_id, data, presentes, atualizado_em)
		VALUES ($1,$2,$3,now())
		ON CONFLICT (turma_id, data)
		DO UPDATE SET presentes = EXCLUDED.presentes, atualizado_em = now()
		RETURNING atualizado_em
	`, c.TurmaID, c.Data, c.Presentes).Scan(&c.AtualizadoEm)
	return c, err
}
