package agenda

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errNotFound = errors.New("not found")

const dbTimeout = 3 * time.Second

// Repository fornece acesso às aulas agendadas.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Status de aula. Criada AGENDADA; CONCLUIDA exige as anotações do professor.
const (
	StatusAgendada  = "AGENDADA"
	StatusConcluida = "CONCLUIDA"
	StatusCancelada = "CANCELADA"
)

type Aula struct {
	ID          uuid.UUID `json:"id"`
	AlunoID     uuid.UUID `json:"aluno_id"`
	ProfessorID uuid.UUID `json:"professor_id"`
	Disciplina  string    `json:"disciplina"`
	Data        string    `json:"data"`
	Hora        string    `json:"hora"`
	Status      string    `json:"status"`
	Observacoes *string   `json:"observacoes,omitempty"`
	CriadoEm    time.Time `json:"criado_em"`
}

func (r *Repository) ListAulas(ctx context.Context) ([]Aula, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, aluno_id, professor_id, disciplina, to_char(data, 'YYYY-MM-DD'), hora, status, observacoes, criado_em
		FROM aulas
		ORDER BY data, hora
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aulas []Aula
	for rows.Next() {
		var a Aula
		if err := rows.Scan(&a.ID, &a.AlunoID, &a.ProfessorID, &a.Disciplina, &a.Data, &a.Hora, &a.Status, &a.Observacoes, &a.CriadoEm); err != nil {
			return nil, err
		}
		aulas = append(aulas, a)
	}
	return aulas, rows.Err()
}

func (r *Repository) GetAula(ctx context.Context, id uuid.UUID) (Aula, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var a Aula
	err := r.db.QueryRow(ctx, `
		SELECT id, aluno_id, professor_id, disciplina, to_char(data, 'YYYY-MM-DD'), hora, status, observacoes, criado_em
		FROM aulas
		WHERE id = $1
	`, id).Scan(&a.ID, &a.AlunoID, &a.ProfessorID, &a.Disciplina, &a.Data, &a.Hora, &a.Status, &a.Observacoes, &a.CriadoEm)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, errNotFound
	}
	return a, err
}

func (r *Repository) InsertAula(ctx context.Context, a Aula) (Aula, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO aulas (aluno_id, professor_id, disciplina, data, hora, status, observacoes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, criado_em
	`, a.AlunoID, a.ProfessorID, a.Disciplina, a.Data, a.Hora, a.Status, a.Observacoes).Scan(&a.ID, &a.CriadoEm)
	return a, err
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, observacoes *string) (Aula, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var a Aula
	err := r.db.QueryRow(ctx, `
		UPDATE aulas
		SET status = $1, observacoes = COALESCE($2, observacoes)
		WHERE id = $3
		RETURNING id, aluno_id, professor_id, disciplina, to_char(data, 'YYYY-MM-DD'), hora, status, observacoes, criado_em
	`, status, observacoes, id).Scan(&a.ID, &a.AlunoID, &a.ProfessorID, &a.Disciplina, &a.Data, &a.Hora, &a.Status, &a.Observacoes, &a.CriadoEm)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, errNotFound
	}
	return a, err
}

func (r *Repository) UpdateAula(ctx context.Context, a Aula) (Aula, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE aulas
		SET aluno_id=$1, professor_id=$2, disciplina=$3, data=$4, hora=$5
		WHERE id=$6
		RETURNING status, observacoes, criado_em
	`, a.AlunoID, a.ProfessorID, a.Disciplina, a.Data, a.Hora, a.ID).Scan(&a.Status, &a.Observacoes, &a.CriadoEm)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, errNotFound
	}
	return a, err
}
