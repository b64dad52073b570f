package financeiro

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

// Status persistidos de pagamento. ATRASADO é gravado, não derivado: o sinal
// de exibição vem de EstaAtrasado e os dois podem divergir.
const (
	StatusPago     = "PAGO"
	StatusPendente = "PENDENTE"
	StatusAtrasado = "ATRASADO"
)

type Pagamento struct {
	ID        uuid.UUID `json:"id"`
	AlunoID   uuid.UUID `json:"aluno_id"`
	Valor     float64   `json:"valor"`
	Vencimento string   `json:"vencimento"`
	// Pagamento é a data de quitação. Só tem significado com status PAGO;
	// gravações com outro status anulam o campo.
	Pagamento *string   `json:"pagamento,omitempty"`
	Status    string    `json:"status"`
	Descricao string    `json:"descricao"`
	CriadoEm  time.Time `json:"criado_em"`
}

// Repository fornece acesso aos pagamentos.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListPagamentos(ctx context.Context) ([]Pagamento, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, aluno_id, valor, to_char(vencimento, 'YYYY-MM-DD'),
		       to_char(pagamento, 'YYYY-MM-DD'), status, descricao, criado_em
		FROM pagamentos
		ORDER BY vencimento
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pagamentos []Pagamento
	for rows.Next() {
		var p Pagamento
		if err := rows.Scan(&p.ID, &p.AlunoID, &p.Valor, &p.Vencimento, &p.Pagamento, &p.Status, &p.Descricao, &p.CriadoEm); err != nil {
			return nil, err
		}
		pagamentos = append(pagamentos, p)
	}
	return pagamentos, rows.Err()
}

func (r *Repository) GetPagamento(ctx context.Context, id uuid.UUID) (Pagamento, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var p Pagamento
	err := r.db.QueryRow(ctx, `
		SELECT id, aluno_id, valor, to_char(vencimento, 'YYYY-MM-DD'),
		       to_char(pagamento, 'YYYY-MM-DD'), status, descricao, criado_em
		FROM pagamentos
		WHERE id = $1
	`, id).Scan(&p.ID, &p.AlunoID, &p.Valor, &p.Vencimento, &p.Pagamento, &p.Status, &p.Descricao, &p.CriadoEm)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, errNotFound
	}
	return p, err
}

func (r *Repository) InsertPagamento(ctx context.Context, p Pagamento) (Pagamento, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO pagamentos (aluno_id, valor, vencimento, pagamento, status, descricao)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, criado_em
	`, p.AlunoID, p.Valor, p.Vencimento, p.Pagamento, p.Status, p.Descricao).Scan(&p.ID, &p.CriadoEm)
	return p, err
}

func (r *Repository) UpdatePagamento(ctx context.Context, p Pagamento) (Pagamento, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE pagamentos
		SET aluno_id=$1, valor=$2, vencimento=$3, pagamento=$4, status=$5, descricao=$6
		WHERE id=$7
		RETURNING criado_em
	`, p.AlunoID, p.Valor, p.Vencimento, p.Pagamento, p.Status, p.Descricao, p.ID).Scan(&p.CriadoEm)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, errNotFound
	}
	return p, err
}

func (r *Repository) DeletePagamento(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM pagamentos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}
