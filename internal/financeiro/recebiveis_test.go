package financeiro

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

func pagamento(venc, status string, valor float64) Pagamento {
	return Pagamento{
		ID:         uuid.New(),
		AlunoID:    uuid.New(),
		Valor:      valor,
		Vencimento: venc,
		Status:     status,
	}
}

func TestEstaAtrasado(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		p    Pagamento
		want bool
	}{
		{"pago nunca atrasa", pagamento("2024-01-05", StatusPago, 100), false},
		{"pendente vencido", pagamento("2024-01-05", StatusPendente, 100), true},
		{"vence hoje ainda não atrasou", pagamento("2024-01-10", StatusPendente, 100), false},
		{"vencimento futuro", pagamento("2024-02-01", StatusPendente, 100), false},
		{"atrasado persistido com vencimento futuro", pagamento("2024-02-01", StatusAtrasado, 100), false},
		{"data inválida não atrasa", pagamento("ontem", StatusPendente, 100), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := EstaAtrasado(tc.p, now); got != tc.want {
				t.Fatalf("EstaAtrasado(%s %s) = %v, want %v", tc.p.Vencimento, tc.p.Status, got, tc.want)
			}
		})
	}
}

func TestEstaAtrasadoViraNaMeiaNoite(t *testing.T) {
	p := pagamento("2024-01-09", StatusPendente, 100)

	antes := time.Date(2024, 1, 9, 23, 59, 59, 0, time.Local)
	if EstaAtrasado(p, antes) {
		t.Fatal("não deveria atrasar antes do fim do dia do vencimento")
	}

	meiaNoite := time.Date(2024, 1, 10, 0, 0, 0, 0, time.Local)
	if !EstaAtrasado(p, meiaNoite) {
		t.Fatal("deveria atrasar exatamente na virada do dia")
	}
}

func TestComputeRecebiveisJanela(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local)

	inicioMes := pagamento("2024-03-01", StatusPendente, 100)
	limite := pagamento("2024-03-31", StatusPendente, 200)
	foraDaJanela := pagamento("2024-04-01", StatusPendente, 400)
	atrasadoFora := pagamento("2024-06-01", StatusAtrasado, 800)
	pago := pagamento("2024-03-10", StatusPago, 1600)
	mesAnterior := pagamento("2024-02-28", StatusPendente, 3200)

	result := ComputeRecebiveis([]Pagamento{foraDaJanela, atrasadoFora, limite, pago, inicioMes, mesAnterior}, now)

	if result.Quantidade != 3 {
		t.Fatalf("quantidade = %d, want 3", result.Quantidade)
	}
	if result.Total != 100+200+800 {
		t.Fatalf("total = %.2f, want 1100.00", result.Total)
	}

	wantOrder := []string{"2024-03-01", "2024-03-31", "2024-06-01"}
	for i, want := range wantOrder {
		if result.Itens[i].Vencimento != want {
			t.Fatalf("itens[%d].Vencimento = %s, want %s", i, result.Itens[i].Vencimento, want)
		}
	}
}

func TestComputeRecebiveisTotalIgnoraCorteDeExibicao(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)

	var pagamentos []Pagamento
	var total float64
	for i := 0; i < 9; i++ {
		valor := float64(i+1) * 10
		total += valor
		pagamentos = append(pagamentos, pagamento(fmt.Sprintf("2024-03-%02d", i+2), StatusPendente, valor))
	}

	result := ComputeRecebiveis(pagamentos, now)

	if len(result.Itens) != exibicaoMax {
		t.Fatalf("itens exibidos = %d, want %d", len(result.Itens), exibicaoMax)
	}
	if result.Quantidade != 9 {
		t.Fatalf("quantidade = %d, want 9", result.Quantidade)
	}
	if result.Total != total {
		t.Fatalf("total = %.2f, want %.2f (soma do conjunto inteiro)", result.Total, total)
	}
}

func TestComputeRecebiveisOrdemNaoAfetaTotal(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)

	a := pagamento("2024-03-05", StatusPendente, 150)
	b := pagamento("2024-03-08", StatusAtrasado, 250)
	c := pagamento("2024-03-20", StatusPendente, 350)

	r1 := ComputeRecebiveis([]Pagamento{a, b, c}, now)
	r2 := ComputeRecebiveis([]Pagamento{c, a, b}, now)

	if r1.Total != r2.Total || r1.Quantidade != r2.Quantidade {
		t.Fatalf("resultado depende da ordem de entrada: %+v vs %+v", r1, r2)
	}
}
