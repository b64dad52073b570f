package financeiro

import (
	"sort"
	"time"
)

// exibicaoMax limita quantos recebíveis aparecem no painel. O total é sempre
// calculado sobre o conjunto filtrado inteiro, não sobre a fatia exibida.
const exibicaoMax = 6

// Recebiveis é o resultado da janela de 30 dias do painel financeiro.
type Recebiveis struct {
	Itens      []PagamentoView `json:"itens"`
	Total      float64         `json:"total"`
	Quantidade int             `json:"quantidade"`
}

// PagamentoView anexa ao pagamento o sinal de atraso derivado do relógio
// autoritativo. O status persistido ATRASADO continua armazenado, mas a
// exibição usa sempre o predicado derivado.
type PagamentoView struct {
	Pagamento
	Atrasado bool `json:"atrasado"`
}

// parseVencimento interpreta a data como calendário local, sem conversão de
// fuso.
func parseVencimento(data string, loc *time.Location) (time.Time, bool) {
	d, err := time.ParseInLocation("2006-01-02", data, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// EstaAtrasado decide o atraso de exibição: vencimento interpretado no fim do
// dia, estritamente antes de now, e status diferente de PAGO. Independe do
// status ATRASADO persistido.
func EstaAtrasado(p Pagamento, now time.Time) bool {
	if p.Status == StatusPago {
		return false
	}
	venc, ok := parseVencimento(p.Vencimento, now.Location())
	if !ok {
		return false
	}
	fimDoDia := venc.AddDate(0, 0, 1)
	return !now.Before(fimDoDia)
}

// ComputeRecebiveis aplica a janela de 30 dias a partir do início do mês
// corrente de now: entra o pagamento não-PAGO com vencimento dentro de
// [inícioDoMês, inícioDoMês+30d] — limites inclusivos — ou já marcado
// ATRASADO (este entra independente da janela; um PENDENTE vencendo daqui a
// dois meses fica de fora mesmo que antigo). Ordena por vencimento
// crescente e devolve só os primeiros seis itens para exibição. Função pura.
func ComputeRecebiveis(pagamentos []Pagamento, now time.Time) Recebiveis {
	inicioMes := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	limite := inicioMes.AddDate(0, 0, 30)

	var filtrados []Pagamento
	for _, p := range pagamentos {
		if p.Status == StatusPago {
			continue
		}
		if p.Status == StatusAtrasado {
			filtrados = append(filtrados, p)
			continue
		}
		venc, ok := parseVencimento(p.Vencimento, now.Location())
		if !ok {
			continue
		}
		if !venc.Before(inicioMes) && !venc.After(limite) {
			filtrados = append(filtrados, p)
		}
	}

	sort.SliceStable(filtrados, func(i, j int) bool {
		return filtrados[i].Vencimento < filtrados[j].Vencimento
	})

	result := Recebiveis{Quantidade: len(filtrados)}
	for _, p := range filtrados {
		result.Total += p.Valor
	}

	for i, p := range filtrados {
		if i == exibicaoMax {
			break
		}
		result.Itens = append(result.Itens, PagamentoView{Pagamento: p, Atrasado: EstaAtrasado(p, now)})
	}

	return result
}
