package export

// Table é a tabela pronta, em memória, entregue aos renderizadores. O núcleo
// nunca conhece detalhes de planilha ou PDF: só produz Table.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// Footer opcional (ex.: linha de total) renderizada em destaque.
	Footer []string
}

// Exporter transforma uma Table em um arquivo baixável.
type Exporter interface {
	Export(t Table) (data []byte, contentType string, err error)
}
