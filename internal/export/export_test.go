package export

import (
	"bytes"
	"testing"
)

func sampleTable() Table {
	return Table{
		Title:   "Mensalidades",
		Headers: []string{"Aluno", "Descrição", "Vencimento", "Valor", "Status"},
		Rows: [][]string{
			{"Ana Souza", "Mensalidade março", "2024-03-10", "R$ 450,00", "Pago"},
			{"Bruno Lima", "Mensalidade março", "2024-03-10", "R$ 450,00", "Atrasado"},
		},
		Footer: []string{"Total", "", "", "R$ 900,00", ""},
	}
}

func TestExcelExporter(t *testing.T) {
	data, contentType, err := ExcelExporter{}.Export(sampleTable())
	if err != nil {
		t.Fatalf("export xlsx: %v", err)
	}
	if contentType != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("content type = %q", contentType)
	}
	if len(data) == 0 {
		t.Fatal("xlsx vazio")
	}
	// xlsx é um zip: assinatura PK.
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatalf("payload não parece xlsx: %x", data[:4])
	}
}

func TestPDFExporter(t *testing.T) {
	data, contentType, err := PDFExporter{}.Export(sampleTable())
	if err != nil {
		t.Fatalf("export pdf: %v", err)
	}
	if contentType != "application/pdf" {
		t.Fatalf("content type = %q", contentType)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("payload sem cabeçalho %PDF")
	}
}

func TestPDFExporterPaginaLonga(t *testing.T) {
	tab := sampleTable()
	tab.Rows = nil
	for i := 0; i < 120; i++ {
		tab.Rows = append(tab.Rows, []string{"Aluno", "Mensalidade", "2024-03-10", "R$ 450,00", "Pendente"})
	}

	data, _, err := PDFExporter{}.Export(tab)
	if err != nil {
		t.Fatalf("export pdf longo: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("pdf vazio")
	}
}

func TestExportSemTitulo(t *testing.T) {
	tab := sampleTable()
	tab.Title = ""
	tab.Footer = nil

	if _, _, err := (ExcelExporter{}).Export(tab); err != nil {
		t.Fatalf("xlsx sem título: %v", err)
	}
	if _, _, err := (PDFExporter{}).Export(tab); err != nil {
		t.Fatalf("pdf sem título: %v", err)
	}
}
