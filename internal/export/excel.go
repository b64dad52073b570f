package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExcelExporter escreve a tabela em uma planilha xlsx de aba única.
type ExcelExporter struct{}

func (ExcelExporter) Export(t Table) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Planilha1"
	f.SetSheetName(f.GetSheetName(0), sheet)

	row := 1
	if t.Title != "" {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellStr(sheet, cell, t.Title); err != nil {
			return nil, "", err
		}
		row += 2
	}

	headerRow := row
	for col, header := range t.Headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, headerRow)
		if err := f.SetCellStr(sheet, cell, header); err != nil {
			return nil, "", err
		}
	}

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		first, _ := excelize.CoordinatesToCellName(1, headerRow)
		last, _ := excelize.CoordinatesToCellName(len(t.Headers), headerRow)
		_ = f.SetCellStyle(sheet, first, last, style)
	}

	row++
	for _, dataRow := range t.Rows {
		for col, value := range dataRow {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellStr(sheet, cell, value); err != nil {
				return nil, "", err
			}
		}
		row++
	}

	if len(t.Footer) > 0 {
		for col, value := range t.Footer {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellStr(sheet, cell, value); err != nil {
				return nil, "", err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("escrever xlsx: %w", err)
	}
	return buf.Bytes(), xlsxContentType, nil
}
