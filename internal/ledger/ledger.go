// Package ledger writes the list of saved documents as a spreadsheet.
package ledger

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"billdocs/internal/format"
	"billdocs/pkg/models"
)

const (
	SheetName   = "Documents"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	FileName    = "saved_documents.xlsx"

	// built-in number format "#,##0.00"
	amountFormat = 4
)

var headers = []string{"Type", "Number", "Client", "Date Created", "Last Updated", "Total", "Amount"}

var columnWidths = []float64{12, 12, 32, 20, 20, 18, 14}

// Export writes records, one row each in the given order, as an xlsx
// workbook. Total is the formatted amount with symbol; Amount is the same
// value as a number for sums and filters.
func Export(records []models.SavedDocumentRecord, symbol string, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F3F4F6"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "D1D5DB", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: amountFormat})
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}

	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &row); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, rec := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			typeLabel(rec.Type),
			rec.DocumentNumber,
			rec.ClientName,
			rec.DateCreated.Local().Format("2006-01-02 15:04"),
			rec.DateUpdated.Local().Format("2006-01-02 15:04"),
			format.Money(symbol, rec.Total),
			rec.Total,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if len(records) > 0 {
		amountCol := lastCol
		if err := f.SetCellStyle(SheetName, amountCol+"2", fmt.Sprintf("%s%d", amountCol, len(records)+1), amountStyle); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}

	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}
	if err := f.AutoFilter(SheetName, fmt.Sprintf("A1:%s%d", lastCol, len(records)+1), nil); err != nil {
		return fmt.Errorf("failed to add auto filter: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func typeLabel(t models.DocumentType) string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}
