package ledger

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"billdocs/pkg/models"
)

func TestExport(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.Local)
	records := []models.SavedDocumentRecord{
		{ID: "1", Type: models.DocumentTypeInvoice, DocumentNumber: "001", ClientName: "Ada Obi", Total: 3495.3625, DateCreated: created, DateUpdated: created},
		{ID: "2", Type: models.DocumentTypeReceipt, DocumentNumber: "XXX", ClientName: "Unknown Client", Total: 1500, DateCreated: created, DateUpdated: created.Add(time.Hour)},
	}

	var buf bytes.Buffer
	if err := Export(records, "₦", &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Type" || rows[0][6] != "Amount" {
		t.Fatalf("header = %v", rows[0])
	}

	first := rows[1]
	if first[0] != "Invoice" || first[1] != "001" || first[2] != "Ada Obi" || first[3] != "2025-03-01 09:30" {
		t.Fatalf("first row = %v", first)
	}
	if first[5] != "₦3,495.36" {
		t.Fatalf("formatted total = %q", first[5])
	}
	if rows[2][4] != "2025-03-01 10:30" {
		t.Fatalf("last updated = %q", rows[2][4])
	}

	raw, err := f.GetCellValue(SheetName, "G3", excelize.Options{RawCellValue: true})
	if err != nil || raw != "1500" {
		t.Fatalf("raw amount = %q, %v", raw, err)
	}
}

func TestExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(nil, "$", &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows(SheetName)
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}
