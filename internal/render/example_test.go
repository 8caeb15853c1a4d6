package render_test

import (
	"fmt"

	"billdocs/internal/document"
	"billdocs/internal/render"
	"billdocs/pkg/models"
)

func ExampleFileName() {
	fmt.Println(render.FileName(models.DocumentTypeInvoice, "014", "pdf"))
	fmt.Println(render.FileName(models.DocumentTypeReceipt, "", "png"))
	// Output:
	// invoice_014.pdf
	// receipt_XXX.png
}

func ExampleNewView() {
	snap := document.Snapshot(models.Document{
		Type:           models.DocumentTypeReceipt,
		LineItems:      []models.LineItem{{ID: "1", Description: "Repair", Quantity: 1, Rate: 1500, Amount: 1500}},
		DocumentNumber: "007",
		DateIssued:     "2025-01-09",
		DueDate:        "2025-02-09",
	})

	v := render.NewView(snap, render.DefaultOptions())
	fmt.Println(v.Title)
	for _, m := range v.Meta {
		fmt.Println(m.Label, m.Value)
	}
	for _, t := range v.Totals {
		fmt.Println(t.Label, t.Value)
	}
	// Output:
	// RECEIPT
	// Receipt #: 007
	// Date: January 9, 2025
	// Subtotal: ₦1,500.00
	// Total: ₦1,500.00
}
