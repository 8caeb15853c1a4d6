package validation

import (
	"errors"
	"math"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"billdocs/pkg/models"
)

func validDocument() models.Document {
	return models.Document{
		Type:       models.DocumentTypeInvoice,
		Business:   models.BusinessProfile{Name: "Xamtastic Electric", Email: "billing@xamtastic.ng", Website: "https://xamtastic.ng"},
		Client:     models.PartyInfo{Name: "Ada Obi", Email: "ada@example.com"},
		LineItems:  []models.LineItem{{ID: "a", Quantity: 2, Rate: 100, Amount: 200}},
		DateIssued: "2025-03-01",
		VATRate:    150,
	}
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Document)
		wantKey string
	}{
		{"valid", func(*models.Document) {}, ""},
		{"zero quantity is fine", func(d *models.Document) { d.LineItems[0].Quantity = 0 }, ""},
		{"empty due date is fine", func(d *models.Document) { d.DueDate = "" }, ""},
		{"unknown type", func(d *models.Document) { d.Type = "bill" }, "document"},
		{"negative rate", func(d *models.Document) { d.LineItems[0].Rate = -5 }, "document"},
		{"NaN rate", func(d *models.Document) { d.LineItems[0].Rate = math.NaN() }, "document"},
		{"infinite quantity", func(d *models.Document) { d.LineItems[0].Quantity = math.Inf(1) }, "document"},
		{"infinite VAT", func(d *models.Document) { d.VATRate = math.Inf(-1) }, "document"},
		{"NaN VAT", func(d *models.Document) { d.VATRate = math.NaN() }, "document"},
		{"no line items", func(d *models.Document) { d.LineItems = nil }, "document"},
		{"bad issue date", func(d *models.Document) { d.DateIssued = "01/03/2025" }, "document"},
		{"bad due date", func(d *models.Document) { d.DueDate = "2025-13-01" }, "document"},
		{"bad client email", func(d *models.Document) { d.Client.Email = "not-an-email" }, "clientInfo"},
		{"bad logo", func(d *models.Document) { d.Business.Logo = "https://example.com/logo.png" }, "businessInfo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument()
			tt.mutate(&doc)
			err := ValidateDocument(doc)

			if tt.wantKey == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var errs validation.Errors
			if !errors.As(err, &errs) {
				t.Fatalf("expected validation.Errors, got %T %v", err, err)
			}
			if _, ok := errs[tt.wantKey]; !ok {
				t.Fatalf("expected error under %q, got %v", tt.wantKey, errs)
			}
		})
	}
}

func TestValidateProfile(t *testing.T) {
	if err := ValidateProfile(models.BusinessProfile{}); err != nil {
		t.Fatalf("empty profile rejected: %v", err)
	}
	ok := models.BusinessProfile{Logo: "data:image/png;base64,iVBORw0KGgo="}
	if err := ValidateProfile(ok); err != nil {
		t.Fatalf("data URL logo rejected: %v", err)
	}
	if err := ValidateProfile(models.BusinessProfile{Website: "not a url"}); err == nil {
		t.Fatalf("bad website accepted")
	}
}

func TestVATOutOfRange(t *testing.T) {
	for rate, want := range map[float64]bool{-1: true, 0: false, 7.5: false, 100: false, 150: true} {
		if got := VATOutOfRange(rate); got != want {
			t.Errorf("VATOutOfRange(%v) = %v, want %v", rate, got, want)
		}
	}
}
