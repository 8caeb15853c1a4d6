package render

import (
	"strings"

	"billdocs/internal/document"
	"billdocs/internal/format"
	"billdocs/pkg/models"
)

// Placeholder texts shown where the document has no value yet.
const (
	PlaceholderBusiness    = "Your Business"
	PlaceholderClient      = "Client Name"
	PlaceholderDescription = "Item description"
	PlaceholderDate        = "Not set"
	PlaceholderNotes       = "Add notes to include additional terms or information."
)

var itemColumns = []string{"Description", "Quantity", "Rate", "Amount"}

// Pair is a label with its formatted value.
type Pair struct {
	Label  string
	Value  string
	Strong bool
}

// Line is one line of text that may be standing in for a missing value.
type Line struct {
	Text        string
	Placeholder bool
}

// ItemRow is one formatted line item.
type ItemRow struct {
	Description Line
	Quantity    string
	Rate        string
	Amount      string
}

// View is the formatted content of a document, in display order. The preview
// tree and the PDF are both built from it.
type View struct {
	Type  models.DocumentType
	Title string
	Meta  []Pair

	Logo          string
	BusinessName  Line
	BusinessLines []string

	PartyHeading string
	PartyName    Line
	PartyLines   []string

	Columns []string
	Rows    []ItemRow

	Totals []Pair
	HasVAT bool

	Notes            string
	NotesPlaceholder string
}

// NewView formats snap for display.
func NewView(snap models.Snapshot, opts Options) View {
	doc := snap.Document
	money := func(amount float64) string { return format.Money(opts.CurrencySymbol, amount) }

	v := View{
		Type:         doc.Type,
		Title:        document.Title(doc.Type),
		Logo:         doc.Business.Logo,
		BusinessName: lineOr(doc.Business.Name, PlaceholderBusiness),
		PartyHeading: document.PartyLabel(doc.Type),
		PartyName:    lineOr(doc.Client.Name, PlaceholderClient),
		Columns:      append([]string(nil), itemColumns...),
	}

	number := strings.TrimSpace(doc.DocumentNumber)
	if number == "" {
		number = "XXX"
	}
	issued := format.Date(doc.DateIssued)
	if issued == "" {
		issued = PlaceholderDate
	}
	v.Meta = append(v.Meta,
		Pair{Label: document.Label(doc.Type) + " #:", Value: number},
		Pair{Label: document.DateLabel(doc.Type), Value: issued},
	)
	if document.HasDueDate(doc.Type) && strings.TrimSpace(doc.DueDate) != "" {
		v.Meta = append(v.Meta, Pair{Label: document.DueDateLabel(doc.Type), Value: format.Date(doc.DueDate)})
	}

	b := doc.Business
	v.BusinessLines = presentLines(b.Address, cityLine(b.City, b.PostalCode), b.Phone, b.Email, b.Website)
	if b.TaxID != "" {
		v.BusinessLines = append(v.BusinessLines, "Tax ID: "+b.TaxID)
	}

	c := doc.Client
	v.PartyLines = presentLines(c.Address, cityLine(c.City, c.PostalCode), c.Email, c.Phone)

	for _, item := range doc.LineItems {
		v.Rows = append(v.Rows, ItemRow{
			Description: lineOr(item.Description, PlaceholderDescription),
			Quantity:    format.Number(item.Quantity),
			Rate:        money(item.Rate),
			Amount:      money(item.Amount),
		})
	}

	v.Totals = append(v.Totals, Pair{Label: "Subtotal:", Value: money(snap.Totals.Subtotal)})
	if doc.VATRate > 0 {
		v.HasVAT = true
		v.Totals = append(v.Totals, Pair{
			Label: "VAT (" + format.Number(doc.VATRate) + "%):",
			Value: money(snap.Totals.VATAmount),
		})
	}
	v.Totals = append(v.Totals, Pair{Label: "Total:", Value: money(snap.Totals.Total), Strong: true})

	if strings.TrimSpace(doc.Notes) != "" {
		v.Notes = doc.Notes
	} else {
		v.NotesPlaceholder = PlaceholderNotes
	}

	return v
}

func lineOr(text, placeholder string) Line {
	if strings.TrimSpace(text) == "" {
		return Line{Text: placeholder, Placeholder: true}
	}
	return Line{Text: text}
}

func cityLine(city, postal string) string {
	return strings.TrimSpace(city + " " + postal)
}

func presentLines(values ...string) []string {
	var lines []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			lines = append(lines, v)
		}
	}
	return lines
}
