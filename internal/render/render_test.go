package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"golang.org/x/image/bmp"

	"billdocs/internal/document"
	"billdocs/pkg/models"
)

func snapshot(t models.DocumentType, mutate func(*models.Document)) models.Snapshot {
	doc := models.Document{
		Type: t,
		Business: models.BusinessProfile{
			Name:    "Xamtastic Electric",
			Address: "12 Marina Road",
			City:    "Lagos",
			Email:   "billing@xamtastic.ng",
			TaxID:   "TIN-0042",
		},
		Client: models.PartyInfo{Name: "Ada Obi", City: "Abuja", PostalCode: "900001"},
		LineItems: []models.LineItem{
			{ID: "a", Description: "Panel upgrade", Quantity: 2, Rate: 1000.75, Amount: 2001.5},
			{ID: "b", Description: "Cabling", Quantity: 1, Rate: 1250, Amount: 1250},
		},
		DocumentNumber: "001",
		DateIssued:     "2025-03-01",
		DueDate:        "2025-03-31",
		VATRate:        7.5,
	}
	if mutate != nil {
		mutate(&doc)
	}
	return document.Snapshot(doc)
}

func pngLogo(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{0x25, 0x63, 0xeb, 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode logo: %v", err)
	}
	url, err := LogoDataURL(buf.Bytes())
	if err != nil {
		t.Fatalf("logo data url: %v", err)
	}
	return url
}

func TestFileName(t *testing.T) {
	tests := []struct {
		typ    models.DocumentType
		number string
		ext    string
		want   string
	}{
		{models.DocumentTypeInvoice, "001", "pdf", "invoice_001.pdf"},
		{models.DocumentTypeReceipt, "", "png", "receipt_XXX.png"},
		{models.DocumentTypeQuotation, "  ", ".pdf", "quotation_XXX.pdf"},
		{models.DocumentTypeInvoice, "INV/2025/7", "pdf", "invoice_INV-2025-7.pdf"},
	}
	for _, tt := range tests {
		if got := FileName(tt.typ, tt.number, tt.ext); got != tt.want {
			t.Errorf("FileName(%q, %q, %q) = %q, want %q", tt.typ, tt.number, tt.ext, got, tt.want)
		}
	}
}

func metaLabels(v View) []string {
	var labels []string
	for _, m := range v.Meta {
		labels = append(labels, m.Label)
	}
	return labels
}

func TestViewDueDateVisibility(t *testing.T) {
	tests := []struct {
		name    string
		typ     models.DocumentType
		dueDate string
		want    []string
	}{
		{"invoice with due date", models.DocumentTypeInvoice, "2025-03-31", []string{"Invoice #:", "Date Issued:", "Due Date:"}},
		{"invoice without due date", models.DocumentTypeInvoice, "", []string{"Invoice #:", "Date Issued:"}},
		{"quotation", models.DocumentTypeQuotation, "2025-03-31", []string{"Quote #:", "Date Issued:", "Valid Until:"}},
		{"receipt ignores due date", models.DocumentTypeReceipt, "2025-03-31", []string{"Receipt #:", "Date:"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewView(snapshot(tt.typ, func(d *models.Document) { d.DueDate = tt.dueDate }), DefaultOptions())
			if got := metaLabels(v); strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("meta labels = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViewTotals(t *testing.T) {
	v := NewView(snapshot(models.DocumentTypeInvoice, nil), DefaultOptions())
	if !v.HasVAT || len(v.Totals) != 3 {
		t.Fatalf("expected subtotal, VAT and total, got %+v", v.Totals)
	}
	if v.Totals[1].Label != "VAT (7.5%):" {
		t.Errorf("VAT label = %q", v.Totals[1].Label)
	}
	if v.Totals[2].Value != "₦3,495.36" || !v.Totals[2].Strong {
		t.Errorf("total = %+v", v.Totals[2])
	}

	noVAT := NewView(snapshot(models.DocumentTypeInvoice, func(d *models.Document) { d.VATRate = 0 }), Options{CurrencySymbol: "$"})
	if noVAT.HasVAT || len(noVAT.Totals) != 2 {
		t.Fatalf("VAT line shown at zero rate: %+v", noVAT.Totals)
	}
	if noVAT.Totals[0].Value != "$3,251.50" {
		t.Errorf("subtotal = %q", noVAT.Totals[0].Value)
	}
}

func TestViewPlaceholders(t *testing.T) {
	v := NewView(snapshot(models.DocumentTypeInvoice, func(d *models.Document) {
		d.Business = models.BusinessProfile{}
		d.Client = models.PartyInfo{}
		d.LineItems = []models.LineItem{document.NewLineItem()}
		d.DateIssued = ""
		d.DocumentNumber = ""
	}), DefaultOptions())

	if !v.BusinessName.Placeholder || v.BusinessName.Text != PlaceholderBusiness {
		t.Errorf("business name = %+v", v.BusinessName)
	}
	if !v.PartyName.Placeholder || v.PartyName.Text != PlaceholderClient {
		t.Errorf("party name = %+v", v.PartyName)
	}
	if !v.Rows[0].Description.Placeholder || v.Rows[0].Description.Text != PlaceholderDescription {
		t.Errorf("description = %+v", v.Rows[0].Description)
	}
	if v.Meta[0].Value != "XXX" || v.Meta[1].Value != PlaceholderDate {
		t.Errorf("meta = %+v", v.Meta)
	}
	if len(v.BusinessLines) != 0 || len(v.PartyLines) != 0 {
		t.Errorf("expected no address lines, got %v / %v", v.BusinessLines, v.PartyLines)
	}
	if v.Notes != "" || v.NotesPlaceholder != PlaceholderNotes {
		t.Errorf("notes = %q placeholder = %q", v.Notes, v.NotesPlaceholder)
	}
}

func TestViewBusinessLines(t *testing.T) {
	v := NewView(snapshot(models.DocumentTypeInvoice, nil), DefaultOptions())
	want := []string{"12 Marina Road", "Lagos", "billing@xamtastic.ng", "Tax ID: TIN-0042"}
	if strings.Join(v.BusinessLines, "|") != strings.Join(want, "|") {
		t.Fatalf("business lines = %v, want %v", v.BusinessLines, want)
	}
	if strings.Join(v.PartyLines, "|") != "Abuja 900001" {
		t.Fatalf("party lines = %v", v.PartyLines)
	}
}

func TestPreviewReceiptHasNoDueDate(t *testing.T) {
	tree := Preview(snapshot(models.DocumentTypeReceipt, nil), DefaultOptions())
	tree.Walk(func(n *Node) {
		if strings.Contains(n.Text, "Due Date") || strings.Contains(n.Text, "Valid Until") || n.Value == "March 31, 2025" {
			t.Fatalf("receipt preview exposes due date: %+v", n)
		}
	})
	if got := tree.Find("party-heading"); got == nil || got.Text != "Received From:" {
		t.Fatalf("party heading = %+v", got)
	}
}

func TestRenderersTolerateNonFiniteNumbers(t *testing.T) {
	snap := snapshot(models.DocumentTypeInvoice, func(d *models.Document) {
		d.LineItems[0].Rate = math.NaN()
		d.VATRate = math.Inf(1)
	})

	tree := Preview(snap, DefaultOptions())
	if got := tree.Find("total"); got == nil || got.Value != "₦NaN" {
		t.Fatalf("total = %+v", got)
	}
	for _, r := range []Renderer{NewPDFRenderer(DefaultOptions()), NewImageRenderer(DefaultOptions())} {
		if _, err := r.Render(snap); err != nil {
			t.Fatalf("%s render: %v", r.FileExtension(), err)
		}
	}
}

func TestPreviewStructure(t *testing.T) {
	tree := Preview(snapshot(models.DocumentTypeInvoice, func(d *models.Document) { d.Notes = "Pay within 30 days." }), DefaultOptions())

	if tree.Kind != KindDocument || tree.Role != "invoice" {
		t.Fatalf("root = %s/%s", tree.Kind, tree.Role)
	}
	if got := tree.Find("vat"); got == nil || got.Value != "₦243.86" {
		t.Fatalf("vat node = %+v", got)
	}
	if got := tree.Find("total"); got == nil || !got.Style.Bold || got.Value != "₦3,495.36" {
		t.Fatalf("total node = %+v", got)
	}
	if tree.Find("notes-text") == nil || tree.Find("notes-placeholder") != nil {
		t.Fatalf("notes block wrong")
	}
	items := tree.Find("items")
	if items == nil || items.Table == nil || len(items.Table.Rows) != 2 {
		t.Fatalf("items table = %+v", items)
	}
	if cells := items.Table.Rows[0].Cells; strings.Join(cells, "|") != "Panel upgrade|2|₦1,000.75|₦2,001.50" {
		t.Fatalf("first row = %v", cells)
	}

	empty := Preview(snapshot(models.DocumentTypeInvoice, func(d *models.Document) { d.VATRate = 0 }), DefaultOptions())
	if empty.Find("vat") != nil {
		t.Fatalf("vat node present at zero rate")
	}
	if empty.Find("notes-placeholder") == nil {
		t.Fatalf("notes placeholder missing")
	}
}

func TestPreviewDoesNotAliasSnapshot(t *testing.T) {
	snap := snapshot(models.DocumentTypeInvoice, nil)
	tree := Preview(snap, DefaultOptions())
	snap.Document.LineItems[0].Description = "changed"

	if got := tree.Find("items").Table.Rows[0].Cells[0]; got != "Panel upgrade" {
		t.Fatalf("preview follows later edits: %q", got)
	}
}

func TestPreviewRenderer(t *testing.T) {
	r := NewPreviewRenderer(DefaultOptions())
	out, err := r.Render(snapshot(models.DocumentTypeQuotation, nil))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out.Name != "preview_quotation_001.json" || out.ContentType != "application/json" {
		t.Fatalf("output = %s %s", out.Name, out.ContentType)
	}
	var decoded Node
	if err := json.Unmarshal(out.Data, &decoded); err != nil {
		t.Fatalf("preview is not JSON: %v", err)
	}
	if decoded.Find("totals") == nil {
		t.Fatalf("decoded tree lost totals")
	}
}

var pageCount = regexp.MustCompile(`/Count (\d+)`)

func pdfPages(t *testing.T, data []byte) int {
	t.Helper()
	m := pageCount.FindSubmatch(data)
	if m == nil {
		t.Fatalf("no page count in PDF")
	}
	n, _ := strconv.Atoi(string(m[1]))
	return n
}

func TestPDFRenderer(t *testing.T) {
	r := NewPDFRenderer(DefaultOptions())
	out, err := r.Render(snapshot(models.DocumentTypeInvoice, func(d *models.Document) {
		d.Business.Logo = pngLogo(t)
		d.Notes = "Thank you for your business.\nBank: 0123456789"
	}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out.Data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if out.Name != "invoice_001.pdf" || out.ContentType != "application/pdf" {
		t.Fatalf("output = %s %s", out.Name, out.ContentType)
	}
	if n := pdfPages(t, out.Data); n != 1 {
		t.Fatalf("pages = %d, want 1", n)
	}
}

func TestPDFRendererPaginatesLongTables(t *testing.T) {
	snap := snapshot(models.DocumentTypeInvoice, func(d *models.Document) {
		d.LineItems = nil
		for i := 0; i < 80; i++ {
			d.LineItems = append(d.LineItems, models.LineItem{
				ID:          strconv.Itoa(i),
				Description: strings.Repeat("Long wrapped description ", 1+i%4),
				Quantity:    1,
				Rate:        10,
				Amount:      10,
			})
		}
	})
	r := NewPDFRenderer(DefaultOptions())
	var headerPages []int
	r.onTableHeader = func(page int) { headerPages = append(headerPages, page) }

	out, err := r.Render(snap)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	n := pdfPages(t, out.Data)
	if n < 2 {
		t.Fatalf("pages = %d, want several", n)
	}
	if len(headerPages) < 2 {
		t.Fatalf("table header drawn on pages %v, want it repeated", headerPages)
	}
	for i, page := range headerPages {
		if page != i+1 {
			t.Fatalf("table header drawn on pages %v, want once per table page starting at 1", headerPages)
		}
	}
	if last := headerPages[len(headerPages)-1]; last > n {
		t.Fatalf("header on page %d of %d", last, n)
	}
}

func TestRenderersRejectBadLogo(t *testing.T) {
	snap := snapshot(models.DocumentTypeInvoice, func(d *models.Document) {
		d.Business.Logo = "data:image/png;base64,bm90IGFuIGltYWdl"
	})

	for _, r := range []Renderer{NewPDFRenderer(DefaultOptions()), NewImageRenderer(DefaultOptions())} {
		_, err := r.Render(snap)
		if !errors.Is(err, ErrLogoDecode) {
			t.Fatalf("%T: got %v, want ErrLogoDecode", r, err)
		}
		var renderErr *RenderError
		if !errors.As(err, &renderErr) || renderErr.Op != "logo" {
			t.Fatalf("%T: expected RenderError for logo, got %v", r, err)
		}
	}

	if _, err := NewPreviewRenderer(DefaultOptions()).Render(snap); err != nil {
		t.Fatalf("preview should not decode the logo: %v", err)
	}
}

func TestImageRenderer(t *testing.T) {
	tests := []struct {
		scale int
		width int
	}{
		{0, previewWidth * MinScale},
		{1, previewWidth * MinScale},
		{2, previewWidth * 2},
		{3, previewWidth * 3},
	}
	for _, tt := range tests {
		r := NewImageRenderer(Options{CurrencySymbol: "₦", Scale: tt.scale})
		out, err := r.Render(snapshot(models.DocumentTypeReceipt, func(d *models.Document) { d.Business.Logo = pngLogo(t) }))
		if err != nil {
			t.Fatalf("scale %d: render: %v", tt.scale, err)
		}
		if out.Name != "receipt_001.png" || out.ContentType != "image/png" {
			t.Fatalf("output = %s %s", out.Name, out.ContentType)
		}
		img, err := png.Decode(bytes.NewReader(out.Data))
		if err != nil {
			t.Fatalf("scale %d: decode: %v", tt.scale, err)
		}
		if img.Bounds().Dx() != tt.width {
			t.Errorf("scale %d: width = %d, want %d", tt.scale, img.Bounds().Dx(), tt.width)
		}
		if img.Bounds().Dy() <= img.Bounds().Dx()/4 {
			t.Errorf("scale %d: height %d looks too short", tt.scale, img.Bounds().Dy())
		}
		if r, g, b, a := img.At(1, 1).RGBA(); r != 0xffff || g != 0xffff || b != 0xffff || a != 0xffff {
			t.Errorf("scale %d: background is not opaque white", tt.scale)
		}
	}
}

func TestLogoDataURL(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 3))); err != nil {
		t.Fatalf("encode bmp: %v", err)
	}
	url, err := LogoDataURL(buf.Bytes())
	if err != nil {
		t.Fatalf("LogoDataURL: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/bmp;base64,") {
		t.Fatalf("url = %q", url)
	}
	img, err := decodeLogo(url)
	if err != nil || img.Bounds().Dx() != 3 {
		t.Fatalf("decode round trip: %v", err)
	}

	if _, err := LogoDataURL([]byte("plain text")); !errors.Is(err, ErrLogoDecode) {
		t.Fatalf("text accepted as logo: %v", err)
	}
	for _, bad := range []string{"https://example.com/logo.png", "data:image/png,raw", "data:image/png;base64"} {
		if _, err := decodeLogo(bad); !errors.Is(err, ErrLogoDecode) {
			t.Errorf("decodeLogo(%q) = %v, want ErrLogoDecode", bad, err)
		}
	}
}

func TestWrapText(t *testing.T) {
	runes := func(s string) float64 { return float64(utf8.RuneCountInString(s)) }
	tests := []struct {
		text  string
		width float64
		want  []string
	}{
		{"aaa bbb ccc", 7, []string{"aaa bbb", "ccc"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"a\n\nb", 10, []string{"a", "", "b"}},
		{"", 10, []string{""}},
		{"₦₦₦₦₦", 2, []string{"₦₦", "₦₦", "₦"}},
	}
	for _, tt := range tests {
		got := wrapText(runes, tt.text, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("wrapText(%q, %v) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}
