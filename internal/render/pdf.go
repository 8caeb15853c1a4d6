package render

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"billdocs/internal/logger"
	"billdocs/pkg/models"
)

// Page geometry in millimetres.
const (
	pdfMargin     = 20.0
	pdfLogoBox    = 35.0
	pdfLogoTop    = 15.0
	pdfLine       = 5.0
	pdfMetaTop    = 55.0
	pdfTotalsLeft = 80.0
	pdfFont       = "go"
)

// Fixed widths of the Quantity, Rate and Amount columns; Description takes the rest.
var pdfColumnWidths = [3]float64{25, 30, 35}

type rgb struct{ r, g, b int }

var (
	pdfHeaderFill = rgb{0xf3, 0xf4, 0xf6}
	pdfStripeFill = rgb{0xf9, 0xfa, 0xfb}
	pdfBorder     = rgb{0xd1, 0xd5, 0xdb}
	pdfMuted      = rgb{0x6b, 0x72, 0x80}
)

// PDFRenderer lays a document out on A4 pages.
type PDFRenderer struct {
	opts Options
	log  zerolog.Logger

	// onTableHeader, when set, is called with the page number each time the
	// item table header row is drawn.
	onTableHeader func(page int)
}

func NewPDFRenderer(opts Options) *PDFRenderer {
	return &PDFRenderer{opts: opts, log: logger.WithComponent("pdf-renderer")}
}

func (r *PDFRenderer) ContentType() string   { return "application/pdf" }
func (r *PDFRenderer) FileExtension() string { return "pdf" }

// Render draws snap as a paginated PDF. Long item tables continue on new
// pages with the header row repeated.
func (r *PDFRenderer) Render(snap models.Snapshot) (*Output, error) {
	snap.Document = snap.Document.Clone()
	v := NewView(snap, r.opts)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(v.Title+" "+v.Meta[0].Value, true)
	pdf.SetCreator("billdocs", true)
	pdf.AddUTF8FontFromBytes(pdfFont, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(pdfFont, "B", gobold.TTF)
	if err := pdf.Error(); err != nil {
		return nil, newRenderError("pdf", "fonts", fmt.Errorf("%w: %v", ErrPDF, err))
	}
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	right := pageW - pdfMargin

	pdf.SetFont(pdfFont, "B", titleSize)
	pdf.Text(pdfMargin, pdfMargin, v.Title)

	bizY := pdfMargin
	if v.Logo != "" {
		bottom, err := r.drawLogo(pdf, v.Logo, right)
		if err != nil {
			return nil, err
		}
		bizY = bottom + 7
	}

	pdf.SetFont(pdfFont, "B", headingSize)
	setText(pdf, v.BusinessName)
	pdf.Text(right-pdf.GetStringWidth(v.BusinessName.Text), bizY, v.BusinessName.Text)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(pdfFont, "", bodySize)
	for _, l := range v.BusinessLines {
		bizY += pdfLine
		pdf.Text(right-pdf.GetStringWidth(l), bizY, l)
	}

	y := max(bizY+10, pdfMetaTop)
	for _, m := range v.Meta {
		pdf.Text(pdfMargin, y, m.Label+" "+m.Value)
		y += pdfLine + 1
	}

	y += 6
	pdf.SetFont(pdfFont, "B", headingSize)
	pdf.Text(pdfMargin, y, v.PartyHeading)
	y += pdfLine + 1
	pdf.SetFont(pdfFont, "", bodySize)
	setText(pdf, v.PartyName)
	pdf.Text(pdfMargin, y, v.PartyName.Text)
	pdf.SetTextColor(0, 0, 0)
	for _, l := range v.PartyLines {
		y += pdfLine
		pdf.Text(pdfMargin, y, l)
	}

	pdf.SetY(y + 10)
	r.drawTable(pdf, v, pageW)
	r.drawTotals(pdf, v, pageW)
	r.drawNotes(pdf, v, pageW)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, newRenderError("pdf", "output", fmt.Errorf("%w: %v", ErrPDF, err))
	}

	out := &Output{
		Name:        FileName(v.Type, snap.Document.DocumentNumber, r.FileExtension()),
		ContentType: r.ContentType(),
		Data:        buf.Bytes(),
	}
	r.log.Debug().
		Str("file", out.Name).
		Int("pages", pdf.PageNo()).
		Int("bytes", len(out.Data)).
		Msg("PDF rendered")
	return out, nil
}

// drawLogo places the logo in the top-right box and returns its bottom edge.
func (r *PDFRenderer) drawLogo(pdf *gofpdf.Fpdf, dataURL string, right float64) (float64, error) {
	img, err := decodeLogo(dataURL)
	if err != nil {
		return 0, newRenderError("pdf", "logo", err)
	}

	// Every decodable format is re-encoded as PNG, which gofpdf embeds natively.
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return 0, newRenderError("pdf", "logo", fmt.Errorf("%w: %v", ErrLogoDecode, err))
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("logo", opts, &buf)

	b := img.Bounds()
	w, h := fit(float64(b.Dx()), float64(b.Dy()), pdfLogoBox, pdfLogoBox)
	pdf.ImageOptions("logo", right-w, pdfLogoTop, w, h, false, opts, 0, "")
	if err := pdf.Error(); err != nil {
		return 0, newRenderError("pdf", "logo", fmt.Errorf("%w: %v", ErrLogoDecode, err))
	}
	return pdfLogoTop + h, nil
}

func (r *PDFRenderer) drawTable(pdf *gofpdf.Fpdf, v View, pageW float64) {
	_, pageH := pdf.GetPageSize()
	widths := []float64{pageW - 2*pdfMargin - pdfColumnWidths[0] - pdfColumnWidths[1] - pdfColumnWidths[2]}
	widths = append(widths, pdfColumnWidths[:]...)
	aligns := []string{"L", "C", "R", "R"}

	pdf.SetDrawColor(pdfBorder.r, pdfBorder.g, pdfBorder.b)
	pdf.SetLineWidth(0.2)

	header := func() {
		pdf.SetFont(pdfFont, "B", bodySize)
		pdf.SetFillColor(pdfHeaderFill.r, pdfHeaderFill.g, pdfHeaderFill.b)
		pdf.SetX(pdfMargin)
		for i, col := range v.Columns {
			pdf.CellFormat(widths[i], 8, col, "1", 0, aligns[i], true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(pdfFont, "", bodySize)
		if r.onTableHeader != nil {
			r.onTableHeader(pdf.PageNo())
		}
	}
	header()

	for i, row := range v.Rows {
		desc := wrapText(pdf.GetStringWidth, row.Description.Text, widths[0]-4)
		rowH := float64(len(desc))*pdfLine + 3

		if pdf.GetY()+rowH > pageH-pdfMargin {
			pdf.AddPage()
			header()
		}

		y := pdf.GetY()
		style := "D"
		if i%2 == 1 {
			pdf.SetFillColor(pdfStripeFill.r, pdfStripeFill.g, pdfStripeFill.b)
			style = "FD"
		}
		x := pdfMargin
		for _, w := range widths {
			pdf.Rect(x, y, w, rowH, style)
			x += w
		}

		setText(pdf, row.Description)
		for j, l := range desc {
			pdf.SetXY(pdfMargin, y+1.5+float64(j)*pdfLine)
			pdf.CellFormat(widths[0], pdfLine, l, "", 0, "L", false, 0, "")
		}
		pdf.SetTextColor(0, 0, 0)

		x = pdfMargin + widths[0]
		for j, cell := range []string{row.Quantity, row.Rate, row.Amount} {
			pdf.SetXY(x, y+1.5)
			pdf.CellFormat(widths[j+1], pdfLine, cell, "", 0, aligns[j+1], false, 0, "")
			x += widths[j+1]
		}
		pdf.SetXY(pdfMargin, y+rowH)
	}
}

func (r *PDFRenderer) drawTotals(pdf *gofpdf.Fpdf, v View, pageW float64) {
	_, pageH := pdf.GetPageSize()
	need := float64(len(v.Totals)+1)*(pdfLine+2) + 10
	if pdf.GetY()+need > pageH-pdfMargin {
		pdf.AddPage()
	}

	left := pageW - pdfTotalsLeft
	right := pageW - pdfMargin
	y := pdf.GetY() + 10

	for _, t := range v.Totals {
		if t.Strong {
			pdf.SetDrawColor(pdfBorder.r, pdfBorder.g, pdfBorder.b)
			pdf.Line(left, y-3, right, y-3)
			y += 3
			pdf.SetFont(pdfFont, "B", headingSize)
		} else {
			pdf.SetFont(pdfFont, "", bodySize)
		}
		pdf.Text(left, y, t.Label)
		pdf.Text(right-pdf.GetStringWidth(t.Value), y, t.Value)
		y += pdfLine + 2
	}
	pdf.SetY(y)
}

func (r *PDFRenderer) drawNotes(pdf *gofpdf.Fpdf, v View, pageW float64) {
	if v.Notes == "" {
		return
	}
	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+20 > pageH-pdfMargin {
		pdf.AddPage()
	}

	pdf.SetXY(pdfMargin, pdf.GetY()+6)
	pdf.SetFont(pdfFont, "B", bodySize)
	pdf.CellFormat(0, pdfLine, "Notes:", "", 1, "L", false, 0, "")
	pdf.SetFont(pdfFont, "", bodySize)
	pdf.MultiCell(pageW-2*pdfMargin, pdfLine, v.Notes, "", "L", false)
}

func setText(pdf *gofpdf.Fpdf, l Line) {
	if l.Placeholder {
		pdf.SetTextColor(pdfMuted.r, pdfMuted.g, pdfMuted.b)
		return
	}
	pdf.SetTextColor(0, 0, 0)
}
