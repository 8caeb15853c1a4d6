package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"billdocs/internal/logger"
	"billdocs/pkg/models"
)

// Preview geometry in logical pixels; multiplied by the scale when drawn.
const (
	previewWidth   = 720
	previewPadding = 40
	sectionGap     = 24
	blockGap       = 4
	cellPadding    = 8
	logoBox        = 80
	lineSpacing    = 1.5
)

// Column proportions of the item table, matching the PDF.
var tableWeights = [4]float64{80, 25, 30, 35}

var (
	colorText   = color.RGBA{0x11, 0x18, 0x27, 0xff}
	colorMuted  = color.RGBA{0x9c, 0xa3, 0xaf, 0xff}
	colorBorder = color.RGBA{0xd1, 0xd5, 0xdb, 0xff}
	colorHeader = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorStripe = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
)

// ImageRenderer rasterizes the preview tree to a PNG on a white background.
type ImageRenderer struct {
	opts Options
	log  zerolog.Logger
}

func NewImageRenderer(opts Options) *ImageRenderer {
	return &ImageRenderer{opts: opts, log: logger.WithComponent("image-renderer")}
}

func (r *ImageRenderer) ContentType() string   { return "image/png" }
func (r *ImageRenderer) FileExtension() string { return "png" }

func (r *ImageRenderer) Render(snap models.Snapshot) (*Output, error) {
	snap.Document = snap.Document.Clone()

	img, err := r.Rasterize(Preview(snap, r.opts))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, newRenderError("image", "encode", fmt.Errorf("%w: %v", ErrRasterize, err))
	}

	out := &Output{
		Name:        FileName(snap.Document.Type, snap.Document.DocumentNumber, r.FileExtension()),
		ContentType: r.ContentType(),
		Data:        buf.Bytes(),
	}
	r.log.Debug().
		Str("file", out.Name).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("Image rendered")
	return out, nil
}

// Rasterize draws tree at the configured scale. The canvas is opaque white
// and exactly as tall as the content.
func (r *ImageRenderer) Rasterize(tree *Node) (*image.RGBA, error) {
	p, err := newPainter(float64(r.opts.scale()))
	if err != nil {
		return nil, newRenderError("image", "fonts", err)
	}
	defer p.close()

	if err := p.prepare(tree); err != nil {
		return nil, err
	}

	width := p.px(previewWidth)
	height := p.layout(tree, 0, 0, width, AlignLeft)

	dst := image.NewRGBA(image.Rect(0, 0, int(width), int(height+0.5)))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	p.dst = dst
	p.layout(tree, 0, 0, width, AlignLeft)
	return dst, nil
}

type faceKey struct {
	size   float64
	bold   bool
	italic bool
}

// painter lays out preview nodes in device pixels. With dst nil it only
// measures.
type painter struct {
	scale float64
	dst   *image.RGBA

	fonts map[faceKey]*opentype.Font
	faces map[faceKey]font.Face
	logos map[string]image.Image
}

func newPainter(scale float64) (*painter, error) {
	p := &painter{
		scale: scale,
		fonts: make(map[faceKey]*opentype.Font),
		faces: make(map[faceKey]font.Face),
		logos: make(map[string]image.Image),
	}
	for key, ttf := range map[faceKey][]byte{
		{}:             goregular.TTF,
		{bold: true}:   gobold.TTF,
		{italic: true}: goitalic.TTF,
	} {
		f, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("%w: parse font: %v", ErrRasterize, err)
		}
		p.fonts[key] = f
	}
	return p, nil
}

func (p *painter) close() {
	for _, f := range p.faces {
		f.Close()
	}
}

func (p *painter) px(v float64) float64 { return v * p.scale }

// prepare creates every face and decodes every logo the tree needs, so
// layout itself cannot fail.
func (p *painter) prepare(tree *Node) error {
	var err error
	need := func(s Style) {
		if err != nil {
			return
		}
		if _, faceErr := p.faceFor(s); faceErr != nil {
			err = newRenderError("image", "fonts", faceErr)
		}
	}
	need(Style{Size: bodySize})
	need(Style{Size: bodySize, Bold: true})
	need(Style{Size: bodySize, Placeholder: true})

	tree.Walk(func(n *Node) {
		switch n.Kind {
		case KindText, KindPair:
			need(n.Style)
		case KindImage:
			if _, ok := p.logos[n.Logo]; ok || err != nil {
				return
			}
			img, decodeErr := decodeLogo(n.Logo)
			if decodeErr != nil {
				err = newRenderError("image", "logo", decodeErr)
				return
			}
			p.logos[n.Logo] = img
		}
	})
	return err
}

func (p *painter) faceFor(s Style) (font.Face, error) {
	size := s.Size
	if size == 0 {
		size = bodySize
	}
	key := faceKey{size: size, bold: s.Bold, italic: s.Placeholder && !s.Bold}
	if f, ok := p.faces[key]; ok {
		return f, nil
	}

	src := p.fonts[faceKey{bold: key.bold, italic: key.italic}]
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size * p.scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: font face: %v", ErrRasterize, err)
	}
	p.faces[key] = face
	return face, nil
}

func (p *painter) face(s Style) font.Face {
	f, err := p.faceFor(s)
	if err != nil {
		return p.faces[faceKey{size: bodySize}]
	}
	return f
}

func (p *painter) lineHeight(s Style) float64 {
	size := s.Size
	if size == 0 {
		size = bodySize
	}
	return p.px(size * lineSpacing)
}

func measurer(face font.Face) func(string) float64 {
	return func(s string) float64 {
		return float64(font.MeasureString(face, s)) / 64
	}
}

// layout places n inside the column [x, x+w) starting at y and returns the
// height it occupies.
func (p *painter) layout(n *Node, x, y, w float64, align Align) float64 {
	if n.Style.Align != "" {
		align = n.Style.Align
	}

	switch n.Kind {
	case KindDocument:
		pad := p.px(previewPadding)
		h := pad
		for i, c := range n.Children {
			if i > 0 {
				h += p.px(sectionGap)
			}
			h += p.layout(c, x+pad, y+h, w-2*pad, align)
		}
		return h + pad

	case KindColumns:
		if len(n.Children) == 0 {
			return 0
		}
		colW := w / float64(len(n.Children))
		var h float64
		for i, c := range n.Children {
			h = max(h, p.layout(c, x+float64(i)*colW, y, colW, align))
		}
		return h

	case KindBlock:
		bw := w
		if n.Style.Width > 0 {
			bw = min(p.px(n.Style.Width), w)
		}
		bx := x
		if align == AlignRight {
			bx = x + w - bw
		}
		var h float64
		for i, c := range n.Children {
			if i > 0 {
				h += p.px(blockGap)
			}
			h += p.layout(c, bx, y+h, bw, align)
		}
		return h

	case KindText:
		face := p.face(n.Style)
		lh := p.lineHeight(n.Style)
		lines := wrapText(measurer(face), n.Text, w)
		col := colorText
		if n.Style.Placeholder {
			col = colorMuted
		}
		for i, l := range lines {
			p.text(face, l, x, y+float64(i)*lh, w, lh, align, col)
		}
		return float64(len(lines)) * lh

	case KindPair:
		face := p.face(n.Style)
		lh := p.lineHeight(n.Style)
		if align == AlignSpread {
			p.text(face, n.Text, x, y, w, lh, AlignLeft, colorText)
			p.text(face, n.Value, x, y, w, lh, AlignRight, colorText)
			return lh
		}
		p.text(face, n.Text+" "+n.Value, x, y, w, lh, align, colorText)
		return lh

	case KindSeparator:
		gap := p.px(8)
		p.fill(x, y+gap, w, max(1, p.scale/2), colorBorder)
		return 2*gap + max(1, p.scale/2)

	case KindImage:
		logo, ok := p.logos[n.Logo]
		if !ok {
			return 0
		}
		b := logo.Bounds()
		lw, lh := fit(float64(b.Dx()), float64(b.Dy()), p.px(logoBox), p.px(logoBox))
		lx := x
		if align == AlignRight {
			lx = x + w - lw
		}
		if p.dst != nil {
			rect := image.Rect(int(lx), int(y), int(lx+lw), int(y+lh))
			draw.CatmullRom.Scale(p.dst, rect, logo, b, draw.Over, nil)
		}
		return lh + p.px(blockGap)

	case KindTable:
		return p.table(n.Table, x, y, w)
	}
	return 0
}

func (p *painter) table(t *Table, x, y, w float64) float64 {
	if t == nil {
		return 0
	}
	var total float64
	for _, wt := range tableWeights {
		total += wt
	}
	widths := make([]float64, len(tableWeights))
	for i, wt := range tableWeights {
		widths[i] = w * wt / total
	}
	aligns := []Align{AlignLeft, AlignCenter, AlignRight, AlignRight}

	body := Style{Size: bodySize}
	head := Style{Size: bodySize, Bold: true}
	lh := p.lineHeight(body)
	pad := p.px(cellPadding)
	border := max(1, p.scale/2)

	rowH := lh + 2*pad
	p.fill(x, y, w, rowH, colorHeader)
	cx := x
	for i, col := range t.Columns {
		if i < len(widths) {
			p.text(p.face(head), col, cx+pad, y+pad, widths[i]-2*pad, lh, aligns[i], colorText)
			cx += widths[i]
		}
	}
	h := rowH
	p.fill(x, y+h-border, w, border, colorBorder)

	for r, row := range t.Rows {
		descStyle := body
		descStyle.Placeholder = row.Placeholder
		descFace := p.face(descStyle)

		var desc []string
		if len(row.Cells) > 0 {
			desc = wrapText(measurer(descFace), row.Cells[0], widths[0]-2*pad)
		}
		rowH := float64(max(len(desc), 1))*lh + 2*pad
		if t.Striped && r%2 == 1 {
			p.fill(x, y+h, w, rowH, colorStripe)
		}

		col := colorText
		if row.Placeholder {
			col = colorMuted
		}
		for i, l := range desc {
			p.text(descFace, l, x+pad, y+h+pad+float64(i)*lh, widths[0]-2*pad, lh, AlignLeft, col)
		}
		cx := x + widths[0]
		for i := 1; i < len(row.Cells) && i < len(widths); i++ {
			p.text(p.face(body), row.Cells[i], cx+pad, y+h+pad, widths[i]-2*pad, lh, aligns[i], colorText)
			cx += widths[i]
		}
		h += rowH
		p.fill(x, y+h-border, w, border, colorBorder)
	}
	return h
}

// text draws s on one line of height lh inside [x, x+w), vertically centred.
func (p *painter) text(face font.Face, s string, x, y, w, lh float64, align Align, col color.Color) {
	if p.dst == nil || s == "" {
		return
	}
	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64
	baseline := y + (lh-(ascent+descent))/2 + ascent

	width := measurer(face)(s)
	switch align {
	case AlignRight:
		x = x + w - width
	case AlignCenter:
		x = x + (w-width)/2
	}

	d := font.Drawer{
		Dst:  p.dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(baseline * 64)},
	}
	d.DrawString(s)
}

func (p *painter) fill(x, y, w, h float64, col color.Color) {
	if p.dst == nil {
		return
	}
	rect := image.Rect(int(x), int(y), int(x+w+0.5), int(y+h+0.5))
	draw.Draw(p.dst, rect, image.NewUniform(col), image.Point{}, draw.Src)
}
