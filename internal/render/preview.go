package render

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"billdocs/internal/logger"
	"billdocs/pkg/models"
)

// NodeKind is the kind of a preview node.
type NodeKind string

const (
	KindDocument  NodeKind = "document"
	KindColumns   NodeKind = "columns"
	KindBlock     NodeKind = "block"
	KindText      NodeKind = "text"
	KindPair      NodeKind = "pair"
	KindTable     NodeKind = "table"
	KindSeparator NodeKind = "separator"
	KindImage     NodeKind = "image"
)

type Align string

const (
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
	AlignCenter Align = "center"
	// AlignSpread puts a pair's label on the left edge and its value on the right edge.
	AlignSpread Align = "spread"
)

// Style is the presentation hint of a node. Sizes are in points, Width in
// logical pixels of the preview (0 means the full width available).
type Style struct {
	Size        float64 `json:"size,omitempty"`
	Bold        bool    `json:"bold,omitempty"`
	Align       Align   `json:"align,omitempty"`
	Width       float64 `json:"width,omitempty"`
	Placeholder bool    `json:"placeholder,omitempty"`
}

// Table is the line item grid.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    []TableRow `json:"rows"`
	Striped bool       `json:"striped"`
}

type TableRow struct {
	Cells       []string `json:"cells"`
	Placeholder bool     `json:"placeholder,omitempty"`
}

// Node is one element of the preview tree.
type Node struct {
	Kind     NodeKind `json:"kind"`
	Role     string   `json:"role,omitempty"`
	Text     string   `json:"text,omitempty"`
	Value    string   `json:"value,omitempty"`
	Style    Style    `json:"style,omitzero"`
	Logo     string   `json:"logo,omitempty"`
	Table    *Table   `json:"table,omitempty"`
	Children []*Node  `json:"children,omitempty"`
}

// Find returns the first node with role in depth-first order, or nil.
func (n *Node) Find(role string) *Node {
	if n == nil {
		return nil
	}
	if n.Role == role {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(role); found != nil {
			return found
		}
	}
	return nil
}

// Walk calls fn for n and every descendant.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

const (
	bodySize    = 10
	headingSize = 12
	titleSize   = 28
	totalsWidth = 280
)

// Preview builds the on-screen layout of snap.
func Preview(snap models.Snapshot, opts Options) *Node {
	snap.Document = snap.Document.Clone()
	v := NewView(snap, opts)

	title := &Node{Kind: KindBlock, Role: "title"}
	title.Children = append(title.Children, &Node{
		Kind:  KindText,
		Role:  "heading",
		Text:  v.Title,
		Style: Style{Size: titleSize, Bold: true},
	})
	for _, m := range v.Meta {
		title.Children = append(title.Children, &Node{Kind: KindPair, Role: "meta", Text: m.Label, Value: m.Value, Style: Style{Size: bodySize}})
	}

	business := &Node{Kind: KindBlock, Role: "business", Style: Style{Align: AlignRight}}
	if v.Logo != "" {
		business.Children = append(business.Children, &Node{Kind: KindImage, Role: "logo", Logo: v.Logo, Style: Style{Align: AlignRight}})
	}
	business.Children = append(business.Children, textNode("business-name", v.BusinessName, Style{Size: headingSize, Bold: true, Align: AlignRight}))
	for _, l := range v.BusinessLines {
		business.Children = append(business.Children, &Node{Kind: KindText, Text: l, Style: Style{Size: bodySize, Align: AlignRight}})
	}

	party := &Node{Kind: KindBlock, Role: "party"}
	party.Children = append(party.Children,
		&Node{Kind: KindText, Role: "party-heading", Text: v.PartyHeading, Style: Style{Size: headingSize, Bold: true}},
		textNode("party-name", v.PartyName, Style{Size: bodySize, Bold: true}),
	)
	for _, l := range v.PartyLines {
		party.Children = append(party.Children, &Node{Kind: KindText, Text: l, Style: Style{Size: bodySize}})
	}

	table := &Table{Columns: v.Columns, Striped: true}
	for _, r := range v.Rows {
		table.Rows = append(table.Rows, TableRow{
			Cells:       []string{r.Description.Text, r.Quantity, r.Rate, r.Amount},
			Placeholder: r.Description.Placeholder,
		})
	}

	totals := &Node{Kind: KindBlock, Role: "totals", Style: Style{Align: AlignRight, Width: totalsWidth}}
	for _, t := range v.Totals {
		role := "subtotal"
		switch {
		case t.Strong:
			role = "total"
			totals.Children = append(totals.Children, &Node{Kind: KindSeparator})
		case len(totals.Children) > 0:
			role = "vat"
		}
		size := float64(bodySize)
		if t.Strong {
			size = headingSize
		}
		totals.Children = append(totals.Children, &Node{
			Kind:  KindPair,
			Role:  role,
			Text:  t.Label,
			Value: t.Value,
			Style: Style{Size: size, Bold: t.Strong, Align: AlignSpread},
		})
	}

	notes := &Node{Kind: KindBlock, Role: "notes"}
	if v.Notes != "" {
		notes.Children = append(notes.Children,
			&Node{Kind: KindText, Text: "Notes:", Style: Style{Size: bodySize, Bold: true}},
			&Node{Kind: KindText, Role: "notes-text", Text: v.Notes, Style: Style{Size: bodySize}},
		)
	} else {
		notes.Children = append(notes.Children,
			&Node{Kind: KindText, Role: "notes-placeholder", Text: v.NotesPlaceholder, Style: Style{Size: bodySize, Placeholder: true}},
		)
	}

	return &Node{
		Kind: KindDocument,
		Role: string(v.Type),
		Children: []*Node{
			{Kind: KindColumns, Role: "header", Children: []*Node{title, business}},
			{Kind: KindSeparator},
			party,
			{Kind: KindTable, Role: "items", Table: table},
			totals,
			notes,
		},
	}
}

func textNode(role string, l Line, style Style) *Node {
	style.Placeholder = l.Placeholder
	return &Node{Kind: KindText, Role: role, Text: l.Text, Style: style}
}

// PreviewRenderer emits the preview tree as indented JSON.
type PreviewRenderer struct {
	opts Options
	log  zerolog.Logger
}

func NewPreviewRenderer(opts Options) *PreviewRenderer {
	return &PreviewRenderer{opts: opts, log: logger.WithComponent("preview-renderer")}
}

func (r *PreviewRenderer) Render(snap models.Snapshot) (*Output, error) {
	tree := Preview(snap, r.opts)
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, newRenderError("preview", "encode", fmt.Errorf("encode preview: %w", err))
	}

	out := &Output{
		Name:        "preview_" + FileName(snap.Document.Type, snap.Document.DocumentNumber, r.FileExtension()),
		ContentType: r.ContentType(),
		Data:        data,
	}
	r.log.Debug().Str("file", out.Name).Int("bytes", len(data)).Msg("Preview rendered")
	return out, nil
}

func (r *PreviewRenderer) ContentType() string   { return "application/json" }
func (r *PreviewRenderer) FileExtension() string { return "json" }
