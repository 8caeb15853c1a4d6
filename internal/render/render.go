// Package render turns a document snapshot into its visual forms: a preview
// tree, a paginated PDF and a raster image of the preview.
//
// Every renderer takes a models.Snapshot, works on its own copy of it and
// reports its own errors, so one failing output never affects another.
package render

import (
	"strings"

	"billdocs/pkg/models"
)

const (
	DefaultCurrencySymbol = "₦"

	// MinScale is the smallest pixel density used for raster output.
	MinScale = 2
)

// Renderer produces one downloadable output from a snapshot.
type Renderer interface {
	Render(snap models.Snapshot) (*Output, error)
	ContentType() string
	FileExtension() string
}

// Output is a rendered file ready to be written or downloaded.
type Output struct {
	Name        string
	ContentType string
	Data        []byte
}

// Options are shared by all renderers.
type Options struct {
	CurrencySymbol string
	Scale          int
}

// DefaultOptions returns naira amounts at double pixel density.
func DefaultOptions() Options {
	return Options{
		CurrencySymbol: DefaultCurrencySymbol,
		Scale:          MinScale,
	}
}

func (o Options) scale() int {
	if o.Scale < MinScale {
		return MinScale
	}
	return o.Scale
}

var pathSeparators = strings.NewReplacer("/", "-", "\\", "-")

// FileName returns "<type>_<number>.<ext>", using XXX for a blank number.
// Path separators in the number are replaced so the name stays a single file.
func FileName(t models.DocumentType, number, ext string) string {
	number = strings.TrimSpace(number)
	if number == "" {
		number = "XXX"
	}
	number = pathSeparators.Replace(number)
	return string(t) + "_" + number + "." + strings.TrimPrefix(ext, ".")
}
