package render

import (
	"errors"
	"fmt"
)

// Render errors
var (
	// ErrLogoDecode is returned when the business logo is not a decodable image data URL.
	ErrLogoDecode = errors.New("logo could not be decoded")

	// ErrRasterize is returned when the preview cannot be drawn or encoded as an image.
	ErrRasterize = errors.New("preview rasterization failed")

	// ErrPDF is returned when the PDF document cannot be produced.
	ErrPDF = errors.New("PDF generation failed")
)

// RenderError records which renderer failed and during which step.
type RenderError struct {
	// Renderer is the output kind (preview, pdf, image).
	Renderer string

	// Op is the step that failed (e.g. "logo", "fonts", "encode").
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %s failed: %v", e.Renderer, e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *RenderError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newRenderError(renderer, op string, err error) *RenderError {
	return &RenderError{Renderer: renderer, Op: op, Err: err}
}
