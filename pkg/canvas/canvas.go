// Package canvas abstracts the drawing primitives a label needs so the rest of the
// engine never touches a drawing library directly.
//
// All coordinates are page space: points with the origin at the bottom-left corner.
// Text positions are baseline origins.
package canvas

import (
	"errors"
	"image"
	"image/color"

	"github.com/xob0t/PackStencil/pkg/fonts"
	"github.com/xob0t/PackStencil/pkg/geometry"
	"github.com/xob0t/PackStencil/pkg/template"
)

// ErrUnsupportedBackground is returned by DrawBackground when a backend cannot
// place a template of the given kind.
var ErrUnsupportedBackground = errors.New("unsupported background")

// TextStyle selects size, weight and colour of drawn text.
type TextStyle struct {
	Size  float64
	Bold  bool
	Color color.RGBA
}

// RectStyle selects how a rectangle is painted. A zero style strokes in black.
type RectStyle struct {
	Fill      bool
	NoStroke  bool
	LineWidth float64
	Color     color.RGBA
}

// Canvas is one page being drawn.
type Canvas interface {
	Size() geometry.Page
	// DrawBackground places a template over the whole page. Blank descriptors draw nothing.
	DrawBackground(d *template.Descriptor) error
	DrawText(s string, x, y float64, st TextStyle) error
	DrawLine(x1, y1, x2, y2, width float64) error
	// DrawRect paints a rectangle whose bottom-left corner is (x, y).
	DrawRect(x, y, w, h float64, st RectStyle) error
	// DrawImage stretches img over the rectangle whose bottom-left corner is (x, y).
	DrawImage(img image.Image, x, y, w, h float64) error
}

// Surface is a Canvas that can be serialized once drawing is complete.
type Surface interface {
	Canvas
	Finish() ([]byte, error)
}

// Backend creates surfaces for one output format.
type Backend interface {
	NewSurface(p geometry.Page, set *fonts.Set) (Surface, error)
	MimeType() string
	Extension() string
}

// Black is the default ink.
var Black = color.RGBA{A: 255}
