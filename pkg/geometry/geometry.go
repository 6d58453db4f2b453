// Package geometry maps layout positions onto page space.
//
// Page space is measured in PDF points with the origin at the bottom-left corner.
// Two layout unit systems coexist: a canonical design grid (top-left origin, arbitrary
// reference size) and physical millimetres measured from the bottom-left corner.
package geometry

import "fmt"

// PointsPerMM converts millimetres to PDF points.
const PointsPerMM = 72.0 / 25.4

// MM converts millimetres to points.
func MM(mm float64) float64 { return mm * PointsPerMM }

// Page is a physical page size in points.
type Page struct {
	Width  float64
	Height float64
}

// PageMM builds a page from millimetre dimensions.
func PageMM(w, h float64) Page { return Page{Width: MM(w), Height: MM(h)} }

// Valid reports whether both dimensions are positive.
func (p Page) Valid() bool { return p.Width > 0 && p.Height > 0 }

func (p Page) String() string { return fmt.Sprintf("%.2fx%.2fpt", p.Width, p.Height) }

// Grid is the canonical design canvas. Positions are expressed in grid units from the
// top-left corner and scaled independently per axis onto the actual page.
type Grid struct {
	RefWidth  float64
	RefHeight float64
}

// Scale returns the horizontal and vertical scale factors for page.
func (g Grid) Scale(p Page) (sx, sy float64) {
	return p.Width / g.RefWidth, p.Height / g.RefHeight
}

// ToPage maps a design-grid point to page space, flipping the vertical origin.
func (g Grid) ToPage(p Page, bx, by float64) (x, y float64) {
	return bx * p.Width / g.RefWidth, p.Height - by*p.Height/g.RefHeight
}

// Sheet is a fixed physical page size in millimetres. Positions are millimetre offsets
// from the bottom-left corner and need no origin flip.
type Sheet struct {
	WidthMM  float64
	HeightMM float64
}

// Page returns the sheet's nominal size in points.
func (s Sheet) Page() Page { return PageMM(s.WidthMM, s.HeightMM) }

// ToPage maps a millimetre offset to page space, stretching to the actual page
// when a template's size differs from the nominal sheet.
func (s Sheet) ToPage(p Page, mx, my float64) (x, y float64) {
	return mx * p.Width / s.WidthMM, my * p.Height / s.HeightMM
}

// Align selects how a measured text width offsets the draw origin.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// ParseAlign converts "left", "center" or "right"; anything else is left.
func ParseAlign(s string) Align {
	switch s {
	case "center", "centre":
		return AlignCenter
	case "right":
		return AlignRight
	default:
		return AlignLeft
	}
}

// AlignOrigin returns the x at which text of the given width starts so that it is
// aligned to x.
func AlignOrigin(x, width float64, a Align) float64 {
	switch a {
	case AlignCenter:
		return x - width/2
	case AlignRight:
		return x - width
	default:
		return x
	}
}
