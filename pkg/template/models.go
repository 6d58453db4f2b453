// Package template resolves background template assets (vector PDF pages or raster
// images) for a buyer and product, and describes their page geometry.
package template

import (
	"image"

	"github.com/xob0t/PackStencil/pkg/geometry"
)

// Kind discriminates how a template is placed on the page.
type Kind int

const (
	// KindBlank is a synthetic page with no background asset.
	KindBlank Kind = iota
	// KindVector is the first page of a PDF, imported as a vector form.
	KindVector
	// KindRaster is a bitmap stretched over the page.
	KindRaster
)

func (k Kind) String() string {
	switch k {
	case KindVector:
		return "vector"
	case KindRaster:
		return "raster"
	default:
		return "blank"
	}
}

// Descriptor is a resolved template. Width and Height are in points and always > 0.
// Descriptors are shared between requests and must not be mutated.
type Descriptor struct {
	Path   string
	Data   []byte
	Kind   Kind
	Width  float64
	Height float64

	// Image is the decoded bitmap of a raster template.
	Image image.Image

	// Synthetic marks a blank page built because no asset was found.
	Synthetic bool
}

// Page returns the descriptor's page size.
func (d *Descriptor) Page() geometry.Page {
	return geometry.Page{Width: d.Width, Height: d.Height}
}

// Blank returns a synthetic descriptor for a page of the given size.
func Blank(p geometry.Page) *Descriptor {
	return &Descriptor{
		Kind:      KindBlank,
		Width:     p.Width,
		Height:    p.Height,
		Synthetic: true,
	}
}

// Naming describes where a buyer's template assets live and how they are named.
type Naming struct {
	// Dir is the asset directory, e.g. "templates/nordmarkt".
	Dir string
	// Suffixes are the buyer tag spellings appended to a product key
	// ("tomate_cherry_nordmarkt.pdf", "tomate_cherry-nm.pdf", ...).
	Suffixes []string
	// Separators join product key and suffix. Defaults to "_" and "-".
	Separators []string
	// Defaults are generic base names tried after every product candidate.
	Defaults []string
	// Extensions are tried in order for every base name. Defaults to DefaultExtensions.
	Extensions []string
	// RasterDPI converts raster pixel sizes to points. Defaults to DefaultRasterDPI.
	RasterDPI float64
}

// DefaultExtensions are the template file types tried when Naming has none.
var DefaultExtensions = []string{".pdf", ".png", ".jpg"}

// DefaultRasterDPI is the assumed resolution of raster templates.
const DefaultRasterDPI = 300.0

func (n Naming) separators() []string {
	if len(n.Separators) == 0 {
		return []string{"_", "-"}
	}
	return n.Separators
}

func (n Naming) extensions() []string {
	if len(n.Extensions) == 0 {
		return DefaultExtensions
	}
	return n.Extensions
}

func (n Naming) rasterDPI() float64 {
	if n.RasterDPI <= 0 {
		return DefaultRasterDPI
	}
	return n.RasterDPI
}
