// generic.go — Shared design-grid layout and the generic buyer.
package layout

import (
	"github.com/xob0t/PackStencil/pkg/geometry"
	"github.com/xob0t/PackStencil/pkg/template"
)

// DesignGrid is the reference canvas of every design-grid layout.
var DesignGrid = geometry.Grid{RefWidth: 1200, RefHeight: 800}

// gridBlank keeps the 3:2 design-grid aspect when no template is found.
var gridBlank = geometry.PageMM(105, 70)

// Caption fields are static texts that a template normally prints itself.
const (
	captionProduct Field = "caption_product"
	captionLot     Field = "caption_lot"
	captionPacked  Field = "caption_packed"
	captionWeight  Field = "caption_weight"
	captionTrace   Field = "caption_trace"
)

func caption(f Field, text string, x, y float64, a geometry.Align) Entry {
	return Entry{Field: f, Text: text, X: x, Y: y, FontSize: 7, Align: a, BlankOnly: true}
}

// gridEntries is the main label layout on the design grid, y measured to the baseline.
func gridEntries() []Entry {
	return []Entry{
		caption(captionProduct, "PRODUCT", 60, 80, geometry.AlignLeft),
		{Field: FieldProduct, X: 60, Y: 170, FontSize: 22, Bold: true, Placeholder: "NO PRODUCT"},
		{Field: FieldVariety, X: 60, Y: 250, FontSize: 13},
		{Field: FieldCategory, X: 60, Y: 310, FontSize: 11, Prefix: "Category "},

		caption(captionLot, "LOT", 60, 390, geometry.AlignLeft),
		{Field: FieldLot, X: 60, Y: 460, FontSize: 16, Bold: true, Placeholder: "NO LOT"},
		caption(captionPacked, "PACKED", 460, 390, geometry.AlignLeft),
		{Field: FieldPackDate, X: 460, Y: 460, FontSize: 14, Placeholder: "NO DATE"},
		caption(captionWeight, "NET WEIGHT", 1140, 390, geometry.AlignRight),
		{Field: FieldWeight, X: 1140, Y: 460, FontSize: 18, Bold: true, Align: geometry.AlignRight},

		caption(captionTrace, "TRACEABILITY", 60, 530, geometry.AlignLeft),
		{Field: FieldTrace, X: 60, Y: 580, FontSize: 10},
		{Field: FieldBarcode, X: 640, Y: 540, W: 500, H: 200, FontSize: 8},
	}
}

func gridLayout(entries []Entry, naming template.Naming) Layout {
	return Layout{Entries: entries, Grid: DesignGrid, Blank: gridBlank, Naming: naming}
}

// Generic is the fallback buyer: one design-grid label with a "1 kg" default weight.
type Generic struct{ *table }

// NewGeneric returns the generic registry.
func NewGeneric() *Generic {
	return &Generic{&table{
		buyer:    BuyerGeneric,
		variants: single,
		layouts: map[Set]Layout{
			SetMain: gridLayout(gridEntries(), template.Naming{
				Dir:      "templates/generic",
				Suffixes: []string{"generic"},
				Defaults: []string{"generic", "default"},
			}),
		},
		weight: "1 kg",
	}}
}
