// nordmarkt.go — Nordmarkt: product templates, box weight and per-product offsets.
package layout

import (
	"github.com/xob0t/PackStencil/pkg/geometry"
	"github.com/xob0t/PackStencil/pkg/template"
)

// Nordmarkt prints certification numbers and the box weight on product-specific
// templates. Its CoC number is printed by the templates themselves.
type Nordmarkt struct{ *table }

// NewNordmarkt returns the Nordmarkt registry.
func NewNordmarkt() *Nordmarkt {
	entries := append(gridEntries(),
		Entry{Field: FieldBoxWeight, X: 1140, Y: 520, FontSize: 11, Align: geometry.AlignRight, Prefix: "Box "},
		Entry{Field: FieldCertA, X: 60, Y: 640, FontSize: 9, Prefix: "GGN "},
		Entry{Field: FieldCertB, X: 60, Y: 690, FontSize: 9, Prefix: "CoC "},
	)

	return &Nordmarkt{&table{
		buyer:    BuyerNordmarkt,
		variants: single,
		layouts: map[Set]Layout{
			SetMain: gridLayout(entries, template.Naming{
				Dir:      "templates/nordmarkt",
				Suffixes: []string{"nordmarkt", "nord-markt", "nm"},
				Defaults: []string{"nordmarkt", "default"},
			}),
		},
		overrides: []Override{
			{Field: FieldCertB, Suppress: true},
			{Product: "tomate_cherry", Field: FieldLot, Dy: 40},
			{Product: "pepino", Field: FieldBarcode, Dx: -60},
			{Product: "pimiento_california", Field: FieldWeight, Suppress: true},
		},
		weight: "1 kg",
		weights: map[string]string{
			"tomate_cherry": "250 g",
			"pepino":        "1 ud",
		},
	}}
}
