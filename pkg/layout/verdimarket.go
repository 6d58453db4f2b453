// verdimarket.go — VerdiMarket: three-document sets with green product text.
package layout

import (
	"github.com/xob0t/PackStencil/pkg/geometry"
	"github.com/xob0t/PackStencil/pkg/template"
)

const verdiGreen = "#2e7d32"

// VerdiMarket emits the same three documents as CasaFresca on a wider detail
// sheet. Its compact label shows the box weight when one is given.
type VerdiMarket struct{ *table }

// NewVerdiMarket returns the VerdiMarket registry.
func NewVerdiMarket() *VerdiMarket {
	main := gridEntries()
	for i := range main {
		if main[i].Field == FieldProduct {
			main[i].Color = verdiGreen
		}
	}

	return &VerdiMarket{&table{
		buyer:    BuyerVerdiMarket,
		variants: documentSet(true),
		layouts: map[Set]Layout{
			SetMain: gridLayout(main, template.Naming{
				Dir:      "templates/verdimarket",
				Suffixes: []string{"verdimarket", "verdi"},
				Defaults: []string{"verdimarket", "default"},
			}),
			SetCompact: compactLayout(verdiGreen),
			SetDetail:  detailLayout(BuyerVerdiMarket, geometry.Sheet{WidthMM: 90, HeightMM: 50}, verdiGreen),
		},
		overrides: []Override{
			{Set: SetMain, Field: FieldCategory, Suppress: true},
			{Set: SetMain, Field: FieldVariety, Suppress: true},
		},
		weight: "500 g",
	}}
}
