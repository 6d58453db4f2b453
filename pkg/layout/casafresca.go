// casafresca.go — Casa Fresca: three-document sets with a millimetre detail label.
package layout

import (
	"github.com/xob0t/PackStencil/pkg/geometry"
	"github.com/xob0t/PackStencil/pkg/template"
)

// detailEntries lays out the detail label on a sheet, y measured from the bottom.
func detailEntries(s geometry.Sheet, color string) []Entry {
	right := s.WidthMM - 4
	e := []Entry{
		{Field: FieldProduct, X: 4, Y: s.HeightMM - 8, FontSize: 11, Bold: true, Color: color, Placeholder: "NO PRODUCT"},
		{Field: FieldCategory, X: 4, Y: s.HeightMM - 14, FontSize: 8, Prefix: "Category: "},
		{Field: FieldVariety, X: 4, Y: s.HeightMM - 19, FontSize: 8, Prefix: "Variety: "},
		{Field: FieldLot, X: 4, Y: s.HeightMM - 24, FontSize: 8, Prefix: "Lot: ", Placeholder: "NO LOT"},
		{Field: FieldPackDateLong, X: 4, Y: s.HeightMM - 29, FontSize: 8, Prefix: "Packed: ", Placeholder: "NO DATE"},
		{Field: FieldTrace, X: 4, Y: s.HeightMM - 34, FontSize: 8, Prefix: "Trace: "},
		{Field: FieldWeight, X: right, Y: 5, FontSize: 11, Bold: true, Align: geometry.AlignRight},
	}
	for i := range e {
		e[i].Unit = UnitMillimetre
	}
	return e
}

func detailLayout(buyer Buyer, s geometry.Sheet, color string) Layout {
	return Layout{
		Entries: detailEntries(s, color),
		Sheet:   s,
		Blank:   s.Page(),
		Naming: template.Naming{
			Dir:      "templates/" + string(buyer),
			Suffixes: []string{"detail"},
			Defaults: []string{"detail", string(buyer) + "_detail"},
		},
	}
}

func compactLayout(color string) Layout {
	return Layout{
		Entries: []Entry{{Field: FieldProduct, FontSize: 20, Bold: true, Align: geometry.AlignCenter, Color: color}},
		Blank:   geometry.PageMM(80, 30),
	}
}

// CasaFresca emits a main label, a compact name and weight label and a detail
// label. Category, variety and traceability appear only on the detail label.
type CasaFresca struct{ *table }

// NewCasaFresca returns the Casa Fresca registry.
func NewCasaFresca() *CasaFresca {
	return &CasaFresca{&table{
		buyer:    BuyerCasaFresca,
		variants: documentSet(false),
		layouts: map[Set]Layout{
			SetMain: gridLayout(gridEntries(), template.Naming{
				Dir:      "templates/casafresca",
				Suffixes: []string{"casafresca", "casa-fresca", "cf"},
				Defaults: []string{"casafresca", "default"},
			}),
			SetCompact: compactLayout(""),
			SetDetail:  detailLayout(BuyerCasaFresca, geometry.Sheet{WidthMM: 80, HeightMM: 50}, ""),
		},
		overrides: []Override{
			{Set: SetMain, Field: FieldCategory, Suppress: true},
			{Set: SetMain, Field: FieldVariety, Suppress: true},
			{Set: SetMain, Field: FieldTrace, Suppress: true},
			{Set: SetMain, Field: captionTrace, Suppress: true},
		},
		weight: "1 kg",
	}}
}
