// alvora.go — Alvora: millimetre layout with week/day lots.
package layout

import (
	"github.com/xob0t/PackStencil/pkg/fields"
	"github.com/xob0t/PackStencil/pkg/geometry"
	"github.com/xob0t/PackStencil/pkg/template"
)

var alvoraSheet = geometry.Sheet{WidthMM: 100, HeightMM: 60}

// Alvora labels are laid out in millimetres on a 100x60 sheet and carry the lot as
// ISO week and day of month.
type Alvora struct{ *table }

// NewAlvora returns the Alvora registry.
func NewAlvora() *Alvora {
	mm := func(e Entry) Entry {
		e.Unit = UnitMillimetre
		return e
	}
	entries := []Entry{
		mm(Entry{Field: FieldProduct, X: 50, Y: 49, FontSize: 16, Bold: true, Align: geometry.AlignCenter, Placeholder: "NO PRODUCT"}),
		mm(Entry{Field: FieldVariety, X: 50, Y: 43, FontSize: 10, Align: geometry.AlignCenter}),
		mm(caption(captionLot, "LOT (WW/DD)", 6, 33, geometry.AlignLeft)),
		mm(Entry{Field: FieldLot, X: 6, Y: 27, FontSize: 14, Bold: true, Placeholder: "NO LOT"}),
		mm(caption(captionPacked, "PACKED", 50, 33, geometry.AlignCenter)),
		mm(Entry{Field: FieldPackDate, X: 50, Y: 27, FontSize: 11, Align: geometry.AlignCenter, Placeholder: "NO DATE"}),
		mm(caption(captionWeight, "NET", 94, 33, geometry.AlignRight)),
		mm(Entry{Field: FieldWeight, X: 94, Y: 27, FontSize: 14, Bold: true, Align: geometry.AlignRight}),
		mm(Entry{Field: FieldTrace, X: 6, Y: 19, FontSize: 8}),
		mm(Entry{Field: FieldBarcode, X: 30, Y: 3, W: 40, H: 13, FontSize: 7}),
	}

	return &Alvora{&table{
		buyer:    BuyerAlvora,
		variants: single,
		layouts: map[Set]Layout{
			SetMain: {
				Entries: entries,
				Sheet:   alvoraSheet,
				Blank:   alvoraSheet.Page(),
				Naming: template.Naming{
					Dir:      "templates/alvora",
					Suffixes: []string{"alvora"},
					Defaults: []string{"alvora"},
				},
			},
		},
		overrides: []Override{
			{Field: FieldTrace, Suppress: true},
		},
		weight: "1 kg",
	}}
}

// NormalizeLot prints the lot as WW/DD, falling back to the generic lot forms.
func (a *Alvora) NormalizeLot(raw, packDate, seed string, rnd fields.Rand) (string, bool) {
	if lot, ok := fields.ParseWeekDayLot(raw, packDate); ok {
		return lot, false
	}
	return a.table.NormalizeLot(raw, packDate, seed, rnd)
}
