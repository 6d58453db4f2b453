// Package layout holds the per-buyer label layouts: where every field is drawn, in
// which unit system, and the product-specific overrides that move or hide fields.
package layout

import (
	"github.com/xob0t/PackStencil/pkg/geometry"
	"github.com/xob0t/PackStencil/pkg/template"
)

// Buyer identifies a retail chain and with it a layout family.
type Buyer string

const (
	BuyerGeneric     Buyer = "generic"
	BuyerNordmarkt   Buyer = "nordmarkt"
	BuyerAlvora      Buyer = "alvora"
	BuyerCasaFresca  Buyer = "casafresca"
	BuyerVerdiMarket Buyer = "verdimarket"
)

// Field names a value drawn on a label.
type Field string

const (
	FieldProduct      Field = "product"
	FieldVariety      Field = "variety"
	FieldCategory     Field = "category"
	FieldLot          Field = "lot"
	FieldPackDate     Field = "pack_date"
	FieldPackDateLong Field = "pack_date_long"
	FieldWeight       Field = "weight"
	FieldBoxWeight    Field = "box_weight"
	FieldTrace        Field = "trace"
	FieldCertA        Field = "cert_a"
	FieldCertB        Field = "cert_b"
	FieldBarcode      Field = "barcode"
)

// Unit selects the coordinate system of an entry.
type Unit int

const (
	// UnitDesign positions are design-grid units from the top-left corner.
	UnitDesign Unit = iota
	// UnitMillimetre positions are millimetres from the bottom-left corner.
	UnitMillimetre
)

func (u Unit) String() string {
	if u == UnitMillimetre {
		return "mm"
	}
	return "grid"
}

// Entry positions one field. Static entries carry their own Text instead of a
// field value; BlankOnly entries are captions printed only when no template
// supplies them.
type Entry struct {
	Field    Field
	X, Y     float64
	FontSize float64
	Align    geometry.Align
	Unit     Unit
	Bold     bool

	Prefix      string
	Placeholder string
	// Color is "#rrggbb"; empty is black.
	Color string

	// W and H size the barcode box, in the entry's unit.
	W, H float64

	Text      string
	BlankOnly bool
}

// Static reports whether the entry draws fixed text.
func (e Entry) Static() bool { return e.Text != "" }

// Set names a group of entries drawn on one page.
type Set string

const (
	SetMain    Set = "main"
	SetCompact Set = "compact"
	SetDetail  Set = "detail"
)

// Override moves, replaces or hides a field for a buyer, optionally only for one
// product and one set. Suppression wins over any positional override.
type Override struct {
	// Product is a product key; empty applies to every product.
	Product string
	Field   Field
	// Set limits the override to one set; empty applies to all.
	Set Set

	Dx, Dy   float64
	Suppress bool
	// Replace swaps the whole entry before Dx/Dy are applied.
	Replace *Entry
}

func (o Override) matches(set Set, productKey string, f Field) bool {
	if o.Field != f {
		return false
	}
	if o.Set != "" && o.Set != set {
		return false
	}
	return o.Product == "" || o.Product == productKey
}

func (o Override) specificity() int {
	if o.Product != "" {
		return 1
	}
	return 0
}

// VariantKind selects how a document variant is composed.
type VariantKind int

const (
	// VariantPrimary draws the set's entries over the resolved template.
	VariantPrimary VariantKind = iota
	// VariantCompact draws a bold centred product and weight line on a blank page.
	VariantCompact
	// VariantDetail draws the set over a secondary template, or a box grid when it is missing.
	VariantDetail
)

func (k VariantKind) String() string {
	switch k {
	case VariantCompact:
		return "compact"
	case VariantDetail:
		return "detail"
	default:
		return "primary"
	}
}

// Variant is one physical page of a label document set.
type Variant struct {
	// Name is the filename suffix of the variant.
	Name string
	Kind VariantKind
	Set  Set
	// PreferBoxWeight prints the box weight instead of the net weight when present.
	PreferBoxWeight bool
}

// Layout is the content of one set: its entries, both coordinate systems and the
// size of the blank page used when no template is found.
type Layout struct {
	Entries []Entry
	Grid    geometry.Grid
	Sheet   geometry.Sheet
	Blank   geometry.Page
	Naming  template.Naming
}

// ToPage maps a position in unit u onto page p.
func (l Layout) ToPage(u Unit, p geometry.Page, x, y float64) (float64, float64) {
	if u == UnitMillimetre {
		return l.Sheet.ToPage(p, x, y)
	}
	return l.Grid.ToPage(p, x, y)
}
