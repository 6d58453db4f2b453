// registry.go — Registry interface, buyer catalog and override resolution.
package layout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xob0t/PackStencil/pkg/fields"
)

// ErrUnknownBuyer is returned when a buyer tag has no registry.
var ErrUnknownBuyer = errors.New("unknown buyer")

// Registry is the layout family of one buyer. Each buyer implements it once.
type Registry interface {
	Buyer() Buyer
	// Variants lists the documents of a label request, in output order.
	Variants() []Variant
	// Layout returns the entries and geometry of a set.
	Layout(set Set) (Layout, bool)
	// Overrides lists every offset, replacement and suppression rule.
	Overrides() []Override
	// DefaultWeight is printed when a request carries no weight.
	DefaultWeight(productKey string) string
	// NormalizeLot returns the lot in the buyer's printed form. generated is true
	// when raw could not be used and a fresh lot was made.
	NormalizeLot(raw, packDate, seed string, rnd fields.Rand) (lot string, generated bool)
}

// Resolve returns the entries of set for productKey with overrides applied, in
// layout order. A field suppressed at any specificity is dropped; otherwise the
// single most specific override replaces and offsets the buyer default.
func Resolve(reg Registry, set Set, productKey string) []Entry {
	l, ok := reg.Layout(set)
	if !ok {
		return nil
	}

	overrides := reg.Overrides()
	out := make([]Entry, 0, len(l.Entries))
	for _, e := range l.Entries {
		resolved, visible := applyOverrides(e, set, productKey, overrides)
		if !visible {
			continue
		}
		out = append(out, resolved)
	}
	return out
}

// applyOverrides overlays the most specific matching override onto e.
func applyOverrides(e Entry, set Set, productKey string, overrides []Override) (Entry, bool) {
	var best *Override
	for i := range overrides {
		o := &overrides[i]
		if !o.matches(set, productKey, e.Field) {
			continue
		}
		if o.Suppress {
			return Entry{}, false
		}
		if best == nil || o.specificity() > best.specificity() {
			best = o
		}
	}
	if best == nil {
		return e, true
	}

	if best.Replace != nil {
		field := e.Field
		e = *best.Replace
		e.Field = field
	}
	e.X += best.Dx
	e.Y += best.Dy
	return e, true
}

// Catalog maps buyer tags to registries.
type Catalog struct {
	order []Buyer
	regs  map[Buyer]Registry
}

// NewCatalog builds a catalog; later registries replace earlier ones for the same buyer.
func NewCatalog(regs ...Registry) *Catalog {
	c := &Catalog{regs: make(map[Buyer]Registry, len(regs))}
	for _, r := range regs {
		if _, dup := c.regs[r.Buyer()]; !dup {
			c.order = append(c.order, r.Buyer())
		}
		c.regs[r.Buyer()] = r
	}
	return c
}

// DefaultCatalog returns every built-in buyer.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		NewGeneric(),
		NewNordmarkt(),
		NewAlvora(),
		NewCasaFresca(),
		NewVerdiMarket(),
	)
}

// Lookup finds the registry for a buyer tag. Tags are case-insensitive and an
// empty tag selects the generic layout.
func (c *Catalog) Lookup(tag string) (Registry, error) {
	b := Buyer(strings.ToLower(strings.TrimSpace(tag)))
	if b == "" {
		b = BuyerGeneric
	}
	r, ok := c.regs[b]
	if !ok {
		return nil, fmt.Errorf("lookup %q: %w", tag, ErrUnknownBuyer)
	}
	return r, nil
}

// Buyers lists the catalog's buyers in registration order.
func (c *Catalog) Buyers() []Buyer {
	return append([]Buyer(nil), c.order...)
}

// table is the data-driven Registry shared by the built-in buyers.
type table struct {
	buyer     Buyer
	variants  []Variant
	layouts   map[Set]Layout
	overrides []Override
	weight    string
	weights   map[string]string
}

func (t *table) Buyer() Buyer          { return t.buyer }
func (t *table) Variants() []Variant   { return t.variants }
func (t *table) Overrides() []Override { return t.overrides }

func (t *table) Layout(set Set) (Layout, bool) {
	l, ok := t.layouts[set]
	return l, ok
}

func (t *table) DefaultWeight(productKey string) string {
	if w, ok := t.weights[productKey]; ok {
		return w
	}
	return t.weight
}

func (t *table) NormalizeLot(raw, _, seed string, rnd fields.Rand) (string, bool) {
	if lot, ok := fields.ParseLot(raw); ok {
		return lot, false
	}
	return fields.GenerateLot(seed, rnd), true
}

var single = []Variant{{Name: "label", Kind: VariantPrimary, Set: SetMain}}

func documentSet(preferBoxWeight bool) []Variant {
	return []Variant{
		{Name: "main", Kind: VariantPrimary, Set: SetMain},
		{Name: "compact", Kind: VariantCompact, Set: SetCompact, PreferBoxWeight: preferBoxWeight},
		{Name: "detail", Kind: VariantDetail, Set: SetDetail},
	}
}
