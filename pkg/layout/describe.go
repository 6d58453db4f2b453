// describe.go — Human- and machine-readable catalog descriptions.
package layout

import (
	"fmt"
	"strings"
)

var fieldLabels = map[Field]string{
	FieldProduct:      "Product",
	FieldVariety:      "Variety",
	FieldCategory:     "Category",
	FieldLot:          "Lot",
	FieldPackDate:     "Packed",
	FieldPackDateLong: "Packed",
	FieldWeight:       "Net weight",
	FieldBoxWeight:    "Box weight",
	FieldTrace:        "Traceability",
	FieldCertA:        "GGN",
	FieldCertB:        "CoC",
	FieldBarcode:      "EAN-13",
}

// Label returns the printed caption of a field.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// BuyerInfo summarizes a registry for API clients.
type BuyerInfo struct {
	Buyer    Buyer         `json:"buyer"`
	Variants []VariantInfo `json:"variants"`
}

// VariantInfo summarizes one document of a buyer's set.
type VariantInfo struct {
	Name   string   `json:"name"`
	Kind   string   `json:"kind"`
	Unit   string   `json:"unit"`
	Fields []string `json:"fields"`
}

// Describe lists every buyer with its variants and the fields each one prints.
func (c *Catalog) Describe() []BuyerInfo {
	infos := make([]BuyerInfo, 0, len(c.order))
	for _, b := range c.order {
		reg := c.regs[b]
		info := BuyerInfo{Buyer: b}
		for _, v := range reg.Variants() {
			vi := VariantInfo{Name: v.Name, Kind: v.Kind.String(), Unit: UnitDesign.String()}
			for _, e := range Resolve(reg, v.Set, "") {
				if e.Static() {
					continue
				}
				vi.Unit = e.Unit.String()
				vi.Fields = append(vi.Fields, string(e.Field))
			}
			info.Variants = append(info.Variants, vi)
		}
		infos = append(infos, info)
	}
	return infos
}

// FormatCatalog returns a human-readable description of every buyer layout,
// including the product-specific overrides.
func FormatCatalog(c *Catalog) string {
	var b strings.Builder
	for _, info := range c.Describe() {
		reg := c.regs[info.Buyer]
		fmt.Fprintf(&b, "%s (%d document", info.Buyer, len(info.Variants))
		if len(info.Variants) != 1 {
			b.WriteString("s")
		}
		fmt.Fprintf(&b, ", default weight %q)\n", reg.DefaultWeight(""))

		for _, v := range info.Variants {
			fmt.Fprintf(&b, "  [%s] %s, %s units: %s\n", v.Name, v.Kind, v.Unit, strings.Join(v.Fields, ", "))
		}
		for _, o := range reg.Overrides() {
			if o.Product == "" {
				continue
			}
			fmt.Fprintf(&b, "  %-20s %s\n", o.Product, describeOverride(o))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func describeOverride(o Override) string {
	switch {
	case o.Suppress:
		return fmt.Sprintf("%s hidden", o.Field)
	case o.Replace != nil:
		return fmt.Sprintf("%s moved to (%g, %g)", o.Field, o.Replace.X+o.Dx, o.Replace.Y+o.Dy)
	default:
		return fmt.Sprintf("%s offset by (%+g, %+g)", o.Field, o.Dx, o.Dy)
	}
}
