// validator.go — Request checks reported as warnings.
package label

import (
	"fmt"

	"github.com/xob0t/PackStencil/pkg/barcode"
	"github.com/xob0t/PackStencil/pkg/fields"
	"github.com/xob0t/PackStencil/pkg/layout"
)

// Validate lists what a render of req would have to fall back on. The warnings are
// informational: Render still produces a document for every one of them except an
// unknown buyer.
func Validate(req Request, c *layout.Catalog) []string {
	var warnings []string
	f := req.Fields.trimmed()

	if c != nil {
		if _, err := c.Lookup(req.Buyer); err != nil {
			warnings = append(warnings, fmt.Sprintf("buyer %q is unknown", req.Buyer))
		}
	}
	if f.Product == "" {
		warnings = append(warnings, "product is empty; a placeholder will be printed")
	}
	if f.PackDate == "" {
		warnings = append(warnings, "packDate is empty; a placeholder will be printed")
	} else if _, ok := fields.ParseDate(f.PackDate); !ok {
		warnings = append(warnings, fmt.Sprintf("packDate %q is not a date; printed verbatim", f.PackDate))
	}
	if f.Lot != "" {
		if _, ok := fields.ParseLot(f.Lot); !ok {
			warnings = append(warnings, fmt.Sprintf("lot %q is not canonical; it may be regenerated", f.Lot))
		}
	}
	if f.ScanCode != "" {
		if _, err := barcode.Parse(f.ScanCode); err != nil {
			warnings = append(warnings, fmt.Sprintf("scanCode %q: %v; barcode omitted", f.ScanCode, err))
		}
	}
	if f.CertA != "" || f.CertB != "" {
		if _, ok := fields.Traceability(f.CertB, f.CertA); !ok {
			warnings = append(warnings, "certificates carry no digits; traceability omitted")
		}
	}
	return warnings
}
