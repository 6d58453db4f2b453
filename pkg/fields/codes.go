// codes.go — Traceability code, weight defaulting and product key folding.
package fields

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// TracePrefix is printed before the traceability digits.
	TracePrefix = "T"
	// TraceDigits is the fixed number of digits in a traceability code.
	TraceDigits = 8
)

// Digits strips every non-digit rune from s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Traceability derives the traceability code from the first source that carries
// digits: right-truncated or left-padded to TraceDigits and prefixed with TracePrefix.
// ok is false when no source has digits; the field is then omitted, not replaced.
func Traceability(sources ...string) (code string, ok bool) {
	for _, src := range sources {
		d := Digits(src)
		if d == "" {
			continue
		}
		if len(d) > TraceDigits {
			d = d[:TraceDigits]
		}
		return TracePrefix + strings.Repeat("0", TraceDigits-len(d)) + d, true
	}
	return "", false
}

// Weight returns raw when it has content, def otherwise.
func Weight(raw, def string) string {
	if s := strings.TrimSpace(raw); s != "" {
		return s
	}
	return def
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// ProductKey folds a product name into a lookup key: accents removed, lowercase,
// runs of anything but letters and digits collapsed to a single underscore.
// "Pimiento Califórnia (rojo)" → "pimiento_california_rojo".
func ProductKey(name string) string {
	t := transform.Chain(norm.NFD, stripMarks, norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
