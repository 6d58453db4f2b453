// Package label composes print-ready label documents from a handful of semantic
// fields, a buyer layout family and optional background templates.
package label

import "strings"

// Fields are the semantic values printed on a label. Every field is optional.
type Fields struct {
	PackDate  string `json:"packDate,omitempty"`
	Lot       string `json:"lot,omitempty"`
	ScanCode  string `json:"scanCode,omitempty"`
	CertA     string `json:"certA,omitempty"`
	CertB     string `json:"certB,omitempty"`
	Weight    string `json:"weight,omitempty"`
	Product   string `json:"product,omitempty"`
	Variety   string `json:"variety,omitempty"`
	Category  string `json:"category,omitempty"`
	BoxWeight string `json:"boxWeight,omitempty"`
}

func (f Fields) trimmed() Fields {
	return Fields{
		PackDate:  strings.TrimSpace(f.PackDate),
		Lot:       strings.TrimSpace(f.Lot),
		ScanCode:  strings.TrimSpace(f.ScanCode),
		CertA:     strings.TrimSpace(f.CertA),
		CertB:     strings.TrimSpace(f.CertB),
		Weight:    strings.TrimSpace(f.Weight),
		Product:   strings.TrimSpace(f.Product),
		Variety:   strings.TrimSpace(f.Variety),
		Category:  strings.TrimSpace(f.Category),
		BoxWeight: strings.TrimSpace(f.BoxWeight),
	}
}

// Request is one label to compose.
type Request struct {
	// Buyer selects the layout family; empty means generic.
	Buyer  string `json:"buyer"`
	Fields Fields `json:"fields"`
	// Source is the originating order file name. It seeds generated lots and
	// names the output when no lot was supplied.
	Source string `json:"source,omitempty"`
	// Template is an explicit template path tried before any other candidate.
	Template string `json:"template,omitempty"`
}

// Result is one rendered document.
type Result struct {
	Bytes    []byte `json:"bytes"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Variant  string `json:"variant"`
}
