// filename.go — Deterministic output names.
package label

import (
	"path"
	"strings"
)

const (
	fileMarker = "LABEL"
	fileSuffix = "-label"
)

var unsafeName = strings.NewReplacer(
	"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-",
	"\"", "-", "<", "-", ">", "-", "|", "-", " ", "_",
)

// FileName builds the output name of a document. A lot, when given, is the base so
// regenerations for the same lot are recognizable; otherwise the source base name is
// used, prefixed with LABEL_ unless it already carries the marker. The variant is
// appended when non-empty, then "-label" and ext.
func FileName(source, lot, variant, ext string) string {
	var base string
	if lot = strings.TrimSpace(lot); lot != "" {
		base = unsafeName.Replace(lot)
	} else {
		name := path.Base(strings.ReplaceAll(strings.TrimSpace(source), "\\", "/"))
		name = strings.TrimSuffix(name, path.Ext(name))
		switch {
		case name == "" || name == "." || name == "/":
			base = fileMarker
		case strings.HasPrefix(strings.ToUpper(name), fileMarker+"_"):
			base = unsafeName.Replace(name)
		default:
			base = fileMarker + "_" + unsafeName.Replace(name)
		}
	}

	if variant != "" {
		base += "_" + variant
	}
	return base + fileSuffix + ext
}
