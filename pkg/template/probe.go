// probe.go — Template kind detection and page geometry.
package template

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/phpdave11/gofpdi"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrUnknownFormat is returned by Probe for bytes that are neither a PDF nor a
// decodable image.
var ErrUnknownFormat = errors.New("unknown template format")

// MediaBox is the page box used for vector template geometry and import.
const MediaBox = "/MediaBox"

var pdfMagic = []byte("%PDF-")

// Probe detects the template kind of data and measures its first page.
func Probe(p string, data []byte, rasterDPI float64) (*Descriptor, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("probe %s: empty file", p)
	}
	if rasterDPI <= 0 {
		rasterDPI = DefaultRasterDPI
	}

	if bytes.HasPrefix(data, pdfMagic) {
		w, h, err := PDFPageSize(data)
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", p, err)
		}
		return &Descriptor{Path: p, Data: data, Kind: KindVector, Width: w, Height: h}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", p, ErrUnknownFormat)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("probe %s: empty image", p)
	}
	return &Descriptor{
		Path:   p,
		Data:   data,
		Kind:   KindRaster,
		Width:  float64(b.Dx()) * 72 / rasterDPI,
		Height: float64(b.Dy()) * 72 / rasterDPI,
		Image:  img,
	}, nil
}

// PDFPageSize returns the MediaBox size of the first page of a PDF in points.
// The importer panics on malformed input; that is reported as an error.
func PDFPageSize(data []byte) (w, h float64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("read pdf: %v", rec)
		}
	}()

	imp := gofpdi.NewImporter()
	var rs io.ReadSeeker = bytes.NewReader(data)
	imp.SetSourceStream(&rs)

	boxes, ok := imp.GetPageSizes()[1]
	if !ok {
		return 0, 0, errors.New("read pdf: no first page")
	}
	box, ok := boxes[MediaBox]
	if !ok {
		return 0, 0, errors.New("read pdf: first page has no media box")
	}
	w, h = box["w"], box["h"]
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("read pdf: invalid media box %vx%v", w, h)
	}
	return w, h, nil
}
