// pdf.go — PDF backend on gopdf, with vector template import.
package canvas

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/signintech/gopdf"

	"github.com/xob0t/PackStencil/pkg/fonts"
	"github.com/xob0t/PackStencil/pkg/geometry"
	"github.com/xob0t/PackStencil/pkg/template"
)

const (
	regularFamily = "label-regular"
	boldFamily    = "label-bold"
)

// PDF renders labels as single-page PDF documents.
type PDF struct{}

// NewPDF returns the PDF backend.
func NewPDF() *PDF { return &PDF{} }

func (*PDF) MimeType() string  { return "application/pdf" }
func (*PDF) Extension() string { return ".pdf" }

// NewSurface starts a document with one page of size p and embeds the font set.
func (*PDF) NewSurface(p geometry.Page, set *fonts.Set) (Surface, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("new pdf surface: invalid page %s", p)
	}
	if set == nil || set.Regular == nil {
		return nil, fmt.Errorf("new pdf surface: %w", fonts.ErrNoFont)
	}

	doc := &gopdf.GoPdf{}
	doc.Start(gopdf.Config{PageSize: gopdf.Rect{W: p.Width, H: p.Height}})
	doc.AddPage()

	if err := doc.AddTTFFontData(regularFamily, set.Regular.Data); err != nil {
		return nil, fmt.Errorf("embed font %s: %w", set.Regular.Name, err)
	}
	hasBold := false
	if set.Bold != nil {
		if err := doc.AddTTFFontData(boldFamily, set.Bold.Data); err != nil {
			return nil, fmt.Errorf("embed font %s: %w", set.Bold.Name, err)
		}
		hasBold = true
	}

	return &pdfSurface{doc: doc, page: p, hasBold: hasBold}, nil
}

type pdfSurface struct {
	doc     *gopdf.GoPdf
	page    geometry.Page
	hasBold bool
}

func (s *pdfSurface) Size() geometry.Page { return s.page }

// flip converts a page-space y to gopdf's top-left origin.
func (s *pdfSurface) flip(y float64) float64 { return s.page.Height - y }

func (s *pdfSurface) DrawBackground(d *template.Descriptor) (err error) {
	if d == nil {
		return nil
	}
	switch d.Kind {
	case template.KindRaster:
		return s.DrawImage(d.Image, 0, 0, s.page.Width, s.page.Height)
	case template.KindVector:
		// The importer panics on page trees it cannot parse.
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("import %s: %v", d.Path, rec)
			}
		}()
		var rs io.ReadSeeker = bytes.NewReader(d.Data)
		tpl := s.doc.ImportPageStream(&rs, 1, template.MediaBox)
		s.doc.UseImportedTemplate(tpl, 0, 0, s.page.Width, s.page.Height)
		return nil
	default:
		return nil
	}
}

func (s *pdfSurface) DrawText(text string, x, y float64, st TextStyle) error {
	family := regularFamily
	if st.Bold && s.hasBold {
		family = boldFamily
	}
	if err := s.doc.SetFont(family, "", st.Size); err != nil {
		return fmt.Errorf("set font: %w", err)
	}
	s.doc.SetTextColor(st.Color.R, st.Color.G, st.Color.B)
	s.doc.SetXY(x, s.flip(y))
	if err := s.doc.Text(text); err != nil {
		return fmt.Errorf("draw text %q: %w", text, err)
	}
	return nil
}

func (s *pdfSurface) DrawLine(x1, y1, x2, y2, width float64) error {
	s.doc.SetStrokeColor(0, 0, 0)
	s.doc.SetLineWidth(width)
	s.doc.Line(x1, s.flip(y1), x2, s.flip(y2))
	return nil
}

func (s *pdfSurface) DrawRect(x, y, w, h float64, st RectStyle) error {
	style := "D"
	switch {
	case st.Fill && st.NoStroke:
		style = "F"
	case st.Fill:
		style = "FD"
	}
	if st.LineWidth > 0 {
		s.doc.SetLineWidth(st.LineWidth)
	}
	s.doc.SetStrokeColor(st.Color.R, st.Color.G, st.Color.B)
	s.doc.SetFillColor(st.Color.R, st.Color.G, st.Color.B)
	s.doc.RectFromUpperLeftWithStyle(x, s.flip(y+h), w, h, style)
	return nil
}

func (s *pdfSurface) DrawImage(img image.Image, x, y, w, h float64) error {
	if img == nil {
		return nil
	}
	if err := s.doc.ImageFrom(img, x, s.flip(y+h), &gopdf.Rect{W: w, H: h}); err != nil {
		return fmt.Errorf("draw image: %w", err)
	}
	return nil
}

func (s *pdfSurface) Finish() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
