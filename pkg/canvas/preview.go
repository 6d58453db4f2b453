// preview.go — PNG preview backend on gogpu/gg.
package canvas

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/xob0t/PackStencil/pkg/fonts"
	"github.com/xob0t/PackStencil/pkg/geometry"
	"github.com/xob0t/PackStencil/pkg/template"
)

// DefaultPreviewDPI is the preview resolution when none is configured.
const DefaultPreviewDPI = 150.0

// Preview renders labels as PNG images. Vector templates cannot be rasterized and
// are reported as ErrUnsupportedBackground; the label is drawn on white instead.
type Preview struct {
	dpi float64

	mu      sync.Mutex
	sources map[*fonts.Face]*text.FontSource
}

// NewPreview returns a preview backend at dpi.
func NewPreview(dpi float64) *Preview {
	if dpi <= 0 {
		dpi = DefaultPreviewDPI
	}
	return &Preview{dpi: dpi, sources: make(map[*fonts.Face]*text.FontSource)}
}

func (*Preview) MimeType() string  { return "image/png" }
func (*Preview) Extension() string { return ".png" }

// DPI returns the preview resolution.
func (b *Preview) DPI() float64 { return b.dpi }

// source parses a face once per backend.
func (b *Preview) source(f *fonts.Face) (*text.FontSource, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if src, ok := b.sources[f]; ok {
		return src, nil
	}
	src, err := text.NewFontSource(f.Data)
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", f.Name, err)
	}
	b.sources[f] = src
	return src, nil
}

// FontSources returns the number of parsed font sources held by the backend.
func (b *Preview) FontSources() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sources)
}

// Close releases the parsed font sources.
func (b *Preview) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for f, src := range b.sources {
		_ = src.Close()
		delete(b.sources, f)
	}
	return nil
}

// NewSurface allocates a white bitmap of p at the backend's resolution.
func (b *Preview) NewSurface(p geometry.Page, set *fonts.Set) (Surface, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("new preview surface: invalid page %s", p)
	}
	if set == nil || set.Regular == nil {
		return nil, fmt.Errorf("new preview surface: %w", fonts.ErrNoFont)
	}

	regular, err := b.source(set.Regular)
	if err != nil {
		return nil, err
	}
	bold := regular
	if set.Bold != nil {
		if bold, err = b.source(set.Bold); err != nil {
			return nil, err
		}
	}

	scale := b.dpi / 72
	w := int(math.Ceil(p.Width * scale))
	h := int(math.Ceil(p.Height * scale))
	dc := gg.NewContext(w, h)
	dc.ClearWithColor(gg.White)

	return &previewSurface{dc: dc, page: p, scale: scale, regular: regular, bold: bold}, nil
}

type previewSurface struct {
	dc    *gg.Context
	page  geometry.Page
	scale float64

	regular *text.FontSource
	bold    *text.FontSource
}

func (s *previewSurface) Size() geometry.Page { return s.page }

// px converts a page-space point to pixel coordinates with a top-left origin.
func (s *previewSurface) px(x, y float64) (float64, float64) {
	return x * s.scale, (s.page.Height - y) * s.scale
}

func (s *previewSurface) DrawBackground(d *template.Descriptor) error {
	if d == nil {
		return nil
	}
	switch d.Kind {
	case template.KindRaster:
		return s.DrawImage(d.Image, 0, 0, s.page.Width, s.page.Height)
	case template.KindVector:
		return fmt.Errorf("draw %s: %w", d.Path, ErrUnsupportedBackground)
	default:
		return nil
	}
}

func (s *previewSurface) DrawText(str string, x, y float64, st TextStyle) error {
	src := s.regular
	if st.Bold {
		src = s.bold
	}
	s.dc.SetFont(src.Face(st.Size * s.scale))
	s.dc.SetColor(st.Color)
	px, py := s.px(x, y)
	s.dc.DrawString(str, px, py)
	return nil
}

func (s *previewSurface) DrawLine(x1, y1, x2, y2, width float64) error {
	ax, ay := s.px(x1, y1)
	bx, by := s.px(x2, y2)
	s.dc.SetColor(Black)
	s.dc.SetLineWidth(width * s.scale)
	s.dc.DrawLine(ax, ay, bx, by)
	if err := s.dc.Stroke(); err != nil {
		return fmt.Errorf("stroke line: %w", err)
	}
	return nil
}

func (s *previewSurface) DrawRect(x, y, w, h float64, st RectStyle) error {
	px, py := s.px(x, y+h)
	c := st.Color
	if c.A == 0 {
		c = Black
	}
	s.dc.SetColor(c)
	lw := st.LineWidth
	if lw <= 0 {
		lw = 1
	}
	s.dc.SetLineWidth(lw * s.scale)
	s.dc.DrawRectangle(px, py, w*s.scale, h*s.scale)

	var err error
	switch {
	case st.Fill && st.NoStroke:
		err = s.dc.Fill()
	case st.Fill:
		if err = s.dc.FillPreserve(); err == nil {
			err = s.dc.Stroke()
		}
	default:
		err = s.dc.Stroke()
	}
	if err != nil {
		return fmt.Errorf("paint rect: %w", err)
	}
	return nil
}

func (s *previewSurface) DrawImage(img image.Image, x, y, w, h float64) error {
	if img == nil {
		return nil
	}
	px, py := s.px(x, y+h)
	s.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:         px,
		Y:         py,
		DstWidth:  w * s.scale,
		DstHeight: h * s.scale,
	})
	return nil
}

func (s *previewSurface) Finish() ([]byte, error) {
	defer s.dc.Close()
	var buf bytes.Buffer
	if err := s.dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
