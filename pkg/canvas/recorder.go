// recorder.go — Backend that records draw instructions instead of rendering them.
package canvas

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/xob0t/PackStencil/pkg/fonts"
	"github.com/xob0t/PackStencil/pkg/geometry"
	"github.com/xob0t/PackStencil/pkg/template"
)

// Op is one recorded draw instruction.
type Op struct {
	Kind  string // "background", "text", "line", "rect", "image"
	Text  string
	X, Y  float64
	W, H  float64
	Size  float64
	Bold  bool
	Fill  bool
	Color string
}

func (o Op) String() string {
	switch o.Kind {
	case "text":
		weight := ""
		if o.Bold {
			weight = " bold"
		}
		return fmt.Sprintf("text  (%7.2f, %7.2f) %5.1fpt%s %s %q", o.X, o.Y, o.Size, weight, o.Color, o.Text)
	case "line":
		return fmt.Sprintf("line  (%7.2f, %7.2f) -> (%7.2f, %7.2f) w=%.2f", o.X, o.Y, o.W, o.H, o.Size)
	case "rect":
		mode := "stroke"
		if o.Fill {
			mode = "fill"
		}
		return fmt.Sprintf("rect  (%7.2f, %7.2f) %.2fx%.2f %s", o.X, o.Y, o.W, o.H, mode)
	case "background":
		return fmt.Sprintf("bg    %s %.2fx%.2f", o.Text, o.W, o.H)
	default:
		return fmt.Sprintf("%-5s (%7.2f, %7.2f) %.2fx%.2f", o.Kind, o.X, o.Y, o.W, o.H)
	}
}

// Page is the record of one finished surface.
type Page struct {
	Size geometry.Page
	Ops  []Op
}

// Texts returns the text of every text op, in draw order.
func (p Page) Texts() []string {
	var out []string
	for _, op := range p.Ops {
		if op.Kind == "text" {
			out = append(out, op.Text)
		}
	}
	return out
}

// Count returns the number of ops of kind.
func (p Page) Count(kind string) int {
	n := 0
	for _, op := range p.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Recorder keeps every finished page in memory. Finish serializes a page as a
// plain-text plan, one instruction per line.
type Recorder struct {
	// FailBackground makes DrawBackground fail for templates of this kind.
	FailBackground *template.Kind

	mu    sync.Mutex
	pages []Page
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (*Recorder) MimeType() string  { return "text/plain; charset=utf-8" }
func (*Recorder) Extension() string { return ".txt" }

// Pages returns the finished pages in completion order.
func (r *Recorder) Pages() []Page {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Page(nil), r.pages...)
}

// NewSurface starts recording a page.
func (r *Recorder) NewSurface(p geometry.Page, set *fonts.Set) (Surface, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("new recorder surface: invalid page %s", p)
	}
	if set == nil || set.Regular == nil {
		return nil, fmt.Errorf("new recorder surface: %w", fonts.ErrNoFont)
	}
	return &recordSurface{rec: r, page: Page{Size: p}}, nil
}

type recordSurface struct {
	rec  *Recorder
	page Page
}

func (s *recordSurface) add(op Op) { s.page.Ops = append(s.page.Ops, op) }

func (s *recordSurface) Size() geometry.Page { return s.page.Size }

func (s *recordSurface) DrawBackground(d *template.Descriptor) error {
	if d == nil || d.Kind == template.KindBlank {
		return nil
	}
	if f := s.rec.FailBackground; f != nil && *f == d.Kind {
		return fmt.Errorf("draw %s: %w", d.Path, ErrUnsupportedBackground)
	}
	s.add(Op{Kind: "background", Text: d.Path, W: s.page.Size.Width, H: s.page.Size.Height})
	return nil
}

func (s *recordSurface) DrawText(str string, x, y float64, st TextStyle) error {
	s.add(Op{Kind: "text", Text: str, X: x, Y: y, Size: st.Size, Bold: st.Bold, Color: Hex(st.Color)})
	return nil
}

func (s *recordSurface) DrawLine(x1, y1, x2, y2, width float64) error {
	s.add(Op{Kind: "line", X: x1, Y: y1, W: x2, H: y2, Size: width})
	return nil
}

func (s *recordSurface) DrawRect(x, y, w, h float64, st RectStyle) error {
	s.add(Op{Kind: "rect", X: x, Y: y, W: w, H: h, Fill: st.Fill, Color: Hex(st.Color)})
	return nil
}

func (s *recordSurface) DrawImage(img image.Image, x, y, w, h float64) error {
	s.add(Op{Kind: "image", X: x, Y: y, W: w, H: h})
	return nil
}

func (s *recordSurface) Finish() ([]byte, error) {
	s.rec.mu.Lock()
	s.rec.pages = append(s.rec.pages, s.page)
	s.rec.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "page %s\n", s.page.Size)
	for _, op := range s.page.Ops {
		b.WriteString(op.String())
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}
