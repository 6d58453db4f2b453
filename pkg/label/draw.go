// draw.go — Page composition for the three variant kinds.
package label

import (
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/xob0t/PackStencil/pkg/barcode"
	"github.com/xob0t/PackStencil/pkg/canvas"
	"github.com/xob0t/PackStencil/pkg/fonts"
	"github.com/xob0t/PackStencil/pkg/geometry"
	"github.com/xob0t/PackStencil/pkg/layout"
	"github.com/xob0t/PackStencil/pkg/template"
)

const (
	// compactFill is the share of the page width the compact line may use.
	compactFill = 0.9
	// compactMinSize stops shrinking the compact line.
	compactMinSize = 6.0
	// gridMargin and gridRowPad shape the detail box grid.
	gridMargin = 8.0
	gridRowPad = 0.35
)

// errNoLayout is returned when a registry lists a variant without a layout for its set.
var errNoLayout = errors.New("no layout for set")

func (j *job) draw(v layout.Variant, tpl *template.Descriptor) (Result, error) {
	l, ok := j.reg.Layout(v.Set)
	if !ok {
		return Result{}, errNoLayout
	}

	var (
		out []byte
		err error
	)
	switch v.Kind {
	case layout.VariantCompact:
		out, err = j.drawCompact(l)
	case layout.VariantDetail:
		out, err = j.drawDetail(l, tpl)
	default:
		out, err = j.drawPrimary(l, tpl)
	}
	if err != nil {
		return Result{}, err
	}
	return Result{
		Bytes:    out,
		FileName: j.fileName(v),
		MimeType: j.e.backend.MimeType(),
		Variant:  v.Name,
	}, nil
}

// background opens a surface for tpl and places it. A template the backend cannot
// place is replaced by a blank page of the layout's size.
func (j *job) background(l layout.Layout, tpl *template.Descriptor) (canvas.Surface, *template.Descriptor, error) {
	s, err := j.e.backend.NewSurface(tpl.Page(), j.fonts)
	if err != nil {
		return nil, nil, err
	}
	err = s.DrawBackground(tpl)
	if err == nil {
		return s, tpl, nil
	}
	j.log.Warn("template background failed, using blank page", zap.String("template", tpl.Path), zap.Error(err))
	j.e.observer.Fallback(string(j.reg.Buyer()), FallbackBackground)

	// The failed surface is discarded.
	blank := template.Blank(l.Blank)
	s, err = j.e.backend.NewSurface(blank.Page(), j.fonts)
	if err != nil {
		return nil, nil, err
	}
	return s, blank, nil
}

func (j *job) drawPrimary(l layout.Layout, tpl *template.Descriptor) ([]byte, error) {
	if tpl == nil {
		j.log.Info("no template found, drawing blank label")
		j.e.observer.Fallback(string(j.reg.Buyer()), FallbackTemplate)
		tpl = template.Blank(l.Blank)
	}
	s, tpl, err := j.background(l, tpl)
	if err != nil {
		return nil, err
	}
	if err := j.drawEntries(s, l, tpl.Synthetic); err != nil {
		return nil, err
	}
	return s.Finish()
}

func (j *job) drawEntries(c canvas.Canvas, l layout.Layout, synthetic bool) error {
	for _, e := range j.entries {
		if e.Field == layout.FieldBarcode {
			if err := j.drawBarcode(c, l, e); err != nil {
				return err
			}
			continue
		}
		text := j.entryText(e)
		if text == "" || (e.BlankOnly && !synthetic) {
			continue
		}
		x, y := l.ToPage(e.Unit, c.Size(), e.X, e.Y)
		if err := j.drawText(c, text, x, y, e); err != nil {
			return err
		}
	}
	return nil
}

// entryText is the string an entry prints, or "" when it prints nothing.
func (j *job) entryText(e layout.Entry) string {
	if e.Static() {
		return e.Text
	}
	v := j.values[e.Field]
	if v == "" {
		v = e.Placeholder
	}
	if v == "" {
		return ""
	}
	return e.Prefix + v
}

func (j *job) drawText(c canvas.Canvas, text string, x, y float64, e layout.Entry) error {
	w := j.fonts.Face(e.Bold).Measure(text, e.FontSize)
	return c.DrawText(text, geometry.AlignOrigin(x, w, e.Align), y, canvas.TextStyle{
		Size:  e.FontSize,
		Bold:  e.Bold,
		Color: canvas.ParseHexRGBA(e.Color),
	})
}

// drawBarcode fills the entry's box with the symbol's bars and prints the 13 digits
// underneath. An invalid scan code omits the barcode.
func (j *job) drawBarcode(c canvas.Canvas, l layout.Layout, e layout.Entry) error {
	raw := j.values[layout.FieldBarcode]
	if raw == "" {
		return nil
	}
	sym, ok := barcode.Encode(raw)
	if !ok {
		j.log.Info("invalid scan code, barcode omitted", zap.String("scanCode", raw))
		j.e.observer.Fallback(string(j.reg.Buyer()), FallbackBarcode)
		return nil
	}

	p := c.Size()
	x1, y1 := l.ToPage(e.Unit, p, e.X, e.Y)
	x2, y2 := l.ToPage(e.Unit, p, e.X+e.W, e.Y+e.H)
	left, right := math.Min(x1, x2), math.Max(x1, x2)
	bottom, top := math.Min(y1, y2), math.Max(y1, y2)

	size := e.FontSize
	if size <= 0 {
		size = 8
	}
	barsBottom := bottom + size*1.2
	if barsBottom >= top {
		barsBottom = bottom
	}
	module := (right - left) / barcode.Modules
	for _, run := range sym.Runs() {
		x := left + float64(run[0])*module
		w := float64(run[1]) * module
		if err := c.DrawRect(x, barsBottom, w, top-barsBottom, canvas.RectStyle{Fill: true, NoStroke: true, Color: canvas.Black}); err != nil {
			return err
		}
	}

	digits := sym.Digits
	dw := j.fonts.Face(false).Measure(digits, size)
	return c.DrawText(digits, (left+right-dw)/2, bottom, canvas.TextStyle{Size: size, Color: canvas.Black})
}

// drawCompact prints "PRODUCT WEIGHT" bold and centred on a blank page, shrinking
// the size until it fits, and underlines it.
func (j *job) drawCompact(l layout.Layout) ([]byte, error) {
	s, err := j.e.backend.NewSurface(l.Blank, j.fonts)
	if err != nil {
		return nil, err
	}

	e := layout.Entry{Field: layout.FieldProduct, FontSize: 20, Bold: true}
	if len(j.entries) > 0 {
		e = j.entries[0]
	}
	product := j.values[layout.FieldProduct]
	if product == "" {
		product = "NO PRODUCT"
	}
	text := strings.ToUpper(strings.TrimSpace(product + " " + j.values[layout.FieldWeight]))

	p := s.Size()
	face := j.fonts.Face(true)
	size := e.FontSize
	w := face.Measure(text, size)
	if limit := p.Width * compactFill; w > limit {
		size = math.Max(compactMinSize, size*limit/w)
		w = face.Measure(text, size)
	}

	x := (p.Width - w) / 2
	y := (p.Height - size*0.7) / 2
	st := canvas.TextStyle{Size: size, Bold: true, Color: canvas.ParseHexRGBA(e.Color)}
	if err := s.DrawText(text, x, y, st); err != nil {
		return nil, err
	}
	if err := s.DrawLine(x, y-size*0.2, x+w, y-size*0.2, math.Max(0.5, size/20)); err != nil {
		return nil, err
	}
	return s.Finish()
}

// drawDetail draws the detail entries on the secondary template. When it is missing
// or cannot be drawn the values are laid out in a bordered box grid instead.
func (j *job) drawDetail(l layout.Layout, tpl *template.Descriptor) ([]byte, error) {
	if tpl != nil {
		out, err := j.drawOnTemplate(l, tpl)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, fonts.ErrNoFont) {
			return nil, err
		}
		j.log.Warn("detail template failed, drawing box grid", zap.String("template", tpl.Path), zap.Error(err))
	} else {
		j.log.Info("no detail template found, drawing box grid")
	}
	j.e.observer.Fallback(string(j.reg.Buyer()), FallbackDetailTemplate)
	return j.drawBoxGrid(l)
}

func (j *job) drawOnTemplate(l layout.Layout, tpl *template.Descriptor) ([]byte, error) {
	s, err := j.e.backend.NewSurface(tpl.Page(), j.fonts)
	if err != nil {
		return nil, err
	}
	if err := s.DrawBackground(tpl); err != nil {
		return nil, err
	}
	if err := j.drawEntries(s, l, false); err != nil {
		return nil, err
	}
	return s.Finish()
}

// gridRow is one label/value pair of the box grid.
type gridRow struct {
	label, value string
	bold         bool
}

func (j *job) gridRows() []gridRow {
	var rows []gridRow
	for _, e := range j.entries {
		if e.Static() || e.Field == layout.FieldBarcode {
			continue
		}
		v := j.values[e.Field]
		if v == "" {
			v = e.Placeholder
		}
		if v == "" {
			continue
		}
		rows = append(rows, gridRow{label: e.Field.Label(), value: v, bold: e.Bold})
	}
	return rows
}

// drawBoxGrid draws a bordered table of the detail values using primitives only.
func (j *job) drawBoxGrid(l layout.Layout) ([]byte, error) {
	s, err := j.e.backend.NewSurface(l.Blank, j.fonts)
	if err != nil {
		return nil, err
	}
	rows := j.gridRows()
	p := s.Size()

	x0, y0 := gridMargin, gridMargin
	w, h := p.Width-2*gridMargin, p.Height-2*gridMargin
	if err := s.DrawRect(x0, y0, w, h, canvas.RectStyle{LineWidth: 1, Color: canvas.Black}); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return s.Finish()
	}

	rowH := h / float64(len(rows))
	size := math.Min(10, rowH*(1-gridRowPad))
	labelW := w * 0.35
	if err := s.DrawLine(x0+labelW, y0, x0+labelW, y0+h, 0.5); err != nil {
		return nil, err
	}

	for i, r := range rows {
		top := y0 + h - float64(i)*rowH
		if i > 0 {
			if err := s.DrawLine(x0, top, x0+w, top, 0.5); err != nil {
				return nil, err
			}
		}
		baseline := top - rowH/2 - size*0.35
		if err := s.DrawText(r.label, x0+4, baseline, canvas.TextStyle{Size: size * 0.8, Color: canvas.Black}); err != nil {
			return nil, err
		}
		value := fitText(j.fonts.Face(r.bold), r.value, size, w-labelW-8)
		if err := s.DrawText(value, x0+labelW+4, baseline, canvas.TextStyle{Size: size, Bold: r.bold, Color: canvas.Black}); err != nil {
			return nil, err
		}
	}
	return s.Finish()
}

// fitText truncates s with an ellipsis until it is at most width wide.
func fitText(f *fonts.Face, s string, size, width float64) string {
	if f.Measure(s, size) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 1 {
		r = r[:len(r)-1]
		if t := string(r) + "…"; f.Measure(t, size) <= width {
			return t
		}
	}
	return s
}
