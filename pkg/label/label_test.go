package label

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"math"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/signintech/gopdf"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xob0t/PackStencil/pkg/assets"
	"github.com/xob0t/PackStencil/pkg/barcode"
	"github.com/xob0t/PackStencil/pkg/canvas"
	"github.com/xob0t/PackStencil/pkg/fields"
	"github.com/xob0t/PackStencil/pkg/fonts"
	"github.com/xob0t/PackStencil/pkg/geometry"
	"github.com/xob0t/PackStencil/pkg/layout"
	"github.com/xob0t/PackStencil/pkg/template"
)

type countingObserver struct {
	mu        sync.Mutex
	rendered  []string
	fallbacks map[string]int
	observed  int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{fallbacks: make(map[string]int)}
}

func (o *countingObserver) Rendered(buyer, variant string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rendered = append(o.rendered, buyer+"/"+variant)
}

func (o *countingObserver) Fallback(_, kind string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fallbacks[kind]++
}

func (o *countingObserver) Observe(string, time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observed++
}

func pdfTemplate(t *testing.T, w, h float64) []byte {
	t.Helper()
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: gopdf.Rect{W: w, H: h}})
	pdf.AddPage()
	pdf.RectFromUpperLeftWithStyle(4, 4, w-8, h-8, "D")
	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return buf.Bytes()
}

func newRecordingEngine(store *assets.MemStore, opts ...Option) (*Engine, *canvas.Recorder) {
	rec := canvas.NewRecorder()
	opts = append([]Option{WithBackend(rec), WithRand(rand.New(rand.NewSource(1)))}, opts...)
	return New(assets.NewCache(store), opts...), rec
}

func sampleFields() Fields {
	return Fields{
		Product:  "Tomate Cherry",
		Variety:  "Rama",
		Category: "I",
		PackDate: "2024-03-05",
		Lot:      "AB01234",
		Weight:   "1 kg",
	}
}

func TestRenderSingleDocumentPDF(t *testing.T) {
	e := New(assets.NewCache(assets.NewMemStore()))
	res, err := e.Render(context.Background(), Request{Fields: sampleFields(), Source: "pedido.pdf"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(res) != 1 {
		t.Fatalf("expected one document, got %d", len(res))
	}
	r := res[0]
	if r.FileName != "AB01234-label.pdf" || r.MimeType != "application/pdf" || r.Variant != "label" {
		t.Fatalf("unexpected result %q %q %q", r.FileName, r.MimeType, r.Variant)
	}
	w, h, err := template.PDFPageSize(r.Bytes)
	want := geometry.PageMM(105, 70)
	if err != nil || math.Abs(w-want.Width) > 0.01 || math.Abs(h-want.Height) > 0.01 {
		t.Fatalf("expected blank page %s, got %vx%v (%v)", want, w, h, err)
	}
}

func TestRenderDocumentSets(t *testing.T) {
	tests := []struct {
		buyer string
		want  []string
	}{
		{"", []string{"AB01234-label.txt"}},
		{"nordmarkt", []string{"AB01234-label.txt"}},
		{"alvora", []string{"10-05-label.txt"}},
		{"casafresca", []string{"AB01234_main-label.txt", "AB01234_compact-label.txt", "AB01234_detail-label.txt"}},
		{"VerdiMarket", []string{"AB01234_main-label.txt", "AB01234_compact-label.txt", "AB01234_detail-label.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.buyer, func(t *testing.T) {
			obs := newCountingObserver()
			e, rec := newRecordingEngine(assets.NewMemStore(), WithObserver(obs))
			res, err := e.Render(context.Background(), Request{Buyer: tt.buyer, Fields: sampleFields()})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			var got []string
			for _, r := range res {
				got = append(got, r.FileName)
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if len(rec.Pages()) != len(tt.want) || len(obs.rendered) != len(tt.want) || obs.observed != 1 {
				t.Fatalf("expected %d pages, got %d pages, %d rendered, %d observed",
					len(tt.want), len(rec.Pages()), len(obs.rendered), obs.observed)
			}
		})
	}
}

func TestRenderMissingTemplateDrawsBlankLabel(t *testing.T) {
	obs := newCountingObserver()
	e, rec := newRecordingEngine(assets.NewMemStore(), WithObserver(obs))
	if _, err := e.Render(context.Background(), Request{Buyer: "generic"}); err != nil {
		t.Fatalf("render: %v", err)
	}

	p := rec.Pages()[0]
	if p.Size != geometry.PageMM(105, 70) || p.Count("background") != 0 {
		t.Fatalf("expected a blank 105x70mm page, got %s with %d backgrounds", p.Size, p.Count("background"))
	}
	texts := p.Texts()
	for _, want := range []string{"PRODUCT", "LOT", "NO PRODUCT", "NO DATE", "1 kg"} {
		if !slices.Contains(texts, want) {
			t.Fatalf("expected %q in %v", want, texts)
		}
	}
	if obs.fallbacks[FallbackTemplate] != 1 || obs.fallbacks[FallbackLot] != 1 || obs.fallbacks[FallbackWeight] != 1 {
		t.Fatalf("unexpected fallbacks %v", obs.fallbacks)
	}
}

func TestRenderOnProductTemplate(t *testing.T) {
	store := assets.NewMemStore()
	store.Add("templates/nordmarkt/tomate_cherry_nordmarkt.pdf", pdfTemplate(t, 300, 200))
	e, rec := newRecordingEngine(store)

	f := sampleFields()
	f.Weight = ""
	if _, err := e.Render(context.Background(), Request{Buyer: "nordmarkt", Fields: f}); err != nil {
		t.Fatalf("render: %v", err)
	}
	p := rec.Pages()[0]
	if math.Abs(p.Size.Width-300) > 0.01 || math.Abs(p.Size.Height-200) > 0.01 || p.Count("background") != 1 {
		t.Fatalf("expected the template page, got %s with %d backgrounds", p.Size, p.Count("background"))
	}
	texts := p.Texts()
	if slices.Contains(texts, "LOT") {
		t.Fatalf("captions must not be drawn over a template: %v", texts)
	}
	if !slices.Contains(texts, "250 g") {
		t.Fatalf("expected the product default weight in %v", texts)
	}
}

func TestRenderSuppression(t *testing.T) {
	e, rec := newRecordingEngine(assets.NewMemStore())
	f := sampleFields()
	f.Product = "Pimiento California"
	f.CertA = "4063061591012"
	f.CertB = "CoC-4052"
	if _, err := e.Render(context.Background(), Request{Buyer: "nordmarkt", Fields: f}); err != nil {
		t.Fatalf("render: %v", err)
	}

	texts := rec.Pages()[0].Texts()
	if !slices.Contains(texts, "GGN 4063061591012") || !slices.Contains(texts, "T00004052") {
		t.Fatalf("expected certificate and traceability in %v", texts)
	}
	for _, banned := range []string{"CoC CoC-4052", "1 kg"} {
		if slices.Contains(texts, banned) {
			t.Fatalf("expected %q to be suppressed, got %v", banned, texts)
		}
	}
}

func TestRenderBarcode(t *testing.T) {
	sym, _ := barcode.Encode("400638133393")

	tests := []struct {
		name     string
		code     string
		wantRuns int
		fallback int
	}{
		{"valid", "400638133393", len(sym.Runs()), 0},
		{"with check digit", "4006381333931", len(sym.Runs()), 0},
		{"wrong check digit", "4006381333939", 0, 1},
		{"invalid", "40063813", 0, 1},
		{"absent", "", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := newCountingObserver()
			e, rec := newRecordingEngine(assets.NewMemStore(), WithObserver(obs))
			f := sampleFields()
			f.ScanCode = tt.code
			if _, err := e.Render(context.Background(), Request{Fields: f}); err != nil {
				t.Fatalf("render: %v", err)
			}

			p := rec.Pages()[0]
			fills := 0
			for _, op := range p.Ops {
				if op.Kind == "rect" && op.Fill {
					fills++
				}
			}
			if fills != tt.wantRuns || obs.fallbacks[FallbackBarcode] != tt.fallback {
				t.Fatalf("expected %d bars and %d fallbacks, got %d and %d", tt.wantRuns, tt.fallback, fills, obs.fallbacks[FallbackBarcode])
			}
			if tt.wantRuns > 0 && !slices.Contains(p.Texts(), "4006381333931") {
				t.Fatalf("expected human-readable digits in %v", p.Texts())
			}
		})
	}
}

func TestRenderCompactLabel(t *testing.T) {
	tests := []struct {
		buyer string
		want  string
	}{
		{"casafresca", "TOMATE CHERRY 1 KG"},
		{"verdimarket", "TOMATE CHERRY 5 KG"},
	}
	for _, tt := range tests {
		t.Run(tt.buyer, func(t *testing.T) {
			e, rec := newRecordingEngine(assets.NewMemStore())
			f := sampleFields()
			f.BoxWeight = "5 kg"
			if _, err := e.Render(context.Background(), Request{Buyer: tt.buyer, Fields: f}); err != nil {
				t.Fatalf("render: %v", err)
			}
			p := rec.Pages()[1]
			if texts := p.Texts(); len(texts) != 1 || texts[0] != tt.want {
				t.Fatalf("expected %q, got %v", tt.want, texts)
			}
			if p.Count("line") != 1 {
				t.Fatalf("expected an underline, got %v", p.Ops)
			}
			if op := p.Ops[0]; !op.Bold || op.X <= 0 {
				t.Fatalf("expected bold text on the page, got %v", op)
			}
		})
	}
}

func TestRenderDetailBoxGrid(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	obs := newCountingObserver()
	e, rec := newRecordingEngine(assets.NewMemStore(), WithObserver(obs), WithLogger(zap.New(core)))

	f := sampleFields()
	f.CertB = "CoC-4052"
	if _, err := e.Render(context.Background(), Request{Buyer: "casafresca", Fields: f}); err != nil {
		t.Fatalf("render: %v", err)
	}

	p := rec.Pages()[2]
	if p.Size != geometry.PageMM(80, 50) || p.Count("background") != 0 {
		t.Fatalf("expected a blank detail page, got %s", p.Size)
	}
	texts := p.Texts()
	for _, want := range []string{"Lot", "AB01234", "Category", "I", "Traceability", "T00004052", "Packed", "05/03/2024"} {
		if !slices.Contains(texts, want) {
			t.Fatalf("expected %q in %v", want, texts)
		}
	}
	if p.Count("rect") != 1 || p.Count("line") < 2 {
		t.Fatalf("expected a bordered grid, got %v", p.Ops)
	}
	if obs.fallbacks[FallbackDetailTemplate] != 1 {
		t.Fatalf("expected one detail fallback, got %v", obs.fallbacks)
	}
	if logs.FilterMessage("no detail template found, drawing box grid").Len() != 1 {
		t.Fatalf("expected the fallback to be logged, got %v", logs.All())
	}
}

func TestRenderDetailTemplate(t *testing.T) {
	store := assets.NewMemStore()
	store.Add("templates/verdimarket/detail.pdf", pdfTemplate(t, geometry.MM(90), geometry.MM(50)))

	t.Run("drawn on template", func(t *testing.T) {
		obs := newCountingObserver()
		e, rec := newRecordingEngine(store, WithObserver(obs))
		if _, err := e.Render(context.Background(), Request{Buyer: "verdimarket", Fields: sampleFields()}); err != nil {
			t.Fatalf("render: %v", err)
		}
		p := rec.Pages()[2]
		if p.Count("background") != 1 || !slices.Contains(p.Texts(), "Lot: AB01234") {
			t.Fatalf("expected detail entries over the template, got %v", p.Ops)
		}
		if obs.fallbacks[FallbackDetailTemplate] != 0 {
			t.Fatalf("unexpected fallbacks %v", obs.fallbacks)
		}
	})

	t.Run("template fails", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		obs := newCountingObserver()
		kind := template.KindVector
		rec := &canvas.Recorder{FailBackground: &kind}
		e := New(assets.NewCache(store), WithBackend(rec), WithObserver(obs), WithLogger(zap.New(core)))
		if _, err := e.Render(context.Background(), Request{Buyer: "verdimarket", Fields: sampleFields()}); err != nil {
			t.Fatalf("render: %v", err)
		}
		p := rec.Pages()[2]
		if p.Count("background") != 0 || !slices.Contains(p.Texts(), "Lot") {
			t.Fatalf("expected the box grid, got %v", p.Ops)
		}
		if obs.fallbacks[FallbackDetailTemplate] != 1 || logs.FilterMessage("detail template failed, drawing box grid").Len() != 1 {
			t.Fatalf("expected a logged detail fallback, got %v", obs.fallbacks)
		}
	})
}

func TestRenderBackgroundFallback(t *testing.T) {
	store := assets.NewMemStore()
	store.Add("templates/generic/default.pdf", pdfTemplate(t, 300, 200))
	obs := newCountingObserver()

	preview := canvas.NewPreview(72)
	defer preview.Close()
	e := New(assets.NewCache(store), WithBackend(preview), WithObserver(obs))
	res, err := e.Render(context.Background(), Request{Fields: sampleFields()})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(res[0].Bytes))
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if img.Bounds().Dx() == 300 {
		t.Fatalf("expected the blank page instead of the template size")
	}
	if obs.fallbacks[FallbackBackground] != 1 || res[0].MimeType != "image/png" || !strings.HasSuffix(res[0].FileName, ".png") {
		t.Fatalf("unexpected preview result %v %q %q", obs.fallbacks, res[0].MimeType, res[0].FileName)
	}
}

func TestRenderLots(t *testing.T) {
	tests := []struct {
		name     string
		buyer    string
		lot      string
		date     string
		wantFile string
		wantLot  string
	}{
		{"canonical", "generic", "AB01234", "", "AB01234-label.txt", "AB01234"},
		{"legacy", "generic", "ab1234", "", "AB01234-label.txt", "AB01234"},
		{"week and day", "alvora", "10/5", "", "10-05-label.txt", "10/05"},
		{"from pack date", "alvora", "", "2024-03-05", "LABEL_pedido_0412-label.txt", "10/05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, rec := newRecordingEngine(assets.NewMemStore())
			res, err := e.Render(context.Background(), Request{
				Buyer:  tt.buyer,
				Source: "pedido_0412.pdf",
				Fields: Fields{Lot: tt.lot, PackDate: tt.date},
			})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if res[0].FileName != tt.wantFile {
				t.Fatalf("expected %q, got %q", tt.wantFile, res[0].FileName)
			}
			if !slices.Contains(rec.Pages()[0].Texts(), tt.wantLot) {
				t.Fatalf("expected lot %q in %v", tt.wantLot, rec.Pages()[0].Texts())
			}
		})
	}
}

func TestRenderGeneratedLotIsDeterministic(t *testing.T) {
	lotOf := func() string {
		e, rec := newRecordingEngine(assets.NewMemStore())
		res, err := e.Render(context.Background(), Request{Buyer: "casafresca", Source: "pedido.pdf"})
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if res[0].FileName != "LABEL_pedido_main-label.txt" {
			t.Fatalf("expected the source name, got %q", res[0].FileName)
		}
		for _, s := range rec.Pages()[0].Texts() {
			if fields.IsCanonicalLot(s) {
				return s
			}
		}
		t.Fatalf("no generated lot in %v", rec.Pages()[0].Texts())
		return ""
	}

	first, second := lotOf(), lotOf()
	if first != second || !strings.HasPrefix(first, "PE") {
		t.Fatalf("expected the same PE lot twice, got %q and %q", first, second)
	}
}

func TestRenderUnparseableLotKeepsSourceName(t *testing.T) {
	nameWithSeed := func(seed int64) (string, string) {
		e, rec := newRecordingEngine(assets.NewMemStore(), WithRand(rand.New(rand.NewSource(seed))))
		res, err := e.Render(context.Background(), Request{
			Buyer:  "generic",
			Source: "order_17.pdf",
			Fields: Fields{Lot: "??"},
		})
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		lot := ""
		for _, s := range rec.Pages()[0].Texts() {
			if fields.IsCanonicalLot(s) {
				lot = s
			}
		}
		return res[0].FileName, lot
	}

	first, lotA := nameWithSeed(1)
	second, lotB := nameWithSeed(2)
	if first != second || first != "LABEL_order_17-label.txt" {
		t.Fatalf("expected the same source name twice, got %q and %q", first, second)
	}
	if lotA == "" || lotB == "" {
		t.Fatalf("expected a generated lot on both labels, got %q and %q", lotA, lotB)
	}
}

func TestRenderErrors(t *testing.T) {
	t.Run("unknown buyer", func(t *testing.T) {
		e, _ := newRecordingEngine(assets.NewMemStore())
		if _, err := e.Render(context.Background(), Request{Buyer: "nobody"}); !errors.Is(err, layout.ErrUnknownBuyer) {
			t.Fatalf("expected ErrUnknownBuyer, got %v", err)
		}
	})

	t.Run("no font", func(t *testing.T) {
		cache := assets.NewCache(assets.NewMemStore())
		p := fonts.NewProvider(cache, "fonts/missing.ttf", "", nil)
		p.FallbackRegular = nil
		e := New(cache, WithFontProvider(p))
		if _, err := e.Render(context.Background(), Request{Fields: sampleFields()}); !errors.Is(err, fonts.ErrNoFont) {
			t.Fatalf("expected ErrNoFont, got %v", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		e, rec := newRecordingEngine(assets.NewMemStore())
		if _, err := e.Render(ctx, Request{Buyer: "casafresca"}); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(rec.Pages()) != 0 {
			t.Fatalf("expected nothing drawn, got %d pages", len(rec.Pages()))
		}
	})
}

func TestRenderConcurrent(t *testing.T) {
	e, rec := newRecordingEngine(assets.NewMemStore())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.Render(context.Background(), Request{Buyer: "verdimarket", Fields: sampleFields()}); err != nil {
				t.Errorf("render: %v", err)
			}
		}()
	}
	wg.Wait()
	if got := len(rec.Pages()); got != 24 {
		t.Fatalf("expected 24 pages, got %d", got)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		source, lot, variant, ext string
		want                      string
	}{
		{"pedido.pdf", "AB01234", "", ".pdf", "AB01234-label.pdf"},
		{"pedido.pdf", "10/05", "detail", ".pdf", "10-05_detail-label.pdf"},
		{"orders/pedido 12.xlsx", "", "", ".pdf", "LABEL_pedido_12-label.pdf"},
		{`C:\orders\LABEL_x.pdf`, "", "compact", ".png", "LABEL_x_compact-label.png"},
		{"", "", "", ".pdf", "LABEL-label.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FileName(tt.source, tt.lot, tt.variant, tt.ext); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	c := layout.DefaultCatalog()
	if w := Validate(Request{Buyer: "nordmarkt", Fields: sampleFields()}, c); len(w) != 0 {
		t.Fatalf("expected no warnings, got %v", w)
	}

	w := Validate(Request{Buyer: "nobody", Fields: Fields{
		PackDate: "soon",
		Lot:      "X1",
		ScanCode: "123",
		CertA:    "none",
	}}, c)
	if len(w) != 6 {
		t.Fatalf("expected 6 warnings, got %d: %v", len(w), w)
	}
}

func TestParseRequests(t *testing.T) {
	reqs, err := ParseRequests([]byte(ExampleRequestJSON()))
	if err != nil {
		t.Fatalf("parse example: %v", err)
	}
	if len(reqs) != 1 || reqs[0].Buyer != "nordmarkt" || reqs[0].Fields.ScanCode != "400638133393" {
		t.Fatalf("unexpected example request %+v", reqs)
	}

	reqs, err = ParseRequests([]byte(`[{"buyer":"alvora"},{"buyer":"casafresca","fields":{"lot":"AB01234"}}]`))
	if err != nil || len(reqs) != 2 || reqs[1].Fields.Lot != "AB01234" {
		t.Fatalf("unexpected batch %+v (%v)", reqs, err)
	}

	if _, err := ParseRequests([]byte("  ")); err == nil {
		t.Fatal("expected an error for empty input")
	}
	if _, err := ParseRequests([]byte("{")); err == nil {
		t.Fatal("expected an error for malformed input")
	}
}
