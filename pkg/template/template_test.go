package template

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"
	"testing"

	"github.com/signintech/gopdf"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xob0t/PackStencil/pkg/assets"
	"github.com/xob0t/PackStencil/pkg/geometry"
)

func pdfFixture(t *testing.T, w, h float64) []byte {
	t.Helper()
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: gopdf.Rect{W: w, H: h}})
	pdf.AddPage()
	pdf.SetLineWidth(1)
	pdf.Line(10, 10, w-10, h-10)

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		t.Fatalf("write pdf fixture: %v", err)
	}
	return buf.Bytes()
}

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png fixture: %v", err)
	}
	return buf.Bytes()
}

var testNaming = Naming{
	Dir:        "templates/nordmarkt",
	Suffixes:   []string{"nordmarkt", "nm"},
	Separators: []string{"_", "-"},
	Defaults:   []string{"nordmarkt", "default"},
	Extensions: []string{".pdf", ".png"},
}

func TestCandidatesOrder(t *testing.T) {
	got := Candidates("custom/override.pdf", "pepino", testNaming)

	want := []string{
		"custom/override.pdf",
		"templates/nordmarkt/pepino_nordmarkt.pdf",
		"templates/nordmarkt/pepino_nordmarkt.png",
		"templates/nordmarkt/pepino-nordmarkt.pdf",
		"templates/nordmarkt/pepino-nordmarkt.png",
		"templates/nordmarkt/pepino_nm.pdf",
		"templates/nordmarkt/pepino_nm.png",
		"templates/nordmarkt/pepino-nm.pdf",
		"templates/nordmarkt/pepino-nm.png",
		"templates/nordmarkt/pepino.pdf",
		"templates/nordmarkt/pepino.png",
		"templates/nordmarkt/nordmarkt.pdf",
		"templates/nordmarkt/nordmarkt.png",
		"templates/nordmarkt/default.pdf",
		"templates/nordmarkt/default.png",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidate %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestCandidatesWithoutProduct(t *testing.T) {
	got := Candidates("", "", Naming{Dir: "templates/generic", Defaults: []string{"generic"}})
	if len(got) != len(DefaultExtensions) || got[0] != "templates/generic/generic.pdf" {
		t.Fatalf("unexpected candidates %v", got)
	}
}

func TestResolvePrefersProductTemplate(t *testing.T) {
	store := assets.NewMemStore()
	store.Add("templates/nordmarkt/nordmarkt.pdf", pdfFixture(t, 300, 200))
	store.Add("templates/nordmarkt/pepino-nm.png", pngFixture(t, 600, 300))

	r := NewResolver(assets.NewCache(store), nil)

	d := r.Resolve("", "pepino", testNaming)
	if d == nil {
		t.Fatal("expected a template")
	}
	if d.Path != "templates/nordmarkt/pepino-nm.png" || d.Kind != KindRaster {
		t.Fatalf("expected product raster template, got %s (%s)", d.Path, d.Kind)
	}
	// 600x300 px at 300 DPI is 144x72 pt.
	if math.Abs(d.Width-144) > 1e-9 || math.Abs(d.Height-72) > 1e-9 {
		t.Fatalf("expected 144x72, got %vx%v", d.Width, d.Height)
	}

	d = r.Resolve("", "calabacin", testNaming)
	if d == nil || d.Path != "templates/nordmarkt/nordmarkt.pdf" || d.Kind != KindVector {
		t.Fatalf("expected buyer default vector template, got %+v", d)
	}
	if math.Abs(d.Width-300) > 0.01 || math.Abs(d.Height-200) > 0.01 {
		t.Fatalf("expected 300x200, got %vx%v", d.Width, d.Height)
	}
}

func TestResolveMissingIsNil(t *testing.T) {
	r := NewResolver(assets.NewCache(assets.NewMemStore()), nil)
	if d := r.Resolve("nope.pdf", "pepino", testNaming); d != nil {
		t.Fatalf("expected nil descriptor, got %+v", d)
	}
}

func TestResolveSkipsCorruptCandidate(t *testing.T) {
	store := assets.NewMemStore()
	store.Add("templates/nordmarkt/pepino_nordmarkt.pdf", []byte("%PDF-1.4 truncated"))
	store.Add("templates/nordmarkt/default.png", pngFixture(t, 300, 300))

	core, logs := observer.New(zapcore.WarnLevel)
	r := NewResolver(assets.NewCache(store), zap.New(core))

	d := r.Resolve("", "pepino", testNaming)
	if d == nil || d.Path != "templates/nordmarkt/default.png" {
		t.Fatalf("expected fallback to default.png, got %+v", d)
	}
	if logs.FilterMessage("template rejected").Len() != 1 {
		t.Fatalf("expected one rejection warning, got %v", logs.All())
	}

	// The rejection is remembered; a second resolve does not warn again.
	r.Resolve("", "pepino", testNaming)
	if logs.FilterMessage("template rejected").Len() != 1 {
		t.Fatalf("expected probe result to be cached")
	}
}

func TestResolveProbesOncePerPath(t *testing.T) {
	store := assets.NewMemStore()
	store.Add("templates/nordmarkt/pepino_nordmarkt.pdf", []byte("%PDF-1.4 truncated"))
	store.Add("templates/nordmarkt/default.png", pngFixture(t, 300, 300))

	core, logs := observer.New(zapcore.WarnLevel)
	r := NewResolver(assets.NewCache(store), zap.New(core))

	const workers = 16
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		got   = make([]*Descriptor, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			got[i] = r.Resolve("", "pepino", testNaming)
		}(i)
	}
	close(start)
	wg.Wait()

	for i, d := range got {
		if d == nil || d != got[0] {
			t.Fatalf("expected every caller to share one descriptor, caller %d got %+v", i, d)
		}
	}
	if n := logs.FilterMessage("template rejected").Len(); n != 1 {
		t.Fatalf("expected the corrupt candidate to be probed once, got %d warnings", n)
	}
}

func TestProbeUnknownFormat(t *testing.T) {
	if _, err := Probe("x.bin", []byte("hello"), 0); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestBlank(t *testing.T) {
	d := Blank(geometry.PageMM(100, 60))
	if d.Kind != KindBlank || !d.Synthetic || !d.Page().Valid() {
		t.Fatalf("unexpected blank descriptor %+v", d)
	}
}
