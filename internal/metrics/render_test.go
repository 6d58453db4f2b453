package metrics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/xob0t/PackStencil/internal/config"
	"github.com/xob0t/PackStencil/pkg/assets"
	"github.com/xob0t/PackStencil/pkg/canvas"
	"github.com/xob0t/PackStencil/pkg/label"
)

func TestRenderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, config.DefaultConfig())

	m.Rendered("casafresca", "main")
	m.Rendered("casafresca", "main")
	m.Fallback("casafresca", label.FallbackTemplate)
	m.Observe("casafresca", 20*time.Millisecond)

	if got := testutil.ToFloat64(m.renders.WithLabelValues("casafresca", "main")); got != 2 {
		t.Fatalf("expected 2 renders, got %v", got)
	}
	if got := testutil.ToFloat64(m.fallbacks.WithLabelValues("casafresca", "template")); got != 1 {
		t.Fatalf("expected 1 fallback, got %v", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 1 {
		t.Fatalf("expected one duration series, got %d", n)
	}
}

func TestRenderObservesEngine(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := config.DefaultConfig()
	cfg.Environment = "test"
	m := New(reg, cfg)

	e := label.New(assets.NewCache(assets.NewMemStore()), label.WithObserver(m), label.WithBackend(canvas.NewRecorder()))
	if _, err := e.Render(context.Background(), label.Request{Buyer: "verdimarket"}); err != nil {
		t.Fatalf("render: %v", err)
	}

	expected := `
# HELP packstencil_renders_total Label documents rendered, by buyer and variant.
# TYPE packstencil_renders_total counter
packstencil_renders_total{buyer="verdimarket",env="test",service="packstencil",variant="compact"} 1
packstencil_renders_total{buyer="verdimarket",env="test",service="packstencil",variant="detail"} 1
packstencil_renders_total{buyer="verdimarket",env="test",service="packstencil",variant="main"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "packstencil_renders_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
	if got := testutil.ToFloat64(m.fallbacks.WithLabelValues("verdimarket", label.FallbackDetailTemplate)); got != 1 {
		t.Fatalf("expected a detail fallback, got %v", got)
	}
}
