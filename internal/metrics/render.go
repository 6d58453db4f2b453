// Package metrics exposes render outcomes to Prometheus.
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/xob0t/PackStencil/internal/config"
	"github.com/xob0t/PackStencil/pkg/label"
)

// Render counts rendered documents and fallbacks. It implements label.Observer.
type Render struct {
	renders   *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

var _ label.Observer = (*Render)(nil)

var (
	defaultOnce sync.Once
	defaultRend *Render
)

// Default returns the Render metrics registered with the default registerer.
func Default(cfg config.Config) *Render {
	defaultOnce.Do(func() {
		defaultRend = New(prometheus.DefaultRegisterer, cfg)
	})
	return defaultRend
}

// New registers the render metrics with registerer.
func New(registerer prometheus.Registerer, cfg config.Config) *Render {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	env := strings.TrimSpace(cfg.Environment)
	if env == "" {
		env = "unknown"
	}
	constLabels := prometheus.Labels{"service": "packstencil", "env": env}

	m := &Render{
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "packstencil_renders_total",
			Help:        "Label documents rendered, by buyer and variant.",
			ConstLabels: constLabels,
		}, []string{"buyer", "variant"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "packstencil_fallbacks_total",
			Help:        "Fallbacks taken while rendering, by buyer and kind.",
			ConstLabels: constLabels,
		}, []string{"buyer", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "packstencil_render_duration_seconds",
			Help:        "Time to render a full label request.",
			ConstLabels: constLabels,
			Buckets: []float64{
				0.005,
				0.01,
				0.025,
				0.05,
				0.1,
				0.25,
				0.5,
				1,
			},
		}, []string{"buyer"}),
	}
	registerer.MustRegister(m.renders, m.fallbacks, m.duration)
	return m
}

func (m *Render) Rendered(buyer, variant string) {
	m.renders.WithLabelValues(buyer, variant).Inc()
}

func (m *Render) Fallback(buyer, kind string) {
	m.fallbacks.WithLabelValues(buyer, kind).Inc()
}

func (m *Render) Observe(buyer string, d time.Duration) {
	m.duration.WithLabelValues(buyer).Observe(d.Seconds())
}

// Module provides the default Render metrics as a label.Observer.
var Module = fx.Module("metrics",
	fx.Provide(
		Default,
		func(m *Render) label.Observer { return m },
	),
)
