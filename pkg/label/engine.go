// engine.go — Document assembly: template resolution, normalization, layout and drawing.
package label

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xob0t/PackStencil/pkg/assets"
	"github.com/xob0t/PackStencil/pkg/canvas"
	"github.com/xob0t/PackStencil/pkg/fields"
	"github.com/xob0t/PackStencil/pkg/fonts"
	"github.com/xob0t/PackStencil/pkg/layout"
	"github.com/xob0t/PackStencil/pkg/template"
)

// Fallback kinds reported to the Observer.
const (
	FallbackTemplate       = "template"
	FallbackBackground     = "background"
	FallbackDetailTemplate = "detail_template"
	FallbackBarcode        = "barcode"
	FallbackLot            = "lot"
	FallbackWeight         = "weight"
)

// Observer receives render outcomes. internal/metrics implements it.
type Observer interface {
	Rendered(buyer, variant string)
	Fallback(buyer, kind string)
	Observe(buyer string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) Rendered(string, string)        {}
func (nopObserver) Fallback(string, string)        {}
func (nopObserver) Observe(string, time.Duration) {}

// Engine renders label requests. It is safe for concurrent use; the asset cache,
// the parsed fonts and the random source are shared between requests.
type Engine struct {
	catalog  *layout.Catalog
	resolver *template.Resolver
	provider *fonts.Provider
	backend  canvas.Backend
	rnd      fields.Rand
	log      *zap.Logger
	observer Observer

	fontsOnce sync.Once
	fontSet   *fonts.Set
	fontErr   error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger fallbacks are reported to.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRand injects the random source used to generate lots.
func WithRand(r fields.Rand) Option {
	return func(e *Engine) { e.rnd = fields.NewLockedRand(r) }
}

// WithObserver reports renders and fallbacks to o.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithCatalog replaces the built-in buyer catalog.
func WithCatalog(c *layout.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithBackend selects the output format. The default is PDF.
func WithBackend(b canvas.Backend) Option {
	return func(e *Engine) { e.backend = b }
}

// WithFontProvider replaces the built-in-only font provider.
func WithFontProvider(p *fonts.Provider) Option {
	return func(e *Engine) { e.provider = p }
}

// New returns an engine reading templates and fonts through cache.
func New(cache *assets.Cache, opts ...Option) *Engine {
	e := &Engine{
		catalog:  layout.DefaultCatalog(),
		backend:  canvas.NewPDF(),
		log:      zap.NewNop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rnd == nil {
		e.rnd = fields.NewLockedRand(nil)
	}
	if e.provider == nil {
		e.provider = fonts.NewProvider(cache, "", "", e.log)
	}
	e.resolver = template.NewResolver(cache, e.log)
	return e
}

// Catalog returns the engine's buyer catalog.
func (e *Engine) Catalog() *layout.Catalog { return e.catalog }

// Backend returns the engine's output backend.
func (e *Engine) Backend() canvas.Backend { return e.backend }

func (e *Engine) fonts() (*fonts.Set, error) {
	e.fontsOnce.Do(func() {
		e.fontSet, e.fontErr = e.provider.Load()
	})
	return e.fontSet, e.fontErr
}

// Render composes every document of req's buyer, in variant order. Missing
// templates, lots, weights and invalid scan codes fall back silently; only an
// unknown buyer, a missing font and backend failures are errors. ctx is checked
// between documents.
func (e *Engine) Render(ctx context.Context, req Request) ([]Result, error) {
	start := time.Now()

	reg, err := e.catalog.Lookup(req.Buyer)
	if err != nil {
		return nil, err
	}
	set, err := e.fonts()
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", reg.Buyer(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req.Fields = req.Fields.trimmed()
	j := &job{
		e:          e,
		ctx:        ctx,
		req:        req,
		reg:        reg,
		fonts:      set,
		productKey: fields.ProductKey(req.Fields.Product),
		variants:   reg.Variants(),
		log: e.log.With(
			zap.String("buyer", string(reg.Buyer())),
			zap.String("product", req.Fields.Product),
		),
	}

	results, err := j.run()
	if err != nil {
		return nil, err
	}
	e.observer.Observe(string(reg.Buyer()), time.Since(start))
	return results, nil
}

// stage is a step of the per-request state machine.
type stage int

const (
	stageResolvingTemplate stage = iota
	stageNormalizingFields
	stageResolvingLayout
	stageDrawing
	stageDone
)

func (s stage) String() string {
	return [...]string{"resolving template", "normalizing fields", "resolving layout", "drawing", "done"}[s]
}

// job is the state of one Render call.
type job struct {
	e          *Engine
	ctx        context.Context
	req        Request
	reg        layout.Registry
	fonts      *fonts.Set
	productKey string
	variants   []layout.Variant
	log        *zap.Logger

	templates    []*template.Descriptor
	lot          string
	// lotGenerated is set when the caller's lot was missing or unparseable.
	lotGenerated bool

	// Per variant.
	idx     int
	values  map[layout.Field]string
	entries []layout.Entry
	results []Result
}

func (j *job) run() ([]Result, error) {
	st := stageResolvingTemplate
	for st != stageDone {
		switch st {
		case stageResolvingTemplate:
			j.resolveTemplates()
			j.lot, j.lotGenerated = j.normalizeLot()
			st = stageNormalizingFields

		case stageNormalizingFields:
			j.values = j.normalize(j.variants[j.idx])
			st = stageResolvingLayout

		case stageResolvingLayout:
			j.entries = layout.Resolve(j.reg, j.variants[j.idx].Set, j.productKey)
			st = stageDrawing

		case stageDrawing:
			v := j.variants[j.idx]
			res, err := j.draw(v, j.templates[j.idx])
			if err != nil {
				return nil, fmt.Errorf("render %s/%s: %s: %w", j.reg.Buyer(), v.Name, st, err)
			}
			j.results = append(j.results, res)
			j.e.observer.Rendered(string(j.reg.Buyer()), v.Name)

			j.idx++
			if j.idx == len(j.variants) {
				st = stageDone
				break
			}
			if err := j.ctx.Err(); err != nil {
				return nil, err
			}
			st = stageNormalizingFields
		}
	}
	return j.results, nil
}

// resolveTemplates reads every template of the set up front so no asset I/O
// happens once drawing starts.
func (j *job) resolveTemplates() {
	j.templates = make([]*template.Descriptor, len(j.variants))
	for i, v := range j.variants {
		l, ok := j.reg.Layout(v.Set)
		if !ok {
			continue
		}
		switch v.Kind {
		case layout.VariantPrimary:
			j.templates[i] = j.e.resolver.Resolve(j.req.Template, j.productKey, l.Naming)
		case layout.VariantDetail:
			j.templates[i] = j.e.resolver.Resolve("", j.productKey, l.Naming)
		}
	}
}

func (j *job) normalizeLot() (string, bool) {
	lot, generated := j.reg.NormalizeLot(j.req.Fields.Lot, j.req.Fields.PackDate, j.req.Source, j.e.rnd)
	if generated {
		j.log.Info("lot generated", zap.String("raw", j.req.Fields.Lot), zap.String("lot", lot))
		j.e.observer.Fallback(string(j.reg.Buyer()), FallbackLot)
	}
	return lot, generated
}

func (j *job) normalize(v layout.Variant) map[layout.Field]string {
	f := j.req.Fields
	weight := fields.Weight(f.Weight, j.reg.DefaultWeight(j.productKey))
	if f.Weight == "" && j.idx == 0 {
		j.e.observer.Fallback(string(j.reg.Buyer()), FallbackWeight)
	}
	if v.PreferBoxWeight && f.BoxWeight != "" {
		weight = f.BoxWeight
	}

	values := map[layout.Field]string{
		layout.FieldProduct:      f.Product,
		layout.FieldVariety:      f.Variety,
		layout.FieldCategory:     f.Category,
		layout.FieldLot:          j.lot,
		layout.FieldPackDate:     fields.FormatDate(f.PackDate, fields.DateLabel),
		layout.FieldPackDateLong: fields.FormatDate(f.PackDate, fields.DateSummary),
		layout.FieldWeight:       weight,
		layout.FieldBoxWeight:    f.BoxWeight,
		layout.FieldCertA:        f.CertA,
		layout.FieldCertB:        f.CertB,
		layout.FieldBarcode:      f.ScanCode,
	}
	if trace, ok := fields.Traceability(f.CertB, f.CertA); ok {
		values[layout.FieldTrace] = trace
	}
	return values
}

// fileName names the document of variant v. A generated lot never names a file,
// so regenerating the same request gives the same name.
func (j *job) fileName(v layout.Variant) string {
	lot := ""
	if j.req.Fields.Lot != "" && !j.lotGenerated {
		lot = j.lot
	}
	variant := ""
	if len(j.variants) > 1 {
		variant = v.Name
	}
	return FileName(j.req.Source, lot, variant, j.e.backend.Extension())
}
