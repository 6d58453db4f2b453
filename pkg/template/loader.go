// loader.go — Candidate naming and first-match template resolution.
package template

import (
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/xob0t/PackStencil/pkg/assets"
)

// Candidates returns the ordered asset paths to try: the explicit override, then
// every product key + suffix spelling, then the buyer's generic defaults.
// Duplicates are dropped while preserving order.
func Candidates(override, productKey string, n Naming) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(p string) {
		p = strings.TrimPrefix(path.Clean(p), "/")
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	if override = strings.TrimSpace(override); override != "" {
		add(override)
	}

	if productKey != "" {
		for _, suffix := range n.Suffixes {
			for _, sep := range n.separators() {
				for _, ext := range n.extensions() {
					add(path.Join(n.Dir, productKey+sep+suffix+ext))
				}
			}
		}
		for _, ext := range n.extensions() {
			add(path.Join(n.Dir, productKey+ext))
		}
	}

	for _, base := range n.Defaults {
		for _, ext := range n.extensions() {
			add(path.Join(n.Dir, base+ext))
		}
	}
	return out
}

// Resolver finds the first existing template candidate. Bytes come from the shared
// asset cache; each path is probed once and its descriptor kept.
type Resolver struct {
	cache *assets.Cache
	log   *zap.Logger

	mu     sync.Mutex
	probed map[string]*probeEntry
}

type probeEntry struct {
	once sync.Once
	d    *Descriptor
}

// NewResolver returns a resolver reading through cache. A nil logger is replaced by a no-op.
func NewResolver(cache *assets.Cache, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		cache:  cache,
		log:    log,
		probed: make(map[string]*probeEntry),
	}
}

// Resolve returns the descriptor of the first candidate that exists and probes to a
// usable page, or nil when none does. Missing templates are never an error: the
// caller composes a blank page instead.
func (r *Resolver) Resolve(override, productKey string, n Naming) *Descriptor {
	for _, p := range Candidates(override, productKey, n) {
		if d := r.load(p, n.rasterDPI()); d != nil {
			return d
		}
	}
	return nil
}

// ResolvePath resolves a single asset path, returning nil when it is missing or unusable.
func (r *Resolver) ResolvePath(p string, dpi float64) *Descriptor {
	if dpi <= 0 {
		dpi = DefaultRasterDPI
	}
	return r.load(strings.TrimPrefix(path.Clean(p), "/"), dpi)
}

func (r *Resolver) load(p string, dpi float64) *Descriptor {
	r.mu.Lock()
	e, ok := r.probed[p]
	if !ok {
		e = &probeEntry{}
		r.probed[p] = e
	}
	r.mu.Unlock()

	e.once.Do(func() {
		e.d = r.probe(p, dpi)
	})
	return e.d
}

func (r *Resolver) probe(p string, dpi float64) *Descriptor {
	data, err := r.cache.ReadFile(p)
	if err != nil {
		if !assets.IsNotExist(err) {
			r.log.Warn("template unreadable", zap.String("path", p), zap.Error(err))
		}
		return nil
	}

	d, err := Probe(p, data, dpi)
	if err != nil {
		r.log.Warn("template rejected", zap.String("path", p), zap.Error(err))
		return nil
	}
	return d
}
