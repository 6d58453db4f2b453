// Package session holds the browser client's asset store and the label engines
// built on top of it.
package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/xob0t/PackStencil/pkg/assets"
	"github.com/xob0t/PackStencil/pkg/canvas"
	"github.com/xob0t/PackStencil/pkg/fonts"
	"github.com/xob0t/PackStencil/pkg/label"
)

// Font paths read from the registered assets. The built-in fonts are used when
// they are absent.
const (
	RegularFont = "fonts/regular.ttf"
	BoldFont    = "fonts/bold.ttf"
)

// Engines is the engine pair of one asset snapshot.
type Engines struct {
	Render  *label.Engine
	Preview *label.Engine

	preview *canvas.Preview
}

// Session is an in-memory asset store plus engines reading from it. The asset
// cache remembers misses, so the engines are rebuilt after every change.
type Session struct {
	store *assets.MemStore
	log   *zap.Logger

	mu      sync.Mutex
	engines *Engines
}

// New returns an empty session. A nil logger is replaced by a no-op.
func New(log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{store: assets.NewMemStore(), log: log}
}

// Add stores a template or font under its asset path.
func (s *Session) Add(name string, data []byte) {
	s.store.Add(name, data)
	s.invalidate()
}

// Remove deletes an asset.
func (s *Session) Remove(name string) {
	s.store.Remove(name)
	s.invalidate()
}

// Names lists the registered asset paths.
func (s *Session) Names() []string { return s.store.Names() }

// Engines returns the engines for the current assets, building them on first use.
func (s *Session) Engines() *Engines {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engines == nil {
		cache := assets.NewCache(s.store)
		provider := fonts.NewProvider(cache, RegularFont, BoldFont, s.log)
		preview := canvas.NewPreview(canvas.DefaultPreviewDPI)
		s.engines = &Engines{
			Render: label.New(cache,
				label.WithLogger(s.log),
				label.WithFontProvider(provider),
			),
			Preview: label.New(cache,
				label.WithLogger(s.log),
				label.WithFontProvider(provider),
				label.WithBackend(preview),
			),
			preview: preview,
		}
	}
	return s.engines
}

func (s *Session) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engines == nil {
		return
	}
	if err := s.engines.preview.Close(); err != nil {
		s.log.Warn("close preview backend", zap.Error(err))
	}
	s.engines = nil
}
