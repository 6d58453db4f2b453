// fonts.go — Font loading with a preferred installed TTF and an embedded fallback.
// Uses golang.org/x/image/font/sfnt for parsing and width measurement. Defaults to the
// Go Regular / Go Bold fonts when the preferred font is missing or unreadable.
package fonts

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/xob0t/PackStencil/pkg/assets"
)

// ErrNoFont means neither the preferred font nor the built-in fallback could be parsed.
// Text cannot be measured or drawn, so the whole request must abort.
var ErrNoFont = errors.New("no usable font")

// Face is a parsed font ready for measurement and embedding.
type Face struct {
	Name string
	Data []byte

	parsed *opentype.Font
}

// Measure returns the advance width of text in points at the given size.
// Safe for concurrent use: each call uses its own sfnt buffer.
func (f *Face) Measure(text string, size float64) float64 {
	if f == nil || f.parsed == nil || text == "" {
		return 0
	}

	var buf sfnt.Buffer
	ppem := fixed.Int26_6(size * 64)

	var width fixed.Int26_6
	for _, r := range text {
		idx, err := f.parsed.GlyphIndex(&buf, r)
		if err != nil {
			continue
		}
		adv, err := f.parsed.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err != nil {
			continue
		}
		width += adv
	}
	return float64(width) / 64
}

// Set holds the faces a document may use.
type Set struct {
	Regular *Face
	Bold    *Face
}

// Face returns the bold face when requested and available, the regular face otherwise.
func (s *Set) Face(bold bool) *Face {
	if bold && s.Bold != nil {
		return s.Bold
	}
	return s.Regular
}

// Provider resolves fonts through the asset cache.
type Provider struct {
	cache *assets.Cache
	log   *zap.Logger

	// Preferred font paths in the asset store; empty means built-in only.
	RegularPath string
	BoldPath    string

	// Built-in fallback data. Defaults to the embedded Go fonts.
	FallbackRegular []byte
	FallbackBold    []byte
}

// NewProvider creates a provider with the embedded Go fonts as fallback.
func NewProvider(cache *assets.Cache, regularPath, boldPath string, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		cache:           cache,
		log:             log,
		RegularPath:     regularPath,
		BoldPath:        boldPath,
		FallbackRegular: goregular.TTF,
		FallbackBold:    gobold.TTF,
	}
}

// Load returns the font set for one request. Only the regular face is required;
// a missing bold face degrades to the regular one.
func (p *Provider) Load() (*Set, error) {
	regular, err := p.load("regular", p.RegularPath, p.FallbackRegular)
	if err != nil {
		return nil, err
	}

	bold, err := p.load("bold", p.BoldPath, p.FallbackBold)
	if err != nil {
		p.log.Warn("bold font unavailable, using regular", zap.Error(err))
		bold = nil
	}

	return &Set{Regular: regular, Bold: bold}, nil
}

func (p *Provider) load(name, preferred string, fallback []byte) (*Face, error) {
	// Try preferred font first
	if preferred != "" && p.cache != nil {
		data, err := p.cache.ReadFile(preferred)
		if err == nil {
			parsed, perr := opentype.Parse(data)
			if perr == nil {
				return &Face{Name: preferred, Data: data, parsed: parsed}, nil
			}
			err = perr
		}
		p.log.Warn("preferred font unreadable, using built-in",
			zap.String("font", name), zap.String("path", preferred), zap.Error(err))
	}

	// Fallback to embedded font
	if len(fallback) == 0 {
		return nil, fmt.Errorf("load %s font: %w", name, ErrNoFont)
	}
	parsed, err := opentype.Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("parse built-in %s font: %v: %w", name, err, ErrNoFont)
	}
	return &Face{Name: "builtin-" + name, Data: fallback, parsed: parsed}, nil
}
