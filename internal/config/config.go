// Package config loads process settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/fx"
)

// Config is the process configuration. Command-line flags override it.
type Config struct {
	// Environment is "development" or "production".
	Environment string
	// Addr is the HTTP listen address of packstencil serve.
	Addr string

	// Assets is a directory or .zip bundle holding templates/ and fonts/.
	Assets string
	// Font and FontBold are preferred font paths inside the asset store.
	Font     string
	FontBold string

	PreviewDPI float64

	LogLevel  string
	LogFormat string

	// NodeID numbers this instance for request IDs.
	NodeID int64
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Environment: "development",
		Addr:        ":8080",
		Assets:      "assets",
		PreviewDPI:  150,
		LogLevel:    "info",
		LogFormat:   "console",
		NodeID:      1,
	}
}

// Load reads the environment on top of the defaults.
func Load() Config {
	return FromLookup(os.LookupEnv)
}

// FromLookup reads settings through lookup, which has the signature of os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) Config {
	cfg := DefaultConfig()
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("APP_ENV", &cfg.Environment)
	str("PACKSTENCIL_ADDR", &cfg.Addr)
	str("PACKSTENCIL_ASSETS", &cfg.Assets)
	str("PACKSTENCIL_FONT", &cfg.Font)
	str("PACKSTENCIL_FONT_BOLD", &cfg.FontBold)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)

	if v, ok := lookup("PACKSTENCIL_PREVIEW_DPI"); ok {
		if dpi, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && dpi > 0 {
			cfg.PreviewDPI = dpi
		}
	}
	if v, ok := lookup("PACKSTENCIL_NODE_ID"); ok {
		if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && id >= 0 {
			cfg.NodeID = id
		}
	}

	if cfg.Environment == "production" && cfg.LogFormat == "console" {
		if _, set := lookup("LOG_FORMAT"); !set {
			cfg.LogFormat = "json"
		}
	}
	return cfg
}

// Production reports whether the process runs in production.
func (c Config) Production() bool { return c.Environment == "production" }

// Module provides the environment configuration.
var Module = fx.Module("config",
	fx.Provide(Load),
)
