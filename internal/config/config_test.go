package config

import "testing"

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg := FromLookup(lookupFrom(nil))
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.Production() {
		t.Fatal("expected development by default")
	}
}

func TestFromEnvironment(t *testing.T) {
	cfg := FromLookup(lookupFrom(map[string]string{
		"APP_ENV":                 "production",
		"PACKSTENCIL_ADDR":        ":9090",
		"PACKSTENCIL_ASSETS":      " /srv/assets.zip ",
		"PACKSTENCIL_FONT":        "fonts/Inter-Regular.ttf",
		"PACKSTENCIL_PREVIEW_DPI": "96",
		"PACKSTENCIL_NODE_ID":     "7",
		"LOG_LEVEL":               "debug",
	}))

	tests := []struct {
		name, got, want string
	}{
		{"addr", cfg.Addr, ":9090"},
		{"assets", cfg.Assets, "/srv/assets.zip"},
		{"font", cfg.Font, "fonts/Inter-Regular.ttf"},
		{"level", cfg.LogLevel, "debug"},
		{"format", cfg.LogFormat, "json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, tt.got)
			}
		})
	}
	if cfg.PreviewDPI != 96 || cfg.NodeID != 7 || !cfg.Production() {
		t.Fatalf("unexpected numeric settings %+v", cfg)
	}
}

func TestInvalidNumbersKeepDefaults(t *testing.T) {
	cfg := FromLookup(lookupFrom(map[string]string{
		"PACKSTENCIL_PREVIEW_DPI": "-3",
		"PACKSTENCIL_NODE_ID":     "x",
		"APP_ENV":                 "production",
		"LOG_FORMAT":              "console",
	}))
	if cfg.PreviewDPI != 150 || cfg.NodeID != 1 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.LogFormat != "console" {
		t.Fatalf("expected an explicit format to win, got %q", cfg.LogFormat)
	}
}
