package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/xob0t/PackStencil/internal/config"
	"github.com/xob0t/PackStencil/internal/logger"
	"github.com/xob0t/PackStencil/internal/metrics"
	"github.com/xob0t/PackStencil/pkg/assets"
	"github.com/xob0t/PackStencil/pkg/canvas"
	"github.com/xob0t/PackStencil/pkg/fonts"
	"github.com/xob0t/PackStencil/pkg/label"
)

// Module wires the API from the configuration, logger and metrics modules.
var Module = fx.Module("server",
	fx.Provide(
		NewNode,
		NewAssetCache,
		NewEngines,
		NewServer,
	),
	fx.Invoke(RunHTTP),
)

// NewNode returns the snowflake node that numbers requests.
func NewNode(cfg config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("create snowflake node: %w", err)
	}
	return node, nil
}

// NewAssetCache opens the configured asset store for the lifetime of the app.
func NewAssetCache(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*assets.Cache, error) {
	store, closeStore, err := assets.Open(cfg.Assets)
	if err != nil {
		log.Warn("asset store unavailable, serving built-in fonts and blank labels",
			zap.String("path", cfg.Assets), zap.Error(err))
		store, closeStore = assets.NewMemStore(), func() {}
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeStore()
			return nil
		},
	})
	return assets.NewCache(store), nil
}

// NewEngines builds the PDF engine and the preview engine over one cache.
func NewEngines(lc fx.Lifecycle, cfg config.Config, cache *assets.Cache, log *zap.Logger, obs label.Observer) Engines {
	provider := fonts.NewProvider(cache, cfg.Font, cfg.FontBold, log)
	preview := canvas.NewPreview(cfg.PreviewDPI)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return preview.Close()
		},
	})

	opts := []label.Option{label.WithLogger(log), label.WithObserver(obs), label.WithFontProvider(provider)}
	return Engines{
		Render:  label.New(cache, opts...),
		Preview: label.New(cache, append(opts, label.WithBackend(preview))...),
	}
}

// RunHTTP serves the router while the app runs.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, s *Server, log *zap.Logger) {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
			log.Info("PackStencil API listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// RunServe starts the API server. Flags override the environment configuration.
func RunServe(args []string) error {
	override := func(cfg config.Config) config.Config {
		for i := 0; i+1 < len(args); i++ {
			switch args[i] {
			case "--port", "-p":
				cfg.Addr = ":" + args[i+1]
			case "--addr":
				cfg.Addr = args[i+1]
			case "--assets":
				cfg.Assets = args[i+1]
			}
		}
		return cfg
	}

	app := fx.New(
		config.Module,
		fx.Decorate(override),
		logger.Module,
		metrics.Module,
		Module,
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
	)
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}
