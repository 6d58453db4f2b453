// PackStencil — Label composition for packing lines.
//
// Usage:
//
//	packstencil [render] -o <dir|file.zip> <request.json> [options]
//	packstencil layouts
//	packstencil serve [--port 8080]
//	packstencil init
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/xob0t/PackStencil/clients/server"
	"github.com/xob0t/PackStencil/internal/config"
	"github.com/xob0t/PackStencil/internal/logger"
	"github.com/xob0t/PackStencil/pkg/assets"
	"github.com/xob0t/PackStencil/pkg/canvas"
	"github.com/xob0t/PackStencil/pkg/fonts"
	"github.com/xob0t/PackStencil/pkg/generator"
	"github.com/xob0t/PackStencil/pkg/label"
	"github.com/xob0t/PackStencil/pkg/layout"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		if err := runInit(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "layouts":
		fmt.Print(layout.FormatCatalog(layout.DefaultCatalog()))
	case "serve":
		if err := server.RunServe(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "render":
		if err := run(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		// Default: render mode (all flags on root).
		if err := run(os.Args[1:]); err != nil {
			fatal(err)
		}
	}
}

func run(args []string) error {
	cfg := config.Load()
	fs := flag.NewFlagSet("packstencil", flag.ExitOnError)

	var (
		output   string
		reqPath  string
		buyer    string
		plan     bool
		preview  bool
		verbose  bool
		assetDir = cfg.Assets
		font     = cfg.Font
		fontBold = cfg.FontBold
		dpi      = cfg.PreviewDPI
	)

	fs.StringVar(&output, "o", "labels", "Output directory, or a .zip archive")
	fs.StringVar(&output, "output", "labels", "Output directory, or a .zip archive")
	fs.StringVar(&reqPath, "request", "", "Path to a request JSON (object or array)")
	fs.StringVar(&buyer, "buyer", "", "Override the buyer of every request")
	fs.StringVar(&assetDir, "assets", assetDir, "Asset directory or .zip bundle")
	fs.StringVar(&font, "font", font, "Preferred regular font path inside the assets")
	fs.StringVar(&fontBold, "font-bold", fontBold, "Preferred bold font path inside the assets")
	fs.BoolVar(&plan, "plan", false, "Print the draw instructions instead of writing files")
	fs.BoolVar(&preview, "preview", false, "Render PNG previews instead of PDFs")
	fs.Float64Var(&dpi, "dpi", dpi, "Preview resolution")
	fs.BoolVar(&verbose, "v", false, "Log fallbacks")

	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}
	if reqPath == "" && fs.NArg() > 0 {
		reqPath = fs.Arg(0)
	}
	if reqPath == "" {
		printUsage()
		return fmt.Errorf("a request file is required")
	}

	if !verbose {
		cfg.LogLevel = "error"
	}
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	reqs, err := label.ParseRequestFile(reqPath)
	if err != nil {
		return err
	}

	store, cleanup, err := assets.Open(assetDir)
	if err != nil {
		log.Warn("asset store unavailable, using built-in fonts and blank labels", zap.Error(err))
		store, cleanup = assets.NewMemStore(), func() {}
	}
	defer cleanup()
	cache := assets.NewCache(store)

	var (
		backend  canvas.Backend = canvas.NewPDF()
		recorder *canvas.Recorder
	)
	switch {
	case plan:
		recorder = canvas.NewRecorder()
		backend = recorder
	case preview:
		p := canvas.NewPreview(dpi)
		defer p.Close()
		backend = p
	}

	engine := label.New(cache,
		label.WithLogger(log),
		label.WithBackend(backend),
		label.WithFontProvider(fonts.NewProvider(cache, font, fontBold, log)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var all []label.Result
	for _, req := range reqs {
		if buyer != "" {
			req.Buyer = buyer
		}
		for _, w := range label.Validate(req, engine.Catalog()) {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
		results, err := engine.Render(ctx, req)
		if err != nil {
			return err
		}
		all = append(all, results...)
	}

	if plan {
		for _, r := range all {
			fmt.Printf("# %s\n%s\n", r.FileName, r.Bytes)
		}
		return nil
	}

	paths, err := generator.Generate(output, all)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Printf("Done: %s\n", p)
	}
	return nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var reqOut string
	fs.StringVar(&reqOut, "request", "request.json", "Output path for the sample request")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := os.WriteFile(reqOut, []byte(label.ExampleRequestJSON()), 0644); err != nil {
		return fmt.Errorf("write request: %w", err)
	}

	fmt.Printf("Created: %s\n", reqOut)
	fmt.Printf("Run: packstencil -o labels %s\n", reqOut)
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`PackStencil — Label composition for packing lines

USAGE:
    packstencil [render] -o <dir|file.zip> <request.json> [options]
    packstencil layouts
    packstencil serve [--port 8080] [--assets <path>]
    packstencil init [--request request.json]

RENDER:
    -o, --output <path>    Output directory or .zip archive (default: labels)
    --request <path>       Request JSON, a single object or an array
    --buyer <tag>          Override the buyer of every request
    --assets <path>        Asset directory or .zip bundle (templates/, fonts/)
    --font <path>          Preferred regular font inside the assets
    --font-bold <path>     Preferred bold font inside the assets
    --preview              Write PNG previews instead of PDFs
    --dpi <n>              Preview resolution (default: 150)
    --plan                 Print the draw instructions only
    -v                     Log fallbacks to stderr

ENVIRONMENT:
    PACKSTENCIL_ASSETS, PACKSTENCIL_FONT, PACKSTENCIL_FONT_BOLD,
    PACKSTENCIL_ADDR, PACKSTENCIL_PREVIEW_DPI, PACKSTENCIL_NODE_ID,
    APP_ENV, LOG_LEVEL, LOG_FORMAT

EXAMPLES:
    packstencil init
    packstencil -o labels request.json
    packstencil -o labels.zip --assets assets.zip request.json
    packstencil render --plan --buyer casafresca request.json
    packstencil layouts
    packstencil serve --port 9000
`)
}
