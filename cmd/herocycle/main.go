package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ivlev/herocycle/internal/animation"
	"github.com/ivlev/herocycle/internal/assets"
	"github.com/ivlev/herocycle/internal/config"
	"github.com/ivlev/herocycle/internal/cycle"
	"github.com/ivlev/herocycle/internal/director"
	"github.com/ivlev/herocycle/internal/media"
	"github.com/ivlev/herocycle/internal/surface"
	"github.com/ivlev/herocycle/internal/system"
)

func main() {
	configPtr := flag.String("config", "", "Path to a YAML config file (defaults apply when empty)")
	manifestPtr := flag.String("manifest", "", "Path to the playlist manifest (overrides the config value)")
	intervalPtr := flag.Duration("interval", 0, "Time between item advances (0 keeps the config value)")
	runForPtr := flag.Duration("run-for", 0, "Stop after this long (0 runs until interrupted)")
	widthPtr := flag.Float64("width", 0, "Viewport width override")
	heightPtr := flag.Float64("height", 0, "Viewport height override")
	headerPtr := flag.Float64("header", 0, "Header band height override")
	statsPtr := flag.Bool("stats", false, "Print the session report on exit")
	verbosePtr := flag.Bool("verbose", false, "Enable debug logging")

	flag.Parse()

	level := slog.LevelInfo
	if *verbosePtr {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	system.InitResourceLimits()

	cfg := config.DefaultConfig()
	if *configPtr != "" {
		loaded, err := config.LoadConfigFile(*configPtr)
		if err != nil {
			log.Fatalf("[-] Config error: %v", err)
		}
		cfg = loaded
	}
	if *manifestPtr != "" {
		cfg.ManifestPath = *manifestPtr
	}
	if *intervalPtr > 0 {
		cfg.CycleInterval = *intervalPtr
	}
	if *widthPtr > 0 {
		cfg.Viewport.Width = *widthPtr
	}
	if *heightPtr > 0 {
		cfg.Viewport.Height = *heightPtr
	}
	if *headerPtr > 0 {
		cfg.Viewport.HeaderHeight = *headerPtr
	}
	if *statsPtr {
		cfg.ShowStats = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}
	if cfg.ManifestPath == "" {
		log.Fatalf("[-] Error: no manifest given (use -manifest or the config file)")
	}

	manifest, err := media.ReadManifest(cfg.ManifestPath)
	if err != nil {
		log.Fatalf("[-] Manifest error: %v", err)
	}
	if len(manifest.Items) == 0 {
		log.Fatalf("[-] Error: manifest %s has no items", cfg.ManifestPath)
	}
	fmt.Printf("[*] Playlist: %d items from %s\n", len(manifest.Items), cfg.ManifestPath)

	provider := assets.NewHTTPProvider(logger)
	provider.Timeout = cfg.LoadTimeout
	provider.DecodeWidth = cfg.DecodeWidth

	calc := director.NewCalculator()
	calc.MinOverflow = cfg.MinOverflow
	calc.BaseScale = cfg.BaseScale
	calc.MaxScale = cfg.MaxScale
	calc.Variance = cfg.Variance

	machine, err := cycle.New(cycle.Options{
		Config:     cfg,
		Items:      manifest.Items,
		Provider:   provider,
		Runtime:    animation.NewTickerRuntime(),
		Surface:    surface.NewMemory(),
		Calculator: calc,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("[-] Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *runForPtr > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *runForPtr)
		defer cancel()
	}

	fmt.Printf("[*] Cycling every %s (viewport %.0fx%.0f, header %.0f)\n",
		cfg.CycleInterval, cfg.Viewport.Width, cfg.Viewport.Height, cfg.Viewport.HeaderHeight)
	machine.Start(ctx)

	start := time.Now()
	<-machine.Done()

	if cfg.ShowStats {
		fmt.Print(machine.Report())
	}
	fmt.Printf("[+++] Done in %s\n", time.Since(start).Round(time.Second))
}
