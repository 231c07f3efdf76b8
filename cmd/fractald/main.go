// Command fractald serves Mandelbrot renders as streamed PNGs and
// periodically stores a new one.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cocosip/go-pngstream/blobstore"
	"github.com/cocosip/go-pngstream/config"
	"github.com/cocosip/go-pngstream/scheduler"
	"github.com/cocosip/go-pngstream/server"
)

func main() {
	configFile := flag.String("config", "", "YAML configuration file")
	listen := flag.String("listen", "", "listen address (overrides config)")
	dataDir := flag.String("data", "", "blob directory; empty keeps blobs in memory (overrides config)")
	interval := flag.Duration("interval", -1, "scheduled render interval, 0 disables (overrides config)")
	hookURL := flag.String("hook", "", "webhook URL for scheduled renders (overrides config)")
	publicURL := flag.String("public-url", "", "externally visible base URL (overrides config)")
	flag.Parse()

	logger := log.New(os.Stderr, "fractald ", log.LstdFlags|log.Lmicroseconds)

	cfg := config.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = config.LoadConfig(*configFile); err != nil {
			logger.Fatalf("load config: %v", err)
		}
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *interval >= 0 {
		cfg.Interval = *interval
	}
	if *hookURL != "" {
		cfg.HookURL = *hookURL
	}
	if *publicURL != "" {
		cfg.PublicURL = *publicURL
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal(err)
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr: cfg.Listen,
		Handler: server.New(store, server.Options{
			Width:       cfg.Width,
			Height:      cfg.Height,
			FaviconSize: cfg.FaviconSize,
			Defaults:    cfg.Fractal,
			Encoder:     cfg.EncoderOptions(),
		}, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Interval > 0 {
		sched := scheduler.New(store)
		sched.Width, sched.Height = cfg.Width, cfg.Height
		sched.Interval = cfg.Interval
		sched.PublicURL = cfg.PublicURL
		sched.HookURL = cfg.HookURL
		sched.Params = cfg.Fractal
		sched.Options = cfg.EncoderOptions()
		sched.Client = &http.Client{Timeout: 30 * time.Second}
		sched.Logger = logger
		go sched.Run(ctx)
		logger.Printf("scheduler running every %v", cfg.Interval)
	}

	errc := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", cfg.Listen)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err)
		}
	case <-ctx.Done():
		logger.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("shutdown: %v", err)
		}
	}
}

func openStore(cfg *config.Config) (blobstore.Store, error) {
	if cfg.DataDir == "" {
		return blobstore.NewMemoryStore(), nil
	}
	return blobstore.NewDirStore(cfg.DataDir)
}
