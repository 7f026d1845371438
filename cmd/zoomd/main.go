// Command zoomd serves word definitions to the zoom reader.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/metcalfc/zoom/internal/config"
	"github.com/metcalfc/zoom/internal/llm"
	"github.com/metcalfc/zoom/internal/server"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	addr := flag.String("addr", cfg.ServerAddr, "Listen address")
	model := flag.String("model", cfg.Model, "Gemini model name")
	showVersion := flag.Bool("v", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "zoomd - definition service for zoom\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  zoomd [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  GOOGLE_API_KEY   Gemini API key (required, may be set in .env)\n")
		fmt.Fprintf(os.Stderr, "  ZOOMD_ADDR       Listen address (default %s)\n", config.DefaultServerAddr)
		fmt.Fprintf(os.Stderr, "  ZOOMD_MODEL      Model name (default %s)\n", config.DefaultModel)
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("zoomd %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if err := cfg.RequireAPIKey(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v. Set it in the environment or a .env file.\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(logger, *addr, cfg.APIKey, *model); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, addr, apiKey, model string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	definer, err := llm.NewGemini(ctx, apiKey, model)
	if err != nil {
		return err
	}
	defer definer.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(&server.Deps{Definer: definer, Logger: logger}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting definition service", "addr", addr, "model", model)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
