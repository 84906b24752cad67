// Parley is a translator front-end: it detects the language of typed text,
// translates it after a pause in typing and reads either side aloud.
//
// Usage:
//
//	parley [flags]
//	parley -mode server -config /path/to/parley.yaml
//
// In tui mode (the default) parley runs the terminal view; the web API and
// gRPC health listener run alongside it when enabled. In server mode only
// the network surfaces run.
//
// @title       parley API
// @version     0.1.0
// @description Language detection, translation and speech playback.
// @license.name MIT
// @BasePath    /
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/coordinator"
	"github.com/nadzzz/parley/internal/health"
	"github.com/nadzzz/parley/internal/transport"
	grpctransport "github.com/nadzzz/parley/internal/transport/grpc"
	httptransport "github.com/nadzzz/parley/internal/transport/http"
	"github.com/nadzzz/parley/internal/tui"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/parley.yaml)")
	mode := flag.String("mode", "tui", "run mode: tui or server")
	flag.Parse()

	if *showVersion {
		fmt.Printf("parley %s\n", version)
		os.Exit(0)
	}
	if *mode != "tui" && *mode != "server" {
		fmt.Fprintf(os.Stderr, "unknown mode %q (want tui or server)\n", *mode)
		os.Exit(2)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	closeLog, err := setupLogging(cfg.Logging, *mode)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, *mode); err != nil {
		slog.Error("parley stopped with error", "error", err)
		closeLog()
		os.Exit(1)
	}
}

// setupLogging keeps log lines off the terminal while the view owns it.
func setupLogging(cfg config.LoggingConfig, mode string) (func(), error) {
	if mode != "tui" {
		config.SetupLogging(cfg)
		return func() {}, nil
	}
	if cfg.File == "" {
		config.SetupLoggingTo(io.Discard, cfg)
		return func() {}, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	config.SetupLoggingTo(f, cfg)
	return func() { _ = f.Close() }, nil
}

func run(cfg *config.Config, mode string) error {
	slog.Info("parley starting", "version", version, "mode", mode)

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	a, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	healthServer := health.New(cfg.Server.HealthPort)
	if a.cache != nil {
		healthServer.AddCheck("translation_cache", a.cache.Ping)
	}

	var transports []transport.Transport
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP, a.dispatcher))
	}
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port, healthServer))
	}
	if mode == "server" && len(transports) == 0 {
		return errors.New("no transports enabled; enable http or grpc in config")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return healthServer.ListenAndServe(gctx) })

	for _, t := range transports {
		g.Go(func() error {
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(gctx); err != nil {
				return fmt.Errorf("%s transport: %w", t.Name(), err)
			}
			return nil
		})
	}

	if mode == "tui" {
		session := coordinator.New(a.dispatcher, cfg.Coordinator)
		g.Go(func() error {
			if err := session.Run(gctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			// Quitting the view ends the process.
			defer cancel()
			return tui.Run(gctx, session, version)
		})
	}

	healthServer.SetReady(true)
	slog.Info("parley ready",
		"transports", len(transports),
		"health_port", cfg.Server.HealthPort)

	err = g.Wait()
	for _, t := range transports {
		if cerr := t.Close(); cerr != nil {
			slog.Error("transport close error", "name", t.Name(), "error", cerr)
		}
	}
	slog.Info("parley stopped")
	return err
}
