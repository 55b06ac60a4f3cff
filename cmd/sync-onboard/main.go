// Package main is the entry point for the sync-onboard application.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/joe/sync-onboard/internal/config"
	"github.com/joe/sync-onboard/internal/console"
	"github.com/joe/sync-onboard/internal/device"
	"github.com/joe/sync-onboard/internal/logging"
	"github.com/joe/sync-onboard/internal/mirror"
	"github.com/joe/sync-onboard/internal/probe"
	"github.com/joe/sync-onboard/internal/watch"
	"github.com/joe/sync-onboard/pkg/clock"
	pkgerrors "github.com/joe/sync-onboard/pkg/errors"
	"github.com/joe/sync-onboard/pkg/fileops"
	"github.com/joe/sync-onboard/pkg/filesystem"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, logCloser := logging.New(logging.Options{Verbose: cfg.Verbose, LogFile: cfg.LogFile})
	defer func() { _ = logCloser.Close() }()

	enricher := pkgerrors.NewEnricher()
	con := &console.Console{
		In:       os.Stdin,
		Out:      os.Stdout,
		Styles:   console.NewStyles(console.ColorEnabled(os.Stdout, cfg.NoColor)),
		Enricher: enricher,
	}

	sourceRoot, err := filepath.Abs(cfg.SourcePath)
	if err != nil {
		return fmt.Errorf("failed to resolve source path: %w", err)
	}

	dest, err := filesystem.OpenTarget(cfg.DestPath)
	if err != nil {
		con.ShowError(err)
		return err
	}

	defer func() { _ = dest.Close() }()

	sourceFS := filesystem.NewRealFileSystem()

	prober := &probe.Prober{
		FS:          dest.FS,
		Root:        dest.Root,
		Destination: cfg.DestPath,
		Marker:      cfg.Marker,
		Resolver: device.ChainResolver{
			device.StaticResolver(cfg.Remote),
			device.RegistryResolver{},
		},
		Remote:     device.NewHTTPReleaser(cfg.APIKey, logger.With("component", "http")),
		Local:      device.NewSerialReleaser(cfg.Baud, logger.With("component", "serial")),
		SerialPort: cfg.SerialPort,
		Clock:      clock.Real{},
		Logger:     logger.With("component", "probe"),
	}

	filter := watch.NewExtensionFilter(cfg.Extension)

	mirrorer := &mirror.Mirror{
		SourceFS:   sourceFS,
		SourceRoot: sourceRoot,
		DestFS:     dest.FS,
		DestRoot:   dest.Root,
		Filter:     filter,
		Policy:     cfg.Policy,
		Ready:      prober,
		Copier:     fileops.NewSafeCopier(fileops.NewDualFileOps(sourceFS, dest.FS), logger),
		Enricher:   enricher,
		Logger:     logger.With("component", "mirror"),
		OnError:    con.ShowError,
	}
	con.Syncer = mirrorer

	watcher, err := watch.New(sourceRoot, filter, watch.Options{
		Debounce: cfg.Debounce,
		Logger:   logger.With("component", "watch"),
	})
	if err != nil {
		return err
	}

	if err := watcher.Start(); err != nil {
		return err
	}

	var wg sync.WaitGroup

	wg.Add(2)

	go func() {
		defer wg.Done()

		_ = mirrorer.Run(ctx, watcher.Events())
	}()

	go func() {
		defer wg.Done()

		for err := range watcher.Errors() {
			logger.Warn("watcher error", "error", err)
		}
	}()

	con.Banner(sourceRoot, cfg.DestPath)
	logger.Info("watching", "source", sourceRoot, "destination", cfg.DestPath,
		"pattern", filter.Pattern(), "policy", cfg.Policy.String())

	if err := con.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Warn("console input failed", "error", err)
	}

	// Input may close long before shutdown; mirroring continues until a signal.
	<-ctx.Done()

	shutdown(logger, watcher)
	wg.Wait()

	return nil
}

func shutdown(logger *slog.Logger, watcher *watch.Watcher) {
	logger.Info("shutting down")

	if err := watcher.Stop(); err != nil {
		logger.Warn("failed to stop watcher", "error", err)
	}
}
