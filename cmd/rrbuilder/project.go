package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/vango-dev/rrbuilder/internal/config"
	"github.com/vango-dev/rrbuilder/internal/errors"
	"github.com/vango-dev/rrbuilder/internal/logger"
	"github.com/vango-dev/rrbuilder/internal/source"
)

// globalFlags are the persistent root flags.
type globalFlags struct {
	configPath string
	manifest   string
	verbose    bool
}

// project is everything a command needs to run the pipeline.
type project struct {
	config *config.Config
	logger *slog.Logger
	source source.Source
}

// loadProject loads the config and opens the manifest. When no config file
// exists, an explicit --manifest runs on defaults; a config that exists but
// fails to load is always an error.
func loadProject(g *globalFlags) (*project, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
		if g.manifest != "" && errors.HasCode(err, "C141") {
			cfg = config.New()
			err = cfg.Finalize()
		}
	}
	if err != nil {
		return nil, err
	}

	// Apply command-line overrides
	if g.manifest != "" {
		cfg.Manifest = absolute(g.manifest)
	}
	if g.verbose {
		cfg.Logging.Level = logger.LevelDebug
	}

	opts := source.Options{}
	location := cfg.ManifestPath()
	if strings.HasPrefix(location, "s3://") {
		opts.S3 = source.NewS3Client(cfg.S3)
	}
	src, err := source.Open(location, opts)
	if err != nil {
		return nil, err
	}

	return &project{
		config: cfg,
		logger: logger.New(cfg.Logging, stderr),
		source: src,
	}, nil
}

// absolute resolves a command-line path against the working directory so
// it is not re-rooted at the config directory.
func absolute(path string) string {
	if path == "-" || strings.HasPrefix(path, "s3://") || filepath.IsAbs(path) {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
