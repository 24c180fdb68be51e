package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/kozko2001/obsidian-wallabag/pkg/config"
	"github.com/kozko2001/obsidian-wallabag/pkg/content"
	"github.com/kozko2001/obsidian-wallabag/pkg/db"
	"github.com/kozko2001/obsidian-wallabag/pkg/sync"
	"github.com/kozko2001/obsidian-wallabag/pkg/vault"
	"github.com/kozko2001/obsidian-wallabag/pkg/wallabag"
	"github.com/kozko2001/obsidian-wallabag/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"config file path"`
	Once   bool   `long:"once" description:"run a single sync and exit"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

// run wires the components and executes either a single sync or the daemon
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	setupLog(opts.Debug, cfg.Wallabag.ClientSecret, cfg.Wallabag.Password)
	log.Printf("[INFO] starting wallabag-sync version %s", revision)

	database, err := db.New(db.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	var extractor sync.Extractor
	if cfg.Extraction.Enabled {
		extractor = content.NewHTTPExtractor(cfg.Extraction.Timeout, cfg.Extraction.UserAgent)
	}

	syncer := sync.NewSyncer(sync.Config{
		Client: wallabag.New(wallabag.Config{
			BaseURL: cfg.Wallabag.BaseURL,
			Timeout: cfg.Wallabag.Timeout,
			PerPage: cfg.Wallabag.PerPage,
		}),
		Converter:   content.NewConverter(),
		Extractor:   extractor,
		Vault:       vault.New(cfg.Vault.Dir, cfg.Vault.Folder),
		History:     database,
		Credentials: cfg.Credentials(),
		MaxWorkers:  cfg.Sync.MaxWorkers,
	})

	if opts.Once {
		result, err := syncer.Run(ctx)
		if err != nil {
			return err
		}
		log.Printf("[INFO] synced %d entries: %d created, %d updated, %d failed",
			result.Total, result.Created, result.Updated, result.Failed)
		return nil
	}

	scheduler := sync.NewScheduler(syncer, cfg.Sync.Interval)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	srv := server.New(cfg, syncer, database, revision, opts.Debug)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
