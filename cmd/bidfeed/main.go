package main

import (
	"context"
	"errors"
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
	"golang.org/x/sync/errgroup"

	"github.com/umputun/bidfeed/pkg/aggregator"
	"github.com/umputun/bidfeed/pkg/config"
	"github.com/umputun/bidfeed/pkg/domain"
	"github.com/umputun/bidfeed/pkg/feed"
	"github.com/umputun/bidfeed/pkg/scheduler"
	"github.com/umputun/bidfeed/pkg/source"
	"github.com/umputun/bidfeed/server"
)

// Opts with all CLI options
type Opts struct {
	Config   string        `short:"c" long:"config" env:"CONFIG" description:"config file (yaml), built-in defaults if not set"`
	Output   string        `short:"o" long:"output" env:"OUTPUT" description:"output feed file, overrides config"`
	Listen   string        `short:"l" long:"listen" env:"LISTEN" description:"listen address, run once and exit if empty"`
	Interval time.Duration `short:"i" long:"interval" env:"INTERVAL" description:"refresh interval in serve mode (default 30m)"`

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
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)
	log.Printf("[INFO] starting bidfeed version %s", revision)

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

	log.Print("[INFO] completed")
}

// run builds the pipeline and either emits the feed once or keeps refreshing it while serving
func run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}

	client := source.NewHTTPClient(cfg.Source.Timeout, cfg.Source.UserAgent)
	api := source.NewAPISource(client, source.APIParams{
		BaseURL:    cfg.Source.BaseURL,
		PageSize:   cfg.Source.PageSize,
		Lookback:   cfg.Source.Lookback,
		Location:   loc,
		Categories: domain.Categories(),
	})

	var fallback aggregator.Fallback
	if cfg.Fallback.Enabled {
		fallback = source.NewHTMLSource(client, source.HTMLParams{
			BaseURL:    cfg.Source.BaseURL,
			MaxEntries: cfg.Fallback.MaxEntries,
			Location:   loc,
		})
	}

	emitter := feed.NewEmitter(aggregator.New(api, fallback, cfg.Feed.MaxItems), feed.NewWriter(cfg.Feed.Output), feed.Settings{
		Title:              cfg.Feed.Title,
		Link:               cfg.Feed.Link,
		SelfLink:           cfg.Feed.SelfLink,
		Description:        cfg.Feed.Description,
		EmptyDescription:   cfg.Feed.EmptyDescription,
		FailureDescription: cfg.Feed.FailureDescription,
		Language:           cfg.Feed.Language,
		Pretty:             cfg.PrettyOutput(),
		KeepOnCancel:       cfg.Server.Listen != "", // serving, keep the last good feed on shutdown
	})

	if cfg.Server.Listen == "" {
		report, err := emitter.Emit(ctx)
		if err != nil {
			return err
		}
		log.Printf("[INFO] feed %s written, outcome %s", cfg.Feed.Output, report.Outcome)
		return nil
	}

	sched := scheduler.NewScheduler(emitter, cfg.Schedule.Interval)
	srv := server.New(cfg, sched, cfg.Feed.Output, revision, opts.Debug)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })
	return g.Wait()
}

// loadConfig reads the config file if set and applies CLI overrides
func loadConfig(opts Opts) (*config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		log.Printf("[DEBUG] config loaded from %s", opts.Config)
	}

	if opts.Output != "" {
		cfg.Feed.Output = opts.Output
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	if opts.Interval > 0 {
		cfg.Schedule.Interval = opts.Interval
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setupLog(dbg, noColor bool, secs ...string) {
	var logOpts []lgr.Option
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
