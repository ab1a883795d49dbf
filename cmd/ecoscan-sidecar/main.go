// ecoscan-sidecar is the out-of-process measurement driver. It runs one
// analysis and emits exactly one JSON document on stdout: the result, or an
// error envelope with a non-zero exit code.
//
// Usage: ecoscan-sidecar <url> <chrome-path> [--html]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/greenweb/ecoscan/analyzer"
	"github.com/greenweb/ecoscan/browser"
	"github.com/greenweb/ecoscan/log"
	"github.com/greenweb/ecoscan/sidecar"

	"github.com/kelseyhightower/envconfig"
)

type config struct {
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
	ReportDir     string        `envconfig:"REPORT_DIR"`
	LaunchTimeout time.Duration `envconfig:"LAUNCH_TIMEOUT"`
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := log.New(ctx)

	var cfg config
	if err := envconfig.Process("ecoscan", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "reading environment: %v\n", err)
		return 2
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q\n", cfg.LogLevel)
		return 2
	}

	args := os.Args[1:]
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: ecoscan-sidecar <url> <chrome-path> [--html]")
		return 2
	}
	url, chromePath := args[0], args[1]
	includeHTML := len(args) > 2 && args[2] == "--html"

	// The browser process must not outlive an interrupted run.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Warnf("main", "received %s, shutting down browser processes", sig)
		browser.ForceProcessShutdown()
		os.Exit(1)
	}()

	opts := analyzer.Options{
		ChromePath:     chromePath,
		GenerateReport: includeHTML,
		ReportDir:      cfg.ReportDir,
	}
	if cfg.LaunchTimeout > 0 {
		launch := browser.DefaultLaunchOptions(chromePath)
		launch.Timeout = cfg.LaunchTimeout
		opts.Launch = &launch
	}

	result, err := analyzer.New(opts, logger).Run(ctx, url)
	if err != nil {
		logger.Errorf("main", "analysis failed: %v", err)
		if werr := sidecar.WriteError(os.Stdout, err); werr != nil {
			logger.Errorf("main", "writing error document: %v", werr)
		}
		return 1
	}

	if err := sidecar.WriteResult(os.Stdout, result); err != nil {
		logger.Errorf("main", "writing result document: %v", err)
		return 1
	}
	return 0
}
