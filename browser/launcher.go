// Package browser is responsible for launching a headless Chromium process
// and managing its lifetime.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/greenweb/ecoscan/cdp"
	"github.com/greenweb/ecoscan/log"
	"github.com/greenweb/ecoscan/storage"
)

// LaunchOptions control how the browser process is started.
type LaunchOptions struct {
	// ExecutablePath is the Chromium/Chrome headless shell binary.
	ExecutablePath string
	// Headless runs the browser without a window. On by default; only
	// disabled when debugging a run interactively.
	Headless bool
	// Timeout bounds the whole launch sequence (process start, DevTools
	// endpoint discovery, CDP connect).
	Timeout time.Duration
	// TmpDir is where the per-run user data directory is created.
	TmpDir string
	// ExtraArgs are appended to the default flag set.
	ExtraArgs []string
}

// DefaultLaunchOptions returns the options used for a measurement run.
func DefaultLaunchOptions(executablePath string) LaunchOptions {
	return LaunchOptions{
		ExecutablePath: executablePath,
		Headless:       true,
		Timeout:        30 * time.Second,
	}
}

// flags returns the command line for a reproducible, quiet browser. The set
// follows the measurement methodology: fixed window size, no first-run or
// background activity that could pollute the network log.
func (lo LaunchOptions) flags(dataDir string) []string {
	args := []string{
		"--remote-debugging-port=0",
		"--user-data-dir=" + dataDir,
		"--no-sandbox",
		"--disable-gpu",
		"--disable-dev-shm-usage",
		"--disable-extensions",
		"--disable-background-networking",
		"--disable-sync",
		"--disable-translate",
		"--disable-default-apps",
		"--no-first-run",
		"--window-size=1920,1080",
		"--hide-scrollbars",
		"--mute-audio",
	}
	if lo.Headless {
		args = append(args, "--headless=new")
	}
	args = append(args, lo.ExtraArgs...)
	args = append(args, "about:blank")
	return args
}

// Browser owns one running browser process and its CDP connection. Exactly
// one Browser exists per run; concurrent runs each launch their own.
type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc

	proc   *Process
	Client *cdp.Client

	logger *log.Logger
}

// Launch starts the browser process, waits for its DevTools endpoint and
// connects a CDP client to it. The returned Browser must be closed on every
// exit path; a leaked process is a correctness defect, not an edge case.
func Launch(ctx context.Context, opts LaunchOptions, logger *log.Logger) (*Browser, error) {
	ctx, cancel := context.WithCancel(ctx)

	dataDir, err := storage.NewDir(opts.TmpDir)
	if err != nil {
		cancel()
		return nil, &LaunchError{Path: opts.ExecutablePath, Err: err}
	}

	launchCtx, launchCancel := context.WithTimeout(ctx, opts.Timeout)
	defer launchCancel()

	proc, err := startProcess(ctx, opts.ExecutablePath, opts.flags(dataDir.Dir), dataDir, logger)
	if err != nil {
		cancel()
		_ = dataDir.Cleanup()
		return nil, &LaunchError{Path: opts.ExecutablePath, Err: err}
	}

	wsURL, err := proc.devToolsURL(launchCtx)
	if err != nil {
		proc.Terminate()
		cancel()
		return nil, &LaunchError{Path: opts.ExecutablePath, Err: err}
	}

	client := cdp.NewClient(ctx, logger)
	if err := client.Connect(wsURL); err != nil {
		proc.Terminate()
		cancel()
		return nil, &LaunchError{Path: opts.ExecutablePath, Err: err}
	}

	logger.Debugf("Browser:Launch", "pid:%d wsURL:%q", proc.Pid(), wsURL)

	return &Browser{
		ctx:    ctx,
		cancel: cancel,
		proc:   proc,
		Client: client,
		logger: logger,
	}, nil
}

// Close shuts the browser down: a graceful CDP Browser.close first, then an
// unconditional process termination. Safe to call on every exit path.
func (b *Browser) Close() {
	b.logger.Debugf("Browser:Close", "pid:%d", b.proc.Pid())

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if err := b.Client.Browser.Close(closeCtx); err != nil {
		b.logger.Debugf("Browser:Close", "graceful close failed: %v", err)
	}

	b.Client.Disconnect()
	b.proc.Terminate()
	b.cancel()
}

// Pid returns the browser process ID.
func (b *Browser) Pid() int { return b.proc.Pid() }

// Version returns the product version reported by the browser.
func (b *Browser) Version(ctx context.Context) (string, error) {
	_, product, _, _, _, err := b.Client.Browser.GetVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("getting browser version: %w", err)
	}
	return product, nil
}
