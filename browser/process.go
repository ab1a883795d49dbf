package browser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/greenweb/ecoscan/log"
	"github.com/greenweb/ecoscan/storage"
)

// Process supervises one running browser process and the user data
// directory it writes to.
type Process struct {
	ctx context.Context

	process *os.Process

	// processDone is closed once the process has exited and its data
	// directory has been cleaned up.
	processDone chan struct{}

	dataDir *storage.Dir

	logger *log.Logger
}

func startProcess(
	ctx context.Context, path string, args []string, dataDir *storage.Dir, logger *log.Logger,
) (*Process, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	killAfterParent(cmd)

	// Start must precede Wait, otherwise the two race.
	err := cmd.Start()
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("browser executable does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("starting browser process: %w", err)
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("starting browser process: %w", ctx.Err())
	}

	register(logger, cmd.Process.Pid)

	done := make(chan struct{})
	go func() {
		defer func() {
			if err := dataDir.Cleanup(); err != nil {
				logger.Errorf("browser", "cleaning up the user data directory: %v", err)
			}
			unregister(cmd.Process.Pid)
			close(done)
		}()

		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			logger.Warnf("browser", "process with PID %d unexpectedly ended: %v",
				cmd.Process.Pid, err)
		}
	}()

	return &Process{
		ctx:         ctx,
		process:     cmd.Process,
		processDone: done,
		dataDir:     dataDir,
		logger:      logger,
	}, nil
}

// Terminate kills the browser process and waits for it to release its
// resources. Must run on every exit path, including error paths.
func (p *Process) Terminate() {
	p.logger.Debugf("BrowserProcess:Terminate", "pid:%d", p.process.Pid)

	_ = p.process.Kill()

	select {
	case <-p.processDone:
	case <-time.After(5 * time.Second):
		p.logger.Warnf("browser", "process with PID %d did not exit after kill", p.process.Pid)
	}
}

// Pid returns the browser process ID.
func (p *Process) Pid() int {
	return p.process.Pid
}

// devToolsURL returns the DevTools WebSocket address by reading the
// DevToolsActivePort file in the data directory. The browser might not have
// created the file yet, so it is retried until ctx expires.
func (p *Process) devToolsURL(ctx context.Context) (wsURL string, rerr error) {
	const readAttemptDelay = 50 * time.Millisecond
	fpath := filepath.Join(p.dataDir.Dir, "DevToolsActivePort")

	var f *os.File
	for {
		var err error
		f, err = os.Open(fpath) //nolint:gosec // path is under our own temp dir
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("reading %q: %w", fpath, err)
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("waiting for %q: %w", fpath, ctx.Err())
		case <-p.processDone:
			return "", errors.New("browser process ended before exposing a DevTools endpoint")
		case <-time.After(readAttemptDelay):
		}
	}
	defer func() {
		if err := f.Close(); rerr == nil && err != nil {
			rerr = err
		}
	}()

	fs := bufio.NewScanner(f)
	fs.Split(bufio.ScanLines)
	portURI := make([]string, 0, 2)
	for fs.Scan() {
		portURI = append(portURI, fs.Text())
	}
	if len(portURI) < 2 {
		return "", fmt.Errorf("malformed DevToolsActivePort file %q", fpath)
	}

	return fmt.Sprintf("ws://127.0.0.1:%s%s", portURI[0], portURI[1]), nil
}
