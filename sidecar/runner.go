package sidecar

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"time"

	"github.com/greenweb/ecoscan/analyzer"
	"github.com/greenweb/ecoscan/log"
)

// DefaultRunTimeout bounds one sidecar run end to end.
const DefaultRunTimeout = 3 * time.Minute

// Runner spawns the sidecar binary and decodes its single-document output.
type Runner struct {
	// BinaryPath is the sidecar executable.
	BinaryPath string
	// Timeout bounds the whole run. Zero means DefaultRunTimeout.
	Timeout time.Duration

	logger *log.Logger
}

// NewRunner returns a Runner for the given sidecar binary.
func NewRunner(binaryPath string, logger *log.Logger) *Runner {
	return &Runner{BinaryPath: binaryPath, logger: logger}
}

// Run measures url through the sidecar. The argument convention is
// "<url> <chromePath> [--html]".
func (r *Runner) Run(ctx context.Context, url, chromePath string, includeHTML bool) (*analyzer.AnalysisResult, error) {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultRunTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{url, chromePath}
	if includeHTML {
		args = append(args, "--html")
	}

	cmd := exec.CommandContext(ctx, r.BinaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debugf("Sidecar:Run", "spawning %q args:%v", r.BinaryPath, args)

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Binary: r.BinaryPath, Err: err}
	}
	if err := cmd.Wait(); err != nil {
		// A failing sidecar still emits the one protocol document; prefer
		// its typed error over the bare exit status.
		if env, ok := decodeEnvelope(stdout.Bytes()); ok {
			return nil, &AnalysisError{ErrCode: env.Code, Message: env.Message}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &CommunicationError{Err: err, Stderr: stderr.String()}
	}

	return decodeResult(stdout.Bytes())
}

// decodeResult parses the success path of the protocol. An error envelope on
// a zero exit is still honored as a failure.
func decodeResult(out []byte) (*analyzer.AnalysisResult, error) {
	if env, ok := decodeEnvelope(out); ok {
		return nil, &AnalysisError{ErrCode: env.Code, Message: env.Message}
	}

	var result analyzer.AnalysisResult
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, &ParseError{Err: err, Output: truncate(string(out), 512)}
	}
	return &result, nil
}

func decodeEnvelope(out []byte) (*ErrorEnvelope, bool) {
	var env ErrorEnvelope
	if err := json.Unmarshal(out, &env); err != nil || !env.Error {
		return nil, false
	}
	return &env, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
