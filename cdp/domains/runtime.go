package domains

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	cdpr "github.com/chromedp/cdproto/runtime"
)

// Runtime exposes the CDP Runtime domain actions used by the pipeline.
type Runtime interface {
	// Evaluate runs expr in the page and decodes its by-value result into
	// out. Pass a nil out to discard the result.
	Evaluate(ctx context.Context, expr string, out interface{}) error
}

var _ Runtime = &runtime{}

type runtime struct {
	exec cdp.Executor
}

// NewRuntime returns a new CDP Runtime domain wrapper.
func NewRuntime(exec cdp.Executor) Runtime {
	return &runtime{exec}
}

func (r *runtime) Evaluate(ctx context.Context, expr string, out interface{}) error {
	action := cdpr.Evaluate(expr).
		WithReturnByValue(true).
		WithAwaitPromise(true)

	remote, exc, err := action.Do(cdp.WithExecutor(ctx, r.exec))
	if err != nil {
		return fmt.Errorf("evaluating expression: %w", err)
	}
	if exc != nil {
		return fmt.Errorf("evaluating expression: %s", exc.Text)
	}
	if out == nil || remote == nil {
		return nil
	}

	if err := json.Unmarshal(remote.Value, out); err != nil {
		return fmt.Errorf("decoding evaluation result: %w", err)
	}

	return nil
}
