package domains

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	cdpi "github.com/chromedp/cdproto/input"
)

// Input exposes the CDP Input domain actions used by the pipeline.
type Input interface {
	// SynthesizeScrollGesture issues one continuous scroll gesture from
	// (x, y) over the given vertical distance, at speed pixels/second.
	SynthesizeScrollGesture(ctx context.Context, x, y, yDistance float64, speed int64) error
}

var _ Input = &input{}

type input struct {
	exec cdp.Executor
}

// NewInput returns a new CDP Input domain wrapper.
func NewInput(exec cdp.Executor) Input {
	return &input{exec}
}

func (i *input) SynthesizeScrollGesture(ctx context.Context, x, y, yDistance float64, speed int64) error {
	action := cdpi.SynthesizeScrollGesture(x, y).
		WithYDistance(yDistance).
		WithSpeed(speed)
	if err := action.Do(cdp.WithExecutor(ctx, i.exec)); err != nil {
		return fmt.Errorf("synthesizing scroll gesture: %w", err)
	}

	return nil
}
