package domains

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	cdpe "github.com/chromedp/cdproto/emulation"
)

// Emulation exposes the CDP Emulation domain actions used by the pipeline.
type Emulation interface {
	// SetDeviceMetricsOverride pins the viewport. Scores are only
	// comparable across identical viewports, so this runs before every
	// navigation.
	SetDeviceMetricsOverride(ctx context.Context, width, height int64, deviceScaleFactor float64, mobile bool) error
}

var _ Emulation = &emulation{}

type emulation struct {
	exec cdp.Executor
}

// NewEmulation returns a new CDP Emulation domain wrapper.
func NewEmulation(exec cdp.Executor) Emulation {
	return &emulation{exec}
}

func (e *emulation) SetDeviceMetricsOverride(
	ctx context.Context, width, height int64, deviceScaleFactor float64, mobile bool,
) error {
	action := cdpe.SetDeviceMetricsOverride(width, height, deviceScaleFactor, mobile)
	if err := action.Do(cdp.WithExecutor(ctx, e.exec)); err != nil {
		return fmt.Errorf("overriding device metrics to %dx%d: %w", width, height, err)
	}

	return nil
}
