package domains

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	cdpn "github.com/chromedp/cdproto/network"
)

// Network exposes the CDP Network domain actions used by the pipeline.
type Network interface {
	Enable(ctx context.Context) error
	// SetCacheDisabled must run before navigating so the measurement
	// reflects cold transfer sizes.
	SetCacheDisabled(ctx context.Context, disabled bool) error
}

var _ Network = &network{}

type network struct {
	exec cdp.Executor
}

// NewNetwork returns a new CDP Network domain wrapper.
func NewNetwork(exec cdp.Executor) Network {
	return &network{exec}
}

func (n *network) Enable(ctx context.Context) error {
	action := cdpn.Enable()
	if err := action.Do(cdp.WithExecutor(ctx, n.exec)); err != nil {
		return fmt.Errorf("enabling network CDP domain: %w", err)
	}

	return nil
}

func (n *network) SetCacheDisabled(ctx context.Context, disabled bool) error {
	action := cdpn.SetCacheDisabled(disabled)
	if err := action.Do(cdp.WithExecutor(ctx, n.exec)); err != nil {
		return fmt.Errorf("setting cache disabled to %t: %w", disabled, err)
	}

	return nil
}
