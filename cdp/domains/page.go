package domains

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	cdpp "github.com/chromedp/cdproto/page"
)

// Page exposes the CDP Page domain actions used by the pipeline.
type Page interface {
	Enable(ctx context.Context) error
	Navigate(ctx context.Context, url, referrer string) (frameID string, err error)
	SetLifecycleEventsEnabled(ctx context.Context, enabled bool) error
}

var _ Page = &page{}

type page struct {
	exec cdp.Executor
}

// NewPage returns a new CDP Page domain wrapper.
func NewPage(exec cdp.Executor) Page {
	return &page{exec}
}

func (p *page) Enable(ctx context.Context) error {
	action := cdpp.Enable()
	if err := action.Do(cdp.WithExecutor(ctx, p.exec)); err != nil {
		return fmt.Errorf("enabling page CDP domain: %w", err)
	}

	return nil
}

func (p *page) Navigate(ctx context.Context, url, referrer string) (string, error) {
	action := cdpp.Navigate(url).WithReferrer(referrer)

	frameID, _, errorText, err := action.Do(cdp.WithExecutor(ctx, p.exec))
	if err != nil {
		return "", fmt.Errorf("navigating to %q: %w", url, err)
	}
	if errorText != "" {
		return "", fmt.Errorf("navigating to %q: %s", url, errorText)
	}

	return frameID.String(), nil
}

func (p *page) SetLifecycleEventsEnabled(ctx context.Context, enabled bool) error {
	action := cdpp.SetLifecycleEventsEnabled(enabled)
	if err := action.Do(cdp.WithExecutor(ctx, p.exec)); err != nil {
		return fmt.Errorf("setting lifecycle events to %t: %w", enabled, err)
	}

	return nil
}
