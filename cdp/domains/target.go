package domains

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	cdpt "github.com/chromedp/cdproto/target"
)

// Target exposes the CDP Target domain actions used by the pipeline.
type Target interface {
	CreateTarget(ctx context.Context, url string) (targetID string, err error)
	AttachToTarget(ctx context.Context, targetID string) (sessionID string, err error)
}

var _ Target = &targetDomain{}

type targetDomain struct {
	exec cdp.Executor
}

// NewTarget returns a new CDP Target domain wrapper.
func NewTarget(exec cdp.Executor) Target {
	return &targetDomain{exec}
}

func (t *targetDomain) CreateTarget(ctx context.Context, url string) (string, error) {
	action := cdpt.CreateTarget(url)
	targetID, err := action.Do(cdp.WithExecutor(ctx, t.exec))
	if err != nil {
		return "", fmt.Errorf("creating target for %q: %w", url, err)
	}

	return string(targetID), nil
}

func (t *targetDomain) AttachToTarget(ctx context.Context, targetID string) (string, error) {
	action := cdpt.AttachToTarget(cdpt.ID(targetID)).WithFlatten(true)
	sessionID, err := action.Do(cdp.WithExecutor(ctx, t.exec))
	if err != nil {
		return "", fmt.Errorf("attaching to target %q: %w", targetID, err)
	}

	return string(sessionID), nil
}
