package browser

import "fmt"

// LaunchError is returned when the browser executable cannot be started or
// does not expose a usable DevTools endpoint. It is terminal for a run.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching browser %q: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Code returns the stable wire code for this error kind.
func (e *LaunchError) Code() string { return "BROWSER_LAUNCH_FAILED" }
