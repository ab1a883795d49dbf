package collector

import (
	"fmt"
	"time"
)

// NavigationTimeoutError is returned when a bounded navigation stage (render
// or first paint) does not complete in time. Terminal for the run.
type NavigationTimeoutError struct {
	Stage   string // "render" or "first-paint"
	Timeout time.Duration
}

func (e *NavigationTimeoutError) Error() string {
	return fmt.Sprintf("navigation timed out waiting for %s after %s", e.Stage, e.Timeout)
}

// Code returns the stable wire code for this error kind.
func (e *NavigationTimeoutError) Code() string { return "NAVIGATION_TIMEOUT" }

// NetworkError is returned when the page cannot be reached or the browser
// session breaks during navigation. Terminal for the run.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure for %q: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Code returns the stable wire code for this error kind.
func (e *NetworkError) Code() string { return "NETWORK_ERROR" }

// MetricsError is returned when the stabilized page is reached but metric
// extraction fails. Terminal for the run.
type MetricsError struct {
	Op  string
	Err error
}

func (e *MetricsError) Error() string {
	return fmt.Sprintf("collecting metrics (%s): %v", e.Op, e.Err)
}

func (e *MetricsError) Unwrap() error { return e.Err }

// Code returns the stable wire code for this error kind.
func (e *MetricsError) Code() string { return "METRICS_COLLECTION_FAILED" }
