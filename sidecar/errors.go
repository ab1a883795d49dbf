package sidecar

import "fmt"

// SpawnError is returned when the sidecar binary could not be started.
type SpawnError struct {
	Binary string
	Err    error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawning sidecar %q: %v", e.Binary, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Code returns the stable wire code for this error kind.
func (e *SpawnError) Code() string { return "SIDECAR_SPAWN_FAILED" }

// CommunicationError is returned when the sidecar process started but did
// not complete the exchange (crash, signal, deadline).
type CommunicationError struct {
	Err    error
	Stderr string
}

func (e *CommunicationError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("sidecar communication failed: %v (stderr: %s)", e.Err, e.Stderr)
	}
	return fmt.Sprintf("sidecar communication failed: %v", e.Err)
}

func (e *CommunicationError) Unwrap() error { return e.Err }

// Code returns the stable wire code for this error kind.
func (e *CommunicationError) Code() string { return "SIDECAR_COMM_FAILED" }

// ParseError is returned when the sidecar's stdout is not a valid protocol
// document.
type ParseError struct {
	Err    error
	Output string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing sidecar output: %v (output: %s)", e.Err, e.Output)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Code returns the stable wire code for this error kind.
func (e *ParseError) Code() string { return "SIDECAR_PARSE_FAILED" }

// AnalysisError carries a failure reported by the sidecar itself through the
// error envelope. Its code comes from the payload, not from this package.
type AnalysisError struct {
	ErrCode string
	Message string
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed (%s): %s", e.ErrCode, e.Message)
}

// Code returns the error code reported by the sidecar.
func (e *AnalysisError) Code() string { return e.ErrCode }
