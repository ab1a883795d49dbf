// Package sidecar defines the process-boundary contract between the host and
// the out-of-process measurement driver: exactly one JSON document on stdout,
// either the analysis result or an error envelope, with a non-zero exit code
// signaling failure.
package sidecar

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/greenweb/ecoscan/analyzer"

	"github.com/oxtoacart/bpool"
)

// ErrorEnvelope is the failure half of the protocol.
type ErrorEnvelope struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// UnknownErrorCode is used when a failure carries no stable code of its own.
const UnknownErrorCode = "ANALYSIS_FAILED"

var docBuffers = bpool.NewBufferPool(4)

// WriteResult emits the success document.
func WriteResult(w io.Writer, result *analyzer.AnalysisResult) error {
	return writeDoc(w, result)
}

// WriteError emits the failure document for err. The envelope code is taken
// from the typed error when it carries one.
func WriteError(w io.Writer, err error) error {
	env := ErrorEnvelope{
		Error:   true,
		Code:    CodeOf(err),
		Message: err.Error(),
	}
	var detailed interface{ Unwrap() error }
	if errors.As(err, &detailed) && detailed.Unwrap() != nil {
		env.Details = detailed.Unwrap().Error()
	}
	return writeDoc(w, env)
}

// CodeOf extracts the stable wire code from a typed error chain, falling
// back to UnknownErrorCode.
func CodeOf(err error) string {
	var coder interface{ Code() string }
	if errors.As(err, &coder) {
		return coder.Code()
	}
	return UnknownErrorCode
}

func writeDoc(w io.Writer, doc any) error {
	buf := docBuffers.Get()
	defer docBuffers.Put(buf)

	if err := json.NewEncoder(buf).Encode(doc); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
