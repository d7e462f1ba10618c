package openrouter

import (
	"errors"
	"fmt"
)

// ErrNoResponse is returned when a reply holds no completion content.
var ErrNoResponse = errors.New("expected at least one result for LLM call")

var (
	errMissingModel    = errors.New("model is required")
	errMissingMessages = errors.New("messages are required")
)

// Serialization directions.
const (
	OpEncode = "encode"
	OpDecode = "decode"
)

// TransportError reports a request that could not be completed, or a reply
// with a non-2xx status.
type TransportError struct {
	Op         string // build, do, read, status
	URL        string
	StatusCode int    // 0 when no reply was received
	Message    string // API error message, if the reply carried one
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		msg := e.Message
		if msg == "" && e.Err != nil {
			msg = e.Err.Error()
		}
		return fmt.Sprintf("openrouter: %s %s: http %d: %s", e.Op, e.URL, e.StatusCode, msg)
	}
	return fmt.Sprintf("openrouter: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SerializationError reports a request body that could not be encoded or a
// reply body that is not a JSON object.
type SerializationError struct {
	Op  string // OpEncode or OpDecode
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("openrouter: %s: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }
