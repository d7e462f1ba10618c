package openrouter

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"
)

// Response wraps the decoded reply envelope of a chat-completion call.
type Response struct {
	envelope map[string]any
	log      Logger
}

// NewResponse wraps an already decoded envelope. It has no side effects.
func NewResponse(envelope map[string]any) *Response {
	return &Response{envelope: envelope}
}

// Envelope returns the decoded reply as received.
func (r *Response) Envelope() map[string]any {
	return r.envelope
}

// Choices returns the reply's choices, or nil when the envelope has none.
func (r *Response) Choices() []any {
	choices, _ := r.envelope["choices"].([]any)
	return choices
}

// GetResponse returns the cleaned content of the last choice's message.
//
// It assumes a single, non-batched completion: when several choices are
// present, only the last one is read.
func (r *Response) GetResponse() (string, error) {
	choices := r.Choices()
	if len(choices) == 0 {
		return "", ErrNoResponse
	}
	if len(choices) > 1 && r.log != nil {
		r.log.Debug("reply holds several choices, reading the last", "choices", len(choices))
	}

	content, ok := choiceContent(choices[len(choices)-1])
	if !ok {
		return "", ErrNoResponse
	}

	text, err := valueString(content)
	if err != nil {
		return "", &SerializationError{Op: OpDecode, Err: err}
	}
	return cleanContent(text), nil
}

// ChoiceContent returns the raw message content of choice, if any.
func ChoiceContent(choice any) (any, bool) {
	return choiceContent(choice)
}

func choiceContent(choice any) (any, bool) {
	c, ok := choice.(map[string]any)
	if !ok {
		return nil, false
	}
	msg, ok := c["message"].(map[string]any)
	if !ok {
		return nil, false
	}
	content, ok := msg["content"]
	if !ok || content == nil {
		return nil, false
	}
	return content, true
}

// valueString renders a JSON value as text. Strings are used as-is, any
// other value becomes compact JSON.
func valueString(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// cleanContent strips wrapping quote pairs, drops control characters and
// unescapes \" sequences.
func cleanContent(s string) string {
	for len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.ReplaceAll(s, `\"`, `"`)
}
