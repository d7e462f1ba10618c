package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ppiankov/orcall/openrouter"
	"github.com/stretchr/testify/assert"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"input", InvalidInput("--model is required"), ExitInvalidInput},
		{"wrapped input", fmt.Errorf("call: %w", InvalidInput("bad")), ExitInvalidInput},
		{"encode", &openrouter.SerializationError{Op: openrouter.OpEncode, Err: errors.New("x")}, ExitInvalidInput},
		{"decode", &openrouter.SerializationError{Op: openrouter.OpDecode, Err: errors.New("x")}, ExitRuntimeError},
		{"transport", &openrouter.TransportError{Op: "do", Err: errors.New("refused")}, ExitRuntimeError},
		{"no response", fmt.Errorf("extract: %w", openrouter.ErrNoResponse), ExitNoResponse},
		{"other", errors.New("disk full"), ExitRuntimeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFor(tt.err))
		})
	}
}
