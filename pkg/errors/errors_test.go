package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := Process("twint exited", 2, errors.New("exit status 2"))
	assert.Equal(t, "process error: twint exited: exit status 2", err.Error())

	plain := &Error{Type: ErrorTypeParse, Message: "line 3 is not JSON"}
	assert.Equal(t, "parse error: line 3 is not JSON", plain.Error())
}

func TestTypeOfThroughWrapping(t *testing.T) {
	base := New(ErrorTypeParse, "bad line", nil)
	wrapped := fmt.Errorf("max retry attempts (3) exceeded: %w", base)

	assert.Equal(t, ErrorTypeParse, TypeOf(wrapped))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(errors.New("plain")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("no such file")
	err := New(ErrorTypeIO, "open scratch", cause)
	assert.ErrorIs(t, err, cause)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		errType  ErrorType
		expected bool
	}{
		{ErrorTypeProcess, true},
		{ErrorTypeParse, true},
		{ErrorTypeIO, true},
		{ErrorTypeProbe, false},
		{ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryable(tt.errType))
		})
	}
}
