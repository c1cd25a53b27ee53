package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCodeAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "store unavailable")

	assert.True(t, Is(err, CodeInternal))
	assert.False(t, Is(err, CodeNotFound))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "store unavailable")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeInvalidDuration, CodeOf(New(CodeInvalidDuration, "must be positive")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")), "non-domain errors map to internal")
	assert.Equal(t, CodeInternal, CodeOf(nil))
}

func TestCodeOfUnwrapsWrappedDomainError(t *testing.T) {
	inner := New(CodeForbidden, "access not granted")
	err := fmt.Errorf("handling request: %w", inner)
	assert.Equal(t, CodeForbidden, CodeOf(err))
	assert.True(t, Is(err, CodeForbidden))
}

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeInvalidDuration, http.StatusBadRequest},
		{CodeBadRequest, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeForbidden, http.StatusForbidden},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			require.Equal(t, tc.want, ToHTTPStatus(tc.code))
		})
	}

	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(CodeOf(errors.New("plain"))))
}
