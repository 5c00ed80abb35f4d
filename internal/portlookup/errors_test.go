package portlookup_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bkcnorm/internal/portlookup"
)

func TestRateLimitError(t *testing.T) {
	inner := errors.New("429 too many requests")
	err := portlookup.NewRateLimitError("http", inner, 0)

	assert.Equal(t, 30*time.Second, err.RetryAfter)
	assert.Equal(t, "http", err.Provider)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "http rate limited")

	var rlErr *portlookup.RateLimitError
	assert.True(t, errors.As(error(err), &rlErr))
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, portlookup.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, portlookup.ParseRetryAfterHeader("Wed, 21 Oct 2015 07:28:00 GMT"))
	assert.Equal(t, 12, portlookup.ParseRetryAfterHeader("12"))
}
