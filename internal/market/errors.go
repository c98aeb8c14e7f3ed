package market

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// AdapterError wraps a provider failure with enough context for the
// report cycle to tell timeouts apart from other outages.
type AdapterError struct {
	Provider string
	Op       string
	Err      error
	Timeout  bool
}

func (e *AdapterError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: %s timed out: %v", e.Provider, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// wrapErr classifies err as an AdapterError, marking transport and
// deadline timeouts.
func wrapErr(provider, op string, err error) *AdapterError {
	ae := &AdapterError{Provider: provider, Op: op, Err: err}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		ae.Timeout = true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		ae.Timeout = true
	}
	return ae
}

// IsTimeout reports whether err is an adapter timeout.
func IsTimeout(err error) bool {
	var ae *AdapterError
	return errors.As(err, &ae) && ae.Timeout
}
