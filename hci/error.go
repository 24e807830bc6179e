// Package hci defines the envelope contract shared between the generic
// HCI transport layer and the vendor-specific event decoders. The
// transport delivers one complete event payload per call; the error
// types here describe failures that are generic across every vendor
// module rather than specific to a single event.
package hci

import "fmt"

// LengthError reports an event buffer whose length does not satisfy the
// decoder's requirement. Required is the exact length for fixed-shape
// events, or the minimum length for variable-shape events.
type LengthError struct {
	Actual   int
	Required int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("bad event length: have %d, need %d", e.Actual, e.Required)
}

// RequireExactLen fails with a LengthError unless the buffer is exactly
// want bytes long. Every fixed-shape decoder calls this before reading
// any payload field.
func RequireExactLen(b []byte, want int) error {
	if len(b) != want {
		return &LengthError{Actual: len(b), Required: want}
	}
	return nil
}

// RequireMinLen fails with a LengthError unless the buffer is at least
// want bytes long. Variable-shape decoders call this to cover the fixed
// header before reading the length field that determines the full size.
func RequireMinLen(b []byte, want int) error {
	if len(b) < want {
		return &LengthError{Actual: len(b), Required: want}
	}
	return nil
}
