package target

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimensions is returned when a resize is requested with a non-positive width or height.
	ErrInvalidDimensions = errors.New("render target dimensions must be positive")

	// ErrNotAllocated is returned when framebuffers are built from a set that has not been resized yet.
	ErrNotAllocated = errors.New("render targets have not been allocated")

	// ErrIncompleteAttachment is reported for StatusIncompleteAttachment.
	ErrIncompleteAttachment = errors.New("framebuffer has an incomplete attachment")

	// ErrMissingAttachment is reported for StatusIncompleteMissingAttachment.
	ErrMissingAttachment = errors.New("framebuffer has no attachments")

	// ErrIncompleteDrawBuffer is reported for StatusIncompleteDrawBuffer.
	ErrIncompleteDrawBuffer = errors.New("framebuffer draw buffer references an empty color attachment")

	// ErrIncompleteReadBuffer is reported for StatusIncompleteReadBuffer.
	ErrIncompleteReadBuffer = errors.New("framebuffer read buffer references an empty color attachment")

	// ErrUnsupported is reported for StatusUnsupported.
	ErrUnsupported = errors.New("framebuffer attachment combination is unsupported")

	// ErrIncompleteDimensions is reported for StatusIncompleteDimensions.
	ErrIncompleteDimensions = errors.New("framebuffer attachments differ in size")
)

// FramebufferError reports a framebuffer that failed its completeness check.
type FramebufferError struct {
	Framebuffer string
	Status      Status
}

func (e *FramebufferError) Error() string {
	return fmt.Sprintf("framebuffer %q is not complete: %v", e.Framebuffer, e.Unwrap())
}

// Unwrap returns the sentinel error for the failed status.
func (e *FramebufferError) Unwrap() error {
	switch e.Status {
	case StatusIncompleteAttachment:
		return ErrIncompleteAttachment
	case StatusIncompleteMissingAttachment:
		return ErrMissingAttachment
	case StatusIncompleteDrawBuffer:
		return ErrIncompleteDrawBuffer
	case StatusIncompleteReadBuffer:
		return ErrIncompleteReadBuffer
	case StatusUnsupported:
		return ErrUnsupported
	case StatusIncompleteDimensions:
		return ErrIncompleteDimensions
	default:
		return fmt.Errorf("unknown framebuffer status %d", int(e.Status))
	}
}
