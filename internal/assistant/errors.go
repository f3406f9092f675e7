package assistant

import (
	"errors"
	"fmt"
)

var (
	// ErrNoContent is returned when the gateway answered 2xx but the
	// response carried no assistant reply text.
	ErrNoContent = errors.New("no content returned")

	// ErrRequestInFlight is returned when a chat or routine request is
	// started while another one is still outstanding.
	ErrRequestInFlight = errors.New("a request is already in flight")

	// ErrEmptySelection is returned by routine generation when no
	// products are selected.
	ErrEmptySelection = errors.New("no products selected")

	// ErrEmptyMessage is returned when a chat message is empty or
	// whitespace-only.
	ErrEmptyMessage = errors.New("message is empty")
)

// StatusError reports a non-2xx gateway response with its raw body, so the
// caller can surface both verbatim.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway returned status %d: %s", e.Status, e.Body)
}
