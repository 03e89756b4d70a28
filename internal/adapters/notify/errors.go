package notify

import "errors"

var (
	// ErrDeliveryRejected is returned when a sink endpoint answers with a non-2xx status.
	ErrDeliveryRejected = errors.New("delivery rejected")
	// ErrMissingEndpoint is returned when a sink is built without its target.
	ErrMissingEndpoint = errors.New("missing sink endpoint")
)
