package ingest

import "errors"

var (
	// ErrFetchFeed is returned when a feed cannot be fetched or parsed.
	ErrFetchFeed = errors.New("fetch feed")
	// ErrMissingAccount is returned when no account id is given.
	ErrMissingAccount = errors.New("account id is required")
)
