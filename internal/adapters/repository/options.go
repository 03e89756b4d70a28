package repository

import "time"

// Option applies a configuration option to the SQLStore.
type Option func(*SQLStore)

// WithQueryTimeout bounds every statement issued by the store. Zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *SQLStore) {
		if d >= 0 {
			s.queryTimeout = d
		}
	}
}
