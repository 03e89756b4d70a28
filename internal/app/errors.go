package service

import "errors"

var (
	// ErrAccountNotFound is returned when the requested account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrUnknownMetric is returned for a metric name outside velocity, reach, coverage and findability.
	ErrUnknownMetric = errors.New("unknown metric")
	// ErrBackpressure is returned when the trigger queue is full.
	ErrBackpressure = errors.New("trigger queue full")
	// ErrNotStarted is returned when the service is used before Start.
	ErrNotStarted = errors.New("service not started")
)
