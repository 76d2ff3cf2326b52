package service

import "errors"

// Sentinel kinds returned by the service.
var (
	ErrNotStarted        = errors.New("service not started")
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrBackpressure      = errors.New("submission queue full")
)
