package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("phase not found")
	ErrMissingPhase = errors.New("match has no phase")
	ErrPhaseFull    = errors.New("phase match limit reached")
	ErrFixtures     = errors.New("invalid fixtures")
)
