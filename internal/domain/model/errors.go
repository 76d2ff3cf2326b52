package model

import "errors"

// Sentinel kinds for model validation.
var (
	ErrInvalidMatch = errors.New("invalid match")
)
