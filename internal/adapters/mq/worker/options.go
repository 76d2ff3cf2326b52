// Package worker applies queued result submissions to the match store.
package worker

import (
	"github.com/okian/tatami/pkg/logger"
)

// FailureFunc is called when a submission could not be applied.
type FailureFunc func(s Submission, err error)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithFailureHandler registers a callback for submissions that failed to apply.
func WithFailureHandler(fn FailureFunc) Option {
	return func(w *InMemoryWorker) {
		if fn != nil {
			w.onFailure = fn
		}
	}
}
