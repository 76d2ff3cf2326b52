package service

import (
	"time"

	"github.com/okian/tatami/internal/adapters/repository"
	"github.com/okian/tatami/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of workers applying submissions.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the submission id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithStore replaces the default in-memory match store.
func WithStore(store repository.MatchStore) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithFixtures seeds the store with fixtures when the service starts.
func WithFixtures(fx *repository.Fixtures) Option {
	return func(s *Service) {
		s.fixtures = fx
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
