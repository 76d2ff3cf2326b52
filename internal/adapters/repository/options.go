package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithPhaseCapacity caps the number of distinct matches a phase may hold.
// Zero means unlimited.
func WithPhaseCapacity(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.phaseCapacity = n
		}
	}
}
