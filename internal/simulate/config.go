package simulate

import "time"

// Defaults used when a Config field is left zero.
const (
	DefaultWrestlers = 16
	DefaultPhases    = 2
	DefaultWorkers   = 8
	DefaultTimeout   = 10 * time.Second
	DefaultSettle    = 30 * time.Second
	DefaultRetries   = 5
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL    string        // base URL of the service
	Wrestlers  int           // wrestlers per phase, rounded down to a power of two
	Phases     int           // number of phases to generate
	Workers    int           // concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	Settle     time.Duration // how long to wait for the pipeline to apply results
	Seed       int64         // faker seed; 0 picks one from the clock
	Duplicates bool          // resubmit every result once with the same id
	Retries    int           // attempts per submission on 429
}

func (c *Config) applyDefaults() {
	if c.Wrestlers <= 0 {
		c.Wrestlers = DefaultWrestlers
	}
	if c.Phases <= 0 {
		c.Phases = DefaultPhases
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Settle <= 0 {
		c.Settle = DefaultSettle
	}
	if c.Retries <= 0 {
		c.Retries = DefaultRetries
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
}

// Stats holds run statistics.
type Stats struct {
	Phases      int
	Matches     int
	Submitted   int64
	Accepted    int64
	Duplicates  int64
	RateLimited int64
	Failed      int64
	Verified    int
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}
