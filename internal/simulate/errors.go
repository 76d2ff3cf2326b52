package simulate

import "errors"

var (
	// ErrUnhealthy is returned when the service health check fails.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrSubmit is returned when a result could not be delivered.
	ErrSubmit = errors.New("submit failed")
	// ErrNotSettled is returned when the service did not apply every result in time.
	ErrNotSettled = errors.New("results not applied in time")
	// ErrVerification is returned when a served ranking disagrees with the local one.
	ErrVerification = errors.New("ranking verification failed")
)
