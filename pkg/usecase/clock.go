package usecase

import "time"

// Clock returns the current time. Tests replace it to control due times.
type Clock func() time.Time

func defaultClock() time.Time {
	return time.Now()
}
