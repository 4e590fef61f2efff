package tracker

import "time"

// Clock provides the time base used to evaluate lease expiry.
// It is injected so expiry behavior can be tested with a fake
// time source
type Clock interface {
	// Now returns the current time
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns a Clock backed by the wall clock
func SystemClock() Clock {
	return systemClock{}
}
