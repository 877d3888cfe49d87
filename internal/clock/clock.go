package clock

import "time"

// Clock reads the current time as a real-valued seconds counter. The default
// profiling instruments sample it at every function entry and exit, so
// implementations must be monotonic.
type Clock interface {
	Now() float64
}

type systemClock struct {
	epoch time.Time
}

// System returns a Clock backed by the process monotonic clock. Readings are
// seconds elapsed since the Clock was created.
func System() Clock {
	return &systemClock{epoch: time.Now()}
}

func (c *systemClock) Now() float64 {
	return time.Since(c.epoch).Seconds()
}

// Mock is a manually advanced Clock for deterministic tests.
type Mock struct {
	T float64
}

func (m *Mock) Now() float64 { return m.T }

// Set moves the mock clock to the given time.
func (m *Mock) Set(t float64) { m.T = t }
