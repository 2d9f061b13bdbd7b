package clock

import (
	"sync"
	"time"
)

// Clock abstracts time to keep usecases deterministic in tests.
// Readings are calendar times: day boundaries are taken in the reading's location.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock. A nil Location means time.Local.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// Manual is a controllable Clock for tests. It may be moved forward across
// midnight or backward to simulate system clock adjustments.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock by d (negative values move it backward) and returns the new reading.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}
