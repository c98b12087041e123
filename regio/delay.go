package regio

import (
	"time"

	"github.com/benbjohnson/clock"
)

// ClockDelay sleeps on a clock. Tests use clock.NewMock to advance time explicitly.
type ClockDelay struct {
	Clock clock.Clock
}

// NewClockDelay returns a ClockDelay on the wall clock.
func NewClockDelay() ClockDelay {
	return ClockDelay{Clock: clock.New()}
}

// DelayNs sleeps for ns nanoseconds.
func (d ClockDelay) DelayNs(ns uint32) {
	if ns == 0 {
		return
	}
	d.Clock.Sleep(time.Duration(ns))
}
