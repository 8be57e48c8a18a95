// Package clock separates "what time is it" from the code that asks, so the
// day window used for fetching and the wall clock used for display can be
// driven independently.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// System reads the wall clock
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Func adapts a function to a Clock
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}

// Fixed always reports the same instant
func Fixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}
