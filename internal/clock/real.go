package clock

import (
	"time"

	"github.com/vvka-141/retrier/pkg/retrier"
)

// Real implements retrier.Clock using the standard time package.
type Real struct{}

// New returns the wall clock.
func New() Real {
	return Real{}
}

// Now returns time.Now().
func (Real) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f with time.AfterFunc.
func (Real) AfterFunc(d time.Duration, f func()) retrier.Timer {
	return time.AfterFunc(d, f)
}
