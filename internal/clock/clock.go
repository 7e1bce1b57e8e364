package clock

import (
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/cmeetit/cmeetit/internal/calendar"
)

// Clock supplies the current calendar day.
type Clock interface {
	Today() civil.Date
}

// System reads the wall clock in a fixed location.
type System struct {
	loc *time.Location
}

func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.UTC
	}
	return &System{loc: loc}
}

func (s *System) Today() civil.Date {
	return calendar.Today(time.Now(), s.loc)
}

// Fixed always reports the same day until Set is called.
type Fixed struct {
	mu    sync.RWMutex
	today civil.Date
}

func NewFixed(today civil.Date) *Fixed {
	return &Fixed{today: today}
}

func (f *Fixed) Today() civil.Date {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.today
}

func (f *Fixed) Set(today civil.Date) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.today = today
}

// Advance moves the clock forward by n days.
func (f *Fixed) Advance(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.today = f.today.AddDays(n)
}
