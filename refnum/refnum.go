// Package refnum mints month-scoped serial numbers for document reference ids.
//
// Each document category owns one persisted Counter under its own key. The
// serial restarts at 1 the first time a new month is seen and otherwise
// increases by one per allocation. Stores run every allocation as a single
// critical section: acquire, read, compute, write, release.
package refnum

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Counter is the persisted state of one document category.
type Counter struct {
	Month  string `json:"month"`  // 3-letter upper-case month code, "" before first use
	Serial int    `json:"serial"` // last serial handed out in Month
}

// Store persists counters by key.
type Store interface {
	// Advance reads the counter for key ({"", 0} if absent), applies fn and
	// writes the result back, exclusively. It returns the written counter.
	// A record that cannot be decoded yields a *CounterStateError and is left untouched.
	Advance(ctx context.Context, key string, fn func(Counter) Counter) (Counter, error)
}

// Peeker is implemented by stores that can read a counter without advancing it.
type Peeker interface {
	Peek(ctx context.Context, key string) (c Counter, found bool, err error)
}

var ErrInvalidMonth = errors.New("refnum: month must be a 3-letter code")

// CounterStateError reports a persisted counter that is unreadable or corrupt.
// No serial is guessed when it occurs.
type CounterStateError struct {
	Key     string
	Message string
	Cause   error
}

func (e *CounterStateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("counter state error [%s]: %s: %v", e.Key, e.Message, e.Cause)
	}
	return fmt.Sprintf("counter state error [%s]: %s", e.Key, e.Message)
}

func (e *CounterStateError) Unwrap() error {
	return e.Cause
}

// Validate checks a decoded counter. Stores call it before handing a record to fn.
func (c Counter) Validate(key string) error {
	if c.Serial < 0 {
		return &CounterStateError{Key: key, Message: fmt.Sprintf("negative serial %d", c.Serial)}
	}
	if c.Month != "" && !isMonthCode(c.Month) {
		return &CounterStateError{Key: key, Message: fmt.Sprintf("bad month %q", c.Month)}
	}
	return nil
}

// Step is the allocation rule: a new month restarts at 1, otherwise the serial increments.
func Step(month string) func(Counter) Counter {
	return func(c Counter) Counter {
		if c.Month != month {
			return Counter{Month: month, Serial: 1}
		}
		return Counter{Month: month, Serial: c.Serial + 1}
	}
}

// Generator hands out serials for one document category.
type Generator struct {
	Store Store
	Key   string // e.g. "offer_serial", "certificate_serial"
}

// NextSerial allocates the next serial for month.
func (g *Generator) NextSerial(ctx context.Context, month string) (int, error) {
	if !isMonthCode(month) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	c, err := g.Store.Advance(ctx, g.Key, Step(month))
	if err != nil {
		return 0, err
	}
	log.Printf("[INFO][REFNUM] %s: allocated %s/%03d", g.Key, c.Month, c.Serial)
	return c.Serial, nil
}

// Next allocates the next serial for month, zero-padded to 3 digits.
func (g *Generator) Next(ctx context.Context, month string) (string, error) {
	n, err := g.NextSerial(ctx, month)
	if err != nil {
		return "", err
	}
	return FormatSerial(n), nil
}

func FormatSerial(n int) string {
	return fmt.Sprintf("%03d", n)
}

func isMonthCode(m string) bool {
	if len(m) != 3 {
		return false
	}
	for i := 0; i < len(m); i++ {
		if m[i] < 'A' || m[i] > 'Z' {
			return false
		}
	}
	return true
}
