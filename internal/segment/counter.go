package segment

import "sync/atomic"

// Counter hands out segment numbers for a whole run. The first number is 1.
// It is never reset between source files, so one Counter must be shared by
// every Segmenter of a run. Safe for concurrent use.
type Counter struct {
	last atomic.Int64
}

// NewCounter returns a Counter whose first number is 1.
func NewCounter() *Counter {
	return &Counter{}
}

// Next reserves and returns the next number.
func (c *Counter) Next() int {
	return int(c.last.Add(1))
}

// Issued returns how many numbers have been handed out.
func (c *Counter) Issued() int {
	return int(c.last.Load())
}
