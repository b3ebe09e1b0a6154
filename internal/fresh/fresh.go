// Package fresh hands out unique temporary names and labels across the
// resolution and TACKY passes of a single compile. A counter is
// shared by every pass in the pipeline so identifiers never collide between
// stages, matching the single-instance-per-compile lifetime described in
// the specification.
package fresh

import (
	"strconv"
	"sync"
)

// Counter is a mutex-guarded monotonic counter. A Compiler owns exactly one
// Counter for its lifetime; passes borrow it rather than keeping their own.
type Counter struct {
	mu sync.Mutex
	n  int
}

// New returns a Counter starting at zero.
func New() *Counter {
	return &Counter{}
}

// Name returns a fresh identifier of the form "<tag>.<n>", suitable for a
// compiler-generated variable that cannot collide with source identifiers
// (source identifiers never contain a '.').
func (c *Counter) Name(tag string) string {
	return tag + "." + c.next()
}

// Label returns a fresh label of the form "<tag>_<n>", suitable for a
// compiler-generated jump target.
func (c *Counter) Label(tag string) string {
	return tag + "_" + c.next()
}

func (c *Counter) next() string {
	c.mu.Lock()
	c.n++
	n := c.n
	c.mu.Unlock()
	return strconv.Itoa(n)
}
