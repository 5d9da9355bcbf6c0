// Package core wraps the LVP host driver into a minimal trace-stepping
// engine: load it with a trace and tick it to completion one memory
// operation at a time, mirroring the high-level interface timing/core
// once provided over a full ARM64 pipeline.
package core

import (
	"github.com/sharathat45/load-value-predictor/timing/host"
	"github.com/sharathat45/load-value-predictor/timing/lvp"
)

// Stats summarizes a completed (or in-progress) run.
type Stats struct {
	// Cycles is the total number of cycles charged so far.
	Cycles uint64
	// Loads is the number of load operations retired.
	Loads uint64
	// Stores is the number of store operations retired.
	Stores uint64
	// Mispredictions is the number of loads whose predicted value
	// differed from the actual value observed at writeback.
	Mispredictions uint64
}

// Core steps through a Trace against a host.Driver, one entry at a time.
type Core struct {
	driver *host.Driver
	trace  host.Trace
	pos    int
	stats  Stats
}

// NewCore builds a Core around a freshly constructed LVP unit.
func NewCore(unit *lvp.Unit, opts ...host.Option) *Core {
	return &Core{driver: host.NewDriver(unit, opts...)}
}

// LoadTrace installs the trace to execute and resets position/stats.
func (c *Core) LoadTrace(t host.Trace) {
	c.trace = t
	c.pos = 0
	c.stats = Stats{}
}

// Halted reports whether every trace entry has been executed.
func (c *Core) Halted() bool {
	return c.pos >= len(c.trace)
}

// Tick executes the next trace entry and advances position. Returns
// false if the core was already halted.
func (c *Core) Tick() bool {
	if c.Halted() {
		return false
	}

	e := c.trace[c.pos]
	c.pos++

	switch e.Op {
	case host.OpLoad:
		ev := c.driver.DispatchLoad(e.PC, e.Tid, e.Addr, e.Size, true)
		c.driver.CompleteLoad(ev, false)
		c.stats.Loads++
		if ev.LdPredictable && ev.PredictedValue != ev.MemValue {
			c.stats.Mispredictions++
		}
	case host.OpStore:
		sev := c.driver.DispatchStore(e.PC, e.Tid, e.Addr, e.Size, e.Value)
		c.driver.CompleteStore(sev)
		c.stats.Stores++
	}

	c.stats.Cycles = c.driver.Cycles()
	return true
}

// Run ticks until halted and returns the final statistics.
func (c *Core) Run() Stats {
	for c.Tick() {
	}
	return c.stats
}

// Stats returns the statistics accumulated so far.
func (c *Core) Stats() Stats {
	return c.stats
}

// Driver returns the underlying host driver, for callers that need
// direct access to LVP or cache statistics.
func (c *Core) Driver() *host.Driver {
	return c.driver
}

// Reset clears the driver's LVP state and cycle counter, and rewinds to
// the start of the currently loaded trace.
func (c *Core) Reset() {
	c.driver.Reset()
	c.pos = 0
	c.stats = Stats{}
}
