package host

import (
	"github.com/sharathat45/load-value-predictor/timing/cache"
	"github.com/sharathat45/load-value-predictor/timing/latency"
	"github.com/sharathat45/load-value-predictor/timing/lvp"
)

// Driver plays the role a dispatch/writeback pipeline stage would:
// issuing predict() at dispatch, completing the access through the
// cache hierarchy, and issuing update() at writeback with the real
// value. It owns the sequence-number space the LVP unit's VPTT keys on.
type Driver struct {
	unit  *lvp.Unit
	mem   *Memory
	cache *cache.Cache
	table *latency.Table

	cycles  uint64
	nextSeq uint64
}

// Option configures a Driver at construction, mirroring the functional
// options pattern used for pipeline configuration elsewhere in this
// codebase.
type Option func(*Driver)

// WithMemory attaches a backing memory, read and written directly when
// no cache is attached. With neither a memory nor a cache, a completed
// load always observes zero and a completed store only affects
// predictor state.
func WithMemory(m *Memory) Option {
	return func(d *Driver) { d.mem = m }
}

// WithCache attaches an L1 data cache in front of memory. Without one,
// every access is charged the latency table's raw load/store latency
// with no hit/miss modeling.
func WithCache(c *cache.Cache) Option {
	return func(d *Driver) { d.cache = c }
}

// WithTimingConfig overrides the default latency table.
func WithTimingConfig(cfg *latency.TimingConfig) Option {
	return func(d *Driver) { d.table = latency.NewTableWithConfig(cfg) }
}

// NewDriver builds a Driver around an already-constructed LVP unit.
func NewDriver(unit *lvp.Unit, opts ...Option) *Driver {
	d := &Driver{
		unit:  unit,
		table: latency.NewTable(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Cycles returns the cumulative cycle count the driver has charged.
func (d *Driver) Cycles() uint64 {
	return d.cycles
}

// Unit returns the underlying LVP unit, for callers that want direct
// access to its statistics or configuration.
func (d *Driver) Unit() *lvp.Unit {
	return d.unit
}

// Reset clears cycle accounting and the LVP unit's tables/statistics,
// leaving memory and cache contents untouched.
func (d *Driver) Reset() {
	d.cycles = 0
	d.nextSeq = 0
	d.unit.Reset()
}

// DispatchLoad issues predict() for a load at dispatch time, before the
// effective address may even be resolved. If addrKnown is false,
// effAddr/effSize are placeholders the caller must overwrite on the
// returned event directly, once address generation completes, before
// calling CompleteLoad.
func (d *Driver) DispatchLoad(pc uint64, tid uint32, effAddr uint64, effSize uint32, addrKnown bool) *lvp.LoadEvent {
	ev := &lvp.LoadEvent{
		PC:           pc,
		Tid:          tid,
		SeqNum:       d.nextSeq,
		EffAddr:      effAddr,
		EffAddrKnown: addrKnown,
		EffSize:      effSize,
	}
	d.nextSeq++
	d.unit.Predict(ev)
	return ev
}

// CompleteLoad finishes a load at writeback: it resolves the actual
// value (bypassing the cache entirely if the CVU already certifies the
// predicted value as a verified constant and the unit is running in
// lvp.ModeWithCVU), trains the predictor via update(), and returns the
// cycles charged for this access.
func (d *Driver) CompleteLoad(ev *lvp.LoadEvent, squashed bool) uint64 {
	if squashed {
		d.unit.Update(ev, true)
		return 0
	}

	size := int(ev.EffSize)
	if size == 0 {
		size = 1
	}

	var cycles uint64
	if d.unit.Config().Mode == lvp.ModeWithCVU && ev.LdConstant && d.unit.CvuValid(ev) {
		// The CVU certifies no store has touched this range since the
		// constant was installed: the value can be trusted without a
		// counted cache read or data-array read. When a cache is attached,
		// route the bypass through it anyway (BypassRead), so the cache's
		// own LRU state doesn't drift out of sync with addresses that
		// keep getting served this way.
		ev.MemValue = ev.PredictedValue
		if d.cache != nil {
			d.cache.BypassRead(ev.EffAddr, size, ev.PredictedValue)
		}
		cycles = d.table.CVUBypassLatency()
	} else {
		ev.MemValue, cycles = d.readMemory(ev.EffAddr, size)
	}

	mispredicted := ev.LdPredictable && ev.PredictedValue != ev.MemValue
	d.unit.Update(ev, false)

	if mispredicted {
		cycles += d.table.MispredictPenalty()
	}

	d.cycles += cycles
	return cycles
}

// StoreEvent is the store-side analogue of lvp.LoadEvent: allocated at
// dispatch once the effective address is known, committed at writeback.
type StoreEvent struct {
	PC      uint64
	Tid     uint32
	EffAddr uint64
	EffSize uint32
	Value   uint64
}

// DispatchStore allocates a store event for an address-resolved store.
// It performs no memory or predictor side effects; those happen at
// CompleteStore, mirroring the load side's dispatch/complete split.
func (d *Driver) DispatchStore(pc uint64, tid uint32, effAddr uint64, effSize uint32, value uint64) *StoreEvent {
	return &StoreEvent{PC: pc, Tid: tid, EffAddr: effAddr, EffSize: effSize, Value: value}
}

// CompleteStore commits a store to the memory hierarchy and runs
// cvu_invalidate against any CVU entries the store's byte range
// overlaps. Returns the cycles charged for this access.
func (d *Driver) CompleteStore(ev *StoreEvent) uint64 {
	size := int(ev.EffSize)
	if size == 0 {
		size = 1
	}

	cycles := d.writeMemory(ev.EffAddr, size, ev.Value)
	d.unit.CvuInvalidate(lvp.StoreEvent{PC: ev.PC, Tid: ev.Tid, EffAddr: ev.EffAddr, EffSize: ev.EffSize})

	d.cycles += cycles
	return cycles
}

// Squash drops every in-flight VPTT entry younger than keepSeqNum, the
// driver-level hook for a pipeline flush on branch or load misprediction.
func (d *Driver) Squash(keepSeqNum uint64) int {
	return d.unit.Squash(keepSeqNum)
}

// readMemory resolves a load's value and the cycles it costs, through
// the cache when one is attached, otherwise directly against memory (or
// a fixed latency with no backing store at all, for pure predictor
// accuracy testing).
func (d *Driver) readMemory(addr uint64, size int) (value uint64, cycles uint64) {
	if d.cache != nil {
		r := d.cache.Read(addr, size)
		return r.Data, r.Latency
	}
	if d.mem != nil {
		return d.mem.ReadSized(addr, size), d.table.GetLatency(latency.OpLoad)
	}
	return 0, d.table.GetLatency(latency.OpLoad)
}

func (d *Driver) writeMemory(addr uint64, size int, value uint64) uint64 {
	if d.cache != nil {
		return d.cache.Write(addr, size, value).Latency
	}
	if d.mem != nil {
		d.mem.WriteSized(addr, size, value)
	}
	return d.table.GetLatency(latency.OpStore)
}
