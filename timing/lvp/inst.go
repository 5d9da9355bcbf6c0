package lvp

// LoadEvent describes an in-flight load instruction as the host passes
// it across the predict()/update() boundary (spec.md §4.5, §6). The
// host owns fetch, decode, dispatch, and the rename map; this is the
// minimal slice of an in-flight instruction the predictor core needs.
type LoadEvent struct {
	PC     uint64
	Tid    uint32
	SeqNum uint64

	// EffAddr/EffAddrKnown capture that the effective address may not
	// yet be known at predict() time (spec.md §4.5). It is always known
	// by update() time (step 5 of the update algorithm installs a CVU
	// entry using it).
	EffAddr      uint64
	EffAddrKnown bool
	EffSize      uint32

	// MemValue is the actual value loaded, known only at writeback
	// (update() time).
	MemValue uint64

	// Fields the core attaches during predict(), per spec.md §6's
	// "Core → instruction surface" mutations.
	LdPredictable  bool
	LdConstant     bool
	PredictedValue uint64
}

// SetLdPredictable implements the setLdPredictable(bool) mutation
// spec.md §6 names; Unit.Predict calls this rather than assigning
// LdPredictable directly, so the field stays named after its source
// algorithm step even as LoadEvent grows other fields.
func (l *LoadEvent) SetLdPredictable(v bool) { l.LdPredictable = v }

// SetLdConstant implements the setLdConstant(bool) mutation.
func (l *LoadEvent) SetLdConstant(v bool) { l.LdConstant = v }

// SetPredictedValue implements the setPredictedValue(u64) mutation.
func (l *LoadEvent) SetPredictedValue(v uint64) { l.PredictedValue = v }

// StoreEvent describes a store instruction once its effective address
// is known (spec.md §4.5's cvu_invalidate input).
type StoreEvent struct {
	PC      uint64
	Tid     uint32
	EffAddr uint64
	EffSize uint32
}
