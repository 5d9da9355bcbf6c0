package lvp

// LCT is the Load Classification Table: a direct-mapped table of
// saturating counters keyed by PC, answering "is this load predictable,
// and how confidently?" Indexing drops instShiftAmt low-order PC bits
// and masks to table size — no tag, no thread qualifier, matching
// spec.md §4.2's explicit aliasing-is-accepted design. The index
// arithmetic mirrors timing/pipeline.BranchPredictor.bhtIndex.
type LCT struct {
	counters     []Counter
	size         uint32
	mask         uint32
	instShiftAmt uint8
}

// NewLCT builds an LCT with size entries (must be a power of two),
// counters of the given width, seeded at initial.
func NewLCT(size uint32, ctrBits uint8, instShiftAmt uint8, initial uint8) *LCT {
	counters := make([]Counter, size)
	for i := range counters {
		counters[i] = NewCounter(ctrBits, initial)
	}
	return &LCT{
		counters:     counters,
		size:         size,
		mask:         size - 1,
		instShiftAmt: instShiftAmt,
	}
}

func (l *LCT) index(pc uint64) uint32 {
	return uint32((pc >> l.instShiftAmt) & uint64(l.mask))
}

// Lookup returns the counter value at the PC's mapped slot. tid is
// accepted for interface symmetry with LVPT/CVU but does not affect
// indexing (spec.md §5: LCT indexing is thread-oblivious).
func (l *LCT) Lookup(tid uint32, pc uint64) uint8 {
	_ = tid
	return l.counters[l.index(pc)].Read()
}

// GetPrediction is the pure "MSB set" predicate over a counter value
// already read via Lookup: predictable iff value >= 2^(width-1).
func (l *LCT) GetPrediction(counterValue uint8) bool {
	max := l.maxOf()
	return counterValue > max/2
}

// maxOf computes this LCT's saturation ceiling from its first counter's
// width (all counters share one width).
func (l *LCT) maxOf() uint8 {
	if len(l.counters) == 0 {
		return 0
	}
	return l.counters[0].Max()
}

// Max returns the saturation ceiling ("constant") for this table's
// counters.
func (l *LCT) Max() uint8 {
	return l.maxOf()
}

// Update trains the counter at the PC's mapped slot. If squashed is
// true, the call is a no-op — wrong-path results must never train the
// predictor (spec.md §4.2, §5). Otherwise outcome=true increments,
// outcome=false decrements. tid does not affect indexing.
func (l *LCT) Update(tid uint32, pc uint64, outcome bool, squashed bool) {
	_ = tid
	if squashed {
		return
	}
	c := &l.counters[l.index(pc)]
	if outcome {
		c.Increment()
	} else {
		c.Decrement()
	}
}

// LookupIndex returns the counter value at a pre-hashed slot index,
// used to read back the slot a CVU entry's pcIdx names without
// re-hashing a PC (see CVU's doc comment on pcIdx compression).
func (l *LCT) LookupIndex(idx uint32) uint8 {
	return l.counters[idx].Read()
}

// DecrementIndex decrements the counter at a pre-hashed slot index.
// Used by the DowngradeLoadPC policy (spec.md §9) to downgrade the LCT
// slot a killed CVU entry belongs to, without the original PC in hand.
func (l *LCT) DecrementIndex(idx uint32) {
	l.counters[idx].Decrement()
}

// Reset reseeds every counter to zero.
func (l *LCT) Reset() {
	for i := range l.counters {
		width := l.counters[i].width
		l.counters[i] = NewCounter(width, 0)
	}
}
