package lvp

// lvptEntry is one slot of the LVPT: the last value observed for a PC,
// tagged with the thread that wrote it.
type lvptEntry struct {
	value uint64
	tid   uint32
	valid bool
}

// LVPT is the Load Value Prediction Table: a direct-mapped table of
// last-seen load values keyed by PC, using the same index arithmetic as
// the LCT but independently sized. Unlike the LCT, each slot carries a
// thread-id tag (spec.md §4.3) — an entry only hits when the stored tid
// matches the query, preventing cross-thread value confusion on a
// shared slot the way BranchPredictor's BTB tags entries on pc to
// detect aliasing.
type LVPT struct {
	entries      []lvptEntry
	mask         uint32
	instShiftAmt uint8
}

// NewLVPT builds an LVPT with size entries (must be a power of two).
func NewLVPT(size uint32, instShiftAmt uint8) *LVPT {
	return &LVPT{
		entries:      make([]lvptEntry, size),
		mask:         size - 1,
		instShiftAmt: instShiftAmt,
	}
}

func (t *LVPT) index(pc uint64) uint32 {
	return uint32((pc >> t.instShiftAmt) & uint64(t.mask))
}

// Valid reports whether the mapped slot is valid and tagged for tid.
func (t *LVPT) Valid(pc uint64, tid uint32) bool {
	e := &t.entries[t.index(pc)]
	return e.valid && e.tid == tid
}

// Lookup returns the stored value at the mapped slot. The caller must
// have gated on Valid; an invalid or wrong-tid slot returns zero.
func (t *LVPT) Lookup(pc uint64, tid uint32) uint64 {
	e := &t.entries[t.index(pc)]
	if !e.valid || e.tid != tid {
		return 0
	}
	return e.value
}

// Update unconditionally writes {value, tid, valid=true} at the mapped
// slot, overwriting whatever thread previously owned it.
func (t *LVPT) Update(pc uint64, value uint64, tid uint32) {
	e := &t.entries[t.index(pc)]
	e.value = value
	e.tid = tid
	e.valid = true
}

// Reset marks every entry invalid.
func (t *LVPT) Reset() {
	for i := range t.entries {
		t.entries[i] = lvptEntry{}
	}
}
