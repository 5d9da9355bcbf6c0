package lvp

// cvuEntry is one slot of the Constant Verification Unit. It certifies
// that no invalidating store has touched a captured address range since
// install — it does not cache the load's value (that stays in the
// LVPT), per spec.md §4.4.
type cvuEntry struct {
	valid    bool
	pcIdx    uint32
	dataAddr uint64
	effSize  uint32
	tid      uint32
	lru      uint8
}

// CVU is the Constant Verification Unit: a fully-associative set of
// (pcIdx, dataAddr, effSize, tid) tuples trusted for "constant" loads,
// with an 8-bit shift-register LRU age and range-overlap store
// invalidation (spec.md §4.4). Unlike timing/cache.Cache two packages
// over, this is not built on akita/v4/mem/cache's DirectoryImpl — see
// DESIGN.md for why the spec's exact tag-match-plus-age-tie-break
// contract isn't a fit for that library's address-keyed, opaque-policy
// directory.
//
// pcIdx is computed with the same (pc >> instShiftAmt) & mask hash the
// LCT uses over its own table size, not the LVPT's — so that a per-entry
// LCT downgrade (DowngradeLoadPC, see Config) can address the exact LCT
// slot a killed entry belongs to. spec.md's own worked scenarios always
// size LCTEntries == LVPTEntries, so this choice is behaviorally
// identical to hashing against the LVPT there.
type CVU struct {
	entries      []cvuEntry
	lctMask      uint32
	instShiftAmt uint8
}

// NewCVU builds a CVU with the given capacity (no power-of-two
// constraint) whose pc_idx compression matches an LCT of size lctSize.
func NewCVU(numEntries uint32, lctSize uint32, instShiftAmt uint8) *CVU {
	return &CVU{
		entries:      make([]cvuEntry, numEntries),
		lctMask:      lctSize - 1,
		instShiftAmt: instShiftAmt,
	}
}

func (c *CVU) pcIndex(pc uint64) uint32 {
	return uint32((pc >> c.instShiftAmt) & uint64(c.lctMask))
}

// referenceUpdate implements spec.md §4.4's LRU age protocol: on every
// reference, every entry's age is right-shifted by one, and the
// referenced entry's top bit is set. Higher age means more recently
// referenced.
func (c *CVU) referenceUpdate(idx int) {
	for i := range c.entries {
		c.entries[i].lru >>= 1
	}
	c.entries[idx].lru |= 0x80
}

// Valid reports whether a valid entry exists matching pc's compressed
// index, dataAddr, and tid. A hit touches the entry's LRU age. Two
// successive calls with the same arguments return the same result — a
// lookup never evicts the entry it matches.
func (c *CVU) Valid(pc uint64, dataAddr uint64, tid uint32) bool {
	idx := c.pcIndex(pc)
	for i := range c.entries {
		e := &c.entries[i]
		if e.valid && e.pcIdx == idx && e.dataAddr == dataAddr && e.tid == tid {
			c.referenceUpdate(i)
			return true
		}
	}
	return false
}

// rangesOverlap implements spec.md §4.4's overlap math: [a,a+sa-1] and
// [b,b+sb-1] overlap iff a <= b+sb-1 AND b <= a+sa-1. A zero size is
// treated as a single byte.
func rangesOverlap(a uint64, sa uint32, b uint64, sb uint32) bool {
	if sa == 0 {
		sa = 1
	}
	if sb == 0 {
		sb = 1
	}
	aEnd := a + uint64(sa) - 1
	bEnd := b + uint64(sb) - 1
	return a <= bEnd && b <= aEnd
}

// Invalidate clears every valid entry whose byte range overlaps
// [storeAddr, storeAddr+storeSize-1]. The scan is exhaustive: a single
// store can kill multiple entries, from any PC or thread that installed
// a tuple touching those bytes. Returns true if at least one entry was
// killed.
func (c *CVU) Invalidate(storeAddr uint64, storeSize uint32) bool {
	killed, _ := c.InvalidateMatching(storeAddr, storeSize)
	return killed
}

// InvalidateMatching behaves like Invalidate but also reports the
// lct-index of every killed entry, letting the caller apply spec.md
// §9's per-entry LCT downgrade (DowngradeLoadPC) without a second scan.
func (c *CVU) InvalidateMatching(storeAddr uint64, storeSize uint32) (killed bool, lctIdxs []uint32) {
	for i := range c.entries {
		e := &c.entries[i]
		if !e.valid {
			continue
		}
		if rangesOverlap(storeAddr, storeSize, e.dataAddr, e.effSize) {
			lctIdxs = append(lctIdxs, e.pcIdx)
			*e = cvuEntry{}
			killed = true
		}
	}
	return killed, lctIdxs
}

// replacement picks the slot with the smallest LRU age, ties broken by
// lowest index, and returns its index.
func (c *CVU) replacement() int {
	best := 0
	for i := 1; i < len(c.entries); i++ {
		if c.entries[i].lru < c.entries[best].lru {
			best = i
		}
	}
	return best
}

// Update installs a new trusted tuple, called when an LCT entry crosses
// into saturation (spec.md §4.4). First-fit: the first invalid slot is
// used if one exists; otherwise the LRU victim is replaced. value is
// accepted for parity with spec.md §4.4's public contract but is not
// stored — the CVU only certifies address validity, the LVPT owns the
// value.
func (c *CVU) Update(pc uint64, dataAddr uint64, effSize uint32, value uint64, tid uint32) {
	_ = value
	idx := c.pcIndex(pc)
	for i := range c.entries {
		if !c.entries[i].valid {
			c.install(i, idx, dataAddr, effSize, tid)
			return
		}
	}
	c.install(c.replacement(), idx, dataAddr, effSize, tid)
}

func (c *CVU) install(slot int, pcIdx uint32, dataAddr uint64, effSize uint32, tid uint32) {
	c.entries[slot] = cvuEntry{
		valid:    true,
		pcIdx:    pcIdx,
		dataAddr: dataAddr,
		effSize:  effSize,
		tid:      tid,
	}
	c.referenceUpdate(slot)
}

// Reset marks every entry invalid.
func (c *CVU) Reset() {
	for i := range c.entries {
		c.entries[i] = cvuEntry{}
	}
}

// ValidCount returns the number of currently valid entries, exercised
// by tests asserting spec.md P4 (CVU.Update never exceeds capacity).
func (c *CVU) ValidCount() int {
	n := 0
	for i := range c.entries {
		if c.entries[i].valid {
			n++
		}
	}
	return n
}
