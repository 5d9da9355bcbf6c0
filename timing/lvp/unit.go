// Package lvp implements the Load Value Prediction subsystem: the LCT,
// LVPT, CVU, and VPTT tables plus the Unit facade that orchestrates
// them, as specified in spec.md. It speculates the result of a load at
// dispatch so dependent instructions need not wait for memory, and
// verifies the speculation at writeback.
package lvp

// Unit is the LVPUnit facade of spec.md §4.5: it owns the LCT, LVPT,
// CVU, and VPTT and exposes predict/update/cvu_invalidate/cvu_valid to
// the host pipeline. No locking: the whole subsystem is single-threaded
// cooperative per spec.md §5, and one Unit belongs to exactly one core.
type Unit struct {
	cfg  Config
	lct  *LCT
	lvpt *LVPT
	cvu  *CVU
	vptt *VPTT

	vpttCapacity uint32
	stats        Stats
}

// New constructs a Unit from cfg, or returns the fatal configuration
// error spec.md §7 requires (non-power-of-two table sizes, etc).
// vpttCapacity sizes the VPTT's in-flight window; the host should size
// it at least as large as its instruction window / ROB depth.
func New(cfg Config, vpttCapacity uint32) (*Unit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Unit{
		cfg:          cfg,
		lct:          NewLCT(cfg.LCTEntries, cfg.LCTCtrBits, cfg.InstShiftAmt, cfg.InitialCounterValue),
		lvpt:         NewLVPT(cfg.LVPTEntries, cfg.InstShiftAmt),
		cvu:          NewCVU(cfg.CVUnumEntries, cfg.LCTEntries, cfg.InstShiftAmt),
		vptt:         NewVPTT(vpttCapacity),
		vpttCapacity: vpttCapacity,
	}, nil
}

// Stats returns a copy of the unit's statistics.
func (u *Unit) Stats() Stats {
	return u.stats
}

// Predict implements spec.md §4.5's predict(inst) algorithm. It
// attaches prediction attributes to ev and returns ld_predictable. The
// VPTT records the in-flight prediction unconditionally, per spec.md
// §3's lifecycle ("VPTT entries are inserted at predict()"). When the
// effective address is not yet known at dispatch time, the entry is
// inserted with a zero address; the host is responsible for treating
// that as a placeholder until address generation completes.
func (u *Unit) Predict(ev *LoadEvent) bool {
	u.stats.Lookups++

	counter := u.lct.Lookup(ev.Tid, ev.PC)
	predictable := u.lct.GetPrediction(counter)
	lvptHit := u.lvpt.Valid(ev.PC, ev.Tid)

	ev.SetLdPredictable(predictable && lvptHit)
	ev.SetLdConstant(counter == u.lct.Max() && lvptHit)

	if ev.LdPredictable {
		ev.SetPredictedValue(u.lvpt.Lookup(ev.PC, ev.Tid))
	} else {
		ev.SetPredictedValue(0)
	}

	vpttAddr := ev.EffAddr
	if !ev.EffAddrKnown {
		vpttAddr = 0
	}
	u.vptt.Insert(ev.SeqNum, vpttAddr, ev.Tid)

	if ev.LdPredictable {
		u.stats.PredTotal++
	}
	if ev.LdConstant {
		u.stats.ConstPred++
	}

	return ev.LdPredictable
}

// Update implements spec.md §4.5's update(inst) algorithm, called at
// load writeback. squashed drops the call entirely — no LCT/LVPT/CVU
// mutation, per spec.md §5/P5 — but still removes the VPTT entry, since
// a squashed instruction is leaving the in-flight window regardless of
// whether it gets to train the predictor.
func (u *Unit) Update(ev *LoadEvent, squashed bool) {
	defer u.vptt.Remove(ev.SeqNum)

	if squashed {
		return
	}

	actual := ev.MemValue
	pc, tid := ev.PC, ev.Tid

	if !u.lvpt.Valid(pc, tid) {
		// Fresh entry.
		u.lvpt.Update(pc, actual, tid)
		u.lct.Update(tid, pc, true, false)
		return
	}

	// Verify against the value actually stored in the LVPT, not
	// ev.PredictedValue: the latter is gated on LCT confidence and is
	// zeroed whenever ld_predictable is false, which would otherwise
	// make a not-yet-confident load look perpetually mispredicted and
	// its counter could never climb to the predictable threshold.
	stored := u.lvpt.Lookup(pc, tid)

	if actual == stored {
		wasSaturated := u.lct.Lookup(tid, pc) == u.lct.Max()
		u.lct.Update(tid, pc, true, false)
		if !wasSaturated && u.lct.Lookup(tid, pc) == u.lct.Max() {
			u.cvu.Update(pc, ev.EffAddr, ev.EffSize, actual, tid)
			u.stats.ConstInstall++
		}
		if ev.LdPredictable {
			u.stats.PredCorrect++
		}
		return
	}

	// Misprediction.
	u.lct.Update(tid, pc, false, false)
	if u.lct.Lookup(tid, pc) == 0 {
		u.lvpt.Update(pc, actual, tid)
	}
	u.stats.PredIncorrect++
	if ev.LdConstant {
		u.stats.ConstRollback++
	}
}

// Squash drops every VPTT entry younger than keepSeqNum, without
// touching LCT/LVPT/CVU state (the host is responsible for actually
// rolling back any dependent instructions; this only releases the
// bookkeeping slot). Returns the number of entries dropped.
func (u *Unit) Squash(keepSeqNum uint64) int {
	n := u.vptt.RemoveAfter(keepSeqNum)
	u.stats.VpttSquash += uint64(n)
	return n
}

// CvuInvalidate implements spec.md §4.5's cvu_invalidate(store_inst).
func (u *Unit) CvuInvalidate(ev StoreEvent) bool {
	switch u.cfg.InvalidateDowngradeTarget {
	case DowngradeLoadPC:
		killed, lctIdxs := u.cvu.InvalidateMatching(ev.EffAddr, ev.EffSize)
		if killed {
			u.stats.ConstInval++
			for _, idx := range lctIdxs {
				u.lct.DecrementIndex(idx)
			}
		}
		return killed
	default: // DowngradeStorePC
		killed := u.cvu.Invalidate(ev.EffAddr, ev.EffSize)
		if killed {
			u.stats.ConstInval++
			u.lct.Update(ev.Tid, ev.PC, false, false)
		}
		return killed
	}
}

// CvuValid implements spec.md §4.5's cvu_valid(load_inst): a pure
// delegation to CVU.Valid that may touch CVU LRU state but mutates
// nothing else.
func (u *Unit) CvuValid(ev *LoadEvent) bool {
	return u.cvu.Valid(ev.PC, ev.EffAddr, ev.Tid)
}

// Reset clears all four tables and zeroes statistics.
func (u *Unit) Reset() {
	u.lct.Reset()
	u.lvpt.Reset()
	u.cvu.Reset()
	u.vptt.Reset()
	u.stats = Stats{}
}

// Config returns the configuration the unit was constructed with.
func (u *Unit) Config() Config {
	return u.cfg
}
