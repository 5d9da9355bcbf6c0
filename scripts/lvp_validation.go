// Package main reproduces the worked scenarios S1-S6 against a live
// lvp.Unit, printing a pass/fail line per scenario. Unlike the unit
// tests, this drives the full Predict/Update/CvuInvalidate/CvuValid
// surface end to end with the exact constants the scenarios describe,
// as a standalone artifact a reviewer can run without a test harness.
package main

import (
	"fmt"
	"os"

	"github.com/sharathat45/load-value-predictor/timing/lvp"
)

func newUnit(lctEntries, cvuEntries uint32) *lvp.Unit {
	cfg := lvp.DefaultConfig()
	cfg.LCTEntries = lctEntries
	cfg.LVPTEntries = lctEntries
	cfg.CVUnumEntries = cvuEntries
	cfg.InstShiftAmt = 2
	cfg.NumThreads = 1
	u, err := lvp.New(cfg, 64)
	if err != nil {
		panic(err)
	}
	return u
}

func check(name string, ok bool, detail string) bool {
	if ok {
		fmt.Printf("✅ %s\n", name)
	} else {
		fmt.Printf("❌ %s: %s\n", name, detail)
	}
	return ok
}

// scenarioS1 reproduces "cold load becomes predictable".
func scenarioS1() (*lvp.Unit, bool) {
	u := newUnit(64, 4)
	pc, addr, tid := uint64(0x1000), uint64(0x8000), uint32(0)
	var seq uint64
	var ok = true

	dispatch := func(value uint64) *lvp.LoadEvent {
		seq++
		ev := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: seq, EffAddr: addr, EffSize: 4, EffAddrKnown: true}
		u.Predict(ev)
		ev.MemValue = value
		return ev
	}

	ev1 := dispatch(0xdeadbeef)
	ok = check("S1: iteration 1 predict() is false", !ev1.LdPredictable, "expected not yet predictable") && ok
	u.Update(ev1, false)

	ev2 := dispatch(0xdeadbeef)
	u.Update(ev2, false)

	ev3 := dispatch(0xdeadbeef)
	ok = check("S1: iteration 3 predict() is true with value 0xdeadbeef",
		ev3.LdPredictable && ev3.PredictedValue == 0xdeadbeef,
		fmt.Sprintf("predictable=%v value=%#x", ev3.LdPredictable, ev3.PredictedValue)) && ok
	u.Update(ev3, false)

	ev4 := dispatch(0xdeadbeef)
	u.Update(ev4, false)

	ok = check("S1: CVU entry exists after saturation",
		u.CvuValid(&lvp.LoadEvent{PC: pc, EffAddr: addr, Tid: tid}),
		"no CVU entry installed after four matching updates") && ok

	return u, ok
}

// scenarioS2 continues from S1's settled state and invalidates the
// installed constant via a same-address store.
func scenarioS2(u *lvp.Unit) bool {
	pc, addr, tid := uint64(0x1000), uint64(0x8000), uint32(0)

	killed := u.CvuInvalidate(lvp.StoreEvent{PC: pc, Tid: tid, EffAddr: addr, EffSize: 4})
	ok := check("S2: cvu_invalidate reports a kill", killed, "expected at least one entry invalidated")

	stillValid := u.CvuValid(&lvp.LoadEvent{PC: pc, EffAddr: addr, Tid: tid})
	ok = check("S2: cvu_valid is now false", !stillValid, "entry should no longer be resident") && ok

	return ok
}

// scenarioS3 reproduces "misprediction at floor refreshes LVPT".
func scenarioS3() bool {
	u := newUnit(64, 4)
	pc, addr, tid := uint64(0x2000), uint64(0x9000), uint32(0)
	var seq uint64

	seq++
	seed := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: seq, EffAddr: addr, EffSize: 4, EffAddrKnown: true}
	u.Predict(seed)
	seed.MemValue = 0xAA
	u.Update(seed, false) // counter -> 1, LVPT value -> 0xAA

	seq++
	ev := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: seq, EffAddr: addr, EffSize: 4, EffAddrKnown: true}
	u.Predict(ev)
	ok := check("S3: predict() at counter 1 is not yet predictable",
		!ev.LdPredictable,
		fmt.Sprintf("predictable=%v value=%#x", ev.LdPredictable, ev.PredictedValue))

	ev.MemValue = 0xBB
	u.Update(ev, false) // mismatch vs stored 0xAA: counter -> 0, LVPT value -> 0xBB

	ok = check("S3: no CVU entry for the floored counter",
		u.CvuValid(&lvp.LoadEvent{PC: pc, EffAddr: addr, Tid: tid}) == false,
		"a floored counter must not have a CVU entry") && ok

	seq++
	refresh := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: seq, EffAddr: addr, EffSize: 4, EffAddrKnown: true}
	u.Predict(refresh)
	ok = check("S3: freshly floored counter is not predictable",
		!refresh.LdPredictable,
		"freshly floored counter should not yet be predictable again") && ok

	// Two writebacks of 0xBB only climb the counter back to the
	// predictable threshold if they match the LVPT, i.e. if it holds 0xBB.
	refresh.MemValue = 0xBB
	u.Update(refresh, false) // counter -> 1
	seq++
	again := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: seq, EffAddr: addr, EffSize: 4, EffAddrKnown: true}
	u.Predict(again)
	again.MemValue = 0xBB
	u.Update(again, false) // counter -> 2

	seq++
	probe := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: seq, EffAddr: addr, EffSize: 4, EffAddrKnown: true}
	u.Predict(probe)
	ok = check("S3: LVPT now holds the refreshed value 0xBB",
		probe.LdPredictable && probe.PredictedValue == 0xBB,
		fmt.Sprintf("predictable=%v value=%#x", probe.LdPredictable, probe.PredictedValue)) && ok

	return ok
}

// scenarioS4 reproduces "CVU LRU eviction".
func scenarioS4() bool {
	u := newUnit(64, 2)
	tid := uint32(0)
	// PCs map to distinct LCT/LVPT slots (0, 1, 2) so each load
	// saturates, and installs into the CVU, on its own.
	pcA, addrX := uint64(0x100), uint64(0x1000)
	pcB, addrY := uint64(0x104), uint64(0x2000)
	pcC, addrZ := uint64(0x108), uint64(0x3000)

	saturate := func(pc, addr uint64, seed *uint64) {
		for i := 0; i < 4; i++ {
			*seed = *seed + 1
			ev := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: *seed, EffAddr: addr, EffSize: 4, EffAddrKnown: true}
			u.Predict(ev)
			ev.MemValue = 0x42
			u.Update(ev, false)
		}
	}

	var seq uint64
	saturate(pcA, addrX, &seq)
	saturate(pcB, addrY, &seq)

	// Reference E1 to make it the most-recently-used entry.
	u.CvuValid(&lvp.LoadEvent{PC: pcA, EffAddr: addrX, Tid: tid})

	saturate(pcC, addrZ, &seq)

	ok := check("S4: E2 (coldest) evicted",
		!u.CvuValid(&lvp.LoadEvent{PC: pcB, EffAddr: addrY, Tid: tid}),
		"expected E2 to be evicted")
	ok = check("S4: E1 (recently referenced) survives",
		u.CvuValid(&lvp.LoadEvent{PC: pcA, EffAddr: addrX, Tid: tid}),
		"expected E1 to survive") && ok
	ok = check("S4: E3 (just installed) resident",
		u.CvuValid(&lvp.LoadEvent{PC: pcC, EffAddr: addrZ, Tid: tid}),
		"expected E3 to be resident") && ok

	return ok
}

// scenarioS5 reproduces "range-partial overlap".
func scenarioS5() bool {
	u := newUnit(64, 4)
	pc, tid := uint64(0x400), uint32(0)
	var seq uint64

	for i := 0; i < 4; i++ {
		seq++
		ev := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: seq, EffAddr: 0x100, EffSize: 8, EffAddrKnown: true}
		u.Predict(ev)
		ev.MemValue = 7
		u.Update(ev, false)
	}

	killed := u.CvuInvalidate(lvp.StoreEvent{PC: pc, Tid: tid, EffAddr: 0x104, EffSize: 2})
	return check("S5: partially overlapping store invalidates the entry", killed, "expected invalidation")
}

// scenarioS6 reproduces "store disjoint".
func scenarioS6() bool {
	u := newUnit(64, 4)
	pc, tid := uint64(0x500), uint32(0)
	var seq uint64

	for i := 0; i < 4; i++ {
		seq++
		ev := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: seq, EffAddr: 0x100, EffSize: 4, EffAddrKnown: true}
		u.Predict(ev)
		ev.MemValue = 9
		u.Update(ev, false)
	}

	killed := u.CvuInvalidate(lvp.StoreEvent{PC: pc, Tid: tid, EffAddr: 0x200, EffSize: 4})
	ok := check("S6: disjoint store does not invalidate", !killed, "entry should have survived")
	ok = check("S6: cvu_valid still true after the disjoint store",
		u.CvuValid(&lvp.LoadEvent{PC: pc, EffAddr: 0x100, Tid: tid}),
		"entry should still be resident") && ok
	return ok
}

func main() {
	fmt.Println("Load Value Predictor - Scenario Validation")
	fmt.Println("===========================================")

	allPassed := true

	u, ok := scenarioS1()
	allPassed = ok && allPassed
	allPassed = scenarioS2(u) && allPassed
	allPassed = scenarioS3() && allPassed
	allPassed = scenarioS4() && allPassed
	allPassed = scenarioS5() && allPassed
	allPassed = scenarioS6() && allPassed

	fmt.Println("===========================================")
	if allPassed {
		fmt.Println("🎉 ALL SCENARIOS PASSED")
		os.Exit(0)
	}
	fmt.Println("ACCURACY VALIDATION FAILED")
	os.Exit(1)
}
