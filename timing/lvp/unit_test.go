package lvp_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sharathat45/load-value-predictor/timing/lvp"
)

var _ = Describe("Unit", func() {
	var (
		unit *lvp.Unit
		cfg  lvp.Config
	)

	BeforeEach(func() {
		cfg = lvp.DefaultConfig()
		cfg.LCTEntries = 16
		cfg.LVPTEntries = 16
		cfg.CVUnumEntries = 4
		var err error
		unit, err = lvp.New(cfg, 32)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects a non-power-of-two table size", func() {
		bad := cfg
		bad.LCTEntries = 3
		_, err := lvp.New(bad, 32)
		Expect(err).To(HaveOccurred())
	})

	It("a cold load is never predictable on its first dispatch (S1, P1)", func() {
		ev := &lvp.LoadEvent{PC: 0x100, Tid: 0, SeqNum: 1, EffAddr: 0x8000, EffSize: 8}
		Expect(unit.Predict(ev)).To(BeFalse())
		Expect(ev.PredictedValue).To(Equal(uint64(0)))
	})

	It("a load becomes predictable once its counter crosses the confidence threshold (S1)", func() {
		pc, tid, addr := uint64(0x100), uint32(0), uint64(0x8000)

		ev1 := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: 1, EffAddr: addr, EffSize: 8, MemValue: 0xAAAA}
		unit.Predict(ev1)
		unit.Update(ev1, false)

		ev2 := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: 2, EffAddr: addr, EffSize: 8, MemValue: 0xAAAA}
		unit.Predict(ev2)
		unit.Update(ev2, false)

		ev3 := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: 3, EffAddr: addr, EffSize: 8}
		predictable := unit.Predict(ev3)
		Expect(predictable).To(BeTrue())
		Expect(ev3.PredictedValue).To(Equal(uint64(0xAAAA)))
	})

	It("a store invalidates a CVU-trusted constant load and downgrades the LCT (S2)", func() {
		pc, tid, addr := uint64(0x200), uint32(0), uint64(0x9000)

		// Drive the counter to saturation so a CVU entry gets installed.
		seq := uint64(1)
		for i := 0; i < 4; i++ {
			ev := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: seq, EffAddr: addr, EffSize: 8, MemValue: 42}
			unit.Predict(ev)
			unit.Update(ev, false)
			seq++
		}
		loadEv := &lvp.LoadEvent{PC: pc, Tid: tid, EffAddr: addr, EffSize: 8}
		Expect(unit.CvuValid(loadEv)).To(BeTrue())

		before := unit.Stats()
		killed := unit.CvuInvalidate(lvp.StoreEvent{PC: pc, Tid: tid, EffAddr: addr, EffSize: 8})
		Expect(killed).To(BeTrue())
		Expect(unit.CvuValid(loadEv)).To(BeFalse())

		after := unit.Stats()
		Expect(after.ConstInval).To(Equal(before.ConstInval + 1))

		// The store shares the load's PC, so that LCT slot drops from
		// saturated (3) to 2: still predictable, no longer constant.
		probe := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: seq, EffAddr: addr, EffSize: 8}
		Expect(unit.Predict(probe)).To(BeTrue())
		Expect(probe.LdConstant).To(BeFalse())
	})

	It("a misprediction at the confidence floor retrains the LVPT with the fresh value (S3)", func() {
		pc, tid, addr := uint64(0x300), uint32(0), uint64(0xA000)

		ev1 := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: 1, EffAddr: addr, EffSize: 8, MemValue: 1}
		unit.Predict(ev1)
		unit.Update(ev1, false) // fresh entry, counter -> 1

		ev2 := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: 2, EffAddr: addr, EffSize: 8, MemValue: 2}
		unit.Predict(ev2)
		unit.Update(ev2, false) // mismatch vs stored 1, counter -> 0, LVPT retrained to 2

		ev3 := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: 3, EffAddr: addr, EffSize: 8, MemValue: 2}
		unit.Predict(ev3)
		unit.Update(ev3, false) // matches retrained value, counter -> 1

		ev4 := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: 4, EffAddr: addr, EffSize: 8, MemValue: 2}
		unit.Predict(ev4)
		unit.Update(ev4, false) // matches retrained value again, counter -> 2: crosses the threshold

		ev5 := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: 5, EffAddr: addr, EffSize: 8}
		Expect(unit.Predict(ev5)).To(BeTrue())
		Expect(ev5.PredictedValue).To(Equal(uint64(2)))
	})

	It("never trains the predictor on a squashed update (P5)", func() {
		pc, tid, addr := uint64(0x400), uint32(0), uint64(0xB000)
		ev := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: 1, EffAddr: addr, EffSize: 8, MemValue: 7}
		unit.Predict(ev)
		unit.Update(ev, true)

		ev2 := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: 2, EffAddr: addr, EffSize: 8}
		Expect(unit.Predict(ev2)).To(BeFalse())
	})

	It("releases the VPTT slot on squash without touching the other tables (P2)", func() {
		ev := &lvp.LoadEvent{PC: 0x500, Tid: 0, SeqNum: 10, EffAddr: 0xC000, EffSize: 8}
		unit.Predict(ev)
		n := unit.Squash(5)
		Expect(n).To(Equal(1))
		Expect(unit.Stats().VpttSquash).To(Equal(uint64(1)))
	})

	It("resets all tables and statistics", func() {
		ev := &lvp.LoadEvent{PC: 0x600, Tid: 0, SeqNum: 1, EffAddr: 0xD000, EffSize: 8, MemValue: 9}
		unit.Predict(ev)
		unit.Update(ev, false)
		unit.Reset()

		ev2 := &lvp.LoadEvent{PC: 0x600, Tid: 0, SeqNum: 2, EffAddr: 0xD000, EffSize: 8}
		Expect(unit.Predict(ev2)).To(BeFalse())
		Expect(unit.Stats().Lookups).To(Equal(uint64(1)))
	})

	It("applies the per-entry LCT downgrade when configured (§9 DowngradeLoadPC)", func() {
		cfg.InvalidateDowngradeTarget = lvp.DowngradeLoadPC
		u2, err := lvp.New(cfg, 32)
		Expect(err).NotTo(HaveOccurred())

		pc, tid, addr := uint64(0x700), uint32(0), uint64(0xE000)
		seq := uint64(1)
		for i := 0; i < 4; i++ {
			ev := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: seq, EffAddr: addr, EffSize: 8, MemValue: 1}
			u2.Predict(ev)
			u2.Update(ev, false)
			seq++
		}
		// store PC is deliberately different from the load's PC: under
		// DowngradeLoadPC the killed entry's own pc_idx is downgraded, not
		// the store's.
		killed := u2.CvuInvalidate(lvp.StoreEvent{PC: 0xFFF0, Tid: tid, EffAddr: addr, EffSize: 8})
		Expect(killed).To(BeTrue())

		// the load's own slot drops from saturated (3) to 2.
		probe := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: seq, EffAddr: addr, EffSize: 8}
		Expect(u2.Predict(probe)).To(BeTrue())
		Expect(probe.LdConstant).To(BeFalse())
	})

	It("still trains LCT/LVPT/CVU under ModeLCTOnly (host is responsible for not bypassing)", func() {
		lctOnlyCfg := cfg
		lctOnlyCfg.Mode = lvp.ModeLCTOnly
		u2, err := lvp.New(lctOnlyCfg, 32)
		Expect(err).NotTo(HaveOccurred())

		pc, tid, addr := uint64(0x800), uint32(0), uint64(0xF000)
		seq := uint64(1)
		for i := 0; i < 4; i++ {
			ev := &lvp.LoadEvent{PC: pc, Tid: tid, SeqNum: seq, EffAddr: addr, EffSize: 8, MemValue: 5}
			u2.Predict(ev)
			u2.Update(ev, false)
			seq++
		}

		Expect(u2.CvuValid(&lvp.LoadEvent{PC: pc, EffAddr: addr, Tid: tid})).To(BeTrue(),
			"CVU installation is unconditional on Mode; only the host's bypass decision reads it")
		Expect(u2.Config().Mode).To(Equal(lvp.ModeLCTOnly))
	})
})
