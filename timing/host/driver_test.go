package host_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sharathat45/load-value-predictor/timing/cache"
	"github.com/sharathat45/load-value-predictor/timing/host"
	"github.com/sharathat45/load-value-predictor/timing/lvp"
)

func newTestUnit() *lvp.Unit {
	cfg := lvp.DefaultConfig()
	cfg.LCTEntries = 16
	cfg.LVPTEntries = 16
	cfg.CVUnumEntries = 4
	u, err := lvp.New(cfg, 32)
	Expect(err).NotTo(HaveOccurred())
	return u
}

var _ = Describe("Driver", func() {
	It("round-trips a store then a load through memory with no cache", func() {
		d := host.NewDriver(newTestUnit(), host.WithMemory(host.NewMemory()))

		sev := d.DispatchStore(0x100, 0, 0x8000, 8, 0xCAFE)
		d.CompleteStore(sev)
		ev := d.DispatchLoad(0x100, 0, 0x8000, 8, true)
		d.CompleteLoad(ev, false)

		Expect(ev.MemValue).To(Equal(uint64(0xCAFE)))
	})

	It("charges cache hit/miss latency when a cache is attached", func() {
		c := cache.New(cache.Config{Size: 4096, Associativity: 4, BlockSize: 64, HitLatency: 1, MissLatency: 20},
			cache.NewMemoryBacking(host.NewMemory()))
		d := host.NewDriver(newTestUnit(), host.WithCache(c))

		sev := d.DispatchStore(0x100, 0, 0x1000, 8, 0x42)
		d.CompleteStore(sev)
		ev := d.DispatchLoad(0x100, 0, 0x1000, 8, true)
		cycles := d.CompleteLoad(ev, false)

		Expect(ev.MemValue).To(Equal(uint64(0x42)))
		Expect(cycles).To(BeNumerically(">", 0))
	})

	It("bypasses the cache entirely once the CVU certifies a constant", func() {
		c := cache.New(cache.Config{Size: 4096, Associativity: 4, BlockSize: 64, HitLatency: 1, MissLatency: 20},
			cache.NewMemoryBacking(host.NewMemory()))
		d := host.NewDriver(newTestUnit(), host.WithCache(c))

		pc, addr := uint64(0x200), uint64(0x2000)
		sev := d.DispatchStore(pc, 0, addr, 8, 7)
		d.CompleteStore(sev)
		for i := 0; i < 4; i++ {
			ev := d.DispatchLoad(pc, 0, addr, 8, true)
			d.CompleteLoad(ev, false)
		}

		readsBefore := c.Stats().Reads
		bypassesBefore := c.Stats().Bypasses
		ev := d.DispatchLoad(pc, 0, addr, 8, true)
		Expect(ev.LdConstant).To(BeTrue())
		d.CompleteLoad(ev, false)

		Expect(c.Stats().Reads).To(Equal(readsBefore), "a CVU-certified load must not be counted as a cache read")
		Expect(c.Stats().Bypasses).To(Equal(bypassesBefore+1), "the bypass must still be recorded on the cache")
	})

	It("charges the misprediction penalty on a value mismatch", func() {
		d := host.NewDriver(newTestUnit(), host.WithMemory(host.NewMemory()))

		pc, addr := uint64(0x300), uint64(0x3000)
		sev1 := d.DispatchStore(pc, 0, addr, 8, 1)
		d.CompleteStore(sev1)
		ev1 := d.DispatchLoad(pc, 0, addr, 8, true)
		d.CompleteLoad(ev1, false) // fresh entry, counter -> 1

		ev1b := d.DispatchLoad(pc, 0, addr, 8, true)
		d.CompleteLoad(ev1b, false) // matches, counter -> 2: crosses the threshold

		ev2 := d.DispatchLoad(pc, 0, addr, 8, true)
		Expect(ev2.PredictedValue).To(Equal(uint64(1)))

		sev2 := d.DispatchStore(pc, 0, addr, 8, 2) // value changes underneath the in-flight prediction
		d.CompleteStore(sev2)
		cyclesWithoutMispredict := d.Cycles()
		cycles := d.CompleteLoad(ev2, false)

		Expect(d.Cycles()).To(BeNumerically(">", cyclesWithoutMispredict))
		Expect(cycles).To(Equal(uint64(4+8)), "default load latency plus the default misprediction penalty")
	})

	It("never bypasses the cache under ModeLCTOnly, even once the CVU certifies a constant", func() {
		lctOnlyCfg := lvp.DefaultConfig()
		lctOnlyCfg.LCTEntries = 16
		lctOnlyCfg.LVPTEntries = 16
		lctOnlyCfg.CVUnumEntries = 4
		lctOnlyCfg.Mode = lvp.ModeLCTOnly
		u, err := lvp.New(lctOnlyCfg, 32)
		Expect(err).NotTo(HaveOccurred())

		c := cache.New(cache.Config{Size: 4096, Associativity: 4, BlockSize: 64, HitLatency: 1, MissLatency: 20},
			cache.NewMemoryBacking(host.NewMemory()))
		d := host.NewDriver(u, host.WithCache(c))

		pc, addr := uint64(0x250), uint64(0x2500)
		sev := d.DispatchStore(pc, 0, addr, 8, 7)
		d.CompleteStore(sev)
		for i := 0; i < 4; i++ {
			ev := d.DispatchLoad(pc, 0, addr, 8, true)
			d.CompleteLoad(ev, false)
		}

		readsBefore := c.Stats().Reads
		ev := d.DispatchLoad(pc, 0, addr, 8, true)
		Expect(ev.LdConstant).To(BeTrue(), "the unit still certifies the constant regardless of Mode")
		d.CompleteLoad(ev, false)

		Expect(c.Stats().Reads).To(BeNumerically(">", readsBefore),
			"ModeLCTOnly must always verify against the cache, never bypass it")
	})

	It("drops in-flight predictions on squash without charging cycles", func() {
		d := host.NewDriver(newTestUnit(), host.WithMemory(host.NewMemory()))
		ev := d.DispatchLoad(0x400, 0, 0x4000, 8, true)
		before := d.Cycles()
		cycles := d.CompleteLoad(ev, true)
		Expect(cycles).To(Equal(uint64(0)))
		Expect(d.Cycles()).To(Equal(before))
	})
})
