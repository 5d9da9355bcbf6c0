// Command lvpsim runs a memory trace through the load value predictor
// and reports its accuracy and timing statistics.
//
// Usage:
//
//	go run ./cmd/lvpsim [flags]
//
// Flags:
//
//	-trace        Path to a trace file (L/S text format). Without one, a
//	              synthetic warm-up trace is generated.
//	-config       Path to a timing configuration JSON file.
//	-lct-entries  LCT/LVPT table size (power of two). Default: 2048.
//	-cvu-entries  CVU capacity. Default: 256.
//	-downgrade    cvu_invalidate LCT-downgrade policy: "store" or "load".
//	-csv          Output results in CSV format (default: human-readable).
//
// Example:
//
//	# Run the built-in synthetic trace
//	go run ./cmd/lvpsim
//
//	# Run a captured trace and emit CSV
//	go run ./cmd/lvpsim -trace mytrace.txt -csv > results.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sharathat45/load-value-predictor/timing/core"
	"github.com/sharathat45/load-value-predictor/timing/host"
	"github.com/sharathat45/load-value-predictor/timing/latency"
	"github.com/sharathat45/load-value-predictor/timing/lvp"
)

func main() {
	tracePath := flag.String("trace", "", "path to a trace file; empty generates a synthetic warm-up trace")
	configPath := flag.String("config", "", "path to a timing configuration JSON file")
	lctEntries := flag.Uint("lct-entries", 2048, "LCT/LVPT table size (power of two)")
	cvuEntries := flag.Uint("cvu-entries", 256, "CVU capacity")
	downgrade := flag.String("downgrade", "store", "cvu_invalidate LCT-downgrade policy: store or load")
	csvOutput := flag.Bool("csv", false, "output results in CSV format")
	flag.Parse()

	cfg := lvp.DefaultConfig()
	cfg.LCTEntries = uint32(*lctEntries)
	cfg.LVPTEntries = uint32(*lctEntries)
	cfg.CVUnumEntries = uint32(*cvuEntries)
	if *downgrade == "load" {
		cfg.InvalidateDowngradeTarget = lvp.DowngradeLoadPC
	}

	unit, err := lvp.New(cfg, 256)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lvpsim: %v\n", err)
		os.Exit(1)
	}

	opts := []host.Option{host.WithMemory(host.NewMemory())}
	if *configPath != "" {
		timingCfg, err := latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lvpsim: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, host.WithTimingConfig(timingCfg))
	}

	c := core.NewCore(unit, opts...)

	var trace host.Trace
	if *tracePath != "" {
		f, err := os.Open(*tracePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lvpsim: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		trace, err = host.ParseTrace(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lvpsim: %v\n", err)
			os.Exit(1)
		}
	} else {
		trace = host.SyntheticTrace(16, 32, 0x10000, 64)
	}

	c.LoadTrace(trace)
	runStats := c.Run()
	predStats := unit.Stats()

	if *csvOutput {
		printCSV(runStats, predStats)
		return
	}

	fmt.Println("Load Value Predictor Simulation")
	fmt.Println("===============================")
	fmt.Printf("Table sizes:  LCT/LVPT=%d  CVU=%d\n", cfg.LCTEntries, cfg.CVUnumEntries)
	fmt.Println()
	fmt.Printf("Loads:             %d\n", runStats.Loads)
	fmt.Printf("Stores:            %d\n", runStats.Stores)
	fmt.Printf("Cycles:            %d\n", runStats.Cycles)
	fmt.Printf("Mispredictions:    %d\n", runStats.Mispredictions)
	fmt.Println()
	fmt.Printf("Prediction rate:       %.2f%%\n", predStats.PredRate()*100)
	fmt.Printf("Prediction accuracy:   %.2f%%\n", predStats.PredAccuracy()*100)
	fmt.Printf("Constants predicted:   %d\n", predStats.ConstPred)
	fmt.Printf("Constants installed:   %d\n", predStats.ConstInstall)
	fmt.Printf("Constants invalidated: %d\n", predStats.ConstInval)
	fmt.Printf("Constants rolled back: %d\n", predStats.ConstRollback)
}

func printCSV(run core.Stats, pred lvp.Stats) {
	fmt.Println("metric,value")
	fmt.Printf("loads,%d\n", run.Loads)
	fmt.Printf("stores,%d\n", run.Stores)
	fmt.Printf("cycles,%d\n", run.Cycles)
	fmt.Printf("mispredictions,%d\n", run.Mispredictions)
	fmt.Printf("pred_rate,%.4f\n", pred.PredRate())
	fmt.Printf("pred_accuracy,%.4f\n", pred.PredAccuracy())
	fmt.Printf("const_pred,%d\n", pred.ConstPred)
	fmt.Printf("const_install,%d\n", pred.ConstInstall)
	fmt.Printf("const_inval,%d\n", pred.ConstInval)
	fmt.Printf("const_rollback,%d\n", pred.ConstRollback)
}
