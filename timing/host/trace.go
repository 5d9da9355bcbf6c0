package host

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// OpCode distinguishes a trace entry's kind.
type OpCode int

const (
	OpLoad OpCode = iota
	OpStore
)

// TraceEntry is one memory operation in a Trace: a load or a store, at
// a given PC/thread, against a given address and size. Stores also
// carry the value written.
type TraceEntry struct {
	Op      OpCode
	PC      uint64
	Tid     uint32
	Addr    uint64
	Size    uint32
	Value   uint64 // only meaningful for OpStore
}

// Trace is an ordered sequence of memory operations a Driver can replay.
type Trace []TraceEntry

// Run replays every entry in order against d and returns d's cumulative
// cycle count afterwards.
func (t Trace) Run(d *Driver) uint64 {
	for _, e := range t {
		switch e.Op {
		case OpLoad:
			ev := d.DispatchLoad(e.PC, e.Tid, e.Addr, e.Size, true)
			d.CompleteLoad(ev, false)
		case OpStore:
			sev := d.DispatchStore(e.PC, e.Tid, e.Addr, e.Size, e.Value)
			d.CompleteStore(sev)
		}
	}
	return d.Cycles()
}

// ParseTrace reads a line-oriented trace format:
//
//	L <pc> <addr> [size]
//	S <pc> <addr> <size> <value>
//
// Numbers follow Go's base-prefix rules (0x for hex; no prefix is
// decimal). A load's size is optional and defaults to 8.
// Blank lines and lines starting with '#' are ignored. Every entry is
// attributed to thread 0; multi-threaded traces are out of scope for
// this text format.
func ParseTrace(r io.Reader) (Trace, error) {
	var trace Trace
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("trace line %d: expected at least 3 fields, got %d", lineNo, len(fields))
		}

		pc, err := strconv.ParseUint(fields[1], 0, 64)
		if err != nil {
			return nil, fmt.Errorf("trace line %d: bad pc: %w", lineNo, err)
		}
		addr, err := strconv.ParseUint(fields[2], 0, 64)
		if err != nil {
			return nil, fmt.Errorf("trace line %d: bad addr: %w", lineNo, err)
		}

		switch strings.ToUpper(fields[0]) {
		case "L":
			size := uint64(8)
			if len(fields) > 3 {
				size, err = strconv.ParseUint(fields[3], 0, 32)
				if err != nil {
					return nil, fmt.Errorf("trace line %d: bad size: %w", lineNo, err)
				}
			}
			trace = append(trace, TraceEntry{Op: OpLoad, PC: pc, Addr: addr, Size: uint32(size)})
		case "S":
			if len(fields) < 5 {
				return nil, fmt.Errorf("trace line %d: store requires size and value", lineNo)
			}
			size, err := strconv.ParseUint(fields[3], 0, 32)
			if err != nil {
				return nil, fmt.Errorf("trace line %d: bad size: %w", lineNo, err)
			}
			value, err := strconv.ParseUint(fields[4], 0, 64)
			if err != nil {
				return nil, fmt.Errorf("trace line %d: bad value: %w", lineNo, err)
			}
			trace = append(trace, TraceEntry{Op: OpStore, PC: pc, Addr: addr, Size: uint32(size), Value: value})
		default:
			return nil, fmt.Errorf("trace line %d: unknown op %q", lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return trace, nil
}

// SyntheticTrace builds a trace exercising LCT/LVPT warm-up and CVU
// constant certification: for each of numAddrs distinct (PC, address)
// pairs, a single store establishes a value, followed by repeatCount
// loads of that same address with no intervening store. Repeated reads
// of a value that never changes should climb to "predictable" within a
// couple of iterations and reach CVU-certified "constant" status if
// repeatCount is large enough to saturate the LCT counter.
func SyntheticTrace(numAddrs int, repeatCount int, baseAddr uint64, stride uint64) Trace {
	var trace Trace
	for i := 0; i < numAddrs; i++ {
		pc := uint64(0x1000 + i*4)
		addr := baseAddr + uint64(i)*stride
		value := uint64(0xC0FFEE00 + i)

		trace = append(trace, TraceEntry{Op: OpStore, PC: pc, Addr: addr, Size: 8, Value: value})
		for r := 0; r < repeatCount; r++ {
			trace = append(trace, TraceEntry{Op: OpLoad, PC: pc, Addr: addr, Size: 8})
		}
	}
	return trace
}
