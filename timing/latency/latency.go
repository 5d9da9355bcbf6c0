// Package latency provides cycle-cost lookups for the operations a host
// driver issues against the load value predictor and its backing cache
// hierarchy.
package latency

// OpKind classifies an operation the host drives through the timing
// model. Unlike the ARM64 opcode space this package once switched on,
// an LVP host trace only needs to distinguish the few op classes that
// get charged differently: ALU (a dependent woken by a predicted
// value), Load, Store, and Syscall.
type OpKind int

const (
	OpALU OpKind = iota
	OpLoad
	OpStore
	OpSyscall
)

// Table provides operation latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{config: DefaultTimingConfig()}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{config: config}
}

// GetLatency returns the execution latency in cycles for the given op kind.
func (t *Table) GetLatency(op OpKind) uint64 {
	switch op {
	case OpALU:
		return t.config.ALULatency
	case OpLoad:
		return t.config.LoadLatency
	case OpStore:
		return t.config.StoreLatency
	case OpSyscall:
		return t.config.SyscallLatency
	default:
		return 1
	}
}

// CVUBypassLatency returns the latency charged to a load the CVU
// certifies as a verified constant: dependents consume the predicted
// value without waiting on the cache hierarchy.
func (t *Table) CVUBypassLatency() uint64 {
	return t.config.CVUBypassLatency
}

// MispredictPenalty returns the extra cycles lost when a load
// misprediction is caught at writeback.
func (t *Table) MispredictPenalty() uint64 {
	return t.config.MispredictPenalty
}

// CacheLatency returns the configured latency for a hit at the named
// level: "l1", "l2", or anything else falls through to main memory.
func (t *Table) CacheLatency(level string) uint64 {
	switch level {
	case "l1":
		return t.config.L1HitLatency
	case "l2":
		return t.config.L2HitLatency
	default:
		return t.config.MemoryLatency
	}
}

// IsMemoryOp returns true if the op kind accesses memory.
func (t *Table) IsMemoryOp(op OpKind) bool {
	return op == OpLoad || op == OpStore
}

// IsLoadOp returns true if the op kind is a load.
func (t *Table) IsLoadOp(op OpKind) bool {
	return op == OpLoad
}

// IsStoreOp returns true if the op kind is a store.
func (t *Table) IsStoreOp(op OpKind) bool {
	return op == OpStore
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
