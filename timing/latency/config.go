package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds the cycle costs the host driver charges for each
// kind of operation it issues against the load value predictor and its
// backing cache/memory hierarchy.
type TimingConfig struct {
	// ALULatency is the execution latency for a dependent ALU op woken
	// by a load's predicted value. Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// LoadLatency is the latency for a load that misses prediction and
	// must wait on the memory hierarchy. Default: 4 cycles.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the latency for a store reaching the LSQ.
	// Default: 1 cycle.
	StoreLatency uint64 `json:"store_latency"`

	// SyscallLatency is the latency charged for a syscall-class op in a
	// synthetic trace. Default: 1 cycle.
	SyscallLatency uint64 `json:"syscall_latency"`

	// L1HitLatency is the L1 data cache hit latency. Default: 4 cycles.
	L1HitLatency uint64 `json:"l1_hit_latency"`

	// L2HitLatency is the L2 cache hit latency. Default: 12 cycles.
	L2HitLatency uint64 `json:"l2_hit_latency"`

	// MemoryLatency is the latency on an L2 miss. Default: 150 cycles.
	MemoryLatency uint64 `json:"memory_latency"`

	// CVUBypassLatency is the latency a load takes when the CVU
	// certifies its value as a verified constant: dependents can
	// consume the predicted value without waiting on the cache
	// hierarchy at all. Default: 1 cycle (register-file bypass only).
	CVUBypassLatency uint64 `json:"cvu_bypass_latency"`

	// MispredictPenalty is the extra cycles lost when a load
	// misprediction is caught at writeback and dependents issued on the
	// predicted value must replay. Default: 8 cycles.
	MispredictPenalty uint64 `json:"mispredict_penalty"`
}

// DefaultTimingConfig returns a TimingConfig with representative
// out-of-order core default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:        1,
		LoadLatency:       4,
		StoreLatency:      1,
		SyscallLatency:    1,
		L1HitLatency:      4,
		L2HitLatency:      12,
		MemoryLatency:     150,
		CVUBypassLatency:  1,
		MispredictPenalty: 8,
	}
}

// LoadConfig loads a TimingConfig from a JSON file.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that the ALU, load, store, syscall and CVU-bypass
// latencies are > 0. The cache-level latencies and MispredictPenalty
// are not checked.
func (c *TimingConfig) Validate() error {
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.LoadLatency == 0 {
		return fmt.Errorf("load_latency must be > 0")
	}
	if c.StoreLatency == 0 {
		return fmt.Errorf("store_latency must be > 0")
	}
	if c.SyscallLatency == 0 {
		return fmt.Errorf("syscall_latency must be > 0")
	}
	if c.CVUBypassLatency == 0 {
		return fmt.Errorf("cvu_bypass_latency must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
