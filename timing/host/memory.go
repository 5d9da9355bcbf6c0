// Package host provides a minimal functional memory and a driver that
// exercises the load value predictor the way a real core's dispatch and
// writeback stages would: issuing a predict() at dispatch and an
// update() once the actual value comes back from memory.
package host

import "fmt"

const pageSize = 4096
const pageMask = pageSize - 1

// Memory is a flat, byte-addressable little-endian address space backed
// by sparse pages, so a trace touching a handful of scattered addresses
// never allocates the whole 64-bit space. It plays the same role
// emu.Memory does for the functional ARM64 core: a plain little-endian
// byte array the timing model reads and writes beside.
type Memory struct {
	pages map[uint64][]byte
}

// NewMemory creates an empty memory, all addresses reading as zero until
// written.
func NewMemory() *Memory {
	return &Memory{pages: make(map[uint64][]byte)}
}

func (m *Memory) page(addr uint64) []byte {
	base := addr &^ pageMask
	p, ok := m.pages[base]
	if !ok {
		p = make([]byte, pageSize)
		m.pages[base] = p
	}
	return p
}

// Read8 reads a single byte.
func (m *Memory) Read8(addr uint64) uint8 {
	return m.page(addr)[addr&pageMask]
}

// Write8 writes a single byte.
func (m *Memory) Write8(addr uint64, value uint8) {
	m.page(addr)[addr&pageMask] = value
}

// Read16 reads a little-endian halfword, handling page-boundary crossing
// a byte at a time.
func (m *Memory) Read16(addr uint64) uint16 {
	return uint16(m.Read8(addr)) | uint16(m.Read8(addr+1))<<8
}

// Write16 writes a little-endian halfword.
func (m *Memory) Write16(addr uint64, value uint16) {
	m.Write8(addr, uint8(value))
	m.Write8(addr+1, uint8(value>>8))
}

// Read32 reads a little-endian word.
func (m *Memory) Read32(addr uint64) uint32 {
	var v uint32
	for i := 0; i < 4; i++ {
		v |= uint32(m.Read8(addr+uint64(i))) << (i * 8)
	}
	return v
}

// Write32 writes a little-endian word.
func (m *Memory) Write32(addr uint64, value uint32) {
	for i := 0; i < 4; i++ {
		m.Write8(addr+uint64(i), uint8(value>>(i*8)))
	}
}

// Read64 reads a little-endian doubleword.
func (m *Memory) Read64(addr uint64) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(m.Read8(addr+uint64(i))) << (i * 8)
	}
	return v
}

// Write64 writes a little-endian doubleword.
func (m *Memory) Write64(addr uint64, value uint64) {
	for i := 0; i < 8; i++ {
		m.Write8(addr+uint64(i), uint8(value>>(i*8)))
	}
}

// ReadSized reads size bytes (1, 2, 4, or 8) as a little-endian value,
// the width-generic form the driver needs since a trace's load/store
// width isn't known until runtime.
func (m *Memory) ReadSized(addr uint64, size int) uint64 {
	switch size {
	case 1:
		return uint64(m.Read8(addr))
	case 2:
		return uint64(m.Read16(addr))
	case 4:
		return uint64(m.Read32(addr))
	case 8:
		return m.Read64(addr)
	default:
		panic(fmt.Sprintf("host: unsupported access size %d", size))
	}
}

// WriteSized writes size bytes (1, 2, 4, or 8) of value, little-endian.
func (m *Memory) WriteSized(addr uint64, size int, value uint64) {
	switch size {
	case 1:
		m.Write8(addr, uint8(value))
	case 2:
		m.Write16(addr, uint16(value))
	case 4:
		m.Write32(addr, uint32(value))
	case 8:
		m.Write64(addr, value)
	default:
		panic(fmt.Sprintf("host: unsupported access size %d", size))
	}
}

// Read implements timing/cache.BackingStore.
func (m *Memory) Read(addr uint64, size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = m.Read8(addr + uint64(i))
	}
	return data
}

// Write implements timing/cache.BackingStore.
func (m *Memory) Write(addr uint64, data []byte) {
	for i, b := range data {
		m.Write8(addr+uint64(i), b)
	}
}
