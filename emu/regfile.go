// Package emu provides the functional data model for the ripple5 processor:
// the register file, the byte-addressable memory arrays standing in for the
// instruction and data caches, and the pure ALU operations. None of it knows
// about pipelining; the pipeline stages in timing/pipeline read and mutate it.
package emu

// NumRegisters is the number of general-purpose registers (§3, §6).
const NumRegisters = 16

// Register holds one general-purpose register plus the scoreboard bits that
// gate Decode. Invariant: Hazard implies !Valid (spec.md §3).
type Register struct {
	// Content is the 16-bit value held by the register.
	Content uint16

	// Valid is false while a producer that writes this register is in
	// flight (reserved at Decode, cleared again at Writeback).
	Valid bool

	// Hazard is true while at least one consumer is stalled waiting for
	// this register to become valid again.
	Hazard bool
}

// RegFile is the 16-entry general-purpose register file.
type RegFile struct {
	regs [NumRegisters]Register
}

// NewRegFile creates a register file with all registers valid and zeroed.
func NewRegFile() *RegFile {
	rf := &RegFile{}
	for i := range rf.regs {
		rf.regs[i] = Register{Content: 0, Valid: true, Hazard: false}
	}
	return rf
}

// Read returns the content of register i. Callers must check Valid(i)
// themselves; Read does not gate on it (spec.md §4.3).
func (rf *RegFile) Read(i uint8) uint16 {
	return rf.regs[i].Content
}

// Valid reports whether register i currently holds a committed value.
func (rf *RegFile) Valid(i uint8) bool {
	return rf.regs[i].Valid
}

// HazardFlag reports whether register i currently has a consumer stalled on
// it.
func (rf *RegFile) HazardFlag(i uint8) bool {
	return rf.regs[i].Hazard
}

// Reserve marks register i invalid because an in-flight instruction will
// write it. Called by Decode when it successfully dispatches a writer to
// Execute (spec.md §4.3).
func (rf *RegFile) Reserve(i uint8) {
	rf.regs[i].Valid = false
}

// Write commits a value to register i and marks it valid again. If the
// register had a hazard flag set, it is cleared and the caller-supplied
// scoreboard's counter is decremented to match (spec.md §4.3, §4.9).
func (rf *RegFile) Write(i uint8, v uint16, sb *Scoreboard) {
	if rf.regs[i].Hazard {
		rf.regs[i].Hazard = false
		sb.release()
	}
	rf.regs[i].Valid = true
	rf.regs[i].Content = v
}

// Snapshot returns the full register file contents, used to compare a
// pipelined run against Reference's sequential execution of the same
// program (spec.md §8's round-trip property).
func (rf *RegFile) Snapshot() [NumRegisters]uint16 {
	var out [NumRegisters]uint16
	for i, r := range rf.regs {
		out[i] = r.Content
	}
	return out
}
