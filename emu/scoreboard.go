package emu

// Scoreboard is the reified hazard-tracking entity: rather than
// free-floating global counters, the aggregate hazard count lives here
// and is handed to the stages (Fetch, Decode, Writeback) that need to read
// or mutate it.
//
// Invariant: Count() always equals the number of registers with their
// Hazard flag set (spec.md §3).
type Scoreboard struct {
	count int
}

// NewScoreboard creates an empty scoreboard.
func NewScoreboard() *Scoreboard {
	return &Scoreboard{}
}

// Count returns the number of currently-hazardous registers
// (currHazardousRegisters in spec.md §3).
func (sb *Scoreboard) Count() int {
	return sb.count
}

// MarkHazard records that a consumer is stalling on register i. It is a
// no-op if the register already carries a hazard (de-duplicates the R2==R3
// case called out in §4.6).
func (sb *Scoreboard) MarkHazard(rf *RegFile, i uint8) {
	if rf.regs[i].Hazard {
		return
	}
	rf.regs[i].Hazard = true
	sb.count++
}

// release decrements the counter. Called only from RegFile.Write, which has
// already confirmed the hazard flag was set and cleared it.
func (sb *Scoreboard) release() {
	sb.count--
}
