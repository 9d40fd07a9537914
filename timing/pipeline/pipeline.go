// Package pipeline implements the ripple5 5-stage in-order pipeline:
// Fetch, Decode, Execute, Memory, Write-Back, the four latch pairs between
// them, the scoreboard-driven hazard stalls, control-hazard flushing, and
// the cycle driver that sequences one simulated clock (spec.md §2, §4).
//
// Unlike a forwarding pipeline, ripple5 has no bypass network: a consumer
// simply stalls Fetch/Decode until its producer retires through
// Write-Back. That is what the register-file scoreboard (emu.Scoreboard)
// exists to arbitrate.
package pipeline

import (
	"github.com/sarchlab/ripple5/emu"
)

// Pipeline owns the register file, the instruction/data memories, the
// scoreboard, the control flags, and every latch pair, and drives them one
// simulated cycle at a time.
type Pipeline struct {
	fetch     *FetchStage
	decode    *DecodeStage
	execute   *ExecuteStage
	memory    *MemoryStage
	writeback *WritebackStage

	regFile *emu.RegFile
	sb      *emu.Scoreboard
	ctrl    *ControlState

	ic *emu.Memory
	dc *emu.Memory

	pc     uint16
	halted bool

	ifid  FetchDecodeLatch
	idex  DecodeExecuteLatch
	exmem ExecuteMemoryLatch
	memwb MemoryWritebackLatch
	lmd   LoadMemoryDataLatch

	nextIfid  FetchDecodeLatch
	nextIdex  DecodeExecuteLatch
	nextExmem ExecuteMemoryLatch
	nextMemwb MemoryWritebackLatch
	nextLmd   LoadMemoryDataLatch

	stats *Stats
}

// PipelineOption configures a Pipeline at construction time.
type PipelineOption func(*Pipeline)

// WithStartPC sets the initial program counter (default 0).
func WithStartPC(pc uint16) PipelineOption {
	return func(p *Pipeline) { p.pc = pc }
}

// NewPipeline creates a Pipeline wired to ic (instruction cache) and dc
// (data cache), with a fresh register file, scoreboard, and control state.
func NewPipeline(ic, dc *emu.Memory, opts ...PipelineOption) *Pipeline {
	regFile := emu.NewRegFile()
	p := &Pipeline{
		regFile:   regFile,
		sb:        emu.NewScoreboard(),
		ctrl:      NewControlState(),
		ic:        ic,
		dc:        dc,
		fetch:     NewFetchStage(ic),
		decode:    NewDecodeStage(regFile),
		execute:   NewExecuteStage(),
		memory:    NewMemoryStage(dc),
		writeback: NewWritebackStage(regFile),
		stats:     NewStats(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RegFile returns the pipeline's register file, for tests and reporting.
func (p *Pipeline) RegFile() *emu.RegFile { return p.regFile }

// DataCache returns the pipeline's data memory, for tests and reporting.
func (p *Pipeline) DataCache() *emu.Memory { return p.dc }

// Stats returns the running statistics collector.
func (p *Pipeline) Stats() *Stats { return p.stats }

// Halted reports whether HALT has retired through Write-Back.
func (p *Pipeline) Halted() bool { return p.halted }

// PC returns the current program counter.
func (p *Pipeline) PC() uint16 { return p.pc }

// Run ticks the pipeline until it halts.
func (p *Pipeline) Run() {
	for !p.halted {
		p.Tick()
	}
}

// RunCycles ticks the pipeline up to n times, stopping early if it halts.
func (p *Pipeline) RunCycles(n int) {
	for i := 0; i < n && !p.halted; i++ {
		p.Tick()
	}
}

// Tick advances the pipeline by exactly one simulated clock, implementing
// the cycle driver of spec.md §4.10.
func (p *Pipeline) Tick() {
	if p.halted {
		return
	}
	p.stats.Cycles++

	// Step 1: snapshot the instruction about to enter Execute this cycle,
	// for the statistics update at the end.
	retiring := p.idex

	// Step 2: Fetch. A stalled fetch leaves nextIfid's instruction word
	// untouched (only its valid bit drops) so the word fetched in the
	// cycle a hazard was raised can be restored once Write-Back releases
	// that hazard (steps 8-9 below). A word discarded by the branch flush
	// is not restored; it is re-fetched after pc is walked back.
	fetchLatch, fetchStalled := p.fetch.Fetch(p.pc, p.ctrl, p.sb)
	if fetchStalled {
		p.nextIfid.Valid = false
	} else {
		p.nextIfid = fetchLatch
		p.pc += 2
	}

	// Step 3: Decode.
	decodeLatch, decodeStalled := p.decode.Decode(p.ifid, p.ctrl, p.sb)
	if decodeStalled {
		p.nextIdex.Clear()
	} else {
		p.nextIdex = decodeLatch
	}

	// Step 4: control-hazard flush. Decode just set BranchUndecided for
	// the first time (prevBranchUndecided was false), so the word Fetch
	// read this same cycle followed the branch blindly and must be
	// discarded; pc is walked back by 2 to restore the address of that
	// discarded word so it is correctly re-fetched once the branch
	// resolves.
	if p.ctrl.BranchUndecided && !p.ctrl.PrevBranchUndecided {
		p.nextIfid.Valid = false
		p.pc -= 2
	}
	p.ctrl.PrevBranchUndecided = p.ctrl.BranchUndecided

	// Step 6: Execute, then Memory.
	execResult := p.execute.Execute(&p.idex, p.ctrl, p.pc)
	p.nextExmem = execResult.Latch
	if execResult.BranchTook {
		p.pc = execResult.NewPC
	}
	mwbLatch, lmdLatch := p.memory.Access(&p.exmem)
	p.nextMemwb = mwbLatch
	p.nextLmd = lmdLatch

	// Step 7: Write-Back. prevHR/currHR bracket it to detect the cycle
	// Write-Back releases the last outstanding hazard.
	prevHR := p.sb.Count()
	if p.writeback.Writeback(&p.memwb, &p.lmd, p.sb) {
		p.halted = true
	}
	currHR := p.sb.Count()

	// Steps 8-9: resolve the Fetch/Decode latch. A released hazard gets
	// Decode re-invoked this same cycle (Design Notes §9) against the
	// still-held ifid, and the FD latch is force-restored to valid so the
	// instruction fetched before the stall is not lost; the steady
	// no-hazard case propagates normally; an unreleased, still-
	// outstanding hazard leaves both ifid and nextIfid untouched so
	// Decode retries the same instruction next cycle.
	switch {
	case prevHR > 0 && currHR == 0:
		reLatch, reStalled := p.decode.Decode(p.ifid, p.ctrl, p.sb)
		if reStalled {
			p.nextIdex.Clear()
		} else {
			p.nextIdex = reLatch
		}
		p.nextIfid.Valid = true
		p.ifid = p.nextIfid
	case prevHR == 0 && currHR == 0:
		p.ifid = p.nextIfid
	}

	// Step 10: the remaining latches always advance.
	p.idex = p.nextIdex
	p.exmem = p.nextExmem
	p.memwb = p.nextMemwb
	p.lmd = p.nextLmd

	// Step 11: statistics. hazardCountAtEnd must reflect any hazard the
	// re-invoked Decode above just raised, so it is read fresh here
	// rather than reusing currHR.
	p.stats.recordCycle(p.sb.Count(), !retiring.Valid, retiring.Type)
}
