package emu

import "github.com/sarchlab/ripple5/insts"

// StepResult reports the outcome of one instruction executed by
// Reference.
type StepResult struct {
	// Halted is true once the executed instruction was HALT.
	Halted bool
}

// Reference is a non-pipelined, single-cycle-per-instruction interpreter
// of the same instruction set the timing/pipeline package pipelines. It
// exists as a golden model: the round-trip property of spec.md §8 compares
// a pipelined run's final register and memory contents against a Reference
// run on the same images.
type Reference struct {
	regFile *RegFile
	ic      *Memory
	dc      *Memory
	decoder *insts.Decoder
	alu     *ALU
	pc      uint16
}

// ReferenceOption configures a Reference at construction time.
type ReferenceOption func(*Reference)

// WithReferenceStartPC sets the initial program counter (default 0).
func WithReferenceStartPC(pc uint16) ReferenceOption {
	return func(r *Reference) { r.pc = pc }
}

// NewReference creates a Reference interpreter sharing rf, ic, and dc with
// a caller, so it can be compared against a pipelined run seeded from the
// same initial state.
func NewReference(rf *RegFile, ic, dc *Memory, opts ...ReferenceOption) *Reference {
	r := &Reference{
		regFile: rf,
		ic:      ic,
		dc:      dc,
		decoder: insts.NewDecoder(),
		alu:     NewALU(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PC returns the current program counter.
func (r *Reference) PC() uint16 { return r.pc }

// Step decodes and fully executes one instruction, in program order, with
// no pipelining and no hazard stalls: every operand read sees the latest
// committed register value.
func (r *Reference) Step() StepResult {
	word := r.ic.ReadWord(r.pc)
	inst := r.decoder.Decode(word)
	r.pc += 2

	rf := r.regFile
	switch inst.Type {
	case insts.TypeHalt:
		return StepResult{Halted: true}

	case insts.TypeBeqz:
		if r.alu.Beqz(rf.Read(inst.R1)) {
			r.pc = r.branchTarget(r.pc, inst.Imm)
		}

	case insts.TypeJmp:
		r.pc = r.branchTarget(r.pc, inst.Imm)

	case insts.TypeStore:
		addr := r.alu.Add(rf.Read(inst.R2), uint16(inst.Imm))
		r.dc.WriteByte(addr, byte(rf.Read(inst.R1)))

	case insts.TypeLoad:
		addr := r.alu.Add(rf.Read(inst.R2), uint16(inst.Imm))
		rf.regs[inst.R1] = Register{Content: uint16(r.dc.ReadByte(addr)), Valid: true}

	case insts.TypeArithmetic, insts.TypeLogical:
		r.execALULogical(inst)
	}

	return StepResult{}
}

func (r *Reference) execALULogical(inst *insts.Instruction) {
	rf := r.regFile
	var result uint16
	switch inst.Op {
	case insts.OpADD:
		result = r.alu.Add(rf.Read(inst.R2), rf.Read(inst.R3))
	case insts.OpSUB:
		result = r.alu.Sub(rf.Read(inst.R2), rf.Read(inst.R3))
	case insts.OpMUL:
		result = r.alu.Mul(rf.Read(inst.R2), rf.Read(inst.R3))
	case insts.OpINC:
		result = r.alu.Inc(rf.Read(inst.R1))
	case insts.OpAND:
		result = r.alu.And(rf.Read(inst.R2), rf.Read(inst.R3))
	case insts.OpOR:
		result = r.alu.Or(rf.Read(inst.R2), rf.Read(inst.R3))
	case insts.OpNOT:
		result = r.alu.Not(rf.Read(inst.R2))
	case insts.OpXOR:
		result = r.alu.Xor(rf.Read(inst.R2), rf.Read(inst.R3))
	}

	dest := inst.R1
	rf.regs[dest] = Register{Content: result, Valid: true}
}

// branchTarget mirrors timing/pipeline's formula: the offset is doubled
// within its 8-bit width, then sign-extended (spec.md §4.7).
func (r *Reference) branchTarget(pc uint16, offset uint8) uint16 {
	doubled := offset << 1
	return uint16(int32(pc) + SignExtend8(doubled))
}

// Run steps the interpreter until HALT retires.
func (r *Reference) Run() {
	for {
		if r.Step().Halted {
			return
		}
	}
}
