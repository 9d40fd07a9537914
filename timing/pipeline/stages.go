package pipeline

import (
	"github.com/sarchlab/ripple5/emu"
	"github.com/sarchlab/ripple5/insts"
)

// FetchStage performs the per-cycle combinational work of Fetch
// (spec.md §4.5).
type FetchStage struct {
	ic *emu.Memory
}

// NewFetchStage creates a fetch stage reading from the instruction cache.
func NewFetchStage(ic *emu.Memory) *FetchStage {
	return &FetchStage{ic: ic}
}

// Fetch reads the instruction at pc unless stalled. The stall condition is
// the logical OR of stopFetch, branchUndecided, and any outstanding hazard
// (spec.md §4.5). On stall the returned latch is invalid and pc must not be
// advanced by the caller; otherwise the latch carries the fetched word and
// pc should advance by 2.
func (s *FetchStage) Fetch(pc uint16, ctrl *ControlState, sb *emu.Scoreboard) (latch FetchDecodeLatch, stalled bool) {
	stalled = ctrl.StopFetch || ctrl.BranchUndecided || sb.Count() > 0
	if stalled {
		return FetchDecodeLatch{}, true
	}

	latch.Valid = true
	latch.Instruction = s.ic.ReadWord(pc)
	return latch, false
}

// DecodeStage performs the per-cycle combinational work of Decode,
// including the scoreboard checks and hazard marking of spec.md §4.6.
type DecodeStage struct {
	regFile *emu.RegFile
	decoder *insts.Decoder
}

// NewDecodeStage creates a decode stage reading from regFile.
func NewDecodeStage(regFile *emu.RegFile) *DecodeStage {
	return &DecodeStage{regFile: regFile, decoder: insts.NewDecoder()}
}

// Decode inspects the opcode in in.Instruction and, unless externally
// stalled or blocked on an unready operand, writes the resolved operands
// into the returned latch. A true stalled return means the instruction was
// not dispatched and must be re-presented to Decode next cycle (spec.md
// §4.6).
func (s *DecodeStage) Decode(in FetchDecodeLatch, ctrl *ControlState, sb *emu.Scoreboard) (out DecodeExecuteLatch, stalled bool) {
	if sb.Count() > 0 || ctrl.BranchUndecided || ctrl.StopFetch || !in.Valid {
		return DecodeExecuteLatch{}, true
	}

	inst := s.decoder.Decode(in.Instruction)
	out.Op = inst.Op
	out.Type = inst.Type

	rf := s.regFile

	switch inst.Type {
	case insts.TypeHalt:
		ctrl.StopFetch = true
		out.Valid = true
		return out, false

	case insts.TypeUnknown:
		// Opcode outside {0..11, 15}: dispatch a bubble.
		return DecodeExecuteLatch{}, false

	case insts.TypeBeqz:
		r1 := inst.R1
		if !rf.Valid(r1) {
			sb.MarkHazard(rf, r1)
			return DecodeExecuteLatch{}, true
		}
		ctrl.BranchUndecided = true
		out.Src1 = rf.Read(r1)
		out.Offset = inst.Imm
		out.Valid = true
		return out, false

	case insts.TypeJmp:
		out.Offset = inst.Imm
		ctrl.BranchUndecided = true
		out.Valid = true
		return out, false

	case insts.TypeStore:
		r1, r2 := inst.R1, inst.R2
		if !rf.Valid(r1) || !rf.Valid(r2) {
			if !rf.Valid(r1) {
				sb.MarkHazard(rf, r1)
			}
			if !rf.Valid(r2) && r2 != r1 {
				sb.MarkHazard(rf, r2)
			}
			return DecodeExecuteLatch{}, true
		}
		out.Src1 = rf.Read(r1)
		out.Src2 = rf.Read(r2)
		out.Offset = inst.Imm
		out.Valid = true
		return out, false

	case insts.TypeLoad:
		r1, r2 := inst.R1, inst.R2
		if !rf.Valid(r2) {
			sb.MarkHazard(rf, r2)
			return DecodeExecuteLatch{}, true
		}
		out.Src1 = uint16(r1) // destination index, resolved by Execute
		out.Src2 = rf.Read(r2)
		out.Offset = inst.Imm
		rf.Reserve(r1)
		out.Valid = true
		return out, false

	default:
		// ARITHMETIC/LOGICAL: either the 3-operand form (ADD, SUB, MUL,
		// AND, OR, XOR) or the 1-source forms (INC, NOT).
		switch inst.Op {
		case insts.OpINC:
			r1 := inst.R1
			if !rf.Valid(r1) {
				sb.MarkHazard(rf, r1)
				return DecodeExecuteLatch{}, true
			}
			out.Src1 = rf.Read(r1)
			out.Dest = r1
			rf.Reserve(r1)

		case insts.OpNOT:
			r1, r2 := inst.R1, inst.R2
			if !rf.Valid(r2) {
				sb.MarkHazard(rf, r2)
				return DecodeExecuteLatch{}, true
			}
			out.Src1 = rf.Read(r2)
			out.Dest = r1
			rf.Reserve(r1)

		default:
			r1, r2, r3 := inst.R1, inst.R2, inst.R3
			if !rf.Valid(r2) || !rf.Valid(r3) {
				if !rf.Valid(r2) {
					sb.MarkHazard(rf, r2)
				}
				if !rf.Valid(r3) && r3 != r2 {
					sb.MarkHazard(rf, r3)
				}
				return DecodeExecuteLatch{}, true
			}
			out.Src1 = rf.Read(r2)
			out.Src2 = rf.Read(r3)
			out.Dest = r1
			rf.Reserve(r1)
		}
		out.Valid = true
		return out, false
	}
}

// ExecuteStage performs the per-cycle combinational work of Execute
// (spec.md §4.7): ALU dispatch, effective-address computation, and branch
// resolution.
type ExecuteStage struct {
	alu *emu.ALU
}

// NewExecuteStage creates an execute stage.
func NewExecuteStage() *ExecuteStage {
	return &ExecuteStage{alu: emu.NewALU()}
}

// ExecuteResult carries the outcome of one Execute invocation, including
// whether the program counter was overwritten by a resolved branch.
type ExecuteResult struct {
	Latch      ExecuteMemoryLatch
	NewPC      uint16
	BranchTook bool
}

// Execute reads idex and the current pc, computes the Execute-Memory
// latch contents, and resolves BEQZ/JMP branches, clearing
// ctrl.BranchUndecided exactly once (spec.md §4.7).
func (s *ExecuteStage) Execute(idex *DecodeExecuteLatch, ctrl *ControlState, pc uint16) ExecuteResult {
	if !idex.Valid {
		return ExecuteResult{}
	}

	result := ExecuteResult{Latch: ExecuteMemoryLatch{Valid: true, Type: idex.Type}}

	switch idex.Type {
	case insts.TypeHalt:
		// Pass through.

	case insts.TypeBeqz:
		if s.alu.Beqz(idex.Src1) {
			newPC := branchTarget(pc, idex.Offset)
			result.Latch.ALUOutput = newPC
			result.NewPC = newPC
			result.BranchTook = true
		}
		ctrl.BranchUndecided = false

	case insts.TypeJmp:
		newPC := branchTarget(pc, idex.Offset)
		result.Latch.ALUOutput = newPC
		result.NewPC = newPC
		result.BranchTook = true
		ctrl.BranchUndecided = false

	case insts.TypeStore:
		result.Latch.ALUOutput = s.alu.Add(idex.Src2, uint16(idex.Offset))
		result.Latch.Src = idex.Src1

	case insts.TypeLoad:
		result.Latch.ALUOutput = s.alu.Add(idex.Src2, uint16(idex.Offset))
		result.Latch.Dest = uint8(idex.Src1)

	case insts.TypeLogical:
		result.Latch.Dest = idex.Dest
		switch idex.Op & 3 {
		case 0:
			result.Latch.ALUOutput = s.alu.And(idex.Src1, idex.Src2)
		case 1:
			result.Latch.ALUOutput = s.alu.Or(idex.Src1, idex.Src2)
		case 2:
			result.Latch.ALUOutput = s.alu.Not(idex.Src1)
		case 3:
			result.Latch.ALUOutput = s.alu.Xor(idex.Src1, idex.Src2)
		}

	case insts.TypeArithmetic:
		result.Latch.Dest = idex.Dest
		switch idex.Op & 3 {
		case 0:
			result.Latch.ALUOutput = s.alu.Add(idex.Src1, idex.Src2)
		case 1:
			result.Latch.ALUOutput = s.alu.Sub(idex.Src1, idex.Src2)
		case 2:
			result.Latch.ALUOutput = s.alu.Mul(idex.Src1, idex.Src2)
		case 3:
			result.Latch.ALUOutput = s.alu.Inc(idex.Src1)
		}
	}

	return result
}

// branchTarget computes PC + signext8(offset<<1). The offset is doubled
// first, within its 8-bit width, and only then sign-extended, because
// branch targets are always even (spec.md §4.7).
func branchTarget(pc uint16, offset uint8) uint16 {
	doubled := offset << 1
	return uint16(int32(pc) + emu.SignExtend8(doubled))
}

// MemoryStage performs the per-cycle combinational work of Memory
// (spec.md §4.8).
type MemoryStage struct {
	dc *emu.Memory
}

// NewMemoryStage creates a memory stage reading/writing the data cache.
func NewMemoryStage(dc *emu.Memory) *MemoryStage {
	return &MemoryStage{dc: dc}
}

// Access performs the LOAD/STORE byte access and produces the
// Memory-WriteBack latch plus, for LOAD, the LMD latch contents.
func (s *MemoryStage) Access(exmem *ExecuteMemoryLatch) (MemoryWritebackLatch, LoadMemoryDataLatch) {
	if !exmem.Valid {
		return MemoryWritebackLatch{}, LoadMemoryDataLatch{}
	}

	var lmd LoadMemoryDataLatch

	switch exmem.Type {
	case insts.TypeLoad:
		lmd.Content = uint16(s.dc.ReadByte(exmem.ALUOutput))
	case insts.TypeStore:
		s.dc.WriteByte(exmem.ALUOutput, byte(exmem.Src))
	}

	return MemoryWritebackLatch{
		Valid:     true,
		Type:      exmem.Type,
		Dest:      exmem.Dest,
		ALUOutput: exmem.ALUOutput,
	}, lmd
}

// WritebackStage performs the per-cycle combinational work of Write-Back
// (spec.md §4.9).
type WritebackStage struct {
	regFile *emu.RegFile
}

// NewWritebackStage creates a write-back stage writing to regFile.
func NewWritebackStage(regFile *emu.RegFile) *WritebackStage {
	return &WritebackStage{regFile: regFile}
}

// Writeback commits the retiring instruction's result. It returns true
// when the instruction is HALT, signalling the cycle driver to stop the
// simulation loop.
func (s *WritebackStage) Writeback(memwb *MemoryWritebackLatch, lmd *LoadMemoryDataLatch, sb *emu.Scoreboard) (halted bool) {
	if !memwb.Valid {
		return false
	}

	switch memwb.Type {
	case insts.TypeLoad:
		s.regFile.Write(memwb.Dest, lmd.Content, sb)
	case insts.TypeArithmetic, insts.TypeLogical:
		s.regFile.Write(memwb.Dest, memwb.ALUOutput, sb)
	case insts.TypeHalt:
		return true
	}

	return false
}
