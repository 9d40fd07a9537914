package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ripple5/emu"
	"github.com/sarchlab/ripple5/insts"
	"github.com/sarchlab/ripple5/timing/pipeline"
)

func encodeALU(op insts.Op, r1, r2, r3 uint8) uint16 {
	return uint16(op)<<12 | uint16(r1)<<8 | uint16(r2)<<4 | uint16(r3)
}

var _ = Describe("FetchStage", func() {
	var (
		ic    *emu.Memory
		ctrl  *pipeline.ControlState
		sb    *emu.Scoreboard
		fetch *pipeline.FetchStage
	)

	BeforeEach(func() {
		ic = emu.NewMemory()
		ctrl = pipeline.NewControlState()
		sb = emu.NewScoreboard()
		fetch = pipeline.NewFetchStage(ic)
	})

	It("fetches the word at pc when nothing blocks it", func() {
		ic.WriteWord(4, 0xABCD)
		latch, stalled := fetch.Fetch(4, ctrl, sb)
		Expect(stalled).To(BeFalse())
		Expect(latch.Valid).To(BeTrue())
		Expect(latch.Instruction).To(Equal(uint16(0xABCD)))
	})

	It("stalls when stopFetch is set", func() {
		ctrl.StopFetch = true
		_, stalled := fetch.Fetch(0, ctrl, sb)
		Expect(stalled).To(BeTrue())
	})

	It("stalls when branchUndecided is set", func() {
		ctrl.BranchUndecided = true
		_, stalled := fetch.Fetch(0, ctrl, sb)
		Expect(stalled).To(BeTrue())
	})

	It("stalls when the scoreboard has an outstanding hazard", func() {
		rf := emu.NewRegFile()
		sb.MarkHazard(rf, 1)
		_, stalled := fetch.Fetch(0, ctrl, sb)
		Expect(stalled).To(BeTrue())
	})
})

var _ = Describe("DecodeStage", func() {
	var (
		rf     *emu.RegFile
		ctrl   *pipeline.ControlState
		sb     *emu.Scoreboard
		decode *pipeline.DecodeStage
	)

	BeforeEach(func() {
		rf = emu.NewRegFile()
		ctrl = pipeline.NewControlState()
		sb = emu.NewScoreboard()
		decode = pipeline.NewDecodeStage(rf)
	})

	It("dispatches a 3-operand ALU instruction once operands are valid", func() {
		rf.Write(1, 5, sb)
		rf.Write(2, 7, sb)
		in := pipeline.FetchDecodeLatch{Valid: true, Instruction: encodeALU(insts.OpADD, 3, 1, 2)}
		out, stalled := decode.Decode(in, ctrl, sb)
		Expect(stalled).To(BeFalse())
		Expect(out.Valid).To(BeTrue())
		Expect(out.Src1).To(Equal(uint16(5)))
		Expect(out.Src2).To(Equal(uint16(7)))
		Expect(out.Dest).To(Equal(uint8(3)))
		Expect(rf.Valid(3)).To(BeFalse(), "Decode reserves the destination register")
	})

	It("marks a hazard and stalls when a source register is invalid", func() {
		rf.Reserve(2)
		in := pipeline.FetchDecodeLatch{Valid: true, Instruction: encodeALU(insts.OpADD, 3, 1, 2)}
		out, stalled := decode.Decode(in, ctrl, sb)
		Expect(stalled).To(BeTrue())
		Expect(out.Valid).To(BeFalse())
		Expect(sb.Count()).To(Equal(1))
		Expect(rf.HazardFlag(2)).To(BeTrue())
	})

	It("de-duplicates a hazard when R2 and R3 are the same register", func() {
		rf.Reserve(2)
		in := pipeline.FetchDecodeLatch{Valid: true, Instruction: encodeALU(insts.OpADD, 3, 2, 2)}
		_, stalled := decode.Decode(in, ctrl, sb)
		Expect(stalled).To(BeTrue())
		Expect(sb.Count()).To(Equal(1))
	})

	It("sets stopFetch and dispatches on HALT", func() {
		in := pipeline.FetchDecodeLatch{Valid: true, Instruction: uint16(insts.OpHALT) << 12}
		out, stalled := decode.Decode(in, ctrl, sb)
		Expect(stalled).To(BeFalse())
		Expect(out.Valid).To(BeTrue())
		Expect(ctrl.StopFetch).To(BeTrue())
	})

	It("sets branchUndecided once BEQZ's operand is ready", func() {
		rf.Write(1, 0, sb)
		in := pipeline.FetchDecodeLatch{Valid: true, Instruction: 0xB100}
		out, stalled := decode.Decode(in, ctrl, sb)
		Expect(stalled).To(BeFalse())
		Expect(out.Valid).To(BeTrue())
		Expect(ctrl.BranchUndecided).To(BeTrue())
	})

	It("stashes the destination index in Src1 for LOAD", func() {
		rf.Write(2, 0x10, sb)
		// LOAD R1,(R2)+0: [1000][0001][0010][0000]
		in := pipeline.FetchDecodeLatch{Valid: true, Instruction: 0x8120}
		out, stalled := decode.Decode(in, ctrl, sb)
		Expect(stalled).To(BeFalse())
		Expect(out.Src1).To(Equal(uint16(1)))
		Expect(out.Src2).To(Equal(uint16(0x10)))
		Expect(rf.Valid(1)).To(BeFalse())
	})

	It("stalls externally when the scoreboard already has a hazard", func() {
		sb.MarkHazard(rf, 9)
		in := pipeline.FetchDecodeLatch{Valid: true, Instruction: encodeALU(insts.OpADD, 3, 1, 2)}
		_, stalled := decode.Decode(in, ctrl, sb)
		Expect(stalled).To(BeTrue())
	})
})

var _ = Describe("ExecuteStage", func() {
	var (
		ctrl    *pipeline.ControlState
		execute *pipeline.ExecuteStage
	)

	BeforeEach(func() {
		ctrl = pipeline.NewControlState()
		execute = pipeline.NewExecuteStage()
	})

	It("passes a bubble through untouched", func() {
		idex := pipeline.DecodeExecuteLatch{}
		result := execute.Execute(&idex, ctrl, 0)
		Expect(result.Latch.Valid).To(BeFalse())
		Expect(result.BranchTook).To(BeFalse())
	})

	It("computes ADD and latches the destination", func() {
		idex := pipeline.DecodeExecuteLatch{
			Valid: true, Type: insts.TypeArithmetic, Op: insts.OpADD,
			Src1: 5, Src2: 7, Dest: 3,
		}
		result := execute.Execute(&idex, ctrl, 10)
		Expect(result.Latch.ALUOutput).To(Equal(uint16(12)))
		Expect(result.Latch.Dest).To(Equal(uint8(3)))
	})

	It("takes a BEQZ branch and clears branchUndecided", func() {
		ctrl.BranchUndecided = true
		idex := pipeline.DecodeExecuteLatch{Valid: true, Type: insts.TypeBeqz, Src1: 0, Offset: 2}
		result := execute.Execute(&idex, ctrl, 10)
		Expect(result.BranchTook).To(BeTrue())
		Expect(result.NewPC).To(Equal(uint16(14)))
		Expect(ctrl.BranchUndecided).To(BeFalse())
	})

	It("does not take a BEQZ branch on a nonzero operand", func() {
		ctrl.BranchUndecided = true
		idex := pipeline.DecodeExecuteLatch{Valid: true, Type: insts.TypeBeqz, Src1: 3, Offset: 2}
		result := execute.Execute(&idex, ctrl, 10)
		Expect(result.BranchTook).To(BeFalse())
		Expect(ctrl.BranchUndecided).To(BeFalse())
	})

	It("always takes JMP", func() {
		ctrl.BranchUndecided = true
		idex := pipeline.DecodeExecuteLatch{Valid: true, Type: insts.TypeJmp, Offset: 0xFE}
		result := execute.Execute(&idex, ctrl, 10)
		Expect(result.BranchTook).To(BeTrue())
		Expect(result.NewPC).To(Equal(uint16(6))) // 10 + signext8(0xFE<<1) = 10 + signext8(0xFC) = 10 - 4
	})

	It("computes the effective address for LOAD/STORE", func() {
		idex := pipeline.DecodeExecuteLatch{
			Valid: true, Type: insts.TypeLoad, Src1: 1, Src2: 0x10, Offset: 2,
		}
		result := execute.Execute(&idex, ctrl, 0)
		Expect(result.Latch.ALUOutput).To(Equal(uint16(0x12)))
		Expect(result.Latch.Dest).To(Equal(uint8(1)))
	})
})

var _ = Describe("MemoryStage", func() {
	var (
		dc     *emu.Memory
		memory *pipeline.MemoryStage
	)

	BeforeEach(func() {
		dc = emu.NewMemory()
		memory = pipeline.NewMemoryStage(dc)
	})

	It("reads a byte for LOAD into the LMD latch", func() {
		dc.WriteByte(0x10, 0xAB)
		exmem := pipeline.ExecuteMemoryLatch{Valid: true, Type: insts.TypeLoad, ALUOutput: 0x10, Dest: 1}
		mwb, lmd := memory.Access(&exmem)
		Expect(lmd.Content).To(Equal(uint16(0xAB)))
		Expect(mwb.Valid).To(BeTrue())
		Expect(mwb.Dest).To(Equal(uint8(1)))
	})

	It("writes a byte for STORE", func() {
		exmem := pipeline.ExecuteMemoryLatch{Valid: true, Type: insts.TypeStore, ALUOutput: 0x20, Src: 0xCD}
		memory.Access(&exmem)
		Expect(dc.ReadByte(0x20)).To(Equal(byte(0xCD)))
	})
})

var _ = Describe("WritebackStage", func() {
	var (
		rf        *emu.RegFile
		sb        *emu.Scoreboard
		writeback *pipeline.WritebackStage
	)

	BeforeEach(func() {
		rf = emu.NewRegFile()
		sb = emu.NewScoreboard()
		writeback = pipeline.NewWritebackStage(rf)
	})

	It("commits an arithmetic result", func() {
		rf.Reserve(3)
		memwb := pipeline.MemoryWritebackLatch{Valid: true, Type: insts.TypeArithmetic, Dest: 3, ALUOutput: 12}
		var lmd pipeline.LoadMemoryDataLatch
		halted := writeback.Writeback(&memwb, &lmd, sb)
		Expect(halted).To(BeFalse())
		Expect(rf.Read(3)).To(Equal(uint16(12)))
		Expect(rf.Valid(3)).To(BeTrue())
	})

	It("commits the LMD content for LOAD", func() {
		rf.Reserve(1)
		memwb := pipeline.MemoryWritebackLatch{Valid: true, Type: insts.TypeLoad, Dest: 1}
		lmd := pipeline.LoadMemoryDataLatch{Content: 0xAB}
		writeback.Writeback(&memwb, &lmd, sb)
		Expect(rf.Read(1)).To(Equal(uint16(0xAB)))
	})

	It("releases a hazard on the written register", func() {
		rf.Reserve(3)
		sb.MarkHazard(rf, 3)
		memwb := pipeline.MemoryWritebackLatch{Valid: true, Type: insts.TypeArithmetic, Dest: 3, ALUOutput: 1}
		var lmd pipeline.LoadMemoryDataLatch
		writeback.Writeback(&memwb, &lmd, sb)
		Expect(sb.Count()).To(Equal(0))
	})

	It("reports halted on HALT", func() {
		memwb := pipeline.MemoryWritebackLatch{Valid: true, Type: insts.TypeHalt}
		var lmd pipeline.LoadMemoryDataLatch
		Expect(writeback.Writeback(&memwb, &lmd, sb)).To(BeTrue())
	})

	It("is a no-op on an invalid latch", func() {
		memwb := pipeline.MemoryWritebackLatch{}
		var lmd pipeline.LoadMemoryDataLatch
		Expect(writeback.Writeback(&memwb, &lmd, sb)).To(BeFalse())
	})
})
