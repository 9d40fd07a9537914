package pipeline

import "github.com/sarchlab/ripple5/insts"

// FetchDecodeLatch holds state between the Fetch and Decode stages
// (spec.md §3 "Pipeline latches").
type FetchDecodeLatch struct {
	Valid       bool
	Instruction uint16
}

// Clear invalidates the latch (a bubble).
func (l *FetchDecodeLatch) Clear() { *l = FetchDecodeLatch{} }

// DecodeExecuteLatch holds state between the Decode and Execute stages.
type DecodeExecuteLatch struct {
	Valid bool
	Op    insts.Op
	Type  insts.Type

	// Src1/Src2 are resolved operand values (register contents), not
	// register numbers, except for LOAD where Src1 carries the
	// destination register index (spec.md §4.6 "LOAD").
	Src1 uint16
	Src2 uint16

	// Dest is the destination register index for ARITHMETIC/LOGICAL
	// instructions (unused for LOAD, whose destination travels in Src1,
	// and for STORE/JMP/BEQZ/HALT).
	Dest uint8

	// Offset carries the immediate field for LOAD/STORE (4 bits) or
	// JMP/BEQZ (8 bits).
	Offset uint8
}

// Clear invalidates the latch.
func (l *DecodeExecuteLatch) Clear() { *l = DecodeExecuteLatch{} }

// ExecuteMemoryLatch holds state between the Execute and Memory stages.
type ExecuteMemoryLatch struct {
	Valid bool
	Type  insts.Type

	// ALUOutput is the ALU result, or for LOAD/STORE the effective
	// address computed in Execute (spec.md §4.7).
	ALUOutput uint16

	// Dest is the destination register for instructions that write
	// back. Src holds the data value to write for STORE.
	Dest uint8
	Src  uint16
}

// Clear invalidates the latch.
func (l *ExecuteMemoryLatch) Clear() { *l = ExecuteMemoryLatch{} }

// MemoryWritebackLatch holds state between the Memory and Write-Back
// stages.
type MemoryWritebackLatch struct {
	Valid bool
	Type  insts.Type
	Dest  uint8

	// ALUOutput passes through for ARITHMETIC/LOGICAL results.
	ALUOutput uint16
}

// Clear invalidates the latch.
func (l *MemoryWritebackLatch) Clear() { *l = MemoryWritebackLatch{} }

// LoadMemoryDataLatch is the LMD latch: the byte a LOAD reads in Memory,
// carried to Write-Back (spec.md §3 "Pipeline latches").
type LoadMemoryDataLatch struct {
	Content uint16
}
