// Package insts provides the ripple5 instruction set definitions and
// decoding: a 16-bit opcode-in-top-4-bits encoding with the field layouts
// from spec.md §6.
package insts

// Op is an opcode, the top 4 bits of the instruction word.
type Op uint8

// The ripple5 opcode table (spec.md §3).
const (
	OpADD   Op = 0
	OpSUB   Op = 1
	OpMUL   Op = 2
	OpINC   Op = 3
	OpAND   Op = 4
	OpOR    Op = 5
	OpNOT   Op = 6
	OpXOR   Op = 7
	OpLOAD  Op = 8
	OpSTORE Op = 9
	OpJMP   Op = 10
	OpBEQZ  Op = 11
	OpHALT  Op = 15
)

// Type is the instruction category consumed by the later pipeline stages
// (spec.md §4.6).
type Type uint8

// Instruction categories.
const (
	TypeUnknown Type = iota
	TypeArithmetic
	TypeLogical
	TypeLoad
	TypeStore
	TypeJmp
	TypeBeqz
	TypeHalt
)

// String renders a Type for diagnostics and statistics labels.
func (t Type) String() string {
	switch t {
	case TypeArithmetic:
		return "arithmetic"
	case TypeLogical:
		return "logical"
	case TypeLoad:
		return "load"
	case TypeStore:
		return "store"
	case TypeJmp:
		return "jmp"
	case TypeBeqz:
		return "beqz"
	case TypeHalt:
		return "halt"
	default:
		return "unknown"
	}
}

// Instruction is the decoded form of a 16-bit instruction word.
type Instruction struct {
	Op   Op
	Type Type

	// Raw register-number fields as they appear in the encoding, before
	// Decode resolves them against the register file. Unused fields for a
	// given Type are zero.
	R1 uint8
	R2 uint8
	R3 uint8

	// Imm holds the immediate/offset field: 4 bits for LOAD/STORE, 8 bits
	// for JMP/BEQZ.
	Imm uint8
}
