package pipeline

// ControlState reifies the global control flags of spec.md §3 as an
// explicit entity owned by the Pipeline and passed by pointer to the
// stages that read or mutate it, per Design Notes §9 ("eliminate the
// global flags").
type ControlState struct {
	// StopFetch is set by Decode when HALT is decoded; blocks future
	// fetches.
	StopFetch bool

	// BranchUndecided is set by Decode for JMP/BEQZ once its operands
	// are ready; cleared by Execute once the branch resolves; blocks
	// Fetch and Decode while set.
	BranchUndecided bool

	// PrevBranchUndecided is a one-cycle-delayed copy, used to detect
	// the rising edge "branch just entered Execute" so a flush is
	// issued exactly once.
	PrevBranchUndecided bool
}

// NewControlState creates a ControlState with all flags clear.
func NewControlState() *ControlState {
	return &ControlState{}
}
