package pipeline

import "github.com/sarchlab/ripple5/insts"

// Stats is the statistics collector of spec.md §4.11: instruction counts by
// class, cycles-per-instruction, and stalls classified as data-hazard or
// control-hazard stalls.
type Stats struct {
	Cycles int

	TotalInstructions  int
	ArithmeticCount    int
	LogicalCount       int
	DataCount    int // LOAD + STORE
	ControlCount int // JMP + BEQZ
	HaltCount    int

	// Stalls counts any cycle that did not retire an instruction through
	// Execute. It starts at -4 to absorb the four pipeline-fill cycles
	// (Design Notes §9).
	Stalls int

	// DataStalls counts cycles where the scoreboard shows at least one
	// hazardous register at cycle end.
	DataStalls int
}

// NewStats creates a Stats with the -4 fill-cycle offset applied.
func NewStats() *Stats {
	return &Stats{Stalls: -4}
}

// CPI returns cycles per instruction: (cycles-1)/totalInstructions.
func (s *Stats) CPI() float64 {
	if s.TotalInstructions == 0 {
		return 0
	}
	return float64(s.Cycles-1) / float64(s.TotalInstructions)
}

// ControlStalls returns total stalls minus data stalls.
func (s *Stats) ControlStalls() int {
	return s.Stalls - s.DataStalls
}

// recordCycle updates the collector for one completed cycle. executeStalled
// is true when Execute saw a bubble (no instruction retired through it this
// cycle); retiring is the instruction type that was in Decode/Execute at
// the start of the cycle (the snapshot taken by the cycle driver), used to
// classify the retiring instruction when one did retire.
func (s *Stats) recordCycle(hazardCountAtEnd int, executeStalled bool, retiring insts.Type) {
	if hazardCountAtEnd > 0 {
		s.DataStalls++
	}

	if executeStalled {
		s.Stalls++
		return
	}

	s.TotalInstructions++
	switch retiring {
	case insts.TypeArithmetic:
		s.ArithmeticCount++
	case insts.TypeLogical:
		s.LogicalCount++
	case insts.TypeLoad, insts.TypeStore:
		s.DataCount++
	case insts.TypeJmp, insts.TypeBeqz:
		s.ControlCount++
	case insts.TypeHalt:
		s.HaltCount++
	}
}
