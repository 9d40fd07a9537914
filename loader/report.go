package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/sarchlab/ripple5/timing/pipeline"
)

// WriteStatsReport writes the ten-line statistics report to path in the
// exact order of spec.md §4.11, with CPI in decimal floating point
// (spec.md §6 "Statistics report").
func WriteStatsReport(path string, stats *pipeline.Stats) error {
	var b strings.Builder
	fmt.Fprintf(&b, "totalInstructions: %d\n", stats.TotalInstructions)
	fmt.Fprintf(&b, "arithmeticCount: %d\n", stats.ArithmeticCount)
	fmt.Fprintf(&b, "logicalCount: %d\n", stats.LogicalCount)
	fmt.Fprintf(&b, "dataCount: %d\n", stats.DataCount)
	fmt.Fprintf(&b, "controlCount: %d\n", stats.ControlCount)
	fmt.Fprintf(&b, "haltCount: %d\n", stats.HaltCount)
	fmt.Fprintf(&b, "cpi: %f\n", stats.CPI())
	fmt.Fprintf(&b, "stalls: %d\n", stats.Stalls)
	fmt.Fprintf(&b, "dataStalls: %d\n", stats.DataStalls)
	fmt.Fprintf(&b, "controlStalls: %d\n", stats.ControlStalls())

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write stats report: %w", err)
	}
	return nil
}
