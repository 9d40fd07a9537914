// Package core provides the cycle-accurate CPU core model. It wraps the
// pipeline implementation to provide a high-level interface, the way the
// teacher's core package wraps its own pipeline.
package core

import (
	"github.com/sarchlab/ripple5/emu"
	"github.com/sarchlab/ripple5/timing/pipeline"
)

// Core represents a cycle-accurate CPU core model: a 5-stage pipeline plus
// the instruction and data memories it reads and writes.
type Core struct {
	Pipeline *pipeline.Pipeline

	ic *emu.Memory
	dc *emu.Memory
}

// NewCore creates a new Core wired to ic (instruction cache) and dc (data
// cache).
func NewCore(ic, dc *emu.Memory) *Core {
	return &Core{
		Pipeline: pipeline.NewPipeline(ic, dc),
		ic:       ic,
		dc:       dc,
	}
}

// InstructionCache returns the core's instruction memory.
func (c *Core) InstructionCache() *emu.Memory { return c.ic }

// DataCache returns the core's data memory.
func (c *Core) DataCache() *emu.Memory { return c.dc }

// RegFile returns the core's register file.
func (c *Core) RegFile() *emu.RegFile { return c.Pipeline.RegFile() }

// Tick executes one pipeline cycle.
func (c *Core) Tick() { c.Pipeline.Tick() }

// Halted returns true if the core has halted (HALT retired).
func (c *Core) Halted() bool { return c.Pipeline.Halted() }

// Stats returns performance statistics for the core.
func (c *Core) Stats() *pipeline.Stats { return c.Pipeline.Stats() }

// Run executes the core until it halts.
func (c *Core) Run() { c.Pipeline.Run() }

// RunCycles executes the core for up to the given number of cycles.
func (c *Core) RunCycles(cycles int) { c.Pipeline.RunCycles(cycles) }
