// Package main provides the entry point for ripple5, a cycle-accurate
// simulator of a small 16-bit RISC processor's 5-stage in-order pipeline.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/ripple5/config"
	"github.com/sarchlab/ripple5/emu"
	"github.com/sarchlab/ripple5/loader"
	"github.com/sarchlab/ripple5/timing/pipeline"
)

var (
	configPath = flag.String("config", "", "Path to a sim config JSON file (defaults built in if omitted)")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.SimConfig, error) {
	if path == "" {
		return config.DefaultSimConfig(), nil
	}
	return config.LoadConfig(path)
}

func run(cfg *config.SimConfig) error {
	ic := emu.NewMemory()
	dc := emu.NewMemory()

	if cfg.StrictOpcodes {
		if err := loader.LoadInstructionImageStrict(cfg.InstructionImagePath, ic); err != nil {
			return fmt.Errorf("load instruction image: %w", err)
		}
	} else if err := loader.LoadInstructionImage(cfg.InstructionImagePath, ic); err != nil {
		return fmt.Errorf("load instruction image: %w", err)
	}

	if err := loader.LoadDataImage(cfg.DataImagePath, dc); err != nil {
		return fmt.Errorf("load data image: %w", err)
	}

	p := pipeline.NewPipeline(ic, dc)

	if err := loader.LoadRegisterImage(cfg.RegisterImagePath, p.RegFile()); err != nil {
		return fmt.Errorf("load register image: %w", err)
	}

	if *verbose {
		fmt.Printf("Loaded instructions: %s\n", cfg.InstructionImagePath)
		fmt.Printf("Loaded data: %s\n", cfg.DataImagePath)
		fmt.Printf("Loaded registers: %s\n", cfg.RegisterImagePath)
	}

	p.Run()

	if err := loader.WriteDataCacheDump(cfg.DataCacheDumpPath, p.DataCache()); err != nil {
		return fmt.Errorf("write data cache dump: %w", err)
	}
	if err := loader.WriteStatsReport(cfg.StatsReportPath, p.Stats()); err != nil {
		return fmt.Errorf("write stats report: %w", err)
	}

	if *verbose {
		stats := p.Stats()
		fmt.Printf("\nCycles: %d\n", stats.Cycles)
		fmt.Printf("Total instructions: %d\n", stats.TotalInstructions)
		fmt.Printf("CPI: %.4f\n", stats.CPI())
		fmt.Printf("Stalls: %d (data %d, control %d)\n",
			stats.Stalls, stats.DataStalls, stats.ControlStalls())
	}

	return nil
}
