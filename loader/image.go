// Package loader parses the three whitespace-separated hex-token text
// files of spec.md §6 into the processor's memories and register file, and
// writes the two output text files once simulation halts.
package loader

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/ripple5/emu"
	"github.com/sarchlab/ripple5/insts"
)

// LoadInstructionImage reads whitespace-separated hex byte tokens from
// path, pairs them consecutively, and packs each pair big-endian into ic
// starting at address 0 (spec.md §6 "Instruction image").
func LoadInstructionImage(path string, ic *emu.Memory) error {
	bytes, err := readHexTokens(path)
	if err != nil {
		return fmt.Errorf("load instruction image: %w", err)
	}

	for addr := 0; addr+1 < len(bytes); addr += 2 {
		word := uint16(bytes[addr])<<8 | uint16(bytes[addr+1])
		ic.WriteWord(uint16(addr), word)
	}
	return nil
}

// LoadInstructionImageStrict behaves like LoadInstructionImage but first
// rejects any decoded opcode outside {0..11, 15}, for
// config.SimConfig.StrictOpcodes.
func LoadInstructionImageStrict(path string, ic *emu.Memory) error {
	bytes, err := readHexTokens(path)
	if err != nil {
		return fmt.Errorf("load instruction image: %w", err)
	}

	d := insts.NewDecoder()
	for addr := 0; addr+1 < len(bytes); addr += 2 {
		word := uint16(bytes[addr])<<8 | uint16(bytes[addr+1])
		inst := d.Decode(word)
		if !insts.KnownOpcode(inst.Op) {
			return fmt.Errorf("load instruction image: undefined opcode %#x at byte address %d", inst.Op, addr)
		}
	}

	for addr := 0; addr+1 < len(bytes); addr += 2 {
		word := uint16(bytes[addr])<<8 | uint16(bytes[addr+1])
		ic.WriteWord(uint16(addr), word)
	}
	return nil
}

// LoadDataImage reads whitespace-separated hex byte tokens from path and
// places them into dc starting at address 0 (spec.md §6 "Data image").
func LoadDataImage(path string, dc *emu.Memory) error {
	bytes, err := readHexTokens(path)
	if err != nil {
		return fmt.Errorf("load data image: %w", err)
	}

	for addr, b := range bytes {
		dc.WriteByte(uint16(addr), b)
	}
	return nil
}

// LoadRegisterImage reads exactly 16 hex values from path and loads them
// into rf's registers 0..15 with valid=true, hazard=false (spec.md §6
// "Register image"). Unlike the instruction and data images, these tokens
// are full 16-bit register contents, not bytes.
func LoadRegisterImage(path string, rf *emu.RegFile) error {
	values, err := readHex16Tokens(path)
	if err != nil {
		return fmt.Errorf("load register image: %w", err)
	}
	if len(values) != emu.NumRegisters {
		return fmt.Errorf("load register image: expected %d values, got %d", emu.NumRegisters, len(values))
	}

	sb := emu.NewScoreboard()
	for i, v := range values {
		rf.Write(uint8(i), v, sb)
	}
	return nil
}

// readHexTokens reads path and parses every whitespace-separated token as
// an unsigned hex value of at most 16 bits, keeping only its low byte.
// Tokens may carry an optional "0x" prefix.
func readHexTokens(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var out []byte
	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		tok := strings.TrimPrefix(scanner.Text(), "0x")
		v, err := strconv.ParseUint(tok, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("parse hex token %q in %s: %w", scanner.Text(), path, err)
		}
		out = append(out, byte(v))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return out, nil
}

// readHex16Tokens behaves like readHexTokens but keeps the full 16-bit
// width of each token instead of truncating to a byte, for the register
// image's word-sized values.
func readHex16Tokens(path string) ([]uint16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var out []uint16
	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		tok := strings.TrimPrefix(scanner.Text(), "0x")
		v, err := strconv.ParseUint(tok, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("parse hex token %q in %s: %w", scanner.Text(), path, err)
		}
		out = append(out, uint16(v))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return out, nil
}

// WriteDataCacheDump writes dc's full contents to path, one byte per line
// as two hex digits (spec.md §6 "Data-cache dump").
func WriteDataCacheDump(path string, dc *emu.Memory) error {
	var b strings.Builder
	for addr := 0; addr < emu.MemSize; addr++ {
		fmt.Fprintf(&b, "%02x\n", dc.ReadByte(uint16(addr)))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write data cache dump: %w", err)
	}
	return nil
}
