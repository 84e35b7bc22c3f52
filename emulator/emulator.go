// Package emulator couples the assembler and the CPU simulator into a
// single harness: assemble source, load the image, run to completion, and
// inspect the result. Faults are reported against the source line that
// raised them.
package emulator

import (
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/jonathan-gaul/rexta/asm"
	"github.com/jonathan-gaul/rexta/cpu"
	"github.com/jonathan-gaul/rexta/internal"
	"github.com/jonathan-gaul/rexta/isa"
)

// Emulator state. CPU + assembled program.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // The CPU simulation.
	Program  *asm.Program // The currently loaded program listing.
	Base     uint32       // Load address for the program image.
}

// NewEmulator creates a new emulator for the given variant.
func NewEmulator(v *isa.Variant) (emu *Emulator) {
	emu = &Emulator{
		Cpu: cpu.NewCpu(v),
	}

	return
}

// Defines returns the equates the emulator pre-defines for assembly.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	defines := map[string]string{
		"BASE": fmt.Sprintf("%#x", emu.Base),
	}

	return internal.IterSeq2Concat(maps.All(defines), emu.Variant.Defines())
}

// Assemble assembles source text for this emulator's variant and load base.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	as := &asm.Assembler{
		Verbose: emu.Verbose,
		Variant: emu.Variant,
		Origin:  emu.Base,
	}
	for key, value := range emu.Defines() {
		as.Predefine(key, value)
	}

	emu.Program, err = as.Assemble(input)

	return
}

// Reset resets the CPU and reloads the program image at the base address.
func (emu *Emulator) Reset() (err error) {
	if emu.Program == nil {
		err = ErrNoProgram
		return
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()

	err = emu.Cpu.Load(emu.Program.Image, emu.Base)

	return
}

// LineNo returns the source line number for the current PC, or 0.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	stmt := emu.Program.Debug(emu.Cpu.Pc)
	if stmt == nil {
		return 0
	}

	return stmt.LineNo
}

// Tick performs a single CPU step, tagging any fault with its source line.
func (emu *Emulator) Tick() (halted bool, err error) {
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	halted, err = emu.Cpu.Step()
	if err != nil {
		err = &ErrRuntime{LineNo: lineno, Err: err}
	}

	return
}

// Run steps until the CPU halts or faults.
func (emu *Emulator) Run() (err error) {
	for {
		var halted bool
		halted, err = emu.Tick()
		if err != nil || halted {
			return
		}
	}
}

// Inspect returns the byte at a memory address after a run.
func (emu *Emulator) Inspect(addr uint32) (value byte, err error) {
	if addr >= emu.Variant.MemSize {
		err = cpu.ErrMemoryFault
		return
	}

	value = emu.Cpu.Mem[addr]

	return
}
