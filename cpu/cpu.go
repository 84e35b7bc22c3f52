package cpu

import (
	"errors"
	"fmt"
	"log"

	"github.com/jonathan-gaul/rexta/isa"
)

// State is the CPU lifecycle state.
type State int

const (
	STATE_RUNNING = State(iota)
	STATE_HALTED  // Terminal: a HLT instruction executed.
	STATE_FAULTED // Terminal: a fatal fault occurred.
)

// String returns the state name.
func (state State) String() string {
	switch state {
	case STATE_RUNNING:
		return "running"
	case STATE_HALTED:
		return "halted"
	case STATE_FAULTED:
		return "faulted"
	}

	return "unknown"
}

// Cpu is the simulation context for a single rexta CPU.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Variant *isa.Variant // CPU variant parameters.

	Reg   []byte // General purpose register bank.
	Pc    uint32 // Program counter; next instruction to fetch.
	Sp    uint32 // Stack pointer into the call stack region of memory.
	Carry bool   // CARRY flag.
	Zero  bool   // ZERO flag.
	Mem   []byte // Flat memory; code and data share the space.
	State State  // Lifecycle state.

	Ticks int // Instructions executed since reset.
}

// NewCpu creates a CPU for the given variant, reset and ready to load.
func NewCpu(v *isa.Variant) (cpu *Cpu) {
	if v == nil {
		v = isa.Rexta16()
	}

	cpu = &Cpu{
		Variant: v,
		Reg:     make([]byte, v.Registers),
		Mem:     make([]byte, v.MemSize),
	}
	cpu.Reset()

	return
}

// Reset zeroes the registers, flags, and memory, points SP at the variant's
// stack origin, and returns the CPU to the running state.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Reg)
	clear(cpu.Mem)
	cpu.Pc = 0
	cpu.Sp = cpu.Variant.StackOrigin
	cpu.Carry = false
	cpu.Zero = false
	cpu.State = STATE_RUNNING
	cpu.Ticks = 0
}

// Load copies a binary image into memory at base and points PC at it.
func (cpu *Cpu) Load(image []byte, base uint32) (err error) {
	if uint64(base)+uint64(len(image)) > uint64(cpu.Variant.MemSize) {
		err = ErrImageSize
		return
	}

	copy(cpu.Mem[base:], image)
	cpu.Pc = base

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes at %#x", len(image), base)
	}

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	hexw := 2 * cpu.Variant.AddrBytes

	text += fmt.Sprintf("   pc: 0x%0*X\n", hexw, cpu.Pc)
	text += fmt.Sprintf("   sp: 0x%0*X\n", hexw, cpu.Sp)
	for n, val := range cpu.Reg {
		text += fmt.Sprintf("   r%d: 0x%02X\n", n, val)
	}
	text += fmt.Sprintf("carry: %v\n", cpu.Carry)
	text += fmt.Sprintf(" zero: %v\n", cpu.Zero)
	text += fmt.Sprintf("state: %v\n", cpu.State)

	return
}

// Step performs exactly one fetch-decode-execute cycle. It reports whether
// the CPU halted, and the fault if one occurred. Calling Step on a halted or
// faulted CPU is a caller bug and returns ErrNotRunning without touching any
// state.
func (cpu *Cpu) Step() (halted bool, err error) {
	if cpu.State != STATE_RUNNING {
		halted = cpu.State == STATE_HALTED
		err = ErrNotRunning
		return
	}

	pc := cpu.Pc

	defer func() {
		if err != nil {
			cpu.State = STATE_FAULTED
			err = &ErrFault{Pc: pc, Err: err}
		}
	}()

	if pc >= cpu.Variant.MemSize {
		err = ErrMemoryFault
		return
	}

	op, size, err := isa.Decode(cpu.Variant, cpu.Mem[pc:cpu.Variant.MemSize])
	if err != nil {
		if errors.Is(err, isa.ErrDecodeShort) {
			// Operand bytes run off the end of memory.
			err = ErrMemoryFault
		}
		return
	}

	// PC moves past the opcode and operands before execution, so that
	// control flow assigns absolute values without undoing the advance.
	cpu.Pc = pc + uint32(size)

	if cpu.Verbose {
		log.Printf("%0*x: %v", 2*cpu.Variant.AddrBytes, pc, op)
	}

	err = cpu.execute(op)
	if err != nil {
		return
	}

	cpu.Ticks += 1
	halted = cpu.State == STATE_HALTED

	return
}

// Run repeatedly steps until the CPU halts or faults. A normal HLT returns
// nil; a fault is returned as an ErrFault.
func (cpu *Cpu) Run() (err error) {
	for {
		var halted bool
		halted, err = cpu.Step()
		if err != nil || halted {
			return
		}
	}
}

// setFlags applies the documented flag effect shared by the ALU, immediate,
// and memory instructions.
func (cpu *Cpu) setFlags(value byte, carry bool) {
	cpu.Carry = carry
	cpu.Zero = value == 0
}

// execute applies the semantic effect of a single decoded instruction.
func (cpu *Cpu) execute(op isa.Op) (err error) {
	switch op.Entry.Code {
	case isa.OP_NOP:
		// pass

	case isa.OP_HLT:
		cpu.State = STATE_HALTED

	case isa.OP_RTS:
		var addr uint32
		addr, err = cpu.pop()
		if err != nil {
			return
		}
		cpu.Pc = addr

	case isa.OP_NOT:
		value := ^cpu.Reg[op.Rd]
		cpu.Reg[op.Rd] = value
		cpu.setFlags(value, false)

	case isa.OP_ADD:
		sum := uint32(cpu.Reg[op.Rd]) + uint32(cpu.Reg[op.Rs])
		cpu.Reg[op.Rd] = byte(sum)
		cpu.setFlags(byte(sum), sum > 0xff)

	case isa.OP_SUB:
		borrow := cpu.Reg[op.Rd] < cpu.Reg[op.Rs]
		value := cpu.Reg[op.Rd] - cpu.Reg[op.Rs]
		cpu.Reg[op.Rd] = value
		cpu.setFlags(value, borrow)

	case isa.OP_AND:
		value := cpu.Reg[op.Rd] & cpu.Reg[op.Rs]
		cpu.Reg[op.Rd] = value
		cpu.setFlags(value, false)

	case isa.OP_OR:
		value := cpu.Reg[op.Rd] | cpu.Reg[op.Rs]
		cpu.Reg[op.Rd] = value
		cpu.setFlags(value, false)

	case isa.OP_XOR:
		value := cpu.Reg[op.Rd] ^ cpu.Reg[op.Rs]
		cpu.Reg[op.Rd] = value
		cpu.setFlags(value, false)

	case isa.OP_LOADI:
		cpu.Reg[op.Rd] = op.Imm
		cpu.setFlags(op.Imm, false)

	case isa.OP_ADDI:
		sum := uint32(cpu.Reg[op.Rd]) + uint32(op.Imm)
		cpu.Reg[op.Rd] = byte(sum)
		cpu.setFlags(byte(sum), sum > 0xff)

	case isa.OP_LOAD:
		if op.Addr >= cpu.Variant.MemSize {
			err = ErrMemoryFault
			return
		}
		value := cpu.Mem[op.Addr]
		cpu.Reg[op.Rd] = value
		cpu.setFlags(value, false)

	case isa.OP_STORE:
		if op.Addr >= cpu.Variant.MemSize {
			err = ErrMemoryFault
			return
		}
		value := cpu.Reg[op.Rd]
		cpu.Mem[op.Addr] = value
		cpu.setFlags(value, false)

	case isa.OP_JMP:
		cpu.Pc = op.Addr

	case isa.OP_JZ:
		if cpu.Zero {
			cpu.Pc = op.Addr
		}

	case isa.OP_JC:
		if cpu.Carry {
			cpu.Pc = op.Addr
		}

	case isa.OP_JSR:
		err = cpu.push(cpu.Pc)
		if err != nil {
			return
		}
		cpu.Pc = op.Addr
	}

	return
}

// push writes a return address onto the call stack in big-endian byte
// order and moves SP in the variant's growth direction. SP is untouched
// on failure.
func (cpu *Cpu) push(value uint32) (err error) {
	n := uint32(cpu.Variant.AddrBytes)
	v := cpu.Variant

	var base uint32
	if v.StackGrowsDown {
		if cpu.Sp >= v.MemSize || cpu.Sp+1 < n {
			err = ErrStackFault
			return
		}
		base = cpu.Sp - n + 1
	} else {
		if cpu.Sp+n > v.MemSize {
			err = ErrStackFault
			return
		}
		base = cpu.Sp
	}

	for i := range n {
		cpu.Mem[base+i] = byte(value >> (8 * (n - 1 - i)))
	}

	if v.StackGrowsDown {
		cpu.Sp -= n
	} else {
		cpu.Sp += n
	}

	return
}

// pop reads a return address from the call stack, inverse to push. Popping
// past the stack origin is an underflow fault.
func (cpu *Cpu) pop() (value uint32, err error) {
	n := uint32(cpu.Variant.AddrBytes)
	v := cpu.Variant

	var base uint32
	if v.StackGrowsDown {
		if cpu.Sp+n > v.StackOrigin || cpu.Sp+n >= v.MemSize {
			err = ErrStackFault
			return
		}
		base = cpu.Sp + 1
		cpu.Sp += n
	} else {
		if cpu.Sp < v.StackOrigin+n {
			err = ErrStackFault
			return
		}
		cpu.Sp -= n
		base = cpu.Sp
	}

	for i := range n {
		value = value<<8 | uint32(cpu.Mem[base+i])
	}

	return
}
