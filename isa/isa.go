package isa

import (
	"fmt"
)

// Shape describes the operand byte layout following an opcode byte.
type Shape int

const (
	SHAPE_NONE     = Shape(iota) // no operands
	SHAPE_REG                    // 1 byte: register index
	SHAPE_REG_REG                // 1 byte: Rs in the high nibble, Rd in the low nibble
	SHAPE_REG_IMM                // 1 byte register index + 1 byte immediate
	SHAPE_REG_ADDR               // 1 byte register index + big-endian address
	SHAPE_ADDR                   // big-endian address
)

// OperandSize returns the number of operand bytes for this shape under the
// given variant's address width.
func (shape Shape) OperandSize(v *Variant) int {
	switch shape {
	case SHAPE_NONE:
		return 0
	case SHAPE_REG:
		return 1
	case SHAPE_REG_REG:
		return 1
	case SHAPE_REG_IMM:
		return 2
	case SHAPE_REG_ADDR:
		return 1 + v.AddrBytes
	case SHAPE_ADDR:
		return v.AddrBytes
	}

	return 0
}

// String returns the shape name.
func (shape Shape) String() string {
	switch shape {
	case SHAPE_NONE:
		return "none"
	case SHAPE_REG:
		return "reg"
	case SHAPE_REG_REG:
		return "reg,reg"
	case SHAPE_REG_IMM:
		return "reg,imm"
	case SHAPE_REG_ADDR:
		return "reg,addr"
	case SHAPE_ADDR:
		return "addr"
	}

	return "unknown"
}

// Opcode byte values.
const (
	OP_NOP   = byte(0x00)
	OP_RTS   = byte(0x01)
	OP_HLT   = byte(0x02)
	OP_NOT   = byte(0x10)
	OP_ADD   = byte(0x20)
	OP_SUB   = byte(0x21)
	OP_AND   = byte(0x22)
	OP_OR    = byte(0x23)
	OP_XOR   = byte(0x24)
	OP_LOADI = byte(0x30)
	OP_ADDI  = byte(0x31)
	OP_LOAD  = byte(0x40)
	OP_STORE = byte(0x41)
	OP_JMP   = byte(0x50)
	OP_JZ    = byte(0x51)
	OP_JC    = byte(0x52)
	OP_JSR   = byte(0x53)
)

// Entry is a single row of the instruction encoding table.
type Entry struct {
	Name  string // Mnemonic, upper case.
	Code  byte   // Opcode byte value.
	Shape Shape  // Operand layout following the opcode byte.
}

// Size returns the full encoded instruction length in bytes.
func (entry Entry) Size(v *Variant) int {
	return 1 + entry.Shape.OperandSize(v)
}

// The instruction encoding table. Consulted by both the assembler and the
// simulator; never mutated after init.
var table = []Entry{
	{"NOP", OP_NOP, SHAPE_NONE},
	{"RTS", OP_RTS, SHAPE_NONE},
	{"HLT", OP_HLT, SHAPE_NONE},
	{"NOT", OP_NOT, SHAPE_REG},
	{"ADD", OP_ADD, SHAPE_REG_REG},
	{"SUB", OP_SUB, SHAPE_REG_REG},
	{"AND", OP_AND, SHAPE_REG_REG},
	{"OR", OP_OR, SHAPE_REG_REG},
	{"XOR", OP_XOR, SHAPE_REG_REG},
	{"LOADI", OP_LOADI, SHAPE_REG_IMM},
	{"ADDI", OP_ADDI, SHAPE_REG_IMM},
	{"LOAD", OP_LOAD, SHAPE_REG_ADDR},
	{"STORE", OP_STORE, SHAPE_REG_ADDR},
	{"JMP", OP_JMP, SHAPE_ADDR},
	{"JZ", OP_JZ, SHAPE_ADDR},
	{"JC", OP_JC, SHAPE_ADDR},
	{"JSR", OP_JSR, SHAPE_ADDR},
}

var byName map[string]Entry
var byCode map[byte]Entry

func init() {
	byName = make(map[string]Entry, len(table))
	byCode = make(map[byte]Entry, len(table))

	for _, entry := range table {
		if _, ok := byName[entry.Name]; ok {
			panic("duplicate mnemonic " + entry.Name)
		}
		if _, ok := byCode[entry.Code]; ok {
			panic("duplicate opcode for " + entry.Name)
		}
		byName[entry.Name] = entry
		byCode[entry.Code] = entry
	}
}

// ByName looks up a table entry by mnemonic.
func ByName(name string) (entry Entry, ok bool) {
	entry, ok = byName[name]
	return
}

// ByCode looks up a table entry by opcode byte.
func ByCode(code byte) (entry Entry, ok bool) {
	entry, ok = byCode[code]
	return
}

// Entries returns all table entries, in table order.
func Entries() []Entry {
	out := make([]Entry, len(table))
	copy(out, table)
	return out
}

// Op is a decoded instruction: a table entry plus its operand values.
type Op struct {
	Entry Entry

	Rd   byte   // Destination register index.
	Rs   byte   // Source register index.
	Imm  byte   // Immediate value.
	Addr uint32 // Absolute address.
}

// Encode emits the instruction as the byte sequence the simulator fetches.
func (op Op) Encode(v *Variant) (out []byte, err error) {
	checkReg := func(reg byte) error {
		if int(reg) >= v.Registers {
			return ErrRegisterInvalid
		}
		return nil
	}
	checkAddr := func(addr uint32) error {
		if addr > v.AddrMask() {
			return ErrAddressRange
		}
		return nil
	}

	out = append(out, op.Entry.Code)

	switch op.Entry.Shape {
	case SHAPE_NONE:
		// pass
	case SHAPE_REG:
		err = checkReg(op.Rd)
		out = append(out, op.Rd)
	case SHAPE_REG_REG:
		// Rs in the high nibble, Rd in the low nibble.
		err = checkReg(op.Rd)
		if err == nil {
			err = checkReg(op.Rs)
		}
		out = append(out, op.Rs<<4|op.Rd)
	case SHAPE_REG_IMM:
		err = checkReg(op.Rd)
		out = append(out, op.Rd, op.Imm)
	case SHAPE_REG_ADDR:
		err = checkReg(op.Rd)
		if err == nil {
			err = checkAddr(op.Addr)
		}
		out = append(out, op.Rd)
		out = appendAddr(out, v, op.Addr)
	case SHAPE_ADDR:
		err = checkAddr(op.Addr)
		out = appendAddr(out, v, op.Addr)
	}

	if err != nil {
		out = nil
	}

	return
}

// Decode reads one instruction from the start of mem, returning the decoded
// operation and the number of bytes it occupies.
func Decode(v *Variant, mem []byte) (op Op, size int, err error) {
	if len(mem) < 1 {
		err = ErrDecodeShort
		return
	}

	entry, ok := ByCode(mem[0])
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	size = entry.Size(v)
	if len(mem) < size {
		err = ErrDecodeShort
		return
	}

	op = Op{Entry: entry}
	args := mem[1:size]

	switch entry.Shape {
	case SHAPE_NONE:
		// pass
	case SHAPE_REG:
		op.Rd = args[0]
	case SHAPE_REG_REG:
		op.Rd = args[0] & 0x0f
		op.Rs = args[0] >> 4
	case SHAPE_REG_IMM:
		op.Rd = args[0]
		op.Imm = args[1]
	case SHAPE_REG_ADDR:
		op.Rd = args[0]
		op.Addr = readAddr(v, args[1:])
	case SHAPE_ADDR:
		op.Addr = readAddr(v, args)
	}

	// Register index bytes are unconstrained on the wire; reject them
	// here so execution never indexes past the register bank.
	if int(op.Rd) >= v.Registers || int(op.Rs) >= v.Registers {
		op = Op{}
		size = 0
		err = ErrRegisterInvalid
	}

	return
}

// appendAddr appends an address as big-endian bytes of the variant's width.
func appendAddr(out []byte, v *Variant, addr uint32) []byte {
	for n := v.AddrBytes - 1; n >= 0; n-- {
		out = append(out, byte(addr>>(8*n)))
	}
	return out
}

// readAddr reads a big-endian address of the variant's width.
func readAddr(v *Variant, in []byte) (addr uint32) {
	for n := range v.AddrBytes {
		addr = addr<<8 | uint32(in[n])
	}
	return
}

// String returns the assembly language representation of this instruction.
func (op Op) String() (out string) {
	switch op.Entry.Shape {
	case SHAPE_REG:
		out = fmt.Sprintf("%v R%d", op.Entry.Name, op.Rd)
	case SHAPE_REG_REG:
		out = fmt.Sprintf("%v R%d, R%d", op.Entry.Name, op.Rd, op.Rs)
	case SHAPE_REG_IMM:
		out = fmt.Sprintf("%v R%d, %d", op.Entry.Name, op.Rd, op.Imm)
	case SHAPE_REG_ADDR:
		out = fmt.Sprintf("%v R%d, 0x%X", op.Entry.Name, op.Rd, op.Addr)
	case SHAPE_ADDR:
		out = fmt.Sprintf("%v 0x%X", op.Entry.Name, op.Addr)
	default:
		out = op.Entry.Name
	}

	return
}
