package asm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan-gaul/rexta/isa"
)

func assemble(t *testing.T, lines ...string) (*Program, error) {
	t.Helper()

	as := &Assembler{}
	return as.Assemble(strings.NewReader(strings.Join(lines, "\n")))
}

func TestAssembleEmpty(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t, "")
	assert.NoError(err)
	assert.Equal(0, len(prog.Image))
	assert.Equal(0, len(prog.Listing))
}

func TestAssembleDemo(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		"; add two constants and store the result",
		"LOADI R0, 10",
		"LOADI R1, 20",
		"ADD R0, R1",
		"STORE R0, 0x2000",
		"HLT",
	)
	assert.NoError(err)

	expected := []byte{
		0x30, 0x00, 0x0a, // LOADI R0, 10
		0x30, 0x01, 0x14, // LOADI R1, 20
		0x20, 0x10, // ADD R0, R1
		0x41, 0x00, 0x20, 0x00, // STORE R0, 0x2000
		0x02, // HLT
	}
	assert.Equal(expected, prog.Image)

	assert.Equal(5, len(prog.Listing))
	assert.Equal(uint32(6), prog.Listing[2].Addr)
	assert.Equal(4, prog.Listing[2].LineNo)
}

func TestAssembleLowerCase(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t, "loadi r7, 0xff")
	assert.NoError(err)
	assert.Equal([]byte{0x30, 0x07, 0xff}, prog.Image)
}

func TestLabelResolution(t *testing.T) {
	assert := assert.New(t)

	// Forward and backward references assemble to the same bytes as the
	// literal-address equivalent.
	labeled, err := assemble(t,
		"      LOADI R0, 0",
		"loop: ADDI R0, 1",
		"      JZ done",
		"      JMP loop",
		"done: HLT",
	)
	assert.NoError(err)

	literal, err := assemble(t,
		"LOADI R0, 0",
		"ADDI R0, 1",
		"JZ 12",
		"JMP 3",
		"HLT",
	)
	assert.NoError(err)

	assert.Equal(literal.Image, labeled.Image)
}

func TestLabelOrigin(t *testing.T) {
	assert := assert.New(t)

	as := &Assembler{Origin: 0x100}
	prog, err := as.Assemble(strings.NewReader(strings.Join([]string{
		"here: JMP here",
	}, "\n")))
	assert.NoError(err)
	assert.Equal([]byte{0x50, 0x01, 0x00}, prog.Image)
	assert.Equal(uint32(0x100), prog.Listing[0].Addr)
}

func TestLabelOnOwnLine(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		"start:",
		"JMP start",
	)
	assert.NoError(err)
	assert.Equal([]byte{0x50, 0x00, 0x00}, prog.Image)
}

func TestDuplicateLabel(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		"spot: NOP",
		"spot: HLT",
	)
	assert.ErrorIs(err, ErrLabelDuplicate)
	assert.Nil(prog)

	var syn *ErrSyntax
	assert.True(errors.As(err, &syn))
	assert.Equal(2, syn.LineNo)
}

func TestUndefinedLabel(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		"JMP nowhere",
		"HLT",
	)
	assert.Nil(prog)

	var missing ErrLabelMissing
	assert.True(errors.As(err, &missing))
	assert.Equal("nowhere", string(missing))
}

func TestUnknownMnemonic(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t, "FROB R0, R1")
	assert.ErrorIs(err, ErrMnemonicUnknown)
	assert.Nil(prog)
}

func TestInvalidRegister(t *testing.T) {
	assert := assert.New(t)

	_, err := assemble(t, "ADD R0, R9")
	assert.ErrorIs(err, isa.ErrRegisterInvalid)

	_, err = assemble(t, "NOT RX")
	assert.ErrorIs(err, ErrOperandMalformed)
}

func TestValueOutOfRange(t *testing.T) {
	assert := assert.New(t)

	_, err := assemble(t, "LOADI R0, 256")
	assert.ErrorIs(err, ErrValueRange)

	_, err = assemble(t, "JMP 0x10000")
	assert.ErrorIs(err, ErrValueRange)
}

func TestMalformedOperand(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		line string
	}){
		{"missing", "ADD R0"},
		{"extra", "ADD R0, R1, R2"},
		{"no_comma", "LOADI R0 5"},
		{"empty", "ADD R0,"},
		{"none_shape", "HLT R0"},
	}

	for _, entry := range table {
		_, err := assemble(t, entry.line)
		assert.ErrorIs(err, ErrOperandMalformed, entry.name)
	}

	_, err := assemble(t, "LOADI R0, 12fish")
	var badnum ErrParseNumber
	assert.True(errors.As(err, &badnum))
}

func TestEquates(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		".equ COUNT 5",
		".equ RESULT 0x2000",
		"LOADI R0, COUNT",
		"STORE R0, RESULT",
		"HLT",
	)
	assert.NoError(err)
	assert.Equal([]byte{0x30, 0x00, 0x05, 0x41, 0x00, 0x20, 0x00, 0x02}, prog.Image)

	_, err = assemble(t,
		".equ TWICE 1",
		".equ TWICE 2",
	)
	assert.ErrorIs(err, ErrEquateDuplicate)

	_, err = assemble(t, ".equ LONELY")
	assert.ErrorIs(err, ErrEquateSyntax)
}

func TestExpressions(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		".equ BASE 8",
		"LOADI R0, $(BASE * 2 + 1)",
		"HLT",
	)
	assert.NoError(err)
	assert.Equal([]byte{0x30, 0x00, 0x11, 0x02}, prog.Image)

	_, err = assemble(t, "LOADI R0, $(nonsense +)")
	assert.Error(err)
}

func TestPredefine(t *testing.T) {
	assert := assert.New(t)

	as := &Assembler{}
	as.Predefine("LIMIT", "9")

	prog, err := as.Assemble(strings.NewReader("LOADI R3, LIMIT"))
	assert.NoError(err)
	assert.Equal([]byte{0x30, 0x03, 0x09}, prog.Image)
}

// Pass 1 layout and pass 2 emission must agree on every instruction length.
func TestLayoutMatchesEmission(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		"NOP",
		"NOT R1",
		"ADD R0, R1",
		"LOADI R2, 7",
		"LOAD R3, 0x1000",
		"JSR sub",
		"sub: RTS",
	)
	assert.NoError(err)

	offset := uint32(0)
	for _, stmt := range prog.Listing {
		assert.Equal(offset, stmt.Addr, stmt.Line)
		offset += uint32(stmt.Size)
	}
	assert.Equal(int(offset), len(prog.Image))
}
