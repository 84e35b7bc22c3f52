package isa

import (
	"errors"

	"github.com/jonathan-gaul/rexta/translate"
)

var f = translate.From

var (
	// Encoding errors
	ErrRegisterInvalid = errors.New(f("register out of range"))
	ErrAddressRange    = errors.New(f("address out of range"))
	ErrDecodeShort     = errors.New(f("short instruction"))
	ErrOpcodeInvalid   = errors.New(f("invalid opcode"))

	// Variant errors
	ErrVariantRegisters = errors.New(f("register count must be 1..16"))
	ErrVariantAddress   = errors.New(f("address width must be 1..4 bytes"))
	ErrVariantMemory    = errors.New(f("memory size exceeds addressable range"))
	ErrVariantStack     = errors.New(f("stack origin outside memory"))
)
