package asm

import (
	"errors"

	"github.com/jonathan-gaul/rexta/translate"
)

var f = translate.From

var (
	// Assembler errors
	ErrMnemonicUnknown  = errors.New(f("unknown mnemonic"))
	ErrOperandMalformed = errors.New(f("malformed operand"))
	ErrValueRange       = errors.New(f("value out of range"))
	ErrLabelDuplicate   = errors.New(f("label duplicated"))
	ErrEquateSyntax     = errors.New(f(".equ syntax"))
	ErrEquateDuplicate  = errors.New(f(".equ duplicated"))
)

// ErrLabelMissing names an address operand with no matching label.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrSyntax locates an assembly error in the source text.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrParseNumber names a malformed numeric literal.
type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

// ErrParseExpression names a malformed $() expression.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
