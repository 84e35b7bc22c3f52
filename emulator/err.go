package emulator

import (
	"errors"

	"github.com/jonathan-gaul/rexta/translate"
)

var f = translate.From

var (
	ErrNoProgram = errors.New(f("no program assembled"))
)

// ErrRuntime indicates the source location of a runtime fault.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
