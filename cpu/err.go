package cpu

import (
	"errors"

	"github.com/jonathan-gaul/rexta/translate"
)

var f = translate.From

var (
	// Simulation faults. All are fatal: the CPU transitions to Faulted
	// and refuses further steps.
	ErrMemoryFault = errors.New(f("memory access outside addressable range"))
	ErrStackFault  = errors.New(f("call stack overflow or underflow"))

	// Caller errors, not simulated faults.
	ErrNotRunning = errors.New(f("cpu is not running"))
	ErrImageSize  = errors.New(f("image does not fit in memory"))
)

// ErrFault locates a fatal fault at the instruction that raised it.
type ErrFault struct {
	Pc  uint32 // Address of the faulting instruction.
	Err error
}

func (err *ErrFault) Error() string {
	return f("fault at pc %#x: %v", err.Pc, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}
