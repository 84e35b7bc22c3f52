// Package cpu simulates the rexta CPU: an 8-bit register bank, CARRY and
// ZERO flags, a program counter and stack pointer sized by the variant's
// address width, and a flat byte-addressed memory shared by code and data.
//
// A Cpu is created fresh per run, mutated only by Step, and holds no state
// between runs. HLT moves it to the halted state; a fatal fault (invalid
// opcode, out-of-range memory access, or call stack imbalance) moves it to
// the faulted state. Both are terminal.
package cpu
