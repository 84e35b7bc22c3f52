// Package isa defines the rexta instruction set: the opcode encoding table,
// the operand shapes and their byte layouts, and the CPU variant parameters
// shared between the assembler and the simulator.
//
// The encoding table is the single source of truth for the binary format.
// Both the assembler's emitter and the simulator's decoder go through
// Op.Encode and Decode, so the two sides cannot drift apart.
package isa
