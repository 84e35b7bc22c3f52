package asm

import (
	"github.com/jonathan-gaul/rexta/isa"
)

// Statement is one assembled instruction with its source location.
type Statement struct {
	LineNo int      // Source line number.
	Line   string   // Source text, comment stripped.
	Addr   uint32   // Address of the encoded instruction.
	Size   int      // Encoded length in bytes.
	Op     isa.Op   // Decoded form, operands resolved.
	Words  []string // Tokenized source words.
}

// Program is an assembled binary image plus its source listing.
type Program struct {
	Origin  uint32      // Load address the image was laid out for.
	Image   []byte      // Flat machine code, no header.
	Listing []Statement // One entry per instruction, in image order.
}

// Debug finds the statement whose encoded bytes contain addr.
func (prog *Program) Debug(addr uint32) (st *Statement) {
	for n, stmt := range prog.Listing {
		if addr >= stmt.Addr && addr < stmt.Addr+uint32(stmt.Size) {
			st = &prog.Listing[n]
			break
		}
	}

	return
}
