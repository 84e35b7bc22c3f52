// Package asm translates rexta assembly source text into a flat binary
// image.
//
// Source is line oriented: a line is blank, a comment (';' to end of line),
// a 'label:' definition, an '.equ NAME VALUE' equate, or an instruction of
// the form 'MNEMONIC operand[, operand]'. Register operands are written
// r0..rN, immediates and addresses as decimal or 0x-prefixed hexadecimal
// literals, and address operands may name a label defined anywhere in the
// file. $() expressions are evaluated at assembly time with equates in
// scope.
//
// Assembly is all-or-nothing: any error identifies the offending line and
// aborts without emitting an image.
package asm
