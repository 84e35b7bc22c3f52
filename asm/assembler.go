package asm

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/jonathan-gaul/rexta/isa"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler is a two pass assembler for the rexta instruction set. Pass one
// lays out the instruction stream and records label addresses; pass two
// resolves operands and emits the binary image.
type Assembler struct {
	Verbose bool         // If set, verbosely logs the assembler actions.
	Variant *isa.Variant // CPU variant; defaults to isa.Rexta16().
	Origin  uint32       // Address the image is laid out for.

	predefine map[string]string // Predefines
	Label     map[string]uint32 // Map of labels to resolved addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a numeric literal, decimal or 0x-prefixed hex.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	v64, err := strconv.ParseUint(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = uint32(v64)

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

var parenRe = regexp.MustCompile(`\$\([^\$]*\)`)

// expand substitutes $() expressions in a line.
func (asm *Assembler) expand(line string, lineno int) (out string, err error) {
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	out = parenRe.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})

	return
}

// operandCount is the operand arity of each shape in source text.
func operandCount(shape isa.Shape) int {
	switch shape {
	case isa.SHAPE_NONE:
		return 0
	case isa.SHAPE_REG, isa.SHAPE_ADDR:
		return 1
	default:
		return 2
	}
}

// Assemble parses an input stream and emits the flat binary image. Any
// error aborts assembly; no partial image is ever produced.
func (asm *Assembler) Assemble(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	if asm.Variant == nil {
		asm.Variant = isa.Rexta16()
	}
	if asm.Label == nil {
		asm.Label = make(map[string]uint32, 16)
	}
	clear(asm.Label)
	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, asm.predefine)

	// Pass 1: tokenize, record labels, accumulate instruction addresses.
	var listing []Statement
	offset := asm.Origin

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		if len(line) == 0 {
			continue
		}

		line, err = asm.expand(line, lineno)
		if err != nil {
			return
		}

		words := strings.Fields(line)

		// .equ CONST VALUE
		if words[0] == ".equ" {
			if len(words) != 3 {
				err = ErrEquateSyntax
				return
			}
			_, ok := asm.Equate[words[1]]
			if ok {
				err = ErrEquateDuplicate
				return
			}
			asm.Equate[words[1]] = words[2]
			continue
		}

		// Labels record the address of the next instruction.
		for strings.HasSuffix(words[0], ":") {
			label := words[0][:len(words[0])-1]
			if len(label) == 0 {
				err = ErrOperandMalformed
				return
			}
			_, ok := asm.Label[label]
			if ok {
				err = ErrLabelDuplicate
				return
			}
			asm.Label[label] = offset
			words = words[1:]
			if len(words) == 0 {
				break
			}
		}
		if len(words) == 0 {
			continue
		}

		entry, ok := isa.ByName(strings.ToUpper(words[0]))
		if !ok {
			err = ErrMnemonicUnknown
			return
		}

		var args []string
		rest := strings.TrimSpace(strings.Join(words[1:], " "))
		if len(rest) != 0 {
			args = strings.Split(rest, ",")
		}
		for n := range args {
			args[n] = strings.TrimSpace(args[n])
			if len(args[n]) == 0 {
				err = ErrOperandMalformed
				return
			}
			equate, ok := asm.Equate[args[n]]
			if ok {
				args[n] = equate
			}
		}
		if len(args) != operandCount(entry.Shape) {
			err = ErrOperandMalformed
			return
		}

		stmt := Statement{
			LineNo: lineno,
			Line:   line,
			Addr:   offset,
			Size:   entry.Size(asm.Variant),
			Op:     isa.Op{Entry: entry},
			Words:  append([]string{entry.Name}, args...),
		}
		listing = append(listing, stmt)
		offset += uint32(stmt.Size)
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Pass 2: resolve operands and emit.
	var image []byte

	for n := range listing {
		stmt := &listing[n]
		lineno, line = stmt.LineNo, stmt.Line

		err = asm.resolve(stmt)
		if err != nil {
			return
		}

		var raw []byte
		raw, err = stmt.Op.Encode(asm.Variant)
		if err != nil {
			return
		}
		if len(raw) != stmt.Size {
			log.Fatalf("%v: layout size %d but emitted %d bytes", stmt.Op, stmt.Size, len(raw))
		}

		image = append(image, raw...)
	}

	prog = &Program{
		Origin:  asm.Origin,
		Image:   image,
		Listing: listing,
	}

	return
}

// parseRegister parses an rN register name.
func (asm *Assembler) parseRegister(word string) (reg byte, err error) {
	lower := strings.ToLower(word)
	if len(lower) < 2 || lower[0] != 'r' {
		err = ErrOperandMalformed
		return
	}

	index, aerr := strconv.Atoi(lower[1:])
	if aerr != nil || index < 0 || index > 0xf {
		err = ErrOperandMalformed
		return
	}

	reg = byte(index)

	return
}

// addressOf resolves an address operand: a numeric literal, or a label.
func (asm *Assembler) addressOf(word string) (addr uint32, err error) {
	if word[0] >= '0' && word[0] <= '9' {
		addr, err = asm.valueOf(word)
		if err != nil {
			return
		}
		if addr > asm.Variant.AddrMask() {
			err = ErrValueRange
		}
		return
	}

	addr, ok := asm.Label[word]
	if !ok {
		err = ErrLabelMissing(word)
	}

	return
}

// resolve fills in the operand values for a statement.
func (asm *Assembler) resolve(stmt *Statement) (err error) {
	args := stmt.Words[1:]
	op := &stmt.Op

	switch op.Entry.Shape {
	case isa.SHAPE_NONE:
		// pass
	case isa.SHAPE_REG:
		op.Rd, err = asm.parseRegister(args[0])
	case isa.SHAPE_REG_REG:
		op.Rd, err = asm.parseRegister(args[0])
		if err != nil {
			return
		}
		op.Rs, err = asm.parseRegister(args[1])
	case isa.SHAPE_REG_IMM:
		op.Rd, err = asm.parseRegister(args[0])
		if err != nil {
			return
		}
		var imm uint32
		imm, err = asm.valueOf(args[1])
		if err != nil {
			return
		}
		if imm > 0xff {
			err = ErrValueRange
			return
		}
		op.Imm = byte(imm)
	case isa.SHAPE_REG_ADDR:
		op.Rd, err = asm.parseRegister(args[0])
		if err != nil {
			return
		}
		op.Addr, err = asm.addressOf(args[1])
	case isa.SHAPE_ADDR:
		op.Addr, err = asm.addressOf(args[0])
	}

	return
}
