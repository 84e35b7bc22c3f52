package isa

import (
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/BurntSushi/toml"
)

// Variant is the CPU configuration shared by the assembler and the
// simulator. Both sides of a run must use the same variant, or the binary
// image and the decoder disagree on instruction layout.
type Variant struct {
	Name           string `toml:"name"`             // Variant name for reporting.
	Registers      int    `toml:"registers"`        // General purpose register count.
	AddrBytes      int    `toml:"address_bytes"`    // Byte width of PC/SP/address operands.
	MemSize        uint32 `toml:"memory_size"`      // Total addressable memory in bytes.
	StackOrigin    uint32 `toml:"stack_origin"`     // Initial stack pointer.
	StackGrowsDown bool   `toml:"stack_grows_down"` // Call stack growth direction.
}

// Rexta16 is the 8 register, 16-bit address, 64 KiB variant. This is the
// default configuration.
func Rexta16() *Variant {
	return &Variant{
		Name:           "rexta16",
		Registers:      8,
		AddrBytes:      2,
		MemSize:        0x10000,
		StackOrigin:    0xfffe,
		StackGrowsDown: true,
	}
}

// Rexta24 is the 9 register, 24-bit address, 16 MiB variant.
func Rexta24() *Variant {
	return &Variant{
		Name:           "rexta24",
		Registers:      9,
		AddrBytes:      3,
		MemSize:        0x1000000,
		StackOrigin:    0xfffffe,
		StackGrowsDown: true,
	}
}

// LoadVariant reads a variant definition in TOML format.
func LoadVariant(input io.Reader) (v *Variant, err error) {
	v = &Variant{}
	_, err = toml.NewDecoder(input).Decode(v)
	if err != nil {
		v = nil
		return
	}

	err = v.Validate()
	if err != nil {
		v = nil
	}

	return
}

// Validate checks the variant parameters for internal consistency.
func (v *Variant) Validate() (err error) {
	switch {
	case v.Registers < 1 || v.Registers > 16:
		// RegReg packs two indices into nibbles.
		err = ErrVariantRegisters
	case v.AddrBytes < 1 || v.AddrBytes > 4:
		err = ErrVariantAddress
	case uint64(v.MemSize) > uint64(v.AddrMask())+1:
		err = ErrVariantMemory
	case v.StackOrigin >= v.MemSize:
		err = ErrVariantStack
	}

	return
}

// AddrMask returns the largest encodable address for this variant.
func (v *Variant) AddrMask() uint32 {
	return uint32(1)<<(8*v.AddrBytes) - 1
}

// Defines returns the variant parameters as assembler equates.
func (v *Variant) Defines() iter.Seq2[string, string] {
	defines := map[string]string{
		"REGISTERS":    fmt.Sprintf("%v", v.Registers),
		"MEM_SIZE":     fmt.Sprintf("%#x", v.MemSize),
		"STACK_ORIGIN": fmt.Sprintf("%#x", v.StackOrigin),
	}

	return maps.All(defines)
}
