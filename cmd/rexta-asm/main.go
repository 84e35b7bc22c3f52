package main

import (
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/jonathan-gaul/rexta/asm"
	"github.com/jonathan-gaul/rexta/isa"
)

func main() {
	var output string
	var variant string
	var origin string
	var verbose bool

	flag.StringVar(&output, "o", "out.bin", "output binary image")
	flag.StringVar(&variant, "variant", "", "CPU variant TOML file (default rexta16)")
	flag.StringVar(&origin, "org", "0", "address the image is laid out for")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("use: %v [options] <source.asm>", os.Args[0])
	}

	v := isa.Rexta16()
	if len(variant) != 0 {
		vf, err := os.Open(variant)
		if err != nil {
			log.Fatalf("%v: %v", variant, err)
		}
		v, err = isa.LoadVariant(vf)
		vf.Close()
		if err != nil {
			log.Fatalf("%v: %v", variant, err)
		}
	}

	org, err := strconv.ParseUint(origin, 0, 32)
	if err != nil {
		log.Fatalf("-org %v: %v", origin, err)
	}

	source := flag.Arg(0)
	inf, err := os.Open(source)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}
	defer inf.Close()

	as := &asm.Assembler{
		Verbose: verbose,
		Variant: v,
		Origin:  uint32(org),
	}

	prog, err := as.Assemble(inf)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	err = os.WriteFile(output, prog.Image, 0o644)
	if err != nil {
		log.Fatalf("%v: %v", output, err)
	}

	if verbose {
		log.Printf("%v: %d bytes", output, len(prog.Image))
	}
}
