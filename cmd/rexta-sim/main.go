package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/jonathan-gaul/rexta/cpu"
	"github.com/jonathan-gaul/rexta/isa"
)

func parseAddr(text string, v *isa.Variant) uint32 {
	value, err := strconv.ParseUint(text, 0, 32)
	if err != nil || value >= uint64(v.MemSize) {
		log.Fatalf("bad address: %v", text)
	}
	return uint32(value)
}

func main() {
	var variant string
	var base string
	var inspect string
	var verbose bool

	flag.StringVar(&variant, "variant", "", "CPU variant TOML file (default rexta16)")
	flag.StringVar(&base, "base", "0", "load address for the binary image")
	flag.StringVar(&inspect, "inspect", "", "memory address to report after the run")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("use: %v [options] <image.bin>", os.Args[0])
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

	source := flag.Arg(0)
	image, err := os.ReadFile(source)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	sim := cpu.NewCpu(v)
	sim.Verbose = verbose

	err = sim.Load(image, parseAddr(base, v))
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	err = sim.Run()
	if err != nil {
		fmt.Printf("%v\n", err)
	} else {
		fmt.Printf("halted after %d tick(s)\n", sim.Ticks)
	}

	fmt.Print(sim.String())

	if len(inspect) != 0 {
		addr := parseAddr(inspect, v)
		fmt.Printf("mem[0x%0*X] = 0x%02X\n", 2*v.AddrBytes, addr, sim.Mem[addr])
	}

	if sim.State == cpu.STATE_FAULTED {
		os.Exit(1)
	}
}
