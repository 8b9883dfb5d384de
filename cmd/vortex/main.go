package main

import (
	"flag"
	"log"
	"os"

	"github.com/vortexvm/vortex/vm"
)

func main() {
	var compile string
	var output string
	var bytecode string
	var verbose bool

	flag.StringVar(&compile, "c", "", ".asv file to assemble")
	flag.StringVar(&output, "o", "", ".vvm file to write, instead of executing")
	flag.StringVar(&bytecode, "r", "", ".vvm file to execute")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	prog := &vm.Program{}

	// Assemble a new instruction stream.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &vm.Assembler{Verbose: verbose}
		prog, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		for _, diag := range asm.Diags {
			log.Printf("%v: %v", compile, diag)
		}

		if len(output) != 0 {
			err = os.WriteFile(output, prog.Encode(), 0o644)
			if err != nil {
				log.Fatalf("%v: %v", output, err)
			}
			return
		}
	}

	// Load a persisted instruction stream.
	if len(bytecode) != 0 {
		data, err := os.ReadFile(bytecode)
		if err != nil {
			log.Fatalf("%v: %v", bytecode, err)
		}

		prog, err = vm.Decode(data)
		if err != nil {
			log.Fatalf("%v: %v", bytecode, err)
		}
	}

	mach := vm.NewMachine()
	mach.Verbose = verbose

	err := mach.Run(prog)
	for _, diag := range mach.Diags {
		log.Printf("%v", diag)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}

	os.Stdout.Write(mach.Output)

	if verbose {
		log.Printf("final stack: %v", mach.Stack.Data)
	}
}
