// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/ezrec/uclift/avr"
	"github.com/ezrec/uclift/lift"
)

func main() {
	var arch string
	var model string
	var hexcode string
	var input string
	var load string
	var models string
	var dump bool
	var verbose bool

	flag.StringVar(&arch, "a", "avr", "Architecture to lift")
	flag.StringVar(&model, "m", "", "CPU model name")
	flag.StringVar(&hexcode, "x", "", "Hex string of machine code")
	flag.StringVar(&input, "i", "", "Raw machine code file")
	flag.StringVar(&load, "l", "0", "Load address")
	flag.StringVar(&models, "M", "", "Starlark CPU model definitions")
	flag.BoolVar(&dump, "d", false, "Dump full decoded records")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	addr, err := strconv.ParseUint(load, 0, 64)
	if err != nil {
		log.Fatalf("%v: %v", load, err)
	}

	var a lift.Arch
	switch arch {
	case "avr":
		dec := avr.New()
		dec.Verbose = verbose
		if len(models) != 0 {
			if err = dec.Models.LoadScript(models, nil); err != nil {
				log.Fatalf("%v: %v", models, err)
			}
		}
		a = dec
	default:
		// arm lifts externally decoded instructions, not raw bytes
		log.Fatalf("%v: Unknown byte-stream architecture", arch)
	}

	var code []byte
	switch {
	case len(hexcode) != 0:
		clean := strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\t' {
				return -1
			}
			return r
		}, hexcode)
		code, err = hex.DecodeString(clean)
		if err != nil {
			log.Fatalf("%v: %v", hexcode, err)
		}
	case len(input) != 0:
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		code, err = io.ReadAll(inf)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
	default:
		log.Fatalf("%v: One of -x or -i is required", os.Args[0])
	}

	for off := 0; off < len(code); {
		op := a.Decode(code[off:], addr+uint64(off), model)
		show(op, dump)
		size := op.Size
		if size < a.MinOpSize() {
			size = a.MinOpSize()
		}
		off += size
	}
}

func show(op *lift.Op, dump bool) {
	if dump {
		fmt.Print(spew.Sdump(op))
		return
	}
	text := ""
	if op.Program != nil {
		text = op.Program.Text()
	}
	fmt.Printf("%#08x: %-6s %-16s %s\n", op.Addr, op.Class, op.Mnemonic, text)
}
