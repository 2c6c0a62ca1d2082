// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package avr

import (
	"fmt"
	"iter"

	"github.com/ezrec/uclift/internal"
	"github.com/ezrec/uclift/reg"
)

// Flag bit positions within SREG.
var flagNames = []string{"cf", "zf", "nf", "vf", "sf", "hf", "tf", "if"}

// Storage layout of the register file. The general purpose registers
// occupy the first 32 bytes, mirroring the on-chip address map; the
// segment base pseudo-registers (_prog, _io, ...) relocate the flat
// memory spaces an effect program addresses.
const (
	offGpr    = 0  // r0..r31
	offPc     = 32 // pcl at 32, pch at 34
	offSp     = 36 // spl at 36, sph at 37
	offSreg   = 38
	offRamp   = 39 // rampx, rampy, rampz, rampd, eind
	offProg   = 44
	offPage   = 48
	offEeprom = 52
	offRam    = 56
	offIo     = 60
	offSram   = 64
	offSpmcsr = 68
)

func gprDefs() iter.Seq[reg.Def] {
	return func(yield func(reg.Def) bool) {
		for n := range 32 {
			d := reg.Def{Name: fmt.Sprintf("r%d", n), Bits: 8, Offset: uint(offGpr + n)}
			switch n {
			case 24:
				d.Role = reg.ROLE_RET
			case 25:
				d.Role, d.Index = reg.ROLE_ARG, 0
			case 23:
				d.Role, d.Index = reg.ROLE_ARG, 2
			case 22:
				d.Role, d.Index = reg.ROLE_ARG, 3
			}
			if !yield(d) {
				return
			}
		}
	}
}

func wideDefs() iter.Seq[reg.Def] {
	defs := []reg.Def{
		{Name: "x", Bits: 16, Offset: 26},
		{Name: "y", Bits: 16, Offset: 28},
		{Name: "z", Bits: 16, Offset: 30},
		{Name: "pc", Bits: 32, Offset: offPc, Role: reg.ROLE_PC},
		{Name: "pcl", Bits: 16, Offset: offPc},
		{Name: "pch", Bits: 16, Offset: offPc + 2},
		{Name: "sp", Bits: 16, Offset: offSp, Role: reg.ROLE_SP},
		{Name: "spl", Bits: 8, Offset: offSp},
		{Name: "sph", Bits: 8, Offset: offSp + 1},
	}
	return func(yield func(reg.Def) bool) {
		for _, d := range defs {
			if !yield(d) {
				return
			}
		}
	}
}

func specialDefs() iter.Seq[reg.Def] {
	defs := []reg.Def{
		{Name: "sreg", Bits: 8, Offset: offSreg},
		{Name: "rampx", Bits: 8, Offset: offRamp},
		{Name: "rampy", Bits: 8, Offset: offRamp + 1},
		{Name: "rampz", Bits: 8, Offset: offRamp + 2},
		{Name: "rampd", Bits: 8, Offset: offRamp + 3},
		{Name: "eind", Bits: 8, Offset: offRamp + 4},
		{Name: "_prog", Bits: 32, Offset: offProg},
		{Name: "_page", Bits: 32, Offset: offPage},
		{Name: "_eeprom", Bits: 32, Offset: offEeprom},
		{Name: "_ram", Bits: 32, Offset: offRam},
		{Name: "_io", Bits: 32, Offset: offIo},
		{Name: "_sram", Bits: 32, Offset: offSram},
		{Name: "spmcsr", Bits: 8, Offset: offSpmcsr},
	}
	return func(yield func(reg.Def) bool) {
		for _, d := range defs {
			if !yield(d) {
				return
			}
		}
	}
}

// Profile exports the register layout of the architecture.
func (a *Avr) Profile() iter.Seq[reg.Def] {
	return internal.IterSeqConcat(gprDefs(), wideDefs(), specialDefs())
}

// NewFile builds a register file with every profile register bound, plus
// the flag bit views into SREG and the 16-bit index and pointer pairs.
func (a *Avr) NewFile() (fl *reg.File, err error) {
	fl = &reg.File{}

	for n := range 32 {
		err = fl.Bind(reg.Binding{
			Name:   fmt.Sprintf("r%d", n),
			Kind:   reg.BIND_WORD,
			Bits:   8,
			Offset: uint(offGpr + n),
		})
		if err != nil {
			return nil, err
		}
	}

	words := []reg.Binding{
		{Name: "pcl", Kind: reg.BIND_WORD, Bits: 16, Offset: offPc},
		{Name: "pch", Kind: reg.BIND_WORD, Bits: 16, Offset: offPc + 2},
		{Name: "spl", Kind: reg.BIND_WORD, Bits: 8, Offset: offSp},
		{Name: "sph", Kind: reg.BIND_WORD, Bits: 8, Offset: offSp + 1},
		{Name: "sreg", Kind: reg.BIND_WORD, Bits: 8, Offset: offSreg},
		{Name: "rampx", Kind: reg.BIND_WORD, Bits: 8, Offset: offRamp},
		{Name: "rampy", Kind: reg.BIND_WORD, Bits: 8, Offset: offRamp + 1},
		{Name: "rampz", Kind: reg.BIND_WORD, Bits: 8, Offset: offRamp + 2},
		{Name: "rampd", Kind: reg.BIND_WORD, Bits: 8, Offset: offRamp + 3},
		{Name: "eind", Kind: reg.BIND_WORD, Bits: 8, Offset: offRamp + 4},
		{Name: "_prog", Kind: reg.BIND_WORD, Bits: 32, Offset: offProg},
		{Name: "_page", Kind: reg.BIND_WORD, Bits: 32, Offset: offPage},
		{Name: "_eeprom", Kind: reg.BIND_WORD, Bits: 32, Offset: offEeprom},
		{Name: "_ram", Kind: reg.BIND_WORD, Bits: 32, Offset: offRam},
		{Name: "_io", Kind: reg.BIND_WORD, Bits: 32, Offset: offIo},
		{Name: "_sram", Kind: reg.BIND_WORD, Bits: 32, Offset: offSram},
		{Name: "spmcsr", Kind: reg.BIND_WORD, Bits: 8, Offset: offSpmcsr},
	}
	for _, b := range words {
		if err = fl.Bind(b); err != nil {
			return nil, err
		}
	}

	for n, name := range flagNames {
		err = fl.Bind(reg.Binding{
			Name:   name,
			Kind:   reg.BIND_BIT,
			Bits:   1,
			Offset: offSreg,
			Bit:    uint(n),
		})
		if err != nil {
			return nil, err
		}
	}

	pairs := []reg.Binding{
		{Name: "x", Kind: reg.BIND_PAIR, Bits: 16, Lo: "r26", Hi: "r27"},
		{Name: "y", Kind: reg.BIND_PAIR, Bits: 16, Lo: "r28", Hi: "r29"},
		{Name: "z", Kind: reg.BIND_PAIR, Bits: 16, Lo: "r30", Hi: "r31"},
		{Name: "pc", Kind: reg.BIND_PAIR, Bits: 32, Lo: "pcl", Hi: "pch"},
		{Name: "sp", Kind: reg.BIND_PAIR, Bits: 16, Lo: "spl", Hi: "sph"},
	}
	for _, b := range pairs {
		if err = fl.Bind(b); err != nil {
			return nil, err
		}
	}

	return fl, nil
}
