// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package arm

import (
	"fmt"
	"iter"

	"github.com/ezrec/uclift/reg"
)

// Storage layout of the register file: r0..r12 words first, then the
// special registers, then the packed status word.
const (
	offGpr  = 0
	offSp   = 52
	offLr   = 56
	offPc   = 60
	offCpsr = 64
)

// Condition flag bit positions within CPSR.
const (
	bitVf = 28
	bitCf = 29
	bitZf = 30
	bitNf = 31
)

// Profile exports the register layout of the architecture. r0 carries
// return values; r0..r3 are the argument registers of the AAPCS.
func (a *Arm) Profile() iter.Seq[reg.Def] {
	return func(yield func(reg.Def) bool) {
		for n := range 13 {
			d := reg.Def{Name: fmt.Sprintf("r%d", n), Bits: 32, Offset: uint(offGpr + 4*n)}
			switch n {
			case 0:
				d.Role = reg.ROLE_RET
			case 1, 2, 3:
				d.Role, d.Index = reg.ROLE_ARG, n
			}
			if !yield(d) {
				return
			}
		}
		rest := []reg.Def{
			{Name: "sp", Bits: 32, Offset: offSp, Role: reg.ROLE_SP},
			{Name: "lr", Bits: 32, Offset: offLr},
			{Name: "pc", Bits: 32, Offset: offPc, Role: reg.ROLE_PC},
			{Name: "cpsr", Bits: 32, Offset: offCpsr},
		}
		for _, d := range rest {
			if !yield(d) {
				return
			}
		}
	}
}

// NewFile builds a register file with every profile register bound plus
// the nf/zf/cf/vf bit views into CPSR.
func (a *Arm) NewFile() (fl *reg.File, err error) {
	fl = &reg.File{}

	for d := range a.Profile() {
		err = fl.Bind(reg.Binding{
			Name:   d.Name,
			Kind:   reg.BIND_WORD,
			Bits:   d.Bits,
			Offset: d.Offset,
		})
		if err != nil {
			return nil, err
		}
	}

	flags := map[string]uint{
		"vf": bitVf,
		"cf": bitCf,
		"zf": bitZf,
		"nf": bitNf,
	}
	for name, bit := range flags {
		err = fl.Bind(reg.Binding{
			Name:   name,
			Kind:   reg.BIND_BIT,
			Bits:   1,
			Offset: offCpsr + bit/8,
			Bit:    bit % 8,
		})
		if err != nil {
			return nil, err
		}
	}

	return fl, nil
}
