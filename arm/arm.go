// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package arm

import (
	"log"

	"github.com/ezrec/uclift/il"
	"github.com/ezrec/uclift/lift"
)

// OP_SIZE is the ARM instruction width in bytes.
const OP_SIZE = 4

// Kind classifies a structured operand.
type Kind int

const (
	OP_REG = Kind(0) // register name
	OP_IMM = Kind(1) // immediate value
	OP_MEM = Kind(2) // memory reference
)

// Shift is an operand shift kind.
type Shift int

const (
	SHIFT_NONE = Shift(0)
	SHIFT_ASR  = Shift(1) // arithmetic right
	SHIFT_LSL  = Shift(2) // logical left
	SHIFT_LSR  = Shift(3) // logical right
	SHIFT_ROR  = Shift(4) // rotate right
	SHIFT_RRX  = Shift(5) // rotate right through carry, by one
)

// Cond is an ARM condition code. The zero value executes always.
type Cond int

const (
	COND_AL = Cond(0)
	COND_EQ = Cond(1)
	COND_NE = Cond(2)
	COND_HS = Cond(3)
	COND_LO = Cond(4)
	COND_MI = Cond(5)
	COND_PL = Cond(6)
	COND_VS = Cond(7)
	COND_VC = Cond(8)
	COND_HI = Cond(9)
	COND_LS = Cond(10)
	COND_GE = Cond(11)
	COND_LT = Cond(12)
	COND_GT = Cond(13)
	COND_LE = Cond(14)
)

var _cond_suffix = map[Cond]string{
	COND_EQ: "eq",
	COND_NE: "ne",
	COND_HS: "hs",
	COND_LO: "lo",
	COND_MI: "mi",
	COND_PL: "pl",
	COND_VS: "vs",
	COND_VC: "vc",
	COND_HI: "hi",
	COND_LS: "ls",
	COND_GE: "ge",
	COND_LT: "lt",
	COND_GT: "gt",
	COND_LE: "le",
}

// String returns the mnemonic suffix; empty for always.
func (c Cond) String() (suffix string) { return _cond_suffix[c] }

// Mem is a memory operand: base + displacement +/- (shifted index).
type Mem struct {
	Base     string
	Index    string // empty when absent
	Disp     int32
	Subtract bool // index is subtracted from the base
}

// Operand is one structured instruction operand from the external
// decoder. Shift applies to register operands and to the memory index.
type Operand struct {
	Kind     Kind
	Reg      string
	Imm      uint32
	Mem      Mem
	Shift    Shift
	ShiftImm uint
}

// Insn is a decoded ARM instruction presented for lifting.
type Insn struct {
	Name        string // base mnemonic, e.g. "add"
	Addr        uint64
	Size        int // bytes; zero means OP_SIZE
	Cond        Cond
	UpdateFlags bool
	Operands    []Operand
}

// Arm lifts structured ARM32 instructions into effect-tree records.
type Arm struct {
	Verbose bool
}

// New returns an ARM32 lifter.
func New() (a *Arm) { return &Arm{} }

func (a *Arm) Name() (name string) { return "arm" }

func (a *Arm) Align() (align int) { return OP_SIZE }

func (a *Arm) MinOpSize() (size int) { return OP_SIZE }

func (a *Arm) MaxOpSize() (size int) { return OP_SIZE }

// Lift produces the effect program and metadata for insn. It never
// fails: an unsupported instruction or operand shape yields an inert
// trapping record.
func (a *Arm) Lift(insn *Insn) (op *lift.Op) {
	op = lift.NewOp(insn.Addr)
	op.Size = insn.Size
	if op.Size <= 0 {
		op.Size = OP_SIZE
	}
	op.Cycles = 1
	op.Mnemonic = insn.Name + insn.Cond.String()

	l := &lifter{arm: a, insn: insn, op: op}
	eff := l.lift()
	if eff == nil {
		a.invalid(op)
		return op
	}

	if c := Condition(insn.Cond); c != nil {
		eff = il.Branch(c, eff, nil)
		if op.Jump != lift.NoAddr {
			op.Fail = insn.Addr + uint64(op.Size)
			if op.Class == lift.CLASS_JMP {
				op.Class = lift.CLASS_CJMP
			}
		}
	}
	op.Program = eff

	if a.Verbose {
		log.Printf("arm: %#010x: %s", insn.Addr, op.Mnemonic)
	}
	return op
}

// invalid turns op into the inert trap record used for unliftable input.
func (a *Arm) invalid(op *lift.Op) {
	op.Class = lift.CLASS_UNKNOWN
	op.Cycles = 1
	op.Jump = lift.NoAddr
	op.Fail = lift.NoAddr
	op.Trap = true
	op.Mnemonic = "invalid"
	op.Program = il.Trap()
}
