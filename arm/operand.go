// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package arm

import (
	"github.com/ezrec/uclift/il"
	"github.com/ezrec/uclift/lift"
)

// bound is the set of registers available as IL variables.
var bound = map[string]bool{
	"r0": true, "r1": true, "r2": true, "r3": true,
	"r4": true, "r5": true, "r6": true, "r7": true,
	"r8": true, "r9": true, "r10": true, "r11": true, "r12": true,
	"sp": true, "lr": true,
}

type lifter struct {
	arm  *Arm
	insn *Insn
	op   *lift.Op
}

func (l *lifter) isReg(n int) (ok bool) {
	return n < len(l.insn.Operands) && l.insn.Operands[n].Kind == OP_REG
}

func (l *lifter) isImm(n int) (ok bool) {
	return n < len(l.insn.Operands) && l.insn.Operands[n].Kind == OP_IMM
}

func (l *lifter) isMem(n int) (ok bool) {
	return n < len(l.insn.Operands) && l.insn.Operands[n].Kind == OP_MEM
}

// reg reads a register as an IL value. The program counter used as data
// reads as the instruction address, a constant, never as live state.
func (l *lifter) reg(name string) (p *il.Pure) {
	if name == "pc" {
		return il.Const(32, l.insn.Addr)
	}
	if !bound[name] {
		return nil
	}
	return il.Reg(name, 32)
}

// shifted applies an operand shift. The extended rotate shifts right by
// one and folds the live carry flag in as the incoming top bit.
func (l *lifter) shifted(val *il.Pure, kind Shift, dist uint) (p *il.Pure) {
	amount := il.Const(5, uint64(dist))
	switch kind {
	case SHIFT_ASR:
		return il.Sar(val, amount)
	case SHIFT_LSL:
		return il.Shl(val, amount)
	case SHIFT_LSR:
		return il.Shr(val, amount)
	case SHIFT_ROR:
		return il.Or(
			il.Shr(val, amount),
			il.Shl(val, il.Const(5, uint64(32-dist))))
	case SHIFT_RRX:
		return il.Or(
			il.Shr(val, il.Const(5, 1)),
			il.ITE(il.Reg("cf", 1), il.Const(32, 1<<31), il.Const(32, 0)))
	default:
		return val
	}
}

// arg resolves operand n to a value expression. When carry is non-nil
// and the operand is a rotated immediate, *carry is set to the carry
// expression the rotation produces; otherwise *carry is left nil,
// meaning the flag is unchanged.
func (l *lifter) arg(n int, carry **il.Pure) (p *il.Pure) {
	if carry != nil {
		*carry = nil
	}
	if n >= len(l.insn.Operands) {
		return nil
	}
	o := &l.insn.Operands[n]
	switch o.Kind {
	case OP_REG:
		r := l.reg(o.Reg)
		if r == nil {
			return nil
		}
		if o.Shift != SHIFT_NONE {
			r = l.shifted(r, o.Shift, o.ShiftImm)
		}
		return r
	case OP_IMM:
		if carry != nil {
			// The carry changes only when the imm12 rotation is
			// non-zero. That is structurally visible either as an
			// explicit extra immediate operand, or as a value no
			// unrotated 8-bit field could encode.
			rotated := o.Imm > 0xff
			if l.isImm(n + 1) {
				rotated = true
			}
			if rotated {
				*carry = il.Bool(o.Imm&(1<<31) != 0)
			}
		}
		return il.Const(32, uint64(o.Imm))
	case OP_MEM:
		addr := l.reg(o.Mem.Base)
		if addr == nil {
			return nil
		}
		if d := o.Mem.Disp; d > 0 {
			addr = il.Add(addr, il.Const(32, uint64(d)))
		} else if d < 0 {
			addr = il.Sub(addr, il.Const(32, uint64(-d)))
		}
		if o.Mem.Index != "" {
			idx := l.reg(o.Mem.Index)
			if idx == nil {
				return nil
			}
			idx = l.shifted(idx, o.Shift, o.ShiftImm)
			if o.Mem.Subtract {
				addr = il.Sub(addr, idx)
			} else {
				addr = il.Add(addr, idx)
			}
		}
		return addr
	}
	return nil
}
