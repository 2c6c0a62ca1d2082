// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package arm

import (
	"github.com/ezrec/uclift/il"
	"github.com/ezrec/uclift/lift"
)

// lift builds the unconditional effect of the instruction; Lift wraps
// it in the condition guard. A nil return marks the instruction as
// unsupported and the record is turned into the trap sentinel.
func (l *lifter) lift() (eff *il.Effect) {
	switch l.insn.Name {
	case "b":
		return l.branch()
	case "mov":
		return l.mov()
	case "add", "adc":
		return l.add()
	case "ldr", "ldrb", "ldrh":
		return l.load()
	case "str", "strb", "strh":
		return l.store()
	}
	return nil
}

// jump emits a control transfer, recording the target address when it
// is statically known.
func (l *lifter) jump(target *il.Pure) (eff *il.Effect) {
	if target.Kind == il.PURE_CONST {
		l.op.Jump = target.Value
		l.op.Class = lift.CLASS_JMP
	} else {
		l.op.Class = lift.CLASS_UJMP
	}
	return il.Jump(target)
}

// set writes a register, refusing names outside the bound set.
func (l *lifter) set(name string, v *il.Pure) (eff *il.Effect) {
	if !bound[name] {
		return nil
	}
	return il.SetReg(name, v)
}

// flagsZN derives the zero and negative flags from a result value.
func flagsZN(v *il.Pure) (eff *il.Effect) {
	return il.Seq(
		il.SetReg("zf", il.IsZero(v)),
		il.SetReg("nf", il.Msb(v)))
}

func (l *lifter) branch() (eff *il.Effect) {
	dst := l.arg(0, nil)
	if dst == nil {
		return nil
	}
	return l.jump(dst)
}

// mov, movs. A move to the program counter is a jump; the flag-setting
// form of that (exception return) is not modeled.
func (l *lifter) mov() (eff *il.Effect) {
	if !l.isReg(0) || !(l.isImm(1) || l.isReg(1)) {
		return nil
	}
	var carry *il.Pure
	cp := &carry
	if !l.insn.UpdateFlags {
		cp = nil
	}
	val := l.arg(1, cp)
	if val == nil {
		return nil
	}
	if l.isImm(1) {
		l.op.SetValue(uint64(l.insn.Operands[1].Imm))
	}
	l.op.Class = lift.CLASS_MOV
	if l.insn.Operands[0].Reg == "pc" {
		if l.insn.UpdateFlags {
			return nil
		}
		return l.jump(val)
	}
	eff = l.set(l.insn.Operands[0].Reg, val)
	if eff == nil {
		return nil
	}
	if !l.insn.UpdateFlags {
		return eff
	}
	zn := flagsZN(val)
	if carry != nil {
		return il.Seq(eff, il.SetReg("cf", carry), zn)
	}
	return il.Seq(eff, zn)
}

// add, adds, adc, adcs. The carry flag comes from the 33-bit sum, the
// overflow flag from operand/result sign agreement.
func (l *lifter) add() (eff *il.Effect) {
	if !l.isReg(0) {
		return nil
	}
	an, bn := 0, 1
	if len(l.insn.Operands) > 2 {
		an, bn = 1, 2
	}
	a := l.arg(an, nil)
	b := l.arg(bn, nil)
	if a == nil || b == nil {
		return nil
	}
	res := il.Add(a, b)
	withCarry := l.insn.Name == "adc"
	if withCarry {
		res = il.Add(res, il.ITE(il.Reg("cf", 1), il.Const(32, 1), il.Const(32, 0)))
	}
	l.op.Class = lift.CLASS_ADD
	dst := l.insn.Operands[0].Reg
	if dst == "pc" {
		if l.insn.UpdateFlags {
			return nil
		}
		return l.jump(res)
	}
	set := l.set(dst, res)
	if set == nil {
		return nil
	}
	if !l.insn.UpdateFlags {
		return set
	}

	la := il.Local("a", 32)
	lb := il.Local("b", 32)
	wide := il.Add(il.Extract(la, 0, 33), il.Extract(lb, 0, 33))
	if withCarry {
		wide = il.Add(wide, il.ITE(il.Reg("cf", 1), il.Const(33, 1), il.Const(33, 0)))
	}
	rd := il.Reg(dst, 32)
	return il.Seq(
		il.SetLocal("a", a),
		il.SetLocal("b", b),
		set,
		il.SetReg("cf", il.Msb(wide)),
		il.SetReg("vf", il.And(
			il.Not(il.Xor(il.Msb(la), il.Msb(lb))),
			il.Xor(il.Msb(la), il.Msb(rd)))),
		flagsZN(rd))
}

func (l *lifter) load() (eff *il.Effect) {
	if !l.isReg(0) || !l.isMem(1) {
		return nil
	}
	addr := l.arg(1, nil)
	if addr == nil {
		return nil
	}
	var data *il.Pure
	switch l.insn.Name {
	case "ldrb":
		data = il.Extract(il.Load(8, addr), 0, 32)
	case "ldrh":
		data = il.Extract(il.Load(16, addr), 0, 32)
	default:
		data = il.Load(32, addr)
	}
	l.op.Class = lift.CLASS_LOAD
	if l.insn.Operands[0].Reg == "pc" {
		l.op.Class = lift.CLASS_UJMP
		return il.Jump(data)
	}
	return l.set(l.insn.Operands[0].Reg, data)
}

func (l *lifter) store() (eff *il.Effect) {
	if !l.isReg(0) || !l.isMem(1) {
		return nil
	}
	addr := l.arg(1, nil)
	if addr == nil {
		return nil
	}
	val := l.arg(0, nil)
	if val == nil {
		return nil
	}
	l.op.Class = lift.CLASS_STORE
	switch l.insn.Name {
	case "strb":
		return il.Store(addr, 8, il.Extract(val, 0, 8))
	case "strh":
		return il.Store(addr, 16, il.Extract(val, 0, 16))
	default:
		return il.Store(addr, 32, val)
	}
}
