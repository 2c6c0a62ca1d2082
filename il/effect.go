package il

import (
	"fmt"
	"strings"
)

// Program is the lifted semantics of one instruction, in either the
// expression-tree form (Effect) or the flat stack-program form (Script).
type Program interface {
	Text() string
}

// EffectKind is the node type of an effect.
type EffectKind int

const (
	EFFECT_NOP       = EffectKind(0) // no operation
	EFFECT_SET_REG   = EffectKind(1) // register write
	EFFECT_SET_LOCAL = EffectKind(2) // local let binding
	EFFECT_STORE     = EffectKind(3) // memory store
	EFFECT_SEQ       = EffectKind(4) // ordered sequence
	EFFECT_BRANCH    = EffectKind(5) // conditional effect selection
	EFFECT_JUMP      = EffectKind(6) // control transfer
	EFFECT_TRAP      = EffectKind(7) // halt the interpreter
	EFFECT_INVOKE    = EffectKind(8) // named custom intrinsic call
)

// Effect is an ordered mutation or control transfer. Sequences execute
// strictly left to right; a branch evaluates its condition once and runs
// exactly one of its two sub-effects.
type Effect struct {
	Kind EffectKind
	Name string // SET_REG/SET_LOCAL target, INVOKE intrinsic name
	Bits uint   // STORE width
	X    *Pure  // value written, or jump target
	Addr *Pure  // STORE address
	Cond *Pure  // BRANCH condition
	Then *Effect
	Else *Effect
	List []*Effect // SEQ body
}

// Nop creates an effect that does nothing.
func Nop() *Effect {
	return &Effect{Kind: EFFECT_NOP}
}

// SetReg creates a register write effect.
func SetReg(name string, x *Pure) *Effect {
	return &Effect{Kind: EFFECT_SET_REG, Name: name, X: x}
}

// SetLocal creates a local binding usable by later Local reads in the same
// program.
func SetLocal(name string, x *Pure) *Effect {
	return &Effect{Kind: EFFECT_SET_LOCAL, Name: name, X: x}
}

// Store creates a memory store effect of bits/8 bytes.
func Store(addr *Pure, bits uint, x *Pure) *Effect {
	return &Effect{Kind: EFFECT_STORE, Bits: bits, Addr: addr, X: x}
}

// Seq creates an ordered sequence of effects.
func Seq(effects ...*Effect) *Effect {
	return &Effect{Kind: EFFECT_SEQ, List: effects}
}

// Branch creates a conditional effect. A nil otherwise argument yields a
// branch that only acts when cond is true.
func Branch(cond *Pure, then, otherwise *Effect) *Effect {
	if otherwise == nil {
		otherwise = Nop()
	}
	return &Effect{Kind: EFFECT_BRANCH, Cond: cond, Then: then, Else: otherwise}
}

// Jump creates an unconditional control transfer to the target expression.
func Jump(target *Pure) *Effect {
	return &Effect{Kind: EFFECT_JUMP, X: target}
}

// Trap creates an effect that halts the interpreter.
func Trap() *Effect {
	return &Effect{Kind: EFFECT_TRAP}
}

// Invoke creates a call-by-name to a registered custom intrinsic.
func Invoke(name string) *Effect {
	return &Effect{Kind: EFFECT_INVOKE, Name: name}
}

// Text returns the effect program as an s-expression.
func (e *Effect) Text() (text string) {
	if e == nil {
		return "()"
	}
	switch e.Kind {
	case EFFECT_NOP:
		text = "(nop)"
	case EFFECT_SET_REG:
		text = fmt.Sprintf("(set %s %v)", e.Name, e.X)
	case EFFECT_SET_LOCAL:
		text = fmt.Sprintf("(let %s %v)", e.Name, e.X)
	case EFFECT_STORE:
		text = fmt.Sprintf("(store %d %v %v)", e.Bits, e.Addr, e.X)
	case EFFECT_SEQ:
		parts := make([]string, len(e.List))
		for n, sub := range e.List {
			parts[n] = sub.Text()
		}
		text = "(seq " + strings.Join(parts, " ") + ")"
	case EFFECT_BRANCH:
		text = fmt.Sprintf("(branch %v %s %s)", e.Cond, e.Then.Text(), e.Else.Text())
	case EFFECT_JUMP:
		text = fmt.Sprintf("(jmp %v)", e.X)
	case EFFECT_TRAP:
		text = "(trap)"
	case EFFECT_INVOKE:
		text = fmt.Sprintf("(invoke %q)", e.Name)
	}
	return
}
