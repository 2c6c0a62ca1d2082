// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package arm

import (
	"github.com/ezrec/uclift/il"
)

func flag(name string) (p *il.Pure) { return il.Reg(name, 1) }

// Condition returns the boolean expression an ARM condition code tests,
// built from the live flag state. Always is returned as nil so callers
// can skip the conditional wrap entirely.
func Condition(c Cond) (p *il.Pure) {
	switch c {
	case COND_EQ:
		return flag("zf")
	case COND_NE:
		return il.Not(flag("zf"))
	case COND_HS:
		return flag("cf")
	case COND_LO:
		return il.Not(flag("cf"))
	case COND_MI:
		return flag("nf")
	case COND_PL:
		return il.Not(flag("nf"))
	case COND_VS:
		return flag("vf")
	case COND_VC:
		return il.Not(flag("vf"))
	case COND_HI:
		return il.And(flag("cf"), il.Not(flag("zf")))
	case COND_LS:
		return il.Or(il.Not(flag("cf")), flag("zf"))
	case COND_GE:
		return il.Not(il.Xor(flag("nf"), flag("vf")))
	case COND_LT:
		return il.Xor(flag("nf"), flag("vf"))
	case COND_GT:
		return il.And(il.Not(flag("zf")), il.Not(il.Xor(flag("nf"), flag("vf"))))
	case COND_LE:
		return il.Or(flag("zf"), il.Xor(flag("nf"), flag("vf")))
	default:
		return nil
	}
}
