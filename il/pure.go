package il

import (
	"fmt"
)

// PureKind is the node type of a pure expression.
type PureKind int

const (
	PURE_CONST = PureKind(0) // fixed-width constant
	PURE_REG   = PureKind(1) // register read
	PURE_LOCAL = PureKind(2) // let-bound local read
	PURE_UNOP  = PureKind(3) // unary operator
	PURE_BINOP = PureKind(4) // binary operator
	PURE_BITS  = PureKind(5) // bit extraction / zero extension
	PURE_LOAD  = PureKind(6) // memory load
	PURE_ITE   = PureKind(7) // conditional select
)

// UnOp is a unary operator type.
type UnOp int

const (
	UN_NOT = UnOp(0) // bitwise complement; logical not on 1-bit values
	UN_NEG = UnOp(1) // two's complement negate
)

// BinOp is a binary operator type.
type BinOp int

const (
	BIN_ADD = BinOp(0)
	BIN_SUB = BinOp(1)
	BIN_MUL = BinOp(2)
	BIN_AND = BinOp(3)
	BIN_OR  = BinOp(4)
	BIN_XOR = BinOp(5)
	BIN_SHL = BinOp(6)
	BIN_SHR = BinOp(7)
	BIN_SAR = BinOp(8)
	BIN_EQ  = BinOp(9)
	BIN_ULT = BinOp(10)
)

var _bin_token = map[BinOp]string{
	BIN_ADD: "+",
	BIN_SUB: "-",
	BIN_MUL: "*",
	BIN_AND: "&",
	BIN_OR:  "|",
	BIN_XOR: "^",
	BIN_SHL: "<<",
	BIN_SHR: ">>",
	BIN_SAR: ">>>",
	BIN_EQ:  "==",
	BIN_ULT: "<",
}

// Pure is an immutable expression tree node producing a fixed-width value.
// A width of 1 is treated as boolean.
type Pure struct {
	Kind  PureKind
	Bits  uint   // result width in bits
	Value uint64 // PURE_CONST
	Name  string // PURE_REG, PURE_LOCAL
	Un    UnOp   // PURE_UNOP
	Bin   BinOp  // PURE_BINOP
	Low   uint   // PURE_BITS: first source bit
	Cond  *Pure  // PURE_ITE
	X     *Pure
	Y     *Pure
}

// Const creates a fixed-width constant node.
func Const(bits uint, value uint64) *Pure {
	if bits < 64 {
		value &= (uint64(1) << bits) - 1
	}
	return &Pure{Kind: PURE_CONST, Bits: bits, Value: value}
}

// Bool creates a 1-bit constant node.
func Bool(value bool) *Pure {
	var v uint64
	if value {
		v = 1
	}
	return Const(1, v)
}

// Reg creates a register read node.
func Reg(name string, bits uint) *Pure {
	return &Pure{Kind: PURE_REG, Bits: bits, Name: name}
}

// Local creates a read of a local bound earlier in the same effect program.
func Local(name string, bits uint) *Pure {
	return &Pure{Kind: PURE_LOCAL, Bits: bits, Name: name}
}

// Not creates a complement node; on 1-bit values this is boolean negation.
func Not(x *Pure) *Pure {
	return &Pure{Kind: PURE_UNOP, Bits: x.Bits, Un: UN_NOT, X: x}
}

// Neg creates a two's complement negation node.
func Neg(x *Pure) *Pure {
	return &Pure{Kind: PURE_UNOP, Bits: x.Bits, Un: UN_NEG, X: x}
}

func binop(op BinOp, bits uint, x, y *Pure) *Pure {
	return &Pure{Kind: PURE_BINOP, Bits: bits, Bin: op, X: x, Y: y}
}

// Add creates an addition node.
func Add(x, y *Pure) *Pure { return binop(BIN_ADD, x.Bits, x, y) }

// Sub creates a subtraction node.
func Sub(x, y *Pure) *Pure { return binop(BIN_SUB, x.Bits, x, y) }

// Mul creates a multiplication node.
func Mul(x, y *Pure) *Pure { return binop(BIN_MUL, x.Bits, x, y) }

// And creates a bitwise (or 1-bit boolean) conjunction node.
func And(x, y *Pure) *Pure { return binop(BIN_AND, x.Bits, x, y) }

// Or creates a bitwise (or 1-bit boolean) disjunction node.
func Or(x, y *Pure) *Pure { return binop(BIN_OR, x.Bits, x, y) }

// Xor creates a bitwise (or 1-bit boolean) exclusive-or node.
func Xor(x, y *Pure) *Pure { return binop(BIN_XOR, x.Bits, x, y) }

// Shl creates a logical left shift node.
func Shl(x, y *Pure) *Pure { return binop(BIN_SHL, x.Bits, x, y) }

// Shr creates a logical right shift node.
func Shr(x, y *Pure) *Pure { return binop(BIN_SHR, x.Bits, x, y) }

// Sar creates an arithmetic right shift node.
func Sar(x, y *Pure) *Pure { return binop(BIN_SAR, x.Bits, x, y) }

// Equal creates a 1-bit equality node.
func Equal(x, y *Pure) *Pure { return binop(BIN_EQ, 1, x, y) }

// Below creates a 1-bit unsigned less-than node.
func Below(x, y *Pure) *Pure { return binop(BIN_ULT, 1, x, y) }

// Extract creates a bit extraction node selecting 'bits' bits of x starting
// at 'low'. Bits past the source width read as zero, so Extract(x, 0, n)
// with n larger than x.Bits is a zero extension.
func Extract(x *Pure, low, bits uint) *Pure {
	return &Pure{Kind: PURE_BITS, Bits: bits, Low: low, X: x}
}

// Msb creates a most-significant-bit extraction node.
func Msb(x *Pure) *Pure {
	return Extract(x, x.Bits-1, 1)
}

// IsZero creates a 1-bit test of x against zero.
func IsZero(x *Pure) *Pure {
	return Equal(x, Const(x.Bits, 0))
}

// Load creates a memory load node of bits/8 bytes at addr.
func Load(bits uint, addr *Pure) *Pure {
	return &Pure{Kind: PURE_LOAD, Bits: bits, X: addr}
}

// ITE creates a conditional select node; cond must be 1-bit.
func ITE(cond, x, y *Pure) *Pure {
	return &Pure{Kind: PURE_ITE, Bits: x.Bits, Cond: cond, X: x, Y: y}
}

// String returns the node as an s-expression.
func (p *Pure) String() (text string) {
	if p == nil {
		return "()"
	}
	switch p.Kind {
	case PURE_CONST:
		text = fmt.Sprintf("0x%x:%d", p.Value, p.Bits)
	case PURE_REG:
		text = p.Name
	case PURE_LOCAL:
		text = "$" + p.Name
	case PURE_UNOP:
		tok := "!"
		if p.Un == UN_NEG {
			tok = "neg"
		}
		text = fmt.Sprintf("(%s %v)", tok, p.X)
	case PURE_BINOP:
		text = fmt.Sprintf("(%s %v %v)", _bin_token[p.Bin], p.X, p.Y)
	case PURE_BITS:
		text = fmt.Sprintf("(ex %v %d %d)", p.X, p.Low, p.Bits)
	case PURE_LOAD:
		text = fmt.Sprintf("(load %d %v)", p.Bits, p.X)
	case PURE_ITE:
		text = fmt.Sprintf("(ite %v %v %v)", p.Cond, p.X, p.Y)
	}
	return
}
