// Package lift defines the contract between architecture lifting modules
// and the analysis framework: the decoded-instruction record every lifter
// produces, the instruction class taxonomy, and the interface a
// byte-stream decoder implements.
package lift

import (
	"iter"

	"github.com/ezrec/uclift/il"
	"github.com/ezrec/uclift/reg"
)

// Class is the coarse instruction classification of a decoded record.
type Class int

//go:generate go tool stringer -linecomment -type=Class
const (
	CLASS_UNKNOWN = Class(0)  // unknown
	CLASS_NOP     = Class(1)  // nop
	CLASS_MOV     = Class(2)  // mov
	CLASS_ADD     = Class(3)  // add
	CLASS_SUB     = Class(4)  // sub
	CLASS_MUL     = Class(5)  // mul
	CLASS_AND     = Class(6)  // and
	CLASS_OR      = Class(7)  // or
	CLASS_XOR     = Class(8)  // xor
	CLASS_NOT     = Class(9)  // not
	CLASS_SHR     = Class(10) // shr
	CLASS_SAR     = Class(11) // sar
	CLASS_CMP     = Class(12) // cmp
	CLASS_JMP     = Class(13) // jmp
	CLASS_CJMP    = Class(14) // cjmp
	CLASS_UJMP    = Class(15) // ujmp
	CLASS_CALL    = Class(16) // call
	CLASS_UCALL   = Class(17) // ucall
	CLASS_RET     = Class(18) // ret
	CLASS_PUSH    = Class(19) // push
	CLASS_POP     = Class(20) // pop
	CLASS_LOAD    = Class(21) // load
	CLASS_STORE   = Class(22) // store
	CLASS_IO      = Class(23) // io
	CLASS_TRAP    = Class(24) // trap
	CLASS_CRYPTO  = Class(25) // crypto
)

// NoAddr marks an unset address field.
const NoAddr = ^uint64(0)

// Op is one decoded instruction with its lifted semantics. Built fresh per
// decode call; the caller owns it.
type Op struct {
	Addr     uint64
	Size     int // bytes consumed; the architecture minimum for Invalid
	Cycles   int
	Class    Class
	Jump     uint64 // branch target, NoAddr when unknown or absent
	Fail     uint64 // fallthrough target, NoAddr when absent
	Ptr      uint64 // referenced data address, NoAddr when absent
	Value    uint64 // immediate operand value
	HasValue bool
	Port     int // I/O port, -1 when absent
	Trap     bool
	Mnemonic string
	Program  il.Program
}

// NewOp creates an empty record with all optional fields unset.
func NewOp(addr uint64) *Op {
	return &Op{
		Addr: addr,
		Jump: NoAddr,
		Fail: NoAddr,
		Ptr:  NoAddr,
		Port: -1,
	}
}

// SetValue records the optional immediate operand.
func (op *Op) SetValue(value uint64) {
	op.Value = value
	op.HasValue = true
}

// Arch is a byte-stream architecture lifting module.
type Arch interface {
	// Name returns the architecture identifier.
	Name() string
	// Align returns the instruction alignment in bytes.
	Align() int
	// MinOpSize returns the shortest encodable instruction in bytes.
	MinOpSize() int
	// MaxOpSize returns the longest encodable instruction in bytes.
	MaxOpSize() int
	// Decode lifts the instruction at the start of buf, loaded at addr,
	// for the named CPU variant. It never fails: unmatched or malformed
	// input yields an inert trapping record of minimum size.
	Decode(buf []byte, addr uint64, variant string) *Op
	// Profile returns the static register-profile description.
	Profile() iter.Seq[reg.Def]
}
