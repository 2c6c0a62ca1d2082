package avr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/uclift/lift"
)

// le encodes 16-bit instruction words in code byte order.
func le(words ...uint16) (code []byte) {
	for _, w := range words {
		code = append(code, byte(w), byte(w>>8))
	}
	return code
}

func TestDecode_Table(t *testing.T) {
	assert := assert.New(t)

	a := New()

	for _, test := range []struct {
		name     string
		words    []uint16
		mnemonic string
		class    lift.Class
		size     int
	}{
		{"nop", []uint16{0x0000}, "nop", lift.CLASS_NOP, 2},
		{"add", []uint16{0x0c01}, "add r0, r1", lift.CLASS_ADD, 2},
		{"adc", []uint16{0x1f01}, "adc r16, r17", lift.CLASS_ADD, 2},
		{"sub", []uint16{0x1812}, "sub r1, r2", lift.CLASS_SUB, 2},
		{"ldi", []uint16{0xe5a5}, "ldi r26, 0x55", lift.CLASS_LOAD, 2},
		{"mov", []uint16{0x2c12}, "mov r1, r2", lift.CLASS_MOV, 2},
		{"movw", []uint16{0x01fe}, "movw r30, r28", lift.CLASS_MOV, 2},
		{"ret", []uint16{0x9508}, "ret", lift.CLASS_RET, 2},
		{"reti", []uint16{0x9518}, "reti", lift.CLASS_RET, 2},
		{"ijmp", []uint16{0x9409}, "ijmp", lift.CLASS_UJMP, 2},
		{"eijmp", []uint16{0x9419}, "eijmp", lift.CLASS_UJMP, 2},
		{"icall", []uint16{0x9509}, "icall", lift.CLASS_UCALL, 2},
		{"eicall", []uint16{0x9519}, "eicall", lift.CLASS_UCALL, 2},
		{"break", []uint16{0x9698}, "break", lift.CLASS_TRAP, 2},
		{"sleep", []uint16{0x9588}, "sleep", lift.CLASS_NOP, 2},
		{"spm", []uint16{0x95e8}, "spm z+", lift.CLASS_TRAP, 2},
		{"des", []uint16{0x94fb}, "des 15", lift.CLASS_CRYPTO, 2},
		{"jmp", []uint16{0x940c, 0x0123}, "jmp 0x246", lift.CLASS_JMP, 4},
		{"call", []uint16{0x940e, 0x0080}, "call 0x100", lift.CLASS_CALL, 4},
		{"lds", []uint16{0x9100, 0x0123}, "lds r16, 0x123", lift.CLASS_LOAD, 4},
		{"sts", []uint16{0x9300, 0x0123}, "sts 0x123, r16", lift.CLASS_STORE, 4},
		{"push", []uint16{0x920f}, "push r0", lift.CLASS_PUSH, 2},
		{"pop", []uint16{0x900f}, "pop r0", lift.CLASS_POP, 2},
		{"in", []uint16{0xb60f}, "in r0, 0x3f", lift.CLASS_IO, 2},
		{"out", []uint16{0xbe0f}, "out 0x3f, r0", lift.CLASS_IO, 2},
		{"swap", []uint16{0x9502}, "swap r16", lift.CLASS_SAR, 2},
		{"lpm r0", []uint16{0x95c8}, "lpm", lift.CLASS_LOAD, 2},
		{"lpm rd z+", []uint16{0x9105}, "lpm r16, z+", lift.CLASS_LOAD, 2},
		{"elpm", []uint16{0x9106}, "elpm r16, z", lift.CLASS_LOAD, 2},
		{"ld x+", []uint16{0x900d}, "ld r0, x+", lift.CLASS_LOAD, 2},
		{"st -x", []uint16{0x920e}, "st -x, r0", lift.CLASS_STORE, 2},
		{"ldd y+5", []uint16{0x8008 | 5}, "ldd r0, y+5", lift.CLASS_LOAD, 2},
		{"std z+1", []uint16{0x8201}, "std z+1, r0", lift.CLASS_STORE, 2},
	} {
		op := a.Decode(le(test.words...), 0, "ATmega8")
		assert.Equal(test.mnemonic, op.Mnemonic, test.name)
		assert.Equal(test.class, op.Class, test.name)
		assert.Equal(test.size, op.Size, test.name)
		assert.False(op.Trap, test.name)
		assert.Greater(op.Cycles, 0, test.name)
	}
}

func TestDecode_Invalid(t *testing.T) {
	assert := assert.New(t)

	a := New()

	// 0x0008 matches no encoding
	op := a.Decode(le(0x0008), 0x100, "ATmega8")
	assert.Equal(lift.CLASS_UNKNOWN, op.Class)
	assert.Equal("invalid", op.Mnemonic)
	assert.Equal(MIN_OP_SIZE, op.Size)
	assert.Equal(1, op.Cycles)
	assert.True(op.Trap)
	assert.Equal("1,TRAP", op.Program.Text())

	// short input also yields the inert record
	op = a.Decode([]byte{0x0c}, 0x100, "ATmega8")
	assert.True(op.Trap)
	assert.Equal(MIN_OP_SIZE, op.Size)
}

func TestDecode_RelativeBranch(t *testing.T) {
	assert := assert.New(t)

	a := New()

	// breq .+8 @ 0x100: brbs 1, k=4 words
	op := a.Decode(le(0xf021), 0x100, "ATmega8")
	assert.Equal(uint64(0x10a), op.Jump)
	assert.Equal(uint64(0x102), op.Fail)

	// brcc .-2 @ 0x100: brbc 0, k=-1
	op = a.Decode(le(0xf7f8), 0x100, "ATmega8")
	assert.Equal(uint64(0x100), op.Jump)

	// rjmp .-2 is a tight loop
	op = a.Decode(le(0xcfff), 0x200, "ATmega8")
	assert.Equal(uint64(0x200), op.Jump)
	assert.Equal(lift.NoAddr, op.Fail)

	// rcall .+4
	op = a.Decode(le(0xd002), 0x200, "ATmega8")
	assert.Equal(uint64(0x206), op.Jump)
	assert.Equal(uint64(0x202), op.Fail)
}

func TestDecode_SkipLookahead(t *testing.T) {
	assert := assert.New(t)

	a := New()

	// cpse over a two-word call must skip all four bytes
	code := le(0x1301, 0x940e, 0x0080)
	op := a.Decode(code, 0x100, "ATmega8")
	assert.Equal("cpse r16, r17", op.Mnemonic)
	assert.Equal(uint64(0x106), op.Jump)
	assert.Equal(uint64(0x102), op.Fail)

	// over a one-word instruction only two bytes are skipped
	code = le(0x1301, 0x0000)
	op = a.Decode(code, 0x100, "ATmega8")
	assert.Equal(uint64(0x104), op.Jump)

	// with nothing decodable after it, assume the minimum
	op = a.Decode(le(0x1301), 0x100, "ATmega8")
	assert.Equal(uint64(0x104), op.Jump)

	// sbrs shares the lookahead
	code = le(0xfe07, 0x940c, 0x0000)
	op = a.Decode(code, 0x200, "ATmega8")
	assert.Equal("sbrs r0, 7", op.Mnemonic)
	assert.Equal(uint64(0x206), op.Jump)
}

func TestDecode_IoPortAlias(t *testing.T) {
	assert := assert.New(t)

	a := New()

	// in r0, SREG resolves the port through the model alias table
	op := a.Decode(le(0xb60f), 0, "ATmega8")
	assert.Equal(0x3f, op.Port)
	assert.Equal("sreg,r0,=", op.Program.Text())

	// unaliased ports address the io segment
	op = a.Decode(le(0xb605), 0, "ATmega8")
	assert.Equal(0x35, op.Port)
	assert.Equal("_io,53,+,[1],r0,=", op.Program.Text())

	// sbic reads through the io segment as well
	op = a.Decode(le(0x99fb), 0x10, "ATmega8")
	assert.Equal("sbic 0x1f, 3", op.Mnemonic)
	assert.Contains(op.Program.Text(), "_io,31")
	assert.Equal(uint64(0x14), op.Jump)
}

func TestDecode_CallCycles(t *testing.T) {
	assert := assert.New(t)

	a := New()
	code := le(0x940e, 0x0080)

	for _, test := range []struct {
		model  string
		cycles int
	}{
		{"ATmega8", 3},      // 13-bit program counter
		{"ATmega2560", 4},   // 17-bit program counter
		{"ATxmega128a4u", 3}, // 17-bit, minus the xmega fast call
	} {
		op := a.Decode(code, 0, test.model)
		assert.Equal(test.cycles, op.Cycles, test.model)
	}
}

func TestDecode_UnknownModelFallback(t *testing.T) {
	assert := assert.New(t)

	a := New()

	// unknown variants decode with the default (last) model
	op := a.Decode(le(0x940e, 0x0080), 0, "AT90S2313")
	assert.Equal(3, op.Cycles)
}

func TestDecode_BigEndian(t *testing.T) {
	assert := assert.New(t)

	a := New()
	a.BigEndian = true

	op := a.Decode([]byte{0xe5, 0xa5}, 0, "ATmega8")
	assert.Equal("ldi r26, 0x55", op.Mnemonic)
}

func TestMask(t *testing.T) {
	assert := assert.New(t)

	a := New()

	// add r0, r1 ; rjmp .-4 : operand bits of the branch are selection
	// relevant, the add's are not
	code := le(0x0c01, 0xcffe)
	mask := a.Mask(code, 0x100, "ATmega8")
	assert.Equal([]byte{0xff, 0xff, 0x00, 0xf0}, mask)

	// the trailing words of 4-byte encodings are pure operand
	code = le(0x940c, 0x0123)
	mask = a.Mask(code, 0x100, "ATmega8")
	assert.Equal([]byte{0x0e, 0xfe, 0x00, 0x00}, mask)
}

func TestDecode_TableRoundTrip(t *testing.T) {
	assert := assert.New(t)

	a := New()
	model := a.Models.Lookup("ATmega8")

	// every descriptor's own selector bits must decode back to that same
	// descriptor; anything else means the first-match ordering regressed
	for n := range opcodes {
		d := &opcodes[n]
		_, got := a.decode(le(d.selector, 0x0000), 0x100, model, skipBudget)
		if assert.NotNil(got, "%s %#04x", d.name, d.selector) {
			assert.Same(d, got, "%s %#04x", d.name, d.selector)
		}
	}
}

func TestDecode_OverlapPrecedence(t *testing.T) {
	assert := assert.New(t)

	a := New()
	model := a.Models.Lookup("ATmega8")

	// 0x9698 sits inside adiw's mask range; the exact break entry is
	// listed first and wins
	op, d := a.decode(le(0x9698), 0x100, model, skipBudget)
	assert.Equal("break", d.name)
	assert.Equal(lift.CLASS_TRAP, op.Class)

	// a neighbouring word of the same range still decodes as adiw
	op, d = a.decode(le(0x9601), 0x100, model, skipBudget)
	assert.Equal("adiw", d.name)
	assert.Equal(lift.CLASS_ADD, op.Class)
}

func TestDecode_VariantChurn(t *testing.T) {
	assert := assert.New(t)

	a := New()
	code := le(0x940e, 0x0080)

	variants := []struct {
		model  string
		cycles int
	}{
		{"ATmega8", 3},
		{"ATmega2560", 4},
		{"ATxmega128a4u", 3},
	}

	// alternating variants churn the registry's lookup cache; repeated
	// decodes of the same bytes must not drift
	for round := 0; round < 3; round++ {
		for _, v := range variants {
			op := a.Decode(code, 0x100, v.model)
			assert.Equal("call 0x100", op.Mnemonic, v.model)
			assert.Equal(v.cycles, op.Cycles, v.model)
			assert.Equal(uint64(0x100), op.Jump, v.model)
		}
	}
}
