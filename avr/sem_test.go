package avr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSem_AddFlags(t *testing.T) {
	assert := assert.New(t)

	for _, test := range []struct {
		name               string
		d, r               uint64
		sum                uint64
		cf, zf, nf, vf, hf uint64
	}{
		{"plain", 5, 2, 7, 0, 0, 0, 0, 0},
		{"carry", 200, 100, 44, 1, 0, 0, 0, 0},
		{"zero", 0, 0, 0, 0, 1, 0, 0, 0},
		{"wrap to zero", 0x80, 0x80, 0, 1, 1, 0, 1, 0},
		{"signed overflow", 0x7f, 0x01, 0x80, 0, 0, 1, 1, 1},
		{"half carry", 0x0f, 0x01, 0x10, 0, 0, 0, 0, 1},
	} {
		m := newMachine(t, "ATmega8")
		m.set("r0", test.d)
		m.set("r1", test.r)

		m.step(le(0x0c01), 0) // add r0, r1

		assert.Equal(test.sum, m.get("r0"), test.name)
		assert.Equal(test.cf, m.get("cf"), test.name)
		assert.Equal(test.zf, m.get("zf"), test.name)
		assert.Equal(test.nf, m.get("nf"), test.name)
		assert.Equal(test.vf, m.get("vf"), test.name)
		assert.Equal(test.hf, m.get("hf"), test.name)
	}
}

func TestSem_AdcUsesCarry(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, "ATmega8")
	m.set("r16", 1)
	m.set("r17", 2)
	m.set("cf", 1)

	m.step(le(0x1f01), 0) // adc r16, r17

	assert.Equal(uint64(4), m.get("r16"))
	assert.Equal(uint64(0), m.get("cf"))
}

func TestSem_SubiBorrow(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, "ATmega8")
	m.set("r16", 3)

	m.step(le(0x5005), 0) // subi r16, 5

	assert.Equal(uint64(0xfe), m.get("r16"))
	assert.Equal(uint64(1), m.get("cf"))
	assert.Equal(uint64(1), m.get("nf"))
	assert.Equal(uint64(0), m.get("zf"))
}

func TestSem_CompareSetsFlagsOnly(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, "ATmega8")
	m.set("r1", 9)
	m.set("r2", 9)

	m.step(le(0x1412), 0) // cp r1, r2

	assert.Equal(uint64(9), m.get("r1"))
	assert.Equal(uint64(1), m.get("zf"))
	assert.Equal(uint64(0), m.get("cf"))
}

func TestSem_LogicFamily(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, "ATmega8")
	m.set("r16", 0xf0)

	m.step(le(0x7f0f), 0) // andi r16, 0xff

	assert.Equal(uint64(0xf0), m.get("r16"))
	assert.Equal(uint64(1), m.get("nf"))
	assert.Equal(uint64(0), m.get("vf"))
	assert.Equal(uint64(1), m.get("sf"))

	m.set("r0", 0x0f)
	m.set("r1", 0x0f)
	m.step(le(0x2401), 0) // eor r0, r1
	assert.Equal(uint64(0), m.get("r0"))
	assert.Equal(uint64(1), m.get("zf"))
}

func TestSem_LdiMov(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, "ATmega8")

	m.step(le(0xe5a5), 0) // ldi r26, 0x55
	assert.Equal(uint64(0x55), m.get("r26"))

	m.step(le(0x2e1a), 2) // mov r1, r26
	assert.Equal(uint64(0x55), m.get("r1"))
}

func TestSem_SwapRor(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, "ATmega8")
	m.set("r16", 0xa5)

	m.step(le(0x9502), 0) // swap r16
	assert.Equal(uint64(0x5a), m.get("r16"))

	m.set("r16", 0x01)
	m.set("cf", 1)
	m.step(le(0x9507), 0) // ror r16
	assert.Equal(uint64(0x80), m.get("r16"))
	assert.Equal(uint64(1), m.get("cf"))
}

func TestSem_PushPop(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, "ATmega8")
	m.set("_ram", 0x10000)
	m.set("sp", 0x45f)
	m.set("r0", 0xab)

	m.step(le(0x920f), 0) // push r0
	assert.Equal(uint64(0x45e), m.get("sp"))

	m.step(le(0x901f), 2) // pop r1
	assert.Equal(uint64(0x45f), m.get("sp"))
	assert.Equal(uint64(0xab), m.get("r1"))
}

func TestSem_CallRet(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, "ATmega8")
	m.set("_ram", 0x10000)
	m.set("sp", 0x45f)
	m.set("pc", 0x104) // return address: the word after the call

	m.step(le(0x940e, 0x0080), 0x100) // call 0x100
	assert.Equal(uint64(0x100), m.get("pc"))
	assert.Equal(uint64(0x45d), m.get("sp"))

	m.step(le(0x9508), 0x100) // ret
	assert.Equal(uint64(0x104), m.get("pc"))
	assert.Equal(uint64(0x45f), m.get("sp"))
}

func TestSem_BranchTaken(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, "ATmega8")

	// breq .+8 with zf set jumps
	m.set("zf", 1)
	m.set("pc", 0x102)
	m.step(le(0xf021), 0x100)
	assert.Equal(uint64(0x10a), m.get("pc"))

	// with zf clear the program counter is left alone
	m.set("zf", 0)
	m.set("pc", 0x102)
	m.step(le(0xf021), 0x100)
	assert.Equal(uint64(0x102), m.get("pc"))
}

func TestSem_CpseSkip(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, "ATmega8")
	m.set("r16", 7)
	m.set("r17", 7)
	m.set("pc", 0x102)

	// equal registers skip the following 4-byte call
	m.step(le(0x1301, 0x940e, 0x0080), 0x100)
	assert.Equal(uint64(0x106), m.get("pc"))

	// unequal registers fall through
	m.set("r17", 8)
	m.set("pc", 0x102)
	m.step(le(0x1301, 0x940e, 0x0080), 0x100)
	assert.Equal(uint64(0x102), m.get("pc"))
}

func TestSem_LoadStore(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, "ATmega8")
	m.set("_ram", 0x10000)
	m.set("z", 0x200)
	m.set("r0", 0x5a)

	m.step(le(0x8200), 0) // st z, r0
	data := make([]byte, 1)
	m.ReadMemory(0x10200, data)
	assert.Equal(byte(0x5a), data[0])

	m.step(le(0x8010), 2) // ld r1, z
	assert.Equal(uint64(0x5a), m.get("r1"))

	// post-increment form advances the pointer
	m.step(le(0x9011), 4) // ld r1, z+
	assert.Equal(uint64(0x201), m.get("z"))
}

func TestSem_InOut(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, "ATmega8")
	m.set("r0", 0x3c)

	m.step(le(0xbe0f), 0) // out 0x3f, r0 (SREG alias)
	assert.Equal(uint64(0x3c), m.get("sreg"))

	m.set("_io", 0x20000)
	m.WriteMemory(0x20035, []byte{0x77})
	m.step(le(0xb605), 2) // in r0, 0x35
	assert.Equal(uint64(0x77), m.get("r0"))
}

func TestSem_SpmDispatch(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, "ATmega8")

	// page erase: SPMCSR mode 0x03, 32-byte pages on the ATmega8
	m.set("spmcsr", 0x03)
	m.set("z", 0x123)
	m.WriteMemory(0x120, []byte{1, 2, 3})

	m.step(le(0x95e8), 0) // spm

	data := make([]byte, 32)
	m.ReadMemory(0x120, data)
	for i, b := range data {
		assert.Equal(byte(0xff), b, "byte %d", i)
	}
	assert.Equal(uint64(0), m.get("spmcsr"))

	// buffer fill: mode 0x01 stores r1:r0 at the page slot
	m.set("spmcsr", 0x01)
	m.set("z", 0x06)
	m.set("r0", 0xaa)
	m.set("r1", 0xbb)

	m.step(le(0x95e8), 0)

	pair := make([]byte, 2)
	m.ReadMemory(0x06, pair)
	assert.Equal([]byte{0xaa, 0xbb}, pair)

	// page write: mode 0x05 copies the temporary page into flash
	m.set("_page", 0x30000)
	m.WriteMemory(0x30000, []byte{0xde, 0xad})
	m.set("spmcsr", 0x05)
	m.set("z", 0x140)

	m.step(le(0x95e8), 0)

	out := make([]byte, 2)
	m.ReadMemory(0x140, out)
	assert.Equal([]byte{0xde, 0xad}, out)
}

func TestSem_InvalidTraps(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, "ATmega8")
	m.step(le(0x0008), 0)
	assert.True(m.trapped)
}

func TestSem_SleepBreaks(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, "ATmega8")
	m.step(le(0x9588), 0)
	assert.True(m.broke)
}
