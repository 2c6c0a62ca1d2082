// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package avr

import (
	"crypto/des"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The instruction keeps each 32-bit half of the block and key in
// little-endian register order, so a standard big-endian DES byte
// string maps to the file with each four-register group reversed.
func desLoad(m *machine, base int, b []byte) {
	for i := range 4 {
		m.set(fmt.Sprintf("r%d", base+i), uint64(b[3-i]))
		m.set(fmt.Sprintf("r%d", base+4+i), uint64(b[7-i]))
	}
}

func desStore(m *machine, base int) (b [8]byte) {
	for i := range 4 {
		b[3-i] = byte(m.get(fmt.Sprintf("r%d", base+i)))
		b[7-i] = byte(m.get(fmt.Sprintf("r%d", base+4+i)))
	}
	return b
}

func desWord(round int) (word uint16) {
	return 0x940b | uint16(round)<<4
}

func TestDes_EncryptMatchesCipher(t *testing.T) {
	assert := assert.New(t)

	plain := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}
	key := []byte{0x13, 0x34, 0x57, 0x79, 0x9b, 0xbc, 0xdf, 0xf1}

	m := newMachine(t, "ATxmega128a4u")
	desLoad(m, 0, plain)
	desLoad(m, 8, key)

	for round := range 16 {
		m.step(le(desWord(round)), 0)
	}

	cipher, err := des.NewCipher(key)
	assert.NoError(err)
	var want [8]byte
	cipher.Encrypt(want[:], plain)

	assert.Equal(want, desStore(m, 0))

	// sixteen key schedule steps rotate the halves all the way around,
	// leaving the key registers as they started
	assert.Equal([8]byte(key), desStore(m, 8))
}

func TestDes_DecryptRoundTrip(t *testing.T) {
	assert := assert.New(t)

	plain := []byte{0x8f, 0x3c, 0x00, 0x42, 0xff, 0x10, 0x55, 0xa9}
	key := []byte{0x0e, 0x32, 0x92, 0x32, 0xea, 0x6d, 0x0d, 0x73}

	m := newMachine(t, "ATxmega128a4u")
	desLoad(m, 0, plain)
	desLoad(m, 8, key)

	for round := range 16 {
		m.step(le(desWord(round)), 0)
	}
	assert.NotEqual([8]byte(plain), desStore(m, 0))

	// the half-carry flag turns the same round sequence into decryption
	m.set("hf", 1)
	for round := range 16 {
		m.step(le(desWord(round)), 0)
	}

	assert.Equal([8]byte(plain), desStore(m, 0))
	assert.Equal([8]byte(key), desStore(m, 8))
}

func TestDes_RoundArgument(t *testing.T) {
	assert := assert.New(t)

	m := newMachine(t, "ATxmega128a4u")

	err := m.avr.desRound(m)
	assert.Equal(ErrOpArgument("des"), err)

	m.pushNum(16)
	err = m.avr.desRound(m)
	assert.Equal(ErrOpRound(16), err)
}
