// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package avr

import (
	"encoding/binary"
	"fmt"

	"github.com/ezrec/uclift/il"
)

// The XMEGA DES instruction executes exactly one cipher round per
// invocation. r0..r7 carry the data block, r8..r15 the key; both are
// updated in place so that sixteen consecutive invocations with rounds
// 0..15 perform a full encryption. The half-carry flag selects
// decryption, which walks the key schedule backwards. The rotated
// key halves travel between rounds inside the key registers, with the
// parity bits (which the key schedule discards) restored after each
// round so the register image still reads as a DES key.

// Tables from FIPS 46-3. Positions are 1-based from the most
// significant bit, as the standard writes them.

var desPC1 = [56]byte{
	57, 49, 41, 33, 25, 17, 9,
	1, 58, 50, 42, 34, 26, 18,
	10, 2, 59, 51, 43, 35, 27,
	19, 11, 3, 60, 52, 44, 36,
	63, 55, 47, 39, 31, 23, 15,
	7, 62, 54, 46, 38, 30, 22,
	14, 6, 61, 53, 45, 37, 29,
	21, 13, 5, 28, 20, 12, 4,
}

var desPC2 = [48]byte{
	14, 17, 11, 24, 1, 5,
	3, 28, 15, 6, 21, 10,
	23, 19, 12, 4, 26, 8,
	16, 7, 27, 20, 13, 2,
	41, 52, 31, 37, 47, 55,
	30, 40, 51, 45, 33, 48,
	44, 49, 39, 56, 34, 53,
	46, 42, 50, 36, 29, 32,
}

var desIP = [64]byte{
	58, 50, 42, 34, 26, 18, 10, 2,
	60, 52, 44, 36, 28, 20, 12, 4,
	62, 54, 46, 38, 30, 22, 14, 6,
	64, 56, 48, 40, 32, 24, 16, 8,
	57, 49, 41, 33, 25, 17, 9, 1,
	59, 51, 43, 35, 27, 19, 11, 3,
	61, 53, 45, 37, 29, 21, 13, 5,
	63, 55, 47, 39, 31, 23, 15, 7,
}

var desFP = [64]byte{
	40, 8, 48, 16, 56, 24, 64, 32,
	39, 7, 47, 15, 55, 23, 63, 31,
	38, 6, 46, 14, 54, 22, 62, 30,
	37, 5, 45, 13, 53, 21, 61, 29,
	36, 4, 44, 12, 52, 20, 60, 28,
	35, 3, 43, 11, 51, 19, 59, 27,
	34, 2, 42, 10, 50, 18, 58, 26,
	33, 1, 41, 9, 49, 17, 57, 25,
}

var desE = [48]byte{
	32, 1, 2, 3, 4, 5,
	4, 5, 6, 7, 8, 9,
	8, 9, 10, 11, 12, 13,
	12, 13, 14, 15, 16, 17,
	16, 17, 18, 19, 20, 21,
	20, 21, 22, 23, 24, 25,
	24, 25, 26, 27, 28, 29,
	28, 29, 30, 31, 32, 1,
}

var desP = [32]byte{
	16, 7, 20, 21, 29, 12, 28, 17,
	1, 15, 23, 26, 5, 18, 31, 10,
	2, 8, 24, 14, 32, 27, 3, 9,
	19, 13, 30, 6, 22, 11, 4, 25,
}

var desS = [8][64]byte{
	{
		14, 4, 13, 1, 2, 15, 11, 8, 3, 10, 6, 12, 5, 9, 0, 7,
		0, 15, 7, 4, 14, 2, 13, 1, 10, 6, 12, 11, 9, 5, 3, 8,
		4, 1, 14, 8, 13, 6, 2, 11, 15, 12, 9, 7, 3, 10, 5, 0,
		15, 12, 8, 2, 4, 9, 1, 7, 5, 11, 3, 14, 10, 0, 6, 13,
	},
	{
		15, 1, 8, 14, 6, 11, 3, 4, 9, 7, 2, 13, 12, 0, 5, 10,
		3, 13, 4, 7, 15, 2, 8, 14, 12, 0, 1, 10, 6, 9, 11, 5,
		0, 14, 7, 11, 10, 4, 13, 1, 5, 8, 12, 6, 9, 3, 2, 15,
		13, 8, 10, 1, 3, 15, 4, 2, 11, 6, 7, 12, 0, 5, 14, 9,
	},
	{
		10, 0, 9, 14, 6, 3, 15, 5, 1, 13, 12, 7, 11, 4, 2, 8,
		13, 7, 0, 9, 3, 4, 6, 10, 2, 8, 5, 14, 12, 11, 15, 1,
		13, 6, 4, 9, 8, 15, 3, 0, 11, 1, 2, 12, 5, 10, 14, 7,
		1, 10, 13, 0, 6, 9, 8, 7, 4, 15, 14, 3, 11, 5, 2, 12,
	},
	{
		7, 13, 14, 3, 0, 6, 9, 10, 1, 2, 8, 5, 11, 12, 4, 15,
		13, 8, 11, 5, 6, 15, 0, 3, 4, 7, 2, 12, 1, 10, 14, 9,
		10, 6, 9, 0, 12, 11, 7, 13, 15, 1, 3, 14, 5, 2, 8, 4,
		3, 15, 0, 6, 10, 1, 13, 8, 9, 4, 5, 11, 12, 7, 2, 14,
	},
	{
		2, 12, 4, 1, 7, 10, 11, 6, 8, 5, 3, 15, 13, 0, 14, 9,
		14, 11, 2, 12, 4, 7, 13, 1, 5, 0, 15, 10, 3, 9, 8, 6,
		4, 2, 1, 11, 10, 13, 7, 8, 15, 9, 12, 5, 6, 3, 0, 14,
		11, 8, 12, 7, 1, 14, 2, 13, 6, 15, 0, 9, 10, 4, 5, 3,
	},
	{
		12, 1, 10, 15, 9, 2, 6, 8, 0, 13, 3, 4, 14, 7, 5, 11,
		10, 15, 4, 2, 7, 12, 9, 5, 6, 1, 13, 14, 0, 11, 3, 8,
		9, 14, 15, 5, 2, 8, 12, 3, 7, 0, 4, 10, 1, 13, 11, 6,
		4, 3, 2, 12, 9, 5, 15, 10, 11, 14, 1, 7, 6, 0, 8, 13,
	},
	{
		4, 11, 2, 14, 15, 0, 8, 13, 3, 12, 9, 7, 5, 10, 6, 1,
		13, 0, 11, 7, 4, 9, 1, 10, 14, 3, 5, 12, 2, 15, 8, 6,
		1, 4, 11, 13, 12, 3, 7, 14, 10, 15, 6, 8, 0, 5, 9, 2,
		6, 11, 13, 8, 1, 4, 10, 7, 9, 5, 0, 15, 14, 2, 3, 12,
	},
	{
		13, 2, 8, 4, 6, 15, 11, 1, 10, 9, 3, 14, 5, 0, 12, 7,
		1, 15, 13, 8, 10, 3, 7, 4, 12, 5, 6, 11, 0, 14, 9, 2,
		7, 11, 4, 1, 9, 12, 14, 2, 0, 6, 10, 13, 15, 3, 5, 8,
		2, 1, 14, 7, 4, 10, 8, 13, 15, 12, 9, 0, 3, 5, 6, 11,
	},
}

// Per-round left-shift counts of the key schedule.
var desShifts = [16]uint{1, 1, 2, 2, 2, 2, 2, 2, 1, 2, 2, 2, 2, 2, 2, 1}

// permute gathers bits of src (srcBits wide) in table order; the first
// table entry becomes the most significant bit of the result.
func permute(src uint64, srcBits uint, table []byte) (dst uint64) {
	for _, pos := range table {
		dst = dst<<1 | src>>(srcBits-uint(pos))&1
	}
	return dst
}

// unpermute scatters the bits of src back to the positions table took
// them from, inverting permute. Unselected positions come back zero.
func unpermute(src uint64, dstBits uint, table []byte) (dst uint64) {
	for i, pos := range table {
		bit := src >> uint(len(table)-1-i) & 1
		dst |= bit << (dstBits - uint(pos))
	}
	return dst
}

// desShift rotates both 28-bit key schedule halves by the round's shift
// count, rightwards when inverse is set.
func desShift(cd uint64, round int, inverse bool) (out uint64) {
	const half = 0xfffffff
	c := uint32(cd>>28) & half
	d := uint32(cd) & half
	n := desShifts[round]
	if inverse {
		c = (c>>n | c<<(28-n)) & half
		d = (d>>n | d<<(28-n)) & half
	} else {
		c = (c<<n | c>>(28-n)) & half
		d = (d<<n | d>>(28-n)) & half
	}
	return uint64(c)<<28 | uint64(d)
}

// desFeistel is the cipher function f(R, K): expand, mix with the round
// key, substitute, permute.
func desFeistel(r uint32, sub uint64) (out uint32) {
	x := permute(uint64(r), 32, desE[:]) ^ sub
	var s uint32
	for i := range 8 {
		six := x >> (42 - 6*uint(i)) & 0x3f
		row := six>>4&2 | six&1
		col := six >> 1 & 0xf
		s = s<<4 | uint32(desS[i][row*16+col])
	}
	return uint32(permute(uint64(s), 32, desP[:]))
}

// desRound implements the des intrinsic: one cipher round over the
// register file. Pops the round number; the half-carry flag selects
// decryption.
func (a *Avr) desRound(st il.State) (err error) {
	arg, ok := st.Pop()
	if !ok {
		return ErrOpArgument("des")
	}
	if arg > 15 {
		return ErrOpRound(int(arg))
	}

	hfv, _ := st.ReadRegister("hf")
	decrypt := hfv != 0
	round := int(arg)
	if decrypt {
		round = 15 - round
	}

	var regs [16]byte
	for i := range regs {
		v, _ := st.ReadRegister(fmt.Sprintf("r%d", i))
		regs[i] = byte(v)
	}
	bufHi := binary.LittleEndian.Uint32(regs[0:])
	bufLo := binary.LittleEndian.Uint32(regs[4:])
	keyHi := binary.LittleEndian.Uint32(regs[8:])
	keyLo := binary.LittleEndian.Uint32(regs[12:])

	// key schedule step
	key := uint64(keyHi)<<32 | uint64(keyLo)
	cd := permute(key, 64, desPC1[:])
	if !decrypt {
		cd = desShift(cd, round, false)
	}
	sub := permute(cd, 56, desPC2[:])
	if decrypt {
		cd = desShift(cd, round, true)
	}

	// one Feistel round between the block permutations; consecutive
	// rounds cancel the inner FP/IP pairs, so a 16-round run equals
	// the full cipher
	blk := uint64(bufHi)<<32 | uint64(bufLo)
	lr := permute(blk, 64, desIP[:])
	l, r := uint32(lr>>32), uint32(lr)
	l, r = r, l^desFeistel(r, sub)
	if arg < 15 {
		blk = permute(uint64(l)<<32|uint64(r), 64, desFP[:])
	} else {
		// the last round leaves the halves unswapped
		blk = permute(uint64(r)<<32|uint64(l), 64, desFP[:])
	}

	// return the rotated halves to key-register form, restoring the
	// parity bits PC-1 dropped
	key = unpermute(cd, 64, desPC1[:]) | (uint64(keyHi)<<32|uint64(keyLo))&0x0101010101010101

	binary.LittleEndian.PutUint32(regs[0:], uint32(blk>>32))
	binary.LittleEndian.PutUint32(regs[4:], uint32(blk))
	binary.LittleEndian.PutUint32(regs[8:], uint32(key>>32))
	binary.LittleEndian.PutUint32(regs[12:], uint32(key))

	for i := range regs {
		st.WriteRegister(fmt.Sprintf("r%d", i), uint64(regs[i]))
	}
	return nil
}
