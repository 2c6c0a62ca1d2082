// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package avr

import (
	"log"

	"github.com/ezrec/uclift/il"
	"github.com/ezrec/uclift/lift"
	"github.com/ezrec/uclift/mcu"
)

const (
	MIN_OP_SIZE = 2 // all encodings are a multiple of one 16-bit word
	MAX_OP_SIZE = 4
)

// Avr decodes AVR machine code into lifted operation records.
// The zero value is not usable; call New.
type Avr struct {
	Verbose   bool
	BigEndian bool // code words stored big-endian (rare; AVR is LE)

	Models *mcu.Registry
}

// New returns a decoder backed by the default model registry.
func New() (a *Avr) {
	a = &Avr{Models: DefaultModels()}
	return a
}

func (a *Avr) Name() (name string) { return "avr" }

func (a *Avr) Align() (align int) { return MIN_OP_SIZE }

func (a *Avr) MinOpSize() (size int) { return MIN_OP_SIZE }

func (a *Avr) MaxOpSize() (size int) { return MAX_OP_SIZE }

// tag selects the semantic handler for a descriptor. Several encodings
// share one tag; the handler re-derives the exact form from the bits.
type tag int

const (
	tagInvalid = tag(iota)
	tagAdc
	tagAdd
	tagAdiw
	tagAnd
	tagAndi
	tagAsr
	tagBclr
	tagBld
	tagBrbx
	tagBreak
	tagBset
	tagBst
	tagCall
	tagCbi
	tagCom
	tagCp
	tagCpc
	tagCpi
	tagCpse
	tagDec
	tagDes
	tagEicall
	tagEijmp
	tagElpm
	tagEor
	tagFmul
	tagFmuls
	tagFmulsu
	tagIcall
	tagIjmp
	tagIn
	tagInc
	tagJmp
	tagLac
	tagLas
	tagLat
	tagLd
	tagLdd
	tagLdi
	tagLds
	tagLpm
	tagLsr
	tagMov
	tagMovw
	tagMul
	tagMuls
	tagMulsu
	tagNeg
	tagNop
	tagOr
	tagOri
	tagOut
	tagPop
	tagPush
	tagRcall
	tagRet
	tagReti
	tagRjmp
	tagRor
	tagSbc
	tagSbci
	tagSbi
	tagSbiw
	tagSbix
	tagSbrx
	tagSleep
	tagSpm
	tagSt
	tagStd
	tagSts
	tagSub
	tagSubi
	tagSwap
)

type descriptor struct {
	name     string
	mask     uint16
	selector uint16
	tag      tag
	cycles   int
	size     int
	class    lift.Class
}

// Most specific encodings first; the first mask/selector match wins.
var opcodes = []descriptor{
	{"break", 0xffff, 0x9698, tagBreak, 1, 2, lift.CLASS_TRAP},
	{"eicall", 0xffff, 0x9519, tagEicall, 0, 2, lift.CLASS_UCALL},
	{"eijmp", 0xffff, 0x9419, tagEijmp, 0, 2, lift.CLASS_UJMP},
	{"icall", 0xffff, 0x9509, tagIcall, 0, 2, lift.CLASS_UCALL},
	{"ijmp", 0xffff, 0x9409, tagIjmp, 0, 2, lift.CLASS_UJMP},
	{"lpm", 0xffff, 0x95c8, tagLpm, 3, 2, lift.CLASS_LOAD},
	{"nop", 0xffff, 0x0000, tagNop, 1, 2, lift.CLASS_NOP},
	{"ret", 0xffff, 0x9508, tagRet, 4, 2, lift.CLASS_RET},
	{"reti", 0xffff, 0x9518, tagReti, 4, 2, lift.CLASS_RET},
	{"sleep", 0xffff, 0x9588, tagSleep, 1, 2, lift.CLASS_NOP},
	{"spm", 0xffff, 0x95e8, tagSpm, 1, 2, lift.CLASS_TRAP},
	{"bclr", 0xff8f, 0x9488, tagBclr, 1, 2, lift.CLASS_MOV},
	{"bset", 0xff8f, 0x9408, tagBset, 1, 2, lift.CLASS_MOV},
	{"fmul", 0xff88, 0x0308, tagFmul, 2, 2, lift.CLASS_MUL},
	{"fmuls", 0xff88, 0x0380, tagFmuls, 2, 2, lift.CLASS_MUL},
	{"fmulsu", 0xff88, 0x0388, tagFmulsu, 2, 2, lift.CLASS_MUL},
	{"mulsu", 0xff88, 0x0300, tagMulsu, 2, 2, lift.CLASS_MUL},
	{"des", 0xff0f, 0x940b, tagDes, 0, 2, lift.CLASS_CRYPTO},
	{"adiw", 0xff00, 0x9600, tagAdiw, 2, 2, lift.CLASS_ADD},
	{"sbiw", 0xff00, 0x9700, tagSbiw, 2, 2, lift.CLASS_SUB},
	{"cbi", 0xff00, 0x9800, tagCbi, 1, 2, lift.CLASS_IO},
	{"sbi", 0xff00, 0x9a00, tagSbi, 1, 2, lift.CLASS_IO},
	{"movw", 0xff00, 0x0100, tagMovw, 1, 2, lift.CLASS_MOV},
	{"muls", 0xff00, 0x0200, tagMuls, 2, 2, lift.CLASS_MUL},
	{"asr", 0xfe0f, 0x9405, tagAsr, 1, 2, lift.CLASS_SAR},
	{"com", 0xfe0f, 0x9400, tagCom, 1, 2, lift.CLASS_NOT},
	{"dec", 0xfe0f, 0x940a, tagDec, 1, 2, lift.CLASS_SUB},
	{"elpm", 0xfe0f, 0x9006, tagElpm, 0, 2, lift.CLASS_LOAD},
	{"elpm", 0xfe0f, 0x9007, tagElpm, 0, 2, lift.CLASS_LOAD},
	{"inc", 0xfe0f, 0x9403, tagInc, 1, 2, lift.CLASS_ADD},
	{"lac", 0xfe0f, 0x9206, tagLac, 2, 2, lift.CLASS_LOAD},
	{"las", 0xfe0f, 0x9205, tagLas, 2, 2, lift.CLASS_LOAD},
	{"lat", 0xfe0f, 0x9207, tagLat, 2, 2, lift.CLASS_LOAD},
	{"ld", 0xfe0f, 0x900c, tagLd, 0, 2, lift.CLASS_LOAD},
	{"ld", 0xfe0f, 0x900d, tagLd, 0, 2, lift.CLASS_LOAD},
	{"ld", 0xfe0f, 0x900e, tagLd, 0, 2, lift.CLASS_LOAD},
	{"lds", 0xfe0f, 0x9000, tagLds, 0, 4, lift.CLASS_LOAD},
	{"sts", 0xfe0f, 0x9200, tagSts, 2, 4, lift.CLASS_STORE},
	{"lpm", 0xfe0f, 0x9004, tagLpm, 3, 2, lift.CLASS_LOAD},
	{"lpm", 0xfe0f, 0x9005, tagLpm, 3, 2, lift.CLASS_LOAD},
	{"lsr", 0xfe0f, 0x9406, tagLsr, 1, 2, lift.CLASS_SHR},
	{"neg", 0xfe0f, 0x9401, tagNeg, 2, 2, lift.CLASS_SUB},
	{"pop", 0xfe0f, 0x900f, tagPop, 2, 2, lift.CLASS_POP},
	{"push", 0xfe0f, 0x920f, tagPush, 0, 2, lift.CLASS_PUSH},
	{"ror", 0xfe0f, 0x9407, tagRor, 1, 2, lift.CLASS_SAR},
	{"st", 0xfe0f, 0x920c, tagSt, 2, 2, lift.CLASS_STORE},
	{"st", 0xfe0f, 0x920d, tagSt, 0, 2, lift.CLASS_STORE},
	{"st", 0xfe0f, 0x920e, tagSt, 0, 2, lift.CLASS_STORE},
	{"swap", 0xfe0f, 0x9402, tagSwap, 1, 2, lift.CLASS_SAR},
	{"call", 0xfe0e, 0x940e, tagCall, 0, 4, lift.CLASS_CALL},
	{"jmp", 0xfe0e, 0x940c, tagJmp, 2, 4, lift.CLASS_JMP},
	{"bld", 0xfe08, 0xf800, tagBld, 1, 2, lift.CLASS_MOV},
	{"bst", 0xfe08, 0xfa00, tagBst, 1, 2, lift.CLASS_MOV},
	{"sbic", 0xff00, 0x9900, tagSbix, 2, 2, lift.CLASS_CJMP},
	{"sbis", 0xff00, 0x9b00, tagSbix, 2, 2, lift.CLASS_CJMP},
	{"sbrc", 0xfe08, 0xfc00, tagSbrx, 2, 2, lift.CLASS_CJMP},
	{"sbrs", 0xfe08, 0xfe00, tagSbrx, 2, 2, lift.CLASS_CJMP},
	{"ld", 0xfe07, 0x9001, tagLdd, 0, 2, lift.CLASS_LOAD},
	{"ld", 0xfe07, 0x9002, tagLdd, 0, 2, lift.CLASS_LOAD},
	{"st", 0xfe07, 0x9201, tagStd, 0, 2, lift.CLASS_STORE},
	{"st", 0xfe07, 0x9202, tagStd, 0, 2, lift.CLASS_STORE},
	{"adc", 0xfc00, 0x1c00, tagAdc, 1, 2, lift.CLASS_ADD},
	{"add", 0xfc00, 0x0c00, tagAdd, 1, 2, lift.CLASS_ADD},
	{"and", 0xfc00, 0x2000, tagAnd, 1, 2, lift.CLASS_AND},
	{"brbs", 0xfc00, 0xf000, tagBrbx, 0, 2, lift.CLASS_CJMP},
	{"brbc", 0xfc00, 0xf400, tagBrbx, 0, 2, lift.CLASS_CJMP},
	{"cp", 0xfc00, 0x1400, tagCp, 1, 2, lift.CLASS_CMP},
	{"cpc", 0xfc00, 0x0400, tagCpc, 1, 2, lift.CLASS_CMP},
	{"cpse", 0xfc00, 0x1000, tagCpse, 0, 2, lift.CLASS_CJMP},
	{"eor", 0xfc00, 0x2400, tagEor, 1, 2, lift.CLASS_XOR},
	{"mov", 0xfc00, 0x2c00, tagMov, 1, 2, lift.CLASS_MOV},
	{"mul", 0xfc00, 0x9c00, tagMul, 2, 2, lift.CLASS_MUL},
	{"or", 0xfc00, 0x2800, tagOr, 1, 2, lift.CLASS_OR},
	{"sbc", 0xfc00, 0x0800, tagSbc, 1, 2, lift.CLASS_SUB},
	{"sub", 0xfc00, 0x1800, tagSub, 1, 2, lift.CLASS_SUB},
	{"in", 0xf800, 0xb000, tagIn, 1, 2, lift.CLASS_IO},
	{"out", 0xf800, 0xb800, tagOut, 1, 2, lift.CLASS_IO},
	{"andi", 0xf000, 0x7000, tagAndi, 1, 2, lift.CLASS_AND},
	{"cpi", 0xf000, 0x3000, tagCpi, 1, 2, lift.CLASS_CMP},
	{"ldi", 0xf000, 0xe000, tagLdi, 1, 2, lift.CLASS_LOAD},
	{"ori", 0xf000, 0x6000, tagOri, 1, 2, lift.CLASS_OR},
	{"rcall", 0xf000, 0xd000, tagRcall, 0, 2, lift.CLASS_CALL},
	{"rjmp", 0xf000, 0xc000, tagRjmp, 2, 2, lift.CLASS_JMP},
	{"sbci", 0xf000, 0x4000, tagSbci, 1, 2, lift.CLASS_SUB},
	{"subi", 0xf000, 0x5000, tagSubi, 1, 2, lift.CLASS_SUB},
	{"ld", 0xd200, 0x8000, tagLdd, 0, 2, lift.CLASS_LOAD},
	{"st", 0xd200, 0x8200, tagStd, 0, 2, lift.CLASS_STORE},
}

// skipBudget bounds the lookahead recursion of the skip instructions
// (cpse, sbic, sbis, sbrc, sbrs). One level is all a skip target needs.
const skipBudget = 1

// Decode lifts the instruction at the start of buf. The result is never
// nil; input that matches no encoding, or that a handler rejects, comes
// back as a trap record of minimum size so callers can keep advancing.
func (a *Avr) Decode(buf []byte, addr uint64, variant string) (op *lift.Op) {
	op, _ = a.decode(buf, addr, a.Models.Lookup(variant), skipBudget)
	return op
}

func (a *Avr) decode(buf []byte, addr uint64, model *mcu.Model, budget int) (op *lift.Op, d *descriptor) {
	op = lift.NewOp(addr)
	if len(buf) < MIN_OP_SIZE {
		a.invalid(op)
		return op, nil
	}

	code := a.order(buf)
	word := uint16(code[1])<<8 | uint16(code[0])

	for n := range opcodes {
		d = &opcodes[n]
		if word&d.mask != d.selector {
			continue
		}

		op.Cycles = d.cycles
		op.Size = d.size
		op.Class = d.class
		op.Mnemonic = d.name

		l := &lifter{
			avr:    a,
			op:     op,
			buf:    code,
			raw:    buf,
			word:   word,
			model:  model,
			budget: budget,
			esil:   &il.Script{},
		}
		l.lift(d.tag)
		if l.fail {
			op = lift.NewOp(addr)
			a.invalid(op)
			return op, nil
		}

		if op.Cycles <= 0 {
			op.Cycles = 2
		}

		l.esil.Canonical()
		op.Program = l.esil

		if a.Verbose {
			log.Printf("avr: %#06x: %s", addr, op.Mnemonic)
		}
		return op, d
	}

	a.invalid(op)
	return op, nil
}

// invalid turns op into the inert trap record used for undecodable input.
func (a *Avr) invalid(op *lift.Op) {
	op.Class = lift.CLASS_UNKNOWN
	op.Size = MIN_OP_SIZE
	op.Cycles = 1
	op.Trap = true
	op.Mnemonic = "invalid"

	script := &il.Script{}
	script.Set("1,TRAP")
	op.Program = script
}

// order copies up to one instruction worth of code bytes, normalized to
// little-endian word order so the field extractors can index bytes directly.
func (a *Avr) order(buf []byte) (code []byte) {
	n := min(len(buf), MAX_OP_SIZE) &^ 1
	code = make([]byte, n)
	copy(code, buf[:n])
	if a.BigEndian {
		for i := 0; i+1 < n; i += 2 {
			code[i], code[i+1] = code[i+1], code[i]
		}
	}
	return code
}

// Mask reports which bits of buf take part in instruction selection and
// immediate control flow. Operand bits of branch-free instructions are
// zeroed so that two functions differing only in register allocation
// produce the same masked byte stream.
func (a *Avr) Mask(buf []byte, addr uint64, variant string) (ret []byte) {
	model := a.Models.Lookup(variant)

	ret = make([]byte, len(buf))
	for i := range ret {
		ret[i] = 0xff
	}

	idx := 0
	for idx+1 < len(buf) {
		op, d := a.decode(buf[idx:], addr+uint64(idx), model, skipBudget)
		if d == nil {
			ret = ret[:idx]
			break
		}
		if op.Size == 4 && idx+3 < len(ret) {
			ret[idx+2] = 0
			ret[idx+3] = 0
		}
		if op.Ptr != lift.NoAddr || op.Jump != lift.NoAddr {
			ret[idx] = byte(d.mask)
			ret[idx+1] = byte(d.mask >> 8)
		}
		idx += op.Size
	}
	return ret
}
