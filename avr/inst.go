// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package avr

import (
	"fmt"
	"strings"

	"github.com/ezrec/uclift/il"
	"github.com/ezrec/uclift/lift"
	"github.com/ezrec/uclift/mcu"
)

// lifter holds the per-instruction state shared by the semantic handlers.
// buf is normalized to little-endian word order; raw is the caller's
// buffer, used only for skip-instruction lookahead.
type lifter struct {
	avr    *Avr
	op     *lift.Op
	buf    []byte
	raw    []byte
	word   uint16
	model  *mcu.Model
	budget int
	esil   *il.Script
	fail   bool
}

func (l *lifter) a(format string, args ...any) {
	l.esil.Appendf(format, args...)
}

func (l *lifter) mn(format string, args ...any) {
	l.op.Mnemonic = fmt.Sprintf(format, args...)
}

func (l *lifter) xmega() (is bool) {
	return hasPrefixFold(l.model.Name, "ATxmega")
}

func hasPrefixFold(s, prefix string) (has bool) {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// ioDest names an I/O port either by its model-defined register alias or
// as an offset into the I/O segment. With write set the result is a store
// destination, otherwise a load source.
func (l *lifter) ioDest(port int, write bool) (dest string) {
	if c := l.model.ConstByValue(mcu.CONST_REG, uint32(port)); c != nil {
		if write {
			return c.Key + ",="
		}
		return c.Key
	}
	if write {
		return fmt.Sprintf("_io,%d,+,=[1]", port)
	}
	return fmt.Sprintf("_io,%d,+,[1]", port)
}

// ldst emits a generic indexed load or store. ireg of 0 means absolute
// addressing through offset alone; prepostdec of -1/+1 adjusts the index
// register before/after the access.
func (l *lifter) ldst(mem string, ireg byte, useRamp bool, prepostdec int, offset int, st bool) {
	if ireg != 0 {
		if prepostdec < 0 {
			l.a("1,%c,-,%c,=,", ireg, ireg)
		}
		l.a("%c,", ireg)
		if offset != 0 {
			l.a("%d,+,", offset)
		}
	} else {
		l.a("%d,", offset)
	}
	if useRamp {
		r := ireg
		if r == 0 {
			r = 'd'
		}
		l.a("16,ramp%c,<<,+,", r)
	}
	l.a("_%s,+,", mem)
	if st {
		l.a("=[1],")
	} else {
		l.a("[1],")
	}
	if ireg != 0 && prepostdec > 0 {
		l.a("1,%c,+,%c,=,", ireg, ireg)
	}
}

func (l *lifter) push(sz int) {
	l.a("sp,_ram,+,")
	if sz > 1 {
		l.a("-%d,+,", sz-1)
	}
	l.a("=[%d],", sz)
	l.a("-%d,sp,+=,", sz)
}

func (l *lifter) pop(sz int) {
	if sz > 1 {
		l.a("1,sp,+,_ram,+,")
		l.a("[%d],", sz)
		l.a("%d,sp,+=,", sz)
	} else {
		l.a("1,sp,+=,sp,_ram,+,[1],")
	}
}

// nextSize is the decoded size of the instruction following this one,
// used by the skip family to compute the taken target. With the
// lookahead budget exhausted the next instruction is assumed minimal.
func (l *lifter) nextSize() (size int) {
	size = MIN_OP_SIZE
	if l.budget <= 0 {
		return size
	}
	var rest []byte
	if l.op.Size < len(l.raw) {
		rest = l.raw[l.op.Size:]
	}
	next, _ := l.avr.decode(rest, l.op.Addr+uint64(l.op.Size), l.model, l.budget-1)
	return next.Size
}

func (l *lifter) lift(t tag) {
	switch t {
	case tagAdc:
		l.adc()
	case tagAdd:
		l.add()
	case tagAdiw:
		l.adiw()
	case tagAnd:
		l.and()
	case tagAndi:
		l.andi()
	case tagAsr:
		l.asr()
	case tagBclr:
		l.bclr()
	case tagBld:
		l.bld()
	case tagBrbx:
		l.brbx()
	case tagBreak:
		l.brk()
	case tagBset:
		l.bset()
	case tagBst:
		l.bst()
	case tagCall:
		l.call()
	case tagCbi:
		l.cbi()
	case tagCom:
		l.com()
	case tagCp:
		l.cp()
	case tagCpc:
		l.cpc()
	case tagCpi:
		l.cpi()
	case tagCpse:
		l.cpse()
	case tagDec:
		l.dec()
	case tagDes:
		l.des()
	case tagEicall:
		l.eicall()
	case tagEijmp:
		l.eijmp()
	case tagElpm:
		l.elpm()
	case tagEor:
		l.eor()
	case tagFmul:
		l.fmul()
	case tagFmuls:
		l.fmuls()
	case tagFmulsu:
		l.fmulsu()
	case tagIcall:
		l.icall()
	case tagIjmp:
		l.ijmp()
	case tagIn:
		l.in()
	case tagInc:
		l.inc()
	case tagJmp:
		l.jmp()
	case tagLac:
		l.lac()
	case tagLas:
		l.las()
	case tagLat:
		l.lat()
	case tagLd:
		l.ld()
	case tagLdd:
		l.ldd()
	case tagLdi:
		l.ldi()
	case tagLds:
		l.lds()
	case tagLpm:
		l.lpm()
	case tagLsr:
		l.lsr()
	case tagMov:
		l.mov()
	case tagMovw:
		l.movw()
	case tagMul:
		l.mul()
	case tagMuls:
		l.muls()
	case tagMulsu:
		l.mulsu()
	case tagNeg:
		l.neg()
	case tagNop:
		l.nop()
	case tagOr:
		l.or()
	case tagOri:
		l.ori()
	case tagOut:
		l.out()
	case tagPop:
		l.popInst()
	case tagPush:
		l.pushInst()
	case tagRcall:
		l.rcall()
	case tagRet:
		l.ret()
	case tagReti:
		l.reti()
	case tagRjmp:
		l.rjmp()
	case tagRor:
		l.ror()
	case tagSbc:
		l.sbc()
	case tagSbci:
		l.sbci()
	case tagSbi:
		l.sbi()
	case tagSbiw:
		l.sbiw()
	case tagSbix:
		l.sbix()
	case tagSbrx:
		l.sbrx()
	case tagSleep:
		l.sleep()
	case tagSpm:
		l.spm()
	case tagSt:
		l.st()
	case tagStd:
		l.std()
	case tagSts:
		l.sts()
	case tagSub:
		l.sub()
	case tagSubi:
		l.subi()
	case tagSwap:
		l.swap()
	default:
		l.fail = true
	}
}

// d5 is the five-bit destination register field common to most
// single-register encodings.
func (l *lifter) d5() (d int) {
	return int((l.buf[0]>>4)&0xf) | int(l.buf[1]&1)<<4
}

// r5 is the five-bit source register field of two-register encodings.
func (l *lifter) r5() (r int) {
	return int(l.buf[0]&0xf) | int(l.buf[1]&2)<<3
}

func (l *lifter) adc() {
	d, r := l.d5(), l.r5()
	l.mn("adc r%d, r%d", d, r)
	l.a("r%d,cf,+,r%d,+=,", r, d)
	l.a("$z,zf,:=,")
	l.a("3,$c,hf,:=,")
	l.a("7,$c,cf,:=,")
	l.a("7,$o,vf,:=,")
	l.a("0x80,r%d,&,!,!,nf,:=", d)
}

func (l *lifter) add() {
	d, r := l.d5(), l.r5()
	l.mn("add r%d, r%d", d, r)
	l.a("r%d,r%d,+=,", r, d)
	l.a("$z,zf,:=,")
	l.a("3,$c,hf,:=,")
	l.a("7,$c,cf,:=,")
	l.a("7,$o,vf,:=,")
	l.a("0x80,r%d,&,!,!,nf,:=,", d)
}

func (l *lifter) adiw() {
	d := int((l.buf[0]&0x30)>>3) + 24
	k := int(l.buf[0]&0x0f) | int(l.buf[0]>>2)&0x30
	l.op.SetValue(uint64(k))
	l.mn("adiw r%d, %d", d, k)
	l.a("7,r%d,>>,", d+1) // remember previous highest bit
	l.a("8,%d,8,r%d,<<,r%d,|,+,DUP,r%d,=,>>,r%d,=,", k, d+1, d, d, d+1)
	l.a("DUP,!,7,r%d,>>,&,vf,:=,", d+1)
	l.a("r%d,0x80,&,!,!,nf,:=,", d+1)
	l.a("8,r%d,<<,r%d,|,!,zf,:=,", d+1, d)
	l.a("7,r%d,>>,!,&,cf,:=,", d+1)
	l.a("vf,nf,^,sf,:=")
}

func (l *lifter) and() {
	d, r := l.d5(), l.r5()
	l.mn("and r%d, r%d", d, r)
	l.a("r%d,r%d,&=,$z,zf,:=,r%d,0x80,&,!,!,nf,:=,0,vf,:=,nf,sf,:=,", r, d, d)
}

func (l *lifter) andi() {
	d := int((l.buf[0]>>4)&0xf) + 16
	k := int(l.buf[1]&0x0f)<<4 | int(l.buf[0]&0x0f)
	l.op.SetValue(uint64(k))
	l.mn("andi r%d, %#02x", d, k)
	l.a("%d,r%d,&=,$z,zf,:=,r%d,0x80,&,!,!,nf,:=,0,vf,:=,nf,sf,:=,", k, d, d)
}

func (l *lifter) asr() {
	d := l.d5()
	l.mn("asr r%d", d)
	l.a("r%d,0x1,&,cf,:=,0x1,r%d,>>,r%d,0x80,&,|,", d, d, d)
	l.a("$z,zf,:=,")
	l.a("r%d,0x80,&,!,!,nf,:=,", d)
	l.a("nf,cf,^,vf,:=,")
	l.a("nf,vf,^,sf,:=,")
}

func (l *lifter) bclr() {
	s := int(l.buf[0]>>4) & 0x7
	l.mn("bclr %d", s)
	l.a("0xff,%d,1,<<,^,sreg,&=,", s)
}

func (l *lifter) bld() {
	d := l.d5()
	b := int(l.buf[0] & 0x7)
	l.mn("bld r%d, %d", d, b)
	l.a("r%d,%d,1,<<,0xff,^,&,", d, b)
	l.a("%d,tf,<<,|,r%d,=,", b, d)
}

func (l *lifter) brbx() {
	s := int(l.buf[0] & 0x7)
	disp := int64(l.buf[1]&0x03)<<6 | int64(l.buf[0]&0xf8)>>2
	if l.buf[1]&0x2 != 0 {
		disp |= ^int64(0x7f)
	}
	l.op.Jump = uint64(int64(l.op.Addr) + disp + 2)
	l.op.Fail = l.op.Addr + uint64(l.op.Size)
	// taken costs one more cycle; static analysis reports the short path
	l.op.Cycles = 1

	clear := l.buf[1]&0x4 != 0
	if clear {
		l.mn("brbc %d, %#x", s, l.op.Jump)
	} else {
		l.mn("brbs %d, %#x", s, l.op.Jump)
	}
	l.a("%d,1,<<,sreg,&,", s)
	if clear {
		l.a("!,")
	} else {
		l.a("!,!,")
	}
	l.a("?{,%d,pc,=,},", l.op.Jump)
}

func (l *lifter) brk() {
	l.a("BREAK")
}

func (l *lifter) bset() {
	s := int(l.buf[0]>>4) & 0x7
	l.mn("bset %d", s)
	l.a("%d,1,<<,sreg,|=,", s)
}

func (l *lifter) bst() {
	d := l.d5()
	b := int(l.buf[0] & 0x7)
	l.mn("bst r%d, %d", d, b)
	l.a("r%d,%d,1,<<,&,!,!,tf,=,", d, b)
}

func (l *lifter) call() {
	if len(l.buf) < 4 {
		l.fail = true
		return
	}
	l.op.Jump = uint64(l.buf[2])<<1 | uint64(l.buf[3])<<9 |
		uint64(l.buf[1]&0x01)<<23 | uint64(l.buf[0]&0x01)<<17 | uint64(l.buf[0]&0xf0)<<14
	l.op.Fail = l.op.Addr + uint64(l.op.Size)
	l.op.Cycles = 4
	if l.model.PCBits <= 16 {
		l.op.Cycles = 3
	}
	if l.xmega() {
		l.op.Cycles--
	}
	l.mn("call %#x", l.op.Jump)
	l.a("pc,") // return address; pc already points past this instruction
	l.push(l.model.PCSize())
	l.a("%d,pc,=,", l.op.Jump)
}

func (l *lifter) cbi() {
	a := int(l.buf[0]>>3) & 0x1f
	b := int(l.buf[0] & 0x07)
	l.op.Port = a
	l.op.SetValue(uint64(a))
	l.mn("cbi %#02x, %d", a, b)
	l.a("0xff,%d,1,<<,^,%s,&,", b, l.ioDest(a, false))
	l.a("%s,", l.ioDest(a, true))
}

func (l *lifter) com() {
	d := l.d5()
	l.mn("com r%d", d)
	l.a("r%d,0xff,-,r%d,=,$z,zf,:=,0,cf,:=,0,vf,:=,r%d,0x80,&,!,!,nf,:=,vf,nf,^,sf,:=", d, d, d)
}

// cmpFields decodes the source/destination pair of the compare family,
// whose source high bit sits one position lower than in r5.
func (l *lifter) cmpFields() (d, r int) {
	r = int(l.buf[0]&0x0f) | int(l.buf[1])<<3&0x10
	d = int((l.buf[0]>>4)&0x0f) | int(l.buf[1])<<4&0x10
	return d, r
}

func (l *lifter) cp() {
	d, r := l.cmpFields()
	l.mn("cp r%d, r%d", d, r)
	l.a("r%d,r%d,-,0x80,&,!,!,nf,:=,", r, d)
	l.a("r%d,r%d,==,", r, d)
	l.a("$z,zf,:=,")
	l.a("3,$b,hf,:=,")
	l.a("8,$b,cf,:=,")
	l.a("7,$o,vf,:=,")
	l.a("vf,nf,^,sf,:=")
}

func (l *lifter) cpc() {
	d, r := l.cmpFields()
	l.mn("cpc r%d, r%d", d, r)
	l.a("cf,r%d,+,DUP,r%d,-,0x80,&,!,!,nf,:=,", r, d)
	l.a("r%d,==,", d)
	l.a("$z,zf,:=,")
	l.a("3,$b,hf,:=,")
	l.a("8,$b,cf,:=,")
	l.a("7,$o,vf,:=,")
	l.a("vf,nf,^,sf,:=")
}

func (l *lifter) cpi() {
	d := int((l.buf[0]>>4)&0xf) + 16
	k := int(l.buf[0]&0xf) | int(l.buf[1]&0xf)<<4
	l.mn("cpi r%d, %#02x", d, k)
	l.a("%d,r%d,-,0x80,&,!,!,nf,:=,", k, d)
	l.a("%d,r%d,==,", k, d)
	l.a("$z,zf,:=,")
	l.a("3,$b,hf,:=,")
	l.a("8,$b,cf,:=,")
	l.a("7,$o,vf,:=,")
	l.a("vf,nf,^,sf,:=")
}

func (l *lifter) cpse() {
	d, r := l.d5(), l.r5()
	l.op.Jump = l.op.Addr + uint64(l.nextSize()) + 2
	l.op.Fail = l.op.Addr + 2
	// skip costs extra cycles only when taken
	l.op.Cycles = 1
	l.mn("cpse r%d, r%d", d, r)
	l.a("r%d,r%d,^,!,", r, d)
	l.a("?{,%d,pc,=,},", l.op.Jump)
}

func (l *lifter) dec() {
	d := l.d5()
	l.mn("dec r%d", d)
	l.a("0x1,r%d,-=,", d)
	l.a("7,$o,vf,:=,")
	l.a("r%d,0x80,&,!,!,nf,:=,", d)
	l.a("$z,zf,:=,")
	l.a("vf,nf,^,sf,:=,")
}

func (l *lifter) des() {
	round := int(l.buf[0] >> 4)
	l.op.Cycles = 1
	l.mn("des %d", round)
	l.esil.Set("%d,des", round)
}

func (l *lifter) eijmp() {
	// target depends on EIND:Z at run time; no static jump address
	l.a("1,z,16,eind,<<,+,<<,pc,=,")
	l.op.Cycles = 2
}

func (l *lifter) eicall() {
	l.a("pc,")
	l.push(l.model.PCSize())
	l.eijmp()
	l.mn("eicall")
	l.op.Cycles = 4
	if l.xmega() {
		l.op.Cycles = 3
	}
}

func (l *lifter) elpm() {
	d := 0
	if l.buf[1]&0xfe == 0x90 {
		d = l.d5()
	}
	if l.buf[1]&0xfe == 0x90 && l.buf[0]&0xf == 0x7 {
		l.mn("elpm r%d, z+", d)
	} else {
		l.mn("elpm r%d, z", d)
	}
	l.a("16,rampz,<<,z,+,_prog,+,[1],")
	l.a("r%d,=,", d)
	if l.buf[1]&0xfe == 0x90 && l.buf[0]&0xf == 0x7 {
		l.a("16,1,z,+,DUP,z,=,>>,1,&,rampz,+=,") // ++(rampz:z)
	}
}

func (l *lifter) eor() {
	d, r := l.d5(), l.r5()
	l.mn("eor r%d, r%d", d, r)
	l.a("r%d,r%d,^=,$z,zf,:=,0,vf,:=,r%d,0x80,&,!,!,nf,:=,nf,sf,:=", r, d, d)
}

func (l *lifter) fmul() {
	d := int((l.buf[0]>>4)&0x7) + 16
	r := int(l.buf[0]&0x7) + 16
	l.mn("fmul r%d, r%d", d, r)
	l.a("8,")
	l.a("0xffff,1,r%d,r%d,*,<<,&,DUP,r0,=,>>,r1,=,", r, d)
	l.a("8,r1,<<,r0,|,DUP,0x8000,&,!,!,cf,:=,")
	l.a("!,zf,:=")
}

func (l *lifter) fmuls() {
	d := int((l.buf[0]>>4)&0x7) + 16
	r := int(l.buf[0]&0x7) + 16
	l.mn("fmuls r%d, r%d", d, r)
	l.a("8,1,")
	l.a("r%d,DUP,0x80,&,?{,0xff00,|,},", d) // sign extend Rd
	l.a("r%d,DUP,0x80,&,?{,0xff00,|,},", r) // sign extend Rr
	l.a("*,<<,DUP,r0,=,>>,r1,=,")
	l.a("8,r1,<<,r0,|,DUP,0x8000,&,!,!,cf,:=,")
	l.a("!,zf,:=")
}

func (l *lifter) fmulsu() {
	d := int((l.buf[0]>>4)&0x7) + 16
	r := int(l.buf[0]&0x7) + 16
	l.mn("fmulsu r%d, r%d", d, r)
	l.a("8,1,")
	l.a("r%d,DUP,0x80,&,?{,0xff00,|,},", d) // sign extend Rd
	l.a("r%d,*,<<,DUP,r0,=,>>,r1,=,", r)
	l.a("8,r1,<<,r0,|,DUP,0x8000,&,!,!,cf,:=,")
	l.a("!,zf,:=")
}

func (l *lifter) ijmp() {
	// target depends on Z at run time; no static jump address
	l.op.Cycles = 2
	l.a("1,z,<<,pc,=,")
}

func (l *lifter) icall() {
	l.a("pc,")
	l.push(l.model.PCSize())
	l.ijmp()
	l.mn("icall")
	if l.xmega() {
		l.op.Cycles--
	}
}

func (l *lifter) in() {
	r := l.d5()
	a := int(l.buf[0]&0x0f) | int(l.buf[1]&0x6)<<3
	l.op.Port = a
	l.op.SetValue(uint64(a))
	l.mn("in r%d, %#02x", r, a)
	l.a("%s,r%d,=,", l.ioDest(a, false), r)
}

func (l *lifter) inc() {
	d := l.d5()
	l.mn("inc r%d", d)
	l.a("1,r%d,+=,", d)
	l.a("7,$o,vf,:=,")
	l.a("r%d,0x80,&,!,!,nf,:=,", d)
	l.a("$z,zf,:=,")
	l.a("vf,nf,^,sf,:=,")
}

func (l *lifter) jmp() {
	if len(l.buf) < 4 {
		l.fail = true
		return
	}
	l.op.Jump = uint64(l.buf[2])<<1 | uint64(l.buf[3])<<9 |
		uint64(l.buf[1]&0x01)<<23 | uint64(l.buf[0]&0x01)<<17 | uint64(l.buf[0]&0xf0)<<14
	l.op.Cycles = 3
	l.mn("jmp %#x", l.op.Jump)
	l.a("%d,pc,=,", l.op.Jump)
}

func (l *lifter) lac() {
	d := l.d5()
	l.mn("lac z, r%d", d)
	l.ldst("ram", 'z', true, 0, 0, false)
	l.a("r%d,0xff,^,&,", d)
	l.a("DUP,r%d,=,", d)
	l.ldst("ram", 'z', true, 0, 0, true)
}

func (l *lifter) las() {
	d := l.d5()
	l.mn("las z, r%d", d)
	l.ldst("ram", 'z', true, 0, 0, false)
	l.a("r%d,|,", d)
	l.a("DUP,r%d,=,", d)
	l.ldst("ram", 'z', true, 0, 0, true)
}

func (l *lifter) lat() {
	d := l.d5()
	l.mn("lat z, r%d", d)
	l.ldst("ram", 'z', true, 0, 0, false)
	l.a("r%d,^,", d)
	l.a("DUP,r%d,=,", d)
	l.ldst("ram", 'z', true, 0, 0, true)
}

func (l *lifter) ld() {
	d := l.d5()
	inc := 0
	switch l.buf[0] & 0xf {
	case 0xe:
		inc = -1
		l.mn("ld r%d, -x", d)
	case 0xd:
		inc = 1
		l.mn("ld r%d, x+", d)
	default:
		l.mn("ld r%d, x", d)
	}
	l.ldst("ram", 'x', false, inc, 0, false)
	l.a("r%d,=,", d)
	switch l.buf[0] & 0x3 {
	case 0, 1:
		l.op.Cycles = 2
	default:
		l.op.Cycles = 3
	}
	if l.xmega() && l.op.Cycles > 1 {
		l.op.Cycles--
	}
}

func (l *lifter) ldd() {
	d := l.d5()
	offset := int(l.buf[1]&0x20) | int(l.buf[1]&0xc)<<1 | int(l.buf[0]&0x7)
	ireg := byte('z')
	if l.buf[0]&0x8 != 0 {
		ireg = 'y'
	}
	inc := 0
	if l.buf[1]&0x10 != 0 {
		inc = -1
		if l.buf[0]&0x1 != 0 {
			inc = 1
		}
		offset = 0
	}
	switch {
	case inc < 0:
		l.mn("ld r%d, -%c", d, ireg)
	case inc > 0:
		l.mn("ld r%d, %c+", d, ireg)
	case offset != 0:
		l.mn("ldd r%d, %c+%d", d, ireg, offset)
	default:
		l.mn("ld r%d, %c", d, ireg)
	}
	l.ldst("ram", ireg, false, inc, offset, false)
	l.a("r%d,=,", d)
	switch {
	case l.buf[1]&0x10 == 0 && offset == 0:
		l.op.Cycles = 1
	case l.buf[1]&0x10 == 0:
		l.op.Cycles = 3
	case l.buf[0]&0x3 == 0:
		l.op.Cycles = 1
	case l.buf[0]&0x3 == 1:
		l.op.Cycles = 2
	default:
		l.op.Cycles = 3
	}
	if l.xmega() && l.op.Cycles > 1 {
		l.op.Cycles--
	}
}

func (l *lifter) ldi() {
	k := int(l.buf[0]&0xf) | int(l.buf[1]&0xf)<<4
	d := int((l.buf[0]>>4)&0xf) + 16
	l.op.SetValue(uint64(k))
	l.mn("ldi r%d, %#02x", d, k)
	l.a("0x%x,r%d,=,", k, d)
}

func (l *lifter) lds() {
	if len(l.buf) < 4 {
		l.fail = true
		return
	}
	d := l.d5()
	k := int(l.buf[3])<<8 | int(l.buf[2])
	l.op.Ptr = uint64(k)
	l.mn("lds r%d, %#x", d, k)
	l.ldst("ram", 0, true, 0, k, false)
	l.a("r%d,=,", d)
}

func (l *lifter) lpm() {
	inc := 0
	if l.word&0xfe0f == 0x9005 {
		inc = 1
	}
	d := 0
	if l.word != 0x95c8 {
		d = l.d5()
	}
	switch {
	case l.word == 0x95c8:
		l.mn("lpm")
	case inc != 0:
		l.mn("lpm r%d, z+", d)
	default:
		l.mn("lpm r%d, z", d)
	}
	l.ldst("prog", 'z', true, inc, 0, false)
	l.a("r%d,=,", d)
}

func (l *lifter) lsr() {
	d := l.d5()
	l.mn("lsr r%d", d)
	l.a("r%d,0x1,&,cf,:=,", d)
	l.a("1,r%d,>>=,", d)
	l.a("$z,zf,:=,")
	l.a("0,nf,:=,")
	l.a("cf,vf,:=,")
	l.a("cf,sf,:=")
}

func (l *lifter) mov() {
	d, r := l.d5(), l.r5()
	l.mn("mov r%d, r%d", d, r)
	l.a("r%d,r%d,=,", r, d)
}

func (l *lifter) movw() {
	d := int(l.buf[0]&0xf0) >> 3
	r := int(l.buf[0]&0x0f) << 1
	l.mn("movw r%d, r%d", d, r)
	l.a("r%d,r%d,=,r%d,r%d,=,", r, d, r+1, d+1)
}

func (l *lifter) mul() {
	d, r := l.d5(), l.r5()
	l.mn("mul r%d, r%d", d, r)
	l.a("8,r%d,r%d,*,DUP,r0,=,>>,r1,=,", r, d)
	l.a("8,r1,<<,r0,|,DUP,0x8000,&,!,!,cf,:=,")
	l.a("!,zf,:=")
}

func (l *lifter) muls() {
	d := int(l.buf[0]>>4&0x0f) + 16
	r := int(l.buf[0]&0x0f) + 16
	l.mn("muls r%d, r%d", d, r)
	l.a("8,")
	l.a("r%d,DUP,0x80,&,?{,0xff00,|,},", d) // sign extend Rd
	l.a("r%d,DUP,0x80,&,?{,0xff00,|,},", r) // sign extend Rr
	l.a("*,DUP,r0,=,>>,r1,=,")
	l.a("8,r1,<<,r0,|,DUP,0x8000,&,!,!,cf,:=,")
	l.a("!,zf,:=")
}

func (l *lifter) mulsu() {
	d := int(l.buf[0]>>4&0x07) + 16
	r := int(l.buf[0]&0x07) + 16
	l.mn("mulsu r%d, r%d", d, r)
	l.a("8,")
	l.a("r%d,DUP,0x80,&,?{,0xff00,|,},", d) // sign extend Rd
	l.a("r%d,*,DUP,r0,=,>>,r1,=,", r)
	l.a("8,r1,<<,r0,|,DUP,0x8000,&,!,!,cf,:=,")
	l.a("!,zf,:=")
}

func (l *lifter) neg() {
	d := l.d5()
	l.mn("neg r%d", d)
	l.a("r%d,0x00,-,0xff,&,", d)
	l.a("DUP,r%d,0xff,^,|,0x08,&,!,!,hf,=,", d)
	l.a("DUP,0x80,-,!,vf,=,")
	l.a("DUP,0x80,&,!,!,nf,=,")
	l.a("DUP,!,zf,=,")
	l.a("DUP,!,!,cf,=,")
	l.a("vf,nf,^,sf,=,")
	l.a("r%d,=,", d)
}

func (l *lifter) nop() {
	l.a(",,")
}

func (l *lifter) or() {
	d, r := l.d5(), l.r5()
	l.mn("or r%d, r%d", d, r)
	l.a("r%d,r%d,|=,", r, d)
	l.a("$z,zf,:=,")
	l.a("r%d,0x80,&,!,!,nf,:=,", d)
	l.a("0,vf,:=,")
	l.a("nf,sf,:=")
}

func (l *lifter) ori() {
	d := int((l.buf[0]>>4)&0xf) + 16
	k := int(l.buf[0]&0xf) | int(l.buf[1]&0xf)<<4
	l.op.SetValue(uint64(k))
	l.mn("ori r%d, %#02x", d, k)
	l.a("%d,r%d,|=,", k, d)
	l.a("$z,zf,:=,")
	l.a("r%d,0x80,&,!,!,nf,:=,", d)
	l.a("0,vf,:=,")
	l.a("nf,sf,:=")
}

func (l *lifter) out() {
	r := l.d5()
	a := int(l.buf[0]&0x0f) | int(l.buf[1]&0x6)<<3
	l.op.Port = a
	l.op.SetValue(uint64(a))
	l.mn("out %#02x, r%d", a, r)
	l.a("r%d,%s,", r, l.ioDest(a, true))
}

func (l *lifter) popInst() {
	d := l.d5()
	l.mn("pop r%d", d)
	l.pop(1)
	l.a("r%d,=,", d)
}

func (l *lifter) pushInst() {
	r := l.d5()
	l.mn("push r%d", r)
	l.a("r%d,", r)
	l.push(1)
	l.op.Cycles = 2
	if l.xmega() {
		l.op.Cycles = 1
	}
}

func (l *lifter) rcall() {
	disp := int64(l.buf[1]&0xf)<<8 | int64(l.buf[0])
	disp <<= 1
	if l.buf[1]&0x8 != 0 {
		disp |= ^int64(0x1fff)
	}
	l.op.Jump = uint64(int64(l.op.Addr) + disp + 2)
	l.op.Fail = l.op.Addr + uint64(l.op.Size)
	l.mn("rcall %#x", l.op.Jump)
	l.a("pc,")
	l.push(l.model.PCSize())
	l.a("%d,pc,=,", l.op.Jump)
	if hasPrefixFold(l.model.Name, "ATtiny") {
		l.op.Cycles = 4 // ATtiny is always slow
	} else {
		l.op.Cycles = 4
		if l.model.PCBits <= 16 {
			l.op.Cycles = 3
		}
		if l.xmega() {
			l.op.Cycles--
		}
	}
}

func (l *lifter) ret() {
	l.pop(l.model.PCSize())
	l.a("pc,=,")
	if l.model.PCSize() > 2 {
		l.op.Cycles++ // 22-bit return address needs an extra cycle
	}
}

func (l *lifter) reti() {
	l.ret()
	// hardware clears I on interrupt entry; RETI re-enables interrupts
	l.a("1,if,=,")
}

func (l *lifter) rjmp() {
	disp := int64(l.buf[1]&0xf)<<9 | int64(l.buf[0])<<1
	if l.buf[1]&0x8 != 0 {
		disp |= ^int64(0x1fff)
	}
	l.op.Jump = uint64(int64(l.op.Addr) + disp + 2)
	l.mn("rjmp %#x", l.op.Jump)
	l.a("%d,pc,=,", l.op.Jump)
}

func (l *lifter) ror() {
	d := l.d5()
	l.mn("ror r%d", d)
	l.a("cf,nf,:=,")
	l.a("r%d,0x1,&,", d)
	l.a("1,r%d,>>,7,cf,<<,|,r%d,=,cf,:=,", d, d)
	l.a("$z,zf,:=,")
	l.a("nf,cf,^,vf,:=,")
	l.a("vf,nf,^,sf,:=")
}

func (l *lifter) sbc() {
	d, r := l.d5(), l.r5()
	l.mn("sbc r%d, r%d", d, r)
	l.a("cf,r%d,+,r%d,-=,", r, d)
	l.a("$z,zf,:=,")
	l.a("3,$b,hf,:=,")
	l.a("8,$b,cf,:=,")
	l.a("7,$o,vf,:=,")
	l.a("0x80,r%d,&,!,!,nf,:=,", d)
	l.a("vf,nf,^,sf,:=")
}

func (l *lifter) sbci() {
	d := int((l.buf[0]>>4)&0xf) + 16
	k := int(l.buf[1]&0xf)<<4 | int(l.buf[0]&0xf)
	l.op.SetValue(uint64(k))
	l.mn("sbci r%d, %#02x", d, k)
	l.a("cf,%d,+,r%d,-=,", k, d)
	l.a("$z,zf,:=,")
	l.a("3,$b,hf,:=,")
	l.a("8,$b,cf,:=,")
	l.a("7,$o,vf,:=,")
	l.a("0x80,r%d,&,!,!,nf,:=,", d)
	l.a("vf,nf,^,sf,:=")
}

func (l *lifter) sbi() {
	a := int(l.buf[0]>>3) & 0x1f
	b := int(l.buf[0] & 0x07)
	l.op.Port = a
	l.op.SetValue(uint64(a))
	l.mn("sbi %#02x, %d", a, b)
	l.a("%d,1,<<,%s,|,", b, l.ioDest(a, false))
	l.a("%s,", l.ioDest(a, true))
}

func (l *lifter) sbiw() {
	d := int((l.buf[0]&0x30)>>3) + 24
	k := int(l.buf[0]&0xf) | int(l.buf[0]>>2)&0x30
	l.op.SetValue(uint64(k))
	l.mn("sbiw r%d, %d", d, k)
	l.a("7,r%d,>>,", d+1) // remember previous highest bit
	l.a("8,%d,8,r%d,<<,r%d,|,-,DUP,r%d,=,>>,r%d,=,", k, d+1, d, d, d+1)
	l.a("$z,zf,:=,")
	l.a("DUP,!,7,r%d,>>,&,cf,:=,", d+1)
	l.a("r%d,0x80,&,!,!,nf,:=,", d+1)
	l.a("7,r%d,>>,!,&,vf,:=,", d+1)
	l.a("vf,nf,^,sf,:=")
}

func (l *lifter) sbix() {
	a := int(l.buf[0]>>3) & 0x1f
	b := int(l.buf[0] & 0x07)
	l.op.Port = a
	l.op.SetValue(uint64(a))
	l.op.Jump = l.op.Addr + uint64(l.nextSize()) + 2
	l.op.Fail = l.op.Addr + uint64(l.op.Size)
	// skip costs extra cycles only when taken
	l.op.Cycles = 1

	clear := l.buf[1]&0x2 == 0
	if clear {
		l.mn("sbic %#02x, %d", a, b)
	} else {
		l.mn("sbis %#02x, %d", a, b)
	}
	l.a("%d,1,<<,%s,&,", b, l.ioDest(a, false))
	if clear {
		l.a("!,")
	} else {
		l.a("!,!,")
	}
	l.a("?{,%d,pc,=,},", l.op.Jump)
}

func (l *lifter) sbrx() {
	b := int(l.buf[0] & 0x7)
	r := l.d5()
	l.op.Jump = l.op.Addr + uint64(l.nextSize()) + 2
	l.op.Fail = l.op.Addr + 2
	// skip costs extra cycles only when taken
	l.op.Cycles = 1

	clear := l.buf[1]&0xe == 0xc
	if clear {
		l.mn("sbrc r%d, %d", r, b)
	} else {
		l.mn("sbrs r%d, %d", r, b)
	}
	l.a("%d,1,<<,r%d,&,", b, r)
	if clear {
		l.a("!,")
	} else {
		l.a("!,!,")
	}
	l.a("?{,%d,pc,=,},", l.op.Jump)
}

func (l *lifter) sleep() {
	l.a("BREAK")
}

// spm emits a program that dispatches on the live SPMCSR mode bits, so
// the decision which self-programming action runs is made at execution
// time rather than at lift time.
func (l *lifter) spm() {
	l.mn("spm z+")
	l.a("3,0x7f,spmcsr,&,^,!,?{,16,rampz,<<,z,+,SPM_PAGE_ERASE,},")
	l.a("1,0x7f,spmcsr,&,^,!,?{,r1,r0,z,SPM_PAGE_FILL,},")
	l.a("5,0x7f,spmcsr,&,^,!,?{,16,rampz,<<,z,+,SPM_PAGE_WRITE,},")
	l.a("0x7c,spmcsr,&=,")
	l.op.Cycles = 1 // datasheets leave the real count per-mode and per-die
}

func (l *lifter) st() {
	r := l.d5()
	inc := 0
	switch l.buf[0] & 0xf {
	case 0xe:
		inc = -1
		l.mn("st -x, r%d", r)
	case 0xd:
		inc = 1
		l.mn("st x+, r%d", r)
	default:
		l.mn("st x, r%d", r)
	}
	l.a("r%d,", r)
	l.ldst("ram", 'x', false, inc, 0, true)
}

func (l *lifter) std() {
	r := l.d5()
	offset := int(l.buf[1]&0x20) | int(l.buf[1]&0xc)<<1 | int(l.buf[0]&0x7)
	ireg := byte('z')
	if l.buf[0]&0x8 != 0 {
		ireg = 'y'
	}
	inc := 0
	if l.buf[1]&0x10 != 0 {
		inc = -1
		if l.buf[0]&0x1 != 0 {
			inc = 1
		}
		offset = 0
	}
	switch {
	case inc < 0:
		l.mn("st -%c, r%d", ireg, r)
	case inc > 0:
		l.mn("st %c+, r%d", ireg, r)
	case offset != 0:
		l.mn("std %c+%d, r%d", ireg, offset, r)
	default:
		l.mn("st %c, r%d", ireg, r)
	}
	l.a("r%d,", r)
	l.ldst("ram", ireg, false, inc, offset, true)
}

func (l *lifter) sts() {
	if len(l.buf) < 4 {
		l.fail = true
		return
	}
	r := l.d5()
	k := int(l.buf[3])<<8 | int(l.buf[2])
	l.op.Ptr = uint64(k)
	l.mn("sts %#x, r%d", k, r)
	l.a("r%d,", r)
	l.ldst("ram", 0, true, 0, k, true)
	l.op.Cycles = 2
}

func (l *lifter) sub() {
	d, r := l.d5(), l.r5()
	l.mn("sub r%d, r%d", d, r)
	l.a("r%d,r%d,-=,", r, d)
	l.a("$z,zf,:=,")
	l.a("3,$b,hf,:=,")
	l.a("8,$b,cf,:=,")
	l.a("7,$o,vf,:=,")
	l.a("0x80,r%d,&,!,!,nf,:=,", d)
	l.a("vf,nf,^,sf,:=")
}

func (l *lifter) subi() {
	d := int((l.buf[0]>>4)&0xf) + 16
	k := int(l.buf[1]&0xf)<<4 | int(l.buf[0]&0xf)
	l.op.SetValue(uint64(k))
	l.mn("subi r%d, %#02x", d, k)
	l.a("%d,r%d,-=,", k, d)
	l.a("$z,zf,:=,")
	l.a("3,$b,hf,:=,")
	l.a("8,$b,cf,:=,")
	l.a("7,$o,vf,:=,")
	l.a("0x80,r%d,&,!,!,nf,:=,", d)
	l.a("vf,nf,^,sf,:=")
}

func (l *lifter) swap() {
	d := l.d5()
	l.mn("swap r%d", d)
	l.a("4,r%d,>>,0x0f,&,", d)
	l.a("4,r%d,<<,0xf0,&,", d)
	l.a("|,")
	l.a("r%d,=,", d)
}
