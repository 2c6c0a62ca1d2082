package avr

import (
	"strconv"
	"strings"
	"testing"

	"github.com/ezrec/uclift/il"
	"github.com/ezrec/uclift/lift"
	"github.com/ezrec/uclift/reg"
)

// machine is a minimal evaluator for the emitted stack programs, enough to
// execute lifted instructions against a register file and a sparse memory.
// It doubles as the il.State surface handed to the custom intrinsics.
type machine struct {
	t       *testing.T
	avr     *Avr
	file    *reg.File
	mem     map[uint64]byte
	ops     *il.Ops
	model   string
	stack   []string
	old     uint64 // destination value before the last result
	cur     uint64 // last result, unmasked
	bits    uint   // width used by the flag helpers
	broke   bool
	trapped bool
}

func newMachine(t *testing.T, model string) (m *machine) {
	a := New()
	file, err := a.NewFile()
	if err != nil {
		t.Fatalf("register file: %v", err)
	}
	ops := &il.Ops{}
	if err := a.Register(ops); err != nil {
		t.Fatalf("intrinsics: %v", err)
	}
	return &machine{
		t:     t,
		avr:   a,
		file:  file,
		mem:   map[uint64]byte{},
		ops:   ops,
		model: model,
		bits:  64,
	}
}

func (m *machine) Variant() (model string) { return m.model }

func (m *machine) Pop() (value uint64, ok bool) {
	if len(m.stack) == 0 {
		return 0, false
	}
	tok := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return m.resolve(tok), true
}

func (m *machine) ReadRegister(name string) (value uint64, ok bool) {
	return m.file.Get(name)
}

func (m *machine) WriteRegister(name string, value uint64) (ok bool) {
	// the live framework crops program counter writes the same way
	if name == "pc" {
		value &= uint64(m.avr.Models.Lookup(m.model).PCMask())
	}
	return m.file.Set(name, value)
}

func (m *machine) ReadMemory(addr uint64, data []byte) (ok bool) {
	for i := range data {
		data[i] = m.mem[addr+uint64(i)]
	}
	return true
}

func (m *machine) WriteMemory(addr uint64, data []byte) (ok bool) {
	for i, b := range data {
		m.mem[addr+uint64(i)] = b
	}
	return true
}

func (m *machine) push(tok string) {
	m.stack = append(m.stack, tok)
}

func (m *machine) pushNum(v uint64) {
	m.stack = append(m.stack, strconv.FormatUint(v, 10))
}

func (m *machine) popTok() (tok string) {
	if len(m.stack) == 0 {
		m.t.Fatal("stack underflow")
	}
	tok = m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return tok
}

func (m *machine) resolve(tok string) (value uint64) {
	if v, ok := m.file.Get(tok); ok {
		return v
	}
	if strings.HasPrefix(tok, "-") {
		sv, err := strconv.ParseInt(tok, 0, 64)
		if err != nil {
			m.t.Fatalf("bad token %q: %v", tok, err)
		}
		return uint64(sv)
	}
	v, err := strconv.ParseUint(tok, 0, 64)
	if err != nil {
		m.t.Fatalf("bad token %q: %v", tok, err)
	}
	return v
}

func (m *machine) popNum() (value uint64) {
	return m.resolve(m.popTok())
}

func genmask(bits uint) (mask uint64) {
	if bits >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<bits - 1
}

// carry reports whether the last result carried out of bit n.
func (m *machine) carry(n uint64) (c uint64) {
	mask := genmask(uint(n) + 1)
	if m.cur&mask < m.old&mask {
		return 1
	}
	return 0
}

// borrow reports whether the last result borrowed through bit n.
func (m *machine) borrow(n uint64) (b uint64) {
	mask := genmask(uint(n) + 1)
	if m.old&mask < m.cur&mask {
		return 1
	}
	return 0
}

func (m *machine) binop(op string, a, b uint64) (r uint64) {
	switch op {
	case "+":
		r = a + b
	case "-":
		r = a - b
	case "*":
		r = a * b
	case "&":
		r = a & b
	case "|":
		r = a | b
	case "^":
		r = a ^ b
	case "<<":
		r = a << b
	case ">>":
		r = a >> b
	default:
		m.t.Fatalf("unknown operator %q", op)
	}
	return r
}

// assign writes value through a register token, recording the flag
// bookkeeping the conditional tokens consume. Weak assignment skips the
// bookkeeping.
func (m *machine) assign(name string, value uint64, weak bool) {
	b, ok := m.file.Lookup(name)
	if !ok {
		m.t.Fatalf("assignment to unknown register %q", name)
	}
	if !weak {
		m.old, _ = m.file.Get(name)
		m.cur = value
		m.bits = b.Bits
	}
	if !m.WriteRegister(name, value) {
		m.t.Fatalf("write to %q failed", name)
	}
}

func boolNum(b bool) (v uint64) {
	if b {
		return 1
	}
	return 0
}

// run executes the lifted program of op.
func (m *machine) run(op *lift.Op) {
	m.exec(op.Program.Text())
}

func (m *machine) exec(text string) {
	tokens := strings.Split(text, ",")
	m.broke = false

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if m.broke {
			return
		}
		switch tok {
		case "":
			// separator padding, e.g. the nop program
		case "+", "-", "*", "&", "|", "^", "<<", ">>":
			top := m.popNum()
			under := m.popNum()
			m.old = top
			m.cur = m.binop(tok, top, under)
			m.bits = 64
			m.pushNum(m.cur)
		case "=", ":=":
			name := m.popTok()
			m.assign(name, m.popNum(), tok == ":=")
		case "+=", "-=", "*=", "&=", "|=", "^=", "<<=", ">>=":
			name := m.popTok()
			src := m.popNum()
			dst := m.resolve(name)
			m.old = dst
			m.cur = m.binop(strings.TrimSuffix(tok, "="), dst, src)
			b, ok := m.file.Lookup(name)
			if !ok {
				m.t.Fatalf("assignment to unknown register %q", name)
			}
			m.bits = b.Bits
			m.WriteRegister(name, m.cur)
		case "==":
			dst := m.popNum()
			src := m.popNum()
			m.old = dst
			m.cur = dst - src
			m.bits = 64
		case "!":
			m.pushNum(boolNum(m.popNum() == 0))
		case "DUP":
			top := m.popTok()
			m.push(top)
			m.push(top)
		case "$z":
			m.pushNum(boolNum(m.cur&genmask(m.bits) == 0))
		case "$c":
			m.pushNum(m.carry(m.popNum()))
		case "$b":
			m.pushNum(m.borrow(m.popNum()))
		case "$o":
			n := m.popNum()
			m.pushNum(m.carry(n) ^ m.carry(n-1))
		case "?{":
			if m.popNum() == 0 {
				depth := 1
				for i++; i < len(tokens); i++ {
					switch tokens[i] {
					case "?{":
						depth++
					case "}":
						depth--
					}
					if depth == 0 {
						break
					}
				}
			}
		case "}":
			// close of a taken conditional
		case "TRAP":
			m.popNum()
			m.trapped = true
			return
		case "BREAK":
			m.broke = true
			return
		default:
			if strings.HasSuffix(tok, "]") {
				m.memAccess(tok)
				continue
			}
			if _, ok := m.file.Lookup(tok); ok {
				m.push(tok)
				continue
			}
			if fn, ok := m.ops.Lookup(tok); ok {
				if err := fn(m); err != nil {
					m.t.Fatalf("intrinsic %s: %v", tok, err)
				}
				continue
			}
			// numeric literal
			m.resolve(tok)
			m.push(tok)
		}
	}
}

// memAccess handles the "[n]" load and "=[n]" store tokens.
func (m *machine) memAccess(tok string) {
	store := strings.HasPrefix(tok, "=")
	spec := strings.TrimPrefix(tok, "=")
	n, err := strconv.Atoi(strings.Trim(spec, "[]"))
	if err != nil {
		m.t.Fatalf("bad memory token %q: %v", tok, err)
	}
	addr := m.popNum()
	if store {
		value := m.popNum()
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(value >> (8 * i))
		}
		m.WriteMemory(addr, data)
		return
	}
	data := make([]byte, n)
	m.ReadMemory(addr, data)
	var value uint64
	for i, b := range data {
		value |= uint64(b) << (8 * i)
	}
	m.pushNum(value)
}

// step lifts and executes the instruction at the front of code.
func (m *machine) step(code []byte, addr uint64) (op *lift.Op) {
	op = m.avr.Decode(code, addr, m.model)
	m.run(op)
	return op
}

func (m *machine) set(name string, value uint64) {
	if !m.file.Set(name, value) {
		m.t.Fatalf("set %q failed", name)
	}
}

func (m *machine) get(name string) (value uint64) {
	value, ok := m.file.Get(name)
	if !ok {
		m.t.Fatalf("get %q failed", name)
	}
	return value
}
