// Package reg models architecture register state: named storage bindings,
// single-bit flag views into a packed status word, and wide registers
// aliased over narrower pairs. It also defines the static register-profile
// entries an architecture exports to the framework's register allocator.
package reg

// Kind is the storage class of a binding.
type Kind int

const (
	BIND_WORD = Kind(0) // named variable backed by storage bytes
	BIND_BIT  = Kind(1) // fixed-position bit view into a packed word
	BIND_PAIR = Kind(2) // wide register aliased over two halves
)

// Role is the profile role tag of a register.
type Role int

const (
	ROLE_NONE = Role(0)
	ROLE_PC   = Role(1) // program counter
	ROLE_SP   = Role(2) // stack pointer
	ROLE_RET  = Role(3) // return value
	ROLE_ARG  = Role(4) // call argument
)

// Def is one register-profile entry, consumed by the framework's generic
// register-file allocator.
type Def struct {
	Name   string
	Bits   uint
	Offset uint // storage byte offset
	Role   Role
	Index  int // argument position for ROLE_ARG
}

// Binding describes one named storage location of a File.
type Binding struct {
	Name   string
	Kind   Kind
	Bits   uint   // width in bits
	Offset uint   // storage byte offset (BIND_WORD); byte holding the bit (BIND_BIT)
	Bit    uint   // bit position within the packed byte (BIND_BIT)
	Lo     string // low half name (BIND_PAIR)
	Hi     string // high half name (BIND_PAIR)
}

// File is a byte-addressed register file with named bindings. All flag
// reads and writes go through bit views of the packed status byte; pair
// writes update both halves in a single step.
type File struct {
	byName map[string]*Binding
	names  []string
	data   []byte
}

// Bind adds a binding, growing backing storage as needed. Duplicate names
// are an error.
func (fl *File) Bind(b Binding) (err error) {
	if fl.byName == nil {
		fl.byName = map[string]*Binding{}
	}
	if _, ok := fl.byName[b.Name]; ok {
		err = ErrBindDuplicate(b.Name)
		return
	}
	if b.Kind != BIND_PAIR {
		end := int(b.Offset) + int(b.Bits+7)/8
		if b.Kind == BIND_BIT {
			end = int(b.Offset) + 1
		}
		if end > len(fl.data) {
			fl.data = append(fl.data, make([]byte, end-len(fl.data))...)
		}
	}
	fl.byName[b.Name] = &b
	fl.names = append(fl.names, b.Name)
	return
}

// Names returns all bound names in binding order.
func (fl *File) Names() []string {
	return fl.names
}

// Lookup returns the binding for name.
func (fl *File) Lookup(name string) (b *Binding, ok bool) {
	b, ok = fl.byName[name]
	return
}

func mask(bits uint) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}

// Get reads a binding by name. An unresolved name returns ok == false; the
// caller must treat that as "not representable".
func (fl *File) Get(name string) (value uint64, ok bool) {
	b, ok := fl.byName[name]
	if !ok {
		return
	}
	switch b.Kind {
	case BIND_WORD:
		for n := uint(0); n < (b.Bits+7)/8; n++ {
			value |= uint64(fl.data[b.Offset+n]) << (8 * n)
		}
		value &= mask(b.Bits)
	case BIND_BIT:
		value = uint64(fl.data[b.Offset]>>b.Bit) & 1
	case BIND_PAIR:
		lo, lo_ok := fl.Get(b.Lo)
		hi, hi_ok := fl.Get(b.Hi)
		if !lo_ok || !hi_ok {
			ok = false
			return
		}
		half, _ := fl.byName[b.Lo]
		value = lo | hi<<half.Bits
	}
	return
}

// Set writes a binding by name. Writing a pair writes both halves within
// the same call; the halves remain independently addressable.
func (fl *File) Set(name string, value uint64) (ok bool) {
	b, ok := fl.byName[name]
	if !ok {
		return
	}
	switch b.Kind {
	case BIND_WORD:
		value &= mask(b.Bits)
		for n := uint(0); n < (b.Bits+7)/8; n++ {
			fl.data[b.Offset+n] = byte(value >> (8 * n))
		}
	case BIND_BIT:
		fl.data[b.Offset] &^= 1 << b.Bit
		fl.data[b.Offset] |= byte(value&1) << b.Bit
	case BIND_PAIR:
		half, half_ok := fl.byName[b.Lo]
		if !half_ok {
			ok = false
			return
		}
		if !fl.Set(b.Lo, value&mask(half.Bits)) || !fl.Set(b.Hi, value>>half.Bits) {
			ok = false
		}
	}
	return
}
