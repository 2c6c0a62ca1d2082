package il

import (
	"sort"
)

// State is the interpreter state surface handed to custom intrinsics. An
// intrinsic reads its operands by popping them from the evaluation stack in
// its documented order and writes results back through the same interface;
// there is no private side state.
type State interface {
	// Pop removes and returns the top of the evaluation stack.
	Pop() (value uint64, ok bool)
	// Variant returns the name of the active CPU variant.
	Variant() string
	ReadRegister(name string) (value uint64, ok bool)
	WriteRegister(name string, value uint64) (ok bool)
	ReadMemory(addr uint64, data []byte) (ok bool)
	WriteMemory(addr uint64, data []byte) (ok bool)
}

// Intrinsic is a named side-effecting operation invoked from inside an
// emitted program for behavior the base IL cannot express.
type Intrinsic func(st State) error

// Ops is the per-session intrinsic registry. Names are registered once at
// session start and looked up by the interpreter on every invocation.
type Ops struct {
	ops map[string]Intrinsic
}

// Register binds a name to an intrinsic. Rebinding an existing name is an
// error.
func (ops *Ops) Register(name string, fn Intrinsic) (err error) {
	if ops.ops == nil {
		ops.ops = map[string]Intrinsic{}
	}
	if _, ok := ops.ops[name]; ok {
		err = ErrOpDuplicate(name)
		return
	}
	ops.ops[name] = fn
	return
}

// Lookup returns the intrinsic bound to name.
func (ops *Ops) Lookup(name string) (fn Intrinsic, ok bool) {
	fn, ok = ops.ops[name]
	return
}

// Names returns the registered intrinsic names, sorted.
func (ops *Ops) Names() (names []string) {
	for name := range ops.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}
