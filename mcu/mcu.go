// Package mcu is the CPU variant registry: named CPU models carrying
// inheritable constant tables (memory-map parameters and fixed register
// addresses), with single-parent inheritance resolved lazily and memoized
// on the model itself.
package mcu

import (
	"log"
	"strings"
)

// ConstKind selects which constant namespace a lookup searches.
type ConstKind int

const (
	CONST_ANY   = ConstKind(0) // match any kind
	CONST_PARAM = ConstKind(1) // memory-map or sizing parameter
	CONST_REG   = ConstKind(2) // fixed register address
)

// Const is one inheritable constant entry of a model.
type Const struct {
	Key   string
	Kind  ConstKind
	Value uint32
	Bits  uint
}

func mask(bits uint) uint32 {
	if bits >= 32 {
		return ^uint32(0)
	}
	return (uint32(1) << bits) - 1
}

// Masked returns the constant value cropped to its width, or the zero
// sentinel for a nil (unknown) constant.
func (c *Const) Masked() uint32 {
	if c == nil {
		return 0
	}
	return c.Value & mask(c.Bits)
}

// Model is a named CPU variant. A model with an Inherit name resolves
// constants missing from its own groups through the parent chain.
type Model struct {
	Name    string
	PCBits  uint // program counter width in bits
	Inherit string
	Consts  [][]Const // ordered constant groups

	parent *Model // memoized by Registry.Lookup on first access
}

// PCMask returns the value mask of the program counter.
func (m *Model) PCMask() uint32 {
	return mask(m.PCBits)
}

// PCSize returns the program counter width in bytes, rounded up. Call
// instructions push this many return-address bytes.
func (m *Model) PCSize() int {
	return int(m.PCBits+7) / 8
}

// ConstByKey finds a constant by key, searching the model's own groups
// first and then the parent chain. A miss is logged and returns nil.
func (m *Model) ConstByKey(kind ConstKind, key string) (c *Const) {
	for _, group := range m.Consts {
		for n := range group {
			item := &group[n]
			if item.Key == key && (kind == CONST_ANY || kind == item.Kind) {
				return item
			}
		}
	}
	if m.parent != nil {
		return m.parent.ConstByKey(kind, key)
	}
	log.Printf("mcu: %v: constant %v not found", m.Name, key)
	return nil
}

// ConstByValue finds a constant by its cropped value; used to map I/O port
// numbers back to named registers. A miss returns nil without logging.
func (m *Model) ConstByValue(kind ConstKind, value uint32) (c *Const) {
	for _, group := range m.Consts {
		for n := range group {
			item := &group[n]
			if item.Value == (value&mask(item.Bits)) && (kind == CONST_ANY || kind == item.Kind) {
				return item
			}
		}
	}
	if m.parent != nil {
		return m.parent.ConstByValue(kind, value)
	}
	return nil
}

// Registry holds the known models of one architecture. The last added
// model is the default for unknown names. A single most-recently-used
// pointer serves repeated lookups of the same name; correctness never
// depends on it.
type Registry struct {
	models []*Model
	index  map[string]*Model // folded name to model
	last   *Model
}

// Add appends models. Lookup order is declaration order; a name added
// twice resolves to the later model.
func (r *Registry) Add(models ...*Model) {
	if r.index == nil {
		r.index = map[string]*Model{}
	}
	for _, m := range models {
		r.models = append(r.models, m)
		r.index[strings.ToLower(m.Name)] = m
	}
}

// Models returns the registered models in declaration order.
func (r *Registry) Models() []*Model {
	return r.models
}

// Lookup resolves a model by case-insensitive name. Unknown names are
// logged and resolve to the default (last) model. The parent reference is
// resolved and memoized on the model node on first access.
func (r *Registry) Lookup(name string) (m *Model) {
	if r.last != nil && strings.EqualFold(name, r.last.Name) {
		return r.last
	}
	m = r.search(name)
	r.last = m
	return
}

func (r *Registry) search(name string) (m *Model) {
	if len(r.models) == 0 {
		return nil
	}
	m = r.index[strings.ToLower(name)]
	if m == nil {
		m = r.models[len(r.models)-1]
		log.Printf("mcu: unknown model %v, using default %v", name, m.Name)
	}
	r.resolve(m)
	return
}

// resolve memoizes the parent chain of m. A missing inherit target, or a
// chain that loops back on itself, leaves the parent unset; the model
// simply has no fallback constants.
func (r *Registry) resolve(m *Model) {
	seen := map[*Model]bool{}
	for ; m.Inherit != "" && m.parent == nil; m = m.parent {
		seen[m] = true
		parent := r.index[strings.ToLower(m.Inherit)]
		if parent == nil {
			log.Printf("mcu: %v: cannot inherit from unknown model %v", m.Name, m.Inherit)
			return
		}
		if seen[parent] {
			log.Printf("mcu: %v: inheritance loop through %v", m.Name, m.Inherit)
			return
		}
		m.parent = parent
	}
}
