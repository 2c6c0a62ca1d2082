package mcu

import (
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// LoadScript executes a Starlark model-definition file against the
// registry. The script sees a single builtin:
//
//	model(name, pc, inherit="", params={}, regs={})
//
// where params maps parameter keys to values and regs maps register names
// to fixed I/O addresses. Models append in script order, so a script's
// last model becomes the registry default.
func (r *Registry) LoadScript(filename string, src any) (err error) {
	thread := &starlark.Thread{Name: "mcu"}
	opts := &syntax.FileOptions{}
	env := starlark.StringDict{
		"model": starlark.NewBuiltin("model", r.scriptModel),
	}
	_, err = starlark.ExecFileOptions(opts, thread, filename, src, env)
	return
}

func (r *Registry) scriptModel(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	value = starlark.None

	var name string
	var pc int
	var inherit string
	params := &starlark.Dict{}
	regs := &starlark.Dict{}
	err = starlark.UnpackArgs(b.Name(), args, kwargs,
		"name", &name,
		"pc", &pc,
		"inherit?", &inherit,
		"params?", &params,
		"regs?", &regs,
	)
	if err != nil {
		return
	}
	if pc <= 0 || pc > 32 {
		err = ErrModelPc(name)
		return
	}

	model := &Model{
		Name:    name,
		PCBits:  uint(pc),
		Inherit: inherit,
	}

	var group []Const
	group, err = scriptConsts(params, CONST_PARAM, 32)
	if err != nil {
		return
	}
	if group != nil {
		model.Consts = append(model.Consts, group)
	}
	group, err = scriptConsts(regs, CONST_REG, 8)
	if err != nil {
		return
	}
	if group != nil {
		model.Consts = append(model.Consts, group)
	}

	r.Add(model)
	return
}

func scriptConsts(dict *starlark.Dict, kind ConstKind, bits uint) (group []Const, err error) {
	for _, item := range dict.Items() {
		key, ok := starlark.AsString(item[0])
		if !ok {
			err = ErrModelConst(item[0].String())
			return
		}
		var value int
		value, err = starlark.AsInt32(item[1])
		if err != nil {
			return
		}
		group = append(group, Const{
			Key:   key,
			Kind:  kind,
			Value: uint32(value),
			Bits:  bits,
		})
	}
	return
}
