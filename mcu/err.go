package mcu

import (
	"github.com/ezrec/uclift/translate"
)

var f = translate.From

type ErrModelPc string

func (ep ErrModelPc) Error() string {
	return f("model %v: pc width out of range", string(ep))
}

type ErrModelConst string

func (ec ErrModelConst) Error() string {
	return f("model constant key %v is not a string", string(ec))
}
