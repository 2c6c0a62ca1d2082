package avr

import (
	"github.com/ezrec/uclift/translate"
)

var f = translate.From

type ErrOpArgument string

func (eo ErrOpArgument) Error() string {
	return f("intrinsic %v missing stack argument", string(eo))
}

type ErrOpMemory string

func (eo ErrOpMemory) Error() string {
	return f("intrinsic %v memory access failed", string(eo))
}

type ErrOpRound int

func (eo ErrOpRound) Error() string {
	return f("cipher round %v out of range", int(eo))
}
