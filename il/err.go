package il

import (
	"github.com/ezrec/uclift/translate"
)

var f = translate.From

type ErrOpDuplicate string

func (eo ErrOpDuplicate) Error() string {
	return f("intrinsic %v registered twice", string(eo))
}
