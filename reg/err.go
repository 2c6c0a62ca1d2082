package reg

import (
	"github.com/ezrec/uclift/translate"
)

var f = translate.From

type ErrBindDuplicate string

func (eb ErrBindDuplicate) Error() string {
	return f("register %v bound twice", string(eb))
}
