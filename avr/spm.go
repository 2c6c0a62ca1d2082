// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package avr

import (
	"github.com/ezrec/uclift/il"
	"github.com/ezrec/uclift/mcu"
)

// Register installs the AVR custom intrinsics into ops: the keyed DES
// round of the XMEGA parts, and the three self-programming page
// operations the spm instruction dispatches to.
func (a *Avr) Register(ops *il.Ops) (err error) {
	for _, op := range []struct {
		name string
		fn   il.Intrinsic
	}{
		{"des", a.desRound},
		{"SPM_PAGE_ERASE", a.spmPageErase},
		{"SPM_PAGE_FILL", a.spmPageFill},
		{"SPM_PAGE_WRITE", a.spmPageWrite},
	} {
		if err = ops.Register(op.name, op.fn); err != nil {
			return err
		}
	}
	return nil
}

func pageMask(bits uint32) (mask uint64) {
	return (uint64(1) << bits) - 1
}

func (a *Avr) pageSizeBits(st il.State) (bits uint32) {
	model := a.Models.Lookup(st.Variant())
	return model.ConstByKey(mcu.CONST_PARAM, "page_size").Masked()
}

// spmPageErase pops the target address and rewrites the containing flash
// page to the erased state (all ones).
func (a *Avr) spmPageErase(st il.State) (err error) {
	addr, ok := st.Pop()
	if !ok {
		return ErrOpArgument("SPM_PAGE_ERASE")
	}

	model := a.Models.Lookup(st.Variant())
	bits := a.pageSizeBits(st)
	addr &^= pageMask(bits)

	c := []byte{0xff}
	for i := uint64(0); i < uint64(1)<<bits; i++ {
		st.WriteMemory((addr+i)&uint64(model.PCMask()), c)
	}
	return nil
}

// spmPageFill pops the target address, then r0 and r1, and stores the
// word pair into the temporary page buffer slot the address selects.
func (a *Avr) spmPageFill(st il.State) (err error) {
	addr, ok := st.Pop()
	if !ok {
		return ErrOpArgument("SPM_PAGE_FILL")
	}
	r0, ok := st.Pop()
	if !ok {
		return ErrOpArgument("SPM_PAGE_FILL")
	}
	r1, ok := st.Pop()
	if !ok {
		return ErrOpArgument("SPM_PAGE_FILL")
	}

	bits := a.pageSizeBits(st)
	addr &= pageMask(bits) ^ 1 // word-aligned slot within the page

	st.WriteMemory(addr, []byte{byte(r0)})
	st.WriteMemory(addr+1, []byte{byte(r1)})
	return nil
}

// spmPageWrite pops the target address and copies the temporary page
// buffer into the containing flash page.
func (a *Avr) spmPageWrite(st il.State) (err error) {
	addr, ok := st.Pop()
	if !ok {
		return ErrOpArgument("SPM_PAGE_WRITE")
	}

	model := a.Models.Lookup(st.Variant())
	bits := a.pageSizeBits(st)
	tmpPage, _ := st.ReadRegister("_page")

	addr &= ^pageMask(bits) & uint64(model.PCMask())

	page := make([]byte, 1<<bits)
	if !st.ReadMemory(tmpPage, page) {
		return ErrOpMemory("SPM_PAGE_WRITE")
	}
	if !st.WriteMemory(addr, page) {
		return ErrOpMemory("SPM_PAGE_WRITE")
	}
	return nil
}
