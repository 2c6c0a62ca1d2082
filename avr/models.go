// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package avr

import "github.com/ezrec/uclift/mcu"

// I/O register aliases shared by the classic megaAVR parts.
var regCommon = []mcu.Const{
	{Key: "spl", Kind: mcu.CONST_REG, Value: 0x3d, Bits: 8},
	{Key: "sph", Kind: mcu.CONST_REG, Value: 0x3e, Bits: 8},
	{Key: "sreg", Kind: mcu.CONST_REG, Value: 0x3f, Bits: 8},
	{Key: "spmcsr", Kind: mcu.CONST_REG, Value: 0x37, Bits: 8},
}

var memsizeCommon = []mcu.Const{
	{Key: "eeprom_size", Kind: mcu.CONST_PARAM, Value: 512, Bits: 32},
	{Key: "io_size", Kind: mcu.CONST_PARAM, Value: 0x40, Bits: 32},
	{Key: "sram_start", Kind: mcu.CONST_PARAM, Value: 0x60, Bits: 32},
	{Key: "sram_size", Kind: mcu.CONST_PARAM, Value: 1024, Bits: 32},
}

var memsizeBig = []mcu.Const{
	{Key: "eeprom_size", Kind: mcu.CONST_PARAM, Value: 512, Bits: 32},
	{Key: "io_size", Kind: mcu.CONST_PARAM, Value: 0x1ff, Bits: 32},
	{Key: "sram_start", Kind: mcu.CONST_PARAM, Value: 0x200, Bits: 32},
	{Key: "sram_size", Kind: mcu.CONST_PARAM, Value: 0x2000, Bits: 32},
}

var memsizeXmega128a4u = []mcu.Const{
	{Key: "eeprom_size", Kind: mcu.CONST_PARAM, Value: 0x800, Bits: 32},
	{Key: "io_size", Kind: mcu.CONST_PARAM, Value: 0x1000, Bits: 32},
	{Key: "sram_start", Kind: mcu.CONST_PARAM, Value: 0x800, Bits: 32},
	{Key: "sram_size", Kind: mcu.CONST_PARAM, Value: 0x2000, Bits: 32},
}

var pagesize5Bits = []mcu.Const{
	{Key: "page_size", Kind: mcu.CONST_PARAM, Value: 5, Bits: 8},
}

var pagesize7Bits = []mcu.Const{
	{Key: "page_size", Kind: mcu.CONST_PARAM, Value: 7, Bits: 8},
}

// DefaultModels builds the registry of supported MCU variants. The last
// entry, the ATmega8, doubles as the fallback for unknown variant names.
func DefaultModels() (reg *mcu.Registry) {
	reg = &mcu.Registry{}
	reg.Add(&mcu.Model{
		Name:   "ATmega640",
		PCBits: 15,
		Consts: [][]mcu.Const{regCommon, memsizeBig, pagesize7Bits},
	})
	reg.Add(&mcu.Model{
		Name:   "ATxmega128a4u",
		PCBits: 17,
		Consts: [][]mcu.Const{regCommon, memsizeXmega128a4u, pagesize7Bits},
	})
	reg.Add(&mcu.Model{Name: "ATmega1280", PCBits: 16, Inherit: "ATmega640"})
	reg.Add(&mcu.Model{Name: "ATmega1281", PCBits: 16, Inherit: "ATmega640"})
	reg.Add(&mcu.Model{Name: "ATmega2560", PCBits: 17, Inherit: "ATmega640"})
	reg.Add(&mcu.Model{Name: "ATmega2561", PCBits: 17, Inherit: "ATmega640"})
	reg.Add(&mcu.Model{Name: "ATmega88", PCBits: 8, Inherit: "ATmega8"})
	reg.Add(&mcu.Model{
		Name:   "ATmega8",
		PCBits: 13,
		Consts: [][]mcu.Const{regCommon, memsizeCommon, pagesize5Bits},
	})
	return reg
}
