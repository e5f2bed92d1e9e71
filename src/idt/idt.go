// Package idt builds the interrupt descriptor table: the 20 CPU
// exception vectors, the legacy 8259 PIC shim that remaps IRQs 0-15 to
// vectors 32-47, and the software-interrupt gate used for syscalls.
package idt

import (
	"runtime"
	"unsafe"
)

// Gate types used in an IDT entry's type-attribute byte.
const (
	gateInterrupt = 0x8e // present, ring0, 32-bit interrupt gate
	gateTrap      = 0x8f // present, ring0, 32-bit trap gate
	gateUser      = 0xee // present, ring3, interrupt gate (syscall int 0x80)
)

/// Entry is one raw 16-byte IDT descriptor, laid out exactly as the CPU
/// expects it.
type Entry struct {
	OffsetLow  uint16
	Selector   uint16
	IST        uint8
	TypeAttr   uint8
	OffsetMid  uint16
	OffsetHigh uint32
	Zero       uint32
}

/// NumVectors is the size of the IDT: 32 reserved CPU exception/reserved
/// slots plus 224 usable interrupt vectors.
const NumVectors = 256

/// Table is the kernel's single IDT, indexed by vector number.
var Table [NumVectors]Entry

/// Pointer is the CPU-facing {limit, base} descriptor loaded by LIDT.
type Pointer struct {
	Limit uint16
	Base  uint64
}

/// codeSelector is the kernel code segment selector installed by the
/// bootloader's GDT (see boot package); every gate in this table runs in
/// ring 0 regardless of its DPL.
const codeSelector = 0x08

/// SetGate installs a handler address into vector v with the given
/// type-attribute byte.
func SetGate(v int, handler uintptr, typeAttr uint8) {
	Table[v] = Entry{
		OffsetLow:  uint16(handler),
		Selector:   codeSelector,
		IST:        0,
		TypeAttr:   typeAttr,
		OffsetMid:  uint16(handler >> 16),
		OffsetHigh: uint32(handler >> 32),
	}
}

/// Load installs Table as the live IDT via the LIDT instruction.
func Load() {
	ptr := Pointer{
		Limit: uint16(unsafe.Sizeof(Table) - 1),
		Base:  uint64(uintptr(unsafe.Pointer(&Table[0]))),
	}
	runtime.Lidt(unsafe.Pointer(&ptr))
}
