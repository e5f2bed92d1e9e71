package ahci

import (
	"mem"
	"unsafe"
)

func ptrAt(va uintptr) unsafe.Pointer {
	return unsafe.Pointer(va)
}

func pa32ToPa(pa uint32) mem.Pa_t {
	return mem.Pa_t(pa)
}
