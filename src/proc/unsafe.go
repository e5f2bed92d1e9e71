package proc

import "unsafe"

func ptrAt(va uintptr) unsafe.Pointer {
	return unsafe.Pointer(va)
}
