package idt

import "unsafe"

// codeBytesAt reinterprets n bytes starting at va as a byte slice, for
// reading the faulting instruction stream out of whatever address
// space was active when the exception fired. va may be garbage (a
// wild jump, a corrupted return address); callers must not dereference
// the result without a recover() in place.
func codeBytesAt(va uintptr, n int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(va)), n)
}
