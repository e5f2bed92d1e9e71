// Package scall dispatches the kernel's single software-interrupt
// syscall gate (int 0x80) to a small table of handlers. This is a
// skeleton: SysFramebufferPointer is numbered, but no handler is
// registered for it or any other number in this tree, so every call
// returns "no such syscall" until something calls Register. There is
// no user/kernel address-space split for it to validate pointers against.
package scall

import (
	"defs"
	"idt"
)

// Syscall numbers. Matches the convention of a flat, densely packed
// table indexed by RAX at entry.
const (
	SysFramebufferPointer = 0
)

const errNoSuchSyscall = ^uint64(0) // all-ones, matches the skeleton's sentinel return

/// Handler services one syscall number given its three argument
/// registers, returning the value to place back in RAX.
type Handler func(arg1, arg2, arg3 uint64) uint64

var table = map[uint64]Handler{}

/// Register installs fn as the handler for syscall number n. Called
/// during boot before interrupts are enabled.
func Register(n uint64, fn Handler) {
	table[n] = fn
}

/// Dispatch is the int-0x80 entry point: it reads the syscall number
/// and arguments out of the trap frame and writes the return value
/// back into RAX.
func Dispatch(f *idt.Frame) {
	fn, ok := table[f.RAX]
	if !ok {
		f.RAX = errNoSuchSyscall
		return
	}
	f.RAX = fn(f.RDI, f.RSI, f.RDX)
}

/// InstallDispatcher wires the syscall gate (idt.VecSyscall) to
/// handler, the assembly trampoline that builds an idt.Frame and calls
/// Dispatch.
func InstallDispatcher(handler uintptr) {
	idt.InstallSyscall(handler)
}

// Errno packs a negative defs.Err_t the way every other kernel
// interface returns failure, for handlers that need to report one
// instead of a data value.
func Errno(e defs.Err_t) uint64 {
	return uint64(int64(-e))
}
