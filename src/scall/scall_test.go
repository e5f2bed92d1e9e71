package scall

import (
	"idt"
	"testing"
)

func TestDispatchUnknownSyscallReturnsSentinel(t *testing.T) {
	f := &idt.Frame{RAX: 0xDEAD}
	Dispatch(f)
	if f.RAX != errNoSuchSyscall {
		t.Fatalf("RAX = %#x, want sentinel %#x", f.RAX, errNoSuchSyscall)
	}
}

func TestDispatchRoutesRegisteredHandler(t *testing.T) {
	Register(0xABC, func(a1, a2, a3 uint64) uint64 {
		return a1 + a2 + a3
	})
	f := &idt.Frame{RAX: 0xABC, RDI: 1, RSI: 2, RDX: 3}
	Dispatch(f)
	if f.RAX != 6 {
		t.Fatalf("RAX = %d, want 6", f.RAX)
	}
}
