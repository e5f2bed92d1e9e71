package idt

// VecSyscall is the legacy software-interrupt syscall gate. Software
// interrupts (rather than SYSCALL/SYSRET) are used here because the
// syscall dispatcher (package scall) is a skeleton, not a full ABI.
const VecSyscall = 0x80

/// InstallSyscall wires the int 0x80 gate to handler, with DPL=3 so
/// a software interrupt from any privilege level can reach it (the
/// dispatcher itself still runs at ring 0). There is no Non-goal
/// exception for this: user-mode protection is out of scope, so every
/// caller is trusted regardless of the ring the instruction executed in.
func InstallSyscall(handler uintptr) {
	SetGate(VecSyscall, handler, gateUser)
}
