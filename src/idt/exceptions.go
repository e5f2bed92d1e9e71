package idt

import (
	"caller"
	"defs"
	"elfinfo"
	"fmt"
	"runtime"
)

// faultDisasmInsns is how many instructions to disassemble around the
// faulting RIP. maxInsnLen is the longest possible x86-64 instruction
// encoding, so faultDisasmInsns*maxInsnLen bytes is always enough.
const (
	faultDisasmInsns = 8
	maxInsnLen       = 15
)

/// Frame is the register snapshot the trap trampoline hands to an
/// exception handler. It mirrors the layout runtime.trap pushes before
/// calling back into Go.
type Frame struct {
	RAX, RBX, RCX, RDX    uint64
	RSI, RDI, RBP         uint64
	R8, R9, R10, R11      uint64
	R12, R13, R14, R15    uint64
	Vector, ErrorCode     uint64
	RIP, CS, RFLAGS       uint64
	RSP, SS               uint64
}

// Exception vectors 0-19, named exactly as the Intel SDM names them.
const (
	VecDivideError       = 0
	VecDebug             = 1
	VecNMI               = 2
	VecBreakpoint        = 3
	VecOverflow          = 4
	VecBoundRange        = 5
	VecInvalidOpcode     = 6
	VecDeviceNotAvail    = 7
	VecDoubleFault       = 8
	VecCoprocessorSeg    = 9
	VecInvalidTSS        = 10
	VecSegmentNotPresent = 11
	VecStackFault        = 12
	VecGeneralProtection = 13
	VecPageFault         = 14
	VecReserved15        = 15
	VecFPUError          = 16
	VecAlignmentCheck    = 17
	VecMachineCheck      = 18
	VecSIMDFPException   = 19
)

var exceptionNames = [20]string{
	"divide error", "debug", "NMI", "breakpoint", "overflow",
	"bound range exceeded", "invalid opcode", "device not available",
	"double fault", "coprocessor segment overrun", "invalid TSS",
	"segment not present", "stack-segment fault", "general protection fault",
	"page fault", "reserved", "x87 FPU error", "alignment check",
	"machine check", "SIMD FP exception",
}

// hasErrorCode reports whether the CPU pushes an error code for vector v
// before transferring control, per the SDM's exception reference.
func hasErrorCode(v int) bool {
	switch v {
	case VecDoubleFault, VecInvalidTSS, VecSegmentNotPresent,
		VecStackFault, VecGeneralProtection, VecPageFault, VecAlignmentCheck:
		return true
	default:
		return false
	}
}

/// Dispatch is called by runtime.trap for every vector 0-19. It logs the
/// fault, dumps the call chain that led to it, and panics: none of these
/// vectors are recoverable without a user-mode fault handler, which this
/// kernel does not have (no demand paging, no signal delivery).
func Dispatch(f *Frame) {
	v := int(f.Vector)
	name := "unknown exception"
	if v >= 0 && v < len(exceptionNames) {
		name = exceptionNames[v]
	}
	cr2 := uintptr(0)
	if v == VecPageFault {
		cr2 = runtime.Rcr2()
	}
	fmt.Printf("idt: vector %d (%s) at rip=%#x errcode=%#x", v, name, f.RIP, f.ErrorCode)
	if v == VecPageFault {
		fmt.Printf(" cr2=%#x", cr2)
	}
	fmt.Printf("\n")
	caller.Callerdump(0)
	dumpFaultCode(f.RIP)
	panic(fmt.Sprintf("fatal exception: %s (%s)", name, defs.Errstr(-defs.EFAULT)))
}

// dumpFaultCode disassembles a few instructions at rip and prints them
// alongside the register/call dump, the same crash-site listing
// elfinfo.Disassemble produces for a loaded ELF image. rip came from a
// possibly-corrupted Frame, so a bad address reading past unmapped
// memory must not crash the fault handler itself.
func dumpFaultCode(rip uint64) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("idt: could not disassemble fault site: %v\n", r)
		}
	}()
	code := codeBytesAt(uintptr(rip), faultDisasmInsns*maxInsnLen)
	for _, line := range elfinfo.Disassemble(code, rip, faultDisasmInsns) {
		fmt.Printf("idt: %s\n", line)
	}
}

/// InstallExceptions wires vectors 0-19 to Dispatch. Vector 2 (NMI) and
/// vector 8 (double fault) use a dedicated interrupt-stack-table slot so a
/// stack-related fault doesn't recurse onto the same broken stack; every
/// other vector runs on the current stack.
func InstallExceptions(handler uintptr) {
	for v := 0; v < 20; v++ {
		typ := uint8(gateInterrupt)
		SetGate(v, handler, typ)
		if v == VecNMI || v == VecDoubleFault {
			Table[v].IST = 1
		}
	}
}
