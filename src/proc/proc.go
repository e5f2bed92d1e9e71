// Package proc implements the fixed-size process table: process records,
// their lifecycle states, and Create, which hands out the first free
// slot as the process ID. Kernel stacks are supplied by the caller.
package proc

import (
	"accnt"
	"defs"
)

/// MaxProcs is the size of the process table. There is no dynamic growth:
/// the table is a flat array allocated once at boot.
const MaxProcs = 64

/// KernelStackSize is the size, in bytes, of the kernel stack allocated
/// for every process.
const KernelStackSize = 64 * 1024

/// State_t enumerates a process's scheduling state.
type State_t int

// Terminated is deliberately the zero value: a freshly zeroed table slot
// reads as "free" without any explicit initialization pass at boot.
const (
	Terminated State_t = iota
	Ready
	Running
	Blocked
	Sleeping
)

func (s State_t) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Blocked:
		return "blocked"
	case Sleeping:
		return "sleeping"
	case Terminated:
		return "terminated"
	default:
		return "invalid"
	}
}

/// Priority_t classifies processes for dispatch. Only Idle is treated
/// specially: an Idle process is dispatched only when no other Ready
/// process exists. Normal, High and Realtime processes share one
/// round-robin order; a higher value does not run first.
type Priority_t int

const (
	Idle Priority_t = iota
	Normal
	High
	Realtime
)

/// Pid_t identifies a slot in the process table. Slot 0 is never handed
/// out to a real process; it is reserved so a zero-value Pid_t reads as
/// "no process" in code that hasn't been handed a real one yet.
type Pid_t int

/// Process_t is one entry in the process table.
type Process_t struct {
	Pid   Pid_t
	State State_t
	Prio  Priority_t

	// RSP is the saved stack pointer. While State == Running this field
	// is stale (the live value lives in the CPU); every other state
	// keeps it current so the scheduler can resume the process by
	// loading it.
	RSP uintptr

	StackBase uintptr
	Entry     uintptr
	PML4      uintptr

	// TicksReady counts scheduler ticks this process has spent Ready
	// since it was last dispatched (see sched.ageReady and
	// sched.switchTo). sched.findNextReady does not consult it.
	TicksReady uint64

	// WakeAtTick is the tick count at which a Sleeping process becomes
	// Ready again. Meaningless in any other state.
	WakeAtTick uint64

	Accnt accnt.Accnt_t
}

var table [MaxProcs]Process_t
var count int

/// Table exposes the process table for the scheduler. It is a fixed-size
/// array, not a slice, so nothing can accidentally grow or shrink it.
func Table() *[MaxProcs]Process_t {
	return &table
}

/// Create installs a new process in the first free (Terminated, and not
/// slot 0) table slot, with the given entry point, stack base, and
/// priority, and returns its pid. It returns -defs.EAGAIN if the table is
/// full.
func Create(entry, stackBase uintptr, prio Priority_t) (Pid_t, defs.Err_t) {
	for i := 1; i < MaxProcs; i++ {
		p := &table[i]
		if p.State != Terminated {
			continue
		}
		*p = Process_t{
			Pid:       Pid_t(i),
			State:     Ready,
			Prio:      prio,
			Entry:     entry,
			StackBase: stackBase,
			RSP:       setupInitialStack(stackBase, entry),
		}
		count++
		return p.Pid, 0
	}
	return 0, -defs.EAGAIN
}

// kernelCodeSelector and kernelDataSelector must match the GDT the
// bootloader installs (see idt.codeSelector); duplicated here rather
// than imported to avoid a proc->idt dependency, the same tradeoff
// idt/timer.go makes for VecTimer.
const (
	kernelCodeSelector = 0x08
	kernelDataSelector = 0x10
	rflagsIF           = 1 << 9 // interrupt-enable flag
)

// savedWords is the synthetic frame's word count: 15 zeroed
// general-purpose-register slots (RAX, RBX, RCX, RDX, RSI, RDI, RBP,
// R8-R15) followed by a 5-word IRET frame (RIP, CS, RFLAGS, RSP, SS).
const savedWords = 20

// iretRIP is the index of the first IRET-frame word within the saved
// word block.
const iretRIP = 15

// setupInitialStack lays out a synthetic interrupt frame at the top of
// a freshly allocated kernel stack: a zeroed general-purpose-register
// save area followed by an IRET frame (ss, rsp, rflags with interrupts
// enabled, cs, rip=entry), so the first context switch into this
// process "returns" into Entry via iretq with a clean register file,
// without special-casing its first dispatch. The returned stack
// pointer is the bottom of this frame, matching what the scheduler's
// restore path expects to find in every other saved RSP.
func setupInitialStack(stackBase, entry uintptr) uintptr {
	top := stackBase + KernelStackSize
	sp := top - savedWords*8
	words := (*[savedWords]uintptr)(ptrAt(sp))
	for i := range words {
		words[i] = 0
	}
	words[iretRIP+0] = entry
	words[iretRIP+1] = kernelCodeSelector
	words[iretRIP+2] = rflagsIF
	words[iretRIP+3] = top
	words[iretRIP+4] = kernelDataSelector
	return sp
}

/// Get returns the process at pid, or nil if pid is out of range or the
/// slot is Terminated.
func Get(pid Pid_t) *Process_t {
	if pid <= 0 || int(pid) >= MaxProcs {
		return nil
	}
	p := &table[pid]
	if p.State == Terminated {
		return nil
	}
	return p
}

/// Destroy finalizes an already-Terminated slot, decrementing the live
/// process count so Count() reflects reality. A process transitions to
/// Terminated on its own (via the scheduler's exit_current path); this
/// is the reaper's side of that handoff, called once the slot is no
/// longer current. It deliberately does not go through Get, which
/// treats Terminated as "gone" for every other caller's purposes.
/// Destroy is idempotent: reaping an already-finalized slot (Pid
/// already cleared, or reused by a later Create) is a no-op.
func Destroy(pid Pid_t) {
	if pid <= 0 || int(pid) >= MaxProcs {
		return
	}
	p := &table[pid]
	if p.State != Terminated || p.Pid != pid {
		return
	}
	p.Pid = 0
	count--
}

/// Count returns the number of live (non-Terminated) processes.
func Count() int {
	return count
}
