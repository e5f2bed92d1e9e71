// Package sched implements the round-robin scheduler: dispatching the
// next Ready process on every timer tick, waking Sleeping processes
// whose deadline has passed, and handing back the stack pointer the
// timer ISR trampoline should resume on.
package sched

import (
	"proc"
	"sync/atomic"
	"util"
)

/// QuantumTicks is how many timer ticks a Running process gets before
/// it is preempted in favor of the next Ready process.
const QuantumTicks = 5

var currentTicks uint64
var current proc.Pid_t
var enabled uint32
var quantumLeft int

// ticksPerSec is the calibrated rate the timer actually fires at (see
// apic.LAPIC.TicksPerSec); SetTicksPerSec must be called once the LAPIC
// timer is calibrated, or sleep_ms/sleep_us fall back to this default
// and under- or over-sleep relative to wall-clock time.
var ticksPerSec uint64 = 1000

/// SetTicksPerSec records the timer's calibrated rate so SleepMs/SleepUs
/// can convert a wall-clock duration into a tick count.
func SetTicksPerSec(hz uint64) {
	atomic.StoreUint64(&ticksPerSec, hz)
}

// msToTicks converts ms to ticks, rounding up and never returning 0: a
// caller asking to sleep at all should sleep at least one tick.
func msToTicks(ms uint64) uint64 {
	hz := atomic.LoadUint64(&ticksPerSec)
	t := (ms*hz + 999) / 1000
	if t < 1 {
		t = 1
	}
	return t
}

// usToTicks converts microseconds to ticks the same way msToTicks does.
func usToTicks(us uint64) uint64 {
	hz := atomic.LoadUint64(&ticksPerSec)
	t := (us*hz + 999999) / 1000000
	if t < 1 {
		t = 1
	}
	return t
}

// nsPerTick returns how many nanoseconds one timer tick represents,
// used to attribute CPU time to the Running process's accounting
// record.
func nsPerTick() int64 {
	hz := atomic.LoadUint64(&ticksPerSec)
	if hz == 0 {
		return 0
	}
	return 1000000000 / int64(hz)
}

/// CurrentTicks returns the number of timer interrupts handled since
/// boot.
func CurrentTicks() uint64 {
	return atomic.LoadUint64(&currentTicks)
}

/// Current returns the pid of the process the scheduler believes is
/// Running.
func Current() proc.Pid_t {
	return current
}

/// Disable suppresses dispatch decisions in HandleTimerInterrupt. The
/// scheduler starts out disabled, so ticks that arrive during boot
/// before any process exists leave rsp unchanged until Enable is called.
func Disable() {
	atomic.StoreUint32(&enabled, 0)
}

/// Enable resumes normal dispatch.
func Enable() {
	atomic.StoreUint32(&enabled, 1)
}

/// Init sets the initial Running process (normally pid 1, the first one
/// proc.Create returns) and starts its quantum.
func Init(pid proc.Pid_t) {
	current = pid
	quantumLeft = QuantumTicks
	if p := proc.Get(pid); p != nil {
		p.State = proc.Running
	}
}

/// HandleTimerInterrupt is called from the LAPIC timer ISR with rsp set
/// to the interrupted process's saved stack pointer. It returns the
/// stack pointer the trampoline should resume execution on: either rsp
/// unchanged (no switch happened) or a different process's saved RSP
/// (a switch happened). This return-value-as-resume-point convention is
/// what lets the assembly trampoline stay a few lines long — all the
/// decision making happens here, in Go.
func HandleTimerInterrupt(rsp uintptr) uintptr {
	if atomic.LoadUint32(&enabled) == 0 {
		return rsp
	}

	atomic.AddUint64(&currentTicks, 1)
	tick := CurrentTicks()

	wakeSleepers(tick)

	table := proc.Table()
	reapTerminated(table)
	cur := proc.Get(current)

	switch {
	case cur == nil:
		// the current slot was destroyed out from under us; just pick
		// whoever's next.
	case cur.State == proc.Running:
		cur.RSP = rsp
		cur.Accnt.Systadd(int(nsPerTick()))
		quantumLeft--
		if quantumLeft > 0 {
			ageReady(table)
			return rsp
		}
		cur.State = proc.Ready
	case cur.State == proc.Terminated, cur.State == proc.Sleeping, cur.State == proc.Blocked:
		cur.RSP = rsp
	default:
		cur.RSP = rsp
	}

	next := findNextReady(table, current)
	if next == 0 {
		// nothing runnable at all (shouldn't happen once the idle
		// process exists, but keep the interrupted process running
		// rather than resuming an invalid stack).
		if cur != nil {
			cur.State = proc.Running
		}
		quantumLeft = QuantumTicks
		return rsp
	}

	switchTo(table, next)
	return table[next].RSP
}

// wakeSleepers promotes every Sleeping process whose WakeAtTick has
// passed back to Ready.
func wakeSleepers(tick uint64) {
	table := proc.Table()
	for i := range table {
		p := &table[i]
		if p.State == proc.Sleeping && tick >= p.WakeAtTick {
			p.State = proc.Ready
		}
	}
}

// reapTerminated finalizes every Terminated slot that isn't the process
// currently being dispatched through. A process reaches Terminated on
// its own (ExitCurrent), one tick before this frees its slot; the
// current slot is always skipped since switching away from it hasn't
// happened yet this tick.
func reapTerminated(table *[proc.MaxProcs]proc.Process_t) {
	for i := range table {
		pid := proc.Pid_t(i)
		if pid == current {
			continue
		}
		if table[i].State == proc.Terminated {
			proc.Destroy(pid)
		}
	}
}

// ageReady increments TicksReady for every Ready process on a tick
// where the running process keeps the CPU. findNextReady does not read
// TicksReady; dispatch order is plain round-robin.
func ageReady(table *[proc.MaxProcs]proc.Process_t) {
	for i := range table {
		if table[i].State == proc.Ready {
			table[i].TicksReady++
		}
	}
}

// findNextReady scans round-robin starting just after `from`, returning
// the first Ready process found. Among candidates it prefers the first
// non-Idle priority one it encounters; if every Ready process is
// Idle-priority (or none at all exist), it falls back to the first
// Idle-priority Ready slot, and returns 0 only if truly nothing is
// Ready.
func findNextReady(table *[proc.MaxProcs]proc.Process_t, from proc.Pid_t) proc.Pid_t {
	n := proc.Pid_t(len(table))
	var idleFallback proc.Pid_t
	for i := proc.Pid_t(1); i < n; i++ {
		idx := (from + i) % n
		if idx == 0 {
			continue
		}
		p := &table[idx]
		if p.State != proc.Ready {
			continue
		}
		if p.Prio != proc.Idle {
			return idx
		}
		if idleFallback == 0 {
			idleFallback = idx
		}
	}
	return idleFallback
}

func switchTo(table *[proc.MaxProcs]proc.Process_t, next proc.Pid_t) {
	table[next].State = proc.Running
	table[next].TicksReady = 0
	current = next
	quantumLeft = QuantumTicks
}

/// Sleep transitions pid to Sleeping until wakeTick. It is the caller's
/// responsibility to have already arranged for HandleTimerInterrupt to
/// run (i.e. not called from within a region where interrupts are
/// disabled indefinitely).
func Sleep(pid proc.Pid_t, wakeTick uint64) {
	p := proc.Get(pid)
	if p == nil {
		return
	}
	p.State = proc.Sleeping
	p.WakeAtTick = wakeTick
}

/// Block transitions pid to Blocked; it will not run again until some
/// other subsystem calls Unblock.
func Block(pid proc.Pid_t) {
	if p := proc.Get(pid); p != nil {
		p.State = proc.Blocked
	}
}

/// Unblock transitions a Blocked process back to Ready.
func Unblock(pid proc.Pid_t) {
	if p := proc.Get(pid); p != nil && p.State == proc.Blocked {
		p.State = proc.Ready
	}
}

// The functions below are the cooperative entry points a process calls
// on itself: yield, block, sleep, and exit. Each one updates the
// current process's state and then halts, trusting the timer ISR
// (HandleTimerInterrupt) to arrive on the next tick and actually
// perform the context switch; the halt loop variants (BlockCurrent,
// SleepMs, SleepUs) re-check their own state on every wake since a
// spurious interrupt could resume them before the condition they're
// waiting on has actually changed.

/// Yield gives up the rest of the current process's quantum voluntarily,
/// going Ready immediately rather than waiting for the quantum to run
/// out on its own.
func Yield() {
	if p := proc.Get(current); p != nil {
		p.State = proc.Ready
	}
	quantumLeft = 0
	util.HaltUntilInterrupt()
}

/// BlockCurrent transitions the current process to Blocked and does not
/// return until some other subsystem calls Unblock on it.
func BlockCurrent() {
	pid := current
	if p := proc.Get(pid); p != nil {
		p.State = proc.Blocked
	}
	for {
		util.HaltUntilInterrupt()
		if p := proc.Get(pid); p == nil || p.State != proc.Blocked {
			return
		}
	}
}

func sleepTicks(ticks uint64) {
	pid := current
	p := proc.Get(pid)
	if p == nil {
		return
	}
	p.WakeAtTick = CurrentTicks() + ticks
	p.State = proc.Sleeping
	for {
		util.HaltUntilInterrupt()
		if p := proc.Get(pid); p == nil || p.State != proc.Sleeping {
			return
		}
	}
}

/// SleepMs puts the current process to sleep for at least ms
/// milliseconds, converting to ticks via the calibrated timer rate
/// (ceiling, minimum one tick).
func SleepMs(ms uint64) {
	sleepTicks(msToTicks(ms))
}

/// SleepUs puts the current process to sleep for at least us
/// microseconds.
func SleepUs(us uint64) {
	sleepTicks(usToTicks(us))
}

/// ExitCurrent marks the current process Terminated. The next timer
/// tick reaps it (see reapTerminated) once it is no longer current;
/// ExitCurrent itself never returns.
func ExitCurrent() {
	if p := proc.Get(current); p != nil {
		p.State = proc.Terminated
	}
	for {
		util.HaltUntilInterrupt()
	}
}
