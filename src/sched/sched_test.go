package sched

import (
	"proc"
	"testing"
	"unsafe"
)

func resetTable(t *testing.T) *[proc.MaxProcs]proc.Process_t {
	t.Helper()
	table := proc.Table()
	for i := range table {
		table[i] = proc.Process_t{}
	}
	return table
}

func mkReady(table *[proc.MaxProcs]proc.Process_t, pid proc.Pid_t, prio proc.Priority_t) {
	table[pid] = proc.Process_t{Pid: pid, State: proc.Ready, Prio: prio}
}

func TestFindNextReadyRoundRobin(t *testing.T) {
	table := resetTable(t)
	mkReady(table, 1, proc.Normal)
	mkReady(table, 2, proc.Normal)
	mkReady(table, 3, proc.Normal)

	got := findNextReady(table, 1)
	if got != 2 {
		t.Fatalf("findNextReady(from=1) = %d, want 2", got)
	}
	got = findNextReady(table, 2)
	if got != 3 {
		t.Fatalf("findNextReady(from=2) = %d, want 3", got)
	}
	got = findNextReady(table, 3)
	if got != 1 {
		t.Fatalf("findNextReady(from=3) = %d, want 1 (wrap around)", got)
	}
}

func TestFindNextReadyPrefersNonIdle(t *testing.T) {
	table := resetTable(t)
	mkReady(table, 1, proc.Idle)
	mkReady(table, 2, proc.Normal)

	got := findNextReady(table, 0)
	if got != 2 {
		t.Fatalf("findNextReady should skip Idle in favor of Normal, got %d", got)
	}
}

func TestFindNextReadyFallsBackToIdle(t *testing.T) {
	table := resetTable(t)
	mkReady(table, 1, proc.Idle)

	got := findNextReady(table, 0)
	if got != 1 {
		t.Fatalf("findNextReady should fall back to idle-priority process, got %d", got)
	}
}

func TestFindNextReadyNoneReady(t *testing.T) {
	table := resetTable(t)
	got := findNextReady(table, 0)
	if got != 0 {
		t.Fatalf("findNextReady with nothing ready = %d, want 0", got)
	}
}

func TestHandleTimerInterruptDisabled(t *testing.T) {
	resetTable(t)
	Disable()
	defer Enable()
	rsp := uintptr(0xdead)
	got := HandleTimerInterrupt(rsp)
	if got != rsp {
		t.Fatalf("disabled scheduler should not change rsp: got %#x want %#x", got, rsp)
	}
}

func TestHandleTimerInterruptPreemptsAfterQuantum(t *testing.T) {
	table := resetTable(t)
	mkReady(table, 1, proc.Normal)
	mkReady(table, 2, proc.Normal)
	table[1].State = proc.Running
	Init(1)
	Enable()

	for i := 0; i < QuantumTicks-1; i++ {
		HandleTimerInterrupt(uintptr(i + 1))
		if Current() != 1 {
			t.Fatalf("should not have switched before quantum expired (tick %d)", i)
		}
	}
	HandleTimerInterrupt(uintptr(QuantumTicks))
	if Current() != 2 {
		t.Fatalf("should have switched to pid 2 after quantum expired, current=%d", Current())
	}
}

func TestSingleRunningInvariant(t *testing.T) {
	table := resetTable(t)
	mkReady(table, 1, proc.Normal)
	mkReady(table, 2, proc.Normal)
	table[1].State = proc.Running
	Init(1)
	Enable()

	for tick := 1; tick <= QuantumTicks*3; tick++ {
		HandleTimerInterrupt(uintptr(tick))
		running := 0
		for i := range table {
			if table[i].State == proc.Running {
				running++
			}
		}
		if running != 1 {
			t.Fatalf("tick %d: expected exactly 1 running process, got %d", tick, running)
		}
	}
}

func TestSleepWakesAtDeadline(t *testing.T) {
	table := resetTable(t)
	mkReady(table, 1, proc.Normal)
	Sleep(1, 100)
	if table[1].State != proc.Sleeping {
		t.Fatalf("process should be Sleeping")
	}
	wakeSleepers(99)
	if table[1].State != proc.Sleeping {
		t.Fatalf("should not wake before deadline")
	}
	wakeSleepers(100)
	if table[1].State != proc.Ready {
		t.Fatalf("should wake once tick reaches deadline")
	}
}

func TestMsToTicksRoundsUpAndFloorsAtOne(t *testing.T) {
	SetTicksPerSec(100)
	defer SetTicksPerSec(1000)

	if got := msToTicks(10); got != 1 {
		t.Fatalf("msToTicks(10) at 100Hz = %d, want 1", got)
	}
	if got := msToTicks(11); got != 2 {
		t.Fatalf("msToTicks(11) at 100Hz = %d, want 2 (rounds up)", got)
	}
	if got := msToTicks(0); got != 1 {
		t.Fatalf("msToTicks(0) = %d, want 1 (never sleeps zero ticks)", got)
	}
}

func TestUsToTicksRoundsUpAndFloorsAtOne(t *testing.T) {
	SetTicksPerSec(1000)
	defer SetTicksPerSec(1000)

	if got := usToTicks(1000); got != 1 {
		t.Fatalf("usToTicks(1000) at 1000Hz = %d, want 1", got)
	}
	if got := usToTicks(1500); got != 2 {
		t.Fatalf("usToTicks(1500) at 1000Hz = %d, want 2 (rounds up)", got)
	}
}

func TestReapTerminatedSkipsCurrentAndFinalizesOthers(t *testing.T) {
	table := resetTable(t)
	mkReady(table, 1, proc.Normal)
	table[1].State = proc.Running
	// pid 2 goes through proc.Create so the live count includes it
	// before it terminates, as it would for a real process.
	var stack [proc.KernelStackSize]byte
	if pid, err := proc.Create(0x1000, uintptr(unsafe.Pointer(&stack[0])), proc.Normal); err != 0 || pid != 2 {
		t.Fatalf("proc.Create = (%d, %d), want pid 2", pid, err)
	}
	table[2].State = proc.Terminated
	Init(1)

	reapTerminated(table)

	if got := proc.Get(1); got == nil {
		t.Fatalf("reapTerminated must not touch the current process")
	}
	if proc.Count() < 0 {
		t.Fatalf("proc.Count() went negative: %d", proc.Count())
	}
	// pid 2's slot is now free for reuse.
	if table[2].Pid != 0 {
		t.Fatalf("pid 2's slot should be cleared after reaping, got Pid=%d", table[2].Pid)
	}

	// reaping again must be a no-op, not a double decrement.
	before := proc.Count()
	reapTerminated(table)
	if proc.Count() != before {
		t.Fatalf("reapTerminated should be idempotent: count changed from %d to %d", before, proc.Count())
	}
}
