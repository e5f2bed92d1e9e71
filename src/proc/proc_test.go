package proc

import (
	"testing"
	"unsafe"
)

func resetTable(t *testing.T) {
	t.Helper()
	table = [MaxProcs]Process_t{}
	count = 0
}

func TestSetupInitialStackLaysOutIRETFrame(t *testing.T) {
	var stack [KernelStackSize]byte
	stackBase := uintptr(unsafe.Pointer(&stack[0]))
	const entry uintptr = 0xdead_beef_0000

	sp := setupInitialStack(stackBase, entry)
	top := stackBase + KernelStackSize
	if sp != top-savedWords*8 {
		t.Fatalf("setupInitialStack returned %#x, want %#x", sp, top-savedWords*8)
	}

	words := (*[savedWords]uintptr)(ptrAt(sp))
	for i := 0; i < iretRIP; i++ {
		if words[i] != 0 {
			t.Fatalf("GP register slot %d = %#x, want 0", i, words[i])
		}
	}
	if words[iretRIP+0] != entry {
		t.Fatalf("rip = %#x, want entry %#x", words[iretRIP+0], entry)
	}
	if words[iretRIP+1] != kernelCodeSelector {
		t.Fatalf("cs = %#x, want %#x", words[iretRIP+1], kernelCodeSelector)
	}
	if words[iretRIP+2]&rflagsIF == 0 {
		t.Fatalf("rflags = %#x, interrupt flag not set", words[iretRIP+2])
	}
	if words[iretRIP+3] != top {
		t.Fatalf("rsp = %#x, want top of stack %#x", words[iretRIP+3], top)
	}
	if words[iretRIP+4] != kernelDataSelector {
		t.Fatalf("ss = %#x, want %#x", words[iretRIP+4], kernelDataSelector)
	}
}

func TestDestroyIsIdempotentAndSkipsNonTerminated(t *testing.T) {
	resetTable(t)
	var stack [KernelStackSize]byte
	pid, err := Create(0x1000, uintptr(unsafe.Pointer(&stack[0])), Normal)
	if err != 0 {
		t.Fatalf("Create failed: %d", err)
	}

	// Destroy on a live (non-Terminated) process must be a no-op.
	before := Count()
	Destroy(pid)
	if Count() != before {
		t.Fatalf("Destroy touched a live process: count %d -> %d", before, Count())
	}

	table[pid].State = Terminated
	Destroy(pid)
	if Count() != before-1 {
		t.Fatalf("Destroy should have decremented count: got %d, want %d", Count(), before-1)
	}
	if table[pid].Pid != 0 {
		t.Fatalf("Destroy should clear Pid, got %d", table[pid].Pid)
	}

	// Reaping an already-finalized slot is a no-op, not a double decrement.
	again := Count()
	Destroy(pid)
	if Count() != again {
		t.Fatalf("Destroy should be idempotent: count changed from %d to %d", again, Count())
	}
}
