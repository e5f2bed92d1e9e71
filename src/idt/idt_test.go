package idt

import "testing"

func TestExceptionNamesComplete(t *testing.T) {
	for v := 0; v < 20; v++ {
		if exceptionNames[v] == "" {
			t.Fatalf("vector %d has no name", v)
		}
	}
}

func TestHasErrorCodeMatchesSDM(t *testing.T) {
	withCode := map[int]bool{
		VecDoubleFault: true, VecInvalidTSS: true, VecSegmentNotPresent: true,
		VecStackFault: true, VecGeneralProtection: true, VecPageFault: true,
		VecAlignmentCheck: true,
	}
	for v := 0; v < 20; v++ {
		if got, want := hasErrorCode(v), withCode[v]; got != want {
			t.Errorf("hasErrorCode(%d) = %v, want %v", v, got, want)
		}
	}
}

func TestIRQRemapRange(t *testing.T) {
	if IRQBase != 32 {
		t.Fatalf("IRQBase = %d, want 32", IRQBase)
	}
	last := IRQBase + 15
	if last != 47 {
		t.Fatalf("last remapped vector = %d, want 47", last)
	}
}

func TestSetGateRoundTrip(t *testing.T) {
	const fakeHandler uintptr = 0x1234_5678_9abc
	SetGate(3, fakeHandler, gateInterrupt)
	e := Table[3]
	got := uintptr(e.OffsetLow) | uintptr(e.OffsetMid)<<16 | uintptr(e.OffsetHigh)<<32
	if got != fakeHandler {
		t.Fatalf("gate offset round-trip = %#x, want %#x", got, fakeHandler)
	}
	if e.Selector != codeSelector {
		t.Fatalf("gate selector = %#x, want %#x", e.Selector, codeSelector)
	}
}
