package msi

import "testing"

func TestAllocExhaustsThenFrees(t *testing.T) {
	var got []Msivec_t
	for {
		v, ok := Alloc()
		if !ok {
			break
		}
		got = append(got, v)
	}
	if len(got) == 0 {
		t.Fatalf("expected at least one vector before exhaustion")
	}
	if _, ok := Alloc(); ok {
		t.Fatalf("expected exhaustion after draining all vectors")
	}
	for _, v := range got {
		Free(v)
	}
	if _, ok := Alloc(); !ok {
		t.Fatalf("expected a vector to be available after Free")
	}
}
