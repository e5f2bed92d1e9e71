package stats

import "testing"

type fakeCounters struct {
	Hits   Counter_t
	Misses Counter_t
	Busy   Cycles_t
}

func TestProfileOneSamplePerCounterField(t *testing.T) {
	c := fakeCounters{Hits: 5, Misses: 2, Busy: 100}
	p := Profile(c)
	if len(p.Sample) != 3 {
		t.Fatalf("len(Sample) = %d, want 3", len(p.Sample))
	}
	if len(p.Function) != 3 {
		t.Fatalf("len(Function) = %d, want 3", len(p.Function))
	}
}

func TestProfileSkipsNonCounterFields(t *testing.T) {
	type mixed struct {
		Hits  Counter_t
		Label string
	}
	p := Profile(mixed{Hits: 1, Label: "x"})
	if len(p.Sample) != 1 {
		t.Fatalf("len(Sample) = %d, want 1 (Label should be skipped)", len(p.Sample))
	}
}
