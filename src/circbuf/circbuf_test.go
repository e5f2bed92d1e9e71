package circbuf

import "testing"

func TestPushPopOrder(t *testing.T) {
	var cb Circbuf_t
	cb.Init(4)
	for _, b := range []uint8{1, 2, 3} {
		if !cb.Push(b) {
			t.Fatalf("Push(%d) failed unexpectedly", b)
		}
	}
	for _, want := range []uint8{1, 2, 3} {
		got, ok := cb.Pop()
		if !ok || got != want {
			t.Fatalf("Pop() = %d,%v want %d,true", got, ok, want)
		}
	}
	if !cb.Empty() {
		t.Fatalf("buffer should be empty")
	}
}

func TestPushFailsWhenFull(t *testing.T) {
	var cb Circbuf_t
	cb.Init(2)
	if !cb.Push(1) || !cb.Push(2) {
		t.Fatalf("first two pushes should succeed")
	}
	if cb.Push(3) {
		t.Fatalf("push into full buffer should fail")
	}
}

func TestWraparound(t *testing.T) {
	var cb Circbuf_t
	cb.Init(3)
	cb.Push(1)
	cb.Push(2)
	cb.Pop()
	cb.Push(3)
	cb.Push(4)
	var got []uint8
	for {
		b, ok := cb.Pop()
		if !ok {
			break
		}
		got = append(got, b)
	}
	want := []uint8{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}
