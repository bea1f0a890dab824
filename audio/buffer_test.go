package audio

import (
	"testing"
	"time"
)

func TestBufferAppendSnapshot(t *testing.T) {
	b := NewBuffer(16000)
	if got := b.Snapshot(); len(got) != 0 {
		t.Fatalf("empty buffer snapshot has %d samples", len(got))
	}

	b.Append([]float32{1, 2, 3})
	b.Append(nil)
	b.Append([]float32{4})

	got := b.Snapshot()
	want := []float32{1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if b.Len() != 4 {
		t.Fatalf("Len = %d, want 4", b.Len())
	}
}

func TestBufferSnapshotIsCopy(t *testing.T) {
	b := NewBuffer(16000)
	b.Append([]float32{1, 2})
	snap := b.Snapshot()
	snap[0] = 99
	if got := b.Snapshot()[0]; got != 1 {
		t.Fatalf("mutating a snapshot changed the buffer: got %v", got)
	}

	// The input slice must be copied too.
	in := []float32{5}
	b.Append(in)
	in[0] = 42
	if got := b.Snapshot()[2]; got != 5 {
		t.Fatalf("mutating appended input changed the buffer: got %v", got)
	}
}

func TestBufferDuration(t *testing.T) {
	b := NewBuffer(16000)
	b.Append(make([]float32, 8000))
	if got := b.Duration(); got != 500*time.Millisecond {
		t.Fatalf("Duration = %v, want 500ms", got)
	}
}
