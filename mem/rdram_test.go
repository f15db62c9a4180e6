package mem

import "testing"

func TestWriteReadU32RoundTrip(t *testing.T) {
	r := New(4096)
	r.WriteU32(0x100, 0xDEADBEEF)
	if got := r.ReadU32(0x100); got != 0xDEADBEEF {
		t.Fatalf("got %#x, want %#x", got, 0xDEADBEEF)
	}
}

func TestWriteU64RoundTrip(t *testing.T) {
	r := New(4096)
	r.WriteU64(0x200, 1)
	if got := r.ReadU64(0x200); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}

func TestNullAddressWriteIsNoop(t *testing.T) {
	r := New(4096)
	r.WriteU32(0, 0xFFFFFFFF)
	if got := r.ReadU32(0); got != 0 {
		t.Fatalf("expected write to address 0 to be a no-op, got %#x", got)
	}
}

func TestOutOfRangeWriteIsNoop(t *testing.T) {
	r := New(16)
	r.WriteU32(1000, 42)
	if got := r.ReadU32(1000); got != 0 {
		t.Fatalf("expected out-of-range write to be a no-op, got %d", got)
	}
}

func TestReadMemoryTruncatesAtBufferEnd(t *testing.T) {
	r := New(16)
	r.WriteBytes(12, []byte{1, 2, 3, 4, 5})
	buf := make([]byte, 5)
	n := r.ReadMemory(12, buf)
	if n != 4 {
		t.Fatalf("expected truncated read of 4 bytes, got %d", n)
	}
}
