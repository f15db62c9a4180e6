package kernel

import "testing"

func TestWarningLimiterCapsAtMax(t *testing.T) {
	w := newWarningLimiter(16)
	allowed := 0
	for i := 0; i < maxWarningsPerKey+5; i++ {
		if w.Allow("0xbeef") {
			allowed++
		}
	}
	if allowed != maxWarningsPerKey {
		t.Fatalf("expected %d allowed warnings, got %d", maxWarningsPerKey, allowed)
	}
}

func TestWarningLimiterKeysIndependent(t *testing.T) {
	w := newWarningLimiter(16)
	for i := 0; i < maxWarningsPerKey; i++ {
		w.Allow("a")
	}
	if !w.Allow("b") {
		t.Fatal("expected a fresh key to still be allowed")
	}
}
