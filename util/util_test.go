package util

import (
	"testing"
	"time"
)

func TestSkipThrottler(t *testing.T) {
	t.Parallel()
	tt := NewSkipThrottler(time.Hour)
	if !tt.Ok() {
		t.Fatalf("first event throttled")
	}
	for range 3 {
		if tt.Ok() {
			t.Fatalf("expected throttled")
		}
	}
	if n := tt.Skipped(); n != 3 {
		t.Fatalf("%d, expected %d", n, 3)
	}
	if n := tt.Skipped(); n != 0 {
		t.Fatalf("%d, expected %d", n, 0)
	}

	fast := NewSkipThrottler(0)
	for range 3 {
		if !fast.Ok() {
			t.Fatalf("zero period throttled")
		}
	}
}
