package proot

import (
	"testing"
)

func TestAlignUp(t *testing.T) {
	tests := []struct {
		n, align, want int
	}{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{15, 16, 16},
		{17, 16, 32},
	}

	for _, tt := range tests {
		if got := alignUp(tt.n, tt.align); got != tt.want {
			t.Errorf("alignUp(%d, %d) = %d, want %d", tt.n, tt.align, got, tt.want)
		}
	}
}

func TestRewriteCounter(t *testing.T) {
	c := make(rewriteCounter)
	c.add(0, kindInPlace)
	c.add(0, kindInPlace)
	c.add(0, kindRelocated)
	c.add(0, kindSkipped)

	if len(c) != 1 {
		t.Fatalf("counter has %d entries, want 1", len(c))
	}
	for _, s := range c {
		if s.InPlace != 2 || s.Relocated != 1 || s.Skipped != 1 {
			t.Errorf("counter = %+v", *s)
		}
	}
}
