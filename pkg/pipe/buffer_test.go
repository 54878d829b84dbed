package pipe

import (
	"strings"
	"testing"
)

func TestCollectWithinLimit(t *testing.T) {
	b := Collect(strings.NewReader("hello"), 1024)
	<-b.Done
	if got := b.Buffer.String(); got != "hello" {
		t.Errorf("Buffer = %q, want %q", got, "hello")
	}
	if b.Truncated() {
		t.Error("Truncated() = true, want false")
	}
}

func TestCollectTruncates(t *testing.T) {
	b := Collect(strings.NewReader("0123456789"), 4)
	<-b.Done
	// 多收一个字节用于截断检测
	if got := b.Buffer.Len(); got != 5 {
		t.Errorf("Buffer.Len() = %d, want 5", got)
	}
	if !b.Truncated() {
		t.Error("Truncated() = false, want true")
	}
}

func TestLines(t *testing.T) {
	var got []string
	err := Lines(strings.NewReader("a\nb\nc"), func(s string) {
		got = append(got, s)
	})
	if err != nil {
		t.Fatalf("Lines() error = %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Lines() collected %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLinesTooLong(t *testing.T) {
	long := strings.Repeat("x", 2<<20)
	err := Lines(strings.NewReader(long), func(string) {})
	if err == nil {
		t.Error("Lines() expected error for oversized line")
	}
}
