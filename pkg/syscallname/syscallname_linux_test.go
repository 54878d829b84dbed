package syscallname

import (
	"runtime"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	if !Supported() {
		t.Skip("syscall table not available on this architecture")
	}

	no, ok := Number("openat")
	if !ok {
		t.Fatal("openat missing from architecture table")
	}
	name, err := Name(uint(no))
	if err != nil {
		t.Fatalf("Name() error = %v", err)
	}
	if name != "openat" {
		t.Errorf("Name(%d) = %q, want openat", no, name)
	}
}

func TestNumberLegacy(t *testing.T) {
	if !Supported() {
		t.Skip("syscall table not available on this architecture")
	}

	_, hasOpen := Number("open")
	switch runtime.GOARCH {
	case "amd64":
		if !hasOpen {
			t.Error("open should exist on amd64")
		}
	case "arm64":
		if hasOpen {
			t.Error("open should not exist on arm64")
		}
	}
}
