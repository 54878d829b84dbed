package ptracer

import (
	"runtime"
	"testing"

	"github.com/zqzqsb/bindtrace/pkg/syscallname"
)

// TestPathArgTable 验证编号表与名称表的一致性
func TestPathArgTable(t *testing.T) {
	if !syscallname.Supported() {
		t.Skip("syscall table not available on this architecture")
	}

	for name, want := range pathArgNames {
		no, ok := syscallname.Number(name)
		if !ok {
			// 当前架构上不存在的调用不应出现在编号表里
			continue
		}
		got := PathArgs(uint(no))
		if len(got) != len(want) {
			t.Errorf("PathArgs(%s) = %v, want %v", name, got, want)
		}
	}
}

// TestPathArgTableAtFamily 核心的 *at 族调用在所有支持的架构上都存在
func TestPathArgTableAtFamily(t *testing.T) {
	if !syscallname.Supported() {
		t.Skip("syscall table not available on this architecture")
	}

	for _, name := range []string{"openat", "mkdirat", "unlinkat", "execve", "chdir"} {
		no, ok := syscallname.Number(name)
		if !ok {
			t.Fatalf("%s missing from architecture table", name)
		}
		if PathArgs(uint(no)) == nil {
			t.Errorf("PathArgs(%s) = nil", name)
		}
	}

	// 双路径调用的参数位置
	if no, ok := syscallname.Number("renameat"); ok {
		got := PathArgs(uint(no))
		if len(got) != 2 || got[0] != 1 || got[1] != 3 {
			t.Errorf("PathArgs(renameat) = %v, want [1 3]", got)
		}
	}
}

// TestPathArgTableLegacyDropsOut 老式调用只在 amd64 上存在
func TestPathArgTableLegacyDropsOut(t *testing.T) {
	if !syscallname.Supported() {
		t.Skip("syscall table not available on this architecture")
	}

	_, hasOpen := syscallname.Number("open")
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
