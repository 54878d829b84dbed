package ptracer

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"testing"
)

// TestHasNull 测试 hasNull 函数
func TestHasNull(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{
			name: "empty buffer",
			data: []byte{},
			want: false,
		},
		{
			name: "no null",
			data: []byte("hello"),
			want: false,
		},
		{
			name: "has null at start",
			data: []byte{0, 1, 2, 3},
			want: true,
		},
		{
			name: "has null at end",
			data: []byte{1, 2, 3, 0},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasNull(tt.data); got != tt.want {
				t.Errorf("hasNull() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestCString 测试 cString 函数
func TestCString(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantLen int
		wantErr bool
	}{
		{
			name:    "normal string",
			data:    []byte{'a', 'b', 'c', 0, 'x'},
			want:    "abc",
			wantLen: 4,
		},
		{
			name:    "empty string",
			data:    []byte{0, 'x'},
			want:    "",
			wantLen: 1,
		},
		{
			name:    "no terminator",
			data:    []byte("abc"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := cString(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("cString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got != tt.want || n != tt.wantLen {
				t.Errorf("cString() = (%q, %d), want (%q, %d)", got, n, tt.want, tt.wantLen)
			}
		})
	}
}

// 辅助函数：创建一个子进程并返回其PID
func createTestProcess(t *testing.T) (int, func()) {
	cmd := exec.Command("sleep", "10") // 使用 sleep 命令创建一个持续运行的进程
	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start test process: %v", err)
	}

	cleanup := func() {
		cmd.Process.Kill()
		cmd.Wait()
	}

	return cmd.Process.Pid, cleanup
}

// TestVmRead 测试 vmRead 函数
func TestVmRead(t *testing.T) {
	pid, cleanup := createTestProcess(t)
	defer cleanup()

	buff := make([]byte, 16)

	// 获取进程的内存映射，找一个可读的段
	maps, err := os.ReadFile(fmt.Sprintf("/proc/%d/maps", pid))
	if err != nil {
		t.Fatalf("Failed to read process maps: %v", err)
	}

	var addr uintptr
	for _, line := range bytes.Split(maps, []byte{'\n'}) {
		if len(line) == 0 {
			continue
		}
		if bytes.Contains(line, []byte("r-x")) {
			var start uint64
			fmt.Sscanf(string(line), "%x-", &start)
			addr = uintptr(start)
			break
		}
	}

	if addr == 0 {
		t.Fatal("Failed to find readable memory region")
	}

	n, err := vmRead(pid, addr, buff)
	if err != nil {
		t.Skipf("vmRead not permitted: %v", err)
	}
	if n == 0 {
		t.Error("vmRead returned 0 bytes")
	}
}
