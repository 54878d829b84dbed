package ptracer

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
)

// StackRange 从 /proc/pid/maps 解析主线程栈的地址区间
// 用于在借用子进程栈顶空间前确认不会越界
func StackRange(pid int) (lo, hi uintptr, err error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/maps", pid))
	if err != nil {
		return 0, 0, err
	}
	return parseStackRange(data)
}

// parseStackRange 在 maps 内容中寻找 [stack] 段
// 每行格式：start-end perms offset dev inode pathname
func parseStackRange(data []byte) (lo, hi uintptr, err error) {
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if !bytes.HasSuffix(bytes.TrimRight(line, " "), []byte("[stack]")) {
			continue
		}
		addr, _, ok := bytes.Cut(line, []byte{' '})
		if !ok {
			continue
		}
		s, e, ok := bytes.Cut(addr, []byte{'-'})
		if !ok {
			continue
		}
		start, err1 := strconv.ParseUint(string(s), 16, 64)
		end, err2 := strconv.ParseUint(string(e), 16, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		return uintptr(start), uintptr(end), nil
	}
	return 0, 0, fmt.Errorf("no [stack] mapping found")
}
