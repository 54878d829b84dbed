//go:build linux && !amd64 && !arm64
// +build linux,!amd64,!arm64

package ptracer

import (
	"syscall"
)

// 未适配的架构：访问器返回零值，配合空的系统调用表
// 使跟踪退化为纯直通，不改写任何参数

// SyscallNo 获取当前系统调用号
func (c *Context) SyscallNo() uint {
	return 0
}

// Arg 获取当前系统调用的第 i 个参数
func (c *Context) Arg(i int) uint {
	return 0
}

// SetArg 在未适配的架构上是空操作
func (c *Context) SetArg(i int, v uintptr) {
}

// StackPointer 获取当前栈指针
func (c *Context) StackPointer() uintptr {
	return 0
}

// RedZone 返回栈指针下方必须保留的字节数
func (c *Context) RedZone() uintptr {
	return 0
}

func ptraceGetRegSet(pid int, regs *syscall.PtraceRegs) error {
	return syscall.ENOSYS
}
