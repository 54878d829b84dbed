package ptracer

import (
	"syscall"
)

/*
	; aarch64 系统调用参数顺序
	syscall_number -> x8    ; 系统调用号
	arg0..arg5 -> x0..x5    ; 参数
*/

// SyscallNo 获取当前系统调用号
func (c *Context) SyscallNo() uint {
	return uint(c.regs.Regs[8])
}

// Arg 获取当前系统调用的第 i 个参数
func (c *Context) Arg(i int) uint {
	if i < 0 || i > 5 {
		return 0
	}
	return uint(c.regs.Regs[i])
}

// SetArg 改写当前系统调用的第 i 个参数并标记寄存器为脏
func (c *Context) SetArg(i int, v uintptr) {
	if i < 0 || i > 5 {
		return
	}
	c.regs.Regs[i] = uint64(v)
	c.dirty = true
}

// StackPointer 获取当前栈指针
func (c *Context) StackPointer() uintptr {
	return uintptr(c.regs.Sp)
}

// RedZone 返回栈指针下方必须保留的字节数
// aarch64 ABI 没有 red zone
func (c *Context) RedZone() uintptr {
	return 0
}

// ptraceGetRegSet 获取寄存器集
// 进程必须处于 ptrace 停止状态
func ptraceGetRegSet(pid int, regs *syscall.PtraceRegs) error {
	return syscall.PtraceGetRegs(pid, regs)
}
