package ptracer

import (
	"syscall"
)

/*
	; x86_64 系统调用参数顺序
	syscall_number -> rax    ; 系统调用号
	arg0 -> rdi             ; 第1个参数
	arg1 -> rsi             ; 第2个参数
	arg2 -> rdx             ; 第3个参数
	arg3 -> r10            ; 第4个参数（注意：不是 rcx）
	arg4 -> r8             ; 第5个参数
	arg5 -> r9             ; 第6个参数
*/

// redZone 是 SysV x86_64 ABI 在栈指针下方保留的字节数
// 叶函数可能正在使用这段内存，借用栈顶时必须跳过
const redZone = 128

// SyscallNo 获取当前系统调用号
func (c *Context) SyscallNo() uint {
	return uint(c.regs.Orig_rax) // rax 会被返回值覆盖，入口处用 Orig_rax
}

// Arg 获取当前系统调用的第 i 个参数
func (c *Context) Arg(i int) uint {
	switch i {
	case 0:
		return uint(c.regs.Rdi)
	case 1:
		return uint(c.regs.Rsi)
	case 2:
		return uint(c.regs.Rdx)
	case 3:
		return uint(c.regs.R10)
	case 4:
		return uint(c.regs.R8)
	case 5:
		return uint(c.regs.R9)
	}
	return 0
}

// SetArg 改写当前系统调用的第 i 个参数并标记寄存器为脏
func (c *Context) SetArg(i int, v uintptr) {
	switch i {
	case 0:
		c.regs.Rdi = uint64(v)
	case 1:
		c.regs.Rsi = uint64(v)
	case 2:
		c.regs.Rdx = uint64(v)
	case 3:
		c.regs.R10 = uint64(v)
	case 4:
		c.regs.R8 = uint64(v)
	case 5:
		c.regs.R9 = uint64(v)
	default:
		return
	}
	c.dirty = true
}

// StackPointer 获取当前栈指针
func (c *Context) StackPointer() uintptr {
	return uintptr(c.regs.Rsp)
}

// RedZone 返回栈指针下方必须保留的字节数
func (c *Context) RedZone() uintptr {
	return redZone
}

// ptraceGetRegSet 获取寄存器集
// 进程必须处于 ptrace 停止状态
func ptraceGetRegSet(pid int, regs *syscall.PtraceRegs) error {
	return syscall.PtraceGetRegs(pid, regs)
}
