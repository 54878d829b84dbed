package ptracer

import (
	"os"
	"syscall"
)

// MaxPathLen 是从子进程读取路径字符串时的长度上限
// 超过该长度的参数视为读取失败
const MaxPathLen = 4096

// Context 是当前系统调用停止点的上下文
// 用于读取系统调用号和参数，以及改写参数指向的内存
type Context struct {
	// Pid 是当前上下文进程的 pid
	Pid int
	// 当前寄存器上下文（平台相关）
	regs syscall.PtraceRegs
	// 寄存器是否已从子进程加载
	loaded bool
	// 寄存器是否被修改过，决定放行前是否需要写回
	dirty bool
}

var (
	// UseVMReadv 决定是否使用 ProcessVMReadv 系统调用来读取字符串
	// 初始为 true，如果尝试失败并返回 ENOSYS 则变为 false
	UseVMReadv = true
	pageSize   = 4 << 10
)

func init() {
	pageSize = os.Getpagesize()
}

// LoadRegs 从子进程加载寄存器，重复调用不产生额外开销
func (c *Context) LoadRegs() error {
	if c.loaded {
		return nil
	}
	if err := ptraceGetRegSet(c.Pid, &c.regs); err != nil {
		return err
	}
	c.loaded = true
	return nil
}

// FlushRegs 把修改过的寄存器写回子进程
// 没有修改时是空操作
func (c *Context) FlushRegs() error {
	if !c.dirty {
		return nil
	}
	if err := syscall.PtraceSetRegs(c.Pid, &c.regs); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// GetString 从子进程内存读取以 null 结尾的字符串
// 返回字符串本身和它在子进程中占用的字节数（含结尾 null）
//
// 首先尝试更高效的 ProcessVMReadv，系统不支持时永久回退到
// ptrace 逐字读取
func (c *Context) GetString(addr uintptr) (string, int, error) {
	buff := make([]byte, MaxPathLen)

	if UseVMReadv {
		if err := vmReadStr(c.Pid, addr, buff); err != nil {
			// 系统不支持 ProcessVMReadv 时永久禁用此路径
			// 其他错误只影响本次读取，仍然尝试 ptrace 方式
			if no, ok := err.(syscall.Errno); ok && no == syscall.ENOSYS {
				UseVMReadv = false
			}
		} else {
			return cString(buff)
		}
	}

	if err := ptraceReadStr(c.Pid, addr, buff); err != nil {
		return "", 0, err
	}
	return cString(buff)
}
