package ptracer

import (
	"errors"
	"syscall"
	"unsafe"

	unix "golang.org/x/sys/unix"
)

var errStringTooLong = errors.New("string longer than max path length")

// cString 截取缓冲区中第一个 null 之前的内容
// 返回字符串和它占用的字节数（含结尾 null）
// 缓冲区中没有 null 说明字符串超长
func cString(buff []byte) (string, int, error) {
	for i, v := range buff {
		if v == 0 {
			return string(buff[:i]), i + 1, nil
		}
	}
	return "", 0, errStringTooLong
}

/* ptraceReadStr 使用 PTRACE_PEEKDATA 从目标进程内存中读取字符串

实现细节：
  1. 使用 PTRACE_PEEKDATA 读取目标进程的内存数据
  2. 将读取的数据存储到缓冲区中

注意事项：
  1. 目标进程必须处于 ptrace 停止状态
  2. buff 的大小决定了最大读取长度 */

func ptraceReadStr(pid int, addr uintptr, buff []byte) error {
	_, err := syscall.PtracePeekData(pid, addr, buff)
	return err
}

/* processVMReadv 封装 process_vm_readv 系统调用，用于在进程间直接传输数据

系统调用格式：
  ssize_t process_vm_readv(pid_t pid,
                          const struct iovec *local_iov,
                          unsigned long liovcnt,
                          const struct iovec *remote_iov,
                          unsigned long riovcnt,
                          unsigned long flags);

性能优势：
  1. 一次系统调用可以读取多个不连续的内存区域
  2. 减少了上下文切换的开销

使用要求：
  1. 需要 Linux 3.2+ 内核支持
  2. 避免跨页面边界读取 */

func processVMReadv(pid int, localIov, remoteIov []unix.Iovec,
	flags uintptr) (r1, r2 uintptr, err syscall.Errno) {
	return syscall.Syscall6(unix.SYS_PROCESS_VM_READV, uintptr(pid),
		uintptr(unsafe.Pointer(&localIov[0])), uintptr(len(localIov)),
		uintptr(unsafe.Pointer(&remoteIov[0])), uintptr(len(remoteIov)),
		flags)
}

// vmRead 是对 processVMReadv 的高层封装，简化了内存向量的创建和使用
func vmRead(pid int, addr uintptr, buff []byte) (int, error) {
	l := len(buff)
	// 创建本地内存向量，指向接收缓冲区
	localIov := getIovecs(&buff[0], l)
	// 创建远程内存向量，指向目标进程的内存
	remoteIov := getIovecs((*byte)(unsafe.Pointer(addr)), l)
	// 执行内存读取
	n, _, err := processVMReadv(pid, localIov, remoteIov, uintptr(0))
	if err == 0 {
		return int(n), nil
	}
	return int(n), err
}

func getIovecs(base *byte, l int) []unix.Iovec {
	return []unix.Iovec{getIovec(base, l)}
}

func getIovec(base *byte, l int) unix.Iovec {
	return unix.Iovec{Base: base, Len: uint64(l)}
}

/* vmReadStr 使用 process_vm_readv 从目标进程内存中读取字符串

vmReadStr 通过 process_vm_readv 从目标进程读取以 null 结尾的字符串。
按页面大小分块读取，避免越过字符串末尾所在页面触发不必要的 EFAULT。

实现细节：
  1. 按页面大小分块读取
  2. 检测字符串结束符（null）
  3. 处理内存对齐和边界 */

func vmReadStr(pid int, addr uintptr, buff []byte) error {
	// 处理未对齐的地址：计算到页边界的剩余字节数
	totalRead := 0
	nextRead := pageSize - int(addr%uintptr(pageSize))
	if nextRead == 0 {
		nextRead = pageSize // 如果正好在页边界，则使用整页大小
	}

	// 循环读取，直到缓冲区填满或遇到终止条件
	for len(buff) > 0 {
		if restToRead := len(buff); restToRead < nextRead {
			nextRead = restToRead
		}

		curRead, err := vmRead(pid, addr+uintptr(totalRead), buff[:nextRead])
		if err != nil {
			return err
		}
		if curRead == 0 {
			break // 没有更多数据可读
		}
		if hasNull(buff[:curRead]) {
			break // 找到字符串结束符
		}

		totalRead += curRead
		buff = buff[curRead:]
		nextRead = pageSize // 重置为完整页大小
	}
	return nil
}

// hasNull 检查缓冲区中是否包含 null 字符
func hasNull(buff []byte) bool {
	for _, v := range buff {
		if v == 0 {
			return true
		}
	}
	return false
}

/* WriteBytes 使用 PTRACE_POKEDATA 把数据写入目标进程内存

PTRACE_POKEDATA 以机器字为单位写入。末尾不足一个字的部分
由运行时先用 PTRACE_PEEKDATA 读出原字，拼接后整字写回，
不会覆盖数据之后的字节。

注意事项：
  1. 目标进程必须处于 ptrace 停止状态
  2. 目标地址必须可写（栈或数据段） */

func (c *Context) WriteBytes(addr uintptr, data []byte) error {
	_, err := syscall.PtracePokeData(c.Pid, addr, data)
	return err
}
