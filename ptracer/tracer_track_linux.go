package ptracer

import (
	"context"
	"fmt"
	"runtime"
	"time"

	unix "golang.org/x/sys/unix"

	"github.com/zqzqsb/bindtrace/runner"
)

// 启用 PTRACE_O_TRACESYSGOOD 后，系统调用停止的信号值
// 带有 0x80 标记位，可与普通 SIGTRAP 区分
const sigTraceSentinel = unix.SIGTRAP | 0x80

/*
	Trace 启动并跟踪目标进程

Trace 在当前 goroutine 中启动一个受控的进程，并对其系统调用进行跟踪。
每次系统调用入口停止时把上下文交给 Handler，Handler 可以改写参数
寄存器和子进程内存后放行。

实现细节：
 1. 锁定当前线程以确保 ptrace 操作的稳定性
 2. 通过 Runner 接口启动目标进程
 3. 等待子进程停在 execve 产生的首个停止点
 4. 设置 ptrace 选项并进入系统调用跟踪循环

注意事项：
 1. ptrace 是基于线程的，整个跟踪过程必须保持线程锁定
 2. 确保 Runner.Start() 正确设置了 ptrace 跟踪标志
*/
func (t *Tracer) Trace(c context.Context) (result runner.Result) {
	// ptrace 是基于线程的（内核进程）
	// Goroutine 1 -----> OS Thread 1  -----> Child Process
	//                   (locked)            (being traced)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// 启动运行器(子进程)
	pid, err := t.Runner.Start()
	t.Handler.Debug("tracer started:", pid, err)
	if err != nil {
		t.Handler.Debug("failed to start traced process:", err)
		result.Status = runner.StatusRunnerError
		result.Error = err.Error()
		return
	}
	return t.trace(c, pid)
}

func (t *Tracer) trace(c context.Context, pid int) (result runner.Result) {
	// 创建可取消的子上下文，用于控制跟踪过程
	cc, cancel := context.WithCancel(c)
	defer cancel()

	// 上下文被取消时，终止被跟踪进程
	go func() {
		<-cc.Done()
		unix.Kill(pid, unix.SIGKILL)
	}()

	// 记录开始时间，用于计算设置时间和运行时间
	sTime := time.Now()
	var fTime time.Time

	// 设置 defer 函数处理 panic 和清理工作
	defer func() {
		if err := recover(); err != nil {
			t.Handler.Debug("panic occurred:", err)
			result.Status = runner.StatusRunnerError
			result.Error = fmt.Sprintf("%v", err)
		}
		// 清理并回收子进程
		unix.Kill(pid, unix.SIGKILL)
		collectZombie(pid)
		// 计算时间统计
		if !fTime.IsZero() {
			result.SetUpTime = fTime.Sub(sTime)
			result.RunningTime = time.Since(fTime)
		}
	}()

	// 等待 execve 触发的首个停止点
	if err := waitForStop(pid); err != nil {
		t.Handler.Debug("wait for initial stop failed:", err)
		result.Status = runner.StatusRunnerError
		result.Error = err.Error()
		return
	}

	// TRACESYSGOOD 用 0x80 标记系统调用停止
	// EXITKILL 保证跟踪器意外退出时子进程被杀死
	if err := unix.PtraceSetOptions(pid, unix.PTRACE_O_TRACESYSGOOD|unix.PTRACE_O_EXITKILL); err != nil {
		t.Handler.Debug("failed to set ptrace options:", err)
		result.Status = runner.StatusRunnerError
		result.Error = fmt.Sprintf("failed to set ptrace options: %v", err)
		return
	}

	// 子进程此刻停着，尚未执行用户代码
	// 这是施加资源限制和通告就绪状态的时机
	if t.SyncFunc != nil {
		if err := t.SyncFunc(pid); err != nil {
			t.Handler.Debug("sync func failed:", err)
			result.Status = runner.StatusRunnerError
			result.Error = err.Error()
			return
		}
	}
	fTime = time.Now()

	// 恢复执行，进入系统调用跟踪
	if err := unix.PtraceSyscall(pid, 0); err != nil {
		result.Status = runner.StatusRunnerError
		result.Error = fmt.Sprintf("ptrace syscall: %v", err)
		return
	}

	// 入口/出口交替标志：每个系统调用产生两次停止，
	// 只有入口停止需要交给 Handler 处理
	entryExpected := true

	// ptrace 主循环：等待和处理进程事件
	for {
		var (
			wstatus unix.WaitStatus // 进程状态
			rusage  unix.Rusage     // 资源使用统计
		)

		_, err := unix.Wait4(pid, &wstatus, 0, &rusage)
		if err == unix.EINTR {
			t.Handler.Debug("wait4 interrupted")
			continue
		}
		if err != nil {
			t.Handler.Debug("wait4 failed:", err)
			result.Status = runner.StatusRunnerError
			result.Error = err.Error()
			return
		}

		// 检查 CPU 时间、内存使用是否超限
		userTime, userMem, curStatus := t.checkUsage(rusage)
		result.Time = userTime
		result.Memory = userMem
		if curStatus != runner.StatusNormal {
			result.Status = curStatus
			return
		}

		switch {
		// 1. 进程正常退出的情况
		case wstatus.Exited():
			exitStatus := wstatus.ExitStatus()
			t.Handler.Debug("process exited:", pid, "status:", exitStatus)
			result.ExitStatus = exitStatus
			if exitStatus == 0 {
				result.Status = runner.StatusNormal
			} else {
				result.Status = runner.StatusNonzeroExitStatus
			}
			return

		// 2. 进程被信号终止的情况
		case wstatus.Signaled():
			sig := wstatus.Signal()
			t.Handler.Debug("process terminated by signal:", pid, "signal:", sig)
			result.Status = runner.StatusSignalled
			// shell 约定：被信号终止等价于退出码 128+signal
			result.ExitStatus = 128 + int(sig)
			result.Error = fmt.Sprintf("process killed by signal %d", sig)
			return

		// 3. 进程停止的情况
		case wstatus.Stopped():
			sig := wstatus.StopSignal()
			deliver := 0

			switch {
			case sig == sigTraceSentinel:
				// 系统调用停止：入口交给 Handler，出口只翻转标志
				if entryExpected {
					if err := t.handleEntry(pid); err != nil {
						t.Handler.Debug("handler failed:", err)
						result.Status = runner.StatusRunnerError
						result.Error = err.Error()
						return
					}
				}
				entryExpected = !entryExpected

			case sig == unix.SIGTRAP:
				// execve 等事件产生的裸 SIGTRAP，吞掉不转发
				t.Handler.Debug("bare SIGTRAP swallowed")

			default:
				// 其他信号原样转发给子进程
				t.Handler.Debug("forwarding signal:", sig)
				deliver = int(sig)
			}

			if err := unix.PtraceSyscall(pid, deliver); err != nil {
				t.Handler.Debug("failed to continue process:", err)
				result.Status = runner.StatusRunnerError
				result.Error = fmt.Sprintf("failed to continue process: %v", err)
				return
			}
		}
	}
}

// handleEntry 在系统调用入口构造上下文并交给 Handler
// 寄存器按需加载，Handler 未触碰时不产生额外的 ptrace 调用
func (t *Tracer) handleEntry(pid int) error {
	ctx := &Context{Pid: pid}
	return t.Handler.Handle(ctx)
}

func (t *Tracer) checkUsage(rusage unix.Rusage) (time.Duration, runner.Size, runner.Status) {
	status := runner.StatusNormal
	// 更新资源使用情况并检查是否超过限制
	userTime := time.Duration(rusage.Utime.Nano()) // 纳秒
	userMem := runner.Size(rusage.Maxrss << 10)    // 字节

	// 零值限制表示不限制
	if t.Limit.TimeLimit > 0 && userTime > t.Limit.TimeLimit {
		status = runner.StatusTimeLimitExceeded
	}
	if t.Limit.MemoryLimit > 0 && userMem > t.Limit.MemoryLimit {
		status = runner.StatusMemoryLimitExceeded
	}
	return userTime, userMem, status
}

// waitForStop 等待子进程进入首个 ptrace 停止点
// 子进程在 execve 前就退出说明启动失败
func waitForStop(pid int) error {
	var wstatus unix.WaitStatus
	for {
		_, err := unix.Wait4(pid, &wstatus, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		if wstatus.Stopped() {
			return nil
		}
		if wstatus.Exited() || wstatus.Signaled() {
			return fmt.Errorf("child exited before tracing started: %v", wstatus)
		}
	}
}

// collectZombie 收集已终止的子进程
// 主循环里已经 wait 到退出状态时，这里以 ECHILD 结束
func collectZombie(pid int) {
	var (
		wstatus unix.WaitStatus
		rusage  unix.Rusage
	)
	for {
		p, err := unix.Wait4(pid, &wstatus, 0, &rusage)
		if err == unix.EINTR {
			continue
		}
		if err != nil || p <= 0 {
			return
		}
		if wstatus.Exited() || wstatus.Signaled() {
			return
		}
	}
}
