//go:build linux
// +build linux

package ptracer

import "github.com/zqzqsb/bindtrace/runner"

// Tracer 定义了一个 ptracer 实例
// 它把 Runner 启动的子进程置于系统调用跟踪之下，
// 在每次系统调用入口把上下文交给 Handler 处理
type Tracer struct {
	Handler
	Runner
	runner.Limit

	// SyncFunc 在子进程停在首个跟踪停止点、尚未恢复执行时调用
	// 用于施加资源限制或向调用方通告子进程已就绪
	// 返回错误会终止跟踪
	SyncFunc func(pid int) error
}

// Runner 表示进程运行器
type Runner interface {
	// Start 启动子进程并返回 pid 和错误（如果失败）
	// 子进程应该启用 ptrace 并在执行用户代码前停止
	Start() (int, error)
}

// Handler 定义了跟踪系统调用的自定义处理器
type Handler interface {
	// Handle 在系统调用入口被调用，可以就地修改上下文中的参数
	// 返回错误会终止跟踪
	Handle(*Context) error

	// Debug 在调试模式下打印调试信息
	Debug(v ...interface{})
}
