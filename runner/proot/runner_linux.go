// Package proot 在无特权的前提下模拟绑定挂载
//
// 它用 ptrace 跟踪目标进程，在每个携带路径参数的系统调用入口
// 按绑定规则把客体路径词法改写为宿主路径，对子进程完全透明
package proot

import (
	"github.com/sirupsen/logrus"

	"github.com/zqzqsb/bindtrace/bind"
	"github.com/zqzqsb/bindtrace/pkg/rlimit"
	"github.com/zqzqsb/bindtrace/runner"
)

// Runner 定义了在路径改写跟踪下运行一个命令所需的全部参数
type Runner struct {
	// Args 是命令及其参数，Args[0] 是可执行文件路径
	Args []string
	// Env 是传给子进程的环境变量，nil 时继承当前环境
	Env []string
	// WorkDir 是子进程的工作目录，空串时继承当前目录
	WorkDir string

	// Rules 是绑定规则表，应当已按 bind.Builder 排好序
	// 空表时跟踪退化为直通
	Rules []bind.Rule

	// PipeStdout / PipeStderr 决定是否捕获对应的输出流
	// 不捕获时子进程继承当前进程的流
	PipeStdout bool
	PipeStderr bool

	// RLimits 在子进程停在跟踪握手点时通过 prlimit 施加
	RLimits []rlimit.RLimit
	// Limit 是由跟踪器轮询检查的资源限制，零值不限制
	Limit runner.Limit

	// ShowDetails 开启逐系统调用的调试日志
	ShowDetails bool
	// Logger 为 nil 时使用 logrus 标准日志器
	Logger *logrus.Logger
}

func (r *Runner) logger() *logrus.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logrus.StandardLogger()
}
