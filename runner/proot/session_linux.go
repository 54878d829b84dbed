package proot

import (
	"io"

	"github.com/pkg/errors"

	"github.com/zqzqsb/bindtrace/runner"
)

// Session 表示一次正在运行或已结束的被跟踪执行
// 由 Runner.Spawn 创建
type Session struct {
	stdout io.ReadCloser
	stderr io.ReadCloser

	// 跟踪循环结束时关闭
	done chan struct{}
	// done 关闭后有效
	result runner.Result
	// Wait 只允许调用一次
	waited bool
}

// TakeStdout 取走子进程标准输出的读取端
// 只有首次调用返回非 nil，未开启捕获时始终返回 nil
func (s *Session) TakeStdout() io.ReadCloser {
	r := s.stdout
	s.stdout = nil
	return r
}

// TakeStderr 取走子进程标准错误的读取端
// 只有首次调用返回非 nil，未开启捕获时始终返回 nil
func (s *Session) TakeStderr() io.ReadCloser {
	r := s.stderr
	s.stderr = nil
	return r
}

// Wait 阻塞到子进程结束，返回退出码，只能调用一次
//
// 子进程被信号终止时退出码为 128+signal，与 shell 约定一致
// 跟踪器自身出错时返回错误
func (s *Session) Wait() (int, error) {
	if s.waited {
		return 0, errors.New("session already waited")
	}
	s.waited = true
	<-s.done
	switch s.result.Status {
	case runner.StatusNormal, runner.StatusNonzeroExitStatus, runner.StatusSignalled:
		return s.result.ExitStatus, nil
	default:
		return 0, errors.Errorf("%s: %s", s.result.Status, s.result.Error)
	}
}

// Result 阻塞到子进程结束，返回完整的运行结果
func (s *Session) Result() runner.Result {
	<-s.done
	return s.result
}
