package proot

import (
	"context"
	"os"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"

	"github.com/zqzqsb/bindtrace/pkg/rlimit"
	"github.com/zqzqsb/bindtrace/ptracer"
	"github.com/zqzqsb/bindtrace/runner"
)

// Spawn 启动子进程并把它置于路径改写跟踪之下
//
// 返回时子进程已经通过跟踪握手（资源限制已施加、即将开始执行
// 用户代码），或者启动失败返回错误。跟踪循环在后台 goroutine
// 中运行，结束状态通过 Session.Wait 获取
func (r *Runner) Spawn(c context.Context) (*Session, error) {
	if len(r.Args) == 0 {
		return nil, errors.New("no command specified")
	}

	cmd := exec.Command(r.Args[0], r.Args[1:]...)
	cmd.Env = r.Env
	cmd.Dir = r.WorkDir
	// 子进程在 execve 前调用 PTRACE_TRACEME 并停在首个停止点
	cmd.SysProcAttr = &syscall.SysProcAttr{Ptrace: true}

	sess := &Session{done: make(chan struct{})}

	if r.PipeStdout {
		p, err := cmd.StdoutPipe()
		if err != nil {
			return nil, errors.Wrap(err, "stdout pipe")
		}
		sess.stdout = p
	} else {
		cmd.Stdout = os.Stdout
	}
	if r.PipeStderr {
		p, err := cmd.StderrPipe()
		if err != nil {
			return nil, errors.Wrap(err, "stderr pipe")
		}
		sess.stderr = p
	} else {
		cmd.Stderr = os.Stderr
	}
	cmd.Stdin = os.Stdin

	handler := newTracerHandler(r.Rules, r.ShowDetails, r.logger())

	// 握手通道：SyncFunc 在子进程停在首个停止点时发出信号
	handshake := make(chan struct{}, 1)
	tracer := ptracer.Tracer{
		Handler: handler,
		Runner:  cmdRunner{cmd},
		Limit:   r.Limit,
		SyncFunc: func(pid int) error {
			if err := rlimit.Apply(pid, r.RLimits); err != nil {
				return err
			}
			handshake <- struct{}{}
			return nil
		},
	}

	// Trace 会锁定自己的 OS 线程，fork 和后续所有 ptrace
	// 操作都发生在同一个线程上
	go func() {
		sess.result = tracer.Trace(c)
		handler.logSummary()
		close(sess.done)
	}()

	select {
	case <-handshake:
		return sess, nil
	case <-sess.done:
		// 握手前就结束说明启动失败
		return nil, errors.Errorf("spawn: %s: %s", sess.result.Status, sess.result.Error)
	}
}

// Run 启动子进程并阻塞到它结束，实现 runner.Runner 接口
func (r *Runner) Run(c context.Context) runner.Result {
	sess, err := r.Spawn(c)
	if err != nil {
		return runner.Result{
			Status: runner.StatusRunnerError,
			Error:  err.Error(),
		}
	}
	return sess.Result()
}

// cmdRunner 把 exec.Cmd 适配成 ptracer.Runner
type cmdRunner struct {
	cmd *exec.Cmd
}

// Start 启动子进程并返回 pid
// 调用方已锁定 OS 线程，fork 发生在跟踪线程上
func (c cmdRunner) Start() (int, error) {
	if err := c.cmd.Start(); err != nil {
		return 0, err
	}
	return c.cmd.Process.Pid, nil
}
