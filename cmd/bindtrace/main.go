// bindtrace 在无特权的前提下运行一个命令，
// 用 ptrace 把命令看到的客体路径词法改写为宿主路径，
// 效果近似绑定挂载
//
// 用法：
//
//	bindtrace --bind /data/app:/opt/app -- /opt/app/bin/tool --flag
//	bindtrace --config rules.yaml -- /bin/sh
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/zqzqsb/bindtrace/bind"
	"github.com/zqzqsb/bindtrace/pkg/pipe"
	"github.com/zqzqsb/bindtrace/pkg/rlimit"
	"github.com/zqzqsb/bindtrace/runner"
	"github.com/zqzqsb/bindtrace/runner/proot"
)

func main() {
	var (
		binds      []string
		configPath string
		fsRoot     string
		env        []string
		workDir    string
		verbose    bool
		timeLimit  time.Duration
		memLimit   runner.Size
		fileLimit  runner.Size
	)

	pflag.StringArrayVar(&binds, "bind", nil, "bind rule host:guest, repeatable")
	pflag.StringVar(&configPath, "config", "", "YAML rule file")
	pflag.StringVar(&fsRoot, "root", "", "map guest / onto this host directory")
	pflag.StringArrayVarP(&env, "env", "e", nil, "environment variable for the child, repeatable")
	pflag.StringVarP(&workDir, "workdir", "w", "", "working directory for the child")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "log every path rewrite")
	pflag.DurationVar(&timeLimit, "time-limit", 0, "kill the child after this much CPU time")
	pflag.Var(&memLimit, "memory-limit", "kill the child beyond this RSS (e.g. 256m)")
	pflag.Var(&fileLimit, "file-limit", "max size of files the child may create (e.g. 64m)")
	pflag.Parse()

	args := pflag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: bindtrace [flags] -- command [args...]")
		pflag.PrintDefaults()
		os.Exit(2)
	}

	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	builder := bind.NewBuilder()
	if fsRoot != "" {
		builder.WithRoot(fsRoot)
	}
	if configPath != "" {
		if err := loadConfig(configPath, builder); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	for _, b := range binds {
		host, guest, err := splitBind(b)
		if err != nil {
			log.Fatalf("bad --bind value %q: %v", b, err)
		}
		builder.WithBind(host, guest)
	}
	rules := builder.Build()

	var limits rlimit.RLimits
	if fileLimit > 0 {
		limits.FileSize = uint64(fileLimit)
	}

	r := &proot.Runner{
		Args:        args,
		Env:         childEnv(env),
		WorkDir:     workDir,
		Rules:       rules,
		PipeStderr:  true,
		RLimits:     limits.PrepareRLimit(),
		Limit:       runner.Limit{TimeLimit: timeLimit, MemoryLimit: memLimit},
		ShowDetails: verbose,
		Logger:      log,
	}

	// Ctrl-C 转化为取消，跟踪器负责杀掉子进程
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := r.Spawn(ctx)
	if err != nil {
		log.Fatalf("spawn: %v", err)
	}

	// 标准错误收进有界缓冲，结束后一次性转出
	stderr := pipe.Collect(sess.TakeStderr(), 64<<10)

	code, err := sess.Wait()
	<-stderr.Done
	os.Stderr.Write(stderr.Buffer.Bytes())
	if stderr.Truncated() {
		log.Warnf("stderr truncated at %d bytes", stderr.Max)
	}
	if err != nil {
		log.Fatalf("wait: %v", err)
	}
	if verbose {
		log.Debugf("result: %s", sess.Result().String())
	}
	os.Exit(code)
}

// splitBind 解析 host:guest 形式的绑定参数
func splitBind(s string) (host, guest string, err error) {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			host, guest = s[:i], s[i+1:]
			if host == "" || guest == "" {
				return "", "", fmt.Errorf("both sides must be non-empty")
			}
			return host, guest, nil
		}
	}
	// 没有冒号时表示恒等绑定，host 与 guest 相同
	return s, s, nil
}

// childEnv 组装子进程环境：显式给出的变量追加在继承环境之后
func childEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil
	}
	return append(os.Environ(), extra...)
}
