// Package syscallname 提供当前架构下系统调用号与名称之间的换算
package syscallname

import (
	"fmt"

	"github.com/elastic/go-seccomp-bpf/arch"
)

// arch.GetInfo("") 返回当前系统架构（如 x86_64, aarch64 等）的系统调用映射表
var info, errInfo = arch.GetInfo("")

// Supported 报告当前架构是否有可用的系统调用表
// 未知架构上调用方应当把依赖该表的功能退化为直通，而不是报错
func Supported() bool {
	return errInfo == nil
}

// Name 将系统调用号转换为对应的系统调用名称
func Name(sysno uint) (string, error) {
	if errInfo != nil {
		return "", errInfo
	}
	n, ok := info.SyscallNumbers[int(sysno)]
	if !ok {
		return "", fmt.Errorf("syscall no %d does not exist", sysno)
	}
	return n, nil
}

// Number 将系统调用名称转换为当前架构下的编号
// 名称在当前架构上不存在时返回 ok == false（例如 arm64 没有 open）
func Number(name string) (int, bool) {
	if errInfo != nil {
		return 0, false
	}
	n, ok := info.SyscallNames[name]
	return n, ok
}
