// Package rlimit 提供对被追踪进程施加 Linux 资源限制的数据结构
// 限制通过 prlimit 在子进程停止于跟踪握手点时施加，不需要任何
// fork 后注入的代码
package rlimit

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// RLimits 以声明方式定义要施加到被追踪进程的资源限制
type RLimits struct {
	CPU          uint64 // CPU 时间限制（秒）
	CPUHard      uint64 // 硬性 CPU 时间限制（秒）
	Data         uint64 // 数据段大小限制（字节）
	FileSize     uint64 // 文件大小限制（字节）
	Stack        uint64 // 栈大小限制（字节）
	AddressSpace uint64 // 地址空间限制（字节）
	OpenFile     uint64 // 打开文件数量限制
	DisableCore  bool   // 是否禁用 core dump
}

// RLimit 是一条具体的 Linux 资源限制
type RLimit struct {
	// Res 是资源类型（例如 unix.RLIMIT_CPU）
	Res int
	// Rlim 是应用到该资源的限制
	Rlim unix.Rlimit
}

func getRlimit(cur, max uint64) unix.Rlimit {
	return unix.Rlimit{Cur: cur, Max: max}
}

// PrepareRLimit 将声明展开为具体的限制列表，零值字段不生成限制
func (r *RLimits) PrepareRLimit() []RLimit {
	var ret []RLimit

	if r.CPU > 0 {
		cpuHard := r.CPUHard
		if cpuHard < r.CPU {
			cpuHard = r.CPU
		}
		ret = append(ret, RLimit{
			Res:  unix.RLIMIT_CPU,
			Rlim: getRlimit(r.CPU, cpuHard),
		})
	}

	if r.Data > 0 {
		ret = append(ret, RLimit{
			Res:  unix.RLIMIT_DATA,
			Rlim: getRlimit(r.Data, r.Data),
		})
	}

	if r.FileSize > 0 {
		ret = append(ret, RLimit{
			Res:  unix.RLIMIT_FSIZE,
			Rlim: getRlimit(r.FileSize, r.FileSize),
		})
	}

	if r.Stack > 0 {
		ret = append(ret, RLimit{
			Res:  unix.RLIMIT_STACK,
			Rlim: getRlimit(r.Stack, r.Stack),
		})
	}

	if r.AddressSpace > 0 {
		ret = append(ret, RLimit{
			Res:  unix.RLIMIT_AS,
			Rlim: getRlimit(r.AddressSpace, r.AddressSpace),
		})
	}

	if r.OpenFile > 0 {
		ret = append(ret, RLimit{
			Res:  unix.RLIMIT_NOFILE,
			Rlim: getRlimit(r.OpenFile, r.OpenFile),
		})
	}

	if r.DisableCore {
		ret = append(ret, RLimit{
			Res:  unix.RLIMIT_CORE,
			Rlim: getRlimit(0, 0),
		})
	}

	return ret
}

// Apply 通过 prlimit 将限制施加到目标进程
// 目标此刻应当停在跟踪握手点上，尚未执行用户代码
func Apply(pid int, limits []RLimit) error {
	for _, l := range limits {
		rl := l.Rlim
		if err := unix.Prlimit(pid, l.Res, &rl, nil); err != nil {
			return fmt.Errorf("prlimit %s: %w", l, err)
		}
	}
	return nil
}

// String 返回 RLimit 的字符串表示
func (r RLimit) String() string {
	var t string
	switch r.Res {
	case unix.RLIMIT_CPU:
		return fmt.Sprintf("CPU[%d s:%d s]", r.Rlim.Cur, r.Rlim.Max)
	case unix.RLIMIT_NOFILE:
		return fmt.Sprintf("OpenFile[%d:%d]", r.Rlim.Cur, r.Rlim.Max)
	case unix.RLIMIT_DATA:
		t = "Data"
	case unix.RLIMIT_FSIZE:
		t = "File"
	case unix.RLIMIT_STACK:
		t = "Stack"
	case unix.RLIMIT_AS:
		t = "AddressSpace"
	case unix.RLIMIT_CORE:
		t = "Core"
	default:
		t = fmt.Sprintf("Resource(%d)", r.Res)
	}
	return fmt.Sprintf("%s[%d]", t, r.Rlim.Cur)
}

// String 返回 RLimits 的字符串表示
func (r *RLimits) String() string {
	var s []string
	if r.CPU > 0 {
		s = append(s, fmt.Sprintf("CPU=%d", r.CPU))
	}
	if r.CPUHard > 0 {
		s = append(s, fmt.Sprintf("CPUHard=%d", r.CPUHard))
	}
	if r.Data > 0 {
		s = append(s, fmt.Sprintf("Data=%d", r.Data))
	}
	if r.FileSize > 0 {
		s = append(s, fmt.Sprintf("FileSize=%d", r.FileSize))
	}
	if r.Stack > 0 {
		s = append(s, fmt.Sprintf("Stack=%d", r.Stack))
	}
	if r.AddressSpace > 0 {
		s = append(s, fmt.Sprintf("AddressSpace=%d", r.AddressSpace))
	}
	if r.OpenFile > 0 {
		s = append(s, fmt.Sprintf("OpenFile=%d", r.OpenFile))
	}
	if r.DisableCore {
		s = append(s, "DisableCore=true")
	}
	return fmt.Sprintf("RLimits{%s}", strings.Join(s, ", "))
}
