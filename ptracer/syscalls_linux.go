package ptracer

import (
	"github.com/zqzqsb/bindtrace/pkg/syscallname"
)

// pathArgNames 列出携带文件系统路径参数的系统调用
// 以及路径在参数表中的位置
//
// 按名称声明，启动时换算成当前架构的编号：
// aarch64 上不存在的老式调用（open/stat/mkdir 等）自动落空，
// 只留下 *at 族
var pathArgNames = map[string][]int{
	// 单路径，第 0 个参数
	"open":     {0},
	"stat":     {0},
	"lstat":    {0},
	"access":   {0},
	"readlink": {0},
	"execve":   {0},
	"mkdir":    {0},
	"unlink":   {0},
	"chdir":    {0},
	"chroot":   {0},
	"truncate": {0},
	"statfs":   {0},
	"chmod":    {0},
	"chown":    {0},
	"lchown":   {0},
	"utimes":   {0},

	// dirfd + 路径，第 1 个参数
	"openat":     {1},
	"newfstatat": {1},
	"statx":      {1},
	"faccessat":  {1},
	"faccessat2": {1},
	"readlinkat": {1},
	"execveat":   {1},
	"mkdirat":    {1},
	"unlinkat":   {1},
	"fchmodat":   {1},
	"fchownat":   {1},
	"utimensat":  {1},
	"openat2":    {1},

	// 双路径调用
	"symlink":   {1},
	"symlinkat": {2},
	"link":      {0, 1},
	"linkat":    {1, 3},
	"rename":    {0, 1},
	"renameat":  {1, 3},
	"renameat2": {1, 3},
}

// pathArgTable 把名称表换算成当前架构的编号表
var pathArgTable = buildPathArgTable()

func buildPathArgTable() map[uint][]int {
	t := make(map[uint][]int, len(pathArgNames))
	if !syscallname.Supported() {
		// 未知架构：空表，跟踪退化为直通
		return t
	}
	for name, args := range pathArgNames {
		if no, ok := syscallname.Number(name); ok {
			t[uint(no)] = args
		}
	}
	return t
}

// PathArgs 返回系统调用 sysno 中路径参数的位置
// 不携带路径参数时返回 nil
func PathArgs(sysno uint) []int {
	return pathArgTable[sysno]
}

// Intercepts 报告当前架构上是否存在需要拦截的系统调用
func Intercepts() bool {
	return len(pathArgTable) > 0
}
