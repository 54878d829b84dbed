// Package pipe 把子进程的输出流收进有界缓冲或逐行转交给回调
package pipe

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// Buffer 保存从一条输出流上收集到的前 Max 字节
type Buffer struct {
	Buffer *bytes.Buffer   // 收集到的数据
	Done   <-chan struct{} // 流读尽后关闭
	Max    int64           // 最大保留的字节数
}

// Collect 在后台读取 r，至多保留 max 字节，其余数据读出后丢弃，
// 保证子进程不会因为管道填满而阻塞或收到 SIGPIPE
func Collect(r io.Reader, max int64) *Buffer {
	buffer := new(bytes.Buffer)
	done := make(chan struct{})

	go func() {
		// 多读一个字节，便于调用方检测是否发生截断
		io.CopyN(buffer, r, max+1)
		close(done)
		io.Copy(io.Discard, r)
	}()

	return &Buffer{
		Buffer: buffer,
		Done:   done,
		Max:    max,
	}
}

// Truncated 报告收集是否超出了 Max 而被截断，仅在 Done 关闭后有意义
func (b *Buffer) Truncated() bool {
	return int64(b.Buffer.Len()) > b.Max
}

// String 实现 Stringer 接口，返回 Buffer 的当前状态字符串
func (b Buffer) String() string {
	return fmt.Sprintf("Buffer[%d/%d]", b.Buffer.Len(), b.Max)
}

// Lines 逐行读取 r 并交给 fn，直到流结束
// 用于把子进程输出接入日志系统；单行超过 1 MiB 时返回错误
func Lines(r io.Reader, fn func(string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		fn(sc.Text())
	}
	return sc.Err()
}
