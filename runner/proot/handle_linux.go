package proot

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/zqzqsb/bindtrace/bind"
	"github.com/zqzqsb/bindtrace/pkg/syscallname"
	"github.com/zqzqsb/bindtrace/ptracer"
)

// tracerHandler 在系统调用入口把客体路径改写为宿主路径
type tracerHandler struct {
	rules       []bind.Rule
	showDetails bool
	log         *logrus.Logger
	counter     rewriteCounter
}

func newTracerHandler(rules []bind.Rule, showDetails bool, log *logrus.Logger) *tracerHandler {
	return &tracerHandler{
		rules:       rules,
		showDetails: showDetails,
		log:         log,
		counter:     make(rewriteCounter),
	}
}

// Debug 实现 ptracer.Handler 的调试输出
func (h *tracerHandler) Debug(v ...interface{}) {
	if h.showDetails {
		h.log.Debugln(v...)
	}
}

/* Handle 处理一次系统调用入口停止

对每个路径参数：
 1. 从子进程内存读出客体路径
 2. 按绑定规则解析宿主路径，未命中则放行
 3. 宿主路径不长于原字符串占用的空间时就地覆写；
    否则把它写到子进程栈顶红区下方的临时空间，
    并把参数寄存器指向新地址

读取失败只跳过该参数（子进程稍后会从内核得到同样的错误），
写入或寄存器回写失败则终止跟踪 */
func (h *tracerHandler) Handle(ctx *ptracer.Context) error {
	// 空规则表或未适配的架构：纯直通
	if len(h.rules) == 0 || !ptracer.Intercepts() {
		return nil
	}

	if err := ctx.LoadRegs(); err != nil {
		return errors.Wrap(err, "load registers")
	}

	sysno := ctx.SyscallNo()
	args := ptracer.PathArgs(sysno)
	if args == nil {
		return nil
	}

	scratch := newScratchCursor(ctx)

	for _, i := range args {
		addr := uintptr(ctx.Arg(i))
		if addr == 0 {
			// NULL 路径参数（如 utimensat）由内核处理
			continue
		}

		path, occupied, err := ctx.GetString(addr)
		if err != nil {
			h.Debug("read path arg failed:", sysno, i, err)
			h.counter.add(sysno, kindSkipped)
			continue
		}

		host, ok := bind.Resolve(path, h.rules)
		if !ok {
			continue
		}
		h.Debug("rewrite:", path, "->", host)

		payload := make([]byte, len(host)+1) // 结尾 null
		copy(payload, host)

		if len(payload) <= occupied {
			// 就地覆写，多余的旧字节用 null 填平
			padded := make([]byte, occupied)
			copy(padded, payload)
			if err := ctx.WriteBytes(addr, padded); err != nil {
				return errors.Wrap(err, "write path in place")
			}
			h.counter.add(sysno, kindInPlace)
			continue
		}

		// 宿主路径更长：搬到栈上的临时空间
		dst, ok := scratch.carve(len(payload))
		if !ok {
			// 栈空间不足时放弃改写，子进程看到原路径
			h.Debug("scratch space exhausted for:", host)
			h.counter.add(sysno, kindSkipped)
			continue
		}
		if err := ctx.WriteBytes(dst, payload); err != nil {
			return errors.Wrap(err, "write path to scratch")
		}
		ctx.SetArg(i, dst)
		h.counter.add(sysno, kindRelocated)
	}

	return errors.Wrap(ctx.FlushRegs(), "flush registers")
}

// logSummary 在跟踪结束后输出改写统计
func (h *tracerHandler) logSummary() {
	if !h.showDetails || len(h.counter) == 0 {
		return
	}
	names := make([]string, 0, len(h.counter))
	for name := range h.counter {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := h.counter[name]
		h.log.WithFields(logrus.Fields{
			"syscall":   name,
			"in_place":  s.InPlace,
			"relocated": s.Relocated,
			"skipped":   s.Skipped,
		}).Debug("rewrite summary")
	}
}

/* scratchCursor 在子进程的栈顶下方分配临时空间

系统调用入口处，栈指针以下（越过 red zone）的内存对子进程
当前执行的代码不可见，可以安全借用。游标从红区下界开始向低
地址推进，每个停止点最多一次性借出若干路径的空间，放行后
子进程自己的执行不会保留对这段内存的引用 */
type scratchCursor struct {
	ctx    *ptracer.Context
	cursor uintptr
	// 栈段下界，懒加载；为 0 表示无法确认，不做越界检查
	stackLow   uintptr
	stackKnown bool
}

func newScratchCursor(ctx *ptracer.Context) *scratchCursor {
	return &scratchCursor{
		ctx:    ctx,
		cursor: ctx.StackPointer() - ctx.RedZone(),
	}
}

// carve 借出 n 字节，返回起始地址
// 空间不足或栈指针异常时返回 ok == false
func (s *scratchCursor) carve(n int) (uintptr, bool) {
	need := uintptr(alignUp(n, wordSize))
	if s.cursor < need {
		return 0, false
	}
	next := s.cursor - need

	if !s.stackKnown {
		s.stackKnown = true
		if lo, _, err := ptracer.StackRange(s.ctx.Pid); err == nil {
			s.stackLow = lo
		}
	}
	// 留一个字的余量，避免写到栈段边界之外
	if s.stackLow != 0 && next < s.stackLow+uintptr(wordSize) {
		return 0, false
	}

	s.cursor = next
	return next, true
}

const wordSize = 8

func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// 改写结果分类
const (
	kindInPlace = iota
	kindRelocated
	kindSkipped
)

type rewriteStat struct {
	InPlace   int
	Relocated int
	Skipped   int
}

// rewriteCounter 按系统调用名称累计改写统计
type rewriteCounter map[string]*rewriteStat

func (c rewriteCounter) add(sysno uint, kind int) {
	name, err := syscallname.Name(sysno)
	if err != nil {
		name = "unknown"
	}
	s, ok := c[name]
	if !ok {
		s = &rewriteStat{}
		c[name] = s
	}
	switch kind {
	case kindInPlace:
		s.InPlace++
	case kindRelocated:
		s.Relocated++
	case kindSkipped:
		s.Skipped++
	}
}
