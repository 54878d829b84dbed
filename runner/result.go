package runner

import (
	"fmt"
	"time"
)

// Result 是程序运行的结果
type Result struct {
	Status            // 结果状态
	ExitStatus int    // 退出码（被信号终止时为合成退出码 128+信号编号）
	Error      string // 潜在的详细错误信息（用于程序运行器错误）

	Time   time.Duration // 使用的用户 CPU 时间
	Memory Size          // 使用的用户内存

	// 程序运行器的度量指标
	SetUpTime   time.Duration // 从启动到握手完成的时间
	RunningTime time.Duration // 握手完成到退出的时间
}

func (r Result) String() string {
	switch r.Status {
	case StatusNormal:
		return fmt.Sprintf("Result[%v %v][%v %v]", r.Time, r.Memory, r.SetUpTime, r.RunningTime)

	case StatusSignalled:
		return fmt.Sprintf("Result[Signalled(%d)][%v %v][%v %v]", r.ExitStatus, r.Time, r.Memory, r.SetUpTime, r.RunningTime)

	case StatusRunnerError:
		return fmt.Sprintf("Result[RunnerFailed(%s)][%v %v][%v %v]", r.Error, r.Time, r.Memory, r.SetUpTime, r.RunningTime)

	default:
		return fmt.Sprintf("Result[%v(%s %d)][%v %v][%v %v]", r.Status, r.Error, r.ExitStatus, r.Time, r.Memory, r.SetUpTime, r.RunningTime)
	}
}
