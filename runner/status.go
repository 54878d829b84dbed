package runner

// Status 是结果状态
type Status int

// 程序运行器的结果状态
const (
	StatusInvalid Status = iota // 0 未初始化

	// 正常
	StatusNormal // 1 正常

	// 资源限制超出
	StatusTimeLimitExceeded   // 2 时间限制超出
	StatusMemoryLimitExceeded // 3 内存限制超出

	// 运行时错误
	StatusSignalled         // 4 被信号终止
	StatusNonzeroExitStatus // 5 非零退出状态

	// 程序运行器错误
	StatusRunnerError // 6 运行器错误
)

var (
	statusString = []string{
		"无效",
		"",
		"超出时间限制",
		"超出内存限制",
		"被信号终止",
		"非零退出状态",
		"运行器错误",
	}
)

func (t Status) String() string {
	i := int(t)
	if i >= 0 && i < len(statusString) {
		return statusString[i]
	}
	return statusString[0]
}

func (t Status) Error() string {
	return t.String()
}
