package runner

import "time"

// Limit 定义由跟踪器在运行期强制执行的资源限制
// 零值表示对应维度不做限制
type Limit struct {
	TimeLimit   time.Duration // 用户 CPU 时间上限
	MemoryLimit Size          // 用户内存上限
}
