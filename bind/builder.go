package bind

import (
	"os"
	"path"
	"sort"
)

// Builder 以链式调用方式装配绑定规则列表
// Build 产出的列表按 guest 前缀从长到短稳定排序，
// 因此 Resolve 总是命中最具体的规则
type Builder struct {
	rules []Rule
}

// NewBuilder 创建一个新的规则构建器实例
func NewBuilder() *Builder {
	return &Builder{}
}

// WithBind 追加一条 host -> guest 绑定
func (b *Builder) WithBind(host, guest string) *Builder {
	b.rules = append(b.rules, Rule{HostPrefix: host, GuestPrefix: guest})
	return b
}

// WithRoot 把客体根目录映射到 fsRoot，并补上常规绑定：
// 宿主的 /dev /proc /sys 对客体原样可见（恒等绑定遮蔽根规则），
// /dev/shm 落到 fsRoot/tmp，/dev/random 指向宿主的 /dev/urandom
func (b *Builder) WithRoot(fsRoot string) *Builder {
	b.WithBind(fsRoot, "/")
	for _, p := range []string{"/dev", "/proc", "/sys"} {
		b.WithBind(p, p)
	}
	b.WithBind(path.Join(fsRoot, "tmp"), "/dev/shm")
	b.WithBind("/dev/urandom", "/dev/random")
	return b
}

// 共享存储下的常见目录与其在客体挂载点下的名称
var storageDirs = []struct {
	name string
	sub  string
}{
	{"shared", ""},
	{"downloads", "Download"},
	{"dcim", "DCIM"},
	{"pictures", "Pictures"},
	{"music", "Music"},
	{"movies", "Movies"},
	{"documents", "Documents"},
}

// WithStorage 为共享存储生成绑定：storageRoot 下的常见目录
// 依次挂到 mountBase 下的同名入口，宿主侧不存在的目录跳过
// 访问权限由调用方在调用前确认，这里只做存在性检查
func (b *Builder) WithStorage(storageRoot, mountBase string) *Builder {
	for _, d := range storageDirs {
		host := storageRoot
		if d.sub != "" {
			host = path.Join(storageRoot, d.sub)
		}
		if _, err := os.Stat(host); err != nil {
			continue
		}
		b.WithBind(host, path.Join(mountBase, d.name))
	}
	return b
}

// Build 返回规则列表副本，按 guest 前缀长度从长到短稳定排序
func (b *Builder) Build() []Rule {
	rules := make([]Rule, len(b.rules))
	copy(rules, b.rules)
	sort.SliceStable(rules, func(i, j int) bool {
		return len(rules[i].GuestPrefix) > len(rules[j].GuestPrefix)
	})
	return rules
}
