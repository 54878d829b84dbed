// Package bind 提供客体路径到宿主路径的绑定规则与解析算法
// 解析是纯字符串运算，不依赖任何进程状态，可独立于跟踪器测试
package bind

import "strings"

// Rule 描述一条绑定规则
// 被跟踪程序看到的 GuestPrefix 前缀被替换为真实存在的 HostPrefix
// 规则在一次跟踪会话内不可变
type Rule struct {
	HostPrefix  string
	GuestPrefix string
}

// suffix 返回 path 去掉 guest 前缀后的剩余部分
// 仅当 guest 是 path 的路径段前缀时才算匹配：完全相等、
// guest 自身以 / 结尾、或前缀之后紧跟 /（"/guest" 不匹配 "/guestroom"）
// 空的 guest 前缀永远不匹配，避免一条病态规则吞掉所有字符串
func suffix(path, guest string) (string, bool) {
	if guest == "" || !strings.HasPrefix(path, guest) {
		return "", false
	}
	if len(path) == len(guest) {
		return "", true
	}
	if strings.HasSuffix(guest, "/") {
		return path[len(guest):], true
	}
	if path[len(guest)] == '/' {
		return path[len(guest):], true
	}
	return "", false
}

// Resolve 在有序规则列表中解析 path
// 所有按路径段匹配的规则中 guest 前缀最长者胜出，长度相同时先出现者胜出
// 调用方应当把列表按最具体到最不具体预先排序（见 Builder），这里不做强制
// 没有规则命中、或替换结果与输入相同（改写没有意义）时返回 ok == false
func Resolve(path string, rules []Rule) (string, bool) {
	var (
		bestIdx    = -1
		bestSuffix string
	)
	for i, r := range rules {
		s, ok := suffix(path, r.GuestPrefix)
		if !ok {
			continue
		}
		if bestIdx < 0 || len(r.GuestPrefix) > len(rules[bestIdx].GuestPrefix) {
			bestIdx = i
			bestSuffix = s
		}
	}
	if bestIdx < 0 {
		return "", false
	}

	host := rules[bestIdx].HostPrefix
	var out string
	switch {
	case bestSuffix == "":
		out = host
	case strings.HasSuffix(host, "/") || strings.HasPrefix(bestSuffix, "/"):
		out = host + bestSuffix
	default:
		out = host + "/" + bestSuffix
	}
	if out == path {
		return "", false
	}
	return out, true
}
