package bind

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestSuffix(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		guest string
		want  string
		ok    bool
	}{
		{"exact match", "/guest", "/guest", "", true},
		{"nested match", "/guest/app", "/guest", "/app", true},
		{"trailing slash guest", "/guest/app", "/guest/", "app", true},
		{"mid segment prefix", "/guestroom/app", "/guest", "", false},
		{"path shorter than guest", "/guest", "/guestroom", "", false},
		{"unrelated path", "/other/app", "/guest", "", false},
		{"empty guest never matches", "/guest", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := suffix(tt.path, tt.guest)
			assert.Equal(t, ok, tt.ok)
			assert.Equal(t, got, tt.want)
		})
	}
}

func TestResolveBasic(t *testing.T) {
	rules := []Rule{{HostPrefix: "/host", GuestPrefix: "/guest"}}

	got, ok := Resolve("/guest", rules)
	assert.Assert(t, ok)
	assert.Equal(t, got, "/host")

	got, ok = Resolve("/guest/x", rules)
	assert.Assert(t, ok)
	assert.Equal(t, got, "/host/x")
}

func TestResolveNoMatch(t *testing.T) {
	rules := []Rule{{HostPrefix: "/host", GuestPrefix: "/guest"}}

	_, ok := Resolve("/other/path", rules)
	assert.Assert(t, !ok)

	// 段边界精确性："/guest" 不是 "/guestroom" 的路径段前缀
	_, ok = Resolve("/guestroom/x", rules)
	assert.Assert(t, !ok)
}

func TestResolveLongestPrefixWins(t *testing.T) {
	rules := []Rule{
		{HostPrefix: "/a", GuestPrefix: "/guest"},
		{HostPrefix: "/b", GuestPrefix: "/guest/app"},
	}
	got, ok := Resolve("/guest/app/bin", rules)
	assert.Assert(t, ok)
	assert.Equal(t, got, "/b/bin")
}

func TestResolveTieFirstWins(t *testing.T) {
	rules := []Rule{
		{HostPrefix: "/first", GuestPrefix: "/guest"},
		{HostPrefix: "/second", GuestPrefix: "/guest"},
	}
	got, ok := Resolve("/guest/x", rules)
	assert.Assert(t, ok)
	assert.Equal(t, got, "/first/x")
}

func TestResolveRootGuest(t *testing.T) {
	rules := []Rule{{HostPrefix: "/host", GuestPrefix: "/"}}
	got, ok := Resolve("/etc/hosts", rules)
	assert.Assert(t, ok)
	assert.Equal(t, got, "/host/etc/hosts")
}

func TestResolveGuestTrailingSlash(t *testing.T) {
	// guest 以 / 结尾时后缀不带前导 /，拼接时补一个分隔符
	rules := []Rule{{HostPrefix: "/host", GuestPrefix: "/guest/"}}
	got, ok := Resolve("/guest/x", rules)
	assert.Assert(t, ok)
	assert.Equal(t, got, "/host/x")
}

func TestResolveIdentityIsSkipped(t *testing.T) {
	rules := []Rule{{HostPrefix: "/same", GuestPrefix: "/same"}}
	_, ok := Resolve("/same/file", rules)
	assert.Assert(t, !ok)
}

func TestResolveIdempotent(t *testing.T) {
	rules := []Rule{{HostPrefix: "/very/long/host/prefix", GuestPrefix: "/g"}}

	out, ok := Resolve("/g/data/file", rules)
	assert.Assert(t, ok)

	// 输出不再命中任何规则时，再次解析是不动点
	_, ok = Resolve(out, rules)
	assert.Assert(t, !ok)
}
