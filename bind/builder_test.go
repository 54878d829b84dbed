package bind

import (
	"os"
	"path"
	"testing"

	"gotest.tools/v3/assert"
)

func TestBuilderSortsMostSpecificFirst(t *testing.T) {
	rules := NewBuilder().
		WithBind("/a", "/guest").
		WithBind("/b", "/guest/app").
		WithBind("/c", "/guest/ap").
		Build()

	assert.Equal(t, rules[0].GuestPrefix, "/guest/app")
	assert.Equal(t, rules[1].GuestPrefix, "/guest/ap")
	assert.Equal(t, rules[2].GuestPrefix, "/guest")
}

func TestBuilderSortIsStable(t *testing.T) {
	rules := NewBuilder().
		WithBind("/first", "/guest").
		WithBind("/second", "/guest").
		Build()

	assert.Equal(t, rules[0].HostPrefix, "/first")
	assert.Equal(t, rules[1].HostPrefix, "/second")
}

func TestWithRootShadowsSystemPaths(t *testing.T) {
	rules := NewBuilder().WithRoot("/data/fs").Build()

	// 客体路径落进根规则
	got, ok := Resolve("/etc/hosts", rules)
	assert.Assert(t, ok)
	assert.Equal(t, got, "/data/fs/etc/hosts")

	// /proc 被恒等绑定遮蔽，不发生改写
	_, ok = Resolve("/proc/cpuinfo", rules)
	assert.Assert(t, !ok)

	// /dev/shm 比 /dev 更具体，优先命中
	got, ok = Resolve("/dev/shm/sem.x", rules)
	assert.Assert(t, ok)
	assert.Equal(t, got, "/data/fs/tmp/sem.x")
}

func TestWithStorageSkipsMissingDirs(t *testing.T) {
	root := t.TempDir()
	assert.NilError(t, os.MkdirAll(path.Join(root, "Download"), 0o755))
	assert.NilError(t, os.MkdirAll(path.Join(root, "DCIM"), 0o755))

	rules := NewBuilder().WithStorage(root, "/mnt/android").Build()

	guests := make(map[string]string)
	for _, r := range rules {
		guests[r.GuestPrefix] = r.HostPrefix
	}
	// 根目录本身存在，shared 总是生成
	assert.Equal(t, guests["/mnt/android/shared"], root)
	assert.Equal(t, guests["/mnt/android/downloads"], path.Join(root, "Download"))
	assert.Equal(t, guests["/mnt/android/dcim"], path.Join(root, "DCIM"))
	// 不存在的目录被跳过
	_, present := guests["/mnt/android/music"]
	assert.Assert(t, !present)
}
