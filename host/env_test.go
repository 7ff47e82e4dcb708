package host

import (
	"os"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuiltins_Clone(t *testing.T) {
	a := Builtins()
	a["target"] = "changed"

	b := Builtins()
	assert.IsType(t, Target{}, b["target"])
}

func TestBuiltinNames(t *testing.T) {
	names := BuiltinNames()

	assert.True(t, slices.IsSorted(names))

	for _, want := range []string{"env", "file", "mung", "path", "platform", "target"} {
		assert.Contains(t, names, want)
	}
}

func TestGoPlatform(t *testing.T) {
	t.Setenv("GOHOSTOS", "plan9")

	p := goPlatform()
	assert.Equal(t, "plan9", p.OS)
	assert.Equal(t, runtime.GOARCH, p.Arch)
}

func TestGnuTarget(t *testing.T) {
	tests := []struct {
		os, arch, want string
	}{
		{"linux", "amd64", "x86_64"},
		{"linux", "386", "i386"},
		{"linux", "arm64", "aarch64"},
		{"darwin", "arm64", "arm64"},
		{"linux", "riscv64", "riscv64"},
	}

	for _, tt := range tests {
		t.Run(tt.os+"/"+tt.arch, func(t *testing.T) {
			t.Setenv("GOHOSTOS", tt.os)
			t.Setenv("GOHOSTARCH", tt.arch)

			assert.Equal(t, Target{OS: tt.os, Arch: tt.want}, gnuTarget())
		})
	}
}

func TestMungPrefix(t *testing.T) {
	sep := string(os.PathListSeparator)
	list := strings.Join([]string{"/usr/bin", "/bin"}, sep)

	got := strings.Split(mungPrefix(list, "/opt/bin"), sep)
	assert.Equal(t, "/opt/bin", got[0])
	assert.Contains(t, got, "/usr/bin")

	got = strings.Split(mungPrefixIf(list, func(string) bool { return true }, "/opt/bin"), sep)
	assert.Contains(t, got, "/opt/bin")
}

func TestEnvironMap(t *testing.T) {
	m := environMap([]string{"A=1", "B=x=y", "broken"})

	assert.Equal(t, map[string]string{"A": "1", "B": "x=y"}, m)
}
