package host

// Built-in names available to computed variables. The table is built
// once per process and cloned per use; variables of the same name
// shadow a built-in.

import (
	"maps"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

// Target names an operating system and instruction set architecture.
type Target struct {
	OS   string
	Arch string
}

var builtins = sync.OnceValue(func() map[string]any {
	return map[string]any{
		"target":   gnuTarget(),
		"platform": goPlatform(),
		"hostname": hostname(),
		"username": username(),
		"shell":    os.Getenv("SHELL"),
		"cwd":      cwd,

		"file": map[string]any{
			"exists": fileExists,
			"isDir":  fileIsDir,
		},

		"path": map[string]any{
			"abs":  pathAbs,
			"base": filepath.Base,
			"dir":  filepath.Dir,
			"ext":  filepath.Ext,
			"join": filepath.Join,
			"rel":  pathRel,
		},

		"mung": map[string]any{
			"prefix":   mungPrefix,
			"prefixif": mungPrefixIf,
		},
	}
})

// Builtins returns a copy of the built-in environment.
func Builtins() map[string]any { return maps.Clone(builtins()) }

// BuiltinNames returns the sorted top-level built-in names, including
// the env function that is bound per [Vars].
func BuiltinNames() []string {
	return slices.Sorted(func(yield func(string) bool) {
		for k := range builtins() {
			if !yield(k) {
				return
			}
		}

		yield("env")
	})
}

// gnuTarget returns the host target using GNU GCC/LLVM naming.
func gnuTarget() Target {
	t := goPlatform()

	switch t.Arch {
	case "386":
		t.Arch = "i386"
	case "amd64":
		t.Arch = "x86_64"
	case "arm64":
		if t.OS != "darwin" {
			t.Arch = "aarch64"
		}
	case "mipsle":
		t.Arch = "mipsel"
	}

	return t
}

// goPlatform returns the host target using Go naming. GOHOSTOS and
// GOHOSTARCH take precedence over the runtime values.
func goPlatform() Target {
	t := Target{OS: runtime.GOOS, Arch: runtime.GOARCH}

	if o, ok := os.LookupEnv("GOHOSTOS"); ok {
		t.OS = o
	}

	if a, ok := os.LookupEnv("GOHOSTARCH"); ok {
		t.Arch = a
	}

	return t
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}

	return h
}

func username() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}

	return u.Username
}

func cwd() string {
	dir, err := os.Getwd()
	if err != nil {
		return pathAbs(".")
	}

	return dir
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func pathRel(base, target string) string {
	p, err := filepath.Rel(pathAbs(base), pathAbs(target))
	if err != nil {
		return target
	}

	return p
}

// mungPrefix prepends items to the list value, dropping duplicates.
func mungPrefix(list string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

// mungPrefixIf is mungPrefix keeping only items accepted by keep.
func mungPrefixIf(list string, keep func(string) bool, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(keep),
	).String()
}

// environMap converts KEY=VALUE entries to a map. A nil list reads the
// process environment.
func environMap(list []string) map[string]string {
	if list == nil {
		list = os.Environ()
	}

	m := make(map[string]string, len(list))

	for _, entry := range list {
		if k, v, ok := strings.Cut(entry, "="); ok {
			m[k] = v
		}
	}

	return m
}
