package pkg

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^\d+\.\d+\.\d+`), Version())
}

func TestPrefixOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/usr/bin/wintitle", "wintitle"},
		{"/usr/bin/wintitle.exe", "wintitle"},
		{"/tmp/__debug_bin3141", Name},
		{"/home/me/.titlebar.sh", "titlebar"},
		{"/x/...", Name},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, prefixOf(tt.path))
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, ConfigDir(), ConfigPath())
	assert.Equal(t, filepath.Join(ConfigDir(), "vars.yaml"), ConfigPath("vars.yaml"))
	assert.Equal(t, filepath.Join(CacheDir(), "pprof"), CachePath("pprof"))
	assert.Equal(t, Prefix(), filepath.Base(ConfigDir()))
}
