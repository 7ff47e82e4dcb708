package host

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/wintitle/lang"
)

func newTestRunner(t *testing.T, opts ...RunnerOption) *Runner {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("runner tests use POSIX shell commands")
	}

	r, err := NewRunner(opts...)
	require.NoError(t, err)

	t.Cleanup(func() { _ = r.Close() })

	return r
}

func TestRunner_Evaluate(t *testing.T) {
	r := newTestRunner(t)

	out, err := r.Evaluate(60, "echo hello", "")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, 1, r.Jobs())

	out, err = r.Evaluate(60, "echo hello", "")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, 1, r.Jobs())
}

func TestRunner_Workdir(t *testing.T) {
	r := newTestRunner(t)

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	out, err := r.Evaluate(60, "pwd -P", dir)
	require.NoError(t, err)
	assert.Equal(t, dir, out)
}

func TestRunner_Failure(t *testing.T) {
	r := newTestRunner(t)

	_, err := r.Evaluate(60, "echo oops >&2; exit 3", "")
	require.ErrorIs(t, err, ErrCommand)
	assert.Contains(t, err.Error(), "exit status 3")
}

func TestRunner_Timeout(t *testing.T) {
	r := newTestRunner(t, WithCommandTimeout(50*time.Millisecond))

	_, err := r.Evaluate(60, "sleep 5", "")
	assert.ErrorIs(t, err, ErrCommand)
}

func TestRunner_Refresh(t *testing.T) {
	r := newTestRunner(t)

	dir := t.TempDir()
	cmd := "echo x >> count; wc -l < count"

	out, err := r.Evaluate(1, cmd, dir)
	require.NoError(t, err)
	assert.Equal(t, "1", strings.TrimSpace(out))

	require.Eventually(t, func() bool {
		out, err := r.Evaluate(1, cmd, dir)

		return err == nil && strings.TrimSpace(out) != "1"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestRunner_Forget(t *testing.T) {
	r := newTestRunner(t)

	_, err := r.Evaluate(60, "echo a", "")
	require.NoError(t, err)

	require.NoError(t, r.Forget("echo a", ""))
	assert.Equal(t, 0, r.Jobs())

	require.NoError(t, r.Forget("echo a", ""))
}

func TestRunner_ForgetDuringFirstRun(t *testing.T) {
	r := newTestRunner(t)

	out := filepath.Join(t.TempDir(), "runs")
	command := "sleep 0.3; echo x >> " + out

	done := make(chan struct{})

	go func() {
		defer close(done)

		_, _ = r.Evaluate(1, command, "")
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, r.Forget(command, ""))

	<-done

	assert.Equal(t, 0, r.Jobs())
	assert.Empty(t, r.sched.Jobs())

	time.Sleep(1500 * time.Millisecond)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(data))
}

func TestRunner_EmptyShell(t *testing.T) {
	r := newTestRunner(t, WithShell())

	got, err := r.Evaluate(0, "echo ok", "")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestRunner_Close(t *testing.T) {
	r := newTestRunner(t)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err := r.Evaluate(60, "echo a", "")
	assert.ErrorIs(t, err, ErrRunnerClosed)
}

func TestRunner_ExecHostCall(t *testing.T) {
	r := newTestRunner(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "name"), []byte("main\n"), 0o600))

	c, err := lang.Compile(`exec(br, 30, "cat name", dir) ? "[" + br + "]" : "-"`, lang.WithExec(r))
	require.NoError(t, err)

	title, err := c.Render(lang.VarMap{"dir": lang.Str(dir)})
	require.NoError(t, err)
	assert.Equal(t, "[main]", title)
}
