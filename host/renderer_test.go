package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/wintitle/lang"
)

// gateExec blocks each command until release is closed.
type gateExec struct {
	started chan string
	release chan struct{}
}

func newGateExec() *gateExec {
	return &gateExec{
		started: make(chan string, 8),
		release: make(chan struct{}),
	}
}

func (g *gateExec) Evaluate(_ int, command, _ string) (string, error) {
	g.started <- command
	<-g.release

	return command + "-out", nil
}

func TestRenderer_Render(t *testing.T) {
	vars := NewVars(WithEnviron([]string{}))
	vars.SetString("name", "doc")

	r := NewRenderer(NewCache(8, "test"), vars)
	defer r.Close()

	title, err := r.Render(t.Context(), `name + "!"`)
	require.NoError(t, err)
	assert.Equal(t, "doc!", title)

	title, err = r.Render(t.Context(), `missing + "!"`)
	require.NoError(t, err)
	assert.Equal(t, "!", title)

	_, err = r.Render(t.Context(), `(`)
	assert.ErrorIs(t, err, lang.ErrUnexpectedToken)
}

func TestRenderer_Strict(t *testing.T) {
	r := NewRenderer(NewCache(8, "test"), lang.VarMap{}, WithStrict(true))
	defer r.Close()

	_, err := r.Render(t.Context(), `missing + "!"`)
	assert.ErrorIs(t, err, lang.ErrUnresolvedVariable)
}

func TestRenderer_Supersede(t *testing.T) {
	gate := newGateExec()

	r := NewRenderer(NewCache(8, "test", lang.WithExec(gate)), lang.VarMap{})
	defer r.Close()

	first := r.Submit(t.Context(), `exec(1, "a")`)
	assert.Equal(t, "a", <-gate.started)
	assert.True(t, r.Busy())

	second := r.Submit(t.Context(), `"x"`)
	third := r.Submit(t.Context(), `"y"`)

	res := <-second
	require.ErrorIs(t, res.Err, ErrSuperseded)
	assert.Equal(t, `"x"`, res.Source)

	close(gate.release)

	res = <-first
	require.NoError(t, res.Err)
	assert.Equal(t, "a-out", res.Title)
	assert.Equal(t, lang.Str("a-out"), res.Value)

	res = <-third
	require.NoError(t, res.Err)
	assert.Equal(t, "y", res.Title)
}

func TestRenderer_CanceledJob(t *testing.T) {
	r := NewRenderer(NewCache(8, "test"), lang.VarMap{})
	defer r.Close()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := r.Render(ctx, `"x"`)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderer_Close(t *testing.T) {
	r := NewRenderer(NewCache(8, "test"), lang.VarMap{})

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	res := <-r.Submit(t.Context(), `"x"`)
	assert.ErrorIs(t, res.Err, ErrRendererClosed)

	_, err := r.Render(t.Context(), `"x"`)
	assert.ErrorIs(t, err, ErrRendererClosed)
}
