package lang

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExec records every command it is asked to run.
type fakeExec struct {
	calls []string
	out   string
	err   error
}

func (f *fakeExec) Evaluate(period int, command, workdir string) (string, error) {
	f.calls = append(f.calls, fmt.Sprintf("%d|%s|%s", period, command, workdir))

	return f.out, f.err
}

type fakeWorkspace struct {
	name, owner string
}

func (f fakeWorkspace) WorkspaceName(path string) (string, error) {
	return f.name + ":" + path, nil
}

func (f fakeWorkspace) WorkspaceOwner(string) (string, error) {
	if f.owner == "" {
		return "", errors.New("no owner")
	}

	return f.owner, nil
}

func mustEval(t *testing.T, src string, vars VarMap, opts ...Option) Value {
	t.Helper()

	e, err := Parse(src, opts...)
	require.NoError(t, err, "parse %q", src)

	v, err := Evaluate(e, NewEvalContext(vars))
	require.NoError(t, err, "evaluate %q", src)

	return v
}

func TestEvaluate_Operators(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Value
	}{
		{"doubled quote literal", `"a""b"`, Str(`a"b`)},
		{"case-insensitive equality", `"ABC" == "abc"`, Bool(true)},
		{"case-insensitive inequality", `"ABC" != "abc"`, Bool(false)},
		{"bool equals non-empty", `true == "x"`, Bool(true)},
		{"bool equals empty", `true == ""`, Bool(false)},
		{"false equals empty", `false == ""`, Bool(true)},
		{"concat", `"a" + "b" + "c"`, Str("abc")},
		{"concat bool", `true + "x"`, Str("truex")},
		{"not empty", `not ""`, Bool(true)},
		{"not string", `not "x"`, Bool(false)},
		{"upcase", `upcase "abc"`, Str("ABC")},
		{"locase", `locase "ABC"`, Str("abc")},
		{"lcap", `lcap "hELLO world"`, Str("Hello world")},
		{"lcap empty", `lcap ""`, Str("")},
		{"bool", `bool "x"`, Bool(true)},
		{"str", `str true`, Str("true")},
		{"backslashize", `backslashize "a/b/c"`, Str(`a\b\c`)},
		{"contains", `"Hello World" contains "WORLD"`, Bool(true)},
		{"startswith", `"Hello World" startswith "hello"`, Bool(true)},
		{"endswith", `"Hello World" endswith "LD"`, Bool(true)},
		{"endswith miss", `"Hello World" endswith "hello"`, Bool(false)},
		{"and", `true and ""`, Bool(false)},
		{"or", `true or ""`, Bool(true)},
		{"xor same", `true xor "x"`, Bool(false)},
		{"xor differ", `"" xor "x"`, Bool(true)},
		{"and alias", `true && false`, Bool(false)},
		{"and single", `true & true`, Bool(true)},
		{"or alias", `false || true`, Bool(true)},
		{"xor alias", `true ^ true`, Bool(false)},
		{"concat before compare", `"a" + "b" == "ab"`, Bool(true)},
		{"compare before and", `"x" == "x" and "y" == "z"`, Bool(false)},
		{"substr before compare", `"ab" contains "b" == true`, Bool(true)},
		{"unary before concat", `upcase "a" + "b"`, Str("Ab")},
		{"and before or", `true or false and false`, Bool(true)},
		{"parentheses", `(true or false) and false`, Bool(false)},
		{"regex", `"abc" =~ "B"`, Bool(true)},
		{"regex inverted", `"abc" !~ "b"`, Bool(false)},
		{"regex folded operand", `"zab" =~ ("a" + "b")`, Bool(true)},
		{"regex then concat", `"a" =~ "a" + "b"`, Str("trueb")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustEval(t, tt.src, nil))
		})
	}
}

func TestEvaluate_Ternary(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Value
	}{
		{"default branch", `false ? "a"`, Str("")},
		{"true branch", `true ? "a" : "b"`, Str("a")},
		{"empty string is false", `"" ? "a" : "b"`, Str("b")},
		{"right associative", `false ? "a" : true ? "b" : "c"`, Str("b")},
		{"if else", `if ("x") { "yes" } else { "no" }`, Str("yes")},
		{"if then else if", `if ("") then { "1" } else if (true) { "2" } else { "3" }`, Str("2")},
		{"bracket", `["x" | "a" | "b"]`, Str("a")},
		{"bracket short", `["" | "a"]`, Str("")},
		{"captures", `"abc" =~ "(b)(c)" ? $1 + $2 : "no"`, Str("bc")},
		{"capture whole match", `"abc" =~ "b." ? $0 : "no"`, Str("bc")},
		{"named capture", `"abc" =~ "(?P<Mid>b)" ? $mid : "no"`, Str("b")},
		{"inverted match has no captures", `"abc" !~ "(x)" ? "y" : "n"`, Str("y")},
		{"unmatched optional group", `"ac" =~ "a(b)?c" ? "[" + $1 + "]" : "no"`, Str("[]")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustEval(t, tt.src, nil))
		})
	}
}

func TestEvaluate_CaptureScope(t *testing.T) {
	vars := VarMap{"doc_path": Str(`C:\proj\a.cs`)}

	got := mustEval(t, `doc_path =~ "(?<n>[^\\]+\.cs)$" ? $n : "none"`, vars)
	assert.Equal(t, Str("a.cs"), got)

	got = mustEval(t, `doc_path =~ "\.txt$" ? $n : "none"`, vars)
	assert.Equal(t, Str("none"), got)

	// Captures are not visible outside the ternary.
	e, err := Parse(`(doc_path =~ "(a)" ? $1 : "") + $1`)
	require.NoError(t, err)

	_, err = Evaluate(e, NewEvalContext(vars))

	var uv *UnresolvedVariableError
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, "$1", uv.Variable.Name)
}

func TestEvaluate_Variables(t *testing.T) {
	vars := VarMap{"docname": Str("Main.go"), "dirty": Bool(true)}

	assert.Equal(t, Str("Main.go*"), mustEval(t, `DocName + (dirty ? "*")`, vars))

	e, err := Parse(`missing + "x"`)
	require.NoError(t, err)

	_, err = Evaluate(e, NewEvalContext(vars))
	require.ErrorIs(t, err, ErrUnresolvedVariable)

	var uv *UnresolvedVariableError
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, "missing", uv.Variable.Name)
	assert.Equal(t, 0, uv.Variable.Pos)
	assert.Equal(t, 7, uv.Variable.Len)

	s, err := Render(e, vars)
	require.NoError(t, err)
	assert.Equal(t, "x", s)
}

func TestEvaluate_ScopeDepthRestored(t *testing.T) {
	tests := []string{
		`"ab" =~ "(a)" ? $1 : ""`,
		`"ab" =~ "(a)" ? missing : ""`,
		`"ab" =~ "(a)" ? ("b" =~ "(b)" ? $1 : "") : ""`,
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			e, err := Parse(src)
			require.NoError(t, err)

			ctx := NewEvalContext(nil)
			_, _ = Evaluate(e, ctx)
			assert.Equal(t, 0, ctx.Depth())
		})
	}
}

func TestEvaluate_NoShortCircuit(t *testing.T) {
	exec := &fakeExec{out: "x"}

	got := mustEval(t, `false and exec(1, "cmd")`, nil, WithExec(exec))
	assert.Equal(t, Bool(false), got)
	assert.Len(t, exec.calls, 1)

	got = mustEval(t, `true or exec(1, "cmd")`, nil, WithExec(exec))
	assert.Equal(t, Bool(true), got)
	assert.Len(t, exec.calls, 2)
}

func TestEvaluate_Exec(t *testing.T) {
	exec := &fakeExec{out: "main"}

	got := mustEval(t, `exec(5, "git branch")`, nil, WithExec(exec))
	assert.Equal(t, Str("main"), got)

	got = mustEval(t,
		`exec(br, 10, "git " + sub, "/src") ? "[" + br + "]" : "none"`,
		VarMap{"sub": Str("branch")},
		WithExec(exec),
	)
	assert.Equal(t, Str("[main]"), got)
	assert.Equal(t, []string{"5|git branch|", "10|git branch|/src"}, exec.calls)

	exec.out = ""
	got = mustEval(t, `exec(br, 10, "x") ? br : "<" + br + ">"`, nil, WithExec(exec))
	assert.Equal(t, Str("<>"), got)
}

func TestEvaluate_HostErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts []Option
	}{
		{"exec without evaluator", `exec(1, "x")`, nil},
		{"exec failure", `exec(1, "x")`, []Option{WithExec(&fakeExec{err: errors.New("boom")})}},
		{"workspace without resolver", `wsname("p")`, nil},
		{"workspace failure", `wsowner("p")`, []Option{WithWorkspace(fakeWorkspace{})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.src, tt.opts...)
			require.NoError(t, err)

			_, err = Evaluate(e, NewEvalContext(nil))
			assert.ErrorIs(t, err, ErrHostCall)
		})
	}
}

func TestEvaluate_PathAndWorkspace(t *testing.T) {
	ws := WithWorkspace(fakeWorkspace{name: "ws", owner: "me"})

	assert.Equal(t, Str("ws:/a/b"), mustEval(t, `wsname(p)`, VarMap{"p": Str("/a/b")}, ws))
	assert.Equal(t, Str("me"), mustEval(t, `wsowner("/a")`, nil, ws))
	assert.Equal(t,
		Str(filepath.Join("b", "c")),
		mustEval(t, `relpath("/a/b/c", "/a")`, nil),
	)
}

func TestCompiled(t *testing.T) {
	c, err := Compile(`upcase "a" + "b"`)
	require.NoError(t, err)

	v, ok := c.Const.Get()
	require.True(t, ok)
	assert.Equal(t, Str("Ab"), v)

	c, err = Compile(`name + "!"`)
	require.NoError(t, err)
	assert.False(t, c.Const.IsConstant())

	s, err := c.Render(VarMap{"name": Str("x")})
	require.NoError(t, err)
	assert.Equal(t, "x!", s)

	unresolved, err := c.Unresolved(nil)
	require.NoError(t, err)
	require.Len(t, unresolved, 1)
	assert.Equal(t, "name", unresolved[0].Name)
}
