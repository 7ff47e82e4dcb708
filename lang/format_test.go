package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`x+"y"`, `x + "y"`},
		{`"a""b"`, `"a""b"`},
		{`not(x and y)`, `not (x and y)`},
		{`x ? "a" : y ? "b" : "c"`, `x ? "a" : y ? "b" : "c"`},
		{`(x ? "a" : "b") + "c"`, `(x ? "a" : "b") + "c"`},
		{`[x|"a"]`, `x ? "a" : ""`},
		{`if (x) { "a" } else { "b" }`, `x ? "a" : "b"`},
		{`a && b || c`, `a and b or c`},
		{`a or (b or c)`, `a or (b or c)`},
		{`"a" + "b" + "c"`, `"a" + "b" + "c"`},
		{`"a" + ("b" + "c")`, `"a" + ("b" + "c")`},
		{`x !~ "a.b"`, `x !~ "a.b"`},
		{`upcase x =~ "a" + y`, `upcase x =~ "a" + y`},
		{`exec(Out, 5, "git", "/tmp")`, `exec(Out, 5, "git", "/tmp")`},
		{`relpath(a, b)`, `relpath(a, b)`},
		{`WsOwner(p)`, `wsowner(p)`},
		{`true`, `true`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e := mustParse(t, tt.input)
			got := FormatString(e)
			assert.Equal(t, tt.want, got)

			// The canonical form is a fixed point.
			assert.Equal(t, got, FormatString(mustParse(t, got)))
		})
	}
}

func TestFormatString_BoolLiteralUsesConstants(t *testing.T) {
	for _, b := range []Bool{true, false} {
		src := FormatString(&Literal{Value: b})

		e := mustParse(t, src)
		lit, ok := e.(*Literal)
		require.True(t, ok, "%s parsed as %T", src, e)
		assert.Equal(t, Value(b), lit.Value)

		// Without the default constants the spelling is a variable.
		_, ok = mustParse(t, src, WithConstants(nil)).(*Variable)
		assert.True(t, ok)
	}
}

func TestFormat_Writer(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Format(&buf, mustParse(t, `a+b`)))
	assert.Equal(t, "a + b", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer

	err := FormatJSON(context.Background(), &buf, mustParse(t, `x + "y"`), 0)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "binary", got["node"])
	assert.Equal(t, "+", got["op"])

	left, ok := got["left"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "x", left["name"])

	buf.Reset()
	require.NoError(t, FormatJSON(context.Background(), &buf, mustParse(t, `"a"`), 2))
	assert.Contains(t, buf.String(), "\n  \"kind\": \"Str\"")
}

func TestFormatYAML(t *testing.T) {
	var buf bytes.Buffer

	err := FormatYAML(context.Background(), &buf, mustParse(t, `x =~ "a"`), 2)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "node: regex")
	assert.Contains(t, out, "pattern: a")
	assert.Contains(t, out, "subject:")
}

func TestFormatTree(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, FormatTree(&buf, mustParse(t, `x + "y"`), 2))

	want := strings.Join([]string{
		"Binary + @0",
		"  Variable x @0",
		`  Str "y" @4`,
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestCompiled_MarshalJSON(t *testing.T) {
	c, err := Compile(`"a" + "b"`)
	require.NoError(t, err)

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "ab", got["constant"])
	assert.Equal(t, `"a" + "b"`, got["source"])
}
