package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/wintitle/lang"
)

func TestFmt_Native(t *testing.T) {
	tests := []struct {
		name string
		tree Tree
		want string
	}{
		{"canonical", Tree{Source: Source{Expr: `x+"y"`}}, "x + \"y\"\n"},
		{"bracket", Tree{Source: Source{Expr: `[x|"a"]`}}, "x ? \"a\" : \"\"\n"},
		{"folded", Tree{Source: Source{Expr: `"a" + "b"`}}, "\"ab\"\n"},
		{"raw", Tree{Source: Source{Expr: `"a" + "b"`}, Raw: true}, "\"a\" + \"b\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, &Native{Tree: tt.tree}, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestFmt_JSON(t *testing.T) {
	out, err := run(t, &JSON{Tree: Tree{Source: Source{Expr: `x + "y"`}}, Indent: 2}, "")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), out)
}

func TestFmt_YAML(t *testing.T) {
	out, err := run(t, &YAML{Tree: Tree{Source: Source{File: "-"}}, Indent: 2}, `x + "y"`)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestFmt_AST(t *testing.T) {
	out, err := run(t, &AST{Tree: Tree{Source: Source{Expr: `x + "y"`}}, Indent: 2}, "")
	require.NoError(t, err)

	want := strings.Join([]string{
		"Binary + @0",
		"  Variable x @0",
		`  Str "y" @4`,
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestFmt_Error(t *testing.T) {
	_, err := run(t, &Native{Tree: Tree{Source: Source{Expr: `(`}}}, "")
	assert.ErrorIs(t, err, lang.ErrUnexpectedToken)

	_, err = run(t, &Native{Tree: Tree{Source: Source{Expr: `(`}, Raw: true}}, "")
	assert.ErrorIs(t, err, lang.ErrUnexpectedToken)
}
