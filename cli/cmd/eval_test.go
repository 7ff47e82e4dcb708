package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/wintitle/lang"
)

func TestEval(t *testing.T) {
	tests := []struct {
		name  string
		eval  Eval
		stdin string
		want  string
	}{
		{
			name: "constant",
			eval: Eval{Source: Source{Expr: `"a" + "b"`}},
			want: "ab\n",
		},
		{
			name: "variable",
			eval: Eval{
				Source:    Source{Expr: `title + "!"`},
				Variables: Variables{Var: []string{"title=Doc"}},
			},
			want: "Doc!\n",
		},
		{
			name: "missing variable renders empty",
			eval: Eval{Source: Source{Expr: `title + "!"`}},
			want: "!\n",
		},
		{
			name: "boolean",
			eval: Eval{Source: Source{Expr: `"x" == "X"`}},
			want: "true\n",
		},
		{
			name: "native",
			eval: Eval{Source: Source{Expr: `"a""b"`}, Native: true},
			want: "\"a\"\"b\"\n",
		},
		{
			name:  "stdin",
			eval:  Eval{Source: Source{File: "-"}},
			stdin: `upcase "x"`,
			want:  "X\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.eval.Host = noExec()

			got, err := run(t, &tt.eval, tt.stdin)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEval_Strict(t *testing.T) {
	e := &Eval{Source: Source{Expr: `title + "!"`}, Host: noExec(), Strict: true}

	_, err := run(t, e, "")
	assert.ErrorIs(t, err, lang.ErrUnresolvedVariable)
}

func TestEval_SyntaxError(t *testing.T) {
	e := &Eval{Source: Source{Expr: `"a" +`}, Host: noExec()}

	out, err := run(t, e, "")
	assert.ErrorIs(t, err, lang.ErrUnexpectedToken)
	assert.Empty(t, out)
}

func TestEval_NoInput(t *testing.T) {
	_, err := run(t, &Eval{Host: noExec()}, "")
	assert.ErrorIs(t, err, ErrNoInput)
}
