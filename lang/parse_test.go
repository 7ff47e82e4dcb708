package lang

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     error
		pos      int
		expected []TokenType
	}{
		{
			name:  "regex operand not constant",
			input: `x =~ some_var`,
			want:  ErrNotConstant,
			pos:   5,
		},
		{
			name:  "regex operand partially constant",
			input: `x =~ ("a" + y)`,
			want:  ErrNotConstant,
			pos:   5,
		},
		{
			name:  "regex does not compile",
			input: `x =~ "("`,
			want:  ErrRegexCompile,
			pos:   5,
		},
		{
			name:  "regex operand not a string",
			input: `x =~ true`,
			want:  ErrRegexCompile,
			pos:   5,
		},
		{
			name:     "trailing tokens",
			input:    `"a" "b"`,
			want:     ErrTrailingTokens,
			pos:      4,
			expected: []TokenType{TokenEOF},
		},
		{
			name:     "missing close paren",
			input:    `("a"`,
			want:     ErrUnexpectedToken,
			pos:      4,
			expected: []TokenType{TokenRParen},
		},
		{
			name:     "missing operand",
			input:    `+`,
			want:     ErrUnexpectedToken,
			pos:      0,
			expected: primaryStart,
		},
		{
			name:     "if without else",
			input:    `if (x) { "a" }`,
			want:     ErrUnexpectedToken,
			pos:      14,
			expected: []TokenType{TokenElse},
		},
		{
			name:     "bracket unterminated",
			input:    `[x | "a" | "b"`,
			want:     ErrUnexpectedToken,
			pos:      14,
			expected: []TokenType{TokenRBracket},
		},
		{
			name:  "exec first parameter",
			input: `exec("x", "y")`,
			want:  ErrExecParam,
			pos:   5,
		},
		{
			name:  "exec zero period",
			input: `exec(0, "y")`,
			want:  ErrExecParam,
			pos:   5,
		},
		{
			name:  "exec second parameter",
			input: `exec(out, soon, "y")`,
			want:  ErrExecParam,
			pos:   10,
		},
		{
			name:  "exec period out of range",
			input: `exec(99999999999999999999, "y")`,
			want:  ErrExecParam,
			pos:   5,
		},
		{
			name:  "exec bound period out of range",
			input: `exec(out, 99999999999999999999, "y")`,
			want:  ErrExecParam,
			pos:   10,
		},
		{
			name:     "exec missing comma",
			input:    `exec(out "y")`,
			want:     ErrUnexpectedToken,
			pos:      9,
			expected: []TokenType{TokenComma},
		},
		{
			name:     "relpath arity",
			input:    `relpath("a")`,
			want:     ErrUnexpectedToken,
			pos:      11,
			expected: []TokenType{TokenComma},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %T: %v", err, err)
			assert.Equal(t, tt.pos, pe.Pos)
			assert.Equal(t, tt.input, pe.Source)

			if tt.expected != nil {
				assert.ElementsMatch(t, tt.expected, pe.Expected)
			}
		})
	}
}

func TestParse_TokenizeErrorPropagates(t *testing.T) {
	_, err := Parse(`"abc`)
	require.ErrorIs(t, err, ErrUnterminatedString)

	var te *TokenizeError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 0, te.Pos)
}

func TestParse_ExecParamMessage(t *testing.T) {
	_, err := Parse(`exec(out, soon, "y")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parameter 2")

	_, err = Parse(`exec(99999999999999999999, "ls")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parameter 1: exec period out of range")
}

func TestParse_RegexValid(t *testing.T) {
	e, err := Parse(`x =~ "abc"`)
	require.NoError(t, err)

	m, ok := e.(*RegexMatch)
	require.True(t, ok)
	assert.Equal(t, "abc", m.Source)
	assert.False(t, m.Invert)
	assert.True(t, m.Pattern.MatchString("xABCx"))
}

func TestParse_ErrorLocation(t *testing.T) {
	_, err := Parse("\"a\" +\n  )")
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 8, pe.Pos)
	assert.Contains(t, err.Error(), "line 2, column 3")

	snippet := pe.Snippet()
	lines := strings.Split(strings.TrimRight(snippet, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "  2 |   )", lines[0])
	assert.Equal(t, strings.Index(lines[0], ")"), strings.Index(lines[1], "^"))
}

func TestParser_SingleUse(t *testing.T) {
	p := NewParser(`"a"`)

	_, err := p.Parse()
	require.NoError(t, err)

	_, err = p.Parse()
	assert.ErrorIs(t, err, ErrAlreadyParsed)
}

func TestParser_Partial(t *testing.T) {
	p := NewParser(`"a" + b "rest"`, WithPartial(true))

	e, err := p.Parse()
	require.NoError(t, err)
	assert.IsType(t, &Binary{}, e)
	assert.Equal(t, 7, p.Pos())
	assert.Equal(t, `"a" + b "rest"`, p.Text())
}

func TestParser_Constants(t *testing.T) {
	e, err := Parse(`true`)
	require.NoError(t, err)
	assert.Equal(t, &Literal{Value: Bool(true), Pos: 0}, e)

	e, err = Parse(`ANSWER`, WithConstants(VarMap{"answer": Str("42")}))
	require.NoError(t, err)
	assert.Equal(t, &Literal{Value: Str("42"), Pos: 0}, e)

	e, err = Parse(`true`, WithConstants(nil))
	require.NoError(t, err)
	assert.Equal(t, NewVariable("true", 0, 4), e)
}

func TestParse_Shape(t *testing.T) {
	e, err := Parse(`a + b == c`)
	require.NoError(t, err)

	cmp, ok := e.(*Binary)
	require.True(t, ok)
	assert.Equal(t, OpEqual, cmp.Op)

	cat, ok := cmp.X.(*Binary)
	require.True(t, ok)
	assert.Equal(t, OpConcat, cat.Op)
	assert.Equal(t, NewVariable("a", 0, 1), cat.X)
	assert.Equal(t, NewVariable("b", 4, 1), cat.Y)
	assert.Equal(t, NewVariable("c", 9, 1), cmp.Y)

	e, err = Parse(`exec(Out, 30, "c", "d")`)
	require.NoError(t, err)

	x, ok := e.(*Exec)
	require.True(t, ok)
	assert.Equal(t, 30, x.Period)
	assert.Equal(t, "out", x.Bind.Name)
	assert.Len(t, x.Children(), 2)
}
