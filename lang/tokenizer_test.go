package lang

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestTokenizer_Tokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "empty",
			input: "",
			want:  []Token{{Type: TokenEOF}},
		},
		{
			name:  "doubled quote",
			input: `"a""b"`,
			want: []Token{
				{Type: TokenString, Text: `a"b`, Pos: 0, Len: 6},
				{Type: TokenEOF, Pos: 6},
			},
		},
		{
			name:  "line comment",
			input: `x == "y" // c`,
			want: []Token{
				{Type: TokenVariable, Text: "x", Pos: 0, Len: 1},
				{Type: TokenEq, Text: "==", Pos: 2, Len: 2},
				{Type: TokenString, Text: "y", Pos: 5, Len: 3},
				{Type: TokenEOF, Pos: 13},
			},
		},
		{
			name:  "block comment",
			input: "a /* b\n c */ + b",
			want: []Token{
				{Type: TokenVariable, Text: "a", Pos: 0, Len: 1},
				{Type: TokenPlus, Text: "+", Pos: 13, Len: 1},
				{Type: TokenVariable, Text: "b", Pos: 15, Len: 1},
				{Type: TokenEOF, Pos: 16},
			},
		},
		{
			name:  "keywords ignore case",
			input: "NOT Upcase startsWith",
			want: []Token{
				{Type: TokenNot, Text: "NOT", Pos: 0, Len: 3},
				{Type: TokenUpcase, Text: "Upcase", Pos: 4, Len: 6},
				{Type: TokenStartsWith, Text: "startsWith", Pos: 11, Len: 10},
				{Type: TokenEOF, Pos: 21},
			},
		},
		{
			name:  "identifiers",
			input: "$1 _a été 10",
			want: []Token{
				{Type: TokenVariable, Text: "$1", Pos: 0, Len: 2},
				{Type: TokenVariable, Text: "_a", Pos: 3, Len: 2},
				{Type: TokenVariable, Text: "été", Pos: 6, Len: 3},
				{Type: TokenVariable, Text: "10", Pos: 10, Len: 2},
				{Type: TokenEOF, Pos: 12},
			},
		},
		{
			name:  "trailing whitespace",
			input: "a \n\t ",
			want: []Token{
				{Type: TokenVariable, Text: "a", Pos: 0, Len: 1},
				{Type: TokenEOF, Pos: 5},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTokenizer(tt.input).Tokens()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenizer_Operators(t *testing.T) {
	input := `== != =~ !~ && || & | ^ + ? : , ( ) { } [ ]`
	want := []TokenType{
		TokenEq, TokenNotEq, TokenMatch, TokenNotMatch, TokenAmpAmp,
		TokenPipePipe, TokenAmp, TokenPipe, TokenCaret, TokenPlus,
		TokenQuestion, TokenColon, TokenComma, TokenLParen, TokenRParen,
		TokenLBrace, TokenRBrace, TokenLBracket, TokenRBracket, TokenEOF,
	}

	toks, err := NewTokenizer(input).Tokens()
	require.NoError(t, err)
	require.Len(t, toks, len(want))

	for i, tok := range toks {
		if tok.Type != want[i] {
			t.Errorf("token %d: got %v, want %v", i, tok.Type, want[i])
		}
	}
}

func TestTokenizer_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
		pos   int
	}{
		{"unterminated string", `a + "abc`, ErrUnterminatedString, 4},
		{"unterminated comment", `a /* abc`, ErrUnterminatedComment, 2},
		{"invalid character", `a # b`, ErrInvalidToken, 2},
		{"single equals", `a = b`, ErrInvalidToken, 2},
		{"lone bang", `!a`, ErrInvalidToken, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenizer(tt.input).Tokens()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var te *TokenizeError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tt.pos, te.Pos)
		})
	}
}

func TestTokenizer_PeekNext(t *testing.T) {
	tz := NewTokenizer("a b")

	p, err := tz.Peek()
	require.NoError(t, err)

	n, err := tz.Next()
	require.NoError(t, err)
	assert.Equal(t, p, n)

	n, err = tz.Next()
	require.NoError(t, err)
	assert.Equal(t, "b", n.Text)

	for range 3 {
		n, err = tz.Next()
		require.NoError(t, err)
		assert.Equal(t, TokenEOF, n.Type)
	}
}

func TestTokenizer_StickyError(t *testing.T) {
	tz := NewTokenizer("a #")

	_, err := tz.Next()
	require.NoError(t, err)

	_, err = tz.Next()
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = tz.Peek()
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenizer_PositionsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.StringMatching(`[a-z0-9 "=!~&|^+?:,(){}\[\]/*\n]{0,40}`).
			Draw(t, "input")
		size := len([]rune(input))

		toks, err := NewTokenizer(input).Tokens()
		if err != nil {
			var te *TokenizeError
			if !errors.As(err, &te) {
				t.Fatalf("unexpected error type %T", err)
			}

			if te.Pos < 0 || te.Pos > size {
				t.Fatalf("error position %d outside input of length %d", te.Pos, size)
			}

			return
		}

		if len(toks) == 0 || toks[len(toks)-1].Type != TokenEOF {
			t.Fatalf("last token is not EOF: %v", toks)
		}

		end := 0
		for _, tok := range toks {
			if tok.Pos < end {
				t.Fatalf("token %v starts before previous end %d", tok, end)
			}

			end = tok.End()
		}

		if end > size {
			t.Fatalf("tokens extend past input: %d > %d", end, size)
		}
	})
}

func TestKeywords(t *testing.T) {
	kw := Keywords()

	assert.True(t, slices.IsSorted(kw))
	assert.Contains(t, kw, "exec")
	assert.Contains(t, kw, "startswith")
	assert.NotContains(t, kw, "+")
}
