package lang

import (
	"strings"
	"unicode"
)

// Tokenizer converts source text into a lazily produced stream of tokens.
// At most one token of lookahead is buffered.
type Tokenizer struct {
	input  []rune
	pos    int
	peeked *Token
	err    error
}

// NewTokenizer returns a tokenizer positioned at the start of text.
func NewTokenizer(text string) *Tokenizer {
	return &Tokenizer{input: []rune(text)}
}

// Peek returns the next token without consuming it.
func (t *Tokenizer) Peek() (Token, error) {
	if t.peeked == nil && t.err == nil {
		tok, err := t.scan()
		if err != nil {
			t.err = err
		} else {
			t.peeked = &tok
		}
	}

	if t.err != nil {
		return Token{}, t.err
	}

	return *t.peeked, nil
}

// Next consumes and returns the next token. Once EOF is reached every
// subsequent call returns another EOF token. Errors are sticky.
func (t *Tokenizer) Next() (Token, error) {
	tok, err := t.Peek()
	if err != nil {
		return tok, err
	}

	if tok.Type != TokenEOF {
		t.peeked = nil
	}

	return tok, nil
}

// Pos returns the rune offset of the cursor.
func (t *Tokenizer) Pos() int { return t.pos }

// Tokens consumes the remaining input and returns every token up to and
// including EOF.
func (t *Tokenizer) Tokens() ([]Token, error) {
	var toks []Token

	for {
		tok, err := t.Next()
		if err != nil {
			return toks, err
		}

		toks = append(toks, tok)

		if tok.Type == TokenEOF {
			return toks, nil
		}
	}
}

// scan computes the token beginning at the cursor.
func (t *Tokenizer) scan() (Token, error) {
	err := t.skipWhitespaceAndComments()
	if err != nil {
		return Token{}, err
	}

	start := t.pos

	if t.eof() {
		return Token{Type: TokenEOF, Pos: start}, nil
	}

	ch := t.input[t.pos]

	if ch == '"' {
		return t.scanString()
	}

	if typ, n := t.scanOperator(); n > 0 {
		t.pos += n

		return Token{Type: typ, Text: string(t.input[start:t.pos]), Pos: start, Len: n}, nil
	}

	if isIdentRune(ch) {
		for !t.eof() && isIdentRune(t.input[t.pos]) {
			t.pos++
		}

		text := string(t.input[start:t.pos])

		return Token{
			Type: lookupKeyword(text),
			Text: text,
			Pos:  start,
			Len:  t.pos - start,
		}, nil
	}

	return Token{}, newTokenizeError(ErrInvalidToken, start, 1)
}

// scanOperator recognizes operators by fixed-length lookahead, longest
// match first. It returns n == 0 if no operator begins at the cursor.
func (t *Tokenizer) scanOperator() (typ TokenType, n int) {
	if t.pos+1 < len(t.input) {
		switch string(t.input[t.pos : t.pos+2]) {
		case "==":
			return TokenEq, 2
		case "!=":
			return TokenNotEq, 2
		case "=~":
			return TokenMatch, 2
		case "!~":
			return TokenNotMatch, 2
		case "&&":
			return TokenAmpAmp, 2
		case "||":
			return TokenPipePipe, 2
		}
	}

	switch t.input[t.pos] {
	case '&':
		return TokenAmp, 1
	case '|':
		return TokenPipe, 1
	case '^':
		return TokenCaret, 1
	case '+':
		return TokenPlus, 1
	case '?':
		return TokenQuestion, 1
	case ':':
		return TokenColon, 1
	case ',':
		return TokenComma, 1
	case '(':
		return TokenLParen, 1
	case ')':
		return TokenRParen, 1
	case '{':
		return TokenLBrace, 1
	case '}':
		return TokenRBrace, 1
	case '[':
		return TokenLBracket, 1
	case ']':
		return TokenRBracket, 1
	}

	return TokenEOF, 0
}

// scanString reads a double-quoted literal. A doubled quote inside the
// literal stands for one quote character; there are no other escapes.
func (t *Tokenizer) scanString() (Token, error) {
	start := t.pos
	t.pos++ // skip opening quote

	var sb strings.Builder

	for !t.eof() {
		ch := t.input[t.pos]
		t.pos++

		if ch != '"' {
			sb.WriteRune(ch)

			continue
		}

		if !t.eof() && t.input[t.pos] == '"' {
			sb.WriteRune('"')

			t.pos++

			continue
		}

		return Token{
			Type: TokenString,
			Text: sb.String(),
			Pos:  start,
			Len:  t.pos - start,
		}, nil
	}

	return Token{}, newTokenizeError(ErrUnterminatedString, start, t.pos-start)
}

func (t *Tokenizer) skipWhitespaceAndComments() error {
	for !t.eof() {
		ch := t.input[t.pos]

		if unicode.IsSpace(ch) {
			t.pos++

			continue
		}

		if ch != '/' || t.pos+1 >= len(t.input) {
			return nil
		}

		switch t.input[t.pos+1] {
		case '/':
			for !t.eof() && t.input[t.pos] != '\n' {
				t.pos++
			}

		case '*':
			start := t.pos
			t.pos += 2

			for {
				if t.pos+1 >= len(t.input) {
					t.pos = len(t.input)

					return newTokenizeError(ErrUnterminatedComment, start, t.pos-start)
				}

				if t.input[t.pos] == '*' && t.input[t.pos+1] == '/' {
					t.pos += 2

					break
				}

				t.pos++
			}

		default:
			return nil
		}
	}

	return nil
}

func (t *Tokenizer) eof() bool { return t.pos >= len(t.input) }

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$'
}
