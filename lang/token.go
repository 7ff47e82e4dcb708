package lang

import (
	"maps"
	"slices"
	"strings"
)

// TokenType identifies the lexical class of a [Token].
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenString
	TokenVariable

	// Operators and punctuation.
	TokenEq         // ==
	TokenNotEq      // !=
	TokenMatch      // =~
	TokenNotMatch   // !~
	TokenAmpAmp     // &&
	TokenPipePipe   // ||
	TokenAmp        // &
	TokenPipe       // |
	TokenCaret      // ^
	TokenPlus       // +
	TokenQuestion   // ?
	TokenColon      // :
	TokenComma      // ,
	TokenLParen     // (
	TokenRParen     // )
	TokenLBrace     // {
	TokenRBrace     // }
	TokenLBracket   // [
	TokenRBracket   // ]

	// Keywords.
	TokenNot
	TokenUpcase
	TokenLocase
	TokenLcap
	TokenBool
	TokenStr
	TokenBackslashize
	TokenContains
	TokenStartsWith
	TokenEndsWith
	TokenAnd
	TokenXor
	TokenOr
	TokenIf
	TokenThen
	TokenElse
	TokenExec
	TokenRelPath
	TokenWsName
	TokenWsOwner

	tokenTypeCount
)

var tokenNames = [tokenTypeCount]string{
	TokenEOF:          "EOF",
	TokenString:       "string",
	TokenVariable:     "variable",
	TokenEq:           "==",
	TokenNotEq:        "!=",
	TokenMatch:        "=~",
	TokenNotMatch:     "!~",
	TokenAmpAmp:       "&&",
	TokenPipePipe:     "||",
	TokenAmp:          "&",
	TokenPipe:         "|",
	TokenCaret:        "^",
	TokenPlus:         "+",
	TokenQuestion:     "?",
	TokenColon:        ":",
	TokenComma:        ",",
	TokenLParen:       "(",
	TokenRParen:       ")",
	TokenLBrace:       "{",
	TokenRBrace:       "}",
	TokenLBracket:     "[",
	TokenRBracket:     "]",
	TokenNot:          "not",
	TokenUpcase:       "upcase",
	TokenLocase:       "locase",
	TokenLcap:         "lcap",
	TokenBool:         "bool",
	TokenStr:          "str",
	TokenBackslashize: "backslashize",
	TokenContains:     "contains",
	TokenStartsWith:   "startswith",
	TokenEndsWith:     "endswith",
	TokenAnd:          "and",
	TokenXor:          "xor",
	TokenOr:           "or",
	TokenIf:           "if",
	TokenThen:         "then",
	TokenElse:         "else",
	TokenExec:         "exec",
	TokenRelPath:      "relpath",
	TokenWsName:       "wsname",
	TokenWsOwner:      "wsowner",
}

// String returns the source spelling of operators and keywords, or a
// descriptive name for the other token types.
func (t TokenType) String() string {
	if t < 0 || t >= tokenTypeCount {
		return "unknown"
	}

	return tokenNames[t]
}

// keywords maps lowercase keyword spellings to their token types.
var keywords = func() map[string]TokenType {
	m := make(map[string]TokenType)
	for t := TokenNot; t < tokenTypeCount; t++ {
		m[tokenNames[t]] = t
	}

	return m
}()

// Keywords returns the keyword spellings in sorted order.
func Keywords() []string { return slices.Sorted(maps.Keys(keywords)) }

// lookupKeyword returns the keyword token type for ident, compared
// case-insensitively, or [TokenVariable] if ident is not a keyword.
func lookupKeyword(ident string) TokenType {
	if t, ok := keywords[strings.ToLower(ident)]; ok {
		return t
	}

	return TokenVariable
}

// Token is a lexical token. Pos and Len are rune offsets into the source.
// Text holds the unescaped contents of string literals and the original
// spelling of identifiers and keywords.
type Token struct {
	Type TokenType
	Text string
	Pos  int
	Len  int
}

// End returns the rune offset immediately after the token.
func (t Token) End() int { return t.Pos + t.Len }
