package lang

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrInvalidToken        = NewError("invalid token")
	ErrUnterminatedString  = NewError("unterminated string literal")
	ErrUnterminatedComment = NewError("unterminated block comment")
	ErrUnexpectedToken     = NewError("unexpected token")
	ErrTrailingTokens      = NewError("unexpected tokens after expression")
	ErrNotConstant         = NewError("expression is not constant")
	ErrRegexCompile        = NewError("invalid regular expression")
	ErrExecParam           = NewError("invalid exec parameter")
	ErrUnresolvedVariable  = NewError("unresolved variable")
	ErrAlreadyParsed       = NewError("parser already used")
	ErrHostCall            = NewError("host call failed")
	ErrCollectorOrder      = NewError("overlapping unresolved variable ranges")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
// Errors created with [Error.With] and [Error.Wrap] keep the sentinel's
// message, so they match the sentinel itself.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.err != nil || t.msg == "" {
		return false
	}

	return e.msg == t.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// TokenizeError reports malformed source text. Pos and Len are rune
// offsets into the source.
type TokenizeError struct {
	Pos int
	Len int
	err *Error
}

func newTokenizeError(base *Error, pos, n int) *TokenizeError {
	return &TokenizeError{
		Pos: pos,
		Len: n,
		err: base.With(slog.Int("pos", pos)),
	}
}

// Error implements the error interface.
func (e *TokenizeError) Error() string {
	return e.err.Error() + " at offset " + strconv.Itoa(e.Pos)
}

// Unwrap returns the sentinel describing the failure.
func (e *TokenizeError) Unwrap() error { return e.err }

// LogValue implements slog.LogValuer.
func (e *TokenizeError) LogValue() slog.Value { return e.err.LogValue() }

// ParseError reports a grammar violation at Pos. When Expected is
// non-empty the error lists the token kinds the parser would have
// accepted at that offset.
type ParseError struct {
	Pos      int
	Len      int
	Expected []TokenType
	Source   string // The original source input, if known
	err      *Error
}

func newParseError(base *Error, tok Token) *ParseError {
	return &ParseError{
		Pos: tok.Pos,
		Len: tok.Len,
		err: base.With(slog.Int("pos", tok.Pos)),
	}
}

func expectedError(tok Token, expected ...TokenType) *ParseError {
	pe := newParseError(ErrUnexpectedToken, tok)
	pe.Expected = expected
	pe.err = pe.err.With(slog.String("got", tok.Type.String()))

	return pe
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var buf strings.Builder

	buf.WriteString(e.err.Error())

	if e.Source != "" {
		line, col := lineColumn(e.Source, e.Pos)
		buf.WriteString(" at line ")
		buf.WriteString(strconv.Itoa(line))
		buf.WriteString(", column ")
		buf.WriteString(strconv.Itoa(col))
	} else {
		buf.WriteString(" at offset ")
		buf.WriteString(strconv.Itoa(e.Pos))
	}

	if exp := e.expected(); len(exp) > 0 {
		buf.WriteString(": expected ")
		buf.WriteString(strings.Join(exp, ", "))
	}

	return buf.String()
}

// Unwrap returns the sentinel describing the failure.
func (e *ParseError) Unwrap() error { return e.err }

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	v := e.err.LogValue()
	if exp := e.expected(); len(exp) > 0 {
		return slog.GroupValue(append(v.Group(),
			slog.String("expected", strings.Join(exp, ",")))...)
	}

	return v
}

// Snippet renders the offending source line with a caret under Pos.
// It returns the empty string when Source is unset.
func (e *ParseError) Snippet() string {
	if e.Source == "" {
		return ""
	}

	lines := strings.Split(e.Source, "\n")
	line, col := lineColumn(e.Source, e.Pos)

	if line < 1 || line > len(lines) {
		return ""
	}

	var src strings.Builder

	// Print the line with line number
	src.WriteString("  ")
	src.WriteString(strconv.Itoa(line))
	src.WriteString(" | ")
	src.WriteString(lines[line-1])
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(strconv.Itoa(line))+5)
	if col > 0 {
		padding += strings.Repeat(" ", col-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}

func (e *ParseError) expected() []string {
	exp := make([]string, 0, len(e.Expected))
	for _, t := range e.Expected {
		exp = append(exp, strconv.Quote(t.String()))
	}

	slices.Sort(exp)

	return slices.Compact(exp)
}

// lineColumn converts a rune offset into 1-based line and column numbers.
func lineColumn(source string, pos int) (line, col int) {
	line, col = 1, 1

	i := 0
	for _, r := range source {
		if i >= pos {
			break
		}

		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}

		i++
	}

	return line, col
}

// UnresolvedVariableError is returned by strict evaluation when no
// resolver supplies a value for Variable.
type UnresolvedVariableError struct {
	Variable *Variable
}

// Error implements the error interface.
func (e *UnresolvedVariableError) Error() string {
	return ErrUnresolvedVariable.Error() + " " + strconv.Quote(e.Variable.Name) +
		" at offset " + strconv.Itoa(e.Variable.Pos)
}

// Unwrap returns [ErrUnresolvedVariable].
func (e *UnresolvedVariableError) Unwrap() error { return ErrUnresolvedVariable }

// LogValue implements slog.LogValuer.
func (e *UnresolvedVariableError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrUnresolvedVariable.msg),
		slog.String("name", e.Variable.Name),
		slog.Int("pos", e.Variable.Pos),
	)
}
