package lang

import (
	"errors"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/ardnew/wintitle/log"
)

// Option configures a [Parser].
type Option func(*options)

type options struct {
	constants Resolver
	exec      ExecEvaluator
	paths     PathResolver
	workspace WorkspaceResolver
	partial   bool
	logger    log.Logger
}

func defaultOptions() options {
	return options{
		constants: DefaultConstants(),
		paths:     FilePaths{},
	}
}

// WithConstants sets the compile-time constants folded into literals at
// every variable reference. A nil resolver disables constant substitution.
func WithConstants(r Resolver) Option {
	return func(o *options) { o.constants = r }
}

// WithExec sets the collaborator that runs exec host calls.
func WithExec(e ExecEvaluator) Option {
	return func(o *options) { o.exec = e }
}

// WithPaths sets the collaborator for relpath host calls. The default is
// [FilePaths].
func WithPaths(r PathResolver) Option {
	return func(o *options) { o.paths = r }
}

// WithWorkspace sets the collaborator for wsname and wsowner host calls.
func WithWorkspace(r WorkspaceResolver) Option {
	return func(o *options) { o.workspace = r }
}

// WithPartial allows Parse to stop after the first complete expression
// instead of requiring the whole input to be consumed.
func WithPartial(partial bool) Option {
	return func(o *options) { o.partial = partial }
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Parser builds an expression tree from source text. A Parser is
// single-use: the second call to Parse fails with [ErrAlreadyParsed].
type Parser struct {
	text   string
	tokens *Tokenizer
	opts   options
	pos    int
	parsed bool
}

// NewParser returns a parser for text.
func NewParser(text string, opts ...Option) *Parser {
	p := &Parser{
		text:   text,
		tokens: NewTokenizer(text),
		opts:   defaultOptions(),
	}

	for _, opt := range opts {
		opt(&p.opts)
	}

	p.opts.logger.Trace("tokenizer created", slog.Int("source_length", len(text)))

	return p
}

// Parse parses text with the given options and returns its expression
// tree.
func Parse(text string, opts ...Option) (Expr, error) {
	return NewParser(text, opts...).Parse()
}

// Text returns the source text.
func (p *Parser) Text() string { return p.text }

// Pos returns the rune offset just past the last consumed token.
func (p *Parser) Pos() int { return p.pos }

// Parse builds the expression tree. Unless the parser was created with
// [WithPartial], the whole input must form a single expression.
func (p *Parser) Parse() (Expr, error) {
	if p.parsed {
		return nil, ErrAlreadyParsed
	}

	p.parsed = true

	p.opts.logger.Trace("parse start")

	e, err := p.parse()
	if err != nil {
		pe := &ParseError{}
		if errors.As(err, &pe) {
			pe.Source = p.text
		}

		p.opts.logger.Trace("parse failed", slog.Any("error", err))

		return nil, err
	}

	p.opts.logger.Trace("parse complete", slog.Int("pos", p.pos))

	return e, nil
}

func (p *Parser) parse() (Expr, error) {
	e, err := p.ternary()
	if err != nil {
		return nil, err
	}

	if p.opts.partial {
		return e, nil
	}

	tok, err := p.tokens.Peek()
	if err != nil {
		return nil, err
	}

	if tok.Type != TokenEOF {
		pe := newParseError(ErrTrailingTokens, tok)
		pe.Expected = []TokenType{TokenEOF}

		return nil, pe
	}

	return e, nil
}

func (p *Parser) peek() (Token, error) { return p.tokens.Peek() }

func (p *Parser) next() (Token, error) {
	tok, err := p.tokens.Next()
	if err == nil {
		p.pos = tok.End()
	}

	return tok, err
}

// accept consumes the next token if its type is one of types.
func (p *Parser) accept(types ...TokenType) (Token, bool, error) {
	tok, err := p.peek()
	if err != nil {
		return tok, false, err
	}

	for _, t := range types {
		if tok.Type == t {
			tok, err = p.next()

			return tok, err == nil, err
		}
	}

	return tok, false, nil
}

// expect consumes the next token, which must be one of types.
func (p *Parser) expect(types ...TokenType) (Token, error) {
	tok, ok, err := p.accept(types...)
	if err != nil {
		return tok, err
	}

	if !ok {
		return tok, expectedError(tok, types...)
	}

	return tok, nil
}

// ternary parses cond ? a [: b]. The false branch may itself be a
// ternary.
func (p *Parser) ternary() (Expr, error) {
	cond, err := p.or()
	if err != nil {
		return nil, err
	}

	q, ok, err := p.accept(TokenQuestion)
	if err != nil || !ok {
		return cond, err
	}

	then, err := p.or()
	if err != nil {
		return nil, err
	}

	var els Expr = &Literal{Value: Str(""), Pos: q.Pos}

	_, ok, err = p.accept(TokenColon)
	if err != nil {
		return nil, err
	}

	if ok {
		if els, err = p.ternary(); err != nil {
			return nil, err
		}
	}

	return &Ternary{Cond: cond, Then: then, Else: els, Pos: cond.Offset()}, nil
}

// binary parses one left-associative precedence tier whose operators
// are ops and whose operands are parsed by next.
func (p *Parser) binary(
	ops map[TokenType]BinaryOp,
	next func() (Expr, error),
) (Expr, error) {
	x, err := next()
	if err != nil {
		return nil, err
	}

	types := make([]TokenType, 0, len(ops))
	for t := range ops {
		types = append(types, t)
	}

	for {
		tok, ok, err := p.accept(types...)
		if err != nil {
			return nil, err
		}

		if !ok {
			return x, nil
		}

		y, err := next()
		if err != nil {
			return nil, err
		}

		x = &Binary{Op: ops[tok.Type], X: x, Y: y, Pos: x.Offset()}
	}
}

var (
	orOps  = map[TokenType]BinaryOp{TokenOr: OpOr, TokenPipePipe: OpOr}
	xorOps = map[TokenType]BinaryOp{TokenXor: OpXor, TokenCaret: OpXor}
	andOps = map[TokenType]BinaryOp{
		TokenAnd:    OpAnd,
		TokenAmpAmp: OpAnd,
		TokenAmp:    OpAnd,
	}
	compareOps = map[TokenType]BinaryOp{TokenEq: OpEqual, TokenNotEq: OpNotEqual}
	substrOps  = map[TokenType]BinaryOp{
		TokenContains:   OpContains,
		TokenStartsWith: OpStartsWith,
		TokenEndsWith:   OpEndsWith,
	}
	concatOps = map[TokenType]BinaryOp{TokenPlus: OpConcat}
)

func (p *Parser) or() (Expr, error)      { return p.binary(orOps, p.xor) }
func (p *Parser) xor() (Expr, error)     { return p.binary(xorOps, p.and) }
func (p *Parser) and() (Expr, error)     { return p.binary(andOps, p.compare) }
func (p *Parser) compare() (Expr, error) { return p.binary(compareOps, p.substr) }
func (p *Parser) substr() (Expr, error)  { return p.binary(substrOps, p.concat) }
func (p *Parser) concat() (Expr, error)  { return p.binary(concatOps, p.regex) }

// regex parses subject =~ pattern. The pattern operand must fold to a
// constant string; it is compiled case-insensitively here so evaluation
// never compiles.
func (p *Parser) regex() (Expr, error) {
	x, err := p.unary()
	if err != nil {
		return nil, err
	}

	op, ok, err := p.accept(TokenMatch, TokenNotMatch)
	if err != nil || !ok {
		return x, err
	}

	start, err := p.peek()
	if err != nil {
		return nil, err
	}

	rhs, err := p.unary()
	if err != nil {
		return nil, err
	}

	span := Token{Type: start.Type, Pos: start.Pos, Len: p.pos - start.Pos}

	_, c := Fold(rhs)

	val, ok := c.Get()
	if !ok {
		return nil, newParseError(ErrNotConstant.With(
			slog.String("operand", "regex pattern"),
		), span)
	}

	src, ok := val.(Str)
	if !ok {
		return nil, newParseError(ErrRegexCompile.Wrap(
			errors.New("pattern must be a string, got "+val.Kind().String()),
		), span)
	}

	re, err := regexp.Compile("(?i)" + string(src))
	if err != nil {
		return nil, newParseError(ErrRegexCompile.Wrap(err), span)
	}

	p.opts.logger.Trace("regex compiled",
		slog.String("pattern", string(src)),
		slog.Int("groups", re.NumSubexp()),
	)

	return &RegexMatch{
		Subject: x,
		Pattern: re,
		Source:  string(src),
		Invert:  op.Type == TokenNotMatch,
		Pos:     x.Offset(),
	}, nil
}

var unaryOps = map[TokenType]UnaryOp{
	TokenNot:          OpNot,
	TokenUpcase:       OpUpcase,
	TokenLocase:       OpLocase,
	TokenLcap:         OpLcap,
	TokenBool:         OpBool,
	TokenStr:          OpStr,
	TokenBackslashize: OpBackslashize,
}

func (p *Parser) unary() (Expr, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	if op, ok := unaryOps[tok.Type]; ok {
		if _, err := p.next(); err != nil {
			return nil, err
		}

		x, err := p.unary()
		if err != nil {
			return nil, err
		}

		return &Unary{Op: op, X: x, Pos: tok.Pos}, nil
	}

	switch tok.Type {
	case TokenExec:
		return p.exec()

	case TokenRelPath:
		return p.relpath()

	case TokenWsName, TokenWsOwner:
		return p.workspace()

	default:
		return p.primary()
	}
}

// primaryStart lists the tokens that may begin a primary expression.
var primaryStart = []TokenType{
	TokenString,
	TokenVariable,
	TokenLParen,
	TokenIf,
	TokenLBracket,
}

func (p *Parser) primary() (Expr, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}

	switch tok.Type {
	case TokenString:
		return &Literal{Value: Str(tok.Text), Pos: tok.Pos}, nil

	case TokenVariable:
		return p.variable(tok), nil

	case TokenLParen:
		e, err := p.ternary()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}

		return e, nil

	case TokenIf:
		return p.ifElse(tok)

	case TokenLBracket:
		return p.bracket(tok)

	default:
		return nil, expectedError(tok, primaryStart...)
	}
}

// variable returns a literal for compile-time constants and a variable
// reference otherwise.
func (p *Parser) variable(tok Token) Expr {
	v := NewVariable(tok.Text, tok.Pos, tok.Len)

	if p.opts.constants != nil {
		if val, ok := p.opts.constants.Lookup(v); ok {
			return &Literal{Value: val, Pos: tok.Pos}
		}
	}

	return v
}

// ifElse parses if (cond) [then] {a} else {b} and if (cond) {a} else if …
// after the leading if token.
func (p *Parser) ifElse(ifTok Token) (Expr, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	cond, err := p.ternary()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	if _, _, err := p.accept(TokenThen); err != nil {
		return nil, err
	}

	then, err := p.block()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenElse); err != nil {
		return nil, err
	}

	tok, err := p.expect(TokenLBrace, TokenIf)
	if err != nil {
		return nil, err
	}

	var els Expr

	if tok.Type == TokenIf {
		els, err = p.ifElse(tok)
	} else {
		els, err = p.blockBody()
	}

	if err != nil {
		return nil, err
	}

	return &Ternary{Cond: cond, Then: then, Else: els, Pos: ifTok.Pos}, nil
}

func (p *Parser) block() (Expr, error) {
	if _, err := p.expect(TokenLBrace); err != nil {
		return nil, err
	}

	return p.blockBody()
}

// blockBody parses the expression and closing brace of a block whose
// opening brace was consumed.
func (p *Parser) blockBody() (Expr, error) {
	e, err := p.ternary()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenRBrace); err != nil {
		return nil, err
	}

	return e, nil
}

// bracket parses the deprecated [cond|a|b] and [cond|a] forms after the
// opening bracket.
func (p *Parser) bracket(lb Token) (Expr, error) {
	p.opts.logger.Debug("deprecated bracket ternary",
		slog.Int("pos", lb.Pos),
		slog.String("replacement", "cond ? a : b"),
	)

	cond, err := p.ternary()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenPipe); err != nil {
		return nil, err
	}

	then, err := p.ternary()
	if err != nil {
		return nil, err
	}

	tok, err := p.expect(TokenPipe, TokenRBracket)
	if err != nil {
		return nil, err
	}

	var els Expr = &Literal{Value: Str(""), Pos: tok.Pos}

	if tok.Type == TokenPipe {
		if els, err = p.ternary(); err != nil {
			return nil, err
		}

		if _, err := p.expect(TokenRBracket); err != nil {
			return nil, err
		}
	}

	return &Ternary{Cond: cond, Then: then, Else: els, Pos: lb.Pos}, nil
}

// exec parses exec(period, command[, workdir]) and
// exec(name, period, command[, workdir]).
func (p *Parser) exec() (Expr, error) {
	kw, err := p.next()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	first, err := p.next()
	if err != nil {
		return nil, err
	}

	if first.Type != TokenVariable {
		return nil, execParamError(first, 1, "expected exec period or output variable name")
	}

	var bind *Variable

	period, isNum, rangeErr := parsePeriod(first.Text)

	switch {
	case rangeErr != nil:
		return nil, execParamError(first, 1, "exec period out of range")

	case isNum && period <= 0:
		return nil, execParamError(first, 1, "exec period must be a positive integer")

	case !isNum:
		bind = NewVariable(first.Text, first.Pos, first.Len)

		if _, err := p.expect(TokenComma); err != nil {
			return nil, err
		}

		second, err := p.next()
		if err != nil {
			return nil, err
		}

		period, isNum, rangeErr = parsePeriod(second.Text)
		if second.Type == TokenVariable && rangeErr != nil {
			return nil, execParamError(second, 2, "exec period out of range")
		}

		if second.Type != TokenVariable || !isNum || period <= 0 {
			return nil, execParamError(second, 2, "expected positive integer exec period")
		}
	}

	if _, err := p.expect(TokenComma); err != nil {
		return nil, err
	}

	cmd, err := p.ternary()
	if err != nil {
		return nil, err
	}

	var dir Expr

	_, ok, err := p.accept(TokenComma)
	if err != nil {
		return nil, err
	}

	if ok {
		if dir, err = p.ternary(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	return &Exec{
		Bind:    bind,
		Period:  period,
		Command: cmd,
		Workdir: dir,
		Host:    p.opts.exec,
		Pos:     kw.Pos,
	}, nil
}

// parsePeriod reports whether s is a decimal integer and returns it. A
// string of digits that does not fit an int reports true with a non-nil
// error.
func parsePeriod(s string) (int, bool, error) {
	if s == "" {
		return 0, false, nil
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false, nil
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, true, err
	}

	return n, true, nil
}

func execParamError(tok Token, index int, reason string) *ParseError {
	return newParseError(ErrExecParam.Wrap(
		errors.New("parameter "+strconv.Itoa(index)+": "+reason),
	).With(slog.Int("parameter", index)), tok)
}

func (p *Parser) relpath() (Expr, error) {
	kw, err := p.next()
	if err != nil {
		return nil, err
	}

	args, err := p.arguments(2)
	if err != nil {
		return nil, err
	}

	return &RelPath{Path: args[0], Base: args[1], Host: p.opts.paths, Pos: kw.Pos}, nil
}

func (p *Parser) workspace() (Expr, error) {
	kw, err := p.next()
	if err != nil {
		return nil, err
	}

	args, err := p.arguments(1)
	if err != nil {
		return nil, err
	}

	field := WorkspaceName
	if kw.Type == TokenWsOwner {
		field = WorkspaceOwner
	}

	return &Workspace{Field: field, Path: args[0], Host: p.opts.workspace, Pos: kw.Pos}, nil
}

// arguments parses a parenthesized list of exactly n expressions.
func (p *Parser) arguments(n int) ([]Expr, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	args := make([]Expr, 0, n)

	for i := range n {
		if i > 0 {
			if _, err := p.expect(TokenComma); err != nil {
				return nil, err
			}
		}

		e, err := p.ternary()
		if err != nil {
			return nil, err
		}

		args = append(args, e)
	}

	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	return args, nil
}
