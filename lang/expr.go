package lang

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Expr is a node of the abstract syntax tree. Every node exclusively
// owns its children.
type Expr interface {
	// Offset returns the rune offset of the node's first token.
	Offset() int
	// Children returns the node's sub-expressions in evaluation order.
	Children() []Expr
	// Eval evaluates the node against ctx.
	Eval(ctx Context) (Result, error)

	collect(c *collector) error
	rebuild(children []Expr) Expr
}

// Result is the outcome of evaluating a node. Locals is non-nil when the
// node introduces variables (regex captures, exec output) visible to the
// branch selected by an enclosing ternary.
type Result struct {
	Value  Value
	Locals Resolver
}

// impure is implemented by nodes that call out to host collaborators.
// They are never constant-folded.
type impure interface {
	hostCall()
}

// bindsAlways is implemented by nodes whose local resolver is present
// whatever value they produce, so both ternary branches see it.
type bindsAlways interface {
	bindsAlways()
}

// withLocals runs fn with r pushed onto the local resolver stack of ctx.
// A nil r runs fn in the current scope.
func withLocals[T any](ctx Context, r Resolver, fn func() (T, error)) (T, error) {
	if r == nil {
		return fn()
	}

	ctx.Push(r)
	defer ctx.Pop()

	return fn()
}

func evalValue(ctx Context, e Expr) (Value, error) {
	r, err := e.Eval(ctx)
	if err != nil {
		return nil, err
	}

	return r.Value, nil
}

// Literal is a constant value.
type Literal struct {
	Value Value
	Pos   int
}

func (l *Literal) Offset() int      { return l.Pos }
func (l *Literal) Children() []Expr { return nil }

func (l *Literal) Eval(Context) (Result, error) { return Result{Value: l.Value}, nil }

func (l *Literal) collect(*collector) error { return nil }
func (l *Literal) rebuild([]Expr) Expr      { return l }

// Variable is a reference to a named value. Name is lowercase; Text keeps
// the source spelling. Pos and Len locate the reference in the source.
type Variable struct {
	Name string
	Text string
	Pos  int
	Len  int
}

// NewVariable returns a variable reference with a case-normalized name.
func NewVariable(text string, pos, n int) *Variable {
	return &Variable{Name: strings.ToLower(text), Text: text, Pos: pos, Len: n}
}

func (v *Variable) Offset() int      { return v.Pos }
func (v *Variable) Children() []Expr { return nil }

func (v *Variable) Eval(ctx Context) (Result, error) {
	val, err := ctx.Resolve(v)
	if err != nil {
		return Result{}, err
	}

	return Result{Value: val}, nil
}

func (v *Variable) collect(c *collector) error {
	_, err := c.ctx.Resolve(v)

	return err
}

func (v *Variable) rebuild([]Expr) Expr { return v }

// UnaryOp enumerates prefix operators.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpUpcase
	OpLocase
	OpLcap
	OpBool
	OpStr
	OpBackslashize
)

var unaryOpNames = [...]string{
	OpNot:          "not",
	OpUpcase:       "upcase",
	OpLocase:       "locase",
	OpLcap:         "lcap",
	OpBool:         "bool",
	OpStr:          "str",
	OpBackslashize: "backslashize",
}

func (op UnaryOp) String() string {
	if op < 0 || int(op) >= len(unaryOpNames) {
		return "UnaryOp(" + strconv.Itoa(int(op)) + ")"
	}

	return unaryOpNames[op]
}

func (op UnaryOp) apply(x Value) Value {
	switch op {
	case OpNot:
		return Bool(!x.Truth())

	case OpUpcase:
		return Str(strings.ToUpper(x.String()))

	case OpLocase:
		return Str(strings.ToLower(x.String()))

	case OpLcap:
		s := strings.ToLower(x.String())
		r, n := utf8.DecodeRuneInString(s)

		if n == 0 {
			return Str(s)
		}

		return Str(string(unicode.ToUpper(r)) + s[n:])

	case OpBool:
		return Bool(x.Truth())

	case OpStr:
		return Str(x.String())

	case OpBackslashize:
		return Str(strings.ReplaceAll(x.String(), "/", `\`))

	default:
		return x
	}
}

// Unary applies a prefix operator to X.
type Unary struct {
	Op  UnaryOp
	X   Expr
	Pos int
}

func (u *Unary) Offset() int      { return u.Pos }
func (u *Unary) Children() []Expr { return []Expr{u.X} }

func (u *Unary) Eval(ctx Context) (Result, error) {
	x, err := evalValue(ctx, u.X)
	if err != nil {
		return Result{}, err
	}

	return Result{Value: u.Op.apply(x)}, nil
}

func (u *Unary) collect(c *collector) error { return c.visit(u.X) }

func (u *Unary) rebuild(children []Expr) Expr {
	return &Unary{Op: u.Op, X: children[0], Pos: u.Pos}
}

// BinaryOp enumerates infix operators.
type BinaryOp int

const (
	OpConcat BinaryOp = iota
	OpEqual
	OpNotEqual
	OpAnd
	OpOr
	OpXor
	OpContains
	OpStartsWith
	OpEndsWith
)

var binaryOpNames = [...]string{
	OpConcat:     "+",
	OpEqual:      "==",
	OpNotEqual:   "!=",
	OpAnd:        "and",
	OpOr:         "or",
	OpXor:        "xor",
	OpContains:   "contains",
	OpStartsWith: "startswith",
	OpEndsWith:   "endswith",
}

func (op BinaryOp) String() string {
	if op < 0 || int(op) >= len(binaryOpNames) {
		return "BinaryOp(" + strconv.Itoa(int(op)) + ")"
	}

	return binaryOpNames[op]
}

func (op BinaryOp) apply(x, y Value) Value {
	switch op {
	case OpConcat:
		return Str(x.String() + y.String())

	case OpEqual:
		return Bool(Equal(x, y))

	case OpNotEqual:
		return Bool(!Equal(x, y))

	case OpAnd:
		return Bool(x.Truth() && y.Truth())

	case OpOr:
		return Bool(x.Truth() || y.Truth())

	case OpXor:
		return Bool(x.Truth() != y.Truth())

	case OpContains:
		return Bool(strings.Contains(
			strings.ToLower(x.String()), strings.ToLower(y.String())))

	case OpStartsWith:
		return Bool(strings.HasPrefix(
			strings.ToLower(x.String()), strings.ToLower(y.String())))

	case OpEndsWith:
		return Bool(strings.HasSuffix(
			strings.ToLower(x.String()), strings.ToLower(y.String())))

	default:
		return Bool(false)
	}
}

// Binary applies an infix operator to X and Y. Both operands are always
// evaluated, left to right.
type Binary struct {
	Op  BinaryOp
	X   Expr
	Y   Expr
	Pos int
}

func (b *Binary) Offset() int      { return b.Pos }
func (b *Binary) Children() []Expr { return []Expr{b.X, b.Y} }

func (b *Binary) Eval(ctx Context) (Result, error) {
	x, err := evalValue(ctx, b.X)
	if err != nil {
		return Result{}, err
	}

	y, err := evalValue(ctx, b.Y)
	if err != nil {
		return Result{}, err
	}

	return Result{Value: b.Op.apply(x, y)}, nil
}

func (b *Binary) collect(c *collector) error {
	if err := c.visit(b.X); err != nil {
		return err
	}

	return c.visit(b.Y)
}

func (b *Binary) rebuild(children []Expr) Expr {
	return &Binary{Op: b.Op, X: children[0], Y: children[1], Pos: b.Pos}
}

// Ternary selects Then or Else by the truth of Cond. The local resolver
// produced by Cond is in scope while the selected branch evaluates.
type Ternary struct {
	Cond Expr
	Then Expr
	Else Expr
	Pos  int
}

func (t *Ternary) Offset() int      { return t.Pos }
func (t *Ternary) Children() []Expr { return []Expr{t.Cond, t.Then, t.Else} }

func (t *Ternary) Eval(ctx Context) (Result, error) {
	cond, err := t.Cond.Eval(ctx)
	if err != nil {
		return Result{}, err
	}

	branch := t.Else
	if cond.Value.Truth() {
		branch = t.Then
	}

	val, err := withLocals(ctx, cond.Locals, func() (Value, error) {
		return evalValue(ctx, branch)
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Value: val}, nil
}

// collect visits both branches: the branch the condition currently
// selects under the condition's local resolver, the other one under the
// enclosing scope unless the condition binds unconditionally.
func (t *Ternary) collect(c *collector) error {
	if err := c.visit(t.Cond); err != nil {
		return err
	}

	cond, err := t.Cond.Eval(c.quiet)
	if err != nil {
		if err := c.visit(t.Then); err != nil {
			return err
		}

		return c.visit(t.Else)
	}

	taken, other := t.Else, t.Then
	if cond.Value.Truth() {
		taken, other = t.Then, t.Else
	}

	_, err = withLocals(c.ctx, cond.Locals, func() (struct{}, error) {
		return struct{}{}, c.visit(taken)
	})
	if err != nil {
		return err
	}

	var outer Resolver
	if _, ok := t.Cond.(bindsAlways); ok {
		outer = cond.Locals
	}

	_, err = withLocals(c.ctx, outer, func() (struct{}, error) {
		return struct{}{}, c.visit(other)
	})

	return err
}

func (t *Ternary) rebuild(children []Expr) Expr {
	return &Ternary{Cond: children[0], Then: children[1], Else: children[2], Pos: t.Pos}
}

// RegexMatch tests Subject against a pattern compiled at parse time.
// A successful match exposes its groups as $0, $1, … and $name.
type RegexMatch struct {
	Subject Expr
	Pattern *regexp.Regexp
	Source  string
	Invert  bool
	Pos     int
}

func (m *RegexMatch) Offset() int      { return m.Pos }
func (m *RegexMatch) Children() []Expr { return []Expr{m.Subject} }

func (m *RegexMatch) Eval(ctx Context) (Result, error) {
	subject, err := evalValue(ctx, m.Subject)
	if err != nil {
		return Result{}, err
	}

	groups := m.groups(subject.String())

	res := Result{Value: Bool((groups != nil) != m.Invert)}
	if groups != nil {
		res.Locals = groups
	}

	return res, nil
}

// groups returns the capture groups of the first match in s, or nil if
// the pattern does not match.
func (m *RegexMatch) groups(s string) VarMap {
	idx := m.Pattern.FindStringSubmatchIndex(s)
	if idx == nil {
		return nil
	}

	names := m.Pattern.SubexpNames()
	groups := make(VarMap, len(names)*2)

	for i := range names {
		var text string
		if lo, hi := idx[2*i], idx[2*i+1]; lo >= 0 {
			text = s[lo:hi]
		}

		groups["$"+strconv.Itoa(i)] = Str(text)

		if names[i] != "" {
			groups["$"+strings.ToLower(names[i])] = Str(text)
		}
	}

	return groups
}

func (m *RegexMatch) collect(c *collector) error { return c.visit(m.Subject) }

func (m *RegexMatch) rebuild(children []Expr) Expr {
	return &RegexMatch{
		Subject: children[0],
		Pattern: m.Pattern,
		Source:  m.Source,
		Invert:  m.Invert,
		Pos:     m.Pos,
	}
}
