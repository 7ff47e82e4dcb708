package lang

// Constant is the outcome of constant folding: either a literal [Value]
// or not-constant (the zero value).
type Constant struct {
	value Value
}

// NotConstant is the result of folding an expression that depends on a
// variable or a host call.
var NotConstant = Constant{}

// Get returns the folded value and whether the expression was constant.
func (c Constant) Get() (Value, bool) { return c.value, c.value != nil }

// IsConstant reports whether folding produced a value.
func (c Constant) IsConstant() bool { return c.value != nil }

func (c Constant) String() string {
	if c.value == nil {
		return "<not constant>"
	}

	return c.value.String()
}

// Fold simplifies e by replacing every constant sub-tree with a
// [Literal]. The input tree is not modified; the returned tree shares
// unmodified sub-trees with it. A ternary with a constant condition keeps
// only its selected branch.
//
// The returned [Constant] holds the value of the whole expression when
// it is constant. Folding a folded tree again yields the same result.
func Fold(e Expr) (Expr, Constant) {
	f := folder{ctx: NewConstContext()}

	out, res := f.fold(e)
	if res == nil {
		return out, NotConstant
	}

	return out, Constant{value: res.Value}
}

type folder struct {
	ctx *ConstContext
}

// fold returns the folded form of e and, when e is constant, its result
// including any local resolver it introduces.
func (f *folder) fold(e Expr) (Expr, *Result) {
	switch n := e.(type) {
	case *Literal:
		return n, &Result{Value: n.Value}

	case *Ternary:
		return f.foldTernary(n)
	}

	kids := e.Children()
	folded := make([]Expr, len(kids))
	constant := true

	for i, k := range kids {
		folded[i] = f.literal(k)
		if _, ok := folded[i].(*Literal); !ok {
			constant = false
		}
	}

	out := e
	if len(kids) > 0 {
		out = e.rebuild(folded)
	}

	if _, ok := e.(impure); ok || !constant {
		return out, nil
	}

	// Every failure here is ErrNotConstant from a variable lookup.
	res, err := out.Eval(f.ctx)
	if err != nil {
		return out, nil
	}

	return &Literal{Value: res.Value, Pos: e.Offset()}, &res
}

// literal folds e and returns a [Literal] if it is constant.
func (f *folder) literal(e Expr) Expr {
	out, res := f.fold(e)
	if res == nil {
		return out
	}

	if lit, ok := out.(*Literal); ok {
		return lit
	}

	return &Literal{Value: res.Value, Pos: e.Offset()}
}

func (f *folder) foldTernary(t *Ternary) (Expr, *Result) {
	cond, cres := f.fold(t.Cond)

	if cres == nil {
		// The condition's locals are unknown until runtime, so nothing
		// from an enclosing scope may be folded into either branch.
		f.ctx.Push(VarMap{})
		defer f.ctx.Pop()

		return &Ternary{
			Cond: cond,
			Then: f.literal(t.Then),
			Else: f.literal(t.Else),
			Pos:  t.Pos,
		}, nil
	}

	taken := cres.Value.Truth()

	branch := t.Else
	if taken {
		branch = t.Then
	}

	if cres.Locals != nil {
		f.ctx.Push(cres.Locals)
		defer f.ctx.Pop()
	}

	out, res := f.fold(branch)
	if res != nil {
		return &Literal{Value: res.Value, Pos: t.Pos}, &Result{Value: res.Value}
	}

	if cres.Locals == nil {
		return out, nil
	}

	// The branch still reads variables at runtime; keep the condition so
	// its locals shadow the enclosing scope exactly as before.
	empty := &Literal{Value: Str(""), Pos: t.Pos}
	if taken {
		return &Ternary{Cond: t.Cond, Then: out, Else: empty, Pos: t.Pos}, nil
	}

	return &Ternary{Cond: t.Cond, Then: empty, Else: out, Pos: t.Pos}, nil
}
