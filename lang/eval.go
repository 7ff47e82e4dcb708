package lang

import (
	"log/slog"
)

// Evaluate evaluates e against ctx and returns its value. The local
// resolver stack of ctx has the same depth on return as on entry.
func Evaluate(e Expr, ctx Context) (Value, error) {
	depth := ctx.Depth()

	r, err := e.Eval(ctx)

	if d := ctx.Depth(); d != depth {
		// Unbalanced scopes indicate a broken node implementation; restore
		// the stack so the context stays usable.
		for ; d > depth; d-- {
			ctx.Pop()
		}
	}

	if err != nil {
		return nil, err
	}

	return r.Value, nil
}

// Render evaluates e against vars and returns the string form of the
// result. Unresolved variables evaluate to the empty string. The error
// is non-nil only if a host call fails.
func Render(e Expr, vars Resolver) (string, error) {
	v, err := Evaluate(e, NewSafeContext(NewEvalContext(vars)))
	if err != nil {
		return "", err
	}

	return v.String(), nil
}

// Compiled is a parsed and folded expression ready for repeated
// evaluation. It is immutable and safe for concurrent use provided the
// configured host collaborators are.
type Compiled struct {
	Source string
	Root   Expr
	Const  Constant
}

// Compile parses text and folds the resulting tree.
func Compile(text string, opts ...Option) (*Compiled, error) {
	p := NewParser(text, opts...)

	root, err := p.Parse()
	if err != nil {
		return nil, err
	}

	folded, c := Fold(root)

	p.opts.logger.Trace("fold complete",
		slog.Bool("constant", c.IsConstant()),
		slog.String("value", c.String()),
	)

	return &Compiled{Source: text, Root: folded, Const: c}, nil
}

// Eval evaluates the compiled expression against ctx.
func (c *Compiled) Eval(ctx Context) (Value, error) {
	if v, ok := c.Const.Get(); ok {
		return v, nil
	}

	return Evaluate(c.Root, ctx)
}

// Render evaluates the compiled expression with unresolved variables
// defaulting to the empty string.
func (c *Compiled) Render(vars Resolver) (string, error) {
	if v, ok := c.Const.Get(); ok {
		return v.String(), nil
	}

	return Render(c.Root, vars)
}

// Unresolved returns the variables in the compiled expression that vars
// cannot resolve, in source order.
func (c *Compiled) Unresolved(vars Resolver) ([]*Variable, error) {
	return CollectUnresolved(c.Root, NewEvalContext(vars))
}
