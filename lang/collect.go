package lang

import (
	"cmp"
	"log/slog"
	"slices"
)

// collector walks an expression recording unresolved variables. Both
// contexts share the local resolver stack of the base context: ctx
// records misses, quiet evaluates ternary conditions without recording.
type collector struct {
	ctx   Context
	quiet Context
}

func (c *collector) visit(e Expr) error { return e.collect(c) }

func (c *collector) visitAll(es []Expr) error {
	for _, e := range es {
		if err := c.visit(e); err != nil {
			return err
		}
	}

	return nil
}

// CollectUnresolved returns every variable reference in e that base
// cannot resolve, ordered by source position. Both branches of every
// ternary are inspected: the branch the condition currently selects sees
// the condition's locals, the other sees the enclosing scope. Host calls
// are not invoked.
//
// base should be a strict context such as [EvalContext]; a context that
// never fails reports nothing.
func CollectUnresolved(e Expr, base Context) ([]*Variable, error) {
	rec := &collectingContext{Context: base}
	c := &collector{
		ctx:   NewSafeContext(rec),
		quiet: NewSafeContext(quietContext{Context: base}),
	}

	depth := base.Depth()

	if err := c.visit(e); err != nil {
		return nil, err
	}

	if base.Depth() != depth {
		return nil, ErrCollectorOrder.With(
			slog.Int("depth_before", depth),
			slog.Int("depth_after", base.Depth()),
		)
	}

	found := rec.found
	slices.SortStableFunc(found, func(a, b *Variable) int {
		return cmp.Compare(a.Pos, b.Pos)
	})

	for i := 1; i < len(found); i++ {
		prev, cur := found[i-1], found[i]
		if prev.Pos+prev.Len > cur.Pos {
			return nil, ErrCollectorOrder.With(
				slog.String("previous", prev.Name),
				slog.Int("previous_pos", prev.Pos),
				slog.String("current", cur.Name),
				slog.Int("current_pos", cur.Pos),
			)
		}
	}

	return found, nil
}
