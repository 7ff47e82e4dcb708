package lang

import (
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/edwingeng/deque"
)

// Resolver supplies values for variables. Lookup reports false when the
// resolver has no value for v.
type Resolver interface {
	Lookup(v *Variable) (Value, bool)
}

// Setter assigns variables by name. Names are case-insensitive.
type Setter interface {
	SetBool(name string, value bool)
	SetString(name string, value string)
}

// ResolverFunc adapts a function to the [Resolver] interface.
type ResolverFunc func(v *Variable) (Value, bool)

// Lookup calls f(v).
func (f ResolverFunc) Lookup(v *Variable) (Value, bool) { return f(v) }

// VarMap is a flat name to value mapping. Keys are stored lowercase.
type VarMap map[string]Value

// Lookup implements [Resolver].
func (m VarMap) Lookup(v *Variable) (Value, bool) {
	val, ok := m[v.Name]

	return val, ok
}

// Get returns the value for name, compared case-insensitively.
func (m VarMap) Get(name string) (Value, bool) {
	val, ok := m[strings.ToLower(name)]

	return val, ok
}

// Set assigns value to name.
func (m VarMap) Set(name string, value Value) { m[strings.ToLower(name)] = value }

// SetBool implements [Setter].
func (m VarMap) SetBool(name string, value bool) { m.Set(name, Bool(value)) }

// SetString implements [Setter].
func (m VarMap) SetString(name string, value string) { m.Set(name, Str(value)) }

// Names returns the sorted variable names.
func (m VarMap) Names() []string { return slices.Sorted(maps.Keys(m)) }

// DefaultConstants returns the compile-time constants every parser folds
// unless configured otherwise.
func DefaultConstants() VarMap {
	return VarMap{
		"true":  Bool(true),
		"false": Bool(false),
	}
}

// Context resolves variables during evaluation and carries the stack of
// local resolvers introduced by regex matches and host calls. Every Push
// is paired with a Pop before the node that pushed returns.
type Context interface {
	// Resolve returns the value of v. The top local resolver is consulted
	// first, then the context's global variables.
	Resolve(v *Variable) (Value, error)
	Push(r Resolver)
	Pop()
	// Depth returns the number of pushed local resolvers.
	Depth() int
	// DryRun reports whether host calls must not reach their
	// collaborators.
	DryRun() bool
}

// scopes is the local resolver stack shared by the concrete contexts.
type scopes struct {
	stack deque.Deque
}

func newScopes() scopes { return scopes{stack: deque.NewDeque()} }

func (s *scopes) Push(r Resolver) { s.stack.PushBack(r) }

func (s *scopes) Pop() { s.stack.PopBack() }

func (s *scopes) Depth() int { return s.stack.Len() }

func (s *scopes) local(v *Variable) (Value, bool) {
	if s.stack.Len() == 0 {
		return nil, false
	}

	r, ok := s.stack.Back().(Resolver)
	if !ok || r == nil {
		return nil, false
	}

	return r.Lookup(v)
}

// EvalContext is the runtime [Context]. Unresolved variables produce an
// [*UnresolvedVariableError].
type EvalContext struct {
	scopes

	vars Resolver
}

// NewEvalContext returns a runtime context over vars. A nil vars
// resolves nothing.
func NewEvalContext(vars Resolver) *EvalContext {
	if vars == nil {
		vars = VarMap{}
	}

	return &EvalContext{scopes: newScopes(), vars: vars}
}

// Resolve implements [Context].
func (c *EvalContext) Resolve(v *Variable) (Value, error) {
	if val, ok := c.local(v); ok {
		return val, nil
	}

	if val, ok := c.vars.Lookup(v); ok {
		return val, nil
	}

	return nil, &UnresolvedVariableError{Variable: v}
}

// DryRun implements [Context].
func (*EvalContext) DryRun() bool { return false }

// ConstContext resolves only local resolvers. Any other variable access
// fails with [ErrNotConstant]. It is used to prove sub-expressions
// constant.
type ConstContext struct {
	scopes
}

// NewConstContext returns an empty constant-evaluation context.
func NewConstContext() *ConstContext {
	return &ConstContext{scopes: newScopes()}
}

// Resolve implements [Context].
func (c *ConstContext) Resolve(v *Variable) (Value, error) {
	if val, ok := c.local(v); ok {
		return val, nil
	}

	return nil, ErrNotConstant.With(slog.String("name", v.Name))
}

// DryRun implements [Context].
func (*ConstContext) DryRun() bool { return false }

// SafeContext decorates a [Context] so that variable resolution never
// fails: unresolved variables evaluate to Default.
type SafeContext struct {
	Context

	Default Value // nil means Str("")
}

// NewSafeContext wraps ctx, substituting Str("") for unresolved variables.
func NewSafeContext(ctx Context) *SafeContext {
	return &SafeContext{Context: ctx, Default: Str("")}
}

// Resolve implements [Context].
func (c *SafeContext) Resolve(v *Variable) (Value, error) {
	val, err := c.Context.Resolve(v)
	if err != nil {
		if c.Default == nil {
			return Str(""), nil
		}

		return c.Default, nil
	}

	return val, nil
}

// collectingContext records every variable its wrapped context could
// not resolve. Host calls run dry beneath it.
type collectingContext struct {
	Context

	found []*Variable
}

// Resolve implements [Context].
func (c *collectingContext) Resolve(v *Variable) (Value, error) {
	val, err := c.Context.Resolve(v)
	if err != nil {
		c.found = append(c.found, v)
	}

	return val, err
}

// DryRun implements [Context].
func (*collectingContext) DryRun() bool { return true }

// quietContext forces dry-run host calls without recording anything.
type quietContext struct {
	Context
}

// DryRun implements [Context].
func (quietContext) DryRun() bool { return true }
