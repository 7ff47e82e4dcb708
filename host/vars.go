package host

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/ardnew/wintitle/lang"
	"github.com/ardnew/wintitle/log"
)

// exprKey is the mapping key that marks a computed variable in a
// variables file.
const exprKey = "expr"

// Vars is a concurrency-safe variable store. It implements
// [lang.Resolver] and [lang.Setter]; names are case-insensitive.
type Vars struct {
	mu     sync.RWMutex
	values lang.VarMap

	environ map[string]string
	logger  log.Logger
}

// VarsOption configures a [Vars].
type VarsOption func(*Vars)

// WithEnviron sets the KEY=VALUE list read by the env() function of
// computed variables. The default is the process environment.
func WithEnviron(list []string) VarsOption {
	return func(v *Vars) { v.environ = environMap(list) }
}

// WithVarsLogger sets the logger used for load diagnostics.
func WithVarsLogger(logger log.Logger) VarsOption {
	return func(v *Vars) { v.logger = logger }
}

// NewVars returns an empty variable store.
func NewVars(opts ...VarsOption) *Vars {
	v := &Vars{values: lang.VarMap{}}

	for _, opt := range opts {
		opt(v)
	}

	if v.environ == nil {
		v.environ = environMap(nil)
	}

	return v
}

// Lookup implements [lang.Resolver].
func (v *Vars) Lookup(x *lang.Variable) (lang.Value, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.values.Lookup(x)
}

// Get returns the value of name.
func (v *Vars) Get(name string) (lang.Value, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.values.Get(name)
}

// Set assigns value to name.
func (v *Vars) Set(name string, value lang.Value) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.values.Set(name, value)
}

// SetBool implements [lang.Setter].
func (v *Vars) SetBool(name string, value bool) { v.Set(name, lang.Bool(value)) }

// SetString implements [lang.Setter].
func (v *Vars) SetString(name string, value string) { v.Set(name, lang.Str(value)) }

// Names returns the sorted variable names.
func (v *Vars) Names() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.values.Names()
}

// Snapshot returns a copy of the current values.
func (v *Vars) Snapshot() lang.VarMap {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return maps.Clone(v.values)
}

// Assign parses a NAME=VALUE assignment. The values true and false
// (any case) are stored as booleans; everything else is a string.
func (v *Vars) Assign(assignment string) error {
	name, value, ok := strings.Cut(assignment, "=")
	name = strings.TrimSpace(name)

	if !ok || name == "" {
		return ErrVarAssign.With(slog.String("assignment", assignment))
	}

	switch strings.ToLower(value) {
	case "true":
		v.SetBool(name, true)
	case "false":
		v.SetBool(name, false)
	default:
		v.SetString(name, value)
	}

	return nil
}

// Define evaluates source as an expr-lang expression and stores the
// result under name. The expression sees the built-ins, env(NAME) for
// the configured environment, every current variable by name, and a
// vars map holding the same values.
func (v *Vars) Define(name, source string) error {
	env := v.exprEnv()

	program, err := expr.Compile(source,
		expr.Env(env),
		expr.Patch(&foldCase{env: env}),
	)
	if err != nil {
		return ErrVarExpr.Wrap(err).With(
			slog.String("name", name),
			slog.String("expr", source),
		)
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return ErrVarExpr.Wrap(err).With(
			slog.String("name", name),
			slog.String("expr", source),
		)
	}

	val, ok := lang.MakeValue(out)
	if !ok {
		if out == nil {
			val = lang.Str("")
		} else {
			val = lang.Str(fmt.Sprint(out))
		}
	}

	v.Set(name, val)

	v.logger.Debug("computed variable",
		slog.String("name", strings.ToLower(name)),
		slog.Any("value", val),
	)

	return nil
}

func (v *Vars) exprEnv() map[string]any {
	env := Builtins()

	environ := v.environ
	env["env"] = func(key string) string { return environ[key] }

	values := make(map[string]any)

	v.mu.RLock()
	for k, val := range v.values {
		values[k] = lang.ToNative(val)
	}
	v.mu.RUnlock()

	maps.Copy(env, values)
	env["vars"] = values

	return env
}

// Load reads a YAML mapping of variables from r. Scalar values are
// stored directly (numbers as their decimal text); a nested mapping with
// an expr key defines a computed variable. Entries are applied in file
// order, so a computed variable may refer to any entry above it.
func (v *Vars) Load(ctx context.Context, r io.Reader) error {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return ErrReadInput.Wrap(err)
	}

	var doc yaml.MapSlice

	err = yaml.UnmarshalContext(ctx, data, &doc, yaml.UseOrderedMap())
	if err != nil {
		return ErrVarsFile.Wrap(err)
	}

	for _, item := range doc {
		name := fmt.Sprint(item.Key)

		if err := v.loadItem(name, item.Value); err != nil {
			return err
		}
	}

	v.logger.DebugContext(ctx, "variables loaded", slog.Int("count", len(doc)))

	return nil
}

func (v *Vars) loadItem(name string, value any) error {
	switch x := value.(type) {
	case nil:
		v.SetString(name, "")

	case bool:
		v.SetBool(name, x)

	case string:
		v.SetString(name, x)

	case uint64, int64, int, float64:
		v.SetString(name, fmt.Sprint(x))

	case yaml.MapSlice:
		return v.loadComputed(name, x.ToMap())

	case map[string]any:
		m := make(map[any]any, len(x))
		for k, val := range x {
			m[k] = val
		}

		return v.loadComputed(name, m)

	default:
		return ErrVarsFile.With(
			slog.String("name", name),
			slog.String("type", fmt.Sprintf("%T", value)),
		)
	}

	return nil
}

func (v *Vars) loadComputed(name string, m map[any]any) error {
	src, ok := m[exprKey].(string)
	if !ok || len(m) != 1 {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, fmt.Sprint(k))
		}

		slices.Sort(keys)

		return ErrVarsFile.With(
			slog.String("name", name),
			slog.String("keys", strings.Join(keys, ",")),
			slog.String("want", exprKey),
		)
	}

	return v.Define(name, src)
}

// LoadFile reads a YAML variables file. See [Vars.Load].
func (v *Vars) LoadFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return ErrReadInput.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	if err := v.Load(ctx, f); err != nil {
		return lang.WrapError(err).With(slog.String("path", path))
	}

	return nil
}
