package lang

import (
	"log/slog"
	"path/filepath"
)

// ExecEvaluator runs external commands for the exec host call. The
// implementation may cache output and refresh it every periodSeconds.
type ExecEvaluator interface {
	Evaluate(periodSeconds int, command, workdir string) (string, error)
}

// PathResolver computes relative paths for the relpath host call.
type PathResolver interface {
	RelativePath(path, base string) (string, error)
}

// WorkspaceResolver answers the wsname and wsowner host calls.
type WorkspaceResolver interface {
	WorkspaceName(path string) (string, error)
	WorkspaceOwner(path string) (string, error)
}

// FilePaths is the default [PathResolver]. It uses [filepath.Rel] and
// returns path unchanged when no relative form exists.
type FilePaths struct{}

// RelativePath implements [PathResolver].
func (FilePaths) RelativePath(path, base string) (string, error) {
	if path == "" || base == "" {
		return path, nil
	}

	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path, nil
	}

	return rel, nil
}

// Exec runs Command through an [ExecEvaluator]. When Bind is set, the
// command output is also exposed under Bind's name to the branch selected
// by an enclosing ternary.
type Exec struct {
	Bind    *Variable
	Period  int
	Command Expr
	Workdir Expr
	Host    ExecEvaluator
	Pos     int
}

func (x *Exec) Offset() int { return x.Pos }

func (x *Exec) Children() []Expr {
	if x.Workdir == nil {
		return []Expr{x.Command}
	}

	return []Expr{x.Command, x.Workdir}
}

func (x *Exec) Eval(ctx Context) (Result, error) {
	cmd, err := evalValue(ctx, x.Command)
	if err != nil {
		return Result{}, err
	}

	var dir string

	if x.Workdir != nil {
		wd, err := evalValue(ctx, x.Workdir)
		if err != nil {
			return Result{}, err
		}

		dir = wd.String()
	}

	var out string

	if !ctx.DryRun() {
		if x.Host == nil {
			return Result{}, ErrHostCall.With(
				slog.String("call", "exec"),
				slog.String("reason", "no exec evaluator configured"),
			)
		}

		out, err = x.Host.Evaluate(x.Period, cmd.String(), dir)
		if err != nil {
			return Result{}, ErrHostCall.Wrap(err).With(
				slog.String("call", "exec"),
				slog.String("command", cmd.String()),
			)
		}
	}

	res := Result{Value: Str(out)}
	if x.Bind != nil {
		res.Locals = VarMap{x.Bind.Name: Str(out)}
	}

	return res, nil
}

func (x *Exec) collect(c *collector) error { return c.visitAll(x.Children()) }

func (x *Exec) rebuild(children []Expr) Expr {
	y := *x
	y.Command = children[0]

	if len(children) > 1 {
		y.Workdir = children[1]
	}

	return &y
}

func (*Exec) hostCall() {}

func (*Exec) bindsAlways() {}

// RelPath computes the path of Path relative to Base.
type RelPath struct {
	Path Expr
	Base Expr
	Host PathResolver
	Pos  int
}

func (r *RelPath) Offset() int      { return r.Pos }
func (r *RelPath) Children() []Expr { return []Expr{r.Path, r.Base} }

func (r *RelPath) Eval(ctx Context) (Result, error) {
	path, err := evalValue(ctx, r.Path)
	if err != nil {
		return Result{}, err
	}

	base, err := evalValue(ctx, r.Base)
	if err != nil {
		return Result{}, err
	}

	if ctx.DryRun() {
		return Result{Value: Str("")}, nil
	}

	host := r.Host
	if host == nil {
		host = FilePaths{}
	}

	rel, err := host.RelativePath(path.String(), base.String())
	if err != nil {
		return Result{}, ErrHostCall.Wrap(err).With(slog.String("call", "relpath"))
	}

	return Result{Value: Str(rel)}, nil
}

func (r *RelPath) collect(c *collector) error { return c.visitAll(r.Children()) }

func (r *RelPath) rebuild(children []Expr) Expr {
	return &RelPath{Path: children[0], Base: children[1], Host: r.Host, Pos: r.Pos}
}

func (*RelPath) hostCall() {}

// WorkspaceField selects the attribute a [Workspace] node queries.
type WorkspaceField int

const (
	WorkspaceName WorkspaceField = iota
	WorkspaceOwner
)

func (f WorkspaceField) String() string {
	if f == WorkspaceOwner {
		return "wsowner"
	}

	return "wsname"
}

// Workspace queries the workspace containing Path.
type Workspace struct {
	Field WorkspaceField
	Path  Expr
	Host  WorkspaceResolver
	Pos   int
}

func (w *Workspace) Offset() int      { return w.Pos }
func (w *Workspace) Children() []Expr { return []Expr{w.Path} }

func (w *Workspace) Eval(ctx Context) (Result, error) {
	path, err := evalValue(ctx, w.Path)
	if err != nil {
		return Result{}, err
	}

	if ctx.DryRun() {
		return Result{Value: Str("")}, nil
	}

	if w.Host == nil {
		return Result{}, ErrHostCall.With(
			slog.String("call", w.Field.String()),
			slog.String("reason", "no workspace resolver configured"),
		)
	}

	var s string

	switch w.Field {
	case WorkspaceOwner:
		s, err = w.Host.WorkspaceOwner(path.String())
	default:
		s, err = w.Host.WorkspaceName(path.String())
	}

	if err != nil {
		return Result{}, ErrHostCall.Wrap(err).With(slog.String("call", w.Field.String()))
	}

	return Result{Value: Str(s)}, nil
}

func (w *Workspace) collect(c *collector) error { return c.visit(w.Path) }

func (w *Workspace) rebuild(children []Expr) Expr {
	return &Workspace{Field: w.Field, Path: children[0], Host: w.Host, Pos: w.Pos}
}

func (*Workspace) hostCall() {}
