package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ardnew/wintitle/host"
	"github.com/ardnew/wintitle/lang"
	"github.com/ardnew/wintitle/log"
)

type (
	kongKey   struct{}
	outputKey struct{}
	inputKey  struct{}
)

// WithContext stores the kong context in ctx.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, kongKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(kongKey{}).(*kong.Context)

	return ktx
}

// WithOutput stores the writer commands print to. The default is
// standard output.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok {
		return w
	}

	return os.Stdout
}

// WithInput stores the reader used for "-" and piped input. The default
// is standard input.
func WithInput(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, inputKey{}, r)
}

func inputFrom(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(inputKey{}).(io.Reader); ok {
		return r
	}

	return os.Stdin
}

// stdinSource names standard input where a path is expected.
const stdinSource = "-"

// Source selects the expression text: the positional argument, or a
// file given with --file ("-" reads standard input).
type Source struct {
	Expr string `arg:""  help:"Title expression."                                   optional:""`
	File string `        help:"Read the expression from a file, or '-' for stdin." placeholder:"PATH" short:"f" type:"path"`
}

// compile compiles the selected text through cache.
func (s Source) compile(ctx context.Context, cache *host.Cache) (*lang.Compiled, error) {
	switch {
	case s.Expr != "" && s.File != "":
		return nil, ErrBothInputs

	case s.Expr != "":
		return cache.Get(s.Expr)

	case s.File == "":
		return nil, ErrNoInput

	case s.File == stdinSource:
		return cache.Read(ctx, inputFrom(ctx))
	}

	f, err := os.Open(s.File)
	if err != nil {
		return nil, host.ErrReadInput.Wrap(err).With(slog.String("path", s.File))
	}
	defer f.Close()

	return cache.Read(ctx, f)
}

// text returns the selected source text without compiling it.
func (s Source) text(ctx context.Context) (string, error) {
	switch {
	case s.Expr != "" && s.File != "":
		return "", ErrBothInputs

	case s.Expr != "":
		return s.Expr, nil

	case s.File == "":
		return "", ErrNoInput
	}

	var r io.Reader = inputFrom(ctx)

	if s.File != stdinSource {
		f, err := os.Open(s.File)
		if err != nil {
			return "", host.ErrReadInput.Wrap(err).With(slog.String("path", s.File))
		}
		defer f.Close()

		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", host.ErrReadInput.Wrap(err)
	}

	return string(data), nil
}

// Variables are the variable sources shared by evaluating commands.
// Files load first, in order; assignments apply on top of them.
type Variables struct {
	Var  []string `help:"Assign a variable; true and false are booleans." placeholder:"NAME=VALUE" short:"v"`
	Vars []string `help:"Load variables from a YAML file."                placeholder:"PATH"       type:"existingfile"`
}

func (v Variables) load(ctx context.Context) (*host.Vars, error) {
	vars := host.NewVars(host.WithVarsLogger(log.Default()))

	for _, path := range v.Vars {
		if err := vars.LoadFile(ctx, path); err != nil {
			return nil, err
		}
	}

	for _, a := range v.Var {
		if err := vars.Assign(a); err != nil {
			return nil, err
		}
	}

	return vars, nil
}

// Host configures the host-call collaborators.
type Host struct {
	NoExec  bool          `help:"Disable exec; exec calls fail."`
	Timeout time.Duration `default:"10s"               help:"Bound each exec command."`
	Markers []string      `default:".git,.hg,.svn,.jj" help:"Entries that mark a workspace root." sep:","`
	Cache   int           `default:"128"               help:"Compiled expression cache size."`
}

// session holds the collaborators built from [Host] flags.
type session struct {
	cache  *host.Cache
	runner *host.Runner
}

func (s *session) Close() error {
	if s.runner != nil {
		return s.runner.Close()
	}

	return nil
}

func (h Host) open() (*session, error) {
	logger := log.Default()

	opts := []lang.Option{
		lang.WithWorkspace(host.DirWorkspace{Markers: h.Markers}),
		lang.WithLogger(logger),
	}

	s := new(session)

	if !h.NoExec {
		timeout := h.Timeout
		if timeout <= 0 {
			timeout = host.DefaultCommandTimeout
		}

		r, err := host.NewRunner(
			host.WithCommandTimeout(timeout),
			host.WithRunnerLogger(logger),
		)
		if err != nil {
			return nil, err
		}

		s.runner = r
		opts = append(opts, lang.WithExec(r))
	}

	s.cache = host.NewCache(h.Cache, h.fingerprint(), opts...).WithLogger(logger)

	return s, nil
}

// fingerprint names the option set for the compile cache.
func (h Host) fingerprint() string {
	return strings.Join([]string{
		"exec=" + strconv.FormatBool(!h.NoExec),
		"markers=" + strings.Join(h.Markers, ","),
	}, ";")
}

// annotate adds attrs to err when it is an [Error]. Other error types,
// such as parse errors carrying a source position, are returned as is so
// their messages survive.
func annotate(err error, attrs ...slog.Attr) error {
	if e, ok := err.(*Error); ok {
		return e.With(attrs...)
	}

	return err
}
