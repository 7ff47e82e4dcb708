// Package profile starts optional runtime profiling for wintitle.
//
// Profiling is compiled in only with the "pprof" build tag. Without it,
// [Modes] is empty and [Profiler.Start] returns a no-op [Stopper].
//
// With the tag, [github.com/pkg/profile] writes one profile per run into
// the configured directory:
//
//	p := profile.New(profile.WithMode("cpu"), profile.WithPath(dir))
//	defer p.Start().Stop()
//
// The tagged build also imports [net/http/pprof], which registers the
// /debug/pprof/ handlers on [net/http.DefaultServeMux]; the cli serves
// them with --pprof-listen.
//
// Analyze the output with go tool pprof:
//
//	go tool pprof -http=: ./wintitle cpu.pprof
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Profiler describes a profiling session. The zero value profiles
// nothing.
type Profiler struct {
	Mode  string
	Path  string
	Quiet bool
}

// Option configures a [Profiler].
type Option func(Profiler) Profiler

// New returns a Profiler with opts applied.
func New(opts ...Option) Profiler {
	var p Profiler

	for _, opt := range opts {
		p = opt(p)
	}

	return p
}

// WithMode selects one of [Modes].
func WithMode(mode string) Option {
	return func(p Profiler) Profiler {
		p.Mode = mode

		return p
	}
}

// WithPath sets the output directory.
func WithPath(path string) Option {
	return func(p Profiler) Profiler {
		p.Path = path

		return p
	}
}

// WithQuiet suppresses the profiler's own start and stop messages.
func WithQuiet(quiet bool) Option {
	return func(p Profiler) Profiler {
		p.Quiet = quiet

		return p
	}
}

// Start begins profiling. Unknown or empty modes, and builds without
// the pprof tag, yield a no-op Stopper. Stop is always safe to call.
func (p Profiler) Start() Stopper {
	if p.Mode == "" || !Enabled() {
		return nop{}
	}

	return start(p)
}

type nop struct{}

func (nop) Stop() {}
