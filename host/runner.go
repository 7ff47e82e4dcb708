package host

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/tevino/abool/v2"

	"github.com/ardnew/wintitle/log"
)

// DefaultCommandTimeout bounds a single command run.
const DefaultCommandTimeout = 10 * time.Second

// Runner implements [lang.ExecEvaluator]. The first request for a
// command and working directory runs the command and waits for it.
// Later requests return the most recent output immediately while a
// scheduled job reruns the command every period seconds. The period of
// the first request applies.
type Runner struct {
	sched   gocron.Scheduler
	shell   []string
	timeout time.Duration
	logger  log.Logger
	closed  *abool.AtomicBool

	mu   sync.Mutex
	jobs map[runKey]*runEntry
}

type runKey struct {
	command string
	workdir string
}

type runEntry struct {
	mu     sync.RWMutex
	id     uuid.UUID
	period int
	output string
	err    error
	runs   int
}

func (e *runEntry) result() (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.output, e.err
}

func (e *runEntry) store(output string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.output, e.err = output, err
	e.runs++
}

// RunnerOption configures a [Runner].
type RunnerOption func(*Runner)

// WithShell sets the argv prefix used to run a command line. The
// default is /bin/sh -c, or cmd /C on Windows. An empty argv keeps the
// default.
func WithShell(argv ...string) RunnerOption {
	return func(r *Runner) {
		if len(argv) > 0 {
			r.shell = argv
		}
	}
}

// WithCommandTimeout bounds each command run.
func WithCommandTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) { r.timeout = d }
}

// WithRunnerLogger sets the logger used for command diagnostics.
func WithRunnerLogger(logger log.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner starts a runner and its scheduler.
func NewRunner(opts ...RunnerOption) (*Runner, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	r := &Runner{
		sched:   sched,
		shell:   defaultShell(),
		timeout: DefaultCommandTimeout,
		closed:  abool.New(),
		jobs:    make(map[runKey]*runEntry),
	}

	for _, opt := range opts {
		opt(r)
	}

	sched.Start()

	return r, nil
}

func defaultShell() []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C"}
	}

	return []string{"/bin/sh", "-c"}
}

// Evaluate implements [lang.ExecEvaluator].
func (r *Runner) Evaluate(period int, command, workdir string) (string, error) {
	if r.closed.IsSet() {
		return "", ErrRunnerClosed
	}

	key := runKey{command: command, workdir: workdir}

	r.mu.Lock()

	if e, ok := r.jobs[key]; ok {
		r.mu.Unlock()

		return e.result()
	}

	e := &runEntry{period: period}
	// Later callers block in result until the first run is stored.
	e.mu.Lock()
	r.jobs[key] = e

	r.mu.Unlock()

	e.output, e.err = r.run(command, workdir)
	e.runs++
	e.mu.Unlock()

	r.schedule(key, e)

	return e.result()
}

func (r *Runner) schedule(key runKey, e *runEntry) {
	if e.period <= 0 {
		return
	}

	// Forget may have dropped the entry during its first run. Holding mu
	// until the id is stored keeps Forget from missing the job.
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.jobs[key] != e {
		r.logger.Debug("command forgotten before scheduling",
			slog.String("command", key.command))

		return
	}

	job, err := r.sched.NewJob(
		gocron.DurationJob(time.Duration(e.period)*time.Second),
		gocron.NewTask(func() { e.store(r.run(key.command, key.workdir)) }),
		gocron.WithName(key.command),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		r.logger.Warn("schedule failed",
			slog.String("command", key.command),
			slog.Any("error", err),
		)

		return
	}

	e.mu.Lock()
	e.id = job.ID()
	e.mu.Unlock()

	r.logger.Debug("command scheduled",
		slog.String("command", key.command),
		slog.String("job", job.ID().String()),
		slog.Int("period", e.period),
	)
}

// run executes command and returns its standard output without the
// trailing line break.
func (r *Runner) run(command, workdir string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	argv := append(append([]string(nil), r.shell[1:]...), command)

	cmd := exec.CommandContext(ctx, r.shell[0], argv...)
	cmd.Dir = workdir
	cmd.WaitDelay = time.Second

	out, err := cmd.Output()
	if err != nil {
		attrs := []slog.Attr{
			slog.String("command", command),
			slog.String("workdir", workdir),
		}

		var ee *exec.ExitError
		if errors.As(err, &ee) && len(ee.Stderr) > 0 {
			attrs = append(attrs, slog.String("stderr", strings.TrimSpace(string(ee.Stderr))))
		}

		r.logger.Debug("command failed", append(attrs, slog.Any("error", err))...)

		return "", ErrCommand.Wrap(err).With(attrs...)
	}

	return strings.TrimRight(string(out), "\r\n"), nil
}

// Forget stops refreshing command in workdir and drops its output.
func (r *Runner) Forget(command, workdir string) error {
	key := runKey{command: command, workdir: workdir}

	r.mu.Lock()
	e, ok := r.jobs[key]
	delete(r.jobs, key)
	r.mu.Unlock()

	if !ok {
		return nil
	}

	e.mu.RLock()
	id := e.id
	e.mu.RUnlock()

	if id == uuid.Nil {
		return nil
	}

	return r.sched.RemoveJob(id)
}

// Jobs returns the number of commands being tracked.
func (r *Runner) Jobs() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.jobs)
}

// Close stops the scheduler. Evaluate fails with [ErrRunnerClosed]
// afterwards.
func (r *Runner) Close() error {
	if !r.closed.SetToIf(false, true) {
		return nil
	}

	return r.sched.Shutdown()
}
