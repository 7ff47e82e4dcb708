package host

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tevino/abool/v2"

	"github.com/ardnew/wintitle/lang"
	"github.com/ardnew/wintitle/log"
)

// Result is the outcome of one render job.
type Result struct {
	Source  string
	Title   string
	Value   lang.Value
	Elapsed time.Duration
	Err     error
}

// Renderer evaluates titles on a single worker goroutine. At most one
// job waits behind the one being evaluated: submitting while a job is
// queued replaces it, and the replaced job completes with
// [ErrSuperseded]. A job already being evaluated always runs to
// completion.
type Renderer struct {
	cache  *Cache
	vars   lang.Resolver
	strict bool
	logger log.Logger

	mu      sync.Mutex
	pending *renderJob

	wake   chan struct{}
	done   chan struct{}
	busy   *abool.AtomicBool
	closed *abool.AtomicBool
	wg     sync.WaitGroup
}

type renderJob struct {
	ctx    context.Context
	source string
	reply  chan Result
}

// RendererOption configures a [Renderer].
type RendererOption func(*Renderer)

// WithStrict makes unresolved variables fail the render instead of
// evaluating to the empty string.
func WithStrict(strict bool) RendererOption {
	return func(r *Renderer) { r.strict = strict }
}

// WithRendererLogger sets the logger used for job diagnostics.
func WithRendererLogger(logger log.Logger) RendererOption {
	return func(r *Renderer) { r.logger = logger }
}

// NewRenderer starts a renderer that compiles through cache and
// resolves variables from vars. Call Close to stop the worker.
func NewRenderer(cache *Cache, vars lang.Resolver, opts ...RendererOption) *Renderer {
	r := &Renderer{
		cache:  cache,
		vars:   vars,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		busy:   abool.New(),
		closed: abool.New(),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)

	go r.work()

	return r
}

// Submit queues source for rendering and returns a channel that receives
// exactly one Result.
func (r *Renderer) Submit(ctx context.Context, source string) <-chan Result {
	j := &renderJob{ctx: ctx, source: source, reply: make(chan Result, 1)}

	if r.closed.IsSet() {
		j.reply <- Result{Source: source, Err: ErrRendererClosed}

		return j.reply
	}

	r.mu.Lock()
	prev := r.pending
	r.pending = j
	r.mu.Unlock()

	if prev != nil {
		r.logger.Debug("render superseded", slog.String("source", prev.source))
		prev.reply <- Result{Source: prev.source, Err: ErrSuperseded}
	}

	// Close may have drained the queue between the check above and the
	// store.
	if r.closed.IsSet() {
		r.mu.Lock()
		if r.pending == j {
			r.pending = nil
			j.reply <- Result{Source: source, Err: ErrRendererClosed}
		}
		r.mu.Unlock()

		return j.reply
	}

	select {
	case r.wake <- struct{}{}:
	default:
	}

	return j.reply
}

// Render submits source and waits for its result.
func (r *Renderer) Render(ctx context.Context, source string) (string, error) {
	select {
	case res := <-r.Submit(ctx, source):
		return res.Title, res.Err

	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Busy reports whether a job is being evaluated.
func (r *Renderer) Busy() bool { return r.busy.IsSet() }

// Close stops the worker after the in-flight job, if any, completes. A
// queued job completes with [ErrRendererClosed].
func (r *Renderer) Close() error {
	if !r.closed.SetToIf(false, true) {
		return nil
	}

	close(r.done)
	r.wg.Wait()

	r.mu.Lock()
	j := r.pending
	r.pending = nil
	r.mu.Unlock()

	if j != nil {
		j.reply <- Result{Source: j.source, Err: ErrRendererClosed}
	}

	return nil
}

func (r *Renderer) work() {
	defer r.wg.Done()

	for {
		select {
		case <-r.done:
			return

		case <-r.wake:
		}

		for {
			r.mu.Lock()
			j := r.pending
			r.pending = nil
			r.mu.Unlock()

			if j == nil {
				break
			}

			if err := j.ctx.Err(); err != nil {
				j.reply <- Result{Source: j.source, Err: err}

				continue
			}

			r.busy.Set()
			res := r.render(j.source)
			r.busy.UnSet()

			j.reply <- res

			select {
			case <-r.done:
				return
			default:
			}
		}
	}
}

func (r *Renderer) render(source string) Result {
	start := time.Now()
	res := Result{Source: source}

	c, err := r.cache.Get(source)
	if err != nil {
		res.Err = err
		res.Elapsed = time.Since(start)

		return res
	}

	var ctx lang.Context = lang.NewEvalContext(r.vars)
	if !r.strict {
		ctx = lang.NewSafeContext(ctx)
	}

	res.Value, res.Err = c.Eval(ctx)
	if res.Err == nil {
		res.Title = res.Value.String()
	}

	res.Elapsed = time.Since(start)

	r.logger.Debug("render complete",
		slog.String("title", res.Title),
		slog.Duration("elapsed", res.Elapsed),
		slog.Any("error", res.Err),
	)

	return res
}
