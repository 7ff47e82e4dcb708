package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ardnew/wintitle/host"
	"github.com/ardnew/wintitle/log"
)

// Watch re-renders an expression periodically and prints the title each
// time it changes. Exec output refreshes in the background, so a title
// built from commands follows them.
type Watch struct {
	Source    `embed:""`
	Variables `embed:""`
	Host      `embed:""`

	Strict   bool          `help:"Fail on unresolved variables instead of rendering them empty."`
	Interval time.Duration `default:"1s" help:"Time between renders."`
	Count    int           `help:"Stop after printing this many titles (0 means forever)."`
}

// Run executes the watch command until ctx is done.
func (w *Watch) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	text, err := w.text(ctx)
	if err != nil {
		return err
	}

	vars, err := w.load(ctx)
	if err != nil {
		return err
	}

	s, err := w.open()
	if err != nil {
		return err
	}
	defer s.Close()

	// Report syntax errors once instead of on every tick.
	if _, err := s.cache.Get(text); err != nil {
		return annotate(err, slog.String("command", "watch"))
	}

	r := host.NewRenderer(s.cache, vars,
		host.WithStrict(w.Strict),
		host.WithRendererLogger(log.Default()),
	)
	defer r.Close()

	interval := w.Interval
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		last    string
		printed int
	)

	for {
		title, err := r.Render(ctx, text)

		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil

		case err != nil:
			return annotate(err, slog.String("command", "watch"))

		case printed == 0 || title != last:
			if _, err := fmt.Fprintln(outputFrom(ctx), title); err != nil {
				return err
			}

			last = title
			printed++

			if w.Count > 0 && printed >= w.Count {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
		}
	}
}
