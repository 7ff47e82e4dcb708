package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/sahilm/fuzzy"
)

// maxSuggestions bounds the "did you mean" list per variable.
const maxSuggestions = 3

// Check reports the variables an expression needs that are not defined.
// It never runs host calls.
type Check struct {
	Source    `embed:""`
	Variables `embed:""`
	Host      `embed:""`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	vars, err := c.load(ctx)
	if err != nil {
		return err
	}

	// Host calls are not evaluated here, so the runner is never started.
	h := c.Host
	h.NoExec = true

	s, err := h.open()
	if err != nil {
		return err
	}
	defer s.Close()

	compiled, err := c.compile(ctx, s.cache)
	if err != nil {
		return annotate(err, slog.String("command", "check"))
	}

	missing, err := compiled.Unresolved(vars)
	if err != nil {
		return annotate(err, slog.String("command", "check"))
	}

	if len(missing) == 0 {
		return nil
	}

	names := vars.Names()

	tw := tabwriter.NewWriter(outputFrom(ctx), 0, 4, 2, ' ', 0)

	for _, v := range missing {
		line := fmt.Sprintf("%d\t%d\t%s", v.Pos, v.Len, v.Text)

		if hint := suggest(v.Name, names); len(hint) > 0 {
			line += "\tdid you mean " + strings.Join(hint, ", ") + "?"
		}

		fmt.Fprintln(tw, line)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	return ErrUnresolved.With(slog.Int("count", len(missing)))
}

// suggest returns the defined names that best match name.
func suggest(name string, names []string) []string {
	matches := fuzzy.Find(name, names)

	out := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}

		out = append(out, m.Str)
	}

	return out
}
