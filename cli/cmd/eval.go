package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/wintitle/lang"
	"github.com/ardnew/wintitle/log"
)

// Eval evaluates an expression and prints the resulting title.
type Eval struct {
	Source    `embed:""`
	Variables `embed:""`
	Host      `embed:""`

	Strict bool `help:"Fail on unresolved variables instead of rendering them empty."`
	Native bool `help:"Print the value in expression syntax (quoted string or boolean)."`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	vars, err := e.load(ctx)
	if err != nil {
		return err
	}

	s, err := e.open()
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := e.compile(ctx, s.cache)
	if err != nil {
		return annotate(err, slog.String("command", "eval"))
	}

	var ectx lang.Context = lang.NewEvalContext(vars)
	if !e.Strict {
		ectx = lang.NewSafeContext(ectx)
	}

	val, err := c.Eval(ectx)
	if err != nil {
		return annotate(err, slog.String("command", "eval"))
	}

	log.DebugContext(ctx, "evaluated",
		slog.Bool("constant", c.Const.IsConstant()),
		slog.Any("value", val),
	)

	out := val.String()
	if e.Native {
		out = lang.FormatString(&lang.Literal{Value: val})
	}

	_, err = fmt.Fprintln(outputFrom(ctx), out)

	return err
}
