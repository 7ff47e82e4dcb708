package cmd

import (
	"context"

	"github.com/ardnew/wintitle/cli/cmd/repl"
	"github.com/ardnew/wintitle/log"
)

// Repl starts the interactive expression editor.
type Repl struct {
	Variables `embed:""`
	Host      `embed:""`

	Strict    bool `help:"Fail on unresolved variables instead of rendering them empty."`
	NoHistory bool `help:"Do not read or write the history file."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	vars, err := r.load(ctx)
	if err != nil {
		return err
	}

	s, err := r.open()
	if err != nil {
		return err
	}
	defer s.Close()

	var history string
	if !r.NoHistory {
		if ktx := kongContextFrom(ctx); ktx != nil {
			history = ktx.Model.Vars()[CacheIdentifier]
		}
	}

	return repl.Run(ctx, repl.Config{
		Vars:    vars,
		Cache:   s.cache,
		Strict:  r.Strict,
		History: history,
		Logger:  log.Default(),
	})
}
