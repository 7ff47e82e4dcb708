package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/ardnew/wintitle/lang"
)

// Tokens prints the lexical tokens of an expression, one per line.
type Tokens struct {
	Source `embed:""`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	text, err := t.text(ctx)
	if err != nil {
		return err
	}

	toks, err := lang.NewTokenizer(text).Tokens()
	if err != nil {
		return annotate(err, slog.String("command", "tokens"))
	}

	tw := tabwriter.NewWriter(outputFrom(ctx), 0, 4, 2, ' ', 0)

	for _, tok := range toks {
		if tok.Type == lang.TokenEOF {
			break
		}

		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", tok.Pos, tok.Len, tok.Type, tok.Text)
	}

	return tw.Flush()
}
