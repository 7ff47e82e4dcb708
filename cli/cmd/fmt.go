package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/wintitle/lang"
)

// Fmt parses an expression and prints it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as expression syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	AST    AST    `cmd:""                    help:"Format as an indented syntax tree."`
}

// Tree selects the expression tree to print.
type Tree struct {
	Source `embed:""`

	Raw bool `help:"Print the tree as parsed, before constant folding."`
}

// root returns the parsed tree, folded unless Raw is set. Host calls
// are never folded, so no collaborators are needed.
func (t Tree) root(ctx context.Context, format string) (lang.Expr, error) {
	text, err := t.text(ctx)
	if err != nil {
		return nil, err
	}

	if t.Raw {
		e, err := lang.Parse(text)
		if err != nil {
			return nil, annotate(err, slog.String("format", format))
		}

		return e, nil
	}

	c, err := lang.Compile(text)
	if err != nil {
		return nil, annotate(err, slog.String("format", format))
	}

	return c.Root, nil
}

// Native formats the expression in its canonical source form.
type Native struct {
	Tree `embed:""`
}

// Run executes the native format command.
func (n *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	e, err := n.root(ctx, "native")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(outputFrom(ctx), lang.FormatString(e))

	return err
}

// JSON formats the expression tree as JSON.
type JSON struct {
	Tree `embed:""`

	Indent int `default:"2" help:"Indent width for JSON output." short:"i"`
}

// Run executes the json format command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	e, err := j.root(ctx, "json")
	if err != nil {
		return err
	}

	return lang.FormatJSON(ctx, outputFrom(ctx), e, j.Indent)
}

// YAML formats the expression tree as YAML.
type YAML struct {
	Tree `embed:""`

	Indent int `default:"2" help:"Indent width for YAML output." short:"i"`
}

// Run executes the yaml format command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	e, err := y.root(ctx, "yaml")
	if err != nil {
		return err
	}

	return lang.FormatYAML(ctx, outputFrom(ctx), e, y.Indent)
}

// AST prints the expression tree one node per line.
type AST struct {
	Tree `embed:""`

	Indent int `default:"2" help:"Indent width per tree level." short:"i"`
}

// Run executes the ast format command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	e, err := a.root(ctx, "ast")
	if err != nil {
		return err
	}

	return lang.FormatTree(outputFrom(ctx), e, a.Indent)
}
