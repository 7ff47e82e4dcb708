package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/wintitle/cli/cmd"
	"github.com/ardnew/wintitle/pkg"
)

// baseConfig is the name of the configuration file.
const baseConfig = "config.yaml"

// CLI is the top-level command-line interface for wintitle.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Init   cmd.Init   `cmd:"" help:"Write a configuration file holding the current flag values."`
	Fmt    cmd.Fmt    `cmd:"" help:"Print an expression in canonical, JSON, YAML, or tree form."`
	Tokens cmd.Tokens `cmd:"" help:"Print the tokens of an expression."`
	Check  cmd.Check  `cmd:"" help:"Report undefined variables with their source positions."`
	Watch  cmd.Watch  `cmd:"" help:"Re-render an expression and print each new title."`
	Repl   cmd.Repl   `cmd:"" help:"Edit and evaluate expressions interactively."`

	Eval cmd.Eval `cmd:"" default:"withargs" help:"Evaluate an expression and print the title."`
}

// Run executes the wintitle CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon
// completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := pkg.MkdirAll()
	if err != nil {
		return err
	}

	configFilePath := pkg.ConfigPath(baseConfig)

	vars := kong.Vars{
		"version":            pkg.Version(),
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Configure the logger before kong reports any parse error.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	defer cli.Log.start(ctx)()

	// No-op unless built with the pprof tag.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
