package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/wintitle/log"
)

// logFormat configures the logger format as a side effect of parsing, so
// that errors reported while parsing later flags already use it.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of parsing.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"text"    enum:"${logFormatEnum}" help:"Set log format."`
	File       string    `                                          help:"Write logs to a rotated file instead of stderr." type:"path"`
	TimeLayout string    `default:"RFC3339"                         help:"Set timestamp format."`
	Caller     bool      `default:"false"                           help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                            help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// options returns the logger options for the parsed flag values.
func (f *logConfig) options() []log.Option {
	opts := []log.Option{
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	}

	if f.File != "" {
		// WithFile disables color, so it goes last.
		opts = append(opts, log.WithFile(f.File, 0, 0))
	}

	return opts
}

// start applies the parsed configuration and returns a function that
// logs the end of the run.
func (f *logConfig) start(ctx context.Context) (stop func()) {
	log.Config(f.options()...)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("file", f.File),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)

	return func() { log.TraceContext(ctx, "logger stopped") }
}

// scan applies logger flags found in args before kong parses them, so
// that the logger is configured regardless of flag position. Boolean
// flags do not pass through UnmarshalText, so they are handled here too.
func (f *logConfig) scan(args []string) {
	boolFlag := func(name string, dst *bool, opt func(bool) log.Option) func(string, bool) {
		return func(value string, assigned bool) {
			v := true
			if assigned {
				b, err := strconv.ParseBool(value)
				if err != nil {
					return
				}

				v = b
			}

			if strings.HasPrefix(name, "no-") {
				v = !v
			}

			*dst = v
			log.Config(opt(v))
		}
	}

	valued := map[string]func(string){
		"log-level":  func(v string) { _ = f.Level.UnmarshalText([]byte(v)) },
		"log-format": func(v string) { _ = f.Format.UnmarshalText([]byte(v)) },
	}

	flags := map[string]func(string, bool){
		"log-pretty":    boolFlag("log-pretty", &f.Pretty, log.WithPretty),
		"no-log-pretty": boolFlag("no-log-pretty", &f.Pretty, log.WithPretty),
		"log-caller":    boolFlag("log-caller", &f.Caller, log.WithCaller),
		"no-log-caller": boolFlag("no-log-caller", &f.Caller, log.WithCaller),
	}

	for i := 0; i < len(args); i++ {
		arg, ok := strings.CutPrefix(args[i], "--")
		if !ok || !strings.Contains(arg, "log-") {
			continue
		}

		name, value, assigned := strings.Cut(arg, "=")

		if fn, ok := valued[name]; ok {
			// Consume the next argument as the value unless assigned.
			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				value = args[i+1]
				i++
			}

			fn(value)

			continue
		}

		if fn, ok := flags[name]; ok {
			fn(value, assigned)
		}
	}
}
