//go:build pprof

package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ardnew/wintitle/log"
	"github.com/ardnew/wintitle/pkg"
	"github.com/ardnew/wintitle/profile"
)

type pprofConfig struct {
	Mode   string `default:""            enum:",${pprofModeEnum}" help:"Enable profiling."                                 placeholder:"${enum}" short:"p"`
	Dir    string `default:"${pprofDir}"                          help:"Profile output directory."                                              type:"path"`
	Listen string `                                                help:"Serve /debug/pprof on this address while running." placeholder:"HOST:PORT"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      pkg.CachePath(profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling (pprof)"}
}

// start starts profiling and the debug server if configured.
func (f pprofConfig) start(ctx context.Context) (stop func()) {
	stopServer := f.serve(ctx)

	if f.Mode == "" {
		return stopServer
	}

	log.DebugContext(ctx, "pprof start",
		slog.String("mode", f.Mode),
		slog.String("dir", f.Dir),
	)

	p := profile.New(
		profile.WithMode(f.Mode),
		profile.WithPath(filepath.Clean(f.Dir)),
		profile.WithQuiet(true),
	).Start()

	return func() {
		log.DebugContext(ctx, "pprof stop",
			slog.String("mode", f.Mode),
			slog.String("dir", f.Dir),
		)
		p.Stop()
		stopServer()
	}
}

// serve exposes the handlers net/http/pprof registers on the default mux.
func (f pprofConfig) serve(ctx context.Context) (stop func()) {
	if f.Listen == "" {
		return func() {}
	}

	srv := &http.Server{
		Addr:              f.Listen,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WarnContext(ctx, "pprof server failed", slog.Any("error", err))
		}
	}()

	log.InfoContext(ctx, "pprof server listening",
		slog.String("url", "http://"+f.Listen+"/debug/pprof/"))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_ = srv.Shutdown(ctx)
	}
}
