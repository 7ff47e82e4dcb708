//go:build !pprof

package profile

// Modes returns nil without the pprof build tag.
func Modes() []string { return nil }

// Enabled reports whether profiling support is compiled in.
func Enabled() bool { return false }

func start(Profiler) Stopper { return nop{} }
