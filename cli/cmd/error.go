package cmd

import "github.com/ardnew/wintitle/lang"

// Error is the error type returned by commands. It carries slog
// attributes describing the failure.
type Error = lang.Error

// Sentinel errors.
var (
	ErrNoInput     = lang.NewError("no expression given (pass EXPR, --file, or pipe to stdin)")
	ErrBothInputs  = lang.NewError("expression argument and --file are mutually exclusive")
	ErrUnresolved  = lang.NewError("expression has unresolved variables")
	ErrYAMLMarshal = lang.NewError("marshal YAML")
	ErrWriteConfig = lang.NewError("write configuration file")
	ErrFileExists  = lang.NewError("file exists (use --force to overwrite)")
)
