package repl

import "github.com/ardnew/wintitle/lang"

// Sentinel errors.
var (
	ErrOutOfBounds = lang.NewError("history index out of range")
	ErrNoEditor    = lang.NewError("no editor available")
)
