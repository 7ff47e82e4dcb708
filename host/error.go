package host

import "github.com/ardnew/wintitle/lang"

// Sentinel errors. They are [*lang.Error] values, so errors derived with
// With or Wrap still match them under [errors.Is].
var (
	ErrVarsFile       = lang.NewError("invalid variables file")
	ErrVarAssign      = lang.NewError("invalid variable assignment")
	ErrVarExpr        = lang.NewError("computed variable failed")
	ErrSuperseded     = lang.NewError("render superseded by a newer request")
	ErrRendererClosed = lang.NewError("renderer closed")
	ErrCommand        = lang.NewError("command failed")
	ErrRunnerClosed   = lang.NewError("runner closed")
	ErrNoWorkspace    = lang.NewError("no workspace contains path")
	ErrReadInput      = lang.NewError("failed to read input")
)
