package lang

import (
	"encoding/json"
)

// ToMap converts an expression tree to a native Go map structure keyed
// by node attributes. Children appear under descriptive keys.
func ToMap(e Expr) map[string]any {
	switch n := e.(type) {
	case *Literal:
		return map[string]any{
			"node":  "literal",
			"kind":  n.Value.Kind().String(),
			"value": ToNative(n.Value),
			"pos":   n.Pos,
		}

	case *Variable:
		return map[string]any{
			"node": "variable",
			"name": n.Name,
			"pos":  n.Pos,
			"len":  n.Len,
		}

	case *Unary:
		return map[string]any{
			"node":    "unary",
			"op":      n.Op.String(),
			"operand": ToMap(n.X),
			"pos":     n.Pos,
		}

	case *Binary:
		return map[string]any{
			"node":  "binary",
			"op":    n.Op.String(),
			"left":  ToMap(n.X),
			"right": ToMap(n.Y),
			"pos":   n.Pos,
		}

	case *Ternary:
		return map[string]any{
			"node": "ternary",
			"cond": ToMap(n.Cond),
			"then": ToMap(n.Then),
			"else": ToMap(n.Else),
			"pos":  n.Pos,
		}

	case *RegexMatch:
		return map[string]any{
			"node":    "regex",
			"subject": ToMap(n.Subject),
			"pattern": n.Source,
			"invert":  n.Invert,
			"pos":     n.Pos,
		}

	case *Exec:
		m := map[string]any{
			"node":    "exec",
			"period":  n.Period,
			"command": ToMap(n.Command),
			"pos":     n.Pos,
		}

		if n.Bind != nil {
			m["bind"] = n.Bind.Name
		}

		if n.Workdir != nil {
			m["workdir"] = ToMap(n.Workdir)
		}

		return m

	case *RelPath:
		return map[string]any{
			"node": "relpath",
			"path": ToMap(n.Path),
			"base": ToMap(n.Base),
			"pos":  n.Pos,
		}

	case *Workspace:
		return map[string]any{
			"node": n.Field.String(),
			"path": ToMap(n.Path),
			"pos":  n.Pos,
		}

	default:
		return map[string]any{"node": "unknown"}
	}
}

// ToNative converts a Value to its native Go type.
func ToNative(v Value) any {
	switch x := v.(type) {
	case Bool:
		return bool(x)

	case Str:
		return string(x)

	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler for Compiled.
func (c *Compiled) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"source": c.Source,
		"root":   ToMap(c.Root),
	}

	if v, ok := c.Const.Get(); ok {
		m["constant"] = ToNative(v)
	}

	return json.Marshal(m)
}
