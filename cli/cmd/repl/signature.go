package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// call describes the innermost parenthesized call around the cursor.
type call struct {
	name   string // lowercase callee, empty for a grouping paren
	arg    int    // zero-based argument index at the cursor
	first  string // source text of the first argument, once complete
	start  int    // byte offset after the opening paren
	inCall bool
}

// detectCall scans input up to cursor and returns the innermost open
// call. Parentheses and commas inside string literals are ignored.
func detectCall(input string, cursor int) call {
	cursor = min(max(cursor, 0), len(input))

	var (
		stack []call
		quote bool
	)

	for i := range cursor {
		c := input[i]

		if c == '"' {
			quote = !quote

			continue
		}

		if quote {
			continue
		}

		switch c {
		case '(':
			word, _, _ := wordBounds(input[:i], i)
			stack = append(stack, call{
				name:   strings.ToLower(word),
				start:  i + 1,
				inCall: true,
			})

		case ')':
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}

		case ',':
			if n := len(stack); n > 0 {
				top := &stack[n-1]
				if top.arg == 0 {
					top.first = strings.TrimSpace(input[top.start:i])
				}

				top.arg++
			}
		}
	}

	if len(stack) == 0 {
		return call{}
	}

	return stack[len(stack)-1]
}

// signature returns the parameter names of host call name. Optional
// parameters are bracketed. The exec form depends on whether the first
// argument binds a name or gives the period.
func signature(c call) (params []string, ok bool) {
	switch c.name {
	case "exec":
		if c.arg > 0 && !isPeriod(c.first) {
			return []string{"name", "period", "command", "[workdir]"}, true
		}

		return []string{"period", "command", "[workdir]"}, true

	case "relpath":
		return []string{"path", "base"}, true

	case "wsname", "wsowner":
		return []string{"path"}, true
	}

	return nil, false
}

func isPeriod(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

var (
	signatureStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureName     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	currentParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// renderSignature renders name(params...) with the parameter at arg
// highlighted.
func renderSignature(name string, params []string, arg int) string {
	var b strings.Builder

	b.WriteString(signatureName.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		if i == arg {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
