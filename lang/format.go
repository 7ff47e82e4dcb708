package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Binding strength of each grammar tier, loosest first.
const (
	precTernary = iota
	precOr
	precXor
	precAnd
	precCompare
	precSubstr
	precConcat
	precRegex
	precUnary
	precPrimary
)

func precedence(e Expr) int {
	switch n := e.(type) {
	case *Ternary:
		return precTernary

	case *Binary:
		switch n.Op {
		case OpOr:
			return precOr
		case OpXor:
			return precXor
		case OpAnd:
			return precAnd
		case OpEqual, OpNotEqual:
			return precCompare
		case OpContains, OpStartsWith, OpEndsWith:
			return precSubstr
		default:
			return precConcat
		}

	case *RegexMatch:
		return precRegex

	case *Unary:
		return precUnary

	default:
		return precPrimary
	}
}

// Format writes e in canonical source syntax. Parsing the output with
// the default constants yields an equivalent tree. Boolean literals are
// written as true and false, which are constants rather than keywords,
// so a parser built with WithConstants(nil) reads them as variables.
func Format(w io.Writer, e Expr) error {
	_, err := io.WriteString(w, FormatString(e))

	return err
}

// FormatString returns e in canonical source syntax.
func FormatString(e Expr) string {
	var sb strings.Builder

	writeExpr(&sb, e)

	return sb.String()
}

// QuoteString returns s as a string literal, doubling embedded quotes.
func QuoteString(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func writeExpr(sb *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *Literal:
		if s, ok := n.Value.(Str); ok {
			sb.WriteString(QuoteString(string(s)))
		} else {
			sb.WriteString(n.Value.String())
		}

	case *Variable:
		sb.WriteString(n.Text)

	case *Unary:
		sb.WriteString(n.Op.String())
		sb.WriteByte(' ')
		writeOperand(sb, n.X, precUnary)

	case *Binary:
		prec := precedence(n)
		writeOperand(sb, n.X, prec)
		sb.WriteByte(' ')
		sb.WriteString(n.Op.String())
		sb.WriteByte(' ')
		// Operators are left-associative.
		writeOperand(sb, n.Y, prec+1)

	case *Ternary:
		writeOperand(sb, n.Cond, precOr)
		sb.WriteString(" ? ")
		writeOperand(sb, n.Then, precOr)
		sb.WriteString(" : ")
		writeExpr(sb, n.Else)

	case *RegexMatch:
		writeOperand(sb, n.Subject, precUnary)

		if n.Invert {
			sb.WriteString(" !~ ")
		} else {
			sb.WriteString(" =~ ")
		}

		sb.WriteString(QuoteString(n.Source))

	case *Exec:
		sb.WriteString("exec(")

		if n.Bind != nil {
			sb.WriteString(n.Bind.Text)
			sb.WriteString(", ")
		}

		sb.WriteString(strconv.Itoa(n.Period))
		sb.WriteString(", ")
		writeExpr(sb, n.Command)

		if n.Workdir != nil {
			sb.WriteString(", ")
			writeExpr(sb, n.Workdir)
		}

		sb.WriteByte(')')

	case *RelPath:
		sb.WriteString("relpath(")
		writeExpr(sb, n.Path)
		sb.WriteString(", ")
		writeExpr(sb, n.Base)
		sb.WriteByte(')')

	case *Workspace:
		sb.WriteString(n.Field.String())
		sb.WriteByte('(')
		writeExpr(sb, n.Path)
		sb.WriteByte(')')
	}
}

// writeOperand writes e, parenthesized if it binds looser than min.
func writeOperand(sb *strings.Builder, e Expr, minPrec int) {
	if precedence(e) >= minPrec {
		writeExpr(sb, e)

		return
	}

	sb.WriteByte('(')
	writeExpr(sb, e)
	sb.WriteByte(')')
}

// FormatJSON writes the tree as JSON to the writer.
func FormatJSON(_ context.Context, w io.Writer, e Expr, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(ToMap(e), "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(ToMap(e))
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the tree as YAML to the writer.
func FormatYAML(ctx context.Context, w io.Writer, e Expr, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, ToMap(e), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// FormatTree writes an indented outline of the tree, one node per line.
func FormatTree(w io.Writer, e Expr, indent int) error {
	if indent <= 0 {
		indent = 2
	}

	return writeTree(w, e, indent, 0)
}

func writeTree(w io.Writer, e Expr, indent, depth int) error {
	if _, err := fmt.Fprintf(w, "%s%s @%d\n",
		strings.Repeat(" ", depth*indent), describe(e), e.Offset()); err != nil {
		return err
	}

	for _, c := range e.Children() {
		if err := writeTree(w, c, indent, depth+1); err != nil {
			return err
		}
	}

	return nil
}

// describe returns a one-line label for a node, excluding its children.
func describe(e Expr) string {
	switch n := e.(type) {
	case *Literal:
		if s, ok := n.Value.(Str); ok {
			return "Str " + QuoteString(string(s))
		}

		return "Bool " + n.Value.String()

	case *Variable:
		return "Variable " + n.Name

	case *Unary:
		return "Unary " + n.Op.String()

	case *Binary:
		return "Binary " + n.Op.String()

	case *Ternary:
		return "Ternary"

	case *RegexMatch:
		op := "=~"
		if n.Invert {
			op = "!~"
		}

		return "Regex " + op + " " + QuoteString(n.Source)

	case *Exec:
		s := "Exec period=" + strconv.Itoa(n.Period)
		if n.Bind != nil {
			s += " bind=" + n.Bind.Name
		}

		return s

	case *RelPath:
		return "RelPath"

	case *Workspace:
		return "Workspace " + n.Field.String()

	default:
		return fmt.Sprintf("%T", e)
	}
}
