package host

import (
	"strings"

	"github.com/expr-lang/expr/ast"
)

// foldCase rewrites identifiers in a computed-variable expression to the
// lowercase spelling under which variables are stored, so that
// "Doc_Path" refers to doc_path. Names that already exist as spelled,
// such as the mixed-case builtins, are left alone.
type foldCase struct {
	env map[string]any
}

// Visit implements ast.Visitor.
func (p *foldCase) Visit(node *ast.Node) {
	id, ok := (*node).(*ast.IdentifierNode)
	if !ok {
		return
	}

	if _, ok := p.env[id.Value]; ok {
		return
	}

	lower := strings.ToLower(id.Value)
	if _, ok := p.env[lower]; ok {
		ast.Patch(node, &ast.IdentifierNode{Value: lower})
	}
}
