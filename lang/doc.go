// Package lang implements the window-title expression language: a
// tokenizer, a recursive-descent parser, an immutable expression tree,
// evaluation contexts, constant folding and an unresolved-variable
// collector.
//
// # Values
//
// Every expression evaluates to a [Bool] or a [Str]. A string is true
// iff it is non-empty. The == and != operators compare two strings
// case-insensitively and any other pairing by truth value.
//
// # Grammar
//
// Informal EBNF, loosest binding first:
//
//	Expr      → Ternary
//	Ternary   → Or ( '?' Or ( ':' Ternary )? )?
//	Or        → Xor ( ( 'or' | '||' ) Xor )*
//	Xor       → And ( ( 'xor' | '^' ) And )*
//	And       → Compare ( ( 'and' | '&&' | '&' ) Compare )*
//	Compare   → Substr ( ( '==' | '!=' ) Substr )*
//	Substr    → Concat ( ( 'contains' | 'startswith' | 'endswith' ) Concat )*
//	Concat    → Regex ( '+' Regex )*
//	Regex     → Unary ( ( '=~' | '!~' ) Unary )?
//	Unary     → UnaryOp Unary | HostCall | Primary
//	UnaryOp   → 'not' | 'upcase' | 'locase' | 'lcap' | 'bool' | 'str' | 'backslashize'
//	HostCall  → 'exec' '(' ( Name ',' )? Period ',' Expr ( ',' Expr )? ')'
//	          | 'relpath' '(' Expr ',' Expr ')'
//	          | ( 'wsname' | 'wsowner' ) '(' Expr ')'
//	Primary   → String | Variable | '(' Expr ')' | IfElse | Bracket
//	IfElse    → 'if' '(' Expr ')' 'then'? '{' Expr '}' 'else' ( '{' Expr '}' | IfElse )
//	Bracket   → '[' Expr '|' Expr ( '|' Expr )? ']'
//
// Keywords and variable names are case-insensitive. String literals are
// double-quoted with "" standing for one quote. Comments use // and /* */.
//
// # Scoping
//
// A successful regex match exposes its capture groups as $0, $1, … and
// $name. When the match is the condition of a ternary, these variables
// are visible only inside the selected branch:
//
//	doc_path =~ "([^\\]+)\.cs$" ? $1 : "none"
//
// An exec call with an output name binds that name the same way.
//
// # Folding
//
// The right operand of =~ must be a constant string; it is folded and
// compiled when parsed. [Fold] applies the same simplification to whole
// trees, returning a new tree and leaving the input untouched.
//
// # Diagnostics
//
// [CollectUnresolved] reports variables a resolver cannot supply,
// including those in branches not currently taken, without invoking any
// host collaborator.
package lang
