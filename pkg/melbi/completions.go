package melbi

import (
	"strings"

	"github.com/melbi-lang/melbi/internal/ast"
	"github.com/melbi-lang/melbi/internal/parser"
	"github.com/melbi-lang/melbi/internal/typesystem"
)

// CompletionItem is one suggestion for an LSP-style completion request
// (spec.md §6.1 item 4).
type CompletionItem struct {
	Label string
	Kind  string // "global", "local", or "field"
}

// Completions offers identifiers visible at offset, best-effort, reusing
// the parser's own delimiter-recovery so a syntactically incomplete program
// (the common case while a user is still typing) still yields suggestions
// (spec.md §6.1 item 4, fleshed out in SPEC_FULL.md §5). If the text
// immediately before offset is a trailing `.`, field names of the
// dot-expression's resolved record type are offered instead; this requires
// a successful Compile of the text before the dot, so it silently returns
// no field items when that prefix does not type-check as a Record.
func (c *Core) Completions(source string, offset int) []CompletionItem {
	if offset < 0 || offset > len(source) {
		offset = len(source)
	}
	prefix := source[:offset]

	if trimmed := strings.TrimRight(prefix, " \t"); strings.HasSuffix(trimmed, ".") {
		return c.fieldCompletions(strings.TrimSuffix(trimmed, "."))
	}

	items := make([]CompletionItem, 0, len(c.schema))
	seen := map[string]bool{}
	for name := range c.schema {
		items = append(items, CompletionItem{Label: name, Kind: "global"})
		seen[name] = true
	}

	p := parser.New(prefix)
	expr, _ := p.ParseProgram()
	for _, name := range boundNames(expr) {
		if !seen[name] {
			items = append(items, CompletionItem{Label: name, Kind: "local"})
			seen[name] = true
		}
	}
	return items
}

func (c *Core) fieldCompletions(exprSource string) []CompletionItem {
	compiled, err := c.Compile(exprSource)
	if err != nil {
		return nil
	}
	rec, ok := compiled.Type().(typesystem.Record)
	if !ok {
		return nil
	}
	items := make([]CompletionItem, len(rec.Fields))
	for i, f := range rec.Fields {
		items[i] = CompletionItem{Label: f.Name, Kind: "field"}
	}
	return items
}

// boundNames walks the untyped AST collecting every name bound by a where
// binding, lambda parameter, or match-arm variable pattern anywhere in
// expr — an over-approximation of "visible at this point" that favors
// offering a few extra (out-of-scope) suggestions over missing any that
// are genuinely in scope, appropriate for a best-effort completion list.
func boundNames(expr ast.Expr) []string {
	var names []string
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.Lambda:
			for _, p := range n.Params {
				names = append(names, p.Name)
			}
			walk(n.Body)
		case *ast.Where:
			for _, b := range n.Bindings {
				names = append(names, b.Name)
				walk(b.Value)
			}
			walk(n.Body)
		case *ast.Match:
			walk(n.Scrutinee)
			for _, arm := range n.Arms {
				names = append(names, patternNames(arm.Pattern)...)
				walk(arm.Body)
			}
		case *ast.Binary:
			walk(n.Lhs)
			walk(n.Rhs)
		case *ast.Unary:
			walk(n.Inner)
		case *ast.If:
			walk(n.Cond)
			walk(n.Then)
			walk(n.Else)
		case *ast.Index:
			walk(n.Container)
			walk(n.Key)
		case *ast.Field:
			walk(n.Record)
		case *ast.Cast:
			walk(n.Inner)
		case *ast.Call:
			walk(n.Callee)
			for _, a := range n.Args {
				walk(a)
			}
		case *ast.Otherwise:
			walk(n.Expr)
			walk(n.Fallback)
		case *ast.ArrayLit:
			for _, el := range n.Elems {
				walk(el)
			}
		case *ast.MapLit:
			for _, p := range n.Pairs {
				walk(p.Key)
				walk(p.Value)
			}
		case *ast.RecordLit:
			for _, f := range n.Fields {
				walk(f.Value)
			}
		}
	}
	walk(expr)
	return names
}

func patternNames(pat ast.Pattern) []string {
	switch p := pat.(type) {
	case *ast.VarPattern:
		return []string{p.Name}
	case *ast.SomePattern:
		return patternNames(p.Inner)
	default:
		return nil
	}
}
