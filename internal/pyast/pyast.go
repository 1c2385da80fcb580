// Package pyast parses Python source with tree-sitter and exposes the
// small syntax-tree model the linter needs: a tagged node per module,
// class and function definition, with docstrings, parameter lists,
// decorators, and a descendant search for return/yield/raise terms.
package pyast

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Kind discriminates the node variants.
type Kind int

const (
	KindModule Kind = iota
	KindClass
	KindFunction
)

// Term is a statement kind searched for anywhere in a function's nested
// body, including nested definitions.
type Term int

const (
	// TermReturnValue is a return statement carrying a value. A bare
	// "return" does not count.
	TermReturnValue Term = iota
	TermYield
	TermRaise
)

// Params holds a function's declared parameters. Keyword-only parameters
// (after a bare "*" or after *args) are not collected.
type Params struct {
	Positional []string
	VarArg     string
	KwArg      string
}

// Node is one module, class or function definition. Body holds the
// class/function definitions that are direct statements of the node's
// body, in source order; definitions nested in deeper statements (inside
// an if or for block) are not part of the definition tree.
type Node struct {
	Kind      Kind
	Name      string
	Line      int
	Docstring string
	Body      []*Node

	// Function-only fields.
	Params     Params
	Decorators []string

	terms map[Term]bool
}

// Contains reports whether the given term occurs anywhere in the
// function's subtree. Always false for modules and classes.
func (n *Node) Contains(t Term) bool {
	return n.terms[t]
}

// ErrSyntax is returned when tree-sitter reports an error node anywhere
// in the parsed tree.
var ErrSyntax = errors.New("pyast: syntax error")

// Parse parses Python source into a module node.
func Parse(ctx context.Context, src []byte) (*Node, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("pyast: parse: %w", err)
	}
	root := tree.RootNode()
	if root.HasError() {
		return nil, ErrSyntax
	}

	return &Node{
		Kind:      KindModule,
		Docstring: docstringOf(root, src),
		Body:      collectDefs(root, src),
	}, nil
}

// ParseFile reads and parses a Python file.
func ParseFile(ctx context.Context, path string) (*Node, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pyast: read %s: %w", path, err)
	}
	return Parse(ctx, src)
}

// collectDefs builds definition nodes for the class and function
// definitions that are direct children of a module or block node.
func collectDefs(container *sitter.Node, src []byte) []*Node {
	var defs []*Node
	for i := 0; i < int(container.NamedChildCount()); i++ {
		child := container.NamedChild(i)
		switch child.Type() {
		case "class_definition":
			defs = append(defs, buildClass(child, src))
		case "function_definition":
			defs = append(defs, buildFunction(child, nil, src))
		case "decorated_definition":
			decorators := decoratorNames(child, src)
			if def := child.ChildByFieldName("definition"); def != nil {
				switch def.Type() {
				case "class_definition":
					defs = append(defs, buildClass(def, src))
				case "function_definition":
					defs = append(defs, buildFunction(def, decorators, src))
				}
			}
		}
	}
	return defs
}

func buildClass(node *sitter.Node, src []byte) *Node {
	n := &Node{
		Kind: KindClass,
		Name: fieldText(node, "name", src),
		Line: int(node.StartPoint().Row) + 1,
	}
	if body := node.ChildByFieldName("body"); body != nil {
		n.Docstring = docstringOf(body, src)
		n.Body = collectDefs(body, src)
	}
	return n
}

func buildFunction(node *sitter.Node, decorators []string, src []byte) *Node {
	n := &Node{
		Kind:       KindFunction,
		Name:       fieldText(node, "name", src),
		Line:       int(node.StartPoint().Row) + 1,
		Decorators: decorators,
		terms:      make(map[Term]bool, 3),
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		n.Params = buildParams(params, src)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		n.Docstring = docstringOf(body, src)
		n.Body = collectDefs(body, src)
	}
	scanTerms(node, src, n.terms)
	return n
}

// buildParams flattens the parameter list. Both bare identifiers and
// descriptor forms wrapping an identifier (typed, defaulted, or both) are
// resolved to the parameter name. Names after the variadic-positional
// marker are keyword-only and skipped.
func buildParams(params *sitter.Node, src []byte) Params {
	var p Params
	keywordOnly := false
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)
		switch child.Type() {
		case "identifier":
			if !keywordOnly {
				p.Positional = append(p.Positional, nodeText(child, src))
			}
		case "typed_parameter", "typed_default_parameter", "default_parameter":
			inner := child
			if name := child.ChildByFieldName("name"); name != nil {
				inner = name
			} else if child.NamedChildCount() > 0 {
				inner = child.NamedChild(0)
			}
			switch inner.Type() {
			case "identifier":
				if !keywordOnly {
					p.Positional = append(p.Positional, nodeText(inner, src))
				}
			case "list_splat_pattern":
				p.VarArg = splatName(inner, src)
				keywordOnly = true
			case "dictionary_splat_pattern":
				p.KwArg = splatName(inner, src)
			}
		case "list_splat_pattern":
			p.VarArg = splatName(child, src)
			keywordOnly = true
		case "dictionary_splat_pattern":
			p.KwArg = splatName(child, src)
		case "keyword_separator":
			keywordOnly = true
		}
	}
	return p
}

// splatName returns the identifier wrapped by a *args or **kwargs pattern.
func splatName(node *sitter.Node, src []byte) string {
	if node.NamedChildCount() > 0 {
		return nodeText(node.NamedChild(0), src)
	}
	return ""
}

// decoratorNames extracts decorator names from a decorated_definition.
// For a call decorator the callee name is used; attribute decorators keep
// their dotted form.
func decoratorNames(node *sitter.Node, src []byte) []string {
	var names []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "decorator" || child.NamedChildCount() == 0 {
			continue
		}
		expr := child.NamedChild(0)
		if expr.Type() == "call" {
			if fn := expr.ChildByFieldName("function"); fn != nil {
				expr = fn
			}
		}
		names = append(names, nodeText(expr, src))
	}
	return names
}

// termTypes maps tree-sitter node types to terms. return_statement is
// handled separately because only returns with a value count.
var termTypes = map[string]Term{
	"yield":           TermYield,
	"raise_statement": TermRaise,
}

// scanTerms walks the full subtree, nested definitions included, and
// records every term found.
func scanTerms(node *sitter.Node, src []byte, terms map[Term]bool) {
	switch node.Type() {
	case "return_statement":
		if node.NamedChildCount() > 0 {
			terms[TermReturnValue] = true
		}
	default:
		if t, ok := termTypes[node.Type()]; ok {
			terms[t] = true
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		scanTerms(node.Child(i), src, terms)
	}
}

// docstringOf returns the docstring of a module or block node: the string
// literal forming its first statement, quotes stripped. Empty when the
// first statement is not a string.
func docstringOf(container *sitter.Node, src []byte) string {
	if container.NamedChildCount() == 0 {
		return ""
	}
	first := container.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	return stringContent(nodeText(str, src))
}

// stringDelims are the quote delimiters of a Python string literal,
// longest first so triple quotes win over their single-quote prefix.
var stringDelims = []string{`"""`, "'''", `"`, "'"}

// stringContent strips prefix letters and the quote delimiter from a
// string literal. Only the exact delimiter pair is removed, so content
// that itself starts or ends with a quote character survives.
func stringContent(raw string) string {
	raw = strings.TrimLeft(raw, "rRbBuUfF")
	for _, delim := range stringDelims {
		if len(raw) >= 2*len(delim) &&
			strings.HasPrefix(raw, delim) && strings.HasSuffix(raw, delim) {
			return raw[len(delim) : len(raw)-len(delim)]
		}
	}
	return raw
}

func fieldText(node *sitter.Node, field string, src []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return nodeText(child, src)
}

func nodeText(node *sitter.Node, src []byte) string {
	return node.Content(src)
}
