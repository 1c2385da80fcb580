package splint

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jward/splint/internal/pyast"
)

// Definition is one documented code element (module, class or function)
// plus the findings recorded against it. Errors are blocking-grade
// issues, warnings advisory; both are accumulated in order and never
// raised as Go errors.
type Definition interface {
	// Kind returns "module", "class", "function" or "method".
	Kind() string
	Name() string
	// Line is the 1-based source line, 0 for modules.
	Line() int
	Errors() []string
	Warnings() []string
	// String is the header line used by the text report.
	fmt.Stringer
}

// ModuleDef is the definition of a module. Its only check is docstring
// presence, run at construction.
type ModuleDef struct {
	name   string
	errors []string
}

// NewModuleDef builds a module definition from a parsed module node. The
// display name is the final path component of filepath.
func NewModuleDef(mod *pyast.Node, path string) *ModuleDef {
	d := &ModuleDef{name: filepath.Base(path)}
	if mod.Docstring == "" {
		d.errors = append(d.errors, "Docstring for module is missing")
	}
	return d
}

func (d *ModuleDef) Kind() string       { return "module" }
func (d *ModuleDef) Name() string       { return d.name }
func (d *ModuleDef) Line() int          { return 0 }
func (d *ModuleDef) Errors() []string   { return d.errors }
func (d *ModuleDef) Warnings() []string { return nil }

func (d *ModuleDef) String() string {
	return "module: " + d.name
}

// ClassDef is the definition of a class. Like ModuleDef, its only check
// is docstring presence.
type ClassDef struct {
	name   string
	line   int
	errors []string
}

// NewClassDef builds a class definition from a parsed class node.
func NewClassDef(node *pyast.Node) *ClassDef {
	d := &ClassDef{name: node.Name, line: node.Line}
	if node.Docstring == "" {
		d.errors = append(d.errors, "Docstring for class is missing")
	}
	return d
}

func (d *ClassDef) Kind() string       { return "class" }
func (d *ClassDef) Name() string       { return d.name }
func (d *ClassDef) Line() int          { return d.line }
func (d *ClassDef) Errors() []string   { return d.errors }
func (d *ClassDef) Warnings() []string { return nil }

func (d *ClassDef) String() string {
	return fmt.Sprintf("%d: class: %s", d.line, d.name)
}

// FuncDef is the definition of a function or method. The consistency
// checks run once, at construction, and populate the error and warning
// lists. Custom rules may append further findings afterwards via
// AddError and AddWarning.
type FuncDef struct {
	name       string
	line       int
	isMethod   bool
	params     []string
	decorators map[string]bool

	// DocStr holds the annotations extracted from the docstring.
	DocStr DocStr

	// HasReturn is true when the body contains, anywhere nested, a
	// return statement with a value or a yield expression.
	HasReturn bool

	// RaisesException is true when the body contains, anywhere nested,
	// a raise statement.
	RaisesException bool

	errors   []string
	warnings []string
}

// NewFuncDef builds a function definition from a parsed function node and
// runs the docstring consistency checks. isMethod marks the function as a
// class method, exempting its receiver parameter from documentation
// requirements.
func NewFuncDef(node *pyast.Node, isMethod bool) *FuncDef {
	d := newFuncDef(node, isMethod)
	d.check()
	return d
}

// NewFuncDefNoCheck builds a function definition without running checks.
// Used by tests that exercise individual rules.
func NewFuncDefNoCheck(node *pyast.Node, isMethod bool) *FuncDef {
	return newFuncDef(node, isMethod)
}

func newFuncDef(node *pyast.Node, isMethod bool) *FuncDef {
	decorators := make(map[string]bool, len(node.Decorators))
	for _, dec := range node.Decorators {
		decorators[dec] = true
	}
	return &FuncDef{
		name:            node.Name,
		line:            node.Line,
		isMethod:        isMethod,
		params:          parameters(node),
		decorators:      decorators,
		DocStr:          NewDocStr(node.Docstring),
		HasReturn:       node.Contains(pyast.TermReturnValue) || node.Contains(pyast.TermYield),
		RaisesException: node.Contains(pyast.TermRaise),
	}
}

// parameters flattens a function's declared parameters: positional names
// in source order, then the *args name if present, then the **kwargs name
// if present.
func parameters(node *pyast.Node) []string {
	params := make([]string, 0, len(node.Params.Positional)+2)
	for _, name := range node.Params.Positional {
		if name != "" {
			params = append(params, name)
		}
	}
	if node.Params.VarArg != "" {
		params = append(params, node.Params.VarArg)
	}
	if node.Params.KwArg != "" {
		params = append(params, node.Params.KwArg)
	}
	return params
}

func (d *FuncDef) Kind() string {
	if d.isMethod {
		return "method"
	}
	return "function"
}

func (d *FuncDef) Name() string       { return d.name }
func (d *FuncDef) Line() int          { return d.line }
func (d *FuncDef) Errors() []string   { return d.errors }
func (d *FuncDef) Warnings() []string { return d.warnings }

// IsMethod reports whether the function was encountered in a class-body
// context.
func (d *FuncDef) IsMethod() bool { return d.isMethod }

// Params returns the declared parameter names, receiver included.
func (d *FuncDef) Params() []string { return d.params }

// Decorators returns the function's decorator names.
func (d *FuncDef) Decorators() []string {
	names := make([]string, 0, len(d.decorators))
	for name := range d.decorators {
		names = append(names, name)
	}
	return names
}

// AddError appends an error finding.
func (d *FuncDef) AddError(text string) { d.errors = append(d.errors, text) }

// AddWarning appends a warning finding.
func (d *FuncDef) AddWarning(text string) { d.warnings = append(d.warnings, text) }

func (d *FuncDef) String() string {
	return fmt.Sprintf("%d: %s: %s(%s)", d.line, d.Kind(), d.name, strings.Join(d.params, ","))
}
