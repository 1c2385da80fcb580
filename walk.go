package splint

import (
	"context"
	"fmt"
	"os"

	"github.com/jward/splint/internal/pyast"
)

// constructorName is the one underscore-prefixed function name that is
// always linted.
const constructorName = "__init__"

// ignore reports whether a node is skipped entirely by the walker:
// private helper functions are excluded from linting, but constructors
// are always checked.
func ignore(node *pyast.Node) bool {
	return node.Kind == pyast.KindFunction &&
		len(node.Name) > 0 && node.Name[0] == '_' &&
		node.Name != constructorName
}

// walkBody recurses over a node body, creating a definition per class and
// function and passing it to record. inClass marks a class-body context:
// functions encountered there are methods. The flag propagates
// unconditionally into nested bodies, so a function nested inside a
// method is itself treated as a method.
func walkBody(body []*pyast.Node, inClass bool, record func(Definition)) {
	for _, node := range body {
		if ignore(node) {
			continue
		}
		switch node.Kind {
		case pyast.KindClass:
			record(NewClassDef(node))
			walkBody(node.Body, true, record)
		case pyast.KindFunction:
			record(NewFuncDef(node, inClass))
			walkBody(node.Body, true, record)
		}
	}
}

// lintInto parses src and fills rf with the module definition and every
// class/function definition found by the walker. hook, when non-nil, runs
// on each definition before it is recorded; the engine uses it to apply
// custom rules while the file section's counts are still open.
func lintInto(ctx context.Context, rf *FileReport, path string, src []byte, hook func(Definition)) error {
	mod, err := pyast.Parse(ctx, src)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	record := func(def Definition) {
		if hook != nil {
			hook(def)
		}
		rf.Add(def)
	}
	record(NewModuleDef(mod, path))
	walkBody(mod.Body, false, record)
	return nil
}

// LintSource lints the given source, appending a new file section keyed
// by path to report. Returns the section. Fails only on a parser error;
// findings are data on the returned section.
func LintSource(ctx context.Context, report *Report, path string, src []byte) (*FileReport, error) {
	rf := NewFileReport(path)
	if err := lintInto(ctx, rf, path, src, nil); err != nil {
		return nil, err
	}
	report.Append(rf)
	return rf, nil
}

// LintFile reads and lints a single file.
func LintFile(ctx context.Context, report *Report, path string) (*FileReport, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return LintSource(ctx, report, path, src)
}
