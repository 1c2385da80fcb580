// Package splint checks that docstrings of Python modules, classes and
// functions are present, complete, and consistent with the code they
// document. It parses each file with tree-sitter, walks the definitions,
// and cross-checks a function's declared parameters and return behavior
// against the `:param`, `:return:` and `:rtype:` annotations in its
// docstring.
//
// # Pipeline
//
//  1. Discover: enumerate .py files under a root directory, honoring
//     .gitignore (via git ls-files) and exclude glob patterns.
//
//  2. Lint: for each file, parse to a syntax tree, create a definition
//     per module/class/function, run the consistency checks, and record
//     the definition into a per-file report section.
//
// # Usage
//
// Create an Engine and lint a directory:
//
//	e, err := splint.NewEngine()
//	if err != nil { ... }
//	defer e.Close()
//
//	report, err := e.LintDirectory(ctx, "path/to/project")
//	errs, warns := report.Totals()
//
// Findings are data, never errors: a malformed docstring produces more
// findings, while an unreadable or unparsable file fails the run.
//
// # Custom rules
//
// User-defined checks live in Risor scripts. Each *.risor file in the
// configured rules directory runs once per linted function and can emit
// additional findings via add_error() and add_warning(). See [WithRules].
package splint
