package splint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/splint/internal/pyast"
)

func TestIgnore(t *testing.T) {
	assert.False(t, ignore(functionNode(t, "def foo(): pass")))
	assert.False(t, ignore(functionNode(t, "def __init__(self): pass")))
	assert.True(t, ignore(functionNode(t, "def _foo(): pass")))
	// Private classes are not ignored, only private functions.
	assert.False(t, ignore(classNode(t, "class _Hidden:\n    pass\n")))
}

func TestWalkBody_ClassWithMethod(t *testing.T) {
	node := classNode(t, classWithMethod)
	rf := NewFileReport("class_with_method.py")
	walkBody([]*pyast.Node{node}, false, rf.Add)
	require.Len(t, rf.Definitions, 2)
	assert.Equal(t, "class", rf.Definitions[0].Kind())
	assert.Equal(t, "method", rf.Definitions[1].Kind())
}

// A function reached outside any class body stays a function even when
// it textually sits inside a class, e.g. when the caller hands the class
// body over directly instead of the class node.
func TestWalkBody_FunctionOutsideClassContext(t *testing.T) {
	node := classNode(t, classWithMethod)
	rf := NewFileReport("class_with_method.py")
	walkBody(node.Body, false, rf.Add)
	require.Len(t, rf.Definitions, 1)
	assert.Equal(t, "function", rf.Definitions[0].Kind())
}

func TestWalkBody_PrivateMethodSkipped(t *testing.T) {
	src := `class Helper:
    """A helper."""

    def _compute(self, a):
        return a
`
	node := classNode(t, src)
	rf := NewFileReport("class_with_private_method.py")
	walkBody(node.Body, false, rf.Add)
	assert.Empty(t, rf.Definitions)
}

func TestWalkBody_ConstructorAlwaysLinted(t *testing.T) {
	src := `class Point:
    """A point."""

    def __init__(self, x, y):
        self.x = x
        self.y = y
`
	node := classNode(t, src)
	rf := NewFileReport("point.py")
	walkBody(node.Body, false, rf.Add)
	require.Len(t, rf.Definitions, 1)
	assert.Equal(t, "__init__", rf.Definitions[0].Name())
	assert.Equal(t, []string{"Docstring missing"}, rf.Definitions[0].Errors())
}

func TestWalkBody_NestedFunctionInsideMethodKeepsMethodContext(t *testing.T) {
	// The class-context flag propagates unconditionally into nested
	// bodies, so a function defined inside a method is itself treated as
	// a method: its first parameter is exempt from documentation.
	src := `class Outer:
    """A class."""

    def compute(self, a):
        """Compute.

        :param int a: Input.
        """
        def inner(ctx):
            """Inner helper."""
            pass
        return inner
`
	node := classNode(t, src)
	rf := NewFileReport("outer.py")
	walkBody(node.Body, false, rf.Add)
	require.Len(t, rf.Definitions, 2)

	inner, ok := rf.Definitions[1].(*FuncDef)
	require.True(t, ok)
	assert.Equal(t, "inner", inner.Name())
	assert.Equal(t, "method", inner.Kind())
	// "ctx" is dropped as a receiver, so no missing-param error fires.
	assert.Empty(t, inner.Errors())
}

func TestLintSource_EndToEnd(t *testing.T) {
	src := "class Widget:\n    pass\n\n\n" + addWithDocstr
	report := NewReport()
	rf, err := LintSource(context.Background(), report, "widget.py", []byte(src))
	require.NoError(t, err)

	// Module, class, function.
	require.Len(t, rf.Definitions, 3)
	assert.Equal(t, 2, rf.NumErrors)
	assert.Equal(t, 0, rf.NumWarnings)
	assert.Equal(t, "module: widget.py", rf.Definitions[0].String())
	assert.Equal(t, "1: class: Widget", rf.Definitions[1].String())
}

func TestLintSource_Idempotent(t *testing.T) {
	src := []byte(classWithMethod)
	report := NewReport()
	first, err := LintSource(context.Background(), report, "calc.py", src)
	require.NoError(t, err)
	second, err := LintSource(context.Background(), report, "calc.py", src)
	require.NoError(t, err)

	require.Len(t, report.Files, 2)
	require.Len(t, second.Definitions, len(first.Definitions))
	for i := range first.Definitions {
		assert.Equal(t, first.Definitions[i].Errors(), second.Definitions[i].Errors())
		assert.Equal(t, first.Definitions[i].Warnings(), second.Definitions[i].Warnings())
	}
	assert.Equal(t, first.NumErrors, second.NumErrors)
	assert.Equal(t, first.NumWarnings, second.NumWarnings)
}

func TestLintSource_SyntaxError(t *testing.T) {
	report := NewReport()
	_, err := LintSource(context.Background(), report, "broken.py", []byte("def broken(:\n"))
	require.Error(t, err)
	assert.Empty(t, report.Files)
}

func TestLintFile_MissingFile(t *testing.T) {
	report := NewReport()
	_, err := LintFile(context.Background(), report, "/nonexistent/missing.py")
	require.Error(t, err)
}
