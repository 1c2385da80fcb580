package pyast

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *Node {
	t.Helper()
	mod, err := Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	return mod
}

func TestParse_ModuleDocstring(t *testing.T) {
	mod := parse(t, "\"\"\"Top level doc.\"\"\"\n\nx = 1\n")
	assert.Equal(t, KindModule, mod.Kind)
	assert.Equal(t, "Top level doc.", mod.Docstring)
	assert.Empty(t, mod.Body)
}

func TestParse_NoDocstring(t *testing.T) {
	mod := parse(t, "x = 1\n\"\"\"not a docstring\"\"\"\n")
	assert.Empty(t, mod.Docstring)
}

func TestParse_StringPrefixes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`"""plain"""`, "plain"},
		{`'''single'''`, "single"},
		{`"one line"`, "one line"},
		{`r"""raw"""`, "raw"},
		{`u"unicode"`, "unicode"},
		// Only the delimiter pair is stripped, quotes inside survive.
		{`"""'quoted' note"""`, "'quoted' note"},
		{`"ends with a quote'"`, "ends with a quote'"},
		{`'"double" inside'`, `"double" inside`},
	}
	for _, tt := range tests {
		mod := parse(t, tt.src+"\n")
		assert.Equal(t, tt.want, mod.Docstring, "source %s", tt.src)
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse(context.Background(), []byte("def broken(:\n"))
	require.ErrorIs(t, err, ErrSyntax)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod.py")
	require.NoError(t, os.WriteFile(path, []byte("\"\"\"File doc.\"\"\"\n"), 0o644))

	mod, err := ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "File doc.", mod.Docstring)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(context.Background(), filepath.Join(t.TempDir(), "nope.py"))
	require.Error(t, err)
}

func TestCollectDefs_ClassAndFunction(t *testing.T) {
	mod := parse(t, `class Greeter:
    """A greeter."""

    def greet(self, name):
        """Say hello."""
        return "hi " + name


def main():
    pass
`)
	require.Len(t, mod.Body, 2)

	cls := mod.Body[0]
	assert.Equal(t, KindClass, cls.Kind)
	assert.Equal(t, "Greeter", cls.Name)
	assert.Equal(t, 1, cls.Line)
	assert.Equal(t, "A greeter.", cls.Docstring)
	require.Len(t, cls.Body, 1)

	method := cls.Body[0]
	assert.Equal(t, KindFunction, method.Kind)
	assert.Equal(t, "greet", method.Name)
	assert.Equal(t, 4, method.Line)
	assert.Equal(t, "Say hello.", method.Docstring)
	assert.Equal(t, []string{"self", "name"}, method.Params.Positional)

	fn := mod.Body[1]
	assert.Equal(t, KindFunction, fn.Kind)
	assert.Equal(t, "main", fn.Name)
	assert.Equal(t, 9, fn.Line)
}

func TestCollectDefs_SkipsConditionalDefs(t *testing.T) {
	mod := parse(t, `if True:
    def hidden():
        pass


def visible():
    pass
`)
	require.Len(t, mod.Body, 1)
	assert.Equal(t, "visible", mod.Body[0].Name)
}

func TestCollectDefs_NestedFunction(t *testing.T) {
	mod := parse(t, `def outer():
    def inner():
        pass
`)
	require.Len(t, mod.Body, 1)
	outer := mod.Body[0]
	require.Len(t, outer.Body, 1)
	assert.Equal(t, "inner", outer.Body[0].Name)
}

func TestBuildParams(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		params Params
	}{
		{
			name:   "plain",
			src:    "def f(a, b):\n    pass\n",
			params: Params{Positional: []string{"a", "b"}},
		},
		{
			name:   "typed and defaulted",
			src:    "def f(a: int, b=1, c: str = \"x\"):\n    pass\n",
			params: Params{Positional: []string{"a", "b", "c"}},
		},
		{
			name:   "varargs and kwargs",
			src:    "def f(a, *args, **kwargs):\n    pass\n",
			params: Params{Positional: []string{"a"}, VarArg: "args", KwArg: "kwargs"},
		},
		{
			name:   "keyword only after star",
			src:    "def f(a, *, b, c=1):\n    pass\n",
			params: Params{Positional: []string{"a"}},
		},
		{
			name:   "keyword only after varargs",
			src:    "def f(a, *args, b):\n    pass\n",
			params: Params{Positional: []string{"a"}, VarArg: "args"},
		},
		{
			name:   "empty",
			src:    "def f():\n    pass\n",
			params: Params{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := parse(t, tt.src)
			require.Len(t, mod.Body, 1)
			assert.Equal(t, tt.params, mod.Body[0].Params)
		})
	}
}

func TestDecorators(t *testing.T) {
	mod := parse(t, `@staticmethod
@functools.lru_cache(maxsize=8)
def cached():
    pass
`)
	require.Len(t, mod.Body, 1)
	assert.Equal(t, []string{"staticmethod", "functools.lru_cache"}, mod.Body[0].Decorators)
}

func TestDecoratedClass(t *testing.T) {
	mod := parse(t, `@dataclass
class Point:
    pass
`)
	require.Len(t, mod.Body, 1)
	assert.Equal(t, KindClass, mod.Body[0].Kind)
	assert.Equal(t, "Point", mod.Body[0].Name)
}

func TestContains(t *testing.T) {
	tests := []struct {
		name string
		src  string
		term Term
		want bool
	}{
		{"return with value", "def f():\n    return 1\n", TermReturnValue, true},
		{"bare return", "def f():\n    return\n", TermReturnValue, false},
		{"yield", "def f():\n    yield 1\n", TermYield, true},
		{"raise", "def f():\n    raise ValueError(\"no\")\n", TermRaise, true},
		{"nothing", "def f():\n    pass\n", TermReturnValue, false},
		{"return in nested def", "def f():\n    def g():\n        return 1\n", TermReturnValue, true},
		{"return in loop", "def f(xs):\n    for x in xs:\n        return x\n", TermReturnValue, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := parse(t, tt.src)
			require.Len(t, mod.Body, 1)
			assert.Equal(t, tt.want, mod.Body[0].Contains(tt.term))
		})
	}
}

func TestContains_FalseForModuleAndClass(t *testing.T) {
	mod := parse(t, "class C:\n    pass\n")
	assert.False(t, mod.Contains(TermReturnValue))
	assert.False(t, mod.Body[0].Contains(TermRaise))
}
