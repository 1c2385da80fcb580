package main

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/splint"
)

const dirtySource = `def add(a, b):
    return a + b
`

const cleanSource = `"""Arithmetic helpers."""


def add(a, b):
    """Add two numbers.

    :param int a: first operand
    :param int b: second operand
    :return: the sum
    :rtype: int
    """
    return a + b
`

func lintReport(t *testing.T, files map[string]string) *splint.Report {
	t.Helper()
	report := splint.NewReport()
	// Lint in a fixed order so output is stable.
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		_, err := splint.LintSource(context.Background(), report, path, []byte(files[path]))
		require.NoError(t, err)
	}
	return report
}

func TestRenderText(t *testing.T) {
	color.NoColor = true
	report := lintReport(t, map[string]string{"app.py": dirtySource})

	var buf bytes.Buffer
	require.NoError(t, renderText(&buf, report))

	stars := strings.Repeat("*", 80)
	want := stars + "\n" +
		"app.py\n" +
		"module: app.py\n" +
		"  E: Docstring for module is missing\n" +
		"1: function: add(a,b)\n" +
		"  E: Docstring missing\n" +
		stars + "\n" +
		"SUMMARY\n" +
		"errors: 2\n" +
		"warnings: 0\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderText_CleanReportPrintsNothing(t *testing.T) {
	color.NoColor = true
	report := lintReport(t, map[string]string{"clean.py": cleanSource})

	var buf bytes.Buffer
	require.NoError(t, renderText(&buf, report))
	assert.Empty(t, buf.String())
}

func TestRenderText_SkipsCleanFiles(t *testing.T) {
	color.NoColor = true
	report := lintReport(t, map[string]string{
		"clean.py": cleanSource,
		"dirty.py": dirtySource,
	})

	var buf bytes.Buffer
	require.NoError(t, renderText(&buf, report))

	out := buf.String()
	assert.NotContains(t, out, "clean.py")
	assert.Contains(t, out, "dirty.py")
	assert.Contains(t, out, "errors: 2\n")
}

func TestRenderJSON(t *testing.T) {
	report := lintReport(t, map[string]string{
		"clean.py": cleanSource,
		"dirty.py": dirtySource,
	})

	var buf bytes.Buffer
	require.NoError(t, renderJSON(&buf, report))

	var out jsonReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	// JSON output includes clean files.
	require.Len(t, out.Files, 2)
	assert.Equal(t, "clean.py", out.Files[0].Path)
	assert.Zero(t, out.Files[0].Errors)

	dirty := out.Files[1]
	assert.Equal(t, "dirty.py", dirty.Path)
	assert.Equal(t, 2, dirty.Errors)
	require.Len(t, dirty.Definitions, 2)
	assert.Equal(t, "module", dirty.Definitions[0].Kind)
	assert.Equal(t, []string{"Docstring for module is missing"}, dirty.Definitions[0].Errors)
	assert.Equal(t, "function", dirty.Definitions[1].Kind)
	assert.Equal(t, "add", dirty.Definitions[1].Name)
	assert.Equal(t, 1, dirty.Definitions[1].Line)

	assert.Equal(t, 2, out.Errors)
	assert.Zero(t, out.Warnings)
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("text"))
	assert.NoError(t, validateFormat("json"))
	require.Error(t, validateFormat("yaml"))
	require.Error(t, validateFormat(""))
}
