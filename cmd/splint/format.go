package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/jward/splint"
)

var (
	errorLabel   = color.New(color.FgRed, color.Bold)
	warningLabel = color.New(color.FgYellow, color.Bold)
	divider      = strings.Repeat("*", 80)
)

// renderText writes the human-readable report: per offending file a
// divider and the file path, then each offending definition's header
// with its indented findings, and a trailing summary. Clean files print
// nothing at all.
func renderText(w io.Writer, report *splint.Report) error {
	numErrors, numWarnings := 0, 0
	for _, rf := range report.Files {
		if !rf.HasIssues() {
			continue
		}
		fmt.Fprintln(w, divider)
		fmt.Fprintln(w, rf.Path)
		for _, def := range rf.Definitions {
			if len(def.Errors())+len(def.Warnings()) == 0 {
				continue
			}
			fmt.Fprintln(w, def.String())
			for _, msg := range def.Errors() {
				fmt.Fprintf(w, "  %s %s\n", errorLabel.Sprint("E:"), msg)
			}
			for _, msg := range def.Warnings() {
				fmt.Fprintf(w, "  %s %s\n", warningLabel.Sprint("W:"), msg)
			}
		}
		numErrors += rf.NumErrors
		numWarnings += rf.NumWarnings
	}

	if numErrors > 0 || numWarnings > 0 {
		fmt.Fprintln(w, divider)
		fmt.Fprintln(w, "SUMMARY")
		fmt.Fprintf(w, "errors: %d\n", numErrors)
		fmt.Fprintf(w, "warnings: %d\n", numWarnings)
	}
	return nil
}

// jsonDefinition mirrors one definition in JSON output.
type jsonDefinition struct {
	Kind     string   `json:"kind"`
	Name     string   `json:"name"`
	Line     int      `json:"line,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// jsonFile mirrors one file section in JSON output.
type jsonFile struct {
	Path        string           `json:"path"`
	Definitions []jsonDefinition `json:"definitions"`
	Errors      int              `json:"errors"`
	Warnings    int              `json:"warnings"`
}

// jsonReport is the machine-readable form of a full report.
type jsonReport struct {
	Files    []jsonFile `json:"files"`
	Errors   int        `json:"errors"`
	Warnings int        `json:"warnings"`
}

// renderJSON writes the full report, clean files included, as indented
// JSON.
func renderJSON(w io.Writer, report *splint.Report) error {
	out := jsonReport{Files: make([]jsonFile, 0, len(report.Files))}
	for _, rf := range report.Files {
		jf := jsonFile{
			Path:        rf.Path,
			Definitions: make([]jsonDefinition, 0, len(rf.Definitions)),
			Errors:      rf.NumErrors,
			Warnings:    rf.NumWarnings,
		}
		for _, def := range rf.Definitions {
			jf.Definitions = append(jf.Definitions, jsonDefinition{
				Kind:     def.Kind(),
				Name:     def.Name(),
				Line:     def.Line(),
				Errors:   def.Errors(),
				Warnings: def.Warnings(),
			})
		}
		out.Files = append(out.Files, jf)
	}
	out.Errors, out.Warnings = report.Totals()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// validFormats lists accepted values for --format.
var validFormats = []string{"text", "json"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
