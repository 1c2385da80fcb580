package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jward/splint"
)

var (
	flagExcludes []string
	flagRules    string
	flagCache    string
	flagFormat   string
	flagSerial   bool
	flagNoColor  bool
	flagQuiet    bool
)

// exitCode carries the total error count out of runLint so main can use
// it as the process exit status after cobra unwinds.
var exitCode int

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

var rootCmd = &cobra.Command{
	Use:   "splint [dir]",
	Short: "Lint Python docstrings for missing and inconsistent documentation",
	Long: "Splint parses Python files with tree-sitter and checks that every module,\n" +
		"class and function docstring is present and consistent with the code:\n" +
		"documented parameters must match the signature, and return annotations\n" +
		"must match the function's actual return behavior.\n\n" +
		"The exit status is the total number of errors found.",
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runLint,
}

func init() {
	rootCmd.Flags().StringArrayVar(&flagExcludes, "exclude", nil, "glob pattern of files to skip (repeatable)")
	rootCmd.Flags().StringVar(&flagRules, "rules", "", "directory with custom *.risor rule scripts")
	rootCmd.Flags().StringVar(&flagCache, "cache", "", "path of the SQLite findings cache (disabled when empty)")
	rootCmd.Flags().StringVar(&flagFormat, "format", "text", "output format: text|json")
	rootCmd.Flags().BoolVar(&flagSerial, "serial", false, "lint files one at a time instead of in parallel")
	rootCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress the timing line on stderr")
}

func runLint(cmd *cobra.Command, args []string) error {
	start := time.Now()

	if err := validateFormat(flagFormat); err != nil {
		return err
	}
	if flagNoColor {
		color.NoColor = true
	}

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(targetDir)
	if err != nil {
		return err
	}
	cfg.merge(cmd, targetDir)

	opts := []splint.Option{
		splint.WithParallel(!cfg.Serial),
		splint.WithExcludes(cfg.Exclude...),
	}
	if cfg.Rules != "" {
		opts = append(opts, splint.WithRules(cfg.Rules))
	}
	if cfg.Cache != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Cache), 0o755); err != nil {
			return fmt.Errorf("creating cache directory: %w", err)
		}
		opts = append(opts, splint.WithCache(cfg.Cache))
	}

	engine, err := splint.NewEngine(opts...)
	if err != nil {
		return err
	}
	defer engine.Close()

	report, err := engine.LintDirectory(context.Background(), targetDir)
	if err != nil {
		return err
	}

	switch flagFormat {
	case "json":
		err = renderJSON(os.Stdout, report)
	default:
		err = renderText(os.Stdout, report)
	}
	if err != nil {
		return err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "Linted %d file(s) in %s\n",
			len(report.Files), time.Since(start).Round(time.Millisecond))
	}

	numErrors, _ := report.Totals()
	exitCode = numErrors
	return nil
}

// resolveTargetDir returns the absolute path of the directory to lint.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}
