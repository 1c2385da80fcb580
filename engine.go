package splint

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"

	"github.com/gobwas/glob"

	"github.com/jward/splint/internal/rules"
	"github.com/jward/splint/internal/store"
)

// rulesHashKey is the cache metadata key holding the custom-rules hash.
const rulesHashKey = "rules_hash"

// Engine orchestrates a lint run: file discovery, cache lookup, parsing,
// checking, custom rules, and report assembly.
type Engine struct {
	store *store.Store
	rules *rules.Runtime

	cachePath       string
	rulesDir        string
	rulesFS         fs.FS
	excludePatterns []string
	excludes        []glob.Glob

	// useParallel enables the parallel lint pipeline.
	useParallel bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache enables the SQLite findings cache at dbPath. Files whose
// content hash matches the cached entry are replayed without parsing.
func WithCache(dbPath string) Option {
	return func(e *Engine) {
		e.cachePath = dbPath
	}
}

// WithRules loads custom Risor rule scripts from rulesDir. Every *.risor
// script runs once per linted function.
func WithRules(rulesDir string) Option {
	return func(e *Engine) {
		e.rulesDir = rulesDir
	}
}

// WithRulesFS loads custom rules from the given filesystem instead of a
// directory on disk. This enables embedding rules via go:embed.
func WithRulesFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.rulesFS = fsys
	}
}

// WithExcludes adds glob patterns matched against slash-separated paths
// relative to the lint root; matching files are skipped by discovery.
func WithExcludes(patterns ...string) Option {
	return func(e *Engine) {
		e.excludePatterns = append(e.excludePatterns, patterns...)
	}
}

// WithParallel controls the parallel lint pipeline. When true (default),
// LintFiles uses a worker pool for parsing and checking, with per-file
// report sections merged serially in input order. Set to false for
// serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// NewEngine creates an Engine. The findings cache and rule runtime are
// only constructed when the corresponding options are set; a bare Engine
// keeps no state between runs.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{useParallel: true}
	for _, opt := range opts {
		opt(e)
	}

	for _, pattern := range e.excludePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("splint: exclude pattern %q: %w", pattern, err)
		}
		e.excludes = append(e.excludes, g)
	}

	if e.rulesDir != "" || e.rulesFS != nil {
		var ruleOpts []rules.Option
		if e.rulesFS != nil {
			ruleOpts = append(ruleOpts, rules.WithFS(e.rulesFS))
		}
		rt, err := rules.NewRuntime(e.rulesDir, ruleOpts...)
		if err != nil {
			return nil, fmt.Errorf("splint: load rules: %w", err)
		}
		e.rules = rt
	}

	if e.cachePath != "" {
		s, err := store.NewStore(e.cachePath)
		if err != nil {
			return nil, fmt.Errorf("splint: open cache: %w", err)
		}
		if err := s.Migrate(); err != nil {
			s.Close()
			return nil, fmt.Errorf("splint: migrate cache: %w", err)
		}
		e.store = s
		if err := e.syncRulesHash(); err != nil {
			s.Close()
			return nil, err
		}
	}

	return e, nil
}

// syncRulesHash invalidates the cache when the loaded rule scripts differ
// from the ones the cache was built with.
func (e *Engine) syncRulesHash() error {
	current := ""
	if e.rules != nil {
		current = e.rules.Hash()
	}
	stored, err := e.store.GetMetadata(rulesHashKey)
	if err != nil {
		return fmt.Errorf("splint: read cache metadata: %w", err)
	}
	if stored != current {
		if err := e.store.Clear(); err != nil {
			return fmt.Errorf("splint: invalidate cache: %w", err)
		}
		if err := e.store.SetMetadata(rulesHashKey, current); err != nil {
			return fmt.Errorf("splint: write cache metadata: %w", err)
		}
	}
	return nil
}

// Close releases the Engine's cache resources.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// LintDirectory discovers every Python file under root and lints them.
func (e *Engine) LintDirectory(ctx context.Context, root string) (*Report, error) {
	paths, err := e.DiscoverFiles(root)
	if err != nil {
		return nil, err
	}
	return e.LintFiles(ctx, paths)
}

// LintFiles lints the given files in order. A structural failure on any
// file (unreadable, unparsable) aborts the run; findings never do.
func (e *Engine) LintFiles(ctx context.Context, paths []string) (*Report, error) {
	if e.useParallel {
		return e.lintFilesParallel(ctx, paths)
	}
	report := NewReport()
	for _, path := range paths {
		rf, err := e.lintFile(ctx, path)
		if err != nil {
			return nil, err
		}
		report.Append(rf)
	}
	return report, nil
}

// lintFile lints one file, consulting the cache when enabled.
func (e *Engine) lintFile(ctx context.Context, path string) (*FileReport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(content))

	if rf, ok, err := e.loadCached(path, hash); err != nil {
		return nil, err
	} else if ok {
		return rf, nil
	}

	rf := NewFileReport(path)
	if err := e.lintContent(ctx, rf, path, content); err != nil {
		return nil, err
	}
	if err := e.saveCached(rf, hash); err != nil {
		return nil, err
	}
	return rf, nil
}

// lintContent parses and checks one file's content into rf, applying
// custom rules to every function definition.
func (e *Engine) lintContent(ctx context.Context, rf *FileReport, path string, content []byte) error {
	var ruleErr error
	hook := func(def Definition) {
		if e.rules == nil || ruleErr != nil {
			return
		}
		fd, ok := def.(*FuncDef)
		if !ok {
			return
		}
		if err := e.rules.Check(ctx, ruleInput(fd), fd); err != nil {
			ruleErr = err
		}
	}
	if err := lintInto(ctx, rf, path, content, hook); err != nil {
		return err
	}
	return ruleErr
}

// ruleInput is the map a rule script sees as "def".
func ruleInput(d *FuncDef) map[string]any {
	params := make([]any, 0, len(d.Params()))
	for _, p := range d.Params() {
		params = append(params, p)
	}
	decorators := make([]any, 0, len(d.Decorators()))
	for _, dec := range d.Decorators() {
		decorators = append(decorators, dec)
	}
	docParams := make([]any, 0, len(d.DocStr.Params))
	for _, p := range d.DocStr.Params {
		docParams = append(docParams, map[string]any{
			"type":        p.Type,
			"name":        p.Name,
			"description": p.Description,
		})
	}
	docReturns := make([]any, 0, len(d.DocStr.Returns))
	for _, r := range d.DocStr.Returns {
		docReturns = append(docReturns, map[string]any{
			"tag":         r.Tag,
			"description": r.Description,
		})
	}
	return map[string]any{
		"name":        d.Name(),
		"kind":        d.Kind(),
		"line":        d.Line(),
		"is_method":   d.IsMethod(),
		"params":      params,
		"decorators":  decorators,
		"docstring":   d.DocStr.Text,
		"doc_params":  docParams,
		"doc_returns": docReturns,
		"has_return":  d.HasReturn,
		"raises":      d.RaisesException,
	}
}
