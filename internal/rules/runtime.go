// Package rules embeds a Risor VM and runs user-defined lint rules.
// Every *.risor script in the configured rules directory executes once
// per linted function, with the function definition exposed as a map and
// add_error/add_warning host functions for emitting findings. The host
// function names must not collide with Risor builtins: a global named
// "error" would be shadowed by the builtin error(), which raises.
package rules

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/object"
)

// Emitter receives the findings a rule script emits.
type Emitter interface {
	AddError(text string)
	AddWarning(text string)
}

// script is one loaded rule.
type script struct {
	name   string
	source string
}

// Runtime holds the loaded rule scripts and evaluates them.
type Runtime struct {
	rulesDir string
	fsys     fs.FS
	scripts  []script
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithFS loads rule scripts from the given filesystem instead of from
// the rules directory on disk. Enables embedding rules via go:embed.
func WithFS(fsys fs.FS) Option {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// NewRuntime loads every *.risor script under rulesDir (or the fs.FS set
// by WithFS), sorted by path for deterministic execution order.
func NewRuntime(rulesDir string, opts ...Option) (*Runtime, error) {
	r := &Runtime{rulesDir: rulesDir}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runtime) load() error {
	var paths []string
	if r.fsys != nil {
		err := fs.WalkDir(r.fsys, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".risor") {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("rules: walk fs: %w", err)
		}
	} else {
		err := filepath.WalkDir(r.rulesDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".risor") {
				rel, _ := filepath.Rel(r.rulesDir, path)
				paths = append(paths, rel)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("rules: walk %s: %w", r.rulesDir, err)
		}
	}
	sort.Strings(paths)

	for _, p := range paths {
		src, err := r.readScript(p)
		if err != nil {
			return err
		}
		r.scripts = append(r.scripts, script{name: p, source: src})
	}
	return nil
}

func (r *Runtime) readScript(path string) (string, error) {
	if r.fsys != nil {
		data, err := fs.ReadFile(r.fsys, filepath.ToSlash(path))
		if err != nil {
			return "", fmt.Errorf("rules: loading %s from fs: %w", path, err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(filepath.Join(r.rulesDir, path))
	if err != nil {
		return "", fmt.Errorf("rules: loading %s: %w", path, err)
	}
	return string(data), nil
}

// Len returns the number of loaded rule scripts.
func (r *Runtime) Len() int {
	return len(r.scripts)
}

// Hash returns a hex SHA-256 over all loaded scripts. The cache layer
// stores it so cached findings are invalidated when rules change.
func (r *Runtime) Hash() string {
	h := sha256.New()
	for _, s := range r.scripts {
		h.Write([]byte(s.name))
		h.Write([]byte(s.source))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Check runs every loaded rule against one function definition. def is
// the map exposed to scripts as "def"; findings emitted via add_error()
// and add_warning() go to emit.
func (r *Runtime) Check(ctx context.Context, def map[string]any, emit Emitter) error {
	if len(r.scripts) == 0 {
		return nil
	}
	globals := map[string]any{
		"def":         def,
		"add_error":   makeEmitFn("add_error", emit.AddError),
		"add_warning": makeEmitFn("add_warning", emit.AddWarning),
		"log":         mustProxy(&logObject{prefix: "splint"}),
	}
	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	for _, s := range r.scripts {
		if _, err := risor.Eval(ctx, s.source, opts...); err != nil {
			return fmt.Errorf("rules: script %s: %w", s.name, err)
		}
	}
	return nil
}

// makeEmitFn creates an add_error/add_warning host function. Risor
// cannot call Go funcs with plain string arguments directly, so the
// builtin unwraps the argument itself.
func makeEmitFn(name string, emit func(string)) *object.Builtin {
	return object.NewBuiltin(name, func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError(name, 1, len(args))
		}
		msg, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("%s: message must be a string, got %s", name, args[0].Type())
		}
		emit(msg.Value())
		return object.Nil
	})
}

// logObject provides log.info/warn/error methods for rule scripts.
type logObject struct {
	prefix string
}

func (l *logObject) Info(msg string) {
	fmt.Fprintf(os.Stderr, "[%s] INFO: %s\n", l.prefix, msg)
}

func (l *logObject) Warn(msg string) {
	fmt.Fprintf(os.Stderr, "[%s] WARN: %s\n", l.prefix, msg)
}

func (l *logObject) Error(msg string) {
	fmt.Fprintf(os.Stderr, "[%s] ERROR: %s\n", l.prefix, msg)
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("rules: proxy error: %v", err))
	}
	return p
}
