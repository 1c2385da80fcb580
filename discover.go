package splint

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// sourceExt is the file extension of lintable source files.
const sourceExt = ".py"

// skipDirs are directory names excluded from the filesystem walk.
var skipDirs = map[string]bool{
	"__pycache__":  true,
	"node_modules": true,
	"venv":         true,
}

// DiscoverFiles returns the absolute paths of all Python files under
// root, sorted. If root is inside a git repository, git ls-files is used
// so .gitignore is respected; otherwise a filesystem walk skips hidden
// directories, virtualenvs and __pycache__. Exclude patterns are matched
// against slash-separated paths relative to root.
func (e *Engine) DiscoverFiles(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	paths, err := e.gitListFiles(root)
	if err != nil {
		// Not a git repo or git unavailable, fall back to a walk.
		paths, err = e.walkListFiles(root)
		if err != nil {
			return nil, err
		}
	}
	paths = e.applyExcludes(root, paths)
	sort.Strings(paths)
	return paths, nil
}

// gitListFiles uses git ls-files to discover tracked and untracked (but
// not ignored) Python files under root.
func (e *Engine) gitListFiles(root string) ([]string, error) {
	// --cached: tracked files, --others: untracked files,
	// --exclude-standard: respect .gitignore and global excludes.
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || filepath.Ext(line) != sourceExt {
			continue
		}
		path := filepath.Join(root, line)
		// The index also lists tracked files deleted from the working
		// tree; those must not reach the linter.
		if _, err := os.Stat(path); err != nil {
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem, used as a
// fallback when git is not available.
func (e *Engine) walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == sourceExt {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}

// applyExcludes drops paths matching any exclude pattern.
func (e *Engine) applyExcludes(root string, paths []string) []string {
	if len(e.excludes) == 0 {
		return paths
	}
	kept := paths[:0]
	for _, path := range paths {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		excluded := false
		for _, g := range e.excludes {
			if g.Match(rel) {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, path)
		}
	}
	return kept
}
