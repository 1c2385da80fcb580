package splint

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"runtime"
	"sync"
)

// workItem holds everything a parallel lint worker needs.
type workItem struct {
	index   int
	path    string
	content []byte
	hash    string

	// cached is non-nil when the findings cache already holds this
	// file's report section; the worker is skipped entirely.
	cached *FileReport
}

// lintFilesParallel lints files using a three-phase pipeline:
//
//	Phase A (serial):   Read, hash, cache lookup.
//	Phase B (parallel): Parse and check via worker pool.
//	Phase C (serial):   Merge sections in input order, commit cache writes.
//
// The Report is only touched by phase C, so the single-writer contract
// holds; workers fill private FileReports.
func (e *Engine) lintFilesParallel(ctx context.Context, paths []string) (*Report, error) {
	// ---- Phase A: serial file preparation ----
	items := make([]workItem, 0, len(paths))
	for i, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		hash := fmt.Sprintf("%x", sha256.Sum256(content))

		item := workItem{index: i, path: path, content: content, hash: hash}
		if rf, ok, err := e.loadCached(path, hash); err != nil {
			return nil, err
		} else if ok {
			item.cached = rf
		}
		items = append(items, item)
	}

	// ---- Phase B: parallel lint ----
	type result struct {
		rf  *FileReport
		err error
	}
	results := make([]result, len(items))

	numWorkers := min(runtime.NumCPU(), len(items))
	if numWorkers < 1 {
		numWorkers = 1
	}

	workCh := make(chan int, len(items))
	for i, item := range items {
		if item.cached != nil {
			results[i] = result{rf: item.cached}
			continue
		}
		workCh <- i
	}
	close(workCh)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each worker parses with its own tree-sitter parser; the
			// FileReport is private until phase C merges it.
			for i := range workCh {
				item := items[i]
				rf := NewFileReport(item.path)
				err := e.lintContent(ctx, rf, item.path, item.content)
				results[i] = result{rf: rf, err: err}
			}
		}()
	}
	wg.Wait()

	// ---- Phase C: serial merge and cache commit ----
	report := NewReport()
	for i, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		if items[i].cached == nil {
			if err := e.saveCached(res.rf, items[i].hash); err != nil {
				return nil, err
			}
		}
		report.Append(res.rf)
	}
	return report, nil
}
