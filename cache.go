package splint

import (
	"fmt"

	"github.com/jward/splint/internal/store"
)

// cachedDef is a definition replayed from the findings cache. It renders
// and counts exactly like the definition it was saved from.
type cachedDef struct {
	kind     string
	name     string
	line     int
	header   string
	errors   []string
	warnings []string
}

func (d *cachedDef) Kind() string       { return d.kind }
func (d *cachedDef) Name() string       { return d.name }
func (d *cachedDef) Line() int          { return d.line }
func (d *cachedDef) Errors() []string   { return d.errors }
func (d *cachedDef) Warnings() []string { return d.warnings }
func (d *cachedDef) String() string     { return d.header }

// loadCached replays a file's cached report section when the cache is
// enabled and the content hash matches. ok is false on a cache miss.
func (e *Engine) loadCached(path, hash string) (rf *FileReport, ok bool, err error) {
	if e.store == nil {
		return nil, false, nil
	}
	f, err := e.store.FileByPath(path)
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup %s: %w", path, err)
	}
	if f == nil || f.Hash != hash {
		return nil, false, nil
	}
	defs, err := e.store.DefinitionsByFile(f.ID)
	if err != nil {
		return nil, false, fmt.Errorf("cache load %s: %w", path, err)
	}
	rf = NewFileReport(path)
	for _, def := range defs {
		rf.Add(&cachedDef{
			kind:     def.Kind,
			name:     def.Name,
			line:     def.Line,
			header:   def.Header,
			errors:   def.Errors,
			warnings: def.Warnings,
		})
	}
	return rf, true, nil
}

// saveCached stores a freshly linted file section. No-op when the cache
// is disabled.
func (e *Engine) saveCached(rf *FileReport, hash string) error {
	if e.store == nil {
		return nil
	}
	defs := make([]store.Definition, 0, len(rf.Definitions))
	for _, def := range rf.Definitions {
		defs = append(defs, store.Definition{
			Kind:     def.Kind(),
			Name:     def.Name(),
			Line:     def.Line(),
			Header:   def.String(),
			Errors:   def.Errors(),
			Warnings: def.Warnings(),
		})
	}
	if err := e.store.SaveFile(rf.Path, hash, defs); err != nil {
		return fmt.Errorf("cache save %s: %w", rf.Path, err)
	}
	return nil
}
