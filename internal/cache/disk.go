package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"
	"github.com/knakk/rdf"
	"github.com/ppiankov/nifrel/internal/graph"
	"github.com/ppiankov/nifrel/internal/model"
)

// TurtleFile persists identifier mappings as a Turtle file with one
// dbo:wikiPageID statement per reference
type TurtleFile struct {
	path string
}

// NewTurtleFile creates a persistence target at path
func NewTurtleFile(path string) *TurtleFile {
	return &TurtleFile{path: path}
}

// Path returns the file location
func (f *TurtleFile) Path() string {
	return f.path
}

// Exists reports whether the file is present
func (f *TurtleFile) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Load reads all persisted entries. A missing file yields no entries.
func (f *TurtleFile) Load() ([]model.CacheEntry, error) {
	if !f.Exists() {
		return nil, nil
	}

	lock := flock.New(f.lockPath())
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("%w: lock %s: %v", ErrPersistence, f.path, err)
	}
	defer func() { _ = lock.Unlock() }()

	g, err := graph.LoadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	var entries []model.CacheEntry
	for _, subj := range g.Subjects() {
		id, err := g.Int(subj, graph.DBOWikiPageID)
		if err != nil {
			// Statements about other properties are not ours
			continue
		}
		entries = append(entries, model.CacheEntry{Reference: subj.String(), ID: int64(id)})
	}

	return entries, nil
}

// Save overwrites the file with entries, sorted by reference
func (f *TurtleFile) Save(entries []model.CacheEntry) (err error) {
	sorted := make([]model.CacheEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Reference < sorted[j].Reference
	})

	pred, err := graph.IRI(graph.DBOWikiPageID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	triples := make([]rdf.Triple, 0, len(sorted))
	for _, e := range sorted {
		subj, err := graph.IRI(e.Reference)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		triples = append(triples, rdf.Triple{Subj: subj, Pred: pred, Obj: graph.IntLiteral(e.ID)})
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create cache dir: %v", ErrPersistence, err)
	}

	lock := flock.New(f.lockPath())
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("%w: lock %s: %v", ErrPersistence, f.path, err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrPersistence, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := graph.Encode(tmp, triples, graph.FormatTurtle); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %v", ErrPersistence, err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", ErrPersistence, f.path, err)
	}

	return nil
}

// Remove deletes the file and its lock
func (f *TurtleFile) Remove() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	_ = os.Remove(f.lockPath())
	return nil
}

func (f *TurtleFile) lockPath() string {
	return f.path + ".lock"
}
