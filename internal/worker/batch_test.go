package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ppiankov/nifrel/internal/model"
	"github.com/ppiankov/nifrel/internal/pipeline"
)

// MockExtractor implements Extractor
type MockExtractor struct {
	Fail map[string]bool
	None map[string]bool
}

func (m *MockExtractor) ExtractFile(ctx context.Context, path string) (*pipeline.Result, error) {
	time.Sleep(5 * time.Millisecond) // Simulate work
	if m.Fail[path] {
		return nil, errors.New("extract error")
	}
	result := &pipeline.Result{Input: path}
	if !m.None[path] {
		result.Assertion = &model.RelationAssertion{SentenceURI: "urn:" + path, Subject: "b", Object: "a", Relation: "born in"}
	}
	return result, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBatchProcessor_ProcessFiles(t *testing.T) {
	processor := NewBatchProcessor(&MockExtractor{}, 2)

	paths := []string{"a.ttl", "b.ttl", "c.nt"}
	results := processor.ProcessFiles(context.Background(), paths)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Path != paths[i] {
			t.Errorf("expected result %d for %s, got %s", i, paths[i], res.Path)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
		}
		if !res.Result.Found() {
			t.Errorf("expected assertion for %s", res.Path)
		}
	}
}

func TestBatchProcessor_ProcessFiles_Error(t *testing.T) {
	processor := NewBatchProcessor(&MockExtractor{Fail: map[string]bool{"bad.ttl": true}}, 2)

	results := processor.ProcessFiles(context.Background(), []string{"bad.ttl"})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Result != nil {
		t.Error("expected nil result on error")
	}
}

func TestBatchProcessor_ProcessFiles_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockExtractor{}, 2)

	results := processor.ProcessFiles(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestSummarize(t *testing.T) {
	m := &MockExtractor{
		Fail: map[string]bool{"bad.ttl": true},
		None: map[string]bool{"none.ttl": true},
	}
	results := NewBatchProcessor(m, 3).ProcessFiles(context.Background(), []string{"ok.ttl", "bad.ttl", "none.ttl", "ok2.ttl"})

	got := Summarize(results)
	want := Summary{Total: 4, Found: 2, Empty: 1, Failed: 1}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestFileResult_GetError(t *testing.T) {
	r1 := &FileResult{Path: "a.ttl"}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("extract failed")
	r2 := &FileResult{Path: "a.ttl", Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}

func TestListInputs_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.ttl"), "")
	writeFile(t, filepath.Join(dir, "a.nt"), "")
	writeFile(t, filepath.Join(dir, "notes.txt"), "")
	writeFile(t, filepath.Join(dir, "sub", "c.TTL"), "")

	paths, err := ListInputs(dir)
	if err != nil {
		t.Fatalf("ListInputs failed: %v", err)
	}

	expected := []string{
		filepath.Join(dir, "a.nt"),
		filepath.Join(dir, "b.ttl"),
		filepath.Join(dir, "sub", "c.TTL"),
	}
	if !reflect.DeepEqual(paths, expected) {
		t.Errorf("expected %v, got %v", expected, paths)
	}
}

func TestListInputs_SingleDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.ttl")
	writeFile(t, path, "")

	paths, err := ListInputs(path)
	if err != nil {
		t.Fatalf("ListInputs failed: %v", err)
	}
	if len(paths) != 1 || paths[0] != path {
		t.Errorf("expected [%s], got %v", path, paths)
	}
}

func TestListInputs_ListFile(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "inputs.txt")
	writeFile(t, list, "docs/one.ttl\n# comment\n\n   /abs/two.nt   \ndocs/one.ttl\n")

	paths, err := ListInputs(list)
	if err != nil {
		t.Fatalf("ListInputs failed: %v", err)
	}

	expected := []string{filepath.Join(dir, "docs", "one.ttl"), "/abs/two.nt"}
	if !reflect.DeepEqual(paths, expected) {
		t.Errorf("expected %v, got %v", expected, paths)
	}
}

func TestListInputs_NonExistent(t *testing.T) {
	if _, err := ListInputs(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing input, got nil")
	}
}

func TestReadPathsFromFile_NonExistent(t *testing.T) {
	if _, err := ReadPathsFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_Process(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "one.ttl"), "")
	writeFile(t, filepath.Join(dir, "two.ttl"), "")

	results, err := NewBatchProcessor(&MockExtractor{}, 2).Process(context.Background(), dir)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}

	if _, err := NewBatchProcessor(&MockExtractor{}, 2).Process(context.Background(), filepath.Join(dir, "nope")); err == nil {
		t.Error("expected error for missing input, got nil")
	}
}

func TestIsInputFile(t *testing.T) {
	tests := map[string]bool{
		"doc.ttl":  true,
		"doc.NT":   true,
		"doc.nt":   true,
		"doc.txt":  false,
		"doc":      false,
		"doc.ttl~": false,
	}
	for path, want := range tests {
		if got := IsInputFile(path); got != want {
			t.Errorf("IsInputFile(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.txt")
	writeFile(t, path, "http://dbpedia.org/resource/Berlin\n# comment\n   \n  http://dbpedia.org/resource/Honolulu  \nhttp://dbpedia.org/resource/Berlin\n")

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines failed: %v", err)
	}

	expected := []string{"http://dbpedia.org/resource/Berlin", "http://dbpedia.org/resource/Honolulu"}
	if !reflect.DeepEqual(lines, expected) {
		t.Errorf("expected %v, got %v", expected, lines)
	}
}
