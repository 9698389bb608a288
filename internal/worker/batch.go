package worker

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/nifrel/internal/pipeline"
)

// Extractor runs relation extraction on one input file
type Extractor interface {
	ExtractFile(ctx context.Context, path string) (*pipeline.Result, error)
}

// ExtractJob is the extraction of one input file
type ExtractJob struct {
	Path      string
	Extractor Extractor
}

// Execute runs the extraction
func (j *ExtractJob) Execute(ctx context.Context) Result {
	result, err := j.Extractor.ExtractFile(ctx, j.Path)
	return &FileResult{
		Path:   j.Path,
		Result: result,
		Error:  err,
	}
}

// FileResult is the outcome of one ExtractJob
type FileResult struct {
	Path   string
	Result *pipeline.Result
	Error  error
}

// GetError returns the extraction error
func (r *FileResult) GetError() error {
	return r.Error
}

// Summary counts batch outcomes
type Summary struct {
	Total  int
	Found  int
	Empty  int
	Failed int
}

// Summarize counts found, empty and failed results
func Summarize(results []*FileResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Error != nil:
			s.Failed++
		case r.Result.Found():
			s.Found++
		default:
			s.Empty++
		}
	}
	return s
}

// BatchProcessor extracts relations from many files concurrently
type BatchProcessor struct {
	extractor   Extractor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(extractor Extractor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		extractor:   extractor,
		concurrency: concurrency,
	}
}

// ProcessFiles extracts every path and returns results in input order
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*FileResult {
	if len(paths) == 0 {
		return []*FileResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&ExtractJob{
			Path:      path,
			Extractor: b.extractor,
		})
	}

	results := pool.Wait()

	fileResults := make([]*FileResult, len(results))
	for i, result := range results {
		fileResults[i] = result.(*FileResult)
	}
	return fileResults
}

// Process lists the inputs named by pathOrDir and extracts them
func (b *BatchProcessor) Process(ctx context.Context, pathOrDir string) ([]*FileResult, error) {
	paths, err := ListInputs(pathOrDir)
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}
	return b.ProcessFiles(ctx, paths), nil
}

// IsInputFile reports whether path has an annotated-document extension
func IsInputFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttl", ".nt":
		return true
	default:
		return false
	}
}

// ListInputs returns the documents to process. A directory yields its .ttl and .nt
// files (recursively, sorted); a .ttl or .nt file yields itself; any other file is
// read as a list of paths.
func ListInputs(pathOrDir string) ([]string, error) {
	info, err := os.Stat(pathOrDir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", pathOrDir, err)
	}

	if !info.IsDir() {
		if IsInputFile(pathOrDir) {
			return []string{pathOrDir}, nil
		}
		return ReadPathsFromFile(pathOrDir)
	}

	var paths []string
	err = filepath.WalkDir(pathOrDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsInputFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", pathOrDir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadPathsFromFile reads input paths from a list file. Relative paths are
// taken relative to the list file's directory.
func ReadPathsFromFile(filePath string) ([]string, error) {
	lines, err := ReadLines(filePath)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(filePath)
	var paths []string
	seen := make(map[string]bool)
	for _, line := range lines {
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	return paths, nil
}

// ReadLines reads one entry per line, skipping blanks, "#" comments and repeats
func ReadLines(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return lines, nil
}
