package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/nifrel/internal/emit"
	"github.com/ppiankov/nifrel/internal/graph"
)

// Stdout is the output path that writes to standard output
const Stdout = "-"

// Renderer writes extraction results
type Renderer struct {
	stdout io.Writer
}

// NewRenderer creates a renderer writing "-" paths to stdout
func NewRenderer(stdout io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Renderer{stdout: stdout}
}

// Render writes the assertion of result to outPath. Nothing is written when the
// result holds no assertion; the return value reports whether output was produced.
func (r *Renderer) Render(result *Result, outPath string, format graph.Format) (bool, error) {
	if !result.Found() {
		return false, nil
	}

	if outPath == "" || outPath == Stdout {
		if err := emit.Write(r.stdout, result.Assertion, format); err != nil {
			return false, fmt.Errorf("render: %w", err)
		}
		return true, nil
	}

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return false, fmt.Errorf("create output: %w", err)
	}
	if err := emit.Write(f, result.Assertion, format); err != nil {
		_ = f.Close()
		_ = os.Remove(outPath)
		return false, fmt.Errorf("render %s: %w", outPath, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("close %s: %w", outPath, err)
	}
	return true, nil
}

// OutputPath names the output file for input inside dir: the input's base name
// with a ".rel" marker and the format's extension.
func OutputPath(dir, input string, format graph.Format) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+".rel"+format.Extension())
}
