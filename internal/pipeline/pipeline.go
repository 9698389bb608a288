package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/nifrel/internal/extract"
	"github.com/ppiankov/nifrel/internal/graph"
	"github.com/ppiankov/nifrel/internal/metric"
	"github.com/ppiankov/nifrel/internal/model"
)

// Pipeline orchestrates relation extraction for one annotated document
type Pipeline struct {
	vocab   extract.Vocabulary
	logger  *slog.Logger
	metrics *metric.Metrics
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metric.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// NewPipeline creates a pipeline matching against vocab
func NewPipeline(vocab extract.Vocabulary, opts ...Option) *Pipeline {
	p := &Pipeline{
		vocab:  vocab,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewPipelineFromConfig creates a pipeline from the extract section of cfg
func NewPipelineFromConfig(cfg *model.Config, opts ...Option) *Pipeline {
	vocab := extract.DefaultVocabulary()
	if len(cfg.Extract.Relations) > 0 {
		vocab = extract.NewVocabulary(cfg.Extract.Relations)
	}
	return NewPipeline(vocab, opts...)
}

// Result is the outcome of extracting one document
type Result struct {
	RunID     string
	Input     string
	Sentence  model.Sentence
	Entities  []model.EntitySpan
	Assertion *model.RelationAssertion // nil when no pair matched
	Elapsed   time.Duration
}

// Found reports whether a relation was found
func (r *Result) Found() bool {
	return r != nil && r.Assertion != nil
}

// ExtractFile loads the document at path and runs the extraction on it
func (p *Pipeline) ExtractFile(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	g, err := graph.LoadFile(path)
	if err != nil {
		p.metrics.ObserveExtraction(metric.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("load: %w", err)
	}

	result, err := p.run(g, path, start)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

// Extract runs the extraction on an already loaded document
func (p *Pipeline) Extract(ctx context.Context, g *graph.Graph, input string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.run(g, input, time.Now())
}

func (p *Pipeline) run(g *graph.Graph, input string, start time.Time) (*Result, error) {
	runID := uuid.NewString()
	logger := p.logger.With("run", runID, "input", input)

	// 1. Build the entity index
	sentence, index, err := extract.BuildIndex(g, logger)
	if err != nil {
		p.metrics.ObserveExtraction(metric.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("build index: %w", err)
	}

	// 2. Match pairs against the vocabulary
	assertion, err := extract.Match(sentence, index, p.vocab)
	if err != nil {
		p.metrics.ObserveExtraction(metric.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("match: %w", err)
	}

	result := &Result{
		RunID:     runID,
		Input:     input,
		Sentence:  sentence,
		Entities:  index.Spans(),
		Assertion: assertion,
		Elapsed:   time.Since(start),
	}

	if assertion == nil {
		p.metrics.ObserveExtraction(metric.OutcomeNone, result.Elapsed)
		logger.Info("no relation found", "entities", index.Len())
		return result, nil
	}

	p.metrics.ObserveExtraction(metric.OutcomeRelation, result.Elapsed)
	logger.Info("relation found",
		"subject", assertion.Subject,
		"relation", assertion.Relation,
		"object", assertion.Object)
	return result, nil
}
