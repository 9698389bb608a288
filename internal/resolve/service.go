// Package resolve maps knowledge-base resource references to Wiki page IDs.
//
// A Service answers from its identifier cache when it can and asks a remote
// Lookup otherwise. Both real IDs and "unknown" answers are cached, so a
// reference is sent to the remote side at most once until the cache entry is
// forgotten. Malformed references and remote failures are never cached.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ppiankov/nifrel/internal/cache"
	"github.com/ppiankov/nifrel/internal/metric"
	"github.com/ppiankov/nifrel/internal/model"
	"github.com/ppiankov/nifrel/internal/validate"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Lookup is the remote side of resolution. *sparql.Client implements it.
type Lookup interface {
	LookupWikiID(ctx context.Context, ref string) (id int64, found bool, err error)
}

// Service resolves references through a cache and a remote lookup
type Service struct {
	cache   *cache.IDCache
	remote  Lookup
	logger  *slog.Logger
	metrics *metric.Metrics
	group   singleflight.Group
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metric.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a resolution service owning idCache. remote may be nil, in
// which case every cache miss resolves to model.UnknownID.
func NewService(idCache *cache.IDCache, remote Lookup, opts ...Option) *Service {
	if idCache == nil {
		idCache = cache.NewMemoryCache()
	}
	s := &Service{
		cache:  idCache,
		remote: remote,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics.SetCacheEntries(idCache.Len())
	return s
}

// Resolve returns the Wiki ID for ref.
//
// Invalid references return (UnknownID, error wrapping validate.ErrInvalidReference)
// and leave the cache untouched. Cached values, including UnknownID, are returned
// without contacting the remote side. A remote answer with no rows is cached as
// UnknownID and returned with a nil error. A remote failure returns UnknownID and
// the failure, and nothing is cached.
func (s *Service) Resolve(ctx context.Context, ref string) (int64, error) {
	canonical, err := validate.Reference(ref)
	if err != nil {
		s.metrics.ObserveResolution(metric.OutcomeInvalid)
		return model.UnknownID, err
	}

	if id, ok := s.cache.Lookup(canonical); ok {
		s.metrics.ObserveResolution(metric.OutcomeHit)
		return id, nil
	}

	// The shared lookup outlives any one caller's cancellation; each caller
	// stops waiting on its own ctx
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(canonical, func() (interface{}, error) {
		// Another caller may have stored it while we waited for the group
		if id, ok := s.cache.Lookup(canonical); ok {
			s.metrics.ObserveResolution(metric.OutcomeHit)
			return id, nil
		}
		return s.fetch(shared, canonical)
	})

	select {
	case <-ctx.Done():
		return model.UnknownID, fmt.Errorf("resolve %s: %w", canonical, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return model.UnknownID, res.Err
		}
		return res.Val.(int64), nil
	}
}

// fetch asks the remote side and records the answer
func (s *Service) fetch(ctx context.Context, ref string) (int64, error) {
	if s.remote == nil {
		s.store(ref, model.UnknownID)
		s.metrics.ObserveResolution(metric.OutcomeMiss)
		return model.UnknownID, nil
	}

	id, found, err := s.remote.LookupWikiID(ctx, ref)
	if err != nil {
		s.metrics.ObserveResolution(metric.OutcomeError)
		return model.UnknownID, fmt.Errorf("resolve %s: %w", ref, err)
	}

	if !found {
		s.store(ref, model.UnknownID)
		s.metrics.ObserveResolution(metric.OutcomeMiss)
		s.logger.Debug("no wiki id", "ref", ref)
		return model.UnknownID, nil
	}

	s.store(ref, id)
	s.metrics.ObserveResolution(metric.OutcomeFound)
	s.logger.Debug("resolved wiki id", "ref", ref, "id", id)
	return id, nil
}

func (s *Service) store(ref string, id int64) {
	s.cache.Store(ref, id)
	s.metrics.SetCacheEntries(s.cache.Len())
}

// WikiID is Resolve with every failure degraded to model.UnknownID and logged
func (s *Service) WikiID(ctx context.Context, ref string) int64 {
	id, err := s.Resolve(ctx, ref)
	if err != nil {
		if errors.Is(err, validate.ErrInvalidReference) {
			s.logger.Error("bad reference cannot be used in a lookup query, returning -1", "ref", ref, "error", err)
		} else {
			s.logger.Warn("wiki id lookup failed, returning -1", "ref", ref, "error", err)
		}
		return model.UnknownID
	}
	return id
}

// Flush persists the cache. Failures are logged and the in-memory state is kept.
func (s *Service) Flush() error {
	err := s.cache.Flush()
	s.metrics.ObserveFlush(err)
	return err
}

// Cache returns the service's identifier cache
func (s *Service) Cache() *cache.IDCache {
	return s.cache
}

// Resolution is the outcome of resolving one reference
type Resolution struct {
	Reference string
	ID        int64
	Err       error
}

// String renders the resolution as "reference<TAB>id"
func (r Resolution) String() string {
	return r.Reference + "\t" + strconv.FormatInt(r.ID, 10)
}

// ResolveAll resolves refs with at most workers concurrent lookups. Results keep
// the order of refs; per-reference failures are reported in Resolution.Err.
func (s *Service) ResolveAll(ctx context.Context, refs []string, workers int) []Resolution {
	if workers <= 0 {
		workers = 1
	}

	results := make([]Resolution, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, ref := range refs {
		g.Go(func() error {
			id, err := s.Resolve(gctx, ref)
			results[i] = Resolution{Reference: ref, ID: id, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
