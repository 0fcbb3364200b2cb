package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stevehedden/kgcatalog/internal/cache"
	"github.com/stevehedden/kgcatalog/internal/sparql"
	apperrors "github.com/stevehedden/kgcatalog/pkg/errors"
	"github.com/stevehedden/kgcatalog/pkg/logger"
	"github.com/stevehedden/kgcatalog/pkg/metrics"
	"github.com/stevehedden/kgcatalog/pkg/validator"
)

// Executor runs a SELECT query against the knowledge graph endpoint.
// *sparql.Client satisfies it; tests substitute fakes.
type Executor interface {
	Select(ctx context.Context, query string) ([]sparql.Row, error)
}

// Config holds the tunable parts of the pipeline.
type Config struct {
	// Limit bounds the inner SPARQL subquery.
	Limit int `validate:"min=1,max=5000"`
	// TTL is the duration before a cached result is considered stale.
	TTL time.Duration `validate:"min=1m"`
	// Weights drive the completeness score.
	Weights ScoringWeights
}

// ResultSet is one ranked catalog snapshot handed to the presenter.
type ResultSet struct {
	Kind      Kind       `json:"kind"`
	Rows      []Resource `json:"rows"`
	FetchedAt time.Time  `json:"fetched_at"`
	Dropped   int        `json:"dropped"`
	// Stale marks a last-good snapshot served because a fresh fetch failed.
	Stale bool `json:"stale,omitempty"`
}

// Service runs the query → cache → clean/rank pipeline. One call to List is a
// single synchronous pass; there is no background state beyond the cache.
type Service struct {
	exec    Executor
	store   cache.Store
	cleaner *Cleaner
	cfg     Config
	log     *zap.Logger
	now     func() time.Time
}

// ServiceOption customises the Service.
type ServiceOption func(*Service)

// WithNow overrides the clock used for snapshot timestamps, for tests.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs the pipeline service.
func NewService(exec Executor, store cache.Store, cfg Config, opts ...ServiceOption) (*Service, error) {
	if exec == nil {
		return nil, errors.New("catalog: executor is required")
	}
	if store == nil {
		return nil, errors.New("catalog: cache store is required")
	}
	if err := validator.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("catalog: invalid config: %w", err)
	}

	svc := &Service{
		exec:    exec,
		store:   store,
		cleaner: NewCleaner(cfg.Weights),
		cfg:     cfg,
		log:     logger.WithModule("catalog"),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// List returns the ranked rows for a kind. Fresh cache entries are served
// without a network call; on a miss (or forced refresh) the endpoint is
// queried once and the result cached. When the endpoint fails and a last-good
// snapshot exists, List returns that snapshot flagged stale together with the
// error so the presenter can show both.
func (s *Service) List(ctx context.Context, kind Kind, forceRefresh bool) (*ResultSet, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !forceRefresh {
		if rs := s.fromCache(ctx, cacheKey(kind)); rs != nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return rs, nil
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	rs, err := s.fetch(ctx, kind)
	if err == nil {
		return rs, nil
	}

	if stale := s.fromCache(ctx, lastGoodKey(kind)); stale != nil {
		metrics.CacheLookups.WithLabelValues("stale").Inc()
		stale.Stale = true
		s.log.Warn("serving stale snapshot after fetch failure",
			zap.String("kind", string(kind)),
			zap.Time("fetched_at", stale.FetchedAt),
			zap.Error(err),
		)
		return stale, err
	}

	return nil, err
}

// Refresh forces a refetch for a kind, bypassing the TTL.
func (s *Service) Refresh(ctx context.Context, kind Kind) (*ResultSet, error) {
	return s.List(ctx, kind, true)
}

func (s *Service) fetch(ctx context.Context, kind Kind) (*ResultSet, error) {
	raw, err := s.exec.Select(ctx, s.queryFor(kind))
	if err != nil {
		return nil, err
	}

	rows, dropped := s.cleaner.Clean(kind, raw)
	rs := &ResultSet{
		Kind:      kind,
		Rows:      rows,
		FetchedAt: s.now().UTC(),
		Dropped:   dropped,
	}

	metrics.CatalogRows.WithLabelValues(string(kind)).Set(float64(len(rows)))
	if dropped > 0 {
		metrics.DroppedRows.WithLabelValues(string(kind)).Add(float64(dropped))
	}

	payload, err := json.Marshal(rs)
	if err != nil {
		return nil, apperrors.Wrap(err, "encode catalog snapshot")
	}

	if err := s.store.Set(ctx, cacheKey(kind), payload, s.cfg.TTL); err != nil {
		s.log.Warn("cache write failed", zap.String("kind", string(kind)), zap.Error(err))
	}
	// The last-good copy never expires; it backs the stale fallback.
	if err := s.store.Set(ctx, lastGoodKey(kind), payload, 0); err != nil {
		s.log.Warn("last-good write failed", zap.String("kind", string(kind)), zap.Error(err))
	}

	s.log.Info("catalog refreshed",
		zap.String("kind", string(kind)),
		zap.Int("rows", len(rows)),
		zap.Int("dropped", dropped),
	)

	return rs, nil
}

func (s *Service) fromCache(ctx context.Context, key string) *ResultSet {
	payload, ok, err := s.store.Get(ctx, key)
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		s.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	var rs ResultSet
	if err := json.Unmarshal(payload, &rs); err != nil {
		s.log.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		_ = s.store.Delete(ctx, key)
		return nil
	}
	return &rs
}

func (s *Service) queryFor(kind Kind) string {
	if kind == KindSoftware {
		return sparql.SoftwareQuery(s.cfg.Limit)
	}
	return sparql.OntologyVocabularyQuery(s.cfg.Limit)
}

func cacheKey(kind Kind) string    { return "catalog:" + string(kind) }
func lastGoodKey(kind Kind) string { return "catalog:" + string(kind) + ":last" }
