package catalog

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/stevehedden/kgcatalog/pkg/logger"
)

const (
	defaultWarmSpec  = "@every 6h"
	defaultPurgeSpec = "@hourly"
)

// purger is the optional eager-cleanup side of a cache store. Backends
// without it rely on lazy expiry during Get.
type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Refresher re-runs the catalog queries on a schedule so the cache stays warm
// without a reader waiting on the endpoint, and periodically purges expired
// cache entries. All failures log a warning; nothing here is fatal.
type Refresher struct {
	svc    *Service
	purge  purger
	cron   *cron.Cron
	kinds  []Kind
	log    *zap.Logger
	warm   string
	sweeps string
}

// RefresherOption customises the Refresher.
type RefresherOption func(*Refresher)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) RefresherOption {
	return func(r *Refresher) {
		if c != nil {
			r.cron = c
		}
	}
}

// WithWarmSchedule overrides the cron specification for warm refreshes.
func WithWarmSchedule(spec string) RefresherOption {
	return func(r *Refresher) {
		if spec != "" {
			r.warm = spec
		}
	}
}

// WithPurgeSchedule overrides the cron specification for cache sweeps.
func WithPurgeSchedule(spec string) RefresherOption {
	return func(r *Refresher) {
		if spec != "" {
			r.sweeps = spec
		}
	}
}

// NewRefresher constructs a Refresher covering both catalog kinds. The purge
// job is registered only when the store supports eager cleanup.
func NewRefresher(svc *Service, store any, opts ...RefresherOption) *Refresher {
	refresher := &Refresher{
		svc:    svc,
		kinds:  []Kind{KindOntology, KindSoftware},
		log:    logger.WithModule("refresher"),
		warm:   defaultWarmSpec,
		sweeps: defaultPurgeSpec,
	}

	if p, ok := store.(purger); ok {
		refresher.purge = p
	}

	for _, opt := range opts {
		opt(refresher)
	}

	if refresher.cron == nil {
		refresher.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return refresher
}

// Start registers the jobs and launches the scheduler.
func (r *Refresher) Start() error {
	if r.svc != nil {
		if _, err := r.cron.AddFunc(r.warm, func() {
			if err := r.warmOnce(context.Background()); err != nil {
				r.log.Warn("warm refresh failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if r.purge != nil {
		if _, err := r.cron.AddFunc(r.sweeps, func() {
			removed, err := r.purge.PurgeExpired(context.Background())
			if err != nil {
				r.log.Warn("cache sweep failed", zap.Error(err))
				return
			}
			if removed > 0 {
				r.log.Debug("cache sweep complete", zap.Int64("removed", removed))
			}
		}); err != nil {
			return err
		}
	}

	r.cron.Start()
	return nil
}

// Stop halts the scheduler, returning a context that completes when running
// jobs finish.
func (r *Refresher) Stop() context.Context {
	if r.cron == nil {
		return context.Background()
	}
	return r.cron.Stop()
}

// RunOnce executes one warm refresh and one sweep sequentially. Used by tests
// and for optional warm-up during startup.
func (r *Refresher) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if r.svc != nil {
		errs = multierr.Append(errs, r.warmOnce(ctx))
	}

	if r.purge != nil {
		if _, err := r.purge.PurgeExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

func (r *Refresher) warmOnce(ctx context.Context) error {
	var errs error
	for _, kind := range r.kinds {
		start := time.Now()
		if _, err := r.svc.Refresh(ctx, kind); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		r.log.Debug("kind warmed", zap.String("kind", string(kind)), zap.Duration("duration", time.Since(start)))
	}
	return errs
}
