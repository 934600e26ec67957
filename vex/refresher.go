package vex

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/ortelius/scec-spog/metrics"
	"go.uber.org/zap"
)

// Refresher periodically rebuilds a Shared index from a Loader
type Refresher struct {
	Index    *Shared
	Loader   Loader
	Interval time.Duration
	Logger   *zap.Logger
	Metrics  *metrics.Metrics

	// MaxElapsed bounds the retries of a single refresh; zero retries until ctx is done
	MaxElapsed time.Duration
}

// Refresh rebuilds the index once, retrying load failures with exponential backoff
func (r *Refresher) Refresh(ctx context.Context) error {
	const initialInterval = 1 * time.Second
	const maxInterval = 1 * time.Minute

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = r.MaxElapsed

	var count int
	err := backoff.RetryNotify(func() error {
		n, err := r.Index.Rebuild(ctx, r.Loader)
		if err != nil {
			return err
		}
		count = n
		return nil
	}, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
		r.Logger.Warn("Retrying VEX index rebuild", zap.Error(err), zap.Duration("wait", wait))
	})
	if err != nil {
		return err
	}

	r.Metrics.SetVexDocuments(count)
	r.Logger.Info("VEX index rebuilt", zap.Int("documents", count))
	return nil
}

// Run refreshes every Interval until ctx is done. A non-positive Interval
// returns immediately.
func (r *Refresher) Run(ctx context.Context) {
	if r.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
				r.Logger.Warn("VEX index refresh failed", zap.Error(err))
			}
		}
	}
}
