package protocol

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/2beens/protocolengine/internal/telemetry/metrics"

	"github.com/sirupsen/logrus"
)

// Registry owns the store and exposes the current snapshot of its records.
// Reloads build a new snapshot and swap it in atomically; readers never see a partial one.
type Registry struct {
	store   Store
	current atomic.Pointer[Snapshot]
	// serializes reloads, readers never take it
	reloadMu sync.Mutex

	logger  logrus.FieldLogger
	metrics *metrics.Manager
	now     func() time.Time
}

// NewRegistry loads the store once. A load failure is fatal and wraps ErrStoreUnavailable.
func NewRegistry(
	ctx context.Context,
	store Store,
	logger logrus.FieldLogger,
	metricsManager *metrics.Manager,
) (*Registry, error) {
	r := &Registry{
		store:   store,
		logger:  logger,
		metrics: metricsManager,
		now:     time.Now,
	}

	if err := r.Reload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Snapshot returns the snapshot currently used for resolution.
func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

// Reload loads all records from the store and swaps in a new snapshot.
// On failure the previous snapshot stays active.
func (r *Registry) Reload(ctx context.Context) error {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	start := r.now()
	records, err := r.store.LoadAll(ctx)
	if err != nil {
		r.countLoad("failed")
		r.logger.WithError(err).Error("protocol store load failed")
		return fmt.Errorf("load protocols: %w", err)
	}

	snapshot := NewSnapshot(records, r.now())
	r.current.Store(snapshot)
	r.countLoad("ok")

	if r.metrics != nil {
		r.metrics.GaugeProtocolsLoaded.Set(float64(snapshot.Len()))
		r.metrics.HistStoreLoadDuration.Observe(time.Since(start).Seconds())
	}

	dups := snapshot.Duplicates()
	if len(dups) > 0 {
		shadowed := 0
		for _, n := range dups {
			shadowed += n
		}
		r.logger.WithFields(logrus.Fields{
			"duplicate_keys": len(dups),
			"shadowed_rows":  shadowed,
		}).Warn("protocol store has duplicate profiles, earliest rows win")
	}

	r.logger.WithField("records", snapshot.Len()).Info("protocol snapshot loaded")
	return nil
}

// ReloadEvery reloads the registry on each tick until ctx is done.
func (r *Registry) ReloadEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Reload(ctx); err != nil {
				r.logger.WithError(err).Warn("periodic reload failed, keeping previous snapshot")
			}
		}
	}
}

// Close releases the underlying store.
func (r *Registry) Close() error {
	return r.store.Close()
}

func (r *Registry) countLoad(status string) {
	if r.metrics == nil {
		return
	}
	r.metrics.CounterStoreReloads.WithLabelValues(status).Inc()
}
