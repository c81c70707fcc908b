package session

import (
	"context"
	"log/slog"
	"time"
)

// Janitor prunes expired cookies on an interval so the store does not
// accumulate dead clearance state.
type Janitor struct {
	store    *Store
	interval time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}
}

func NewJanitor(store *Store, interval time.Duration, logger *slog.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		store:    store,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info("session janitor started", "interval", j.interval.String())
	ticker := time.NewTicker(j.interval)
	go func() {
		defer ticker.Stop()
		j.runOnce()
		for {
			select {
			case <-ctx.Done():
				j.logger.Info("session janitor stopped")
				close(j.stopCh)
				return
			case <-ticker.C:
				j.runOnce()
			}
		}
	}()
}

func (j *Janitor) StopWait(timeout time.Duration) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	select {
	case <-j.stopCh:
	case <-time.After(timeout):
	}
}

func (j *Janitor) runOnce() {
	pruned, err := j.store.PruneExpired(time.Now())
	if err != nil {
		j.logger.Warn("session prune failed", "error", err)
		return
	}
	if pruned > 0 {
		j.logger.Debug("pruned expired session cookies", "count", pruned)
	}
}
