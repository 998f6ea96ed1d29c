package server

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/bigbadman-lab/onesol/internal/logger"
)

// Retention prunes aged score rows on a cron schedule.
type Retention struct {
	cron *cron.Cron
	repo *Repo
	days int
}

// NewRetention registers the prune job on the given six-field cron spec.
func NewRetention(repo *Repo, spec string, days int) (*Retention, error) {
	r := &Retention{
		cron: cron.New(cron.WithSeconds()),
		repo: repo,
		days: days,
	}
	if _, err := r.cron.AddFunc(spec, r.prune); err != nil {
		return nil, fmt.Errorf("register retention job: %w", err)
	}
	return r, nil
}

func (r *Retention) prune() {
	ctx := context.Background()
	n, err := r.repo.PruneOlder(ctx, r.days)
	if err != nil {
		logger.ErrorWithErr(ctx, "Score pruning failed", err)
		return
	}
	logger.Info(ctx, "Score pruning completed", "deleted", n, "retention_days", r.days)
}

// Start begins the schedule.
func (r *Retention) Start() {
	r.cron.Start()
}

// Stop halts the schedule, waiting for a running job to finish.
func (r *Retention) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}
