package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/afflux-io/afflux/internal/platform"
	"github.com/afflux-io/afflux/internal/store"
)

// Collector runs collections across a set of partner adapters. Safe for
// concurrent use; each call operates on its own state.
type Collector struct {
	adapters map[string]platform.Adapter
	engine   *engine
	logger   *slog.Logger

	// Pause between accounts in a multi-account run, to avoid hammering
	// partner APIs back to back.
	Pause time.Duration
}

// New builds a collector over the given adapters and order store.
func New(orders OrderStore, logger *slog.Logger, adapters ...platform.Adapter) *Collector {
	byName := make(map[string]platform.Adapter, len(adapters))
	for _, a := range adapters {
		byName[a.Platform()] = a
	}
	return &Collector{
		adapters: byName,
		engine:   &engine{orders: orders},
		logger:   logger,
		Pause:    time.Second,
	}
}

// Job is one account to collect, with its password already decrypted.
type Job struct {
	Account  store.PlatformAccount
	Password string
}

// Result is the outcome of collecting one account. Either Stats or Error
// is set.
type Result struct {
	AccountID   int64  `json:"account_id"`
	Platform    string `json:"platform"`
	AccountName string `json:"account_name"`
	Stats       *Stats `json:"stats,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Collect fetches and reconciles one account for the inclusive date range.
func (c *Collector) Collect(ctx context.Context, job Job, startDate, endDate string) (*Stats, error) {
	adapter, ok := c.adapters[job.Account.Platform]
	if !ok {
		return nil, fmt.Errorf("collector: unsupported platform %q", job.Account.Platform)
	}

	acct := platform.Account{
		ID:            job.Account.ID,
		Name:          job.Account.AccountName,
		Password:      job.Password,
		APIToken:      job.Account.APIToken,
		AffiliateName: job.Account.AffiliateName,
	}

	items, err := adapter.Collect(ctx, acct, startDate, endDate)
	if err != nil {
		return nil, err
	}
	cands, dropped := aggregate(items)

	stats, err := c.engine.reconcile(ctx, job.Account.UserID, job.Account.ID, job.Account.AffiliateName,
		cands, adapter.SyncDeletes(), startDate, endDate)
	if err != nil {
		return nil, err
	}
	stats.Dropped = dropped

	if c.logger != nil {
		c.logger.Info("collection finished",
			"platform", job.Account.Platform, "account", job.Account.AccountName,
			"items", len(items), "orders", len(cands),
			"new", stats.New, "updated", stats.Updated,
			"skipped", stats.Skipped, "deleted", stats.Deleted,
			"dropped", stats.Dropped)
	}
	return stats, nil
}

// CollectAll runs jobs sequentially with a pause between accounts. One
// account failing does not stop the others; each job gets its own Result.
func (c *Collector) CollectAll(ctx context.Context, jobs []Job, startDate, endDate string) []Result {
	results := make([]Result, 0, len(jobs))
	for i, job := range jobs {
		if i > 0 && c.Pause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(c.Pause):
			}
		}
		if err := ctx.Err(); err != nil {
			results = append(results, Result{
				AccountID:   job.Account.ID,
				Platform:    job.Account.Platform,
				AccountName: job.Account.AccountName,
				Error:       err.Error(),
			})
			continue
		}

		res := Result{
			AccountID:   job.Account.ID,
			Platform:    job.Account.Platform,
			AccountName: job.Account.AccountName,
		}
		stats, err := c.Collect(ctx, job, startDate, endDate)
		if err != nil {
			res.Error = err.Error()
			if c.logger != nil {
				c.logger.Error("collection failed",
					"platform", job.Account.Platform, "account", job.Account.AccountName, "err", err)
			}
		} else {
			res.Stats = stats
		}
		results = append(results, res)
	}
	return results
}
