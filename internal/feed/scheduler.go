package feed

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	appLog "livecal/internal/log"
)

// Scheduler refreshes a Service on a cron schedule.
type Scheduler struct {
	c *cron.Cron
}

// StartScheduler registers a refresh job for spec and starts the cron
// runner. Jobs run with ctx; the caller stops the scheduler with Stop.
func StartScheduler(ctx context.Context, svc *Service, spec string) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		// Failures are logged by Refresh and the last snapshot stays.
		_, _ = svc.Refresh(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("feed: invalid refresh schedule %q: %w", spec, err)
	}
	c.Start()
	appLog.Info("feed scheduler started", "refresh", spec)
	return &Scheduler{c: c}, nil
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
	appLog.Info("feed scheduler stopped")
}
