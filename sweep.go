package tenantgate

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ReleaseStuck resets tenants stuck in verifying for longer than the
// configured window back to pending, making crash-interrupted attempts
// retryable. Returns how many tenants were reset.
func (v *Verifier) ReleaseStuck(ctx context.Context) (int64, error) {
	cutoff := v.now().UTC().Add(-v.stuckAfter)
	n, err := v.dir.ReleaseStuck(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		v.log.WarnContext(ctx, "released stuck domain verifications",
			slog.Int64("count", n), slog.Time("cutoff", cutoff))
	}
	return n, nil
}

// ScheduleSweep registers the stuck-verification sweep on the cron
// scheduler. The caller owns the scheduler's lifecycle.
func ScheduleSweep(c *cron.Cron, v *Verifier, schedule string) (cron.EntryID, error) {
	return c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := v.ReleaseStuck(ctx); err != nil {
			v.log.Error("stuck verification sweep failed", slog.String("error", err.Error()))
		}
	})
}
