package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule starts a cron job that recomputes ranks on spec (standard
// five-field cron syntax or descriptors like "@every 10m"). Stop the
// returned cron to end it.
func Schedule(spec string, svc *Service, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := svc.Recompute(ctx); err != nil {
			slog.Error("scheduled rank recompute failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parse rank schedule %q: %w", spec, err)
	}
	c.Start()
	slog.Info("scheduled rank recompute", "schedule", spec)
	return c, nil
}
