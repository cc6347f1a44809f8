package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const jobTimeout = time.Minute

type NotificationCleaner interface {
	CleanupExpiredNotifications(ctx context.Context) error
}

type PresenceSweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// StartMaintenanceJobs schedules the periodic cleanup jobs and starts the
// scheduler. The caller stops it on shutdown.
func StartMaintenanceJobs(notifications NotificationCleaner, presence PresenceSweeper) (*cron.Cron, error) {
	c := cron.New()

	// Expired notifications
	if _, err := c.AddFunc("@hourly", cleanupNotifications(notifications)); err != nil {
		return nil, err
	}

	// Stale presence entries
	if _, err := c.AddFunc("@every 1m", sweepPresence(presence)); err != nil {
		return nil, err
	}

	c.Start()
	logrus.WithField("jobs", len(c.Entries())).Info("Maintenance jobs scheduled")
	return c, nil
}

func cleanupNotifications(notifications NotificationCleaner) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := notifications.CleanupExpiredNotifications(ctx); err != nil {
			logrus.WithError(err).Error("CleanupExpiredNotifications failed")
		}
	}
}

func sweepPresence(presence PresenceSweeper) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		removed, err := presence.Sweep(ctx)
		if err != nil {
			logrus.WithError(err).Error("Presence sweep failed")
			return
		}
		if removed > 0 {
			logrus.WithField("removed", removed).Debug("Presence sweep removed stale users")
		}
	}
}
