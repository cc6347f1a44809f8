package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCleaner struct {
	calls int
	err   error
}

func (c *countingCleaner) CleanupExpiredNotifications(context.Context) error {
	c.calls++
	return c.err
}

type countingSweeper struct {
	calls int
	err   error
}

func (s *countingSweeper) Sweep(context.Context) (int64, error) {
	s.calls++
	return 3, s.err
}

func TestStartMaintenanceJobs(t *testing.T) {
	c, err := StartMaintenanceJobs(&countingCleaner{}, &countingSweeper{})
	require.NoError(t, err)
	defer c.Stop()

	assert.Len(t, c.Entries(), 2)
}

func TestJobsSurviveFailures(t *testing.T) {
	cleaner := &countingCleaner{err: errors.New("db down")}
	sweeper := &countingSweeper{err: errors.New("redis down")}

	assert.NotPanics(t, cleanupNotifications(cleaner))
	assert.NotPanics(t, sweepPresence(sweeper))
	assert.Equal(t, 1, cleaner.calls)
	assert.Equal(t, 1, sweeper.calls)

	sweeper.err = nil
	sweepPresence(sweeper)()
	assert.Equal(t, 2, sweeper.calls)
}
