package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/phrazzld/quill-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct{ calls int }

func (r *countingRunner) RequeueStuckTasks(context.Context) (int, error) {
	r.calls++
	return 0, nil
}

type countingLimiter struct{ calls int }

func (l *countingLimiter) Cleanup() int {
	l.calls++
	return 0
}

func maintenanceConfig(sweep, cleanup string) *config.Config {
	return &config.Config{
		Task:      config.TaskConfig{SweepSchedule: sweep},
		RateLimit: config.RateLimitConfig{CleanupSchedule: cleanup},
	}
}

func TestScheduleMaintenance(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := scheduleMaintenance(maintenanceConfig("@every 5m", "@every 10m"),
		logger, &countingRunner{}, &countingLimiter{})
	require.NoError(t, err)
	defer c.Stop()

	assert.Len(t, c.Entries(), 2)
}

func TestScheduleMaintenance_InvalidSchedule(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name    string
		cfg     *config.Config
		wantErr string
	}{
		{"bad sweep", maintenanceConfig("every five minutes", "@every 10m"), "task sweep schedule"},
		{"bad cleanup", maintenanceConfig("@every 5m", "* * *"), "rate limit cleanup schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scheduleMaintenance(tt.cfg, logger, &countingRunner{}, &countingLimiter{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestScheduleMaintenance_JobsRun(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner, limiter := &countingRunner{}, &countingLimiter{}

	c, err := scheduleMaintenance(maintenanceConfig("@every 5m", "@every 10m"), logger, runner, limiter)
	require.NoError(t, err)
	<-c.Stop().Done()

	entries := c.Entries()
	require.Len(t, entries, 2)
	for _, e := range entries {
		e.Job.Run()
	}

	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, 1, limiter.calls)
}
