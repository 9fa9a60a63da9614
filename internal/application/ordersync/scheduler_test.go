package ordersync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/staging"
)

func TestShouldRunWithPendingWork(t *testing.T) {
	orders := new(MockStagingRepository)
	runs := new(MockRunRepository)
	s := NewScheduler(orders, runs, 0, zap.NewNop())

	oldest := time.Now().Add(-45 * time.Minute)
	orders.On("PendingStats", mock.Anything).
		Return(staging.PendingStats{Count: 4, OldestCreatedAt: &oldest}, nil)

	run, reason := s.ShouldRun(context.Background())
	assert.True(t, run)
	assert.Contains(t, reason, "4 pending order(s)")
	assert.Contains(t, reason, "waiting")
	runs.AssertNotCalled(t, "LastSuccessful", mock.Anything, mock.Anything)
}

func TestShouldRunFirstEver(t *testing.T) {
	orders := new(MockStagingRepository)
	runs := new(MockRunRepository)
	s := NewScheduler(orders, runs, 0, zap.NewNop())

	orders.On("PendingStats", mock.Anything).Return(staging.PendingStats{}, nil)
	runs.On("LastSuccessful", mock.Anything, staging.RunTypeProcess).
		Return(nil, shared.ErrNotFound)

	run, reason := s.ShouldRun(context.Background())
	assert.True(t, run)
	assert.Contains(t, reason, "first run")
}

func TestShouldRunIntervalElapsed(t *testing.T) {
	orders := new(MockStagingRepository)
	runs := new(MockRunRepository)
	s := NewScheduler(orders, runs, 2*time.Hour, zap.NewNop())

	orders.On("PendingStats", mock.Anything).Return(staging.PendingStats{}, nil)
	last := staging.NewPipelineRun(staging.RunTypeProcess)
	last.StartedAt = time.Now().Add(-3 * time.Hour)
	runs.On("LastSuccessful", mock.Anything, staging.RunTypeProcess).Return(last, nil)

	run, reason := s.ShouldRun(context.Background())
	assert.True(t, run)
	assert.Contains(t, reason, "interval elapsed")
}

func TestShouldNotRunWhenQuiet(t *testing.T) {
	orders := new(MockStagingRepository)
	runs := new(MockRunRepository)
	s := NewScheduler(orders, runs, 2*time.Hour, zap.NewNop())

	orders.On("PendingStats", mock.Anything).Return(staging.PendingStats{}, nil)
	last := staging.NewPipelineRun(staging.RunTypeProcess)
	last.StartedAt = time.Now().Add(-20 * time.Minute)
	runs.On("LastSuccessful", mock.Anything, staging.RunTypeProcess).Return(last, nil)

	run, reason := s.ShouldRun(context.Background())
	assert.False(t, run)
	assert.Contains(t, reason, "no pending orders")
}

func TestShouldRunFailsOpen(t *testing.T) {
	orders := new(MockStagingRepository)
	runs := new(MockRunRepository)
	s := NewScheduler(orders, runs, 0, zap.NewNop())

	orders.On("PendingStats", mock.Anything).
		Return(staging.PendingStats{}, shared.ErrLedgerUnavailable)

	run, reason := s.ShouldRun(context.Background())
	assert.True(t, run, "heuristic errors default to running")
	assert.Contains(t, reason, "heuristic error")
}
