package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/Benediks/Sidaya/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingRecalc struct {
	calls atomic.Int32
	err   error
}

func (c *countingRecalc) RecalculateAllMenus(context.Context) (int, error) {
	c.calls.Add(1)
	return 7, c.err
}

func TestStart_InvalidSpec(t *testing.T) {
	s := NewScheduler(config.SchedulerConfig{RecalcCron: "every tuesday"}, &countingRecalc{}, zap.NewNop())
	assert.Error(t, s.Start())
}

func TestStart_Disabled(t *testing.T) {
	s := NewScheduler(config.SchedulerConfig{}, &countingRecalc{}, nil)
	require.NoError(t, s.Start())
	s.Stop()
}

func TestStart_UnknownTimezoneFallsBack(t *testing.T) {
	s := NewScheduler(config.SchedulerConfig{RecalcCron: "0 3 * * *", Timezone: "Mars/Olympus"}, &countingRecalc{}, zap.NewNop())
	require.NoError(t, s.Start())
	s.Stop()
}

func TestRecalculate_CallsService(t *testing.T) {
	rc := &countingRecalc{}
	s := NewScheduler(config.SchedulerConfig{RecalcCron: "@daily"}, rc, zap.NewNop())
	s.recalculate()
	assert.Equal(t, int32(1), rc.calls.Load())

	rc.err = errors.New("locked")
	s.recalculate() // logged, not panicking
	assert.Equal(t, int32(2), rc.calls.Load())
}
