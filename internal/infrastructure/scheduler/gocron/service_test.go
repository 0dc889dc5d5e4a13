package scheduler_test

import (
	"sync/atomic"
	"testing"
	"time"

	scheduler "github.com/ark-network/ln-gateway/internal/infrastructure/scheduler/gocron"
	"github.com/stretchr/testify/require"
)

func TestScheduleTask(t *testing.T) {
	t.Run("immediate", func(t *testing.T) {
		svc := scheduler.NewScheduler()
		var runs atomic.Int32

		err := svc.ScheduleTask(60, true, func() { runs.Add(1) })
		require.NoError(t, err)

		svc.Start()
		defer svc.Stop()

		require.Eventually(t, func() bool {
			return runs.Load() == 1
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("wait for schedule", func(t *testing.T) {
		svc := scheduler.NewScheduler()
		var runs atomic.Int32

		err := svc.ScheduleTask(1, false, func() { runs.Add(1) })
		require.NoError(t, err)

		svc.Start()
		defer svc.Stop()

		time.Sleep(200 * time.Millisecond)
		require.Zero(t, runs.Load())

		require.Eventually(t, func() bool {
			return runs.Load() >= 1
		}, 3*time.Second, 50*time.Millisecond)
	})

	t.Run("invalid interval", func(t *testing.T) {
		svc := scheduler.NewScheduler()

		err := svc.ScheduleTask(0, true, func() {})
		require.EqualError(t, err, "invalid interval 0, must be positive")
	})
}
