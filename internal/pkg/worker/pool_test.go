package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden.dev/warden/internal/pkg/logger"
)

func init() {
	_ = logger.Init("error", "json")
}

func TestNewPools(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PoolConfig
		wantCap int
	}{
		{"explicit size", PoolConfig{GeneralPoolSize: 10}, 10},
		{"zero falls back to default", PoolConfig{}, DefaultPoolConfig().GeneralPoolSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pools, err := NewPools(context.Background(), tt.cfg)
			require.NoError(t, err)
			defer pools.Shutdown()

			require.Len(t, pools.All(), 1)
			general := pools.All()[0]
			assert.Equal(t, "general", general.Name())
			assert.Equal(t, tt.wantCap, general.Cap())
			assert.Equal(t, tt.wantCap, general.Free())
			assert.Zero(t, general.Running())
		})
	}
}

func TestPool_Submit(t *testing.T) {
	pools, err := NewPools(context.Background(), PoolConfig{GeneralPoolSize: 2})
	require.NoError(t, err)
	defer pools.Shutdown()

	var executed atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	err = pools.General.Submit(context.Background(), func(context.Context) {
		executed.Store(true)
		wg.Done()
	})
	require.NoError(t, err)

	wg.Wait()
	assert.True(t, executed.Load())
}

func TestPool_Submit_CancelledContext(t *testing.T) {
	pools, err := NewPools(context.Background(), DefaultPoolConfig())
	require.NoError(t, err)
	defer pools.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = pools.General.Submit(ctx, func(context.Context) {
		t.Error("task should not run with a cancelled context")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPools_SubmitDetached(t *testing.T) {
	pools, err := NewPools(context.Background(), DefaultPoolConfig())
	require.NoError(t, err)

	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()

	var sawLiveCtx atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	err = pools.SubmitDetached(func(ctx context.Context) {
		sawLiveCtx.Store(ctx.Err() == nil && reqCtx.Err() != nil)
		wg.Done()
	})
	require.NoError(t, err)

	wg.Wait()
	pools.Shutdown()
	assert.True(t, sawLiveCtx.Load())
}

func TestPools_SubmitAfterShutdown(t *testing.T) {
	pools, err := NewPools(context.Background(), DefaultPoolConfig())
	require.NoError(t, err)
	pools.Shutdown()

	err = pools.SubmitDetached(func(context.Context) {})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPools_ShutdownDrainsRunningTasks(t *testing.T) {
	pools, err := NewPools(context.Background(), PoolConfig{GeneralPoolSize: 2})
	require.NoError(t, err)

	started := make(chan struct{})
	var finishedLive atomic.Bool
	err = pools.SubmitDetached(func(ctx context.Context) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finishedLive.Store(ctx.Err() == nil)
	})
	require.NoError(t, err)

	<-started
	pools.Shutdown()
	assert.True(t, finishedLive.Load(), "running task must finish before the service context is cancelled")
}
