package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubmitRunsEveryTask(t *testing.T) {
	p := New(4, zap.NewNop().Sugar())

	var counter int64
	var wg sync.WaitGroup
	wg.Add(100)

	for i := 0; i < 100; i++ {
		require.NoError(t, p.Submit(func() {
			atomic.AddInt64(&counter, 1)
			wg.Done()
		}))
	}

	wg.Wait()
	require.Equal(t, int64(100), atomic.LoadInt64(&counter))
	require.NoError(t, p.Close())
}

func TestSubmitNeverBlocks(t *testing.T) {
	p := New(1, zap.NewNop().Sugar())
	defer p.Close()

	block := make(chan struct{})
	require.NoError(t, p.Submit(func() { <-block }))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			_ = p.Submit(func() {})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked while the single worker was busy")
	}

	close(block)
}

func TestPanicIsolatedPerTask(t *testing.T) {
	p := New(2, zap.NewNop().Sugar())

	var ran int64
	var wg sync.WaitGroup
	wg.Add(2)

	require.NoError(t, p.Submit(func() {
		defer wg.Done()
		panic("boom")
	}))
	require.NoError(t, p.Submit(func() {
		defer wg.Done()
		atomic.AddInt64(&ran, 1)
	}))

	wg.Wait()
	require.Equal(t, int64(1), atomic.LoadInt64(&ran))
	require.NoError(t, p.Close())
}

func TestSubmitAfterCloseFails(t *testing.T) {
	p := New(1, zap.NewNop().Sugar())
	require.NoError(t, p.Close())
	require.ErrorIs(t, p.Submit(func() {}), ErrPoolClosed)
}

func TestConcurrentSubmitDuringCloseNeverPanics(t *testing.T) {
	for i := 0; i < 50; i++ {
		p := New(2, zap.NewNop().Sugar())

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = p.Submit(func() {})
			}
		}()

		require.NoError(t, p.Close())
		wg.Wait()
	}
}
