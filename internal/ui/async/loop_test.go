package async

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_RunsInPostOrder(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	var got []int
	for i := 0; i < 20; i++ {
		i := i
		require.True(t, l.Post(func() { got = append(got, i) }))
	}
	l.Flush()

	require.Len(t, got, 20)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestLoop_PostAfterClose(t *testing.T) {
	l := NewLoop()
	l.Close()
	assert.False(t, l.Post(func() {}))
	l.Flush()
	l.Close()
}

func TestLoop_CloseDrainsQueued(t *testing.T) {
	l := NewLoop()
	ran := make(chan struct{}, 3)
	block := make(chan struct{})
	l.Post(func() { <-block })
	l.Post(func() { ran <- struct{}{} })
	l.Post(func() { ran <- struct{}{} })
	close(block)
	l.Close()
	assert.Len(t, ran, 2)
}

func TestLoop_PostFromLoopDoesNotDeadlock(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	done := make(chan struct{})
	l.Post(func() {
		l.Post(func() { close(done) })
	})
	<-done
}

func TestGo_DeliversOnLoop(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	var mu sync.Mutex
	var got string
	var gotErr error
	Go(context.Background(), l, func(ctx context.Context) (string, error) {
		return "quote", nil
	}, func(v string, err error) {
		mu.Lock()
		got, gotErr = v, err
		mu.Unlock()
	})
	l.Idle()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "quote", got)
	assert.NoError(t, gotErr)
}

func TestGo_FallsBackWhenLoopClosed(t *testing.T) {
	l := NewLoop()
	l.Close()

	done := make(chan error, 1)
	Go(context.Background(), l, func(ctx context.Context) (int, error) {
		return 0, errors.New("offline")
	}, func(_ int, err error) { done <- err })

	require.EqualError(t, <-done, "offline")
	l.Idle()
}

func TestGo_NilLoop(t *testing.T) {
	done := make(chan int, 1)
	Go(context.Background(), nil, func(ctx context.Context) (int, error) {
		return 7, nil
	}, func(v int, _ error) { done <- v })
	assert.Equal(t, 7, <-done)
}

func TestGo_PassesContext(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var gotErr error
	Go(ctx, l, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, ctx.Err()
	}, func(_ struct{}, err error) { gotErr = err })
	l.Idle()

	assert.ErrorIs(t, gotErr, context.Canceled)
}

func TestSequence(t *testing.T) {
	var s Sequence
	first := s.Next()
	assert.True(t, s.IsCurrent(first))

	second := s.Next()
	assert.Greater(t, second, first)
	assert.False(t, s.IsCurrent(first))
	assert.True(t, s.IsCurrent(second))
}
