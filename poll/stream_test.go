// File: poll/stream_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package poll_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patdhlk/ipcwait/api"
	"github.com/patdhlk/ipcwait/poll"
	"github.com/patdhlk/ipcwait/waitset"
)

// streamListener is a minimal api.Listener for stream tests.
type streamListener struct {
	mu     sync.Mutex
	ids    []api.EventID
	wakers []chan<- struct{}
}

func (f *streamListener) push(id api.EventID) {
	f.mu.Lock()
	f.ids = append(f.ids, id)
	wakers := append([]chan<- struct{}(nil), f.wakers...)
	f.mu.Unlock()
	for _, w := range wakers {
		select {
		case w <- struct{}{}:
		default:
		}
	}
}

func (f *streamListener) TryDequeue() (api.EventID, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ids) == 0 {
		return 0, false
	}
	id := f.ids[0]
	f.ids = f.ids[1:]
	return id, true
}

func (f *streamListener) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ids)
}

func (f *streamListener) AddWaker(w chan<- struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wakers = append(f.wakers, w)
}

func (f *streamListener) RemoveWaker(w chan<- struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, cand := range f.wakers {
		if cand == w {
			f.wakers = append(f.wakers[:i], f.wakers[i+1:]...)
			return
		}
	}
}

func TestStreamYieldsFirings(t *testing.T) {
	ws, err := waitset.New(4)
	require.NoError(t, err)
	l := &streamListener{}
	g, err := ws.AttachNotification(l)
	require.NoError(t, err)

	s := poll.NewStream(ws, poll.WithStreamInterval(10*time.Millisecond))

	l.push(11)
	f, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, g.ID(), f.ID)
	assert.Equal(t, api.FiredNotification, f.Kind)
	assert.Equal(t, []api.EventID{11}, poll.Drain(l))

	l.push(12)
	f, err = s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, g.ID(), f.ID)
	assert.Equal(t, []api.EventID{12}, poll.Drain(l))

	s.Cancel()
	<-s.Done()
	g.Release()
	ws.Release()
}

func TestStreamDeadlineFirings(t *testing.T) {
	ws, err := waitset.New(4)
	require.NoError(t, err)
	g, err := ws.AttachDeadline(15 * time.Millisecond)
	require.NoError(t, err)

	s := poll.NewStream(ws, poll.WithStreamInterval(10*time.Millisecond))
	for i := 0; i < 3; i++ {
		f, err := s.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, g.ID(), f.ID)
		assert.Equal(t, api.FiredDeadline, f.Kind)
	}

	s.Cancel()
	<-s.Done()
	g.Release()
	ws.Release()
}

func TestStreamCancelTerminatesCleanly(t *testing.T) {
	ws, err := waitset.New(4)
	require.NoError(t, err)

	s := poll.NewStream(ws, poll.WithStreamInterval(5*time.Millisecond))
	s.Cancel()
	s.Cancel() // idempotent

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("stream did not stop after cancel")
	}
	assert.NoError(t, s.Err())

	// Terminated: never produces again.
	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, api.ErrTerminated)

	ws.Release()
}

func TestStreamTerminatesOnInterrupt(t *testing.T) {
	ws, err := waitset.New(4)
	require.NoError(t, err)

	s := poll.NewStream(ws, poll.WithStreamInterval(5*time.Millisecond))
	ws.Interrupt()

	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, api.ErrInterrupted)

	<-s.Done()
	assert.ErrorIs(t, s.Err(), api.ErrInterrupted)

	// A fatal stop is terminal too.
	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, api.ErrInterrupted)

	ws.Release()
}

func TestStreamNextHonorsCallerContext(t *testing.T) {
	ws, err := waitset.New(4)
	require.NoError(t, err)

	s := poll.NewStream(ws, poll.WithStreamInterval(5*time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, api.ErrCancelled)

	s.Cancel()
	<-s.Done()
	ws.Release()
}
