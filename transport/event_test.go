// File: transport/event_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patdhlk/ipcwait/api"
	"github.com/patdhlk/ipcwait/poll"
	"github.com/patdhlk/ipcwait/transport"
	"github.com/patdhlk/ipcwait/waitset"
)

func TestNotifyFansOutToAllListeners(t *testing.T) {
	node, err := transport.NewNode()
	require.NoError(t, err)
	defer node.Close()

	svc, err := node.EventService(t.Name())
	require.NoError(t, err)

	l1, err := svc.NewListener()
	require.NoError(t, err)
	l2, err := svc.NewListener()
	require.NoError(t, err)
	nt, err := svc.NewNotifier()
	require.NoError(t, err)

	require.NoError(t, nt.Notify(5))
	require.NoError(t, nt.Notify(6))

	assert.Equal(t, []api.EventID{5, 6}, poll.Drain(l1))
	assert.Equal(t, []api.EventID{5, 6}, poll.Drain(l2))
	assert.Equal(t, 0, l1.Pending())
}

func TestListenerWakerPinged(t *testing.T) {
	node, err := transport.NewNode()
	require.NoError(t, err)
	defer node.Close()

	svc, err := node.EventService(t.Name())
	require.NoError(t, err)
	l, err := svc.NewListener()
	require.NoError(t, err)
	nt, err := svc.NewNotifier()
	require.NoError(t, err)

	wake := make(chan struct{}, 1)
	l.AddWaker(wake)
	require.NoError(t, nt.Notify(1))

	select {
	case <-wake:
	case <-time.After(time.Second):
		t.Fatal("waker was not pinged on notify")
	}

	l.RemoveWaker(wake)
	require.NoError(t, nt.Notify(2))
	select {
	case <-wake:
		t.Fatal("removed waker was pinged")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestReleasedListenerPanics(t *testing.T) {
	node, err := transport.NewNode()
	require.NoError(t, err)
	defer node.Close()

	svc, err := node.EventService(t.Name())
	require.NoError(t, err)
	l, err := svc.NewListener()
	require.NoError(t, err)

	l.Release()
	l.Release() // idempotent
	assert.Panics(t, func() { l.TryDequeue() })
	assert.Panics(t, func() { l.Pending() })
}

func TestNodeCloseReleasesPorts(t *testing.T) {
	node, err := transport.NewNode()
	require.NoError(t, err)

	svc, err := node.EventService(t.Name())
	require.NoError(t, err)
	l, err := svc.NewListener()
	require.NoError(t, err)
	nt, err := svc.NewNotifier()
	require.NoError(t, err)

	node.Close()

	assert.Panics(t, func() { l.Pending() })
	assert.Panics(t, func() { _ = nt.Notify(1) })

	_, err = node.EventService("after-close")
	assert.ErrorIs(t, err, api.ErrServiceClosed)
}

func TestListenerDrivesWaitSet(t *testing.T) {
	node, err := transport.NewNode()
	require.NoError(t, err)
	defer node.Close()

	svc, err := node.EventService(t.Name())
	require.NoError(t, err)
	l, err := svc.NewListener()
	require.NoError(t, err)
	nt, err := svc.NewNotifier()
	require.NoError(t, err)

	ws, err := waitset.New(4)
	require.NoError(t, err)
	g, err := ws.AttachNotification(l)
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = nt.Notify(77)
	}()

	fired, err := ws.Wait(2 * time.Second)
	require.NoError(t, err)
	require.Len(t, fired, 1)
	assert.Equal(t, g.ID(), fired[0].ID)
	assert.Equal(t, []api.EventID{77}, poll.Drain(l))

	g.Release()
	ws.Release()
}
