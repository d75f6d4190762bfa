// File: transport/pubsub_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patdhlk/ipcwait/api"
	"github.com/patdhlk/ipcwait/control"
	"github.com/patdhlk/ipcwait/handle"
	"github.com/patdhlk/ipcwait/poll"
	"github.com/patdhlk/ipcwait/transport"
)

func TestPublishReceiveRoundTrip(t *testing.T) {
	node, err := transport.NewNode()
	require.NoError(t, err)
	defer node.Close()

	svc, err := node.PubSubService(t.Name())
	require.NoError(t, err)
	sub, err := svc.NewSubscriber()
	require.NoError(t, err)
	pub, err := svc.NewPublisher()
	require.NoError(t, err)

	loan, err := pub.Loan(5)
	require.NoError(t, err)
	copy(loan.Bytes(), "hello")
	require.NoError(t, loan.Send())

	smp, ok := sub.TryReceive()
	require.True(t, ok)
	assert.Equal(t, "hello", string(smp.Bytes()))
	smp.Release()

	_, ok = sub.TryReceive()
	assert.False(t, ok)
}

func TestEverySubscriberGetsTheSample(t *testing.T) {
	node, err := transport.NewNode()
	require.NoError(t, err)
	defer node.Close()

	svc, err := node.PubSubService(t.Name())
	require.NoError(t, err)
	s1, err := svc.NewSubscriber()
	require.NoError(t, err)
	s2, err := svc.NewSubscriber()
	require.NoError(t, err)
	pub, err := svc.NewPublisher()
	require.NoError(t, err)

	loan, err := pub.Loan(3)
	require.NoError(t, err)
	copy(loan.Bytes(), "abc")
	require.NoError(t, loan.Send())

	for _, sub := range []*transport.Subscriber{s1, s2} {
		smp, ok := sub.TryReceive()
		require.True(t, ok)
		assert.Equal(t, "abc", string(smp.Bytes()))
		smp.Release()
	}
}

func TestSampleLifetimeDiscipline(t *testing.T) {
	node, err := transport.NewNode()
	require.NoError(t, err)
	defer node.Close()

	svc, err := node.PubSubService(t.Name())
	require.NoError(t, err)
	sub, err := svc.NewSubscriber()
	require.NoError(t, err)
	pub, err := svc.NewPublisher()
	require.NoError(t, err)

	before := handle.Live()

	loan, err := pub.Loan(8)
	require.NoError(t, err)
	require.NoError(t, loan.Send())
	assert.Panics(t, func() { loan.Bytes() }, "loan is consumed by Send")

	smp, ok := sub.TryReceive()
	require.True(t, ok)
	smp.Release()
	smp.Release() // idempotent
	assert.Panics(t, func() { smp.Bytes() })

	assert.Equal(t, before, handle.Live(), "sample handles must all be released")

	// Aborting a loan without sending releases it too.
	loan2, err := pub.Loan(4)
	require.NoError(t, err)
	loan2.Release()
	assert.Equal(t, before, handle.Live())
}

func TestLoanRejectsNonPositiveSize(t *testing.T) {
	node, err := transport.NewNode()
	require.NoError(t, err)
	defer node.Close()

	svc, err := node.PubSubService(t.Name())
	require.NoError(t, err)
	pub, err := svc.NewPublisher()
	require.NoError(t, err)

	_, err = pub.Loan(0)
	var serr *api.Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, api.ErrCodeInvalidArgument, serr.Code)
}

func TestSubscriberOverflowDropsOldest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := control.NewMetrics(reg)
	cfg := control.Default()
	cfg.SubscriberQueueDepth = 2

	node, err := transport.NewNode(transport.WithConfig(cfg), transport.WithMetrics(m))
	require.NoError(t, err)
	defer node.Close()

	svc, err := node.PubSubService(t.Name())
	require.NoError(t, err)
	sub, err := svc.NewSubscriber()
	require.NoError(t, err)
	pub, err := svc.NewPublisher()
	require.NoError(t, err)

	for _, payload := range []string{"one", "two", "three"} {
		loan, err := pub.Loan(len(payload))
		require.NoError(t, err)
		copy(loan.Bytes(), payload)
		require.NoError(t, loan.Send())
	}

	smp, ok := sub.TryReceive()
	require.True(t, ok)
	assert.Equal(t, "two", string(smp.Bytes()), "oldest sample was displaced")
	smp.Release()

	smp, ok = sub.TryReceive()
	require.True(t, ok)
	assert.Equal(t, "three", string(smp.Bytes()))
	smp.Release()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SamplesDropped))
}

func TestBridgeOverSubscriberReceive(t *testing.T) {
	node, err := transport.NewNode()
	require.NoError(t, err)
	defer node.Close()

	svc, err := node.PubSubService(t.Name())
	require.NoError(t, err)
	sub, err := svc.NewSubscriber()
	require.NoError(t, err)
	pub, err := svc.NewPublisher()
	require.NoError(t, err)

	b := poll.NewBridge(sub.TryReceive, poll.WithInterval(2*time.Millisecond))

	go func() {
		time.Sleep(15 * time.Millisecond)
		loan, err := pub.Loan(2)
		if err != nil {
			return
		}
		copy(loan.Bytes(), "ok")
		_ = loan.Send()
	}()

	smp, ok, err := b.Receive(context.Background(), time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ok", string(smp.Bytes()))
	smp.Release()
}
