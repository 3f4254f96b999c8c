package event_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"okinoko_gallery/internal/event"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEventBusSingleSubscriber(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(event.LogEventType)
	eb.Publish(event.LogEventType, event.NewEvent(event.LogEventType, event.LogEvent{TxId: "abc", Line: "ng|id:1"}))
	select {
	case evt, ok := <-subCh:
		require.True(t, ok)
		data, ok := evt.Data.(event.LogEvent)
		require.True(t, ok)
		assert.Equal(t, "ng|id:1", data.Line)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestEventBusTypesAreSeparate(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, logCh := eb.Subscribe(event.LogEventType)
	eb.Publish(event.ReceiptEventType, event.NewEvent(event.ReceiptEventType, event.ReceiptEvent{}))
	select {
	case <-logCh:
		t.Fatal("log subscriber got a receipt")
	default:
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	id, ch := eb.Subscribe(event.LogEventType)
	eb.Unsubscribe(event.LogEventType, id)
	_, ok := <-ch
	assert.False(t, ok)
	// publishing with nobody listening is fine
	eb.Publish(event.LogEventType, event.NewEvent(event.LogEventType, nil))
}

func TestEventBusSubscribeFuncDrainsOnStop(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	var seen atomic.Int32
	eb.SubscribeFunc(event.ReceiptEventType, func(event.Event) { seen.Add(1) })
	for i := 0; i < 10; i++ {
		eb.Publish(event.ReceiptEventType, event.NewEvent(event.ReceiptEventType, i))
	}
	eb.Stop()
	assert.Equal(t, int32(10), seen.Load())

	_, ch := eb.Subscribe(event.ReceiptEventType)
	_, ok := <-ch
	assert.False(t, ok, "subscribing after stop yields a closed channel")
}

func TestEventBusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	eb := event.NewEventBus(reg, nil)
	defer eb.Stop()
	_, ch := eb.Subscribe(event.LogEventType)
	eb.Publish(event.LogEventType, event.NewEvent(event.LogEventType, nil))
	<-ch
	n, err := testutil.GatherAndCount(reg, "gallery_events_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = testutil.GatherAndCount(reg, "gallery_event_subscribers")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
