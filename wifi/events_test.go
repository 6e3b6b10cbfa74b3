package wifi

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestEventBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := &eventBus{}

	var order []int

	bus.subscribe(func(ev Event) {
		order = append(order, 1)
	})
	bus.subscribe(func(ev Event) {
		order = append(order, 2)
	})
	bus.subscribe(func(ev Event) {
		order = append(order, 3)
	})

	bus.publish(Event{Kind: EventStateChanged})

	require.Equal(t, []int{1, 2, 3}, order)
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := &eventBus{}

	var got []int

	first := bus.subscribe(func(ev Event) {
		got = append(got, 1)
	})
	bus.subscribe(func(ev Event) {
		got = append(got, 2)
	})

	bus.unsubscribe(first)
	bus.publish(Event{Kind: EventStateChanged})

	// Unsubscribing twice must not disturb the remaining listeners.
	bus.unsubscribe(first)
	bus.publish(Event{Kind: EventStateChanged})

	require.Equal(t, []int{2, 2}, got)
}

func TestEventBusSubscribeDuringPublish(t *testing.T) {
	bus := &eventBus{}

	calls := 0

	bus.subscribe(func(ev Event) {
		calls++

		if calls == 1 {
			bus.subscribe(func(ev Event) {
				calls += 10
			})
		}
	})

	// The listener added mid-delivery only sees the next event.
	bus.publish(Event{Kind: EventStateChanged})
	require.Equal(t, 1, calls)

	bus.publish(Event{Kind: EventStateChanged})
	require.Equal(t, 12, calls)
}

func TestEventKindNames(t *testing.T) {
	require.Equal(t, "connected", EventConnected.String())
	require.Equal(t, "provisioning-completed", EventProvisioningCompleted.String())
	require.Equal(t, "state-changed", EventStateChanged.String())
}
