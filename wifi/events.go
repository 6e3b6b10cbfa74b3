package wifi

import "sync"

// EventKind tags an Event.
type EventKind int

const (
	// EventConnected fires when the station link comes up.
	EventConnected EventKind = iota
	// EventDisconnected fires when the station link goes down.
	EventDisconnected
	// EventConnectionFailed fires when a connection attempt fails.
	EventConnectionFailed
	// EventCredentialsReceived fires when a provisioning session
	// receives valid credentials.
	EventCredentialsReceived
	// EventProvisioningCompleted fires when a provisioning session
	// finishes successfully.
	EventProvisioningCompleted
	// EventProvisioningFailed fires when a provisioning session hits an
	// error. The session may stay active and keep listening.
	EventProvisioningFailed
	// EventStateChanged fires when the operating mode changes.
	EventStateChanged
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventConnectionFailed:
		return "connection-failed"
	case EventCredentialsReceived:
		return "credentials-received"
	case EventProvisioningCompleted:
		return "provisioning-completed"
	case EventProvisioningFailed:
		return "provisioning-failed"
	case EventStateChanged:
		return "state-changed"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribed listeners. Status holds the snapshot
// taken when the event was produced; Reason, Err and Credentials are only
// set for the kinds they apply to.
type Event struct {
	Kind        EventKind
	Status      Status
	Reason      Reason
	Err         error
	Credentials *Credentials
}

// Listener receives events synchronously on whichever goroutine produced
// them. Listeners must return quickly and must not block.
type Listener func(Event)

type subscriber struct {
	id uint32
	fn Listener
}

// eventBus delivers events to listeners in subscription order.
type eventBus struct {
	mtx         sync.Mutex
	subscribers []subscriber
	nextID      uint32
}

func (b *eventBus) subscribe(fn Listener) uint32 {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	id := b.nextID
	b.nextID++

	b.subscribers = append(b.subscribers, subscriber{id: id, fn: fn})

	return id
}

func (b *eventBus) unsubscribe(id uint32) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	for i, sub := range b.subscribers {
		if sub.id == id {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			break
		}
	}
}

func (b *eventBus) publish(ev Event) {
	b.mtx.Lock()
	subscribers := make([]subscriber, len(b.subscribers))
	copy(subscribers, b.subscribers)
	b.mtx.Unlock()

	for _, sub := range subscribers {
		sub.fn(ev)
	}
}
