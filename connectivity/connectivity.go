package connectivity

import (
	"context"
	"github.com/larkhq/larkd/wifi"
	"sync"
	"time"
)

type State int

const (
	Offline State = iota
	Online
)

func (s State) String() string {
	switch s {
	case Offline:
		return "OFFLINE"
	case Online:
		return "ONLINE"
	default:
		return "INVALID STATE"
	}
}

type Config struct {
	Service *wifi.Service
	Logger  Logger
}

// Reporter reduces the connection state to a binary online state and lets
// callers wait for changes to it.
type Reporter struct {
	log    Logger
	svc    *wifi.Service
	cancel func()

	mtx   sync.Mutex
	state State
	// changed is closed and replaced on every state transition.
	changed chan struct{}
}

func NewReporter(config *Config) *Reporter {
	r := &Reporter{
		svc:     config.Service,
		changed: make(chan struct{}),
	}

	if config.Logger != nil {
		r.log = config.Logger
	} else {
		r.log = noopLogger{}
	}

	return r
}

func (r *Reporter) Start() error {
	r.cancel = r.svc.Subscribe(func(ev wifi.Event) {
		r.apply(ev.Status)
	})

	r.apply(r.svc.Status())

	return nil
}

func (r *Reporter) Stop() error {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}

	return nil
}

func (r *Reporter) apply(status wifi.Status) {
	state := Offline
	if status.Connected {
		state = Online
	}

	r.mtx.Lock()

	if state == r.state {
		r.mtx.Unlock()
		return
	}

	r.state = state
	close(r.changed)
	r.changed = make(chan struct{})

	r.mtx.Unlock()

	r.log.Infof("Connectivity is now %v", state)
}

func (r *Reporter) CurrentState() State {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.state
}

// WaitForStateChange blocks until the state differs from last or the
// context ends. It reports whether a change happened.
func (r *Reporter) WaitForStateChange(ctx context.Context, last State) bool {
	for {
		r.mtx.Lock()
		state := r.state
		changed := r.changed
		r.mtx.Unlock()

		if state != last {
			return true
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return false
		}
	}
}

// WaitOnline blocks until the reporter sees connectivity, the timeout
// passes or the context ends. It reports whether the device is online.
func (r *Reporter) WaitOnline(ctx context.Context, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		state := r.CurrentState()
		if state == Online {
			return true
		}

		if !r.WaitForStateChange(ctx, state) {
			return false
		}
	}
}
