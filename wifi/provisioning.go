package wifi

import (
	"fmt"
	"github.com/go-errors/errors"
	"time"
)

// Bounds of the timeout the listener protocol can carry.
const (
	minProvisioningSeconds = 15
	maxProvisioningSeconds = 255
)

// ProvisioningVariant selects how credentials reach the device.
type ProvisioningVariant int

const (
	// ProvisionBroadcast listens for credentials broadcast over the
	// air by a companion application and acknowledges them back once
	// connected.
	ProvisionBroadcast ProvisioningVariant = iota
	// ProvisionSoftAP brings up a temporary access point the companion
	// application joins to hand over credentials.
	ProvisionSoftAP
)

func (v ProvisioningVariant) String() string {
	switch v {
	case ProvisionBroadcast:
		return "broadcast"
	case ProvisionSoftAP:
		return "softap"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

func (v ProvisioningVariant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *ProvisioningVariant) UnmarshalText(text []byte) error {
	variant, err := ParseProvisioningVariant(string(text))
	if err != nil {
		return err
	}

	*v = variant

	return nil
}

func ParseProvisioningVariant(name string) (ProvisioningVariant, error) {
	switch name {
	case "broadcast":
		return ProvisionBroadcast, nil
	case "softap":
		return ProvisionSoftAP, nil
	default:
		return 0, errors.Errorf("unknown provisioning variant %v", name)
	}
}

// ProvisioningOptions tune a session. The zero value provisions with the
// configured access point and the default timeout.
type ProvisioningOptions struct {
	// AccessPoint overrides the access point a ProvisionSoftAP session
	// brings up.
	AccessPoint AccessPointConfig
	// Timeout ends the session when no acknowledged hand-over happened
	// in time. The driver is handed a value clamped to the 15..255
	// second range the listener protocol supports.
	Timeout time.Duration
}

type sessionState int

const (
	sessionIdle sessionState = iota
	// sessionListening waits for credentials from the companion.
	sessionListening
	// sessionCredentialsPending tries received credentials; they are
	// only persisted once the link comes up.
	sessionCredentialsPending
	// sessionCompleting keeps a broadcast listener up until the
	// acknowledgement reached the companion.
	sessionCompleting
)

type session struct {
	state    sessionState
	variant  ProvisioningVariant
	pending  *Credentials
	timer    *time.Timer
	prevMode Mode
	gen      uint64
}

func (s session) active() bool {
	return s.state != sessionIdle
}

// StartProvisioning opens a hand-over session. A broadcast session keeps
// the station listening for broadcast credentials; a temporary access
// point session switches to dual mode so the companion can stay on the
// access point while the station side tries the received credentials.
// Only one session can be active at a time.
func (s *Service) StartProvisioning(variant ProvisioningVariant, opts ProvisioningOptions) error {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultProvisioningTimeout
	}

	s.mtx.Lock()

	if s.sess.active() {
		s.mtx.Unlock()
		return fmt.Errorf("%w: provisioning already in progress", ErrInvalidState)
	}

	prevMode := s.mode

	switch variant {
	case ProvisionBroadcast:
		if !s.mode.hasStation() {
			if err := s.applyModeLocked(ModeStation, nil); err != nil {
				s.mtx.Unlock()
				return err
			}
		}
	case ProvisionSoftAP:
		ap := opts.AccessPoint
		if ap.Ssid == "" {
			ap = s.ap
		}
		ap = ap.withDefaults()

		if err := ap.Validate(); err != nil {
			s.mtx.Unlock()
			return err
		}

		if err := s.applyModeLocked(ModeDual, &ap); err != nil {
			s.mtx.Unlock()
			return err
		}
	default:
		s.mtx.Unlock()
		return errors.Errorf("unknown provisioning variant %d", variant)
	}

	var evs []Event
	if s.mode != prevMode {
		evs = append(evs, s.newEventLocked(EventStateChanged))
	}

	seconds := int(timeout / time.Second)
	if seconds < minProvisioningSeconds {
		seconds = minProvisioningSeconds
	} else if seconds > maxProvisioningSeconds {
		seconds = maxProvisioningSeconds
	}

	if err := s.driver.SetProvisioningTimeout(seconds); err != nil {
		s.mtx.Unlock()
		s.publish(evs...)

		return driverError(err)
	}

	if err := s.driver.StartProvisioningListener(); err != nil {
		s.mtx.Unlock()
		s.publish(evs...)

		return driverError(err)
	}

	s.sessGen++
	gen := s.sessGen

	s.sess = session{
		state:    sessionListening,
		variant:  variant,
		prevMode: prevMode,
		gen:      gen,
		timer: time.AfterFunc(timeout, func() {
			s.provisioningExpired(gen)
		}),
	}

	s.log.Infof("Provisioning started (%v), times out after %v", variant, timeout)

	s.mtx.Unlock()

	s.publish(evs...)

	return nil
}

// CancelProvisioning tears down an active session and restores the mode a
// temporary access point replaced. Credentials already being tried keep
// connecting; there is no in-flight abort. Without an active session this
// is a no-op.
func (s *Service) CancelProvisioning() error {
	s.mtx.Lock()

	if !s.sess.active() {
		s.mtx.Unlock()
		return nil
	}

	s.log.Infof("Provisioning cancelled")

	evs := s.cancelSessionLocked()

	s.mtx.Unlock()

	s.publish(evs...)

	return nil
}

func (s *Service) provisioningExpired(gen uint64) {
	s.mtx.Lock()

	if !s.sess.active() || s.sess.gen != gen {
		s.mtx.Unlock()
		return
	}

	s.log.Infof("Provisioning timed out")

	evs := s.cancelSessionLocked()

	s.mtx.Unlock()

	s.publish(evs...)
}

// cancelSessionLocked stops the listener and, for a temporary access
// point session, restores the mode it replaced. Neither cancel nor expiry
// emits a provisioning event; only a mode restore is observable.
func (s *Service) cancelSessionLocked() []Event {
	s.stopListenerLocked()

	variant := s.sess.variant
	prevMode := s.sess.prevMode
	s.sess = session{}

	var evs []Event

	if variant == ProvisionSoftAP && s.mode != prevMode {
		if err := s.applyModeLocked(prevMode, nil); err != nil {
			s.log.Errorf("Could not restore mode %v: %v", prevMode, err)
		}

		evs = append(evs, s.newEventLocked(EventStateChanged))
	}

	return evs
}

func (s *Service) stopListenerLocked() {
	if s.sess.timer != nil {
		s.sess.timer.Stop()
	}

	if err := s.driver.StopProvisioningListener(); err != nil {
		s.log.Warnf("Could not stop provisioning listener: %v", err)
	}
}

func (s *Service) handleProvisioningCredentials(n ProvisioningCredentials) {
	s.mtx.Lock()

	if s.sess.state != sessionListening {
		s.mtx.Unlock()

		s.log.Warnf("Ignoring credentials outside of a listening session")

		return
	}

	s.log.Infof("Received credentials for %v", n.Creds.Ssid)

	if err := n.Creds.Validate(); err != nil {
		ev := s.newEventLocked(EventProvisioningFailed)
		ev.Err = err

		s.mtx.Unlock()

		s.log.Warnf("Rejecting received credentials: %v", err)

		s.bus.publish(ev)

		return
	}

	creds := n.Creds
	s.sess.pending = &creds
	s.sess.state = sessionCredentialsPending

	ev := s.newEventLocked(EventCredentialsReceived)
	ev.Credentials = &creds

	s.mtx.Unlock()

	s.bus.publish(ev)

	if err := s.Connect(creds); err != nil {
		s.log.Warnf("Could not try received credentials: %v", err)

		s.mtx.Lock()
		evs := s.failPendingLocked(err)
		s.mtx.Unlock()

		s.publish(evs...)
	}
}

func (s *Service) handleProvisioningAck() {
	s.mtx.Lock()

	if s.sess.state != sessionCompleting || s.sess.variant != ProvisionBroadcast {
		s.mtx.Unlock()

		s.log.Debugf("Ignoring acknowledgement outside of a completing session")

		return
	}

	creds := s.sess.pending
	s.stopListenerLocked()
	s.sess = session{}

	ev := s.newEventLocked(EventProvisioningCompleted)
	ev.Credentials = creds

	s.mtx.Unlock()

	s.log.Infof("Provisioning completed")

	s.bus.publish(ev)
}

// completePendingLocked persists credentials received by an active
// session once the link they were tried with comes up. A broadcast
// session then waits for the acknowledgement to reach the companion; a
// temporary access point session is complete right away and leaves the
// mode as is for the companion to fetch the outcome.
func (s *Service) completePendingLocked() []Event {
	if s.sess.state != sessionCredentialsPending || s.sess.pending == nil {
		return nil
	}

	creds := s.sess.pending

	if err := s.store.SetCredentials(creds); err != nil {
		s.log.Errorf("Could not save provisioned credentials: %v", err)

		return s.failPendingLocked(errors.Errorf("could not save credentials: %v", err))
	}

	s.cached = creds

	if s.sess.variant == ProvisionBroadcast {
		s.sess.state = sessionCompleting
		return nil
	}

	s.stopListenerLocked()
	s.sess = session{}

	ev := s.newEventLocked(EventProvisioningCompleted)
	ev.Credentials = creds

	s.log.Infof("Provisioning completed")

	return []Event{ev}
}

// failPendingLocked reports a failed attempt with received credentials.
// The session returns to listening so the companion can retry with
// different credentials.
func (s *Service) failPendingLocked(err error) []Event {
	if s.sess.state != sessionCredentialsPending {
		return nil
	}

	s.sess.pending = nil
	s.sess.state = sessionListening

	ev := s.newEventLocked(EventProvisioningFailed)
	ev.Err = err

	return []Event{ev}
}
