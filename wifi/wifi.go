package wifi

import (
	"fmt"
	"github.com/go-errors/errors"
	"net/netip"
	"sync"
	"time"
)

// Timeout defaults for callers waiting on asynchronous outcomes. The
// service itself never blocks on them; waits belong at the call site.
const (
	// DefaultConnectTimeout bounds waits for a connection outcome.
	DefaultConnectTimeout = 15 * time.Second
	// DefaultProvisioningTimeout bounds a provisioning session.
	DefaultProvisioningTimeout = 120 * time.Second
)

const defaultApSsid = "lark-ap"

// Store persists credentials and configuration between runs. Lookups
// return nil without an error when nothing is stored yet.
type Store interface {
	GetCredentials() (*Credentials, error)
	SetCredentials(creds *Credentials) error
	GetAccessPointConfig() (*AccessPointConfig, error)
	SetAccessPointConfig(config *AccessPointConfig) error
}

type Config struct {
	Driver Driver
	Store  Store
	// AccessPoint seeds the access-point configuration. When left
	// empty, the stored configuration or a default is used.
	AccessPoint AccessPointConfig
	Logger      Logger
}

// Service owns the mode, connection and provisioning state of the radio.
// Application calls and driver notifications both funnel through one
// mutex, so Status always reports a consistent snapshot. Commands return
// once the driver accepts them; outcomes arrive via the event bus.
type Service struct {
	log    Logger
	driver Driver
	store  Store

	mtx     sync.Mutex
	mode    Mode
	station stationState
	addr    netip.Addr
	reason  Reason
	lastErr error
	manual  bool
	cached  *Credentials
	ap      AccessPointConfig
	sess    session
	sessGen uint64

	bus eventBus

	quit chan struct{}
	wg   sync.WaitGroup
}

func NewService(config *Config) *Service {
	s := &Service{
		driver: config.Driver,
		store:  config.Store,
		quit:   make(chan struct{}),
	}

	if config.Logger != nil {
		s.log = config.Logger
	} else {
		s.log = noopLogger{}
	}

	ap := config.AccessPoint

	if ap.Ssid == "" && s.store != nil {
		stored, err := s.store.GetAccessPointConfig()
		if err != nil {
			s.log.Warnf("Could not load access point configuration: %v", err)
		} else if stored != nil {
			ap = *stored
		}
	}

	if ap.Ssid == "" {
		ap.Ssid = defaultApSsid
	}

	s.ap = ap.withDefaults()

	return s
}

// Start begins consuming driver notifications. The radio stays off until
// the first SetMode call.
func (s *Service) Start() error {
	s.wg.Add(1)
	go s.notificationLoop()

	return nil
}

// Stop cancels any provisioning session, stops the notification loop and
// powers the radio down.
func (s *Service) Stop() error {
	if err := s.CancelProvisioning(); err != nil {
		s.log.Warnf("Could not cancel provisioning: %v", err)
	}

	close(s.quit)
	s.wg.Wait()

	if err := s.driver.Stop(); err != nil {
		return errors.Errorf("could not stop radio: %v", err)
	}

	return nil
}

// Mode returns the current operating mode.
func (s *Service) Mode() Mode {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.mode
}

// SetMode switches the radio into the requested mode. Requesting the
// current mode is a no-op. When the new mode includes the station role
// and credentials are cached or stored, a connection attempt starts
// automatically; its outcome arrives through the event bus.
func (s *Service) SetMode(mode Mode) error {
	s.mtx.Lock()

	if mode == s.mode {
		s.mtx.Unlock()
		return nil
	}

	if err := s.applyModeLocked(mode, nil); err != nil {
		s.mtx.Unlock()
		return err
	}

	var creds *Credentials
	if mode.hasStation() {
		creds = s.cachedOrStoredLocked()
	}

	ev := s.newEventLocked(EventStateChanged)

	s.mtx.Unlock()

	s.publish(ev)

	if creds != nil {
		s.log.Infof("Connecting to %v after mode change", creds.Ssid)

		if err := s.Connect(*creds); err != nil {
			s.log.Warnf("Could not connect after mode change: %v", err)
		}
	}

	return nil
}

// applyModeLocked drives the stop, reconfigure, start cycle on the
// driver. A failure leaves the mode at ModeOff rather than somewhere in
// between.
func (s *Service) applyModeLocked(mode Mode, ap *AccessPointConfig) error {
	if err := s.driver.Stop(); err != nil {
		s.mode = ModeOff
		s.resetStationLocked()

		return driverError(err)
	}

	s.resetStationLocked()

	if mode == ModeOff {
		s.mode = ModeOff
		return nil
	}

	if err := s.driver.SetMode(mode); err != nil {
		s.mode = ModeOff
		return driverError(err)
	}

	if mode.hasAccessPoint() {
		config := s.ap
		if ap != nil {
			config = *ap
		}

		if err := s.driver.ConfigureAccessPoint(config); err != nil {
			s.mode = ModeOff
			return driverError(err)
		}
	}

	if err := s.driver.Start(); err != nil {
		s.mode = ModeOff
		return driverError(err)
	}

	s.mode = mode

	return nil
}

func (s *Service) resetStationLocked() {
	s.station = stationIdle
	s.addr = netip.Addr{}
}

// Connect begins association with the given network. It returns once the
// driver accepted the command; completion or failure is observed through
// the event bus and Status. A second call while an attempt is in flight
// supersedes it: the latest configuration wins and the resulting state
// reflects it, while the earlier attempt still delivers its events.
func (s *Service) Connect(creds Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	s.mtx.Lock()

	if !s.mode.hasStation() {
		s.mtx.Unlock()
		return fmt.Errorf("%w: cannot connect in mode %v", ErrInvalidState, s.mode)
	}

	if s.station != stationIdle {
		// The link-down caused by this disconnect must not be
		// reported as a failure.
		s.manual = true

		if err := s.driver.Disconnect(); err != nil {
			s.log.Warnf("Could not disconnect before connecting: %v", err)
		}
	}

	if err := s.driver.ConfigureStation(creds); err != nil {
		s.resetStationLocked()
		s.mtx.Unlock()

		return driverError(err)
	}

	if err := s.driver.Connect(); err != nil {
		s.resetStationLocked()
		s.mtx.Unlock()

		return driverError(err)
	}

	s.station = stationConnecting
	s.addr = netip.Addr{}
	c := creds
	s.cached = &c

	s.mtx.Unlock()

	return nil
}

// ConnectStored connects with the most recently used credentials, falling
// back to the persisted ones.
func (s *Service) ConnectStored() error {
	s.mtx.Lock()
	creds := s.cachedOrStoredLocked()
	s.mtx.Unlock()

	if creds == nil {
		return fmt.Errorf("%w: connect with credentials first", ErrNotFound)
	}

	return s.Connect(*creds)
}

func (s *Service) cachedOrStoredLocked() *Credentials {
	if s.cached != nil {
		return s.cached
	}

	creds, err := s.store.GetCredentials()
	if err != nil {
		s.log.Warnf("Could not load stored credentials: %v", err)
		return nil
	}

	return creds
}

// SaveCredentials validates and persists credentials without connecting.
func (s *Service) SaveCredentials(creds Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	if err := s.store.SetCredentials(&creds); err != nil {
		return errors.Errorf("could not save credentials: %v", err)
	}

	s.mtx.Lock()
	c := creds
	s.cached = &c
	s.mtx.Unlock()

	return nil
}

// LoadCredentials returns the persisted credentials, nil when none are
// stored.
func (s *Service) LoadCredentials() (*Credentials, error) {
	return s.store.GetCredentials()
}

// ForgetCredentials drops the persisted credentials and the in-memory
// copy of the last used ones. An established connection stays up.
func (s *Service) ForgetCredentials() error {
	if err := s.store.SetCredentials(nil); err != nil {
		return errors.Errorf("could not clear credentials: %v", err)
	}

	s.mtx.Lock()
	s.cached = nil
	s.mtx.Unlock()

	return nil
}

// Config returns the cached access-point configuration.
func (s *Service) Config() AccessPointConfig {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.ap
}

// SetConfig validates, persists and caches the access-point
// configuration. It takes effect on the next switch into an access-point
// mode.
func (s *Service) SetConfig(config AccessPointConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	config = config.withDefaults()

	if err := s.store.SetAccessPointConfig(&config); err != nil {
		return errors.Errorf("could not save access point configuration: %v", err)
	}

	s.mtx.Lock()
	s.ap = config
	s.mtx.Unlock()

	return nil
}

// Status returns a snapshot of the current state. It is cheap, never
// blocks on the radio and is meant to be polled.
func (s *Service) Status() Status {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.statusLocked()
}

func (s *Service) statusLocked() Status {
	return Status{
		Mode:             s.mode,
		Connected:        s.station == stationConnected,
		Connecting:       s.station == stationConnecting,
		Provisioning:     s.sess.active(),
		Addr:             s.addr,
		DisconnectReason: s.reason,
		LastError:        s.lastErr,
	}
}

// Subscribe registers a listener on the event bus and returns a cancel
// function. Listeners run synchronously on the emitting goroutine, in
// subscription order, and must not block.
func (s *Service) Subscribe(fn Listener) func() {
	id := s.bus.subscribe(fn)

	return func() {
		s.bus.unsubscribe(id)
	}
}

func (s *Service) newEventLocked(kind EventKind) Event {
	return Event{Kind: kind, Status: s.statusLocked()}
}

func (s *Service) publish(evs ...Event) {
	for _, ev := range evs {
		s.bus.publish(ev)
	}
}

func (s *Service) notificationLoop() {
	defer s.wg.Done()

	notifications := s.driver.Notifications()

	for {
		select {
		case n, ok := <-notifications:
			if !ok {
				return
			}

			s.handleNotification(n)
		case <-s.quit:
			return
		}
	}
}

func (s *Service) handleNotification(n Notification) {
	switch n := n.(type) {
	case LinkUp:
		s.handleLinkUp(n)
	case LinkDown:
		s.handleLinkDown(n)
	case ProvisioningCredentials:
		s.handleProvisioningCredentials(n)
	case ProvisioningAckSent:
		s.handleProvisioningAck()
	default:
		s.log.Warnf("Ignoring unknown notification %T", n)
	}
}

func (s *Service) handleLinkUp(n LinkUp) {
	s.mtx.Lock()

	s.station = stationConnected
	s.addr = n.Addr
	s.reason = 0
	s.lastErr = nil
	s.manual = false

	evs := []Event{s.newEventLocked(EventConnected)}
	evs = append(evs, s.completePendingLocked()...)

	s.mtx.Unlock()

	s.log.Infof("Connected with address %v", n.Addr)

	s.publish(evs...)
}

func (s *Service) handleLinkDown(n LinkDown) {
	s.mtx.Lock()

	wasConnecting := s.station == stationConnecting

	// The manual flag is consumed by exactly one link-down.
	manual := s.manual
	s.manual = false

	suppressed := manual && n.Reason == ReasonAssocLeave

	if suppressed && wasConnecting {
		// The link-down belongs to the association this attempt tore
		// down; the attempt itself is still in flight.
	} else {
		s.station = stationIdle
		s.addr = netip.Addr{}
	}

	var evs []Event

	if suppressed {
		s.log.Debugf("Ignoring link-down caused by own disconnect")

		evs = append(evs, s.newEventLocked(EventDisconnected))
	} else {
		s.reason = n.Reason

		if wasConnecting {
			s.lastErr = errorForReason(n.Reason)
		}

		ev := s.newEventLocked(EventDisconnected)
		ev.Reason = n.Reason
		evs = append(evs, ev)

		if wasConnecting {
			s.log.Infof("Connection failed: %v", s.lastErr)

			fev := s.newEventLocked(EventConnectionFailed)
			fev.Reason = n.Reason
			fev.Err = s.lastErr
			evs = append(evs, fev)

			evs = append(evs, s.failPendingLocked(s.lastErr)...)
		} else {
			s.log.Infof("Disconnected: %v", n.Reason)
		}
	}

	s.mtx.Unlock()

	s.publish(evs...)
}
