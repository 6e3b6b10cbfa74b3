package wifi

import (
	"github.com/go-errors/errors"
	"github.com/larkhq/larkd/wifi/wpa"
	"net"
	"net/netip"
	"sync"
	"time"
)

const scanTimeout = 10 * time.Second

// check WpaDriver compliance to its interface during compile time
var _ Driver = (*WpaDriver)(nil)

type WpaDriverConfig struct {
	Interface string
	Logger    Logger
}

// WpaDriver drives a wpa_supplicant managed radio. It only offers the
// station role; access point modes need hostapd and are rejected.
// Credentials arrive through a push-button WPS exchange, which stands in
// for the provisioning listener.
type WpaDriver struct {
	log           Logger
	ifname        string
	wpa           *wpa.Wpa
	notifications chan Notification

	mtx          sync.Mutex
	busReady     bool
	started      bool
	iface        *wpa.Interface
	station      *Credentials
	props        *wpa.PropertiesChangedClient
	creds        *wpa.WpsCredentialsClient
	events       *wpa.WpsEventClient
	provisioning bool
	quit         chan struct{}
	wg           sync.WaitGroup
}

func NewWpaDriver(config *WpaDriverConfig) *WpaDriver {
	d := &WpaDriver{
		ifname:        config.Interface,
		wpa:           wpa.New(),
		notifications: make(chan Notification, 8),
	}

	if config.Logger != nil {
		d.log = config.Logger
	} else {
		d.log = noopLogger{}
	}

	return d
}

func (d *WpaDriver) Start() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.started {
		return nil
	}

	if !d.busReady {
		if err := d.wpa.Start(); err != nil {
			return err
		}

		d.busReady = true
	}

	iface, err := d.wpa.GetInterface(d.ifname)
	if err != nil {
		return errors.Errorf("could not find interface %v: %v", d.ifname, err)
	}

	props, err := iface.PropertiesChanged()
	if err != nil {
		return err
	}

	creds, err := iface.WpsCredentials()
	if err != nil {
		props.Cancel()
		return err
	}

	events, err := iface.WpsEvents()
	if err != nil {
		props.Cancel()
		creds.Cancel()
		return err
	}

	d.iface = iface
	d.props = props
	d.creds = creds
	d.events = events
	d.quit = make(chan struct{})
	d.started = true

	d.wg.Add(1)
	go d.watch(props, creds, events, d.quit)

	d.log.Infof("Watching %v", d.ifname)

	return nil
}

// Stop quiets the radio and drops all subscriptions. The bus connection
// stays open so the driver can be started again.
func (d *WpaDriver) Stop() error {
	d.mtx.Lock()

	if !d.started {
		d.mtx.Unlock()
		return nil
	}

	if d.provisioning {
		if err := d.iface.WpsCancel(); err != nil {
			d.log.Warnf("Could not cancel wps: %v", err)
		}

		d.provisioning = false
	}

	if err := d.iface.Disconnect(); err != nil {
		d.log.Debugf("Could not disconnect: %v", err)
	}

	if err := d.iface.RemoveAllNetworks(); err != nil {
		d.log.Debugf("Could not remove networks: %v", err)
	}

	d.props.Cancel()
	d.creds.Cancel()
	d.events.Cancel()

	close(d.quit)

	d.started = false
	d.iface = nil

	d.mtx.Unlock()

	d.wg.Wait()

	return nil
}

func (d *WpaDriver) SetMode(mode Mode) error {
	if mode.hasAccessPoint() {
		return errors.Errorf("%v does not support access point modes", d.ifname)
	}

	return nil
}

func (d *WpaDriver) ConfigureStation(creds Credentials) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	c := creds
	d.station = &c

	return nil
}

func (d *WpaDriver) ConfigureAccessPoint(config AccessPointConfig) error {
	return errors.Errorf("%v does not support access point modes", d.ifname)
}

func (d *WpaDriver) Connect() error {
	d.mtx.Lock()
	iface := d.iface
	station := d.station
	d.mtx.Unlock()

	if iface == nil {
		return errors.Errorf("radio is not started")
	}

	if station == nil {
		return errors.Errorf("no station network configured")
	}

	if err := iface.RemoveAllNetworks(); err != nil {
		return err
	}

	network, err := iface.AddNetwork(station.Ssid, station.Psk)
	if err != nil {
		return err
	}

	if err := iface.SelectNetwork(network); err != nil {
		return err
	}

	return nil
}

func (d *WpaDriver) Disconnect() error {
	d.mtx.Lock()
	iface := d.iface
	d.mtx.Unlock()

	if iface == nil {
		return errors.Errorf("radio is not started")
	}

	return iface.Disconnect()
}

// StartScan kicks off an active scan and waits for the supplicant to
// report completion, so ScanResults afterwards sees a fresh list.
func (d *WpaDriver) StartScan() error {
	d.mtx.Lock()
	iface := d.iface
	d.mtx.Unlock()

	if iface == nil {
		return errors.Errorf("radio is not started")
	}

	done, err := iface.ScanDone()
	if err != nil {
		return err
	}
	defer done.Cancel()

	if err := iface.Scan(); err != nil {
		return err
	}

	select {
	case <-done.ScanDone:
	case <-time.After(scanTimeout):
		d.log.Debugf("Scan did not complete within %v", scanTimeout)
	}

	return nil
}

func (d *WpaDriver) ScanResults() ([]ScanRecord, error) {
	d.mtx.Lock()
	iface := d.iface
	d.mtx.Unlock()

	if iface == nil {
		return nil, errors.Errorf("radio is not started")
	}

	bsss, err := iface.BSSs()
	if err != nil {
		return nil, err
	}

	var records []ScanRecord

	for _, bss := range bsss {
		b, err := bss.GetAll()
		if err != nil {
			d.log.Debugf("Skipping %v: %v", bss, err)
			continue
		}

		records = append(records, scanRecord(b))
	}

	return records, nil
}

func (d *WpaDriver) StartProvisioningListener() error {
	d.mtx.Lock()
	iface := d.iface
	d.mtx.Unlock()

	if iface == nil {
		return errors.Errorf("radio is not started")
	}

	if err := iface.SetProcessCredentials(true); err != nil {
		return err
	}

	if err := iface.WpsStart(); err != nil {
		return err
	}

	d.mtx.Lock()
	d.provisioning = true
	d.mtx.Unlock()

	return nil
}

func (d *WpaDriver) StopProvisioningListener() error {
	d.mtx.Lock()
	iface := d.iface
	active := d.provisioning
	d.provisioning = false
	d.mtx.Unlock()

	if !active || iface == nil {
		return nil
	}

	return iface.WpsCancel()
}

// SetProvisioningTimeout records the requested timeout. The WPS walk
// time is fixed by the protocol, so the value cannot be applied here.
func (d *WpaDriver) SetProvisioningTimeout(seconds int) error {
	d.log.Debugf("Ignoring provisioning timeout of %ds, wps fixes the walk time", seconds)

	return nil
}

func (d *WpaDriver) Notifications() <-chan Notification {
	return d.notifications
}

func (d *WpaDriver) notify(n Notification, quit chan struct{}) {
	select {
	case d.notifications <- n:
	case <-quit:
	}
}

func (d *WpaDriver) watch(props *wpa.PropertiesChangedClient, creds *wpa.WpsCredentialsClient, events *wpa.WpsEventClient, quit chan struct{}) {
	defer d.wg.Done()

	var lastState string
	var lastReason int32

	for {
		select {
		case p, ok := <-props.Properties:
			if !ok {
				return
			}

			if val, ok := p["DisconnectReason"]; ok {
				if reason, ok := val.Value().(int32); ok {
					lastReason = reason
				}
			}

			if val, ok := p["State"]; ok {
				state, _ := val.Value().(string)

				if state == lastState {
					continue
				}

				d.log.Debugf("Supplicant state %v", state)

				switch state {
				case "completed":
					d.notify(LinkUp{Addr: interfaceAddr(d.ifname)}, quit)
				case "disconnected":
					d.notify(LinkDown{Reason: mapDisconnectReason(lastReason)}, quit)
					lastReason = 0
				}

				lastState = state
			}
		case c, ok := <-creds.Credentials:
			if !ok {
				return
			}

			d.notify(ProvisioningCredentials{
				Creds: Credentials{Ssid: c.Ssid, Psk: c.Key},
			}, quit)
		case name, ok := <-events.Events:
			if !ok {
				return
			}

			d.log.Debugf("Wps event %v", name)

			if name == "success" {
				d.notify(ProvisioningAckSent{}, quit)
			}
		case <-quit:
			return
		}
	}
}

// mapDisconnectReason turns the supplicant's signed reason code into a
// Reason. Negative codes report locally generated disconnects.
func mapDisconnectReason(raw int32) Reason {
	if raw < 0 {
		return ReasonAssocLeave
	}

	if raw == 0 {
		return ReasonUnspecified
	}

	return Reason(raw)
}

func scanRecord(b *wpa.Bss) ScanRecord {
	record := ScanRecord{
		Ssid:    b.Ssid,
		Rssi:    b.Signal,
		Channel: frequencyToChannel(b.Frequency),
		Auth:    authModeOf(b),
		Hidden:  b.Ssid == "",
	}

	copy(record.Bssid[:], b.Bssid)

	return record
}

func frequencyToChannel(freq int) int {
	switch {
	case freq == 2484:
		return 14
	case freq >= 2412 && freq < 2484:
		return (freq - 2407) / 5
	case freq >= 5000 && freq < 6000:
		return (freq - 5000) / 5
	default:
		return 0
	}
}

func authModeOf(b *wpa.Bss) AuthMode {
	rsnSuites := suiteSet(b.RsnKeyMgmt)
	wpaSuites := suiteSet(b.WpaKeyMgmt)

	switch {
	case rsnSuites["sae"]:
		return AuthWpa3Psk
	case rsnSuites["wpa-eap"] || wpaSuites["wpa-eap"]:
		return AuthWpa2Enterprise
	case rsnSuites["wpa-psk"] && wpaSuites["wpa-psk"]:
		return AuthWpaWpa2Psk
	case rsnSuites["wpa-psk"]:
		return AuthWpa2Psk
	case wpaSuites["wpa-psk"]:
		return AuthWpaPsk
	case b.Privacy:
		return AuthWep
	default:
		return AuthOpen
	}
}

func suiteSet(suites []string) map[string]bool {
	set := make(map[string]bool, len(suites))

	for _, suite := range suites {
		set[suite] = true
	}

	return set
}

// interfaceAddr returns the first IPv4 address of the interface, or the
// zero Addr when none is assigned yet.
func interfaceAddr(name string) netip.Addr {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return netip.Addr{}
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return netip.Addr{}
	}

	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}

		if ip4 := ipNet.IP.To4(); ip4 != nil {
			if addr, ok := netip.AddrFromSlice(ip4); ok {
				return addr
			}
		}
	}

	return netip.Addr{}
}
