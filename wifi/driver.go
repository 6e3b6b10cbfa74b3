package wifi

import "net/netip"

// Driver is the radio backend. Command methods are synchronous and only
// report acceptance; outcomes arrive as Notifications. Implementations
// must keep the notification channel open for their whole lifetime.
type Driver interface {
	// Start brings the radio up in the previously set mode.
	Start() error
	// Stop powers the radio down.
	Stop() error
	// SetMode reconfigures the role of the radio. Applied on Start.
	SetMode(mode Mode) error
	// ConfigureStation sets the network the station role will join.
	ConfigureStation(creds Credentials) error
	// ConfigureAccessPoint sets the network the access-point role hosts.
	ConfigureAccessPoint(config AccessPointConfig) error
	// Connect begins association with the configured station network.
	Connect() error
	// Disconnect drops the current association.
	Disconnect() error
	// StartScan triggers a scan and blocks until results are available.
	StartScan() error
	// ScanResults returns the records gathered by the last scan.
	ScanResults() ([]ScanRecord, error)
	// StartProvisioningListener begins listening for credentials pushed
	// by a companion application.
	StartProvisioningListener() error
	// StopProvisioningListener tears the listener down. Stopping an
	// inactive listener is a no-op.
	StopProvisioningListener() error
	// SetProvisioningTimeout sets the listener timeout in seconds.
	SetProvisioningTimeout(seconds int) error
	// Notifications returns the channel asynchronous radio events are
	// delivered on.
	Notifications() <-chan Notification
}

// ScanRecord is one raw scan result as reported by the radio.
type ScanRecord struct {
	Ssid    string
	Bssid   [6]byte
	Rssi    int
	Channel int
	Auth    AuthMode
	Hidden  bool
}

// Notification is one asynchronous radio event.
type Notification interface {
	isNotification()
}

// LinkUp reports the station role acquired network connectivity.
type LinkUp struct {
	Addr netip.Addr
}

// LinkDown reports the station role lost network connectivity.
type LinkDown struct {
	Reason Reason
}

// ProvisioningCredentials reports credentials received from a companion
// application through the provisioning listener.
type ProvisioningCredentials struct {
	Creds Credentials
}

// ProvisioningAckSent reports that the companion application has been
// notified of a successful connection.
type ProvisioningAckSent struct{}

func (LinkUp) isNotification()                  {}
func (LinkDown) isNotification()                {}
func (ProvisioningCredentials) isNotification() {}
func (ProvisioningAckSent) isNotification()     {}
