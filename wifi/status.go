package wifi

import "net/netip"

// stationState is the single tagged value tracking the station role, so
// that connected and connecting can never both hold.
type stationState int

const (
	stationIdle stationState = iota
	stationConnecting
	stationConnected
)

// Status is a point-in-time snapshot of the connection and provisioning
// state. Reading it has no side effects and never touches the radio.
type Status struct {
	// Mode is the current operating mode.
	Mode Mode
	// Connected reports an established station link.
	Connected bool
	// Connecting reports a connection attempt in flight.
	Connecting bool
	// Provisioning reports an active provisioning session.
	Provisioning bool
	// Addr is the address assigned to the station link, the zero value
	// while disconnected.
	Addr netip.Addr
	// DisconnectReason is the reason of the last unrequested
	// disconnect, zero if none was recorded.
	DisconnectReason Reason
	// LastError is the most recent asynchronous failure, nil after a
	// successful connection.
	LastError error
}
