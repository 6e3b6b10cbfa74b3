package wifi

import (
	"errors"
	"fmt"
)

// Stable error categories callers can match with errors.Is. Details are
// attached by wrapping, the category is always preserved.
var (
	// ErrInvalidCredentials rejects credentials failing validation. The
	// radio and the store are never touched in that case.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidState rejects an operation not valid in the current
	// mode or session state.
	ErrInvalidState = errors.New("invalid state")
	// ErrDriver wraps a failure reported by the radio driver.
	ErrDriver = errors.New("radio driver failure")
	// ErrNotFound signals that no credentials are cached or stored.
	ErrNotFound = errors.New("no credentials available")
	// ErrTimeout signals that a connection or provisioning wait
	// exceeded its bound.
	ErrTimeout = errors.New("timed out")
	// ErrCredentialsRejected signals the network refused the psk.
	ErrCredentialsRejected = errors.New("credentials rejected by network")
	// ErrNetworkNotFound signals no access point with the configured
	// ssid was in reach.
	ErrNetworkNotFound = errors.New("no such network")
)

func driverError(err error) error {
	return fmt.Errorf("%w: %v", ErrDriver, err)
}

// Reason is a disconnect reason code as reported with link-down
// notifications. Codes follow 802.11 numbering, including the extended
// range used by embedded radios. Zero means no reason recorded.
type Reason int

const (
	ReasonUnspecified             Reason = 1
	ReasonAuthExpire              Reason = 2
	ReasonAssocLeave              Reason = 8
	ReasonFourWayHandshakeTimeout Reason = 15
	ReasonNoApFound               Reason = 201
	ReasonAuthFail                Reason = 202
	ReasonHandshakeTimeout        Reason = 204
)

func (r Reason) String() string {
	switch r {
	case Reason(0):
		return "none"
	case ReasonUnspecified:
		return "unspecified"
	case ReasonAuthExpire:
		return "auth expired"
	case ReasonAssocLeave:
		return "association left"
	case ReasonFourWayHandshakeTimeout:
		return "4-way handshake timeout"
	case ReasonNoApFound:
		return "no access point found"
	case ReasonAuthFail:
		return "auth failed"
	case ReasonHandshakeTimeout:
		return "handshake timeout"
	default:
		return fmt.Sprintf("reason %d", int(r))
	}
}

// errorForReason maps the disconnect reason of a failed connection
// attempt onto a stable error category.
func errorForReason(r Reason) error {
	switch r {
	case ReasonAuthFail:
		return ErrCredentialsRejected
	case ReasonAuthExpire, ReasonFourWayHandshakeTimeout, ReasonHandshakeTimeout:
		return fmt.Errorf("%w: %v", ErrTimeout, r)
	case ReasonNoApFound:
		return ErrNetworkNotFound
	default:
		return fmt.Errorf("%w: disconnected with %v", ErrDriver, r)
	}
}
