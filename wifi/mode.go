package wifi

import "github.com/go-errors/errors"

// Mode is the operating mode of the radio.
type Mode int

const (
	// ModeOff keeps the radio powered down.
	ModeOff Mode = iota
	// ModeStation joins other networks as a client.
	ModeStation
	// ModeAccessPoint hosts a network for other clients.
	ModeAccessPoint
	// ModeDual runs the station and access-point roles at the same time.
	ModeDual
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeStation:
		return "station"
	case ModeAccessPoint:
		return "access-point"
	case ModeDual:
		return "dual"
	default:
		return "unknown"
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}

	*m = mode

	return nil
}

// ParseMode converts a mode name as produced by String back into a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "off":
		return ModeOff, nil
	case "station":
		return ModeStation, nil
	case "access-point":
		return ModeAccessPoint, nil
	case "dual":
		return ModeDual, nil
	default:
		return ModeOff, errors.Errorf("unknown mode %v", name)
	}
}

func (m Mode) hasStation() bool {
	return m == ModeStation || m == ModeDual
}

func (m Mode) hasAccessPoint() bool {
	return m == ModeAccessPoint || m == ModeDual
}

// AuthMode is the authentication scheme of a network.
type AuthMode int

const (
	AuthOpen AuthMode = iota
	AuthWep
	AuthWpaPsk
	AuthWpa2Psk
	AuthWpaWpa2Psk
	AuthWpa2Enterprise
	AuthWpa3Psk
)

func (a AuthMode) String() string {
	switch a {
	case AuthOpen:
		return "open"
	case AuthWep:
		return "wep"
	case AuthWpaPsk:
		return "wpa-psk"
	case AuthWpa2Psk:
		return "wpa2-psk"
	case AuthWpaWpa2Psk:
		return "wpa/wpa2-psk"
	case AuthWpa2Enterprise:
		return "wpa2-enterprise"
	case AuthWpa3Psk:
		return "wpa3-psk"
	default:
		return "unknown"
	}
}

func (a AuthMode) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AuthMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "open":
		*a = AuthOpen
	case "wep":
		*a = AuthWep
	case "wpa-psk":
		*a = AuthWpaPsk
	case "wpa2-psk":
		*a = AuthWpa2Psk
	case "wpa/wpa2-psk":
		*a = AuthWpaWpa2Psk
	case "wpa2-enterprise":
		*a = AuthWpa2Enterprise
	case "wpa3-psk":
		*a = AuthWpa3Psk
	default:
		return errors.Errorf("unknown auth mode %v", string(text))
	}

	return nil
}
