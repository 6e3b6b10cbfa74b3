package wifi

import "fmt"

const (
	maxSsidLen = 32
	minPskLen  = 8
	maxPskLen  = 63
	// A 64 character psk is taken as the hex form of the pre-shared key
	// rather than a passphrase.
	rawPskLen = 64
)

// Credentials identify a network in station mode.
type Credentials struct {
	Ssid string `json:"ssid"`
	Psk  string `json:"psk"`
}

// Validate checks the credentials against the limits of the radio.
// An empty psk means an open network.
func (c Credentials) Validate() error {
	if len(c.Ssid) == 0 || len(c.Ssid) > maxSsidLen {
		return fmt.Errorf("%w: ssid must be 1 to %d bytes, got %d",
			ErrInvalidCredentials, maxSsidLen, len(c.Ssid))
	}

	switch l := len(c.Psk); {
	case l == 0:
	case l == rawPskLen:
		if !isHex(c.Psk) {
			return fmt.Errorf("%w: a %d character psk must be hex encoded",
				ErrInvalidCredentials, rawPskLen)
		}
	case l >= minPskLen && l <= maxPskLen:
	default:
		return fmt.Errorf("%w: psk must be empty, %d to %d bytes or %d hex characters, got %d",
			ErrInvalidCredentials, minPskLen, maxPskLen, rawPskLen, l)
	}

	return nil
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}

	return true
}

// AccessPointConfig shapes the network hosted in an access-point mode.
type AccessPointConfig struct {
	Ssid       string   `json:"ssid"`
	Psk        string   `json:"psk,omitempty"`
	Channel    int      `json:"channel"`
	Auth       AuthMode `json:"auth"`
	MaxClients int      `json:"maxClients"`
}

// Validate checks the access-point configuration against the limits of
// the radio.
func (c AccessPointConfig) Validate() error {
	if len(c.Ssid) == 0 || len(c.Ssid) > maxSsidLen {
		return fmt.Errorf("%w: access point ssid must be 1 to %d bytes, got %d",
			ErrInvalidCredentials, maxSsidLen, len(c.Ssid))
	}

	if c.Auth != AuthOpen && c.Psk == "" {
		return fmt.Errorf("%w: a %v access point requires a psk",
			ErrInvalidCredentials, c.Auth)
	}

	if c.Psk != "" {
		if err := (Credentials{Ssid: c.Ssid, Psk: c.Psk}).Validate(); err != nil {
			return err
		}
	}

	if c.Channel < 0 || c.Channel > 14 {
		return fmt.Errorf("%w: channel %d is out of range",
			ErrInvalidCredentials, c.Channel)
	}

	return nil
}

func (c AccessPointConfig) withDefaults() AccessPointConfig {
	if c.Channel == 0 {
		c.Channel = 1
	}

	if c.MaxClients == 0 {
		c.MaxClients = 4
	}

	return c
}
