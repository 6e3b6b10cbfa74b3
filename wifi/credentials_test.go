package wifi

import (
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestCredentialsValidate(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		valid bool
	}{
		{name: "open network", creds: Credentials{Ssid: "homebase"}, valid: true},
		{name: "min psk", creds: Credentials{Ssid: "homebase", Psk: "12345678"}, valid: true},
		{name: "max psk", creds: Credentials{Ssid: "homebase", Psk: strings.Repeat("x", 63)}, valid: true},
		{name: "raw hex psk", creds: Credentials{Ssid: "homebase", Psk: strings.Repeat("2F", 32)}, valid: true},
		{name: "max ssid", creds: Credentials{Ssid: strings.Repeat("s", 32)}, valid: true},

		{name: "empty ssid", creds: Credentials{Psk: "12345678"}},
		{name: "long ssid", creds: Credentials{Ssid: strings.Repeat("s", 33), Psk: "12345678"}},
		{name: "short psk", creds: Credentials{Ssid: "homebase", Psk: "1234567"}},
		{name: "one char psk", creds: Credentials{Ssid: "homebase", Psk: "x"}},
		{name: "long psk", creds: Credentials{Ssid: "homebase", Psk: strings.Repeat("x", 65)}},
		{name: "raw psk not hex", creds: Credentials{Ssid: "homebase", Psk: strings.Repeat("g", 64)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()

			if tt.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidCredentials)
			}
		})
	}
}

func TestAccessPointConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		config AccessPointConfig
		valid  bool
	}{
		{name: "open", config: AccessPointConfig{Ssid: "lark-ap"}, valid: true},
		{name: "secured", config: AccessPointConfig{Ssid: "lark-ap", Psk: "bootstrap", Auth: AuthWpa2Psk}, valid: true},
		{name: "channel eleven", config: AccessPointConfig{Ssid: "lark-ap", Channel: 11}, valid: true},

		{name: "empty ssid", config: AccessPointConfig{}},
		{name: "secured without psk", config: AccessPointConfig{Ssid: "lark-ap", Auth: AuthWpa2Psk}},
		{name: "short psk", config: AccessPointConfig{Ssid: "lark-ap", Psk: "abc", Auth: AuthWpa2Psk}},
		{name: "channel out of range", config: AccessPointConfig{Ssid: "lark-ap", Channel: 15}},
		{name: "negative channel", config: AccessPointConfig{Ssid: "lark-ap", Channel: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			if tt.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidCredentials)
			}
		})
	}
}

func TestAccessPointConfigDefaults(t *testing.T) {
	config := AccessPointConfig{Ssid: "lark-ap"}.withDefaults()

	require.Equal(t, 1, config.Channel)
	require.Equal(t, 4, config.MaxClients)

	config = AccessPointConfig{Ssid: "lark-ap", Channel: 6, MaxClients: 2}.withDefaults()

	require.Equal(t, 6, config.Channel)
	require.Equal(t, 2, config.MaxClients)
}
