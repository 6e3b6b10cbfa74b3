package wpa

import (
	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

// WpsCredentials are the network credentials received over a WPS
// exchange.
type WpsCredentials struct {
	Ssid  string
	Key   string
	Bssid []byte
}

// SetProcessCredentials controls whether received WPS credentials are
// delivered through the Credentials signal.
func (i *Interface) SetProcessCredentials(process bool) error {
	err := i.obj.SetProperty("fi.w1.wpa_supplicant1.Interface.WPS.ProcessCredentials", dbus.MakeVariant(process))
	if err != nil {
		return errors.Errorf("could not set ProcessCredentials: %v", err)
	}

	return nil
}

// WpsStart begins a push-button WPS exchange in the enrollee role.
func (i *Interface) WpsStart() error {
	call := i.obj.Call("fi.w1.wpa_supplicant1.Interface.WPS.Start", 0, map[string]interface{}{
		"Role": "enrollee",
		"Type": "pbc",
	})
	if call.Err != nil {
		return errors.Errorf("could not start wps: %v", call.Err)
	}

	return nil
}

func (i *Interface) WpsCancel() error {
	call := i.obj.Call("fi.w1.wpa_supplicant1.Interface.WPS.Cancel", 0)
	if call.Err != nil {
		return errors.Errorf("could not cancel wps: %v", call.Err)
	}

	return nil
}

type WpsCredentialsClient struct {
	Credentials <-chan *WpsCredentials
	Cancel      func()
}

func (i *Interface) WpsCredentials() (*WpsCredentialsClient, error) {
	credsChan := make(chan *WpsCredentials, 4)
	signalChan := make(chan *dbus.Signal, 4)

	client := &WpsCredentialsClient{
		Credentials: credsChan,
		Cancel: func() {
			i.wpa.conn.RemoveSignal(signalChan)

			_ = i.wpa.conn.BusObject().RemoveMatchSignal("fi.w1.wpa_supplicant1.Interface.WPS", "Credentials", dbus.WithMatchObjectPath(i.obj.Path()))

			close(signalChan)
		},
	}

	go func() {
		defer close(credsChan)

		for signal := range signalChan {
			if signal.Name != "fi.w1.wpa_supplicant1.Interface.WPS.Credentials" || signal.Path != i.obj.Path() {
				continue
			}

			props, ok := signal.Body[0].(map[string]dbus.Variant)
			if !ok {
				continue
			}

			creds := &WpsCredentials{}

			if val, ok := props["SSID"]; ok {
				if ssid, ok := val.Value().([]byte); ok {
					creds.Ssid = string(ssid)
				}
			}

			if val, ok := props["Key"]; ok {
				if key, ok := val.Value().([]byte); ok {
					creds.Key = string(key)
				}
			}

			if val, ok := props["BSSID"]; ok {
				if bssid, ok := val.Value().([]byte); ok {
					creds.Bssid = bssid
				}
			}

			credsChan <- creds
		}
	}()

	i.wpa.conn.Signal(signalChan)

	call := i.wpa.conn.BusObject().AddMatchSignal("fi.w1.wpa_supplicant1.Interface.WPS", "Credentials", dbus.WithMatchObjectPath(i.obj.Path()))
	if call.Err != nil {
		client.Cancel()
		return nil, errors.Errorf("could not add signal: %v", call.Err)
	}

	return client, nil
}

type WpsEventClient struct {
	// Events are WPS outcome names such as "success", "fail" or
	// "pbc-overlap".
	Events <-chan string
	Cancel func()
}

func (i *Interface) WpsEvents() (*WpsEventClient, error) {
	eventChan := make(chan string, 4)
	signalChan := make(chan *dbus.Signal, 4)

	client := &WpsEventClient{
		Events: eventChan,
		Cancel: func() {
			i.wpa.conn.RemoveSignal(signalChan)

			_ = i.wpa.conn.BusObject().RemoveMatchSignal("fi.w1.wpa_supplicant1.Interface.WPS", "Event", dbus.WithMatchObjectPath(i.obj.Path()))

			close(signalChan)
		},
	}

	go func() {
		defer close(eventChan)

		for signal := range signalChan {
			if signal.Name != "fi.w1.wpa_supplicant1.Interface.WPS.Event" || signal.Path != i.obj.Path() {
				continue
			}

			if name, ok := signal.Body[0].(string); ok {
				eventChan <- name
			}
		}
	}()

	i.wpa.conn.Signal(signalChan)

	call := i.wpa.conn.BusObject().AddMatchSignal("fi.w1.wpa_supplicant1.Interface.WPS", "Event", dbus.WithMatchObjectPath(i.obj.Path()))
	if call.Err != nil {
		client.Cancel()
		return nil, errors.Errorf("could not add signal: %v", call.Err)
	}

	return client, nil
}
