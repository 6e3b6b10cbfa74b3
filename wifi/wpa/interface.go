package wpa

import (
	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

type Interface struct {
	wpa *Wpa
	obj dbus.BusObject
}

func (i *Interface) Scan() error {
	call := i.obj.Call("fi.w1.wpa_supplicant1.Interface.Scan", 0, map[string]interface{}{
		"Type": "active",
	})
	if call.Err != nil {
		return errors.Errorf("could not scan: %v", call.Err)
	}

	return nil
}

type ScanDoneClient struct {
	ScanDone <-chan bool
	Cancel   func()
}

func (i *Interface) ScanDone() (*ScanDoneClient, error) {
	doneChan := make(chan bool, 4)
	signalChan := make(chan *dbus.Signal, 4)

	client := &ScanDoneClient{
		ScanDone: doneChan,
		Cancel: func() {
			i.wpa.conn.RemoveSignal(signalChan)

			_ = i.wpa.conn.BusObject().RemoveMatchSignal("fi.w1.wpa_supplicant1.Interface", "ScanDone", dbus.WithMatchObjectPath(i.obj.Path()))

			close(signalChan)
		},
	}

	go func() {
		defer close(doneChan)

		for signal := range signalChan {
			if signal.Name != "fi.w1.wpa_supplicant1.Interface.ScanDone" || signal.Path != i.obj.Path() {
				continue
			}

			if success, ok := signal.Body[0].(bool); ok {
				doneChan <- success
			}
		}
	}()

	i.wpa.conn.Signal(signalChan)

	call := i.wpa.conn.BusObject().AddMatchSignal("fi.w1.wpa_supplicant1.Interface", "ScanDone", dbus.WithMatchObjectPath(i.obj.Path()))
	if call.Err != nil {
		client.Cancel()
		return nil, errors.Errorf("could not add signal: %v", call.Err)
	}

	return client, nil
}

type PropertiesChangedClient struct {
	Properties <-chan map[string]dbus.Variant
	Cancel     func()
}

// PropertiesChanged delivers property updates of the interface, notably
// State and DisconnectReason.
func (i *Interface) PropertiesChanged() (*PropertiesChangedClient, error) {
	propsChan := make(chan map[string]dbus.Variant, 4)
	signalChan := make(chan *dbus.Signal, 4)

	client := &PropertiesChangedClient{
		Properties: propsChan,
		Cancel: func() {
			i.wpa.conn.RemoveSignal(signalChan)

			_ = i.wpa.conn.BusObject().RemoveMatchSignal("fi.w1.wpa_supplicant1.Interface", "PropertiesChanged", dbus.WithMatchObjectPath(i.obj.Path()))

			close(signalChan)
		},
	}

	go func() {
		defer close(propsChan)

		for signal := range signalChan {
			if signal.Name != "fi.w1.wpa_supplicant1.Interface.PropertiesChanged" || signal.Path != i.obj.Path() {
				continue
			}

			if props, ok := signal.Body[0].(map[string]dbus.Variant); ok {
				propsChan <- props
			}
		}
	}()

	i.wpa.conn.Signal(signalChan)

	call := i.wpa.conn.BusObject().AddMatchSignal("fi.w1.wpa_supplicant1.Interface", "PropertiesChanged", dbus.WithMatchObjectPath(i.obj.Path()))
	if call.Err != nil {
		client.Cancel()
		return nil, errors.Errorf("could not add signal: %v", call.Err)
	}

	return client, nil
}

// State returns the supplicant state, such as "completed", "scanning" or
// "disconnected".
func (i *Interface) State() (string, error) {
	v, err := i.obj.GetProperty("fi.w1.wpa_supplicant1.Interface.State")
	if err != nil {
		return "", errors.Errorf("could not get state: %v", err)
	}

	state, ok := v.Value().(string)
	if !ok {
		return "", errors.Errorf("could not convert state: %v", v)
	}

	return state, nil
}

// DisconnectReason returns the IEEE 802.11 reason code of the most recent
// disassociation. Negative values report locally generated disconnects.
func (i *Interface) DisconnectReason() (int32, error) {
	v, err := i.obj.GetProperty("fi.w1.wpa_supplicant1.Interface.DisconnectReason")
	if err != nil {
		return 0, errors.Errorf("could not get disconnect reason: %v", err)
	}

	reason, ok := v.Value().(int32)
	if !ok {
		return 0, errors.Errorf("could not convert disconnect reason: %v", v)
	}

	return reason, nil
}

func (i *Interface) BSSs() ([]*BSS, error) {
	v, err := i.obj.GetProperty("fi.w1.wpa_supplicant1.Interface.BSSs")
	if err != nil {
		return nil, errors.Errorf("could not get bsss: %v", err)
	}

	objectPaths, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return nil, errors.Errorf("could not convert result: %v", v)
	}

	var bsss []*BSS

	for _, objectPath := range objectPaths {
		bsss = append(bsss, &BSS{
			obj: i.wpa.conn.Object("fi.w1.wpa_supplicant1", objectPath),
		})
	}

	return bsss, nil
}

func (i *Interface) AddNetwork(ssid string, psk string) (*Network, error) {
	args := map[string]interface{}{
		"ssid": ssid,
	}

	if psk != "" {
		args["psk"] = psk
	} else {
		args["key_mgmt"] = "NONE"
	}

	call := i.obj.Call("fi.w1.wpa_supplicant1.Interface.AddNetwork", 0, args)
	if call.Err != nil {
		return nil, errors.Errorf("could not add network: %v", call.Err)
	}

	var objPath dbus.ObjectPath
	if err := call.Store(&objPath); err != nil {
		return nil, errors.Errorf("could not store value: %v", err)
	}

	return &Network{
		wpa: i.wpa,
		obj: i.wpa.conn.Object("fi.w1.wpa_supplicant1", objPath),
	}, nil
}

// SelectNetwork makes the given network the only enabled one and starts
// association.
func (i *Interface) SelectNetwork(net *Network) error {
	call := i.obj.Call("fi.w1.wpa_supplicant1.Interface.SelectNetwork", 0, net.obj.Path())
	if call.Err != nil {
		return errors.Errorf("could not select network: %v", call.Err)
	}

	return nil
}

func (i *Interface) RemoveNetwork(net *Network) error {
	call := i.obj.Call("fi.w1.wpa_supplicant1.Interface.RemoveNetwork", 0, net.obj.Path())
	if call.Err != nil {
		return errors.Errorf("could not remove network: %v", call.Err)
	}

	return nil
}

func (i *Interface) RemoveAllNetworks() error {
	call := i.obj.Call("fi.w1.wpa_supplicant1.Interface.RemoveAllNetworks", 0)
	if call.Err != nil {
		return errors.Errorf("could not remove all networks: %v", call.Err)
	}

	return nil
}

func (i *Interface) Disconnect() error {
	call := i.obj.Call("fi.w1.wpa_supplicant1.Interface.Disconnect", 0)
	if call.Err != nil {
		return errors.Errorf("could not disconnect: %v", call.Err)
	}

	return nil
}
