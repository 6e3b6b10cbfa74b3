package wpa

import (
	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

type BSS struct {
	obj dbus.BusObject
}

func (b *BSS) String() string {
	return string(b.obj.Path())
}

// Bss carries the properties of one scan result.
type Bss struct {
	Ssid      string
	Bssid     []byte
	Signal    int
	Frequency int
	Privacy   bool
	// Key management suites advertised in the RSN and WPA information
	// elements, such as "wpa-psk", "wpa-eap" or "sae".
	RsnKeyMgmt []string
	WpaKeyMgmt []string
}

func (b *BSS) GetAll() (*Bss, error) {
	call := b.obj.Call("org.freedesktop.DBus.Properties.GetAll", 0, "fi.w1.wpa_supplicant1.BSS")
	if call.Err != nil {
		return nil, errors.Errorf("could not get all properties: %v", call.Err)
	}

	props, ok := call.Body[0].(map[string]dbus.Variant)
	if !ok {
		return nil, errors.Errorf("could not convert output")
	}

	bss := Bss{}

	if val, ok := props["SSID"]; ok {
		if ssid, ok := val.Value().([]byte); ok {
			bss.Ssid = string(ssid)
		} else {
			return nil, errors.Errorf("could not convert SSID: %v", val)
		}
	} else {
		return nil, errors.Errorf("mandatory property SSID was missing")
	}

	if val, ok := props["BSSID"]; ok {
		if bssid, ok := val.Value().([]byte); ok {
			bss.Bssid = bssid
		} else {
			return nil, errors.Errorf("could not convert BSSID: %v", val)
		}
	} else {
		return nil, errors.Errorf("mandatory property BSSID was missing")
	}

	if val, ok := props["Signal"]; ok {
		if signal, ok := val.Value().(int16); ok {
			bss.Signal = int(signal)
		}
	}

	if val, ok := props["Frequency"]; ok {
		if frequency, ok := val.Value().(uint16); ok {
			bss.Frequency = int(frequency)
		}
	}

	if val, ok := props["Privacy"]; ok {
		if privacy, ok := val.Value().(bool); ok {
			bss.Privacy = privacy
		}
	}

	bss.RsnKeyMgmt = keyMgmt(props, "RSN")
	bss.WpaKeyMgmt = keyMgmt(props, "WPA")

	return &bss, nil
}

func keyMgmt(props map[string]dbus.Variant, name string) []string {
	val, ok := props[name]
	if !ok {
		return nil
	}

	ie, ok := val.Value().(map[string]dbus.Variant)
	if !ok {
		return nil
	}

	suites, ok := ie["KeyMgmt"].Value().([]string)
	if !ok {
		return nil
	}

	return suites
}
