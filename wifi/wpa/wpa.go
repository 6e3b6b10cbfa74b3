// Package wpa binds the parts of the wpa_supplicant D-Bus API the radio
// driver needs: interface control, scanning, network selection and the
// WPS credential hand-over.
package wpa

import (
	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

type Wpa struct {
	conn *dbus.Conn
}

func New() *Wpa {
	return &Wpa{}
}

// Start opens a private connection to the system bus.
func (w *Wpa) Start() error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return errors.Errorf("could not connect to system bus: %v", err)
	}

	w.conn = conn

	return nil
}

func (w *Wpa) Stop() error {
	if w.conn == nil {
		return nil
	}

	if err := w.conn.Close(); err != nil {
		return errors.Errorf("could not close bus connection: %v", err)
	}

	w.conn = nil

	return nil
}

// GetInterface looks up a network interface wpa_supplicant already
// manages.
func (w *Wpa) GetInterface(name string) (*Interface, error) {
	obj := w.conn.Object("fi.w1.wpa_supplicant1", "/fi/w1/wpa_supplicant1")

	call := obj.Call("fi.w1.wpa_supplicant1.GetInterface", 0, name)
	if call.Err != nil {
		return nil, errors.Errorf("could not get interface %v: %v", name, call.Err)
	}

	var objPath dbus.ObjectPath
	if err := call.Store(&objPath); err != nil {
		return nil, errors.Errorf("could not store value: %v", err)
	}

	return &Interface{
		wpa: w,
		obj: w.conn.Object("fi.w1.wpa_supplicant1", objPath),
	}, nil
}
