package larkdb

import (
	"github.com/go-errors/errors"
	"github.com/larkhq/larkd/wifi"
)

// SetAccessPointConfig persists the access point configuration. Passing
// nil clears it.
func (db *DB) SetAccessPointConfig(config *wifi.AccessPointConfig) error {
	if err := db.setJSON(settingsBucket, accessPointKey, config); err != nil {
		return errors.Errorf("could not save access point configuration: %v", err)
	}

	return nil
}

// GetAccessPointConfig returns the persisted access point configuration,
// nil when none is stored.
func (db *DB) GetAccessPointConfig() (*wifi.AccessPointConfig, error) {
	config := &wifi.AccessPointConfig{}

	found, err := db.getJSON(settingsBucket, accessPointKey, config)
	if err != nil {
		return nil, errors.Errorf("could not load access point configuration: %v", err)
	}

	if !found {
		return nil, nil
	}

	return config, nil
}

// SetName persists the device name shown to companion applications.
func (db *DB) SetName(name string) error {
	if err := db.setJSON(settingsBucket, nameKey, name); err != nil {
		return errors.Errorf("could not save name: %v", err)
	}

	return nil
}

// GetName returns the persisted device name, empty when none is stored.
func (db *DB) GetName() (string, error) {
	var name string

	found, err := db.getJSON(settingsBucket, nameKey, &name)
	if err != nil {
		return "", errors.Errorf("could not load name: %v", err)
	}

	if !found {
		return "", nil
	}

	return name, nil
}
