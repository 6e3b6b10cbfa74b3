package larkdb

import (
	"github.com/go-errors/errors"
	"github.com/larkhq/larkd/wifi"
)

var (
	settingsBucket = []byte("settings")

	credentialsKey = []byte("credentials")
	accessPointKey = []byte("accesspoint")
	nameKey        = []byte("name")
)

// check DB compliance to the store interface during compile time
var _ wifi.Store = (*DB)(nil)

// SetCredentials persists the network credentials. Passing nil clears
// them.
func (db *DB) SetCredentials(creds *wifi.Credentials) error {
	if err := db.setJSON(settingsBucket, credentialsKey, creds); err != nil {
		return errors.Errorf("could not save credentials: %v", err)
	}

	return nil
}

// GetCredentials returns the persisted credentials, nil when none are
// stored.
func (db *DB) GetCredentials() (*wifi.Credentials, error) {
	creds := &wifi.Credentials{}

	found, err := db.getJSON(settingsBucket, credentialsKey, creds)
	if err != nil {
		return nil, errors.Errorf("could not load credentials: %v", err)
	}

	if !found {
		return nil, nil
	}

	return creds, nil
}
