package wifi

import (
	"fmt"
	"sort"
)

// NetworkSummary describes one network found by a scan.
type NetworkSummary struct {
	Ssid  string `json:"ssid"`
	Bssid string `json:"bssid"`
	// Rssi is the raw measurement in dBm.
	Rssi int `json:"rssi"`
	// Signal grades Rssi on a 0..100 scale.
	Signal    int      `json:"signal"`
	Channel   int      `json:"channel"`
	Auth      AuthMode `json:"auth"`
	Hidden    bool     `json:"hidden"`
	Connected bool     `json:"connected"`
}

// signalQuality maps dBm to 0..100, saturating at -100 and -50 dBm.
func signalQuality(rssi int) int {
	switch {
	case rssi <= -100:
		return 0
	case rssi >= -50:
		return 100
	default:
		return 2 * (rssi + 100)
	}
}

func formatBssid(bssid [6]byte) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
		bssid[0], bssid[1], bssid[2], bssid[3], bssid[4], bssid[5])
}

// Scan asks the driver for the networks in range and blocks until the
// results are in. Entries with an empty ssid are dropped, the rest are
// ordered by descending signal quality. Networks appearing under several
// identifiers are reported as often as they were seen.
func (s *Service) Scan() ([]NetworkSummary, error) {
	s.mtx.Lock()

	if s.mode == ModeOff {
		s.mtx.Unlock()
		return nil, fmt.Errorf("%w: cannot scan with the radio off", ErrInvalidState)
	}

	var current string
	if s.station == stationConnected && s.cached != nil {
		current = s.cached.Ssid
	}

	s.mtx.Unlock()

	if err := s.driver.StartScan(); err != nil {
		return nil, driverError(err)
	}

	records, err := s.driver.ScanResults()
	if err != nil {
		return nil, driverError(err)
	}

	networks := make([]NetworkSummary, 0, len(records))

	for _, record := range records {
		if record.Ssid == "" {
			continue
		}

		networks = append(networks, NetworkSummary{
			Ssid:      record.Ssid,
			Bssid:     formatBssid(record.Bssid),
			Rssi:      record.Rssi,
			Signal:    signalQuality(record.Rssi),
			Channel:   record.Channel,
			Auth:      record.Auth,
			Hidden:    record.Hidden,
			Connected: current != "" && record.Ssid == current,
		})
	}

	sort.SliceStable(networks, func(i, j int) bool {
		return networks[i].Signal > networks[j].Signal
	})

	s.log.Debugf("Scan found %d networks", len(networks))

	return networks, nil
}
