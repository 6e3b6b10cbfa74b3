package wifi

import (
	"errors"
	"github.com/stretchr/testify/require"
	"net/netip"
	"testing"
)

func TestScanRequiresRadio(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Scan()
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestSignalQuality(t *testing.T) {
	tests := []struct {
		rssi int
		want int
	}{
		{rssi: -110, want: 0},
		{rssi: -100, want: 0},
		{rssi: -90, want: 20},
		{rssi: -75, want: 50},
		{rssi: -60, want: 80},
		{rssi: -50, want: 100},
		{rssi: -40, want: 100},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, signalQuality(tt.rssi), "rssi %d", tt.rssi)
	}
}

func TestFormatBssid(t *testing.T) {
	bssid := [6]byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x42}
	require.Equal(t, "DE:AD:BE:EF:00:42", formatBssid(bssid))
}

func TestScanFiltersAndOrders(t *testing.T) {
	svc, driver, _ := newTestService(t)

	require.NoError(t, svc.SetMode(ModeStation))

	driver.SetScanResults([]ScanRecord{
		{Ssid: "attic", Rssi: -90, Channel: 1, Auth: AuthWpa2Psk},
		{Ssid: "", Rssi: -30, Channel: 6, Hidden: true},
		{Ssid: "kitchen", Rssi: -40, Channel: 11, Auth: AuthWpaWpa2Psk},
		{Ssid: "garage", Rssi: -60, Channel: 6, Auth: AuthOpen},
	})

	networks, err := svc.Scan()
	require.NoError(t, err)

	require.Len(t, networks, 3)
	require.Equal(t, "kitchen", networks[0].Ssid)
	require.Equal(t, "garage", networks[1].Ssid)
	require.Equal(t, "attic", networks[2].Ssid)

	require.Equal(t, 100, networks[0].Signal)
	require.Equal(t, -40, networks[0].Rssi)
}

func TestScanKeepsDuplicateSsids(t *testing.T) {
	svc, driver, _ := newTestService(t)

	require.NoError(t, svc.SetMode(ModeStation))

	driver.SetScanResults([]ScanRecord{
		{Ssid: "mesh", Bssid: [6]byte{1}, Rssi: -50},
		{Ssid: "mesh", Bssid: [6]byte{2}, Rssi: -70},
	})

	networks, err := svc.Scan()
	require.NoError(t, err)
	require.Len(t, networks, 2)
}

func TestScanMarksConnectedNetwork(t *testing.T) {
	svc, driver, _ := newTestService(t)

	require.NoError(t, svc.SetMode(ModeStation))
	require.NoError(t, svc.Connect(Credentials{Ssid: "kitchen", Psk: "hunter22"}))

	driver.EmitLinkUp(netip.MustParseAddr("192.168.1.40"))
	eventually(t, func() bool {
		return svc.Status().Connected
	})

	driver.SetScanResults([]ScanRecord{
		{Ssid: "kitchen", Rssi: -40},
		{Ssid: "garage", Rssi: -60},
	})

	networks, err := svc.Scan()
	require.NoError(t, err)
	require.Len(t, networks, 2)

	require.True(t, networks[0].Connected)
	require.False(t, networks[1].Connected)
}

func TestScanWhileConnectingMarksNothing(t *testing.T) {
	svc, driver, _ := newTestService(t)

	require.NoError(t, svc.SetMode(ModeStation))
	require.NoError(t, svc.Connect(Credentials{Ssid: "kitchen", Psk: "hunter22"}))

	driver.SetScanResults([]ScanRecord{
		{Ssid: "kitchen", Rssi: -40},
	})

	networks, err := svc.Scan()
	require.NoError(t, err)
	require.Len(t, networks, 1)
	require.False(t, networks[0].Connected)
}

func TestScanDriverFailure(t *testing.T) {
	svc, driver, _ := newTestService(t)

	require.NoError(t, svc.SetMode(ModeStation))

	driver.FailNext("StartScan", errors.New("scan failed"))

	_, err := svc.Scan()
	require.ErrorIs(t, err, ErrDriver)
}
