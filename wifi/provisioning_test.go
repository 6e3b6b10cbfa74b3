package wifi

import (
	"github.com/stretchr/testify/require"
	"net/netip"
	"testing"
	"time"
)

func TestStartProvisioningRejectsSecondSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	require.NoError(t, svc.StartProvisioning(ProvisionBroadcast, ProvisioningOptions{}))

	err := svc.StartProvisioning(ProvisionBroadcast, ProvisioningOptions{})
	require.ErrorIs(t, err, ErrInvalidState)

	err = svc.StartProvisioning(ProvisionSoftAP, ProvisioningOptions{})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelProvisioningIsIdempotent(t *testing.T) {
	svc, driver, _ := newTestService(t)

	require.NoError(t, svc.CancelProvisioning())

	require.NoError(t, svc.StartProvisioning(ProvisionBroadcast, ProvisioningOptions{}))
	require.True(t, svc.Status().Provisioning)
	require.True(t, driver.Provisioning())

	require.NoError(t, svc.CancelProvisioning())
	require.False(t, svc.Status().Provisioning)
	require.False(t, driver.Provisioning())

	require.NoError(t, svc.CancelProvisioning())
}

func TestProvisioningTimeoutClamp(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    int
	}{
		{name: "below range", timeout: 5 * time.Second, want: 15},
		{name: "in range", timeout: 90 * time.Second, want: 90},
		{name: "above range", timeout: 500 * time.Second, want: 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, driver, _ := newTestService(t)

			require.NoError(t, svc.StartProvisioning(ProvisionBroadcast, ProvisioningOptions{
				Timeout: tt.timeout,
			}))

			require.Equal(t, tt.want, driver.ProvisioningTimeout())
		})
	}
}

func TestBroadcastProvisioningSwitchesToStation(t *testing.T) {
	svc, _, _ := newTestService(t)

	rec := &eventRecorder{}
	svc.Subscribe(rec.listen)

	require.NoError(t, svc.StartProvisioning(ProvisionBroadcast, ProvisioningOptions{}))

	require.Equal(t, ModeStation, svc.Mode())
	require.Equal(t, 1, rec.count(EventStateChanged))
	require.True(t, svc.Status().Provisioning)
}

func TestBroadcastProvisioningTwoPhase(t *testing.T) {
	svc, driver, store := newTestService(t)

	require.NoError(t, svc.SetMode(ModeStation))

	rec := &eventRecorder{}
	svc.Subscribe(rec.listen)

	require.NoError(t, svc.StartProvisioning(ProvisionBroadcast, ProvisioningOptions{}))

	driver.EmitCredentials(Credentials{Ssid: "homebase", Psk: "hunter22"})

	eventually(t, func() bool {
		return rec.count(EventCredentialsReceived) == 1
	})

	require.True(t, svc.Status().Connecting)

	station := driver.Station()
	require.NotNil(t, station)
	require.Equal(t, "homebase", station.Ssid)

	// Nothing may be persisted until the link is up.
	require.Nil(t, store.storedCredentials())

	driver.EmitLinkUp(netip.MustParseAddr("192.168.1.40"))

	eventually(t, func() bool {
		return svc.Status().Connected
	})

	creds := store.storedCredentials()
	require.NotNil(t, creds)
	require.Equal(t, "homebase", creds.Ssid)

	// The session stays open until the companion heard back.
	require.True(t, svc.Status().Provisioning)
	require.Equal(t, 0, rec.count(EventProvisioningCompleted))

	driver.EmitAckSent()

	eventually(t, func() bool {
		return rec.count(EventProvisioningCompleted) == 1
	})

	require.False(t, svc.Status().Provisioning)
	require.False(t, driver.Provisioning())

	ev, ok := rec.last(EventProvisioningCompleted)
	require.True(t, ok)
	require.NotNil(t, ev.Credentials)
	require.Equal(t, "homebase", ev.Credentials.Ssid)
}

func TestBroadcastProvisioningRetriesAfterFailedAttempt(t *testing.T) {
	svc, driver, store := newTestService(t)

	require.NoError(t, svc.StartProvisioning(ProvisionBroadcast, ProvisioningOptions{}))

	rec := &eventRecorder{}
	svc.Subscribe(rec.listen)

	driver.EmitCredentials(Credentials{Ssid: "homebase", Psk: "wrongpass"})

	eventually(t, func() bool {
		return rec.count(EventCredentialsReceived) == 1
	})

	driver.EmitLinkDown(ReasonAuthFail)

	eventually(t, func() bool {
		return rec.count(EventProvisioningFailed) == 1
	})

	ev, ok := rec.last(EventProvisioningFailed)
	require.True(t, ok)
	require.ErrorIs(t, ev.Err, ErrCredentialsRejected)

	// The session keeps listening so the companion can try again.
	require.True(t, svc.Status().Provisioning)
	require.Nil(t, store.storedCredentials())

	driver.EmitCredentials(Credentials{Ssid: "homebase", Psk: "hunter22"})

	eventually(t, func() bool {
		return rec.count(EventCredentialsReceived) == 2
	})
}

func TestProvisioningRejectsMalformedCredentials(t *testing.T) {
	svc, driver, _ := newTestService(t)

	require.NoError(t, svc.StartProvisioning(ProvisionBroadcast, ProvisioningOptions{}))

	rec := &eventRecorder{}
	svc.Subscribe(rec.listen)

	driver.EmitCredentials(Credentials{Ssid: "homebase", Psk: "short"})

	eventually(t, func() bool {
		return rec.count(EventProvisioningFailed) == 1
	})

	ev, ok := rec.last(EventProvisioningFailed)
	require.True(t, ok)
	require.ErrorIs(t, ev.Err, ErrInvalidCredentials)

	require.Equal(t, 0, rec.count(EventCredentialsReceived))
	require.True(t, svc.Status().Provisioning)
	require.False(t, svc.Status().Connecting)
}

func TestSoftApProvisioning(t *testing.T) {
	svc, driver, store := newTestService(t)

	rec := &eventRecorder{}
	svc.Subscribe(rec.listen)

	require.NoError(t, svc.StartProvisioning(ProvisionSoftAP, ProvisioningOptions{
		AccessPoint: AccessPointConfig{Ssid: "lark-setup", Psk: "bootstrap", Auth: AuthWpa2Psk},
	}))

	require.Equal(t, ModeDual, svc.Mode())

	ap := driver.AccessPoint()
	require.NotNil(t, ap)
	require.Equal(t, "lark-setup", ap.Ssid)

	driver.EmitCredentials(Credentials{Ssid: "homebase", Psk: "hunter22"})

	eventually(t, func() bool {
		return rec.count(EventCredentialsReceived) == 1
	})

	driver.EmitLinkUp(netip.MustParseAddr("192.168.1.40"))

	// No acknowledgement round: the link coming up completes the
	// session and the mode stays dual for the companion to confirm.
	eventually(t, func() bool {
		return rec.count(EventProvisioningCompleted) == 1
	})

	require.False(t, svc.Status().Provisioning)
	require.False(t, driver.Provisioning())
	require.Equal(t, ModeDual, svc.Mode())

	creds := store.storedCredentials()
	require.NotNil(t, creds)
	require.Equal(t, "homebase", creds.Ssid)
}

func TestSoftApCancelRestoresMode(t *testing.T) {
	svc, driver, _ := newTestService(t)

	require.NoError(t, svc.SetMode(ModeStation))

	require.NoError(t, svc.StartProvisioning(ProvisionSoftAP, ProvisioningOptions{}))
	require.Equal(t, ModeDual, svc.Mode())

	require.NoError(t, svc.CancelProvisioning())

	require.Equal(t, ModeStation, svc.Mode())
	require.False(t, svc.Status().Provisioning)
	require.False(t, driver.Provisioning())
}

func TestProvisioningExpires(t *testing.T) {
	svc, driver, _ := newTestService(t)

	rec := &eventRecorder{}
	svc.Subscribe(rec.listen)

	require.NoError(t, svc.StartProvisioning(ProvisionBroadcast, ProvisioningOptions{
		Timeout: 30 * time.Millisecond,
	}))

	// The protocol cannot carry less than its minimum.
	require.Equal(t, 15, driver.ProvisioningTimeout())

	eventually(t, func() bool {
		return !svc.Status().Provisioning
	})

	require.False(t, driver.Provisioning())
	require.Equal(t, 0, rec.count(EventProvisioningFailed))
	require.Equal(t, 0, rec.count(EventProvisioningCompleted))
}

func TestAckOutsideCompletingSessionIsIgnored(t *testing.T) {
	svc, driver, _ := newTestService(t)

	require.NoError(t, svc.StartProvisioning(ProvisionBroadcast, ProvisioningOptions{}))

	rec := &eventRecorder{}
	svc.Subscribe(rec.listen)

	driver.EmitAckSent()
	driver.EmitCredentials(Credentials{Ssid: "homebase", Psk: "hunter22"})

	eventually(t, func() bool {
		return rec.count(EventCredentialsReceived) == 1
	})

	require.Equal(t, 0, rec.count(EventProvisioningCompleted))
	require.True(t, svc.Status().Provisioning)
}

func TestCredentialsOutsideSessionAreIgnored(t *testing.T) {
	svc, driver, _ := newTestService(t)

	require.NoError(t, svc.SetMode(ModeStation))

	rec := &eventRecorder{}
	svc.Subscribe(rec.listen)

	driver.EmitCredentials(Credentials{Ssid: "homebase", Psk: "hunter22"})
	driver.EmitLinkDown(ReasonUnspecified)

	eventually(t, func() bool {
		return rec.count(EventDisconnected) == 1
	})

	require.Equal(t, 0, rec.count(EventCredentialsReceived))
	require.False(t, svc.Status().Connecting)
}
