package api

import (
	"bytes"
	"encoding/json"
	"github.com/gorilla/websocket"
	"github.com/larkhq/larkd/connectivity"
	"github.com/larkhq/larkd/larkdb"
	"github.com/larkhq/larkd/logring"
	"github.com/larkhq/larkd/metrics"
	"github.com/larkhq/larkd/wifi"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"
)

type testApi struct {
	server  *httptest.Server
	driver  *wifi.MockDriver
	service *wifi.Service
	db      *larkdb.DB
	ring    *logring.Ring
}

func newTestApi(t *testing.T) *testApi {
	t.Helper()

	db, err := larkdb.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	driver := wifi.NewMockDriver()

	service := wifi.NewService(&wifi.Config{
		Driver: driver,
		Store:  db,
	})
	require.NoError(t, service.Start())
	t.Cleanup(func() {
		require.NoError(t, service.Stop())
	})

	reporter := connectivity.NewReporter(&connectivity.Config{
		Service: service,
	})
	require.NoError(t, reporter.Start())
	t.Cleanup(func() {
		require.NoError(t, reporter.Stop())
	})

	ring := logring.New(16)

	api := New(&Config{
		Service:  service,
		DB:       db,
		Reporter: reporter,
		Sampler:  metrics.NewSampler(&metrics.Config{}),
		Ring:     ring,
	})

	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	return &testApi{
		server:  server,
		driver:  driver,
		service: service,
		db:      db,
		ring:    ring,
	}
}

func (ta *testApi) request(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, ta.server.URL+path, reader)
	require.NoError(t, err)

	res, err := ta.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() {
		res.Body.Close()
	})

	return res
}

func decodeBody(t *testing.T, res *http.Response, v interface{}) {
	t.Helper()

	require.NoError(t, json.NewDecoder(res.Body).Decode(v))
}

func TestGetStatus(t *testing.T) {
	ta := newTestApi(t)

	res := ta.request(t, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	status := statusResponse{}
	decodeBody(t, res, &status)
	require.Equal(t, "off", status.Mode)
	require.False(t, status.Connected)
	require.Empty(t, status.Address)
}

func TestPutMode(t *testing.T) {
	ta := newTestApi(t)

	res := ta.request(t, http.MethodPut, "/api/v1/mode", &putModeRequest{Mode: "station"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	status := statusResponse{}
	decodeBody(t, res, &status)
	require.Equal(t, "station", status.Mode)
	require.Equal(t, wifi.ModeStation, ta.driver.Mode())

	res = ta.request(t, http.MethodPut, "/api/v1/mode", &putModeRequest{Mode: "sideways"})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestConnectNetwork(t *testing.T) {
	ta := newTestApi(t)

	require.NoError(t, ta.service.SetMode(wifi.ModeStation))

	res := ta.request(t, http.MethodPost, "/api/v1/networks/connect",
		&connectRequest{Ssid: "homebase", Psk: "correct horse"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	status := statusResponse{}
	decodeBody(t, res, &status)
	require.True(t, status.Connecting)
	require.False(t, status.Connected)
}

func TestConnectNetworkErrors(t *testing.T) {
	ta := newTestApi(t)

	res := ta.request(t, http.MethodPost, "/api/v1/networks/connect",
		&connectRequest{Ssid: "homebase", Psk: "correct horse"})
	require.Equal(t, http.StatusConflict, res.StatusCode)

	require.NoError(t, ta.service.SetMode(wifi.ModeStation))

	res = ta.request(t, http.MethodPost, "/api/v1/networks/connect",
		&connectRequest{Ssid: "homebase", Psk: "nope"})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = ta.request(t, http.MethodPost, "/api/v1/networks/connect", &connectRequest{})
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestConnectNetworkSync(t *testing.T) {
	ta := newTestApi(t)

	require.NoError(t, ta.service.SetMode(wifi.ModeStation))

	go func() {
		deadline := time.Now().Add(time.Second)
		for ta.driver.Station() == nil && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		ta.driver.EmitLinkUp(netip.MustParseAddr("192.168.1.7"))
	}()

	res := ta.request(t, http.MethodPost, "/api/v1/networks/connect?sync=1",
		&connectRequest{Ssid: "homebase", Psk: "correct horse"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	status := statusResponse{}
	decodeBody(t, res, &status)
	require.True(t, status.Connected)
	require.Equal(t, "192.168.1.7", status.Address)
}

func TestSavedNetwork(t *testing.T) {
	ta := newTestApi(t)

	res := ta.request(t, http.MethodGet, "/api/v1/networks/saved", nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res = ta.request(t, http.MethodPut, "/api/v1/networks/saved",
		&connectRequest{Ssid: "homebase", Psk: "short"})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = ta.request(t, http.MethodPut, "/api/v1/networks/saved",
		&connectRequest{Ssid: "homebase", Psk: "correct horse"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = ta.request(t, http.MethodGet, "/api/v1/networks/saved", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	payload, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Contains(t, string(payload), "homebase")
	require.NotContains(t, string(payload), "correct horse")

	res = ta.request(t, http.MethodDelete, "/api/v1/networks/saved", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = ta.request(t, http.MethodGet, "/api/v1/networks/saved", nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestGetNetworks(t *testing.T) {
	ta := newTestApi(t)

	res := ta.request(t, http.MethodGet, "/api/v1/networks", nil)
	require.Equal(t, http.StatusConflict, res.StatusCode)

	require.NoError(t, ta.service.SetMode(wifi.ModeStation))

	ta.driver.SetScanResults([]wifi.ScanRecord{
		{Ssid: "garage", Bssid: [6]byte{0x02}, Rssi: -80, Channel: 11, Auth: wifi.AuthOpen},
		{Ssid: "kitchen", Bssid: [6]byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x42}, Rssi: -40, Channel: 6, Auth: wifi.AuthWpa2Psk},
	})

	res = ta.request(t, http.MethodGet, "/api/v1/networks", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	networks := []wifi.NetworkSummary{}
	decodeBody(t, res, &networks)
	require.Len(t, networks, 2)
	require.Equal(t, "kitchen", networks[0].Ssid)
	require.Equal(t, 100, networks[0].Signal)
	require.Equal(t, "garage", networks[1].Ssid)
}

func TestAccessPoint(t *testing.T) {
	ta := newTestApi(t)

	res := ta.request(t, http.MethodGet, "/api/v1/accesspoint", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	config := accessPointResponse{}
	decodeBody(t, res, &config)
	require.Equal(t, "lark-ap", config.Ssid)
	require.Equal(t, 1, config.Channel)

	res = ta.request(t, http.MethodPut, "/api/v1/accesspoint",
		&putAccessPointRequest{Ssid: "lark-setup", Psk: "correct horse", Channel: 6})
	require.Equal(t, http.StatusOK, res.StatusCode)

	updated := accessPointResponse{}
	decodeBody(t, res, &updated)
	require.Equal(t, "lark-setup", updated.Ssid)
	require.Equal(t, "wpa2-psk", updated.Auth)
	require.Equal(t, 6, updated.Channel)

	res = ta.request(t, http.MethodPut, "/api/v1/accesspoint",
		&putAccessPointRequest{Ssid: "lark-setup", Channel: 15})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestProvisioningLifecycle(t *testing.T) {
	ta := newTestApi(t)

	res := ta.request(t, http.MethodPost, "/api/v1/provisioning",
		&startProvisioningRequest{Variant: "broadcast"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	status := statusResponse{}
	decodeBody(t, res, &status)
	require.True(t, status.Provisioning)
	require.Equal(t, "station", status.Mode)

	res = ta.request(t, http.MethodPost, "/api/v1/provisioning",
		&startProvisioningRequest{Variant: "broadcast"})
	require.Equal(t, http.StatusConflict, res.StatusCode)

	res = ta.request(t, http.MethodPost, "/api/v1/provisioning",
		&startProvisioningRequest{Variant: "imaginary"})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = ta.request(t, http.MethodDelete, "/api/v1/provisioning", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	cancelled := statusResponse{}
	decodeBody(t, res, &cancelled)
	require.False(t, cancelled.Provisioning)
}

func TestEventsStream(t *testing.T) {
	ta := newTestApi(t)

	url := "ws" + strings.TrimPrefix(ta.server.URL, "http") + "/api/v1/events"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	read := func() wifiEvent {
		ev := wifiEvent{}
		require.NoError(t, c.SetReadDeadline(time.Now().Add(time.Second)))
		require.NoError(t, c.ReadJSON(&ev))
		return ev
	}

	ev := read()
	require.Equal(t, "state-changed", ev.Kind)
	require.Equal(t, "off", ev.Mode)

	require.NoError(t, ta.service.SetMode(wifi.ModeStation))

	ev = read()
	require.Equal(t, "state-changed", ev.Kind)
	require.Equal(t, "station", ev.Mode)

	require.NoError(t, ta.service.Connect(wifi.Credentials{Ssid: "homebase", Psk: "correct horse"}))
	ta.driver.EmitLinkUp(netip.MustParseAddr("10.0.0.9"))

	ev = read()
	require.Equal(t, "connected", ev.Kind)
	require.Equal(t, "10.0.0.9", ev.Address)
}

func TestEventsStreamOmitsPsk(t *testing.T) {
	ta := newTestApi(t)

	require.NoError(t, ta.service.StartProvisioning(wifi.ProvisionBroadcast, wifi.ProvisioningOptions{}))

	url := "ws" + strings.TrimPrefix(ta.server.URL, "http") + "/api/v1/events"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = c.ReadMessage()
	require.NoError(t, err)

	ta.driver.EmitCredentials(wifi.Credentials{Ssid: "homebase", Psk: "hunter2hunter2"})

	require.NoError(t, c.SetReadDeadline(time.Now().Add(time.Second)))
	_, payload, err := c.ReadMessage()
	require.NoError(t, err)
	require.Contains(t, string(payload), "credentials-received")
	require.Contains(t, string(payload), "homebase")
	require.NotContains(t, string(payload), "hunter2hunter2")
}

func TestGetMetrics(t *testing.T) {
	ta := newTestApi(t)

	res := ta.request(t, http.MethodGet, "/api/v1/metrics", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	snapshot := metrics.Snapshot{}
	decodeBody(t, res, &snapshot)
	require.NotZero(t, snapshot.MemTotal)
}

func TestGetLogs(t *testing.T) {
	ta := newTestApi(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(ta.ring)

	logger.WithField("system", "api").Info("First entry")
	logger.Info("Second entry")

	res := ta.request(t, http.MethodGet, "/api/v1/logs", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	entries := []logring.Entry{}
	decodeBody(t, res, &entries)
	require.Len(t, entries, 2)
	require.Equal(t, "First entry", entries[0].Message)
	require.Equal(t, "api", entries[0].Fields["system"])
}

func TestName(t *testing.T) {
	ta := newTestApi(t)

	res := ta.request(t, http.MethodGet, "/api/v1/name", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	name := nameResponse{}
	decodeBody(t, res, &name)
	require.Empty(t, name.Name)

	res = ta.request(t, http.MethodPut, "/api/v1/name", &putNameRequest{Name: "kitchen lark"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = ta.request(t, http.MethodGet, "/api/v1/name", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	decodeBody(t, res, &name)
	require.Equal(t, "kitchen lark", name.Name)
}
