package wifi

import (
	"net/netip"
	"sync"
)

// MockDriver implements Driver in memory, for tests and for running the
// daemon on hardware without a radio. It does nothing on its own;
// notifications are injected with the Emit helpers.
type MockDriver struct {
	mtx                 sync.Mutex
	notifications       chan Notification
	mode                Mode
	started             bool
	station             *Credentials
	ap                  *AccessPointConfig
	provisioning        bool
	provisioningTimeout int
	scanResults         []ScanRecord
	calls               []string
	failNext            map[string]error
}

var _ Driver = (*MockDriver)(nil)

func NewMockDriver() *MockDriver {
	return &MockDriver{
		notifications: make(chan Notification, 8),
		failNext:      make(map[string]error),
	}
}

// record logs the call and pops a planted failure. Callers hold mtx.
func (m *MockDriver) record(name string) error {
	m.calls = append(m.calls, name)

	if err, ok := m.failNext[name]; ok {
		delete(m.failNext, name)
		return err
	}

	return nil
}

func (m *MockDriver) Start() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if err := m.record("Start"); err != nil {
		return err
	}

	m.started = true

	return nil
}

func (m *MockDriver) Stop() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if err := m.record("Stop"); err != nil {
		return err
	}

	m.started = false

	return nil
}

func (m *MockDriver) SetMode(mode Mode) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if err := m.record("SetMode"); err != nil {
		return err
	}

	m.mode = mode

	return nil
}

func (m *MockDriver) ConfigureStation(creds Credentials) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if err := m.record("ConfigureStation"); err != nil {
		return err
	}

	m.station = &creds

	return nil
}

func (m *MockDriver) ConfigureAccessPoint(config AccessPointConfig) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if err := m.record("ConfigureAccessPoint"); err != nil {
		return err
	}

	m.ap = &config

	return nil
}

func (m *MockDriver) Connect() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.record("Connect")
}

func (m *MockDriver) Disconnect() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.record("Disconnect")
}

func (m *MockDriver) StartScan() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.record("StartScan")
}

func (m *MockDriver) ScanResults() ([]ScanRecord, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if err := m.record("ScanResults"); err != nil {
		return nil, err
	}

	results := make([]ScanRecord, len(m.scanResults))
	copy(results, m.scanResults)

	return results, nil
}

func (m *MockDriver) StartProvisioningListener() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if err := m.record("StartProvisioningListener"); err != nil {
		return err
	}

	m.provisioning = true

	return nil
}

func (m *MockDriver) StopProvisioningListener() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if err := m.record("StopProvisioningListener"); err != nil {
		return err
	}

	m.provisioning = false

	return nil
}

func (m *MockDriver) SetProvisioningTimeout(seconds int) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if err := m.record("SetProvisioningTimeout"); err != nil {
		return err
	}

	m.provisioningTimeout = seconds

	return nil
}

func (m *MockDriver) Notifications() <-chan Notification {
	return m.notifications
}

// FailNext makes the next call with the given name return err.
func (m *MockDriver) FailNext(name string, err error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.failNext[name] = err
}

// Calls returns the names of all calls made so far.
func (m *MockDriver) Calls() []string {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	calls := make([]string, len(m.calls))
	copy(calls, m.calls)

	return calls
}

func (m *MockDriver) SetScanResults(records []ScanRecord) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.scanResults = records
}

func (m *MockDriver) Mode() Mode {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.mode
}

func (m *MockDriver) Started() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.started
}

func (m *MockDriver) Station() *Credentials {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.station
}

func (m *MockDriver) AccessPoint() *AccessPointConfig {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.ap
}

func (m *MockDriver) Provisioning() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.provisioning
}

func (m *MockDriver) ProvisioningTimeout() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.provisioningTimeout
}

func (m *MockDriver) EmitLinkUp(addr netip.Addr) {
	m.notifications <- LinkUp{Addr: addr}
}

func (m *MockDriver) EmitLinkDown(reason Reason) {
	m.notifications <- LinkDown{Reason: reason}
}

func (m *MockDriver) EmitCredentials(creds Credentials) {
	m.notifications <- ProvisioningCredentials{Creds: creds}
}

func (m *MockDriver) EmitAckSent() {
	m.notifications <- ProvisioningAckSent{}
}
