package statusled

import "sync"

// MockLed records patterns for tests and for devices without an LED.
type MockLed struct {
	mtx      sync.Mutex
	started  bool
	patterns []Pattern
}

// Compile time check for the Led interface.
var _ Led = (*MockLed)(nil)

func NewMockLed() *MockLed {
	return &MockLed{}
}

func (m *MockLed) Start() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.started = true

	return nil
}

func (m *MockLed) Stop() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.started = false

	return nil
}

func (m *MockLed) Set(pattern Pattern) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.patterns = append(m.patterns, pattern)
}

// Current returns the last set pattern, PatternOff before any Set.
func (m *MockLed) Current() Pattern {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if len(m.patterns) == 0 {
		return PatternOff
	}

	return m.patterns[len(m.patterns)-1]
}

// Patterns returns a copy of every pattern set so far.
func (m *MockLed) Patterns() []Pattern {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	patterns := make([]Pattern, len(m.patterns))
	copy(patterns, m.patterns)

	return patterns
}

func (m *MockLed) Started() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.started
}
