package output

import "sync"

// Mock is an in-memory Driver for tests and the simulator. It records
// staged values, commits them on Flush and counts both operations.
type Mock struct {
	mu      sync.RWMutex
	begun   bool
	staged  [Channels]uint16
	touched map[int]int // channel -> SetChannel call count
	latched [Channels]uint16
	flushes int

	// BeginErr, when set, is returned by Begin to exercise the fail-safe
	// startup path.
	BeginErr error
}

// Ensure Mock implements Driver.
var _ Driver = (*Mock)(nil)

// NewMock creates a mock driver with all channels at zero.
func NewMock() *Mock {
	return &Mock{touched: make(map[int]int)}
}

// Begin marks the driver initialized, or fails with BeginErr.
func (m *Mock) Begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.BeginErr != nil {
		return m.BeginErr
	}
	m.begun = true
	return nil
}

// SetChannel stages one channel value.
func (m *Mock) SetChannel(channel int, intensity uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.staged[channel] = intensity
	m.touched[channel]++
}

// Flush commits the staging buffer.
func (m *Mock) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.latched = m.staged
	m.flushes++
}

// Begun reports whether Begin succeeded.
func (m *Mock) Begun() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.begun
}

// Latched returns the value last committed to a channel by Flush.
func (m *Mock) Latched(channel int) uint16 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latched[channel]
}

// Flushes returns how many times Flush has been called.
func (m *Mock) Flushes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flushes
}

// Sets returns how many times a channel has been staged.
func (m *Mock) Sets(channel int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.touched[channel]
}
