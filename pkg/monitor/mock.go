package monitor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/itohio/goplate/pkg/config"
	"github.com/itohio/goplate/pkg/engine"
	"github.com/itohio/goplate/pkg/output"
)

// Mock simulates a plate for testing and development: it compiles the
// configured programs and runs the real engine against a simulated clock,
// reporting exactly the channel updates a physical plate would emit on its
// diagnostic port.
type Mock struct {
	cfg *config.Config

	events    chan Event
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)

// NewMock creates a new simulated plate from the configuration.
func NewMock(cfg *config.Config) *Mock {
	if cfg == nil {
		cfg = config.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:    cfg,
		events: make(chan Event, DefaultBufferSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Connect compiles the configured programs and starts the simulation.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	table, layout, err := m.cfg.Compile()
	if err != nil {
		return fmt.Errorf("failed to compile plate configuration: %w", err)
	}

	drv := &capturingDriver{}
	eng, err := engine.New(table, drv, layout, 0)
	if err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	m.connected = true
	go m.run(engine.NewLoop(eng), drv)

	return nil
}

// Close stops the simulation.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false

	return nil
}

// Events returns the channel for reading events.
func (m *Mock) Events() <-chan Event {
	return m.events
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// run polls the engine loop at the configured interval, mapping wall time
// to the simulated plate clock.
func (m *Mock) run(loop *engine.Loop, drv *capturingDriver) {
	// The run goroutine owns the events channel: closing it here cannot
	// race an in-flight send.
	defer close(m.events)

	ticker := time.NewTicker(m.cfg.Mock.TickInterval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-m.ctx.Done():
			return
		case now := <-ticker.C:
			simNow := uint32(float64(now.Sub(start).Milliseconds()) * m.cfg.Mock.Speed)
			loop.Poll(simNow)

			for _, u := range drv.take() {
				event := Event{
					Received:  now,
					Millis:    simNow,
					Channel:   u.channel,
					Intensity: u.intensity,
				}
				select {
				case m.events <- event:
				case <-m.ctx.Done():
					return
				default:
					// Channel full, log and skip
					log.Printf("Events channel full, dropping event")
				}
			}
		}
	}
}

// update is one staged channel write awaiting a flush.
type update struct {
	channel   int
	intensity uint16
}

// capturingDriver implements output.Driver by recording staged values and
// publishing them as updates when the engine flushes.
type capturingDriver struct {
	staged  []update
	flushed []update
}

var _ output.Driver = (*capturingDriver)(nil)

func (d *capturingDriver) Begin() error { return nil }

func (d *capturingDriver) SetChannel(channel int, intensity uint16) {
	d.staged = append(d.staged, update{channel: channel, intensity: intensity})
}

func (d *capturingDriver) Flush() {
	d.flushed = append(d.flushed, d.staged...)
	d.staged = d.staged[:0]
}

// take returns the updates committed since the last call.
func (d *capturingDriver) take() []update {
	out := d.flushed
	d.flushed = nil
	return out
}
