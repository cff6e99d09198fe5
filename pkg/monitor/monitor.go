// Package monitor consumes the plate's diagnostic channel: a stream of
// channel-update events emitted whenever the firmware flushes new values to
// the driver chain. Devices come in two flavors, the real serial port and a
// simulated plate running the same engine.
package monitor

import "time"

// Event is one channel update reported by the plate.
type Event struct {
	Received  time.Time // host receive time
	Millis    uint32    // plate clock, milliseconds since boot
	Channel   int       // physical driver channel (0-287)
	Intensity uint16    // 12-bit value latched to the channel
}

// Device defines the interface for plate monitors (real or simulated).
type Device interface {
	Connect() error
	Close() error
	Events() <-chan Event
	IsConnected() bool
}
