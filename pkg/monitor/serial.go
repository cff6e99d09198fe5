package monitor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/itohio/goplate/pkg/output"
	"github.com/itohio/goplate/pkg/step"
)

const (
	// DefaultBaudRate is the plate's diagnostic baud rate.
	DefaultBaudRate = 9600
	// DefaultBufferSize is the default size for the events channel buffer.
	DefaultBufferSize = 512
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads diagnostic events from a plate over a serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	events    chan Event
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// New creates a new Serial monitor for the given port, baud rate, and
// buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		events:   make(chan Event, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading events.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	go d.readEvents(port)

	return nil
}

// Close closes the connection and stops reading events. The reader
// goroutine owns the events channel and closes it on its way out.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false

	return nil
}

// Events returns the channel for reading events.
func (d *Serial) Events() <-chan Event {
	return d.events
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readEvents reads lines from the serial port and parses them into Events.
// It closes the events channel when the port drains or the context is
// cancelled, so Events ranges cleanly and no send can race a close.
func (d *Serial) readEvents(conn io.Reader) {
	defer close(d.events)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readEvents: %v", r)
		}
	}()

	scanner := bufio.NewScanner(conn)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil && err != io.EOF {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			event, err := parseLine(line)
			if err != nil {
				log.Printf("Failed to parse line '%s': %v", line, err)
				continue
			}

			select {
			case d.events <- event:
			case <-d.ctx.Done():
				return
			default:
				// Channel full, log and skip
				log.Printf("Events channel full, dropping event")
			}
		}
	}
}

// parseLine parses one diagnostic line from the plate.
// Format: millis,channel,intensity
// Example: 145200,131,2048
func parseLine(line string) (Event, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return Event{}, fmt.Errorf("invalid line format: expected 3 comma-separated values, got %d", len(parts))
	}

	millis, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return Event{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	channel, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return Event{}, fmt.Errorf("invalid channel: %w", err)
	}
	if channel >= output.Channels {
		return Event{}, fmt.Errorf("channel out of range: %d (max %d)", channel, output.Channels-1)
	}

	intensity, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return Event{}, fmt.Errorf("invalid intensity: %w", err)
	}
	if intensity > step.MaxIntensity {
		return Event{}, fmt.Errorf("intensity out of range: %d (max %d)", intensity, step.MaxIntensity)
	}

	return Event{
		Received:  time.Now(),
		Millis:    uint32(millis),
		Channel:   int(channel),
		Intensity: uint16(intensity),
	}, nil
}
