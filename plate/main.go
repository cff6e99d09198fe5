package main

import (
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/goplate/pkg/config"
	"github.com/itohio/goplate/pkg/monitor"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Simulate the plate instead of reading a serial port")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	// Create Fyne application
	application := app.NewWithID("com.itohio.goplate")

	window := application.NewWindow("96-well Plate Monitor")
	window.Resize(fyne.NewSize(900, 620))
	window.CenterOnScreen()

	plateView := NewPlateWidget(cfg.Plate.Colors)

	state := &appState{
		cfg:       cfg,
		window:    window,
		plateView: plateView,
		useMock:   *mockFlag,
	}

	toolbar := createToolbar(state)

	window.SetContent(container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		plateView,
	))

	window.ShowAndRun()
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	window     fyne.Window
	plateView  *PlateWidget
	device     monitor.Device
	eventsDone chan struct{} // closed when the event goroutine exits
	useMock    bool

	// Throttling for view refreshes
	lastRefresh time.Time
	refreshMu   sync.Mutex
}

// createToolbar creates the application toolbar with the Connect button and
// a status label.
func createToolbar(state *appState) fyne.CanvasObject {
	status := widget.NewLabel("Disconnected")

	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state, status)
	})

	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewHBox(connectBtn), // left
		nil,                           // right
		status,                        // center
	)
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState, status *widget.Label) {
	if state.device != nil && state.device.IsConnected() {
		// Disconnect and wait for the event goroutine to drain.
		state.device.Close()
		if state.eventsDone != nil {
			<-state.eventsDone
			state.eventsDone = nil
		}
		state.device = nil
		status.SetText("Disconnected")
		fmt.Println("Disconnected")
		return
	}

	var device monitor.Device
	if state.useMock {
		device = monitor.NewMock(state.cfg)
		fmt.Println("Using simulated plate")
	} else {
		device = monitor.New(state.cfg.Serial.Port, monitor.DefaultBaudRate, monitor.DefaultBufferSize)
	}

	if err := device.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to start simulated plate: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = device
	if state.useMock {
		status.SetText("Simulating plate")
	} else {
		status.SetText("Connected: " + state.cfg.Serial.Port)
		fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
	}

	done := make(chan struct{})
	state.eventsDone = done
	go consumeEvents(state, device, done)
}

// consumeEvents folds diagnostic events onto the plate view, throttling
// refreshes to keep the UI responsive under event bursts.
func consumeEvents(state *appState, device monitor.Device, done chan struct{}) {
	defer close(done)

	const refreshInterval = 33 * time.Millisecond // ~30 FPS

	for event := range device.Events() {
		state.plateView.SetChannel(event.Channel, event.Intensity)

		state.refreshMu.Lock()
		now := time.Now()
		due := now.Sub(state.lastRefresh) >= refreshInterval
		if due {
			state.lastRefresh = now
		}
		state.refreshMu.Unlock()

		if due {
			fyne.Do(func() {
				state.plateView.Refresh()
			})
		}
	}

	// Final refresh so the last staged values are visible.
	fyne.Do(func() {
		state.plateView.Refresh()
	})
}
