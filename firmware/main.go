//go:generate tinygo flash -target=arduino-nano33

package main

import (
	"machine"
	"time"

	"github.com/itohio/goplate/pkg/engine"
)

var bootTime time.Time

// millis returns milliseconds since boot. Wraps after ~49.7 days, which the
// scheduling arithmetic tolerates.
func millis() uint32 {
	return uint32(time.Since(bootTime).Milliseconds())
}

func main() {
	bootTime = time.Now()

	machine.Serial.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	PIN_STATUS.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_STATUS.High()

	table, layout, err := flashedTable()
	if err != nil {
		fail(err)
	}

	drv := newTLC5947(millis)
	eng, err := engine.New(table, drv, layout, 0)
	if err != nil {
		// All outputs stay dark if the driver will not initialize.
		fail(err)
	}

	// Enable the driver outputs only after the zeroed state is latched.
	PIN_ENABLE.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_ENABLE.Low()

	loop := engine.NewLoop(eng)
	loop.OnFinished(func(on bool) {
		PIN_STATUS.Set(on)
	})

	for {
		loop.Poll(millis())
		time.Sleep(time.Millisecond)
	}
}

// fail blinks the status LED rapidly forever.
func fail(err error) {
	print("fault: ")
	print(err.Error())
	print("\n")
	for {
		PIN_STATUS.High()
		time.Sleep(100 * time.Millisecond)
		PIN_STATUS.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
