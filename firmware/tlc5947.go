package main

import (
	"machine"

	"github.com/itohio/goplate/pkg/output"
)

// tlc5947 drives a chain of TLC5947 24-channel 12-bit PWM drivers over
// three bit-banged pins. The chain is write-only: a latch pushes the whole
// shift register to the outputs at once.
//
// Every latch also reports the channels that changed on the serial port as
// "millis,channel,intensity" lines, so a host can mirror the plate state.
type tlc5947 struct {
	dat, clk, lat machine.Pin

	pwm    [output.Channels]uint16
	shadow [output.Channels]uint16 // values on the outputs after the last latch

	millis func() uint32
}

var _ output.Driver = (*tlc5947)(nil)

func newTLC5947(millis func() uint32) *tlc5947 {
	return &tlc5947{
		dat:    PIN_DATA,
		clk:    PIN_CLOCK,
		lat:    PIN_LATCH,
		millis: millis,
	}
}

func (t *tlc5947) Begin() error {
	t.dat.Configure(machine.PinConfig{Mode: machine.PinOutput})
	t.clk.Configure(machine.PinConfig{Mode: machine.PinOutput})
	t.lat.Configure(machine.PinConfig{Mode: machine.PinOutput})
	t.lat.Low()
	return nil
}

func (t *tlc5947) SetChannel(channel int, intensity uint16) {
	if channel < 0 || channel >= N_DRIVERS*CHANNELS_PER_DRIVER {
		return
	}
	if intensity > 4095 {
		intensity = 4095
	}
	t.pwm[channel] = intensity
}

func (t *tlc5947) Flush() {
	t.dat.Low()
	// 12 bits per channel, last channel first, MSB first.
	for c := N_DRIVERS*CHANNELS_PER_DRIVER - 1; c >= 0; c-- {
		for b := 11; b >= 0; b-- {
			t.clk.Low()
			if t.pwm[c]&(1<<b) != 0 {
				t.dat.High()
			} else {
				t.dat.Low()
			}
			t.clk.High()
		}
	}
	t.clk.Low()

	t.lat.High()
	t.lat.Low()

	t.report()
}

// report prints one diagnostic line per channel that changed with the latch.
func (t *tlc5947) report() {
	now := t.millis()
	for c := 0; c < N_DRIVERS*CHANNELS_PER_DRIVER; c++ {
		if t.pwm[c] == t.shadow[c] {
			continue
		}
		t.shadow[c] = t.pwm[c]
		print(now)
		print(",")
		print(c)
		print(",")
		print(t.pwm[c])
		print("\n")
	}
}
