package main

import "machine"

const (
	// Plate configuration
	N_COLORS = 3 // 1, 2 or 3; must match the LED population of the board

	// LED driver chain
	N_DRIVERS           = 12 // daisy-chained TLC5947 drivers
	CHANNELS_PER_DRIVER = 24

	// TLC5947 interface pins (bit-banged, the chain is write-only)
	PIN_DATA   = machine.D4
	PIN_CLOCK  = machine.D5
	PIN_LATCH  = machine.D6
	PIN_ENABLE = machine.D7 // active low output enable

	// Finished indicator
	PIN_STATUS = machine.LED

	// Serial configuration
	// Format: "millis,channel,intensity\n"
	// Example: "4294967295,287,4095\n" = ~20 bytes max per line.
	// Lines are only emitted for channels that changed on a latch, and
	// latches are at most one per 100ms tick, so 9600 baud is plenty.
	UART_BAUD_RATE = 9600
)
