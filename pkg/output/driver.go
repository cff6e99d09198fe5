// Package output models the plate's output stage: a chain of twelve 24-channel
// 12-bit PWM LED drivers, the mapping from (well, color) to physical channels,
// and the per-channel intensity correction applied on the way out.
package output

// Channels is the number of physical outputs on the driver chain:
// 12 drivers with 24 channels each.
const Channels = 288

// Driver is the physical output stage. Values staged with SetChannel have no
// hardware effect until Flush pushes the whole buffer down the driver chain
// in one shot.
type Driver interface {
	// Begin performs one-time hardware initialization and reports whether
	// the staging storage could be allocated. A failure here must abort
	// startup; the plate is never driven from an undefined state.
	Begin() error

	// SetChannel stages one channel's 12-bit intensity.
	SetChannel(channel int, intensity uint16)

	// Flush latches all staged values to the hardware.
	Flush()
}
