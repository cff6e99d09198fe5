package output

import "fmt"

// Every well has three LED positions wired to separate driver banks of 96
// channels each. Which colors sit in those positions depends on how the
// plate was populated:
//
//	1-color: all three positions are blue
//	2-color: positions 1+2 are far red, position 3 is red
//	3-color: position 1 is blue, 2 is red, 3 is far red
const (
	bank2Offset = 96
	bank3Offset = 192
)

// sharedDriverDimRatio scales back LED positions 1 and 2 on the 1-color
// plate. Their two drivers together source 60 mA but the blue LED is rated
// for 50 mA, so a full-scale request must not reach full scale on those
// positions. The ratio is empirical for this hardware revision.
const sharedDriverDimRatio = 3300.0 / 4095.0

// Layout maps (well, color) outputs onto physical driver channels for one
// plate color configuration, applying intensity correction per channel on
// the way out.
type Layout struct {
	colors int
	corr   *Corrector // nil disables correction
}

// NewLayout builds the channel layout for a plate with 1, 2 or 3 colors.
// corr may be nil for deployments that skip intensity correction.
func NewLayout(colors int, corr *Corrector) (Layout, error) {
	if colors < 1 || colors > 3 {
		return Layout{}, fmt.Errorf("plate color count must be 1, 2 or 3, got %d", colors)
	}
	return Layout{colors: colors, corr: corr}, nil
}

// Colors returns the plate's color count.
func (l Layout) Colors() int { return l.colors }

// Set stages the intensity for one (well, color) output on d, fanning out
// to every physical channel that color occupies. The color index must be
// below the plate's color count.
func (l Layout) Set(d Driver, well, color int, intensity uint16) {
	switch l.colors {
	case 1:
		// All positions are the same color; 1 and 2 share the LED that
		// needs the current limit.
		dimmed := uint16(float32(intensity) * sharedDriverDimRatio)
		l.stage(d, position1(well), dimmed)
		l.stage(d, position2(well), dimmed)
		l.stage(d, position3(well), intensity)
	case 2:
		if color == 0 {
			l.stage(d, position3(well), intensity)
		} else {
			l.stage(d, position1(well), intensity)
			l.stage(d, position2(well), intensity)
		}
	case 3:
		switch color {
		case 0:
			l.stage(d, position1(well), intensity)
		case 1:
			l.stage(d, position2(well), intensity)
		case 2:
			l.stage(d, position3(well), intensity)
		}
	}
}

func (l Layout) stage(d Driver, channel int, intensity uint16) {
	if l.corr != nil {
		intensity = l.corr.Correct(channel, intensity)
	}
	d.SetChannel(channel, intensity)
}

// The driver chain is wired column-major relative to well numbering.
func position1(well int) int { return well/12 + 8*(well%12) }
func position2(well int) int { return position1(well) + bank2Offset }
func position3(well int) int { return well + bank3Offset }

// ChannelWell inverts the wiring: it returns the well and LED position
// (0-2) a physical channel drives. Host-side tools use it to fold channel
// updates back onto the plate grid.
func ChannelWell(channel int) (well, position int) {
	switch {
	case channel < bank2Offset:
		return channel%8*12 + channel/8, 0
	case channel < bank3Offset:
		ch := channel - bank2Offset
		return ch%8*12 + ch/8, 1
	default:
		return channel - bank3Offset, 2
	}
}
