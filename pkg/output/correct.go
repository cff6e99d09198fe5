package output

import (
	"fmt"

	"github.com/chewxy/math32"
)

// correctionScale is the fixed-point denominator of stored correction
// factors: a fraction in [0, 1] is stored as round(f * 65535).
const correctionScale = 65535

// Corrector rescales requested intensities by a fixed per-channel factor
// compensating LED and driver variance. Factors are calibrated by the
// configuration tool; the firmware applies them at output time only, never
// to a step's stored intensity.
type Corrector struct {
	factors [Channels]uint16
}

// NewCorrector builds a Corrector from fixed-point factors, one per physical
// channel. Channels beyond len(factors) default to unity.
func NewCorrector(factors []uint16) (*Corrector, error) {
	if len(factors) > Channels {
		return nil, fmt.Errorf("%d correction factors for %d channels", len(factors), Channels)
	}
	c := &Corrector{}
	for i := range c.factors {
		c.factors[i] = correctionScale
	}
	copy(c.factors[:], factors)
	return c, nil
}

// Correct applies the channel's correction factor. The factor never exceeds
// unity, so the result never exceeds the request. The arithmetic is done in
// float32, matching the MCU's native float width.
func (c *Corrector) Correct(channel int, intensity uint16) uint16 {
	f := float32(c.factors[channel]) / correctionScale
	return uint16(math32.Round(float32(intensity) * f))
}
