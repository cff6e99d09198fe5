package step

// MaxIntensity is the highest value the 12-bit PWM driver chain accepts.
const MaxIntensity = 4095

// Step is one timed phase of a lighting program. Steps are produced by the
// configuration tool, stored packed in read-only program memory and decoded
// on demand; they are never mutated at runtime.
type Step struct {
	Duration  uint32 // milliseconds this step stays active before the program may advance
	PulseOn   uint32 // milliseconds of the on half of the duty cycle
	PulseOff  uint32 // milliseconds of the off half of the duty cycle
	Intensity uint16 // target brightness (0-4095) while the step evaluates on
}

// IsOn reports whether the step drives its LED at time now, given the
// absolute time at which the step became active. Both times are wrapping
// 32-bit millisecond clock values.
//
// A step with both pulse halves zero is not pulsed and always on. A zero
// on-half with a nonzero off-half is always off, and a zero off-half with a
// nonzero on-half is always on.
func (s Step) IsOn(now, stepStart uint32) bool {
	switch {
	case s.PulseOn == 0 && s.PulseOff == 0:
		return true
	case s.PulseOn == 0:
		return false
	case s.PulseOff == 0:
		return true
	}

	elapsed := now - stepStart // wrap-safe
	return elapsed%(s.PulseOn+s.PulseOff) < s.PulseOn
}
