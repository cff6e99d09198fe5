package engine

import "github.com/itohio/goplate/pkg/program"

// MinTickInterval is the shortest time in milliseconds between two
// processed scan ticks.
const MinTickInterval = 100

// Indicator receives the finished-state heartbeat once every assigned
// program has run to completion. On the device this toggles the status LED.
type Indicator func(on bool)

// Loop is the firmware main-loop discipline around an Engine: it polls as
// fast as the caller spins and processes a scan tick only when at least
// MinTickInterval has passed since the previous one. The early return is a
// non-blocking poll, not a sleep, so housekeeping like the finished
// heartbeat still runs on polls that skip program logic.
type Loop struct {
	eng *Engine

	prev    uint32
	started bool

	indicator      Indicator
	indicatorOn    bool
	indicatorPrev  uint32
	indicatorAlive bool
}

// NewLoop wraps an engine in the tick-throttling loop.
func NewLoop(eng *Engine) *Loop {
	return &Loop{eng: eng}
}

// OnFinished registers the finished-state heartbeat. Once the plate is
// finished it toggles at most every MinTickInterval, on its own clock, so
// it fires even on polls that skip program logic.
func (l *Loop) OnFinished(fn Indicator) { l.indicator = fn }

// Poll runs one iteration of the main loop at clock value now. It reports
// whether a scan tick was processed.
func (l *Loop) Poll(now uint32) bool {
	if l.indicator != nil && l.eng.Finished(now) {
		if !l.indicatorAlive || wholeTickElapsed(l.indicatorPrev, now) {
			l.indicatorOn = !l.indicatorOn
			l.indicator(l.indicatorOn)
			l.indicatorPrev = now
			l.indicatorAlive = true
		}
	}

	if l.started && !wholeTickElapsed(l.prev, now) {
		return false
	}

	l.eng.Tick(now)
	l.prev = now
	l.started = true
	return true
}

func wholeTickElapsed(prev, now uint32) bool {
	return !program.Before(now, prev+MinTickInterval)
}
