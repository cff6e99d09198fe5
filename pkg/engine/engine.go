// Package engine runs the per-tick scan over all (well, color) outputs: it
// advances every program against the monotonic clock, evaluates duty
// cycles, and forwards only the outputs that actually changed to the driver
// chain.
package engine

import (
	"fmt"

	"github.com/itohio/goplate/pkg/output"
	"github.com/itohio/goplate/pkg/program"
	"github.com/itohio/goplate/pkg/step"
)

// Engine owns the scan loop's state. It is single threaded by design: one
// Tick runs to completion before the next, so the runtime state needs no
// locking, only the per-tick ordering that a program is advanced before its
// outcome is read. Tick processes every call it gets; throttling to the
// minimum tick interval is the surrounding loop's job (see Loop).
type Engine struct {
	table  *program.Table
	state  *program.State
	layout output.Layout
	out    output.Driver

	// Per-tick scratch, keyed by program id and cleared on every tick.
	// visited marks programs whose advancement already ran this tick,
	// advanced records its outcome, decoded/steps cache the current
	// step so shared programs are not decoded once per output.
	visited  []bool
	advanced []bool
	decoded  []bool
	steps    []step.Step

	prev      uint32
	started   bool
	doneAfter uint32
}

// New wires the scan loop to its collaborators and initializes the output
// driver. bootTime is the clock value the first tick will observe; every
// program starts its first step there. If the driver fails to initialize no
// engine is returned: the plate must not be driven from an undefined state.
func New(table *program.Table, out output.Driver, layout output.Layout, bootTime uint32) (*Engine, error) {
	if err := out.Begin(); err != nil {
		return nil, fmt.Errorf("output driver initialization failed: %w", err)
	}

	n := table.Programs()
	e := &Engine{
		table:    table,
		state:    program.NewState(table, bootTime),
		layout:   layout,
		out:      out,
		visited:  make([]bool, n),
		advanced: make([]bool, n),
		decoded:  make([]bool, n),
		steps:    make([]step.Step, n),
		prev:     bootTime,
	}

	// The plate is finished once the longest assigned program has run out.
	e.doneAfter = bootTime
	for well := 0; well < program.Wells; well++ {
		for color := 0; color < table.Colors(); color++ {
			end := bootTime + table.Duration(table.ProgramID(well, color))
			if program.Before(e.doneAfter, end) {
				e.doneAfter = end
			}
		}
	}

	return e, nil
}

// Finished reports whether every assigned program has run to completion at
// time now. Always false before the first tick.
func (e *Engine) Finished(now uint32) bool {
	return e.started && !program.Before(now, e.doneAfter)
}

// Tick runs one pass of the scan loop at clock value now (milliseconds
// since boot). All staged changes are flushed to the driver in one shot at
// the end of the tick.
func (e *Engine) Tick(now uint32) {
	first := !e.started
	for i := range e.visited {
		// On the very first tick every program counts as freshly
		// advanced, so every output gets initialized even when its
		// step is unpulsed and would otherwise never register a
		// change.
		e.visited[i] = first
		e.advanced[i] = first
		e.decoded[i] = false
	}

	dirty := false
	for well := 0; well < program.Wells; well++ {
		for color := 0; color < e.table.Colors(); color++ {
			if e.scanOutput(well, color, now) {
				dirty = true
			}
		}
	}

	if dirty {
		e.out.Flush()
	}

	e.prev = now
	e.started = true
}

// scanOutput handles one (well, color) output and reports whether it staged
// a new value.
func (e *Engine) scanOutput(well, color int, now uint32) bool {
	id := e.table.ProgramID(well, color)

	// Advance each distinct program at most once per tick, no matter how
	// many outputs share it.
	if !e.visited[id] {
		e.advanced[id] = e.state.Advance(e.table, id, now)
		e.visited[id] = true
	}
	wasAdvanced := e.advanced[id]

	if !e.decoded[id] {
		e.steps[id] = e.state.CurrentStep(e.table, id)
		e.decoded[id] = true
	}
	cur := e.steps[id]

	// A freshly entered step always starts in the on state and is always
	// a change. Otherwise the on/off state at the previous and current
	// tick times decides: a step can stay current for many ticks and
	// still toggle visibly through its duty cycle.
	on := true
	changed := wasAdvanced
	if !wasAdvanced {
		was := cur.IsOn(e.prev, e.state.StepStart(id))
		on = cur.IsOn(now, e.state.StepStart(id))
		changed = was != on
	}
	if !changed {
		return false
	}

	var intensity uint16
	if on {
		intensity = cur.Intensity
	}
	e.layout.Set(e.out, well, color, intensity)
	return true
}
