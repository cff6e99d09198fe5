package program

import "github.com/itohio/goplate/pkg/step"

// State holds the mutable runtime position of every program: the index of
// its current step and the absolute clock value at which that step became
// active. There is exactly one slot per program for the life of the
// process; the scan loop owns the container and passes it into advancement.
type State struct {
	stepN []int
	stepT []uint32
}

// NewState allocates runtime state for every program in t. All programs
// begin on step 0 at bootTime.
func NewState(t *Table, bootTime uint32) *State {
	s := &State{
		stepN: make([]int, t.Programs()),
		stepT: make([]uint32, t.Programs()),
	}
	for i := range s.stepT {
		s.stepT[i] = bootTime
	}
	return s
}

// StepIndex returns the program's current step index.
func (s *State) StepIndex(id ID) int { return s.stepN[id] }

// StepStart returns the clock value at which the program's current step
// became active.
func (s *State) StepStart(id ID) uint32 { return s.stepT[id] }

// CurrentStep decodes the program's current step.
func (s *State) CurrentStep(t *Table, id ID) step.Step {
	return step.Decode(t.StepAt(id, s.stepN[id]))
}

// Advance moves a program to the step active at now and reports whether the
// index changed. Once the last step is reached the program holds there
// forever. If more than one step's duration has fully elapsed since the
// last call, every such step is stepped through in turn, so a delayed tick
// can never silently skip a step.
//
// Must be called at most once per program per tick; the caller tracks which
// programs it has already advanced.
func (s *State) Advance(t *Table, id ID, now uint32) bool {
	n := s.stepN[id]
	size := t.Size(id)
	nextStart := s.stepT[id] + step.DecodeDuration(t.StepAt(id, n))

	if n == size-1 {
		// Terminal step, the program holds here.
		return false
	}
	if Before(now, nextStart) {
		return false
	}

	for n+1 < size {
		n++
		s.stepN[id] = n
		s.stepT[id] = nextStart
		nextStart += step.DecodeDuration(t.StepAt(id, n))
		if Before(now, nextStart) {
			break
		}
	}
	return true
}

// Before reports whether clock value a precedes b. The 32-bit millisecond
// clock wraps after ~49.7 days; comparing the signed difference keeps the
// ordering correct across the wrap.
func Before(a, b uint32) bool {
	return int32(a-b) < 0
}
