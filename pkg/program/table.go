package program

import (
	"fmt"

	"github.com/itohio/goplate/pkg/step"
)

// ID identifies one program in the table. Many (well, color) outputs may
// share a single program.
type ID uint16

const (
	// Wells is the number of sample sites on the plate.
	Wells = 96
	// MaxColors is the highest color count a plate can be built with.
	MaxColors = 3
	// MaxPrograms is the runtime-state slot capacity: one distinct program
	// per (well, color) output in the worst case.
	MaxPrograms = Wells * MaxColors
)

// packed is one program's steps in their encoded record form: a single
// immutable byte buffer plus the offset of each record. Records are
// variable width, so random access needs the offset table.
type packed struct {
	data    []byte
	offsets []int
}

// Table is the read-only program store consumed by the scan loop: every
// program's packed step records and the (well, color) -> program assignment
// grid. It is built once, before the first tick, and never mutated.
type Table struct {
	colors int
	progs  []packed
	assign [Wells][]ID
}

// New builds a Table from decoded programs and the assignment grid. It
// validates everything the configuration tool guarantees on real hardware:
// a failure here is a fatal initialization error, not a runtime condition.
func New(programs [][]step.Step, assign [][]ID, colors int) (*Table, error) {
	if colors < 1 || colors > MaxColors {
		return nil, fmt.Errorf("plate color count must be 1, 2 or 3, got %d", colors)
	}
	if len(programs) == 0 {
		return nil, fmt.Errorf("program table is empty")
	}
	if len(programs) > MaxPrograms {
		return nil, fmt.Errorf("%d programs exceed the %d runtime state slots", len(programs), MaxPrograms)
	}
	if len(assign) != Wells {
		return nil, fmt.Errorf("assignment table has %d wells, want %d", len(assign), Wells)
	}

	t := &Table{
		colors: colors,
		progs:  make([]packed, len(programs)),
	}

	for id, steps := range programs {
		if len(steps) == 0 {
			return nil, fmt.Errorf("program %d has no steps", id)
		}
		p := packed{offsets: make([]int, 0, len(steps))}
		for _, s := range steps {
			p.offsets = append(p.offsets, len(p.data))
			p.data = append(p.data, step.Encode(s)...)
		}
		t.progs[id] = p
	}

	for well, row := range assign {
		if len(row) != colors {
			return nil, fmt.Errorf("well %d assigns %d colors, want %d", well, len(row), colors)
		}
		for color, id := range row {
			if int(id) >= len(programs) {
				return nil, fmt.Errorf("well %d color %d assigned to unknown program %d", well, color, id)
			}
		}
		t.assign[well] = append([]ID(nil), row...)
	}

	return t, nil
}

// Colors returns the plate's configured color count.
func (t *Table) Colors() int { return t.colors }

// Programs returns the number of distinct programs in the table.
func (t *Table) Programs() int { return len(t.progs) }

// ProgramID returns the program assigned to a (well, color) output. The
// color must be below the plate's configured color count; callers own that
// contract, the table has no assignments beyond it.
func (t *Table) ProgramID(well, color int) ID {
	return t.assign[well][color]
}

// Size returns the step count of a program.
func (t *Table) Size(id ID) int {
	return len(t.progs[id].offsets)
}

// StepAt returns the raw record bytes of one step. The slice reaches to the
// end of the program's buffer; the codec reads only the bytes the record's
// header claims.
func (t *Table) StepAt(id ID, n int) []byte {
	return t.progs[id].data[t.progs[id].offsets[n]:]
}

// Duration returns a program's total run time in milliseconds, using the
// duration-only decode fast path.
func (t *Table) Duration(id ID) uint32 {
	var total uint32
	for n := range t.progs[id].offsets {
		total += step.DecodeDuration(t.StepAt(id, n))
	}
	return total
}
