package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/goplate/pkg/step"
)

// uniformAssign assigns every (well, color) output to one program.
func uniformAssign(id ID, colors int) [][]ID {
	assign := make([][]ID, Wells)
	for w := range assign {
		row := make([]ID, colors)
		for c := range row {
			row[c] = id
		}
		assign[w] = row
	}
	return assign
}

func TestNew_Validation(t *testing.T) {
	oneStep := [][]step.Step{{{Duration: 10, Intensity: 100}}}

	tests := []struct {
		name     string
		programs [][]step.Step
		assign   [][]ID
		colors   int
		wantErr  string
	}{
		{
			name:     "valid single program",
			programs: oneStep,
			assign:   uniformAssign(0, 3),
			colors:   3,
		},
		{
			name:     "zero colors",
			programs: oneStep,
			assign:   uniformAssign(0, 3),
			colors:   0,
			wantErr:  "color count",
		},
		{
			name:     "four colors",
			programs: oneStep,
			assign:   uniformAssign(0, 3),
			colors:   4,
			wantErr:  "color count",
		},
		{
			name:     "no programs",
			programs: nil,
			assign:   uniformAssign(0, 1),
			colors:   1,
			wantErr:  "empty",
		},
		{
			name:     "empty program",
			programs: [][]step.Step{{}},
			assign:   uniformAssign(0, 1),
			colors:   1,
			wantErr:  "no steps",
		},
		{
			name:     "assignment to unknown program",
			programs: oneStep,
			assign:   uniformAssign(7, 1),
			colors:   1,
			wantErr:  "unknown program",
		},
		{
			name:     "assignment row too narrow",
			programs: oneStep,
			assign:   uniformAssign(0, 1),
			colors:   2,
			wantErr:  "want 2",
		},
		{
			name:     "wrong well count",
			programs: oneStep,
			assign:   uniformAssign(0, 1)[:95],
			colors:   1,
			wantErr:  "wells",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := New(tt.programs, tt.assign, tt.colors)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.colors, tbl.Colors())
			assert.Equal(t, len(tt.programs), tbl.Programs())
		})
	}
}

func TestNew_SlotCapacity(t *testing.T) {
	// One more program than there are runtime state slots must be refused
	// at build time: the state arrays are sized to MaxPrograms on the
	// device and an out-of-range id would corrupt memory there.
	one := []step.Step{{Duration: 1}}
	programs := make([][]step.Step, MaxPrograms+1)
	for i := range programs {
		programs[i] = one
	}

	_, err := New(programs, uniformAssign(0, 1), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runtime state slots")

	_, err = New(programs[:MaxPrograms], uniformAssign(0, 1), 1)
	assert.NoError(t, err)
}

func TestTable_Lookups(t *testing.T) {
	progs := [][]step.Step{
		{{Duration: 10, Intensity: 1000}},
		{
			{Duration: 100, PulseOn: 10, PulseOff: 10, Intensity: 4095},
			{Duration: 200, Intensity: 500},
			{Duration: 70000, Intensity: 0},
		},
	}
	assign := uniformAssign(0, 2)
	assign[5][1] = 1

	tbl, err := New(progs, assign, 2)
	require.NoError(t, err)

	assert.Equal(t, ID(0), tbl.ProgramID(0, 0))
	assert.Equal(t, ID(1), tbl.ProgramID(5, 1))
	assert.Equal(t, 1, tbl.Size(0))
	assert.Equal(t, 3, tbl.Size(1))

	// StepAt hands back raw records that round-trip through the codec.
	for n, want := range progs[1] {
		assert.Equal(t, want, step.Decode(tbl.StepAt(1, n)))
	}
}

func TestTable_Duration(t *testing.T) {
	progs := [][]step.Step{
		{{Duration: 10}},
		{{Duration: 100}, {Duration: 200}, {Duration: 70000}},
	}

	tbl, err := New(progs, uniformAssign(0, 1), 1)
	require.NoError(t, err)

	assert.Equal(t, uint32(10), tbl.Duration(0))
	assert.Equal(t, uint32(70300), tbl.Duration(1))
}
