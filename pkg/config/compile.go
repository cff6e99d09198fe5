package config

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/itohio/goplate/pkg/output"
	"github.com/itohio/goplate/pkg/program"
	"github.com/itohio/goplate/pkg/step"
)

// offProgram is the implicit program run by outputs without an explicit
// assignment when no default program is named: a single dark terminal step.
const offProgram = "off"

// Compile builds the read-only tables the engine consumes: the program and
// assignment tables and the plate's channel layout. It performs the
// validation the configuration tool guarantees for real firmware images, so
// any error here is a build-time error, never a runtime one.
func (c *Config) Compile() (*program.Table, output.Layout, error) {
	var none output.Layout

	ids := make(map[string]program.ID, len(c.Programs))
	programs := make([][]step.Step, 0, len(c.Programs)+1)

	for _, p := range c.Programs {
		if p.Name == "" {
			return nil, none, fmt.Errorf("program %d has no name", len(programs))
		}
		if _, dup := ids[p.Name]; dup {
			return nil, none, fmt.Errorf("duplicate program name %q", p.Name)
		}
		steps, err := compileSteps(p)
		if err != nil {
			return nil, none, err
		}
		ids[p.Name] = program.ID(len(programs))
		programs = append(programs, steps)
	}

	defaultName := c.Default
	if defaultName == "" {
		if _, exists := ids[offProgram]; !exists {
			ids[offProgram] = program.ID(len(programs))
			programs = append(programs, []step.Step{{PulseOff: 1}})
		}
		defaultName = offProgram
	}
	defaultID, ok := ids[defaultName]
	if !ok {
		return nil, none, fmt.Errorf("default program %q is not defined", defaultName)
	}

	assign := make([][]program.ID, program.Wells)
	for w := range assign {
		row := make([]program.ID, c.Plate.Colors)
		for col := range row {
			row[col] = defaultID
		}
		assign[w] = row
	}
	for _, a := range c.Assignments {
		if a.Well < 0 || a.Well >= program.Wells {
			return nil, none, fmt.Errorf("assignment well %d out of range", a.Well)
		}
		if a.Color < 0 || a.Color >= c.Plate.Colors {
			return nil, none, fmt.Errorf("assignment color %d out of range for a %d-color plate", a.Color, c.Plate.Colors)
		}
		id, ok := ids[a.Program]
		if !ok {
			return nil, none, fmt.Errorf("well %d color %d assigned to undefined program %q", a.Well, a.Color, a.Program)
		}
		assign[a.Well][a.Color] = id
	}

	table, err := program.New(programs, assign, c.Plate.Colors)
	if err != nil {
		return nil, none, err
	}

	var corr *output.Corrector
	if c.Plate.Correction {
		factors, err := c.Plate.fixedPointFactors()
		if err != nil {
			return nil, none, err
		}
		if corr, err = output.NewCorrector(factors); err != nil {
			return nil, none, err
		}
	}

	layout, err := output.NewLayout(c.Plate.Colors, corr)
	if err != nil {
		return nil, none, err
	}

	return table, layout, nil
}

func compileSteps(p Program) ([]step.Step, error) {
	if len(p.Steps) == 0 {
		return nil, fmt.Errorf("program %q has no steps", p.Name)
	}
	steps := make([]step.Step, 0, len(p.Steps))
	for i, s := range p.Steps {
		if s.Duration < 0 || s.PulseOn < 0 || s.PulseOff < 0 {
			return nil, fmt.Errorf("program %q step %d has a negative duration", p.Name, i)
		}
		// The step clock is 32-bit milliseconds.
		const maxMillis = int64(^uint32(0))
		if s.Duration.Milliseconds() > maxMillis || s.PulseOn.Milliseconds() > maxMillis || s.PulseOff.Milliseconds() > maxMillis {
			return nil, fmt.Errorf("program %q step %d duration exceeds the 32-bit millisecond clock", p.Name, i)
		}
		if s.Intensity > step.MaxIntensity {
			return nil, fmt.Errorf("program %q step %d intensity %d exceeds %d", p.Name, i, s.Intensity, step.MaxIntensity)
		}
		steps = append(steps, step.Step{
			Duration:  uint32(s.Duration.Milliseconds()),
			PulseOn:   uint32(s.PulseOn.Milliseconds()),
			PulseOff:  uint32(s.PulseOff.Milliseconds()),
			Intensity: s.Intensity,
		})
	}
	return steps, nil
}

// fixedPointFactors rescales the configured correction fractions from
// [0, 1] to the 16-bit storage form the corrector consumes.
func (p Plate) fixedPointFactors() ([]uint16, error) {
	factors := make([]uint16, 0, len(p.Factors))
	for ch, f := range p.Factors {
		if f < 0 || f > 1 {
			return nil, fmt.Errorf("correction factor %g for channel %d outside [0, 1]", f, ch)
		}
		factors = append(factors, uint16(math32.Round(float32(f)*65535)))
	}
	return factors, nil
}
