package main

import (
	"github.com/itohio/goplate/pkg/output"
	"github.com/itohio/goplate/pkg/program"
	"github.com/itohio/goplate/pkg/step"
)

// Flashed experiment. Regenerate this file from a config.yaml with the host
// tool before flashing; the values below are a demo pattern.

// Durations and pulse widths in milliseconds, intensities 0..4095.
var flashedPrograms = [][]step.Step{
	// 0: one hour ramp-up in four steps, then hold
	{
		{Duration: 900_000, Intensity: 1024},
		{Duration: 900_000, Intensity: 2048},
		{Duration: 900_000, Intensity: 3072},
		{Duration: 900_000, Intensity: 4095},
		{PulseOff: 1}, // terminal: dark forever
	},
	// 1: 1s/1s blink for ten minutes
	{
		{Duration: 600_000, PulseOn: 1000, PulseOff: 1000, Intensity: 4095},
		{PulseOff: 1},
	},
	// 2: constant dim light
	{
		{Intensity: 512},
	},
}

// flashedAssignment maps every well and color to a program. The demo runs
// program 0 on color 0, program 1 on color 1 and program 2 on color 2 in
// every well.
func flashedAssignment() [][]program.ID {
	assign := make([][]program.ID, program.Wells)
	for well := range assign {
		assign[well] = []program.ID{0, 1, 2}[:N_COLORS]
	}
	return assign
}

// flashedCorrection holds the per-channel intensity calibration, rescaled to
// 16 bit fixed point (65535 = 1.0). Nil disables correction.
var flashedCorrection []uint16

func flashedTable() (*program.Table, output.Layout, error) {
	table, err := program.New(flashedPrograms, flashedAssignment(), N_COLORS)
	if err != nil {
		return nil, output.Layout{}, err
	}
	var corr *output.Corrector
	if flashedCorrection != nil {
		corr, err = output.NewCorrector(flashedCorrection)
		if err != nil {
			return nil, output.Layout{}, err
		}
	}
	layout, err := output.NewLayout(N_COLORS, corr)
	if err != nil {
		return nil, output.Layout{}, err
	}
	return table, layout, nil
}
