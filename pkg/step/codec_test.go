package step

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// widthSamples holds, per size code, a value that encodes with exactly that
// field width.
var widthSamples = map[int]uint32{
	0: 0x7b,
	1: 0x1f40,
	2: 0x112a880,
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	// Every combination of field widths for the three 32-bit fields, with
	// intensity at both of its possible widths.
	for cd := 0; cd <= 2; cd++ {
		for con := 0; con <= 2; con++ {
			for coff := 0; coff <= 2; coff++ {
				for _, inten := range []uint16{17, 4095} {
					want := Step{
						Duration:  widthSamples[cd],
						PulseOn:   widthSamples[con],
						PulseOff:  widthSamples[coff],
						Intensity: inten,
					}
					name := fmt.Sprintf("dur%d_on%d_off%d_int%d", cd, con, coff, inten)
					t.Run(name, func(t *testing.T) {
						raw := Encode(want)
						assert.Equal(t, want, Decode(raw))
					})
				}
			}
		}
	}
}

func TestEncode_MinimalWidths(t *testing.T) {
	tests := []struct {
		name    string
		step    Step
		wantLen int
	}{
		{
			name:    "all single byte",
			step:    Step{Duration: 10, PulseOn: 5, PulseOff: 5, Intensity: 200},
			wantLen: 1 + 4,
		},
		{
			name:    "two byte duration and intensity",
			step:    Step{Duration: 60000, PulseOn: 1, PulseOff: 1, Intensity: 4095},
			wantLen: 1 + 2 + 1 + 1 + 2,
		},
		{
			name:    "four byte duration",
			step:    Step{Duration: 86_400_000, Intensity: 1},
			wantLen: 1 + 4 + 1 + 1 + 1,
		},
		{
			name:    "all zero",
			step:    Step{},
			wantLen: 1 + 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := Encode(tt.step)
			assert.Len(t, raw, tt.wantLen)
			assert.LessOrEqual(t, len(raw), MaxRecordLen)
			assert.Equal(t, tt.step, Decode(raw))
		})
	}
}

func TestDecode_LittleEndianLayout(t *testing.T) {
	// Hand-built record: duration 0x0102 (2 bytes), pulse_on 5 (1 byte),
	// pulse_off 0 (1 byte), intensity 0x0FFF (2 bytes).
	raw := []byte{
		0b01_00_00_01,
		0x02, 0x01,
		0x05,
		0x00,
		0xFF, 0x0F,
	}
	got := Decode(raw)
	assert.Equal(t, Step{Duration: 0x0102, PulseOn: 5, PulseOff: 0, Intensity: 0x0FFF}, got)
}

func TestDecode_ReservedSizeCode(t *testing.T) {
	// Code 3 is reserved: the field has zero width and decodes to zero,
	// and the following fields still line up.
	raw := []byte{
		0b11_00_00_00, // reserved duration width
		0x07,          // pulse_on
		0x09,          // pulse_off
		0x64,          // intensity
	}
	got := Decode(raw)
	assert.Equal(t, Step{Duration: 0, PulseOn: 7, PulseOff: 9, Intensity: 100}, got)
}

func TestDecode_ShortRecordYieldsZeroes(t *testing.T) {
	// A record truncated below the widths its header claims reads as zero
	// for the missing bytes, never as adjacent memory.
	full := Encode(Step{Duration: 1000, PulseOn: 500, PulseOff: 500, Intensity: 4095})
	truncated := full[:3]

	got := Decode(truncated)
	assert.Equal(t, uint32(0), got.PulseOff)
	assert.Equal(t, uint16(0), got.Intensity)
}

func TestDecodeDuration_FastPath(t *testing.T) {
	tests := []struct {
		name string
		step Step
	}{
		{"one byte", Step{Duration: 99, PulseOn: 1, PulseOff: 2, Intensity: 3}},
		{"two bytes", Step{Duration: 30_000, Intensity: 4095}},
		{"four bytes", Step{Duration: 604_800_000, PulseOn: 100, PulseOff: 900, Intensity: 2000}},
		{"zero", Step{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := Encode(tt.step)
			require.Equal(t, tt.step.Duration, DecodeDuration(raw))
			// The fast path must agree with the full decode.
			assert.Equal(t, Decode(raw).Duration, DecodeDuration(raw))
		})
	}
}
