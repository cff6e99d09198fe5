package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrect(t *testing.T) {
	tests := []struct {
		name      string
		factor    uint16
		intensity uint16
		want      uint16
	}{
		{"unity passes through", 65535, 4095, 4095},
		{"unity on zero", 65535, 0, 0},
		{"zero factor", 0, 4095, 0},
		{"half factor", 32768, 4000, 2000},
		{"half factor rounds", 32768, 3, 2}, // 1.500023 rounds up
		{"small factor on zero", 19, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCorrector([]uint16{tt.factor})
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Correct(0, tt.intensity))
		})
	}
}

func TestCorrect_NeverExceedsFullScale(t *testing.T) {
	// Factors are at most unity, so full scale in is at most full scale
	// out, for every stored factor value we sweep over.
	for factor := 0; factor <= 65535; factor += 511 {
		c, err := NewCorrector([]uint16{uint16(factor)})
		require.NoError(t, err)
		got := c.Correct(0, 4095)
		assert.LessOrEqual(t, got, uint16(4095), "factor=%d", factor)
		assert.Equal(t, uint16(0), c.Correct(0, 0), "factor=%d", factor)
	}
}

func TestNewCorrector_DefaultsToUnity(t *testing.T) {
	c, err := NewCorrector([]uint16{100, 200})
	require.NoError(t, err)

	// Channels without an explicit factor pass intensities unchanged.
	assert.Equal(t, uint16(4095), c.Correct(2, 4095))
	assert.Equal(t, uint16(123), c.Correct(Channels-1, 123))
}

func TestNewCorrector_TooManyFactors(t *testing.T) {
	_, err := NewCorrector(make([]uint16, Channels+1))
	assert.Error(t, err)
}
