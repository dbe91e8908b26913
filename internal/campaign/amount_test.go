package campaign

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		n    int64
		dec  uint8
		want string
	}{
		{0, 6, "0"},
		{1, 6, "0.000001"},
		{1_500_000, 6, "1.5"},
		{100_000_000, 6, "100"},
		{-2_250_000, 6, "-2.25"},
		{42, 0, "42"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUnits(big.NewInt(tt.n), tt.dec))
	}
	assert.Equal(t, "0", FormatUnits(nil, 6))
}

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in   string
		dec  uint8
		want int64
	}{
		{"0", 6, 0},
		{"1", 6, 1_000_000},
		{"1.5", 6, 1_500_000},
		{".25", 6, 250_000},
		{"0.000001", 6, 1},
		{" 12 ", 6, 12_000_000},
		{"-3", 6, -3_000_000},
		{"7", 0, 7},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUnits(tt.in, tt.dec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Int64())
		})
	}
}

func TestParseUnitsErrors(t *testing.T) {
	for _, in := range []string{"", "abc", "1.0000001", "1..2", "--1", "+-1"} {
		_, err := ParseUnits(in, 6)
		assert.Error(t, err, in)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	n, err := ParseUnits(FormatUnits(big.NewInt(123_456_789), 6), 6)
	require.NoError(t, err)
	assert.Equal(t, int64(123_456_789), n.Int64())
}
