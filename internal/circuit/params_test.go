package circuit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParamExpr(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		// Plain numbers
		{"1.5707", 1.5707, true},
		{"3.14", 3.14, true},
		{"-0.5", -0.5, true},
		{"0", 0, true},
		{"42", 42, true},

		// Pi constant
		{"pi", math.Pi, true},
		{"PI", math.Pi, true},
		{"Pi", math.Pi, true},

		// Pi fractions
		{"pi/2", math.Pi / 2, true},
		{"pi/4", math.Pi / 4, true},
		{"pi/3", math.Pi / 3, true},
		{"pi/8", math.Pi / 8, true},

		// Coefficients
		{"2pi", 2 * math.Pi, true},
		{"2*pi", 2 * math.Pi, true},
		{"3pi/4", 3 * math.Pi / 4, true},
		{"3*pi/4", 3 * math.Pi / 4, true},
		{"2*pi/3", 2 * math.Pi / 3, true},
		{"-4*pi/3", -4 * math.Pi / 3, true},

		// Negative
		{"-pi", -math.Pi, true},
		{"-pi/2", -math.Pi / 2, true},
		{"-3*pi/4", -3 * math.Pi / 4, true},
		{"-2pi", -2 * math.Pi, true},

		// Whitespace
		{" pi ", math.Pi, true},
		{" pi / 2 ", math.Pi / 2, true},
		{" 3 * pi / 4 ", 3 * math.Pi / 4, true},

		// Invalid
		{"", 0, false},
		{"abc", 0, false},
		{"pi/0", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseParamExpr(tt.input)
		if !tt.ok {
			assert.ErrorIs(t, err, ErrBadParam, "ParseParamExpr(%q)", tt.input)
			continue
		}
		require.NoError(t, err, "ParseParamExpr(%q)", tt.input)
		assert.InDelta(t, tt.want, got, 1e-10, "ParseParamExpr(%q)", tt.input)
	}
}

func TestFormatParam(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{math.Pi / 4, "pi/4"},
		{math.Pi / 3, "pi/3"},
		{3 * math.Pi / 4, "3*pi/4"},
		{-math.Pi, "-pi"},
		{-math.Pi / 2, "-pi/2"},
		{2 * math.Pi, "2*pi"},
		{5 * math.Pi / 8, "5*pi/8"},
		{1.5, "1.5"},
		{0, "0"},
		{0.01, "0.01"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatParam(tt.input), "FormatParam(%g)", tt.input)
	}
}

func TestFormatParamKeepsPrecision(t *testing.T) {
	v := 1.2345678901234567
	got, err := ParseParamExpr(FormatParam(v))
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestParseParams(t *testing.T) {
	params, err := ParseParams("pi/2")
	require.NoError(t, err)
	assert.Len(t, params, 1)

	params, err = ParseParams("pi/2,pi/4")
	require.NoError(t, err)
	assert.Len(t, params, 2)

	params, err = ParseParams("1.5")
	require.NoError(t, err)
	assert.Len(t, params, 1)

	_, err = ParseParams("abc")
	assert.Error(t, err)

	_, err = ParseParams("pi/2,garbage")
	assert.Error(t, err)

	params, err = ParseParams("")
	require.NoError(t, err)
	assert.Nil(t, params)
}
