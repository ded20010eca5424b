package circuit

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrBadParam is returned when a parameter expression cannot be parsed.
var ErrBadParam = errors.New("invalid parameter expression")

// paramPattern matches a single parameter value: numbers, pi expressions, or combinations.
// Examples: "1.5707", "pi", "pi/2", "3*pi/4", "-pi", "-2*pi/3", "3.14e-2"
const paramPattern = `-?(?:\d*\.?\d*\*?pi(?:/\d+\.?\d*)?|\d*\.?\d+(?:[eE][+\-]?\d+)?)`

// piExprRegex matches expressions like: pi, 2pi, 2*pi, pi/2, 3pi/4, 3*pi/4, -pi, -pi/2, -3*pi/4
var piExprRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)

// ParseParamExpr parses a single parameter expression, supporting plain
// numbers and pi expressions.
//
// Supported formats:
//   - Plain numbers: "1.5707", "3.14", "-0.5"
//   - Pi constant: "pi"
//   - Pi fractions: "pi/2", "pi/4", "pi/3"
//   - Coefficients: "2pi", "2*pi", "3pi/4", "3*pi/4"
//   - Negative: "-pi", "-pi/2", "-3*pi/4"
func ParseParamExpr(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.Wrap(ErrBadParam, "empty")
	}

	if val, err := strconv.ParseFloat(s, 64); err == nil {
		return val, nil
	}

	matches := piExprRegex.FindStringSubmatch(strings.ToLower(s))
	if matches == nil {
		return 0, errors.Wrapf(ErrBadParam, "%q", s)
	}

	coeff := 1.0
	if matches[2] != "" {
		var err error
		if coeff, err = strconv.ParseFloat(matches[2], 64); err != nil {
			return 0, errors.Wrapf(ErrBadParam, "%q", s)
		}
	}
	result := coeff * math.Pi
	if matches[3] != "" {
		denom, err := strconv.ParseFloat(matches[3], 64)
		if err != nil || denom == 0 {
			return 0, errors.Wrapf(ErrBadParam, "%q", s)
		}
		result /= denom
	}
	if matches[1] == "-" {
		result = -result
	}
	return result, nil
}

// ParseParams parses a comma-separated parameter list.
func ParseParams(input string) ([]float64, error) {
	var params []float64
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		val, err := ParseParamExpr(part)
		if err != nil {
			return nil, err
		}
		params = append(params, val)
	}
	return params, nil
}

// piDenominators are tried in order when formatting a value as a pi fraction.
var piDenominators = []int{1, 2, 3, 4, 6, 8, 12, 16}

// FormatParam formats a parameter value, using pi notation when the value
// is a small rational multiple of pi. Other values keep full precision so
// that emitted QASM reads back exactly.
func FormatParam(val float64) string {
	if val == 0 {
		return "0"
	}
	for _, den := range piDenominators {
		num := math.Round(val / math.Pi * float64(den))
		if num == 0 || math.Abs(num) > 4*float64(den) {
			continue
		}
		if math.Abs(val-num*math.Pi/float64(den)) < 1e-10 {
			return piFraction(int(num), den)
		}
	}
	return strconv.FormatFloat(val, 'g', -1, 64)
}

func piFraction(num, den int) string {
	sign := ""
	if num < 0 {
		sign = "-"
		num = -num
	}
	s := "pi"
	if num != 1 {
		s = strconv.Itoa(num) + "*pi"
	}
	if den != 1 {
		s += "/" + strconv.Itoa(den)
	}
	return sign + s
}
