package sim

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"

	"qdemos/internal/circuit"
)

func expi(x float64) complex128 {
	return cmplx.Exp(complex(0, x))
}

func u3(theta, phi, lambda float64) circuit.Matrix2 {
	c, s := complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
	return circuit.Matrix2{
		{c, -expi(lambda) * s},
		{expi(phi) * s, expi(phi+lambda) * c},
	}
}

// GateMatrix returns the 2x2 matrix a gate applies to its target. For
// controlled gates this is the block applied when every control is set.
func GateMatrix(g circuit.Gate) (circuit.Matrix2, error) {
	if g.Type == "UNITARY" {
		if g.Matrix == nil {
			return circuit.Matrix2{}, errors.WithStack(circuit.ErrNotUnitary)
		}
		return *g.Matrix, nil
	}
	if g.Type == "CU" {
		m := u3(g.Params[0], g.Params[1], g.Params[2])
		ph := expi(g.Params[3])
		for i := range m {
			for j := range m[i] {
				m[i][j] *= ph
			}
		}
		return m, nil
	}
	p := func(i int) float64 {
		if i < len(g.Params) {
			return g.Params[i]
		}
		return 0
	}
	h := complex(1/math.Sqrt2, 0)
	switch circuit.BaseType(g.Type) {
	case "I":
		return circuit.Matrix2{{1, 0}, {0, 1}}, nil
	case "H":
		return circuit.Matrix2{{h, h}, {h, -h}}, nil
	case "X":
		return circuit.Matrix2{{0, 1}, {1, 0}}, nil
	case "Y":
		return circuit.Matrix2{{0, -1i}, {1i, 0}}, nil
	case "Z":
		return circuit.Matrix2{{1, 0}, {0, -1}}, nil
	case "S":
		return circuit.Matrix2{{1, 0}, {0, 1i}}, nil
	case "SDG":
		return circuit.Matrix2{{1, 0}, {0, -1i}}, nil
	case "T":
		return circuit.Matrix2{{1, 0}, {0, expi(math.Pi / 4)}}, nil
	case "TDG":
		return circuit.Matrix2{{1, 0}, {0, expi(-math.Pi / 4)}}, nil
	case "SX":
		return circuit.Matrix2{{0.5 + 0.5i, 0.5 - 0.5i}, {0.5 - 0.5i, 0.5 + 0.5i}}, nil
	case "SXDG":
		return circuit.Matrix2{{0.5 - 0.5i, 0.5 + 0.5i}, {0.5 + 0.5i, 0.5 - 0.5i}}, nil
	case "RX":
		c, s := complex(math.Cos(p(0)/2), 0), complex(0, -math.Sin(p(0)/2))
		return circuit.Matrix2{{c, s}, {s, c}}, nil
	case "RY":
		c, s := complex(math.Cos(p(0)/2), 0), complex(math.Sin(p(0)/2), 0)
		return circuit.Matrix2{{c, -s}, {s, c}}, nil
	case "RZ":
		return circuit.Matrix2{{expi(-p(0) / 2), 0}, {0, expi(p(0) / 2)}}, nil
	case "P", "U1":
		return circuit.Matrix2{{1, 0}, {0, expi(p(0))}}, nil
	case "U2":
		return u3(math.Pi/2, p(0), p(1)), nil
	case "U3", "U":
		return u3(p(0), p(1), p(2)), nil
	}
	return circuit.Matrix2{}, errors.Wrapf(circuit.ErrUnsupportedGate, "%q", g.Type)
}
