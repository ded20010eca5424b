package zx

import (
	"math"

	"qdemos/internal/circuit"
)

// quarterGates spells a phase of k*pi/4 with named gates.
var quarterGates = [8][]string{
	nil,
	{"T"},
	{"S"},
	{"S", "T"},
	{"Z"},
	{"Z", "T"},
	{"SDG"},
	{"TDG"},
}

// BasicGates returns a copy of c with phase gates whose angle is a multiple
// of pi/4 rewritten as Z, S, T and their adjoints. RZ gates are treated as
// phase gates, so the result may differ by a global phase.
func BasicGates(c *circuit.Circuit) *circuit.Circuit {
	out := c.Copy()
	gates := out.Gates
	out.Gates = nil
	for _, g := range gates {
		switch g.Type {
		case "P", "U1", "RZ":
		default:
			out.Gates = append(out.Gates, g)
			continue
		}
		k := g.Params[0] / (math.Pi / 4)
		if g.IsConditioned() || math.Abs(k-math.Round(k)) > phaseTol {
			out.Gates = append(out.Gates, g)
			continue
		}
		q := ((int(math.Round(k)) % 8) + 8) % 8
		for _, name := range quarterGates[q] {
			out.Gates = append(out.Gates, circuit.Gate{Type: name, Target: g.Target, Control: -1, Cbit: -1, Condition: -1})
		}
	}
	return out
}
