package circuit

import (
	"fmt"
	"math"
	"strings"
)

// Census counts the gates of a circuit by class.
type Census struct {
	Qubits      int
	Gates       int
	TCount      int
	Cliffords   int
	TwoQubit    int
	CNOTs       int
	Hadamards   int
	Measurement int
}

// phaseQuarters returns the phase of a diagonal single-qubit gate in units
// of pi/4, or -1 if the gate is not a quarter-turn phase.
func phaseQuarters(g Gate) int {
	var theta float64
	switch g.Type {
	case "Z":
		return 4
	case "S":
		return 2
	case "SDG":
		return 6
	case "T":
		return 1
	case "TDG":
		return 7
	case "P", "U1", "RZ":
		theta = g.Params[0]
	default:
		return -1
	}
	k := math.Round(theta / (math.Pi / 4))
	if math.Abs(theta-k*math.Pi/4) > 1e-9 {
		return -1
	}
	return ((int(k) % 8) + 8) % 8
}

var cliffordTypes = map[string]bool{
	"I": true, "H": true, "X": true, "Y": true, "Z": true, "S": true, "SDG": true,
	"SX": true, "SXDG": true, "CX": true, "CY": true, "CZ": true, "SWAP": true,
}

// Census returns the gate census. Barriers are not counted.
func (c *Circuit) Census() Census {
	cs := Census{Qubits: c.NumQubits()}
	for _, g := range c.Gates {
		switch g.Type {
		case "BARRIER":
			continue
		case "MEASURE", "RESET":
			cs.Measurement++
			cs.Gates++
			continue
		}
		cs.Gates++
		if q := phaseQuarters(g); q >= 0 {
			if q%2 == 1 {
				cs.TCount++
			} else {
				cs.Cliffords++
			}
		} else if cliffordTypes[g.Type] {
			cs.Cliffords++
		}
		if len(g.Wires(cs.Qubits)) == 2 {
			cs.TwoQubit++
			if g.Type == "CX" {
				cs.CNOTs++
			}
		}
		if g.Type == "H" {
			cs.Hadamards++
		}
	}
	return cs
}

// Stats returns a human readable gate census.
func (c *Circuit) Stats() string {
	cs := c.Census()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Circuit on %d qubits with %d gates.\n", cs.Qubits, cs.Gates)
	fmt.Fprintf(&sb, "        %d is the T-count\n", cs.TCount)
	fmt.Fprintf(&sb, "        %d Cliffords among which\n", cs.Cliffords)
	fmt.Fprintf(&sb, "        %d 2-qubit gates (%d CNOT, %d other) and\n", cs.TwoQubit, cs.CNOTs, cs.TwoQubit-cs.CNOTs)
	fmt.Fprintf(&sb, "        %d Hadamard gates.", cs.Hadamards)
	return sb.String()
}
