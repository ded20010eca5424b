package circuit

import "math"

var inversePairs = map[string]string{
	"S": "SDG", "SDG": "S",
	"T": "TDG", "TDG": "T",
	"SX": "SXDG", "SXDG": "SX",
}

// rotationPeriod is the angle after which a rotation is the identity up to
// global phase.
var rotationPeriod = map[string]float64{
	"RX": 2 * math.Pi, "RY": 2 * math.Pi, "RZ": 2 * math.Pi,
	"P": 2 * math.Pi, "U1": 2 * math.Pi, "CP": 2 * math.Pi, "CU1": 2 * math.Pi,
	"CRX": 4 * math.Pi, "CRY": 4 * math.Pi, "CRZ": 4 * math.Pi,
}

// Optimize returns a copy of the circuit with adjacent self-inverse and
// inverse pairs cancelled, adjacent rotations about the same axis merged and
// identity rotations dropped. Passes repeat until nothing changes.
func (c *Circuit) Optimize() *Circuit {
	out := c.Copy()
	for out.optimizePass() {
	}
	return out
}

func (c *Circuit) optimizePass() bool {
	removed := make([]bool, len(c.Gates))
	changed := false
	for i := range c.Gates {
		if removed[i] {
			continue
		}
		g := &c.Gates[i]
		if !g.IsUnitary() || g.IsConditioned() || g.Type == "UNITARY" {
			continue
		}
		if isIdentity(*g) {
			removed[i], changed = true, true
			continue
		}
		j := c.nextOnWires(i, removed)
		if j < 0 {
			continue
		}
		h := &c.Gates[j]
		if h.IsConditioned() || !sameWires(*g, *h) {
			continue
		}
		switch {
		case g.Type == h.Type && SelfInverse(g.Type), inversePairs[g.Type] == h.Type:
			removed[i], removed[j], changed = true, true, true
		case g.Type == h.Type && rotationPeriod[g.Type] > 0:
			h.Params[0] += g.Params[0]
			removed[i], changed = true, true
		}
	}
	if !changed {
		return false
	}
	kept := c.Gates[:0]
	for i, g := range c.Gates {
		if !removed[i] {
			kept = append(kept, g)
		}
	}
	c.Gates = kept
	return true
}

func isIdentity(g Gate) bool {
	if g.Type == "I" {
		return true
	}
	period, ok := rotationPeriod[g.Type]
	if !ok {
		return false
	}
	r := math.Mod(math.Abs(g.Params[0]), period)
	return r < 1e-9 || period-r < 1e-9
}

// nextOnWires returns the index of the first live gate after i sharing a
// wire with gate i, or -1.
func (c *Circuit) nextOnWires(i int, removed []bool) int {
	n := c.NumQubits()
	mine := map[int]bool{}
	for _, q := range c.Gates[i].Wires(n) {
		mine[q] = true
	}
	for j := i + 1; j < len(c.Gates); j++ {
		if removed[j] {
			continue
		}
		for _, q := range c.Gates[j].Wires(n) {
			if mine[q] {
				return j
			}
		}
	}
	return -1
}

// sameWires reports whether two gates act on the same wires in the same
// roles. CZ, SWAP and CP are symmetric in their two qubits.
func sameWires(a, b Gate) bool {
	switch a.Type {
	case "CZ", "SWAP", "CP", "CU1":
		if a.Control == b.Target && a.Target == b.Control {
			return true
		}
	}
	if a.Control != b.Control || a.Target != b.Target || len(a.Controls) != len(b.Controls) {
		return false
	}
	for i := range a.Controls {
		if a.Controls[i] != b.Controls[i] {
			return false
		}
	}
	return true
}
