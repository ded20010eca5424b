package circuit

import (
	"math"
	"math/rand"
)

var (
	randomOneQubit   = []string{"H", "X", "Y", "Z", "S", "SDG", "T", "TDG", "SX", "RX", "RY", "RZ", "P"}
	randomTwoQubit   = []string{"CX", "CY", "CZ", "CH", "SWAP", "CRZ", "CP"}
	randomThreeQubit = []string{"CCX", "CSWAP"}
)

// Random returns a circuit of the given depth. Each layer shuffles the
// qubits and fills them with one-, two- and three-qubit gates drawn
// uniformly from the standard set. Angles are uniform in [0, 2pi).
func Random(numQubits, depth int, rng *rand.Rand) *Circuit {
	c := New(numQubits, 0)
	for d := 0; d < depth; d++ {
		qs := rng.Perm(numQubits)
		for len(qs) > 0 {
			k := 1 + rng.Intn(min(3, len(qs)))
			var pool []string
			switch k {
			case 1:
				pool = randomOneQubit
			case 2:
				pool = randomTwoQubit
			default:
				pool = randomThreeQubit
			}
			t := pool[rng.Intn(len(pool))]
			g := single(t, qs[k-1])
			for i := 0; i < NumParams(t); i++ {
				g.Params = append(g.Params, rng.Float64()*2*math.Pi)
			}
			switch k {
			case 2:
				g.Control = qs[0]
			case 3:
				g.Controls = []int{qs[0]}
				g.Control = qs[1]
			}
			c.add(g)
			qs = qs[k:]
		}
	}
	return c
}
