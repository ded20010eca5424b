package sim

import (
	"math/rand"

	"qdemos/internal/circuit"
)

// NoiseModel is a simple device noise model. After every gate each qubit
// it touched suffers a uniformly random Pauli error with the single- or
// two-qubit error probability; every measurement result is flipped with
// probability ReadoutError.
type NoiseModel struct {
	SingleQubitError float64
	TwoQubitError    float64
	ReadoutError     float64
}

// IsZero reports whether the model never injects an error.
func (n *NoiseModel) IsZero() bool {
	return n == nil || (n.SingleQubitError == 0 && n.TwoQubitError == 0 && n.ReadoutError == 0)
}

var paulis = []circuit.Matrix2{
	{{0, 1}, {1, 0}},
	{{0, -1i}, {1i, 0}},
	{{1, 0}, {0, -1}},
}

// afterGate injects gate errors on the wires of g.
func (n *NoiseModel) afterGate(s *StateVector, g circuit.Gate, rng *rand.Rand) {
	wires := g.Wires(s.NumQubits)
	p := n.SingleQubitError
	if len(wires) > 1 {
		p = n.TwoQubitError
	}
	if p == 0 {
		return
	}
	for _, q := range wires {
		if rng.Float64() < p {
			s.apply1(q, paulis[rng.Intn(len(paulis))], 0)
		}
	}
}

// readout flips a measured bit with probability ReadoutError.
func (n *NoiseModel) readout(bit int, rng *rand.Rand) int {
	if n.ReadoutError > 0 && rng.Float64() < n.ReadoutError {
		return 1 - bit
	}
	return bit
}
