package zx

import (
	"math/rand"

	"github.com/pkg/errors"

	"qdemos/internal/circuit"
)

// CNOTHadPhaseCircuit generates a random circuit of depth gates over
// CNOT, H, S and T. Each gate is H with probability pHad, T with
// probability pT, and S or CNOT with equal shares of the rest.
func CNOTHadPhaseCircuit(qubits, depth int, pHad, pT float64, rng *rand.Rand) (*circuit.Circuit, error) {
	switch {
	case qubits < 2:
		return nil, errors.Errorf("need at least 2 qubits, got %d", qubits)
	case depth < 0:
		return nil, errors.Errorf("negative depth %d", depth)
	case pHad < 0 || pT < 0 || pHad+pT > 1:
		return nil, errors.Errorf("invalid gate probabilities pHad=%g pT=%g", pHad, pT)
	}
	pS := 0.5 * (1 - pHad - pT)
	c := circuit.New(qubits, 0)
	for i := 0; i < depth; i++ {
		r := rng.Float64()
		switch {
		case r > 1-pHad:
			c.H(rng.Intn(qubits))
		case r > 1-pHad-pS:
			c.S(rng.Intn(qubits))
		case r > 1-pHad-pS-pT:
			c.T(rng.Intn(qubits))
		default:
			tgt := rng.Intn(qubits)
			ctrl := rng.Intn(qubits)
			for ctrl == tgt {
				ctrl = rng.Intn(qubits)
			}
			c.CX(ctrl, tgt)
		}
	}
	return c, nil
}
