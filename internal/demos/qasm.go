package demos

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"qdemos/internal/backend"
	"qdemos/internal/circuit"
)

// DeutschCircuit runs Deutsch's algorithm against the oracle for secret.
// The oracle computes f(x) = s0 XOR (x AND (s0 XOR s1)) for secret
// (s0, s1), so f(0) = s0 and f(1) = s1. q[0] then reads f(0) XOR f(1).
func DeutschCircuit(secret [2]int) *circuit.Circuit {
	c := circuit.New(2, 1)
	c.X(1)
	c.Barrier()
	c.H(0)
	c.H(1)
	c.Barrier()
	if secret[0] == 1 {
		c.CX(0, 1)
		c.X(1)
	}
	if secret[1] == 1 {
		c.CX(0, 1)
	}
	c.Barrier()
	c.H(0)
	c.Measure(0, 0)
	return c
}

func runDeutsch(ctx context.Context, env *Env) error {
	secret := [2]int{env.Rand.Intn(2), env.Rand.Intn(2)}
	c := DeutschCircuit(secret)

	env.printf("f(0) = %d, f(1) = %d\n", secret[0], secret[1])
	env.println(c.Draw())
	if _, err := env.sample(ctx, c, backend.MinQubits(2)); err != nil {
		return err
	}
	env.println(c.ToQASM())
	env.println(c.ToQASM3())
	return nil
}

// WireCircuit measures a single untouched qubit.
func WireCircuit() *circuit.Circuit {
	c := circuit.New(1, 1)
	c.Measure(0, 0)
	return c
}

func runWire(ctx context.Context, env *Env) error {
	c := WireCircuit()
	env.println(c.Draw())
	env.println(c.ToQASM())
	env.println(c.ToQASM3())
	return nil
}

// StdGatesCircuit applies every gate of the standard library once.
func StdGatesCircuit() *circuit.Circuit {
	c := circuit.New(3, 0)
	c.P(math.Pi, 0)

	c.X(0)
	c.Y(0)
	c.Z(0)

	c.H(0)
	c.S(0)
	c.Sdg(0)

	c.T(0)
	c.Tdg(0)

	c.SX(0)

	c.RX(math.Pi, 0)
	c.RY(math.Pi, 0)
	c.RZ(math.Pi, 0)

	c.CX(0, 1)
	c.CY(0, 1)
	c.CZ(0, 1)
	c.CP(math.Pi, 0, 1)
	c.CRX(math.Pi, 0, 1)
	c.CRY(math.Pi, 0, 1)
	c.CRZ(math.Pi, 0, 1)
	c.CH(0, 1)

	c.Swap(0, 1)

	c.CCX(0, 1, 2)
	c.CSwap(0, 1, 2)

	c.CU(math.Pi, math.Pi, math.Pi, math.Pi, 0, 1)

	c.I(0)
	return c
}

func runStdGates(ctx context.Context, env *Env) error {
	c := StdGatesCircuit()
	env.println(c.ToQASM())
	env.println(c.ToQASM3())
	return nil
}

// RZSnippets compares rz with u1: the two differ by a global phase, which
// becomes a relative phase once the gate is controlled.
var RZSnippets = []string{
	`
OPENQASM 2.0;
include "qelib1.inc";
qreg q[1];
rz(pi/2) q[0];
`,
	`
OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
rz(pi/4) q[0];
cx q[1],q[0];
rz(-pi/4) q[0];
cx q[1],q[0];
`,
	`
OPENQASM 2.0;
include "qelib1.inc";
qreg q[1];
u1(pi/2) q[0];
`,
	`
OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
u1(pi/4) q[0];
cx q[1],q[0];
u1(-pi/4) q[0];
cx q[1],q[0];
`,
}

func runRZ(ctx context.Context, env *Env) error {
	b, err := env.Provider.Get("unitary_simulator")
	if err != nil {
		return err
	}
	circuits := make([]*circuit.Circuit, len(RZSnippets))
	for i, src := range RZSnippets {
		c, err := circuit.ParseQASM(src)
		if err != nil {
			return errors.Wrapf(err, "snippet %d", i+1)
		}
		res, err := env.execute(ctx, b, c)
		if err != nil {
			return errors.Wrapf(err, "snippet %d", i+1)
		}
		env.println(formatMatrix(res.Unitary, 8))
		env.println()
		circuits[i] = c
	}
	for _, c := range circuits {
		env.println(c.ToQASM())
	}
	return nil
}
