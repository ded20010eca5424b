package demos

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"qdemos/internal/backend"
	"qdemos/internal/circuit"
	"qdemos/internal/sim"
)

// BellCircuit prepares (|00> + |11>)/sqrt(2) and measures both qubits.
func BellCircuit() *circuit.Circuit {
	c := circuit.New(2, 2)
	c.H(0)
	c.CX(0, 1)
	c.MeasureRange([]int{0, 1}, []int{0, 1})
	return c
}

func runBell(ctx context.Context, env *Env) error {
	c := BellCircuit()
	env.println(c.Draw())
	_, err := env.sample(ctx, c, backend.MinQubits(2))
	return err
}

// GHZCircuit prepares (|000> + |111>)/sqrt(2) and measures all three
// qubits.
func GHZCircuit() *circuit.Circuit {
	c := circuit.New(3, 3)
	c.H(0)
	c.CX(0, 1)
	c.CX(0, 2)
	c.MeasureRange([]int{0, 1, 2}, []int{0, 1, 2})
	return c
}

func runGHZ(ctx context.Context, env *Env) error {
	c := GHZCircuit()
	env.println(c.Draw())
	_, err := env.sample(ctx, c, backend.MinQubits(3))
	return err
}

// hardyPrep takes |0> to sqrt(1/3)|0> + sqrt(2/3)|1>.
var hardyPrep = circuit.Matrix2{
	{complex(math.Sqrt(1.0/3), 0), complex(math.Sqrt(2.0/3), 0)},
	{complex(math.Sqrt(2.0/3), 0), complex(-math.Sqrt(1.0/3), 0)},
}

// appendHardy turns |00> on qubits 0 and 1 of c into the Hardy state
// (|00> + |01> + |10>)/sqrt(3).
func appendHardy(c *circuit.Circuit) error {
	if err := c.Unitary(hardyPrep, 0, "hardy"); err != nil {
		return err
	}
	c.CH(0, 1)
	c.CX(1, 0)
	return nil
}

// HardyCircuit prepares the Hardy state and measures both qubits.
func HardyCircuit() (*circuit.Circuit, error) {
	c := circuit.New(2, 2)
	if err := appendHardy(c); err != nil {
		return nil, err
	}
	c.MeasureRange([]int{0, 1}, []int{0, 1})
	return c, nil
}

func runHardy(ctx context.Context, env *Env) error {
	c, err := HardyCircuit()
	if err != nil {
		return err
	}
	env.println(c.Draw())
	_, err = env.sample(ctx, c, backend.MinQubits(2))
	return err
}

// RandomOpSubcircuit prepares the Hardy state on qubits 0 and 1, then
// applies to qubit 2 the identity for |00>, H for |01> and Rz(pi/2) for
// |10>.
func RandomOpSubcircuit() (*circuit.Circuit, error) {
	sub := circuit.New(3, 0)
	sub.Name = "{1, H, Rz(π/2)}"
	if err := appendHardy(sub); err != nil {
		return nil, err
	}
	sub.CH(0, 2)
	sub.CRZ(math.Pi/2, 1, 2)
	return sub, nil
}

// MPCircuit applies RandomOpSubcircuit and measures the two control
// qubits.
func MPCircuit() (*circuit.Circuit, error) {
	sub, err := RandomOpSubcircuit()
	if err != nil {
		return nil, err
	}
	c := circuit.New(3, 2)
	if err := c.Compose(sub, []int{0, 1, 2}, nil); err != nil {
		return nil, err
	}
	c.MeasureRange([]int{0, 1}, []int{0, 1})
	return c, nil
}

func runMP(ctx context.Context, env *Env) error {
	c, err := MPCircuit()
	if err != nil {
		return err
	}
	env.println(c.Draw())
	_, err = env.sample(ctx, c, backend.MinQubits(3))
	return err
}

// ControlledSqrtY is the two-qubit block CRY(pi/2) followed by Rz(pi/4) on
// the control.
func ControlledSqrtY() *circuit.Circuit {
	sub := circuit.New(2, 0)
	sub.Name = "ctrl-Y^{A/2}"
	sub.CRY(math.Pi/2, 0, 1)
	sub.RZ(math.Pi/4, 0)
	return sub
}

// WWJCircuit applies Y to qubit 0, then ControlledSqrtY in both
// directions.
func WWJCircuit() (*circuit.Circuit, error) {
	sub := ControlledSqrtY()
	c := circuit.New(2, 0)
	c.Y(0)
	if err := c.Compose(sub, []int{0, 1}, nil); err != nil {
		return nil, err
	}
	if err := c.Compose(sub, []int{1, 0}, nil); err != nil {
		return nil, err
	}
	return c, nil
}

func runWWJ(ctx context.Context, env *Env) error {
	c, err := WWJCircuit()
	if err != nil {
		return err
	}
	env.println(c.Draw())
	b, err := env.Provider.Get("unitary_simulator")
	if err != nil {
		return err
	}
	res, err := env.execute(ctx, b, c)
	if err != nil {
		return err
	}
	env.println(formatMatrix(res.Unitary, 3))
	return nil
}

// Frauchiger-Renner register order: two systems and four agents, one
// qubit each.
const (
	frR = iota
	frAlice
	frS
	frBob
	frUrsula
	frWigner
)

// FrauchigerRennerLabs builds the experiment up to Bob's measurement: R is
// prepared in sqrt(1/3)|0> + sqrt(2/3)|1>, Alice copies R and applies H to
// S if she saw 1, Bob copies S.
func FrauchigerRennerLabs() (*circuit.Circuit, error) {
	one := func(name string) circuit.Register { return circuit.Register{Name: name, Size: 1} }
	c := circuit.NewWithRegisters(
		[]circuit.Register{one("r"), one("alice"), one("s"), one("bob"), one("ursula"), one("wigner")},
		[]circuit.Register{{Name: "c", Size: 2}},
	)
	if err := c.Initialize(frR, complex(math.Sqrt(1.0/3), 0), complex(math.Sqrt(2.0/3), 0)); err != nil {
		return nil, err
	}

	// Alice measures R and applies H to S on outcome 1.
	c.CX(frR, frAlice)
	c.CH(frAlice, frS)
	c.Barrier()

	// Bob measures S.
	c.CX(frS, frBob)
	c.Barrier()
	return c, nil
}

// AppendFrauchigerRennerObservers adds Ursula's and Wigner's measurements
// of the two labs in the basis |ok> = (|00> - |11>)/sqrt(2),
// |fail> = (|00> + |11>)/sqrt(2), recording them in c[0] and c[1].
func AppendFrauchigerRennerObservers(c *circuit.Circuit) {
	c.CX(frR, frAlice)
	c.H(frR)
	c.CX(frR, frUrsula)
	c.Barrier()

	c.CX(frS, frBob)
	c.H(frS)
	c.CX(frS, frWigner)
	c.Barrier()

	c.Measure(frUrsula, 0)
	c.Measure(frWigner, 1)
}

// FrauchigerRennerCircuit is the whole experiment.
func FrauchigerRennerCircuit() (*circuit.Circuit, error) {
	c, err := FrauchigerRennerLabs()
	if err != nil {
		return nil, err
	}
	AppendFrauchigerRennerObservers(c)
	return c, nil
}

type labeledAmplitude struct {
	label string
	amp   complex128
}

// rasb lists the amplitudes of the basis states of R, A, S and B with the
// observers in |00>. Labels read R first.
func rasb(s *sim.StateVector) []labeledAmplitude {
	out := make([]labeledAmplitude, 16)
	for i := range out {
		label := make([]byte, 4)
		for k := range label {
			label[k] = '0' + byte(i>>k&1)
		}
		out[i] = labeledAmplitude{label: string(label), amp: s.Amplitudes[i]}
	}
	return out
}

func runFrauchigerRenner(ctx context.Context, env *Env) error {
	c, err := FrauchigerRennerLabs()
	if err != nil {
		return err
	}
	sv, err := env.statevector(ctx, c)
	if err != nil {
		return errors.Wrap(err, "simulating labs")
	}
	env.println("\nState vector (RASB) is:")
	for _, la := range rasb(sv) {
		env.printf(" ['%s' '%s']\n", la.label, sim.FormatComplex(la.amp, 3))
	}

	AppendFrauchigerRennerObservers(c)
	env.println(c.Draw())
	_, err = env.sample(ctx, c, backend.MinQubits(6))
	return err
}
