package demos

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"qdemos/internal/circuit"
	"qdemos/internal/sim"
	"qdemos/internal/zx"
)

// MaxVerifyQubits bounds the unitary comparison of original and extracted
// circuits.
const MaxVerifyQubits = 10

// ZXParams configure the random CNOT/H/phase circuit of the ZX pipeline.
type ZXParams struct {
	Qubits int
	Depth  int
	PHad   float64
	PT     float64
}

// DefaultZXParams returns 6 qubits, depth 25 and 0.2 for both gate
// probabilities.
func DefaultZXParams() ZXParams {
	return ZXParams{Qubits: 6, Depth: 25, PHad: 0.2, PT: 0.2}
}

// ZXReport holds every stage of one reduce-and-extract run.
type ZXReport struct {
	Params   ZXParams
	Original *circuit.Circuit
	// OriginalBasic is Original read back from its unreduced graph in
	// basic gates; it is what the original-circuit panel draws.
	OriginalBasic *circuit.Circuit
	Graph         *zx.Graph
	Reduced   *zx.Graph
	Extracted *circuit.Circuit
	// Verified is set when the circuits were small enough to compare;
	// Equivalent then tells whether they implement the same unitary up to
	// global phase.
	Verified   bool
	Equivalent bool
}

// ReduceAndExtract generates a random circuit, converts it to a ZX
// diagram, fully reduces the diagram and extracts a new circuit from it.
func ReduceAndExtract(p ZXParams, rng *rand.Rand) (*ZXReport, error) {
	orig, err := zx.CNOTHadPhaseCircuit(p.Qubits, p.Depth, p.PHad, p.PT, rng)
	if err != nil {
		return nil, errors.Wrap(err, "generating circuit")
	}
	g, err := zx.FromCircuit(orig)
	if err != nil {
		return nil, errors.Wrap(err, "building graph")
	}
	drawn, err := zx.Extract(g)
	if err != nil {
		return nil, errors.Wrap(err, "extracting unreduced circuit")
	}
	reduced := g.Clone()
	zx.FullReduce(reduced)
	reduced.Normalize()

	extracted, err := zx.Extract(reduced)
	if err != nil {
		return nil, errors.Wrap(err, "extracting circuit")
	}
	r := &ZXReport{
		Params:        p,
		Original:      orig,
		OriginalBasic: zx.BasicGates(drawn),
		Graph:         g,
		Reduced:       reduced,
		Extracted:     zx.BasicGates(extracted),
	}
	if p.Qubits <= MaxVerifyQubits {
		r.Equivalent, err = equivalent(r.Original, r.Extracted)
		if err != nil {
			return nil, err
		}
		r.Verified = true
	}
	return r, nil
}

// equivalent compares the unitaries of two circuits up to global phase.
func equivalent(a, b *circuit.Circuit) (bool, error) {
	ua, err := sim.Unitary(a)
	if err != nil {
		return false, errors.Wrap(err, "unitary of original")
	}
	ub, err := sim.Unitary(b)
	if err != nil {
		return false, errors.Wrap(err, "unitary of result")
	}
	return sim.EqualUpToGlobalPhase(ua, ub, 1e-6), nil
}

func runZCopy(ctx context.Context, env *Env) error {
	g := zx.ZCopy()
	env.println(g)
	env.println(g.Dump())
	return nil
}

func runZX(ctx context.Context, env *Env) error {
	r, err := ReduceAndExtract(env.ZX, env.Rand)
	if err != nil {
		return err
	}
	env.println("== Original circuit")
	env.println(r.OriginalBasic.Draw())
	env.println(r.Original.Stats())
	env.println("\n== Original circuit's graph")
	env.println(r.Graph)
	env.println("\n== Reduced graph")
	env.println(r.Reduced)
	env.println(r.Reduced.Stats())
	env.println("\n== Extracted circuit")
	env.println(r.Extracted.Draw())
	env.println(r.Extracted.Stats())
	if r.Verified {
		env.printf("\nEquivalent to the original: %t\n", r.Equivalent)
	}
	env.logger().Info("zx pipeline finished",
		zap.Int("qubits", r.Params.Qubits),
		zap.Int("gates_before", len(r.Original.Gates)),
		zap.Int("gates_after", len(r.Extracted.Gates)),
	)
	return nil
}

// ZXPass optimizes a unitary circuit by reducing its ZX diagram and
// extracting it again.
func ZXPass(c *circuit.Circuit) (*circuit.Circuit, error) {
	g, err := zx.FromCircuit(c)
	if err != nil {
		return nil, err
	}
	zx.FullReduce(g)
	out, err := zx.Extract(g)
	if err != nil {
		return nil, err
	}
	return zx.BasicGates(out), nil
}

func runZXTranspile(ctx context.Context, env *Env) error {
	qc := circuit.Random(4, 4, env.Rand)
	env.println("Before:")
	env.println(qc.Draw())

	env.println("Default method:")
	env.println(qc.Optimize().Draw())

	zc, err := ZXPass(qc)
	if err != nil {
		return errors.Wrap(err, "zx pass")
	}
	env.println("zxpass:")
	env.println(zc.Draw())

	ok, err := equivalent(qc, zc)
	if err != nil {
		return err
	}
	env.printf("Equivalent up to global phase: %t\n", ok)
	return nil
}
