package demos

import (
	"bytes"
	"context"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qdemos/internal/circuit"
	"qdemos/internal/sim"
)

func gateTypes(c *circuit.Circuit) []string {
	var out []string
	for _, g := range c.Gates {
		out = append(out, g.Type)
	}
	return out
}

func counts(t *testing.T, c *circuit.Circuit, shots int) sim.Counts {
	t.Helper()
	res, err := sim.Run(c, sim.Options{Shots: shots, Seed: 11})
	require.NoError(t, err)
	return res
}

func TestRegistry(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range All() {
		assert.False(t, seen[d.Name], "duplicate demo %s", d.Name)
		seen[d.Name] = true
		assert.NotEmpty(t, d.Summary)
		assert.NotNil(t, d.Run)
	}
	assert.Len(t, seen, 19)

	d, ok := Lookup("frauchiger-renner")
	require.True(t, ok)
	assert.Equal(t, "frauchiger-renner", d.Name)

	_, ok = Lookup("shor")
	assert.False(t, ok)
	err := Run(context.Background(), "shor", NewEnv(&bytes.Buffer{}, 1))
	assert.Equal(t, ErrUnknownDemo, errors.Cause(err))
}

func TestBellCircuit(t *testing.T) {
	c := BellCircuit()
	assert.Equal(t, []string{"H", "CX", "MEASURE", "MEASURE"}, gateTypes(c))
	assert.Equal(t, 0, c.Gates[1].Control)
	assert.Equal(t, 1, c.Gates[1].Target)

	res := counts(t, c, 1000)
	assert.Equal(t, 1000, res["00"]+res["11"])
	assert.InDelta(t, 500, res["00"], 80)
}

func TestGHZCircuit(t *testing.T) {
	res := counts(t, GHZCircuit(), 1000)
	assert.Equal(t, 1000, res["000"]+res["111"])
	assert.Greater(t, res["000"], 0)
	assert.Greater(t, res["111"], 0)
}

func TestTeleportUndoNegatesPreparation(t *testing.T) {
	const x, y = 0.3, 1.1
	c := TeleportCircuit(x, y)

	var prep, undo []circuit.Gate
	for _, g := range c.Gates {
		if g.Type != "RX" && g.Type != "RY" {
			continue
		}
		if g.Target == 0 {
			prep = append(prep, g)
		} else {
			undo = append(undo, g)
		}
	}
	require.Len(t, prep, 2)
	require.Len(t, undo, 2)
	for i := range prep {
		mirror := undo[len(undo)-1-i]
		assert.Equal(t, prep[i].Type, mirror.Type)
		assert.Equal(t, 2, mirror.Target)
		assert.Equal(t, -prep[i].Params[0], mirror.Params[0])
	}
}

func TestTeleportConditions(t *testing.T) {
	c := TeleportPrep(0.5, 0.5)
	AppendTeleport(c)
	n := len(c.Gates)
	x, z := c.Gates[n-2], c.Gates[n-1]
	assert.Equal(t, "X", x.Type)
	assert.Equal(t, 1, x.Condition)
	assert.Equal(t, "Z", z.Type)
	assert.Equal(t, 0, z.Condition)
}

func TestTeleportRecoversState(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 5; i++ {
		x, y := rng.Float64()*math.Pi, rng.Float64()*math.Pi
		res := counts(t, TeleportCircuit(x, y), 200)
		assert.Equal(t, 200, res.Total())
		for key := range res {
			assert.True(t, strings.HasPrefix(key, "0 "), "undo left q[2] in |1> (%s)", key)
		}
	}
}

func TestTeleportDemo(t *testing.T) {
	t.Run("simulator", func(t *testing.T) {
		var out bytes.Buffer
		env := NewEnv(&out, 3)
		env.Shots = 100
		require.NoError(t, Run(context.Background(), "teleport", env))
		assert.Equal(t, 2, strings.Count(out.String(), "State vector is:"))
		assert.Contains(t, out.String(), "Total counts are: {'0 ")
		assert.NotContains(t, out.String(), "'1 ")
	})

	t.Run("device without conditional gates", func(t *testing.T) {
		var out bytes.Buffer
		env := NewEnv(&out, 3)
		env.UseDevice = true
		require.NoError(t, Run(context.Background(), "teleport", env))
		assert.Contains(t, out.String(), "Using backend:  fake_vigo")
		assert.Contains(t, out.String(), "instruction c_if is not supported on device fake_vigo")
		assert.NotContains(t, out.String(), "Total counts")
	})
}

func TestTeleportCoherentCircuit(t *testing.T) {
	const x, y = 0.25, 0.6
	c := TeleportCoherentCircuit(x, y)
	assert.Equal(t, 3, c.NumQubits())
	assert.Equal(t, 2, c.NumCbits())
	assert.Equal(t,
		[]string{"H", "CX", "RX", "RY", "CX", "H", "MEASURE", "MEASURE", "CX", "CZ"},
		gateTypes(c))
	for _, g := range c.Gates {
		assert.False(t, g.IsConditioned(), "%s is classically conditioned", g.Type)
	}
	assert.InDelta(t, math.Pi*x, c.Gates[2].Params[0], 1e-12)
	assert.InDelta(t, math.Pi*y, c.Gates[3].Params[0], 1e-12)

	cx, cz := c.Gates[8], c.Gates[9]
	assert.Equal(t, 1, cx.Control)
	assert.Equal(t, 2, cx.Target)
	assert.Equal(t, 0, cz.Control)
	assert.Equal(t, 2, cz.Target)
}

func TestTeleportCoherentMovesState(t *testing.T) {
	const x, y = 0.25, 0.6
	in := circuit.New(1, 0)
	in.RX(math.Pi*x, 0).RY(math.Pi*y, 0)
	want := sim.NewStateVector(1)
	for _, g := range in.Gates {
		require.NoError(t, want.ApplyGate(g))
	}

	for seed := int64(1); seed <= 4; seed++ {
		env := NewEnv(nil, seed)
		got, err := env.statevector(context.Background(), TeleportCoherentCircuit(x, y))
		require.NoError(t, err)
		assert.InDelta(t, want.QubitProbabilities()[0].Prob1, got.QubitProbabilities()[2].Prob1, 1e-9, "seed %d", seed)
	}

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), "teleport-coherent", NewEnv(&out, 5)))
	assert.Contains(t, out.String(), "Circuit:")
	assert.Regexp(t, `P\(1\) of q0 before: (\d\.\d{3})\nP\(1\) of q2 after:  \d\.\d{3}`, out.String())
}

func TestGroverOptimization(t *testing.T) {
	p := OptimizationProblem()
	assert.Equal(t, 0, p.Evaluate([]int{0, 0}))
	assert.Equal(t, 1, p.Evaluate([]int{1, 0}))
	assert.Equal(t, 3, p.Evaluate([]int{1, 1}))

	for seed := int64(1); seed <= 5; seed++ {
		opt := &GroverOptimizer{
			ValueQubits: 3,
			Iterations:  20,
			Rand:        rand.New(rand.NewSource(seed)),
			State:       NewEnv(nil, seed).statevector,
		}
		res, err := opt.Solve(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 1}, res.X, "seed %d", seed)
		assert.Equal(t, 3, res.FVal, "seed %d", seed)
		assert.Equal(t, "x=[1, 1], fval=3", res.String())
	}
}

func TestGroverCircuitEncodesValues(t *testing.T) {
	g := OptimizationProblem().minimized()
	for _, threshold := range []int{0, -1} {
		c, err := GroverCircuit(g, 3, threshold, 0)
		require.NoError(t, err)
		assert.Equal(t, 8, c.NumQubits())
		sv := sim.NewStateVector(c.NumQubits())
		for _, gate := range c.Gates {
			require.NoError(t, sv.ApplyGate(gate))
		}
		for i, prob := range sv.Probabilities() {
			if prob < 1e-9 {
				continue
			}
			assert.InDelta(t, 0.25, prob, 1e-9)
			key, value := decodeOutcome(i, 2, 3)
			assert.Equal(t, g.Evaluate(keyBits(key, 2))-threshold, value, "key %02b", key)
			assert.Zero(t, i>>5, "ancillas left set")
		}
	}
}

func TestGroverRotationFindsSingleMarkedKey(t *testing.T) {
	// with threshold -1 only x=[1,1] is marked; one rotation finds it
	g := OptimizationProblem().minimized()
	c, err := GroverCircuit(g, 3, -1, 1)
	require.NoError(t, err)
	sv := sim.NewStateVector(c.NumQubits())
	for _, gate := range c.Gates {
		require.NoError(t, sv.ApplyGate(gate))
	}
	var found float64
	for i, prob := range sv.Probabilities() {
		if key, _ := decodeOutcome(i, 2, 3); key == 3 {
			found += prob
		}
	}
	assert.InDelta(t, 1, found, 1e-9)
}

func TestGroverValueOverflow(t *testing.T) {
	opt := &GroverOptimizer{ValueQubits: 2, Rand: rand.New(rand.NewSource(1))}
	_, err := opt.Solve(context.Background(), OptimizationProblem())
	assert.True(t, errors.Is(err, ErrValueOverflow))
}

func TestFrauchigerRennerLabs(t *testing.T) {
	c, err := FrauchigerRennerLabs()
	require.NoError(t, err)
	assert.Equal(t, 6, c.NumQubits())
	assert.Equal(t, "alice", c.QubitLabel(frAlice))

	s, err := sim.Statevector(c, nil)
	require.NoError(t, err)
	third := math.Sqrt(1.0 / 3)
	for _, la := range rasb(s) {
		want := 0.0
		switch la.label {
		case "0000", "1100", "1111":
			want = third
		}
		assert.InDelta(t, want, real(la.amp), 1e-9, la.label)
		assert.InDelta(t, 0, imag(la.amp), 1e-9, la.label)
	}
}

func TestFrauchigerRennerOkOk(t *testing.T) {
	c, err := FrauchigerRennerCircuit()
	require.NoError(t, err)
	res := counts(t, c, 10000)
	for key := range res {
		assert.Len(t, key, 2)
	}
	assert.InDelta(t, 1.0/12, float64(res["11"])/10000, 0.02)
}

func TestDeutschCircuit(t *testing.T) {
	for _, secret := range [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
		want := "0"
		if secret[0] != secret[1] {
			want = "1"
		}
		res := counts(t, DeutschCircuit(secret), 100)
		assert.Equal(t, 100, res[want], "secret %v", secret)
	}
}

func TestHardyCircuit(t *testing.T) {
	c, err := HardyCircuit()
	require.NoError(t, err)
	assert.Equal(t, []string{"UNITARY", "CH", "CX", "MEASURE", "MEASURE"}, gateTypes(c))

	res := counts(t, c, 3000)
	assert.Zero(t, res["11"])
	for _, k := range []string{"00", "01", "10"} {
		assert.InDelta(t, 1000, res[k], 150, k)
	}
}

func TestMPCircuit(t *testing.T) {
	c, err := MPCircuit()
	require.NoError(t, err)
	assert.Equal(t, []string{"UNITARY", "CH", "CX", "CH", "CRZ", "MEASURE", "MEASURE"}, gateTypes(c))
	assert.Equal(t, math.Pi/2, c.Gates[4].Params[0])

	res := counts(t, c, 600)
	assert.Zero(t, res["11"])
}

func TestWWJCircuit(t *testing.T) {
	c, err := WWJCircuit()
	require.NoError(t, err)
	assert.Equal(t, []string{"Y", "CRY", "RZ", "CRY", "RZ"}, gateTypes(c))
	assert.Equal(t, 1, c.Gates[3].Control)
	assert.Equal(t, 1, c.Gates[4].Target)

	u, err := sim.Unitary(c)
	require.NoError(t, err)
	for i := range u {
		for j := range u {
			var dot complex128
			for k := range u {
				dot += u[k][i] * complexConj(u[k][j])
			}
			want := 0.0
			if i == j {
				want = 1
			}
			assert.InDelta(t, want, real(dot), 1e-9)
			assert.InDelta(t, 0, imag(dot), 1e-9)
		}
	}
}

func complexConj(z complex128) complex128 { return complex(real(z), -imag(z)) }

func TestRZSnippets(t *testing.T) {
	us := make([][][]complex128, len(RZSnippets))
	for i, src := range RZSnippets {
		c, err := circuit.ParseQASM(src)
		require.NoError(t, err, "snippet %d", i+1)
		us[i], err = sim.Unitary(c)
		require.NoError(t, err)
	}

	// rz and u1 agree only up to a global phase.
	assert.True(t, sim.EqualUpToGlobalPhase(us[0], us[2], 1e-9))
	assert.InDelta(t, 1, real(us[2][0][0]), 1e-9)
	assert.InDelta(t, math.Cos(math.Pi/4), real(us[0][0][0]), 1e-9)

	// The controlled constructions are identical.
	for r := range us[1] {
		for c := range us[1][r] {
			assert.InDelta(t, real(us[1][r][c]), real(us[3][r][c]), 1e-9)
			assert.InDelta(t, imag(us[1][r][c]), imag(us[3][r][c]), 1e-9)
		}
	}
}

func TestStdGatesCircuit(t *testing.T) {
	c := StdGatesCircuit()
	assert.Equal(t, 3, c.NumQubits())
	assert.Len(t, c.Gates, 26)
	assert.True(t, c.IsUnitary())

	qasm := c.ToQASM()
	for _, name := range []string{"ccx", "cswap", "crx", "cu(", "id q[0];"} {
		assert.Contains(t, qasm, name)
	}
	assert.Contains(t, c.ToQASM3(), `include "stdgates.inc";`)
}

func TestQuickStartCircuit(t *testing.T) {
	c := QuickStartCircuit()
	_, off, ok := c.CReg("meas")
	require.True(t, ok)
	assert.Equal(t, 0, off)
	res := counts(t, c.Optimize(), 500)
	assert.Equal(t, 500, res["00"]+res["11"])
}

func TestReduceAndExtract(t *testing.T) {
	for seed := int64(1); seed <= 6; seed++ {
		p := ZXParams{Qubits: 2 + int(seed%4), Depth: 30, PHad: 0.2, PT: 0.2}
		r, err := ReduceAndExtract(p, rand.New(rand.NewSource(seed)))
		require.NoError(t, err, "seed %d", seed)
		assert.Equal(t, p, r.Params)
		assert.Len(t, r.Original.Gates, 30)
		assert.LessOrEqual(t, r.Reduced.NumVertices(), r.Graph.NumVertices())
		assert.Equal(t, p.Qubits, r.Extracted.NumQubits())
		assert.True(t, r.Verified)
		assert.True(t, r.Equivalent, "seed %d", seed)

		// the drawn original is the generated circuit read back from its
		// unreduced graph
		require.NotNil(t, r.OriginalBasic)
		assert.Equal(t, p.Qubits, r.OriginalBasic.NumQubits())
		same, err := equivalent(r.Original, r.OriginalBasic)
		require.NoError(t, err)
		assert.True(t, same, "seed %d", seed)
	}

	_, err := ReduceAndExtract(ZXParams{Qubits: 1, Depth: 5}, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestReduceAndExtractSkipsLargeVerification(t *testing.T) {
	p := ZXParams{Qubits: MaxVerifyQubits + 1, Depth: 10, PHad: 0.2, PT: 0.2}
	r, err := ReduceAndExtract(p, rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	assert.False(t, r.Verified)
}

func TestZXPass(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		c := circuit.Random(3, 4, rand.New(rand.NewSource(seed)))
		out, err := ZXPass(c)
		require.NoError(t, err, "seed %d", seed)
		ok, err := equivalent(c, out)
		require.NoError(t, err)
		assert.True(t, ok, "seed %d", seed)
	}
}

func TestEveryDemoRuns(t *testing.T) {
	for _, d := range All() {
		t.Run(d.Name, func(t *testing.T) {
			var out bytes.Buffer
			env := NewEnv(&out, 42)
			env.Shots = 64
			require.NoError(t, d.Run(context.Background(), env))
			assert.NotEmpty(t, out.String())
		})
	}
}

func TestDemoOutput(t *testing.T) {
	run := func(name string) string {
		var out bytes.Buffer
		env := NewEnv(&out, 7)
		env.Shots = 32
		require.NoError(t, Run(context.Background(), name, env))
		return out.String()
	}

	assert.Contains(t, run("zcopy"), "Graph(4 vertices, 3 edges)")
	assert.Contains(t, run("least-busy"), "least busy backend:  fake_vigo")
	assert.Contains(t, run("noise"), "Emulating fake_melbourne")
	assert.Regexp(t, `f\(0\) = [01], f\(1\) = [01]`, run("deutsch"))
	assert.Contains(t, run("zx"), "Equivalent to the original: true")
	assert.Contains(t, run("zx-transpile"), "Equivalent up to global phase: true")

	wire := run("wire")
	assert.Contains(t, wire, "OPENQASM 2.0;")
	assert.Contains(t, wire, "OPENQASM 3")
}
