// Package demos holds the demonstration programs. Each demo builds a small
// circuit or ZX diagram, hands it to a backend or to the ZX pipeline and
// prints the outcome. Circuit builders are exported so their structure can
// be checked without running anything.
package demos

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"qdemos/internal/backend"
	"qdemos/internal/circuit"
	"qdemos/internal/sim"
)

// ErrUnknownDemo is returned by Run for names not in the registry.
var ErrUnknownDemo = errors.New("unknown demo")

// Env is everything a demo may use. Demos never share an Env.
type Env struct {
	Out      io.Writer
	Logger   *zap.Logger
	Provider *backend.Provider
	// Rand drives every random choice a demo makes (secrets, angles,
	// random circuits).
	Rand *rand.Rand
	// Shots per execution; 0 means backend.DefaultShots.
	Shots int
	// Seed passed to the backends; 0 picks a time-based seed per job.
	Seed int64
	// UseDevice runs on the least busy emulated device instead of
	// qasm_simulator.
	UseDevice bool
	ZX        ZXParams
}

// NewEnv returns an environment writing to out with local backends and
// the default ZX parameters.
func NewEnv(out io.Writer, seed int64) *Env {
	if out == nil {
		out = os.Stdout
	}
	return &Env{
		Out:      out,
		Logger:   zap.NewNop(),
		Provider: backend.NewLocalProvider(nil, nil),
		Rand:     sim.NewRand(seed),
		Seed:     seed,
		ZX:       DefaultZXParams(),
	}
}

func (e *Env) printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format, args...)
}

func (e *Env) println(args ...any) {
	fmt.Fprintln(e.Out, args...)
}

func (e *Env) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Env) runOptions() backend.RunOptions {
	return backend.RunOptions{Shots: e.Shots, Seed: e.Seed}
}

// device picks where sampled circuits run: qasm_simulator, or with
// UseDevice the least busy operational device passing filters.
func (e *Env) device(filters ...backend.Filter) (backend.Backend, error) {
	if !e.UseDevice {
		return e.Provider.Get("qasm_simulator")
	}
	fs := append([]backend.Filter{backend.Devices(), backend.Operational()}, filters...)
	b, err := backend.LeastBusy(e.Provider.Backends(fs...))
	if err != nil {
		return nil, errors.Wrap(err, "selecting device")
	}
	e.println("Using backend: ", b.Name())
	return b, nil
}

// execute runs c on b and logs the job.
func (e *Env) execute(ctx context.Context, b backend.Backend, c *circuit.Circuit) (*backend.Result, error) {
	res, err := backend.Execute(ctx, b, c, e.runOptions())
	if err != nil {
		return nil, err
	}
	e.logger().Debug("job finished",
		zap.String("backend", res.Backend),
		zap.String("job", res.JobID),
		zap.Duration("took", res.TimeTaken),
	)
	return res, nil
}

// statevector returns the state c leaves behind on statevector_simulator.
func (e *Env) statevector(ctx context.Context, c *circuit.Circuit) (*sim.StateVector, error) {
	b, err := e.Provider.Get("statevector_simulator")
	if err != nil {
		return nil, err
	}
	res, err := e.execute(ctx, b, c)
	if err != nil {
		return nil, err
	}
	return &sim.StateVector{Amplitudes: res.Statevector, NumQubits: c.NumQubits()}, nil
}

// sample runs c on the chosen device and prints the counts.
func (e *Env) sample(ctx context.Context, c *circuit.Circuit, filters ...backend.Filter) (sim.Counts, error) {
	b, err := e.device(filters...)
	if err != nil {
		return nil, err
	}
	res, err := e.execute(ctx, b, c)
	if err != nil {
		return nil, err
	}
	e.printf("\nTotal counts are: %s\n", res.Counts)
	return res.Counts, nil
}

// Demo is one runnable demonstration.
type Demo struct {
	Name    string
	Summary string
	Run     func(ctx context.Context, env *Env) error
}

var registry = []Demo{
	{Name: "bell", Summary: "Create a Bell state and sample it", Run: runBell},
	{Name: "ghz", Summary: "Create a three-qubit GHZ state and sample it", Run: runGHZ},
	{Name: "teleport", Summary: "Teleport a random qubit state with classically conditioned corrections", Run: runTeleport},
	{Name: "teleport-coherent", Summary: "Teleport a random qubit state with coherent CNOT and CZ corrections", Run: runTeleportCoherent},
	{Name: "frauchiger-renner", Summary: "The Frauchiger-Renner thought experiment", Run: runFrauchigerRenner},
	{Name: "deutsch", Summary: "Deutsch's algorithm on a random one-bit function", Run: runDeutsch},
	{Name: "hardy", Summary: "Prepare the Hardy state (|00> + |01> + |10>)/sqrt(3)", Run: runHardy},
	{Name: "mp", Summary: "Hardy state controlling {1, H, Rz(pi/2)} on a third qubit", Run: runMP},
	{Name: "wwj", Summary: "Unitary of Y followed by two controlled square roots of Y", Run: runWWJ},
	{Name: "wire", Summary: "A single measured wire and its QASM", Run: runWire},
	{Name: "stdgates", Summary: "Every standard gate once, as OpenQASM 2 and 3", Run: runStdGates},
	{Name: "rz", Summary: "Unitaries of rz and u1 snippets read from OpenQASM", Run: runRZ},
	{Name: "noise", Summary: "Bell state on an emulated noisy device", Run: runNoise},
	{Name: "least-busy", Summary: "List backends and pick the least busy small device", Run: runLeastBusy},
	{Name: "quick-start", Summary: "Bell state via measure-all, optimized and sampled", Run: runQuickStart},
	{Name: "zcopy", Summary: "The Z-copy spider as a ZX diagram", Run: runZCopy},
	{Name: "zx", Summary: "Reduce a random circuit's ZX diagram and extract a circuit", Run: runZX},
	{Name: "zx-transpile", Summary: "Peephole optimization versus the ZX pass on a random circuit", Run: runZXTranspile},
	{Name: "grover-optimization", Summary: "Grover adaptive search for the maximum of x*y + x + y", Run: runGroverOptimization},
}

// All returns every demo in registration order.
func All() []Demo {
	return append([]Demo(nil), registry...)
}

// Lookup finds a demo by name.
func Lookup(name string) (Demo, bool) {
	for _, d := range registry {
		if d.Name == name {
			return d, true
		}
	}
	return Demo{}, false
}

// Run runs the named demo.
func Run(ctx context.Context, name string, env *Env) error {
	d, ok := Lookup(name)
	if !ok {
		return errors.Wrapf(ErrUnknownDemo, "%q", name)
	}
	env.logger().Debug("running demo", zap.String("demo", name))
	return errors.Wrap(d.Run(ctx, env), name)
}

// formatMatrix prints a matrix rounded to decimals, one row per line.
func formatMatrix(m [][]complex128, decimals int) string {
	rows := make([]string, len(m))
	for i, row := range m {
		s := &sim.StateVector{Amplitudes: row}
		rows[i] = s.Format(decimals)
	}
	return "[" + strings.Join(rows, "\n ") + "]"
}
