package sim

import (
	"context"
	"math/cmplx"
	"math/rand"
	"sort"
	"time"

	"github.com/pkg/errors"

	"qdemos/internal/circuit"
)

// MaxUnitaryQubits bounds Unitary, which builds a 2^n x 2^n matrix.
const MaxUnitaryQubits = 12

// ErrNoMeasurements is returned by Run for circuits that never measure.
var ErrNoMeasurements = errors.New("circuit has no measurements")

// Options control a sampling run.
type Options struct {
	Shots int
	// Seed for the run; 0 picks a time-based seed.
	Seed  int64
	Noise *NoiseModel
}

// NewRand returns a generator for seed; 0 picks a time-based seed.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func checkWidth(c *circuit.Circuit, limit int) error {
	if n := c.NumQubits(); n > limit {
		return errors.Wrapf(ErrTooManyQubits, "%d qubits (limit %d)", n, limit)
	}
	return nil
}

// Statevector runs one trajectory of c and returns the final state.
// Measurements and resets collapse the state using rng, classical
// conditions are honoured and barriers are skipped. A nil rng uses a fixed
// seed.
func Statevector(c *circuit.Circuit, rng *rand.Rand) (*StateVector, error) {
	if err := checkWidth(c, MaxQubits); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	s, _, err := trajectory(c, rng, nil)
	return s, err
}

// trajectory simulates one shot and returns the final state and classical
// bits.
func trajectory(c *circuit.Circuit, rng *rand.Rand, noise *NoiseModel) (*StateVector, []int, error) {
	s := NewStateVector(c.NumQubits())
	cbits := make([]int, c.NumCbits())
	for i, g := range c.Gates {
		if g.IsConditioned() && cbits[g.Condition] != 1 {
			continue
		}
		switch g.Type {
		case "BARRIER":
			continue
		case "MEASURE":
			bit := s.Measure(g.Target, rng)
			if noise != nil {
				bit = noise.readout(bit, rng)
			}
			cbits[g.Cbit] = bit
			continue
		case "RESET":
			s.Reset(g.Target, rng)
			continue
		}
		if err := s.ApplyGate(g); err != nil {
			return nil, nil, errors.Wrapf(err, "gate %d", i)
		}
		if noise != nil {
			noise.afterGate(s, g, rng)
		}
	}
	return s, cbits, nil
}

// terminalMeasurements reports whether every measurement comes after the
// last operation on its qubit and nothing is reset or conditioned, so that
// shots can be sampled from a single final distribution.
func terminalMeasurements(c *circuit.Circuit) bool {
	measured := map[int]bool{}
	for _, g := range c.Gates {
		switch {
		case g.IsConditioned(), g.Type == "RESET":
			return false
		case g.Type == "MEASURE":
			measured[g.Target] = true
			continue
		case g.Type == "BARRIER":
			continue
		}
		for _, q := range g.Wires(c.NumQubits()) {
			if measured[q] {
				return false
			}
		}
	}
	return true
}

// cancelCheckShots is how many shots run between context checks.
const cancelCheckShots = 64

// Run samples opts.Shots executions of c and histograms the classical
// registers.
func Run(c *circuit.Circuit, opts Options) (Counts, error) {
	return RunContext(context.Background(), c, opts)
}

// RunContext is Run stopping early with ctx's error once ctx is done.
func RunContext(ctx context.Context, c *circuit.Circuit, opts Options) (Counts, error) {
	if err := checkWidth(c, MaxQubits); err != nil {
		return nil, err
	}
	hasMeasure := false
	for _, g := range c.Gates {
		hasMeasure = hasMeasure || g.Type == "MEASURE"
	}
	if !hasMeasure {
		return nil, errors.WithStack(ErrNoMeasurements)
	}
	shots := opts.Shots
	if shots <= 0 {
		shots = 1024
	}
	rng := NewRand(opts.Seed)
	counts := Counts{}

	noise := opts.Noise
	if noise.IsZero() {
		noise = nil
	}
	if noise == nil && terminalMeasurements(c) {
		return sampleFinal(ctx, c, shots, rng)
	}

	for i := 0; i < shots; i++ {
		if i%cancelCheckShots == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrapf(err, "after %d of %d shots", i, shots)
			}
		}
		_, cbits, err := trajectory(c, rng, noise)
		if err != nil {
			return nil, err
		}
		counts[countKey(c, cbits)]++
	}
	return counts, nil
}

// sampleFinal simulates the unitary part once and draws every shot from the
// final distribution.
func sampleFinal(ctx context.Context, c *circuit.Circuit, shots int, rng *rand.Rand) (Counts, error) {
	s := NewStateVector(c.NumQubits())
	var measures []circuit.Gate
	for i, g := range c.Gates {
		switch g.Type {
		case "BARRIER":
		case "MEASURE":
			measures = append(measures, g)
		default:
			if err := s.ApplyGate(g); err != nil {
				return nil, errors.Wrapf(err, "gate %d", i)
			}
		}
	}

	cum := make([]float64, len(s.Amplitudes))
	total := 0.0
	for i, p := range s.Probabilities() {
		total += p
		cum[i] = total
	}

	counts := Counts{}
	cbits := make([]int, c.NumCbits())
	for shot := 0; shot < shots; shot++ {
		if shot%(cancelCheckShots*64) == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrapf(err, "after %d of %d shots", shot, shots)
			}
		}
		r := rng.Float64() * total
		idx := sort.Search(len(cum), func(i int) bool { return cum[i] > r })
		if idx == len(cum) {
			idx--
		}
		for i := range cbits {
			cbits[i] = 0
		}
		for _, m := range measures {
			cbits[m.Cbit] = (idx >> m.Target) & 1
		}
		counts[countKey(c, cbits)]++
	}
	return counts, nil
}

// Unitary returns the matrix of a unitary circuit, indexed [row][column].
func Unitary(c *circuit.Circuit) ([][]complex128, error) {
	if err := checkWidth(c, MaxUnitaryQubits); err != nil {
		return nil, err
	}
	if !c.IsUnitary() {
		return nil, errors.Wrap(circuit.ErrNotInvertible, "unitary of a non-unitary circuit")
	}
	n := c.NumQubits()
	dim := 1 << n
	u := make([][]complex128, dim)
	for i := range u {
		u[i] = make([]complex128, dim)
	}
	for col := 0; col < dim; col++ {
		s := &StateVector{Amplitudes: make([]complex128, dim), NumQubits: n}
		s.Amplitudes[col] = 1
		for i, g := range c.Gates {
			if g.Type == "BARRIER" {
				continue
			}
			if err := s.ApplyGate(g); err != nil {
				return nil, errors.Wrapf(err, "gate %d", i)
			}
		}
		for row, a := range s.Amplitudes {
			u[row][col] = a
		}
	}
	return u, nil
}

// EqualUpToGlobalPhase reports whether a = e^{i phi} b for some phi, entry
// by entry within tol.
func EqualUpToGlobalPhase(a, b [][]complex128, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	var phase complex128
	found := false
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if !found && cmplx.Abs(b[i][j]) > tol {
				phase = a[i][j] / b[i][j]
				found = true
			}
		}
	}
	if !found {
		phase = 1
	}
	for i := range a {
		for j := range a[i] {
			if cmplx.Abs(a[i][j]-phase*b[i][j]) > tol {
				return false
			}
		}
	}
	return true
}
