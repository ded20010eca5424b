package demos

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"qdemos/internal/circuit"
	"qdemos/internal/sim"
)

// ErrValueOverflow is returned when an objective value does not fit the
// value register.
var ErrValueOverflow = errors.New("objective value does not fit the value register")

// QuadraticProgram is an objective over binary variables with integer
// coefficients: Constant + sum Linear[i]*x[i] + sum Quadratic[i][j]*x[i]*x[j]
// over i < j.
type QuadraticProgram struct {
	Linear    []int
	Quadratic [][]int
	Constant  int
	Maximize  bool
}

// NumVars is the number of binary variables.
func (p QuadraticProgram) NumVars() int { return len(p.Linear) }

func (p QuadraticProgram) quadratic(i, j int) int {
	if i < len(p.Quadratic) && j < len(p.Quadratic[i]) {
		return p.Quadratic[i][j]
	}
	return 0
}

// Evaluate returns the objective at x.
func (p QuadraticProgram) Evaluate(x []int) int {
	v := p.Constant
	for i := range p.Linear {
		v += p.Linear[i] * x[i]
		for j := i + 1; j < len(p.Linear); j++ {
			v += p.quadratic(i, j) * x[i] * x[j]
		}
	}
	return v
}

// minimized is the objective Grover search minimizes: p itself, or its
// negation when p maximizes.
func (p QuadraticProgram) minimized() QuadraticProgram {
	if !p.Maximize {
		return p
	}
	n := QuadraticProgram{Linear: make([]int, len(p.Linear)), Constant: -p.Constant}
	for i, l := range p.Linear {
		n.Linear[i] = -l
	}
	n.Quadratic = make([][]int, len(p.Quadratic))
	for i, row := range p.Quadratic {
		n.Quadratic[i] = make([]int, len(row))
		for j, q := range row {
			n.Quadratic[i][j] = -q
		}
	}
	return n
}

// GroverOptimizer minimizes (or maximizes) a QuadraticProgram with Grover
// adaptive search. Each round encodes f(x) - threshold in a two's
// complement value register, marks the negative values and amplifies them
// with a random number of Grover rotations. A measured improvement lowers
// the threshold.
type GroverOptimizer struct {
	// ValueQubits is the width of the value register.
	ValueQubits int
	// Iterations is how many rounds without improvement end the search.
	Iterations int
	Rand       *rand.Rand
	Logger     *zap.Logger
	// State returns the statevector a circuit leaves behind.
	State func(ctx context.Context, c *circuit.Circuit) (*sim.StateVector, error)
}

// GroverResult is the best point found.
type GroverResult struct {
	X         []int
	FVal      int
	Rounds    int
	Rotations int
}

func (r GroverResult) String() string {
	bits := make([]string, len(r.X))
	for i, b := range r.X {
		bits[i] = strconv.Itoa(b)
	}
	return fmt.Sprintf("x=[%s], fval=%d", strings.Join(bits, ", "), r.FVal)
}

const (
	growth       = 1.34
	maxRotations = 79 // ceil(100*pi/4)
)

// Solve runs the search.
func (o *GroverOptimizer) Solve(ctx context.Context, p QuadraticProgram) (GroverResult, error) {
	n, m := p.NumVars(), o.ValueQubits
	if n == 0 || m < 2 {
		return GroverResult{}, errors.Errorf("grover search needs variables and at least 2 value qubits, got %d and %d", n, m)
	}
	iterations := o.Iterations
	if iterations <= 0 {
		iterations = 3
	}
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	g := p.minimized()
	if err := checkRange(g, m); err != nil {
		return GroverResult{}, err
	}

	var res GroverResult
	threshold := 0
	bestKey, best := -1, math.MaxInt
	for done := false; !done; {
		rounds, misses := 1, 0
		for improved := false; !improved && !done; {
			if err := ctx.Err(); err != nil {
				return GroverResult{}, err
			}
			res.Rounds++
			k := o.Rand.Intn(rounds)
			res.Rotations += k

			c, err := GroverCircuit(g, m, threshold, k)
			if err != nil {
				return GroverResult{}, err
			}
			sv, err := o.State(ctx, c)
			if err != nil {
				return GroverResult{}, errors.Wrap(err, "grover round")
			}
			key, value := decodeOutcome(sampleIndex(sv, o.Rand), n, m)
			logger.Debug("grover round",
				zap.Int("rotations", k),
				zap.Int("threshold", threshold),
				zap.Int("key", key),
				zap.Int("value", value),
			)
			if f := value + threshold; f < best {
				bestKey, best = key, f
			}

			if value < 0 {
				improved = true
				threshold += value
			} else {
				misses++
				rounds = int(math.Ceil(math.Min(float64(rounds)*growth, math.Pow(2, float64(n)/2))))
				done = misses >= iterations
			}
			if res.Rotations >= maxRotations {
				done = true
			}
		}
	}

	res.X = keyBits(bestKey, n)
	res.FVal = p.Evaluate(res.X)
	return res, nil
}

// checkRange verifies every value of p, and every difference of two
// values, fits m two's complement bits.
func checkRange(p QuadraticProgram, m int) error {
	lo, hi := math.MaxInt, math.MinInt
	n := p.NumVars()
	for key := 0; key < 1<<n; key++ {
		v := p.Evaluate(keyBits(key, n))
		lo = min(lo, v)
		hi = max(hi, v)
	}
	limit := 1 << (m - 1)
	if lo < -limit || hi >= limit || hi-lo >= limit {
		return errors.Wrapf(ErrValueOverflow, "values span [%d, %d] with %d value qubits", lo, hi, m)
	}
	return nil
}

// GroverCircuit prepares the search state for threshold and applies
// rotations Grover iterations. Qubits 0..n-1 hold x, the next m hold
// f(x) - threshold in two's complement and the rest are ancillas for the
// reflection about the initial state.
func GroverCircuit(p QuadraticProgram, m, threshold, rotations int) (*circuit.Circuit, error) {
	n := p.NumVars()
	width := n + m
	ancillas := max(width-2, 0)
	a := circuit.New(width, 0)
	appendEncoding(a, p, m, threshold)
	adg, err := a.Inverse()
	if err != nil {
		return nil, err
	}

	wires := make([]int, width)
	for i := range wires {
		wires[i] = i
	}
	c := circuit.New(width+ancillas, 0)
	if err := c.Compose(a, wires, nil); err != nil {
		return nil, err
	}
	for r := 0; r < rotations; r++ {
		// the sign qubit of the value register marks f(x) < threshold
		c.Z(width - 1)
		if err := c.Compose(adg, wires, nil); err != nil {
			return nil, err
		}
		appendZeroReflection(c, width)
		if err := c.Compose(a, wires, nil); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// appendEncoding puts x in uniform superposition and writes
// f(x) - threshold into the value register: phases 2*pi*2^j*v/2^m on
// value qubit j, then an inverse Fourier transform.
func appendEncoding(c *circuit.Circuit, p QuadraticProgram, m, threshold int) {
	n := p.NumVars()
	for q := 0; q < n+m; q++ {
		c.H(q)
	}
	for j := 0; j < m; j++ {
		v := n + j
		unit := 2 * math.Pi * float64(int(1)<<j) / float64(int(1)<<m)
		if k := p.Constant - threshold; k != 0 {
			c.P(unit*float64(k), v)
		}
		for i, l := range p.Linear {
			if l != 0 {
				c.CP(unit*float64(l), i, v)
			}
			for k := i + 1; k < n; k++ {
				if q := p.quadratic(i, k); q != 0 {
					appendCCP(c, unit*float64(q), i, k, v)
				}
			}
		}
	}
	appendInverseQFT(c, n, m)
}

// appendCCP is a doubly controlled phase built from CP and CX.
func appendCCP(c *circuit.Circuit, lambda float64, c1, c2, q int) {
	c.CP(lambda/2, c2, q)
	c.CX(c1, c2)
	c.CP(-lambda/2, c2, q)
	c.CX(c1, c2)
	c.CP(lambda/2, c1, q)
}

// appendInverseQFT decodes the m qubits starting at first, qubit first+j
// carrying weight 2^j.
func appendInverseQFT(c *circuit.Circuit, first, m int) {
	for k := m - 1; k >= 0; k-- {
		for l := m - 1; l > k; l-- {
			c.CP(-2*math.Pi/float64(int(1)<<(l-k+1)), first+l, first+k)
		}
		c.H(first + k)
	}
	for k := 0; k < m/2; k++ {
		c.Swap(first+k, first+m-1-k)
	}
}

// appendZeroReflection flips the sign of |0...0> on qubits 0..width-1,
// using the qubits after them as Toffoli ancillas.
func appendZeroReflection(c *circuit.Circuit, width int) {
	for q := 0; q < width; q++ {
		c.X(q)
	}
	switch width {
	case 1:
		c.Z(0)
	case 2:
		c.CZ(0, 1)
	default:
		// ancilla width+i holds the AND of qubits 0..i+1
		c.CCX(0, 1, width)
		for i := 1; i < width-2; i++ {
			c.CCX(width+i-1, i+1, width+i)
		}
		c.CZ(2*width-3, width-1)
		for i := width - 3; i >= 1; i-- {
			c.CCX(width+i-1, i+1, width+i)
		}
		c.CCX(0, 1, width)
	}
	for q := 0; q < width; q++ {
		c.X(q)
	}
}

// sampleIndex draws a basis state from the probabilities of sv.
func sampleIndex(sv *sim.StateVector, rng *rand.Rand) int {
	probs := sv.Probabilities()
	r := rng.Float64()
	last := 0
	for i, p := range probs {
		if p <= 0 {
			continue
		}
		last = i
		if r < p {
			return i
		}
		r -= p
	}
	return last
}

// decodeOutcome splits a basis state into the key and the signed value.
func decodeOutcome(index, n, m int) (key, value int) {
	key = index & (1<<n - 1)
	value = (index >> n) & (1<<m - 1)
	if value >= 1<<(m-1) {
		value -= 1 << m
	}
	return key, value
}

// keyBits lists the bits of key, x[0] first.
func keyBits(key, n int) []int {
	x := make([]int, n)
	for i := range x {
		x[i] = (key >> i) & 1
	}
	return x
}

// OptimizationProblem is x*y + x + y over two binary variables, maximized.
func OptimizationProblem() QuadraticProgram {
	return QuadraticProgram{
		Linear:    []int{1, 1},
		Quadratic: [][]int{{0, 1}},
		Maximize:  true,
	}
}

func runGroverOptimization(ctx context.Context, env *Env) error {
	opt := &GroverOptimizer{
		ValueQubits: 3,
		Iterations:  10,
		Rand:        env.Rand,
		Logger:      env.logger(),
		State:       env.statevector,
	}
	res, err := opt.Solve(ctx, OptimizationProblem())
	if err != nil {
		return err
	}
	env.println("maximize x*y + x + y over x, y in {0, 1}")
	env.printf("%s (%d rounds, %d Grover rotations)\n", res, res.Rounds, res.Rotations)
	return nil
}
