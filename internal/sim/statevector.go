// Package sim is a statevector simulator for circuits built with package
// circuit. Qubit 0 is the least significant bit of a basis index.
package sim

import (
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
	"math/rand"
	"strings"

	"github.com/pkg/errors"

	"qdemos/internal/circuit"
)

// MaxQubits bounds the size of simulated registers.
const MaxQubits = 24

// ErrTooManyQubits is returned for circuits wider than MaxQubits.
var ErrTooManyQubits = errors.New("too many qubits to simulate")

type StateVector struct {
	Amplitudes []complex128
	NumQubits  int
}

func NewStateVector(numQubits int) *StateVector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// ApplyGate applies a unitary gate. Measurement, reset and barrier are
// not unitary and are rejected; use Measure and Reset.
func (s *StateVector) ApplyGate(g circuit.Gate) error {
	var mask int
	for _, c := range g.Controls {
		mask |= 1 << c
	}
	switch g.Type {
	case "SWAP":
		s.applySwap(g.Control, g.Target, 0)
		return nil
	case "CSWAP":
		s.applySwap(g.Control, g.Target, mask)
		return nil
	case "UNITARY":
		if g.Matrix == nil {
			return errors.WithStack(circuit.ErrNotUnitary)
		}
		s.apply1(g.Target, *g.Matrix, 0)
		return nil
	}
	if g.Control >= 0 {
		mask |= 1 << g.Control
	}
	m, err := GateMatrix(g)
	if err != nil {
		return err
	}
	s.apply1(g.Target, m, mask)
	return nil
}

// apply1 applies m to qubit q on the basis states where every bit of mask
// is set.
func (s *StateVector) apply1(q int, m circuit.Matrix2, mask int) {
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit != 0 || i&mask != mask {
			continue
		}
		j := i | bit
		a, b := s.Amplitudes[i], s.Amplitudes[j]
		s.Amplitudes[i] = m[0][0]*a + m[0][1]*b
		s.Amplitudes[j] = m[1][0]*a + m[1][1]*b
	}
}

func (s *StateVector) applySwap(q1, q2, mask int) {
	b1, b2 := 1<<q1, 1<<q2
	for i := range s.Amplitudes {
		if i&b1 != 0 && i&b2 == 0 && i&mask == mask {
			j := (i &^ b1) | b2
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// probOne returns the probability that qubit q reads 1.
func (s *StateVector) probOne(q int) float64 {
	bit := 1 << q
	p := 0.0
	for i, a := range s.Amplitudes {
		if i&bit != 0 {
			p += real(a * cmplx.Conj(a))
		}
	}
	return p
}

// collapse projects qubit q onto outcome and renormalizes. The norm is
// recomputed from the projected amplitudes so rounding in prob does not
// accumulate over repeated measurements.
func (s *StateVector) collapse(q, outcome int, prob float64) {
	bit := 1 << q
	sum := 0.0
	for i, a := range s.Amplitudes {
		if (i&bit != 0) == (outcome == 1) {
			sum += real(a * cmplx.Conj(a))
		} else {
			s.Amplitudes[i] = 0
		}
	}
	if sum == 0 {
		sum = prob
	}
	norm := complex(math.Sqrt(sum), 0)
	for i := range s.Amplitudes {
		if s.Amplitudes[i] != 0 {
			s.Amplitudes[i] /= norm
		}
	}
}

// Measure measures qubit q in the computational basis, collapsing the state.
func (s *StateVector) Measure(q int, rng *rand.Rand) int {
	p1 := s.probOne(q)
	if rng.Float64() < p1 {
		s.collapse(q, 1, p1)
		return 1
	}
	s.collapse(q, 0, 1-p1)
	return 0
}

// Reset measures qubit q and flips it back to |0> when it read 1.
func (s *StateVector) Reset(q int, rng *rand.Rand) {
	if s.Measure(q, rng) == 1 {
		s.apply1(q, circuit.Matrix2{{0, 1}, {1, 0}}, 0)
	}
}

// Probabilities returns |amplitude|^2 per basis state.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, a := range s.Amplitudes {
		probs[i] = real(a * cmplx.Conj(a))
	}
	return probs
}

type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

func (s *StateVector) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	for i, a := range s.Amplitudes {
		prob := real(a * cmplx.Conj(a))
		for q := 0; q < s.NumQubits; q++ {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += prob
			} else {
				probs[q].Prob0 += prob
			}
		}
	}
	return probs
}

// Term is a basis state with non-negligible amplitude.
type Term struct {
	BasisState int
	Amplitude  complex128
	Prob       float64
	Phase      float64
	Hamming    int
}

// Terms lists the basis states whose probability exceeds 1e-10.
func (s *StateVector) Terms() []Term {
	var terms []Term
	for i, amp := range s.Amplitudes {
		prob := real(amp * cmplx.Conj(amp))
		if prob > 1e-10 {
			terms = append(terms, Term{
				BasisState: i,
				Amplitude:  amp,
				Prob:       prob,
				Phase:      cmplx.Phase(amp),
				Hamming:    bits.OnesCount(uint(i)),
			})
		}
	}
	return terms
}

// Label returns the bitstring of basis state i, most significant qubit
// first.
func (s *StateVector) Label(i int) string {
	return fmt.Sprintf("%0*b", s.NumQubits, i)
}

// Round returns a copy with every amplitude rounded to the given decimals.
func (s *StateVector) Round(decimals int) *StateVector {
	out := s.Clone()
	scale := math.Pow(10, float64(decimals))
	r := func(x float64) float64 {
		v := math.Round(x*scale) / scale
		if v == 0 {
			return 0
		}
		return v
	}
	for i, a := range out.Amplitudes {
		out.Amplitudes[i] = complex(r(real(a)), r(imag(a)))
	}
	return out
}

// Format prints the amplitudes rounded to decimals, e.g. [0.707+0j 0+0j].
func (s *StateVector) Format(decimals int) string {
	parts := make([]string, len(s.Amplitudes))
	for i, a := range s.Round(decimals).Amplitudes {
		parts[i] = FormatComplex(a, decimals)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// FormatComplex prints a complex number with at most decimals digits.
func FormatComplex(a complex128, decimals int) string {
	f := func(x float64) string {
		s := fmt.Sprintf("%.*f", decimals, x)
		if strings.Contains(s, ".") {
			s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
		}
		if s == "-0" {
			return "0"
		}
		return s
	}
	re, im := f(real(a)), f(imag(a))
	if !strings.HasPrefix(im, "-") {
		im = "+" + im
	}
	return re + im + "j"
}
