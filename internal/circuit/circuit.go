// Package circuit describes gate-level quantum circuits: registers, gates,
// builders, OpenQASM 2.0/3.0 emission and parsing, layering and drawing.
package circuit

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/pkg/errors"
)

// Register is a named quantum or classical register.
type Register struct {
	Name string
	Size int
}

// Circuit is an ordered list of gates over flat qubit and classical bit
// indices. Registers are laid out in declaration order.
type Circuit struct {
	Name  string
	QRegs []Register
	CRegs []Register
	Gates []Gate
}

// New returns a circuit with a quantum register "q" and, when numCbits is
// positive, a classical register "c".
func New(numQubits, numCbits int) *Circuit {
	c := &Circuit{}
	if numQubits > 0 {
		c.QRegs = []Register{{Name: "q", Size: numQubits}}
	}
	if numCbits > 0 {
		c.CRegs = []Register{{Name: "c", Size: numCbits}}
	}
	return c
}

// NewWithRegisters returns an empty circuit over the given registers.
func NewWithRegisters(qregs, cregs []Register) *Circuit {
	return &Circuit{
		QRegs: append([]Register(nil), qregs...),
		CRegs: append([]Register(nil), cregs...),
	}
}

// NumQubits returns the total qubit count.
func (c *Circuit) NumQubits() int {
	n := 0
	for _, r := range c.QRegs {
		n += r.Size
	}
	return n
}

// NumCbits returns the total classical bit count.
func (c *Circuit) NumCbits() int {
	n := 0
	for _, r := range c.CRegs {
		n += r.Size
	}
	return n
}

// AddQReg appends a quantum register and returns the flat index of its
// first qubit.
func (c *Circuit) AddQReg(name string, size int) int {
	off := c.NumQubits()
	c.QRegs = append(c.QRegs, Register{Name: name, Size: size})
	return off
}

// AddCReg appends a classical register and returns the flat index of its
// first bit.
func (c *Circuit) AddCReg(name string, size int) int {
	off := c.NumCbits()
	c.CRegs = append(c.CRegs, Register{Name: name, Size: size})
	return off
}

// QReg returns the offset of the named quantum register.
func (c *Circuit) QReg(name string) (Register, int, bool) {
	return lookupReg(c.QRegs, name)
}

// CReg returns the offset of the named classical register.
func (c *Circuit) CReg(name string) (Register, int, bool) {
	return lookupReg(c.CRegs, name)
}

func lookupReg(regs []Register, name string) (Register, int, bool) {
	off := 0
	for _, r := range regs {
		if r.Name == name {
			return r, off, true
		}
		off += r.Size
	}
	return Register{}, 0, false
}

// locate maps a flat index onto its register and the index inside it.
func locate(regs []Register, flat int) (Register, int) {
	for _, r := range regs {
		if flat < r.Size {
			return r, flat
		}
		flat -= r.Size
	}
	return Register{}, -1
}

// QubitLabel returns the wire label of a qubit, e.g. "q[1]" or "alice".
func (c *Circuit) QubitLabel(q int) string {
	r, i := locate(c.QRegs, q)
	if r.Size == 1 && r.Name != "q" {
		return r.Name
	}
	return fmt.Sprintf("%s[%d]", r.Name, i)
}

// CbitRegister returns the classical register holding bit b and the index
// of the register in CRegs.
func (c *Circuit) CbitRegister(b int) (Register, int) {
	for i, r := range c.CRegs {
		if b < r.Size {
			return r, i
		}
		b -= r.Size
	}
	return Register{}, -1
}

// Copy returns a deep copy of the circuit.
func (c *Circuit) Copy() *Circuit {
	cp := NewWithRegisters(c.QRegs, c.CRegs)
	cp.Name = c.Name
	cp.Gates = make([]Gate, len(c.Gates))
	for i, g := range c.Gates {
		cp.Gates[i] = g.clone()
	}
	return cp
}

func (g Gate) clone() Gate {
	g.Params = append([]float64(nil), g.Params...)
	g.Controls = append([]int(nil), g.Controls...)
	if g.Qubits != nil {
		g.Qubits = append([]int(nil), g.Qubits...)
	}
	if g.Matrix != nil {
		m := *g.Matrix
		g.Matrix = &m
	}
	return g
}

func (c *Circuit) checkQubit(q int) {
	if q < 0 || q >= c.NumQubits() {
		panic(fmt.Sprintf("%d is not a valid qubit", q))
	}
}

func (c *Circuit) checkCbit(b int) {
	if b < 0 || b >= c.NumCbits() {
		panic(fmt.Sprintf("%d is not a valid classical bit", b))
	}
}

// Append validates g against the registers and appends it.
func (c *Circuit) Append(g Gate) error {
	n := c.NumQubits()
	if g.Type != "MEASURE" && g.Type != "RESET" && g.Type != "BARRIER" && !IsUnitaryType(g.Type) {
		return errors.Wrapf(ErrUnsupportedGate, "%q", g.Type)
	}
	if g.Type != "BARRIER" || g.Qubits != nil {
		seen := map[int]bool{}
		for _, q := range g.Wires(n) {
			if q < 0 || q >= n {
				return errors.Errorf("gate %s: qubit %d out of range", g.Type, q)
			}
			if seen[q] {
				return errors.Errorf("gate %s: qubit %d used twice", g.Type, q)
			}
			seen[q] = true
		}
	}
	if want := NumParams(g.Type); IsUnitaryType(g.Type) && g.Type != "UNITARY" && len(g.Params) != want {
		return errors.Errorf("gate %s: want %d parameters, got %d", g.Type, want, len(g.Params))
	}
	if g.Type == "MEASURE" && (g.Cbit < 0 || g.Cbit >= c.NumCbits()) {
		return errors.Errorf("measure: classical bit %d out of range", g.Cbit)
	}
	if g.Condition >= c.NumCbits() {
		return errors.Errorf("gate %s: condition bit %d out of range", g.Type, g.Condition)
	}
	if g.Type == "UNITARY" {
		if g.Matrix == nil || !g.Matrix.IsUnitary(1e-8) {
			return errors.WithStack(ErrNotUnitary)
		}
	}
	c.Gates = append(c.Gates, g)
	return nil
}

func (c *Circuit) add(g Gate) *Circuit {
	if err := c.Append(g); err != nil {
		panic(err.Error())
	}
	return c
}

func single(t string, q int, params ...float64) Gate {
	return Gate{Type: t, Target: q, Control: -1, Cbit: -1, Condition: -1, Params: params}
}

func controlled(t string, ctrl, q int, params ...float64) Gate {
	g := single(t, q, params...)
	g.Control = ctrl
	return g
}

// H adds a Hadamard gate.
func (c *Circuit) H(q int) *Circuit { return c.add(single("H", q)) }

// X adds a Pauli X gate.
func (c *Circuit) X(q int) *Circuit { return c.add(single("X", q)) }

// Y adds a Pauli Y gate.
func (c *Circuit) Y(q int) *Circuit { return c.add(single("Y", q)) }

// Z adds a Pauli Z gate.
func (c *Circuit) Z(q int) *Circuit { return c.add(single("Z", q)) }

// I adds an identity gate.
func (c *Circuit) I(q int) *Circuit { return c.add(single("I", q)) }

// S adds a phase gate.
func (c *Circuit) S(q int) *Circuit { return c.add(single("S", q)) }

// Sdg adds the inverse phase gate.
func (c *Circuit) Sdg(q int) *Circuit { return c.add(single("SDG", q)) }

// T adds a T gate.
func (c *Circuit) T(q int) *Circuit { return c.add(single("T", q)) }

// Tdg adds the inverse T gate.
func (c *Circuit) Tdg(q int) *Circuit { return c.add(single("TDG", q)) }

// SX adds a square root of X gate.
func (c *Circuit) SX(q int) *Circuit { return c.add(single("SX", q)) }

// SXdg adds the inverse square root of X gate.
func (c *Circuit) SXdg(q int) *Circuit { return c.add(single("SXDG", q)) }

// RX adds a rotation about X.
func (c *Circuit) RX(theta float64, q int) *Circuit { return c.add(single("RX", q, theta)) }

// RY adds a rotation about Y.
func (c *Circuit) RY(theta float64, q int) *Circuit { return c.add(single("RY", q, theta)) }

// RZ adds a rotation about Z.
func (c *Circuit) RZ(theta float64, q int) *Circuit { return c.add(single("RZ", q, theta)) }

// P adds a phase gate diag(1, e^{i lambda}).
func (c *Circuit) P(lambda float64, q int) *Circuit { return c.add(single("P", q, lambda)) }

// U adds the generic single-qubit rotation U(theta, phi, lambda).
func (c *Circuit) U(theta, phi, lambda float64, q int) *Circuit {
	return c.add(single("U", q, theta, phi, lambda))
}

// CX adds a controlled-NOT.
func (c *Circuit) CX(ctrl, q int) *Circuit { return c.add(controlled("CX", ctrl, q)) }

// CY adds a controlled-Y.
func (c *Circuit) CY(ctrl, q int) *Circuit { return c.add(controlled("CY", ctrl, q)) }

// CZ adds a controlled-Z.
func (c *Circuit) CZ(ctrl, q int) *Circuit { return c.add(controlled("CZ", ctrl, q)) }

// CH adds a controlled-Hadamard.
func (c *Circuit) CH(ctrl, q int) *Circuit { return c.add(controlled("CH", ctrl, q)) }

// CRX adds a controlled X rotation.
func (c *Circuit) CRX(theta float64, ctrl, q int) *Circuit {
	return c.add(controlled("CRX", ctrl, q, theta))
}

// CRY adds a controlled Y rotation.
func (c *Circuit) CRY(theta float64, ctrl, q int) *Circuit {
	return c.add(controlled("CRY", ctrl, q, theta))
}

// CRZ adds a controlled Z rotation.
func (c *Circuit) CRZ(theta float64, ctrl, q int) *Circuit {
	return c.add(controlled("CRZ", ctrl, q, theta))
}

// CP adds a controlled phase gate.
func (c *Circuit) CP(lambda float64, ctrl, q int) *Circuit {
	return c.add(controlled("CP", ctrl, q, lambda))
}

// CU adds a controlled U(theta, phi, lambda) with extra phase gamma on the
// controlled block.
func (c *Circuit) CU(theta, phi, lambda, gamma float64, ctrl, q int) *Circuit {
	return c.add(controlled("CU", ctrl, q, theta, phi, lambda, gamma))
}

// Swap exchanges two qubits.
func (c *Circuit) Swap(a, b int) *Circuit { return c.add(controlled("SWAP", a, b)) }

// CCX adds a Toffoli gate.
func (c *Circuit) CCX(c1, c2, q int) *Circuit {
	g := controlled("CCX", c2, q)
	g.Controls = []int{c1}
	return c.add(g)
}

// CSwap adds a Fredkin gate swapping a and b when ctrl is set.
func (c *Circuit) CSwap(ctrl, a, b int) *Circuit {
	g := controlled("CSWAP", a, b)
	g.Controls = []int{ctrl}
	return c.add(g)
}

// Measure measures qubit q into classical bit b.
func (c *Circuit) Measure(q, b int) *Circuit {
	c.checkCbit(b)
	g := single("MEASURE", q)
	g.Cbit = b
	return c.add(g)
}

// MeasureRange measures qubits[i] into cbits[i].
func (c *Circuit) MeasureRange(qubits, cbits []int) *Circuit {
	if len(qubits) != len(cbits) {
		panic("measure: qubit and classical bit counts differ")
	}
	for i := range qubits {
		c.Measure(qubits[i], cbits[i])
	}
	return c
}

// MeasureAll adds a barrier, a classical register "meas" sized to the
// qubit count, and measures every qubit into it.
func (c *Circuit) MeasureAll() *Circuit {
	n := c.NumQubits()
	c.Barrier()
	off := c.AddCReg("meas", n)
	for q := 0; q < n; q++ {
		c.Measure(q, off+q)
	}
	return c
}

// Barrier adds a barrier across the given qubits, or every qubit when none
// are given.
func (c *Circuit) Barrier(qubits ...int) *Circuit {
	g := single("BARRIER", 0)
	if len(qubits) > 0 {
		g.Qubits = append([]int(nil), qubits...)
	}
	return c.add(g)
}

// Reset returns qubit q to |0>.
func (c *Circuit) Reset(q int) *Circuit { return c.add(single("RESET", q)) }

// Unitary adds an arbitrary single-qubit unitary.
func (c *Circuit) Unitary(m Matrix2, q int, label string) error {
	g := single("UNITARY", q)
	g.Matrix = &m
	g.Label = label
	return c.Append(g)
}

// Initialize prepares qubit q in the normalized state a|0> + b|1>. The
// qubit is reset first.
func (c *Circuit) Initialize(q int, a, b complex128) error {
	norm := math.Sqrt(real(a*cmplx.Conj(a)) + real(b*cmplx.Conj(b)))
	if math.Abs(norm-1) > 1e-8 {
		return errors.Errorf("initialize: amplitudes not normalized (norm %g)", norm)
	}
	c.checkQubit(q)
	c.Reset(q)
	c.RY(2*math.Atan2(cmplx.Abs(b), cmplx.Abs(a)), q)
	if phase := cmplx.Phase(b) - cmplx.Phase(a); cmplx.Abs(b) > 1e-12 && math.Abs(phase) > 1e-12 {
		c.P(phase, q)
	}
	return nil
}

// CIf conditions the last gate on classical bit b reading 1.
func (c *Circuit) CIf(b int) *Circuit {
	c.checkCbit(b)
	if len(c.Gates) == 0 {
		panic("c_if: no gate to condition")
	}
	c.Gates[len(c.Gates)-1].Condition = b
	return c
}

// Compose inlines sub onto the given qubits of c. qubits[i] receives wire i
// of sub. Classical bits map onto cbits the same way; a nil cbits maps them
// one-to-one.
func (c *Circuit) Compose(sub *Circuit, qubits, cbits []int) error {
	if len(qubits) != sub.NumQubits() {
		return errors.Errorf("compose: %d qubits given for a %d-qubit circuit", len(qubits), sub.NumQubits())
	}
	if cbits == nil {
		for i := 0; i < sub.NumCbits(); i++ {
			cbits = append(cbits, i)
		}
	}
	if len(cbits) != sub.NumCbits() {
		return errors.Errorf("compose: %d classical bits given for %d", len(cbits), sub.NumCbits())
	}
	mapQ := func(q int) int { return qubits[q] }
	for _, g := range sub.Gates {
		g = g.clone()
		g.Target = mapQ(g.Target)
		if g.Control >= 0 {
			g.Control = mapQ(g.Control)
		}
		for i, q := range g.Controls {
			g.Controls[i] = mapQ(q)
		}
		if g.Type == "BARRIER" {
			if g.Qubits == nil {
				g.Qubits = append([]int(nil), qubits...)
			} else {
				for i, q := range g.Qubits {
					g.Qubits[i] = mapQ(q)
				}
			}
		}
		if g.Cbit >= 0 {
			g.Cbit = cbits[g.Cbit]
		}
		if g.Condition >= 0 {
			g.Condition = cbits[g.Condition]
		}
		if err := c.Append(g); err != nil {
			return errors.Wrap(err, "compose")
		}
	}
	return nil
}

// Inverse returns the adjoint circuit. Circuits with measurements, resets
// or classical conditions are not invertible.
func (c *Circuit) Inverse() (*Circuit, error) {
	inv := NewWithRegisters(c.QRegs, c.CRegs)
	if c.Name != "" {
		inv.Name = c.Name + "_dg"
	}
	for i := len(c.Gates) - 1; i >= 0; i-- {
		g := c.Gates[i]
		if g.IsConditioned() || g.Type == "MEASURE" || g.Type == "RESET" {
			return nil, errors.Wrapf(ErrNotInvertible, "gate %d (%s)", i, g.Type)
		}
		ig, err := g.Inverse()
		if err != nil {
			return nil, err
		}
		inv.Gates = append(inv.Gates, ig)
	}
	return inv, nil
}

// IsUnitary reports whether every gate is unitary (barriers allowed) and
// nothing is classically conditioned.
func (c *Circuit) IsUnitary() bool {
	for _, g := range c.Gates {
		if g.Type == "BARRIER" {
			continue
		}
		if !g.IsUnitary() || g.IsConditioned() {
			return false
		}
	}
	return true
}
