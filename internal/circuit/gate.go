package circuit

import (
	"math"
	"math/cmplx"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedGate is returned for gate names the package does not know.
	ErrUnsupportedGate = errors.New("unsupported gate")
	// ErrNotUnitary is returned when a UNITARY gate carries a non-unitary matrix.
	ErrNotUnitary = errors.New("matrix is not unitary")
	// ErrNotInvertible is returned by Inverse for circuits containing
	// measurements, resets or classical conditions.
	ErrNotInvertible = errors.New("circuit is not invertible")
	// ErrBadRegister is returned by ParseQASM for register declarations
	// with an unusable size.
	ErrBadRegister = errors.New("invalid register size")
)

// Matrix2 is a 2x2 complex matrix, row-major.
type Matrix2 [2][2]complex128

// Gate represents a single operation on the circuit.
type Gate struct {
	Type      string    // "H", "CX", "RZ", "MEASURE", ...
	Target    int       // target qubit
	Control   int       // control qubit (-1 if none); the first wire of SWAP
	Controls  []int     // extra control qubits (CCX, CSWAP)
	Params    []float64 // gate parameters in radians
	Cbit      int       // classical bit written by MEASURE, -1 otherwise
	Condition int       // classical bit that must read 1, -1 if unconditioned
	Matrix    *Matrix2  // UNITARY only
	Label     string    // display label for UNITARY and composed gates
	Qubits    []int     // BARRIER only; nil spans every qubit
}

// gateInfo describes a gate type.
type gateInfo struct {
	params  int
	qubits  int
	qasm    string
	selfInv bool
}

var gateTable = map[string]gateInfo{
	"H":     {0, 1, "h", true},
	"X":     {0, 1, "x", true},
	"Y":     {0, 1, "y", true},
	"Z":     {0, 1, "z", true},
	"I":     {0, 1, "id", true},
	"S":     {0, 1, "s", false},
	"SDG":   {0, 1, "sdg", false},
	"T":     {0, 1, "t", false},
	"TDG":   {0, 1, "tdg", false},
	"SX":    {0, 1, "sx", false},
	"SXDG":  {0, 1, "sxdg", false},
	"RX":    {1, 1, "rx", false},
	"RY":    {1, 1, "ry", false},
	"RZ":    {1, 1, "rz", false},
	"P":     {1, 1, "p", false},
	"U1":    {1, 1, "u1", false},
	"U2":    {2, 1, "u2", false},
	"U3":    {3, 1, "u3", false},
	"U":     {3, 1, "u", false},
	"CX":    {0, 2, "cx", true},
	"CY":    {0, 2, "cy", true},
	"CZ":    {0, 2, "cz", true},
	"CH":    {0, 2, "ch", true},
	"CRX":   {1, 2, "crx", false},
	"CRY":   {1, 2, "cry", false},
	"CRZ":   {1, 2, "crz", false},
	"CP":    {1, 2, "cp", false},
	"CU1":   {1, 2, "cu1", false},
	"CU":    {4, 2, "cu", false},
	"SWAP":  {0, 2, "swap", true},
	"CCX":   {0, 3, "ccx", true},
	"CSWAP": {0, 3, "cswap", true},
}

// StandardGates lists the unitary gate types in a stable order.
var StandardGates = []string{
	"I", "H", "X", "Y", "Z", "S", "SDG", "T", "TDG", "SX", "SXDG",
	"RX", "RY", "RZ", "P", "U1", "U2", "U3", "U",
	"CX", "CY", "CZ", "CH", "CRX", "CRY", "CRZ", "CP", "CU1", "CU",
	"SWAP", "CCX", "CSWAP",
}

// IsUnitaryType reports whether t names a known unitary gate.
func IsUnitaryType(t string) bool {
	if t == "UNITARY" {
		return true
	}
	_, ok := gateTable[t]
	return ok
}

// NumParams returns the parameter count for the gate type.
func NumParams(t string) int {
	return gateTable[t].params
}

// NumQubitsOf returns the qubit arity of the gate type, 0 if unknown.
func NumQubitsOf(t string) int {
	if t == "UNITARY" || t == "MEASURE" || t == "RESET" {
		return 1
	}
	return gateTable[t].qubits
}

// QASMName returns the OpenQASM 2 name of a gate type, "" if unknown.
func QASMName(t string) string {
	return gateTable[t].qasm
}

// SelfInverse reports whether applying the gate twice is the identity.
func SelfInverse(t string) bool {
	return gateTable[t].selfInv
}

// Wires returns every qubit touched by the gate, controls first.
func (g Gate) Wires(numQubits int) []int {
	if g.Type == "BARRIER" {
		if g.Qubits == nil {
			all := make([]int, numQubits)
			for i := range all {
				all[i] = i
			}
			return all
		}
		return append([]int(nil), g.Qubits...)
	}
	var w []int
	w = append(w, g.Controls...)
	if g.Control >= 0 {
		w = append(w, g.Control)
	}
	return append(w, g.Target)
}

// IsConditioned reports whether the gate only runs when a classical bit is 1.
func (g Gate) IsConditioned() bool {
	return g.Condition >= 0
}

// IsUnitary reports whether the gate is a unitary operation.
func (g Gate) IsUnitary() bool {
	return IsUnitaryType(g.Type)
}

// BaseType strips the controls off a controlled gate type: CRZ -> RZ,
// CX -> X, CCX -> X, CSWAP -> SWAP.
func BaseType(t string) string {
	switch t {
	case "CCX":
		return "X"
	case "CSWAP":
		return "SWAP"
	case "CU1":
		return "U1"
	case "CU":
		return "U"
	}
	if strings.HasPrefix(t, "C") && len(t) > 1 {
		if _, ok := gateTable[t[1:]]; ok {
			return t[1:]
		}
	}
	return t
}

// Name returns the display name of the gate, parameters included.
func (g Gate) Name() string {
	switch g.Type {
	case "UNITARY":
		if g.Label != "" {
			return g.Label
		}
		return "Unitary"
	case "MEASURE":
		return "M"
	case "RESET":
		return "|0>"
	}
	name := BaseType(g.Type)
	if g.Type == "CU" {
		name = "U"
	}
	if g.Type == "I" {
		name = "I"
	}
	if len(g.Params) == 0 {
		return name
	}
	ps := make([]string, len(g.Params))
	for i, p := range g.Params {
		ps[i] = FormatParam(p)
	}
	return name + "(" + strings.Join(ps, ",") + ")"
}

// Inverse returns the adjoint of a unitary gate.
func (g Gate) Inverse() (Gate, error) {
	inv := g
	inv.Params = append([]float64(nil), g.Params...)
	inv.Controls = append([]int(nil), g.Controls...)
	switch g.Type {
	case "S":
		inv.Type = "SDG"
	case "SDG":
		inv.Type = "S"
	case "T":
		inv.Type = "TDG"
	case "TDG":
		inv.Type = "T"
	case "SX":
		inv.Type = "SXDG"
	case "SXDG":
		inv.Type = "SX"
	case "RX", "RY", "RZ", "P", "U1", "CRX", "CRY", "CRZ", "CP", "CU1":
		inv.Params[0] = -g.Params[0]
	case "U2":
		inv.Type = "U3"
		inv.Params = []float64{-math.Pi / 2, -g.Params[1], -g.Params[0]}
	case "U3", "U":
		inv.Params = []float64{-g.Params[0], -g.Params[2], -g.Params[1]}
	case "CU":
		inv.Params = []float64{-g.Params[0], -g.Params[2], -g.Params[1], -g.Params[3]}
	case "UNITARY":
		m := g.Matrix.Adjoint()
		inv.Matrix = &m
	case "BARRIER":
	default:
		if !SelfInverse(g.Type) {
			return Gate{}, errors.Wrapf(ErrNotInvertible, "gate %s", g.Type)
		}
	}
	return inv, nil
}

// Adjoint returns the conjugate transpose.
func (m Matrix2) Adjoint() Matrix2 {
	return Matrix2{
		{cmplx.Conj(m[0][0]), cmplx.Conj(m[1][0])},
		{cmplx.Conj(m[0][1]), cmplx.Conj(m[1][1])},
	}
}

// Mul returns m*o.
func (m Matrix2) Mul(o Matrix2) Matrix2 {
	var r Matrix2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			r[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j]
		}
	}
	return r
}

// IsUnitary reports whether m*m^dagger is the identity within tol.
func (m Matrix2) IsUnitary(tol float64) bool {
	p := m.Mul(m.Adjoint())
	return cmplx.Abs(p[0][0]-1) < tol && cmplx.Abs(p[1][1]-1) < tol &&
		cmplx.Abs(p[0][1]) < tol && cmplx.Abs(p[1][0]) < tol
}

// ZYZ decomposes a unitary into U3 angles (theta, phi, lambda) and a global
// phase gamma so that m = e^{i gamma} U3(theta, phi, lambda).
func (m Matrix2) ZYZ() (theta, phi, lambda, gamma float64) {
	const tiny = 1e-12
	c, s := cmplx.Abs(m[0][0]), cmplx.Abs(m[1][0])
	theta = 2 * math.Atan2(s, c)
	switch {
	case c < tiny:
		gamma = cmplx.Phase(m[1][0])
		lambda = cmplx.Phase(-m[0][1]) - gamma
	case s < tiny:
		gamma = cmplx.Phase(m[0][0])
		lambda = cmplx.Phase(m[1][1]) - gamma
	default:
		gamma = cmplx.Phase(m[0][0])
		phi = cmplx.Phase(m[1][0]) - gamma
		lambda = cmplx.Phase(-m[0][1]) - gamma
	}
	return theta, wrapAngle(phi), wrapAngle(lambda), gamma
}

// wrapAngle maps a into (-pi, pi].
func wrapAngle(a float64) float64 {
	a = math.Remainder(a, 2*math.Pi)
	if a <= -math.Pi+1e-12 {
		a += 2 * math.Pi
	}
	return a
}
