package zx

import (
	"math"

	"github.com/pkg/errors"

	"qdemos/internal/circuit"
)

// basicOp is a gate from the set the diagram is built from: Hadamard, Z
// and X phases (in units of pi), CNOT and CZ.
type basicOp struct {
	kind  string // "H", "Z", "X", "CX", "CZ"
	q, t  int
	phase float64
}

type decomposer struct {
	ops []basicOp
}

func (d *decomposer) h(q int)            { d.ops = append(d.ops, basicOp{kind: "H", q: q}) }
func (d *decomposer) z(q int, p float64) { d.ops = append(d.ops, basicOp{kind: "Z", q: q, phase: p}) }
func (d *decomposer) x(q int, p float64) { d.ops = append(d.ops, basicOp{kind: "X", q: q, phase: p}) }
func (d *decomposer) cx(c, t int)        { d.ops = append(d.ops, basicOp{kind: "CX", q: c, t: t}) }
func (d *decomposer) cz(c, t int)        { d.ops = append(d.ops, basicOp{kind: "CZ", q: c, t: t}) }

// rz adds a Z rotation by theta radians.
func (d *decomposer) rz(q int, theta float64) { d.z(q, theta/math.Pi) }

// ry adds RY(theta) = S RX(theta) S^dagger.
func (d *decomposer) ry(q int, theta float64) {
	d.z(q, -0.5)
	d.x(q, theta/math.Pi)
	d.z(q, 0.5)
}

// u3 adds U3(theta, phi, lambda) = RZ(phi) RY(theta) RZ(lambda).
func (d *decomposer) u3(q int, theta, phi, lambda float64) {
	d.rz(q, lambda)
	d.ry(q, theta)
	d.rz(q, phi)
}

func (d *decomposer) ccx(a, b, c int) {
	d.h(c)
	d.cx(b, c)
	d.z(c, -0.25)
	d.cx(a, c)
	d.z(c, 0.25)
	d.cx(b, c)
	d.z(c, -0.25)
	d.cx(a, c)
	d.z(b, 0.25)
	d.z(c, 0.25)
	d.h(c)
	d.cx(a, b)
	d.z(a, 0.25)
	d.z(b, -0.25)
	d.cx(a, b)
}

// gate decomposes one circuit gate. Every translation is exact up to a
// global phase.
func (d *decomposer) gate(g circuit.Gate) error {
	if g.IsConditioned() {
		return errors.Wrap(ErrUnsupportedGate, "classically conditioned gate")
	}
	p := g.Params
	t, c := g.Target, g.Control
	switch g.Type {
	case "I", "BARRIER":
	case "H":
		d.h(t)
	case "Z":
		d.z(t, 1)
	case "S":
		d.z(t, 0.5)
	case "SDG":
		d.z(t, -0.5)
	case "T":
		d.z(t, 0.25)
	case "TDG":
		d.z(t, -0.25)
	case "RZ", "P", "U1":
		d.rz(t, p[0])
	case "X":
		d.x(t, 1)
	case "SX":
		d.x(t, 0.5)
	case "SXDG":
		d.x(t, -0.5)
	case "RX":
		d.x(t, p[0]/math.Pi)
	case "Y":
		d.z(t, 1)
		d.x(t, 1)
	case "RY":
		d.ry(t, p[0])
	case "U2":
		d.u3(t, math.Pi/2, p[0], p[1])
	case "U3", "U":
		d.u3(t, p[0], p[1], p[2])
	case "UNITARY":
		if g.Matrix == nil {
			return errors.WithStack(circuit.ErrNotUnitary)
		}
		theta, phi, lambda, _ := g.Matrix.ZYZ()
		d.u3(t, theta, phi, lambda)
	case "CX":
		d.cx(c, t)
	case "CZ":
		d.cz(c, t)
	case "CY":
		d.z(t, -0.5)
		d.cx(c, t)
		d.z(t, 0.5)
	case "CH":
		d.ry(t, math.Pi/4)
		d.cx(c, t)
		d.ry(t, -math.Pi/4)
	case "CRZ":
		d.rz(t, p[0]/2)
		d.cx(c, t)
		d.rz(t, -p[0]/2)
		d.cx(c, t)
	case "CRX":
		d.h(t)
		d.rz(t, p[0]/2)
		d.cx(c, t)
		d.rz(t, -p[0]/2)
		d.cx(c, t)
		d.h(t)
	case "CRY":
		d.ry(t, p[0]/2)
		d.cx(c, t)
		d.ry(t, -p[0]/2)
		d.cx(c, t)
	case "CP", "CU1":
		d.rz(c, p[0]/2)
		d.cx(c, t)
		d.rz(t, -p[0]/2)
		d.cx(c, t)
		d.rz(t, p[0]/2)
	case "CU":
		theta, phi, lambda, gamma := p[0], p[1], p[2], p[3]
		d.rz(c, gamma)
		d.rz(c, (lambda+phi)/2)
		d.rz(t, (lambda-phi)/2)
		d.cx(c, t)
		d.u3(t, -theta/2, 0, -(phi+lambda)/2)
		d.cx(c, t)
		d.u3(t, theta/2, phi, 0)
	case "SWAP":
		d.cx(c, t)
		d.cx(t, c)
		d.cx(c, t)
	case "CCX":
		d.ccx(g.Controls[0], c, t)
	case "CSWAP":
		d.cx(t, c)
		d.ccx(g.Controls[0], c, t)
		d.cx(t, c)
	default:
		return errors.Wrapf(ErrUnsupportedGate, "%s", g.Type)
	}
	return nil
}

func decompose(c *circuit.Circuit) ([]basicOp, error) {
	d := &decomposer{}
	for i, g := range c.Gates {
		if err := d.gate(g); err != nil {
			return nil, errors.Wrapf(err, "gate %d", i)
		}
	}
	return d.ops, nil
}

// FromCircuit builds the diagram of a unitary circuit. Z-type rotations
// become Z spiders, X-type rotations X spiders, Hadamards Hadamard edges;
// everything else is first decomposed into those and CNOT/CZ.
func FromCircuit(c *circuit.Circuit) (*Graph, error) {
	ops, err := decompose(c)
	if err != nil {
		return nil, err
	}
	n := c.NumQubits()
	g := NewGraph()
	last := make([]int, n)
	rows := make([]float64, n)
	pending := make([]EdgeType, n)
	inputs := make([]int, n)
	for q := 0; q < n; q++ {
		inputs[q] = g.AddVertex(Boundary, q, 0, 0)
		last[q] = inputs[q]
		rows[q] = 1
		pending[q] = Simple
	}
	g.SetInputs(inputs...)

	spider := func(t VertexType, q int, row, phase float64) int {
		v := g.AddVertex(t, q, row, phase)
		g.AddEdge(last[q], v, pending[q])
		pending[q] = Simple
		last[q] = v
		return v
	}

	for _, op := range ops {
		switch op.kind {
		case "H":
			pending[op.q] = toggle(pending[op.q])
		case "Z", "X":
			t := Z
			if op.kind == "X" {
				t = X
			}
			spider(t, op.q, rows[op.q], op.phase)
			rows[op.q]++
		case "CX", "CZ":
			row := math.Max(rows[op.q], rows[op.t])
			tt, et := X, Simple
			if op.kind == "CZ" {
				tt, et = Z, Hadamard
			}
			u := spider(Z, op.q, row, 0)
			v := spider(tt, op.t, row, 0)
			g.AddEdge(u, v, et)
			rows[op.q], rows[op.t] = row+1, row+1
		}
	}

	end := 1.0
	for _, r := range rows {
		end = math.Max(end, r)
	}
	outputs := make([]int, n)
	for q := 0; q < n; q++ {
		outputs[q] = g.AddVertex(Boundary, q, end, 0)
		g.AddEdge(last[q], outputs[q], pending[q])
	}
	g.SetOutputs(outputs...)
	return g, nil
}

// ZCopy returns the Z-copy example: one input feeding a phase-free Z
// spider with two outputs.
func ZCopy() *Graph {
	g := NewGraph()
	in := g.AddVertex(Boundary, 0, 0, 0)
	v := g.AddVertex(Z, 0, 1, 0)
	o1 := g.AddVertex(Boundary, 0, 2, 0)
	o2 := g.AddVertex(Boundary, 1, 2, 0)
	g.AddEdge(in, v, Simple)
	g.AddEdge(v, o1, Simple)
	g.AddEdge(v, o2, Simple)
	g.SetInputs(in)
	g.SetOutputs(o1, o2)
	return g
}
