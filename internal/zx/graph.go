// Package zx implements ZX-diagrams of circuits: conversion from circuits,
// graph-like simplification with spider fusion, identity removal, local
// complementation and pivoting, and extraction back to a circuit.
//
// Phases are stored in units of pi and normalized to [0, 2).
package zx

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedGate is returned by FromCircuit for operations with no
	// ZX translation.
	ErrUnsupportedGate = errors.New("gate has no ZX translation")
	// ErrNotExtractable is returned by Extract when no frontier vertex can
	// be extracted.
	ErrNotExtractable = errors.New("graph is not extractable")
)

// VertexType is the kind of a vertex.
type VertexType int

const (
	Boundary VertexType = iota
	Z
	X
)

func (t VertexType) String() string {
	switch t {
	case Z:
		return "Z"
	case X:
		return "X"
	}
	return "B"
}

// EdgeType is the kind of an edge.
type EdgeType int

const (
	Simple EdgeType = iota + 1
	Hadamard
)

func (e EdgeType) String() string {
	if e == Hadamard {
		return "H"
	}
	return "S"
}

func toggle(e EdgeType) EdgeType {
	if e == Hadamard {
		return Simple
	}
	return Hadamard
}

// Vertex is a node of the diagram. Qubit and Row place it for drawing.
type Vertex struct {
	Type  VertexType
	Phase float64
	Qubit int
	Row   float64
}

// Graph is an undirected ZX-diagram without parallel edges or self-loops.
type Graph struct {
	vertices map[int]*Vertex
	adj      map[int]map[int]EdgeType
	inputs   []int
	outputs  []int
	next     int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		vertices: map[int]*Vertex{},
		adj:      map[int]map[int]EdgeType{},
	}
}

const phaseTol = 1e-9

// normPhase maps p into [0, 2) and snaps values close to a multiple of 1/4.
func normPhase(p float64) float64 {
	p = math.Mod(p, 2)
	if p < 0 {
		p += 2
	}
	if q := math.Round(p * 4); math.Abs(p*4-q) < phaseTol {
		p = q / 4
	}
	if p >= 2 {
		p -= 2
	}
	return p
}

// isMultiple reports whether phase is an integer multiple of unit.
func isMultiple(phase, unit float64) bool {
	r := phase / unit
	return math.Abs(r-math.Round(r)) < phaseTol
}

func isPauli(p float64) bool    { return isMultiple(p, 1) }
func isProper(p float64) bool   { return isMultiple(p, 0.5) && !isPauli(p) }
func isClifford(p float64) bool { return isMultiple(p, 0.5) }

// AddVertex adds a vertex and returns its id.
func (g *Graph) AddVertex(t VertexType, qubit int, row float64, phase float64) int {
	v := g.next
	g.next++
	g.vertices[v] = &Vertex{Type: t, Phase: normPhase(phase), Qubit: qubit, Row: row}
	g.adj[v] = map[int]EdgeType{}
	return v
}

// RemoveVertex deletes v and its edges.
func (g *Graph) RemoveVertex(v int) {
	for w := range g.adj[v] {
		delete(g.adj[w], v)
	}
	delete(g.adj, v)
	delete(g.vertices, v)
}

// AddEdge sets the edge between u and v, replacing any existing one.
func (g *Graph) AddEdge(u, v int, et EdgeType) {
	g.adj[u][v] = et
	g.adj[v][u] = et
}

// RemoveEdge deletes the edge between u and v if present.
func (g *Graph) RemoveEdge(u, v int) {
	delete(g.adj[u], v)
	delete(g.adj[v], u)
}

// Edge returns the type of the edge between u and v.
func (g *Graph) Edge(u, v int) (EdgeType, bool) {
	et, ok := g.adj[u][v]
	return et, ok
}

// addEdgeSmart adds an edge between u and v, resolving a parallel edge the
// way the calculus does for two Z spiders: two Hadamard edges cancel, two
// simple edges merge, and a simple edge next to a Hadamard edge leaves the
// simple edge and a pi phase.
func (g *Graph) addEdgeSmart(u, v int, et EdgeType) {
	old, ok := g.adj[u][v]
	if !ok || g.Type(u) != Z || g.Type(v) != Z {
		g.AddEdge(u, v, et)
		return
	}
	switch {
	case old == Hadamard && et == Hadamard:
		g.RemoveEdge(u, v)
	case old == Simple && et == Simple:
	default:
		g.AddEdge(u, v, Simple)
		g.AddToPhase(u, 1)
	}
}

// toggleHadamard adds a Hadamard edge between u and v or removes the one
// already there.
func (g *Graph) toggleHadamard(u, v int) {
	if _, ok := g.adj[u][v]; ok {
		g.RemoveEdge(u, v)
		return
	}
	g.AddEdge(u, v, Hadamard)
}

// Neighbors returns the neighbours of v in increasing id order.
func (g *Graph) Neighbors(v int) []int {
	out := make([]int, 0, len(g.adj[v]))
	for w := range g.adj[v] {
		out = append(out, w)
	}
	sort.Ints(out)
	return out
}

func (g *Graph) Degree(v int) int { return len(g.adj[v]) }

func (g *Graph) Type(v int) VertexType { return g.vertices[v].Type }

func (g *Graph) Phase(v int) float64 { return g.vertices[v].Phase }

func (g *Graph) SetPhase(v int, p float64) { g.vertices[v].Phase = normPhase(p) }

func (g *Graph) AddToPhase(v int, p float64) { g.SetPhase(v, g.Phase(v)+p) }

// Vertex returns a copy of the vertex data.
func (g *Graph) Vertex(v int) (Vertex, bool) {
	x, ok := g.vertices[v]
	if !ok {
		return Vertex{}, false
	}
	return *x, true
}

// Vertices returns every vertex id in increasing order.
func (g *Graph) Vertices() []int {
	out := make([]int, 0, len(g.vertices))
	for v := range g.vertices {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func (g *Graph) NumVertices() int { return len(g.vertices) }

func (g *Graph) NumEdges() int {
	n := 0
	for _, nb := range g.adj {
		n += len(nb)
	}
	return n / 2
}

func (g *Graph) Inputs() []int  { return append([]int(nil), g.inputs...) }
func (g *Graph) Outputs() []int { return append([]int(nil), g.outputs...) }

// SetInputs and SetOutputs declare the ordered boundary of the diagram.
func (g *Graph) SetInputs(vs ...int)  { g.inputs = append([]int(nil), vs...) }
func (g *Graph) SetOutputs(vs ...int) { g.outputs = append([]int(nil), vs...) }

func (g *Graph) isBoundary(v int) bool { return g.Type(v) == Boundary }

// isInterior reports whether v is a Z spider whose neighbours are all Z
// spiders joined by Hadamard edges.
func (g *Graph) isInterior(v int) bool {
	if g.Type(v) != Z {
		return false
	}
	for w, et := range g.adj[v] {
		if g.Type(w) != Z || et != Hadamard {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (g *Graph) Clone() *Graph {
	c := NewGraph()
	c.next = g.next
	for v, x := range g.vertices {
		cp := *x
		c.vertices[v] = &cp
		c.adj[v] = make(map[int]EdgeType, len(g.adj[v]))
		for w, et := range g.adj[v] {
			c.adj[v][w] = et
		}
	}
	c.inputs = g.Inputs()
	c.outputs = g.Outputs()
	return c
}

func (g *Graph) String() string {
	return fmt.Sprintf("Graph(%d vertices, %d edges)", g.NumVertices(), g.NumEdges())
}

// TCount returns the number of spiders whose phase is not a multiple of
// pi/2.
func (g *Graph) TCount() int {
	n := 0
	for _, x := range g.vertices {
		if x.Type != Boundary && !isClifford(x.Phase) {
			n++
		}
	}
	return n
}

// Stats summarizes the vertex and edge census.
func (g *Graph) Stats() string {
	var nz, nx, nh int
	degrees := map[int]int{}
	for v, x := range g.vertices {
		switch x.Type {
		case Z:
			nz++
		case X:
			nx++
		}
		if x.Type != Boundary {
			degrees[g.Degree(v)]++
		}
	}
	for u, nb := range g.adj {
		for w, et := range nb {
			if u < w && et == Hadamard {
				nh++
			}
		}
	}
	ds := make([]int, 0, len(degrees))
	for d := range degrees {
		ds = append(ds, d)
	}
	sort.Ints(ds)
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = fmt.Sprintf("%d: %d", d, degrees[d])
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", g)
	fmt.Fprintf(&sb, "        %d Z-spiders, %d X-spiders, %d boundaries\n", nz, nx, len(g.inputs)+len(g.outputs))
	fmt.Fprintf(&sb, "        %d Hadamard edges\n", nh)
	fmt.Fprintf(&sb, "        %d is the T-count\n", g.TCount())
	fmt.Fprintf(&sb, "        degrees {%s}", strings.Join(parts, ", "))
	return sb.String()
}

// FormatPhase prints a phase in units of pi, e.g. "3π/4".
func FormatPhase(p float64) string {
	if p == 0 {
		return "0"
	}
	for _, den := range []int{1, 2, 4, 8} {
		num := p * float64(den)
		if math.Abs(num-math.Round(num)) < phaseTol {
			n := int(math.Round(num))
			switch {
			case den == 1 && n == 1:
				return "π"
			case den == 1:
				return fmt.Sprintf("%dπ", n)
			case n == 1:
				return fmt.Sprintf("π/%d", den)
			default:
				return fmt.Sprintf("%dπ/%d", n, den)
			}
		}
	}
	return fmt.Sprintf("%.4gπ", p)
}

// Dump lists every vertex with its type, phase, position and neighbours.
func (g *Graph) Dump() string {
	var sb strings.Builder
	sb.WriteString(g.String())
	sb.WriteByte('\n')
	io := map[int]string{}
	for i, v := range g.inputs {
		io[v] = fmt.Sprintf(" in%d", i)
	}
	for i, v := range g.outputs {
		io[v] = fmt.Sprintf(" out%d", i)
	}
	for _, v := range g.Vertices() {
		x := g.vertices[v]
		fmt.Fprintf(&sb, "  %3d %s", v, x.Type)
		if x.Type != Boundary {
			fmt.Fprintf(&sb, "(%s)", FormatPhase(x.Phase))
		}
		fmt.Fprintf(&sb, "%s q%d r%g:", io[v], x.Qubit, x.Row)
		for _, w := range g.Neighbors(v) {
			fmt.Fprintf(&sb, " %d%s", w, g.adj[v][w])
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Normalize lays the diagram out again: inputs on row 0, outputs on the
// last row, and every spider one row after its furthest neighbour reached
// from the inputs.
func (g *Graph) Normalize() {
	dist := map[int]int{}
	var queue []int
	for i, v := range g.inputs {
		dist[v] = 0
		g.vertices[v].Qubit = i
		queue = append(queue, v)
	}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range g.Neighbors(v) {
			if _, seen := dist[w]; seen || g.isBoundary(w) {
				continue
			}
			dist[w] = dist[v] + 1
			g.vertices[w].Qubit = g.vertices[v].Qubit
			queue = append(queue, w)
		}
	}
	last := 0
	for v, d := range dist {
		g.vertices[v].Row = float64(d)
		if d > last {
			last = d
		}
	}
	for i, v := range g.outputs {
		g.vertices[v].Qubit = i
		g.vertices[v].Row = float64(last + 1)
	}
}
