package zx

import (
	"math"

	"github.com/pkg/errors"

	"qdemos/internal/circuit"
)

// Extract turns a diagram of a unitary back into a circuit implementing the
// same linear map up to a global phase. The graph is not modified; a copy is
// made graph-like first.
//
// Extraction walks from the outputs towards the inputs. Spiders adjacent to
// the outputs form the frontier: their phases become phase gates, edges
// among them CZ gates, and Gaussian elimination of their adjacency to the
// rest of the graph yields CNOTs until some frontier spider has a single
// neighbour, which then replaces it. What remains is a permutation of the
// inputs, emitted as SWAPs.
func Extract(src *Graph) (*circuit.Circuit, error) {
	g := src.Clone()
	n := len(g.outputs)
	if len(g.inputs) != n {
		return nil, errors.Wrapf(ErrNotExtractable, "%d inputs but %d outputs", len(g.inputs), n)
	}
	for _, b := range append(g.Inputs(), g.outputs...) {
		if g.Degree(b) != 1 {
			return nil, errors.Wrapf(ErrNotExtractable, "boundary %d has degree %d", b, g.Degree(b))
		}
	}
	ToGraphLike(g)
	if err := separateOutputs(g); err != nil {
		return nil, err
	}

	isInput := map[int]bool{}
	for _, b := range g.inputs {
		isInput[b] = true
	}

	// gates are collected from the outputs backwards.
	var gates []circuit.Gate
	emit := func(typ string, ctrl, target int, params ...float64) {
		gates = append(gates, circuit.Gate{Type: typ, Control: ctrl, Target: target, Params: params, Cbit: -1, Condition: -1})
	}

	qubit := map[int]int{}
	var frontier []int
	for q, o := range g.outputs {
		v := g.Neighbors(o)[0]
		if g.isBoundary(v) {
			continue
		}
		frontier = append(frontier, v)
		qubit[v] = q
	}

	for len(frontier) > 0 {
		for _, v := range frontier {
			q := qubit[v]
			o := g.outputs[q]
			if g.adj[v][o] == Hadamard {
				emit("H", -1, q)
				g.AddEdge(v, o, Simple)
			}
			if p := g.Phase(v); p != 0 {
				emit("P", -1, q, p*math.Pi)
				g.SetPhase(v, 0)
			}
		}
		for i, v := range frontier {
			for _, w := range frontier[i+1:] {
				if _, ok := g.adj[v][w]; ok {
					emit("CZ", qubit[v], qubit[w])
					g.RemoveEdge(v, w)
				}
			}
		}

		var next []int
		seen := map[int]bool{}
		var neighbors []int
		for _, v := range frontier {
			o := g.outputs[qubit[v]]
			var rest []int
			inputs := 0
			for _, w := range g.Neighbors(v) {
				if w == o {
					continue
				}
				rest = append(rest, w)
				if isInput[w] {
					inputs++
				}
			}
			switch {
			case len(rest) == 0:
				return nil, errors.Wrapf(ErrNotExtractable, "spider %d is only connected to its output", v)
			case inputs == 1 && len(rest) == 1:
				continue
			case inputs > 0:
				for i, b := range rest {
					if isInput[b] {
						rest[i] = unfuseInput(g, v, b)
					}
				}
			}
			next = append(next, v)
			for _, w := range rest {
				if !seen[w] {
					seen[w] = true
					neighbors = append(neighbors, w)
				}
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}

		m := make(mat2, len(frontier))
		hasSingle := false
		for i, v := range frontier {
			m[i] = make([]uint8, len(neighbors))
			for j, w := range neighbors {
				if _, ok := g.adj[v][w]; ok {
					m[i][j] = 1
				}
			}
			hasSingle = hasSingle || m.rowWeight(i) == 1
		}
		if !hasSingle {
			for _, op := range m.gauss() {
				emit("CX", qubit[frontier[op.dst]], qubit[frontier[op.src]])
			}
			for i, v := range frontier {
				for j, w := range neighbors {
					if m[i][j] == 1 {
						g.AddEdge(v, w, Hadamard)
					} else {
						g.RemoveEdge(v, w)
					}
				}
			}
		}

		taken := map[int]bool{}
		progressed := false
		for i, v := range frontier {
			if m.rowWeight(i) != 1 {
				continue
			}
			var w int
			for j, x := range m[i] {
				if x == 1 {
					w = neighbors[j]
				}
			}
			if taken[w] {
				continue
			}
			taken[w] = true
			q := qubit[v]
			g.RemoveVertex(v)
			g.AddEdge(w, g.outputs[q], Hadamard)
			delete(qubit, v)
			qubit[w] = q
			frontier[i] = w
			progressed = true
		}
		if !progressed {
			return nil, errors.Wrapf(ErrNotExtractable, "no extractable vertex among %d frontier spiders", len(frontier))
		}
	}

	perm, hs, err := finalPermutation(g)
	if err != nil {
		return nil, err
	}

	c := circuit.New(n, 0)
	for _, q := range hs {
		c.H(q)
	}
	for _, sw := range permutationSwaps(perm) {
		c.Swap(sw[0], sw[1])
	}
	for i := len(gates) - 1; i >= 0; i-- {
		if err := c.Append(gates[i]); err != nil {
			return nil, errors.Wrap(err, "extract")
		}
	}
	return c, nil
}

// unfuseInput splits the edge v-b to input b with a phase-free spider and
// returns it.
func unfuseInput(g *Graph, v, b int) int {
	et := g.adj[v][b]
	g.RemoveEdge(v, b)
	x := g.vertices[b]
	w := g.AddVertex(Z, x.Qubit, x.Row+0.5, 0)
	g.AddEdge(v, w, Hadamard)
	g.AddEdge(w, b, toggle(et))
	return w
}

// separateOutputs gives every output a spider of its own: a spider adjacent
// to several outputs has a phase-free spider inserted on each output edge.
func separateOutputs(g *Graph) error {
	count := map[int]int{}
	for _, o := range g.outputs {
		count[g.Neighbors(o)[0]]++
	}
	for _, o := range g.outputs {
		v := g.Neighbors(o)[0]
		if g.isBoundary(v) {
			if containsInt(g.outputs, v) {
				return errors.Wrap(ErrNotExtractable, "output connected to an output")
			}
			continue
		}
		if count[v] < 2 {
			continue
		}
		et := g.adj[v][o]
		g.RemoveEdge(v, o)
		x := g.vertices[o]
		z := g.AddVertex(Z, x.Qubit, x.Row-0.5, 0)
		g.AddEdge(o, z, toggle(et))
		g.AddEdge(z, v, Hadamard)
	}
	return nil
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// finalPermutation reads the wiring left after extraction: perm[o] is the
// input qubit feeding output o, and hs lists input qubits whose wire
// carries a Hadamard.
func finalPermutation(g *Graph) (perm []int, hs []int, err error) {
	inputIndex := map[int]int{}
	for i, b := range g.inputs {
		inputIndex[b] = i
	}
	perm = make([]int, len(g.outputs))
	used := map[int]bool{}
	wires := 0
	for q, o := range g.outputs {
		v := g.Neighbors(o)[0]
		b, et := v, g.adj[o][v]
		if !g.isBoundary(v) {
			nb := g.Neighbors(v)
			if len(nb) != 2 || g.Phase(v) != 0 {
				return nil, nil, errors.Wrapf(ErrNotExtractable, "spider %d left on output %d", v, q)
			}
			b = nb[0]
			if b == o {
				b = nb[1]
			}
			et = g.adj[v][b]
			wires++
		}
		i, ok := inputIndex[b]
		if !ok || used[i] {
			return nil, nil, errors.Wrapf(ErrNotExtractable, "output %d not wired to a free input", q)
		}
		used[i] = true
		perm[q] = i
		if et == Hadamard {
			hs = append(hs, i)
		}
	}
	if left := g.NumVertices() - len(g.inputs) - len(g.outputs) - wires; left != 0 {
		return nil, nil, errors.Wrapf(ErrNotExtractable, "%d spiders left unextracted", left)
	}
	return perm, hs, nil
}

// permutationSwaps returns swaps that move the state of qubit perm[j] onto
// qubit j for every j.
func permutationSwaps(perm []int) [][2]int {
	at := make([]int, len(perm))
	pos := make([]int, len(perm))
	for i := range at {
		at[i] = i
		pos[i] = i
	}
	var swaps [][2]int
	for j, want := range perm {
		if at[j] == want {
			continue
		}
		k := pos[want]
		swaps = append(swaps, [2]int{j, k})
		at[j], at[k] = at[k], at[j]
		pos[at[j]], pos[at[k]] = j, k
	}
	return swaps
}
