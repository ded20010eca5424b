package zx

// ToGraphLike turns every X spider into a Z spider by toggling its edges,
// then fuses Z spiders joined by simple edges. Afterwards every spider is a
// Z spider and spiders are only joined by Hadamard edges.
func ToGraphLike(g *Graph) {
	for _, v := range g.Vertices() {
		if g.Type(v) != X {
			continue
		}
		for w, et := range g.adj[v] {
			g.AddEdge(v, w, toggle(et))
		}
		g.vertices[v].Type = Z
	}
	SpiderSimp(g)
}

// SpiderSimp fuses pairs of Z spiders joined by a simple edge until none
// remain and returns the number of fusions.
func SpiderSimp(g *Graph) int {
	n := 0
	for {
		u, v, ok := findFusable(g)
		if !ok {
			return n
		}
		fuse(g, u, v)
		n++
	}
}

func findFusable(g *Graph) (int, int, bool) {
	for _, u := range g.Vertices() {
		if g.Type(u) != Z {
			continue
		}
		for _, v := range g.Neighbors(u) {
			if g.Type(v) == Z && g.adj[u][v] == Simple {
				return u, v, true
			}
		}
	}
	return 0, 0, false
}

// fuse merges v into u.
func fuse(g *Graph, u, v int) {
	g.AddToPhase(u, g.Phase(v))
	for _, w := range g.Neighbors(v) {
		if w == u {
			continue
		}
		g.addEdgeSmart(u, w, g.adj[v][w])
	}
	g.RemoveVertex(v)
}

// IDSimp removes phase-free spiders of degree two, joining their
// neighbours directly, and returns the number removed.
func IDSimp(g *Graph) int {
	n := 0
	for _, v := range g.Vertices() {
		if _, ok := g.vertices[v]; !ok || g.Type(v) != Z || g.Degree(v) != 2 || g.Phase(v) != 0 {
			continue
		}
		nb := g.Neighbors(v)
		a, b := nb[0], nb[1]
		et := Simple
		if g.adj[v][a] != g.adj[v][b] {
			et = Hadamard
		}
		g.RemoveVertex(v)
		g.addEdgeSmart(a, b, et)
		n++
	}
	return n
}

// LcompSimp removes interior spiders with phase +-pi/2 by local
// complementation: the neighbourhood is complemented and every neighbour
// loses the removed phase. It returns the number of rewrites.
func LcompSimp(g *Graph) int {
	n := 0
	for _, v := range g.Vertices() {
		if _, ok := g.vertices[v]; !ok || !isProper(g.Phase(v)) || !g.isInterior(v) {
			continue
		}
		nb := g.Neighbors(v)
		p := g.Phase(v)
		g.RemoveVertex(v)
		for i, a := range nb {
			g.AddToPhase(a, -p)
			for _, b := range nb[i+1:] {
				g.toggleHadamard(a, b)
			}
		}
		n++
	}
	return n
}

// PivotSimp removes pairs of adjacent interior Pauli spiders by pivoting
// and returns the number of rewrites.
func PivotSimp(g *Graph) int {
	n := 0
	for {
		u, v, ok := findPivot(g)
		if !ok {
			return n
		}
		pivot(g, u, v)
		n++
	}
}

func findPivot(g *Graph) (int, int, bool) {
	for _, u := range g.Vertices() {
		if !isPauli(g.Phase(u)) || !g.isInterior(u) {
			continue
		}
		for _, v := range g.Neighbors(u) {
			if v > u && isPauli(g.Phase(v)) && g.isInterior(v) {
				return u, v, true
			}
		}
	}
	return 0, 0, false
}

// pivot applies the pivot rule along the edge u-v. With U the exclusive
// neighbours of u, V those of v and W the shared ones, every edge between
// two of these sets is toggled, U gains the phase of v, V the phase of u
// and W both plus pi; u and v are removed.
func pivot(g *Graph, u, v int) {
	pu, pv := g.Phase(u), g.Phase(v)
	var us, vs, ws []int
	for _, w := range g.Neighbors(u) {
		if w == v {
			continue
		}
		if _, shared := g.adj[v][w]; shared {
			ws = append(ws, w)
		} else {
			us = append(us, w)
		}
	}
	for _, w := range g.Neighbors(v) {
		if _, shared := g.adj[u][w]; !shared && w != u {
			vs = append(vs, w)
		}
	}
	g.RemoveVertex(u)
	g.RemoveVertex(v)

	cross := func(as, bs []int) {
		for _, a := range as {
			for _, b := range bs {
				g.toggleHadamard(a, b)
			}
		}
	}
	cross(us, vs)
	cross(us, ws)
	cross(vs, ws)
	for _, w := range us {
		g.AddToPhase(w, pv)
	}
	for _, w := range vs {
		g.AddToPhase(w, pu)
	}
	for _, w := range ws {
		g.AddToPhase(w, pu+pv+1)
	}
}

// InteriorCliffordSimp runs identity removal, spider fusion, pivoting and
// local complementation until none applies.
func InteriorCliffordSimp(g *Graph) {
	SpiderSimp(g)
	for {
		n := IDSimp(g)
		n += SpiderSimp(g)
		n += PivotSimp(g)
		n += LcompSimp(g)
		if n == 0 {
			return
		}
	}
}

// FullReduce brings g into graph-like form and simplifies its interior.
func FullReduce(g *Graph) {
	ToGraphLike(g)
	InteriorCliffordSimp(g)
}
