package circuit

// span returns the lowest and highest row a gate occupies when drawn.
// Measurements and classically conditioned gates reach down to the
// classical wires, so they span every qubit below them.
func (c *Circuit) span(g Gate) (lo, hi int) {
	n := c.NumQubits()
	wires := g.Wires(n)
	lo, hi = wires[0], wires[0]
	for _, q := range wires[1:] {
		lo, hi = min(lo, q), max(hi, q)
	}
	if g.Type == "MEASURE" || g.IsConditioned() {
		hi = n - 1
	}
	return lo, hi
}

// Layers assigns each gate to a layer: one past the last layer used by any
// wire the gate spans. The result is indexed like Gates.
func (c *Circuit) Layers() []int {
	next := make([]int, c.NumQubits())
	cnext := make([]int, c.NumCbits())
	layers := make([]int, len(c.Gates))
	for i, g := range c.Gates {
		lo, hi := c.span(g)
		layer := 0
		for q := lo; q <= hi; q++ {
			layer = max(layer, next[q])
		}
		// classical wires order measurements and the gates conditioned on them
		if g.Type == "MEASURE" || g.IsConditioned() {
			for _, b := range cnext {
				layer = max(layer, b)
			}
			for b := range cnext {
				cnext[b] = layer + 1
			}
		}
		layers[i] = layer
		for q := lo; q <= hi; q++ {
			next[q] = layer + 1
		}
	}
	return layers
}

// Depth returns the number of layers, barriers excluded.
func (c *Circuit) Depth() int {
	depth := 0
	next := make([]int, c.NumQubits())
	for _, g := range c.Gates {
		if g.Type == "BARRIER" {
			continue
		}
		wires := g.Wires(c.NumQubits())
		layer := 0
		for _, q := range wires {
			layer = max(layer, next[q])
		}
		for _, q := range wires {
			next[q] = layer + 1
		}
		depth = max(depth, layer+1)
	}
	return depth
}
