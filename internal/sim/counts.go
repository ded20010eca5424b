package sim

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"qdemos/internal/circuit"
)

// Counts maps a measured bitstring to the number of shots that produced it.
// Keys list the classical registers in reverse declaration order separated
// by spaces, each register most significant bit first.
type Counts map[string]int

// Count is one entry of a Counts histogram.
type Count struct {
	Key string
	N   int
}

// countKey formats the classical bits of one shot.
func countKey(c *circuit.Circuit, cbits []int) string {
	parts := make([]string, 0, len(c.CRegs))
	off := 0
	for _, r := range c.CRegs {
		var sb strings.Builder
		for i := r.Size - 1; i >= 0; i-- {
			sb.WriteByte(byte('0' + cbits[off+i]))
		}
		parts = append(parts, sb.String())
		off += r.Size
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " ")
}

// Total returns the number of shots.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Sorted returns the entries ordered by key.
func (c Counts) Sorted() []Count {
	out := make([]Count, 0, len(c))
	for k, v := range c {
		out = append(out, Count{Key: k, N: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Histogram maps each key, read as one binary number with the register
// separators removed, to its count.
func (c Counts) Histogram() map[int]int {
	out := make(map[int]int, len(c))
	for k, v := range c {
		n, err := strconv.ParseInt(strings.ReplaceAll(k, " ", ""), 2, 64)
		if err != nil {
			continue
		}
		out[int(n)] += v
	}
	return out
}

// Probabilities returns the relative frequency of each key.
func (c Counts) Probabilities() map[string]float64 {
	total := float64(c.Total())
	out := make(map[string]float64, len(c))
	for k, v := range c {
		out[k] = float64(v) / total
	}
	return out
}

func (c Counts) String() string {
	parts := make([]string, 0, len(c))
	for _, e := range c.Sorted() {
		parts = append(parts, fmt.Sprintf("'%s': %d", e.Key, e.N))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
