package circuit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// cellInfo describes what occupies a single cell in the drawing grid. The
// three pieces are centred in the layer column; the middle line is padded
// with the wire character.
type cellInfo struct {
	top, mid, bot string
	kind          styleKind
	set           bool
}

func symbolCell(sym string, up, down bool) cellInfo {
	info := cellInfo{top: " ", mid: sym, bot: " ", kind: styleGate, set: true}
	if up {
		info.top = "│"
	}
	if down {
		info.bot = "│"
	}
	return info
}

// boxCell draws a gate box. The label is padded to an odd width so that
// box centres line up with the wire symbols of other rows.
func boxCell(label string, up, down bool) cellInfo {
	inner := " " + label + " "
	if lipgloss.Width(inner)%2 == 0 {
		inner += " "
	}
	w := lipgloss.Width(inner)
	mark := func(left, right, m string) string {
		half := (w - 1) / 2
		return left + strings.Repeat("─", half) + m + strings.Repeat("─", w-half-1) + right
	}
	info := cellInfo{kind: styleGate, set: true}
	info.top = mark("┌", "┐", "─")
	if up {
		info.top = mark("┌", "┐", "┴")
	}
	info.mid = "┤" + inner + "├"
	info.bot = mark("└", "┘", "─")
	if down {
		info.bot = mark("└", "┘", "┬")
	}
	return info
}

func (info *cellInfo) dropClassical() {
	if strings.HasPrefix(info.bot, "└") {
		r := []rune(info.bot)
		r[len(r)/2] = '╥'
		info.bot = string(r)
		return
	}
	info.bot = "║"
}

// isControl reports whether q is a control wire of g.
func isControl(g Gate, q int) bool {
	for _, c := range g.Controls {
		if c == q {
			return true
		}
	}
	return q == g.Control && BaseType(g.Type) != "SWAP"
}

// targetCell returns the cell drawn on the target wire of g.
func targetCell(g Gate, up, down bool) cellInfo {
	switch g.Type {
	case "CX", "CCX":
		return symbolCell("⊕", up, down)
	case "CZ":
		return symbolCell("●", up, down)
	case "SWAP", "CSWAP":
		return symbolCell("×", up, down)
	}
	return boxCell(g.Name(), up, down)
}

// grid lays the circuit out as [layer][row] cells. Rows are the qubits
// followed by one row per classical register.
func (c *Circuit) grid() [][]cellInfo {
	n := c.NumQubits()
	rows := n + len(c.CRegs)
	layers := c.Layers()
	depth := 0
	for _, l := range layers {
		depth = max(depth, l+1)
	}
	grid := make([][]cellInfo, depth)
	for i := range grid {
		grid[i] = make([]cellInfo, rows)
	}

	for i, g := range c.Gates {
		col := grid[layers[i]]
		if g.Type == "BARRIER" {
			for _, q := range g.Wires(n) {
				col[q] = cellInfo{top: "░", mid: "░", bot: "░", kind: styleBarrier, set: true}
			}
			continue
		}

		wires := g.Wires(n)
		lo, hi := wires[0], wires[0]
		on := map[int]bool{}
		for _, q := range wires {
			lo, hi = min(lo, q), max(hi, q)
			on[q] = true
		}
		for q := lo; q <= hi; q++ {
			up, down := q > lo, q < hi
			switch {
			case !on[q]:
				col[q] = cellInfo{top: "│", mid: "┼", bot: "│", set: true}
			case isControl(g, q):
				col[q] = symbolCell("●", up, down)
			case lo != hi:
				col[q] = targetCell(g, up, down)
			default:
				col[q] = boxCell(g.Name(), up, down)
			}
		}

		bit := g.Cbit
		if g.Type != "MEASURE" {
			bit = g.Condition
		}
		if bit < 0 {
			continue
		}
		col[hi].dropClassical()
		for q := hi + 1; q < n; q++ {
			col[q] = cellInfo{top: "║", mid: "╫", bot: "║", kind: styleConnector, set: true}
		}
		reg, ri := c.CbitRegister(bit)
		for r := 0; r < ri; r++ {
			col[n+r] = cellInfo{top: "║", mid: "╬", bot: "║", kind: styleConnector, set: true}
		}
		_, off, _ := c.CReg(reg.Name)
		land := cellInfo{top: "║", mid: "╩", bot: strconv.Itoa(bit - off), kind: styleConnector, set: true}
		if g.Type != "MEASURE" {
			land.mid, land.bot = "■", "="+strconv.Itoa(bit-off)
			if reg.Size == 1 {
				land.bot = "=1"
			}
		}
		col[n+ri] = land
	}
	return grid
}

// Draw renders the circuit as text, one column per layer.
func (c *Circuit) Draw() string {
	return c.DrawStyled(PlainStyles())
}

// DrawStyled renders the circuit with the given styles.
func (c *Circuit) DrawStyled(st Styles) string {
	n := c.NumQubits()
	grid := c.grid()

	labels := make([]string, 0, n+len(c.CRegs))
	for q := 0; q < n; q++ {
		labels = append(labels, c.QubitLabel(q)+": ")
	}
	for _, r := range c.CRegs {
		labels = append(labels, fmt.Sprintf("%s: %d/", r.Name, r.Size))
	}
	labelW := 0
	for _, l := range labels {
		labelW = max(labelW, lipgloss.Width(l))
	}

	widths := make([]int, len(grid))
	for i, col := range grid {
		w := 1
		for _, info := range col {
			if info.set {
				w = max(w, lipgloss.Width(info.top), lipgloss.Width(info.mid), lipgloss.Width(info.bot))
			}
		}
		if w%2 == 0 {
			w++
		}
		widths[i] = w + 2
	}

	var sb strings.Builder
	for row, label := range labels {
		classical := row >= n
		fill, labelKind := "─", styleLabel
		if classical {
			fill, labelKind = "═", styleCbitLabel
		}
		pad := strings.Repeat(" ", labelW)
		top := pad
		mid := st.render(labelKind, fmt.Sprintf("%*s", labelW, label))
		bot := pad
		for i, col := range grid {
			w := widths[i]
			info := col[row]
			if !info.set {
				top += strings.Repeat(" ", w)
				mid += wire(st, fill, w, classical)
				bot += strings.Repeat(" ", w)
				continue
			}
			top += centre(st, info.kind, info.top, " ", w, false)
			mid += centre(st, info.kind, info.mid, fill, w, classical)
			bot += centre(st, info.kind, info.bot, " ", w, false)
		}
		mid += wire(st, fill, 1, classical)
		for _, line := range []string{top, mid, bot} {
			sb.WriteString(strings.TrimRight(line, " "))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func wire(st Styles, fill string, w int, classical bool) string {
	s := strings.Repeat(fill, w)
	if classical {
		return st.render(styleCbitWire, s)
	}
	return s
}

func centre(st Styles, kind styleKind, piece, fill string, w int, classical bool) string {
	pw := lipgloss.Width(piece)
	left := (w - pw) / 2
	right := w - pw - left
	if fill == " " {
		return strings.Repeat(" ", left) + st.render(kind, piece) + strings.Repeat(" ", right)
	}
	return wire(st, fill, left, classical) + st.render(kind, piece) + wire(st, fill, right, classical)
}
