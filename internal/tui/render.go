package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"qdemos/internal/circuit"
	"qdemos/internal/demos"
)

const panStep = 10 // columns moved by one horizontal scroll

// Panel headings, in display order.
const (
	headOriginal  = "Original circuit"
	headGraph     = "Original circuit's graph"
	headReduced   = "Reduced graph"
	headExtracted = "Extracted circuit"
)

// renderResultPanel renders the right-hand panel holding the viewport.
func (m Model) renderResultPanel(width, height int) string {
	var sb strings.Builder

	title := "Result"
	if m.generation > 0 {
		title = fmt.Sprintf("Result #%d", m.generation)
	}
	if m.computing {
		title += " " + m.spinner.View()
	}
	sb.WriteString(titleStyle.Render(title))
	if m.xOffset > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  col %d", m.xOffset)))
	}
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())

	return resultStyle.Width(width).Height(height).Render(sb.String())
}

// renderReport lays out every stage of a run one above the other.
func renderReport(r *demos.ZXReport) string {
	if r == nil {
		return dimStyle.Render("Set the parameters and press enter to run the pipeline.")
	}
	st := circuit.DefaultStyles()

	var sb strings.Builder
	section := func(head, body, stats string) {
		sb.WriteString(sectionStyle.Render("== " + head))
		sb.WriteString("\n")
		sb.WriteString(body)
		sb.WriteString("\n")
		if stats != "" {
			sb.WriteString(dimStyle.Render(strings.TrimRight(stats, "\n")))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	section(headOriginal, r.OriginalBasic.DrawStyled(st), r.Original.Stats())
	section(headGraph, r.Graph.String(), r.Graph.Stats())
	section(headReduced, r.Reduced.String(), r.Reduced.Stats())
	section(headExtracted, r.Extracted.DrawStyled(st), r.Extracted.Stats())

	switch {
	case !r.Verified:
		sb.WriteString(dimStyle.Render(fmt.Sprintf(
			"Unitaries not compared above %d qubits.", demos.MaxVerifyQubits)))
	case r.Equivalent:
		sb.WriteString(okStyle.Render("Extracted circuit matches the original."))
	default:
		sb.WriteString(failStyle.Render("Extracted circuit does NOT match the original."))
	}
	return sb.String()
}

// cutColumns keeps visible columns [x, x+width) of every line.
func cutColumns(s string, x, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = ansi.Cut(l, x, x+width)
	}
	return strings.Join(lines, "\n")
}

func renderError(err error, width int) string {
	msg := lipgloss.NewStyle().Width(max(width-4, 20)).Render(err.Error())
	return errorBoxStyle.Render(titleStyle.Render("Pipeline failed") + "\n\n" + msg)
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at
// position (x, y). Escape sequences in either string are preserved.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces the visible columns of bgLine starting at x with
// overlay, padding bgLine when it is shorter than x.
func spliceLineAt(bgLine, overlay string, x int) string {
	bgW := ansi.StringWidth(bgLine)
	if bgW < x {
		bgLine += strings.Repeat(" ", x-bgW)
		bgW = x
	}
	prefix := ansi.Truncate(bgLine, x, "")
	end := x + ansi.StringWidth(overlay)
	suffix := ""
	if end < bgW {
		suffix = ansi.Cut(bgLine, end, bgW)
	}
	return prefix + overlay + suffix
}
