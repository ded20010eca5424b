package circuit

import "github.com/charmbracelet/lipgloss"

// Styles colours the parts of a circuit drawing.
type Styles struct {
	Gate      lipgloss.Style
	Label     lipgloss.Style
	CbitLabel lipgloss.Style
	CbitWire  lipgloss.Style
	Connector lipgloss.Style
	Barrier   lipgloss.Style

	plain bool
}

// PlainStyles draws without any terminal escapes.
func PlainStyles() Styles {
	return Styles{plain: true}
}

// DefaultStyles returns the colour scheme used by the terminal UI.
func DefaultStyles() Styles {
	return Styles{
		Gate: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#73daca")),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff")),
		CbitLabel: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68")),
		CbitWire: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89")),
		Connector: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68")).
			Bold(true),
		Barrier: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89")),
	}
}

type styleKind int

const (
	styleNone styleKind = iota
	styleGate
	styleLabel
	styleCbitLabel
	styleCbitWire
	styleConnector
	styleBarrier
)

func (s Styles) render(k styleKind, str string) string {
	if s.plain || str == "" {
		return str
	}
	switch k {
	case styleGate:
		return s.Gate.Render(str)
	case styleLabel:
		return s.Label.Render(str)
	case styleCbitLabel:
		return s.CbitLabel.Render(str)
	case styleCbitWire:
		return s.CbitWire.Render(str)
	case styleConnector:
		return s.Connector.Render(str)
	case styleBarrier:
		return s.Barrier.Render(str)
	}
	return str
}
