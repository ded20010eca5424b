package tui

import (
	"fmt"
	"math"
	"strings"

	"qdemos/internal/demos"
)

// slider is one bounded numeric form field.
type slider struct {
	label  string
	min    float64
	max    float64
	step   float64
	value  float64
	format string
}

func (s *slider) set(v float64) {
	s.value = math.Max(s.min, math.Min(s.max, v))
	// keep float steps from drifting off the grid
	s.value = math.Round(s.value/s.step) * s.step
}

func (s *slider) inc() { s.set(s.value + s.step) }
func (s *slider) dec() { s.set(s.value - s.step) }

func (s slider) String() string {
	return fmt.Sprintf(s.format, s.value)
}

// bar draws the slider position in width cells.
func (s slider) bar(width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(math.Round((s.value - s.min) / (s.max - s.min) * float64(width)))
	filled = max(0, min(width, filled))
	return barFillStyle.Render(strings.Repeat("━", filled)) +
		dimStyle.Render(strings.Repeat("─", width-filled))
}

const (
	fieldQubits = iota
	fieldDepth
	fieldPHad
	fieldPT
	fieldSubmit
	numFields
)

// form holds the four pipeline parameters and the focused field.
type form struct {
	sliders [fieldSubmit]slider
	focus   int
}

func newForm(p demos.ZXParams) form {
	f := form{sliders: [fieldSubmit]slider{
		fieldQubits: {label: "Qubits", min: 2, max: 16, step: 1, format: "%.0f"},
		fieldDepth:  {label: "Depth", min: 5, max: 100, step: 1, format: "%.0f"},
		fieldPHad:   {label: "prob(HAD)", min: 0, max: 0.5, step: 0.05, format: "%.2f"},
		fieldPT:     {label: "prob(T)", min: 0, max: 0.5, step: 0.05, format: "%.2f"},
	}}
	f.sliders[fieldQubits].set(float64(p.Qubits))
	f.sliders[fieldDepth].set(float64(p.Depth))
	f.sliders[fieldPHad].set(p.PHad)
	f.sliders[fieldPT].set(p.PT)
	return f
}

func (f form) params() demos.ZXParams {
	return demos.ZXParams{
		Qubits: int(f.sliders[fieldQubits].value),
		Depth:  int(f.sliders[fieldDepth].value),
		PHad:   f.sliders[fieldPHad].value,
		PT:     f.sliders[fieldPT].value,
	}
}

func (f *form) next() { f.focus = (f.focus + 1) % numFields }
func (f *form) prev() { f.focus = (f.focus + numFields - 1) % numFields }

// adjust moves the focused slider by one step; it is a no-op on the
// submit button.
func (f *form) adjust(up bool) {
	if f.focus >= fieldSubmit {
		return
	}
	if up {
		f.sliders[f.focus].inc()
	} else {
		f.sliders[f.focus].dec()
	}
}

func (f form) view(computing bool, spin string) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("ZX reduce & extract"))
	sb.WriteString("\n\n")

	barW := formW - 6
	for i, s := range f.sliders {
		label := fmt.Sprintf("%-10s %6s", s.label, s.String())
		if i == f.focus {
			sb.WriteString(selectedStyle.Render("▸ " + label))
		} else {
			sb.WriteString(normalStyle.Render("  " + label))
		}
		sb.WriteString("\n  ")
		sb.WriteString(s.bar(barW))
		sb.WriteString("\n\n")
	}

	button := "[ Submit ]"
	switch {
	case computing:
		sb.WriteString(spin + " " + dimStyle.Render("computing..."))
	case f.focus == fieldSubmit:
		sb.WriteString(selectedStyle.Render("▸ " + button))
	default:
		sb.WriteString(normalStyle.Render("  " + button))
	}
	return sb.String()
}
