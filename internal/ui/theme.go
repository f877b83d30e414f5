package ui

import "github.com/charmbracelet/lipgloss"

// Palette is the set of colours applied to the whole screen for one theme.
type Palette struct {
	WindowBG   lipgloss.Color
	Glass      lipgloss.Color
	Panel      lipgloss.Color
	Card       lipgloss.Color
	CardStroke lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Hover      lipgloss.Color
	Pulse      lipgloss.Color
	Danger     lipgloss.Color
	Priority   map[int]lipgloss.Color
}

var LightPalette = Palette{
	WindowBG:   "#eaf2ff",
	Glass:      "#f7fbff",
	Panel:      "#f5f9ff",
	Card:       "#e1edff",
	CardStroke: "#ffffff",
	Text:       "#06234a",
	Muted:      "#58606b",
	Hover:      "#c7ddff",
	Pulse:      "#a8d1ff",
	Danger:     "#d9534f",
	Priority: map[int]lipgloss.Color{
		1: "#fff1f0",
		2: "#fff8e6",
		3: "#effaf1",
	},
}

var DarkPalette = Palette{
	WindowBG:   "#07101c",
	Glass:      "#071826",
	Panel:      "#0f1724",
	Card:       "#102230",
	CardStroke: "#0b1220",
	Text:       "#e6eef9",
	Muted:      "#9aa4b2",
	Hover:      "#163144",
	Pulse:      "#163144",
	Danger:     "#b0302a",
	Priority: map[int]lipgloss.Color{
		1: "#4c1111",
		2: "#664900",
		3: "#0f5132",
	},
}

func paletteFor(dark bool) Palette {
	if dark {
		return DarkPalette
	}
	return LightPalette
}

// NormalizePriority maps anything outside 1..3 to Medium.
func NormalizePriority(p int) int {
	if p < 1 || p > 3 {
		return 2
	}
	return p
}

// CardColor is the background of a task card with the given priority.
func (p Palette) CardColor(priority int) lipgloss.Color {
	if c, ok := p.Priority[NormalizePriority(priority)]; ok {
		return c
	}
	return p.Card
}
