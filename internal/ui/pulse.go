package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	pulseSteps    = 6
	pulseInterval = 80 * time.Millisecond
)

// pulseMsg is one scheduled step of a highlight sequence. gen ties it to the
// sequence that scheduled it.
type pulseMsg struct {
	gen  int
	step int
}

// pulse flashes one card for pulseSteps ticks. Even steps show the pulse
// colour, odd steps the base colour; after the last step the card settles on
// its base colour. Bumping gen drops every tick already in flight.
type pulse struct {
	gen    int
	taskID int
	step   int
	active bool
}

func (p pulse) start(taskID int) (pulse, tea.Cmd) {
	p.gen++
	p.taskID = taskID
	p.step = 0
	p.active = true
	return p, p.schedule(1)
}

func (p pulse) cancel() pulse {
	p.gen++
	p.active = false
	return p
}

func (p pulse) advance(msg pulseMsg) (pulse, tea.Cmd) {
	if !p.active || msg.gen != p.gen {
		return p, nil
	}
	p.step = msg.step
	if p.step >= pulseSteps {
		p.active = false
		return p, nil
	}
	return p, p.schedule(p.step + 1)
}

func (p pulse) schedule(step int) tea.Cmd {
	gen := p.gen
	return tea.Tick(pulseInterval, func(time.Time) tea.Msg {
		return pulseMsg{gen: gen, step: step}
	})
}

// lit reports whether the card for taskID currently shows the pulse colour.
func (p pulse) lit(taskID int) bool {
	return p.active && p.taskID == taskID && p.step%2 == 0
}
