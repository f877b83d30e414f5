package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"aerodo/internal/assets"
	"aerodo/internal/storage"
)

const (
	detailsWidth = 44
	cardHeight   = 4
	createdShown = "2006-01-02 15:04:05"
)

func (m Model) View() string {
	if m.dialog != nil {
		return m.renderDialog()
	}

	header := m.renderHeader()
	leftWidth := max(40, m.width-detailsWidth-6)
	form := m.renderForm(leftWidth)
	listHeight := m.height - lipgloss.Height(header) - lipgloss.Height(form) - 4
	left := lipgloss.NewStyle().
		Background(m.palette.Panel).
		Width(leftWidth).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, form, m.renderCards(leftWidth-2, listHeight)))
	right := m.renderDetails()

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	footer := lipgloss.NewStyle().Foreground(m.palette.Muted).Render(m.status + "\n" + m.renderHelp())
	if m.exporting {
		footer = m.renderExportPrompt()
	}

	return lipgloss.NewStyle().
		Background(m.palette.WindowBG).
		Foreground(m.palette.Text).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, body, footer))
}

func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(m.palette.Text).Render("To-Do")
	search := m.zone(focusSearch, "Search") + " " + m.search.View()
	order := "Order: " + m.order.String()
	mode := "[ ] Dark mode"
	if m.dark {
		mode = "[x] Dark mode"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "   ", search, "   ", order, "   ", mode, "   ", "Export CSV") + "\n"
}

func (m Model) renderForm(width int) string {
	var b strings.Builder
	b.WriteString(m.zone(focusName, "Task name   ") + " " + m.name.View() + "\n")
	b.WriteString(m.zone(focusDesc, "Description ") + " " + m.desc.View() + "\n")
	b.WriteString(m.zone(focusDue, "Due date    ") + " " + m.due.View() + "\n")
	b.WriteString(m.zone(focusPriority, "Priority    ") + " < " + m.priority.label + " >   [enter] Add Task\n")
	b.WriteString(lipgloss.NewStyle().Foreground(m.palette.Hover).Render(strings.Repeat("─", max(0, width-2))))
	return b.String()
}

// renderCards draws the cards that fit in height lines, keeping the cursor
// row visible.
func (m Model) renderCards(width, height int) string {
	if len(m.tasks) == 0 {
		return lipgloss.NewStyle().Foreground(m.palette.Muted).Render("No tasks yet. Fill in the form and press enter.")
	}
	fit := max(1, height/cardHeight)
	start := 0
	if m.cursor >= fit {
		start = m.cursor - fit + 1
	}
	end := min(len(m.tasks), start+fit)

	cards := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		cards = append(cards, m.renderCard(m.tasks[i], i == m.cursor && m.focus == focusList, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m Model) renderCard(t storage.Task, hovered bool, width int) string {
	bg := m.cardBackground(t, hovered)
	base := lipgloss.NewStyle().Background(bg)

	title := t.Name
	if t.Completed {
		title = "[COMPLETED] " + title
	}
	p := NormalizePriority(t.Priority)
	meta := fmt.Sprintf("Priority: %d (%s)   •   Created: %s", p, priorityName(p), formatCreated(t))
	if t.DueDate != "" {
		meta += "   •   " + assets.Label(m.icons.Calendar, "Due: "+t.DueDate)
	}
	toggle := "Mark Done"
	if t.Completed {
		toggle = "Mark Undone"
	}
	k := m.cfg.Keys
	actions := fmt.Sprintf("[%s] View   [%s] %s   [%s] %s",
		keyName(k.View), keyName(k.Toggle), assets.Label(m.icons.Check, toggle), keyName(k.Delete), assets.Label(m.icons.Trash, "Delete"))

	lines := []string{
		base.Bold(true).Foreground(m.palette.Text).Render(title),
		base.Foreground(m.palette.Muted).Render(meta),
		base.Foreground(m.palette.Muted).Render(actions),
	}
	return base.
		Width(width).
		Padding(0, 1).
		MarginBottom(1).
		MarginBackground(m.palette.Panel).
		Render(strings.Join(lines, "\n"))
}

func (m Model) cardBackground(t storage.Task, hovered bool) lipgloss.Color {
	switch {
	case m.pulse.lit(t.ID):
		return m.palette.Pulse
	case hovered:
		return m.palette.Hover
	}
	return m.palette.CardColor(t.Priority)
}

func (m Model) renderDetails() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Task details") + "\n\n")
	b.WriteString(m.zone(focusDetailName, "Name") + "\n" + m.detailName.View() + "\n\n")
	if m.selected == nil {
		b.WriteString(lipgloss.NewStyle().Foreground(m.palette.Muted).Render("Description (select a task)") + "\n")
	} else {
		b.WriteString(m.zone(focusDetailDesc, "Description") + "\n")
	}
	b.WriteString(m.detailDesc.View() + "\n\n")
	b.WriteString(m.zone(focusDetailDue, assets.Label(m.icons.Calendar, "Due date")) + "\n" + m.detailDue.View() + "\n\n")
	b.WriteString(m.zone(focusDetailPriority, "Priority") + "  < " + m.detailPriority.label + " >\n\n")

	k := m.cfg.Keys
	save := fmt.Sprintf("[%s] Save", keyName(k.Save))
	del := lipgloss.NewStyle().Foreground(m.palette.Danger).Render(fmt.Sprintf("[%s] %s", keyName(k.Remove), assets.Label(m.icons.Trash, "Delete")))
	b.WriteString(save + "   " + del + "\n\n")

	meta := ""
	if m.selected != nil {
		done := "No"
		if m.selected.Completed {
			done = "Yes"
		}
		meta = fmt.Sprintf("Created: %s   •   Completed: %s", formatCreated(*m.selected), done)
	}
	b.WriteString(lipgloss.NewStyle().Foreground(m.palette.Muted).Render(meta))

	return lipgloss.NewStyle().
		Background(m.palette.Glass).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.palette.CardStroke).
		Width(detailsWidth).
		Padding(0, 1).
		Render(b.String())
}

func (m Model) renderDialog() string {
	d := *m.dialog
	accent := m.palette.Text
	switch d.kind {
	case dialogWarning:
		accent = m.palette.CardColor(2)
	case dialogError:
		accent = m.palette.Danger
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render(d.title),
		"",
		d.message,
		"",
		lipgloss.NewStyle().Foreground(m.palette.Muted).Render(d.hint()),
	)
	box := lipgloss.NewStyle().
		Background(m.palette.Glass).
		Foreground(m.palette.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2).
		Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceBackground(m.palette.WindowBG))
}

func (m Model) renderExportPrompt() string {
	return "Save CSV as: " + m.exportPath.View() + "\n" +
		lipgloss.NewStyle().Foreground(m.palette.Muted).Render("enter export • esc cancel")
}

func (m Model) renderHelp() string {
	k := m.cfg.Keys
	return fmt.Sprintf("%s/%s focus • %s order • %s theme • %s export • %s refresh • %s quit",
		keyName(k.NextFocus), keyName(k.PrevFocus), k.Order, k.Theme, k.Export, k.Refresh, k.Quit)
}

// zone renders a field label, marked when that field has focus.
func (m Model) zone(f focus, label string) string {
	style := lipgloss.NewStyle().Foreground(m.palette.Text)
	if m.focus == f {
		return style.Bold(true).Render("▸ " + label)
	}
	return style.Render("  " + label)
}

func formatCreated(t storage.Task) string {
	if t.CreatedAt.IsZero() {
		return "unknown"
	}
	return t.CreatedAt.Format(createdShown)
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}
