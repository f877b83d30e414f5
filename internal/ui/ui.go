package ui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"aerodo/internal/assets"
	"aerodo/internal/config"
	"aerodo/internal/storage"
)

// Store is the persistence surface the screen drives.
type Store interface {
	AddTask(name, description, dueDate string, priority int) error
	ListTasks(filter string, order storage.Order) ([]storage.Task, error)
	GetTask(id int) (storage.Task, error)
	UpdateTask(id int, name, description, dueDate string, priority int) error
	DeleteTask(id int) error
	ToggleDone(id int) error
	ExportCSV(path string) (string, error)
}

const defaultExportName = "tasks.csv"

type Model struct {
	store      Store
	cfg        config.Config
	configPath string
	logger     *zap.Logger
	icons      assets.Icons

	tasks   []storage.Task
	cursor  int
	order   storage.Order
	dark    bool
	palette Palette
	focus   focus

	search   textinput.Model
	name     textinput.Model
	desc     textinput.Model
	due      textinput.Model
	priority prioritySelect

	selected       *storage.Task
	detailName     textinput.Model
	detailDesc     textarea.Model
	detailDue      textinput.Model
	detailPriority prioritySelect

	exporting  bool
	exportPath textinput.Model

	dialog *dialog
	pulse  pulse
	status string
	width  int
	height int
}

func Run(store Store, cfg config.Config, configPath string, firstLaunch bool, logger *zap.Logger) error {
	m, err := New(store, cfg, configPath, logger)
	if err != nil {
		return err
	}
	if firstLaunch {
		m.status = fmt.Sprintf("Created %s with default settings.", configPath)
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

// New builds the screen and loads the first page of tasks.
func New(store Store, cfg config.Config, configPath string, logger *zap.Logger) (Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	order, ok := storage.ParseOrder(cfg.DefaultOrder)
	if !ok && cfg.DefaultOrder != "" {
		logger.Warn("unknown default order, using fallback",
			zap.String("order", cfg.DefaultOrder), zap.Stringer("fallback", order))
	}

	m := Model{
		store:          store,
		cfg:            cfg,
		configPath:     configPath,
		logger:         logger,
		icons:          assets.LoadIcons(cfg.AssetsDir),
		order:          order,
		dark:           cfg.Dark(),
		search:         newInput("Search tasks...", 40),
		name:           newInput("Task name", 36),
		desc:           newInput("Description", 36),
		due:            newInput("YYYY-MM-DD", 16),
		priority:       newPrioritySelect(),
		detailName:     newInput("Task name", 36),
		detailDesc:     newDescriptionArea(),
		detailDue:      newInput("Due date (YYYY-MM-DD)", 24),
		detailPriority: newPrioritySelect(),
		exportPath:     newInput(defaultExportName, 48),
		status:         "tab to move between fields • enter on a card to view it",
		width:          110,
		height:         32,
	}
	m.applyTheme()
	m, _ = m.setFocus(focusName)

	var err error
	if m, err = m.reload(); err != nil {
		return m, err
	}
	return m, nil
}

func newInput(placeholder string, width int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Width = width
	ti.Prompt = ""
	return ti
}

func newDescriptionArea() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Description"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(36)
	ta.SetHeight(6)
	return ta
}

func (m *Model) applyTheme() {
	m.palette = paletteFor(m.dark)
	text := lipgloss.NewStyle().Foreground(m.palette.Text)
	muted := lipgloss.NewStyle().Foreground(m.palette.Muted)
	for _, ti := range []*textinput.Model{&m.search, &m.name, &m.desc, &m.due, &m.detailName, &m.detailDue, &m.exportPath} {
		ti.TextStyle = text
		ti.PlaceholderStyle = muted
	}
	m.detailDesc.FocusedStyle.Text = text
	m.detailDesc.BlurredStyle.Text = muted
	m.detailDesc.FocusedStyle.Placeholder = muted
	m.detailDesc.BlurredStyle.Placeholder = muted
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.dialog != nil {
			return m.updateDialog(msg.String())
		}
		if m.exporting {
			return m.updateExport(msg)
		}
		return m.handleKey(msg)
	case pulseMsg:
		var cmd tea.Cmd
		m.pulse, cmd = m.pulse.advance(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(20, msg.Width/3)
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.pulse = m.pulse.cancel()
	return m, tea.Quit
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch msg.String() {
	case k.Quit:
		return m.quit()
	case k.NextFocus:
		return m.setFocus(m.nextFocus(1))
	case k.PrevFocus:
		return m.setFocus(m.nextFocus(-1))
	case k.Theme:
		return m.toggleTheme(), nil
	case k.Order:
		m.order = m.order.Next()
		m.status = "Order: " + m.order.String()
		return m.reloadOrFail("reload"), nil
	case k.Refresh:
		return m.reloadOrFail("reload"), nil
	case k.Export:
		m.exporting = true
		m.exportPath.SetValue(defaultExportName)
		m.exportPath.CursorEnd()
		return m, m.exportPath.Focus()
	case k.Save:
		return m.saveSelected()
	case k.Remove:
		return m.deleteSelected(), nil
	}

	switch {
	case m.focus == focusSearch:
		return m.updateSearch(msg)
	case m.focus == focusList:
		return m.updateList(msg.String())
	case m.focus.inForm():
		return m.updateForm(msg)
	case m.focus.inDetails():
		return m.updateDetails(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before || msg.String() == m.cfg.Keys.Confirm {
		m = m.reloadOrFail("search")
	}
	return m, cmd
}

func (m Model) updateList(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case k.Down, "j":
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case k.Up, "k":
		m.cursor = clampCursor(m.cursor-1, len(m.tasks))
	case k.View:
		if t, ok := m.current(); ok {
			return m.dispatch(rowAction{kind: actionView, taskID: t.ID})
		}
	case k.Toggle:
		if t, ok := m.current(); ok {
			return m.dispatch(rowAction{kind: actionToggle, taskID: t.ID})
		}
	case k.Delete:
		if t, ok := m.current(); ok {
			return m.dispatch(rowAction{kind: actionDelete, taskID: t.ID})
		}
	}
	return m, nil
}

func (m Model) current() (storage.Task, bool) {
	if len(m.tasks) == 0 {
		return storage.Task{}, false
	}
	return m.tasks[clampCursor(m.cursor, len(m.tasks))], true
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == m.cfg.Keys.Confirm {
		return m.addFromForm(), nil
	}
	var cmd tea.Cmd
	switch m.focus {
	case focusName:
		m.name, cmd = m.name.Update(msg)
	case focusDesc:
		m.desc, cmd = m.desc.Update(msg)
	case focusDue:
		m.due, cmd = m.due.Update(msg)
	case focusPriority:
		m.priority = shiftPriority(m.priority, key)
	}
	return m, cmd
}

func (m Model) updateDetails(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == m.cfg.Keys.Confirm && m.focus != focusDetailDesc {
		return m.saveSelected()
	}
	var cmd tea.Cmd
	switch m.focus {
	case focusDetailName:
		m.detailName, cmd = m.detailName.Update(msg)
	case focusDetailDesc:
		m.detailDesc, cmd = m.detailDesc.Update(msg)
	case focusDetailDue:
		m.detailDue, cmd = m.detailDue.Update(msg)
	case focusDetailPriority:
		m.detailPriority = shiftPriority(m.detailPriority, key)
	}
	return m, cmd
}

func shiftPriority(p prioritySelect, key string) prioritySelect {
	switch key {
	case "left", "-", "h":
		return p.shift(-1)
	case "right", "+", "l":
		return p.shift(1)
	}
	return p
}

func (m Model) updateDialog(key string) (tea.Model, tea.Cmd) {
	d := *m.dialog
	if d.kind == dialogConfirm {
		switch key {
		case "y", "Y":
			m.dialog = nil
			return m.dispatch(d.onYes)
		case "n", "N", m.cfg.Keys.Cancel:
			m.dialog = nil
			m.status = "Delete cancelled"
		}
		return m, nil
	}
	switch key {
	case m.cfg.Keys.Confirm, m.cfg.Keys.Cancel, " ":
		m.dialog = nil
	}
	return m, nil
}

func (m Model) updateExport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.cfg.Keys.Cancel:
		m.exporting = false
		m.exportPath.Blur()
		m.status = "Export cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		m.exporting = false
		m.exportPath.Blur()
		return m.export(strings.TrimSpace(m.exportPath.Value())), nil
	}
	var cmd tea.Cmd
	m.exportPath, cmd = m.exportPath.Update(msg)
	return m, cmd
}

// dispatch runs a card command against the task it was bound to.
func (m Model) dispatch(a rowAction) (tea.Model, tea.Cmd) {
	switch a.kind {
	case actionView:
		return m.selectTask(a.taskID)
	case actionToggle:
		if err := m.store.ToggleDone(a.taskID); err != nil {
			return m.fail("toggle", err), nil
		}
		m.logger.Info("task toggled", zap.Int("id", a.taskID))
		if m.isSelected(a.taskID) {
			m = m.clearDetails()
		}
		m.status = "Toggled task"
		return m.reloadOrFail("reload"), nil
	case actionDelete:
		m.dialog = confirmDialog("Delete this task?", rowAction{kind: actionConfirmDelete, taskID: a.taskID})
		return m, nil
	case actionConfirmDelete:
		if err := m.store.DeleteTask(a.taskID); err != nil {
			return m.fail("delete", err), nil
		}
		m.logger.Info("task deleted", zap.Int("id", a.taskID))
		if m.isSelected(a.taskID) {
			m = m.clearDetails()
		}
		m.status = "Deleted task"
		return m.reloadOrFail("reload"), nil
	}
	return m, nil
}

func (m Model) isSelected(id int) bool {
	return m.selected != nil && m.selected.ID == id
}

func (m Model) selectTask(id int) (tea.Model, tea.Cmd) {
	t, err := m.store.GetTask(id)
	if errors.Is(err, storage.ErrTaskNotFound) {
		m = m.clearDetails()
		return m.reloadOrFail("reload"), nil
	}
	if err != nil {
		return m.fail("load task", err), nil
	}
	m.selected = &t
	m.detailName.SetValue(t.Name)
	m.detailDesc.SetValue(t.Description)
	m.detailDue.SetValue(t.DueDate)
	m.detailPriority = prioritySelect{label: priorityLabel(t.Priority)}
	m.status = fmt.Sprintf("Viewing task #%d", t.ID)

	var cmd tea.Cmd
	m.pulse, cmd = m.pulse.start(id)
	return m, cmd
}

func (m Model) clearDetails() Model {
	m.selected = nil
	m.detailName.SetValue("")
	m.detailDesc.Reset()
	m.detailDue.SetValue("")
	m.detailPriority = newPrioritySelect()
	m.pulse = m.pulse.cancel()
	if m.focus == focusDetailDesc {
		m, _ = m.setFocus(focusList)
	}
	return m
}

func (m Model) addFromForm() Model {
	name := strings.TrimSpace(m.name.Value())
	if name == "" {
		m.dialog = warningDialog("Validation", "Task name is required.")
		return m
	}
	desc := strings.TrimSpace(m.desc.Value())
	due := strings.TrimSpace(m.due.Value())
	priority := m.priority.value()
	if err := m.store.AddTask(name, desc, due, priority); err != nil {
		return m.fail("add task", err)
	}
	m.logger.Info("task added", zap.String("name", name), zap.Int("priority", priority))

	m.name.SetValue("")
	m.desc.SetValue("")
	m.due.SetValue("")
	m.priority = newPrioritySelect()
	m.status = "Added task"
	return m.reloadOrFail("reload")
}

func (m Model) saveSelected() (tea.Model, tea.Cmd) {
	if m.selected == nil {
		m.dialog = infoDialog("Info", "Select a task first or use Add Task on the left to create.")
		return m, nil
	}
	name := strings.TrimSpace(m.detailName.Value())
	if name == "" {
		m.dialog = warningDialog("Validation", "Task name is required.")
		return m, nil
	}
	id := m.selected.ID
	if _, err := m.store.GetTask(id); errors.Is(err, storage.ErrTaskNotFound) {
		m = m.clearDetails()
		return m.reloadOrFail("reload"), nil
	} else if err != nil {
		return m.fail("save", err), nil
	}

	desc := strings.TrimSpace(m.detailDesc.Value())
	due := strings.TrimSpace(m.detailDue.Value())
	if err := m.store.UpdateTask(id, name, desc, due, m.detailPriority.value()); err != nil {
		return m.fail("save", err), nil
	}
	m.logger.Info("task updated", zap.Int("id", id))
	m.dialog = infoDialog("Saved", "Task updated.")
	m = m.clearDetails()
	return m.reloadOrFail("reload"), nil
}

func (m Model) deleteSelected() Model {
	if m.selected == nil {
		m.dialog = infoDialog("Info", "No task selected.")
		return m
	}
	m.dialog = confirmDialog("Delete selected task?", rowAction{kind: actionConfirmDelete, taskID: m.selected.ID})
	return m
}

func (m Model) toggleTheme() Model {
	m.dark = !m.dark
	m.applyTheme()
	if m.dark {
		m.cfg.Theme = config.ThemeDark
	} else {
		m.cfg.Theme = config.ThemeLight
	}
	m.logger.Info("theme changed", zap.String("theme", m.cfg.Theme))
	if m.configPath != "" {
		if err := config.Save(m.configPath, m.cfg); err != nil {
			m.logger.Warn("failed to persist theme", zap.String("path", m.configPath), zap.Error(err))
		}
	}
	return m.reloadOrFail("reload")
}

func (m Model) export(path string) Model {
	if path == "" {
		m.status = "Export cancelled"
		return m
	}
	if filepath.Ext(path) == "" {
		path += ".csv"
	}
	msg, err := m.store.ExportCSV(path)
	if err != nil {
		m.logger.Error("export failed", zap.String("path", path), zap.Error(err))
		m.dialog = errorDialog("Export Error", err.Error())
		return m
	}
	m.logger.Info("export finished", zap.String("path", path))
	m.dialog = infoDialog("Export", msg)
	return m
}

// reload re-runs the list query from scratch. A selection whose row is gone
// is dropped.
func (m Model) reload() (Model, error) {
	tasks, err := m.store.ListTasks(strings.TrimSpace(m.search.Value()), m.order)
	if err != nil {
		return m, err
	}
	m.tasks = tasks
	m.cursor = clampCursor(m.cursor, len(m.tasks))

	if m.selected == nil {
		return m, nil
	}
	t, err := m.store.GetTask(m.selected.ID)
	if errors.Is(err, storage.ErrTaskNotFound) {
		return m.clearDetails(), nil
	}
	if err != nil {
		return m, err
	}
	m.selected = &t
	return m, nil
}

func (m Model) reloadOrFail(action string) Model {
	next, err := m.reload()
	if err != nil {
		return m.fail(action, err)
	}
	return next
}

func (m Model) fail(action string, err error) Model {
	m.logger.Error("store call failed", zap.String("action", action), zap.Error(err))
	m.dialog = errorDialog("Error", fmt.Sprintf("%s failed: %v", action, err))
	return m
}

func (m Model) nextFocus(delta int) focus {
	f := m.focus
	for i := 0; i < int(focusCount); i++ {
		f = focus(wrapIndex(int(f)+delta, int(focusCount)))
		if f == focusDetailDesc && m.selected == nil {
			continue
		}
		return f
	}
	return m.focus
}

func (m Model) setFocus(f focus) (Model, tea.Cmd) {
	m.search.Blur()
	m.name.Blur()
	m.desc.Blur()
	m.due.Blur()
	m.detailName.Blur()
	m.detailDesc.Blur()
	m.detailDue.Blur()
	m.focus = f

	switch f {
	case focusSearch:
		return m, m.search.Focus()
	case focusName:
		return m, m.name.Focus()
	case focusDesc:
		return m, m.desc.Focus()
	case focusDue:
		return m, m.due.Focus()
	case focusDetailName:
		return m, m.detailName.Focus()
	case focusDetailDesc:
		return m, m.detailDesc.Focus()
	case focusDetailDue:
		return m, m.detailDue.Focus()
	}
	return m, nil
}
