package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"aerodo/internal/config"
	"aerodo/internal/storage"
)

type fixture struct {
	store      *storage.Store
	configPath string
	dir        string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	s, err := storage.Open(filepath.Join(dir, "todo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return fixture{store: s, configPath: filepath.Join(dir, "config.toml"), dir: dir}
}

func (f fixture) model(t *testing.T, store Store) Model {
	t.Helper()
	cfg, err := config.LoadOrCreate(f.configPath)
	require.NoError(t, err)
	m, err := New(store, cfg, f.configPath, zap.NewNop())
	require.NoError(t, err)
	return m
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func text(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAddTaskFromForm(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, f.store)
	require.Equal(t, focusName, m.focus)

	m = press(t, m,
		text("Buy milk"),
		key(tea.KeyTab), text("semi-skimmed"),
		key(tea.KeyTab), text("2025-01-01"),
		key(tea.KeyTab), key(tea.KeyLeft),
		key(tea.KeyEnter),
	)

	require.Nil(t, m.dialog)
	require.Len(t, m.tasks, 1)
	got := m.tasks[0]
	require.Equal(t, "Buy milk", got.Name)
	require.Equal(t, "semi-skimmed", got.Description)
	require.Equal(t, "2025-01-01", got.DueDate)
	require.Equal(t, 1, got.Priority)
	require.False(t, got.Completed)

	require.Empty(t, m.name.Value())
	require.Empty(t, m.desc.Value())
	require.Empty(t, m.due.Value())
	require.Equal(t, defaultPriorityLabel, m.priority.label)
}

func TestAddTaskRejectsBlankName(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, f.store)

	m = press(t, m, text("   "), key(tea.KeyEnter))

	require.NotNil(t, m.dialog)
	require.Equal(t, dialogWarning, m.dialog.kind)
	require.Equal(t, "Task name is required.", m.dialog.message)
	tasks, err := f.store.ListTasks("", storage.DefaultOrder)
	require.NoError(t, err)
	require.Empty(t, tasks)

	m = press(t, m, key(tea.KeyEsc))
	require.Nil(t, m.dialog)
}

func TestDialogSwallowsKeys(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, f.store)
	m = press(t, m, key(tea.KeyEnter))
	require.NotNil(t, m.dialog)

	m = press(t, m, key(tea.KeyCtrlT), text("x"))
	require.False(t, m.dark)
	require.Empty(t, m.name.Value())
	require.NotNil(t, m.dialog)
}

func TestViewSelectsTaskAndPulses(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddTask("Call mom", "Sunday", "2025-02-02", 3))
	m := f.model(t, f.store)
	m, _ = m.setFocus(focusList)

	next, cmd := m.Update(key(tea.KeyEnter))
	m = next.(Model)
	require.NotNil(t, cmd)
	require.NotNil(t, m.selected)
	id := m.selected.ID
	require.Equal(t, "Call mom", m.detailName.Value())
	require.Equal(t, "Sunday", m.detailDesc.Value())
	require.Equal(t, "2025-02-02", m.detailDue.Value())
	require.Equal(t, "3 - Low", m.detailPriority.label)

	require.True(t, m.pulse.lit(id))
	gen := m.pulse.gen
	for step := 1; step < pulseSteps; step++ {
		m = press(t, m, pulseMsg{gen: gen, step: step})
		require.Equal(t, step%2 == 0, m.pulse.lit(id), "step %d", step)
	}
	m = press(t, m, pulseMsg{gen: gen, step: pulseSteps})
	require.False(t, m.pulse.active)
	require.False(t, m.pulse.lit(id))
	require.Equal(t, m.palette.CardColor(3), m.cardBackground(m.tasks[0], false))
}

func TestToggleSelectedTaskClearsSelection(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddTask("Laundry", "", "", 2))
	m := f.model(t, f.store)
	m, _ = m.setFocus(focusList)

	m = press(t, m, key(tea.KeyEnter))
	require.NotNil(t, m.selected)
	id := m.selected.ID

	m = press(t, m, key(tea.KeySpace))
	require.Nil(t, m.selected)
	require.Empty(t, m.detailName.Value())
	require.True(t, m.tasks[0].Completed)

	got, err := f.store.GetTask(id)
	require.NoError(t, err)
	require.True(t, got.Completed)
}

func TestDeleteFromCardNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddTask("Old task", "", "", 2))
	m := f.model(t, f.store)
	m, _ = m.setFocus(focusList)

	m = press(t, m, text("d"))
	require.NotNil(t, m.dialog)
	require.Equal(t, dialogConfirm, m.dialog.kind)

	m = press(t, m, text("n"))
	require.Nil(t, m.dialog)
	require.Len(t, m.tasks, 1)

	m = press(t, m, text("d"), text("y"))
	require.Nil(t, m.dialog)
	require.Empty(t, m.tasks)
}

func TestSaveSelectedTask(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddTask("Draft", "", "", 2))
	m := f.model(t, f.store)
	m, _ = m.setFocus(focusList)
	m = press(t, m, key(tea.KeyEnter))
	id := m.selected.ID

	m, _ = m.setFocus(focusDetailName)
	m.detailName.SetValue("  Final  ")
	m = press(t, m, key(tea.KeyTab), text("notes"), key(tea.KeyTab), text("2025-09-09"), key(tea.KeyTab), key(tea.KeyRight))
	m = press(t, m, key(tea.KeyCtrlS))

	require.NotNil(t, m.dialog)
	require.Equal(t, "Task updated.", m.dialog.message)
	require.Nil(t, m.selected)

	got, err := f.store.GetTask(id)
	require.NoError(t, err)
	require.Equal(t, "Final", got.Name)
	require.Equal(t, "notes", got.Description)
	require.Equal(t, "2025-09-09", got.DueDate)
	require.Equal(t, 3, got.Priority)
}

func TestSaveWithoutSelection(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, f.store)

	m = press(t, m, key(tea.KeyCtrlS))
	require.NotNil(t, m.dialog)
	require.Equal(t, dialogInfo, m.dialog.kind)

	m = press(t, m, key(tea.KeyEnter), key(tea.KeyCtrlD))
	require.NotNil(t, m.dialog)
	require.Equal(t, "No task selected.", m.dialog.message)
}

func TestSaveRejectsBlankName(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddTask("Keep", "", "", 2))
	m := f.model(t, f.store)
	m, _ = m.setFocus(focusList)
	m = press(t, m, key(tea.KeyEnter))
	m.detailName.SetValue(" ")

	m = press(t, m, key(tea.KeyCtrlS))
	require.Equal(t, dialogWarning, m.dialog.kind)
	require.NotNil(t, m.selected)

	got, err := f.store.GetTask(m.selected.ID)
	require.NoError(t, err)
	require.Equal(t, "Keep", got.Name)
}

func TestSaveAfterExternalDeleteClearsSilently(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddTask("Ghost", "", "", 2))
	m := f.model(t, f.store)
	m, _ = m.setFocus(focusList)
	m = press(t, m, key(tea.KeyEnter))
	require.NoError(t, f.store.DeleteTask(m.selected.ID))

	m = press(t, m, key(tea.KeyCtrlS))
	require.Nil(t, m.dialog)
	require.Nil(t, m.selected)
	require.Empty(t, m.tasks)
}

func TestRefreshDropsVanishedSelection(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddTask("Ghost", "", "", 2))
	require.NoError(t, f.store.AddTask("Stay", "", "", 2))
	m := f.model(t, f.store)
	m, _ = m.setFocus(focusList)
	m = press(t, m, key(tea.KeyEnter))
	require.NotNil(t, m.selected)

	m = press(t, m, key(tea.KeyCtrlR))
	require.NotNil(t, m.selected, "refresh keeps a live selection")

	require.NoError(t, f.store.DeleteTask(m.selected.ID))
	m = press(t, m, key(tea.KeyCtrlR))
	require.Nil(t, m.selected)
	require.Len(t, m.tasks, 1)
}

func TestDeleteSelectedFromDetails(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddTask("Bye", "", "", 2))
	m := f.model(t, f.store)
	m, _ = m.setFocus(focusList)
	m = press(t, m, key(tea.KeyEnter))

	m = press(t, m, key(tea.KeyCtrlD))
	require.Equal(t, "Delete selected task?", m.dialog.message)
	m = press(t, m, text("y"))
	require.Nil(t, m.selected)
	require.Empty(t, m.tasks)
}

func TestSearchFiltersOnEveryKeystroke(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddTask("Buy milk", "", "", 2))
	require.NoError(t, f.store.AddTask("Walk dog", "bring milk bones", "", 2))
	require.NoError(t, f.store.AddTask("Read", "", "", 2))
	m := f.model(t, f.store)
	m, _ = m.setFocus(focusSearch)

	m = press(t, m, text("mil"))
	require.Len(t, m.tasks, 2)
	m = press(t, m, text("k bo"))
	require.Len(t, m.tasks, 1)
	require.Equal(t, "Walk dog", m.tasks[0].Name)

	m.search.SetValue("")
	m = press(t, m, key(tea.KeyEnter))
	require.Len(t, m.tasks, 3)
}

func TestOrderCycles(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, f.store)
	require.Equal(t, storage.OrderPriorityRecency, m.order)

	m = press(t, m, key(tea.KeyCtrlO))
	require.Equal(t, storage.OrderRecency, m.order)
	m = press(t, m, key(tea.KeyCtrlO), key(tea.KeyCtrlO))
	require.Equal(t, storage.OrderPriorityRecency, m.order)
}

func TestThemeTogglePersists(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddTask("Card", "", "", 1))
	m := f.model(t, f.store)
	require.Equal(t, LightPalette.CardColor(1), m.cardBackground(m.tasks[0], false))

	m = press(t, m, key(tea.KeyCtrlT))
	require.True(t, m.dark)
	require.Equal(t, DarkPalette.Text, m.palette.Text)
	require.Equal(t, DarkPalette.CardColor(1), m.cardBackground(m.tasks[0], false))

	cfg, err := config.LoadOrCreate(f.configPath)
	require.NoError(t, err)
	require.True(t, cfg.Dark())

	m = press(t, m, key(tea.KeyCtrlT))
	require.False(t, m.dark)
}

func TestExportWritesFile(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddTask("Export me", "", "", 2))
	m := f.model(t, f.store)

	m = press(t, m, key(tea.KeyCtrlE))
	require.True(t, m.exporting)
	require.Equal(t, defaultExportName, m.exportPath.Value())

	target := filepath.Join(f.dir, "backup")
	m.exportPath.SetValue(target)
	m = press(t, m, key(tea.KeyEnter))

	require.False(t, m.exporting)
	require.Equal(t, dialogInfo, m.dialog.kind)
	require.Equal(t, "Exported 1 tasks to "+target+".csv", m.dialog.message)
	data, err := os.ReadFile(target + ".csv")
	require.NoError(t, err)
	require.Contains(t, string(data), "Export me")
}

func TestExportFailureShowsError(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, f.store)

	m = press(t, m, key(tea.KeyCtrlE))
	m.exportPath.SetValue(filepath.Join(f.dir, "no", "such", "dir", "out.csv"))
	m = press(t, m, key(tea.KeyEnter))

	require.Equal(t, dialogError, m.dialog.kind)
	require.Equal(t, "Export Error", m.dialog.title)
}

func TestExportCancel(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, f.store)

	m = press(t, m, key(tea.KeyCtrlE), key(tea.KeyEsc))
	require.False(t, m.exporting)
	require.Nil(t, m.dialog)

	m = press(t, m, key(tea.KeyCtrlE))
	m.exportPath.SetValue("  ")
	m = press(t, m, key(tea.KeyEnter))
	require.Nil(t, m.dialog)
}

type failingStore struct {
	*storage.Store
}

func (failingStore) ToggleDone(int) error {
	return errors.New("database is locked")
}

func TestStoreFailureShowsError(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddTask("Locked", "", "", 2))
	m := f.model(t, failingStore{f.store})
	m, _ = m.setFocus(focusList)

	m = press(t, m, key(tea.KeySpace))
	require.Equal(t, dialogError, m.dialog.kind)
	require.Contains(t, m.dialog.message, "database is locked")
	require.False(t, m.tasks[0].Completed)
}

func TestFocusSkipsDescriptionWithoutSelection(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddTask("One", "", "", 2))
	m := f.model(t, f.store)

	m, _ = m.setFocus(focusDetailName)
	m = press(t, m, key(tea.KeyTab))
	require.Equal(t, focusDetailDue, m.focus)

	m, _ = m.setFocus(focusList)
	m = press(t, m, key(tea.KeyEnter))
	m, _ = m.setFocus(focusDetailName)
	m = press(t, m, key(tea.KeyTab))
	require.Equal(t, focusDetailDesc, m.focus)

	m = press(t, m, key(tea.KeyShiftTab), key(tea.KeyShiftTab))
	require.Equal(t, focusList, m.focus)
}

func TestListCursorStaysInRange(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddTask("a", "", "", 2))
	require.NoError(t, f.store.AddTask("b", "", "", 2))
	m := f.model(t, f.store)
	m, _ = m.setFocus(focusList)

	m = press(t, m, key(tea.KeyUp))
	require.Equal(t, 0, m.cursor)
	m = press(t, m, key(tea.KeyDown), key(tea.KeyDown), key(tea.KeyDown))
	require.Equal(t, 1, m.cursor)
}

func TestViewRendersCards(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddTask("Pay rent", "", "2025-01-01", 1))
	require.NoError(t, f.store.AddTask("Water plants", "", "", 3))
	tasks, err := f.store.ListTasks("", storage.DefaultOrder)
	require.NoError(t, err)
	for _, task := range tasks {
		if task.Name == "Water plants" {
			require.NoError(t, f.store.ToggleDone(task.ID))
		}
	}
	m := f.model(t, f.store)

	out := m.View()
	require.Contains(t, out, "[COMPLETED] Water plants")
	require.Contains(t, out, "2025-01-01")
	require.Contains(t, out, "Mark Undone")
	require.Contains(t, out, "Task details")
	require.False(t, strings.Contains(out, "[COMPLETED] Pay rent"))

	m = press(t, m, key(tea.KeyEnter))
	require.Contains(t, m.View(), "Task name is required.")
}

func TestQuitCancelsPulse(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddTask("a", "", "", 2))
	m := f.model(t, f.store)
	m, _ = m.setFocus(focusList)
	m = press(t, m, key(tea.KeyEnter))
	require.True(t, m.pulse.active)

	next, cmd := m.Update(key(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	require.False(t, next.(Model).pulse.active)
}
