// Package tui implements the interactive task list editor.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/twiced-technology-gmbh/goalplan/internal/goal"
	"github.com/twiced-technology-gmbh/goalplan/internal/history"
	"github.com/twiced-technology-gmbh/goalplan/internal/order"
	"github.com/twiced-technology-gmbh/goalplan/internal/plan"
	"github.com/twiced-technology-gmbh/goalplan/internal/schedule"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

// view represents the current screen state.
type view int

const (
	viewList view = iota
	viewConfirmDelete
	viewConfirmQuit
	viewConfirmReload
)

const (
	keyEsc      = "esc"
	chrome      = 4 // title, blank line, status bar, help line
	paneMinRows = 3
)

// sortView is one entry of the sort cycle. The zero entry is the stored order.
type sortView struct {
	key string
	dir string
}

var sortCycle = []sortView{
	{order.KeyOrder, order.Asc},
	{order.KeyPriority, order.Desc},
	{order.KeyHours, order.Desc},
	{order.KeyName, order.Asc},
}

// Options configures an Editor.
type Options struct {
	Store  goal.Store
	GoalID int

	// Schedule drives the schedule pane.
	Schedule schedule.Config

	// HistoryDir receives the activity log entry written on save. Empty disables it.
	HistoryDir string
}

// Editor is the bubbletea model for editing one goal's task list.
type Editor struct {
	opts   Options
	goal   *goal.Goal
	tasks  []task.Task // working copy in stored sequence
	cursor int
	sort   int
	pane   bool
	dirty  bool
	view   view
	width  int
	height int
	err    error
	notice string

	keys keyMap
	help help.Model
}

// NewEditor loads the goal and returns an editor over its tasks.
func NewEditor(opts Options) (*Editor, error) {
	e := &Editor{opts: opts, keys: defaultKeys(), help: help.New()}
	if err := e.load(); err != nil {
		return nil, err
	}
	return e, nil
}

// Tasks returns the working task list in stored sequence.
func (e *Editor) Tasks() []task.Task {
	return task.Clone(e.tasks)
}

// Dirty reports whether the working list has unsaved changes.
func (e *Editor) Dirty() bool {
	return e.dirty
}

// Init implements tea.Model.
func (e *Editor) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (e *Editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return e.handleKey(msg)
	case tea.WindowSizeMsg:
		e.width = msg.Width
		e.height = msg.Height
		e.help.Width = msg.Width
		return e, nil
	case ReloadMsg:
		if e.dirty {
			e.notice = "goal changed on disk; save to overwrite or r to reload"
			return e, nil
		}
		if err := e.load(); err != nil {
			e.err = err
		}
		return e, nil
	}
	return e, nil
}

// View implements tea.Model.
func (e *Editor) View() string {
	if e.width == 0 {
		return "Loading..."
	}
	switch e.view {
	case viewConfirmDelete:
		return e.viewDeleteConfirm()
	case viewConfirmQuit, viewConfirmReload:
		return e.viewDiscardConfirm()
	default:
		return e.viewList()
	}
}

func (e *Editor) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, e.keys.ForceQuit) {
		return e, tea.Quit
	}
	switch e.view {
	case viewConfirmDelete:
		return e.handleConfirm(msg, e.executeDelete)
	case viewConfirmQuit:
		return e.handleConfirm(msg, func() (tea.Model, tea.Cmd) { return e, tea.Quit })
	case viewConfirmReload:
		return e.handleConfirm(msg, e.reload)
	}
	return e.handleListKey(msg)
}

func (e *Editor) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	e.err = nil
	e.notice = ""
	switch {
	case key.Matches(msg, e.keys.Quit):
		if e.dirty {
			e.view = viewConfirmQuit
			return e, nil
		}
		return e, tea.Quit
	case key.Matches(msg, e.keys.Down):
		if e.cursor < len(e.tasks)-1 {
			e.cursor++
		}
	case key.Matches(msg, e.keys.Up):
		if e.cursor > 0 {
			e.cursor--
		}
	case key.Matches(msg, e.keys.MoveDown):
		e.move(1)
	case key.Matches(msg, e.keys.MoveUp):
		e.move(-1)
	case key.Matches(msg, e.keys.Sort):
		e.sort = (e.sort + 1) % len(sortCycle)
	case key.Matches(msg, e.keys.Pane):
		e.pane = !e.pane
	case key.Matches(msg, e.keys.Delete):
		if len(e.tasks) > 0 {
			e.view = viewConfirmDelete
		}
	case key.Matches(msg, e.keys.Save):
		e.save()
	case key.Matches(msg, e.keys.Reload):
		if e.dirty {
			e.view = viewConfirmReload
			return e, nil
		}
		return e.reload()
	case key.Matches(msg, e.keys.Help):
		e.help.ShowAll = !e.help.ShowAll
	}
	return e, nil
}

func (e *Editor) handleConfirm(msg tea.KeyMsg, yes func() (tea.Model, tea.Cmd)) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		e.view = viewList
		return yes()
	case "n", "N", keyEsc, "q":
		e.view = viewList
	}
	return e, nil
}

// move shifts the selected task by delta positions in the stored order.
// Only the stored-order view can be reordered.
func (e *Editor) move(delta int) {
	if e.sort != 0 {
		e.notice = "reorder is only available in stored order (press s)"
		return
	}
	to := e.cursor + delta
	if to < 0 || to >= len(e.tasks) {
		return
	}
	moved, err := order.Reorder(e.tasks, e.cursor, to)
	if err != nil {
		e.err = err
		return
	}
	e.tasks = moved
	e.cursor = to
	e.dirty = true
}

func (e *Editor) executeDelete() (tea.Model, tea.Cmd) {
	idx := e.storedIndex()
	if idx < 0 {
		return e, nil
	}
	removed, err := order.RemoveAt(e.tasks, idx)
	if err != nil {
		e.err = err
		return e, nil
	}
	e.tasks = removed
	e.dirty = true
	e.clampCursor()
	return e, nil
}

func (e *Editor) reload() (tea.Model, tea.Cmd) {
	if err := e.load(); err != nil {
		e.err = err
	}
	return e, nil
}

func (e *Editor) save() {
	saved, err := e.opts.Store.SaveTasks(context.Background(), e.opts.GoalID, e.tasks)
	if err != nil {
		e.err = fmt.Errorf("saving goal #%d: %w", e.opts.GoalID, err)
		return
	}
	e.tasks = saved
	e.dirty = false
	e.notice = fmt.Sprintf("saved %d tasks", len(saved))
	if e.opts.HistoryDir != "" {
		history.Record(e.opts.HistoryDir, history.ActionPlanSave, e.opts.GoalID, 0,
			strconv.Itoa(len(saved))+" tasks from editor")
	}
	zap.L().Info("saved goal from editor", zap.Int("goal_id", e.opts.GoalID), zap.Int("tasks", len(saved)))
}

func (e *Editor) load() error {
	g, err := e.opts.Store.Get(context.Background(), e.opts.GoalID)
	if err != nil {
		return err
	}
	e.goal = g
	e.tasks = order.Canonical(g.Tasks)
	e.dirty = false
	e.clampCursor()
	return nil
}

// displayed returns the tasks in the current view order.
func (e *Editor) displayed() []task.Task {
	sv := sortCycle[e.sort]
	if e.sort == 0 {
		return e.tasks
	}
	sorted, err := order.SortBy(e.tasks, sv.key, sv.dir)
	if err != nil {
		return e.tasks
	}
	return sorted
}

// storedIndex maps the cursor in the current view to an index in e.tasks.
// The working list is always densely numbered, so Order-1 is the index.
func (e *Editor) storedIndex() int {
	shown := e.displayed()
	if e.cursor < 0 || e.cursor >= len(shown) {
		return -1
	}
	return shown[e.cursor].Order - 1
}

func (e *Editor) clampCursor() {
	if e.cursor >= len(e.tasks) {
		e.cursor = len(e.tasks) - 1
	}
	if e.cursor < 0 {
		e.cursor = 0
	}
}

// --- Messages ---

// ReloadMsg is sent by the store watcher to trigger a refresh.
type ReloadMsg struct{}

// --- Keys ---

type keyMap struct {
	Up, Down, MoveUp, MoveDown    key.Binding
	Sort, Pane, Delete, Save      key.Binding
	Reload, Help, Quit, ForceQuit key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		MoveUp:    key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown:  key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort view")),
		Pane:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "schedule")),
		Delete:    key.NewBinding(key.WithKeys("d", "D"), key.WithHelp("d", "delete")),
		Save:      key.NewBinding(key.WithKeys("w", "ctrl+s"), key.WithHelp("w", "save")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", keyEsc), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.MoveUp, k.MoveDown, k.Sort, k.Pane, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.MoveUp, k.MoveDown},
		{k.Sort, k.Pane, k.Delete},
		{k.Save, k.Reload, k.Quit},
	}
}

// --- Styles ---

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	paneStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	dialogStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(1, 2)

	priorityStyles = map[task.Priority]lipgloss.Style{
		task.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		task.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		task.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
)

// --- View rendering ---

func (e *Editor) viewList() string {
	title := titleStyle.Render(fmt.Sprintf("#%d %s", e.goal.ID, e.goal.Name))
	if e.dirty {
		title += " " + errorStyle.Render("*")
	}

	list := e.renderTasks()
	if e.pane {
		width := max(e.width/2, 20) //nolint:mnd // minimum pane width
		list = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(e.width-width-1).Render(list),
			" ",
			paneStyle.Width(width-2).Render(e.renderSchedule()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, list, "", e.renderStatusBar(), e.help.View(e.keys))
}

func (e *Editor) renderTasks() string {
	shown := e.displayed()
	if len(shown) == 0 {
		return dimStyle.Render("No tasks.")
	}

	rows := max(e.height-chrome, paneMinRows)
	start := 0
	if e.cursor >= rows {
		start = e.cursor - rows + 1
	}
	end := min(start+rows, len(shown))

	clip := lipgloss.NewStyle().MaxWidth(e.width)
	var b strings.Builder
	for i := start; i < end; i++ {
		t := shown[i]
		line := fmt.Sprintf("%3d. %-6s %5sh  %s",
			t.Order,
			priorityStyle(t.Priority).Render(t.Priority.String()),
			strconv.FormatFloat(t.EstimatedHours, 'f', -1, 64),
			t.Name)
		if i == e.cursor {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(clip.Render(line))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (e *Editor) renderSchedule() string {
	events, err := schedule.Schedule(e.tasks, e.opts.Schedule)
	if err != nil {
		return errorStyle.Render(err.Error())
	}
	if len(events) == 0 {
		return dimStyle.Render("Nothing to schedule.")
	}
	var lines []string
	for _, day := range plan.ByDay(events) {
		lines = append(lines, selectedStyle.Render(day.Day.Format("Mon Jan 2")))
		for _, ev := range day.Events {
			title := ev.Title
			if ev.Parts > 1 {
				title = fmt.Sprintf("%s (%d/%d)", ev.Title, ev.Part, ev.Parts)
			}
			lines = append(lines, fmt.Sprintf(" %s %s", dimStyle.Render(ev.Start.Format("15:04")), title))
		}
	}
	return strings.Join(lines, "\n")
}

func (e *Editor) renderStatusBar() string {
	sv := sortCycle[e.sort]
	status := fmt.Sprintf(" %d tasks | %sh | sort: %s %s",
		len(e.tasks),
		strconv.FormatFloat(task.TotalHours(e.tasks), 'f', -1, 64),
		sv.key, sv.dir)
	status = statusBarStyle.Render(truncate(status, e.width))

	switch {
	case e.err != nil:
		return errorStyle.Render(truncate("Error: "+e.err.Error(), e.width)) + "\n" + status
	case e.notice != "":
		return noticeStyle.Render(truncate(e.notice, e.width)) + "\n" + status
	}
	return status
}

func (e *Editor) viewDeleteConfirm() string {
	idx := e.storedIndex()
	name := ""
	if idx >= 0 {
		name = e.tasks[idx].Name
	}
	content := errorStyle.Render("Delete task?") + "\n\n" +
		"  " + name + "\n\n" +
		dimStyle.Render("y:yes  n:no")
	return dialogStyle.Render(content)
}

func (e *Editor) viewDiscardConfirm() string {
	content := errorStyle.Render("Discard unsaved changes?") + "\n\n" +
		dimStyle.Render("y:yes  n:no")
	return dialogStyle.Render(content)
}

func priorityStyle(p task.Priority) lipgloss.Style {
	if st, ok := priorityStyles[p]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

// truncate shortens s to maxLen visible cells, appending "..." when cut.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || lipgloss.Width(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > maxLen {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
