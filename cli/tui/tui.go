package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/justapithecus/parity/cli/config"
)

// Action is what the operator chose before the menu quit.
type Action int

const (
	// ActionQuit means leave without starting anything.
	ActionQuit Action = iota
	// ActionStart means run the role's blocking operation (serve or
	// download-all) with the returned profile.
	ActionStart
)

// Outcome is the menu's result for the command layer.
type Outcome struct {
	Action  Action
	Profile config.Profile
}

// screen identifies the active menu state. The menu is an explicit
// finite-state controller: picker → manage → edit → confirm-save.
type screen int

const (
	screenPicker screen = iota
	screenManage
	screenEdit
	screenConfirmSave
)

// field identifies which profile field an edit targets.
type field int

const (
	fieldName field = iota
	fieldParityRoot
	fieldPort
	fieldAddr // mask for servers, host for clients
)

func (f field) label(role config.Role) string {
	switch f {
	case fieldName:
		return "name"
	case fieldParityRoot:
		return "parity root"
	case fieldPort:
		return "port"
	default:
		if role == config.RoleClient {
			return "host"
		}
		return "mask"
	}
}

// keyMap holds the menu key bindings.
type keyMap struct {
	Start   key.Binding
	Add     key.Binding
	Refresh key.Binding
	Erase   key.Binding
	Name    key.Binding
	Root    key.Binding
	Port    key.Binding
	Addr    key.Binding
	Back    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add profile")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Erase:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "erase")),
	Name:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "edit name")),
	Root:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "edit parity root")),
	Port:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "edit port")),
	Addr:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "edit mask/host")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the Bubble Tea model for the profile menu.
type Model struct {
	store *config.Store

	state   screen
	picker  pickerModel
	input   textinput.Model
	editing field

	profile config.Profile
	notices []string

	outcome Outcome
	width   int
	height  int
}

// NewModel builds the menu over a profile store.
func NewModel(store *config.Store) (Model, error) {
	names, err := store.Names()
	if err != nil {
		return Model{}, err
	}

	input := textinput.New()
	input.CharLimit = 256

	return Model{
		store:  store,
		state:  screenPicker,
		picker: newPicker(names, store.Role()),
		input:  input,
	}, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		m.picker.setSize(size.Width, size.Height)
		return m, nil
	}

	switch m.state {
	case screenPicker:
		return m.updatePicker(msg)
	case screenManage:
		return m.updateManage(msg)
	case screenEdit:
		return m.updateEdit(msg)
	case screenConfirmSave:
		return m.updateConfirmSave(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	switch m.state {
	case screenPicker:
		return m.viewPicker()
	case screenManage:
		return m.viewManage()
	case screenEdit:
		return m.viewEdit()
	case screenConfirmSave:
		return m.viewConfirmSave()
	}
	return ""
}

// notice queues a transient status line shown on the next screen.
func (m *Model) notice(format string, args ...any) {
	m.notices = append(m.notices, fmt.Sprintf(format, args...))
}

func (m *Model) takeNotices() []string {
	out := m.notices
	m.notices = nil
	return out
}

// Run drives the menu to completion and reports what the operator chose.
func Run(store *config.Store) (Outcome, error) {
	m, err := NewModel(store)
	if err != nil {
		return Outcome{}, err
	}

	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return Outcome{}, fmt.Errorf("menu failed: %w", err)
	}

	result, ok := final.(Model)
	if !ok {
		return Outcome{}, fmt.Errorf("menu returned unexpected model %T", final)
	}
	return result.outcome, nil
}
