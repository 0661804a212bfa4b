package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/justapithecus/parity/cli/config"
)

// profileItem is one profile name in the picker list.
type profileItem struct {
	name string
}

func (i profileItem) Title() string       { return i.name }
func (i profileItem) Description() string { return "" }
func (i profileItem) FilterValue() string { return i.name }

// pickerModel wraps the bubbles list of profile names.
type pickerModel struct {
	list list.Model
}

func newPicker(names []string, role config.Role) pickerModel {
	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		items = append(items, profileItem{name: name})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false

	l := list.New(items, delegate, 0, 0)
	l.Title = "PICK A PROFILE (" + string(role) + ")"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = TitleStyle

	return pickerModel{list: l}
}

func (p *pickerModel) setSize(width, height int) {
	// Leave room for notices and the help line.
	h := height - 4
	if h < 4 {
		h = 4
	}
	p.list.SetSize(width, h)
}

func (p *pickerModel) setNames(names []string) {
	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		items = append(items, profileItem{name: name})
	}
	p.list.SetItems(items)
}

func (p *pickerModel) selected() (string, bool) {
	item, ok := p.list.SelectedItem().(profileItem)
	if !ok {
		return "", false
	}
	return item.name, true
}

func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.picker.list, cmd = m.picker.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, keys.Quit):
		m.outcome = Outcome{Action: ActionQuit}
		return m, tea.Quit

	case keyMsg.Type == tea.KeyEnter:
		name, ok := m.picker.selected()
		if !ok {
			m.notice("no profile selected")
			return m, nil
		}
		profile, err := m.store.Get(name)
		if err != nil {
			m.notice("load profile: %v", err)
			return m, nil
		}
		m.profile = profile
		m.state = screenManage
		return m, nil

	case key.Matches(keyMsg, keys.Add):
		names, err := m.store.Names()
		if err != nil {
			m.notice("list profiles: %v", err)
			return m, nil
		}
		profile, err := m.store.Create(newProfileName(names))
		if err != nil {
			m.notice("create profile: %v", err)
			return m, nil
		}
		m.notice("created %q", profile.Name)
		return m.refreshPicker()

	case key.Matches(keyMsg, keys.Refresh):
		return m.refreshPicker()
	}

	var cmd tea.Cmd
	m.picker.list, cmd = m.picker.list.Update(msg)
	return m, cmd
}

func (m Model) refreshPicker() (tea.Model, tea.Cmd) {
	names, err := m.store.Names()
	if err != nil {
		m.notice("list profiles: %v", err)
		return m, nil
	}
	m.picker.setNames(names)
	return m, nil
}

func (m Model) viewPicker() string {
	view := m.picker.list.View()
	for _, n := range m.takeNotices() {
		view += "\n" + NoticeStyle.Render(n)
	}
	view += "\n" + HelpStyle.Render("enter select · a add · r refresh · q quit")
	return view
}

// newProfileName picks an unused "profile #N" name, numbering from the
// current profile count.
func newProfileName(existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, name := range existing {
		taken[name] = true
	}
	for n := len(existing); ; n++ {
		candidate := fmt.Sprintf("profile #%d", n)
		if !taken[candidate] {
			return candidate
		}
	}
}
