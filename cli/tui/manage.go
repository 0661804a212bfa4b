package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/justapithecus/parity/cli/config"
)

func (m Model) updateManage(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Quit):
		m.outcome = Outcome{Action: ActionQuit}
		return m, tea.Quit

	case key.Matches(keyMsg, keys.Back):
		m.state = screenPicker
		return m.refreshPicker()

	case key.Matches(keyMsg, keys.Start):
		if errs := config.Validate(m.profile, m.store.Role()); len(errs) != 0 {
			m.notice("cannot start: %d validation error(s)", len(errs))
			return m, nil
		}
		m.outcome = Outcome{Action: ActionStart, Profile: m.profile}
		return m, tea.Quit

	case key.Matches(keyMsg, keys.Name):
		return m.beginEdit(fieldName, m.profile.Name), nil

	case key.Matches(keyMsg, keys.Root):
		return m.beginEdit(fieldParityRoot, m.profile.ParityRoot), nil

	case key.Matches(keyMsg, keys.Port):
		return m.beginEdit(fieldPort, strconv.Itoa(int(m.profile.Port))), nil

	case key.Matches(keyMsg, keys.Addr):
		return m.beginEdit(fieldAddr, m.addrValue()), nil

	case key.Matches(keyMsg, keys.Erase):
		if err := m.store.Erase(m.profile.Name); err != nil {
			m.notice("erase profile: %v", err)
			return m, nil
		}
		m.notice("erased %q", m.profile.Name)
		m.state = screenPicker
		return m.refreshPicker()
	}
	return m, nil
}

func (m Model) viewManage() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("PROFILE: " + m.profile.Name))
	b.WriteString("\n\n")

	for _, err := range config.Validate(m.profile, m.store.Role()) {
		b.WriteString(ErrorStyle.Render(err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	rows := [][2]string{
		{"profile", m.profile.Name},
		{"parity root", m.profile.ParityRoot},
		{"port", strconv.Itoa(int(m.profile.Port))},
		{fieldAddr.label(m.store.Role()), m.addrValue()},
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render(row[0]+":"),
			ValueStyle.Render(row[1])))
	}

	view := BoxStyle.Render(b.String())
	for _, n := range m.takeNotices() {
		view += "\n" + NoticeStyle.Render(n)
	}
	view += "\n" + HelpStyle.Render(m.manageHelp())
	return view
}

func (m Model) manageHelp() string {
	addrKey := "m mask"
	if m.store.Role() == config.RoleClient {
		addrKey = "m host"
	}
	verb := "start server"
	if m.store.Role() == config.RoleClient {
		verb = "download all"
	}
	return fmt.Sprintf("s %s · n name · d parity root · p port · %s · x erase · esc back · q quit", verb, addrKey)
}

func (m Model) addrValue() string {
	if m.store.Role() == config.RoleClient {
		return m.profile.Host
	}
	return m.profile.Mask
}

func (m Model) beginEdit(f field, current string) Model {
	m.editing = f
	m.input.SetValue(current)
	m.input.CursorEnd()
	m.input.Focus()
	m.state = screenEdit
	return m
}

func (m Model) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.Type {
		case tea.KeyEscape:
			m.input.Blur()
			m.state = screenManage
			return m, nil

		case tea.KeyEnter:
			return m.commitEdit(strings.TrimSpace(m.input.Value()))
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// commitEdit applies an edited field value. A blank value cancels. Name
// changes rename in the store immediately; other fields go through the
// save prompt.
func (m Model) commitEdit(value string) (tea.Model, tea.Cmd) {
	m.input.Blur()

	if value == "" {
		m.state = screenManage
		return m, nil
	}

	switch m.editing {
	case fieldName:
		if err := m.store.Rename(m.profile.Name, value); err != nil {
			m.notice("rename profile: %v", err)
			m.state = screenManage
			return m, nil
		}
		m.profile.Name = value
		m.notice("renamed to %q", value)
		m.state = screenManage
		return m, nil

	case fieldParityRoot:
		expanded, err := config.ExpandPlaceholders(value)
		if err != nil {
			m.notice("expand path: %v", err)
			m.state = screenManage
			return m, nil
		}
		m.profile.ParityRoot = expanded

	case fieldPort:
		port, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			m.notice("invalid port %q", value)
			m.state = screenManage
			return m, nil
		}
		m.profile.Port = uint16(port)

	case fieldAddr:
		if m.store.Role() == config.RoleClient {
			m.profile.Host = value
		} else {
			m.profile.Mask = value
		}
	}

	m.state = screenConfirmSave
	return m, nil
}

func (m Model) viewEdit() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("EDIT: " + m.editing.label(m.store.Role())))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("enter apply · esc cancel · blank cancels"))
	return BoxStyle.Render(b.String())
}

func (m Model) updateConfirmSave(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y":
		if err := m.store.Save(m.profile); err != nil {
			m.notice("save profile: %v", err)
		} else {
			m.notice("profile saved")
		}
		m.state = screenManage
		return m, nil

	case "n", "esc":
		m.notice("changes kept in memory only")
		m.state = screenManage
		return m, nil
	}
	return m, nil
}

func (m Model) viewConfirmSave() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("SAVE CHANGES?"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Profile %q has unsaved changes.\n", m.profile.Name))
	b.WriteString(HelpStyle.Render("y save · n keep in memory only"))
	return BoxStyle.Render(b.String())
}
