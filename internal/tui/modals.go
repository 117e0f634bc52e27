package tui

import (
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"zipex-cli/internal/archive"
	"zipex-cli/internal/model"
)

func isSuperseded(err error) bool { return errors.Is(err, model.ErrPreviewSuperseded) }

func (m *appModel) openPrefixModal() tea.Cmd {
	if !m.snap.Loaded {
		return nil
	}
	m.prefixInput.SetValue(m.sess.Prefix())
	m.prefixInput.CursorEnd()
	m.modal = modalEditPrefix
	return m.prefixInput.Focus()
}

func (m appModel) updatePrefixModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		m.prefixInput.Blur()
		return m, nil
	case "enter":
		m.modal = modalNone
		m.prefixInput.Blur()
		v := m.prefixInput.Value()
		if err := m.sess.SetPrefix(v); err != nil {
			m.showError(err)
			return m, nil
		}
		m.snap.Prefix = v
		m.showMinibuffer("Export prefix set to " + quoteOrEmpty(v))
		return m, nil
	}
	var cmd tea.Cmd
	m.prefixInput, cmd = m.prefixInput.Update(msg)
	return m, cmd
}

func quoteOrEmpty(s string) string {
	if s == "" {
		return "(none)"
	}
	return `"` + s + `"`
}

func (m *appModel) openPicker() tea.Cmd {
	fp := filepicker.New()
	fp.AllowedTypes = archive.Extensions()
	fp.FileAllowed = true
	fp.DirAllowed = false
	fp.ShowHidden = false
	fp.ShowPermissions = false
	fp.ShowSize = true
	fp.AutoHeight = false
	fp.Cursor = ">"
	fp.CurrentDirectory = pickerStartDir(m.startDir)
	fp.KeyMap.Back = key.NewBinding(key.WithKeys("h", "backspace", "left"), key.WithHelp("h", "up"))

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(colorDirFg)
	fp.Styles.DisabledFile = styleMuted()
	fp.Styles.FileSize = styleMuted().Width(fp.Styles.FileSize.GetWidth()).Align(lipgloss.Right)

	m.picker = fp
	m.modal = modalPickArchive
	m.resize()
	return fp.Init()
}

func (m appModel) updatePickerModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" || msg.String() == "q" {
		m.modal = modalNone
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.modal = modalNone
		if dir := strings.TrimSpace(m.picker.CurrentDirectory); dir != "" {
			m.startDir = dir
		}
		return m, m.startLoad(path)
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.showError(model.InvalidArchiveError{Name: path, Err: errors.New("not a supported archive type")})
	}
	return m, cmd
}

// pickerStartDir returns dir when it is an existing directory, else ".".
func pickerStartDir(dir string) string {
	if st, err := os.Stat(dir); err == nil && st.IsDir() {
		return dir
	}
	return "."
}
