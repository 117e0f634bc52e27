package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"zipex-cli/internal/model"
	"zipex-cli/internal/pathtree"
	"zipex-cli/internal/preview"
	"zipex-cli/internal/retrieve"
	"zipex-cli/internal/session"
)

// Options configure the interactive browser.
type Options struct {
	Session *session.Session
	// Archive, when set, is loaded on start.
	Archive string
	// StartDir is where the archive picker opens; defaults to the working
	// directory.
	StartDir string
	Glyphs   string
	Log      *zap.Logger
}

type appModel struct {
	ctx  context.Context
	sess *session.Session
	log  *zap.Logger
	keys keyMap

	width  int
	height int

	mode     viewMode
	list     list.Model
	delegate *entryDelegate
	snap     session.Snapshot

	modal       modalKind
	prefixInput textinput.Model
	picker      filepicker.Model
	startDir    string

	spinner spinner.Model
	busy    int
	initCmd tea.Cmd

	// previewPath is the entry shown in the preview pane; empty hides it.
	previewPath string
	viewport    viewport.Model

	minibufferText  string
	minibufferErr   bool
	minibufferSetAt time.Time
}

func newAppModel(ctx context.Context, opts Options) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	sess := opts.Session
	if sess == nil {
		sess = session.New(session.Options{Log: opts.Log})
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	d := newEntryDelegate()
	l := list.New(nil, d, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	// Quitting and paging are handled by the app keymap.
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.KeyMap.NextPage.SetKeys("pgdown")
	l.KeyMap.PrevPage.SetKeys("pgup")

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 128

	startDir := strings.TrimSpace(opts.StartDir)
	if startDir == "" {
		if wd, err := os.Getwd(); err == nil {
			startDir = wd
		} else {
			startDir = "."
		}
	}

	m := appModel{
		ctx:         ctx,
		sess:        sess,
		log:         log,
		keys:        defaultKeyMap(),
		width:       100,
		height:      30,
		mode:        modeTree,
		list:        l,
		delegate:    d,
		prefixInput: ti,
		startDir:    startDir,
		spinner:     sp,
		viewport:    viewport.New(0, 0),
	}
	m.resize()
	m.refresh()
	if p := strings.TrimSpace(opts.Archive); p != "" {
		m.initCmd = m.startLoad(p)
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(tickMinibuffer(), m.initCmd)
}

func tickMinibuffer() tea.Cmd {
	return tea.Tick(750*time.Millisecond, func(time.Time) tea.Msg { return minibufferTickMsg{} })
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderPreview()
		return m, nil

	case minibufferTickMsg:
		if m.minibufferText != "" && time.Since(m.minibufferSetAt) >= minibufferAutoClearAfter {
			m.minibufferText = ""
			m.minibufferErr = false
		}
		return m, tickMinibuffer()

	case spinner.TickMsg:
		if m.busy == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadDoneMsg:
		m.doneBusy()
		if msg.err != nil {
			m.showError(msg.err)
			return m, nil
		}
		m.previewPath = ""
		m.refresh()
		m.list.Select(0)
		m.resize()
		m.showMinibuffer(fmt.Sprintf("Loaded %s: %d files", filepath.Base(msg.path), len(m.snap.Entries)))
		return m, nil

	case previewDoneMsg:
		m.doneBusy()
		switch {
		case msg.err != nil:
			if !isSuperseded(msg.err) {
				m.showError(msg.err)
			}
		case msg.res != nil:
			m.previewPath = msg.path
			m.resize()
			m.renderPreview()
		}
		return m, nil

	case downloadDoneMsg:
		m.doneBusy()
		m.reportDownloads(msg)
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	if m.modal == modalPickArchive {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.modal {
	case modalEditPrefix:
		return m.updatePrefixModal(msg)
	case modalPickArchive:
		return m.updatePickerModal(msg)
	}

	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.OpenArchive):
		return m, m.openPicker()
	case key.Matches(msg, k.Dismiss):
		if m.previewPath != "" {
			m.sess.DismissPreview()
			m.previewPath = ""
			m.resize()
		}
		return m, nil
	case key.Matches(msg, k.ScrollDown):
		m.viewport.LineDown(max(m.viewport.Height/2, 1))
		return m, nil
	case key.Matches(msg, k.ScrollUp):
		m.viewport.LineUp(max(m.viewport.Height/2, 1))
		return m, nil
	}

	if !m.snap.Loaded {
		return m, nil
	}

	row, hasRow := m.focusedRow()
	switch {
	case key.Matches(msg, k.ToggleMode):
		if m.mode == modeTree {
			m.mode = modeList
		} else {
			m.mode = modeTree
		}
		m.refresh()
		return m, nil
	case key.Matches(msg, k.Select):
		if hasRow {
			m.apply(m.sess.ToggleSelect(row.path))
		}
		return m, nil
	case key.Matches(msg, k.Open):
		if !hasRow {
			return m, nil
		}
		if row.dir {
			m.apply(m.sess.ToggleExpand(row.path))
			return m, nil
		}
		return m, m.startPreview(row.path)
	case key.Matches(msg, k.Expand):
		if !hasRow {
			return m, nil
		}
		if row.dir {
			m.apply(m.sess.SetExpanded(row.path, true))
			return m, nil
		}
		return m, m.startPreview(row.path)
	case key.Matches(msg, k.Collapse):
		if hasRow {
			m.collapse(row)
		}
		return m, nil
	case key.Matches(msg, k.ExpandAll):
		m.apply(m.sess.ExpandAll())
		return m, nil
	case key.Matches(msg, k.Preview):
		if hasRow && !row.dir {
			return m, m.startPreview(row.path)
		}
		return m, nil
	case key.Matches(msg, k.Download):
		if hasRow && !row.dir {
			return m, m.startDownload(row.path)
		}
		if hasRow {
			m.showError(model.InvalidOperationError{Op: "download", Path: row.path, Reason: "directories cannot be downloaded"})
		}
		return m, nil
	case key.Matches(msg, k.DownloadSelected):
		return m, m.startDownloadSelected()
	case key.Matches(msg, k.SelectAll):
		m.apply(m.sess.SelectAll())
		return m, nil
	case key.Matches(msg, k.ClearSelection):
		m.apply(m.sess.ClearSelection())
		return m, nil
	case key.Matches(msg, k.EditPrefix):
		return m, m.openPrefixModal()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// apply refreshes the rows after a session mutation, or reports its error.
func (m *appModel) apply(err error) {
	if err != nil {
		m.showError(err)
		return
	}
	m.refresh()
}

// collapse closes an expanded directory; otherwise it moves the cursor to the
// parent directory.
func (m *appModel) collapse(row entryRow) {
	if m.mode == modeTree && row.dir && row.expanded {
		m.apply(m.sess.SetExpanded(row.path, false))
		return
	}
	if m.mode != modeTree {
		return
	}
	folder, _ := pathtree.SplitPath(strings.TrimSuffix(row.path, pathtree.Separator))
	if parent := strings.TrimSuffix(folder, pathtree.Separator); parent != "" {
		selectListItemByPath(&m.list, parent)
	}
}

func (m *appModel) focusedRow() (entryRow, bool) {
	it, ok := m.list.SelectedItem().(entryRowItem)
	if !ok {
		return entryRow{}, false
	}
	return it.row, true
}

// refresh rebuilds the list from a fresh snapshot, keeping the cursor on the
// same path or its nearest visible ancestor.
func (m *appModel) refresh() {
	cur := ""
	if r, ok := m.focusedRow(); ok {
		cur = r.path
	}
	m.snap = m.sess.Snapshot()
	m.delegate.showTree = m.mode == modeTree
	m.list.SetItems(rowItems(flattenSnapshot(m.snap, m.mode)))
	for p := cur; p != ""; {
		if selectListItemByPath(&m.list, p) {
			break
		}
		folder, _ := pathtree.SplitPath(p)
		p = strings.TrimSuffix(folder, pathtree.Separator)
	}
}

func (m *appModel) runBusy(work tea.Cmd) tea.Cmd {
	m.busy++
	if m.busy == 1 {
		return tea.Batch(work, m.spinner.Tick)
	}
	return work
}

func (m *appModel) doneBusy() {
	if m.busy > 0 {
		m.busy--
	}
}

func (m *appModel) startLoad(path string) tea.Cmd {
	if m.sess.Loading() {
		m.showError(model.ErrLoadInProgress)
		return nil
	}
	ctx, sess, log := m.ctx, m.sess, m.log
	return m.runBusy(func() tea.Msg {
		raw, err := os.ReadFile(path)
		if err == nil {
			err = sess.Load(ctx, path, raw)
		}
		if err != nil {
			log.Debug("tui load failed", zap.String("path", path), zap.Error(err))
		}
		return loadDoneMsg{path: path, err: err}
	})
}

func (m *appModel) startPreview(path string) tea.Cmd {
	if retrieve.Classify(path) == model.KindNone {
		m.showMinibuffer("No preview for " + pathtree.FinalSegment(path))
		return nil
	}
	ctx, sess := m.ctx, m.sess
	return m.runBusy(func() tea.Msg {
		res, err := sess.Preview(ctx, path)
		return previewDoneMsg{path: path, res: res, err: err}
	})
}

func (m *appModel) startDownload(path string) tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return m.runBusy(func() tea.Msg {
		res := sess.Download(ctx, path)
		return downloadDoneMsg{single: true, results: []model.BatchResult{res}}
	})
}

func (m *appModel) startDownloadSelected() tea.Cmd {
	if len(m.snap.Selected) == 0 {
		m.showMinibuffer("Nothing selected")
		return nil
	}
	ctx, sess := m.ctx, m.sess
	return m.runBusy(func() tea.Msg {
		results, err := sess.DownloadSelected(ctx)
		return downloadDoneMsg{results: results, err: err}
	})
}

func (m *appModel) reportDownloads(msg downloadDoneMsg) {
	if msg.err != nil {
		m.showError(msg.err)
		return
	}
	var failed []model.BatchResult
	for _, r := range msg.results {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	switch {
	case msg.single && len(msg.results) == 1 && len(failed) == 0:
		m.showMinibuffer("Saved " + msg.results[0].Location)
	case len(failed) == 0:
		m.showMinibuffer(fmt.Sprintf("Saved %d files", len(msg.results)))
	default:
		f := failed[0]
		m.minibufferErr = true
		m.setMinibuffer(fmt.Sprintf("Saved %d of %d; %s: %s",
			len(msg.results)-len(failed), len(msg.results), f.Path, f.Error))
	}
}

func (m *appModel) showMinibuffer(text string) {
	m.minibufferErr = false
	m.setMinibuffer(text)
}

func (m *appModel) showError(err error) {
	m.minibufferErr = true
	m.setMinibuffer(err.Error())
}

func (m *appModel) setMinibuffer(text string) {
	m.minibufferText = text
	m.minibufferSetAt = time.Now()
}

func (m *appModel) resize() {
	bodyH := max(m.height-3, 3)
	listW := m.width
	if m.previewPath != "" {
		listW = max(m.width/2, 20)
		m.viewport.Width = max(m.width-listW-1, 10)
		m.viewport.Height = bodyH
	}
	m.list.SetSize(listW, bodyH)
	if m.modal == modalPickArchive {
		m.picker.Height = max(bodyH-2, 3)
	}
}

// renderPreview draws the session's current preview into the viewport.
func (m *appModel) renderPreview() {
	cur := m.sess.CurrentPreview()
	if cur == nil || m.previewPath == "" {
		m.viewport.SetContent("")
		return
	}
	w, h := m.viewport.Width, m.viewport.Height
	title := styleHeader().Render(pathtree.FinalSegment(cur.EntryPath))
	var body string
	switch cur.Kind {
	case model.KindImage:
		data, ok := m.sess.PreviewImage()
		if !ok {
			body = styleMuted().Render("preview released")
			break
		}
		out, info, err := preview.RenderImage(data, w, max(h-2, 1))
		if err != nil {
			body = styleError().Render(err.Error())
			break
		}
		title += styleMuted().Render(fmt.Sprintf("  %s %dx%d", info.Format, info.Width, info.Height))
		body = out
	case model.KindJSON:
		pretty, err := retrieve.Pretty(cur)
		if err != nil {
			body = styleError().Render(err.Error())
			break
		}
		body = preview.RenderJSON(pretty, w)
	}
	m.viewport.SetContent(title + "\n" + body)
	m.viewport.GotoTop()
}

func (m appModel) View() string {
	header := m.viewHeader()
	var body string
	switch {
	case m.modal == modalPickArchive:
		body = styleMuted().Render("Open archive (enter: open, esc: cancel)") + "\n" + m.picker.View()
	case !m.snap.Loaded:
		body = styleMuted().Render("No archive loaded. Press o to open one.")
	case m.previewPath != "":
		left := fitPane(m.list.View(), m.list.Width(), m.list.Height())
		sep := lipgloss.NewStyle().Foreground(colorBorder).Render(strings.TrimSuffix(strings.Repeat("│\n", m.list.Height()), "\n"))
		right := fitPane(m.viewport.View(), m.viewport.Width, m.viewport.Height)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, sep, right)
	case len(m.list.Items()) == 0:
		body = styleMuted().Render("This archive has no files.")
	default:
		body = m.list.View()
	}
	body = fitPane(body, m.width, max(m.height-3, 3))
	return strings.Join([]string{header, body, m.viewMinibuffer(), m.viewHelp()}, "\n")
}

func (m appModel) viewHeader() string {
	parts := []string{styleHeader().Render("zipex")}
	if m.snap.Loaded {
		parts = append(parts,
			filepath.Base(m.snap.Name),
			styleMuted().Render(fmt.Sprintf("%s %s %d files %s %d selected %s prefix %q %s %s",
				m.snap.Format, glyphBullet(), len(m.snap.Entries), glyphBullet(),
				len(m.snap.Selected), glyphBullet(), m.snap.Prefix, glyphBullet(), m.mode)),
		)
	}
	if m.busy > 0 {
		parts = append(parts, m.spinner.View())
	}
	return fitLine(strings.Join(parts, "  "), m.width)
}

func (m appModel) viewMinibuffer() string {
	if m.modal == modalEditPrefix {
		label := "Prefix: "
		return label + renderInputLine(m.width-len(label), m.prefixInput.View())
	}
	if m.minibufferText == "" {
		return styleMuted().Render(strings.Repeat(glyphHRule(), max(m.width, 1)))
	}
	st := lipgloss.NewStyle()
	if m.minibufferErr {
		st = styleError()
	}
	return st.Render(fitLine(m.minibufferText, m.width))
}

func (m appModel) viewHelp() string {
	return styleMuted().Render(fitLine(m.keys.helpLine(m.modal), m.width))
}
