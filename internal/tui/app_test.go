package tui

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"zipex-cli/internal/model"
	"zipex-cli/internal/session"
	"zipex-cli/internal/sink"
)

func testZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		_, _ = io.WriteString(w, body)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func newTestModel(t *testing.T) (appModel, *session.Session, *sink.MemorySink) {
	t.Helper()
	ms := &sink.MemorySink{}
	s := session.New(session.Options{Sink: ms})
	raw := testZip(t, map[string]string{
		"docs/readme.txt": "hello",
		"docs/data.json":  `{"k":[1,2]}`,
		"a.png":           "not really a png",
		"b.txt":           "bee",
	})
	if err := s.Load(context.Background(), "bundle.zip", raw); err != nil {
		t.Fatalf("Load: %v", err)
	}
	m := newAppModel(context.Background(), Options{Session: s, StartDir: t.TempDir()})
	return m, s, ms
}

func press(t *testing.T, m appModel, keys ...tea.KeyMsg) (appModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var mm tea.Model
		mm, cmd = m.Update(k)
		m = mm.(appModel)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

// drain runs cmd and feeds work results back into the model. Spinner ticks
// and other framework messages are dropped.
func drain(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case loadDoneMsg, previewDoneMsg, downloadDoneMsg:
			mm, _ := m.Update(msg)
			m = mm.(appModel)
		}
	}
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func rowPaths(m appModel) []string {
	var out []string
	for _, it := range m.list.Items() {
		out = append(out, it.(entryRowItem).row.path)
	}
	return out
}

func TestTreeRows_ExpandAndCollapse(t *testing.T) {
	m, _, _ := newTestModel(t)
	if got, want := rowPaths(m), []string{"docs", "a.png", "b.txt"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("initial rows %v want %v", got, want)
	}

	m, _ = press(t, m, keyEnter)
	want := []string{"docs", "docs/data.json", "docs/readme.txt", "a.png", "b.txt"}
	if got := rowPaths(m); !reflect.DeepEqual(got, want) {
		t.Fatalf("expanded rows %v want %v", got, want)
	}

	// left on a child jumps to its directory, left again collapses it.
	m, _ = press(t, m, keyDown, tea.KeyMsg{Type: tea.KeyLeft})
	if r, _ := m.focusedRow(); r.path != "docs" {
		t.Fatalf("expected cursor on docs, got %q", r.path)
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if got := rowPaths(m); len(got) != 3 {
		t.Fatalf("expected collapsed rows, got %v", got)
	}
}

func TestToggleMode_ListShowsAllFiles(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = press(t, m, runes("t"))
	want := []string{"a.png", "b.txt", "docs/data.json", "docs/readme.txt"}
	if got := rowPaths(m); !reflect.DeepEqual(got, want) {
		t.Fatalf("list rows %v want %v", got, want)
	}
	if m.delegate.showTree {
		t.Fatalf("delegate still in tree mode")
	}
	m, _ = press(t, m, runes("t"))
	if len(rowPaths(m)) != 3 {
		t.Fatalf("expected tree rows after toggling back")
	}
}

func TestSelect_FileAndDirectory(t *testing.T) {
	m, s, _ := newTestModel(t)

	m, _ = press(t, m, keySpace)
	if !m.minibufferErr || !strings.Contains(m.minibufferText, "directories cannot be selected") {
		t.Fatalf("expected directory selection error, got %q", m.minibufferText)
	}

	m, _ = press(t, m, keyDown, keyDown, keySpace)
	if got := s.Snapshot().Selected; !reflect.DeepEqual(got, []string{"b.txt"}) {
		t.Fatalf("selected %v", got)
	}
	if r, _ := m.focusedRow(); !r.selected {
		t.Fatalf("row not marked selected")
	}

	m, _ = press(t, m, runes("a"))
	if n := len(s.Snapshot().Selected); n != 4 {
		t.Fatalf("select all: %d", n)
	}
	m, _ = press(t, m, runes("c"))
	if n := len(s.Snapshot().Selected); n != 0 {
		t.Fatalf("clear: %d", n)
	}
	_ = m
}

func TestPreviewJSON_ThenDismiss(t *testing.T) {
	m, s, _ := newTestModel(t)
	m, _ = press(t, m, keyEnter, keyDown)
	m, cmd := press(t, m, runes("p"))
	if m.busy != 1 {
		t.Fatalf("expected busy while previewing, got %d", m.busy)
	}
	m = drain(t, m, cmd)

	if m.busy != 0 || m.previewPath != "docs/data.json" {
		t.Fatalf("preview not shown: busy=%d path=%q msg=%q", m.busy, m.previewPath, m.minibufferText)
	}
	if !strings.Contains(m.viewport.View(), "data.json") {
		t.Fatalf("preview pane missing title")
	}
	if !strings.Contains(m.View(), "bundle.zip") {
		t.Fatalf("header missing archive name")
	}

	m, _ = press(t, m, keyEsc)
	if m.previewPath != "" || s.CurrentPreview() != nil {
		t.Fatalf("esc did not dismiss preview")
	}
}

func TestPreview_NonPreviewableEntry(t *testing.T) {
	m, s, _ := newTestModel(t)
	m, cmd := press(t, m, keyDown, keyDown, runes("p"))
	if cmd != nil || m.busy != 0 {
		t.Fatalf("expected no work for b.txt")
	}
	if !strings.Contains(m.minibufferText, "No preview") || s.CurrentPreview() != nil {
		t.Fatalf("unexpected state: %q", m.minibufferText)
	}
}

func TestPreview_SupersededIsSilent(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.busy = 1
	mm, _ := m.Update(previewDoneMsg{path: "a.png", err: model.ErrPreviewSuperseded})
	m = mm.(appModel)
	if m.minibufferText != "" || m.busy != 0 {
		t.Fatalf("superseded preview surfaced: %q busy=%d", m.minibufferText, m.busy)
	}
}

func TestDownloads(t *testing.T) {
	m, _, ms := newTestModel(t)

	m, cmd := press(t, m, keyDown, keyDown, runes("d"))
	m = drain(t, m, cmd)
	if !strings.Contains(m.minibufferText, "mem:bundle_b.txt") {
		t.Fatalf("single download message %q", m.minibufferText)
	}

	m, cmd = press(t, m, runes("D"))
	if cmd != nil || m.minibufferText != "Nothing selected" {
		t.Fatalf("expected nothing selected, got %q", m.minibufferText)
	}

	m, _ = press(t, m, keySpace, tea.KeyMsg{Type: tea.KeyUp}, keySpace)
	m, cmd = press(t, m, runes("D"))
	m = drain(t, m, cmd)
	if m.minibufferText != "Saved 2 files" {
		t.Fatalf("batch message %q", m.minibufferText)
	}
	var names []string
	for _, sv := range ms.Saved() {
		names = append(names, sv.Name)
	}
	want := []string{"bundle_b.txt", "bundle_a.png", "bundle_b.txt"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("saved %v want %v", names, want)
	}
}

func TestDownload_FailureReported(t *testing.T) {
	m, _, ms := newTestModel(t)
	ms.Fail = func(name string) error {
		if name == "bundle_a.png" {
			return errors.New("disk full")
		}
		return nil
	}
	m, _ = press(t, m, runes("a"))
	m, cmd := press(t, m, runes("D"))
	m = drain(t, m, cmd)
	if !m.minibufferErr || !strings.Contains(m.minibufferText, "Saved 3 of 4; a.png: disk full") {
		t.Fatalf("failure summary %q", m.minibufferText)
	}
}

func TestEditPrefix(t *testing.T) {
	m, s, _ := newTestModel(t)
	m, _ = press(t, m, runes("e"))
	if m.modal != modalEditPrefix || m.prefixInput.Value() != "bundle_" {
		t.Fatalf("prefix modal not open: modal=%v value=%q", m.modal, m.prefixInput.Value())
	}
	m, _ = press(t, m, runes("x"), keyEnter)
	if m.modal != modalNone || s.Prefix() != "bundle_x" {
		t.Fatalf("prefix not applied: %q", s.Prefix())
	}

	m, _ = press(t, m, runes("e"), runes("y"), keyEsc)
	if s.Prefix() != "bundle_x" {
		t.Fatalf("esc should cancel, prefix=%q", s.Prefix())
	}
	_ = m
}

func TestOpenPicker_EscCloses(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, cmd := press(t, m, runes("o"))
	if m.modal != modalPickArchive || cmd == nil {
		t.Fatalf("picker not opened")
	}
	m, _ = press(t, m, keyEsc)
	if m.modal != modalNone {
		t.Fatalf("picker not closed")
	}
}

func TestLoadDone_ErrorKeepsArchive(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.busy = 1
	mm, _ := m.Update(loadDoneMsg{path: "/tmp/bad.zip", err: model.InvalidArchiveError{Name: "bad.zip"}})
	m = mm.(appModel)
	if !m.minibufferErr || m.snap.Name != "bundle.zip" || m.busy != 0 {
		t.Fatalf("unexpected state after failed load: %q %q", m.minibufferText, m.snap.Name)
	}
}

func TestStartLoad_FromDisk(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/other.zip"
	if err := writeFile(path, testZip(t, map[string]string{"only.txt": "1"})); err != nil {
		t.Fatal(err)
	}
	s := session.New(session.Options{})
	m := newAppModel(context.Background(), Options{Session: s, Archive: path, StartDir: dir})
	if m.busy != 1 || m.initCmd == nil {
		t.Fatalf("expected initial load to be scheduled")
	}
	m = drain(t, m, m.initCmd)
	if !m.snap.Loaded || m.snap.Prefix != "other_" {
		t.Fatalf("archive not loaded: %+v", m.snap)
	}
	if got := rowPaths(m); !reflect.DeepEqual(got, []string{"only.txt"}) {
		t.Fatalf("rows %v", got)
	}
}

func TestMinibuffer_AutoClear(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.showMinibuffer("Hello")
	m.minibufferSetAt = time.Now().Add(-minibufferAutoClearAfter - 100*time.Millisecond)
	mm, _ := m.Update(minibufferTickMsg{})
	if got := mm.(appModel).minibufferText; got != "" {
		t.Fatalf("expected minibuffer to clear, got %q", got)
	}

	m.showMinibuffer("Hello")
	mm, _ = m.Update(minibufferTickMsg{})
	if got := mm.(appModel).minibufferText; got == "" {
		t.Fatalf("recent message cleared too early")
	}
}

func TestView_EmptySession(t *testing.T) {
	m := newAppModel(context.Background(), Options{StartDir: t.TempDir()})
	if !strings.Contains(m.View(), "No archive loaded") {
		t.Fatalf("expected empty-state hint")
	}
	m, cmd := press(t, m, runes("p"))
	if cmd != nil {
		t.Fatalf("keys should be inert without an archive")
	}
	_ = m
}

func writeFile(path string, b []byte) error { return os.WriteFile(path, b, 0o600) }
