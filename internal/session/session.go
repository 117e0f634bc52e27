// Package session owns the currently loaded archive and everything derived
// from it: the entry list, the tree, selection and expansion state, the export
// prefix and the active preview.
package session

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"zipex-cli/internal/archive"
	"zipex-cli/internal/handles"
	"zipex-cli/internal/model"
	"zipex-cli/internal/pathtree"
	"zipex-cli/internal/retrieve"
	"zipex-cli/internal/selection"
	"zipex-cli/internal/sink"

	"go.uber.org/zap"
)

type Options struct {
	// Open parses archives; defaults to archive.Open.
	Open archive.OpenFunc
	Sink sink.Sink
	Log  *zap.Logger
	// Timeout bounds loads and each single retrieval; zero means no limit.
	Timeout time.Duration
}

type Session struct {
	open     archive.OpenFunc
	sink     sink.Sink
	log      *zap.Logger
	timeout  time.Duration
	registry *handles.Registry

	loading atomic.Bool

	mu         sync.Mutex
	cur        *state
	preview    *model.PreviewResult
	previewSeq uint64
}

// state is replaced wholesale on every successful load.
type state struct {
	name   string
	reader archive.Reader
	// inflight counts retrievals still using reader. A replaced state closes
	// its reader only after they finish.
	inflight sync.WaitGroup

	entries  []model.Entry
	paths    []string
	tree     *pathtree.Node
	tracker  *selection.Tracker
	prefix   string
	pipeline *retrieve.Pipeline
}

// Snapshot is a read-only view for the presentation layer.
type Snapshot struct {
	Loaded   bool                 `json:"loaded"`
	Name     string               `json:"name,omitempty"`
	Format   archive.Format       `json:"format,omitempty"`
	Entries  []model.Entry        `json:"entries"`
	Tree     *pathtree.Node       `json:"tree,omitempty"`
	Rows     []pathtree.Row       `json:"-"`
	Selected []string             `json:"selected"`
	Expanded map[string]bool      `json:"expanded"`
	Prefix   string               `json:"prefix"`
	Preview  *model.PreviewResult `json:"preview,omitempty"`
}

func New(opts Options) *Session {
	s := &Session{
		open:     opts.Open,
		sink:     opts.Sink,
		log:      opts.Log,
		timeout:  opts.Timeout,
		registry: handles.NewRegistry(),
	}
	if s.open == nil {
		s.open = archive.Open
	}
	if s.sink == nil {
		s.sink = &sink.MemorySink{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Registry exposes the handle registry that backs image previews.
func (s *Session) Registry() *handles.Registry { return s.registry }

// DefaultPrefix derives the export prefix for an archive file name.
func DefaultPrefix(name string) string {
	base := archive.BaseName(name)
	if base == "" {
		return ""
	}
	return base + "_"
}

// Load parses raw and, on success, replaces the whole session state. Only one
// load may run at a time; a concurrent call fails with model.ErrLoadInProgress.
// On failure the previous state is left untouched.
func (s *Session) Load(ctx context.Context, name string, raw []byte) error {
	if !s.loading.CompareAndSwap(false, true) {
		return model.ErrLoadInProgress
	}
	defer s.loading.Store(false)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	r, err := s.open(ctx, name, raw)
	if err != nil {
		var iae model.InvalidArchiveError
		if !errors.As(err, &iae) {
			err = model.InvalidArchiveError{Name: name, Err: err}
		}
		s.log.Warn("archive load failed", zap.String("name", name), zap.Error(err))
		return err
	}

	st, err := s.newState(name, r)
	if err != nil {
		_ = r.Close()
		err = model.InvalidArchiveError{Name: name, Err: err}
		s.log.Warn("archive load failed", zap.String("name", name), zap.Error(err))
		return err
	}

	s.mu.Lock()
	prev := s.cur
	s.cur = st
	s.dropPreviewLocked()
	s.mu.Unlock()

	s.retire(prev)
	s.log.Info("archive loaded",
		zap.String("name", name),
		zap.String("format", string(r.Format())),
		zap.Int("entries", len(st.entries)))
	return nil
}

func (s *Session) newState(name string, r archive.Reader) (*state, error) {
	meta := r.Entries()
	paths := make([]string, 0, len(meta))
	for p, m := range meta {
		if m.IsDir || strings.HasSuffix(p, pathtree.Separator) {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)

	tracker := selection.New(nil)
	tree, err := pathtree.Build(paths, tracker.Expanded())
	if err != nil {
		return nil, err
	}
	tracker.Reset(pathtree.Index(tree))

	// A file that is also a directory prefix ("a" next to "a/b") becomes a
	// directory in the tree; keep entries in step with what can be selected.
	if leaves := pathtree.Leaves(tree); len(leaves) != len(paths) {
		s.log.Debug("file entries shadowed by directories",
			zap.String("name", name), zap.Int("dropped", len(paths)-len(leaves)))
		sort.Strings(leaves)
		paths = leaves
	}

	entries := make([]model.Entry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, model.Entry{
			Path:        p,
			Size:        meta[p].Size,
			Modified:    meta[p].Modified,
			PreviewKind: retrieve.Classify(p),
		})
	}

	st := &state{
		name:    name,
		reader:  r,
		entries: entries,
		paths:   paths,
		tree:    tree,
		tracker: tracker,
		prefix:  DefaultPrefix(name),
	}
	st.pipeline = &retrieve.Pipeline{
		Reader:   r,
		Registry: s.registry,
		Sink:     s.sink,
		Prefix: func() string {
			s.mu.Lock()
			defer s.mu.Unlock()
			return st.prefix
		},
		Timeout: s.timeout,
		Log:     s.log,
	}
	return st, nil
}

// Reset discards the loaded archive and all derived state.
func (s *Session) Reset() {
	s.mu.Lock()
	prev := s.cur
	s.cur = nil
	s.dropPreviewLocked()
	s.mu.Unlock()
	s.retire(prev)
}

// retire closes the reader of a state that is no longer current once every
// retrieval started against it has returned. The caller must already have
// unpublished st, so no new retrieval can join.
func (s *Session) retire(st *state) {
	if st == nil {
		return
	}
	go func() {
		st.inflight.Wait()
		if err := st.reader.Close(); err != nil {
			s.log.Debug("archive close failed", zap.String("name", st.name), zap.Error(err))
		}
	}()
}

// acquire pins the current state for one retrieval; release it with
// st.inflight.Done().
func (s *Session) acquire() (*state, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return nil, model.ErrNoArchive
	}
	s.cur.inflight.Add(1)
	return s.cur, nil
}

// Loading reports whether a Load call is in flight.
func (s *Session) Loading() bool { return s.loading.Load() }

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.cur
	if st == nil {
		return Snapshot{Entries: []model.Entry{}, Selected: []string{}, Expanded: map[string]bool{}}
	}
	entries := make([]model.Entry, len(st.entries))
	copy(entries, st.entries)
	var preview *model.PreviewResult
	if s.preview != nil {
		p := *s.preview
		preview = &p
	}
	return Snapshot{
		Loaded:   true,
		Name:     st.name,
		Format:   st.reader.Format(),
		Entries:  entries,
		Tree:     st.tree,
		Rows:     pathtree.Visible(st.tree),
		Selected: st.tracker.Selected(),
		Expanded: st.tracker.Expanded(),
		Prefix:   st.prefix,
		Preview:  preview,
	}
}

func (s *Session) Tree() *pathtree.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return nil
	}
	return s.cur.tree
}

// Paths returns the file entry paths in ascending order.
func (s *Session) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return nil
	}
	out := make([]string, len(s.cur.paths))
	copy(out, s.cur.paths)
	return out
}

func (s *Session) Prefix() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return ""
	}
	return s.cur.prefix
}

// SetPrefix changes the prefix used by subsequent exports.
func (s *Session) SetPrefix(prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return model.ErrNoArchive
	}
	s.cur.prefix = prefix
	return nil
}

func (s *Session) withState(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return model.ErrNoArchive
	}
	return fn(s.cur)
}

func (s *Session) ToggleSelect(path string) error {
	err := s.withState(func(st *state) error { return st.tracker.ToggleSelect(path) })
	if err != nil {
		s.log.Debug("select rejected", zap.String("path", path), zap.Error(err))
	}
	return err
}

// ToggleExpand flips a directory open or closed and rebuilds the tree.
func (s *Session) ToggleExpand(path string) error {
	return s.withState(func(st *state) error {
		if err := st.tracker.ToggleExpand(path); err != nil {
			s.log.Debug("expand rejected", zap.String("path", path), zap.Error(err))
			return err
		}
		return st.rebuild()
	})
}

// SetExpanded opens or closes a directory and rebuilds the tree.
func (s *Session) SetExpanded(path string, open bool) error {
	return s.withState(func(st *state) error {
		if err := st.tracker.SetExpanded(path, open); err != nil {
			return err
		}
		return st.rebuild()
	})
}

// ExpandAll opens every directory.
func (s *Session) ExpandAll() error {
	return s.withState(func(st *state) error {
		for p := range pathtree.ExpandAll(st.tree) {
			if err := st.tracker.SetExpanded(p, true); err != nil {
				return err
			}
		}
		return st.rebuild()
	})
}

func (st *state) rebuild() error {
	tree, err := pathtree.Build(st.paths, st.tracker.Expanded())
	if err != nil {
		return err
	}
	st.tree = tree
	return nil
}

func (s *Session) SelectAll() error {
	return s.withState(func(st *state) error {
		st.tracker.SelectAll()
		return nil
	})
}

func (s *Session) ClearSelection() error {
	return s.withState(func(st *state) error {
		st.tracker.ClearSelection()
		return nil
	})
}
