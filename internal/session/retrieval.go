package session

import (
	"context"

	"zipex-cli/internal/handles"
	"zipex-cli/internal/model"
	"zipex-cli/internal/retrieve"

	"go.uber.org/zap"
)

// Preview materializes path as the current preview. Entries without a
// preview kind are ignored. When a newer Preview, DismissPreview or Load
// happens while this call is materializing, its result is released and
// model.ErrPreviewSuperseded is returned. Errors leave the current preview
// as it was.
func (s *Session) Preview(ctx context.Context, path string) (*model.PreviewResult, error) {
	if retrieve.Classify(path) == model.KindNone {
		return nil, s.withState(func(*state) error { return nil })
	}

	s.mu.Lock()
	st := s.cur
	if st == nil {
		s.mu.Unlock()
		return nil, model.ErrNoArchive
	}
	st.inflight.Add(1)
	s.previewSeq++
	seq := s.previewSeq
	s.mu.Unlock()

	got, err := st.pipeline.Retrieve(ctx, path, model.IntentPreview)
	st.inflight.Done()
	res := got.Preview

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.previewSeq {
		if res != nil {
			s.registry.Revoke(handles.Handle(res.Handle))
		}
		s.log.Debug("stale preview discarded", zap.String("path", path))
		return nil, model.ErrPreviewSuperseded
	}
	if err != nil {
		s.log.Debug("preview failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	if s.preview != nil {
		s.registry.Revoke(handles.Handle(s.preview.Handle))
	}
	s.preview = res
	cp := *res
	return &cp, nil
}

// DismissPreview releases the current preview and discards any preview
// still materializing.
func (s *Session) DismissPreview() {
	s.mu.Lock()
	s.dropPreviewLocked()
	s.mu.Unlock()
}

func (s *Session) dropPreviewLocked() {
	if s.preview != nil {
		s.registry.Revoke(handles.Handle(s.preview.Handle))
		s.preview = nil
	}
	s.previewSeq++
}

func (s *Session) CurrentPreview() *model.PreviewResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preview == nil {
		return nil
	}
	out := *s.preview
	return &out
}

// PreviewImage returns the bytes behind the current image preview.
func (s *Session) PreviewImage() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preview == nil || s.preview.Kind != model.KindImage {
		return nil, false
	}
	return s.registry.Open(handles.Handle(s.preview.Handle))
}


// Download exports a single entry and returns its result.
func (s *Session) Download(ctx context.Context, path string) model.BatchResult {
	res := model.BatchResult{Path: path}
	st, err := s.acquire()
	if err == nil {
		var out retrieve.Outcome
		out, err = st.pipeline.Retrieve(ctx, path, model.IntentDownload)
		st.inflight.Done()
		res.Name, res.Location = out.Name, out.Location
	}
	if err != nil {
		res.Err = err
		res.Error = err.Error()
	}
	return res
}

// DownloadSelected exports the selected entries sequentially in ascending
// path order.
func (s *Session) DownloadSelected(ctx context.Context) ([]model.BatchResult, error) {
	s.mu.Lock()
	st := s.cur
	if st == nil {
		s.mu.Unlock()
		return nil, model.ErrNoArchive
	}
	paths := st.tracker.Selected()
	st.inflight.Add(1)
	s.mu.Unlock()
	defer st.inflight.Done()
	return st.pipeline.DownloadBatch(ctx, paths), nil
}

// DownloadPaths exports an explicit list of entries with the same ordering
// guarantees as DownloadSelected.
func (s *Session) DownloadPaths(ctx context.Context, paths []string) ([]model.BatchResult, error) {
	st, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer st.inflight.Done()
	return st.pipeline.DownloadBatch(ctx, paths), nil
}
