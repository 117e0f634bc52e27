// Package retrieve materializes archive entries for preview or export.
package retrieve

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"zipex-cli/internal/archive"
	"zipex-cli/internal/handles"
	"zipex-cli/internal/model"
	"zipex-cli/internal/sink"

	"go.uber.org/zap"
)

type Pipeline struct {
	Reader   archive.Reader
	Registry *handles.Registry
	Sink     sink.Sink
	// Prefix is read at the moment each export is named.
	Prefix func() string
	// Timeout bounds each single preview or export; zero means no limit.
	Timeout time.Duration
	Log     *zap.Logger
}

func (p *Pipeline) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.Timeout)
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}

func (p *Pipeline) lookup(path string) (archive.Entry, error) {
	if p.Reader == nil {
		return nil, model.ErrNoArchive
	}
	e, ok := p.Reader.Entry(path)
	if !ok {
		return nil, model.EntryNotFoundError{Path: path}
	}
	return e, nil
}

// Outcome is what a single Retrieve produced: a preview, or the name and
// location of an export.
type Outcome struct {
	Preview  *model.PreviewResult
	Name     string
	Location string
}

// Retrieve dispatches on intent.
func (p *Pipeline) Retrieve(ctx context.Context, path string, intent model.Intent) (Outcome, error) {
	switch intent {
	case model.IntentPreview:
		res, err := p.Preview(ctx, path)
		return Outcome{Preview: res}, err
	case model.IntentDownload:
		name, loc, err := p.Download(ctx, path)
		return Outcome{Name: name, Location: loc}, err
	default:
		return Outcome{}, model.InvalidOperationError{Op: string(intent), Path: path, Reason: "unknown intent"}
	}
}

// Preview materializes a previewable entry. Entries without a preview kind
// return (nil, nil) without touching the reader. For images the caller owns
// the returned handle and must revoke it.
func (p *Pipeline) Preview(ctx context.Context, path string) (*model.PreviewResult, error) {
	kind := Classify(path)
	if kind == model.KindNone {
		return nil, nil
	}
	e, err := p.lookup(path)
	if err != nil {
		return nil, err
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	switch kind {
	case model.KindImage:
		b, err := e.Bytes(ctx)
		if err != nil {
			return nil, err
		}
		h := p.Registry.Create(b, MIMEType(path))
		p.logger().Debug("image preview materialized",
			zap.String("path", path), zap.Int("bytes", len(b)), zap.String("handle", string(h)))
		return &model.PreviewResult{EntryPath: path, Kind: kind, Handle: string(h)}, nil
	default:
		txt, err := e.Text(ctx)
		if err != nil {
			return nil, err
		}
		var v any
		if err := json.Unmarshal([]byte(txt), &v); err != nil {
			return nil, model.MalformedContentError{Path: path, Err: err}
		}
		return &model.PreviewResult{EntryPath: path, Kind: kind, Text: txt}, nil
	}
}

// Download exports one entry through the sink. The entry blob is closed on
// every return path.
func (p *Pipeline) Download(ctx context.Context, path string) (name, location string, err error) {
	e, err := p.lookup(path)
	if err != nil {
		return "", "", err
	}
	prefix := ""
	if p.Prefix != nil {
		prefix = p.Prefix()
	}
	name = ExportName(prefix, path)

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	blob, err := e.Blob(ctx)
	if err != nil {
		return name, "", err
	}
	defer func() {
		if cerr := blob.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	location, err = p.Sink.Save(ctx, name, blob, blob.Size())
	if err != nil {
		p.logger().Warn("export failed", zap.String("path", path), zap.String("name", name), zap.Error(err))
		return name, "", err
	}
	p.logger().Info("exported entry", zap.String("path", path), zap.String("location", location))
	return name, location, nil
}

// DownloadBatch exports paths one at a time in ascending order. A failure is
// recorded for its path and the batch moves on.
func (p *Pipeline) DownloadBatch(ctx context.Context, paths []string) []model.BatchResult {
	ordered := make([]string, len(paths))
	copy(ordered, paths)
	sort.Strings(ordered)

	out := make([]model.BatchResult, 0, len(ordered))
	for _, path := range ordered {
		res := model.BatchResult{Path: path}
		if err := ctx.Err(); err != nil {
			res.Err = err
		} else {
			res.Name, res.Location, res.Err = p.Download(ctx, path)
		}
		if res.Err != nil {
			res.Error = res.Err.Error()
		}
		out = append(out, res)
	}
	return out
}

// Pretty re-indents a validated JSON preview with two spaces.
func Pretty(res *model.PreviewResult) (string, error) {
	if res == nil || res.Kind != model.KindJSON {
		return "", errors.New("not a json preview")
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(res.Text), "", "  "); err != nil {
		return "", model.MalformedContentError{Path: res.EntryPath, Err: err}
	}
	return buf.String(), nil
}
