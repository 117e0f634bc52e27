package archive

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zip"
)

type zipReader struct {
	zr      *zip.Reader
	files   map[string]*zip.File
	entries map[string]EntryMeta
}

func openZip(raw []byte) (*zipReader, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, err
	}
	r := &zipReader{
		zr:      zr,
		files:   make(map[string]*zip.File, len(zr.File)),
		entries: make(map[string]EntryMeta, len(zr.File)),
	}
	for _, f := range zr.File {
		name := cleanName(f.Name)
		if name == "" {
			continue
		}
		// First record wins, matching how the central directory is usually read.
		if _, ok := r.files[name]; ok {
			continue
		}
		r.files[name] = f
		r.entries[name] = EntryMeta{
			IsDir:    f.FileInfo().IsDir(),
			Size:     int64(f.UncompressedSize64), //nolint:gosec // sizes fit in int64
			Modified: f.Modified,
		}
	}
	return r, nil
}

func (r *zipReader) Format() Format { return FormatZip }

func (r *zipReader) Entries() map[string]EntryMeta { return cloneEntries(r.entries) }

func (r *zipReader) Entry(path string) (Entry, bool) {
	f, ok := r.files[path]
	if !ok || f.FileInfo().IsDir() {
		return nil, false
	}
	return openerEntry{
		open: func() (io.ReadCloser, error) { return f.Open() },
		size: int64(f.UncompressedSize64), //nolint:gosec // sizes fit in int64
	}, true
}

func (r *zipReader) Close() error { return nil }

func cloneEntries(in map[string]EntryMeta) map[string]EntryMeta {
	out := make(map[string]EntryMeta, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
