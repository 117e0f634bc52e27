package archive

import (
	"bytes"
	"io"

	"github.com/bodgit/sevenzip"
)

type sevenZipReader struct {
	files   map[string]*sevenzip.File
	entries map[string]EntryMeta
}

func openSevenZip(raw []byte) (*sevenZipReader, error) {
	sr, err := sevenzip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, err
	}
	r := &sevenZipReader{
		files:   make(map[string]*sevenzip.File, len(sr.File)),
		entries: make(map[string]EntryMeta, len(sr.File)),
	}
	for _, f := range sr.File {
		name := cleanName(f.Name)
		if name == "" {
			continue
		}
		isDir := f.FileInfo().IsDir()
		if isDir && name[len(name)-1] != '/' {
			name += "/"
		}
		if _, ok := r.files[name]; ok {
			continue
		}
		r.files[name] = f
		r.entries[name] = EntryMeta{
			IsDir:    isDir,
			Size:     int64(f.UncompressedSize), //nolint:gosec // sizes fit in int64
			Modified: f.Modified,
		}
	}
	return r, nil
}

func (r *sevenZipReader) Format() Format { return Format7z }

func (r *sevenZipReader) Entries() map[string]EntryMeta { return cloneEntries(r.entries) }

func (r *sevenZipReader) Entry(path string) (Entry, bool) {
	f, ok := r.files[path]
	if !ok || r.entries[path].IsDir {
		return nil, false
	}
	return openerEntry{
		open: func() (io.ReadCloser, error) { return f.Open() },
		size: r.entries[path].Size,
	}, true
}

func (r *sevenZipReader) Close() error { return nil }
