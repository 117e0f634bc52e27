package archive

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// tarReader indexes a whole tar stream up front; tar has no central directory
// so random access needs the decompressed bytes in memory.
type tarReader struct {
	format  Format
	entries map[string]EntryMeta

	mu   sync.RWMutex
	data map[string][]byte
}

func openTar(ctx context.Context, f Format, raw []byte) (*tarReader, error) {
	src, closeSrc, err := decompressor(f, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer closeSrc()

	r := &tarReader{
		format:  f,
		data:    map[string][]byte{},
		entries: map[string]EntryMeta{},
	}
	tr := tar.NewReader(src)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar header: %w", err)
		}
		name := cleanName(hdr.Name)
		if name == "" {
			continue
		}
		if _, ok := r.entries[name]; ok {
			continue
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if !strings.HasSuffix(name, "/") {
				name += "/"
			}
			r.entries[name] = EntryMeta{IsDir: true, Modified: hdr.ModTime}
		case tar.TypeReg, tar.TypeRegA: //nolint:staticcheck // old writers still emit TypeRegA
			b, err := readAllContext(ctx, tr, hdr.Size)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}
			r.data[name] = b
			r.entries[name] = EntryMeta{Size: int64(len(b)), Modified: hdr.ModTime}
		default:
			// Links, devices and fifos carry no content worth browsing.
		}
	}
	return r, nil
}

func decompressor(f Format, r io.Reader) (io.Reader, func(), error) {
	switch f {
	case FormatTarGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { _ = zr.Close() }, nil
	case FormatTarZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case FormatTarLZ4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return r, func() {}, nil
	}
}

func (r *tarReader) Format() Format { return r.format }

func (r *tarReader) Entries() map[string]EntryMeta { return cloneEntries(r.entries) }

func (r *tarReader) Entry(path string) (Entry, bool) {
	r.mu.RLock()
	b, ok := r.data[path]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return memEntry{data: b}, true
}

func (r *tarReader) Close() error {
	r.mu.Lock()
	r.data = nil
	r.mu.Unlock()
	return nil
}
