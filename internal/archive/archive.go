// Package archive opens compressed archives held in memory and exposes their
// entries through a format-independent Reader.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"zipex-cli/internal/model"
)

type Format string

const (
	FormatZip     Format = "zip"
	Format7z      Format = "7z"
	FormatTar     Format = "tar"
	FormatTarGzip Format = "tar.gz"
	FormatTarZstd Format = "tar.zst"
	FormatTarLZ4  Format = "tar.lz4"
)

var (
	ErrUnknownFormat = errors.New("archive: unrecognized format")
	ErrEmpty         = errors.New("archive: no data")
)

// EntryMeta describes one record of an archive.
type EntryMeta struct {
	IsDir    bool
	Size     int64
	Modified time.Time
}

// Reader is a parsed archive.
type Reader interface {
	Format() Format
	// Entries maps entry path to metadata. Directory records keep their
	// trailing slash the way the archive stores them.
	Entries() map[string]EntryMeta
	Entry(path string) (Entry, bool)
	Close() error
}

// Entry materializes the content of a single archive record.
type Entry interface {
	Bytes(ctx context.Context) ([]byte, error)
	Text(ctx context.Context) (string, error)
	Blob(ctx context.Context) (Blob, error)
}

// Blob is a lazily-read view of an entry's bytes. Callers must Close it.
type Blob interface {
	io.ReadCloser
	Size() int64
}

// OpenFunc matches Open; sessions accept one to allow fakes in tests.
type OpenFunc func(ctx context.Context, name string, raw []byte) (Reader, error)

// Open detects the archive format from raw and returns a Reader over it.
// Failures are reported as model.InvalidArchiveError.
func Open(ctx context.Context, name string, raw []byte) (Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, model.InvalidArchiveError{Name: name, Err: ErrEmpty}
	}
	f := Detect(name, raw)
	var (
		r   Reader
		err error
	)
	switch f {
	case FormatZip:
		r, err = openZip(raw)
	case Format7z:
		r, err = openSevenZip(raw)
	case FormatTar, FormatTarGzip, FormatTarZstd, FormatTarLZ4:
		r, err = openTar(ctx, f, raw)
	default:
		err = ErrUnknownFormat
	}
	if err != nil {
		return nil, model.InvalidArchiveError{Name: name, Err: err}
	}
	return r, nil
}

var (
	magicZip      = []byte("PK\x03\x04")
	magicZipEmpty = []byte("PK\x05\x06")
	magic7z       = []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip     = []byte{0x1f, 0x8b}
	magicZstd     = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicLZ4      = []byte{0x04, 0x22, 0x4d, 0x18}
	magicUstar    = []byte("ustar")
)

// Detect sniffs the format from magic bytes, falling back to the file name.
func Detect(name string, raw []byte) Format {
	switch {
	case bytes.HasPrefix(raw, magicZip), bytes.HasPrefix(raw, magicZipEmpty):
		return FormatZip
	case bytes.HasPrefix(raw, magic7z):
		return Format7z
	case bytes.HasPrefix(raw, magicGzip):
		return FormatTarGzip
	case bytes.HasPrefix(raw, magicZstd):
		return FormatTarZstd
	case bytes.HasPrefix(raw, magicLZ4):
		return FormatTarLZ4
	case len(raw) > 262 && bytes.Equal(raw[257:262], magicUstar):
		return FormatTar
	}
	lower := strings.ToLower(name)
	for _, ext := range knownExtensions {
		if strings.HasSuffix(lower, ext.suffix) {
			return ext.format
		}
	}
	return ""
}

var knownExtensions = []struct {
	suffix string
	format Format
}{
	{".tar.gz", FormatTarGzip},
	{".tgz", FormatTarGzip},
	{".tar.zst", FormatTarZstd},
	{".tzst", FormatTarZstd},
	{".tar.lz4", FormatTarLZ4},
	{".tar", FormatTar},
	{".zip", FormatZip},
	{".7z", Format7z},
}

// cleanName strips leading "./" and "/" so every backend keys the same member
// the same way. A name that is only such prefixes comes back empty.
func cleanName(name string) string {
	for {
		switch {
		case strings.HasPrefix(name, "./"):
			name = name[2:]
		case strings.HasPrefix(name, "/"):
			name = name[1:]
		case name == ".":
			return ""
		default:
			return name
		}
	}
}

// Extensions lists the file name suffixes recognized as archives.
func Extensions() []string {
	out := make([]string, 0, len(knownExtensions))
	for _, ext := range knownExtensions {
		out = append(out, ext.suffix)
	}
	return out
}

// HasKnownExtension reports whether name ends in a recognized archive suffix.
func HasKnownExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range knownExtensions {
		if strings.HasSuffix(lower, ext.suffix) {
			return true
		}
	}
	return false
}

// BaseName strips directories and a known archive extension from name.
func BaseName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	lower := strings.ToLower(base)
	for _, ext := range knownExtensions {
		if strings.HasSuffix(lower, ext.suffix) {
			return base[:len(base)-len(ext.suffix)]
		}
	}
	return base
}

// memEntry serves entries whose bytes are already decompressed in memory.
type memEntry struct {
	data []byte
}

func (e memEntry) Bytes(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, nil
}

func (e memEntry) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return string(e.data), nil
}

func (e memEntry) Blob(ctx context.Context) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &readerBlob{rc: io.NopCloser(bytes.NewReader(e.data)), size: int64(len(e.data))}, nil
}

// openerEntry serves entries that are decompressed on demand.
type openerEntry struct {
	open func() (io.ReadCloser, error)
	size int64
}

func (e openerEntry) Bytes(ctx context.Context) ([]byte, error) {
	b, err := e.Blob(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = b.Close() }()
	return readAllContext(ctx, b, e.size)
}

func (e openerEntry) Text(ctx context.Context) (string, error) {
	b, err := e.Bytes(ctx)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (e openerEntry) Blob(ctx context.Context) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := e.open()
	if err != nil {
		return nil, fmt.Errorf("open entry: %w", err)
	}
	return &readerBlob{rc: rc, size: e.size}, nil
}

type readerBlob struct {
	rc   io.ReadCloser
	size int64
}

func (b *readerBlob) Read(p []byte) (int, error) { return b.rc.Read(p) }
func (b *readerBlob) Close() error               { return b.rc.Close() }
func (b *readerBlob) Size() int64                { return b.size }

const readChunk = 64 << 10

func readAllContext(ctx context.Context, r io.Reader, sizeHint int64) ([]byte, error) {
	var buf bytes.Buffer
	if sizeHint > 0 && sizeHint < 1<<30 {
		buf.Grow(int(sizeHint))
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := io.CopyN(&buf, r, readChunk)
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return buf.Bytes(), nil
		}
	}
}
