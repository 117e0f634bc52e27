// Package sink receives exported archive entries.
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var ErrInsecureName = errors.New("sink: insecure file name")

// Sink stores one named payload and returns where it ended up.
type Sink interface {
	Save(ctx context.Context, name string, r io.Reader, size int64) (string, error)
}

// DirSink writes files into Dir. Unless Overwrite is set, an existing file is
// kept and the new one gets a " (n)" suffix, the way browsers name repeated
// downloads.
type DirSink struct {
	Dir       string
	Overwrite bool
}

func (s DirSink) Save(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	f, err := os.CreateTemp(dir, ".zipex-*.part")
	if err != nil {
		return "", err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := io.Copy(f, ctxReader{ctx: ctx, r: r}); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	_ = os.Chmod(tmp, 0o644)

	dest := filepath.Join(dir, name)
	if !s.Overwrite {
		dest, err = uniquePath(dest)
		if err != nil {
			return "", err
		}
	}
	if err := os.Rename(tmp, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// ValidateName rejects names that would escape the destination directory.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInsecureName, name)
	case strings.ContainsAny(name, `/\`), strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q", ErrInsecureName, name)
	}
	return nil
}

func uniquePath(p string) (string, error) {
	if _, err := os.Lstat(p); errors.Is(err, os.ErrNotExist) {
		return p, nil
	} else if err != nil {
		return "", err
	}
	ext := filepath.Ext(p)
	stem := strings.TrimSuffix(p, ext)
	for i := 1; i < 10000; i++ {
		cand := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if _, err := os.Lstat(cand); errors.Is(err, os.ErrNotExist) {
			return cand, nil
		} else if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("sink: no free name for %s", p)
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// Saved is one payload recorded by a MemorySink.
type Saved struct {
	Name string
	Data []byte
}

// MemorySink keeps payloads in memory, in call order.
type MemorySink struct {
	mu    sync.Mutex
	saved []Saved
	// Fail, when set, makes Save return an error for the given name.
	Fail func(name string) error
}

func (s *MemorySink) Save(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	if s.Fail != nil {
		if err := s.Fail(name); err != nil {
			return "", err
		}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, ctxReader{ctx: ctx, r: r}); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.saved = append(s.saved, Saved{Name: name, Data: buf.Bytes()})
	s.mu.Unlock()
	return "mem:" + name, nil
}

func (s *MemorySink) Saved() []Saved {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Saved, len(s.saved))
	copy(out, s.saved)
	return out
}
