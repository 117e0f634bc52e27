package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	Path        string   `json:"path"`
	Size        int64    `json:"size"`
	PreviewKind string   `json:"previewKind,omitempty"`
	Tags        []string `json:"tags"`
	Extra       *string  `json:"extra"`
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample{Path: "a/<b>.txt", Size: 3, Tags: []string{}}, "", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := `{"path":"a/<b>.txt","size":3,"tags":[],"extra":null}` + "\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}

func TestWrite_EDN(t *testing.T) {
	tests := []struct {
		name   string
		v      any
		pretty bool
		want   string
	}{
		{
			name: "compact struct",
			v:    sample{Path: "x.json", Size: 9007199254740993, PreviewKind: "json", Tags: []string{"a", "b"}},
			want: `{:extra nil :path "x.json" :preview-kind "json" :size 9007199254740993 :tags ["a" "b"]}` + "\n",
		},
		{
			name:   "pretty nested",
			v:      map[string]any{"ok": true, "items": []any{1, map[string]any{}}},
			pretty: true,
			want:   "{\n  :items [\n    1\n    {}\n  ]\n  :ok true\n}\n",
		},
		{
			name: "empty vector",
			v:    []string{},
			want: "[]\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, tt.v, "edn", tt.pretty); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if buf.String() != tt.want {
				t.Fatalf("got %q want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, 1, "yaml", false)
	if err == nil || !strings.Contains(err.Error(), "json|edn") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

func TestKeyword(t *testing.T) {
	for in, want := range map[string]string{
		"path":        "path",
		"previewKind": "preview-kind",
		"isDirectory": "is-directory",
		"out dir":     "out-dir",
	} {
		if got := Keyword(in); got != want {
			t.Fatalf("Keyword(%q)=%q want %q", in, got, want)
		}
	}
}
