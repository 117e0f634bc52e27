package model

import "time"

type Intent string

const (
	IntentPreview  Intent = "preview"
	IntentDownload Intent = "download"
)

type PreviewKind string

const (
	KindNone  PreviewKind = ""
	KindImage PreviewKind = "image"
	KindJSON  PreviewKind = "json"
)

// Entry is one file record as exposed to the presentation layer.
type Entry struct {
	Path        string      `json:"path"`
	Size        int64       `json:"size"`
	Modified    time.Time   `json:"modified,omitempty"`
	PreviewKind PreviewKind `json:"previewKind,omitempty"`
}

type PreviewResult struct {
	EntryPath string      `json:"entryPath"`
	Kind      PreviewKind `json:"kind"`
	// Handle references image bytes in a handles.Registry. Empty for json.
	Handle string `json:"handle,omitempty"`
	// Text is the validated JSON document. Empty for images.
	Text string `json:"text,omitempty"`
}

type BatchResult struct {
	Path     string `json:"path"`
	Name     string `json:"name,omitempty"`
	Location string `json:"location,omitempty"`
	Err      error  `json:"-"`
	Error    string `json:"error,omitempty"`
}

func (r BatchResult) OK() bool { return r.Err == nil }
