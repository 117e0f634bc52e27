package retrieve

import (
	"path"
	"strings"

	"zipex-cli/internal/model"
	"zipex-cli/internal/pathtree"
)

var imageMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Classify returns the preview kind implied by the extension of the final
// path segment, ignoring case.
func Classify(p string) model.PreviewKind {
	ext := strings.ToLower(path.Ext(pathtree.FinalSegment(p)))
	if _, ok := imageMIME[ext]; ok {
		return model.KindImage
	}
	if ext == ".json" {
		return model.KindJSON
	}
	return model.KindNone
}

// MIMEType returns the media type used when registering preview handles.
func MIMEType(p string) string {
	ext := strings.ToLower(path.Ext(pathtree.FinalSegment(p)))
	if m, ok := imageMIME[ext]; ok {
		return m
	}
	if ext == ".json" {
		return "application/json"
	}
	return "application/octet-stream"
}

// ExportName is the file name an entry is exported under: the prefix followed
// by the final path segment only.
func ExportName(prefix, p string) string {
	return prefix + pathtree.FinalSegment(p)
}
