package tui

import (
	"time"

	"zipex-cli/internal/model"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalEditPrefix
	modalPickArchive
)

const minibufferAutoClearAfter = 4 * time.Second

type minibufferTickMsg struct{}

type loadDoneMsg struct {
	path string
	err  error
}

type previewDoneMsg struct {
	path string
	res  *model.PreviewResult
	err  error
}

type downloadDoneMsg struct {
	// single is set for a focused-entry download.
	single  bool
	results []model.BatchResult
	err     error
}
