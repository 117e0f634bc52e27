package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArchive    = errors.New("invalid archive")
	ErrEntryNotFound     = errors.New("entry not found")
	ErrMalformedContent  = errors.New("malformed content")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrMalformedPath     = errors.New("malformed path")
	ErrLoadInProgress    = errors.New("an archive is already loading")
	ErrNoArchive         = errors.New("no archive loaded")
	ErrPreviewSuperseded = errors.New("preview superseded by a newer request")
)

type InvalidArchiveError struct {
	Name string
	Err  error
}

func (e InvalidArchiveError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s could not be loaded as an archive", e.Name)
	}
	return fmt.Sprintf("%s could not be loaded as an archive: %v", e.Name, e.Err)
}

func (e InvalidArchiveError) Unwrap() []error { return []error{ErrInvalidArchive, e.Err} }

type EntryNotFoundError struct {
	Path string
}

func (e EntryNotFoundError) Error() string {
	return fmt.Sprintf("entry not found: %s", e.Path)
}

func (e EntryNotFoundError) Is(target error) bool { return target == ErrEntryNotFound }

type MalformedContentError struct {
	Path string
	Err  error
}

func (e MalformedContentError) Error() string {
	return fmt.Sprintf("invalid JSON in %s: %v", e.Path, e.Err)
}

func (e MalformedContentError) Unwrap() []error { return []error{ErrMalformedContent, e.Err} }

type InvalidOperationError struct {
	Op     string
	Path   string
	Reason string
}

func (e InvalidOperationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Reason)
}

func (e InvalidOperationError) Is(target error) bool { return target == ErrInvalidOperation }

type MalformedPathError struct {
	Path string
}

func (e MalformedPathError) Error() string {
	return fmt.Sprintf("malformed entry path: %q", e.Path)
}

func (e MalformedPathError) Is(target error) bool { return target == ErrMalformedPath }
