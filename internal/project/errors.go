package project

import (
	"errors"
	"fmt"
)

// Resolution failure causes.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrIO               = errors.New("i/o error")
)

// ErrIsDirectory is returned when a directory is opened as a model.
var ErrIsDirectory = errors.New("is a directory")

// ResolutionError reports a locator that could not be mapped into the project.
type ResolutionError struct {
	Locator string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %q: %v", e.Locator, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// LoadError reports a project path whose content could not be loaded.
type LoadError struct {
	Path Path
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
