package presentation

import (
	"encoding/json"
	"io"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatWorkspace writes a workspace as indented JSON.
func (f *Formatter) FormatWorkspace(ws WorkspaceDTO) error {
	return f.encode(ws)
}

// FormatRegistrations writes registrations as indented JSON.
func (f *Formatter) FormatRegistrations(registrations []RegistrationDTO) error {
	return f.encode(registrations)
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
