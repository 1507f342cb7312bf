package project

import (
	"sync"
)

// identity is the shared entry bookkeeping for file-backed models.
type identity struct {
	path     Path
	entry    EntryID
	hasEntry bool
}

func (i identity) EntryID() (EntryID, bool) {
	return i.entry, i.hasEntry
}

// Path returns the project path the model was loaded from. Untitled models
// return the zero Path.
func (i identity) Path() Path {
	return i.path
}

// Buffer is editable text content.
type Buffer struct {
	identity

	mu      sync.RWMutex
	text    string
	saved   string
	charset string
}

// NewBuffer creates a buffer for an entry on disk.
func NewBuffer(p Path, entry EntryID, text, charset string) *Buffer {
	return &Buffer{
		identity: identity{path: p, entry: entry, hasEntry: true},
		text:     text,
		saved:    text,
		charset:  charset,
	}
}

// NewUntitledBuffer creates a buffer with no backing entry. Untitled buffers
// are never deduplicated against each other.
func NewUntitledBuffer(text string) *Buffer {
	return &Buffer{text: text, saved: text, charset: "UTF-8"}
}

// Text returns the current contents.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// SavedText returns the contents as last loaded from disk.
func (b *Buffer) SavedText() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.saved
}

// SetText replaces the current contents.
func (b *Buffer) SetText(text string) {
	b.mu.Lock()
	b.text = text
	b.mu.Unlock()
}

// Reload replaces both the current and saved contents, discarding edits.
func (b *Buffer) Reload(text string) {
	b.mu.Lock()
	b.text = text
	b.saved = text
	b.mu.Unlock()
}

// Dirty reports whether the contents differ from disk.
func (b *Buffer) Dirty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text != b.saved
}

// Charset returns the detected character set name.
func (b *Buffer) Charset() string {
	return b.charset
}

// Document is markdown source shown as rendered prose.
type Document struct {
	identity
	source string
}

// NewDocument creates a markdown document model.
func NewDocument(p Path, entry EntryID, source string) *Document {
	return &Document{
		identity: identity{path: p, entry: entry, hasEntry: true},
		source:   source,
	}
}

// Source returns the raw markdown.
func (d *Document) Source() string {
	return d.source
}

// Blob is opaque binary content.
type Blob struct {
	identity
	data     []byte
	mimeType string
}

// NewBlob creates a binary model.
func NewBlob(p Path, entry EntryID, data []byte, mimeType string) *Blob {
	return &Blob{
		identity: identity{path: p, entry: entry, hasEntry: true},
		data:     data,
		mimeType: mimeType,
	}
}

// Bytes returns the raw content. Callers must not modify it.
func (b *Blob) Bytes() []byte {
	return b.data
}

// MimeType returns the detected MIME type.
func (b *Blob) MimeType() string {
	return b.mimeType
}

// Size returns the content length in bytes.
func (b *Blob) Size() int {
	return len(b.data)
}
