// Package archive defines the input artifact contracts and the archive
// analyzer interface that per-format back-ends implement.
package archive

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// Archive is one input artifact: a logical name plus an opaque byte source.
type Archive interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// Set groups the archives of one side of the comparison. Supplementary
// archives only resolve references and are not themselves part of the API.
type Set struct {
	Primary       []Archive
	Supplementary []Archive
}

// File is an Archive backed by a file on disk. The logical name is the
// file's base name.
type File struct {
	Path string
}

// Name implements Archive.
func (f File) Name() string { return filepath.Base(f.Path) }

// Open implements Archive.
func (f File) Open() (io.ReadCloser, error) { return os.Open(f.Path) }

// Memory is an in-memory Archive, used by tests and embedded inputs.
type Memory struct {
	Label string
	Data  []byte
}

// Name implements Archive.
func (m Memory) Name() string { return m.Label }

// Open implements Archive.
func (m Memory) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.Data)), nil
}
