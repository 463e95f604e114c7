// Package source reads documents from a filesystem and parses them into
// document values.
package source

import (
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/sage/internal/document"
)

// Source is the file collaborator: byte access plus format-aware parsing.
type Source struct {
	fs  billy.Filesystem
	abs bool // resolve relative paths against the working directory
}

// New wraps an existing billy filesystem (memfs in tests).
func New(fs billy.Filesystem) *Source {
	return &Source{fs: fs}
}

// NewOS returns a Source over the host filesystem rooted at "/", so
// absolute and relative paths both resolve as the OS would.
func NewOS() *Source {
	return &Source{fs: osfs.New("/"), abs: true}
}

func (s *Source) resolve(path string) string {
	if !s.abs || filepath.IsAbs(path) {
		return path
	}
	if p, err := filepath.Abs(path); err == nil {
		return p
	}
	return path
}

// Read returns the raw bytes at path.
func (s *Source) Read(path string) ([]byte, error) {
	info, err := s.fs.Stat(s.resolve(path))
	if err != nil {
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &IOError{Op: "read", Path: path, Err: errIsDir}
	}
	data, err := util.ReadFile(s.fs, s.resolve(path))
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// Exists reports whether path resolves to anything.
func (s *Source) Exists(path string) bool {
	_, err := s.fs.Stat(s.resolve(path))
	return err == nil
}

// IsFile reports whether path is a regular file.
func (s *Source) IsFile(path string) bool {
	info, err := s.fs.Stat(s.resolve(path))
	return err == nil && info.Mode().IsRegular()
}

// IsDir reports whether path is a directory.
func (s *Source) IsDir(path string) bool {
	info, err := s.fs.Stat(s.resolve(path))
	return err == nil && info.IsDir()
}

// Load reads path and parses it with the parser registered for its
// extension. Failures are *IOError or *document.ParseError.
func (s *Source) Load(path string) (*document.Value, error) {
	data, err := s.Read(path)
	if err != nil {
		return nil, err
	}
	return document.Parse(path, data)
}
