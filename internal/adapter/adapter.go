package adapter

import (
	"context"
	"io"

	"github.com/eisonai/devkit/internal/domain"
)

// Adapter is a read-only view of a directory tree.
// All paths are slash separated and relative to the adapter's root;
// implementations return domain-level errors for consistent handling.
type Adapter interface {
	// List returns the direct children of path, sorted by name.
	// Symlinks are reported as FileTypeSymlink and never followed.
	// Returns domain.ErrNotFound if path doesn't exist
	// Returns domain.ErrNotDirectory if path is a file
	List(ctx context.Context, path string) ([]domain.FileInfo, error)

	// Read opens a file for reading
	// Caller is responsible for closing the reader
	// Returns domain.ErrNotFound if file doesn't exist
	// Returns domain.ErrNotFile if path is a directory
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Stat returns metadata for a single path without following symlinks
	// Returns domain.ErrNotFound if path doesn't exist
	Stat(ctx context.Context, path string) (domain.FileInfo, error)

	// Root returns the display form of the tree root
	Root() string

	// Close releases any resources held by the adapter
	Close() error
}
