package domain

import (
	"path"
	"time"
)

// FileType represents the type of a filesystem entry
type FileType int

const (
	FileTypeRegular FileType = iota
	FileTypeDirectory
	FileTypeSymlink
	FileTypeOther
)

// FileInfo represents metadata about an entry inside a scanned tree
type FileInfo struct {
	// Path is the relative path from the tree root, always slash separated
	Path string

	// Type indicates if this is a file, directory, symlink or something else
	Type FileType

	// Size in bytes (0 for directories)
	Size int64

	// ModTime is the last modification time
	ModTime time.Time
}

// IsDir returns true if this is a directory
func (f FileInfo) IsDir() bool {
	return f.Type == FileTypeDirectory
}

// IsFile returns true if this is a regular file
func (f FileInfo) IsFile() bool {
	return f.Type == FileTypeRegular
}

// FileRecord is the hashed form of one regular file of a scanned tree.
// Records are built once by the scanner and never mutated afterwards.
type FileRecord struct {
	// Path is the POSIX relative path, unique within its tree
	Path string

	// Size in bytes
	Size int64

	// Digest is the hex digest of the whole file content.
	// Present even for empty files (digest of zero bytes).
	Digest string

	// ChunkDigests holds one hex digest per fixed-size window, in file order.
	// Empty only when the file is empty.
	ChunkDigests []string
}

// BaseName returns the last path segment
func (r FileRecord) BaseName() string {
	return path.Base(r.Path)
}
