package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/eisonai/devkit/internal/domain"
)

// Adapter implements the adapter.Adapter interface on top of a billy filesystem
type Adapter struct {
	fs   billy.Filesystem
	root string
}

// New creates a read-only adapter for a local directory.
// root is resolved to an absolute, symlink-free path and must be an
// existing directory, otherwise a *domain.RootError is returned.
func New(root string) (*Adapter, error) {
	absRoot, err := ResolveRoot(root)
	if err != nil {
		return nil, err
	}
	return &Adapter{fs: osfs.New(absRoot), root: absRoot}, nil
}

// NewWithFilesystem wraps an already rooted filesystem (e.g. memfs in tests).
// name is only used for display.
func NewWithFilesystem(fs billy.Filesystem, name string) *Adapter {
	return &Adapter{fs: fs, root: name}
}

// ResolveRoot returns the absolute form of root after checking that it is
// an existing directory
func ResolveRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", &domain.RootError{Path: root, Err: err}
	}
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &domain.RootError{Path: absRoot, Err: domain.ErrNotFound}
		}
		return "", &domain.RootError{Path: absRoot, Err: err}
	}
	if !info.IsDir() {
		return "", &domain.RootError{Path: absRoot, Err: domain.ErrNotDirectory}
	}
	return absRoot, nil
}

// resolvePath maps a tree-relative path to a filesystem path.
// Paths escaping the root are rejected.
func (a *Adapter) resolvePath(relPath string) (string, error) {
	if relPath == "" || relPath == "." {
		return "/", nil
	}

	relPath = path.Clean(filepath.ToSlash(relPath))
	if path.IsAbs(relPath) || relPath == ".." || strings.HasPrefix(relPath, "../") {
		return "", domain.ErrPermissionDenied
	}
	return "/" + relPath, nil
}

// List returns the direct children of path, sorted by name
func (a *Adapter) List(ctx context.Context, dir string) ([]domain.FileInfo, error) {
	fullPath, err := a.resolvePath(dir)
	if err != nil {
		return nil, err
	}

	info, err := a.fs.Lstat(fullPath)
	if err != nil {
		return nil, a.mapError(err)
	}
	if !info.IsDir() {
		return nil, domain.ErrNotDirectory
	}

	entries, err := a.fs.ReadDir(fullPath)
	if err != nil {
		return nil, a.mapError(err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	result := make([]domain.FileInfo, 0, len(entries))
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		entryPath := entry.Name()
		if dir != "" && dir != "." {
			entryPath = path.Join(filepath.ToSlash(dir), entry.Name())
		}
		result = append(result, fileInfoFromOS(entryPath, entry))
	}

	return result, nil
}

// Read opens a file for reading
func (a *Adapter) Read(ctx context.Context, name string) (io.ReadCloser, error) {
	fullPath, err := a.resolvePath(name)
	if err != nil {
		return nil, err
	}

	info, err := a.fs.Lstat(fullPath)
	if err != nil {
		return nil, a.mapError(err)
	}
	if info.IsDir() {
		return nil, domain.ErrNotFile
	}

	file, err := a.fs.Open(fullPath)
	if err != nil {
		return nil, a.mapError(err)
	}
	return file, nil
}

// Stat returns metadata for a single path
func (a *Adapter) Stat(ctx context.Context, name string) (domain.FileInfo, error) {
	fullPath, err := a.resolvePath(name)
	if err != nil {
		return domain.FileInfo{}, err
	}

	info, err := a.fs.Lstat(fullPath)
	if err != nil {
		return domain.FileInfo{}, a.mapError(err)
	}
	return fileInfoFromOS(strings.TrimPrefix(fullPath, "/"), info), nil
}

// Root returns the root path of this adapter
func (a *Adapter) Root() string {
	return a.root
}

// Close releases any resources (no-op for local adapter)
func (a *Adapter) Close() error {
	return nil
}

// fileInfoFromOS converts os.FileInfo to domain.FileInfo
func fileInfoFromOS(p string, info os.FileInfo) domain.FileInfo {
	mode := info.Mode()
	fileType := domain.FileTypeOther
	switch {
	case mode&os.ModeSymlink != 0:
		fileType = domain.FileTypeSymlink
	case info.IsDir():
		fileType = domain.FileTypeDirectory
	case mode.IsRegular():
		fileType = domain.FileTypeRegular
	}

	size := info.Size()
	if fileType == domain.FileTypeDirectory {
		size = 0
	}

	return domain.FileInfo{
		Path:    p,
		Type:    fileType,
		Size:    size,
		ModTime: info.ModTime(),
	}
}

// mapError converts OS errors to domain errors
func (a *Adapter) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return domain.ErrNotFound
	}
	if errors.Is(err, os.ErrPermission) {
		return domain.ErrPermissionDenied
	}
	return err
}
