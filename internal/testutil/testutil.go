package testutil

import (
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

// CreateTestFile creates a test file with the given content.
// name is slash separated; parent directories are created as needed.
func CreateTestFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()

	p := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(p, content, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	return p
}

// WriteTree creates every file of files (path -> content) under dir
func WriteTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		CreateTestFile(t, dir, name, []byte(content))
	}
}

// MemTree returns an in-memory filesystem holding files (path -> content)
func MemTree(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()

	fs := memfs.New()
	for name, content := range files {
		if err := util.WriteFile(fs, path.Join("/", name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return fs
}

// RandomString generates a random string of the given length
func RandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
