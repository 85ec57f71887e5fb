package scan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eisonai/devkit/internal/adapter/local"
	"github.com/eisonai/devkit/internal/core/checksum"
	"github.com/eisonai/devkit/internal/domain"
	"github.com/eisonai/devkit/internal/progress"
	"github.com/eisonai/devkit/internal/testutil"
)

func newScanner(t *testing.T, chunkSize int, ignore ...string) *Scanner {
	t.Helper()
	s, err := New(checksum.NewCalculator(checksum.Options{ChunkSize: chunkSize}), Options{
		Algorithm: checksum.SHA256,
		Ignore:    ignore,
	})
	require.NoError(t, err)
	return s
}

func paths(tree *Tree) []string {
	out := make([]string, 0, len(tree.Files))
	for _, f := range tree.Files {
		out = append(out, f.Path)
	}
	return out
}

func TestScan_DiscoveryOrderAndTotals(t *testing.T) {
	fs := testutil.MemTree(t, map[string]string{
		"b.txt":        "bb",
		"a/z.txt":      "zzz",
		"a/deep/y.txt": "y",
		"c/empty.txt":  "",
		"a/deep/x.bin": "xxxxxxxx",
		"readme.md":    "hello",
	})

	tree, err := newScanner(t, 4).Scan(context.Background(), local.NewWithFilesystem(fs, "mem"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a/deep/x.bin",
		"a/deep/y.txt",
		"a/z.txt",
		"b.txt",
		"c/empty.txt",
		"readme.md",
	}, paths(tree))
	assert.Equal(t, int64(8+1+3+2+0+5), tree.TotalBytes)
	assert.Equal(t, "mem", tree.Root)
}

func TestScan_RecordInvariants(t *testing.T) {
	fs := testutil.MemTree(t, map[string]string{
		"empty":  "",
		"chunky": "abcdefghij",
	})

	tree, err := newScanner(t, 4).Scan(context.Background(), local.NewWithFilesystem(fs, "mem"))
	require.NoError(t, err)
	require.Len(t, tree.Files, 2)

	chunky, empty := tree.Files[0], tree.Files[1]
	require.Equal(t, "chunky", chunky.Path)
	assert.Len(t, chunky.ChunkDigests, 3)
	assert.Equal(t, int64(10), chunky.Size)

	emptySum := sha256.Sum256(nil)
	assert.Equal(t, hex.EncodeToString(emptySum[:]), empty.Digest)
	assert.Empty(t, empty.ChunkDigests)
	assert.Zero(t, empty.Size)
}

func TestScan_IgnorePatterns(t *testing.T) {
	fs := testutil.MemTree(t, map[string]string{
		".DS_Store":         "root",
		"sub/.DS_Store":     "nested",
		"sub/keep.txt":      "keep",
		"logs/run.log":      "log",
		"logs/deep/run.log": "log",
		"data/a1.bin":       "1",
		"data/b1.bin":       "2",
	})

	s := newScanner(t, 1024, "**/.DS_Store", "*.log", "data/[!a]*")
	tree, err := s.Scan(context.Background(), local.NewWithFilesystem(fs, "mem"))
	require.NoError(t, err)

	// "**/.DS_Store" needs a directory component, so the root one stays
	assert.Equal(t, []string{".DS_Store", "data/a1.bin", "sub/keep.txt"}, paths(tree))
}

func TestScan_IgnoreMatchesWholeRelativePath(t *testing.T) {
	fs := testutil.MemTree(t, map[string]string{
		".DS_Store":     "root",
		"sub/.DS_Store": "nested",
		"sub/keep.txt":  "keep",
	})

	// a bare name is not matched against the base name of nested files
	tree, err := newScanner(t, 1024, ".DS_Store").Scan(context.Background(), local.NewWithFilesystem(fs, "mem"))
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/.DS_Store", "sub/keep.txt"}, paths(tree))

	tree, err = newScanner(t, 1024, "*.DS_Store").Scan(context.Background(), local.NewWithFilesystem(fs, "mem"))
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/keep.txt"}, paths(tree))
}

func TestScan_SkipsSymlinks(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"real.txt":       "data",
		"other/file.txt": "other",
	})
	if err := os.Symlink(filepath.Join(dir, "real.txt"), filepath.Join(dir, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(dir, "other"), filepath.Join(dir, "linkdir")))

	adp, err := local.New(dir)
	require.NoError(t, err)

	tree, err := newScanner(t, 1024).Scan(context.Background(), adp)
	require.NoError(t, err)
	assert.Equal(t, []string{"other/file.txt", "real.txt"}, paths(tree))
}

func TestScan_ReportsProgress(t *testing.T) {
	fs := testutil.MemTree(t, map[string]string{"a": "123", "b": "45"})

	var completed []string
	reporter := progress.NewCallbackReporter(func(u progress.Update) {
		if u.Type == progress.UpdateComplete {
			completed = append(completed, u.Name)
		}
	})
	s, err := New(checksum.NewDefaultCalculator(), Options{Reporter: reporter})
	require.NoError(t, err)

	_, err = s.Scan(context.Background(), local.NewWithFilesystem(fs, "mem"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, completed)
}

func TestScan_Cancelled(t *testing.T) {
	fs := testutil.MemTree(t, map[string]string{"a": "1"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newScanner(t, 4).Scan(ctx, local.NewWithFilesystem(fs, "mem"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	_, err := New(checksum.NewDefaultCalculator(), Options{Algorithm: "crc32"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedAlgorithm)

	_, err = New(checksum.NewDefaultCalculator(), Options{Ignore: []string{"a[b-a]"}})
	assert.ErrorIs(t, err, domain.ErrInvalidPattern)
}
