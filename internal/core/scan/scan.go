package scan

import (
	"context"
	"fmt"

	"github.com/eisonai/devkit/internal/adapter"
	"github.com/eisonai/devkit/internal/core/checksum"
	"github.com/eisonai/devkit/internal/domain"
	"github.com/eisonai/devkit/internal/logger"
	"github.com/eisonai/devkit/internal/progress"
)

// Options configures a Scanner
type Options struct {
	// Algorithm used for full and chunk digests
	Algorithm checksum.Algorithm

	// Ignore holds fnmatch globs matched against each file's relative path
	Ignore []string

	// Reporter receives per-file hashing progress (optional)
	Reporter progress.Reporter

	// Logger for per-file debug output (optional)
	Logger logger.Logger
}

// Tree is the scanned form of one directory tree
type Tree struct {
	// Root is the display path of the scanned root
	Root string

	// Files in discovery order: depth-first, entries sorted by name
	Files []domain.FileRecord

	// TotalBytes is the sum of all recorded file sizes
	TotalBytes int64
}

// Scanner turns a tree adapter into FileRecords
type Scanner struct {
	calc     checksum.Calculator
	algo     checksum.Algorithm
	ignore   *IgnoreMatcher
	reporter progress.Reporter
	log      logger.Logger
}

// New creates a scanner. The algorithm and ignore globs are validated up front
// so a bad configuration fails before any file is read.
func New(calc checksum.Calculator, opts Options) (*Scanner, error) {
	algo := opts.Algorithm
	if algo == "" {
		algo = checksum.DefaultAlgorithm
	}
	if !checksum.IsSupported(algo) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedAlgorithm, algo)
	}

	ignore, err := NewIgnoreMatcher(opts.Ignore)
	if err != nil {
		return nil, err
	}

	reporter := opts.Reporter
	if reporter == nil {
		reporter = progress.NullReporter{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}

	return &Scanner{
		calc:     calc,
		algo:     algo,
		ignore:   ignore,
		reporter: reporter,
		log:      log,
	}, nil
}

// Scan hashes every regular file under the adapter root.
// Symlinks and special files are skipped, symlinked directories are not
// descended, and ignored paths are skipped. The first I/O error aborts the scan.
func (s *Scanner) Scan(ctx context.Context, adp adapter.Adapter) (*Tree, error) {
	tree := &Tree{Root: adp.Root()}
	if err := s.walk(ctx, adp, "", tree); err != nil {
		return nil, err
	}

	s.log.Debug("tree scanned",
		"root", tree.Root,
		"files", len(tree.Files),
		"bytes", tree.TotalBytes,
	)
	return tree, nil
}

// walk recursively lists dir and hashes its files
func (s *Scanner) walk(ctx context.Context, adp adapter.Adapter, dir string, tree *Tree) error {
	items, err := adp.List(ctx, dir)
	if err != nil {
		return fmt.Errorf("listing %q: %w", dir, err)
	}

	for _, item := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		switch item.Type {
		case domain.FileTypeDirectory:
			if err := s.walk(ctx, adp, item.Path, tree); err != nil {
				return err
			}
		case domain.FileTypeRegular:
			if s.ignore.Match(item.Path) {
				s.log.Debug("ignored", "path", item.Path)
				continue
			}
			record, err := s.hashFile(ctx, adp, item)
			if err != nil {
				return err
			}
			tree.Files = append(tree.Files, record)
			tree.TotalBytes += record.Size
		default:
			// symlinks, sockets, devices
			continue
		}
	}

	return nil
}

// hashFile computes the record for a single file
func (s *Scanner) hashFile(ctx context.Context, adp adapter.Adapter, item domain.FileInfo) (domain.FileRecord, error) {
	reader, err := adp.Read(ctx, item.Path)
	if err != nil {
		return domain.FileRecord{}, fmt.Errorf("opening %q: %w", item.Path, err)
	}
	defer reader.Close()

	s.reporter.Start(item.Path, item.Size)
	sum, err := s.calc.Calculate(ctx, progress.NewProgressReader(reader, s.reporter), s.algo)
	if err != nil {
		s.reporter.Error(err)
		return domain.FileRecord{}, fmt.Errorf("hashing %q: %w", item.Path, err)
	}
	s.reporter.Complete()

	return domain.FileRecord{
		Path:         item.Path,
		Size:         sum.Size,
		Digest:       sum.Digest,
		ChunkDigests: sum.Chunks,
	}, nil
}
