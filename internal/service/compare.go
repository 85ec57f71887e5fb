package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/eisonai/devkit/internal/adapter"
	"github.com/eisonai/devkit/internal/adapter/local"
	"github.com/eisonai/devkit/internal/config"
	"github.com/eisonai/devkit/internal/core/checksum"
	"github.com/eisonai/devkit/internal/core/report"
	"github.com/eisonai/devkit/internal/core/scan"
	"github.com/eisonai/devkit/internal/logger"
	"github.com/eisonai/devkit/internal/metrics"
	"github.com/eisonai/devkit/internal/progress"
)

// CompareService scans two trees and reports how much content they share
type CompareService struct {
	config   config.CompareConfig
	metrics  *metrics.Metrics
	reporter progress.Reporter
	out      io.Writer
}

// NewCompareService creates a new compare service
func NewCompareService(cfg *config.Config, m *metrics.Metrics) (*CompareService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if m == nil {
		m = metrics.New()
	}
	return &CompareService{
		config:  cfg.Compare,
		metrics: m,
		out:     os.Stdout,
	}, nil
}

// SetProgressReporter sets the per-file hashing progress reporter
func (s *CompareService) SetProgressReporter(reporter progress.Reporter) {
	s.reporter = reporter
}

// SetOutput redirects the text report (default stdout)
func (s *CompareService) SetOutput(w io.Writer) {
	s.out = w
}

// getReporter returns the current progress reporter or a null reporter
func (s *CompareService) getReporter() progress.Reporter {
	if s.reporter != nil {
		return s.reporter
	}
	return progress.NullReporter{}
}

// Compare resolves both roots, scans them, writes the optional JSON report
// and prints the text report. Both roots are validated before any file is read.
func (s *CompareService) Compare(ctx context.Context, dirA, dirB string) (*report.Report, error) {
	start := time.Now()
	defer s.metrics.ObserveCommand("compare", start)

	log := logger.Get()

	treeA, err := local.New(dirA)
	if err != nil {
		return nil, err
	}
	defer treeA.Close()

	treeB, err := local.New(dirB)
	if err != nil {
		return nil, err
	}
	defer treeB.Close()

	calc := checksum.NewCalculator(checksum.Options{
		ChunkSize: s.config.ChunkSize,
		Limiter:   checksum.NewIOLimiter(s.config.IOLimit),
	})
	scanner, err := scan.New(calc, scan.Options{
		Algorithm: checksum.Algorithm(s.config.Algo),
		Ignore:    s.config.Ignore,
		Reporter:  s.getReporter(),
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}

	a, err := s.scanTree(ctx, scanner, treeA, "a", log)
	if err != nil {
		return nil, err
	}
	b, err := s.scanTree(ctx, scanner, treeB, "b", log)
	if err != nil {
		return nil, err
	}

	r := report.NewBuilder(nil).Build(a, b, report.Options{
		Algorithm: s.config.Algo,
		ChunkSize: s.config.ChunkSize,
		Ignore:    s.config.Ignore,
		TopK:      s.config.TopK,
		AllPairs:  s.config.AllPairs,
	})
	s.metrics.WeightedSimilarity.WithLabelValues("a").Set(r.A.WeightedBestSimilarity)
	s.metrics.WeightedSimilarity.WithLabelValues("b").Set(r.B.WeightedBestSimilarity)

	if s.config.JSON != "" {
		path := config.ExpandPath(s.config.JSON)
		if err := report.WriteJSON(path, r); err != nil {
			log.Error("failed to write json report", "path", path, "error", err)
			return nil, err
		}
		log.Info("json report written", "path", path)
	}

	if err := report.WriteText(s.out, r); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}

	log.Info("compare completed",
		"common", r.CommonUniqueContents,
		"a_files", r.A.Files,
		"b_files", r.B.Files,
		"duration", time.Since(start))
	return r, nil
}

func (s *CompareService) scanTree(ctx context.Context, scanner *scan.Scanner, tree adapter.Adapter, label string, log logger.Logger) (*scan.Tree, error) {
	log.Debug("scanning tree", "tree", label, "root", tree.Root())

	t, err := scanner.Scan(ctx, tree)
	if err != nil {
		log.Error("scan failed", "tree", label, "error", err)
		return nil, fmt.Errorf("scanning %s: %w", tree.Root(), err)
	}

	s.metrics.FilesScanned.WithLabelValues(label).Add(float64(len(t.Files)))
	s.metrics.BytesHashed.WithLabelValues(label).Add(float64(t.TotalBytes))
	log.Debug("tree scanned", "tree", label, "files", len(t.Files), "bytes", t.TotalBytes)
	return t, nil
}
