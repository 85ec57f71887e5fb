package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/eisonai/devkit/internal/assets"
	"github.com/eisonai/devkit/internal/config"
	"github.com/eisonai/devkit/internal/hf"
	"github.com/eisonai/devkit/internal/lock"
	"github.com/eisonai/devkit/internal/logger"
	"github.com/eisonai/devkit/internal/metrics"
	"github.com/eisonai/devkit/internal/progress"
)

// HubError reports a failed model listing request
type HubError struct {
	Err error
}

func (e *HubError) Error() string {
	return "HuggingFace API failed: " + e.Err.Error()
}

func (e *HubError) Unwrap() error {
	return e.Err
}

// AssetsService downloads the WebLLM model files and runtime
type AssetsService struct {
	config   config.AssetsConfig
	metrics  *metrics.Metrics
	reporter progress.Reporter
	out      io.Writer
}

// NewAssetsService creates a new assets service
func NewAssetsService(cfg *config.Config, m *metrics.Metrics) (*AssetsService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if m == nil {
		m = metrics.New()
	}
	return &AssetsService{
		config:  cfg.Assets,
		metrics: m,
		out:     os.Stdout,
	}, nil
}

// SetProgressReporter sets the per-file download progress reporter
func (s *AssetsService) SetProgressReporter(reporter progress.Reporter) {
	s.reporter = reporter
}

// SetOutput redirects the status lines (default stdout)
func (s *AssetsService) SetOutput(w io.Writer) {
	s.out = w
}

func (s *AssetsService) source() assets.Source {
	return assets.Source{
		ModelID:       s.config.ModelID,
		Repo:          s.config.Repo,
		WebLLMVersion: s.config.WebLLMVersion,
		WasmFile:      s.config.WasmFile,
		WasmBaseURL:   s.config.WasmBaseURL,
	}
}

// Download lists the model repository, builds the plan and fetches every file
func (s *AssetsService) Download(ctx context.Context) error {
	start := time.Now()
	defer s.metrics.ObserveCommand("assets_download", start)

	log := logger.Get()
	src := s.source()

	destRoot, err := filepath.Abs(config.ExpandPath(s.config.Dest))
	if err != nil {
		return fmt.Errorf("resolving dest: %w", err)
	}

	fmt.Fprintf(s.out, "[info] repo: %s\n", src.RepoName())
	fmt.Fprintf(s.out, "[info] dest: %s\n", destRoot)

	guard, err := lock.NewFileLock(destRoot)
	if err != nil {
		return err
	}
	if err := guard.Acquire("assets download"); err != nil {
		return err
	}
	defer func() {
		if err := guard.Release(); err != nil {
			log.Warn("failed to release dest lock", "path", guard.Path(), "error", err)
		}
	}()

	hub := hf.NewClient(hf.Options{BaseURL: s.config.HFBaseURL, UserAgent: s.config.UserAgent})
	files, err := hub.ModelFiles(ctx, src.RepoName())
	if err != nil {
		log.Error("model listing failed", "repo", src.RepoName(), "error", err)
		return &HubError{Err: err}
	}
	log.Debug("model listing", "repo", src.RepoName(), "files", len(files))

	plan, err := assets.BuildPlan(src, destRoot, files, hub)
	if err != nil {
		return err
	}

	reporter := s.reporter
	if reporter == nil {
		reporter = progress.NullReporter{}
	}
	downloader := assets.NewDownloader(assets.Options{
		UserAgent: s.config.UserAgent,
		Force:     s.config.Force,
		Out:       s.out,
		Reporter:  reporter,
		Logger:    log,
	})

	outcomes, err := downloader.FetchAll(ctx, plan)
	s.record(outcomes, err)
	if err != nil {
		log.Error("download failed", "error", err)
		return err
	}

	fmt.Fprintln(s.out, "[done] WebLLM assets downloaded.")
	log.Info("assets downloaded", "files", len(outcomes), "duration", time.Since(start))
	return nil
}

func (s *AssetsService) record(outcomes []assets.Outcome, err error) {
	for _, o := range outcomes {
		if o.Skipped {
			s.metrics.Downloads.WithLabelValues("skipped").Inc()
			continue
		}
		s.metrics.Downloads.WithLabelValues("fetched").Inc()
		s.metrics.DownloadBytes.Add(float64(o.Bytes))
	}
	if err != nil {
		s.metrics.Downloads.WithLabelValues("failed").Inc()
	}
}
