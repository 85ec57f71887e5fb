// Package metrics collects per-run counters and exports them in the
// Prometheus text format for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "devkit"

// Metrics is the registry of one command run
type Metrics struct {
	registry *prometheus.Registry

	// CommandDuration 指令執行耗時（秒）
	CommandDuration *prometheus.HistogramVec
	// FilesScanned 掃描檔案數（按目錄樹 a|b）
	FilesScanned *prometheus.CounterVec
	// BytesHashed 雜湊位元組數（按目錄樹 a|b）
	BytesHashed *prometheus.CounterVec
	// WeightedSimilarity 位元組加權相似度（按目錄樹 a|b）
	WeightedSimilarity *prometheus.GaugeVec
	// Downloads 下載檔案數（按結果 fetched|skipped|failed）
	Downloads *prometheus.CounterVec
	// DownloadBytes 下載位元組總數
	DownloadBytes prometheus.Counter
	// BotAPICalls Telegram Bot API 呼叫數（按 method 與 status ok|error）
	BotAPICalls *prometheus.CounterVec
}

// New creates a fresh registry with every collector registered
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Command run time in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		FilesScanned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_scanned_total",
				Help:      "Regular files hashed per tree",
			},
			[]string{"tree"},
		),
		BytesHashed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bytes_hashed_total",
				Help:      "Bytes hashed per tree",
			},
			[]string{"tree"},
		),
		WeightedSimilarity: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "weighted_best_similarity",
				Help:      "Byte-weighted best-match similarity of a tree against the other",
			},
			[]string{"tree"},
		),
		Downloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "asset_downloads_total",
				Help:      "Asset files by download result",
			},
			[]string{"result"},
		),
		DownloadBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "asset_download_bytes_total",
				Help:      "Bytes written by asset downloads",
			},
		),
		BotAPICalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "telegram_api_calls_total",
				Help:      "Bot API calls by method and status",
			},
			[]string{"method", "status"},
		),
	}

	m.registry.MustRegister(
		m.CommandDuration, m.FilesScanned, m.BytesHashed, m.WeightedSimilarity,
		m.Downloads, m.DownloadBytes, m.BotAPICalls,
	)
	return m
}

// Registry exposes the underlying gatherer
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCommand records the run time of a command started at start
func (m *Metrics) ObserveCommand(command string, start time.Time) {
	m.CommandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
}

// BotAPICall counts one Bot API call
func (m *Metrics) BotAPICall(method string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.BotAPICalls.WithLabelValues(method, status).Inc()
}

// WriteTextfile writes the registry atomically to path. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
