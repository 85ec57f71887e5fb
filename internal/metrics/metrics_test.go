package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.FilesScanned.WithLabelValues("a").Add(3)
	m.BytesHashed.WithLabelValues("a").Add(1024)
	m.BotAPICall("sendPhoto", nil)
	m.BotAPICall("sendMessage", errors.New("boom"))
	m.ObserveCommand("compare", time.Now().Add(-time.Second))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.FilesScanned.WithLabelValues("a")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(m.BytesHashed.WithLabelValues("a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BotAPICalls.WithLabelValues("sendPhoto", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BotAPICalls.WithLabelValues("sendMessage", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CommandDuration))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Downloads.WithLabelValues("fetched").Inc()
	m.DownloadBytes.Add(42)

	path := filepath.Join(t.TempDir(), "textfile", "devkit.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `devkit_asset_downloads_total{result="fetched"} 1`)
	assert.Contains(t, string(data), "devkit_asset_download_bytes_total 42")
}

func TestWriteTextfile_EmptyPath(t *testing.T) {
	assert.NoError(t, New().WriteTextfile(""))
}
