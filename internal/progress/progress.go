package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Reporter receives progress for items processed one after another:
// files being hashed by the scanner, assets being downloaded.
type Reporter interface {
	// Start begins tracking a new item (totalBytes < 0 when unknown)
	Start(name string, totalBytes int64)
	// Update reports bytes processed so far for the current item
	Update(bytesDone int64)
	// Complete marks the current item as complete
	Complete()
	// Error reports an error on the current item
	Error(err error)
}

// Callback is a function that receives progress updates
type Callback func(update Update)

// Update represents a progress update
type Update struct {
	Type           UpdateType
	Name           string
	CurrentBytes   int64
	CurrentTotal   int64
	ItemsCompleted int
	BytesCompleted int64
	BytesPerSecond float64
	Error          error
}

// UpdateType indicates the type of progress update
type UpdateType int

const (
	UpdateStart UpdateType = iota
	UpdateProgress
	UpdateComplete
	UpdateError
)

// CallbackReporter implements Reporter with a callback function
type CallbackReporter struct {
	callback       Callback
	mu             sync.Mutex
	current        string
	currentTotal   int64
	currentBytes   int64
	itemsCompleted int
	bytesCompleted int64
	startTime      time.Time
}

// NewCallbackReporter creates a new CallbackReporter
func NewCallbackReporter(callback Callback) *CallbackReporter {
	return &CallbackReporter{
		callback: callback,
	}
}

// Start begins tracking a new item
func (r *CallbackReporter) Start(name string, totalBytes int64) {
	r.mu.Lock()
	r.current = name
	r.currentTotal = totalBytes
	r.currentBytes = 0
	r.startTime = time.Now()

	update := Update{
		Type:           UpdateStart,
		Name:           name,
		CurrentTotal:   totalBytes,
		ItemsCompleted: r.itemsCompleted,
		BytesCompleted: r.bytesCompleted,
	}
	callback := r.callback
	r.mu.Unlock()

	// Call callback outside lock to prevent deadlock
	if callback != nil {
		callback(update)
	}
}

// Update reports progress on the current item
func (r *CallbackReporter) Update(bytesDone int64) {
	r.mu.Lock()
	r.currentBytes = bytesDone

	var bytesPerSecond float64
	if elapsed := time.Since(r.startTime).Seconds(); elapsed > 0 {
		bytesPerSecond = float64(bytesDone) / elapsed
	}

	update := Update{
		Type:           UpdateProgress,
		Name:           r.current,
		CurrentBytes:   bytesDone,
		CurrentTotal:   r.currentTotal,
		ItemsCompleted: r.itemsCompleted,
		BytesCompleted: r.bytesCompleted + bytesDone,
		BytesPerSecond: bytesPerSecond,
	}
	callback := r.callback
	r.mu.Unlock()

	if callback != nil {
		callback(update)
	}
}

// Complete marks the current item as complete
func (r *CallbackReporter) Complete() {
	r.mu.Lock()
	r.itemsCompleted++
	r.bytesCompleted += r.currentBytes

	update := Update{
		Type:           UpdateComplete,
		Name:           r.current,
		CurrentBytes:   r.currentBytes,
		CurrentTotal:   r.currentTotal,
		ItemsCompleted: r.itemsCompleted,
		BytesCompleted: r.bytesCompleted,
	}
	callback := r.callback
	r.mu.Unlock()

	if callback != nil {
		callback(update)
	}
}

// Error reports an error on the current item
func (r *CallbackReporter) Error(err error) {
	r.mu.Lock()
	update := Update{
		Type:           UpdateError,
		Name:           r.current,
		CurrentBytes:   r.currentBytes,
		ItemsCompleted: r.itemsCompleted,
		BytesCompleted: r.bytesCompleted,
		Error:          err,
	}
	callback := r.callback
	r.mu.Unlock()

	if callback != nil {
		callback(update)
	}
}

// ProgressReader wraps an io.Reader to track read progress
type ProgressReader struct {
	reader   io.Reader
	reporter Reporter
	read     int64
}

// NewProgressReader creates a new progress-tracking reader
func NewProgressReader(r io.Reader, reporter Reporter) *ProgressReader {
	return &ProgressReader{
		reader:   r,
		reporter: reporter,
	}
}

// Read implements io.Reader
func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 {
		pr.read += int64(n)
		if pr.reporter != nil {
			pr.reporter.Update(pr.read)
		}
	}
	return n, err
}

// ProgressWriter wraps an io.Writer to track write progress
type ProgressWriter struct {
	writer   io.Writer
	reporter Reporter
	written  int64
}

// NewProgressWriter creates a new progress-tracking writer
func NewProgressWriter(w io.Writer, reporter Reporter) *ProgressWriter {
	return &ProgressWriter{
		writer:   w,
		reporter: reporter,
	}
}

// Write implements io.Writer
func (pw *ProgressWriter) Write(p []byte) (n int, err error) {
	n, err = pw.writer.Write(p)
	if n > 0 {
		pw.written += int64(n)
		if pw.reporter != nil {
			pw.reporter.Update(pw.written)
		}
	}
	return n, err
}

// Written returns the number of bytes written so far
func (pw *ProgressWriter) Written() int64 {
	return pw.written
}

// NullReporter is a no-op reporter
type NullReporter struct{}

func (NullReporter) Start(name string, totalBytes int64) {}
func (NullReporter) Update(bytesDone int64)              {}
func (NullReporter) Complete()                           {}
func (NullReporter) Error(err error)                     {}

// FormatBytes formats bytes with binary units: "512 B", "1.50 KiB", "3.00 GiB".
func FormatBytes(bytes int64) string {
	units := []string{"B", "KiB", "MiB", "GiB", "TiB"}
	value := float64(bytes)
	for i, unit := range units {
		if value < 1024 || i == len(units)-1 {
			if unit == "B" {
				return fmt.Sprintf("%d %s", int64(value), unit)
			}
			return fmt.Sprintf("%.2f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%d B", bytes)
}

// FormatSpeed formats bytes per second into human-readable string
func FormatSpeed(bytesPerSecond float64) string {
	return FormatBytes(int64(bytesPerSecond)) + "/s"
}
