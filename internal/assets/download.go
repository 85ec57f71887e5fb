package assets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/eisonai/devkit/internal/domain"
	"github.com/eisonai/devkit/internal/hf"
	"github.com/eisonai/devkit/internal/logger"
	"github.com/eisonai/devkit/internal/progress"
)

// partialSuffix marks a download in flight
const partialSuffix = ".partial"

// Options configures a Downloader
type Options struct {
	UserAgent string

	// Force re-downloads files that already exist
	Force bool

	// Out receives the [get ]/[ok  ]/[skip] lines (default os.Stdout)
	Out io.Writer

	// Reporter receives byte progress per file (optional)
	Reporter progress.Reporter

	Logger logger.Logger
}

// Outcome describes what happened to one item
type Outcome struct {
	Item    Item
	Skipped bool
	Bytes   int64
}

// Downloader streams plan items to disk atomically
type Downloader struct {
	http     *resty.Client
	force    bool
	out      io.Writer
	reporter progress.Reporter
	log      logger.Logger
	cwd      string
}

// NewDownloader creates a downloader. Requests carry no overall timeout
// since model shards can take minutes; cancel through the context instead.
func NewDownloader(opts Options) *Downloader {
	if opts.UserAgent == "" {
		opts.UserAgent = hf.DefaultUserAgent
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Reporter == nil {
		opts.Reporter = progress.NullReporter{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Get()
	}
	cwd, _ := os.Getwd()

	return &Downloader{
		http:     resty.New().SetHeader("User-Agent", opts.UserAgent),
		force:    opts.Force,
		out:      opts.Out,
		reporter: opts.Reporter,
		log:      opts.Logger,
		cwd:      cwd,
	}
}

// FetchAll downloads every item of the plan in order, stopping at the first error
func (d *Downloader) FetchAll(ctx context.Context, plan *Plan) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(plan.Items))
	for _, item := range plan.Items {
		outcome, err := d.Fetch(ctx, item)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// Fetch downloads one item. An existing destination is skipped unless Force is set.
// The body is streamed to <dest>.partial and renamed into place once complete.
func (d *Downloader) Fetch(ctx context.Context, item Item) (Outcome, error) {
	outcome := Outcome{Item: item}

	if err := os.MkdirAll(filepath.Dir(item.Dest), 0755); err != nil {
		return outcome, fmt.Errorf("creating %s: %w", filepath.Dir(item.Dest), err)
	}

	if _, err := os.Stat(item.Dest); err == nil && !d.force {
		fmt.Fprintf(d.out, "[skip] %s\n", d.display(item.Dest))
		outcome.Skipped = true
		return outcome, nil
	}

	tmp := item.Dest + partialSuffix
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return outcome, fmt.Errorf("removing stale %s: %w", tmp, err)
	}

	fmt.Fprintf(d.out, "[get ] %s\n", item.URL)
	d.log.Debug("downloading", "url", item.URL, "dest", item.Dest)

	n, err := d.stream(ctx, item, tmp)
	if err != nil {
		os.Remove(tmp)
		return outcome, err
	}

	if err := os.Rename(tmp, item.Dest); err != nil {
		os.Remove(tmp)
		return outcome, fmt.Errorf("renaming %s: %w", tmp, err)
	}

	outcome.Bytes = n
	fmt.Fprintf(d.out, "[ok  ] %s\n", d.display(item.Dest))
	return outcome, nil
}

func (d *Downloader) stream(ctx context.Context, item Item, tmp string) (int64, error) {
	resp, err := d.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(item.URL)
	if err != nil {
		return 0, fmt.Errorf("GET %s: %w", item.URL, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return 0, fmt.Errorf("%w: GET %s: HTTP %d", domain.ErrAPIResponse, item.URL, resp.StatusCode())
	}

	file, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", tmp, err)
	}

	var total int64 = -1
	if resp.RawResponse != nil {
		total = resp.RawResponse.ContentLength
	}
	d.reporter.Start(filepath.Base(item.Dest), total)

	pw := progress.NewProgressWriter(file, d.reporter)
	_, copyErr := io.Copy(pw, body)
	closeErr := file.Close()

	if copyErr != nil {
		d.reporter.Error(copyErr)
		return 0, fmt.Errorf("downloading %s: %w", item.URL, copyErr)
	}
	if closeErr != nil {
		d.reporter.Error(closeErr)
		return 0, fmt.Errorf("writing %s: %w", tmp, closeErr)
	}

	d.reporter.Complete()
	return pw.Written(), nil
}

// display shows path relative to the working directory when it lies below it
func (d *Downloader) display(path string) string {
	if d.cwd == "" {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(d.cwd, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return abs
	}
	return rel
}
