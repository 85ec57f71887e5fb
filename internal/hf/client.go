// Package hf talks to the HuggingFace Hub model API.
package hf

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/eisonai/devkit/internal/domain"
)

const (
	// DefaultBaseURL is the public Hub endpoint
	DefaultBaseURL = "https://huggingface.co"

	// DefaultUserAgent identifies asset downloads to the Hub
	DefaultUserAgent = "eisonAI-webllm-assets/1.0"
)

// Options configures a Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client is a minimal Hub API client
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient creates a Hub client. Zero options fall back to the public Hub.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	base := strings.TrimSuffix(opts.BaseURL, "/")
	return &Client{
		http: resty.New().
			SetBaseURL(base).
			SetTimeout(opts.Timeout).
			SetHeader("User-Agent", opts.UserAgent),
		baseURL: base,
	}
}

// modelInfo is the subset of /api/models/<repo> we read
type modelInfo struct {
	Siblings json.RawMessage `json:"siblings"`
}

// ModelFiles lists the repository file names of a model, in API order.
// Entries without a non-empty string rfilename are skipped.
func (c *Client) ModelFiles(ctx context.Context, repo string) ([]string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/api/models/" + repo)
	if err != nil {
		return nil, fmt.Errorf("GET model %s: %w", repo, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: GET model %s: HTTP %d: %s",
			domain.ErrAPIResponse, repo, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	var info modelInfo
	if err := json.Unmarshal(resp.Body(), &info); err != nil {
		return nil, fmt.Errorf("%w: decoding model %s: %v", domain.ErrAPIResponse, repo, err)
	}

	if len(info.Siblings) == 0 || string(info.Siblings) == "null" {
		return []string{}, nil
	}

	var siblings []any
	if err := json.Unmarshal(info.Siblings, &siblings); err != nil {
		return nil, fmt.Errorf("%w: siblings is not a list", domain.ErrAPIResponse)
	}

	files := make([]string, 0, len(siblings))
	for _, item := range siblings {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := entry["rfilename"].(string); ok && name != "" {
			files = append(files, name)
		}
	}
	return files, nil
}

// ResolveURL is the download URL of a file on the main revision
func (c *Client) ResolveURL(repo, name string) string {
	return c.baseURL + "/" + repo + "/resolve/main/" + EscapePath(name)
}

// EscapePath percent-escapes every segment of a slash separated path
func EscapePath(name string) string {
	segments := strings.Split(name, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
