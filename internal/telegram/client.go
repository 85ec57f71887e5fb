// Package telegram posts channel updates through the Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/eisonai/devkit/internal/domain"
)

// DefaultBaseURL is the public Bot API endpoint
const DefaultBaseURL = "https://api.telegram.org"

// ParseModeMarkdown is the legacy Markdown dialect
const ParseModeMarkdown = "Markdown"

// APIResponse is the envelope of every Bot API reply
type APIResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

func (r APIResponse) String() string {
	if r.Description != "" {
		return fmt.Sprintf("ok=%t error_code=%d description=%q", r.OK, r.ErrorCode, r.Description)
	}
	return fmt.Sprintf("ok=%t", r.OK)
}

// Options configures a Client
type Options struct {
	Token   string
	BaseURL string
	Timeout time.Duration

	// MessagesPerSecond paces consecutive calls; 0 disables pacing
	MessagesPerSecond float64
}

// Client sends photos and messages to a chat
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

// NewClient creates a Bot API client for one bot token
func NewClient(opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, domain.ErrMissingToken
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimSuffix(opts.BaseURL, "/") + "/bot" + opts.Token).
			SetTimeout(opts.Timeout),
	}
	if opts.MessagesPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.MessagesPerSecond), 1)
	}
	return c, nil
}

// SendPhoto uploads an image. Caption and parse mode are omitted when empty.
func (c *Client) SendPhoto(ctx context.Context, chatID, imagePath, caption, parseMode string) (*APIResponse, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	contentType := "application/octet-stream"
	if mt := mimetype.Detect(data); mt != nil && !mt.Is("application/octet-stream") {
		contentType = mt.String()
	}

	fields := map[string]string{"chat_id": chatID}
	if caption != "" {
		fields["caption"] = caption
	}
	if parseMode != "" {
		fields["parse_mode"] = parseMode
	}

	req := c.http.R().
		SetMultipartFormData(fields).
		SetMultipartField("photo", filepath.Base(imagePath), contentType, bytes.NewReader(data))
	return c.call(ctx, "sendPhoto", req)
}

// SendMessage sends one text message
func (c *Client) SendMessage(ctx context.Context, chatID, text, parseMode string) (*APIResponse, error) {
	fields := map[string]string{"chat_id": chatID, "text": text}
	if parseMode != "" {
		fields["parse_mode"] = parseMode
	}
	return c.call(ctx, "sendMessage", c.http.R().SetFormData(fields))
}

func (c *Client) call(ctx context.Context, method string, req *resty.Request) (*APIResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := req.SetContext(ctx).Post("/" + method)
	if err != nil {
		return nil, fmt.Errorf("%s failed: request: %w", method, err)
	}

	var out APIResponse
	decodeErr := json.Unmarshal(resp.Body(), &out)

	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("%s failed: %w: HTTP %d: %s",
			method, domain.ErrAPIResponse, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%s failed: %w: invalid JSON response: %s",
			method, domain.ErrAPIResponse, strings.TrimSpace(resp.String()))
	}
	if !out.OK {
		return &out, fmt.Errorf("%s failed: %w: %s", method, domain.ErrAPIResponse, out)
	}
	return &out, nil
}
