package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/eisonai/devkit/internal/config"
	"github.com/eisonai/devkit/internal/domain"
	"github.com/eisonai/devkit/internal/logger"
	"github.com/eisonai/devkit/internal/metrics"
	"github.com/eisonai/devkit/internal/telegram"
)

// TokenEnv is read when no token is configured
const TokenEnv = "TELEGRAM_BOT_TOKEN"

// PostService publishes a release note to a Telegram channel
type PostService struct {
	config  config.TelegramConfig
	metrics *metrics.Metrics
	out     io.Writer
}

// NewPostService creates a new post service
func NewPostService(cfg *config.Config, m *metrics.Metrics) (*PostService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if m == nil {
		m = metrics.New()
	}
	return &PostService{
		config:  cfg.Telegram,
		metrics: m,
		out:     os.Stdout,
	}, nil
}

// SetOutput redirects the dry-run text and status lines (default stdout)
func (s *PostService) SetOutput(w io.Writer) {
	s.out = w
}

// ResolveToken picks the token from the configuration, then TELEGRAM_BOT_TOKEN,
// then the trimmed token file. A missing token file is not an error.
func (s *PostService) ResolveToken() (string, error) {
	if s.config.Token != "" {
		return s.config.Token, nil
	}
	if token := os.Getenv(TokenEnv); token != "" {
		return token, nil
	}
	if s.config.TokenFile != "" {
		data, err := os.ReadFile(config.ExpandPath(s.config.TokenFile))
		if err == nil {
			if token := strings.TrimSpace(string(data)); token != "" {
				return token, nil
			}
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("reading token file: %w", err)
		}
	}
	return "", domain.ErrMissingToken
}

// Compose merges the header and changelog files and normalizes the result
// when Markdown parsing is requested
func (s *PostService) Compose() (string, error) {
	top, err := os.ReadFile(config.ExpandPath(s.config.Top))
	if err != nil {
		return "", fmt.Errorf("reading top text: %w", err)
	}
	changelog, err := os.ReadFile(config.ExpandPath(s.config.Changelog))
	if err != nil {
		return "", fmt.Errorf("reading changelog: %w", err)
	}

	merged := telegram.Merge(string(top), string(changelog))
	if s.config.ParseMode == telegram.ParseModeMarkdown && s.config.Normalize {
		merged = telegram.Normalize(merged)
	}
	return merged, nil
}

// Post sends the photo and text. Text that fits a caption goes out with the
// photo; longer text follows as separate messages.
func (s *PostService) Post(ctx context.Context) error {
	start := time.Now()
	defer s.metrics.ObserveCommand("telegram_post", start)

	log := logger.Get()

	token, err := s.ResolveToken()
	if err != nil {
		return err
	}

	merged, err := s.Compose()
	if err != nil {
		return err
	}

	if s.config.DryRun {
		fmt.Fprintln(s.out, merged)
		return nil
	}

	parseMode := s.config.ParseMode
	if s.config.NoParseMode {
		parseMode = ""
	}

	client, err := telegram.NewClient(telegram.Options{
		Token:             token,
		BaseURL:           s.config.BaseURL,
		MessagesPerSecond: s.config.MessagesPerSecond,
	})
	if err != nil {
		return err
	}

	length := utf8.RuneCountInString(merged)
	log.Debug("posting update", "chat_id", s.config.ChatID, "length", length)

	if length <= telegram.CaptionLimit {
		_, err := client.SendPhoto(ctx, s.config.ChatID, config.ExpandPath(s.config.Image), merged, parseMode)
		s.metrics.BotAPICall("sendPhoto", err)
		if err != nil {
			log.Error("sendPhoto failed", "error", err)
			return err
		}
		fmt.Fprintln(s.out, "Posted photo with caption.")
		return nil
	}

	_, err = client.SendPhoto(ctx, s.config.ChatID, config.ExpandPath(s.config.Image), "", "")
	s.metrics.BotAPICall("sendPhoto", err)
	if err != nil {
		log.Error("sendPhoto failed", "error", err)
		return err
	}

	chunks := telegram.ChunkText(merged, telegram.MessageLimit)
	for i, chunk := range chunks {
		_, err := client.SendMessage(ctx, s.config.ChatID, chunk, parseMode)
		s.metrics.BotAPICall("sendMessage", err)
		if err != nil {
			log.Error("sendMessage failed", "chunk", i, "error", err)
			return err
		}
	}

	fmt.Fprintln(s.out, "Posted photo and text messages.")
	log.Info("update posted", "messages", len(chunks), "duration", time.Since(start))
	return nil
}
