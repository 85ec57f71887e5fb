package main

import (
	"github.com/spf13/cobra"

	"github.com/eisonai/devkit/internal/config"
	"github.com/eisonai/devkit/internal/metrics"
	"github.com/eisonai/devkit/internal/service"
	"github.com/eisonai/devkit/internal/telegram"
)

var telegramFlagKeys = map[string]string{
	"token":               "telegram.token",
	"token-file":          "telegram.token_file",
	"chat-id":             "telegram.chat_id",
	"image":               "telegram.image",
	"top":                 "telegram.top",
	"changelog":           "telegram.changelog",
	"parse-mode":          "telegram.parse_mode",
	"no-parse-mode":       "telegram.no_parse_mode",
	"dry-run":             "telegram.dry_run",
	"messages-per-second": "telegram.messages_per_second",
}

func newTelegramCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telegram",
		Short: "Telegram channel tooling",
	}
	cmd.AddCommand(newTelegramPostCmd(a))
	return cmd
}

func newTelegramPostCmd(a *app) *cobra.Command {
	var noNormalize bool

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post the release image with the top notes and changelog",
		Long: `Merge the top notes and the changelog, normalize them for Telegram
Markdown and post them to the channel. Text that fits a photo caption is sent
with the image; longer text follows the image as separate messages.

The bot token is taken from --token, then TELEGRAM_BOT_TOKEN, then the token file.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return usageError(err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, telegramFlagKeys, func(cfg *config.Config, m *metrics.Metrics) error {
				if cmd.Flags().Changed("no-normalize") {
					cfg.Telegram.Normalize = !noNormalize
				}
				svc, err := service.NewPostService(cfg, m)
				if err != nil {
					return err
				}
				svc.SetOutput(a.stdout)
				return svc.Post(cmd.Context())
			})
		},
	}

	f := cmd.Flags()
	f.String("token", "", "bot token")
	f.String("token-file", "telegram/.token", "file holding the bot token")
	f.String("chat-id", "@RonnieAppsChannel", "target chat or channel")
	f.String("image", "telegram/VersionUpdate.png", "image to post")
	f.String("top", "telegram/top.md", "notes placed above the changelog")
	f.String("changelog", "telegram/changelog.md", "changelog file")
	f.String("parse-mode", telegram.ParseModeMarkdown, "Telegram parse mode")
	f.Bool("no-parse-mode", false, "send plain text without a parse mode")
	f.BoolVar(&noNormalize, "no-normalize", false, "send the merged text without Markdown normalization")
	f.Bool("dry-run", false, "print the merged text instead of posting")
	f.Float64("messages-per-second", 1, "Bot API request rate limit (0 = unlimited)")
	return cmd
}
