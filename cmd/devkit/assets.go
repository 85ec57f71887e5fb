package main

import (
	"github.com/spf13/cobra"

	"github.com/eisonai/devkit/internal/assets"
	"github.com/eisonai/devkit/internal/config"
	"github.com/eisonai/devkit/internal/metrics"
	"github.com/eisonai/devkit/internal/service"
)

var assetsFlagKeys = map[string]string{
	"dest":           "assets.dest",
	"force":          "assets.force",
	"model-id":       "assets.model_id",
	"repo":           "assets.repo",
	"webllm-version": "assets.webllm_version",
	"wasm-file":      "assets.wasm_file",
}

func newAssetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage bundled WebLLM assets",
	}
	cmd.AddCommand(newAssetsDownloadCmd(a))
	return cmd
}

func newAssetsDownloadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the WebLLM model files and wasm library",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return usageError(err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, assetsFlagKeys, func(cfg *config.Config, m *metrics.Metrics) error {
				svc, err := service.NewAssetsService(cfg, m)
				if err != nil {
					return err
				}
				svc.SetOutput(a.stdout)
				svc.SetProgressReporter(a.reporter())
				return svc.Download(cmd.Context())
			})
		},
	}

	f := cmd.Flags()
	f.String("dest", assets.DefaultDest, "destination root for model and wasm files")
	f.Bool("force", false, "re-download files that already exist")
	f.String("model-id", assets.DefaultModelID, "model id")
	f.String("repo", "", "HuggingFace repo (default mlc-ai/<model-id>)")
	f.String("webllm-version", assets.DefaultWebLLMVersion, "WebLLM model library version")
	f.String("wasm-file", assets.DefaultWasmFile, "model library wasm file name")
	return cmd
}
