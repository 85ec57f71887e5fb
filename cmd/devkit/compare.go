package main

import (
	"github.com/spf13/cobra"

	"github.com/eisonai/devkit/internal/config"
	"github.com/eisonai/devkit/internal/core/checksum"
	"github.com/eisonai/devkit/internal/metrics"
	"github.com/eisonai/devkit/internal/service"
)

var compareFlagKeys = map[string]string{
	"algo":       "compare.algo",
	"chunk-size": "compare.chunk_size",
	"ignore":     "compare.ignore",
	"top-k":      "compare.top_k",
	"all-pairs":  "compare.all_pairs",
	"json":       "compare.json",
	"io-limit":   "compare.io_limit",
}

func newCompareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare DIR_A DIR_B",
		Short: "Compare two directory trees by content",
		Long: `Hash every file under both directories and report how much content
is shared: exact duplicates, chunk-level similarity and the best match for
each file in the other tree.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(2)(cmd, args); err != nil {
				return usageError(err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, compareFlagKeys, func(cfg *config.Config, m *metrics.Metrics) error {
				svc, err := service.NewCompareService(cfg, m)
				if err != nil {
					return err
				}
				svc.SetOutput(a.stdout)
				svc.SetProgressReporter(a.reporter())

				_, err = svc.Compare(cmd.Context(), args[0], args[1])
				return err
			})
		},
	}

	f := cmd.Flags()
	f.String("algo", string(checksum.DefaultAlgorithm), "hash algorithm: md5, sha1, sha256, sha384, sha512, sha3_256, sha3_512, blake2b, blake2s, xxh64")
	f.Int("chunk-size", checksum.DefaultChunkSize, "chunk size in bytes for partial matching")
	f.StringArray("ignore", nil, "glob pattern to ignore, matched against the slash-separated relative path (repeatable)")
	f.Int("top-k", 1, "best matches to list per file")
	f.Bool("all-pairs", false, "include every matching pair in the JSON report")
	f.String("json", "", "also write the report as JSON to this path (.zst or .lz4 compresses)")
	f.Int64("io-limit", 0, "cap hashing reads in bytes per second (0 = unlimited)")
	return cmd
}
