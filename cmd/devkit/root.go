package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eisonai/devkit/internal/config"
	"github.com/eisonai/devkit/internal/domain"
	"github.com/eisonai/devkit/internal/logger"
	"github.com/eisonai/devkit/internal/metrics"
	"github.com/eisonai/devkit/internal/progress"
	"github.com/eisonai/devkit/internal/service"
)

// exitError carries the process exit code of a failed command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// usageError marks bad arguments, which exit with code 2
func usageError(err error) error {
	return &exitError{code: 2, err: err}
}

// rootFlagKeys binds the persistent flags to config keys
var rootFlagKeys = map[string]string{
	"log-level":    "log.level",
	"log-format":   "log.format",
	"log-file":     "log.file",
	"metrics-file": "metrics.file",
}

type app struct {
	configPath string
	progress   bool
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "devkit",
		Short:         "Repository tooling for eisonAI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default: devkit.yaml in . ./configs ~/.config/devkit ~/.devkit)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("log-file", "", "also write logs to this file, rotated")
	pf.String("metrics-file", "", "write Prometheus metrics to this textfile after the run")
	pf.BoolVar(&a.progress, "progress", false, "print per-file progress to stderr")

	root.AddCommand(
		newCompareCmd(a),
		newAssetsCmd(a),
		newTelegramCmd(a),
	)
	return root
}

// run loads configuration for cmd, initializes logging and metrics, and
// calls fn. Metrics are written even when fn fails.
func (a *app) run(cmd *cobra.Command, flagKeys map[string]string, fn func(*config.Config, *metrics.Metrics) error) error {
	bindings := make(map[string]string, len(rootFlagKeys)+len(flagKeys))
	for k, v := range rootFlagKeys {
		bindings[k] = v
	}
	for k, v := range flagKeys {
		bindings[k] = v
	}

	cfg, err := config.Load(a.configPath, cmd.Flags(), bindings)
	if err != nil {
		return err
	}

	lc := cfg.LoggerConfig()
	lc.Command = strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" ")
	for i := range lc.Outputs {
		if lc.Outputs[i].Type == logger.OutputStderr {
			lc.Outputs[i].Writer = a.stderr
		}
	}
	if err := logger.Init(lc); err != nil {
		return err
	}
	defer logger.Shutdown()

	m := metrics.New()
	runErr := fn(cfg, m)

	if err := m.WriteTextfile(config.ExpandPath(cfg.Metrics.File)); err != nil {
		logger.Get().Warn("failed to write metrics", "path", cfg.Metrics.File, "error", err)
	}
	return runErr
}

func (a *app) reporter() progress.Reporter {
	if !a.progress {
		return progress.NullReporter{}
	}
	return progress.NewCallbackReporter(func(u progress.Update) {
		switch u.Type {
		case progress.UpdateComplete:
			fmt.Fprintf(a.stderr, "  %s %s (%s)\n",
				u.Name, progress.FormatBytes(u.CurrentBytes), progress.FormatSpeed(u.BytesPerSecond))
		case progress.UpdateError:
			fmt.Fprintf(a.stderr, "  %s failed: %v\n", u.Name, u.Error)
		}
	})
}

// execute runs the command line and maps errors to exit codes
func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return 0
	}

	var rootErr *domain.RootError
	var hubErr *service.HubError
	var exitErr *exitError
	switch {
	case errors.As(err, &rootErr):
		fmt.Fprintf(stderr, "Not a directory: %s\n", rootErr.Path)
		return 1
	case errors.Is(err, domain.ErrMissingToken):
		fmt.Fprintln(stderr, "Missing bot token. Provide --token, set TELEGRAM_BOT_TOKEN, or create a .token file.")
		return 2
	case errors.As(err, &hubErr), errors.Is(err, domain.ErrUnexpectedLayout), errors.Is(err, domain.ErrLocked):
		fmt.Fprintf(stderr, "[error] %v\n", err)
		return 1
	case errors.Is(err, domain.ErrConfigInvalid):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	case errors.As(err, &exitErr):
		fmt.Fprintf(stderr, "Error: %v\n", exitErr.err)
		return exitErr.code
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}
