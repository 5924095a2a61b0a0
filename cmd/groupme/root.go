package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/skbidisigma1/groupme-cli/api"
	"github.com/skbidisigma1/groupme-cli/config"
	"github.com/skbidisigma1/groupme-cli/errors"
	"github.com/skbidisigma1/groupme-cli/pkg/retry"
)

// app carries the shared state every subcommand needs: configuration,
// the authenticated client, and the logger. It is populated once by the
// root command's PersistentPreRunE.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	jsonOut    bool

	cfg    *config.Config
	client *api.Client
	logger *slog.Logger
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	// Command-line flags win over the config file.
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	a.cfg = cfg

	a.logger = setupLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(a.logger)

	client, err := api.NewClient(cfg, api.WithLogger(a.logger))
	if err != nil {
		return err
	}
	a.client = client

	cmd.SilenceUsage = true
	return nil
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:     appName,
		Short:   "Command line client for the GroupMe messaging service",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", defaultConfigPath(),
		"path to YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "",
		"log format: json, text")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false,
		"emit machine-readable JSON instead of tables")

	root.AddCommand(
		newAuthCommand(a),
		newWhoamiCommand(a),
		newGroupsCommand(a),
		newReadCommand(a),
		newReadDMCommand(a),
		newListDMsCommand(a),
		newSendCommand(a),
		newDMCommand(a),
		newLikeCommand(a),
		newUnlikeCommand(a),
		newBulkLikeCommand(a),
		newBulkUnlikeCommand(a),
		newSearchCommand(a),
		newSearchDMCommand(a),
		newPinCommand(a),
		newUnpinCommand(a),
		newAnnounceCommand(a),
		newBotsCommand(a),
		newWatchCommand(a),
		newExportCommand(a),
		newStatsCommand(a),
		newUploadImageCommand(a),
		newSendImageCommand(a),
		newServeCommand(a),
	)
	return root
}

// defaultConfigPath points at ~/.config/groupme/config.yaml when it
// exists, otherwise the config stays env-only
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := home + "/.config/groupme/config.yaml"
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// transient reports whether an error is worth retrying: network and
// upstream hiccups are, rejections are not
func transient(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, errors.ErrNotFound) || stderrors.Is(err, errors.ErrUnauthorized) {
		return false
	}
	return errors.IsFetch(err) || errors.IsTransport(err)
}

// withRetry runs one REST call under the standard CLI backoff policy
func withRetry[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	return retry.DoWithResult(ctx, retry.DefaultConfig(), func() (T, error) {
		v, err := fn()
		if err != nil && !transient(err) {
			return v, retry.NonRetryable(err)
		}
		return v, err
	})
}

// withRetryErr is withRetry for calls that return only an error
func withRetryErr(ctx context.Context, fn func() error) error {
	return retry.Do(ctx, retry.DefaultConfig(), func() error {
		err := fn()
		if err != nil && !transient(err) {
			return retry.NonRetryable(err)
		}
		return err
	})
}
