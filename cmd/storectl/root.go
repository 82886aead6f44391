package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"videosplus/storefront/internal/app"
	"videosplus/storefront/internal/config"
	"videosplus/storefront/internal/logger"
)

type rootOptions struct {
	configDir string
	backend   string
	key       string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "storectl",
		Short:        "storectl - inspect and maintain the VideosPlus document store",
		Long:         "storectl reads the same configuration as the API server and works directly on the stored document.",
		Version:      version,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", ".", "Directory holding config.yaml and .env")
	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "Override store.backend (s3, file, mongo, memory)")
	cmd.PersistentFlags().StringVar(&opts.key, "key", "", "Override store.key")

	cmd.AddCommand(newStatsCmd(opts))
	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newVideosCmd(opts))
	cmd.AddCommand(newBackupsCmd(opts))
	cmd.AddCommand(newSessionsCmd(opts))
	return cmd
}

// openApp loads configuration and connects the store. Logs go to stderr so that
// command output stays machine readable.
func openApp(ctx context.Context, cmd *cobra.Command, opts *rootOptions) (*app.App, error) {
	cfg, err := config.LoadConfig(opts.configDir)
	if err != nil {
		return nil, err
	}
	if opts.backend != "" {
		cfg.Store.Backend = opts.backend
	}
	if opts.key != "" {
		cfg.Store.Key = opts.key
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	log.SetOutput(cmd.ErrOrStderr())

	return app.New(ctx, cfg, log)
}

func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close(context.Background())
	}()
	return fn(ctx, a)
}

func outputJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func checkFormat(format string) error {
	switch format {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
	}
}
