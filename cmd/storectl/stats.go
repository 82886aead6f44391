package main

import (
	"context"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"videosplus/storefront/internal/app"
	"videosplus/storefront/internal/service"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record counts of the stored document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				stats, err := service.NewCatalogService(a.Docs).Stats(ctx)
				if err != nil {
					return err
				}
				if format == "json" {
					return outputJSON(cmd, stats)
				}

				t := table.NewWriter()
				t.SetOutputMirror(cmd.OutOrStdout())
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"Key", "Stored", "Videos", "Users", "Sessions"})
				t.AppendRow(table.Row{stats.Key, stats.Stored, stats.Counts.Videos, stats.Counts.Users, stats.Counts.Sessions})
				t.Render()
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	return cmd
}
